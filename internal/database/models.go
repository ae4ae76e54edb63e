package database

import (
	"time"

	"github.com/modera/catalog-service/internal/types"
)

// Brand represents a fashion retailer whose catalog we ingest
type Brand struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	APIBaseURL *string   `json:"api_base_url"` // Active base API URL, informational
	APIConfig  *string   `json:"api_config"`   // Raw JSON blob, parsed lazily by brandconfig
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Category is a node in a brand's category tree. Only active leaves with a
// non-nil APIID are eligible for scraping.
type Category struct {
	ID        string    `json:"id"`
	BrandID   string    `json:"brand_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	ParentID  *string   `json:"parent_id"` // nil for roots
	Level     int       `json:"level"`     // 0 = root; child level = parent level + 1
	SortOrder int       `json:"sort_order"`
	IsLeaf    bool      `json:"is_leaf"`
	IsActive  bool      `json:"is_active"`
	APIID     *string   `json:"api_id"` // External id used to address the brand's API
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Product is a stored catalog product
type Product struct {
	ID               string    `json:"id"`
	BrandID          string    `json:"brand_id"`
	Name             string    `json:"name"`
	Slug             string    `json:"slug"`         // Unique within the brand
	ProductCode      *string   `json:"product_code"` // Secondary unique key from the source
	URL              *string   `json:"url"`
	Description      *string   `json:"description"`
	MetaTitle        *string   `json:"meta_title"`
	MetaDescription  *string   `json:"meta_description"`
	Composition      *string   `json:"composition"`
	CareInstructions *string   `json:"care_instructions"`
	Price            int64     `json:"price"` // cents
	Currency         string    `json:"currency"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ColorVariant is a stored color of a product
type ColorVariant struct {
	ID           string             `json:"id"`
	ProductID    string             `json:"product_id"`
	ColorName    string             `json:"color_name"`
	ColorCode    *string            `json:"color_code"`
	DisplayColor *string            `json:"display_color"`
	SKU          *string            `json:"sku"`
	Price        *int64             `json:"price"` // nil inherits the product price
	Availability types.Availability `json:"availability"`
	Position     int                `json:"position"`
	Images       []string           `json:"images"`
	CreatedAt    time.Time          `json:"created_at"`
}

// Size is a stored size of a color variant
type Size struct {
	ID           string             `json:"id"`
	VariantID    string             `json:"variant_id"`
	Label        string             `json:"label"`
	Availability types.Availability `json:"availability"`
	Selected     bool               `json:"selected"`
	Position     int                `json:"position"` // Source ordering, preserved for display
	CreatedAt    time.Time          `json:"created_at"`
}

// PriceHistory is an append-only audit row for a detected price change
type PriceHistory struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	OldPrice  int64     `json:"old_price"`
	NewPrice  int64     `json:"new_price"`
	Currency  string    `json:"currency"`
	ChangedAt time.Time `json:"changed_at"`
}

// ColorHistory records an added or removed color variant
type ColorHistory struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	ColorName string    `json:"color_name"`
	Change    string    `json:"change"` // 'added' | 'removed'
	ChangedAt time.Time `json:"changed_at"`
}

// SizeHistory records an added or removed (color, size) pair
type SizeHistory struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	ColorName string    `json:"color_name"`
	SizeLabel string    `json:"size_label"`
	Change    string    `json:"change"` // 'added' | 'removed'
	ChangedAt time.Time `json:"changed_at"`
}

const (
	ChangeAdded   = "added"
	ChangeRemoved = "removed"
)
