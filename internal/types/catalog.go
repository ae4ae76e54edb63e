package types

import (
	"fmt"
	"strings"
)

// Availability represents the stock state of a variant or size
type Availability string

const (
	AvailabilityInStock    Availability = "in_stock"
	AvailabilityOutOfStock Availability = "out_of_stock"
	AvailabilityUnknown    Availability = "unknown"
)

// ParseAvailability maps brand-specific availability spellings to the
// canonical enumeration. Unrecognized values become AvailabilityUnknown.
func ParseAvailability(raw string) Availability {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "in_stock", "instock", "low_on_stock", "available", "show", "true", "1":
		return AvailabilityInStock
	case "out_of_stock", "outofstock", "unavailable", "sold_out", "soldout", "coming_soon", "back_soon", "backsoon", "hidden", "false", "0":
		return AvailabilityOutOfStock
	default:
		return AvailabilityUnknown
	}
}

// Product is the canonical, adapter-independent representation of a scraped
// product before reconciliation. Prices are integer cents.
type Product struct {
	SourceID         string         `json:"sourceId,omitempty"` // Retailer's product ID, may be empty
	Name             string         `json:"name"`
	Slug             string         `json:"slug,omitempty"` // Optional; derived from name when empty
	ProductCode      string         `json:"productCode,omitempty"`
	URL              string         `json:"url,omitempty"`
	Description      string         `json:"description,omitempty"`
	MetaTitle        string         `json:"metaTitle,omitempty"`
	MetaDescription  string         `json:"metaDescription,omitempty"`
	Composition      string         `json:"composition,omitempty"`
	CareInstructions string         `json:"careInstructions,omitempty"`
	Price            int64          `json:"price"` // cents
	Currency         string         `json:"currency"`
	Colors           []ColorVariant `json:"colors"`
}

// ColorVariant is one color of a product with its own sizes and images
type ColorVariant struct {
	Name         string       `json:"name"`
	Code         string       `json:"code,omitempty"`
	DisplayColor string       `json:"displayColor,omitempty"` // Hex or CSS color for UI swatches
	SKU          string       `json:"sku,omitempty"`
	Price        int64        `json:"price,omitempty"` // cents; 0 inherits the product price
	Availability Availability `json:"availability"`
	Images       []string     `json:"images,omitempty"`
	Sizes        []Size       `json:"sizes"`
}

// Size is one size entry of a color variant. Position preserves the source
// ordering for display fidelity.
type Size struct {
	Label        string       `json:"label"`
	Availability Availability `json:"availability"`
	Selected     bool         `json:"selected,omitempty"`
	Position     int          `json:"position"`
}

// Validate checks the canonical product at the adapter boundary so the
// reconciler never needs field-presence checks inside business logic.
func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product name is required")
	}
	if p.Price < 0 {
		return fmt.Errorf("product %q: price must not be negative", p.Name)
	}
	for i, color := range p.Colors {
		if strings.TrimSpace(color.Name) == "" {
			return fmt.Errorf("product %q: color %d has no name", p.Name, i)
		}
		if color.Price < 0 {
			return fmt.Errorf("product %q: color %q: price must not be negative", p.Name, color.Name)
		}
		for j, size := range color.Sizes {
			if size.Position < 0 {
				return fmt.Errorf("product %q: color %q: size %d has negative position", p.Name, color.Name, j)
			}
		}
	}
	return nil
}

// StringPtr returns a pointer to the given string
func StringPtr(s string) *string {
	return &s
}

// Int64Ptr returns a pointer to the given int64
func Int64Ptr(v int64) *int64 {
	return &v
}
