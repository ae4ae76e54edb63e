package brands

import (
	"context"
	"strconv"
	"strings"

	"github.com/modera/catalog-service/internal/adapters/base"
	"github.com/modera/catalog-service/internal/adapters/config"
	"github.com/modera/catalog-service/internal/http/ratelimit"
	"github.com/modera/catalog-service/internal/types"
)

// pullBearCategoryResponse is the category-products envelope of the Pull&Bear
// REST API. Prices arrive as decimal strings in major units.
type pullBearCategoryResponse struct {
	Products []pullBearProduct `json:"products"`
}

type pullBearProduct struct {
	ID                     int64             `json:"id"`
	Name                   string            `json:"name"`
	ProductURL             string            `json:"productUrl"`
	BundleProductSummaries []pullBearProduct `json:"bundleProductSummaries"`
	Detail                 pullBearDetail    `json:"detail"`
}

type pullBearDetail struct {
	Description      string          `json:"description"`
	LongDescription  string          `json:"longDescription"`
	Reference        string          `json:"reference"`
	DisplayReference string          `json:"displayReference"`
	Composition      []pullBearLabel `json:"composition"`
	Care             []pullBearLabel `json:"care"`
	Colors           []pullBearColor `json:"colors"`
	Xmedia           []pullBearMedia `json:"xmedia"`
}

type pullBearLabel struct {
	Name string `json:"name"`
}

type pullBearColor struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Image *pullBearImage `json:"image"`
	Sizes []pullBearSize `json:"sizes"`
}

type pullBearImage struct {
	URL       string `json:"url"`
	Timestamp string `json:"timestamp"`
}

type pullBearSize struct {
	ID              int64  `json:"id"`
	SKU             int64  `json:"sku"`
	Name            string `json:"name"`
	Position        int    `json:"position"`
	IsBuyable       bool   `json:"isBuyable"`
	VisibilityValue string `json:"visibilityValue"`
	// The API serializes prices as decimal strings in major units
	Price string `json:"price"`
}

type pullBearMedia struct {
	Path         string   `json:"path"`
	XmediaItems  []string `json:"xmediaItems"`
	ExtraInfoURL string   `json:"url"`
}

const pullBearMediaBaseURL = "https://static.pullandbear.net/2/photos"

// PullBearAdapter is the source adapter for the Pull&Bear catalog API. It
// addresses categories by their raw external api id.
type PullBearAdapter struct {
	*base.Adapter
	urlTemplate string
}

// NewPullBearAdapter creates a new Pull&Bear adapter
func NewPullBearAdapter(rateBase ratelimit.Config) *PullBearAdapter {
	brandConfig := config.BrandConfigs[config.BrandPullBear]
	return &PullBearAdapter{
		Adapter:     base.NewAdapter(brandConfig, rateBase),
		urlTemplate: brandConfig.CategoryURLTemplate,
	}
}

// ScrapeCategoryProducts fetches and normalizes one category worth of
// products. handle is the raw external category id.
func (a *PullBearAdapter) ScrapeCategoryProducts(ctx context.Context, handle string, limit int) ([]types.Product, error) {
	url := strings.ReplaceAll(a.urlTemplate, "{categoryId}", handle)

	var envelope pullBearCategoryResponse
	if err := a.FetchJSON(ctx, url, &envelope); err != nil {
		return nil, err
	}

	products := make([]types.Product, 0, len(envelope.Products))
	for _, raw := range envelope.Products {
		// Bundles wrap the sellable product one level down
		source := raw
		if len(raw.BundleProductSummaries) > 0 {
			source = raw.BundleProductSummaries[0]
			if source.Name == "" {
				source.Name = raw.Name
			}
			if source.ProductURL == "" {
				source.ProductURL = raw.ProductURL
			}
		}
		if source.Name == "" {
			continue
		}
		products = append(products, a.mapProduct(source))
	}

	return base.ApplyLimit(products, limit), nil
}

func (a *PullBearAdapter) mapProduct(source pullBearProduct) types.Product {
	detail := source.Detail

	p := types.Product{
		SourceID:         strconv.FormatInt(source.ID, 10),
		Name:             base.CleanText(source.Name),
		ProductCode:      base.FirstNonEmpty(detail.DisplayReference, detail.Reference),
		URL:              source.ProductURL,
		Description:      base.CleanText(base.FirstNonEmpty(detail.LongDescription, detail.Description)),
		Composition:      joinLabels(detail.Composition),
		CareInstructions: joinLabels(detail.Care),
		Currency:         "EUR",
		Colors:           make([]types.ColorVariant, 0, len(detail.Colors)),
	}

	for _, color := range detail.Colors {
		variant := types.ColorVariant{
			Name:  base.CleanText(color.Name),
			Code:  color.ID,
			Sizes: make([]types.Size, 0, len(color.Sizes)),
		}
		if color.Image != nil && color.Image.URL != "" {
			variant.Images = []string{pullBearImageURL(*color.Image)}
		}

		anyBuyable := false
		for i, size := range color.Sizes {
			availability := pullBearAvailability(size)
			if availability == types.AvailabilityInStock {
				anyBuyable = true
			}
			if size.SKU != 0 && variant.SKU == "" {
				variant.SKU = strconv.FormatInt(size.SKU, 10)
			}
			if cents := parseDecimalCents(size.Price); cents > 0 && p.Price == 0 {
				p.Price = cents
			}
			position := size.Position
			if position == 0 {
				position = i
			}
			variant.Sizes = append(variant.Sizes, types.Size{
				Label:        size.Name,
				Availability: availability,
				Position:     position,
			})
		}

		if anyBuyable || len(color.Sizes) == 0 {
			variant.Availability = types.AvailabilityInStock
		} else {
			variant.Availability = types.AvailabilityOutOfStock
		}

		p.Colors = append(p.Colors, variant)
	}

	return p
}

// pullBearAvailability folds the isBuyable flag and visibility value into the
// canonical enum. A size can be visible yet not buyable (sold out).
func pullBearAvailability(size pullBearSize) types.Availability {
	if !size.IsBuyable {
		return types.AvailabilityOutOfStock
	}
	if size.VisibilityValue == "" {
		return types.AvailabilityInStock
	}
	return base.NormalizeAvailability(size.VisibilityValue)
}

// parseDecimalCents converts a decimal major-unit price to integer cents
func parseDecimalCents(raw string) int64 {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if raw == "" {
		return 0
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return base.ToCents(value)
}

func joinLabels(labels []pullBearLabel) string {
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		if text := base.CleanText(l.Name); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, ", ")
}

func pullBearImageURL(image pullBearImage) string {
	url := image.URL
	if !strings.HasPrefix(url, "http") {
		url = pullBearMediaBaseURL + url
	}
	if image.Timestamp != "" {
		url += "?t=" + image.Timestamp
	}
	return url
}
