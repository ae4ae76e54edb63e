package brands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/modera/catalog-service/internal/adapters/base"
	"github.com/modera/catalog-service/internal/adapters/config"
	"github.com/modera/catalog-service/internal/http/ratelimit"
	"github.com/modera/catalog-service/internal/types"
)

// zaraCategoryResponse is the category-products envelope returned by the Zara
// API. Prices arrive as integer cents already.
type zaraCategoryResponse struct {
	ProductGroups []struct {
		Elements []struct {
			CommercialComponents []zaraComponent `json:"commercialComponents"`
		} `json:"elements"`
	} `json:"productGroups"`
}

type zaraComponent struct {
	ID          int64       `json:"id"`
	Reference   string      `json:"reference"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       int64       `json:"price"`
	Type        string      `json:"type"`
	Seo         zaraSeo     `json:"seo"`
	Detail      zaraDetail  `json:"detail"`
	Xmedia      []zaraMedia `json:"xmedia"`
}

type zaraSeo struct {
	Keyword      string `json:"keyword"`
	SeoProductID string `json:"seoProductId"`
}

type zaraDetail struct {
	Reference        string      `json:"reference"`
	DisplayReference string      `json:"displayReference"`
	Colors           []zaraColor `json:"colors"`
}

type zaraColor struct {
	ID        string      `json:"id"`
	HexCode   string      `json:"hexCode"`
	Name      string      `json:"name"`
	Reference string      `json:"reference"`
	Price     int64       `json:"price"`
	Sizes     []zaraSize  `json:"sizes"`
	Xmedia    []zaraMedia `json:"xmedia"`
}

type zaraSize struct {
	ID           int64  `json:"id"`
	SKU          int64  `json:"sku"`
	Name         string `json:"name"`
	Availability string `json:"availability"`
	Price        int64  `json:"price"`
	Position     int    `json:"position"`
}

type zaraMedia struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	Timestamp string `json:"timestamp"`
	URL       string `json:"url"`
}

const zaraMediaBaseURL = "https://static.zara.net/photos"

// ZaraAdapter is the source adapter for the Zara catalog API. It consumes a
// fully built category-products URL resolved from the brand's api_config.
type ZaraAdapter struct {
	*base.Adapter
}

// NewZaraAdapter creates a new Zara adapter
func NewZaraAdapter(rateBase ratelimit.Config) *ZaraAdapter {
	brandConfig := config.BrandConfigs[config.BrandZara]
	return &ZaraAdapter{
		Adapter: base.NewAdapter(brandConfig, rateBase),
	}
}

// ScrapeCategoryProducts fetches and normalizes one category worth of products.
// handle must be the fully built category-products URL.
func (a *ZaraAdapter) ScrapeCategoryProducts(ctx context.Context, handle string, limit int) ([]types.Product, error) {
	var envelope zaraCategoryResponse
	if err := a.FetchJSON(ctx, handle, &envelope); err != nil {
		return nil, err
	}

	products := make([]types.Product, 0)
	for _, group := range envelope.ProductGroups {
		for _, element := range group.Elements {
			for _, component := range element.CommercialComponents {
				if component.Name == "" {
					continue
				}
				// Marketing tiles share the envelope with products
				if component.Type != "" && !strings.EqualFold(component.Type, "Product") {
					continue
				}
				products = append(products, a.mapComponent(component))
			}
		}
	}

	return base.ApplyLimit(products, limit), nil
}

func (a *ZaraAdapter) mapComponent(component zaraComponent) types.Product {
	p := types.Product{
		SourceID:    strconv.FormatInt(component.ID, 10),
		Name:        base.CleanText(component.Name),
		Slug:        component.Seo.Keyword,
		ProductCode: base.FirstNonEmpty(component.Detail.DisplayReference, component.Detail.Reference, component.Reference),
		Description: base.CleanText(component.Description),
		Price:       component.Price,
		Currency:    "EUR",
		Colors:      make([]types.ColorVariant, 0, len(component.Detail.Colors)),
	}

	componentImages := zaraImageURLs(component.Xmedia)

	for _, color := range component.Detail.Colors {
		variant := types.ColorVariant{
			Name:         base.CleanText(color.Name),
			Code:         color.ID,
			DisplayColor: color.HexCode,
			SKU:          color.Reference,
			Images:       zaraImageURLs(color.Xmedia),
			Sizes:        make([]types.Size, 0, len(color.Sizes)),
		}
		if color.Price != component.Price {
			variant.Price = color.Price
		}
		if len(variant.Images) == 0 {
			variant.Images = componentImages
		}

		anyInStock := false
		for i, size := range color.Sizes {
			availability := base.NormalizeAvailability(size.Availability)
			if availability == types.AvailabilityInStock {
				anyInStock = true
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

		if anyInStock || len(color.Sizes) == 0 {
			variant.Availability = types.AvailabilityInStock
		} else {
			variant.Availability = types.AvailabilityOutOfStock
		}

		p.Colors = append(p.Colors, variant)
	}

	return p
}

// zaraImageURLs resolves xmedia entries to absolute image URLs
func zaraImageURLs(media []zaraMedia) []string {
	urls := make([]string, 0, len(media))
	for _, m := range media {
		switch {
		case m.URL != "":
			urls = append(urls, m.URL)
		case m.Path != "" && m.Name != "":
			url := fmt.Sprintf("%s%s/%s.jpg", zaraMediaBaseURL, m.Path, m.Name)
			if m.Timestamp != "" {
				url += "?ts=" + m.Timestamp
			}
			urls = append(urls, url)
		}
	}
	return urls
}
