// Package plan holds the read-only plan table and resolves which plan an
// owner is on from the subscription data kept by the billing provider.
package plan

import "github.com/nikhilbhutani/pdfchat/internal/models"

const (
	SlugFree = "free"
	SlugPro  = "pro"

	mib = int64(1) << 20
)

// Table returns the plan catalog. The pro price id comes from configuration
// because it differs between billing test and live mode.
func Table(proPriceID string) []models.Plan {
	return []models.Plan{
		{
			Slug:                SlugFree,
			Name:                "Free",
			MonthlyQuota:        50,
			MaxPagesPerDocument: 50,
			MaxFileBytes:        8 * mib,
			PriceUSD:            0,
		},
		{
			Slug:                SlugPro,
			Name:                "Pro",
			MonthlyQuota:        250,
			MaxPagesPerDocument: 250,
			MaxFileBytes:        32 * mib,
			PriceUSD:            5,
			PriceID:             proPriceID,
		},
	}
}

func bySlug(table []models.Plan, slug string) (models.Plan, bool) {
	for _, p := range table {
		if p.Slug == slug {
			return p, true
		}
	}
	return models.Plan{}, false
}

func byPriceID(table []models.Plan, priceID string) (models.Plan, bool) {
	if priceID == "" {
		return models.Plan{}, false
	}
	for _, p := range table {
		if p.PriceID == priceID {
			return p, true
		}
	}
	return models.Plan{}, false
}

// MaxFileBytes is the largest upload any plan in table admits.
func MaxFileBytes(table []models.Plan) int64 {
	var largest int64
	for _, p := range table {
		if p.MaxFileBytes > largest {
			largest = p.MaxFileBytes
		}
	}
	return largest
}
