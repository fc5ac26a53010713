package models

type Plan struct {
	Slug                string  `json:"slug"`
	Name                string  `json:"name"`
	MonthlyQuota        int     `json:"monthly_quota"`
	MaxPagesPerDocument int     `json:"max_pages_per_document"`
	MaxFileBytes        int64   `json:"max_file_bytes"`
	PriceUSD            float64 `json:"price_usd"`
	PriceID             string  `json:"-"`
}
