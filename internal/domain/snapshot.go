package domain

import "time"

// Platform identifies the prediction-market venue a snapshot came from.
type Platform string

const (
	PlatformPolymarket Platform = "polymarket"
	PlatformKalshi     Platform = "kalshi"
)

// Category is the shared taxonomy both catalogs are normalized into.
type Category string

const (
	CategoryElections Category = "elections"
	CategoryCrypto    Category = "crypto"
	CategorySports    Category = "sports"
	CategoryTech      Category = "tech"
	CategoryOther     Category = "other"
)

// Categories lists every known category, in display order.
var Categories = []Category{
	CategoryElections,
	CategoryCrypto,
	CategorySports,
	CategoryTech,
	CategoryOther,
}

// MarketSnapshot is the common shape both platforms are normalized into.
// Prices are on a 0-100 cent scale for equivalent "yes"/"no" exposure.
// Snapshots are immutable per fetch cycle and replaced wholesale on refresh.
type MarketSnapshot struct {
	Platform  Platform   `json:"platform"`
	Ticker    string     `json:"ticker"` // Kalshi ticker or Polymarket slug
	Title     string     `json:"title"`
	Category  Category   `json:"category"`
	YesPrice  float64    `json:"yes_price"` // cents, 0-100
	NoPrice   float64    `json:"no_price"`  // cents, 0-100
	Volume    float64    `json:"volume"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// HasPrices reports whether the snapshot carries a usable yes price.
func (s MarketSnapshot) HasPrices() bool {
	return s.YesPrice > 0 && s.YesPrice <= 100
}
