package kalshi

// APIMarket represents a market as returned by the Kalshi REST API.
// Prices are already in cents (0-100).
type APIMarket struct {
	Ticker         string  `json:"ticker"`
	EventTicker    string  `json:"event_ticker"`
	Title          string  `json:"title"`
	Subtitle       string  `json:"subtitle"`
	Status         string  `json:"status"` // "open", "closed", "settled"
	YesBid         float64 `json:"yes_bid"`
	YesAsk         float64 `json:"yes_ask"`
	NoBid          float64 `json:"no_bid"`
	NoAsk          float64 `json:"no_ask"`
	LastPrice      float64 `json:"last_price"`
	Volume         int64   `json:"volume"`
	Volume24H      int64   `json:"volume_24h"`
	OpenInterest   int64   `json:"open_interest"`
	ExpirationTime string  `json:"expiration_time"`
	Category       string  `json:"category"`
	CloseTime      string  `json:"close_time"`
	Result         string  `json:"result"` // "yes", "no", "" (unsettled)
}

// YesPrice returns the best available yes price in cents: midpoint of bid/ask
// when both sides are quoted, falling back to last trade price.
func (m *APIMarket) YesPrice() float64 {
	if m.YesBid > 0 && m.YesAsk > 0 {
		return (m.YesBid + m.YesAsk) / 2
	}
	if m.YesAsk > 0 {
		return m.YesAsk
	}
	if m.YesBid > 0 {
		return m.YesBid
	}
	return m.LastPrice
}

// APIErrorResponse represents a Kalshi API error response.
type APIErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
