package polymarket

import (
	"encoding/json"
	"strings"
)

// flexBool unmarshals from JSON bool or string ("true"/"false") so Gamma API
// responses work whether "active" is sent as bool or string.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// APIMarket represents a market as returned by the Polymarket Gamma API.
// Numeric fields arrive as JSON-encoded strings; decoding to usable values is
// the catalog normalizer's job.
type APIMarket struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Slug          string   `json:"slug"`
	Category      string   `json:"category"`
	Active        flexBool `json:"active"`
	Closed        bool     `json:"closed"`
	Outcomes      string   `json:"outcomes"`      // JSON-encoded: e.g. "[\"Yes\",\"No\"]"
	OutcomePrices string   `json:"outcomePrices"` // JSON-encoded: e.g. "[\"0.6\",\"0.4\"]", 0-1 probabilities
	Volume        string   `json:"volume"`
	EndDateISO    string   `json:"end_date_iso"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
}

// Prices decodes the OutcomePrices field into yes/no probabilities on the
// 0-1 scale. ok is false when the field is missing or malformed.
func (m *APIMarket) Prices() (yes, no float64, ok bool) {
	var raw []string
	if err := json.Unmarshal([]byte(m.OutcomePrices), &raw); err != nil || len(raw) < 2 {
		return 0, 0, false
	}
	yes, yesOK := parsePrice(raw[0])
	no, noOK := parsePrice(raw[1])
	return yes, no, yesOK && noOK
}

func parsePrice(s string) (float64, bool) {
	var v float64
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return 0, false
	}
	return v, true
}
