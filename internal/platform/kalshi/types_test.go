package kalshi

import "testing"

func TestYesPrice(t *testing.T) {
	tests := []struct {
		name string
		m    APIMarket
		want float64
	}{
		{"bid/ask midpoint", APIMarket{YesBid: 66, YesAsk: 68}, 67},
		{"ask only", APIMarket{YesAsk: 70}, 70},
		{"bid only", APIMarket{YesBid: 64}, 64},
		{"last trade fallback", APIMarket{LastPrice: 55}, 55},
		{"no quotes", APIMarket{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.YesPrice(); got != tt.want {
				t.Errorf("YesPrice = %g, want %g", got, tt.want)
			}
		})
	}
}
