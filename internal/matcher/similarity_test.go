package matcher

import "testing"

func TestTokenize(t *testing.T) {
	got := tokenize("Will the Fed cut rates in March 2026?")
	want := []string{"fed", "cut", "rates", "march", "2026"}
	if len(got) != len(want) {
		t.Fatalf("tokenize = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tokenize = %v, want %v", got, want)
		}
	}
}

func TestTitleSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{
			name: "identical after normalization",
			a:    "Will the Fed cut rates in March?",
			b:    "Fed cut rates March",
			want: 100,
		},
		{
			name: "containment",
			a:    "Bitcoin above $100k",
			b:    "Will Bitcoin be above $100k by December 31?",
			want: 100,
		},
		{
			name: "partial overlap",
			a:    "Fed cut rates March",  // 4 tokens
			b:    "Fed raise rates June", // 4 tokens, 2 common
			want: 50,
		},
		{
			name: "no overlap",
			a:    "Chiefs win Super Bowl",
			b:    "Bitcoin hits ath",
			want: 0,
		},
		{
			name: "empty title",
			a:    "",
			b:    "anything",
			want: 0,
		},
		{
			name: "stopwords only",
			a:    "will the be of",
			b:    "anything",
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TitleSimilarity(tt.a, tt.b); got != tt.want {
				t.Errorf("TitleSimilarity(%q, %q) = %g, want %g", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestTitleSimilaritySymmetric(t *testing.T) {
	a, b := "Fed cut rates in March", "Will the Fed cut interest rates before April?"
	if TitleSimilarity(a, b) != TitleSimilarity(b, a) {
		t.Error("similarity is not symmetric")
	}
}
