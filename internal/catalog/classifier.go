package catalog

import (
	"strings"
	"unicode"

	"github.com/mkozera/arbfinder/internal/domain"
)

// Classifier assigns a shared-taxonomy category to a market title. Pluggable
// so the keyword heuristic can be swapped for a real text classifier without
// touching the matcher or ranker.
type Classifier interface {
	Classify(title string) domain.Category
}

// KeywordClassifier categorizes titles by matching keywords against whole
// title tokens. Categories are checked in a fixed order; the first hit wins.
type KeywordClassifier struct {
	keywords []categoryKeywords
}

type categoryKeywords struct {
	category domain.Category
	words    []string
}

// NewKeywordClassifier creates a classifier with the default keyword table.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		keywords: []categoryKeywords{
			{domain.CategoryElections, []string{
				"election", "president", "senate", "congress", "governor",
				"democrat", "republican", "primary", "ballot", "electoral",
				"nominee", "vote", "mayor", "parliament",
			}},
			{domain.CategoryCrypto, []string{
				"bitcoin", "btc", "ethereum", "eth", "solana", "crypto",
				"token", "blockchain", "defi", "stablecoin", "dogecoin",
			}},
			{domain.CategorySports, []string{
				"nfl", "nba", "mlb", "nhl", "super bowl", "world cup",
				"championship", "playoff", "game", "match", "win the",
				"olympics", "ufc", "grand slam",
			}},
			{domain.CategoryTech, []string{
				"openai", "gpt", "apple", "google", "microsoft", "tesla",
				"spacex", "nvidia", "iphone", "launch", "release",
				"artificial intelligence", "ai",
			}},
		},
	}
}

// Classify returns the category whose keyword list first matches the title,
// falling back to "other". Single-word keywords must equal a whole title
// token so short ones like "eth" or "ai" cannot fire inside unrelated words;
// multi-word keywords match on token boundaries.
func (kc *KeywordClassifier) Classify(title string) domain.Category {
	folded := foldTitle(title)
	padded := " " + folded + " "

	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(folded) {
		tokens[tok] = struct{}{}
	}

	for _, ck := range kc.keywords {
		for _, w := range ck.words {
			if strings.ContainsRune(w, ' ') {
				if strings.Contains(padded, " "+w+" ") {
					return ck.category
				}
				continue
			}
			if _, ok := tokens[w]; ok {
				return ck.category
			}
		}
	}
	return domain.CategoryOther
}

// foldTitle lowercases the title and collapses every non-alphanumeric run
// into a single space, so punctuation never hides a token boundary.
func foldTitle(title string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, title)
	return strings.Join(strings.Fields(mapped), " ")
}

// NormalizeCategory maps a platform-native category label onto the shared
// taxonomy; unknown labels fall through to the title classifier.
func NormalizeCategory(label string, title string, classifier Classifier) domain.Category {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "politics", "elections", "election", "us-current-affairs":
		return domain.CategoryElections
	case "crypto", "cryptocurrency":
		return domain.CategoryCrypto
	case "sports", "sport":
		return domain.CategorySports
	case "tech", "technology", "science and technology", "ai":
		return domain.CategoryTech
	}
	return classifier.Classify(title)
}

// Compile-time interface check.
var _ Classifier = (*KeywordClassifier)(nil)
