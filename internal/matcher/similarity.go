package matcher

import "strings"

// stopwords are dropped before token comparison; they carry no signal about
// which real-world event a title refers to.
var stopwords = map[string]bool{
	"will": true, "the": true, "a": true, "an": true, "of": true,
	"in": true, "on": true, "at": true, "to": true, "by": true,
	"be": true, "is": true, "for": true, "and": true, "or": true,
	"before": true, "after": true, "this": true, "do": true, "does": true,
}

// tokenize lowercases a title, strips punctuation, and drops stopwords.
func tokenize(title string) []string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	fields := strings.Fields(b.String())
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if stopwords[f] {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// TitleSimilarity scores how likely two titles describe the same event on a
// 0-100 scale. The score is the token overlap coefficient
// (|common| / min(|a|,|b|)), with full containment of one normalized title in
// the other treated as a perfect overlap.
func TitleSimilarity(a, b string) float64 {
	ta, tb := tokenize(a), tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	na, nb := strings.Join(ta, " "), strings.Join(tb, " ")
	if na == nb || strings.Contains(na, nb) || strings.Contains(nb, na) {
		return 100
	}

	set := make(map[string]bool, len(ta))
	for _, t := range ta {
		set[t] = true
	}
	common := 0
	seen := make(map[string]bool, len(tb))
	for _, t := range tb {
		if set[t] && !seen[t] {
			common++
			seen[t] = true
		}
	}

	min := len(ta)
	if len(tb) < min {
		min = len(tb)
	}
	return 100 * float64(common) / float64(min)
}
