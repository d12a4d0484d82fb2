package search

import (
	"strings"
	"unicode"
)

// Trigrams returns the set of trigrams pg_trgm would extract from s: each
// alphanumeric word is lowercased and padded with two leading blanks and one
// trailing blank before being cut into three-rune windows.
func Trigrams(s string) map[string]struct{} {
	set := make(map[string]struct{}, len(s))
	for _, w := range words(s) {
		addWordTrigrams(set, w)
	}
	return set
}

// WordTrigrams returns one trigram set per word of s, in text order.
func WordTrigrams(s string) []map[string]struct{} {
	ws := words(s)
	out := make([]map[string]struct{}, len(ws))
	for i, w := range ws {
		out[i] = make(map[string]struct{}, len([]rune(w))+2)
		addWordTrigrams(out[i], w)
	}
	return out
}

func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func addWordTrigrams(set map[string]struct{}, w string) {
	padded := []rune("  " + w + " ")
	for i := 0; i+3 <= len(padded); i++ {
		set[string(padded[i:i+3])] = struct{}{}
	}
}

// WordSimilarity is pg_trgm's strict_word_similarity of terms against text:
// the best trigram similarity between terms and any run of consecutive
// words in text. Terms found verbatim inside a long text score 1.
func WordSimilarity(terms, text string) float64 {
	return BestExtent(Trigrams(terms), WordTrigrams(text))
}

// BestExtent is WordSimilarity over precomputed trigram sets.
func BestExtent(query map[string]struct{}, text []map[string]struct{}) float64 {
	if len(query) == 0 {
		return 0
	}
	q := float64(len(query))

	best := 0.0
	for i := range text {
		// A run starting on a word with no shared trigram is beaten by the
		// same run without that word.
		if !overlaps(query, text[i]) {
			continue
		}
		seen := make(map[string]struct{})
		shared := 0
		for j := i; j < len(text); j++ {
			for t := range text[j] {
				if _, dup := seen[t]; dup {
					continue
				}
				seen[t] = struct{}{}
				if _, ok := query[t]; ok {
					shared++
				}
			}
			if sim := float64(shared) / (q + float64(len(seen)-shared)); sim > best {
				best = sim
			}
			// Longer runs are bounded by q/|run|.
			if q/float64(len(seen)) <= best {
				break
			}
		}
		if best >= 1 {
			return 1
		}
	}
	return best
}

func overlaps(a, b map[string]struct{}) bool {
	for t := range b {
		if _, ok := a[t]; ok {
			return true
		}
	}
	return false
}
