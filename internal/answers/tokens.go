// Package answers resolves values for arbitrary form questions through a
// tiered strategy: fixed rules, then a similarity-indexed cache of prior
// answers, then a generative collaborator. New answers flow back into
// the cache so later runs get cheaper.
package answers

import "strings"

// stopWords are ignored during similarity matching. English plus
// Portuguese, the two locales the bot actually runs against.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true,
	"was": true, "were": true, "be": true, "been": true, "being": true,
	"have": true, "has": true, "had": true, "do": true, "does": true,
	"did": true, "will": true, "would": true, "could": true, "should": true,
	"may": true, "might": true, "shall": true, "can": true, "to": true,
	"of": true, "in": true, "for": true, "on": true, "with": true,
	"at": true, "by": true, "from": true, "as": true, "into": true,
	"about": true, "between": true, "through": true, "after": true,
	"before": true, "above": true, "below": true, "and": true, "or": true,
	"but": true, "not": true, "no": true, "if": true, "then": true,
	"than": true, "that": true, "this": true, "these": true, "those": true,
	"it": true, "its": true, "you": true, "your": true, "we": true,
	"our": true, "um": true, "uma": true, "o": true, "os": true,
	"de": true, "da": true, "das": true, "dos": true, "em": true,
	"na": true, "nas": true, "nos": true, "por": true, "para": true,
	"com": true, "sem": true, "e": true, "ou": true, "mas": true,
	"se": true,
}

// Tokenize lowercases, splits on whitespace, strips non-alphanumeric
// runes per token, and drops single-rune tokens and stop words. The
// result is sorted-insensitive; callers treat it as a set.
func Tokenize(text string) []string {
	set := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		var b strings.Builder
		for _, r := range word {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r > 127 {
				b.WriteRune(r)
			}
		}
		clean := b.String()
		if len([]rune(clean)) > 1 && !stopWords[clean] {
			set[clean] = true
		}
	}
	tokens := make([]string, 0, len(set))
	for t := range set {
		tokens = append(tokens, t)
	}
	return tokens
}

// Similarity is the Jaccard ratio of two token sets: |A∩B| / |A∪B|.
// Zero when either set is empty; symmetric.
func Similarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]bool, len(a))
	for _, t := range a {
		setA[t] = true
	}
	union := make(map[string]bool, len(a)+len(b))
	for _, t := range a {
		union[t] = true
	}
	inter := 0
	for _, t := range b {
		if setA[t] {
			inter++
		}
		union[t] = true
	}
	return float64(inter) / float64(len(union))
}

// charRatio is a character-level similarity: 2·LCS / (len(a)+len(b)),
// computed on lowercased runes. Used to map a cached free-text answer
// onto the closest literal option.
func charRatio(a, b string) float64 {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))
	if len(ra)+len(rb) == 0 {
		return 0
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	lcs := prev[len(rb)]
	return 2 * float64(lcs) / float64(len(ra)+len(rb))
}

// BestOptionMatch maps an answer onto the closest literal option by
// character-level similarity. Returns "" when no option clears the 0.3
// ratio floor.
func BestOptionMatch(answer string, options []string) string {
	best := ""
	bestScore := 0.0
	for _, opt := range options {
		if score := charRatio(answer, opt); score > bestScore {
			bestScore = score
			best = opt
		}
	}
	if bestScore > 0.3 {
		return best
	}
	return ""
}
