package dedup

import (
	"strings"
)

const minTokenLen = 3

type TokenSet map[string]struct{}

// Tokens returns the distinct lower-case alphanumeric tokens of s longer than
// two characters.
func Tokens(s string) TokenSet {
	norm := NormalizeText(s)
	fields := strings.FieldsFunc(norm, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	out := make(TokenSet, len(fields))
	for _, f := range fields {
		if len(f) >= minTokenLen {
			out[f] = struct{}{}
		}
	}
	return out
}

// Similarity is the Jaccard index of the token sets of a and b. It is 0 when
// either side has no tokens.
func Similarity(a, b string) float64 {
	return jaccard(Tokens(a), Tokens(b))
}

func jaccard(a, b TokenSet) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	inter := 0
	for t := range small {
		if _, ok := large[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
