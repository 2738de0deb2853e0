// Package metrics scores predicted answers against gold answers and
// reduces raw run results into per-model summaries.
package metrics

import (
	"strings"
	"unicode"
)

// Normalize lowercases, strips punctuation, removes the articles a/an/the
// and collapses whitespace, matching the usual extractive-QA convention so
// "The Eiffel Tower." and "eiffel tower" compare equal.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(r)
	}
	tokens := strings.Fields(b.String())
	out := tokens[:0]
	for _, tok := range tokens {
		if tok == "a" || tok == "an" || tok == "the" {
			continue
		}
		out = append(out, tok)
	}
	return strings.Join(out, " ")
}

// ExactMatch reports whether the prediction equals the gold answer after
// normalization.
func ExactMatch(pred, gold string) bool {
	return Normalize(pred) == Normalize(gold)
}

// F1 is the token-overlap F1 between prediction and gold after
// normalization. Both empty scores 1; exactly one empty scores 0.
func F1(pred, gold string) float64 {
	p := strings.Fields(Normalize(pred))
	g := strings.Fields(Normalize(gold))
	if len(p) == 0 || len(g) == 0 {
		if len(p) == len(g) {
			return 1
		}
		return 0
	}

	counts := make(map[string]int, len(g))
	for _, tok := range g {
		counts[tok]++
	}
	common := 0
	for _, tok := range p {
		if counts[tok] > 0 {
			counts[tok]--
			common++
		}
	}
	if common == 0 {
		return 0
	}

	precision := float64(common) / float64(len(p))
	recall := float64(common) / float64(len(g))
	return 2 * precision * recall / (precision + recall)
}
