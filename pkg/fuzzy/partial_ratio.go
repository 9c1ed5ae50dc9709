package fuzzy

import (
	"math"

	"github.com/pmezard/go-difflib/difflib"
)

// PartialRatio scores (0-100) how well the shorter string appears as a fragment
// of the longer one. The shorter string is aligned against every matching block
// of the longer string and the best aligned window wins.
func PartialRatio(a, b string) int {
	ra, rb := runes(a), runes(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	shorter, longer := ra, rb
	if len(ra) > len(rb) {
		shorter, longer = rb, ra
	}

	m := difflib.NewMatcher(shorter, longer)

	best := 0.0
	for _, block := range m.GetMatchingBlocks() {
		start := block.B - block.A
		if start < 0 {
			start = 0
		}
		end := start + len(shorter)
		if end > len(longer) {
			end = len(longer)
		}

		window := difflib.NewMatcher(shorter, longer[start:end])
		r := window.Ratio()
		if r > 0.995 {
			return 100
		}
		if r > best {
			best = r
		}
	}

	return int(math.RoundToEven(100 * best))
}

// Ratio is the plain SequenceMatcher similarity of two strings on a 0-100 scale.
func Ratio(a, b string) int {
	ra, rb := runes(a), runes(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	return int(math.RoundToEven(100 * difflib.NewMatcher(ra, rb).Ratio()))
}

// runes splits s into single-character elements for the matcher.
func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
