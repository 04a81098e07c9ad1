// Package similarity scores how alike two codings are, on a scale from 0 (nothing in common) to 1 (identical).
package similarity

import (
	"github.com/mistral-io/phaseanalysis/pkg/coding"
)

// EditDistance returns the Levenshtein distance between a and b: the minimum number of single symbol
// insertions, deletions and substitutions turning a into b.
func EditDistance(a, b coding.Coding) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	if len(b) == 0 {
		return len(a)
	}
	previous := make([]int, len(b)+1)
	current := make([]int, len(b)+1)
	for j := range previous {
		previous[j] = j
	}
	for i := 1; i <= len(a); i++ {
		current[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			current[j] = min(previous[j]+1, current[j-1]+1, previous[j-1]+cost)
		}
		previous, current = current, previous
	}
	return previous[len(b)]
}

// Similarity1D is one minus the edit distance normalised by the longer of the two codings.
// Two empty codings are identical and score 1.
func Similarity1D(a, b coding.Coding) float64 {
	longest := max(len(a), len(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(EditDistance(a, b))/float64(longest)
}

// Similarity2D compares two multi-channel codings channel by channel.  Channels are paired by position up to
// the shorter of the two lists and the summed Similarity1D is divided by len(as), so channels missing from bs
// count as zero similarity while surplus channels in bs are ignored.  If as is empty the result is 1 when bs is
// also empty and 0 otherwise.
func Similarity2D(as, bs []coding.Coding) float64 {
	if len(as) == 0 {
		if len(bs) == 0 {
			return 1
		}
		return 0
	}
	sum := 0.0
	for k := 0; k < min(len(as), len(bs)); k++ {
		sum += Similarity1D(as[k], bs[k])
	}
	return sum / float64(len(as))
}
