// Package phases isolates the I/O phases of a job and compares jobs phase by phase.
package phases

import (
	"github.com/mistral-io/phaseanalysis/internal/similarity"
	"github.com/mistral-io/phaseanalysis/pkg/coding"
)

// DetectFunc splits an activity coding into its phases.
type DetectFunc func(abs coding.Coding) []coding.Coding

// SimilarityFunc scores two jobs by their phases.  Implementations must be safe for concurrent use.
type SimilarityFunc func(pa, pb []coding.Coding) float64

// Detector finds phases in an activity coding.  A phase is a maximal run of non-zero symbols; zero symbols
// are idle time buckets separating phases.  Runs shorter than the minimum phase length are treated as noise.
type Detector struct {
	minPhaseLength int
}

func NewDetector(minPhaseLength int) *Detector {
	if minPhaseLength < 1 {
		minPhaseLength = 1
	}
	return &Detector{minPhaseLength: minPhaseLength}
}

// Detect returns the phases of abs in order of occurrence.  The returned codings alias abs.
func (d *Detector) Detect(abs coding.Coding) []coding.Coding {
	var result []coding.Coding
	start := -1
	for i, v := range abs {
		if v != 0 {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			result = d.appendPhase(result, abs[start:i:i])
			start = -1
		}
	}
	if start >= 0 {
		result = d.appendPhase(result, abs[start:len(abs):len(abs)])
	}
	return result
}

func (d *Detector) appendPhase(phases []coding.Coding, phase coding.Coding) []coding.Coding {
	if len(phase) < d.minPhaseLength {
		return phases
	}
	return append(phases, phase)
}

// JobSimilarity matches every phase of each job with its most similar phase in the other job and returns the
// mean of those best matches, taken over the phases of both jobs.  The result is symmetric and lies in [0,1].
// Two jobs without phases score 1; a job without phases scores 0 against one with phases.
func JobSimilarity(pa, pb []coding.Coding) float64 {
	total := len(pa) + len(pb)
	if total == 0 {
		return 1
	}
	if len(pa) == 0 || len(pb) == 0 {
		return 0
	}
	return (sumBestMatches(pa, pb) + sumBestMatches(pb, pa)) / float64(total)
}

func sumBestMatches(from, to []coding.Coding) float64 {
	sum := 0.0
	for _, p := range from {
		best := 0.0
		for _, q := range to {
			if s := similarity.Similarity1D(p, q); s > best {
				best = s
				if best == 1 {
					break
				}
			}
		}
		sum += best
	}
	return sum
}
