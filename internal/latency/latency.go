// Package latency reports matching latency statistics over timing
// samples (the harness takes one sample per batch of events), the
// same way the teacher's main.go does with github.com/grd/stat and its
// DurationSlice adapter — relocated out of the core (§7: "The core
// makes no I/O calls" and carries no reporting of its own; §1 treats
// "stdout reporting" as an external collaborator).
package latency

import (
	"time"

	"github.com/grd/stat"
)

// Samples adapts a []time.Duration to stat's Float64Data-shaped
// interface, exactly the role the teacher's DurationSlice plays.
type Samples []time.Duration

func (s Samples) Get(i int) float64 { return float64(s[i]) }
func (s Samples) Len() int          { return len(s) }

// Summary is the mean/standard-deviation pair over all samples that the
// harness prints once at the end of a run.
type Summary struct {
	MeanNanos   float64
	StdDevNanos float64
}

// Summarize computes mean and standard deviation over samples. An
// empty slice reports a zero summary rather than dividing by zero.
func Summarize(samples Samples) Summary {
	if len(samples) == 0 {
		return Summary{}
	}
	mean := stat.Mean(samples)
	return Summary{
		MeanNanos:   mean,
		StdDevNanos: stat.SdMean(samples, mean),
	}
}

func (s Summary) MeanSeconds() float64 { return s.MeanNanos * 1e-9 }
func (s Summary) StdDevSeconds() float64 { return s.StdDevNanos * 1e-9 }
