package scoring

import "gonum.org/v1/gonum/floats"

// bucketFractions are the linear positions of the six breakpoints in [min, max].
var bucketFractions = [6]float64{0, 0.2, 0.4, 0.6, 0.8, 1}

// Range is the observed span of a value set and its bucket breakpoints.
type Range struct {
	Min         float64    `json:"min"`
	Max         float64    `json:"max"`
	Breakpoints [6]float64 `json:"breakpoints"`
}

// ScoreRanges holds the independent score and velocity ranges.
type ScoreRanges struct {
	Score    Range `json:"score"`
	Velocity Range `json:"velocity"`
}

// Fallback ranges used when no positive values have been observed.
var (
	DefaultScoreRange = Range{
		Min: 2, Max: 8,
		Breakpoints: [6]float64{2, 3.2, 4.4, 5.6, 6.8, 8},
	}
	DefaultVelocityRange = Range{
		Min: 60, Max: 85,
		Breakpoints: [6]float64{60, 65, 70, 75, 80, 85},
	}
)

// NewRange builds a Range spanning [lo, hi].
func NewRange(lo, hi float64) Range {
	r := Range{Min: lo, Max: hi}
	for i, f := range bucketFractions {
		r.Breakpoints[i] = lo + (hi-lo)*f
	}
	return r
}

// ComputeRanges pools every positive category score and overall into the
// score set and every positive velocity into the velocity set. Zero is the
// no-data sentinel and never moves a boundary.
func ComputeRanges(summaries []PlayerSummary) ScoreRanges {
	var scores, velocities []float64
	for i := range summaries {
		s := &summaries[i]
		for _, v := range s.Scores {
			if v > 0 {
				scores = append(scores, v)
			}
		}
		if s.Overall > 0 {
			scores = append(scores, s.Overall)
		}
		if s.Velocity > 0 {
			velocities = append(velocities, s.Velocity)
		}
	}
	return ScoreRanges{
		Score:    rangeOf(scores, DefaultScoreRange),
		Velocity: rangeOf(velocities, DefaultVelocityRange),
	}
}

func rangeOf(vals []float64, fallback Range) Range {
	if len(vals) == 0 {
		return fallback
	}
	return NewRange(floats.Min(vals), floats.Max(vals))
}
