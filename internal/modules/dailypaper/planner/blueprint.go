package planner

import (
	"math/rand/v2"

	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper/catalog"
)

const (
	fallbackDifficulty = catalog.Moderate
	fallbackFormat     = catalog.SingleCorrect

	highAccuracy     = 75
	lowAccuracy      = 45
	slowResponseSecs = 120
	fastResponseSecs = 45
)

// Rand is the shuffle source. *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

// NewRand returns a seeded PCG generator.
func NewRand(seed uint64) Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

type Slot struct {
	Difficulty catalog.Difficulty `json:"difficulty"`
	Format     catalog.Format     `json:"format"`
}

// SubjectPlan is the shuffled slot plan for one subject.
type SubjectPlan struct {
	Subject      catalog.Subject          `json:"subject"`
	Total        int                      `json:"total"`
	Difficulty   catalog.DifficultyCounts `json:"difficulty"`
	Difficulties []catalog.Difficulty     `json:"difficultyPlan"`
	Formats      []catalog.Format         `json:"formatPlan"`
}

// Slot returns slot i's requirements. Short plans fall back to moderate /
// Single Correct.
func (p SubjectPlan) Slot(i int) Slot {
	s := Slot{Difficulty: fallbackDifficulty, Format: fallbackFormat}
	if i >= 0 && i < len(p.Difficulties) {
		s.Difficulty = p.Difficulties[i]
	}
	if i >= 0 && i < len(p.Formats) {
		s.Format = p.Formats[i]
	}
	return s
}

type Plan struct {
	Subjects []SubjectPlan `json:"subjects"`
}

func (p Plan) Total() int {
	n := 0
	for _, s := range p.Subjects {
		n += s.Total
	}
	return n
}

// Build plans every subject of bp in order. Each subject's difficulty and
// format lists are shuffled independently.
func Build(bp catalog.Blueprint, profile *AdaptiveProfile, rng Rand) Plan {
	plan := Plan{Subjects: make([]SubjectPlan, 0, len(bp.Subjects))}
	for _, sb := range bp.Subjects {
		counts := AdjustDifficulty(sb.Difficulty, sb.Total, profile)
		difficulties := expandDifficulties(counts)
		formats := expandFormats(sb.Formats)
		shuffle(rng, len(difficulties), func(i, j int) { difficulties[i], difficulties[j] = difficulties[j], difficulties[i] })
		shuffle(rng, len(formats), func(i, j int) { formats[i], formats[j] = formats[j], formats[i] })
		plan.Subjects = append(plan.Subjects, SubjectPlan{
			Subject:      sb.Subject,
			Total:        sb.Total,
			Difficulty:   counts,
			Difficulties: difficulties,
			Formats:      formats,
		})
	}
	return plan
}

// AdjustDifficulty applies the adaptive shifts to a base distribution. The
// result is non-negative and always sums to total.
func AdjustDifficulty(base catalog.DifficultyCounts, total int, profile *AdaptiveProfile) catalog.DifficultyCounts {
	next := base
	if profile == nil {
		return next
	}

	if profile.EliteMode {
		next.Hard = percentOf(total, 40)
		next.Easy = max(0, base.Easy-percentOf(total, 15))
		next.Moderate = total - next.Hard - next.Easy
		return rebalance(next, total)
	}

	if acc := profile.OverallAccuracy; acc != nil {
		switch {
		case *acc > highAccuracy:
			shift := max(1, percentOf(total, 10))
			next.Hard += shift
			next.Easy = max(0, next.Easy-shift)
		case *acc < lowAccuracy:
			shift := max(1, percentOf(total, 15))
			next.Easy += shift
			next.Hard = max(0, next.Hard-shift)
		}
	}

	if rt := profile.AverageResponseTimeSeconds; rt != nil {
		if *rt > slowResponseSecs {
			shift := max(1, percentOf(total, 5))
			next.Moderate += shift
			next.Easy = max(0, next.Easy-shift)
		}
		if *rt < fastResponseSecs {
			shift := max(1, percentOf(total, 5))
			next.Hard += shift
			next.Moderate = max(0, next.Moderate-shift)
		}
	}

	next.Moderate += total - next.Total()
	return rebalance(next, total)
}

// rebalance clamps a negative moderate to zero and takes the excess from hard,
// then easy.
func rebalance(d catalog.DifficultyCounts, total int) catalog.DifficultyCounts {
	if d.Moderate < 0 {
		d.Hard += d.Moderate
		d.Moderate = 0
	}
	if d.Hard < 0 {
		d.Easy += d.Hard
		d.Hard = 0
	}
	if d.Easy < 0 {
		d.Easy = 0
	}
	if diff := total - d.Total(); diff != 0 {
		d.Moderate += diff
	}
	return d
}

// percentOf rounds total*pct/100 half up.
func percentOf(total, pct int) int {
	return (total*pct + 50) / 100
}

func expandDifficulties(c catalog.DifficultyCounts) []catalog.Difficulty {
	out := make([]catalog.Difficulty, 0, c.Total())
	for _, e := range []struct {
		d catalog.Difficulty
		n int
	}{{catalog.Easy, c.Easy}, {catalog.Moderate, c.Moderate}, {catalog.Hard, c.Hard}} {
		for i := 0; i < e.n; i++ {
			out = append(out, e.d)
		}
	}
	return out
}

func expandFormats(formats []catalog.FormatCount) []catalog.Format {
	var out []catalog.Format
	for _, f := range formats {
		for i := 0; i < f.Count; i++ {
			out = append(out, f.Format)
		}
	}
	return out
}

// shuffle is a Fisher-Yates shuffle over n elements.
func shuffle(rng Rand, n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		swap(i, j)
	}
}
