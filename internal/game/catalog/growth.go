package catalog

import "fmt"

// MaxLevel is the highest level a creature can reach.
const MaxLevel = 100

// Growth rate ids.
const (
	GrowthSlow        = 1
	GrowthMedium      = 2
	GrowthFast        = 3
	GrowthMediumSlow  = 4
	GrowthErratic     = 5
	GrowthFluctuating = 6

	// DefaultGrowthRate applies to species that list none or an unknown id.
	DefaultGrowthRate = GrowthMediumSlow
)

// Growth maps (growth rate, level) to the cumulative experience required to
// reach that level.
//
// Invariant: every curve has MaxLevel+1 entries (index = level, index 0
// unused), table[1] == 0, and values are non-decreasing in level.
type Growth struct {
	curves map[int][]int
}

// NewGrowth returns the built-in formula curves for rate ids 1-6.
func NewGrowth() *Growth {
	g := &Growth{curves: make(map[int][]int)}
	for _, rate := range []int{GrowthSlow, GrowthMedium, GrowthFast, GrowthMediumSlow, GrowthErratic, GrowthFluctuating} {
		g.curves[rate] = buildCurve(func(n int) int { return formula(rate, n) })
	}
	return g
}

// GrowthRow is one explicit table entry, as found in growth.yaml.
type GrowthRow struct {
	GrowthRate int `yaml:"growth_rate"`
	Level      int `yaml:"level"`
	Experience int `yaml:"experience"`
}

// Override replaces curves with explicit rows. Levels missing from a rate's
// rows keep the previous curve value.
//
// Postcondition: the affected curves remain non-decreasing or an error is returned.
func (g *Growth) Override(rows []GrowthRow) error {
	for _, r := range rows {
		if r.Level < 1 || r.Level > MaxLevel {
			return fmt.Errorf("growth rate %d: level %d out of range", r.GrowthRate, r.Level)
		}
		curve, ok := g.curves[r.GrowthRate]
		if !ok {
			curve = make([]int, MaxLevel+1)
			g.curves[r.GrowthRate] = curve
		}
		curve[r.Level] = r.Experience
	}
	for rate, curve := range g.curves {
		for lvl := 2; lvl <= MaxLevel; lvl++ {
			if curve[lvl] < curve[lvl-1] {
				return fmt.Errorf("growth rate %d: experience decreases at level %d", rate, lvl)
			}
		}
	}
	return nil
}

func (g *Growth) curve(rate int) []int {
	if c, ok := g.curves[rate]; ok {
		return c
	}
	return g.curves[DefaultGrowthRate]
}

// ExperienceForLevel returns the cumulative experience for level.
//
// Postcondition: level is clamped to [1, MaxLevel]; unknown rates use
// DefaultGrowthRate.
func (g *Growth) ExperienceForLevel(rate, level int) int {
	level = max(1, min(MaxLevel, level))
	return g.curve(rate)[level]
}

// LevelForExperience returns the highest level whose threshold exp meets.
//
// Postcondition: result is in [1, MaxLevel].
func (g *Growth) LevelForExperience(rate, exp int) int {
	c := g.curve(rate)
	level := 1
	for lvl := 1; lvl <= MaxLevel; lvl++ {
		if exp < c[lvl] {
			break
		}
		level = lvl
	}
	return level
}

func buildCurve(f func(n int) int) []int {
	c := make([]int, MaxLevel+1)
	for n := 2; n <= MaxLevel; n++ {
		c[n] = max(c[n-1], f(n))
	}
	return c
}

func formula(rate, n int) int {
	cube := n * n * n
	switch rate {
	case GrowthSlow:
		return 5 * cube / 4
	case GrowthMedium:
		return cube
	case GrowthFast:
		return 4 * cube / 5
	case GrowthErratic:
		switch {
		case n < 50:
			return cube * (100 - n) / 50
		case n < 68:
			return cube * (150 - n) / 100
		case n < 98:
			return cube * ((1911 - 10*n) / 3) / 500
		default:
			return cube * (160 - n) / 100
		}
	case GrowthFluctuating:
		switch {
		case n < 15:
			return cube * ((n+1)/3 + 24) / 50
		case n < 36:
			return cube * (n + 14) / 50
		default:
			return cube * (n/2 + 32) / 50
		}
	}
	return max(0, 6*cube/5-15*n*n+100*n-140)
}
