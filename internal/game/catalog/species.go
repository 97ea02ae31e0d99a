package catalog

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/tamer/internal/game/effect"
	"github.com/cory-johannsen/tamer/internal/game/typechart"
)

// Learn methods.
const (
	MethodLevelUp = "level-up"
	MethodMachine = "machine"
	MethodTutor   = "tutor"
	MethodEgg     = "egg"
)

// SkillSlot pins a learnable move to a move node of the skill tree.
type SkillSlot struct {
	Branch effect.Stat `yaml:"branch"`
	Index  int         `yaml:"index"`
}

// LearnableMove is one entry of a species' move pool.
type LearnableMove struct {
	MoveID string
	Level  int
	Method string
	Slot   *SkillSlot
}

// Species is an immutable catalog species.
type Species struct {
	ID             string
	DexNumber      int
	Name           string
	Description    string
	Types          []typechart.Type
	BaseStats      effect.Stats
	CaptureRate    int
	ExpYield       int
	GrowthRate     int
	LearnableMoves []LearnableMove
}

// LevelUpMoves returns the level-up entries of the move pool, in content order.
func (s *Species) LevelUpMoves() []LearnableMove {
	var out []LearnableMove
	for _, lm := range s.LearnableMoves {
		if lm.Method == MethodLevelUp {
			out = append(out, lm)
		}
	}
	return out
}

// HasType reports whether the species carries ty.
func (s *Species) HasType(ty typechart.Type) bool {
	for _, t := range s.Types {
		if t == ty {
			return true
		}
	}
	return false
}

type learnRecord struct {
	Name   string     `yaml:"name"`
	Level  int        `yaml:"level"`
	Method string     `yaml:"method"`
	Slot   *SkillSlot `yaml:"slot"`
}

type speciesRecord struct {
	ID          string        `yaml:"id"`
	DexNumber   int           `yaml:"dex_number"`
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Types       []string      `yaml:"types"`
	BaseStats   effect.Stats  `yaml:"base_stats"`
	CaptureRate int           `yaml:"capture_rate"`
	ExpYield    int           `yaml:"exp_yield"`
	GrowthRate  int           `yaml:"growth_rate"`
	Moves       []learnRecord `yaml:"moves"`
}

// toSpecies validates and converts a raw record. Move references are checked
// later, once every move file is loaded.
func (r speciesRecord) toSpecies() (*Species, error) {
	var errs []string
	name := r.Name
	id := strings.ToLower(r.ID)
	if id == "" {
		id = strings.ToLower(name)
	}
	if id == "" {
		return nil, fmt.Errorf("species must have an id or name")
	}
	if len(r.Types) < 1 || len(r.Types) > 2 {
		errs = append(errs, fmt.Sprintf("must have 1 or 2 types, got %d", len(r.Types)))
	}
	types := make([]typechart.Type, 0, len(r.Types))
	for _, t := range r.Types {
		ty := typechart.Type(strings.ToLower(t))
		if !typechart.Known(ty) {
			errs = append(errs, fmt.Sprintf("unknown type %q", t))
		}
		types = append(types, ty)
	}
	if r.BaseStats.HP <= 0 {
		errs = append(errs, "base_stats.hp must be > 0")
	}
	moves := make([]LearnableMove, 0, len(r.Moves))
	for _, m := range r.Moves {
		method := m.Method
		if method == "" {
			method = MethodLevelUp
		}
		if m.Slot != nil && !isBranch(m.Slot.Branch) {
			errs = append(errs, fmt.Sprintf("move %q: slot branch %q is not a skill branch", m.Name, m.Slot.Branch))
		}
		moves = append(moves, LearnableMove{MoveID: NormalizeMoveID(m.Name), Level: m.Level, Method: method, Slot: m.Slot})
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("species %q: %s", id, strings.Join(errs, "; "))
	}
	if name == "" {
		name = DisplayName(id)
	}
	expYield := r.ExpYield
	if expYield <= 0 {
		expYield = 50
	}
	growth := r.GrowthRate
	if growth == 0 {
		growth = DefaultGrowthRate
	}
	return &Species{
		ID:             id,
		DexNumber:      r.DexNumber,
		Name:           name,
		Description:    r.Description,
		Types:          types,
		BaseStats:      r.BaseStats,
		CaptureRate:    r.CaptureRate,
		ExpYield:       expYield,
		GrowthRate:     growth,
		LearnableMoves: moves,
	}, nil
}

func isBranch(s effect.Stat) bool {
	for _, b := range effect.CoreStats {
		if b == s {
			return true
		}
	}
	return false
}
