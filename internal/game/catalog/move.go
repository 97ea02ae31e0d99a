package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cory-johannsen/tamer/internal/game/effect"
	"github.com/cory-johannsen/tamer/internal/game/typechart"
)

// Category is a move's damage class.
type Category string

const (
	Physical Category = "physical"
	Special  Category = "special"
	Status   Category = "status"
)

// Move target keys with engine meaning. Any other key is a single target.
const (
	TargetUser          = "user"
	TargetSelf          = "self"
	TargetAllOpponents  = "all-opponents"
	TargetAllAllies     = "all-allies"
	TargetEntireField   = "entire-field"
	TargetAllOther      = "all-other-pokemon"
	TargetUsersField    = "users-field"
	TargetSelectedOther = "selected-pokemon"
)

// Move is an immutable catalog move.
type Move struct {
	ID           string
	Name         string
	Type         typechart.Type
	Category     Category
	Power        int
	Accuracy     int
	PP           int
	Target       string
	Description  string
	EffectText   string
	EffectChance int
	Effects      []effect.Parsed
}

// IsAreaOfEffect reports whether the move hits every opponent (and so splashes
// onto the opposing trainer at full power).
func (m *Move) IsAreaOfEffect() bool {
	switch m.Target {
	case TargetAllOpponents, TargetEntireField, TargetAllOther, TargetUsersField:
		return true
	}
	return false
}

// moveRecord is the raw shape of a move in content files. Power and accuracy
// arrive as strings because the source data leaves them blank for status moves.
type moveRecord struct {
	Name         string `yaml:"name"`
	Type         string `yaml:"type"`
	Category     string `yaml:"category"`
	Target       string `yaml:"target"`
	Power        string `yaml:"power"`
	Accuracy     string `yaml:"accuracy"`
	PP           int    `yaml:"pp"`
	Description  string `yaml:"description"`
	Effect       string `yaml:"effect"`
	EffectChance string `yaml:"effect_chance"`
}

var idSeparators = regexp.MustCompile(`[-\s]+`)

// NormalizeMoveID converts a move name or key to its catalog id: lowercase,
// with runs of dashes and whitespace replaced by "_".
func NormalizeMoveID(s string) string {
	return idSeparators.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "_")
}

// DisplayName converts a kebab-case key into title-cased words, e.g.
// "thunder-punch" becomes "Thunder Punch".
func DisplayName(key string) string {
	// A Caser is stateful, so each call gets its own.
	caser := cases.Title(language.English)
	words := strings.FieldsFunc(key, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

func deriveCategory(raw string) Category {
	switch strings.ToLower(raw) {
	case "special":
		return Special
	case "status", "no-damage":
		return Status
	}
	return Physical
}

func intOr(raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// toMove derives an engine Move from its raw record.
func (r moveRecord) toMove() (*Move, error) {
	if r.Name == "" {
		return nil, fmt.Errorf("move name must not be empty")
	}
	power, err := intOr(r.Power, 0)
	if err != nil {
		return nil, fmt.Errorf("move %q: power: %w", r.Name, err)
	}
	acc, err := intOr(r.Accuracy, 100)
	if err != nil {
		return nil, fmt.Errorf("move %q: accuracy: %w", r.Name, err)
	}
	chance, err := intOr(r.EffectChance, 100)
	if err != nil {
		return nil, fmt.Errorf("move %q: effect_chance: %w", r.Name, err)
	}
	ty := typechart.Type(strings.ToLower(r.Type))
	if !typechart.Known(ty) {
		return nil, fmt.Errorf("move %q: unknown type %q", r.Name, r.Type)
	}
	target := r.Target
	if target == "" {
		target = TargetSelectedOther
	}
	m := &Move{
		ID:           NormalizeMoveID(r.Name),
		Name:         DisplayName(r.Name),
		Type:         ty,
		Category:     deriveCategory(r.Category),
		Power:        power,
		Accuracy:     acc,
		PP:           r.PP,
		Target:       target,
		Description:  r.Description,
		EffectText:   r.Effect,
		EffectChance: chance,
	}
	m.Effects = effect.ParseDescription(r.Effect, chance, target)
	return m, nil
}
