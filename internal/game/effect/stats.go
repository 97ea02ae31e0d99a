// Package effect holds the pure rules of battle effects: stat stages, major and
// volatile statuses, status damage, the per-turn status gates, and the
// heuristic that turns move description text into structured effects.
package effect

import "fmt"

// Stat names a creature statistic.
type Stat string

const (
	HP       Stat = "hp"
	Atk      Stat = "atk"
	Def      Stat = "def"
	SpAtk    Stat = "spAtk"
	SpDef    Stat = "spDef"
	Speed    Stat = "speed"
	Accuracy Stat = "accuracy"
	Evasion  Stat = "evasion"
)

// CoreStats lists the six stats carried by Stats, in canonical order.
var CoreStats = []Stat{HP, Atk, Def, SpAtk, SpDef, Speed}

var statDisplay = map[Stat]string{
	HP:       "HP",
	Atk:      "Attack",
	Def:      "Defense",
	SpAtk:    "Sp. Atk",
	SpDef:    "Sp. Def",
	Speed:    "Speed",
	Accuracy: "Accuracy",
	Evasion:  "Evasion",
}

// DisplayName returns the battle-log name of s.
func (s Stat) DisplayName() string {
	if n, ok := statDisplay[s]; ok {
		return n
	}
	return string(s)
}

// ParseStat converts a content key into a Stat.
func ParseStat(s string) (Stat, error) {
	st := Stat(s)
	if _, ok := statDisplay[st]; !ok {
		return "", fmt.Errorf("effect: unknown stat %q", s)
	}
	return st, nil
}

// Stats is the six-stat block of a creature or trainer.
type Stats struct {
	HP    int `yaml:"hp" json:"hp"`
	Atk   int `yaml:"atk" json:"atk"`
	Def   int `yaml:"def" json:"def"`
	SpAtk int `yaml:"spAtk" json:"spAtk"`
	SpDef int `yaml:"spDef" json:"spDef"`
	Speed int `yaml:"speed" json:"speed"`
}

// Get returns the value of stat. Accuracy and evasion are not part of the
// block and read as 0.
func (s Stats) Get(stat Stat) int {
	switch stat {
	case HP:
		return s.HP
	case Atk:
		return s.Atk
	case Def:
		return s.Def
	case SpAtk:
		return s.SpAtk
	case SpDef:
		return s.SpDef
	case Speed:
		return s.Speed
	}
	return 0
}

// Add returns a copy of s with n added to stat.
func (s Stats) Add(stat Stat, n int) Stats {
	switch stat {
	case HP:
		s.HP += n
	case Atk:
		s.Atk += n
	case Def:
		s.Def += n
	case SpAtk:
		s.SpAtk += n
	case SpDef:
		s.SpDef += n
	case Speed:
		s.Speed += n
	}
	return s
}

// Plus returns the field-wise sum of s and o.
func (s Stats) Plus(o Stats) Stats {
	return Stats{
		HP:    s.HP + o.HP,
		Atk:   s.Atk + o.Atk,
		Def:   s.Def + o.Def,
		SpAtk: s.SpAtk + o.SpAtk,
		SpDef: s.SpDef + o.SpDef,
		Speed: s.Speed + o.Speed,
	}
}
