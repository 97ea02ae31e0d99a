package condition

import (
	"github.com/cory-johannsen/tamer/internal/game/effect"
	"github.com/cory-johannsen/tamer/internal/game/typechart"
)

// Defaults returns a Registry holding the built-in status definitions. The
// YAML files under content/conditions carry the same data and take precedence
// when loaded.
func Defaults() *Registry {
	reg := NewRegistry()
	for _, d := range []*Def{
		{ID: effect.StatusPoison, Name: "Poisoned", ImmuneTypes: []typechart.Type{typechart.Poison, typechart.Steel}, InflictMessage: "%s was poisoned!"},
		{ID: effect.StatusBadlyPoisoned, Name: "Badly Poisoned", ImmuneTypes: []typechart.Type{typechart.Poison, typechart.Steel}, InflictMessage: "%s was badly poisoned!"},
		{ID: effect.StatusBurn, Name: "Burned", ImmuneTypes: []typechart.Type{typechart.Fire}, InflictMessage: "%s was burned!"},
		{ID: effect.StatusParalysis, Name: "Paralyzed", ImmuneTypes: []typechart.Type{typechart.Electric}, InflictMessage: "%s is paralyzed! It may be unable to move!"},
		{ID: effect.StatusSleep, Name: "Asleep", Duration: "1d3", InflictMessage: "%s fell asleep!"},
		{ID: effect.StatusFreeze, Name: "Frozen", ImmuneTypes: []typechart.Type{typechart.Ice}, InflictMessage: "%s was frozen solid!"},
		{ID: effect.StatusConfusion, Name: "Confused", Volatile: true, Duration: "1d4+1", InflictMessage: "%s became confused!"},
		{ID: effect.StatusFlinch, Name: "Flinched", Volatile: true, InflictMessage: "%s flinched!"},
	} {
		reg.Register(d)
	}
	return reg
}
