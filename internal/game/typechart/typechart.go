// Package typechart holds the elemental type-effectiveness table.
package typechart

import "slices"

// Type is an elemental type key.
type Type string

const (
	Normal   Type = "normal"
	Fire     Type = "fire"
	Water    Type = "water"
	Electric Type = "electric"
	Grass    Type = "grass"
	Ice      Type = "ice"
	Fighting Type = "fighting"
	Poison   Type = "poison"
	Ground   Type = "ground"
	Flying   Type = "flying"
	Psychic  Type = "psychic"
	Bug      Type = "bug"
	Rock     Type = "rock"
	Ghost    Type = "ghost"
	Dragon   Type = "dragon"
	Dark     Type = "dark"
	Steel    Type = "steel"
	Fairy    Type = "fairy"
)

var all = []Type{
	Normal, Fire, Water, Electric, Grass, Ice, Fighting, Poison, Ground,
	Flying, Psychic, Bug, Rock, Ghost, Dragon, Dark, Steel, Fairy,
}

// chart lists only non-neutral cells. The table is asymmetric: a row is the
// attacking type, a column the defending type.
var chart = map[Type]map[Type]float64{
	Normal:   {Rock: 0.5, Ghost: 0, Steel: 0.5},
	Fire:     {Fire: 0.5, Water: 0.5, Grass: 2, Ice: 2, Bug: 2, Rock: 0.5, Dragon: 0.5, Steel: 2},
	Water:    {Fire: 2, Water: 0.5, Grass: 0.5, Ground: 2, Rock: 2, Dragon: 0.5},
	Electric: {Water: 2, Electric: 0.5, Grass: 0.5, Ground: 0, Flying: 2, Dragon: 0.5},
	Grass:    {Fire: 0.5, Water: 2, Grass: 0.5, Poison: 0.5, Ground: 2, Flying: 0.5, Bug: 0.5, Rock: 2, Dragon: 0.5, Steel: 0.5},
	Ice:      {Fire: 0.5, Water: 0.5, Grass: 2, Ice: 0.5, Ground: 2, Flying: 2, Dragon: 2, Steel: 0.5},
	Fighting: {Normal: 2, Ice: 2, Poison: 0.5, Flying: 0.5, Psychic: 0.5, Bug: 0.5, Rock: 2, Ghost: 0, Dark: 2, Steel: 2, Fairy: 0.5},
	Poison:   {Grass: 2, Poison: 0.5, Ground: 0.5, Rock: 0.5, Ghost: 0.5, Steel: 0, Fairy: 2},
	Ground:   {Fire: 2, Electric: 2, Grass: 0.5, Poison: 2, Flying: 0, Bug: 0.5, Rock: 2, Steel: 2},
	Flying:   {Electric: 0.5, Grass: 2, Fighting: 2, Bug: 2, Rock: 0.5, Steel: 0.5},
	Psychic:  {Fighting: 2, Poison: 2, Psychic: 0.5, Dark: 0, Steel: 0.5},
	Bug:      {Fire: 0.5, Grass: 2, Fighting: 0.5, Poison: 0.5, Flying: 0.5, Psychic: 2, Ghost: 0.5, Dark: 2, Steel: 0.5, Fairy: 0.5},
	Rock:     {Fire: 2, Ice: 2, Fighting: 0.5, Ground: 0.5, Flying: 2, Bug: 2, Steel: 0.5},
	Ghost:    {Normal: 0, Psychic: 2, Ghost: 2, Dark: 0.5, Steel: 0.5},
	Dragon:   {Dragon: 2, Steel: 0.5, Fairy: 0},
	Dark:     {Fighting: 0.5, Psychic: 2, Ghost: 2, Dark: 0.5, Steel: 0.5, Fairy: 0.5},
	Steel:    {Fire: 0.5, Water: 0.5, Electric: 0.5, Ice: 2, Rock: 2, Steel: 0.5, Fairy: 2},
	Fairy:    {Fire: 0.5, Fighting: 2, Poison: 0.5, Dragon: 2, Dark: 2, Steel: 0.5},
}

// All returns the 18 known types in canonical order.
func All() []Type {
	return slices.Clone(all)
}

// Known reports whether t is one of the 18 types.
func Known(t Type) bool {
	_, ok := chart[t]
	return ok
}

// Matchup returns the multiplier of a single attacking type against a single
// defending type.
//
// Postcondition: unknown types on either side yield 1.
func Matchup(attack, defend Type) float64 {
	row, ok := chart[attack]
	if !ok {
		return 1
	}
	if v, ok := row[defend]; ok {
		return v
	}
	return 1
}

// Effectiveness returns the product of Matchup(attack, d) over every defender
// type.
//
// Postcondition: the result is in {0, 0.25, 0.5, 1, 2, 4}; an empty defender
// list yields 1.
func Effectiveness(attack Type, defenders ...Type) float64 {
	mult := 1.0
	for _, d := range defenders {
		mult *= Matchup(attack, d)
	}
	return mult
}
