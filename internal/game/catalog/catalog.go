// Package catalog holds the immutable species and move dictionaries and the
// experience growth curves, loaded once at startup from YAML content.
package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrSpeciesNotFound is returned when a species id does not resolve.
	ErrSpeciesNotFound = errors.New("species not found")
	// ErrMoveNotFound is returned when a move id does not resolve.
	ErrMoveNotFound = errors.New("move not found")
)

// Catalog is the read-only species and move dictionary.
//
// Invariant: every species move reference resolves in moves.
type Catalog struct {
	species map[string]*Species
	moves   map[string]*Move
	growth  *Growth
}

// New builds a Catalog and validates referential integrity.
//
// Precondition: growth may be nil, in which case NewGrowth() is used.
// Postcondition: returns an error naming every species move that does not
// resolve, and every duplicate id.
func New(species []*Species, moves []*Move, growth *Growth) (*Catalog, error) {
	if growth == nil {
		growth = NewGrowth()
	}
	c := &Catalog{
		species: make(map[string]*Species, len(species)),
		moves:   make(map[string]*Move, len(moves)),
		growth:  growth,
	}
	var errs []string
	for _, m := range moves {
		if _, dup := c.moves[m.ID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate move id %q", m.ID))
			continue
		}
		c.moves[m.ID] = m
	}
	for _, s := range species {
		if _, dup := c.species[s.ID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate species id %q", s.ID))
			continue
		}
		c.species[s.ID] = s
		for _, lm := range s.LearnableMoves {
			if _, ok := c.moves[lm.MoveID]; !ok {
				errs = append(errs, fmt.Sprintf("species %q references unknown move %q", s.ID, lm.MoveID))
			}
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("catalog validation failed: %s", strings.Join(errs, "; "))
	}
	return c, nil
}

// Species returns the species with the given id (case-insensitive).
func (c *Catalog) Species(id string) (*Species, error) {
	if s, ok := c.species[strings.ToLower(id)]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrSpeciesNotFound, id)
}

// Move resolves id by normalized key first, then by normalized display name.
func (c *Catalog) Move(id string) (*Move, error) {
	key := NormalizeMoveID(id)
	if m, ok := c.moves[key]; ok {
		return m, nil
	}
	for _, m := range c.moves {
		if NormalizeMoveID(m.Name) == key {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrMoveNotFound, id)
}

// AllSpecies returns every species ordered by dex number, then id.
func (c *Catalog) AllSpecies() []*Species {
	out := make([]*Species, 0, len(c.species))
	for _, s := range c.species {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b *Species) int {
		if a.DexNumber != b.DexNumber {
			return a.DexNumber - b.DexNumber
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// AllMoves returns every move ordered by id.
func (c *Catalog) AllMoves() []*Move {
	out := make([]*Move, 0, len(c.moves))
	for _, m := range c.moves {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b *Move) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// Growth returns the experience curves.
func (c *Catalog) Growth() *Growth {
	return c.growth
}
