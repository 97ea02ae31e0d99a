package creature

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tamer/internal/game/catalog"
	"github.com/cory-johannsen/tamer/internal/game/dice"
	"github.com/cory-johannsen/tamer/internal/game/skilltree"
)

const idPrefix = "creature_"

// Factory creates creatures and owns the operations that need the catalog and
// skill tree alongside the creature itself.
type Factory struct {
	catalog *catalog.Catalog
	tree    *skilltree.Tree
	src     dice.Source
	logger  *zap.Logger

	mu     sync.Mutex
	nextID int
}

// NewFactory returns a Factory.
//
// Precondition: cat and src must be non-nil. A nil tree uses skilltree.Default();
// a nil logger is replaced by a no-op logger.
func NewFactory(cat *catalog.Catalog, tree *skilltree.Tree, src dice.Source, logger *zap.Logger) *Factory {
	if tree == nil {
		tree = skilltree.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{catalog: cat, tree: tree, src: src, logger: logger}
}

// Catalog returns the catalog creatures are built from.
func (f *Factory) Catalog() *catalog.Catalog { return f.catalog }

// Tree returns the shared skill tree.
func (f *Factory) Tree() *skilltree.Tree { return f.tree }

func (f *Factory) newID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	return idPrefix + strconv.Itoa(f.nextID)
}

// Reserve advances the id counter past id, so creatures restored from a save
// never collide with freshly created ones.
func (f *Factory) Reserve(id string) {
	n, err := strconv.Atoi(strings.TrimPrefix(id, idPrefix))
	if err != nil || !strings.HasPrefix(id, idPrefix) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID = max(f.nextID, n)
}

// New creates a creature of speciesID at level.
//
// Precondition: speciesID must resolve in the catalog.
// Postcondition: level is clamped to [1, catalog.MaxLevel]; stats equal the
// species base stats; only the root node is unlocked unless wild is true, in
// which case every skill point has been spent on random legal nodes.
func (f *Factory) New(speciesID string, level int, wild bool) (*Creature, error) {
	sp, err := f.catalog.Species(speciesID)
	if err != nil {
		return nil, fmt.Errorf("creating creature: %w", err)
	}
	level = max(1, min(catalog.MaxLevel, level))
	growth := f.catalog.Growth()
	c := &Creature{
		ID:             f.newID(),
		SpeciesID:      sp.ID,
		SpeciesName:    sp.Name,
		Level:          level,
		CurrentHP:      sp.BaseStats.HP,
		MaxHP:          sp.BaseStats.HP,
		Stats:          sp.BaseStats,
		Exp:            growth.ExperienceForLevel(sp.GrowthRate, level),
		ExpToNextLevel: growth.ExperienceForLevel(sp.GrowthRate, level+1),
		Types:          slices.Clone(sp.Types),
		SkillPoints:    skilltree.SkillPointsForLevel(level),
		UnlockedNodes:  newUnlocked(),
	}
	c.Moves = startingMoves(sp, level)
	c.LearnedMoves = slices.Clone(c.Moves)
	if wild {
		f.RandomlyAllocate(c)
	}
	f.logger.Debug("creature created",
		zap.String("id", c.ID),
		zap.String("species", sp.ID),
		zap.Int("level", level),
		zap.Bool("wild", wild),
	)
	return c, nil
}

// startingMoves returns the level-up moves learned at or below level, without
// duplicates, keeping the MaxMoves most recent.
func startingMoves(sp *catalog.Species, level int) []string {
	pool := slices.Clone(sp.LevelUpMoves())
	slices.SortStableFunc(pool, func(a, b catalog.LearnableMove) int { return a.Level - b.Level })
	var moves []string
	for _, lm := range pool {
		if lm.Level > level || slices.Contains(moves, lm.MoveID) {
			continue
		}
		moves = append(moves, lm.MoveID)
	}
	if len(moves) > MaxMoves {
		moves = moves[len(moves)-MaxMoves:]
	}
	return slices.Clip(moves)
}

// RandomlyAllocate spends every skill point by repeatedly picking a uniform
// random node among those CanUnlockNode accepts.
func (f *Factory) RandomlyAllocate(c *Creature) {
	for c.SkillPoints > 0 {
		var candidates []string
		for _, n := range f.tree.Nodes() {
			if f.CanUnlockNode(c, n.ID) {
				candidates = append(candidates, n.ID)
			}
		}
		i := dice.Pick(f.src, len(candidates))
		if i < 0 {
			return
		}
		f.UnlockNode(c, candidates[i])
	}
}

func (f *Factory) species(c *Creature) *catalog.Species {
	sp, err := f.catalog.Species(c.SpeciesID)
	if err != nil {
		f.logger.Warn("creature species missing from catalog", zap.String("id", c.ID), zap.String("species", c.SpeciesID))
		return nil
	}
	return sp
}
