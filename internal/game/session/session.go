// Package session is the top-level controller for one player: it owns the
// trainer, the inventory and at most one active battle, and persists the
// trainer through a SaveRepository.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tamer/internal/game/battle"
	"github.com/cory-johannsen/tamer/internal/game/creature"
	"github.com/cory-johannsen/tamer/internal/game/enemy"
	"github.com/cory-johannsen/tamer/internal/game/inventory"
	"github.com/cory-johannsen/tamer/internal/game/trainer"
)

// Session errors.
var (
	ErrNoActiveBattle = errors.New("no active battle")
	ErrBattleActive   = errors.New("a battle is in progress")
	ErrNoRepository   = errors.New("session has no save repository")
)

// SaveRepository persists and restores a trainer together with its inventory.
type SaveRepository interface {
	Save(ctx context.Context, tr *trainer.Trainer, inv *inventory.Inventory) error
	Load(ctx context.Context, trainerID string) (*trainer.Trainer, *inventory.Inventory, error)
}

// Session owns one player's trainer, inventory and current battle.
//
// Session is safe for concurrent use. Its mutex guards which battle is
// current; the battle serializes its own steps.
type Session struct {
	mu        sync.Mutex
	deps      battle.Deps
	repo      SaveRepository
	logger    *zap.Logger
	feed      *Feed
	trainer   *trainer.Trainer
	inventory *inventory.Inventory
	battle    *battle.Battle
}

// New creates a session for tr and inv.
//
// Precondition: deps.Factory and deps.Roller must be non-nil; tr and inv must
// be non-nil. repo may be nil, in which case Save and Load fail with
// ErrNoRepository.
func New(deps battle.Deps, tr *trainer.Trainer, inv *inventory.Inventory, repo SaveRepository) (*Session, error) {
	if deps.Factory == nil || deps.Roller == nil {
		return nil, errors.New("session: factory and roller are required")
	}
	if tr == nil || inv == nil {
		return nil, errors.New("session: trainer and inventory are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		deps:      deps,
		repo:      repo,
		logger:    logger,
		feed:      NewFeed(DefaultFeedBuffer),
		trainer:   tr,
		inventory: inv,
	}, nil
}

// NewGame creates a session with a fresh trainer holding starterSpecies and
// the default inventory.
func NewGame(deps battle.Deps, name, starterSpecies string, repo SaveRepository) (*Session, error) {
	tr, err := trainer.New(name, starterSpecies, deps.Factory)
	if err != nil {
		return nil, fmt.Errorf("new game: %w", err)
	}
	return New(deps, tr, inventory.NewDefault(), repo)
}

// Trainer returns the session's trainer.
func (s *Session) Trainer() *trainer.Trainer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trainer
}

// Inventory returns the session's inventory.
func (s *Session) Inventory() *inventory.Inventory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inventory
}

// Updates returns the channel battle snapshots are published on.
func (s *Session) Updates() <-chan Update {
	return s.feed.Updates()
}

// StartWildBattle discards any current battle, starts one against wild and
// waits out its start delay.
//
// Postcondition: on success Battle() returns the new battle in a selection
// phase; on ctx cancellation the battle stays current in PhaseStart.
func (s *Session) StartWildBattle(ctx context.Context, wild []*creature.Creature) (*battle.Battle, error) {
	return s.start(ctx, func(b *battle.Battle) error { return b.StartWild(wild) })
}

// StartTrainerBattle discards any current battle and starts one against e.
func (s *Session) StartTrainerBattle(ctx context.Context, e *enemy.Trainer) (*battle.Battle, error) {
	return s.start(ctx, func(b *battle.Battle) error { return b.StartTrainer(e) })
}

func (s *Session) start(ctx context.Context, begin func(*battle.Battle) error) (*battle.Battle, error) {
	s.mu.Lock()
	b, err := battle.New(s.deps, s.trainer, s.inventory)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if err := begin(b); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if s.battle != nil && s.battle.Active() {
		s.logger.Info("discarding unfinished battle", zap.String("battle", s.battle.ID()))
	}
	s.battle = b
	s.mu.Unlock()

	s.publish(b)
	if err := b.Begin(ctx); err != nil {
		return b, err
	}
	s.publish(b)
	return b, nil
}

// Battle returns the current battle.
//
// Postcondition: returns ErrNoActiveBattle when none has been started or
// the last one was ended.
func (s *Session) Battle() (*battle.Battle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.battle == nil {
		return nil, ErrNoActiveBattle
	}
	return s.battle, nil
}

// ExecuteTurn resolves the current battle's turn and publishes the result.
func (s *Session) ExecuteTurn(ctx context.Context) error {
	b, err := s.Battle()
	if err != nil {
		return err
	}
	if err := b.ExecuteTurn(ctx); err != nil {
		return err
	}
	s.publish(b)
	return nil
}

// EndBattle drops the current battle, finished or not.
func (s *Session) EndBattle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.battle = nil
}

func (s *Session) publish(b *battle.Battle) {
	u := Update{
		BattleID: b.ID(),
		Turn:     b.Turn(),
		Phase:    b.Phase(),
		Log:      b.Log(),
		Events:   b.DrainEvents(),
	}
	if err := s.feed.Publish(u); err != nil {
		s.logger.Debug("battle update dropped", zap.String("battle", u.BattleID), zap.Error(err))
	}
}

// Save persists the trainer and inventory.
//
// Precondition: no battle is in progress.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.repo == nil {
		return ErrNoRepository
	}
	if s.battle != nil && s.battle.Active() {
		return ErrBattleActive
	}
	if err := s.repo.Save(ctx, s.trainer, s.inventory); err != nil {
		return fmt.Errorf("saving trainer %s: %w", s.trainer.ID, err)
	}
	s.logger.Info("trainer saved", zap.String("trainer", s.trainer.ID))
	return nil
}

// Load replaces the trainer and inventory with the saved ones for trainerID
// and discards any current battle.
//
// Postcondition: the factory never hands out an id already used by a loaded
// creature.
func (s *Session) Load(ctx context.Context, trainerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.repo == nil {
		return ErrNoRepository
	}
	tr, inv, err := s.repo.Load(ctx, trainerID)
	if err != nil {
		return fmt.Errorf("loading trainer %s: %w", trainerID, err)
	}
	for _, list := range [][]*creature.Creature{tr.Party, tr.Box} {
		for _, c := range list {
			s.deps.Factory.Reserve(c.ID)
		}
	}
	s.trainer = tr
	s.inventory = inv
	s.battle = nil
	s.logger.Info("trainer loaded",
		zap.String("trainer", tr.ID),
		zap.Int("party", len(tr.Party)),
		zap.Int("box", len(tr.Box)),
	)
	return nil
}

// Close closes the update feed.
func (s *Session) Close() error {
	return s.feed.Close()
}
