package session

import (
	"errors"
	"sync"

	"github.com/cory-johannsen/tamer/internal/game/battle"
)

// Feed errors.
var (
	ErrFeedClosed = errors.New("session feed is closed")
	ErrFeedFull   = errors.New("session feed buffer full")
)

// DefaultFeedBuffer is the update buffer size used when none is given.
const DefaultFeedBuffer = 64

// Update is one snapshot of a battle published after a step, for a
// presentation layer to render.
type Update struct {
	BattleID string
	Turn     int
	Phase    battle.Phase
	Log      []string
	Events   []battle.DamageEvent
}

// Feed routes battle updates to a channel, bridging the session to whatever
// goroutine renders the battle.
type Feed struct {
	updates chan Update
	mu      sync.Mutex
	closed  bool
}

// NewFeed creates an open Feed.
//
// Postcondition: a bufferSize <= 0 uses DefaultFeedBuffer.
func NewFeed(bufferSize int) *Feed {
	if bufferSize <= 0 {
		bufferSize = DefaultFeedBuffer
	}
	return &Feed{updates: make(chan Update, bufferSize)}
}

// Publish enqueues u without blocking.
//
// Postcondition: returns ErrFeedClosed after Close and ErrFeedFull when the
// reader has fallen behind; u is dropped in both cases.
func (f *Feed) Publish(u Update) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrFeedClosed
	}
	select {
	case f.updates <- u:
		return nil
	default:
		return ErrFeedFull
	}
}

// Updates returns the read-only update channel. It is closed by Close.
func (f *Feed) Updates() <-chan Update {
	return f.updates
}

// Close marks the feed closed and closes the update channel. It is idempotent.
func (f *Feed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.closed {
		f.closed = true
		close(f.updates)
	}
	return nil
}

// IsClosed reports whether the feed has been closed.
func (f *Feed) IsClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
