package battle

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
)

// Phase is the battle's discrete state, polled by presentation to pick the
// interaction surface.
type Phase string

const (
	PhaseStart          Phase = "start"
	PhaseTrainerSelect  Phase = "trainer_select"
	PhaseCreatureSelect Phase = "creature_select"
	PhaseResolution     Phase = "resolution"
	PhaseVictory        Phase = "victory"
	PhaseDefeat         Phase = "defeat"
	PhaseFled           Phase = "fled"
)

// Terminal reports whether no further transitions leave p.
func (p Phase) Terminal() bool {
	return p == PhaseVictory || p == PhaseDefeat || p == PhaseFled
}

// Phase transition events.
const (
	evTrainerTurn  = "trainer_turn"
	evCreatureTurn = "creature_turn"
	evResolve      = "resolve"
	evWin          = "win"
	evLose         = "lose"
	evFlee         = "flee"
)

func newPhaseMachine() *fsm.FSM {
	return fsm.NewFSM(
		string(PhaseStart),
		fsm.Events{
			{Name: evTrainerTurn, Src: []string{string(PhaseStart), string(PhaseResolution)}, Dst: string(PhaseTrainerSelect)},
			{Name: evCreatureTurn, Src: []string{string(PhaseStart), string(PhaseTrainerSelect), string(PhaseResolution)}, Dst: string(PhaseCreatureSelect)},
			{Name: evResolve, Src: []string{string(PhaseTrainerSelect), string(PhaseCreatureSelect)}, Dst: string(PhaseResolution)},
			{Name: evWin, Src: []string{string(PhaseResolution)}, Dst: string(PhaseVictory)},
			{Name: evLose, Src: []string{string(PhaseResolution)}, Dst: string(PhaseDefeat)},
			{Name: evFlee, Src: []string{string(PhaseResolution)}, Dst: string(PhaseFled)},
		},
		fsm.Callbacks{},
	)
}

// transition fires event on the phase machine.
//
// Postcondition: returns an error wrapping ErrInvalidPhase when event is not
// allowed from the current phase.
func (b *Battle) transition(ctx context.Context, event string) error {
	if err := b.phase.Event(ctx, event); err != nil {
		return fmt.Errorf("%w: %s from %s: %v", ErrInvalidPhase, event, b.phase.Current(), err)
	}
	b.logger.Debug("battle phase",
		zapBattle(b),
		zapPhase(Phase(b.phase.Current())),
	)
	return nil
}
