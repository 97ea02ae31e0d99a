package command

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/cory-johannsen/tamer/internal/game/battle"
	"github.com/cory-johannsen/tamer/internal/game/creature"
)

// Selection errors.
var (
	// ErrUsage is returned when a command's arguments do not match its usage.
	ErrUsage = errors.New("bad command arguments")
	// ErrWrongPhase is returned when a command is issued in a phase that does
	// not accept it.
	ErrWrongPhase = errors.New("command not available now")
)

// TrainerAction builds the trainer selection for a trainer-category command.
//
// Precondition: cmd must be non-nil.
// Postcondition: returns ErrUsage wrapped with the usage string when args are
// missing or malformed.
func TrainerAction(cmd *Command, args []string) (battle.TrainerAction, error) {
	switch cmd.Handler {
	case HandlerFlee:
		return battle.TrainerAction{Type: battle.TrainerFlee}, nil
	case HandlerCommand:
		return battle.TrainerAction{Type: battle.TrainerCommand}, nil
	case HandlerItem:
		if len(args) < 1 || len(args) > 2 {
			return battle.TrainerAction{}, usage(cmd)
		}
		a := battle.TrainerAction{Type: battle.TrainerItem, ItemID: args[0]}
		if len(args) == 2 {
			a.TargetID = args[1]
		}
		return a, nil
	case HandlerSwitch:
		if len(args) != 1 {
			return battle.TrainerAction{}, usage(cmd)
		}
		slot, err := strconv.Atoi(args[0])
		if err != nil || slot < 1 {
			return battle.TrainerAction{}, usage(cmd)
		}
		return battle.TrainerAction{Type: battle.TrainerSwitch, SwitchIndex: slot - 1}, nil
	case HandlerSkill:
		if len(args) != 1 {
			return battle.TrainerAction{}, usage(cmd)
		}
		return battle.TrainerAction{Type: battle.TrainerSkill, SkillID: args[0]}, nil
	}
	return battle.TrainerAction{}, fmt.Errorf("%w: %q is not a trainer command", ErrWrongPhase, cmd.Name)
}

// CreatureAction resolves a move command for c. The first argument is a move
// id or a 1-based slot in c.Moves; the optional second argument is a target
// combatant id.
func CreatureAction(cmd *Command, args []string, c *creature.Creature) (moveID, targetID string, err error) {
	if cmd.Handler != HandlerMove {
		return "", "", fmt.Errorf("%w: %q is not a move command", ErrWrongPhase, cmd.Name)
	}
	if len(args) < 1 || len(args) > 2 {
		return "", "", usage(cmd)
	}
	moveID = args[0]
	if slot, convErr := strconv.Atoi(moveID); convErr == nil {
		if slot < 1 || slot > len(c.Moves) {
			return "", "", fmt.Errorf("%w: %s knows %d moves", ErrUsage, c.DisplayName(), len(c.Moves))
		}
		moveID = c.Moves[slot-1]
	} else if !slices.Contains(c.Moves, moveID) {
		return "", "", fmt.Errorf("%w: %s doesn't know %s", ErrUsage, c.DisplayName(), moveID)
	}
	if len(args) == 2 {
		targetID = args[1]
	}
	return moveID, targetID, nil
}

func usage(cmd *Command) error {
	return fmt.Errorf("%w: usage: %s", ErrUsage, cmd.Usage)
}
