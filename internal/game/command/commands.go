// Package command parses the text commands a player types during a battle
// and maps them onto trainer and creature selections.
package command

import (
	"slices"

	"github.com/cory-johannsen/tamer/internal/game/battle"
)

// Categories for organizing commands.
const (
	CategoryTrainer  = "trainer"
	CategoryCreature = "creature"
	CategoryInfo     = "info"
	CategorySystem   = "system"
)

// Handler identifiers.
const (
	HandlerFlee    = "flee"
	HandlerItem    = "item"
	HandlerSwitch  = "switch"
	HandlerSkill   = "skill"
	HandlerCommand = "command"
	HandlerMove    = "move"
	HandlerStatus  = "status"
	HandlerBag     = "bag"
	HandlerLog     = "log"
	HandlerHelp    = "help"
	HandlerQuit    = "quit"
)

// Command defines a player-invocable battle command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage shows the argument shape, e.g. "item <item_id> [target_id]".
	Usage string
	// Help is the short help text.
	Help string
	// Category groups the command.
	Category string
	// Handler selects what the command does.
	Handler string
	// Phases lists the battle phases the command is accepted in; empty means
	// every phase.
	Phases []battle.Phase
}

// AllowedIn reports whether the command may be issued in phase p.
func (c *Command) AllowedIn(p battle.Phase) bool {
	return len(c.Phases) == 0 || slices.Contains(c.Phases, p)
}

var (
	trainerPhase  = []battle.Phase{battle.PhaseTrainerSelect}
	creaturePhase = []battle.Phase{battle.PhaseCreatureSelect}
)

// BuiltinCommands returns all built-in battle commands.
func BuiltinCommands() []Command {
	return []Command{
		// Trainer turn
		{Name: "flee", Aliases: []string{"run"}, Usage: "flee", Help: "Try to escape a wild battle", Category: CategoryTrainer, Handler: HandlerFlee, Phases: trainerPhase},
		{Name: "item", Aliases: []string{"use"}, Usage: "item <item_id> [target_id]", Help: "Use an item from the bag", Category: CategoryTrainer, Handler: HandlerItem, Phases: trainerPhase},
		{Name: "switch", Aliases: []string{"sw"}, Usage: "switch <party_slot>", Help: "Switch in a party creature", Category: CategoryTrainer, Handler: HandlerSwitch, Phases: trainerPhase},
		{Name: "skill", Aliases: []string{"sk"}, Usage: "skill <skill_id>", Help: "Use a trainer skill", Category: CategoryTrainer, Handler: HandlerSkill, Phases: trainerPhase},
		{Name: "command", Aliases: []string{"pass", "p"}, Usage: "command", Help: "Let your creatures fight this turn", Category: CategoryTrainer, Handler: HandlerCommand, Phases: trainerPhase},

		// Creature turn
		{Name: "move", Aliases: []string{"m", "attack"}, Usage: "move <move_id|slot> [target_id]", Help: "Choose a move for the current creature", Category: CategoryCreature, Handler: HandlerMove, Phases: creaturePhase},

		// Info
		{Name: "status", Aliases: []string{"st"}, Usage: "status", Help: "Show both sides of the field", Category: CategoryInfo, Handler: HandlerStatus},
		{Name: "bag", Aliases: []string{"inventory", "inv", "i"}, Usage: "bag", Help: "Show the item bag", Category: CategoryInfo, Handler: HandlerBag},
		{Name: "log", Aliases: nil, Usage: "log", Help: "Show the recent battle log", Category: CategoryInfo, Handler: HandlerLog},

		// System
		{Name: "help", Aliases: []string{"?"}, Usage: "help", Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit", "q"}, Usage: "quit", Help: "Leave the simulator", Category: CategorySystem, Handler: HandlerQuit},
	}
}
