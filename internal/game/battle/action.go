package battle

import (
	"slices"

	"github.com/cory-johannsen/tamer/internal/game/catalog"
)

// TrainerActionType identifies what the player trainer does on a trainer turn.
type TrainerActionType string

const (
	TrainerFlee    TrainerActionType = "flee"
	TrainerItem    TrainerActionType = "item"
	TrainerSwitch  TrainerActionType = "switch"
	TrainerSkill   TrainerActionType = "skill"
	TrainerCommand TrainerActionType = "command"
)

// Valid reports whether t is a known trainer action type.
func (t TrainerActionType) Valid() bool {
	switch t {
	case TrainerFlee, TrainerItem, TrainerSwitch, TrainerSkill, TrainerCommand:
		return true
	}
	return false
}

// TrainerAction is the player trainer's choice for a trainer turn.
type TrainerAction struct {
	Type TrainerActionType
	// ItemID is the inventory item for TrainerItem.
	ItemID string
	// TargetID is the creature a healing or boost item is used on; empty means
	// the first eligible active creature.
	TargetID    string
	SkillID     string
	SwitchIndex int
}

// Multi-target tokens accepted as CreatureAction.TargetID.
const (
	TargetAllOpponents = "ALL_OPPONENTS"
	TargetAllAllies    = "ALL_ALLIES"
	TargetAllField     = "ALL_FIELD"
)

// CreatureAction is one creature's move and target for a turn.
type CreatureAction struct {
	CreatureID string
	MoveID     string
	// TargetID is a combatant id or one of the multi-target tokens.
	TargetID string
}

// TurnPlan collects the selections made for one turn.
type TurnPlan struct {
	TrainerAction   *TrainerAction
	CreatureActions []CreatureAction
}

// targetForMove maps a move's target key onto a multi-target token, or
// returns chosen for single-target moves.
func targetForMove(m *catalog.Move, chosen string) string {
	if m == nil {
		return chosen
	}
	switch m.Target {
	case catalog.TargetAllOpponents, catalog.TargetAllOther:
		return TargetAllOpponents
	case catalog.TargetUsersField, catalog.TargetAllAllies:
		return TargetAllAllies
	case catalog.TargetEntireField:
		return TargetAllField
	}
	return chosen
}

// Queue priorities for trainers; creatures use their effective speed.
const (
	PlayerTrainerPriority = 1000
	EnemyTrainerPriority  = 999
)

type actorKind int

const (
	actorPlayerTrainer actorKind = iota
	actorEnemyTrainer
	actorPlayerCreature
	actorEnemyCreature
)

// queuedAction is one entry of the resolution queue.
type queuedAction struct {
	kind     actorKind
	actorID  string
	name     string
	priority int
	trainer  *TrainerAction
	creature *CreatureAction
}

// sortQueue orders q by descending priority. Equal priorities keep their
// insertion order: player trainer, enemy trainer, player creatures, enemy
// creatures.
func sortQueue(q []queuedAction) {
	slices.SortStableFunc(q, func(a, b queuedAction) int { return b.priority - a.priority })
}
