package ai

// Sides of a battle.
const (
	SidePlayer = "player"
	SideEnemy  = "enemy"
)

// CombatantState captures a creature's battle-relevant state at planning time.
type CombatantState struct {
	UID     string
	Name    string
	Side    string
	HP      int
	MaxHP   int
	Level   int
	Status  string
	Fainted bool
}

// HPPercent returns current HP as a percentage of MaxHP; 0 if MaxHP == 0.
func (c *CombatantState) HPPercent() float64 {
	if c.MaxHP <= 0 {
		return 0
	}
	return float64(c.HP) / float64(c.MaxHP) * 100
}

// ActorState captures the planning trainer's own state.
type ActorState struct {
	UID   string
	Name  string
	Side  string
	HP    int
	MaxHP int
	// Items maps item id to the quantity the trainer still holds.
	Items map[string]int
}

// WorldState is the snapshot passed to the HTN planner for one trainer.
//
// Invariant: Actor must not be nil.
type WorldState struct {
	Actor      *ActorState
	Turn       int
	Combatants []*CombatantState
}

func (ws *WorldState) living(sameSide bool) []*CombatantState {
	var out []*CombatantState
	for _, c := range ws.Combatants {
		if !c.Fainted && (c.Side == ws.Actor.Side) == sameSide {
			out = append(out, c)
		}
	}
	return out
}

// Allies returns the actor's living creatures in Combatants order.
func (ws *WorldState) Allies() []*CombatantState { return ws.living(true) }

// Opponents returns the opposing side's living creatures in Combatants order.
func (ws *WorldState) Opponents() []*CombatantState { return ws.living(false) }

// weakest returns the entry with the lowest HP percentage; ties keep the
// earlier entry. Returns nil for an empty slice.
func weakest(cs []*CombatantState) *CombatantState {
	if len(cs) == 0 {
		return nil
	}
	w := cs[0]
	for _, c := range cs[1:] {
		if c.HPPercent() < w.HPPercent() {
			w = c
		}
	}
	return w
}

// WeakestAlly returns the living ally with the lowest HP percentage, or nil.
func (ws *WorldState) WeakestAlly() *CombatantState { return weakest(ws.Allies()) }

// WeakestOpponent returns the living opponent with the lowest HP percentage, or nil.
func (ws *WorldState) WeakestOpponent() *CombatantState { return weakest(ws.Opponents()) }

// ResolveTarget maps a target token to a combatant UID.
//
// Postcondition: "weakest_ally", "weakest_opponent" and "self" resolve to
// UIDs (empty when nothing qualifies); any other token is returned as-is.
func (ws *WorldState) ResolveTarget(token string) string {
	switch token {
	case "weakest_ally":
		if c := ws.WeakestAlly(); c != nil {
			return c.UID
		}
		return ""
	case "weakest_opponent":
		if c := ws.WeakestOpponent(); c != nil {
			return c.UID
		}
		return ""
	case "self":
		return ws.Actor.UID
	}
	return token
}

func (c *CombatantState) table() map[string]any {
	return map[string]any{
		"uid":     c.UID,
		"name":    c.Name,
		"side":    c.Side,
		"hp":      c.HP,
		"max_hp":  c.MaxHP,
		"hp_pct":  c.HPPercent(),
		"level":   c.Level,
		"status":  c.Status,
		"fainted": c.Fainted,
	}
}

// Table renders the snapshot as the plain table Lua preconditions receive:
// actor, turn, items, allies and opponents (living creatures only).
func (ws *WorldState) Table() map[string]any {
	rows := func(cs []*CombatantState) []map[string]any {
		out := make([]map[string]any, 0, len(cs))
		for _, c := range cs {
			out = append(out, c.table())
		}
		return out
	}
	items := ws.Actor.Items
	if items == nil {
		items = map[string]int{}
	}
	return map[string]any{
		"actor": map[string]any{
			"uid":    ws.Actor.UID,
			"name":   ws.Actor.Name,
			"side":   ws.Actor.Side,
			"hp":     ws.Actor.HP,
			"max_hp": ws.Actor.MaxHP,
		},
		"turn":      ws.Turn,
		"items":     items,
		"allies":    rows(ws.Allies()),
		"opponents": rows(ws.Opponents()),
	}
}
