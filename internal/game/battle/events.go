package battle

import "go.uber.org/zap"

// EventKind classifies a damage-number event.
type EventKind string

const (
	EventDamage   EventKind = "damage"
	EventHeal     EventKind = "heal"
	EventMiss     EventKind = "miss"
	EventCritical EventKind = "critical"
)

// DamageEvent is one transient damage number for presentation to display.
type DamageEvent struct {
	TargetID string
	Amount   int
	Kind     EventKind
}

// DefaultLogLimit is how many log lines a battle keeps.
const DefaultLogLimit = 10

func (b *Battle) addLog(line string) {
	b.log = append(b.log, line)
	if over := len(b.log) - b.deps.Config.LogLimit; over > 0 {
		b.log = append(b.log[:0:0], b.log[over:]...)
	}
	b.logger.Debug("battle log", zapBattle(b), zapLine(line))
}

func (b *Battle) addEvent(targetID string, amount int, kind EventKind) {
	b.events = append(b.events, DamageEvent{TargetID: targetID, Amount: amount, Kind: kind})
}

func zapBattle(b *Battle) zap.Field { return zap.String("battle", b.id) }

func zapPhase(p Phase) zap.Field { return zap.String("phase", string(p)) }

func zapLine(line string) zap.Field { return zap.String("line", line) }
