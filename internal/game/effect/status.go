package effect

// Status names a major (persistent) or volatile status condition.
type Status string

const (
	// StatusNone is the absence of a major status.
	StatusNone          Status = ""
	StatusPoison        Status = "poison"
	StatusBadlyPoisoned Status = "badly-poisoned"
	StatusBurn          Status = "burn"
	StatusParalysis     Status = "paralysis"
	StatusSleep         Status = "sleep"
	StatusFreeze        Status = "freeze"

	// StatusConfusion and StatusFlinch are volatile and never occupy the
	// major status slot.
	StatusConfusion Status = "confusion"
	StatusFlinch    Status = "flinch"
)

// IsMajor reports whether s occupies the single major status slot.
func (s Status) IsMajor() bool {
	switch s {
	case StatusPoison, StatusBadlyPoisoned, StatusBurn, StatusParalysis, StatusSleep, StatusFreeze:
		return true
	}
	return false
}

// DisplayName returns the status label shown next to a creature.
func (s Status) DisplayName() string {
	switch s {
	case StatusPoison:
		return "Poisoned"
	case StatusBadlyPoisoned:
		return "Badly Poisoned"
	case StatusBurn:
		return "Burned"
	case StatusParalysis:
		return "Paralyzed"
	case StatusSleep:
		return "Asleep"
	case StatusFreeze:
		return "Frozen"
	case StatusConfusion:
		return "Confused"
	case StatusFlinch:
		return "Flinched"
	}
	return string(s)
}

// CanApplyMajorStatus reports whether a new major status may be inflicted.
//
// Postcondition: true iff current is StatusNone.
func CanApplyMajorStatus(current Status) bool {
	return current == StatusNone
}

// StatusDamage is the end-of-turn damage dealt by a major status.
type StatusDamage struct {
	Damage  int
	Message string
}

// ProcessStatusDamage returns the end-of-turn damage for status.
//
// Postcondition: poison, badly-poisoned and burn deal at least 1; every other
// status deals 0 with an empty message.
func ProcessStatusDamage(status Status, maxHP, toxicCounter int) StatusDamage {
	switch status {
	case StatusPoison:
		return StatusDamage{Damage: max(1, maxHP/8), Message: "is hurt by poison!"}
	case StatusBadlyPoisoned:
		if toxicCounter <= 0 {
			toxicCounter = 1
		}
		return StatusDamage{Damage: max(1, maxHP*toxicCounter/16), Message: "is badly hurt by poison!"}
	case StatusBurn:
		return StatusDamage{Damage: max(1, maxHP/16), Message: "is hurt by its burn!"}
	}
	return StatusDamage{}
}

// Source is the randomness provider for status gates.
//
// Declared locally to avoid an import cycle with the dice package; any
// dice.Source satisfies it.
type Source interface {
	Intn(n int) int
}

func percent(src Source, p int) bool {
	if p >= 100 {
		return true
	}
	return src.Intn(100) < p
}

// CheckParalysis reports whether paralysis blocks this action (25%).
func CheckParalysis(src Source) bool {
	return percent(src, 25)
}

// CheckFreezeThaw reports whether a frozen creature thaws. Fire moves always
// thaw; otherwise the chance is 20%.
func CheckFreezeThaw(src Source, moveType string) bool {
	if moveType == "fire" {
		return true
	}
	return percent(src, 20)
}

// CheckSleepWake reports whether a sleeping creature wakes early.
//
// Postcondition: false when turnsRemaining < 1; certain when turnsRemaining >= 3;
// otherwise 33%.
func CheckSleepWake(src Source, turnsRemaining int) bool {
	if turnsRemaining < 1 {
		return false
	}
	if turnsRemaining >= 3 {
		return true
	}
	return percent(src, 33)
}

// CheckConfusionEnd reports whether confusion ends early.
//
// Postcondition: false when turns < 2; certain when turns >= 5; otherwise 25%.
func CheckConfusionEnd(src Source, turns int) bool {
	if turns < 2 {
		return false
	}
	if turns >= 5 {
		return true
	}
	return percent(src, 25)
}

// CheckConfusionSelfHit reports whether a confused creature hits itself (50%).
func CheckConfusionSelfHit(src Source) bool {
	return percent(src, 50)
}
