package effect

// MinStage and MaxStage bound every stat stage.
const (
	MinStage = -6
	MaxStage = 6
)

// Modifiers is the set of in-battle stat stages.
//
// Invariant: every field is in [MinStage, MaxStage].
type Modifiers struct {
	Atk      int `json:"atk"`
	Def      int `json:"def"`
	SpAtk    int `json:"spAtk"`
	SpDef    int `json:"spDef"`
	Speed    int `json:"speed"`
	Accuracy int `json:"accuracy"`
	Evasion  int `json:"evasion"`
}

// Stage returns the current stage of stat. HP has no stage and reads 0.
func (m Modifiers) Stage(stat Stat) int {
	switch stat {
	case Atk:
		return m.Atk
	case Def:
		return m.Def
	case SpAtk:
		return m.SpAtk
	case SpDef:
		return m.SpDef
	case Speed:
		return m.Speed
	case Accuracy:
		return m.Accuracy
	case Evasion:
		return m.Evasion
	}
	return 0
}

func (m *Modifiers) set(stat Stat, v int) {
	switch stat {
	case Atk:
		m.Atk = v
	case Def:
		m.Def = v
	case SpAtk:
		m.SpAtk = v
	case SpDef:
		m.SpDef = v
	case Speed:
		m.Speed = v
	case Accuracy:
		m.Accuracy = v
	case Evasion:
		m.Evasion = v
	}
}

func clampStage(s int) int {
	return max(MinStage, min(MaxStage, s))
}

// StageMultiplier returns the stat multiplier for stage.
//
// Postcondition: stage is clamped to [-6, 6]; 0 yields exactly 1.
func StageMultiplier(stage int) float64 {
	return stageRatio(clampStage(stage), 2)
}

// AccuracyStageMultiplier returns the accuracy/evasion multiplier for stage.
func AccuracyStageMultiplier(stage int) float64 {
	return stageRatio(clampStage(stage), 3)
}

func stageRatio(s, base int) float64 {
	if s >= 0 {
		return float64(base+s) / float64(base)
	}
	return float64(base) / float64(base-s)
}

// StageResult reports the outcome of ApplyStatModifier.
type StageResult struct {
	NewValue int
	Clamped  bool
	Message  string
}

// ApplyStatModifier adds delta stages to stat in m, clamping to [-6, 6].
//
// Precondition: stat is not HP.
// Postcondition: Clamped is true iff the bound cut the requested change short;
// otherwise the message describes the change magnitude.
func ApplyStatModifier(m *Modifiers, stat Stat, delta int) StageResult {
	old := m.Stage(stat)
	next := clampStage(old + delta)
	m.set(stat, next)
	if next != old+delta {
		if delta > 0 {
			return StageResult{NewValue: next, Clamped: true, Message: "can't go any higher!"}
		}
		return StageResult{NewValue: next, Clamped: true, Message: "can't go any lower!"}
	}
	return StageResult{NewValue: next, Message: stageMessage(delta)}
}

func stageMessage(delta int) string {
	switch {
	case delta >= 3:
		return "rose drastically!"
	case delta == 2:
		return "rose sharply!"
	case delta == 1:
		return "rose!"
	case delta == -1:
		return "fell!"
	case delta == -2:
		return "fell harshly!"
	case delta <= -3:
		return "fell drastically!"
	}
	return ""
}
