package effect

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind is the category of a parsed move effect.
type Kind string

const (
	KindStatChange Kind = "stat-change"
	KindStatus     Kind = "status"
	KindHeal       Kind = "heal"
	KindDrain      Kind = "drain"
	KindRecoil     Kind = "recoil"
)

// Target selects who receives a parsed effect.
type Target string

const (
	TargetSelf     Target = "self"
	TargetOpponent Target = "opponent"
)

// Parsed is one structured secondary effect of a move.
//
// Exactly the fields relevant to Kind are set; Chance is a percentage in [0, 100].
type Parsed struct {
	Kind          Kind   `json:"kind" yaml:"kind"`
	Stat          Stat   `json:"stat,omitempty" yaml:"stat,omitempty"`
	Stages        int    `json:"stages,omitempty" yaml:"stages,omitempty"`
	Status        Status `json:"status,omitempty" yaml:"status,omitempty"`
	Chance        int    `json:"chance" yaml:"chance"`
	Target        Target `json:"target" yaml:"target"`
	HealPercent   int    `json:"healPercent,omitempty" yaml:"healPercent,omitempty"`
	DrainPercent  int    `json:"drainPercent,omitempty" yaml:"drainPercent,omitempty"`
	RecoilPercent int    `json:"recoilPercent,omitempty" yaml:"recoilPercent,omitempty"`
}

const statWords = `special attack|special defense|sp\. atk|sp\. def|attack|defense|speed|accuracy|evasiveness|evasion`

var (
	chancePrefix = `(?:has a (\d+)% chance to )?`
	statList     = `((?:` + statWords + `)(?:(?:, and |, | and )(?:` + statWords + `))*)`

	stagedChange = regexp.MustCompile(chancePrefix + `(raise|lower)s? (?:the )?(user'?s?|target'?s?) ` + statList + ` by (\w+) stages?`)
	adverbChange = regexp.MustCompile(chancePrefix + `(sharply|drastically) (raise|lower)s? (?:the )?(user'?s?|target'?s?) ` + statList)
	statName     = regexp.MustCompile(statWords)

	statusChance = regexp.MustCompile(`has a (\d+)% chance to`)
	healPattern  = regexp.MustCompile(`(?:restores?|heals?|recovers?) (?:up to )?(?:(\d+)% |half )?(?:of )?(?:the )?(?:user'?s? |its )?(?:max(?:imum)? )?hp`)
	drainPattern = regexp.MustCompile(`drains? (?:half|(\d+)%) (?:of )?(?:the )?damage`)
	recoilPatt   = regexp.MustCompile(`(?:takes?|receives?|suffers?) (?:(\d+)% )?(?:of )?(?:the )?(?:damage )?(?:dealt )?(?:as )?recoil`)
)

var statAliases = map[string]Stat{
	"attack":          Atk,
	"defense":         Def,
	"special attack":  SpAtk,
	"special defense": SpDef,
	"sp. atk":         SpAtk,
	"sp. def":         SpDef,
	"speed":           Speed,
	"accuracy":        Accuracy,
	"evasion":         Evasion,
	"evasiveness":     Evasion,
}

var stageWords = map[string]int{
	"one":         1,
	"two":         2,
	"three":       3,
	"four":        4,
	"sharply":     2,
	"drastically": 3,
}

type statusKeyword struct {
	pattern *regexp.Regexp
	status  Status
}

var statusKeywords = []statusKeyword{
	{regexp.MustCompile(`poison`), StatusPoison},
	{regexp.MustCompile(`burn`), StatusBurn},
	{regexp.MustCompile(`paraly(?:ze|sis)`), StatusParalysis},
	{regexp.MustCompile(`put .*to sleep|sleep`), StatusSleep},
	{regexp.MustCompile(`freeze`), StatusFreeze},
	{regexp.MustCompile(`confuse`), StatusConfusion},
	{regexp.MustCompile(`flinch`), StatusFlinch},
}

// ParseDescription extracts structured effects from a move's short effect
// text. It is a heuristic for content preparation: unrecognized phrasing
// yields no effect rather than an error.
//
// Precondition: effectChance is the move's listed secondary chance (use 100
// when the move lists none); moveTarget is the move's target key.
// Postcondition: stat-change chance is the phrase's own percentage when
// present, effectChance otherwise; status targets are self iff moveTarget is
// "user"; heal, drain and recoil always target self at 100%.
func ParseDescription(text string, effectChance int, moveTarget string) []Parsed {
	if text == "" {
		return nil
	}
	lower := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	var out []Parsed

	for _, m := range stagedChange.FindAllStringSubmatch(lower, -1) {
		stages := stageWord(m[5])
		out = append(out, statChanges(m[1], m[2], m[3], m[4], stages, effectChance)...)
	}
	for _, m := range adverbChange.FindAllStringSubmatch(lower, -1) {
		out = append(out, statChanges(m[1], m[3], m[4], m[5], stageWord(m[2]), effectChance)...)
	}

	statusTarget := TargetOpponent
	if moveTarget == "user" {
		statusTarget = TargetSelf
	}
	for _, kw := range statusKeywords {
		if !kw.pattern.MatchString(lower) {
			continue
		}
		status := kw.status
		if status == StatusPoison && strings.Contains(lower, "badly poison") {
			status = StatusBadlyPoisoned
		}
		chance := 100
		if m := statusChance.FindStringSubmatch(lower); m != nil {
			chance = atoiOr(m[1], effectChance)
		} else if strings.Contains(lower, "chance") {
			chance = effectChance
		}
		out = append(out, Parsed{Kind: KindStatus, Status: status, Chance: chance, Target: statusTarget})
	}

	if m := healPattern.FindStringSubmatch(lower); m != nil {
		out = append(out, Parsed{Kind: KindHeal, HealPercent: atoiOr(m[1], 50), Chance: 100, Target: TargetSelf})
	}
	if m := drainPattern.FindStringSubmatch(lower); m != nil {
		out = append(out, Parsed{Kind: KindDrain, DrainPercent: atoiOr(m[1], 50), Chance: 100, Target: TargetSelf})
	}
	if m := recoilPatt.FindStringSubmatch(lower); m != nil {
		out = append(out, Parsed{Kind: KindRecoil, RecoilPercent: atoiOr(m[1], 25), Chance: 100, Target: TargetSelf})
	}
	return out
}

func statChanges(chanceStr, direction, who, stats string, stages, effectChance int) []Parsed {
	chance := atoiOr(chanceStr, effectChance)
	if direction == "lower" {
		stages = -stages
	}
	target := TargetOpponent
	if strings.HasPrefix(who, "user") {
		target = TargetSelf
	}
	var out []Parsed
	for _, name := range statName.FindAllString(stats, -1) {
		if st, ok := statAliases[name]; ok {
			out = append(out, Parsed{Kind: KindStatChange, Stat: st, Stages: stages, Chance: chance, Target: target})
		}
	}
	return out
}

func stageWord(w string) int {
	if n, ok := stageWords[w]; ok {
		return n
	}
	return 1
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
