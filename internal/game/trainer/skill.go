package trainer

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/tamer/internal/game/effect"
)

// ErrSkillNotFound is returned when a trainer skill id does not resolve.
var ErrSkillNotFound = errors.New("trainer skill not found")

// Skill branches.
const (
	BranchWarlord      = "warlord"
	BranchCommander    = "commander"
	BranchRanger       = "ranger"
	BranchElementalist = "elementalist"
	BranchTactician    = "tactician"
)

// Branches lists the trainer skill branches in display order.
var Branches = []string{BranchWarlord, BranchCommander, BranchRanger, BranchElementalist, BranchTactician}

// Skill effect types.
const (
	EffectStatBuff       = "stat-buff"
	EffectTurnFrequency  = "turn-frequency"
	EffectTypeBoost      = "type-boost"
	EffectWeatherExtend  = "weather-extend"
	EffectCritBoost      = "crit-boost"
	EffectFollowUp       = "follow-up"
	EffectDamageRedirect = "damage-redirect"
	EffectGuaranteedCrit = "guaranteed-crit"
)

var validEffects = map[string]bool{
	EffectStatBuff:       true,
	EffectTurnFrequency:  true,
	EffectTypeBoost:      true,
	EffectWeatherExtend:  true,
	EffectCritBoost:      true,
	EffectFollowUp:       true,
	EffectDamageRedirect: true,
	EffectGuaranteedCrit: true,
}

// SkillEffect is the structured descriptor of what a skill does.
type SkillEffect struct {
	Type        string      `yaml:"type"`
	Stat        effect.Stat `yaml:"stat,omitempty"`
	Value       int         `yaml:"value"`
	Duration    int         `yaml:"duration"`
	ElementType string      `yaml:"element_type,omitempty"`
	// AlsoStat is a second stat a stat buff applies to.
	AlsoStat effect.Stat `yaml:"also_stat,omitempty"`
}

// Skill is an immutable trainer skill definition.
type Skill struct {
	ID            string      `yaml:"id"`
	Name          string      `yaml:"name"`
	Description   string      `yaml:"description"`
	Cost          int         `yaml:"cost"`
	Kind          string      `yaml:"kind"`
	Prerequisites []string    `yaml:"prerequisites"`
	Branch        string      `yaml:"branch"`
	Tier          int         `yaml:"tier"`
	Passive       bool        `yaml:"passive"`
	Effect        SkillEffect `yaml:"effect"`
}

// Buffs reports whether the skill is a stat buff covering stat.
func (s *Skill) Buffs(stat effect.Stat) bool {
	return s.Effect.Type == EffectStatBuff && (s.Effect.Stat == stat || s.Effect.AlsoStat == stat)
}

// SkillRegistry indexes trainer skills by id.
//
// Invariant: every prerequisite id resolves in the registry.
type SkillRegistry struct {
	skills map[string]*Skill
}

// NewSkillRegistry builds a registry and validates it.
//
// Postcondition: returns an error naming every malformed skill and dangling
// prerequisite.
func NewSkillRegistry(skills []*Skill) (*SkillRegistry, error) {
	r := &SkillRegistry{skills: make(map[string]*Skill, len(skills))}
	var errs []string
	for _, s := range skills {
		if s.ID == "" {
			errs = append(errs, "skill with empty id")
			continue
		}
		if _, dup := r.skills[s.ID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate skill id %q", s.ID))
			continue
		}
		if s.Cost < 1 {
			errs = append(errs, fmt.Sprintf("skill %q: cost must be >= 1", s.ID))
		}
		if s.Tier < 1 || s.Tier > 3 {
			errs = append(errs, fmt.Sprintf("skill %q: tier must be 1-3, got %d", s.ID, s.Tier))
		}
		if !validEffects[s.Effect.Type] {
			errs = append(errs, fmt.Sprintf("skill %q: unknown effect type %q", s.ID, s.Effect.Type))
		}
		r.skills[s.ID] = s
	}
	for _, s := range r.skills {
		for _, p := range s.Prerequisites {
			if _, ok := r.skills[p]; !ok {
				errs = append(errs, fmt.Sprintf("skill %q: unknown prerequisite %q", s.ID, p))
			}
		}
	}
	if len(errs) > 0 {
		sort.Strings(errs)
		return nil, fmt.Errorf("trainer skill validation failed: %s", strings.Join(errs, "; "))
	}
	return r, nil
}

// Skill returns the skill with id.
func (r *SkillRegistry) Skill(id string) (*Skill, error) {
	if s, ok := r.skills[id]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrSkillNotFound, id)
}

// ByBranch returns the skills of branch ordered by tier.
func (r *SkillRegistry) ByBranch(branch string) []*Skill {
	var out []*Skill
	for _, s := range r.skills {
		if s.Branch == branch {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Tier != out[j].Tier {
			return out[i].Tier < out[j].Tier
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// All returns every skill ordered by id.
func (r *SkillRegistry) All() []*Skill {
	out := make([]*Skill, 0, len(r.skills))
	for _, s := range r.skills {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type skillsFile struct {
	Skills []*Skill `yaml:"skills"`
}

// LoadSkills reads every *.yaml file in dir and builds a SkillRegistry.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns a validated registry or an error naming the file.
func LoadSkills(dir string) (*SkillRegistry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading dir %q: %w", dir, err)
	}
	var skills []*Skill
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var f skillsFile
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		skills = append(skills, f.Skills...)
	}
	return NewSkillRegistry(skills)
}
