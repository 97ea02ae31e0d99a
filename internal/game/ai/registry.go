package ai

import (
	"fmt"
	"slices"
	"sort"
)

// Registry indexes Planners by domain ID. It is read-only once loaded and
// safe to share between battles.
//
// Invariant: each domain ID is registered at most once.
type Registry struct {
	planners map[string]*Planner
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{planners: make(map[string]*Planner)}
}

// Register creates and stores a Planner for domain whose Lua preconditions
// run in caller's scope.
//
// Precondition: domain and caller must not be nil.
// Postcondition: returns error on domain ID collision.
func (r *Registry) Register(domain *Domain, caller ScriptCaller, scope string) error {
	if _, exists := r.planners[domain.ID]; exists {
		return fmt.Errorf("ai.Registry: domain %q already registered", domain.ID)
	}
	r.planners[domain.ID] = NewPlanner(domain, caller, scope)
	return nil
}

// PlannerFor returns the Planner for domainID, or false if not registered.
func (r *Registry) PlannerFor(domainID string) (*Planner, bool) {
	p, ok := r.planners[domainID]
	return p, ok
}

// IDs returns the registered domain IDs in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.planners))
	for id := range r.planners {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Missing returns the distinct non-empty domain IDs in refs that have no
// planner, in first-seen order.
func (r *Registry) Missing(refs ...string) []string {
	var missing []string
	for _, id := range refs {
		if id == "" || slices.Contains(missing, id) {
			continue
		}
		if _, ok := r.planners[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// LoadRegistry loads every domain in dir and registers it against caller.
//
// Postcondition: returns an error if loading fails or two files share an ID.
func LoadRegistry(dir string, caller ScriptCaller, scope string) (*Registry, error) {
	domains, err := LoadDomains(dir)
	if err != nil {
		return nil, err
	}
	r := NewRegistry()
	for _, d := range domains {
		if err := r.Register(d, caller, scope); err != nil {
			return nil, fmt.Errorf("loading %s: %w", dir, err)
		}
	}
	return r, nil
}
