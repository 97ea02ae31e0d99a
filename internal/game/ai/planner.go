package ai

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// maxPlanSteps bounds decomposition of recursive domains.
const maxPlanSteps = 32

// ScriptCaller is the interface required by the Planner to evaluate Lua preconditions.
type ScriptCaller interface {
	// CallHookWith calls a named Lua function in scope's VM with one table
	// argument. Returns (LNil, nil) if the function is not defined.
	CallHookWith(scope, hook string, arg map[string]any) (lua.LValue, error)
}

// PlannedAction is one primitive action produced by the planner.
type PlannedAction struct {
	Action string
	Target string // resolved combatant uid; empty for skip
	Item   string
}

// Planner evaluates an HTN domain for one enemy trainer.
//
// Invariant: domain and caller must not be nil.
type Planner struct {
	domain *Domain
	caller ScriptCaller
	scope  string
}

// NewPlanner constructs a Planner whose preconditions run in scope.
//
// Precondition: domain and caller must not be nil.
func NewPlanner(domain *Domain, caller ScriptCaller, scope string) *Planner {
	if domain == nil {
		panic("ai.NewPlanner: domain must not be nil")
	}
	if caller == nil {
		panic("ai.NewPlanner: caller must not be nil")
	}
	return &Planner{domain: domain, caller: caller, scope: scope}
}

// Domain returns the planner's domain.
func (p *Planner) Domain() *Domain { return p.domain }

// Plan decomposes RootTask against state and returns the ordered plan.
//
// Precondition: state and state.Actor must not be nil.
// Postcondition: returns a non-nil slice (may be empty); Lua failures count
// as a false precondition and never surface as errors.
func (p *Planner) Plan(state *WorldState) ([]PlannedAction, error) {
	if state == nil || state.Actor == nil {
		return nil, fmt.Errorf("ai.Planner.Plan: state and state.Actor must not be nil")
	}

	taskQueue := []string{RootTask}
	result := []PlannedAction{}
	var table map[string]any

	for steps := 0; len(taskQueue) > 0 && steps < maxPlanSteps; steps++ {
		current := taskQueue[0]
		taskQueue = taskQueue[1:]

		if op, ok := p.domain.OperatorByID(current); ok {
			result = append(result, PlannedAction{
				Action: op.Action,
				Target: state.ResolveTarget(op.Target),
				Item:   op.Item,
			})
			continue
		}

		if table == nil {
			table = state.Table()
		}
		method := p.findApplicableMethod(current, table)
		if method == nil {
			continue
		}
		taskQueue = append(append([]string(nil), method.Subtasks...), taskQueue...)
	}
	return result, nil
}

// findApplicableMethod returns the first Method for taskID whose precondition
// returns true, or nil. An empty Precondition always passes.
func (p *Planner) findApplicableMethod(taskID string, table map[string]any) *Method {
	for _, m := range p.domain.MethodsForTask(taskID) {
		if m.Precondition == "" {
			return m
		}
		val, _ := p.caller.CallHookWith(p.scope, m.Precondition, table)
		if val == lua.LTrue {
			return m
		}
	}
	return nil
}
