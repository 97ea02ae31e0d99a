// Package ai implements the Hierarchical Task Network (HTN) planner that picks
// an enemy trainer's action each turn.
//
// HTN planning decomposes abstract tasks into primitive operators via ordered
// methods. Method preconditions are evaluated as Lua hooks; operators map to
// enemy trainer actions.
package ai

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// RootTask is the task every plan starts from.
const RootTask = "behave"

// Operator actions understood by the battle engine.
const (
	ActionSkip = "skip"
	ActionHeal = "heal"
)

// Task is an abstract goal that can be decomposed by methods.
//
// Precondition: ID must be non-empty.
type Task struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
}

// Method decomposes a task into an ordered list of subtasks or operator IDs.
//
// Precondition: TaskID, ID, and Subtasks must be non-empty.
type Method struct {
	TaskID       string   `yaml:"task"`
	ID           string   `yaml:"id"`
	Precondition string   `yaml:"precondition"` // Lua function name; empty = always applicable
	Subtasks     []string `yaml:"subtasks"`
}

// Operator is a primitive enemy trainer action.
//
// Precondition: ID must be non-empty and Action one of ActionSkip, ActionHeal.
type Operator struct {
	ID     string `yaml:"id"`
	Action string `yaml:"action"`
	Target string `yaml:"target"` // "weakest_ally", "weakest_opponent", "self", or a literal uid
	Item   string `yaml:"item"`   // inventory item id for heal; empty = potion
}

// Domain holds the full HTN domain loaded from a YAML file.
//
// Invariant: all Task, Method, and Operator IDs are unique within their slice.
type Domain struct {
	ID          string      `yaml:"id"`
	Description string      `yaml:"description"`
	Tasks       []*Task     `yaml:"tasks"`
	Methods     []*Method   `yaml:"methods"`
	Operators   []*Operator `yaml:"operators"`
}

// Validate checks all required fields and cross-references.
//
// Postcondition: nil return guarantees a non-empty ID, a RootTask task, unique
// IDs within each slice, known operator actions, and that every method names
// a known task and decomposes into known tasks or operators.
func (d *Domain) Validate() error {
	if d.ID == "" {
		return errors.New("ai.Domain: ID must not be empty")
	}
	taskIDs := make(map[string]struct{}, len(d.Tasks))
	for _, t := range d.Tasks {
		if t.ID == "" {
			return fmt.Errorf("ai.Domain %q: task has empty ID", d.ID)
		}
		if _, dup := taskIDs[t.ID]; dup {
			return fmt.Errorf("ai.Domain %q: duplicate task ID %q", d.ID, t.ID)
		}
		taskIDs[t.ID] = struct{}{}
	}
	if _, ok := taskIDs[RootTask]; !ok {
		return fmt.Errorf("ai.Domain %q: must define the %q task", d.ID, RootTask)
	}

	opIDs := make(map[string]struct{}, len(d.Operators))
	for _, op := range d.Operators {
		if op.ID == "" {
			return fmt.Errorf("ai.Domain %q: operator has empty ID", d.ID)
		}
		if _, dup := opIDs[op.ID]; dup {
			return fmt.Errorf("ai.Domain %q: duplicate operator ID %q", d.ID, op.ID)
		}
		if op.Action != ActionSkip && op.Action != ActionHeal {
			return fmt.Errorf("ai.Domain %q operator %q: unknown action %q", d.ID, op.ID, op.Action)
		}
		opIDs[op.ID] = struct{}{}
	}

	methodIDs := make(map[string]struct{}, len(d.Methods))
	for _, m := range d.Methods {
		if m.TaskID == "" || m.ID == "" {
			return fmt.Errorf("ai.Domain %q: method missing task or ID", d.ID)
		}
		if _, dup := methodIDs[m.ID]; dup {
			return fmt.Errorf("ai.Domain %q: duplicate method ID %q", d.ID, m.ID)
		}
		methodIDs[m.ID] = struct{}{}
		if _, ok := taskIDs[m.TaskID]; !ok {
			return fmt.Errorf("ai.Domain %q method %q: task %q is unknown", d.ID, m.ID, m.TaskID)
		}
		if len(m.Subtasks) == 0 {
			return fmt.Errorf("ai.Domain %q method %q: subtasks must not be empty", d.ID, m.ID)
		}
		for _, sub := range m.Subtasks {
			_, isTask := taskIDs[sub]
			_, isOp := opIDs[sub]
			if !isTask && !isOp {
				return fmt.Errorf("ai.Domain %q method %q: subtask %q is neither a task nor an operator", d.ID, m.ID, sub)
			}
		}
	}
	return nil
}

// OperatorByID returns the operator with the given ID, or false if not found.
func (d *Domain) OperatorByID(id string) (*Operator, bool) {
	for _, op := range d.Operators {
		if op.ID == id {
			return op, true
		}
	}
	return nil, false
}

// MethodsForTask returns all methods that decompose taskID, in declaration order.
func (d *Domain) MethodsForTask(taskID string) []*Method {
	var out []*Method
	for _, m := range d.Methods {
		if m.TaskID == taskID {
			out = append(out, m)
		}
	}
	return out
}

type domainFile struct {
	Domain *Domain `yaml:"domain"`
}

// LoadDomains reads all *.yaml files from dir and returns parsed Domains.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns an error naming the file if any fails to parse or
// validate; returns (nil, nil) if dir holds no .yaml files.
func LoadDomains(dir string) ([]*Domain, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ai.LoadDomains: reading %q: %w", dir, err)
	}
	var domains []*Domain
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("ai.LoadDomains: reading %s: %w", e.Name(), err)
		}
		var f domainFile
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("ai.LoadDomains: parsing %s: %w", e.Name(), err)
		}
		if f.Domain == nil {
			return nil, fmt.Errorf("ai.LoadDomains: %s missing top-level 'domain' key", e.Name())
		}
		if err := f.Domain.Validate(); err != nil {
			return nil, fmt.Errorf("ai.LoadDomains: %s: %w", e.Name(), err)
		}
		domains = append(domains, f.Domain)
	}
	return domains, nil
}
