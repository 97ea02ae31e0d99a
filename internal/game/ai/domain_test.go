package ai_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tamer/internal/game/ai"
)

func minimalDomain() *ai.Domain {
	return &ai.Domain{
		ID:    "test",
		Tasks: []*ai.Task{{ID: ai.RootTask}},
		Methods: []*ai.Method{{
			TaskID:   ai.RootTask,
			ID:       "m1",
			Subtasks: []string{"op1"},
		}},
		Operators: []*ai.Operator{{ID: "op1", Action: ai.ActionSkip}},
	}
}

func TestDomain_Validate_RejectsEmpty(t *testing.T) {
	d := &ai.Domain{}
	if err := d.Validate(); err == nil {
		t.Fatal("expected error for empty Domain")
	}
}

func TestDomain_Validate_AcceptsMinimal(t *testing.T) {
	if err := minimalDomain().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDomain_Validate_Rejections(t *testing.T) {
	cases := map[string]func(d *ai.Domain){
		"missing root task":  func(d *ai.Domain) { d.Tasks = []*ai.Task{{ID: "other"}}; d.Methods = nil },
		"duplicate task":     func(d *ai.Domain) { d.Tasks = append(d.Tasks, &ai.Task{ID: ai.RootTask}) },
		"unknown action":     func(d *ai.Domain) { d.Operators[0].Action = "attack" },
		"duplicate operator": func(d *ai.Domain) { d.Operators = append(d.Operators, &ai.Operator{ID: "op1", Action: ai.ActionHeal}) },
		"dangling subtask":   func(d *ai.Domain) { d.Methods[0].Subtasks = []string{"ghost"} },
		"unknown task":       func(d *ai.Domain) { d.Methods[0].TaskID = "ghost" },
		"empty subtasks":     func(d *ai.Domain) { d.Methods[0].Subtasks = nil },
		"duplicate method":   func(d *ai.Domain) { d.Methods = append(d.Methods, d.Methods[0]) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			d := minimalDomain()
			mutate(d)
			assert.Error(t, d.Validate())
		})
	}
}

func TestDomain_OperatorByID(t *testing.T) {
	d := &ai.Domain{
		Operators: []*ai.Operator{{ID: "heal", Action: ai.ActionHeal, Target: "weakest_ally"}},
	}
	op, ok := d.OperatorByID("heal")
	require.True(t, ok)
	assert.Equal(t, ai.ActionHeal, op.Action)
	_, ok = d.OperatorByID("missing")
	assert.False(t, ok)
}

func TestDomain_MethodsForTask_ReturnsOrdered(t *testing.T) {
	d := &ai.Domain{
		Methods: []*ai.Method{
			{TaskID: "fight", ID: "m1", Subtasks: []string{"op1"}},
			{TaskID: "fight", ID: "m2", Subtasks: []string{"op2"}},
			{TaskID: "other", ID: "m3", Subtasks: []string{"op3"}},
		},
	}
	methods := d.MethodsForTask("fight")
	if len(methods) != 2 {
		t.Fatalf("expected 2 methods, got %d", len(methods))
	}
	if methods[0].ID != "m1" || methods[1].ID != "m2" {
		t.Fatalf("expected methods in declaration order [m1, m2], got [%s, %s]", methods[0].ID, methods[1].ID)
	}
}

func TestLoadDomains_LoadsYAML(t *testing.T) {
	dir := t.TempDir()
	body := `
domain:
  id: test_domain
  description: Test
  tasks:
    - id: behave
      description: root
  methods:
    - task: behave
      id: default
      subtasks: [idle]
  operators:
    - id: idle
      action: skip
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.yaml"), []byte(body), 0600))
	domains, err := ai.LoadDomains(dir)
	require.NoError(t, err)
	require.Len(t, domains, 1)
	assert.Equal(t, "test_domain", domains[0].ID)
}

func TestLoadDomains_RejectsUnknownField(t *testing.T) {
	dir := t.TempDir()
	body := "domain:\n  id: d\n  tasks: [{id: behave}]\n  zone: nope\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(body), 0600))
	_, err := ai.LoadDomains(dir)
	assert.Error(t, err)
}

func TestLoadDomains_Content(t *testing.T) {
	domains, err := ai.LoadDomains("../../../content/ai")
	require.NoError(t, err)
	ids := make([]string, 0, len(domains))
	for _, d := range domains {
		ids = append(ids, d.ID)
	}
	assert.Contains(t, ids, "cautious_trainer")
}

func TestProperty_Domain_OperatorByID_ConsistentLookup(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 5).Draw(rt, "n")
		ops := make([]*ai.Operator, n)
		for i := range ops {
			ops[i] = &ai.Operator{ID: fmt.Sprintf("op%d", i), Action: ai.ActionSkip}
		}
		d := &ai.Domain{Operators: ops}
		for _, want := range ops {
			op, ok := d.OperatorByID(want.ID)
			if !ok || op != want {
				rt.Fatalf("OperatorByID(%q) did not return the declared operator", want.ID)
			}
		}
		unknown := rapid.StringMatching(`[a-z_]{1,10}`).Draw(rt, "unknown")
		if _, ok := d.OperatorByID(unknown); ok {
			rt.Fatalf("OperatorByID(%q) returned found, expected not found", unknown)
		}
	})
}
