package enemy_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tamer/internal/game/enemy"
)

func TestLoadTemplateFromBytes_AppliesDefaults(t *testing.T) {
	data := []byte(`
id: bug_catcher
name: Bug Catcher
roster:
  - species: pidgey
    level: 3
`)
	tmpl, err := enemy.LoadTemplateFromBytes(data)
	require.NoError(t, err)
	assert.Equal(t, enemy.DefaultMaxHP, tmpl.MaxHP)
	assert.Equal(t, enemy.DefaultSpeed, tmpl.Speed)
	assert.Empty(t, tmpl.AIDomain)
}

func TestLoadTemplateFromBytes_RejectsUnknownField(t *testing.T) {
	data := []byte("id: x\nname: X\nroster: [{species: pidgey, level: 3}]\nloot: gold\n")
	_, err := enemy.LoadTemplateFromBytes(data)
	assert.Error(t, err)
}

func TestTemplate_Validate(t *testing.T) {
	valid := func() *enemy.Template {
		return &enemy.Template{
			ID:     "t",
			Name:   "T",
			Roster: []enemy.RosterEntry{{Species: "pidgey", Level: 3}},
		}
	}
	require.NoError(t, valid().Validate())

	cases := map[string]func(*enemy.Template){
		"empty id":      func(t *enemy.Template) { t.ID = "" },
		"empty name":    func(t *enemy.Template) { t.Name = "" },
		"empty roster":  func(t *enemy.Template) { t.Roster = nil },
		"no species":    func(t *enemy.Template) { t.Roster[0].Species = "" },
		"level zero":    func(t *enemy.Template) { t.Roster[0].Level = 0 },
		"level too big": func(t *enemy.Template) { t.Roster[0].Level = 101 },
		"zero stock":    func(t *enemy.Template) { t.Items = map[string]int{"potion": 0} },
		"negative hp":   func(t *enemy.Template) { t.MaxHP = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			tmpl := valid()
			mutate(tmpl)
			assert.Error(t, tmpl.Validate())
		})
	}
}

func TestLoadTemplates_Content(t *testing.T) {
	reg, err := enemy.LoadRegistry("../../../content/enemies")
	require.NoError(t, err)
	assert.Equal(t, []string{"hiker_dave", "youngster_joey"}, reg.IDs())

	dave, err := reg.Template("hiker_dave")
	require.NoError(t, err)
	assert.Equal(t, "cautious_trainer", dave.AIDomain)
	assert.Equal(t, map[string]int{"potion": 2}, dave.Items)
	assert.Equal(t, 120, dave.MaxHP)

	_, err = reg.Template("gary")
	assert.True(t, errors.Is(err, enemy.ErrTemplateNotFound))
}

func TestLoadTemplates_ErrorNamesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("id: x\nname: X\n"), 0644))
	_, err := enemy.LoadTemplates(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.yaml")
}

func TestNewRegistry_RejectsDuplicate(t *testing.T) {
	a := &enemy.Template{ID: "a"}
	_, err := enemy.NewRegistry([]*enemy.Template{a, a})
	assert.Error(t, err)
}

func TestProperty_Template_LevelRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		level := rapid.IntRange(-10, 120).Draw(rt, "level")
		tmpl := &enemy.Template{ID: "t", Name: "T", Roster: []enemy.RosterEntry{{Species: "pidgey", Level: level}}}
		err := tmpl.Validate()
		if (level >= 1 && level <= 100) != (err == nil) {
			rt.Fatalf("level %d: Validate() = %v", level, err)
		}
	})
}
