package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsole_ScriptedBattle(t *testing.T) {
	p, f := newPilot(t, 17)
	wild, err := encounter(f, p.src, "rattata", 2, 1)
	require.NoError(t, err)
	_, err = p.sess.StartWildBattle(context.Background(), wild)
	require.NoError(t, err)

	script := "\nbogus\nhelp\nmove 1\nitem\nstatus\nbag\n" + strings.Repeat("pass\nmove 1\n", 300)
	var out bytes.Buffer
	con := newConsole(p.sess, strings.NewReader(script), &out)

	phase, err := con.run(context.Background())
	if err != nil {
		require.True(t, errors.Is(err, errQuit), err)
	} else {
		assert.True(t, phase.Terminal())
	}

	text := out.String()
	assert.Contains(t, text, `unknown command "bogus"`)
	assert.Contains(t, text, "trainer:\n")
	assert.Contains(t, text, "command not available now: move")
	assert.Contains(t, text, "usage: item <item_id> [target_id]")
	assert.Contains(t, text, "Red hp 50/50")
	assert.Contains(t, text, "bag: potion x5, capture_ball x10")
	assert.Contains(t, text, "[turn 1] Red> ")
}

func TestConsole_Quit(t *testing.T) {
	p, f := newPilot(t, 2)
	wild, err := encounter(f, p.src, "pidgey", 2, 1)
	require.NoError(t, err)
	b, err := p.sess.StartWildBattle(context.Background(), wild)
	require.NoError(t, err)

	var out bytes.Buffer
	_, err = newConsole(p.sess, strings.NewReader("quit\n"), &out).run(context.Background())
	assert.True(t, errors.Is(err, errQuit))
	assert.True(t, b.Active())

	_, err = newConsole(p.sess, strings.NewReader(""), &out).run(context.Background())
	assert.True(t, errors.Is(err, errQuit), "exhausted input quits")
}
