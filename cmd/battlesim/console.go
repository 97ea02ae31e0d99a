package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cory-johannsen/tamer/internal/game/battle"
	"github.com/cory-johannsen/tamer/internal/game/command"
	"github.com/cory-johannsen/tamer/internal/game/creature"
	"github.com/cory-johannsen/tamer/internal/game/session"
)

// errQuit is returned by console.run when the player quits or input ends.
var errQuit = errors.New("player quit")

// console reads battle commands from a player, one per line.
type console struct {
	sess *session.Session
	reg  *command.Registry
	in   *bufio.Scanner
	out  io.Writer
}

func newConsole(sess *session.Session, in io.Reader, out io.Writer) *console {
	return &console{
		sess: sess,
		reg:  command.DefaultRegistry(),
		in:   bufio.NewScanner(in),
		out:  out,
	}
}

// run drives the current battle from player input until it ends.
//
// Postcondition: returns errQuit when the player quits or input is exhausted.
func (c *console) run(ctx context.Context) (battle.Phase, error) {
	b, err := c.sess.Battle()
	if err != nil {
		return "", err
	}
	for b.Active() {
		if err := ctx.Err(); err != nil {
			return b.Phase(), err
		}
		if b.Phase() == battle.PhaseResolution {
			if err := c.sess.ExecuteTurn(ctx); err != nil {
				return b.Phase(), err
			}
			continue
		}
		fmt.Fprint(c.out, c.prompt(b))
		if !c.in.Scan() {
			return b.Phase(), errQuit
		}
		if err := c.handle(ctx, b, c.in.Text()); err != nil {
			if errors.Is(err, errQuit) {
				return b.Phase(), err
			}
			fmt.Fprintln(c.out, err)
		}
	}
	return b.Phase(), nil
}

func (c *console) prompt(b *battle.Battle) string {
	if b.Phase() == battle.PhaseTrainerSelect {
		return fmt.Sprintf("[turn %d] %s> ", b.Turn(), c.sess.Trainer().Name)
	}
	if cur, ok := b.CurrentCreature(); ok {
		return fmt.Sprintf("[turn %d] %s (%s)> ", b.Turn(), cur.DisplayName(), strings.Join(cur.Moves, ", "))
	}
	return "> "
}

// handle executes one input line. Errors other than errQuit are shown to the
// player and the prompt repeats.
func (c *console) handle(ctx context.Context, b *battle.Battle, line string) error {
	res := command.Parse(line)
	if res.Command == "" {
		return nil
	}
	cmd, ok := c.reg.Resolve(res.Command)
	if !ok {
		return fmt.Errorf("unknown command %q; try help", res.Command)
	}
	if !cmd.AllowedIn(b.Phase()) {
		return fmt.Errorf("%w: %s", command.ErrWrongPhase, cmd.Name)
	}

	switch cmd.Handler {
	case command.HandlerQuit:
		return errQuit
	case command.HandlerHelp:
		fmt.Fprint(c.out, c.reg.HelpText())
	case command.HandlerStatus:
		c.status(b)
	case command.HandlerBag:
		fmt.Fprintf(c.out, "bag: %s\n", stockSummary(c.sess.Inventory()))
	case command.HandlerLog:
		for _, line := range b.Log() {
			fmt.Fprintln(c.out, line)
		}
	case command.HandlerMove:
		cur, ok := b.CurrentCreature()
		if !ok {
			return fmt.Errorf("%w: no creature is choosing", command.ErrWrongPhase)
		}
		moveID, targetID, err := command.CreatureAction(cmd, res.Args, cur)
		if err != nil {
			return err
		}
		return b.SetCreatureAction(ctx, moveID, targetID)
	default:
		a, err := command.TrainerAction(cmd, res.Args)
		if err != nil {
			return err
		}
		return b.SetTrainerAction(ctx, a)
	}
	return nil
}

func (c *console) status(b *battle.Battle) {
	tr := c.sess.Trainer()
	fmt.Fprintf(c.out, "%s hp %d/%d\n", tr.Name, tr.CurrentHP, tr.MaxHP)
	c.side("yours", b.PlayerCreatures())
	if e := b.Enemy(); e != nil {
		fmt.Fprintf(c.out, "%s hp %d/%d\n", e.Name, e.CurrentHP, e.MaxHP)
	}
	c.side("foes", b.EnemyCreatures())
}

func (c *console) side(label string, cs []*creature.Creature) {
	fmt.Fprintf(c.out, "  %s:\n", label)
	for _, cr := range cs {
		state := ""
		if cr.Fainted {
			state = " fainted"
		} else if cr.Status != "" {
			state = " " + string(cr.Status)
		}
		fmt.Fprintf(c.out, "    %-12s %-14s lv %-3d hp %d/%d%s\n", cr.ID, cr.DisplayName(), cr.Level, cr.CurrentHP, cr.MaxHP, state)
	}
}
