// Package skilltree generates the single skill graph shared by every creature
// and answers the pure queries over it: node lookup, adjacency, tier values,
// skill points per level, and move-slot resolution for a species.
package skilltree

import (
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/cory-johannsen/tamer/internal/game/effect"
)

// RootID is the id of the central node every creature starts with.
const RootID = "start"

// Layout constants.
const (
	CenterX          = 500.0
	CenterY          = 500.0
	NodeSpacing      = 70.0
	MinNodeDistance  = 45.0
	collisionPasses  = 15
	maxConnectionFar = NodeSpacing * 1.8

	// EmptyMoveStatValue is the flat bonus granted by a move node whose slot
	// resolves to no move.
	EmptyMoveStatValue = 10
)

// Kind distinguishes stat nodes from move nodes.
type Kind string

const (
	KindStat Kind = "stat"
	KindMove Kind = "move"
)

// Branches lists the six skill branches in layout order.
var Branches = []effect.Stat{effect.Speed, effect.SpDef, effect.Def, effect.HP, effect.SpAtk, effect.Atk}

var branchAngles = map[effect.Stat]float64{
	effect.Speed: -math.Pi / 2,
	effect.SpDef: -math.Pi / 6,
	effect.Def:   math.Pi / 6,
	effect.HP:    math.Pi / 2,
	effect.SpAtk: math.Pi * 5 / 6,
	effect.Atk:   -math.Pi * 5 / 6,
}

// Node is one vertex of the skill graph.
//
// Invariant: stat nodes carry Value and Stat == Branch (root: Value 0);
// move nodes carry MoveSlot and no Value.
type Node struct {
	ID       string
	Kind     Kind
	Branch   effect.Stat
	Tier     int
	Stat     effect.Stat
	Value    int
	MoveSlot int
	X, Y     float64
}

// Tree is the immutable skill graph.
//
// Invariant: adjacency is symmetric; every non-root node has at least one
// neighbour; the root neighbours exactly one node per branch.
type Tree struct {
	nodes map[string]*Node
	order []string
	adj   map[string][]string
}

var (
	defaultOnce sync.Once
	defaultTree *Tree
)

// Default returns the process-wide tree, generating it on first use.
func Default() *Tree {
	defaultOnce.Do(func() { defaultTree = Generate() })
	return defaultTree
}

// StatValueForTier returns the stat bonus of a stat node at tier.
func StatValueForTier(tier int) int {
	switch {
	case tier <= 2:
		return 3
	case tier <= 5:
		return 5
	case tier <= 8:
		return 8
	}
	return 12
}

// SkillPointsForLevel returns the total skill points a creature earns by level.
//
// Postcondition: 0 at level 1; non-decreasing in level.
func SkillPointsForLevel(level int) int {
	if level < 1 {
		return 0
	}
	return (level - 1) + level/10
}

type placement struct {
	x, y   float64
	branch effect.Stat
	tier   int
	move   bool
}

func branchZone(branch effect.Stat) []placement {
	base := branchAngles[branch]
	offsets := []float64{-0.18, 0, 0.18}
	var out []placement
	for chain, off := range offsets {
		for idx := range 5 {
			radius := NodeSpacing*2 + float64(idx)*NodeSpacing*1.4
			angle := base + off + math.Sin(float64(idx)*1.7+float64(chain))*0.04
			out = append(out, placement{
				x:      CenterX + math.Cos(angle)*radius,
				y:      CenterY + math.Sin(angle)*radius,
				branch: branch,
				tier:   idx + 1,
				move:   (chain == 1 && idx == 2) || (chain == 0 && idx == 4) || (chain == 2 && idx == 3),
			})
		}
	}
	return out
}

func bridges() []placement {
	var out []placement
	for i, cur := range Branches {
		next := Branches[(i+1)%len(Branches)]
		a, b := branchAngles[cur], branchAngles[next]
		mid := (a + b) / 2
		if math.Abs(a-b) > math.Pi {
			mid += math.Pi
		}
		for j := range 2 {
			radius := NodeSpacing*4.5 + float64(j)*NodeSpacing*1.8
			branch := cur
			if j == 1 {
				branch = next
			}
			out = append(out, placement{
				x:      CenterX + math.Cos(mid)*radius,
				y:      CenterY + math.Sin(mid)*radius,
				branch: branch,
				tier:   3 + j,
			})
		}
	}
	return out
}

func relax(ps []placement) {
	for range collisionPasses {
		for i := range ps {
			for j := i + 1; j < len(ps); j++ {
				dx, dy := ps[j].x-ps[i].x, ps[j].y-ps[i].y
				d := math.Hypot(dx, dy)
				if d <= 0 || d >= MinNodeDistance {
					continue
				}
				push := (MinNodeDistance - d) / 2
				nx, ny := dx/d, dy/d
				ps[i].x -= nx * push
				ps[i].y -= ny * push
				ps[j].x += nx * push
				ps[j].y += ny * push
			}
		}
	}
}

// Generate builds a fresh tree. Geometry is deterministic; callers normally
// use Default.
func Generate() *Tree {
	t := &Tree{nodes: make(map[string]*Node), adj: make(map[string][]string)}
	t.add(&Node{ID: RootID, Kind: KindStat, Branch: effect.HP, Stat: effect.HP, X: CenterX, Y: CenterY})

	var ps []placement
	for _, b := range Branches {
		ps = append(ps, branchZone(b)...)
	}
	ps = append(ps, bridges()...)
	relax(ps)

	slots := make(map[effect.Stat]int)
	for i, p := range ps {
		n := &Node{ID: fmt.Sprintf("%s_%d", p.branch, i), Branch: p.branch, Tier: p.tier, X: p.x, Y: p.y}
		if p.move {
			n.Kind = KindMove
			n.MoveSlot = slots[p.branch]
			slots[p.branch]++
		} else {
			n.Kind = KindStat
			n.Stat = p.branch
			n.Value = StatValueForTier(p.tier)
		}
		t.add(n)
	}
	t.connect()
	return t
}

func (t *Tree) add(n *Node) {
	t.nodes[n.ID] = n
	t.order = append(t.order, n.ID)
}

type neighbour struct {
	id   string
	dist float64
}

func (t *Tree) nearest(from *Node, keep func(*Node) bool) []neighbour {
	var out []neighbour
	for _, id := range t.order {
		other := t.nodes[id]
		if other.ID == from.ID || !keep(other) {
			continue
		}
		out = append(out, neighbour{id: id, dist: math.Hypot(from.X-other.X, from.Y-other.Y)})
	}
	slices.SortStableFunc(out, func(a, b neighbour) int {
		switch {
		case a.dist < b.dist:
			return -1
		case a.dist > b.dist:
			return 1
		}
		return 0
	})
	return out
}

func (t *Tree) link(a, b string) {
	if a == b || slices.Contains(t.adj[a], b) {
		return
	}
	t.adj[a] = append(t.adj[a], b)
	t.adj[b] = append(t.adj[b], a)
}

func (t *Tree) connect() {
	notRoot := func(n *Node) bool { return n.ID != RootID }
	for _, id := range t.order {
		if id == RootID {
			continue
		}
		near := t.nearest(t.nodes[id], notRoot)
		linked := 0
		for _, nb := range near {
			if linked == 3 || nb.dist > maxConnectionFar {
				break
			}
			t.link(id, nb.id)
			linked++
		}
	}

	root := t.nodes[RootID]
	seen := make(map[effect.Stat]bool)
	for _, nb := range t.nearest(root, notRoot) {
		b := t.nodes[nb.id].Branch
		if seen[b] {
			continue
		}
		seen[b] = true
		t.link(RootID, nb.id)
	}

	for _, id := range t.order {
		if id == RootID || len(t.adj[id]) > 0 {
			continue
		}
		near := t.nearest(t.nodes[id], func(*Node) bool { return true })
		for _, nb := range near[:min(2, len(near))] {
			t.link(id, nb.id)
		}
	}
}

// Node returns the node with id.
func (t *Tree) Node(id string) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Nodes returns every node, root first, then in placement order.
func (t *Tree) Nodes() []*Node {
	out := make([]*Node, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.nodes[id])
	}
	return out
}

// Adjacent returns the ids connected to id in either direction.
func (t *Tree) Adjacent(id string) []string {
	return slices.Clone(t.adj[id])
}

// IsAdjacent reports whether a and b share an edge.
func (t *Tree) IsAdjacent(a, b string) bool {
	return slices.Contains(t.adj[a], b)
}

// ByBranch returns the non-root nodes of branch in placement order.
func (t *Tree) ByBranch(branch effect.Stat) []*Node {
	var out []*Node
	for _, id := range t.order {
		n := t.nodes[id]
		if n.ID != RootID && n.Branch == branch {
			out = append(out, n)
		}
	}
	return out
}

// MoveSlots returns the move nodes of branch ordered by slot.
func (t *Tree) MoveSlots(branch effect.Stat) []*Node {
	var out []*Node
	for _, n := range t.ByBranch(branch) {
		if n.Kind == KindMove {
			out = append(out, n)
		}
	}
	return out
}
