package nfa

import (
	"errors"

	"github.com/coregx/retriad/ast"
)

// ErrRangeOutsideClass is a defensive check: the parser never produces a
// MatchRange node outside an IncludeSet/ExcludeSet, so this should be
// unreachable, but Build reports it rather than panicking if some future
// AST producer violates the invariant.
var ErrRangeOutsideClass = errors.New("nfa: MatchRange outside character class")

// Build compiles an ast.Tree into a Thompson-construction Graph, following
// the recursive "entry, given a destination" scheme described in
// spec.md §4.2. It is the single construction path shared by the NFA
// simulator (Compile in this package) and the DFA builder (dfa.Compile
// calls Build directly and runs subset construction over the result).
func Build(tree *ast.Tree) (*Graph, error) {
	b := &builder{}
	start := b.newNode()
	accept := b.newNode()

	entry := b.build(tree.Root, accept)
	if b.err != nil {
		return nil, b.err
	}

	b.nodes[start].Edges = []Edge{{Action: ActionEpsilon, Next: entry, Greedy: true}}
	return &Graph{Nodes: b.nodes, Start: start, Accept: accept, CaptureCount: tree.CaptureCount}, nil
}

type builder struct {
	nodes []Node
	err   error
}

func (b *builder) newNode() int {
	id := len(b.nodes)
	b.nodes = append(b.nodes, Node{ID: id})
	return id
}

func (b *builder) buildLeaf(e Edge) int {
	id := b.newNode()
	b.nodes[id].Edges = []Edge{e}
	return id
}

// markRange sets Greedy = false on every edge of nodes [start, end), the
// range allocated by a single quantifier subtree build. This implements
// spec.md §4.2's "traverse every edge reachable from the loop/option
// entry up to (but not into) the success continuation"; since every
// recursive build call allocates a fresh, non-shared run of node ids, the
// allocation range IS exactly that reachable-edge set, and dst (always
// pre-existing) is never included.
func (b *builder) markRange(start, end int) {
	for i := start; i < end; i++ {
		edges := b.nodes[i].Edges
		for j := range edges {
			edges[j].Greedy = false
		}
	}
}

func (b *builder) build(n *ast.Node, dst int) int {
	if b.err != nil {
		return 0
	}
	switch n.Kind {
	case ast.CaptureGroup:
		return b.buildCaptureGroup(n, dst)
	case ast.NonCaptureGroup:
		return b.buildSequence(n.Children, dst)
	case ast.Union:
		return b.buildUnion(n, dst)
	case ast.IncludeSet:
		return b.buildSet(n, false, dst)
	case ast.ExcludeSet:
		return b.buildSet(n, true, dst)
	case ast.Star:
		return b.buildStar(n, dst)
	case ast.Plus:
		return b.buildPlus(n, dst)
	case ast.Option:
		return b.buildOption(n, dst)
	case ast.Repeat:
		return b.buildRepeat(n, dst)
	case ast.MatchAny:
		return b.buildLeaf(Edge{Action: ActionAny, Next: dst, Greedy: true})
	case ast.MatchChar:
		return b.buildLeaf(Edge{Action: ActionChar, Char: n.Lo, Next: dst, Greedy: true})
	case ast.PositionSOL:
		return b.buildLeaf(Edge{Action: ActionSOL, Next: dst, Greedy: true})
	case ast.PositionEOL:
		return b.buildLeaf(Edge{Action: ActionEOL, Next: dst, Greedy: true})
	case ast.MatchRange:
		b.err = ErrRangeOutsideClass
		return 0
	default:
		b.err = errors.New("nfa: unhandled ast.Kind " + n.Kind.String())
		return 0
	}
}

// buildSequence threads dst right-to-left through a run of sibling nodes,
// so the last child's continuation is dst and the first child's entry is
// the sequence's entry.
func (b *builder) buildSequence(children []*ast.Node, dst int) int {
	cur := dst
	for i := len(children) - 1; i >= 0; i-- {
		cur = b.build(children[i], cur)
	}
	return cur
}

func (b *builder) buildCaptureGroup(n *ast.Node, dst int) int {
	capEnd := b.newNode()
	b.nodes[capEnd].Edges = []Edge{{
		Action: ActionEpsilon, Next: dst, Greedy: true,
		Capture: CaptureTag{Active: true, Index: n.CaptureIndex, Start: false},
	}}

	bodyEntry := b.buildSequence(n.Children, capEnd)

	capStart := b.newNode()
	b.nodes[capStart].Edges = []Edge{{
		Action: ActionEpsilon, Next: bodyEntry, Greedy: true,
		Capture: CaptureTag{Active: true, Index: n.CaptureIndex, Start: true},
	}}
	return capStart
}

func (b *builder) buildUnion(n *ast.Node, dst int) int {
	branch := b.newNode()
	edges := make([]Edge, len(n.Children))
	for i, c := range n.Children {
		entry := b.build(c, dst)
		edges[i] = Edge{Action: ActionEpsilon, Next: entry, Greedy: true}
	}
	b.nodes[branch].Edges = edges
	return branch
}

func (b *builder) buildSet(n *ast.Node, exclude bool, dst int) int {
	items := make([]SetItem, len(n.Children))
	for i, c := range n.Children {
		if c.Kind == ast.MatchRange {
			items[i] = SetItem{Lo: c.Lo, Hi: c.Hi}
		} else {
			items[i] = SetItem{Lo: c.Lo, Hi: c.Lo}
		}
	}
	action := ActionIncludeSet
	if exclude {
		action = ActionExcludeSet
	}
	return b.buildLeaf(Edge{Action: action, Items: items, Next: dst, Greedy: true})
}

// buildStar constructs entry = loop node, loop --eps--> {bodyEntry, dst}
// (order per greediness), body's tail feeding back into loop.
func (b *builder) buildStar(n *ast.Node, dst int) int {
	start := len(b.nodes)
	loop := b.newNode()
	bodyEntry := b.build(n.Child(), loop)

	toBody := Edge{Action: ActionEpsilon, Next: bodyEntry, Greedy: true}
	toExit := Edge{Action: ActionEpsilon, Next: dst, Greedy: true}
	if n.Greedy == ast.Greedy {
		b.nodes[loop].Edges = []Edge{toBody, toExit}
	} else {
		b.nodes[loop].Edges = []Edge{toExit, toBody}
	}

	if n.Greedy == ast.NonGreedy {
		b.markRange(start, len(b.nodes))
	}
	return loop
}

// buildPlus is buildStar with the body's entry (not the loop node)
// returned, forcing at least one iteration.
func (b *builder) buildPlus(n *ast.Node, dst int) int {
	start := len(b.nodes)
	loop := b.newNode()
	bodyEntry := b.build(n.Child(), loop)

	toBody := Edge{Action: ActionEpsilon, Next: bodyEntry, Greedy: true}
	toExit := Edge{Action: ActionEpsilon, Next: dst, Greedy: true}
	if n.Greedy == ast.Greedy {
		b.nodes[loop].Edges = []Edge{toBody, toExit}
	} else {
		b.nodes[loop].Edges = []Edge{toExit, toBody}
	}

	if n.Greedy == ast.NonGreedy {
		b.markRange(start, len(b.nodes))
	}
	return bodyEntry
}

// buildOption augments the body's own entry node with an extra epsilon
// edge straight to dst, positioned before the body's edges when
// non-greedy (prefer skipping) or after when greedy (prefer matching).
func (b *builder) buildOption(n *ast.Node, dst int) int {
	start := len(b.nodes)
	bodyEntry := b.build(n.Child(), dst)

	skip := Edge{Action: ActionEpsilon, Next: dst, Greedy: true}
	node := &b.nodes[bodyEntry]
	if n.Greedy == ast.Greedy {
		node.Edges = append(node.Edges, skip)
	} else {
		node.Edges = append([]Edge{skip}, node.Edges...)
	}

	if n.Greedy == ast.NonGreedy {
		b.markRange(start, len(b.nodes))
	}
	return bodyEntry
}

// buildRepeat implements {n,m}/{n,} by composing n unrolled mandatory
// copies with either a Star tail (unbounded max) or m-n chained Option
// layers (finite max), per spec.md §4.2.
func (b *builder) buildRepeat(n *ast.Node, dst int) int {
	child := n.Child()
	minN := int(n.Min.Num)

	var cur int
	if n.Max.Infinite {
		star := &ast.Node{Kind: ast.Star, Greedy: n.Greedy, Children: []*ast.Node{child}}
		cur = b.buildStar(star, dst)
	} else {
		maxN := int(n.Max.Num)
		cur = dst
		for i := 0; i < maxN-minN; i++ {
			opt := &ast.Node{Kind: ast.Option, Greedy: n.Greedy, Children: []*ast.Node{child}}
			cur = b.buildOption(opt, cur)
		}
	}

	for i := 0; i < minN; i++ {
		cur = b.build(child, cur)
	}
	return cur
}
