// Package nfa builds a Thompson-style epsilon-NFA from an ast.Tree and
// runs a backtracking depth-first simulator over it.
//
// The graph shape mirrors the teacher's kind-tagged nfa.State (coregex
// nfa/nfa.go): one Edge struct carrying every field any action might
// need, rather than one type per action.
package nfa

import "fmt"

// ActionKind identifies what an Edge does when traversed.
type ActionKind uint8

const (
	// ActionEpsilon is a zero-width transition, optionally tagged with a
	// capture-group boundary.
	ActionEpsilon ActionKind = iota
	// ActionChar consumes exactly one rune equal to Edge.Char.
	ActionChar
	// ActionAny consumes exactly one rune, unconditionally.
	ActionAny
	// ActionIncludeSet consumes one rune if it falls in any of Edge.Items.
	ActionIncludeSet
	// ActionExcludeSet consumes one rune if it falls in none of Edge.Items.
	ActionExcludeSet
	// ActionSOL is a zero-width assertion: succeeds only at subject
	// position 0.
	ActionSOL
	// ActionEOL is a zero-width assertion: succeeds only at the end of
	// the subject.
	ActionEOL
)

func (k ActionKind) String() string {
	switch k {
	case ActionEpsilon:
		return "Epsilon"
	case ActionChar:
		return "Char"
	case ActionAny:
		return "Any"
	case ActionIncludeSet:
		return "IncludeSet"
	case ActionExcludeSet:
		return "ExcludeSet"
	case ActionSOL:
		return "SOL"
	case ActionEOL:
		return "EOL"
	default:
		return fmt.Sprintf("ActionKind(%d)", uint8(k))
	}
}

// SetItem is one member of a character class: a single character when
// Lo == Hi, otherwise an inclusive range.
type SetItem struct {
	Lo, Hi rune
}

// Contains reports whether c falls within the item.
func (it SetItem) Contains(c rune) bool {
	return c >= it.Lo && c <= it.Hi
}

// CaptureTag marks an Epsilon edge as a capture-group boundary. Active is
// false for a plain, untagged epsilon.
type CaptureTag struct {
	Active bool
	Index  int
	Start  bool // true = opening '(', false = closing ')'
}

// Edge is one outgoing transition of a Node. Order within a Node's Edges
// slice is significant: it is the backtracking tie-break for the NFA
// simulator, with the preferred alternative listed first (for a
// quantifier: the body edge when greedy, the exit/skip edge when
// non-greedy).
type Edge struct {
	Action  ActionKind
	Char    rune      // ActionChar
	Items   []SetItem // ActionIncludeSet, ActionExcludeSet
	Capture CaptureTag
	Next    int
	// Greedy is true unless this edge belongs to a non-greedy quantifier
	// subtree. The DFA builder uses it to prune non-greedy alternatives
	// once a state already contains the accept node; the NFA simulator
	// relies on edge order instead (see spec.md §4.4, §9).
	Greedy bool
}

// Node is one state of the graph: an ordered list of outgoing edges.
type Node struct {
	ID    int
	Edges []Edge
}

// Graph is a compiled Thompson NFA. Start is always node 0, Accept is
// always node 1, and Accept is terminal (it has no outgoing edges).
type Graph struct {
	Nodes        []Node
	Start        int
	Accept       int
	CaptureCount int
}

// IsAccept reports whether id is the graph's unique accept node.
func (g *Graph) IsAccept(id int) bool { return id == g.Accept }
