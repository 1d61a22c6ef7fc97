// Package literal extracts the literal strings of a pattern that is
// wholly a literal or a union of literals from its AST and, when one exists, builds an Aho-Corasick
// automaton (github.com/coregx/ahocorasick, the teacher's own
// multi-pattern matcher) that can prove a subject contains NONE of the
// pattern's required literals.
//
// Extraction is deliberately conservative: a pattern qualifies only if
// it reduces to exactly a literal string or an alternation of literal
// strings, with no quantifiers, classes, or anchors anywhere in it. Any
// such construct disqualifies the whole pattern rather than trying to
// extract a partial literal, because the automaton can only ever be
// used to rule out a match entirely (see Prefilter.CanMatch) -- it must
// never itself report a match, so a wrong-but-plausible partial extract
// would be a correctness bug, not just a missed optimization.
package literal

import (
	"github.com/coregx/ahocorasick"
	"github.com/coregx/retriad/ast"
)

// Extract returns the literal alternatives required for tree to match
// anywhere in a subject, or ok=false if the pattern isn't a pure literal
// or union of literals.
func Extract(tree *ast.Tree) (literals []string, ok bool) {
	return extractNode(tree.Root)
}

func extractNode(n *ast.Node) ([]string, bool) {
	switch n.Kind {
	case ast.CaptureGroup, ast.NonCaptureGroup:
		// A group with a single child (the common case: the whole
		// pattern, or a union branch, parses as one CaptureGroup/
		// NonCaptureGroup wrapping one node) is transparent: it carries
		// whatever literals its child resolves to, even a multi-literal
		// union. Only a group with several children is a concatenation,
		// where each child must itself be exactly one literal.
		if len(n.Children) == 1 {
			return extractNode(n.Children[0])
		}
		return extractConcat(n.Children)
	case ast.Union:
		var all []string
		for _, branch := range n.Children {
			lits, ok := extractNode(branch)
			if !ok {
				return nil, false
			}
			all = append(all, lits...)
		}
		return all, true
	case ast.MatchChar:
		return []string{string(n.Lo)}, true
	default:
		return nil, false
	}
}

// extractConcat requires every child to itself resolve to exactly one
// literal (no nested alternation inside a concatenation), then joins
// them: "abc" is a concat of three MatchChar nodes, each a one-string
// literal set, concatenated pairwise.
func extractConcat(children []*ast.Node) ([]string, bool) {
	acc := ""
	for _, c := range children {
		lits, ok := extractNode(c)
		if !ok || len(lits) != 1 {
			return nil, false
		}
		acc += lits[0]
	}
	return []string{acc}, true
}

// Prefilter wraps an Aho-Corasick automaton built over a pattern's
// extracted literals. It can only rule a subject OUT (CanMatch reports
// false), never confirm a match, since the automaton has no visibility
// into the rest of the pattern (Extract looks through capture groups,
// so callers must still run the real engine to get match boundaries and
// captures).
type Prefilter struct {
	automaton *ahocorasick.Automaton
}

// Build constructs a Prefilter from tree, or returns ok=false if the
// pattern isn't a pure literal/union-of-literals this package can index.
func Build(tree *ast.Tree) (*Prefilter, bool) {
	lits, ok := Extract(tree)
	if !ok || len(lits) == 0 {
		return nil, false
	}

	builder := ahocorasick.NewBuilder()
	for _, lit := range lits {
		builder.AddPattern([]byte(lit))
	}
	automaton, err := builder.Build()
	if err != nil {
		return nil, false
	}
	return &Prefilter{automaton: automaton}, true
}

// CanMatch reports whether subject contains at least one of the
// prefilter's literals. A false result means the full pattern cannot
// possibly match subject; a true result means nothing (the full engine
// must still run to confirm).
func (p *Prefilter) CanMatch(subject []byte) bool {
	return p.automaton.IsMatch(subject)
}
