package dfa

import (
	"github.com/coregx/retriad/internal/literal"
	"github.com/coregx/retriad/nfa"
	"github.com/coregx/retriad/syntax"
)

// Engine is a compiled pattern ready to search subjects with the
// deterministic automaton.
type Engine struct {
	graph     *Graph
	prefilter *literal.Prefilter
}

// Compile parses pattern, builds its NFA (C3) and then its DFA (C5) over
// that NFA, per spec.md §4.4.
func Compile(pattern string) (*Engine, error) {
	tree, err := syntax.Parse(pattern)
	if err != nil {
		return nil, err
	}
	ng, err := nfa.Build(tree)
	if err != nil {
		return nil, err
	}
	g, err := Build(ng)
	if err != nil {
		return nil, err
	}
	pf, _ := literal.Build(tree)
	return &Engine{graph: g, prefilter: pf}, nil
}

// IsMatch reports whether any substring of subject matches.
func (e *Engine) IsMatch(subject string) bool {
	if e.prefilter != nil && !e.prefilter.CanMatch([]byte(subject)) {
		return false
	}
	_, _, ok := e.graph.Find([]byte(subject))
	return ok
}

// Find returns the byte offsets of the leftmost-longest match: the
// smallest start position with any match, and for that start, the
// longest reachable end. ok is false if no match exists anywhere.
func (e *Engine) Find(subject string) (start, end int, ok bool) {
	if e.prefilter != nil && !e.prefilter.CanMatch([]byte(subject)) {
		return 0, 0, false
	}
	return e.graph.Find([]byte(subject))
}

// FindAll returns the byte-offset pairs of every non-overlapping
// leftmost-longest match, scanning left to right and resuming after each
// match's end (or advancing by one byte past a zero-width match).
func (e *Engine) FindAll(subject string) [][2]int {
	if e.prefilter != nil && !e.prefilter.CanMatch([]byte(subject)) {
		return nil
	}
	b := []byte(subject)
	var all [][2]int
	pos := 0
	for pos <= len(b) {
		start, end, ok := e.graph.findFrom(b, pos)
		if !ok {
			break
		}
		all = append(all, [2]int{start, end})
		if end > start {
			pos = end
		} else {
			pos = start + 1
		}
	}
	return all
}

// run simulates g over subject starting at byte offset start, returning
// the furthest position at which an accepting state was reached.
func (g *Graph) run(subject []byte, start int) (end int, ok bool) {
	state := g.Start
	if start == 0 {
		state = g.StartAtZero
	}

	lastAccept := -1
	if g.States[state].Accept {
		lastAccept = start
	}

	pos := start
	for pos < len(subject) {
		next := g.States[state].Byte[subject[pos]]
		if next == -1 {
			break
		}
		state = next
		pos++
		if g.States[state].Accept {
			lastAccept = pos
		}
	}

	if pos == len(subject) {
		if eol := g.States[state].EOLState; eol != -1 && g.States[eol].Accept {
			lastAccept = pos
		}
	}

	if lastAccept == -1 {
		return 0, false
	}
	return lastAccept, true
}

// Find scans every start position left to right and returns the first
// (leftmost) one with a match, using run's longest end for that start.
func (g *Graph) Find(subject []byte) (start, end int, ok bool) {
	return g.findFrom(subject, 0)
}

// findFrom is Find restricted to start positions at or after floor, used
// by FindAll to resume a scan after a previous match.
func (g *Graph) findFrom(subject []byte, floor int) (start, end int, ok bool) {
	for s := floor; s <= len(subject); s++ {
		if e, ok := g.run(subject, s); ok {
			return s, e, true
		}
	}
	return 0, 0, false
}
