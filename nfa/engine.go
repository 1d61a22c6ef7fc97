package nfa

import (
	"github.com/coregx/retriad/internal/literal"
	"github.com/coregx/retriad/internal/runes"
	"github.com/coregx/retriad/syntax"
)

// Engine is a compiled pattern ready to search subjects with the
// backtracking NFA simulator.
type Engine struct {
	graph        *Graph
	captureCount int

	// prefilter is non-nil only when the pattern reduced to a pure
	// literal or union of literals; it can prove a subject has no match
	// without running the simulator at all, but never confirms one.
	prefilter *literal.Prefilter
}

// Compile parses pattern and builds its NFA. It is the C3+C4 entry point
// described in spec.md §4.1-§4.3.
func Compile(pattern string) (*Engine, error) {
	tree, err := syntax.Parse(pattern)
	if err != nil {
		return nil, err
	}
	g, err := Build(tree)
	if err != nil {
		return nil, err
	}
	pf, _ := literal.Build(tree)
	return &Engine{graph: g, captureCount: tree.CaptureCount, prefilter: pf}, nil
}

// CaptureCount returns the number of capture groups, including group 0
// (the whole match).
func (e *Engine) CaptureCount() int { return e.captureCount }

// IsMatch reports whether any substring of subject matches.
func (e *Engine) IsMatch(subject string) bool {
	if e.prefilter != nil && !e.prefilter.CanMatch([]byte(subject)) {
		return false
	}
	seq := runes.Index(subject)
	for start := 0; start <= seq.Len(); start++ {
		if _, _, ok := Simulate(e.graph, seq, start); ok {
			return true
		}
	}
	return false
}

// Find returns the capture slots (as code-point offsets) of the
// leftmost match, trying successive start positions in order. ok is
// false if no match exists anywhere in subject.
func (e *Engine) Find(subject string) (Captures, bool) {
	if e.prefilter != nil && !e.prefilter.CanMatch([]byte(subject)) {
		return nil, false
	}
	seq := runes.Index(subject)
	for start := 0; start <= seq.Len(); start++ {
		if _, caps, ok := Simulate(e.graph, seq, start); ok {
			return caps, true
		}
	}
	return nil, false
}

// FindAll returns the capture slots of every non-overlapping match,
// scanning left to right and resuming after each match's end (or
// advancing by one code point past a zero-width match, to guarantee
// forward progress).
func (e *Engine) FindAll(subject string) []Captures {
	if e.prefilter != nil && !e.prefilter.CanMatch([]byte(subject)) {
		return nil
	}
	seq := runes.Index(subject)
	var all []Captures
	pos := 0
	for pos <= seq.Len() {
		matched := false
		for start := pos; start <= seq.Len(); start++ {
			if end, caps, ok := Simulate(e.graph, seq, start); ok {
				all = append(all, caps)
				if end > start {
					pos = end
				} else {
					pos = start + 1
				}
				matched = true
				break
			}
		}
		if !matched {
			break
		}
	}
	return all
}
