package vm

import (
	"github.com/coregx/retriad/internal/literal"
	"github.com/coregx/retriad/internal/runes"
	"github.com/coregx/retriad/syntax"
)

// Engine is a compiled pattern ready to search subjects with the
// bytecode executor.
type Engine struct {
	prog      *Program
	prefilter *literal.Prefilter
}

// NewEngine parses pattern and compiles it straight to bytecode (C8),
// bypassing the shared NFA graph entirely, per spec.md's description of
// C8 consuming the AST independently of C3/C5.
func NewEngine(pattern string) (*Engine, error) {
	tree, err := syntax.Parse(pattern)
	if err != nil {
		return nil, err
	}
	prog, err := Compile(tree)
	if err != nil {
		return nil, err
	}
	pf, _ := literal.Build(tree)
	return &Engine{prog: prog, prefilter: pf}, nil
}

// CaptureCount returns the number of capture groups, including group 0
// (the whole match).
func (e *Engine) CaptureCount() int { return e.prog.CaptureCount }

// IsMatch reports whether any substring of subject matches.
func (e *Engine) IsMatch(subject string) bool {
	if e.prefilter != nil && !e.prefilter.CanMatch([]byte(subject)) {
		return false
	}
	seq := runes.Index(subject)
	for start := 0; start <= seq.Len(); start++ {
		if _, _, ok := Run(e.prog, seq, start); ok {
			return true
		}
	}
	return false
}

// Find returns the capture slots (as code-point offsets) of the
// leftmost match, or ok=false if none exists.
func (e *Engine) Find(subject string) (Captures, bool) {
	if e.prefilter != nil && !e.prefilter.CanMatch([]byte(subject)) {
		return nil, false
	}
	seq := runes.Index(subject)
	for start := 0; start <= seq.Len(); start++ {
		if _, caps, ok := Run(e.prog, seq, start); ok {
			return caps, true
		}
	}
	return nil, false
}

// FindAll returns the capture slots of every non-overlapping match,
// scanning left to right and resuming after each match's end (or
// advancing by one code point past a zero-width match).
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
			if end, caps, ok := Run(e.prog, seq, start); ok {
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
