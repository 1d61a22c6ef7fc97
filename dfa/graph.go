// Package dfa builds a byte-indexed deterministic automaton from an
// nfa.Graph via subset construction, and simulates it with
// leftmost-longest semantics (spec.md §4.4-§4.5).
//
// Per the open question recorded in SPEC_FULL.md, the DFA operates on
// raw subject bytes rather than the rune sequence the nfa and vm
// packages use: transitions are indexed 0-255, so a MatchAny or
// character-class edge matches one byte at a time. A multi-byte UTF-8
// rune therefore reads as several single-byte steps; any character or
// range above U+00FF can never be reached through the byte table and is
// simply a dead transition. This trades full Unicode fidelity for a
// compact, cache-friendly transition table, the same trade every
// byte-indexed DFA engine makes.
package dfa

// State is one row of the table: Byte[b] is the next state for input
// byte b, or -1 to reject. EOLState is a side-table entry consulted only
// once the simulator has run out of input: it names the state reached by
// following zero-width '$' assertions from here, or -1 if none apply.
// Accept reports whether this state's underlying NFA node set already
// contains the accept node, i.e. whether stopping here (without
// consuming anything more) is a valid match end.
type State struct {
	Byte     [256]int
	EOLState int
	Accept   bool
}

// Graph is a compiled deterministic automaton. Start is the entry point
// for a match attempt beginning anywhere past absolute subject offset 0;
// StartAtZero is the entry point for an attempt beginning exactly at
// offset 0, the only place a leading '^' assertion can ever be honored.
type Graph struct {
	States      []State
	Start       int
	StartAtZero int
}
