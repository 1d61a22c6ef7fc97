package vm

import "github.com/coregx/retriad/internal/runes"

// Captures holds capture-group boundaries as code-point offsets: slot
// 2k is group k's start, slot 2k+1 its end, -1 meaning unset.
type Captures []int

// backtrackPoint is a saved alternative: resume execution at pc and pos
// with captures reset to the snapshot taken when the point was pushed.
type backtrackPoint struct {
	pc, pos  int
	captures Captures
}

// Run executes prog against subject starting the match attempt at
// code-point offset startPos, implementing spec.md §4.8's stack-machine
// executor: Split pushes a backtrack point, Fail pops the most recent
// one, and capture slots are snapshotted into each pushed point so a
// later backtrack undoes any captures recorded along the abandoned path.
func Run(prog *Program, subject *runes.Sequence, startPos int) (end int, caps Captures, ok bool) {
	caps = make(Captures, 2*prog.CaptureCount)
	for i := range caps {
		caps[i] = -1
	}

	var stack []backtrackPoint
	push := func(pc, pos int) {
		snap := make(Captures, len(caps))
		copy(snap, caps)
		stack = append(stack, backtrackPoint{pc: pc, pos: pos, captures: snap})
	}

	pc, pos := 0, startPos
	var flag bool

	// visited guards against zero-width Split/Jmp cycles (e.g. "(a*)*"):
	// it names every Split/Jmp pc reached without consuming any input
	// since pos last changed. A backtrack that resumes at the SAME pos
	// (e.g. an inner construct failing back out to an outer loop) is
	// still part of that same no-progress epoch and must keep the
	// memory; only an actual change in pos means real progress was made
	// and the slate can be wiped.
	visited := make(map[int]bool)
	lastPos := pos

	fail := func() bool {
		if len(stack) == 0 {
			return false
		}
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		copy(caps, f.captures)
		pc, pos = f.pc, f.pos
		return true
	}

	for {
		if pos != lastPos {
			visited = make(map[int]bool)
			lastPos = pos
		}

		instr := prog.Instrs[pc]

		if instr.Op == OpSplit || instr.Op == OpJmp {
			if visited[pc] {
				if !fail() {
					return 0, nil, false
				}
				continue
			}
			visited[pc] = true
		}

		switch instr.Op {
		case OpFail:
			if !fail() {
				return 0, nil, false
			}

		case OpSuccess:
			return pos, caps, true

		case OpJmp:
			pc = instr.A

		case OpSplit:
			push(instr.B, pos)
			pc = instr.A

		case OpMatchChar:
			if pos < subject.Len() && subject.At(pos) == instr.Char {
				pos++
				pc++
			} else if !fail() {
				return 0, nil, false
			}

		case OpMatchCharAny:
			if pos < subject.Len() {
				pos++
				pc++
			} else if !fail() {
				return 0, nil, false
			}

		case OpMatchPosSOL:
			if pos == 0 {
				pc++
			} else if !fail() {
				return 0, nil, false
			}

		case OpMatchPosEOL:
			if pos == subject.Len() {
				pc++
			} else if !fail() {
				return 0, nil, false
			}

		case OpCheckInclude:
			flag = pos < subject.Len() && inSet(prog.Sets[instr.SetIndex], subject.At(pos))
			pc++

		case OpCheckExclude:
			flag = pos < subject.Len() && !inSet(prog.Sets[instr.SetIndex], subject.At(pos))
			pc++

		case OpJmpIfTrue:
			if flag {
				pc = instr.A
			} else {
				pc++
			}

		case OpJmpIfFalse:
			if !flag {
				pc = instr.A
			} else {
				pc++
			}

		case OpSeek:
			pos++
			pc++

		case OpCaptureStart:
			caps[instr.Capture*2] = pos
			pc++

		case OpCaptureEnd:
			caps[instr.Capture*2+1] = pos
			pc++
		}
	}
}

func inSet(ranges []SetRange, c rune) bool {
	for _, r := range ranges {
		if r.contains(c) {
			return true
		}
	}
	return false
}
