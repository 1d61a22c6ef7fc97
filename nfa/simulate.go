package nfa

import (
	"github.com/coregx/retriad/internal/conv"
	"github.com/coregx/retriad/internal/runes"
	"github.com/coregx/retriad/internal/sparse"
)

// Captures holds capture-group boundaries as byte^Wcode-point offsets:
// slot 2k is group k's start, slot 2k+1 is its end, -1 meaning unset.
// Slot 0/1 is always the whole match, set by the implicit CaptureGroup(0)
// every parsed tree is wrapped in.
type Captures []int

// Simulate runs a leftmost-first backtracking search of g starting the
// match attempt at code-point offset startPos in subject (spec.md §4.3).
// It returns the end offset and capture slots of the first successful
// path it finds, trying each node's edges in order — so edge order,
// fixed by the builder's greediness handling, determines which of
// several possible matches is reported.
func Simulate(g *Graph, subject *runes.Sequence, startPos int) (end int, caps Captures, ok bool) {
	caps = make(Captures, 2*g.CaptureCount)
	for i := range caps {
		caps[i] = -1
	}
	// seen guards against zero-width epsilon cycles (a Star/Option whose
	// body can match the empty string), keyed by the pair (node, pos)
	// flattened into one uint32: the same node legitimately recurs at a
	// larger pos once input has been consumed, so position is part of
	// the key, not just the node id. The universe is bounded by
	// len(g.Nodes) * (subject length + 1), known up front.
	stride := subject.Len() + 1
	seen := sparse.NewSparseSet(conv.IntToUint32(len(g.Nodes) * stride))
	end, ok = step(g, subject, g.Start, startPos, caps, seen, stride)
	return end, caps, ok
}

func step(g *Graph, subject *runes.Sequence, node, pos int, caps Captures, seen *sparse.SparseSet, stride int) (int, bool) {
	if g.IsAccept(node) {
		return pos, true
	}

	key := conv.IntToUint32(node*stride + pos)
	if seen.Contains(key) {
		return 0, false
	}
	seen.Insert(key)
	defer seen.Remove(key)

	for _, e := range g.Nodes[node].Edges {
		switch e.Action {
		case ActionEpsilon:
			if end, ok := stepEpsilon(g, subject, e, pos, caps, seen, stride); ok {
				return end, true
			}
		case ActionChar:
			if pos < subject.Len() && subject.At(pos) == e.Char {
				if end, ok := step(g, subject, e.Next, pos+1, caps, seen, stride); ok {
					return end, true
				}
			}
		case ActionAny:
			if pos < subject.Len() {
				if end, ok := step(g, subject, e.Next, pos+1, caps, seen, stride); ok {
					return end, true
				}
			}
		case ActionIncludeSet:
			if pos < subject.Len() && inSet(e.Items, subject.At(pos)) {
				if end, ok := step(g, subject, e.Next, pos+1, caps, seen, stride); ok {
					return end, true
				}
			}
		case ActionExcludeSet:
			if pos < subject.Len() && !inSet(e.Items, subject.At(pos)) {
				if end, ok := step(g, subject, e.Next, pos+1, caps, seen, stride); ok {
					return end, true
				}
			}
		case ActionSOL:
			if pos == 0 {
				if end, ok := step(g, subject, e.Next, pos, caps, seen, stride); ok {
					return end, true
				}
			}
		case ActionEOL:
			if pos == subject.Len() {
				if end, ok := step(g, subject, e.Next, pos, caps, seen, stride); ok {
					return end, true
				}
			}
		}
	}
	return 0, false
}

func stepEpsilon(g *Graph, subject *runes.Sequence, e Edge, pos int, caps Captures, seen *sparse.SparseSet, stride int) (int, bool) {
	if !e.Capture.Active {
		return step(g, subject, e.Next, pos, caps, seen, stride)
	}

	idx := e.Capture.Index * 2
	if !e.Capture.Start {
		idx++
	}
	prev := caps[idx]
	caps[idx] = pos

	if end, ok := step(g, subject, e.Next, pos, caps, seen, stride); ok {
		return end, true
	}
	caps[idx] = prev
	return 0, false
}

func inSet(items []SetItem, c rune) bool {
	for _, it := range items {
		if it.Contains(c) {
			return true
		}
	}
	return false
}
