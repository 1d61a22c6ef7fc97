package dfa

import (
	"fmt"
	"sort"

	"github.com/coregx/retriad/internal/conv"
	"github.com/coregx/retriad/internal/sparse"
	"github.com/coregx/retriad/nfa"
)

// Build runs subset construction over an already-built NFA graph,
// producing a deterministic byte-indexed automaton. It is the C5 builder
// described in spec.md §4.4, sharing the C3 construction (nfa.Build)
// with the backtracking engine rather than re-parsing the pattern.
//
// A state whose node set already contains accept drops any non-greedy
// edge's target from its transitions (spec.md §4.4 step 2): once the
// state is_match, a non-greedy continuation only exists to be skipped in
// favor of stopping, so extending through it must not happen. This does
// not shrink the recognized language — it only suppresses *extension*
// past an already-reached accept, the same boundary the NFA's
// leftmost-first simulator settles on for the same edge — and it is what
// keeps the DFA's reported match substrings identical to the other two
// engines' (spec.md §8).
func Build(g *nfa.Graph) (*Graph, error) {
	b := &builder{nfa: g, index: map[string]int{}}

	zeroNodes, zeroEOL := closure(g, []int{g.Start}, true)
	zeroID := b.intern(zeroNodes, zeroEOL)
	nonZeroNodes, nonZeroEOL := closure(g, []int{g.Start}, false)
	nonZeroID := b.intern(nonZeroNodes, nonZeroEOL)

	for len(b.queue) > 0 {
		id := b.queue[0]
		b.queue = b.queue[1:]
		nodeSet := b.nodeSets[id]
		isMatch := b.states[id].Accept

		for bt := 0; bt < 256; bt++ {
			targets := b.byteTargets(nodeSet, byte(bt), isMatch)
			if len(targets) == 0 {
				continue
			}
			closedNodes, eolSeeds := closure(g, targets, false)
			next := b.intern(closedNodes, eolSeeds)
			b.states[id].Byte[bt] = next
		}
	}

	return &Graph{States: b.states, Start: nonZeroID, StartAtZero: zeroID}, nil
}

type builder struct {
	nfa      *nfa.Graph
	states   []State
	nodeSets [][]int
	index    map[string]int
	queue    []int
}

// intern returns the canonical state id for nodeSet, creating it (and
// its EOLState, recursively interned) if this is the first time this
// exact node set has been seen.
func (b *builder) intern(nodeSet []int, eolSeeds []int) int {
	key := fmt.Sprint(nodeSet)
	if id, ok := b.index[key]; ok {
		return id
	}

	id := len(b.states)
	b.index[key] = id
	b.nodeSets = append(b.nodeSets, nodeSet)

	st := State{Accept: containsAccept(nodeSet, b.nfa.Accept), EOLState: -1}
	for i := range st.Byte {
		st.Byte[i] = -1
	}
	b.states = append(b.states, st)
	b.queue = append(b.queue, id)

	if len(eolSeeds) > 0 {
		eolNodes, _ := closure(b.nfa, eolSeeds, false)
		if len(eolNodes) > 0 {
			b.states[id].EOLState = b.intern(eolNodes, nil)
		}
	}
	return id
}

// byteTargets collects the node(s) each consuming edge out of nodeSet
// reaches on byte bt. When isMatch is true (nodeSet already contains
// accept), non-greedy edges are skipped per spec.md §4.4 step 2.
func (b *builder) byteTargets(nodeSet []int, bt byte, isMatch bool) []int {
	c := rune(bt)
	var targets []int
	for _, n := range nodeSet {
		for _, e := range b.nfa.Nodes[n].Edges {
			if isMatch && !e.Greedy {
				continue
			}
			switch e.Action {
			case nfa.ActionChar:
				if e.Char == c {
					targets = append(targets, e.Next)
				}
			case nfa.ActionAny:
				targets = append(targets, e.Next)
			case nfa.ActionIncludeSet:
				if setContains(e.Items, c) {
					targets = append(targets, e.Next)
				}
			case nfa.ActionExcludeSet:
				if !setContains(e.Items, c) {
					targets = append(targets, e.Next)
				}
			}
		}
	}
	return targets
}

func setContains(items []nfa.SetItem, c rune) bool {
	for _, it := range items {
		if it.Contains(c) {
			return true
		}
	}
	return false
}

func containsAccept(nodeSet []int, accept int) bool {
	i := sort.SearchInts(nodeSet, accept)
	return i < len(nodeSet) && nodeSet[i] == accept
}

// closure expands seeds over epsilon edges (always) and SOL edges (only
// when honorSOL is true, i.e. only for the state at absolute subject
// offset 0). EOL edges are never traversed into the main set; their
// targets are collected and returned separately for the caller to close
// into this state's EOLState.
func closure(g *nfa.Graph, seeds []int, honorSOL bool) (nodes []int, eolSeeds []int) {
	seen := sparse.NewSparseSet(conv.IntToUint32(len(g.Nodes)))
	var stack []int
	push := func(n int) {
		v := conv.IntToUint32(n)
		if !seen.Contains(v) {
			seen.Insert(v)
			stack = append(stack, n)
			nodes = append(nodes, n)
		}
	}
	for _, s := range seeds {
		push(s)
	}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range g.Nodes[n].Edges {
			switch e.Action {
			case nfa.ActionEpsilon:
				push(e.Next)
			case nfa.ActionSOL:
				if honorSOL {
					push(e.Next)
				}
			case nfa.ActionEOL:
				eolSeeds = append(eolSeeds, e.Next)
			}
		}
	}

	sort.Ints(nodes)
	return nodes, eolSeeds
}
