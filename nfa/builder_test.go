package nfa

import (
	"testing"

	"github.com/coregx/retriad/syntax"
)

func mustBuild(t *testing.T, pattern string) *Graph {
	t.Helper()
	tree, err := syntax.Parse(pattern)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", pattern, err)
	}
	g, err := Build(tree)
	if err != nil {
		t.Fatalf("Build(%q) failed: %v", pattern, err)
	}
	return g
}

func TestBuildStartAndAcceptAreFixed(t *testing.T) {
	g := mustBuild(t, "a")
	if g.Start != 0 || g.Accept != 1 {
		t.Fatalf("Start=%d Accept=%d, want 0,1", g.Start, g.Accept)
	}
	if len(g.Nodes[g.Accept].Edges) != 0 {
		t.Errorf("accept node has %d outgoing edges, want 0", len(g.Nodes[g.Accept].Edges))
	}
}

func TestBuildCaptureGroupZeroWrapsWholePattern(t *testing.T) {
	g := mustBuild(t, "ab")
	// Start -eps-> capStart(0) -eps-> 'a' -> 'b' -eps-> capEnd(0) -eps-> Accept
	start := g.Nodes[g.Start].Edges[0]
	if start.Action != ActionEpsilon {
		t.Fatalf("start edge = %v, want Epsilon", start.Action)
	}
	capStart := g.Nodes[start.Next].Edges[0]
	if !capStart.Capture.Active || !capStart.Capture.Start || capStart.Capture.Index != 0 {
		t.Errorf("capStart edge = %+v, want active CaptureStart(0)", capStart.Capture)
	}
}

func TestBuildStarGreedyEdgeOrder(t *testing.T) {
	g := mustBuild(t, "a*")
	// Root's body is the Star node reached after capStart(0).
	capStart := g.Nodes[g.Nodes[g.Start].Edges[0].Next].Edges[0]
	loop := g.Nodes[capStart.Next]
	if len(loop.Edges) != 2 {
		t.Fatalf("loop node has %d edges, want 2", len(loop.Edges))
	}
	if loop.Edges[0].Next != g.Nodes[loop.ID].Edges[0].Next {
		t.Fatal("sanity: edge self-reference broken")
	}
	// Greedy: body edge listed before exit edge, and both stay Greedy=true.
	bodyTarget := loop.Edges[0].Next
	bodyNode := g.Nodes[bodyTarget]
	if bodyNode.Edges[0].Action != ActionChar || bodyNode.Edges[0].Char != 'a' {
		t.Errorf("first loop edge does not lead into the body: %+v", bodyNode.Edges[0])
	}
	if !loop.Edges[0].Greedy || !loop.Edges[1].Greedy {
		t.Errorf("greedy star edges = %+v, want both Greedy=true", loop.Edges)
	}
}

func TestBuildNonGreedyStarMarksSubtreeEdges(t *testing.T) {
	g := mustBuild(t, "a*?")
	capStart := g.Nodes[g.Nodes[g.Start].Edges[0].Next].Edges[0]
	loop := g.Nodes[capStart.Next]
	if len(loop.Edges) != 2 {
		t.Fatalf("loop node has %d edges, want 2", len(loop.Edges))
	}
	// Non-greedy: exit edge listed first.
	if loop.Edges[0].Action != ActionEpsilon {
		t.Fatalf("edge 0 = %v, want Epsilon", loop.Edges[0].Action)
	}
	for i, e := range loop.Edges {
		if e.Greedy {
			t.Errorf("edge %d of non-greedy star = %+v, want Greedy=false", i, e)
		}
	}
}

func TestBuildUnionBranchOrder(t *testing.T) {
	g := mustBuild(t, "a|b|c")
	capStart := g.Nodes[g.Nodes[g.Start].Edges[0].Next].Edges[0]
	branch := g.Nodes[capStart.Next]
	if len(branch.Edges) != 3 {
		t.Fatalf("branch node has %d edges, want 3", len(branch.Edges))
	}
	want := []rune{'a', 'b', 'c'}
	for i, e := range branch.Edges {
		target := g.Nodes[e.Next]
		if target.Edges[0].Char != want[i] {
			t.Errorf("branch %d leads to Char(%q), want %q", i, target.Edges[0].Char, want[i])
		}
	}
}

func TestBuildIncludeSetItems(t *testing.T) {
	g := mustBuild(t, "[a-z_]")
	capStart := g.Nodes[g.Nodes[g.Start].Edges[0].Next].Edges[0]
	setNode := g.Nodes[capStart.Next]
	e := setNode.Edges[0]
	if e.Action != ActionIncludeSet || len(e.Items) != 2 {
		t.Fatalf("edge = %+v, want IncludeSet with 2 items", e)
	}
	if e.Items[0] != (SetItem{Lo: 'a', Hi: 'z'}) {
		t.Errorf("item 0 = %+v, want a-z", e.Items[0])
	}
	if e.Items[1] != (SetItem{Lo: '_', Hi: '_'}) {
		t.Errorf("item 1 = %+v, want literal _", e.Items[1])
	}
}

func TestBuildRepeatExactUnrollsCopies(t *testing.T) {
	g := mustBuild(t, "a{3}")
	cur := g.Nodes[g.Nodes[g.Start].Edges[0].Next].Edges[0].Next
	chars := 0
	steps := 0
	for !g.IsAccept(cur) {
		node := g.Nodes[cur]
		if len(node.Edges) != 1 {
			t.Fatalf("unexpected branching node in unrolled repeat: %+v", node)
		}
		if node.Edges[0].Action == ActionChar {
			chars++
		}
		cur = node.Edges[0].Next
		steps++
		if steps > 10 {
			t.Fatal("repeat chain too long, likely never reaching accept")
		}
	}
	if chars != 3 {
		t.Errorf("unrolled chain has %d Char steps, want 3", chars)
	}
}
