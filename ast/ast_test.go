package ast

import "testing"

func TestKindString(t *testing.T) {
	tests := []struct {
		k    Kind
		want string
	}{
		{CaptureGroup, "CaptureGroup"},
		{Union, "Union"},
		{MatchRange, "MatchRange"},
		{Kind(255), "Kind(255)"},
	}
	for _, tt := range tests {
		if got := tt.k.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.k, got, tt.want)
		}
	}
}

func TestChild(t *testing.T) {
	leaf := NewMatchChar('a')
	star := NewStar(Greedy, leaf)

	if got := star.Child(); got != leaf {
		t.Errorf("Child() = %v, want %v", got, leaf)
	}
	if got := leaf.Child(); got != nil {
		t.Errorf("Child() on leaf = %v, want nil", got)
	}
}

func TestWalkVisitsAllNodes(t *testing.T) {
	tree := NewCaptureGroup(0, NewUnion(
		NewMatchChar('a'),
		NewMatchRange('b', 'z'),
	))

	var kinds []Kind
	Walk(tree, func(n *Node) { kinds = append(kinds, n.Kind) })

	want := []Kind{CaptureGroup, Union, MatchChar, MatchRange}
	if len(kinds) != len(want) {
		t.Fatalf("Walk visited %d nodes, want %d: %v", len(kinds), len(want), kinds)
	}
	for i, k := range want {
		if kinds[i] != k {
			t.Errorf("kinds[%d] = %v, want %v", i, kinds[i], k)
		}
	}
}

func TestNewRepeatBounds(t *testing.T) {
	r := NewRepeat(Greedy, Finite(2), Infinity, NewMatchChar('a'))
	if r.Min.Num != 2 || r.Min.Infinite {
		t.Errorf("Min = %+v, want Finite(2)", r.Min)
	}
	if !r.Max.Infinite {
		t.Errorf("Max = %+v, want Infinity", r.Max)
	}
}
