package dfa

import "testing"

func mustCompile(t *testing.T, pattern string) *Engine {
	t.Helper()
	e, err := Compile(pattern)
	if err != nil {
		t.Fatalf("Compile(%q) failed: %v", pattern, err)
	}
	return e
}

func TestEngineIsMatchLiteral(t *testing.T) {
	e := mustCompile(t, "abc")
	if !e.IsMatch("xxabcyy") {
		t.Error("want match")
	}
	if e.IsMatch("xyz") {
		t.Error("want no match")
	}
}

func TestEngineLeftmostLongestOverLeftmostFirst(t *testing.T) {
	// Unlike the NFA's leftmost-first simulator, the DFA must report the
	// LONGEST match at the leftmost start: "ab", not "a".
	e := mustCompile(t, "a|ab")
	start, end, ok := e.Find("ab")
	if !ok {
		t.Fatal("want match")
	}
	if start != 0 || end-start != 2 {
		t.Errorf("Find = (%d,%d), want (0,2)", start, end)
	}
}

func TestEngineGreedyVsNonGreedyStar(t *testing.T) {
	// A non-greedy edge out of a state that already accepts must not
	// extend the match, so "a*?" stops at the first (zero-length) accept
	// while "a*" still consumes every "a" it can reach.
	greedy := mustCompile(t, "a*")
	_, end, ok := greedy.Find("aaab")
	if !ok || end != 3 {
		t.Errorf("a*: Find on %q = end %d, want 3", "aaab", end)
	}

	lazy := mustCompile(t, "a*?")
	_, end, ok = lazy.Find("aaab")
	if !ok || end != 0 {
		t.Errorf("a*?: Find on %q = end %d, want 0", "aaab", end)
	}
}

func TestEngineAnchors(t *testing.T) {
	e := mustCompile(t, "^abc$")
	if !e.IsMatch("abc") {
		t.Error("want match on exact subject")
	}
	if e.IsMatch("xabc") || e.IsMatch("abcx") {
		t.Error("anchors should reject extra characters")
	}
}

func TestEngineStartAnchorOnlyAtOffsetZero(t *testing.T) {
	e := mustCompile(t, "^a")
	if e.IsMatch("ba") {
		t.Error("'^a' must not match when 'a' only appears after offset 0")
	}
	if !e.IsMatch("ab") {
		t.Error("'^a' should match when subject begins with 'a'")
	}
}

func TestEngineCharacterClasses(t *testing.T) {
	e := mustCompile(t, "[0-9]+")
	start, end, ok := e.Find("room 42b")
	if !ok || end-start != 2 {
		t.Errorf("Find = (%d,%d), want length 2", start, end)
	}
}

func TestEngineRepeatBounds(t *testing.T) {
	e := mustCompile(t, "a{2,3}")
	if e.IsMatch("a") {
		t.Error("single 'a' should not satisfy {2,3}")
	}
	_, end, ok := e.Find("aaaa")
	if !ok || end != 3 {
		t.Errorf("Find end = %d, want 3", end)
	}
}

func TestEngineFindAllNonOverlapping(t *testing.T) {
	e := mustCompile(t, "[0-9]+")
	got := e.FindAll("12 ab 345 x 6")
	want := [][2]int{{0, 2}, {6, 9}, {12, 13}}
	if len(got) != len(want) {
		t.Fatalf("FindAll = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("match %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestEnginePrefilterRejectsNonLiteralSubject(t *testing.T) {
	// "cat|dog" reduces to a pure literal union; the ahocorasick prefilter
	// should let the real engine rule out a subject containing neither.
	e := mustCompile(t, "cat|dog")
	if e.IsMatch("a fish and a bird") {
		t.Error("want no match, subject contains neither literal")
	}
	if !e.IsMatch("a dog in the yard") {
		t.Error("want match, subject contains \"dog\"")
	}
}

func TestEngineEndToEndURLScheme(t *testing.T) {
	e := mustCompile(t, "(https?|ftp):")
	if !e.IsMatch("visit https: now") {
		t.Error("want match on https:")
	}
	if !e.IsMatch("visit ftp: now") {
		t.Error("want match on ftp:")
	}
	if e.IsMatch("visit http now") {
		t.Error("missing ':' should not match")
	}
}
