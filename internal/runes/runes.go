// Package runes pre-indexes a subject string into a random-access
// sequence of code points, so every engine pays one O(n) UTF-8 decode
// pass per search instead of re-scanning from byte 0 on every step
// (spec.md §9).
package runes

// Sequence is a subject string decoded once into runes, addressable by
// code-point index rather than byte offset.
type Sequence struct {
	runes []rune
}

// Index builds a Sequence from s.
func Index(s string) *Sequence {
	return &Sequence{runes: []rune(s)}
}

// Len returns the number of code points in the sequence.
func (s *Sequence) Len() int { return len(s.runes) }

// At returns the code point at index i. i must be in [0, Len()).
func (s *Sequence) At(i int) rune { return s.runes[i] }

// Slice returns the code points in [lo, hi) as a string.
func (s *Sequence) Slice(lo, hi int) string { return string(s.runes[lo:hi]) }

// Runes exposes the underlying decoded slice, e.g. for callers that want
// to build their own byte offsets back out of a code-point range.
func (s *Sequence) Runes() []rune { return s.runes }
