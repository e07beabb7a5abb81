package search

import (
	"bufio"
	"errors"
	"io"
)

// References:
// https://en.wikipedia.org/wiki/Knuth%E2%80%93Morris%E2%80%93Pratt_algorithm

// BuildLPS returns the failure function of pattern. lps[i] is the length of
// the longest proper prefix of pattern[:i+1] which is also its suffix.
func BuildLPS[E comparable](pattern []E) []int {
	return BuildLPSFunc(pattern, func(a, b E) bool { return a == b })
}

/*
BuildLPSFunc is BuildLPS with a custom equality.

	pattern: a b a b c a b a b a
	lps:     0 0 1 2 0 1 2 3 4 3

On mismatch at pattern[i] after matching j elements, the next candidate
is the border of pattern[:j], which is lps[j-1].
*/
func BuildLPSFunc[E any](pattern []E, eq func(a, b E) bool) []int {
	lps := make([]int, len(pattern))
	for i, j := 1, 0; i < len(pattern); i++ {
		for j > 0 && !eq(pattern[i], pattern[j]) {
			j = lps[j-1]
		}
		if eq(pattern[i], pattern[j]) {
			j++
		}
		lps[i] = j
	}
	return lps
}

// Matcher keeps the failure function of a pattern for repeated searches.
type Matcher[E any] struct {
	pattern []E
	lps     []int
	eq      func(a, b E) bool
}

func NewMatcher[E comparable](pattern []E) *Matcher[E] {
	return NewMatcherFunc(pattern, func(a, b E) bool { return a == b })
}

func NewMatcherFunc[E any](pattern []E, eq func(a, b E) bool) *Matcher[E] {
	return &Matcher[E]{
		pattern: pattern,
		lps:     BuildLPSFunc(pattern, eq),
		eq:      eq,
	}
}

func (m *Matcher[E]) Len() int {
	return len(m.pattern)
}

// step advances the number of matched elements j by one text element.
func (m *Matcher[E]) step(j int, e E) int {
	if j == len(m.pattern) {
		j = m.lps[j-1]
	}
	for j > 0 && !m.eq(e, m.pattern[j]) {
		j = m.lps[j-1]
	}
	if m.eq(e, m.pattern[j]) {
		j++
	}
	return j
}

// Index returns the first index of the pattern in text, or -1.
// An empty pattern matches at 0.
func (m *Matcher[E]) Index(text []E) int {
	if len(m.pattern) == 0 {
		return 0
	}
	for i, j := 0, 0; i < len(text); i++ {
		if j = m.step(j, text[i]); j == len(m.pattern) {
			return i - j + 1
		}
	}
	return -1
}

// IndexAll returns the start of every match, overlapping ones included.
// An empty pattern matches at every index from 0 to len(text).
func (m *Matcher[E]) IndexAll(text []E) []int {
	if len(m.pattern) == 0 {
		all := make([]int, len(text)+1)
		for i := range all {
			all[i] = i
		}
		return all
	}
	var res []int
	for i, j := 0, 0; i < len(text); i++ {
		if j = m.step(j, text[i]); j == len(m.pattern) {
			res = append(res, i-j+1)
		}
	}
	return res
}

func Find[E comparable](text, pattern []E) int {
	return NewMatcher(pattern).Index(text)
}

func FindAll[E comparable](text, pattern []E) []int {
	return NewMatcher(pattern).IndexAll(text)
}

func FindFunc[E any](text, pattern []E, eq func(a, b E) bool) int {
	return NewMatcherFunc(pattern, eq).Index(text)
}

// FindString is strings.Index by KMP. The index is in bytes.
func FindString(s, pat string) int {
	return Find([]byte(s), []byte(pat))
}

// FindReader returns the byte offset of the first match in the stream, or
// -1 if the stream ends without a match. An io.ByteReader is read no
// further than the end of the first match.
func FindReader(r io.Reader, pattern []byte) (int64, error) {
	m := NewMatcher(pattern)
	if m.Len() == 0 {
		return 0, nil
	}
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReaderSize(r, 64)
	}
	j := 0
	for off := int64(0); ; off++ {
		b, err := br.ReadByte()
		if errors.Is(err, io.EOF) {
			return -1, nil
		} else if err != nil {
			return -1, err
		}
		if j = m.step(j, b); j == m.Len() {
			return off - int64(j) + 1, nil
		}
	}
}
