package updock

import (
	"strconv"
	"strings"
)

// Version is the ordered sequence of integers a pattern extracted from
// a tag, one element per slot, leftmost slot first.
type Version []uint64

// String renders the version as dot-joined integers.
func (v Version) String() string {
	var b strings.Builder
	for i, n := range v {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.FormatUint(n, 10))
	}

	return b.String()
}

// Compare orders versions slot-by-slot, most significant (leftmost)
// slot first. Returns -1, 0, or +1. A shorter version that is a prefix
// of a longer one compares lower; in practice both come from the same
// pattern and have equal length.
func (v Version) Compare(o Version) int {
	for i := 0; i < len(v) && i < len(o); i++ {
		switch {
		case v[i] < o[i]:
			return -1
		case v[i] > o[i]:
			return 1
		}
	}

	switch {
	case len(v) < len(o):
		return -1
	case len(v) > len(o):
		return 1
	}

	return 0
}

// Match applies the pattern to a tag. On success it returns the
// extracted Version; otherwise ok is false. A failed match is routine
// (most registry tags will not fit a given pattern) and allocates
// nothing beyond the partial result.
//
// Slots consume digits greedily. Two adjacent slots with no literal
// between them therefore never match: the first slot takes the whole
// digit run and the second finds none.
func (p Pattern) Match(tag string) (_ Version, ok bool) {
	out := make(Version, 0, len(p.breaking))
	pos := 0

	for _, seg := range p.segments {
		if !seg.slot {
			if !strings.HasPrefix(tag[pos:], seg.literal) {
				return nil, false
			}
			pos += len(seg.literal)

			continue
		}

		start := pos
		for pos < len(tag) && tag[pos] >= '0' && tag[pos] <= '9' {
			pos++
		}
		if pos == start {
			return nil, false
		}

		n, err := strconv.ParseUint(tag[start:pos], 10, 64)
		if err != nil {
			// digit run too long for uint64
			return nil, false
		}
		out = append(out, n)
	}

	if pos != len(tag) {
		return nil, false
	}

	return out, true
}

// FilterTags returns the tags that match the pattern, preserving the
// input order.
func (p Pattern) FilterTags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		if _, ok := p.Match(t); ok {
			out = append(out, t)
		}
	}

	return out
}
