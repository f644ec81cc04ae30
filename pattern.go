package updock

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoSlots rejects patterns without a single numeric slot.
// Such a pattern can never report an update, which is almost
// certainly a user error.
var ErrNoSlots = errors.New("pattern contains no version slots")

// PatternError reports a malformed pattern string.
type PatternError struct {
	Pattern string
	Reason  string
	Pos     int
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q at offset %d: %s", e.Pattern, e.Pos, e.Reason)
}

// segment is one element of a compiled pattern: either a literal run
// of characters or a numeric slot.
type segment struct {
	literal  string // exact text to match; empty for slots
	slot     bool
	breaking bool // meaningful only when slot is true
}

// Pattern is a compiled tag template. A pattern matches a tag when the
// tag consists of the pattern's literals with a run of decimal digits
// in place of every slot. Immutable after compilation and safe for
// concurrent use.
type Pattern struct {
	source   string
	segments []segment
	breaking []bool // per-slot breaking flags, slot order
}

// CompilePattern parses a pattern string into a Pattern.
//
// Syntax: "<>" marks a non-breaking numeric slot, "<!>" marks a
// breaking one; every other character matches itself. There are no
// implicit delimiters. "<>.<>.<>" against "2.13.3" yields [2 13 3].
//
// A '<' that does not open a complete marker is a *PatternError;
// a pattern with no slots at all fails with ErrNoSlots.
func CompilePattern(s string) (Pattern, error) {
	p := Pattern{source: s}

	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			p.segments = append(p.segments, segment{literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(s); {
		if s[i] != '<' {
			lit.WriteByte(s[i])
			i++
			continue
		}

		breaking := false
		j := i + 1
		if j < len(s) && s[j] == '!' {
			breaking = true
			j++
		}

		if j >= len(s) || s[j] != '>' {
			return Pattern{}, &PatternError{Pattern: s, Pos: i, Reason: "unterminated slot marker"}
		}

		flush()
		p.segments = append(p.segments, segment{slot: true, breaking: breaking})
		p.breaking = append(p.breaking, breaking)
		i = j + 1
	}
	flush()

	if len(p.breaking) == 0 {
		return Pattern{}, fmt.Errorf("pattern %q: %w", s, ErrNoSlots)
	}

	return p, nil
}

// MustCompilePattern is CompilePattern that panics on error.
// Intended for fixed patterns in tests and examples.
func MustCompilePattern(s string) Pattern {
	p, err := CompilePattern(s)
	if err != nil {
		panic(err)
	}

	return p
}

// Slots returns the number of numeric slots in the pattern.
func (p Pattern) Slots() int {
	return len(p.breaking)
}

// String returns the pattern source text.
func (p Pattern) String() string {
	return p.source
}
