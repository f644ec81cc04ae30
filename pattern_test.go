package updock

import (
	"errors"
	"testing"
)

func TestCompilePattern(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in    string
		slots int
	}{
		{"<>.<>.<>", 3},
		{"<!>.<>.<>", 3},
		{"debian-<>-beta", 1},
		{"<!>", 1},
		{"v<>", 1},
		{"<><>", 2}, // valid syntax, ambiguous at match time
	}

	for _, tc := range cases {
		p, err := CompilePattern(tc.in)
		if err != nil {
			t.Fatalf("CompilePattern(%q) = %v; want ok", tc.in, err)
		}
		if p.Slots() != tc.slots {
			t.Fatalf("CompilePattern(%q).Slots() = %d; want %d", tc.in, p.Slots(), tc.slots)
		}
		if p.String() != tc.in {
			t.Fatalf("CompilePattern(%q).String() = %q; want source text", tc.in, p.String())
		}
	}
}

func TestCompilePattern_Malformed(t *testing.T) {
	t.Parallel()

	cases := []string{
		"<",        // unterminated at end
		"<!",       // unterminated breaking marker
		"<x>",      // junk inside marker
		"<!x>",     // junk after breaking flag
		"1.<.2",    // unterminated in the middle
		"<>.<!",    // slot then unterminated
		"<<>>x<",   // trailing open marker
	}

	for _, in := range cases {
		if _, err := CompilePattern(in); err == nil {
			t.Fatalf("CompilePattern(%q) = ok; want error", in)
		} else {
			var perr *PatternError
			if !errors.As(err, &perr) {
				t.Fatalf("CompilePattern(%q) error = %v; want *PatternError", in, err)
			}
		}
	}
}

func TestCompilePattern_NoSlots(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "latest", "debian-stable"} {
		_, err := CompilePattern(in)
		if !errors.Is(err, ErrNoSlots) {
			t.Fatalf("CompilePattern(%q) error = %v; want ErrNoSlots", in, err)
		}
	}
}

func TestCompilePattern_BreakingFlags(t *testing.T) {
	t.Parallel()

	p := MustCompilePattern("<!>.<>.<!>")

	want := []bool{true, false, true}
	for i, b := range want {
		if p.breaking[i] != b {
			t.Fatalf("slot %d breaking = %v; want %v", i+1, p.breaking[i], b)
		}
	}
}
