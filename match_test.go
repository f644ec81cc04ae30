package updock

import (
	"reflect"
	"testing"
)

func TestMatch(t *testing.T) {
	t.Parallel()

	cases := []struct {
		pattern string
		tag     string
		want    Version
		ok      bool
	}{
		{"<>.<>.<>", "2.13.3", Version{2, 13, 3}, true},
		{"<>.<>.<>", "2.13.3a", nil, false}, // trailing character
		{"<>.<>.<>", "2.13", nil, false},    // slot finds no digits after "2.13"
		{"<>.<>.<>", "latest", nil, false},

		{"debian-<>-beta", "debian-10-beta", Version{10}, true},
		{"debian-<>-beta", "debian-10", nil, false},
		{"debian-<>-beta", "ubuntu-10-beta", nil, false},

		{"<!>.<>.<>", "1.4.12", Version{1, 4, 12}, true},
		{"v<>", "v7", Version{7}, true},
		{"v<>", "7", nil, false},

		// greedy digit runs
		{"<>", "0013", Version{13}, true},
		{"<>x<>", "12x34", Version{12, 34}, true},

		// adjacent slots: the first slot consumes every digit, the
		// second finds none. Documented limitation, not a defect.
		{"<><>", "12", nil, false},
		{"<>!<>", "12!34", Version{12, 34}, true},

		// digit run wider than uint64
		{"<>", "99999999999999999999999999", nil, false},
	}

	for _, tc := range cases {
		p := MustCompilePattern(tc.pattern)
		got, ok := p.Match(tc.tag)
		if ok != tc.ok {
			t.Fatalf("Match(%q, %q) ok = %v; want %v", tc.pattern, tc.tag, ok, tc.ok)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("Match(%q, %q) = %v; want %v", tc.pattern, tc.tag, got, tc.want)
		}
	}
}

func TestMatch_RoundTrip(t *testing.T) {
	t.Parallel()

	// Matching the literal-plus-digit string a pattern was derived
	// from round-trips the integers exactly.
	cases := []struct {
		pattern string
		tag     string
		want    Version
	}{
		{"<!>.<>.<>", "10.0.7", Version{10, 0, 7}},
		{"release-<>", "release-42", Version{42}},
		{"<>-alpine<>", "3-alpine18", Version{3, 18}},
	}

	for _, tc := range cases {
		got, ok := MustCompilePattern(tc.pattern).Match(tc.tag)
		if !ok || !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("Match(%q, %q) = %v, %v; want %v, true", tc.pattern, tc.tag, got, ok, tc.want)
		}
	}
}

func TestFilterTags(t *testing.T) {
	t.Parallel()

	p := MustCompilePattern("<>.<>")

	in := []string{"1.2", "latest", "2.0", "2.0.1", "v3.1", "10.4"}
	want := []string{"1.2", "2.0", "10.4"}

	if got := p.FilterTags(in); !reflect.DeepEqual(got, want) {
		t.Fatalf("FilterTags = %v; want %v", got, want)
	}
}

func TestVersionCompare(t *testing.T) {
	t.Parallel()

	cases := []struct {
		a, b Version
		want int
	}{
		{Version{1, 2, 3}, Version{1, 2, 3}, 0},
		{Version{1, 2, 3}, Version{1, 2, 4}, -1},
		{Version{2, 0, 0}, Version{1, 99, 99}, 1},
		{Version{1, 10}, Version{1, 9}, 1},
		{Version{1}, Version{1, 0}, -1}, // prefix compares lower
	}

	for _, tc := range cases {
		if got := tc.a.Compare(tc.b); got != tc.want {
			t.Fatalf("Compare(%v, %v) = %d; want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestVersionString(t *testing.T) {
	t.Parallel()

	if got := (Version{1, 40, 3}).String(); got != "1.40.3" {
		t.Fatalf("Version.String() = %q; want %q", got, "1.40.3")
	}
	if got := (Version{}).String(); got != "" {
		t.Fatalf("empty Version.String() = %q; want empty", got)
	}
}
