package updock

import (
	"sort"

	"github.com/woozymasta/semver"
)

// SortTagsSemver orders tags by SemVer precedence, newest first. When
// any tag is not valid SemVer the whole list falls back to a plain
// descending lexicographic sort, so the result is always fully ordered
// by a single rule.
//
// This is a convenience for plain tag listings; classified update sets
// are ordered by their extracted pattern versions instead.
func SortTagsSemver(in []string) []string {
	if len(in) < 2 {
		return in
	}

	type item struct {
		orig string
		v    semver.Semver
	}

	arr := make([]item, 0, len(in))
	for _, t := range in {
		v, ok := semver.Parse(t)
		if !ok || !v.IsValid() {
			return sortLexDesc(in)
		}
		arr = append(arr, item{orig: t, v: v})
	}

	sort.Slice(arr, func(i, j int) bool {
		return arr[i].v.Compare(arr[j].v) > 0
	})

	out := make([]string, len(arr))
	for i, it := range arr {
		out[i] = it.orig
	}

	return out
}

// sortLexDesc does a plain descending lexicographic sort.
func sortLexDesc(in []string) []string {
	out := append([]string(nil), in...)
	sort.Sort(sort.Reverse(sort.StringSlice(out)))

	return out
}
