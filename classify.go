package updock

import (
	"fmt"
	"sort"
)

// UpdateSet is the classification result for one image: which of the
// registry's tags are updates over the current one, split by severity.
type UpdateSet struct {
	// Breaking and Compatible hold one representative tag per distinct
	// extracted version, ordered by version descending (most impactful
	// update first).
	Breaking   []string
	Compatible []string

	// Unmatched counts candidate tags that did not match the pattern.
	// Those are routinely skipped, never an error.
	Unmatched int
}

// HasUpdates reports whether either bucket is non-empty. Safe on a
// nil receiver.
func (u *UpdateSet) HasUpdates() bool {
	return u != nil && (len(u.Breaking) > 0 || len(u.Compatible) > 0)
}

// CurrentTagMismatchError means the tag currently in use does not
// match its own declared pattern, so there is no reference point to
// classify against. This usually indicates a stale or hand-edited
// pattern directive.
type CurrentTagMismatchError struct {
	Tag     string
	Pattern string
}

func (e *CurrentTagMismatchError) Error() string {
	return fmt.Sprintf("current tag %q does not match pattern %q", e.Tag, e.Pattern)
}

// tagVersion pairs a candidate tag with its extracted version for
// dedup and ordering.
type tagVersion struct {
	tag string
	ver Version
}

// Classify buckets candidate tags into breaking and compatible updates
// relative to the current tag.
//
// Pipeline: match the current tag (failure is fatal for this image),
// match every candidate (failures are counted and skipped), classify
// the rest, drop NoChange and Downgrade, deduplicate identical
// extracted versions keeping the first tag seen, and sort each bucket
// by version descending.
func (p Pattern) Classify(current string, candidates []string) (*UpdateSet, error) {
	cur, ok := p.Match(current)
	if !ok {
		return nil, &CurrentTagMismatchError{Tag: current, Pattern: p.source}
	}

	set := &UpdateSet{}
	seen := make(map[string]struct{}, len(candidates))

	var breaking, compatible []tagVersion
	for _, tag := range candidates {
		ver, ok := p.Match(tag)
		if !ok {
			set.Unmatched++

			continue
		}

		cls := p.Compare(cur, ver)
		if cls != Breaking && cls != Compatible {
			continue
		}

		// first tag for a given version wins
		key := ver.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if cls == Breaking {
			breaking = append(breaking, tagVersion{tag: tag, ver: ver})
		} else {
			compatible = append(compatible, tagVersion{tag: tag, ver: ver})
		}
	}

	set.Breaking = sortedTags(breaking)
	set.Compatible = sortedTags(compatible)

	return set, nil
}

// sortedTags orders pairs by version descending and projects the tags.
func sortedTags(in []tagVersion) []string {
	if len(in) == 0 {
		return nil
	}

	sort.SliceStable(in, func(i, j int) bool {
		return in[i].ver.Compare(in[j].ver) > 0
	})

	out := make([]string, len(in))
	for i, tv := range in {
		out[i] = tv.tag
	}

	return out
}
