package updock

// Classification of a candidate version relative to the current one.
type Classification int

const (
	// NoChange means the candidate equals the current version.
	NoChange Classification = iota
	// Downgrade means the candidate is older than the current version.
	Downgrade
	// Compatible means the most significant changed slot is non-breaking.
	Compatible
	// Breaking means the most significant changed slot is breaking.
	Breaking
)

// String returns a stable textual representation for Classification.
func (c Classification) String() string {
	switch c {
	case Downgrade:
		return "downgrade"
	case Compatible:
		return "compatible"
	case Breaking:
		return "breaking"
	default:
		return "no change"
	}
}

// Compare classifies candidate against current. Both versions must
// come from this pattern, so they share the pattern's slot count.
//
// Significance is positional: the leftmost slot where the versions
// differ decides the outcome, regardless of how later slots are
// flagged. With pattern "<!>.<>.<>" and current 1.4.12, candidate
// 1.6.12 is compatible (slot 2 changed, non-breaking) while 2.4.12 is
// breaking (slot 1 changed, breaking). A candidate that is lower at
// the deciding slot is a Downgrade and never reported as an update.
func (p Pattern) Compare(current, candidate Version) Classification {
	for i := range current {
		if i >= len(candidate) || candidate[i] == current[i] {
			continue
		}

		if candidate[i] < current[i] {
			return Downgrade
		}

		if p.breaking[i] {
			return Breaking
		}

		return Compatible
	}

	return NoChange
}
