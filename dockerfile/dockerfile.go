// Package dockerfile scans Dockerfile input for FROM statements and
// their updock pattern directives.
//
// A pattern directive is a comment line immediately preceding a FROM
// statement (blank lines in between are allowed):
//
//	# updock --pattern "<!>.<>.<>"
//	FROM debian:10.3.4
package dockerfile

import (
	"bufio"
	"regexp"
	"strings"

	"github.com/distribution/reference"
	"github.com/pkg/errors"

	"updock"
)

var (
	fromRe      = regexp.MustCompile(`(?i)^\s*FROM\s+(?:--platform=\S+\s+)?(\S+)(?:\s+AS\s+\S+)?\s*$`)
	directiveRe = regexp.MustCompile(`^\s*#\s*updock\s+--pattern\s+"([^"]*)"\s*$`)
)

// Instruction is one FROM statement with its resolved pattern.
// A per-statement problem (unparsable reference, missing or malformed
// pattern) lands in Err: the statement is still reported, as a failed
// image, and never aborts the rest of the file.
type Instruction struct {
	// Image is the repository name in familiar form ("debian",
	// "woozymasta/rats").
	Image string
	// Tag is the referenced tag; "latest" when none is written.
	Tag string
	// Line is the 1-based line number of the FROM statement.
	Line int

	Pattern updock.Pattern
	Err     error
}

// Parse scans input and returns one Instruction per FROM statement, in
// file order. fallback, when non-nil, supplies the pattern for FROM
// statements without their own directive.
//
// The only file-level error is a dangling directive: a pattern comment
// with no FROM statement after it.
func Parse(input string, fallback *updock.Pattern) ([]Instruction, error) {
	var (
		out []Instruction

		pending     *updock.Pattern
		pendingErr  error
		pendingLine int
	)

	sc := bufio.NewScanner(strings.NewReader(input))
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()

		if m := directiveRe.FindStringSubmatch(text); m != nil {
			p, err := updock.CompilePattern(m[1])
			if err != nil {
				pending, pendingErr, pendingLine = nil, err, line
			} else {
				pending, pendingErr, pendingLine = &p, nil, line
			}

			continue
		}

		m := fromRe.FindStringSubmatch(text)
		if m == nil {
			// any other content (including blank lines and ordinary
			// comments) keeps a pending directive alive
			continue
		}

		out = append(out, instruction(m[1], line, pending, pendingErr, fallback))
		pending, pendingErr = nil, nil
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "scan input")
	}

	if pending != nil || pendingErr != nil {
		return nil, errors.Errorf("pattern directive on line %d is not followed by a FROM statement", pendingLine)
	}

	return out, nil
}

// instruction resolves one FROM argument against the directive state.
func instruction(raw string, line int, pending *updock.Pattern, pendingErr error, fallback *updock.Pattern) Instruction {
	inst := Instruction{Line: line}

	name, tag, err := ParseRef(raw)
	if err != nil {
		inst.Image = raw
		inst.Err = err

		return inst
	}
	inst.Image, inst.Tag = name, tag

	switch {
	case pendingErr != nil:
		inst.Err = pendingErr
	case pending != nil:
		inst.Pattern = *pending
	case fallback != nil:
		inst.Pattern = *fallback
	default:
		inst.Err = errors.Errorf("no pattern for image %q (add an `# updock --pattern` directive or pass --pattern)", inst.Image)
	}

	return inst
}

// ParseRef splits an image reference into its familiar repository name
// and tag, defaulting the tag to "latest".
func ParseRef(raw string) (name, tag string, err error) {
	ref, err := reference.ParseNormalizedNamed(raw)
	if err != nil {
		return "", "", errors.Wrapf(err, "invalid image reference %q", raw)
	}

	tag = "latest"
	if tagged, ok := ref.(reference.Tagged); ok {
		tag = tagged.Tag()
	}

	return reference.FamiliarName(ref), tag, nil
}
