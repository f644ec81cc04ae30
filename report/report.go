// Package report assembles per-image check outcomes into a
// human-readable text block or a JSON document.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"updock"
)

// Entry is the outcome for a single image reference. Err and Updates
// are mutually exclusive: a failed image is reported with its error
// message instead of an update list.
type Entry struct {
	// Name identifies the image; compose checks prefix the service,
	// e.g. "web/nginx".
	Name string
	// Tag is the tag currently referenced.
	Tag string

	Updates *updock.UpdateSet
	Err     error
}

// Ref renders the entry's image reference.
func (e Entry) Ref() string {
	if e.Tag == "" {
		return e.Name
	}

	return e.Name + ":" + e.Tag
}

// Level is the severity of a whole report, most severe outcome wins.
type Level int

const (
	// NoUpdates means every image checked out clean.
	NoUpdates Level = iota
	// CompatibleUpdates means at least one compatible update exists.
	CompatibleUpdates
	// BreakingUpdates means at least one breaking update exists.
	BreakingUpdates
	// Failure means at least one image could not be checked.
	Failure
)

// Exit code contract: the cron wrapper mails the report on any
// nonzero code.
const (
	ExitNoUpdates         = 0
	ExitCompatibleUpdates = 1
	ExitBreakingUpdates   = 2
	ExitFailure           = 10
)

// ExitCode maps the level to the process exit code.
func (l Level) ExitCode() int {
	switch l {
	case Failure:
		return ExitFailure
	case BreakingUpdates:
		return ExitBreakingUpdates
	case CompatibleUpdates:
		return ExitCompatibleUpdates
	default:
		return ExitNoUpdates
	}
}

// Report collects entries for one checked file, preserving insertion
// order.
type Report struct {
	// Path is the manifest the entries came from.
	Path string

	entries []Entry
}

// New returns an empty report for the given manifest path.
func New(path string) *Report {
	return &Report{Path: path}
}

// Add appends one image outcome.
func (r *Report) Add(e Entry) {
	r.entries = append(r.entries, e)
}

// AddResult appends the outcome of an engine check.
func (r *Report) AddResult(res updock.Result) {
	r.Add(Entry{
		Name:    res.Image.Name,
		Tag:     res.Image.Tag,
		Updates: res.Updates,
		Err:     res.Err,
	})
}

// Entries returns every entry in insertion order.
func (r *Report) Entries() []Entry {
	return r.entries
}

// Failures returns the entries that could not be checked.
func (r *Report) Failures() []Entry {
	var out []Entry
	for _, e := range r.entries {
		if e.Err != nil {
			out = append(out, e)
		}
	}

	return out
}

// Level returns the most severe outcome present in the report.
func (r *Report) Level() Level {
	level := NoUpdates
	for _, e := range r.entries {
		switch {
		case e.Err != nil:
			return Failure
		case e.Updates == nil:
		case len(e.Updates.Breaking) > 0:
			if level < BreakingUpdates {
				level = BreakingUpdates
			}
		case len(e.Updates.Compatible) > 0:
			if level < CompatibleUpdates {
				level = CompatibleUpdates
			}
		}
	}

	return level
}

// Text renders the report as per-image blocks, failures first, then
// breaking updates before compatible ones.
func (r *Report) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Report for `%s`:\n\n", r.Path)

	for _, e := range r.Failures() {
		fmt.Fprintf(&b, "`%s` failed: %v\n", e.Ref(), e.Err)
	}
	if len(r.Failures()) > 0 {
		b.WriteByte('\n')
	}

	for _, e := range r.entries {
		if e.Err != nil {
			continue
		}

		if !e.Updates.HasUpdates() {
			fmt.Fprintf(&b, "`%s` has no updates\n", e.Ref())

			continue
		}

		if len(e.Updates.Breaking) > 0 {
			fmt.Fprintf(&b, "`%s` has breaking updates: %s\n", e.Ref(), strings.Join(e.Updates.Breaking, ", "))
		}
		if len(e.Updates.Compatible) > 0 {
			fmt.Fprintf(&b, "`%s` has compatible updates: %s\n", e.Ref(), strings.Join(e.Updates.Compatible, ", "))
		}
	}

	return b.String()
}

// jsonReport mirrors the stable JSON output shape.
type jsonReport struct {
	Path              string              `json:"path"`
	Failures          map[string]string   `json:"failures"`
	NoUpdates         []string            `json:"no_updates"`
	CompatibleUpdates map[string][]string `json:"compatible_updates"`
	BreakingUpdates   map[string][]string `json:"breaking_updates"`
}

// JSON renders the report as an indented JSON document.
func (r *Report) JSON() ([]byte, error) {
	doc := jsonReport{
		Path:              r.Path,
		Failures:          map[string]string{},
		NoUpdates:         []string{},
		CompatibleUpdates: map[string][]string{},
		BreakingUpdates:   map[string][]string{},
	}

	for _, e := range r.entries {
		ref := e.Ref()

		if e.Err != nil {
			doc.Failures[ref] = e.Err.Error()

			continue
		}

		if !e.Updates.HasUpdates() {
			doc.NoUpdates = append(doc.NoUpdates, ref)

			continue
		}

		if len(e.Updates.Breaking) > 0 {
			doc.BreakingUpdates[ref] = e.Updates.Breaking
		}
		if len(e.Updates.Compatible) > 0 {
			doc.CompatibleUpdates[ref] = e.Updates.Compatible
		}
	}

	return json.MarshalIndent(doc, "", "  ")
}
