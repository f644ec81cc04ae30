/*
Updock checks container image tag references in Dockerfiles and
docker-compose manifests against the tags published on Docker Hub and
reports available updates, classified as breaking or compatible by a
user-authored pattern.

Exit codes: 0 no updates, 1 compatible updates, 2 breaking updates,
10 at least one image failed to check.
*/
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"updock"
	"updock/compose"
	"updock/dockerfile"
	"updock/registry"
	"updock/report"
)

type options struct {
	LogLevel    string        `long:"log-level"   env:"UPDOCK_LOG_LEVEL"   default:"warning" description:"Log verbosity (debug, info, warning, error)"`
	HubURL      string        `long:"hub-url"     env:"UPDOCK_HUB_URL"     description:"Docker Hub API base URL"`
	Concurrency int           `long:"concurrency" env:"UPDOCK_CONCURRENCY" default:"4"       description:"Parallel image checks"`
	Timeout     time.Duration `long:"timeout"     env:"UPDOCK_TIMEOUT"     default:"30s"     description:"Per-image registry timeout"`
}

var (
	opts options
	log  = logrus.New()

	// exitCode carries the report level out of the executed command.
	exitCode int
)

func main() {
	// Local overrides for dev runs; harmless elsewhere.
	_ = godotenv.Load()

	parser := flags.NewParser(&opts, flags.Default)
	parser.LongDescription = `Updock checks container image tags against Docker Hub.
Patterns mark the numeric parts of a tag: "<>" is a compatible version slot,
"<!>" a breaking one, everything else matches literally. Declare a pattern in
a comment directly above a FROM statement:
  # updock --pattern "<!>.<>.<>"` + "\n  FROM debian:10.3.4"

	addCommand(parser, "fetch", "List published tags for an image",
		"Fetches the tags published for an image, optionally filtered by a pattern.",
		&fetchCmd{})
	addCommand(parser, "check", "Check a Dockerfile for image updates",
		"Checks every FROM statement of a Dockerfile against Docker Hub.",
		&checkCmd{})
	addCommand(parser, "check-compose", "Check a docker-compose manifest for image updates",
		"Checks every service of a docker-compose manifest, following build contexts to their Dockerfiles.",
		&checkComposeCmd{})

	parser.CommandHandler = func(cmd flags.Commander, args []string) error {
		setupLog()

		return cmd.Execute(args)
	}

	if _, err := parser.Parse(); err != nil {
		var flagErr *flags.Error
		if errors.As(err, &flagErr) {
			if flagErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
			// parser already printed the message
			os.Exit(report.ExitFailure)
		}

		fmt.Fprintf(os.Stderr, "updock: %v\n", err)
		os.Exit(report.ExitFailure)
	}

	os.Exit(exitCode)
}

func addCommand(parser *flags.Parser, name, short, long string, cmd interface{}) {
	if _, err := parser.AddCommand(name, short, long, cmd); err != nil {
		panic(err)
	}
}

func setupLog() {
	log.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(opts.LogLevel)
	if err != nil {
		level = logrus.WarnLevel
	}
	log.SetLevel(level)
}

func newChecker(maxTags int) *updock.Checker {
	return &updock.Checker{
		Fetcher: &registry.Client{
			BaseURL: opts.HubURL,
			MaxTags: maxTags,
			Log:     log,
		},
		Timeout:     opts.Timeout,
		Concurrency: opts.Concurrency,
		Log:         log,
	}
}

// * fetch

type fetchCmd struct {
	Pattern string `short:"p" long:"pattern"     description:"Print only tags matching this pattern"`
	Amount  int    `short:"a" long:"amount"      description:"Maximum number of tags to fetch (<=0 = all)" default:"25"`
	Sort    bool   `short:"s" long:"semver-sort" description:"Order plain listings by SemVer, newest first"`

	Args struct {
		Image string `positional-arg-name:"image" description:"Image name, e.g. debian or user/app"`
	} `positional-args:"yes" required:"yes"`
}

func (c *fetchCmd) Execute([]string) error {
	client := &registry.Client{BaseURL: opts.HubURL, MaxTags: c.Amount, Log: log}

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	tags, err := client.Tags(ctx, c.Args.Image)
	if err != nil {
		return errors.Wrapf(err, "fetch tags for %q", c.Args.Image)
	}

	switch {
	case c.Pattern != "":
		pattern, err := updock.CompilePattern(c.Pattern)
		if err != nil {
			return err
		}

		matched := pattern.FilterTags(tags)
		fmt.Printf("Fetched %d tags, %d match `%s`:\n", len(tags), len(matched), c.Pattern)
		tags = matched

	case c.Sort:
		tags = updock.SortTagsSemver(tags)
		fmt.Printf("Fetched %d tags:\n", len(tags))

	default:
		fmt.Printf("Fetched %d tags:\n", len(tags))
	}

	for _, t := range tags {
		fmt.Println(t)
	}

	return nil
}

// * check

type checkCmd struct {
	Pattern string `short:"p" long:"pattern" description:"Fallback pattern for FROM statements without a directive"`
	JSON    bool   `short:"j" long:"json"    description:"Emit the report as JSON"`

	Args struct {
		File string `positional-arg-name:"dockerfile"`
	} `positional-args:"yes" required:"yes"`
}

func (c *checkCmd) Execute([]string) error {
	input, err := os.ReadFile(c.Args.File)
	if err != nil {
		return errors.Wrapf(err, "read %q", c.Args.File)
	}

	fallback, err := compileFallback(c.Pattern)
	if err != nil {
		return err
	}

	instructions, err := dockerfile.Parse(string(input), fallback)
	if err != nil {
		return errors.Wrapf(err, "parse %q", c.Args.File)
	}

	items := make([]pendingCheck, 0, len(instructions))
	for _, inst := range instructions {
		items = append(items, pendingCheck{
			display: inst.Image,
			image:   updock.Image{Name: inst.Image, Tag: inst.Tag, Pattern: inst.Pattern},
			err:     inst.Err,
		})
	}

	rep := report.New(c.Args.File)
	runChecks(rep, items)

	return emit(rep, c.JSON)
}

// * check-compose

type checkComposeCmd struct {
	Pattern string `short:"p" long:"pattern" description:"Fallback pattern for services without one"`
	JSON    bool   `short:"j" long:"json"    description:"Emit the report as JSON"`

	Args struct {
		File string `positional-arg-name:"compose-file"`
	} `positional-args:"yes" required:"yes"`
}

func (c *checkComposeCmd) Execute([]string) error {
	input, err := os.ReadFile(c.Args.File)
	if err != nil {
		return errors.Wrapf(err, "read %q", c.Args.File)
	}

	services, err := compose.Parse(input)
	if err != nil {
		return errors.Wrapf(err, "parse %q", c.Args.File)
	}

	fallback, err := compileFallback(c.Pattern)
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.Args.File)

	var items []pendingCheck
	for _, svc := range services {
		if svc.Build != "" {
			items = append(items, buildContextChecks(dir, svc, fallback)...)

			continue
		}

		items = append(items, imageServiceCheck(svc, fallback))
	}

	rep := report.New(c.Args.File)
	runChecks(rep, items)

	return emit(rep, c.JSON)
}

// buildContextChecks scans the service's Dockerfile. A missing or
// unparsable Dockerfile fails this service only.
func buildContextChecks(dir string, svc compose.Service, fallback *updock.Pattern) []pendingCheck {
	path := filepath.Join(dir, svc.Build, "Dockerfile")

	raw, err := os.ReadFile(path)
	if err != nil {
		return []pendingCheck{{display: svc.Name, err: errors.Wrapf(err, "read %q", path)}}
	}

	instructions, err := dockerfile.Parse(string(raw), fallback)
	if err != nil {
		return []pendingCheck{{display: svc.Name, err: errors.Wrapf(err, "parse %q", path)}}
	}

	out := make([]pendingCheck, 0, len(instructions))
	for _, inst := range instructions {
		out = append(out, pendingCheck{
			display: svc.Name + "/" + inst.Image,
			image:   updock.Image{Name: inst.Image, Tag: inst.Tag, Pattern: inst.Pattern},
			err:     inst.Err,
		})
	}

	return out
}

// imageServiceCheck resolves a pinned-image service; its pattern comes
// from x-updock-pattern or the CLI fallback.
func imageServiceCheck(svc compose.Service, fallback *updock.Pattern) pendingCheck {
	name, tag, err := dockerfile.ParseRef(svc.Image)
	if err != nil {
		return pendingCheck{display: svc.Name, err: err}
	}

	item := pendingCheck{
		display: svc.Name + "/" + name,
		image:   updock.Image{Name: name, Tag: tag},
	}

	switch {
	case svc.Pattern != "":
		p, err := updock.CompilePattern(svc.Pattern)
		if err != nil {
			item.err = err
		} else {
			item.image.Pattern = p
		}

	case fallback != nil:
		item.image.Pattern = *fallback

	default:
		item.err = errors.Errorf("no pattern for service %q (set x-updock-pattern or pass --pattern)", svc.Name)
	}

	return item
}

// * shared plumbing

// pendingCheck is one image reference queued for checking. A non-nil
// err short-circuits the registry round-trip and goes straight into
// the report.
type pendingCheck struct {
	display string // report identifier, may carry a service prefix
	image   updock.Image
	err     error
}

// runChecks fans the healthy items out to the checker and folds every
// outcome into the report, preserving input order.
func runChecks(rep *report.Report, items []pendingCheck) {
	entries := make([]report.Entry, len(items))

	var (
		images []updock.Image
		idx    []int
	)
	for i, it := range items {
		entries[i] = report.Entry{Name: it.display, Tag: it.image.Tag, Err: it.err}
		if it.err == nil {
			images = append(images, it.image)
			idx = append(idx, i)
		}
	}

	results := newChecker(0).CheckAll(context.Background(), images)
	for k, res := range results {
		entries[idx[k]].Updates = res.Updates
		entries[idx[k]].Err = res.Err
	}

	for _, e := range entries {
		rep.Add(e)
	}
}

func compileFallback(pattern string) (*updock.Pattern, error) {
	if pattern == "" {
		return nil, nil
	}

	p, err := updock.CompilePattern(pattern)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func emit(rep *report.Report, asJSON bool) error {
	if asJSON {
		raw, err := rep.JSON()
		if err != nil {
			return errors.Wrap(err, "serialize report")
		}
		fmt.Println(string(raw))
	} else {
		fmt.Print(rep.Text())
	}

	exitCode = rep.Level().ExitCode()

	return nil
}
