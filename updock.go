package updock

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// TagFetcher supplies the tags currently published for an image.
// Implemented by registry.Client; tests substitute their own.
type TagFetcher interface {
	Tags(ctx context.Context, image string) ([]string, error)
}

// Image is one tag reference to check for updates.
type Image struct {
	// Name is the repository name as written in the manifest,
	// e.g. "debian" or "woozymasta/rats".
	Name string
	// Tag is the tag currently referenced.
	Tag string
	// Pattern classifies the registry's tags against Tag.
	Pattern Pattern
}

// Result is the outcome of checking a single image. Err and Updates
// are mutually exclusive.
type Result struct {
	Image   Image
	Updates *UpdateSet
	Err     error
}

// DefaultConcurrency bounds the worker pool when Checker.Concurrency
// is unset.
const DefaultConcurrency = 4

// Checker classifies the published tags of images against their
// patterns. The engine itself is pure; Checker adds the registry
// round-trip, per-image timeout, and the bounded worker pool.
type Checker struct {
	Fetcher TagFetcher

	// Timeout bounds the registry I/O of one image check. Zero means
	// no per-image deadline beyond the caller's context.
	Timeout time.Duration

	// Concurrency is the worker pool size for CheckAll. Values below 1
	// fall back to DefaultConcurrency.
	Concurrency int

	// Log defaults to the logrus standard logger.
	Log *logrus.Logger
}

func (c *Checker) logger() *logrus.Logger {
	if c.Log != nil {
		return c.Log
	}

	return logrus.StandardLogger()
}

// CheckImage fetches the image's published tags and classifies them.
// Failures are returned inside the Result, never panicked.
func (c *Checker) CheckImage(ctx context.Context, img Image) Result {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	tags, err := c.Fetcher.Tags(ctx, img.Name)
	if err != nil {
		return Result{Image: img, Err: errors.Wrapf(err, "fetch tags for %q", img.Name)}
	}

	updates, err := img.Pattern.Classify(img.Tag, tags)
	if err != nil {
		return Result{Image: img, Err: err}
	}

	c.logger().WithFields(logrus.Fields{
		"image":      img.Name,
		"tag":        img.Tag,
		"breaking":   len(updates.Breaking),
		"compatible": len(updates.Compatible),
		"unmatched":  updates.Unmatched,
	}).Debug("image checked")

	return Result{Image: img, Updates: updates}
}

// CheckAll checks images concurrently with a bounded worker pool.
// Results keep the input order. A failure for one image lands in its
// own Result and never cancels the sibling checks.
func (c *Checker) CheckAll(ctx context.Context, images []Image) []Result {
	concurrency := c.Concurrency
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}

	results := make([]Result, len(images))

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, img := range images {
		i, img := i, img
		g.Go(func() error {
			res := c.CheckImage(ctx, img)
			if res.Err != nil {
				c.logger().WithField("image", img.Name).WithError(res.Err).Warn("image check failed")
			}
			results[i] = res

			return nil
		})
	}

	// workers never return errors; failures travel in results
	_ = g.Wait()

	return results
}
