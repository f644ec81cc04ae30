// Package registry fetches the published tags of container images
// from the Docker Hub repositories API.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultBaseURL is the public Docker Hub API endpoint.
const DefaultBaseURL = "https://hub.docker.com"

// DefaultPageSize is the largest page Docker Hub serves per request.
const DefaultPageSize = 100

// StatusError reports a non-success HTTP response from the registry.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("registry returned %d for %s", e.StatusCode, e.URL)
}

// Client lists tags via the Docker Hub v2 repositories API
// (GET /v2/repositories/<user>/<name>/tags/). It implements
// updock.TagFetcher. The zero value works against the public Hub.
type Client struct {
	// BaseURL overrides DefaultBaseURL (useful for mirrors and tests).
	BaseURL string

	// HTTPClient defaults to a client with a 30s overall timeout.
	// Cancellation and per-check deadlines come from the context.
	HTTPClient *http.Client

	// PageSize caps results per request; defaults to DefaultPageSize.
	PageSize int

	// MaxTags stops pagination once this many tags were collected.
	// Zero or negative fetches every page.
	MaxTags int

	// Log defaults to the logrus standard logger.
	Log *logrus.Logger
}

// page mirrors the Hub's paginated tag listing.
type page struct {
	Next    string `json:"next"`
	Results []struct {
		Name string `json:"name"`
	} `json:"results"`
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}

	return &http.Client{Timeout: 30 * time.Second}
}

func (c *Client) logger() *logrus.Logger {
	if c.Log != nil {
		return c.Log
	}

	return logrus.StandardLogger()
}

// Tags lists the tags published for image, in the order the Hub
// reports them (most recently pushed first). Official images
// ("debian") resolve to the "library" user.
func (c *Client) Tags(ctx context.Context, image string) ([]string, error) {
	next := c.firstPageURL(image)

	var tags []string
	for next != "" {
		p, err := c.fetchPage(ctx, next)
		if err != nil {
			return nil, err
		}

		for _, r := range p.Results {
			tags = append(tags, r.Name)
			if c.MaxTags > 0 && len(tags) >= c.MaxTags {
				return tags, nil
			}
		}

		next = p.Next
	}

	c.logger().WithFields(logrus.Fields{
		"image": image,
		"tags":  len(tags),
	}).Debug("fetched tags")

	return tags, nil
}

func (c *Client) firstPageURL(image string) string {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}

	size := c.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	if c.MaxTags > 0 && c.MaxTags < size {
		size = c.MaxTags
	}

	user, name := splitImage(image)

	return fmt.Sprintf("%s/v2/repositories/%s/%s/tags/?page_size=%d",
		strings.TrimRight(base, "/"), url.PathEscape(user), url.PathEscape(name), size)
}

func (c *Client) fetchPage(ctx context.Context, pageURL string) (*page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "build request for %s", pageURL)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", pageURL)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	var p page
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, errors.Wrapf(err, "decode tags page %s", pageURL)
	}

	return &p, nil
}

// splitImage resolves a bare official name ("debian") to the library
// user; "user/name" passes through.
func splitImage(image string) (user, name string) {
	if i := strings.IndexByte(image, '/'); i >= 0 {
		return image[:i], image[i+1:]
	}

	return "library", image
}
