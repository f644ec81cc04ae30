// Package compose scans docker-compose manifests for the image
// references to check.
//
// Two kinds of services are supported: services that pin an image
// ("image: debian:10.3") and services built from a local context
// ("build: ./dir"), whose Dockerfile is scanned instead. A service may
// carry its pattern inline via the "x-updock-pattern" extension key.
package compose

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Service is one entry of the manifest's services mapping, in file
// order. Exactly one of Image and Build is set.
type Service struct {
	Name    string
	Image   string // pinned image reference ("name:tag")
	Build   string // build context directory
	Pattern string // raw pattern from x-updock-pattern, may be empty
}

// Parse decodes a compose manifest and returns its services in file
// order. Manifest-level problems (missing services section, malformed
// service entries) are configuration errors that abort the whole run.
func Parse(input []byte) ([]Service, error) {
	var doc struct {
		Services yaml.Node `yaml:"services"`
	}
	if err := yaml.Unmarshal(input, &doc); err != nil {
		return nil, errors.Wrap(err, "parse compose manifest")
	}

	if doc.Services.Kind == 0 {
		return nil, errors.New(`compose manifest has no "services" section`)
	}
	if doc.Services.Kind != yaml.MappingNode {
		return nil, errors.New(`"services" must be a mapping of service names`)
	}

	content := doc.Services.Content
	out := make([]Service, 0, len(content)/2)

	// mapping nodes interleave key and value nodes
	for i := 0; i+1 < len(content); i += 2 {
		key, val := content[i], content[i+1]
		if val.Kind != yaml.MappingNode {
			return nil, errors.Errorf("service %q is not a mapping", key.Value)
		}

		var raw struct {
			Image   string    `yaml:"image"`
			Build   yaml.Node `yaml:"build"`
			Pattern string    `yaml:"x-updock-pattern"`
		}
		if err := val.Decode(&raw); err != nil {
			return nil, errors.Wrapf(err, "service %q", key.Value)
		}

		svc := Service{Name: key.Value, Image: raw.Image, Pattern: raw.Pattern}

		switch raw.Build.Kind {
		case 0: // no build key
		case yaml.ScalarNode:
			svc.Build = raw.Build.Value
		default:
			return nil, errors.Errorf("service %q: only string build contexts are supported", key.Value)
		}

		if svc.Image == "" && svc.Build == "" {
			return nil, errors.Errorf("service %q has neither an image nor a build context", key.Value)
		}

		out = append(out, svc)
	}

	return out, nil
}
