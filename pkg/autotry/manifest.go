package autotry

import (
	"context"
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Manifest is a flat list of tests, as written to a test manifest file.
type Manifest struct {
	Tests []TestInfo `yaml:"tests"`
}

// ManifestResolver resolves paths against an in-memory manifest. A path
// matches a test when it is a prefix of the test's path or a glob pattern
// that matches it.
type ManifestResolver struct {
	Tests []TestInfo
}

// LoadManifest reads a YAML test manifest.
func LoadManifest(path string) (*ManifestResolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading test manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing test manifest %s: %w", path, err)
	}
	for i, t := range m.Tests {
		if t.Path == "" || t.Flavor == "" {
			return nil, fmt.Errorf("test manifest %s: entry %d needs path and flavor", path, i)
		}
	}
	return &ManifestResolver{Tests: m.Tests}, nil
}

// ResolveTests implements Resolver.
func (r *ManifestResolver) ResolveTests(ctx context.Context, paths []string) ([]TestInfo, error) {
	for _, p := range paths {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid test path pattern %q", p)
		}
	}
	var out []TestInfo
	for _, t := range r.Tests {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, p := range paths {
			if _, ok := matchPath(t.Path, p); ok {
				out = append(out, t)
				break
			}
		}
	}
	return out, nil
}
