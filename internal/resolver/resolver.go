package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/Pirikara/liccheck/internal/policy"
)

// ErrResolutionFailed is returned when the package list cannot be produced
var ErrResolutionFailed = errors.New("resolution failed")

// Resolver enumerates the project's packages and their declared licenses
type Resolver interface {
	Resolve(ctx context.Context) ([]policy.Package, error)
}

// licensesOutput is the document printed by `composer licenses --format json`
type licensesOutput struct {
	Dependencies map[string]dependency `json:"dependencies"`
}

type dependency struct {
	Version string   `json:"version"`
	License []string `json:"license"`
}

// Parse decodes a `licenses --format json` document into packages.
// Packages are returned in no particular order.
func Parse(data []byte) ([]policy.Package, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: error decoding JSON: %v", ErrResolutionFailed, err)
	}

	deps, ok := raw["dependencies"]
	if !ok {
		return nil, fmt.Errorf("%w: %q must be present as object", ErrResolutionFailed, "dependencies")
	}

	// composer encodes an empty dependency map as []
	if trimmed := bytes.TrimSpace(deps); len(trimmed) > 0 && trimmed[0] == '[' {
		var empty []json.RawMessage
		if err := json.Unmarshal(trimmed, &empty); err == nil && len(empty) == 0 {
			return []policy.Package{}, nil
		}
	}

	var out licensesOutput
	if err := json.Unmarshal(deps, &out.Dependencies); err != nil {
		return nil, fmt.Errorf("%w: error decoding dependencies: %v", ErrResolutionFailed, err)
	}
	if out.Dependencies == nil {
		return nil, fmt.Errorf("%w: %q must be present as object", ErrResolutionFailed, "dependencies")
	}

	packages := make([]policy.Package, 0, len(out.Dependencies))
	for name, dep := range out.Dependencies {
		licenses := dep.License
		if licenses == nil {
			licenses = []string{}
		}
		packages = append(packages, policy.Package{
			Name:     name,
			Version:  dep.Version,
			Licenses: licenses,
		})
	}
	return packages, nil
}

// File resolves packages from a saved `licenses --format json` document
type File struct {
	Path string
}

// Resolve reads and parses the saved document
func (f *File) Resolve(ctx context.Context) ([]policy.Package, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResolutionFailed, err)
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResolutionFailed, err)
	}
	return Parse(data)
}

// Static returns a fixed package list
type Static struct {
	Packages []policy.Package
	Err      error
}

// Resolve returns the configured packages or error
func (s *Static) Resolve(ctx context.Context) ([]policy.Package, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]policy.Package, len(s.Packages))
	copy(out, s.Packages)
	return out, nil
}
