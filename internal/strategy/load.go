package strategy

import (
	"errors"
	"os"

	"github.com/Pirikara/liccheck/internal/policy"
)

// DefaultFile is the conventional strategy file name
const DefaultFile = "license_strategy.json"

// DefaultManifest is the conventional manifest carrying an embedded strategy
const DefaultManifest = "composer.json"

// SourceKind describes where a strategy was loaded from
type SourceKind string

const (
	SourceFile     SourceKind = "file"
	SourceManifest SourceKind = "manifest"
	SourceDefault  SourceKind = "default"
)

// Source identifies the document a strategy came from
type Source struct {
	Kind SourceKind `json:"kind"`
	Path string     `json:"path"`
}

// Options configures Load
type Options struct {
	File        string // explicit --sfile
	Manifest    string // manifest with extra.liccheck
	DefaultFile string // conventional fallback file
}

// Load loads the strategy with 3-level fallback:
// 1. Explicit file (--sfile flag)
// 2. Section embedded in the manifest (composer.json extra.liccheck)
// 3. Conventional default file (license_strategy.json)
func Load(opts Options) (*policy.Strategy, Source, error) {
	if opts.File != "" {
		s, err := FromFile(opts.File)
		return s, Source{Kind: SourceFile, Path: opts.File}, err
	}

	if opts.Manifest != "" {
		s, err := FromManifest(opts.Manifest)
		if err == nil {
			return s, Source{Kind: SourceManifest, Path: opts.Manifest}, nil
		}
		if !errors.Is(err, ErrNoEmbeddedConfig) {
			return nil, Source{Kind: SourceManifest, Path: opts.Manifest}, err
		}
	}

	if opts.DefaultFile != "" && fileExists(opts.DefaultFile) {
		s, err := FromFile(opts.DefaultFile)
		return s, Source{Kind: SourceDefault, Path: opts.DefaultFile}, err
	}

	return nil, Source{}, ErrNoStrategy
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
