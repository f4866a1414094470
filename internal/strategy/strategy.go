package strategy

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Pirikara/liccheck/internal/policy"
)

var (
	// ErrInvalidStrategyConfig is returned for a missing, unreadable or malformed strategy
	ErrInvalidStrategyConfig = errors.New("invalid strategy config")
	// ErrNoEmbeddedConfig is returned when a manifest carries no liccheck section at all
	ErrNoEmbeddedConfig = errors.New("no embedded configuration")
	// ErrNoStrategy is returned when no strategy source is available
	ErrNoStrategy = errors.New("need to either configure composer.json or provide a strategy file")
)

// Document keys
const (
	KeyLicenses             = "Licenses"
	KeyAuthorizedLicenses   = "authorized_licenses"
	KeyUnauthorizedLicenses = "unauthorized_licenses"
	KeyAuthorizedPackages   = "Authorized Packages"
)

// Manifest keys holding the embedded strategy (extra.liccheck)
const (
	ManifestExtraKey   = "extra"
	ManifestSectionKey = "liccheck"
)

// Document is the on-disk shape of a strategy
type Document struct {
	Licenses struct {
		AuthorizedLicenses   []string `json:"authorized_licenses" yaml:"authorized_licenses"`
		UnauthorizedLicenses []string `json:"unauthorized_licenses" yaml:"unauthorized_licenses"`
	} `json:"Licenses" yaml:"Licenses"`
	AuthorizedPackages []string `json:"Authorized Packages" yaml:"Authorized Packages"`
}

// FromFile loads a standalone strategy document. Files ending in .yaml or
// .yml are parsed as YAML, everything else as JSON.
func FromFile(path string) (*policy.Strategy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStrategyConfig, err)
	}

	raw, err := decode(path, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a valid document: %v", ErrInvalidStrategyConfig, path, err)
	}

	return fromRaw(raw)
}

// FromManifest extracts the strategy embedded in a composer-style manifest
// under extra.liccheck. A manifest that cannot be read, or that has no such
// section, yields ErrNoEmbeddedConfig so callers can fall back to a file.
// A section that is present but not an object is ErrInvalidStrategyConfig.
func FromManifest(path string) (*policy.Strategy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoEmbeddedConfig, err)
	}

	raw, err := decode(path, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a valid document: %v", ErrNoEmbeddedConfig, path, err)
	}

	root, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %s is not an object", ErrNoEmbeddedConfig, path)
	}
	extra, ok := root[ManifestExtraKey].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %q must be present as object", ErrNoEmbeddedConfig, ManifestExtraKey)
	}
	value, ok := extra[ManifestSectionKey]
	if !ok {
		return nil, fmt.Errorf("%w: %q must be present as object", ErrNoEmbeddedConfig, ManifestSectionKey)
	}
	section, ok := value.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %q must be an object", ErrInvalidStrategyConfig, ManifestSectionKey)
	}

	return fromRaw(section)
}

// Parse builds a strategy from a JSON document
func Parse(data []byte) (*policy.Strategy, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStrategyConfig, err)
	}
	return fromRaw(raw)
}

// Encode renders a strategy in the format implied by path: YAML for .yaml
// and .yml, indented JSON otherwise.
func Encode(path string, s *policy.Strategy) ([]byte, error) {
	var doc Document
	doc.Licenses.AuthorizedLicenses = s.AuthorizedLicenses()
	doc.Licenses.UnauthorizedLicenses = s.UnauthorizedLicenses()
	doc.AuthorizedPackages = s.AuthorizedPackages()

	if isYAML(path) {
		return yaml.Marshal(doc)
	}
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func decode(path string, data []byte) (interface{}, error) {
	var raw interface{}
	if isYAML(path) {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		return raw, nil
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// fromRaw validates the generic document tree and builds the strategy.
// Presence of every key is checked before any type.
func fromRaw(raw interface{}) (*policy.Strategy, error) {
	root, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: document must be an object", ErrInvalidStrategyConfig)
	}

	licensesValue, ok := root[KeyLicenses]
	if !ok {
		return nil, missingKey(KeyLicenses)
	}
	licenses, ok := licensesValue.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %q must be an object", ErrInvalidStrategyConfig, KeyLicenses)
	}
	authorizedValue, ok := licenses[KeyAuthorizedLicenses]
	if !ok {
		return nil, missingKey(KeyAuthorizedLicenses)
	}
	unauthorizedValue, ok := licenses[KeyUnauthorizedLicenses]
	if !ok {
		return nil, missingKey(KeyUnauthorizedLicenses)
	}
	packagesValue, ok := root[KeyAuthorizedPackages]
	if !ok {
		return nil, missingKey(KeyAuthorizedPackages)
	}

	authorized, err := stringList(KeyAuthorizedLicenses, authorizedValue)
	if err != nil {
		return nil, err
	}
	unauthorized, err := stringList(KeyUnauthorizedLicenses, unauthorizedValue)
	if err != nil {
		return nil, err
	}
	packages, err := stringList(KeyAuthorizedPackages, packagesValue)
	if err != nil {
		return nil, err
	}

	s, err := policy.NewStrategy(authorized, unauthorized, packages)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStrategyConfig, err)
	}
	return s, nil
}

func stringList(key string, value interface{}) ([]string, error) {
	items, ok := value.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %q must be an array", ErrInvalidStrategyConfig, key)
	}

	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %q entry %d must be a string", ErrInvalidStrategyConfig, key, i)
		}
		out = append(out, s)
	}
	return out, nil
}

func missingKey(key string) error {
	return fmt.Errorf("%w: missing %q key", ErrInvalidStrategyConfig, key)
}
