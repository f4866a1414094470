package policy

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidLevel  = errors.New("invalid level")
	ErrNoLevelMatch  = errors.New("no level match")
	ErrInvalidReason = errors.New("invalid reason")
)

// Level represents the compliance strictness mode
type Level string

const (
	// LevelStandard requires at least one authorized license
	LevelStandard Level = "STANDARD"
	// LevelCautious requires at least one authorized license and no unauthorized ones
	LevelCautious Level = "CAUTIOUS"
	// LevelParanoid requires every license to be authorized
	LevelParanoid Level = "PARANOID"
)

// Levels returns all levels in declaration order
func Levels() []Level {
	return []Level{LevelStandard, LevelCautious, LevelParanoid}
}

// ParseLevel converts an exact level name into a Level
func ParseLevel(s string) (Level, error) {
	for _, l := range Levels() {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidLevel, s)
}

// LevelStartingWith returns the first level (in declaration order) whose name
// begins with the upper-cased prefix, so "s" and "Cau" are accepted.
func LevelStartingWith(prefix string) (Level, error) {
	upper := strings.ToUpper(prefix)
	for _, l := range Levels() {
		if strings.HasPrefix(string(l), upper) {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: no level starting with %s", ErrNoLevelMatch, prefix)
}

func (l Level) String() string {
	return string(l)
}

// Reason represents the classification outcome for a package
type Reason string

const (
	ReasonOK           Reason = "OK"
	ReasonUnauthorized Reason = "UNAUTHORIZED"
	ReasonUnknown      Reason = "UNKNOWN"
)

// Reasons returns all reasons in report order
func Reasons() []Reason {
	return []Reason{ReasonOK, ReasonUnauthorized, ReasonUnknown}
}

// ParseReason converts an exact reason name into a Reason
func ParseReason(s string) (Reason, error) {
	for _, r := range Reasons() {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidReason, s)
}

func (r Reason) String() string {
	return string(r)
}

// Package represents a resolved dependency and its declared licenses
type Package struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	Licenses []string `json:"license"`
}

// FirstLicense returns the first declared license, or UNKNOWN when none is declared
func (p Package) FirstLicense() string {
	if len(p.Licenses) == 0 {
		return "UNKNOWN"
	}
	return p.Licenses[0]
}
