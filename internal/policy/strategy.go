package policy

import (
	"errors"
	"fmt"
	"strings"
)

// ErrLicenseOverlap is returned when a license is both authorized and unauthorized
var ErrLicenseOverlap = errors.New("license is both authorized and unauthorized")

// Strategy is the license compliance policy. It is read-only once built.
type Strategy struct {
	authorizedLicenses   []string
	unauthorizedLicenses []string
	authorizedPackages   []string

	authorized   map[string]struct{}
	unauthorized map[string]struct{}
	exempt       map[string]struct{}
}

// NewStrategy builds a Strategy from the three configured lists.
// Lists keep the order they were given in.
func NewStrategy(authorizedLicenses, unauthorizedLicenses, authorizedPackages []string) (*Strategy, error) {
	s := &Strategy{
		authorizedLicenses:   clone(authorizedLicenses),
		unauthorizedLicenses: clone(unauthorizedLicenses),
		authorizedPackages:   clone(authorizedPackages),
		authorized:           toSet(authorizedLicenses),
		unauthorized:         toSet(unauthorizedLicenses),
		exempt:               toSet(authorizedPackages),
	}

	var overlap []string
	for _, l := range s.authorizedLicenses {
		if _, ok := s.unauthorized[l]; ok {
			overlap = append(overlap, l)
		}
	}
	if len(overlap) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrLicenseOverlap, strings.Join(overlap, ", "))
	}

	return s, nil
}

// AuthorizedLicenses returns the unconditionally accepted licenses
func (s *Strategy) AuthorizedLicenses() []string {
	return clone(s.authorizedLicenses)
}

// UnauthorizedLicenses returns the unconditionally rejected licenses
func (s *Strategy) UnauthorizedLicenses() []string {
	return clone(s.unauthorizedLicenses)
}

// AuthorizedPackages returns the package names exempted from license checks
func (s *Strategy) AuthorizedPackages() []string {
	return clone(s.authorizedPackages)
}

func (s *Strategy) isExempt(name string) bool {
	_, ok := s.exempt[name]
	return ok
}

func (s *Strategy) isAuthorized(license string) bool {
	_, ok := s.authorized[license]
	return ok
}

func (s *Strategy) isUnauthorized(license string) bool {
	_, ok := s.unauthorized[license]
	return ok
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

func clone(items []string) []string {
	if items == nil {
		return []string{}
	}
	out := make([]string, len(items))
	copy(out, items)
	return out
}
