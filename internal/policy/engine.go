package policy

import "sort"

// Classify decides the Reason for a single package.
//
// An exempted package name always wins. Otherwise the level decides how many
// of the declared licenses must be authorized; a package with no authorized
// license is UNAUTHORIZED if any of its licenses is rejected, else UNKNOWN.
func Classify(s *Strategy, level Level, name string, licenses []string) Reason {
	if s.isExempt(name) {
		return ReasonOK
	}

	hasUnauthorized := false
	authorizedCount := 0
	for _, license := range licenses {
		if s.isUnauthorized(license) {
			hasUnauthorized = true
		}
		if s.isAuthorized(license) {
			authorizedCount++
		}
	}

	if authorizedCount > 0 {
		switch level {
		case LevelStandard:
			return ReasonOK
		case LevelCautious:
			if !hasUnauthorized {
				return ReasonOK
			}
		case LevelParanoid:
			if authorizedCount == len(licenses) {
				return ReasonOK
			}
		}
	}

	if hasUnauthorized {
		return ReasonUnauthorized
	}

	return ReasonUnknown
}

// Engine evaluates package sets against a strategy
type Engine struct {
	strategy *Strategy
	level    Level
}

// NewEngine creates a new policy engine
func NewEngine(strategy *Strategy, level Level) *Engine {
	return &Engine{
		strategy: strategy,
		level:    level,
	}
}

// Result groups evaluated packages by Reason
type Result struct {
	Groups map[Reason][]Package
	Level  Level
}

// Evaluate classifies every package. Packages are ordered by name before
// grouping, so the result does not depend on the input order.
func (e *Engine) Evaluate(packages []Package) *Result {
	sorted := make([]Package, len(packages))
	copy(sorted, packages)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	result := &Result{
		Groups: make(map[Reason][]Package, len(Reasons())),
		Level:  e.level,
	}
	for _, r := range Reasons() {
		result.Groups[r] = []Package{}
	}

	for _, pkg := range sorted {
		reason := Classify(e.strategy, e.level, pkg.Name, pkg.Licenses)
		result.Groups[reason] = append(result.Groups[reason], pkg)
	}

	return result
}

// Packages returns the packages classified with the given reason
func (r *Result) Packages(reason Reason) []Package {
	return r.Groups[reason]
}

// Total returns the number of evaluated packages
func (r *Result) Total() int {
	n := 0
	for _, pkgs := range r.Groups {
		n += len(pkgs)
	}
	return n
}

// Failed returns true if any package is UNAUTHORIZED or UNKNOWN
func (r *Result) Failed() bool {
	return len(r.Groups[ReasonUnauthorized]) > 0 || len(r.Groups[ReasonUnknown]) > 0
}

// ExitCode returns the process exit code for the result
func (r *Result) ExitCode() int {
	if r.Failed() {
		return 1
	}
	return 0
}
