package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/Pirikara/liccheck/internal/policy"
)

// Console prints the human readable progress and summary
type Console struct {
	w io.Writer
}

// NewConsole creates a new Console
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Gathering announces the resolver call
func (c *Console) Gathering() {
	fmt.Fprint(c.w, "gathering licenses...")
}

// Gathered prints how many packages were resolved
func (c *Console) Gathered(count int, noDeps bool) {
	suffix := " and dependencies"
	if noDeps {
		suffix = ""
	}
	fmt.Fprintf(c.w, "%d %s%s.\n", count, plural(count), suffix)
}

// Summary prints the per-reason counts, listing the packages that failed
func (c *Console) Summary(result *policy.Result) {
	sections := []struct {
		reason policy.Reason
		label  string
		list   bool
	}{
		{policy.ReasonOK, "authorized", false},
		{policy.ReasonUnauthorized, "unauthorized", true},
		{policy.ReasonUnknown, "unknown", true},
	}

	for _, s := range sections {
		pkgs := result.Packages(s.reason)
		fmt.Fprintf(c.w, "check %s packages...%d %s.\n", s.label, len(pkgs), plural(len(pkgs)))
		if !s.list {
			continue
		}
		for _, pkg := range pkgs {
			fmt.Fprintf(c.w, "    %s (%s): %s\n", pkg.Name, pkg.Version, licenseList(pkg))
		}
	}
}

func licenseList(pkg policy.Package) string {
	if len(pkg.Licenses) == 0 {
		return "UNKNOWN"
	}
	return strings.Join(pkg.Licenses, ", ")
}

func plural(n int) string {
	if n <= 1 {
		return "package"
	}
	return "packages"
}
