package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/Pirikara/liccheck/internal/policy"
)

// Row is one line of the report file
type Row struct {
	Name    string        `json:"name"`
	Version string        `json:"version"`
	License string        `json:"license"`
	Reason  policy.Reason `json:"status"`
}

// String formats the row as `<name> <version> <license> <reason>`
func (r Row) String() string {
	return fmt.Sprintf("%s %s %s %s", r.Name, r.Version, r.License, r.Reason)
}

// Rows flattens every bucket of the result into report rows, re-sorted by
// name case-insensitively. Ties keep bucket order.
func Rows(result *policy.Result) []Row {
	var rows []Row
	for _, reason := range policy.Reasons() {
		for _, pkg := range result.Packages(reason) {
			rows = append(rows, Row{
				Name:    pkg.Name,
				Version: pkg.Version,
				License: pkg.FirstLicense(),
				Reason:  reason,
			})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return compareFold(rows[i].Name, rows[j].Name) < 0
	})
	return rows
}

// compareFold compares a and b byte by byte with ASCII letters folded to
// lower case. Bytes outside A-Z are compared as is.
func compareFold(a, b string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		ca, cb := lowerASCII(a[i]), lowerASCII(b[i])
		if ca != cb {
			return int(ca) - int(cb)
		}
	}
	return len(a) - len(b)
}

func lowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// Write writes one newline-terminated line per row
func Write(w io.Writer, rows []Row) error {
	var b strings.Builder
	for _, row := range rows {
		b.WriteString(row.String())
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// AppendFile appends rows to the report file, creating it if needed
func AppendFile(path string, rows []Row) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open report file: %w", err)
	}

	if err := Write(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("write report file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close report file: %w", err)
	}
	return nil
}
