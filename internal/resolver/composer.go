package resolver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/Pirikara/liccheck/internal/policy"
)

// DefaultBinary is the resolver binary looked up on PATH
const DefaultBinary = "composer"

// DefaultTimeout bounds a single resolver invocation
const DefaultTimeout = 5 * time.Minute

// Composer runs `<binary> licenses [--no-dev] --format json`
type Composer struct {
	Binary  string
	NoDev   bool
	Timeout time.Duration
}

// Args returns the arguments passed to the binary
func (c *Composer) Args() []string {
	args := []string{"licenses"}
	if c.NoDev {
		args = append(args, "--no-dev")
	}
	return append(args, "--format", "json")
}

// Command returns the command line for display
func (c *Composer) Command() string {
	return c.binary() + " " + strings.Join(c.Args(), " ")
}

// Resolve runs the binary and parses its output
func (c *Composer) Resolve(ctx context.Context) ([]policy.Package, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, c.binary(), c.Args()...)
	command.Stdout = &stdout
	command.Stderr = &stderr
	command.WaitDelay = time.Second

	if err := command.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrResolutionFailed, c.Command(), ctxErr)
		}
		output := strings.TrimSpace(stderr.String() + stdout.String())
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%w: %s exited with code %d: %s", ErrResolutionFailed, c.Command(), exitErr.ExitCode(), output)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrResolutionFailed, c.Command(), err)
	}

	packages, err := Parse(stdout.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stdout.String()))
	}
	return packages, nil
}

func (c *Composer) binary() string {
	if c.Binary == "" {
		return DefaultBinary
	}
	return c.Binary
}
