package execx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// CommandSpec describes a single external utility invocation as an explicit
// argument list. Commands are never assembled by string templating.
type CommandSpec struct {
	Name  string
	Args  []string
	Stdin string

	// Mutating marks commands that change OS state (dirty bits, scheduled
	// tasks, boot-time checks). Read-only queries leave it false.
	Mutating bool
}

// String renders the spec the way it would appear on a command line.
func (c CommandSpec) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result holds the outcome of a completed invocation. A non-zero exit code
// is data, not an error: callers branch on it.
type Result struct {
	Output   string
	ExitCode int
}

// Invoker runs external commands. Everything that shells out goes through
// this interface so tests can substitute a fake.
type Invoker interface {
	Run(ctx context.Context, spec CommandSpec) (*Result, error)
}

// Exec is the real Invoker backed by os/exec.
type Exec struct{}

// Run executes the spec and waits for it to finish. The returned error is
// non-nil only when the command could not be started or was killed; an
// ordinary non-zero exit is reported through Result.ExitCode.
func (Exec) Run(ctx context.Context, spec CommandSpec) (*Result, error) {
	cmd := exec.CommandContext(ctx, spec.Name, spec.Args...)
	if spec.Stdin != "" {
		cmd.Stdin = strings.NewReader(spec.Stdin)
	}

	out, err := cmd.CombinedOutput()
	res := &Result{Output: string(out)}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return nil, fmt.Errorf("running %s: %w", spec.Name, err)
	}
	return res, nil
}

// DryRun wraps an Invoker and prints mutating specs instead of executing
// them. Read-only queries still pass through, so a dry run reports the same
// decisions the real run would make.
type DryRun struct {
	Invoker Invoker
	Out     io.Writer
}

func (d DryRun) Run(ctx context.Context, spec CommandSpec) (*Result, error) {
	if spec.Mutating {
		fmt.Fprintf(d.Out, "dry-run: %s\n", spec)
		return &Result{}, nil
	}
	return d.Invoker.Run(ctx, spec)
}
