package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"pybuilder/internal/errors"
	"pybuilder/internal/logger"
)

// Command describes one external process invocation.
type Command struct {
	Name string
	Args []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// QuietStdout and QuietStderr discard the corresponding stream unless the
	// runner is verbose.
	QuietStdout bool
	QuietStderr bool
}

// Cmd builds a Command from an argv slice.
func Cmd(dir string, argv ...string) Command {
	c := Command{Dir: dir}
	if len(argv) > 0 {
		c.Name = argv[0]
		c.Args = append([]string(nil), argv[1:]...)
	}
	return c
}

// Quiet returns a copy of c with both output streams discarded.
func (c Command) Quiet() Command {
	c.QuietStdout = true
	c.QuietStderr = true
	return c
}

// Argv returns the full argument vector, program name first.
func (c Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

// String renders the command the way a shell user would type it.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	for _, a := range c.Argv() {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			a = fmt.Sprintf("%q", a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// Runner runs commands.
type Runner interface {
	// Run executes c to completion. A non-zero exit is reported as *ExitError.
	Run(ctx context.Context, c Command) error

	// Output executes c and returns its standard output.
	Output(ctx context.Context, c Command) ([]byte, error)
}

// DryRunner is implemented by runners that do not execute mutating commands.
type DryRunner interface {
	DryRun() bool
}

// IsDryRun reports whether r only prints commands.
func IsDryRun(r Runner) bool {
	d, ok := r.(DryRunner)
	return ok && d.DryRun()
}

// ExitError reports an external command that did not succeed.
type ExitError struct {
	Command Command

	// Code is the process exit status, or -1 when the process could not be started
	// or was killed by a signal.
	Code   int
	Stderr string
	Err    error
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Command, e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += "\nOutput: " + s
	}
	return msg
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Is matches errors.ErrCommandFailed.
func (e *ExitError) Is(target error) bool {
	return target == errors.ErrCommandFailed
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer

	// Verbose streams every command's output regardless of its Quiet flags.
	Verbose bool
}

var _ Runner = (*ExecRunner)(nil)

// NewExecRunner returns a runner attached to the process's standard streams.
func NewExecRunner(verbose bool) *ExecRunner {
	return &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr, Verbose: verbose}
}

func (r *ExecRunner) command(ctx context.Context, c Command) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	return cmd
}

// Run executes c, waiting for it to exit.
func (r *ExecRunner) Run(ctx context.Context, c Command) error {
	logger.Log.Debug("exec", "cmd", c.String(), "dir", c.Dir)

	cmd := r.command(ctx, c)
	if r.Verbose || !c.QuietStdout {
		cmd.Stdout = r.Stdout
	}
	var stderr bytes.Buffer
	if r.Verbose || !c.QuietStderr {
		cmd.Stderr = r.Stderr
	} else {
		// keep it for the error message
		cmd.Stderr = &stderr
	}

	if err := cmd.Run(); err != nil {
		return exitError(c, err, stderr.String())
	}
	return nil
}

// Output executes c and returns what it wrote on stdout.
func (r *ExecRunner) Output(ctx context.Context, c Command) ([]byte, error) {
	logger.Log.Debug("exec", "cmd", c.String(), "dir", c.Dir)

	cmd := r.command(ctx, c)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if r.Verbose {
		cmd.Stderr = io.MultiWriter(&stderr, r.Stderr)
	}

	out, err := cmd.Output()
	if err != nil {
		return out, exitError(c, err, stderr.String())
	}
	return out, nil
}

func exitError(c Command, err error, stderr string) error {
	code := -1
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		code = ee.ExitCode()
	}
	return &ExitError{Command: c, Code: code, Stderr: stderr, Err: err}
}

// PrintRunner writes commands instead of running them.
type PrintRunner struct {
	Out io.Writer

	// Reader serves Output calls. When nil, Output prints the command and
	// returns no data.
	Reader Runner
}

var _ Runner = (*PrintRunner)(nil)

// NewPrintRunner returns a dry-run runner printing to out and answering
// read-only queries with an ExecRunner.
func NewPrintRunner(out io.Writer, verbose bool) *PrintRunner {
	return &PrintRunner{Out: out, Reader: NewExecRunner(verbose)}
}

// DryRun is always true.
func (r *PrintRunner) DryRun() bool { return true }

// Run prints c.
func (r *PrintRunner) Run(_ context.Context, c Command) error {
	r.print(c)
	return nil
}

// Output delegates to Reader.
func (r *PrintRunner) Output(ctx context.Context, c Command) ([]byte, error) {
	if r.Reader == nil {
		r.print(c)
		return nil, nil
	}
	return r.Reader.Output(ctx, c)
}

func (r *PrintRunner) print(c Command) {
	if c.Dir != "" {
		fmt.Fprintf(r.Out, "+ (%s) %s\n", c.Dir, c)
		return
	}
	fmt.Fprintf(r.Out, "+ %s\n", c)
}
