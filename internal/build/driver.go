// Package build drives a release build: sync the clone, resolve the tag,
// check it out, then configure, compile and alt-install it.
package build

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"pybuilder/internal/logger"
	"pybuilder/internal/repo"
	"pybuilder/internal/resolve"
	"pybuilder/internal/runner"
)

// Options are the user switches for one build.
type Options struct {
	DryRun  bool
	Verbose bool
}

// Commands are the argv of the build steps, run inside the repository.
type Commands struct {
	Configure []string
	Make      []string
	Install   []string

	// Escalate prefixes Install when the process is not privileged.
	Escalate []string
}

// Repository is the part of repo.Manager the driver needs.
type Repository interface {
	Exists() bool
	Sync(ctx context.Context) error
	ListTags(ctx context.Context) (resolve.TagSet, error)
	Checkout(ctx context.Context, tag string) error
}

var _ Repository = (*repo.Manager)(nil)

// Driver runs the build steps in order.
type Driver struct {
	repo Repository
	run  runner.Runner
	dir  string
	cmds Commands
	opts Options

	out io.Writer

	// euid reports the effective user id; 0 means privileged.
	euid func() int
}

// New returns a driver building in dir.
func New(r Repository, run runner.Runner, dir string, cmds Commands, opts Options) *Driver {
	return &Driver{
		repo: r,
		run:  run,
		dir:  dir,
		cmds: cmds,
		opts: opts,
		out:  os.Stdout,
		euid: os.Geteuid,
	}
}

// SetOutput redirects progress lines.
func (d *Driver) SetOutput(w io.Writer) { d.out = w }

// SetEUID replaces the privilege probe.
func (d *Driver) SetEUID(f func() int) { d.euid = f }

// Step is one external command of the build.
type Step struct {
	Name    string
	Message string
	Command runner.Command
}

// Privileged reports whether the install step can run without escalation.
func (d *Driver) Privileged() bool {
	return d.euid() == 0
}

// Steps returns the configure, compile and install steps in run order.
func (d *Driver) Steps() []Step {
	configure := runner.Cmd(d.dir, d.cmds.Configure...)
	configure.QuietStdout = true

	install := Step{Name: "install", Message: fmt.Sprintf("\tRunning '%s'...", joinArgs(d.cmds.Install))}
	argv := d.cmds.Install
	if !d.Privileged() && len(d.cmds.Escalate) > 0 {
		install.Message = fmt.Sprintf("Running '%s' with %s", joinArgs(d.cmds.Install), displayName(d.cmds.Escalate))
		argv = append(append([]string(nil), d.cmds.Escalate...), d.cmds.Install...)
	}
	install.Command = runner.Cmd(d.dir, argv...).Quiet()

	return []Step{
		{Name: "configure", Message: "\tConfiguring...", Command: configure},
		{Name: "compile", Message: fmt.Sprintf("\tRunning '%s'...", joinArgs(d.cmds.Make)), Command: runner.Cmd(d.dir, d.cmds.Make...).Quiet()},
		install,
	}
}

// Run builds and installs tag. A tag missing from the repository is reported
// as *resolve.NotFoundError before anything is checked out.
func (d *Driver) Run(ctx context.Context, tag string) error {
	logger.Log.Debug("build", "tag", tag, "dir", d.dir, "dryrun", d.opts.DryRun, "verbose", d.opts.Verbose)

	if err := d.repo.Sync(ctx); err != nil {
		return err
	}

	if d.opts.DryRun && !d.repo.Exists() {
		logger.Log.Warn("repository not cloned yet, tag not verified", "tag", tag)
	} else {
		tags, err := d.repo.ListTags(ctx)
		if err != nil {
			return err
		}
		if err := resolve.Resolve(tag, tags).Err(); err != nil {
			return err
		}
		fmt.Fprintf(d.out, "Tag '%s' found\n", tag)
	}

	fmt.Fprintf(d.out, "\tChecking out %s\n", tag)
	if err := d.repo.Checkout(ctx, tag); err != nil {
		return err
	}

	for _, step := range d.Steps() {
		fmt.Fprintln(d.out, step.Message)
		if err := d.run.Run(ctx, step.Command); err != nil {
			return fmt.Errorf("%s: %w", step.Name, err)
		}
	}

	fmt.Fprintln(d.out, "Done!")
	return nil
}

func joinArgs(argv []string) string {
	return runner.Cmd("", argv...).String()
}

func displayName(argv []string) string {
	if len(argv) == 0 || argv[0] == "" {
		return ""
	}
	// "sudo" -> "Sudo"
	name := filepath.Base(argv[0])
	return strings.ToUpper(name[:1]) + name[1:]
}
