package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pybuilder/config"
	"pybuilder/internal/build"
	"pybuilder/internal/errors"
	"pybuilder/internal/logger"
	"pybuilder/internal/repo"
	"pybuilder/internal/resolve"
	"pybuilder/internal/runner"
)

// used to patch over process exit and command execution during test
var (
	osExit    = os.Exit
	newRunner = func(out io.Writer, o *buildOptions) runner.Runner {
		if o.dryRun {
			return runner.NewPrintRunner(out, o.verbose)
		}
		return runner.NewExecRunner(o.verbose)
	}
	loadSettings = config.Load
)

// buildOptions carries the switches shared by the build commands.
type buildOptions struct {
	dryRun  bool
	verbose bool
	clone   bool
}

func newRootCmd() *cobra.Command {
	o := &buildOptions{}

	cmd := &cobra.Command{
		Use:   "pybuilder <tag>",
		Short: "Build and alt-install CPython from source.",
		Long: `pybuilder checks out a tagged release of the CPython repository, builds it
and installs it with 'make altinstall' so it lives next to the system interpreter.

The clone lives in $XDG_CACHE_HOME/cpython (./cpython when XDG_CACHE_HOME is unset).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetVerbose(o.verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			return buildTag(cmd.Context(), cmd.OutOrStdout(), settings, args[0], o)
		},
	}

	cmd.PersistentFlags().BoolVarP(&o.dryRun, "dryrun", "d", false, "Print commands to standard out instead of running.")
	cmd.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "Show the output of every command.")
	cmd.PersistentFlags().BoolVarP(&o.clone, "clone", "c", false, "If the repository is not found, automatically clone it.")

	cmd.AddCommand(newTagsCmd(o))
	cmd.AddCommand(newPickCmd(o))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newRepo(out io.Writer, settings config.Settings, r runner.Runner) *repo.Manager {
	m := repo.New(settings.RepoPath(), settings.Remote, settings.Branch, r)
	m.Out = out
	return m
}

// buildTag runs the full build of tag.
func buildTag(ctx context.Context, out io.Writer, settings config.Settings, tag string, o *buildOptions) error {
	r := newRunner(out, o)
	m := newRepo(out, settings, r)

	if err := m.EnsurePresent(ctx, o.clone); err != nil {
		return err
	}

	d := build.New(m, r, m.Path, build.Commands{
		Configure: settings.Configure,
		Make:      settings.Make,
		Install:   settings.Install,
		Escalate:  settings.Escalate,
	}, build.Options{DryRun: o.dryRun, Verbose: o.verbose})
	d.SetOutput(out)

	return d.Run(ctx, tag)
}

// Execute runs the command line and exits with its status.
// This is called by main.main().
func Execute() {
	config.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	osExit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	return exitCode(root.ExecuteContext(ctx), stdout, stderr)
}

// exitCode maps err to the process status: 1 for a missing tag, the exit
// status of a failed external command, 1 for anything else.
func exitCode(err error, stdout, stderr io.Writer) int {
	if err == nil {
		return 0
	}

	var nf *resolve.NotFoundError
	if errors.As(err, &nf) {
		nf.Report(stdout)
		return 1
	}

	fmt.Fprintln(stderr, "Error:", err)

	var ee *runner.ExitError
	if errors.As(err, &ee) && ee.Code > 0 {
		logger.Log.Debug("command failed", "cmd", ee.Command.String(), "status", ee.Code)
		return ee.Code
	}
	return 1
}
