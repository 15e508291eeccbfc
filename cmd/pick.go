package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"pybuilder/internal/logger"
	"pybuilder/internal/resolve"
	"pybuilder/tui"
)

// runPicker is replaced in tests.
var runPicker = tui.Run

func newPickCmd(o *buildOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pick",
		Short: "Choose a tag interactively, then build it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			// Clone before the picker starts so git's progress is visible.
			m := newRepo(out, settings, newRunner(out, o))
			if err := m.EnsurePresent(ctx, o.clone); err != nil {
				return err
			}
			if !o.dryRun {
				if err := m.Verify(); err != nil {
					return err
				}
			}

			// The picker owns the terminal: fetch quietly.
			quiet := newRepo(io.Discard, settings, newRunner(io.Discard, o))
			load := func(ctx context.Context) (resolve.TagSet, error) {
				if err := quiet.FetchTags(ctx, true); err != nil {
					logger.Log.Debug("fetch tags", "err", err)
				}
				return quiet.LocalTags()
			}

			tag, err := runPicker(ctx, settings.RepoPath(), load)
			if err != nil {
				return err
			}
			if tag == "" {
				fmt.Fprintln(out, "No tag chosen.")
				return nil
			}
			return buildTag(ctx, out, settings, tag, o)
		},
	}
}
