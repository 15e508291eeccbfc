package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"pybuilder/internal/errors"
	"pybuilder/internal/repo"
	"pybuilder/internal/resolve"
	"pybuilder/internal/version"
)

func newTagsCmd(o *buildOptions) *cobra.Command {
	var (
		local  bool
		remote bool
		filter string
	)

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List the release tags that can be built, newest first",
		Long: `List the release tags that can be built, newest first.

By default the clone is updated with 'git fetch --tags' before listing.
--local reads the clone without touching the network; --remote asks the
remote directly and needs no clone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if local && remote {
				return errors.New("--local and --remote are mutually exclusive")
			}

			settings, err := loadSettings()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			r := newRunner(out, o)

			var tags resolve.TagSet
			switch {
			case remote:
				tags, err = repo.RemoteTags(ctx, r, settings.Remote)
			default:
				m := newRepo(cmd.ErrOrStderr(), settings, r)
				if err = m.EnsurePresent(ctx, o.clone); err != nil {
					return err
				}
				if local {
					tags, err = m.LocalTags()
				} else {
					tags, err = m.ListTags(ctx)
				}
			}
			if err != nil {
				return err
			}

			list := tags.Sorted()
			if filter != "" {
				list = resolve.NearTags(filter, tags)
			}
			version.SortDescending(list)

			for _, t := range list {
				fmt.Fprintln(out, t)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "List tags already in the clone without fetching")
	cmd.Flags().BoolVar(&remote, "remote", false, "List tags of the remote with git ls-remote (no clone needed)")
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "Only list tags containing this string")

	return cmd
}
