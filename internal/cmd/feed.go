package cmd

import (
	"context"

	"github.com/campuscoders/campus-cli/pkg/service"
	"github.com/spf13/cobra"
)

func newFeedCmd(r *root) *cobra.Command {
	var (
		pages int
		all   bool
	)
	feedCmd := &cobra.Command{
		Use:   "feed",
		Short: "Show your home feed",
		Long:  "Show the newest posts from your feed. Use --pages or --all to read further back.",
		RunE: r.run(func(ctx context.Context, env *service.Env, _ []string) error {
			n := pages
			if all {
				n = 0
			}
			return service.NewFeedService(env).ViewFeed(ctx, n)
		}),
	}
	feedCmd.Flags().IntVar(&pages, "pages", 1, "Number of pages to load")
	feedCmd.Flags().BoolVar(&all, "all", false, "Load every page until the end of the feed")
	return feedCmd
}
