package cmd

import (
	"context"
	"io"
	"os"

	"github.com/campuscoders/campus-cli/pkg/config"
	clierrors "github.com/campuscoders/campus-cli/pkg/errors"
	"github.com/campuscoders/campus-cli/pkg/logger"
	"github.com/campuscoders/campus-cli/pkg/service"
	"github.com/campuscoders/campus-cli/pkg/tui"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newBrowseCmd(r *root) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse your feed and search users full screen",
		Long: `Open an interactive browser. The feed loads more posts as you scroll,
likes show up immediately, and the user search runs as you type.

Keys: j/k move, l like, / search users, enter follow, esc back, q quit.`,
		Args: cobra.NoArgs,
		RunE: r.run(func(ctx context.Context, env *service.Env, _ []string) error {
			if f, ok := r.out.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
				return clierrors.ValidationError("terminal", "browse needs an interactive terminal").
					WithSuggestion("Use 'campus feed' and 'campus user search' instead.")
			}
			// Log lines on stderr would draw over the screen.
			if config.GetString("log.file") == "" {
				logger.SetOutput(io.Discard, log.InfoLevel)
			}

			cfg := r.app.cfg
			return service.NewFeedService(env).Browse(ctx, tui.Options{
				Threshold:   cfg.Feed.ScrollThreshold,
				SearchDelay: cfg.Search.Debounce,
				SearchLimit: cfg.Search.Limit,
			})
		}),
	}
}
