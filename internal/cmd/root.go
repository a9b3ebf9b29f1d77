package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/campuscoders/campus-cli/pkg/config"
	clierrors "github.com/campuscoders/campus-cli/pkg/errors"
	"github.com/campuscoders/campus-cli/pkg/logger"
	"github.com/campuscoders/campus-cli/pkg/output"
	"github.com/campuscoders/campus-cli/pkg/service"
	"github.com/spf13/cobra"
)

// root holds the global flags and the per-invocation app.
type root struct {
	verbose    bool
	configPath string
	outputFmt  string

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	app *app
}

// NewRootCmd builds the command tree. in, out and errOut default to the
// process streams when nil.
func NewRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	r := &root{in: in, out: out, errOut: errOut}

	cmd := &cobra.Command{
		Use:   "campus",
		Short: "Campus Coders CLI - your campus feed in the terminal",
		Long: `campus is a command-line client for the Campus Coders social feed.
Log in, read and page through your feed, like and comment on posts,
find and follow classmates, and run the admin panel from the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Init(r.configPath); err != nil {
				return fmt.Errorf("initializing config: %w", err)
			}
			logger.Init(r.verbose)

			if cmd.Flags().Changed("output") && !output.ValidateOutputFormat(r.outputFmt) {
				return clierrors.ValidationError("output", fmt.Sprintf("unknown output format %q", r.outputFmt)).
					WithSuggestion("Use one of: text, json, table.")
			}
			return nil
		},
	}
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	cmd.PersistentFlags().BoolVarP(&r.verbose, "verbose", "v", false, "Enable verbose (debug) logging")
	cmd.PersistentFlags().StringVar(&r.configPath, "config", "", "Path to config file (default: ~/.config/campus/cli/config.toml)")
	cmd.PersistentFlags().StringVarP(&r.outputFmt, "output", "o", "", "Output format: text, json, table (default from config)")

	cmd.AddCommand(
		newAuthCmd(r),
		newFeedCmd(r),
		newPostCmd(r),
		newUserCmd(r),
		newProfileCmd(r),
		newAdminCmd(r),
		newBrowseCmd(r),
		newVersionCmd(),
		newCompletionCmd(cmd),
	)
	return cmd
}

// action is a command body that needs the app.
type action func(ctx context.Context, env *service.Env, args []string) error

// run opens the app for the duration of one command.
func (r *root) run(fn action) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := r.open()
		if err != nil {
			return err
		}
		defer r.close()
		return fn(cmd.Context(), a.env, args)
	}
}

func (r *root) format() output.OutputFormat {
	if r.outputFmt != "" {
		return output.ParseFormat(r.outputFmt)
	}
	return output.GetOutputFormat()
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	cmd := NewRootCmd(nil, nil, nil)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		logger.Error("Command failed", "error", err)
		fmt.Fprint(os.Stderr, clierrors.FormatError(err))
		os.Exit(1)
	}
}
