package cmd

import (
	"context"
	"strings"

	"github.com/campuscoders/campus-cli/pkg/service"
	"github.com/spf13/cobra"
)

func newPostCmd(r *root) *cobra.Command {
	postCmd := &cobra.Command{
		Use:   "post",
		Short: "Post commands",
		Long:  "Create posts, like them and read or write comments",
	}

	likeCmd := &cobra.Command{
		Use:   "like <post-id>",
		Short: "Like a post",
		Args:  cobra.ExactArgs(1),
		RunE: r.run(func(ctx context.Context, env *service.Env, args []string) error {
			return service.NewPostService(env).Like(ctx, args[0])
		}),
	}

	unlikeCmd := &cobra.Command{
		Use:   "unlike <post-id>",
		Short: "Remove your like from a post",
		Args:  cobra.ExactArgs(1),
		RunE: r.run(func(ctx context.Context, env *service.Env, args []string) error {
			return service.NewPostService(env).Unlike(ctx, args[0])
		}),
	}

	commentsCmd := &cobra.Command{
		Use:   "comments <post-id>",
		Short: "List comments on a post",
		Args:  cobra.ExactArgs(1),
		RunE: r.run(func(ctx context.Context, env *service.Env, args []string) error {
			return service.NewPostService(env).Comments(ctx, args[0])
		}),
	}

	commentCmd := &cobra.Command{
		Use:   "comment <post-id> [text...]",
		Short: "Comment on a post",
		Long:  "Comment on a post. The text is prompted for when not given.",
		Args:  cobra.MinimumNArgs(1),
		RunE: r.run(func(ctx context.Context, env *service.Env, args []string) error {
			return service.NewPostService(env).Comment(ctx, args[0], strings.Join(args[1:], " "))
		}),
	}

	var (
		caption string
		media   []string
	)
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a post",
		Long:  "Create a post with a caption, images, or both. Images must be JPEG, PNG, GIF or WebP up to 5MB.",
		Example: `  campus post create --caption "Hackathon tonight!"
  campus post create -c "Team photo" -m team.jpg -m stage.png`,
		RunE: r.run(func(ctx context.Context, env *service.Env, _ []string) error {
			return service.NewPostService(env).Create(ctx, caption, media)
		}),
	}
	createCmd.Flags().StringVarP(&caption, "caption", "c", "", "Caption text")
	createCmd.Flags().StringArrayVarP(&media, "media", "m", nil, "Image file to attach (repeatable)")

	postCmd.AddCommand(likeCmd, unlikeCmd, commentsCmd, commentCmd, createCmd)
	return postCmd
}
