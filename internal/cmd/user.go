package cmd

import (
	"context"
	"strings"

	"github.com/campuscoders/campus-cli/pkg/service"
	"github.com/spf13/cobra"
)

// optionalArg returns the first argument or "".
func optionalArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func newUserCmd(r *root) *cobra.Command {
	userCmd := &cobra.Command{
		Use:     "user",
		Aliases: []string{"users"},
		Short:   "Find, view and follow users",
	}

	searchCmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Search users by name or username",
		Long:  "Search users by name or username. Without a query, suggested users are listed.",
		RunE: r.run(func(ctx context.Context, env *service.Env, args []string) error {
			return service.NewUserService(env).Search(ctx, strings.Join(args, " "))
		}),
	}

	followCmd := &cobra.Command{
		Use:   "follow <username>",
		Short: "Follow a user",
		Args:  cobra.ExactArgs(1),
		RunE: r.run(func(ctx context.Context, env *service.Env, args []string) error {
			return service.NewUserService(env).Follow(ctx, args[0])
		}),
	}

	unfollowCmd := &cobra.Command{
		Use:   "unfollow <username>",
		Short: "Stop following a user",
		Args:  cobra.ExactArgs(1),
		RunE: r.run(func(ctx context.Context, env *service.Env, args []string) error {
			return service.NewUserService(env).Unfollow(ctx, args[0])
		}),
	}

	profileCmd := &cobra.Command{
		Use:   "profile <username>",
		Short: "Show a user's profile",
		Args:  cobra.ExactArgs(1),
		RunE: r.run(func(ctx context.Context, env *service.Env, args []string) error {
			return service.NewUserService(env).Profile(ctx, args[0])
		}),
	}

	followersCmd := &cobra.Command{
		Use:   "followers [username]",
		Short: "List followers (yours by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: r.run(func(ctx context.Context, env *service.Env, args []string) error {
			return service.NewUserService(env).Followers(ctx, optionalArg(args))
		}),
	}

	followingCmd := &cobra.Command{
		Use:   "following [username]",
		Short: "List followed users (yours by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: r.run(func(ctx context.Context, env *service.Env, args []string) error {
			return service.NewUserService(env).Following(ctx, optionalArg(args))
		}),
	}

	postsCmd := &cobra.Command{
		Use:   "posts [username]",
		Short: "List a user's posts (yours by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: r.run(func(ctx context.Context, env *service.Env, args []string) error {
			return service.NewUserService(env).Posts(ctx, optionalArg(args))
		}),
	}

	userCmd.AddCommand(searchCmd, followCmd, unfollowCmd, profileCmd, followersCmd, followingCmd, postsCmd)
	return userCmd
}
