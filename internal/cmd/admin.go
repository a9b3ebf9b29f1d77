package cmd

import (
	"context"

	"github.com/campuscoders/campus-cli/pkg/service"
	"github.com/spf13/cobra"
)

func newAdminCmd(r *root) *cobra.Command {
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin panel",
		Long:  "Admin-only commands. Log in with an admin account first.",
	}

	var username, password string
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the admin panel",
		RunE: r.run(func(ctx context.Context, env *service.Env, _ []string) error {
			return service.NewAdminService(env).Login(ctx, username, password)
		}),
	}
	loginCmd.Flags().StringVarP(&username, "username", "u", "", "Admin username")
	loginCmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Log out of the admin panel",
		RunE: r.run(func(ctx context.Context, env *service.Env, _ []string) error {
			return service.NewAdminService(env).Logout(ctx)
		}),
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard counts",
		RunE: r.run(func(ctx context.Context, env *service.Env, _ []string) error {
			return service.NewAdminService(env).Stats(ctx)
		}),
	}

	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "List all users",
		RunE: r.run(func(ctx context.Context, env *service.Env, _ []string) error {
			return service.NewAdminService(env).Users(ctx)
		}),
	}

	codesCmd := &cobra.Command{
		Use:   "codes",
		Short: "List invite codes",
		RunE: r.run(func(ctx context.Context, env *service.Env, _ []string) error {
			return service.NewAdminService(env).Codes(ctx)
		}),
	}

	generateCmd := &cobra.Command{
		Use:   "generate-code",
		Short: "Create a new invite code",
		RunE: r.run(func(ctx context.Context, env *service.Env, _ []string) error {
			return service.NewAdminService(env).GenerateCode(ctx)
		}),
	}

	adminCmd.AddCommand(loginCmd, logoutCmd, statsCmd, usersCmd, codesCmd, generateCmd)
	return adminCmd
}
