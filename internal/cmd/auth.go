package cmd

import (
	"context"

	"github.com/campuscoders/campus-cli/pkg/service"
	"github.com/spf13/cobra"
)

func newAuthCmd(r *root) *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication commands",
		Long:  "Log in to Campus Coders, create an account, or end your session",
	}

	var login service.LoginInput
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to Campus Coders",
		Long:  "Log in with your username and password. Missing values are prompted for.",
		RunE: r.run(func(ctx context.Context, env *service.Env, _ []string) error {
			_, err := service.NewAuthService(env).Login(ctx, login)
			return err
		}),
	}
	loginCmd.Flags().StringVarP(&login.Username, "username", "u", "", "Username")
	loginCmd.Flags().StringVarP(&login.Password, "password", "p", "", "Password (prompted when omitted)")
	loginCmd.Flags().BoolVar(&login.Force, "force", false, "Log in again even when a session is active")

	var reg service.RegisterInput
	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		Long:  "Register a new account. An invite code from an admin may be required.",
		RunE: r.run(func(ctx context.Context, env *service.Env, _ []string) error {
			_, err := service.NewAuthService(env).Register(ctx, reg)
			return err
		}),
	}
	registerCmd.Flags().StringVar(&reg.FullName, "name", "", "Full name")
	registerCmd.Flags().StringVarP(&reg.Username, "username", "u", "", "Username (3-20 letters, numbers or underscores)")
	registerCmd.Flags().StringVar(&reg.Email, "email", "", "Email address")
	registerCmd.Flags().StringVarP(&reg.Password, "password", "p", "", "Password (at least 6 characters)")
	registerCmd.Flags().StringVar(&reg.InviteCode, "invite-code", "", "Invite code")

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear the local session",
		RunE: r.run(func(ctx context.Context, env *service.Env, _ []string) error {
			return service.NewAuthService(env).Logout(ctx)
		}),
	}

	statusCmd := &cobra.Command{
		Use:     "status",
		Aliases: []string{"whoami"},
		Short:   "Show who is logged in",
		RunE: r.run(func(ctx context.Context, env *service.Env, _ []string) error {
			return service.NewAuthService(env).Status(ctx)
		}),
	}

	authCmd.AddCommand(loginCmd, registerCmd, logoutCmd, statusCmd)
	return authCmd
}
