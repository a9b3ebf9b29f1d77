package service

import (
	"context"
	"errors"
	"strings"

	"github.com/campuscoders/campus-cli/pkg/api"
	clierrors "github.com/campuscoders/campus-cli/pkg/errors"
	"github.com/campuscoders/campus-cli/pkg/formatter"
	"github.com/campuscoders/campus-cli/pkg/logger"
	"github.com/campuscoders/campus-cli/pkg/output"
	"github.com/campuscoders/campus-cli/pkg/session"
	"github.com/campuscoders/campus-cli/pkg/validate"
)

type AuthService struct {
	env *Env
}

// NewAuthService creates a new auth service
func NewAuthService(env *Env) *AuthService {
	return &AuthService{env: env}
}

type LoginInput struct {
	Username string
	Password string
	// Force logs in again even when a session is live.
	Force bool
}

// Login handles user login and returns where the user lands.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (session.Destination, error) {
	out := s.env.Out

	if !in.Force {
		if dest, ok := s.env.Gate.RedirectIfAuthenticated(ctx); ok {
			cur := s.env.Gate.Current()
			out.Warning("Already logged in as @%s (use --force to log in again)", cur.Username)
			s.printNext(dest)
			return dest, nil
		}
	}

	if err := s.env.prompt(&in.Username, "Username: ", false); err != nil {
		return session.DestLogin, err
	}
	if err := s.env.prompt(&in.Password, "Password: ", true); err != nil {
		return session.DestLogin, err
	}
	if strings.TrimSpace(in.Username) == "" {
		return session.DestLogin, clierrors.ValidationError("username", "Username is required")
	}
	if in.Password == "" {
		return session.DestLogin, clierrors.ValidationError("password", "Password is required")
	}

	out.Info("Authenticating...")
	dest, err := s.env.Gate.Login(ctx, strings.TrimSpace(in.Username), in.Password)
	if err != nil {
		logger.Warn("Login failed", "username", in.Username, "error", err)
		return dest, err
	}

	cur := s.env.Gate.Current()
	if cur == nil {
		return session.DestLogin, clierrors.AuthError("Login did not start a session")
	}
	out.Success("✓ Logged in as @%s", cur.Username)
	s.printNext(dest)
	return dest, s.printSession(cur)
}

type RegisterInput struct {
	FullName   string
	Username   string
	Email      string
	Password   string
	InviteCode string
}

// Register creates an account. The backend logs the new user in, so the
// result is the same destination a login would give.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (session.Destination, error) {
	out := s.env.Out

	if dest, ok := s.env.Gate.RedirectIfAuthenticated(ctx); ok {
		out.Warning("Already logged in as @%s; log out before registering", s.env.Gate.Current().Username)
		s.printNext(dest)
		return dest, nil
	}

	for _, p := range []struct {
		value  *string
		label  string
		secret bool
	}{
		{&in.FullName, "Full name: ", false},
		{&in.Username, "Username: ", false},
		{&in.Email, "Email: ", false},
		{&in.Password, "Password: ", true},
		{&in.InviteCode, "Invite code: ", false},
	} {
		if err := s.env.prompt(p.value, p.label, p.secret); err != nil {
			return session.DestLogin, err
		}
	}

	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	var errs []error
	if in.FullName == "" {
		errs = append(errs, clierrors.ValidationError("fullName", "Full name is required"))
	}
	errs = append(errs, validate.Username(in.Username), validate.Email(in.Email), validate.Password(in.Password))
	if err := errors.Join(errs...); err != nil {
		return session.DestLogin, err
	}

	out.Info("Creating account...")
	user, err := s.env.API.Register(ctx, api.RegisterRequest{
		FullName:   in.FullName,
		Username:   in.Username,
		Email:      in.Email,
		Password:   in.Password,
		InviteCode: strings.TrimSpace(in.InviteCode),
	})
	if err != nil {
		return session.DestLogin, err
	}
	out.Success("✓ Account @%s created", user.Username)

	dest, err := s.env.Gate.Check(ctx)
	if err != nil {
		return dest, err
	}
	if dest == session.DestLogin {
		out.Info("Log in with 'campus auth login'.")
		return dest, nil
	}
	s.printNext(dest)
	return dest, nil
}

// Logout ends the session. Local state is cleared even when the backend
// cannot be reached.
func (s *AuthService) Logout(ctx context.Context) error {
	_, err := s.env.Gate.Logout(ctx)
	if err != nil {
		s.env.Out.Warning("Server logout failed (%v); local session cleared", err)
		return nil
	}
	s.env.Out.Success("✓ Logged out")
	return nil
}

// Status shows the live session, or the last saved one when the backend
// cannot be reached.
func (s *AuthService) Status(ctx context.Context) error {
	out := s.env.Out

	dest, err := s.env.Gate.Check(ctx)
	if err != nil {
		if s.env.Snapshots != nil {
			if saved, _ := s.env.Snapshots.Load(); saved != nil {
				out.Warning("Could not reach the server: %v", err)
				return out.Record("Last known session", []output.Field{
					{Key: "Username", Value: saved.Username},
					{Key: "Role", Value: saved.Role},
					{Key: "Logged in", Value: formatter.TimeAgo(saved.LoggedInAt)},
				})
			}
		}
		return err
	}

	if dest == session.DestLogin {
		out.Info("Not logged in. Run 'campus auth login'.")
		return nil
	}
	s.printNext(dest)
	return s.printSession(s.env.Gate.Current())
}

func (s *AuthService) printSession(cur *session.Session) error {
	fields := []output.Field{
		{Key: "Username", Value: cur.Username},
		{Key: "User ID", Value: cur.UserID},
		{Key: "Profile complete", Value: cur.ProfileCompleted},
	}
	if cur.IsAdmin() {
		fields = append(fields, output.Field{Key: "Admin", Value: "✓ YES"})
	}
	return s.env.Out.Record("Session", fields)
}

func (s *AuthService) printNext(dest session.Destination) {
	if dest == session.DestProfileSetup {
		s.env.Out.Info("Your profile is not complete yet. Run 'campus profile setup'.")
	}
}
