package service

import (
	"context"
	"strings"

	"github.com/campuscoders/campus-cli/pkg/api"
	clierrors "github.com/campuscoders/campus-cli/pkg/errors"
	"github.com/campuscoders/campus-cli/pkg/formatter"
	"github.com/campuscoders/campus-cli/pkg/output"
)

// AdminService drives the admin panel endpoints.
type AdminService struct {
	env *Env
}

func NewAdminService(env *Env) *AdminService {
	return &AdminService{env: env}
}

func (s *AdminService) Login(ctx context.Context, username, password string) error {
	if err := s.env.prompt(&username, "Admin username: ", false); err != nil {
		return err
	}
	if err := s.env.prompt(&password, "Password: ", true); err != nil {
		return err
	}
	if strings.TrimSpace(username) == "" || password == "" {
		return clierrors.ValidationError("credentials", "Username and password are required")
	}

	if _, err := s.env.Gate.AdminLogin(ctx, strings.TrimSpace(username), password); err != nil {
		return err
	}
	s.env.Out.Success("✓ Logged in as admin @%s", s.env.Gate.Current().Username)
	return nil
}

func (s *AdminService) Logout(ctx context.Context) error {
	if _, err := s.env.Gate.AdminLogout(ctx); err != nil {
		s.env.Out.Warning("Server logout failed (%v); local session cleared", err)
		return nil
	}
	s.env.Out.Success("✓ Logged out of the admin panel")
	return nil
}

func (s *AdminService) Stats(ctx context.Context) error {
	if _, err := s.env.Gate.RequireAdmin(ctx); err != nil {
		return err
	}
	stats, err := s.env.API.AdminStats(ctx)
	if err != nil {
		return err
	}
	return s.env.Out.Record("Dashboard", []output.Field{
		{Key: "Total users", Value: stats.TotalUsers},
		{Key: "Active invite codes", Value: stats.ActiveCodes},
		{Key: "Used invite codes", Value: stats.UsedCodes},
		{Key: "New today", Value: stats.NewToday},
	})
}

func (s *AdminService) Users(ctx context.Context) error {
	if _, err := s.env.Gate.RequireAdmin(ctx); err != nil {
		return err
	}
	users, err := s.env.API.AdminUsers(ctx)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{
			"@" + u.Username,
			u.DisplayName(),
			u.Email,
			u.Role,
			formatter.TimeAgo(u.CreatedAt),
		})
	}
	return s.env.Out.List(users, []string{"USERNAME", "NAME", "EMAIL", "ROLE", "JOINED"}, rows)
}

func (s *AdminService) Codes(ctx context.Context) error {
	if _, err := s.env.Gate.RequireAdmin(ctx); err != nil {
		return err
	}
	codes, err := s.env.API.AdminInviteCodes(ctx)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(codes))
	for _, c := range codes {
		status := "active"
		if c.IsUsed {
			status = "used"
		}
		rows = append(rows, []string{c.Code, status, userName(c.CreatedBy), userName(c.UsedBy), formatter.TimeAgo(c.CreatedAt)})
	}
	return s.env.Out.List(codes, []string{"CODE", "STATUS", "CREATED BY", "USED BY", "CREATED"}, rows)
}

// GenerateCode creates an invite code. Listings are cached for a short
// while, so a code generated now may take that long to show in 'codes'.
func (s *AdminService) GenerateCode(ctx context.Context) error {
	if _, err := s.env.Gate.RequireAdmin(ctx); err != nil {
		return err
	}
	code, err := s.env.API.GenerateInviteCode(ctx)
	if err != nil {
		return err
	}
	s.env.Out.Success("✓ Invite code generated")
	return s.env.Out.Record("", []output.Field{{Key: "code", Value: code}})
}

func userName(u *api.User) string {
	if u == nil || u.Username == "" {
		return "-"
	}
	return "@" + u.Username
}
