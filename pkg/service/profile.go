package service

import (
	"context"
	"strings"

	"github.com/campuscoders/campus-cli/pkg/api"
	"github.com/campuscoders/campus-cli/pkg/logger"
	"github.com/campuscoders/campus-cli/pkg/session"
	"github.com/campuscoders/campus-cli/pkg/validate"
)

// Genders offered by the onboarding form.
var Genders = []string{"male", "female", "other"}

type ProfileService struct {
	env *Env
}

// NewProfileService creates a new profile service
func NewProfileService(env *Env) *ProfileService {
	return &ProfileService{env: env}
}

type SetupInput struct {
	Gender string
	Course string
	Year   string
	Bio    string
	// Avatar is an optional image path.
	Avatar string
}

// Setup completes onboarding. Missing fields are prompted for. The avatar
// is uploaded before the profile is saved so a bad image does not leave a
// half-finished profile.
func (s *ProfileService) Setup(ctx context.Context, in SetupInput) error {
	_, dest, err := s.env.Gate.Require(ctx)
	if err != nil {
		return err
	}
	out := s.env.Out
	if dest != session.DestProfileSetup {
		out.Info("Your profile is already complete; saving changes.")
	}

	if in.Gender == "" {
		idx, err := s.env.Prompt.Select("Gender", Genders)
		if err != nil {
			return err
		}
		in.Gender = Genders[idx]
	}
	if err := s.env.prompt(&in.Course, "Course: ", false); err != nil {
		return err
	}
	if err := s.env.prompt(&in.Year, "Year: ", false); err != nil {
		return err
	}
	in.Bio = strings.TrimSpace(in.Bio)

	if err := validate.Profile(in.Gender, in.Course, in.Year, in.Bio); err != nil {
		return err
	}
	if in.Avatar != "" {
		if err := validate.MediaFile(in.Avatar); err != nil {
			return err
		}
		out.Info("Uploading avatar...")
		if err := s.env.API.SetAvatar(ctx, in.Avatar); err != nil {
			return err
		}
	}

	user, err := s.env.API.SetupProfile(ctx, api.ProfileSetupRequest{
		Gender: in.Gender,
		Course: strings.TrimSpace(in.Course),
		Year:   strings.TrimSpace(in.Year),
		Bio:    in.Bio,
	})
	if err != nil {
		return err
	}
	s.env.Gate.ProfileCompleted(user)
	logger.Info("Profile setup complete", "username", user.Username)

	out.Success("✓ Profile saved. You're all set; try 'campus feed'.")
	return nil
}

// Me shows the logged-in user's own profile.
func (s *ProfileService) Me(ctx context.Context) error {
	if _, _, err := s.env.Gate.Require(ctx); err != nil {
		return err
	}
	user, err := s.env.API.GetMyProfile(ctx)
	if err != nil {
		return err
	}
	return s.env.Out.Record(user.DisplayName(), profileFields(user))
}
