package service

import (
	"context"
	"strings"

	"github.com/campuscoders/campus-cli/pkg/api"
	"github.com/campuscoders/campus-cli/pkg/formatter"
	"github.com/campuscoders/campus-cli/pkg/interaction"
	"github.com/campuscoders/campus-cli/pkg/logger"
	"github.com/campuscoders/campus-cli/pkg/output"
)

// UserService covers search, follows and public profiles.
type UserService struct {
	env *Env
}

func NewUserService(env *Env) *UserService {
	return &UserService{env: env}
}

// Search looks users up. An empty query lists suggested users instead,
// the same listing the search panel shows before anything is typed.
func (s *UserService) Search(ctx context.Context, query string) error {
	if _, err := s.env.requireProfile(ctx); err != nil {
		return err
	}

	query = strings.TrimSpace(query)
	var (
		users []api.User
		err   error
	)
	if query == "" {
		users, err = s.env.API.GetAllUsers(ctx)
	} else {
		users, err = s.env.API.SearchUsers(ctx, query, s.env.SearchLimit)
	}
	if err != nil {
		return err
	}

	if len(users) == 0 && !s.env.Out.JSON() {
		s.env.Out.Info("No users found")
		return nil
	}
	if query != "" {
		s.env.Out.Info("Search results for %q (%d found)", query, len(users))
	}
	return s.printUsers(users)
}

func (s *UserService) Follow(ctx context.Context, username string) error {
	return s.env.toggle(ctx, interaction.Target{ID: strings.TrimPrefix(username, "@"), Kind: interaction.Follow}, true)
}

func (s *UserService) Unfollow(ctx context.Context, username string) error {
	return s.env.toggle(ctx, interaction.Target{ID: strings.TrimPrefix(username, "@"), Kind: interaction.Follow}, false)
}

// Profile shows a user's public profile and whether we follow them.
func (s *UserService) Profile(ctx context.Context, username string) error {
	me, err := s.env.requireProfile(ctx)
	if err != nil {
		return err
	}
	username = strings.TrimPrefix(username, "@")

	user, err := s.env.API.GetUserProfile(ctx, username)
	if err != nil {
		return err
	}

	fields := profileFields(user)
	if user.Username != me.Username {
		following, err := s.env.API.IsFollowing(ctx, username)
		if err != nil {
			logger.Warn("Failed to fetch follow status", "username", username, "error", err)
		} else {
			fields = append(fields, output.Field{Key: "Following", Value: following})
		}
	}
	return s.env.Out.Record(user.DisplayName(), fields)
}

func (s *UserService) Followers(ctx context.Context, username string) error {
	return s.list(ctx, username, s.env.API.GetFollowers, "No followers yet")
}

func (s *UserService) Following(ctx context.Context, username string) error {
	return s.list(ctx, username, s.env.API.GetFollowing, "Not following anyone yet")
}

func (s *UserService) list(ctx context.Context, username string, fetch func(context.Context, string) ([]api.User, error), empty string) error {
	me, err := s.env.requireProfile(ctx)
	if err != nil {
		return err
	}
	if username == "" {
		username = me.Username
	}

	users, err := fetch(ctx, strings.TrimPrefix(username, "@"))
	if err != nil {
		return err
	}
	if len(users) == 0 && !s.env.Out.JSON() {
		s.env.Out.Info(empty)
		return nil
	}
	return s.printUsers(users)
}

// Posts lists a user's posts, or our own when username is empty.
func (s *UserService) Posts(ctx context.Context, username string) error {
	if _, err := s.env.requireProfile(ctx); err != nil {
		return err
	}

	var (
		posts []api.Post
		err   error
	)
	if username == "" {
		posts, err = s.env.API.GetMyPosts(ctx)
	} else {
		posts, err = s.env.API.GetUserPosts(ctx, strings.TrimPrefix(username, "@"))
	}
	if err != nil {
		return err
	}

	if len(posts) == 0 && !s.env.Out.JSON() {
		s.env.Out.Info("No posts yet")
		return nil
	}
	rows := make([][]string, 0, len(posts))
	for _, p := range posts {
		rows = append(rows, formatter.PostRow(p))
	}
	return s.env.Out.List(posts, formatter.PostHeaders(), rows)
}

func (s *UserService) printUsers(users []api.User) error {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, formatter.UserRow(u))
	}
	return s.env.Out.List(users, formatter.UserHeaders(), rows)
}

func profileFields(u *api.User) []output.Field {
	fields := []output.Field{
		{Key: "Username", Value: "@" + u.Username},
		{Key: "Name", Value: u.DisplayName()},
	}
	for _, f := range []output.Field{
		{Key: "Course", Value: u.Course},
		{Key: "Year", Value: u.Year},
		{Key: "Gender", Value: u.Gender},
		{Key: "Bio", Value: u.Bio},
	} {
		if f.Value != "" {
			fields = append(fields, f)
		}
	}
	fields = append(fields,
		output.Field{Key: "Followers", Value: formatter.Count(u.FollowersCount)},
		output.Field{Key: "Following count", Value: formatter.Count(u.FollowingCount)},
	)
	if !u.CreatedAt.IsZero() {
		fields = append(fields, output.Field{Key: "Joined", Value: u.CreatedAt.Format("2006-01-02")})
	}
	return fields
}
