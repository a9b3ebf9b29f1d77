package service

import (
	"context"
	"strings"

	clierrors "github.com/campuscoders/campus-cli/pkg/errors"
	"github.com/campuscoders/campus-cli/pkg/formatter"
	"github.com/campuscoders/campus-cli/pkg/interaction"
	"github.com/campuscoders/campus-cli/pkg/logger"
	"github.com/campuscoders/campus-cli/pkg/output"
	"github.com/campuscoders/campus-cli/pkg/validate"
)

type PostService struct {
	env *Env
}

// NewPostService creates a new post service
func NewPostService(env *Env) *PostService {
	return &PostService{env: env}
}

// Like likes a post.
func (s *PostService) Like(ctx context.Context, postID string) error {
	return s.env.toggle(ctx, interaction.Target{ID: postID, Kind: interaction.Like}, true)
}

// Unlike removes a like.
func (s *PostService) Unlike(ctx context.Context, postID string) error {
	return s.env.toggle(ctx, interaction.Target{ID: postID, Kind: interaction.Like}, false)
}

// toggle drives a one-shot interaction: the display starts in the opposite
// of want, so the controller sends the request that reaches want.
func (e *Env) toggle(ctx context.Context, t interaction.Target, want bool) error {
	if _, err := e.requireProfile(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(t.ID) == "" {
		return validateID(t.Kind)
	}

	display := &interaction.Memory{}
	display.Apply(t, !want)
	attempt := interaction.NewController(e.API, display).Toggle(ctx, t)
	if attempt.Status() == interaction.Reverted {
		return attempt.Err()
	}

	verb := map[interaction.Kind][2]string{
		interaction.Like:   {"Unliked", "Liked"},
		interaction.Follow: {"Unfollowed", "Following"},
	}[t.Kind]
	done := verb[0]
	if want {
		done = verb[1]
	}
	if t.Kind == interaction.Follow {
		e.Out.Success("✓ %s @%s", done, t.ID)
	} else {
		e.Out.Success("✓ %s post %s", done, t.ID)
	}
	return nil
}

func validateID(kind interaction.Kind) error {
	if kind == interaction.Follow {
		return clierrors.ValidationError("username", "Username is required")
	}
	return clierrors.ValidationError("post", "Post ID is required")
}

// Comments lists the comments on a post.
func (s *PostService) Comments(ctx context.Context, postID string) error {
	if _, err := s.env.requireProfile(ctx); err != nil {
		return err
	}
	comments, err := s.env.API.GetComments(ctx, postID)
	if err != nil {
		return err
	}

	out := s.env.Out
	if len(comments) == 0 && !out.JSON() {
		out.Info("No comments yet.")
		return nil
	}
	rows := make([][]string, 0, len(comments))
	for _, c := range comments {
		rows = append(rows, formatter.CommentRow(c))
	}
	return out.List(comments, formatter.CommentHeaders(), rows)
}

// Comment adds a comment. Text is prompted for when empty.
func (s *PostService) Comment(ctx context.Context, postID, text string) error {
	if _, err := s.env.requireProfile(ctx); err != nil {
		return err
	}
	if err := s.env.prompt(&text, "Comment: ", false); err != nil {
		return err
	}
	if err := validate.Comment(text); err != nil {
		return err
	}

	if err := s.env.API.AddComment(ctx, postID, strings.TrimSpace(text)); err != nil {
		return err
	}
	s.env.Out.Success("✓ Comment added")
	return nil
}

// Create publishes a post with an optional caption and images.
func (s *PostService) Create(ctx context.Context, caption string, media []string) error {
	if _, err := s.env.requireProfile(ctx); err != nil {
		return err
	}
	if err := validate.Post(caption, media); err != nil {
		return err
	}

	logger.Debug("Creating post", "media", len(media))
	s.env.Out.Info("Uploading...")
	post, err := s.env.API.CreatePost(ctx, strings.TrimSpace(caption), media)
	if err != nil {
		return err
	}

	s.env.Out.Success("✓ Post created")
	if post == nil || post.ID == "" {
		return nil
	}
	return s.env.Out.Record("", []output.Field{
		{Key: "ID", Value: post.ID},
		{Key: "Caption", Value: post.Caption},
		{Key: "Images", Value: len(post.Media)},
	})
}
