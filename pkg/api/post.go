package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/campuscoders/campus-cli/pkg/client"
	"github.com/campuscoders/campus-cli/pkg/logger"
)

// GetFeed fetches one page of the home feed. An empty cursor asks for the
// first page.
func (a *API) GetFeed(ctx context.Context, cursor string) (*FeedPage, error) {
	logger.Debug("Fetching feed", "cursor", cursor)

	req := client.Request{Method: http.MethodGet, Path: "/post/getfeed"}
	if cursor != "" {
		req.Query = url.Values{"cursor": {cursor}}
	}

	resp, err := a.c.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	var page FeedPage
	if err := resp.DecodeData(&page); err != nil {
		return nil, fmt.Errorf("failed to decode feed page: %w", err)
	}
	return &page, nil
}

// LikePost likes a post. The response is returned so callers can check for
// an explicit confirmation.
func (a *API) LikePost(ctx context.Context, postID string) (*client.Response, error) {
	return a.get(ctx, "/post/postLike/"+escape(postID), false)
}

func (a *API) UnlikePost(ctx context.Context, postID string) (*client.Response, error) {
	return a.get(ctx, "/post/postUnlike/"+escape(postID), false)
}

// GetComments lists the comments on a post.
func (a *API) GetComments(ctx context.Context, postID string) ([]Comment, error) {
	resp, err := a.get(ctx, "/post/getAllComments/"+escape(postID), false)
	if err != nil {
		return nil, err
	}

	var comments []Comment
	if err := decodeList(resp.Envelope.Data, "comments", &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (a *API) AddComment(ctx context.Context, postID, text string) error {
	logger.Debug("Adding comment", "post_id", postID)
	_, err := a.post(ctx, "/post/comment/"+escape(postID), map[string]string{"text": text})
	return err
}

// CreatePost uploads a post with an optional caption and any number of
// images sent under the "media" field.
func (a *API) CreatePost(ctx context.Context, caption string, mediaPaths []string) (*Post, error) {
	logger.Debug("Creating post", "media", len(mediaPaths))

	files := make([]client.File, 0, len(mediaPaths))
	for _, p := range mediaPaths {
		files = append(files, client.File{Field: "media", Path: p})
	}

	resp, err := a.c.Do(ctx, client.Request{
		Method: http.MethodPost,
		Path:   "/post/createPost",
		Form:   map[string]string{"caption": caption},
		Files:  files,
	})
	if err != nil {
		return nil, err
	}

	var post Post
	if err := resp.DecodeData(&post); err != nil {
		return nil, fmt.Errorf("failed to decode created post: %w", err)
	}
	return &post, nil
}

// GetMyPosts lists the logged-in user's posts.
func (a *API) GetMyPosts(ctx context.Context) ([]Post, error) {
	return a.postList(ctx, "/post/getMyPosts")
}

// GetUserPosts lists another user's posts.
func (a *API) GetUserPosts(ctx context.Context, username string) ([]Post, error) {
	return a.postList(ctx, "/post/getUserPost/"+escape(username))
}

func (a *API) postList(ctx context.Context, path string) ([]Post, error) {
	resp, err := a.get(ctx, path, false)
	if err != nil {
		return nil, err
	}

	var posts []Post
	if err := decodeList(resp.Envelope.Data, "posts", &posts); err != nil {
		return nil, err
	}
	return posts, nil
}
