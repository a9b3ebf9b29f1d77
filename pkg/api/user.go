package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/campuscoders/campus-cli/pkg/client"
	"github.com/campuscoders/campus-cli/pkg/logger"
)

// DefaultSearchLimit is the page size the search panel asks for.
const DefaultSearchLimit = 20

// SearchUsers looks users up by a free-text query.
func (a *API) SearchUsers(ctx context.Context, query string, limit int) ([]User, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	logger.Debug("Searching users", "query", query, "limit", limit)

	resp, err := a.c.Do(ctx, client.Request{
		Method: http.MethodGet,
		Path:   "/users/search",
		Query:  url.Values{"q": {query}, "limit": {strconv.Itoa(limit)}},
	})
	if err != nil {
		return nil, err
	}

	// Older backends put users at the top level instead of under data.
	raw := resp.Envelope.Data
	if len(raw) == 0 {
		raw = resp.Body
	}
	var users []User
	if err := decodeList(raw, "users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetAllUsers returns the random selection of users shown when no search
// is active. Cached.
func (a *API) GetAllUsers(ctx context.Context) ([]User, error) {
	resp, err := a.get(ctx, "/users/getAllUser", true)
	if err != nil {
		return nil, err
	}

	var users []User
	if err := decodeList(resp.Envelope.Data, "users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUserProfile returns a public profile. Cached.
func (a *API) GetUserProfile(ctx context.Context, username string) (*User, error) {
	resp, err := a.get(ctx, "/users/getUserProfile/"+escape(username), true)
	if err != nil {
		return nil, err
	}

	var user User
	if err := resp.DecodeData(&user); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return &user, nil
}

// IsFollowing reports whether the logged-in user follows username.
func (a *API) IsFollowing(ctx context.Context, username string) (bool, error) {
	resp, err := a.get(ctx, "/users/isFollowing/"+escape(username), false)
	if err != nil {
		return false, err
	}

	var data struct {
		IsFollowing bool `json:"isFollowing"`
	}
	if err := resp.DecodeData(&data); err != nil {
		return false, fmt.Errorf("failed to decode follow status: %w", err)
	}
	return data.IsFollowing, nil
}

func (a *API) Follow(ctx context.Context, username string) (*client.Response, error) {
	return a.get(ctx, "/users/follow/"+escape(username), false)
}

func (a *API) Unfollow(ctx context.Context, username string) (*client.Response, error) {
	return a.get(ctx, "/users/unfollow/"+escape(username), false)
}

// GetFollowers lists who follows username. Cached.
func (a *API) GetFollowers(ctx context.Context, username string) ([]User, error) {
	return a.userList(ctx, "/users/getfollowers/"+escape(username), "followers")
}

// GetFollowing lists who username follows. Cached.
func (a *API) GetFollowing(ctx context.Context, username string) ([]User, error) {
	return a.userList(ctx, "/users/getfollowing/"+escape(username), "following")
}

func (a *API) userList(ctx context.Context, path, field string) ([]User, error) {
	resp, err := a.get(ctx, path, true)
	if err != nil {
		return nil, err
	}

	var users []User
	if err := decodeList(resp.Envelope.Data, field, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SetAvatar uploads a profile picture.
func (a *API) SetAvatar(ctx context.Context, path string) error {
	_, err := a.c.Do(ctx, client.Request{
		Method: http.MethodPost,
		Path:   "/users/setAvatar",
		Files:  []client.File{{Field: "avatar", Path: path}},
	})
	return err
}

// SetupProfile completes onboarding and returns the updated user.
func (a *API) SetupProfile(ctx context.Context, req ProfileSetupRequest) (*User, error) {
	resp, err := a.post(ctx, "/users/profilemanagement", req)
	if err != nil {
		return nil, err
	}

	var user User
	if err := resp.DecodeData(&user); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return &user, nil
}
