package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/campuscoders/campus-cli/pkg/client"
	clierrors "github.com/campuscoders/campus-cli/pkg/errors"
	"github.com/campuscoders/campus-cli/pkg/logger"
)

// decodeUser reads the user out of data, which is either {"user": {...}}
// or the user object itself.
func decodeUser(resp *client.Response) (*User, error) {
	var wrapped struct {
		User *User `json:"user"`
	}
	if err := resp.DecodeData(&wrapped); err != nil {
		return nil, err
	}
	if wrapped.User != nil {
		return wrapped.User, nil
	}

	var user User
	if err := resp.DecodeData(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login starts a session. The backend answers with a session cookie which
// the client's jar keeps.
func (a *API) Login(ctx context.Context, username, password string) (*User, error) {
	logger.Debug("Attempting login", "username", username)

	resp, err := a.post(ctx, "/users/login", LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}

	user, err := decodeUser(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}

	logger.Debug("Login successful", "username", username)
	return user, nil
}

// Register creates an account.
func (a *API) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	logger.Debug("Registering", "username", req.Username)

	resp, err := a.post(ctx, "/users/register", req)
	if err != nil {
		return nil, err
	}

	user, err := decodeUser(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to decode register response: %w", err)
	}
	return user, nil
}

// GetMyProfile returns the logged-in user. It always bypasses caches so the
// answer reflects the live session. A 2xx that is not a confirmed envelope
// carrying a username is a server error.
func (a *API) GetMyProfile(ctx context.Context) (*User, error) {
	resp, err := a.c.Do(ctx, client.Request{
		Method: http.MethodGet,
		Path:   "/users/getMyProfile",
		Header: map[string]string{
			"Cache-Control": "no-cache",
			"Pragma":        "no-cache",
		},
	})
	if err != nil {
		return nil, err
	}

	if !resp.Envelope.Confirmed() {
		return nil, clierrors.ServerError(resp.StatusCode, "Malformed profile response")
	}
	user, err := decodeUser(resp)
	if err != nil {
		e := clierrors.ServerError(resp.StatusCode, "Malformed profile response")
		e.Cause = err
		return nil, e
	}
	if user.Username == "" {
		return nil, clierrors.ServerError(resp.StatusCode, "Profile response has no user")
	}
	return user, nil
}

// Logout ends the session on the server.
func (a *API) Logout(ctx context.Context) error {
	_, err := a.post(ctx, "/users/logout", nil)
	return err
}

// AdminLogin starts an admin session.
func (a *API) AdminLogin(ctx context.Context, username, password string) (*User, error) {
	logger.Debug("Attempting admin login", "username", username)

	resp, err := a.post(ctx, "/admin/login", LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}

	user, err := decodeUser(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to decode admin login response: %w", err)
	}
	return user, nil
}

func (a *API) AdminLogout(ctx context.Context) error {
	_, err := a.post(ctx, "/admin/logout", nil)
	return err
}
