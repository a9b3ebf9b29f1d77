// Package session decides whether the user has a live backend session and
// where they should be sent next.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/campuscoders/campus-cli/pkg/api"
	"github.com/campuscoders/campus-cli/pkg/credentials"
	clierrors "github.com/campuscoders/campus-cli/pkg/errors"
	"github.com/campuscoders/campus-cli/pkg/logger"
)

type State int

const (
	Unknown State = iota
	Authenticated
	Unauthenticated
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Destination is the screen a gate decision leads to.
type Destination string

const (
	DestLogin        Destination = "login"
	DestProfileSetup Destination = "profile-setup"
	DestFeed         Destination = "feed"
	DestAdminLogin   Destination = "admin-login"
	DestAdmin        Destination = "admin"
)

// Session is what the gate knows about the logged-in user.
type Session struct {
	UserID           string
	Username         string
	Role             string
	ProfileCompleted bool
}

func (s *Session) IsAdmin() bool {
	return s.Role == "admin"
}

// Backend is the part of the API the gate calls.
type Backend interface {
	Login(ctx context.Context, username, password string) (*api.User, error)
	AdminLogin(ctx context.Context, username, password string) (*api.User, error)
	GetMyProfile(ctx context.Context) (*api.User, error)
	Logout(ctx context.Context) error
	AdminLogout(ctx context.Context) error
}

// CookieClearer drops the transport's cookies and cached responses.
type CookieClearer interface {
	ClearSession() error
}

// SnapshotStore persists the last known session.
type SnapshotStore interface {
	Save(creds *credentials.Credentials) error
	Delete() error
}

// Deps wires a Gate. Only Backend is required.
type Deps struct {
	Backend   Backend
	Cookies   CookieClearer
	Snapshots SnapshotStore
}

// Gate runs the session check and owns the session state. It is safe for
// concurrent use.
type Gate struct {
	deps Deps

	mu      sync.Mutex
	state   State
	session *Session
}

func NewGate(deps Deps) *Gate {
	return &Gate{deps: deps, state: Unknown}
}

// State returns the current gate state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Current returns the live session, or nil when not authenticated.
func (g *Gate) Current() *Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session == nil {
		return nil
	}
	s := *g.session
	return &s
}

// Check asks the backend who is logged in. It never tries to refresh a
// session. A 401 destroys the saved session and sends the user to login
// with no error; any other failure, a profile without a username included,
// also sends the user to login but returns the cause so it can be shown.
func (g *Gate) Check(ctx context.Context) (Destination, error) {
	user, err := g.deps.Backend.GetMyProfile(ctx)
	if err != nil {
		if clierrors.IsAuth(err) {
			logger.Debug("Session check: not logged in")
			g.destroy()
			return DestLogin, nil
		}
		logger.Warn("Session check failed", "error", err)
		g.setUnauthenticated()
		return DestLogin, err
	}
	if user == nil || user.Username == "" {
		logger.Warn("Session check returned no user")
		g.setUnauthenticated()
		return DestLogin, clierrors.ServerError(0, "Profile response has no user")
	}

	s := g.establish(user)
	return landing(s), nil
}

// Require returns the session for commands that need one. The destination
// is DestProfileSetup when onboarding is not finished.
func (g *Gate) Require(ctx context.Context) (*Session, Destination, error) {
	dest, err := g.Check(ctx)
	if err != nil {
		return nil, dest, err
	}
	if dest == DestLogin {
		return nil, dest, clierrors.AuthError("Not logged in")
	}
	return g.Current(), dest, nil
}

// RequireAdmin is Require for admin-only commands.
func (g *Gate) RequireAdmin(ctx context.Context) (*Session, error) {
	s, _, err := g.Require(ctx)
	if err != nil {
		if clierrors.IsAuth(err) {
			return nil, clierrors.AuthError("Not logged in as an admin").
				WithSuggestion("Log in with 'campus admin login'.")
		}
		return nil, err
	}
	if !s.IsAdmin() {
		return nil, clierrors.AuthError("Admin access required").
			WithSuggestion("Log in with an admin account using 'campus admin login'.")
	}
	return s, nil
}

// RedirectIfAuthenticated is used by the login and register flows: it
// reports where an already logged-in user should go instead.
func (g *Gate) RedirectIfAuthenticated(ctx context.Context) (Destination, bool) {
	dest, err := g.Check(ctx)
	if err != nil || dest == DestLogin {
		return DestLogin, false
	}
	return dest, true
}

// Login starts a session and returns where the user lands.
func (g *Gate) Login(ctx context.Context, username, password string) (Destination, error) {
	user, err := g.deps.Backend.Login(ctx, username, password)
	if err != nil {
		return DestLogin, err
	}
	// Some backends return an empty data object on login; ask again.
	if user == nil || user.Username == "" {
		return g.Check(ctx)
	}
	return landing(g.establish(user)), nil
}

// AdminLogin starts an admin session.
func (g *Gate) AdminLogin(ctx context.Context, username, password string) (Destination, error) {
	user, err := g.deps.Backend.AdminLogin(ctx, username, password)
	if err != nil {
		return DestAdminLogin, err
	}
	if user == nil {
		user = &api.User{}
	}
	if user.Username == "" {
		user.Username = username
	}
	user.Role = "admin"
	g.establish(user)
	return DestAdmin, nil
}

// Logout tells the backend to end the session and then clears every piece
// of local session state, whatever the backend said. The returned error is
// the backend's, for display only.
func (g *Gate) Logout(ctx context.Context) (Destination, error) {
	defer g.destroy()
	err := g.deps.Backend.Logout(ctx)
	if err != nil {
		logger.Warn("Logout request failed", "error", err)
	}
	return DestLogin, err
}

// AdminLogout is Logout for admin sessions.
func (g *Gate) AdminLogout(ctx context.Context) (Destination, error) {
	defer g.destroy()
	err := g.deps.Backend.AdminLogout(ctx)
	if err != nil {
		logger.Warn("Admin logout request failed", "error", err)
	}
	return DestAdminLogin, err
}

// ProfileCompleted marks onboarding done on the live session.
func (g *Gate) ProfileCompleted(user *api.User) {
	if user != nil && user.Username != "" {
		user.ProfileCompleted = true
		g.establish(user)
		return
	}
	g.mu.Lock()
	if g.session != nil {
		g.session.ProfileCompleted = true
	}
	g.mu.Unlock()
}

func landing(s *Session) Destination {
	if !s.ProfileCompleted {
		return DestProfileSetup
	}
	return DestFeed
}

func (g *Gate) establish(user *api.User) *Session {
	s := &Session{
		UserID:           user.ID,
		Username:         user.Username,
		Role:             user.Role,
		ProfileCompleted: user.ProfileCompleted,
	}

	g.mu.Lock()
	g.state = Authenticated
	g.session = s
	g.mu.Unlock()

	if g.deps.Snapshots != nil {
		err := g.deps.Snapshots.Save(&credentials.Credentials{
			UserID:           s.UserID,
			Username:         s.Username,
			Role:             s.Role,
			ProfileCompleted: s.ProfileCompleted,
			LoggedInAt:       time.Now(),
		})
		if err != nil {
			logger.Warn("Failed to save session snapshot", "error", err)
		}
	}

	copied := *s
	return &copied
}

func (g *Gate) setUnauthenticated() {
	g.mu.Lock()
	g.state = Unauthenticated
	g.session = nil
	g.mu.Unlock()
}

// destroy forgets the session locally: cookies, cached responses and the
// snapshot.
func (g *Gate) destroy() {
	g.setUnauthenticated()

	if g.deps.Cookies != nil {
		if err := g.deps.Cookies.ClearSession(); err != nil {
			logger.Warn("Failed to clear cookies", "error", err)
		}
	}
	if g.deps.Snapshots != nil {
		if err := g.deps.Snapshots.Delete(); err != nil {
			logger.Warn("Failed to delete session snapshot", "error", err)
		}
	}
}
