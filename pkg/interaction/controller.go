// Package interaction applies like and follow toggles optimistically and
// reverts them when the backend does not confirm.
package interaction

import (
	"context"
	"fmt"
	"sync"

	"github.com/campuscoders/campus-cli/pkg/client"
	clierrors "github.com/campuscoders/campus-cli/pkg/errors"
	"github.com/campuscoders/campus-cli/pkg/logger"
)

type Kind int

const (
	Like Kind = iota
	Follow
)

func (k Kind) String() string {
	if k == Follow {
		return "follow"
	}
	return "like"
}

// Target identifies what is toggled: a post ID for Like, a username for
// Follow.
type Target struct {
	ID   string
	Kind Kind
}

type Status int

const (
	Pending Status = iota
	Confirmed
	Reverted
)

func (s Status) String() string {
	switch s {
	case Confirmed:
		return "confirmed"
	case Reverted:
		return "reverted"
	default:
		return "pending"
	}
}

// Display holds the visible on/off state of each target.
type Display interface {
	State(t Target) bool
	Apply(t Target, on bool)
}

// Animator is an optional Display extension for a short visual cue when a
// toggle is applied.
type Animator interface {
	Pulse(t Target)
}

// Backend performs the toggle requests. *api.API implements it.
type Backend interface {
	LikePost(ctx context.Context, postID string) (*client.Response, error)
	UnlikePost(ctx context.Context, postID string) (*client.Response, error)
	Follow(ctx context.Context, username string) (*client.Response, error)
	Unfollow(ctx context.Context, username string) (*client.Response, error)
}

// Attempt is one toggle from the moment it is applied until the backend
// answers. It is never persisted.
type Attempt struct {
	Target  Target
	Prior   bool
	Desired bool

	mu     sync.Mutex
	status Status
	err    error
	done   chan struct{}
}

func (a *Attempt) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// Err is the reason for a revert, nil otherwise.
func (a *Attempt) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Done is closed once the attempt is resolved.
func (a *Attempt) Done() <-chan struct{} {
	return a.done
}

func (a *Attempt) resolve(status Status, err error) {
	a.mu.Lock()
	a.status = status
	a.err = err
	a.mu.Unlock()
	close(a.done)
}

// Controller runs toggles. Each toggle is independent; overlapping toggles
// on the same target are not ordered against each other.
type Controller struct {
	backend Backend
	display Display
}

func NewController(backend Backend, display Display) *Controller {
	return &Controller{backend: backend, display: display}
}

// Toggle flips the target on the display, sends the matching request and
// waits for it. On failure the display goes back to exactly its prior
// value.
func (c *Controller) Toggle(ctx context.Context, t Target) *Attempt {
	a := c.begin(t)
	c.finish(ctx, a)
	return a
}

// Start is Toggle without waiting: the display is updated before Start
// returns and the request runs in the background. Wait on Done.
func (c *Controller) Start(ctx context.Context, t Target) *Attempt {
	a := c.begin(t)
	go c.finish(ctx, a)
	return a
}

func (c *Controller) begin(t Target) *Attempt {
	prior := c.display.State(t)
	a := &Attempt{
		Target:  t,
		Prior:   prior,
		Desired: !prior,
		status:  Pending,
		done:    make(chan struct{}),
	}
	c.display.Apply(t, a.Desired)
	if anim, ok := c.display.(Animator); ok {
		anim.Pulse(t)
	}
	return a
}

func (c *Controller) finish(ctx context.Context, a *Attempt) {
	resp, err := c.send(ctx, a.Target, a.Prior)
	if err == nil && (resp == nil || !resp.Envelope.Confirmed()) {
		msg := "Request was not confirmed"
		if resp != nil && resp.Envelope.Message != "" {
			msg = resp.Envelope.Message
		}
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		err = clierrors.ServerError(status, msg)
	}

	if err != nil {
		logger.Warn("Toggle reverted", "kind", a.Target.Kind, "id", a.Target.ID, "error", err)
		c.display.Apply(a.Target, a.Prior)
		a.resolve(Reverted, err)
		return
	}

	logger.Debug("Toggle confirmed", "kind", a.Target.Kind, "id", a.Target.ID, "on", a.Desired)
	a.resolve(Confirmed, nil)
}

// send picks the request from the prior state: on means undo.
func (c *Controller) send(ctx context.Context, t Target, prior bool) (*client.Response, error) {
	switch t.Kind {
	case Like:
		if prior {
			return c.backend.UnlikePost(ctx, t.ID)
		}
		return c.backend.LikePost(ctx, t.ID)
	case Follow:
		if prior {
			return c.backend.Unfollow(ctx, t.ID)
		}
		return c.backend.Follow(ctx, t.ID)
	}
	return nil, fmt.Errorf("unknown interaction kind %d", t.Kind)
}

// Memory is a Display backed by a map. Zero value is ready to use.
type Memory struct {
	mu    sync.Mutex
	state map[Target]bool
}

func (m *Memory) State(t Target) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state[t]
}

func (m *Memory) Apply(t Target, on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		m.state = make(map[Target]bool)
	}
	m.state[t] = on
}
