package tui

import (
	"strings"
	"sync"
	"time"

	"github.com/campuscoders/campus-cli/pkg/api"
	"github.com/campuscoders/campus-cli/pkg/interaction"
	"github.com/sahilm/fuzzy"
)

// batchSink collects the posts of a load until the scroll command drains
// them into a message. The pager never runs two loads at once.
type batchSink struct {
	mu    sync.Mutex
	posts []api.Post
}

func (s *batchSink) AppendPosts(posts []api.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = append(s.posts, posts...)
}

func (s *batchSink) drain() []api.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.posts
	s.posts = nil
	return out
}

// board is the on-screen toggle state for likes and follows. The
// controller writes to it from background goroutines on revert, so View
// reads it under the lock instead of copying it into the model.
type board struct {
	mu     sync.Mutex
	state  map[interaction.Target]bool
	pulses map[interaction.Target]time.Time
}

func newBoard() *board {
	return &board{
		state:  make(map[interaction.Target]bool),
		pulses: make(map[interaction.Target]time.Time),
	}
}

func (b *board) State(t interaction.Target) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state[t]
}

func (b *board) Apply(t interaction.Target, on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state[t] = on
}

func (b *board) Pulse(t interaction.Target) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pulses[t] = time.Now()
}

// seed records the backend's view of a target unless a toggle already
// owns it.
func (b *board) seed(t interaction.Target, on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.state[t]; !ok {
		b.state[t] = on
	}
}

func (b *board) known(t interaction.Target) (on, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	on, ok = b.state[t]
	return on, ok
}

func (b *board) pulsing(t interaction.Target) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.pulses[t]
	return ok
}

func (b *board) unpulse(t interaction.Target) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.pulses, t)
}

// panel forwards debouncer output to the model through a channel. The
// debouncer calls ShowDefault from inside Update, so sends must not wait
// for the event loop.
type panel struct {
	ch chan searchMsg
}

func newPanel() *panel {
	return &panel{ch: make(chan searchMsg, 32)}
}

func (p *panel) ShowDefault() {
	p.ch <- searchMsg{kind: searchDefault}
}

func (p *panel) ShowResults(query string, users []api.User) {
	p.ch <- searchMsg{kind: searchResults, query: query, users: users}
}

func (p *panel) ShowEmpty(query string) {
	p.ch <- searchMsg{kind: searchEmpty, query: query}
}

func (p *panel) ShowError(query string, err error) {
	p.ch <- searchMsg{kind: searchError, query: query, err: err}
}

// userIndex lets fuzzy match against username and full name at once.
type userIndex []api.User

func (u userIndex) String(i int) string {
	return strings.ToLower(u[i].Username + " " + u[i].FullName)
}

func (u userIndex) Len() int { return len(u) }

// narrow filters users locally while a server search is pending.
func narrow(users []api.User, query string) []api.User {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return users
	}
	matches := fuzzy.FindFrom(query, userIndex(users))
	out := make([]api.User, 0, len(matches))
	for _, m := range matches {
		out = append(out, users[m.Index])
	}
	return out
}
