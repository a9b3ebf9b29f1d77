// Package search runs user searches as the query is typed, issuing a
// request only once typing pauses.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/campuscoders/campus-cli/pkg/api"
	"github.com/campuscoders/campus-cli/pkg/logger"
)

// DefaultDelay is the quiet interval before a search is sent.
const DefaultDelay = 300 * time.Millisecond

// Searcher runs one search. *api.API implements it.
type Searcher interface {
	SearchUsers(ctx context.Context, query string, limit int) ([]api.User, error)
}

// Panel shows search results. Its methods run with the debouncer's lock
// held, so they must return promptly and must not call back into it.
type Panel interface {
	// ShowDefault restores the unfiltered listing.
	ShowDefault()
	ShowResults(query string, users []api.User)
	// ShowEmpty renders the "no results" placeholder.
	ShowEmpty(query string)
	ShowError(query string, err error)
}

type Option func(*Debouncer)

func WithDelay(d time.Duration) Option {
	return func(db *Debouncer) { db.delay = d }
}

func WithLimit(n int) Option {
	return func(db *Debouncer) { db.limit = n }
}

// WithContext sets the context every search runs under.
func WithContext(ctx context.Context) Option {
	return func(db *Debouncer) { db.ctx = ctx }
}

// Debouncer collapses bursts of input into one search. Every input gets a
// sequence number and a response is only shown if no newer input arrived
// while it was in flight.
type Debouncer struct {
	searcher Searcher
	panel    Panel
	delay    time.Duration
	limit    int
	ctx      context.Context

	mu     sync.Mutex
	timer  *time.Timer
	seq    uint64
	closed bool
}

func NewDebouncer(searcher Searcher, panel Panel, opts ...Option) *Debouncer {
	db := &Debouncer{
		searcher: searcher,
		panel:    panel,
		delay:    DefaultDelay,
		limit:    api.DefaultSearchLimit,
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// OnInput is called with the full query after every keystroke.
func (db *Debouncer) OnInput(query string) {
	query = strings.TrimSpace(query)

	db.mu.Lock()
	if db.closed {
		db.mu.Unlock()
		return
	}
	if db.timer != nil {
		db.timer.Stop()
		db.timer = nil
	}
	db.seq++
	seq := db.seq

	if query == "" {
		db.panel.ShowDefault()
		db.mu.Unlock()
		return
	}

	db.timer = time.AfterFunc(db.delay, func() { db.run(seq, query) })
	db.mu.Unlock()
}

// Close drops any pending search. Responses still in flight are discarded.
func (db *Debouncer) Close() {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.timer != nil {
		db.timer.Stop()
		db.timer = nil
	}
	db.closed = true
	db.seq++
}

// current must be called with mu held.
func (db *Debouncer) current(seq uint64) bool {
	return !db.closed && seq == db.seq
}

func (db *Debouncer) run(seq uint64, query string) {
	db.mu.Lock()
	ok := db.current(seq)
	db.mu.Unlock()
	if !ok {
		return
	}

	users, err := db.searcher.SearchUsers(db.ctx, query, db.limit)

	// The staleness check and the panel write share the lock so a newer
	// input cannot land between them.
	db.mu.Lock()
	defer db.mu.Unlock()
	if !db.current(seq) {
		logger.With("search").Debug("Discarding stale search response", "query", query)
		return
	}

	switch {
	case err != nil:
		logger.With("search").Warn("Search failed", "query", query, "error", err)
		db.panel.ShowError(query, err)
	case len(users) == 0:
		db.panel.ShowEmpty(query)
	default:
		db.panel.ShowResults(query, users)
	}
}
