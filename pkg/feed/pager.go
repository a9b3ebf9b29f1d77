// Package feed pages through the home feed with an opaque cursor.
package feed

import (
	"context"
	"sync"
	"time"

	"github.com/campuscoders/campus-cli/pkg/api"
	"github.com/campuscoders/campus-cli/pkg/logger"
	"golang.org/x/time/rate"
)

// Source fetches one feed page. *api.API implements it.
type Source interface {
	GetFeed(ctx context.Context, cursor string) (*api.FeedPage, error)
}

// Sink receives posts in the order the backend sent them.
type Sink interface {
	AppendPosts(posts []api.Post)
}

// Cursor is the paging state of one feed view. Next is empty before the
// first page and whenever the backend sent a null cursor.
type Cursor struct {
	Next      string
	Exhausted bool
	Loading   bool
}

// DefaultRetryInterval bounds how often scrolling may retry after a failed
// load.
const DefaultRetryInterval = time.Second

type PagerOption func(*Pager)

// WithRetryInterval sets the minimum spacing of scroll-triggered retries
// after a failure.
func WithRetryInterval(d time.Duration) PagerOption {
	return func(p *Pager) { p.retry = rate.NewLimiter(rate.Every(d), 1) }
}

// WithThreshold sets the scroll trigger distance.
func WithThreshold(lines int) PagerOption {
	return func(p *Pager) { p.trigger = ScrollTrigger{Threshold: lines} }
}

// Pager loads pages into a Sink. At most one load is in flight; once the
// backend returns an empty page the pager never fetches again.
type Pager struct {
	src     Source
	sink    Sink
	trigger ScrollTrigger
	retry   *rate.Limiter

	mu     sync.Mutex
	cursor Cursor
	failed bool
}

func NewPager(src Source, sink Sink, opts ...PagerOption) *Pager {
	p := &Pager{
		src:     src,
		sink:    sink,
		trigger: ScrollTrigger{Threshold: DefaultThreshold},
		retry:   rate.NewLimiter(rate.Every(DefaultRetryInterval), 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Cursor returns a snapshot of the paging state.
func (p *Pager) Cursor() Cursor {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}

// LoadNextPage fetches the next page and appends it. It returns immediately
// when a load is already running or the feed is exhausted. A failed load
// leaves the cursor where it was so a later trigger can try again.
func (p *Pager) LoadNextPage(ctx context.Context) error {
	p.mu.Lock()
	if p.cursor.Loading || p.cursor.Exhausted {
		p.mu.Unlock()
		return nil
	}
	p.cursor.Loading = true
	next := p.cursor.Next
	p.mu.Unlock()

	page, err := p.src.GetFeed(ctx, next)
	if err != nil {
		logger.Warn("Feed load failed", "cursor", next, "error", err)
		p.mu.Lock()
		p.cursor.Loading = false
		p.failed = true
		p.mu.Unlock()
		return err
	}

	if page == nil || len(page.Posts) == 0 {
		logger.Debug("Feed exhausted", "cursor", next)
		p.mu.Lock()
		p.cursor.Exhausted = true
		p.cursor.Loading = false
		p.failed = false
		p.mu.Unlock()
		return nil
	}

	p.mu.Lock()
	p.cursor.Next = page.NextCursor
	p.mu.Unlock()

	p.sink.AppendPosts(page.Posts)

	p.mu.Lock()
	p.cursor.Loading = false
	p.failed = false
	p.mu.Unlock()

	logger.Debug("Feed page loaded", "posts", len(page.Posts), "next", page.NextCursor)
	return nil
}

// OnScroll loads the next page when pos is near the end of the content.
// After a failed load, scroll-triggered retries are rate limited.
func (p *Pager) OnScroll(ctx context.Context, pos Position) error {
	if !p.trigger.Near(pos) {
		return nil
	}

	p.mu.Lock()
	failed := p.failed
	p.mu.Unlock()
	if failed && !p.retry.Allow() {
		return nil
	}

	return p.LoadNextPage(ctx)
}

// List is a Sink that keeps posts in memory.
type List struct {
	mu    sync.Mutex
	posts []api.Post
}

func (l *List) AppendPosts(posts []api.Post) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.posts = append(l.posts, posts...)
}

// Posts returns a copy of everything appended so far.
func (l *List) Posts() []api.Post {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]api.Post(nil), l.posts...)
}

func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.posts)
}
