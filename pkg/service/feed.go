package service

import (
	"context"
	"fmt"

	"github.com/campuscoders/campus-cli/pkg/api"
	"github.com/campuscoders/campus-cli/pkg/feed"
	"github.com/campuscoders/campus-cli/pkg/formatter"
	"github.com/campuscoders/campus-cli/pkg/logger"
	"github.com/campuscoders/campus-cli/pkg/output"
	"github.com/campuscoders/campus-cli/pkg/tui"
)

// FeedService provides feed-related operations
type FeedService struct {
	env *Env
}

// NewFeedService creates a new feed service
func NewFeedService(env *Env) *FeedService {
	return &FeedService{env: env}
}

// streamSink prints posts as pages arrive.
type streamSink struct {
	out   *output.Printer
	count int
}

func (s *streamSink) AppendPosts(posts []api.Post) {
	for _, p := range posts {
		if s.count > 0 {
			s.out.Println()
		}
		fmt.Fprint(s.out.Out, formatter.Post(p))
		s.count++
	}
}

// ViewFeed prints the home feed, one page at a time, until pages pages
// were loaded or the feed ends. pages <= 0 loads everything. A page without a
// next cursor ends the run; the pager would otherwise start over.
func (fs *FeedService) ViewFeed(ctx context.Context, pages int) error {
	if _, err := fs.env.requireProfile(ctx); err != nil {
		return err
	}
	logger.Debug("Viewing feed", "pages", pages)

	out := fs.env.Out
	var (
		sink    feed.Sink
		list    *feed.List
		printed *streamSink
	)
	switch out.Format {
	case output.FormatText:
		printed = &streamSink{out: out}
		sink = printed
	default:
		list = &feed.List{}
		sink = list
	}

	pager := feed.NewPager(fs.env.API, sink)
	ended := false
	for loaded := 0; pages <= 0 || loaded < pages; loaded++ {
		if err := pager.LoadNextPage(ctx); err != nil {
			return fmt.Errorf("failed to load feed: %w", err)
		}
		if c := pager.Cursor(); c.Exhausted || c.Next == "" {
			ended = true
			break
		}
	}

	if list != nil {
		posts := list.Posts()
		rows := make([][]string, 0, len(posts))
		for _, p := range posts {
			rows = append(rows, formatter.PostRow(p))
		}
		return out.List(posts, formatter.PostHeaders(), rows)
	}

	switch {
	case printed.count == 0:
		out.Info("No posts in your feed yet. Follow people with 'campus user follow'.")
	case ended:
		out.Println()
		out.Info("You're all caught up.")
	default:
		out.Println()
		out.Info("Showing %s. Use --pages or --all for more.", formatter.Pluralize(printed.count, "post"))
	}
	return nil
}

// Browse opens the full-screen feed browser for the logged-in user.
func (fs *FeedService) Browse(ctx context.Context, opts tui.Options) error {
	s, err := fs.env.requireProfile(ctx)
	if err != nil {
		return err
	}
	opts.Me = s.Username
	logger.Debug("Opening browser", "user", s.Username)
	return tui.Run(ctx, fs.env.API, opts)
}
