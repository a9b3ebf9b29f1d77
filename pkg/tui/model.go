// Package tui is the full-screen feed browser: an infinitely scrolling
// feed with optimistic likes, and a user search panel that queries the
// backend as you type.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/campuscoders/campus-cli/pkg/api"
	"github.com/campuscoders/campus-cli/pkg/feed"
	"github.com/campuscoders/campus-cli/pkg/formatter"
	"github.com/campuscoders/campus-cli/pkg/interaction"
	"github.com/campuscoders/campus-cli/pkg/search"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Backend is everything the browser needs from the API. *api.API
// implements it.
type Backend interface {
	feed.Source
	interaction.Backend
	search.Searcher
	GetAllUsers(ctx context.Context) ([]api.User, error)
	IsFollowing(ctx context.Context, username string) (bool, error)
}

type Options struct {
	// Me is the logged-in username.
	Me string
	// Threshold is how many posts from the end of the feed the next page
	// is requested.
	Threshold   int
	SearchDelay time.Duration
	SearchLimit int
}

type mode int

const (
	modeFeed mode = iota
	modeSearch
)

const (
	// postHeight is the number of rows one post takes, gap included.
	postHeight   = 4
	chromeHeight = 3
	pulseLength  = 300 * time.Millisecond
)

// Model is the Bubble Tea model of the browser.
type Model struct {
	ctx     context.Context
	backend Backend
	me      string
	keys    keyMap

	pager *feed.Pager
	sink  *batchSink
	board *board
	ctl   *interaction.Controller
	deb   *search.Debouncer
	panel *panel
	pulse time.Duration

	mode     mode
	posts    []api.Post
	selected int
	top      int
	spinner  spinner.Model

	input   textinput.Model
	all     []api.User // suggested users, shown for an empty query
	base    []api.User // last list the backend sent
	users   []api.User // base narrowed to the current input
	userSel int
	lookups map[string]bool
	note    string
	noteErr bool

	status    string
	statusErr bool
	width     int
	height    int
}

func New(ctx context.Context, backend Backend, opts Options) Model {
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = feed.DefaultThreshold
	}
	delay := opts.SearchDelay
	if delay <= 0 {
		delay = search.DefaultDelay
	}
	limit := opts.SearchLimit
	if limit <= 0 {
		limit = api.DefaultSearchLimit
	}

	sink := &batchSink{}
	b := newBoard()
	p := newPanel()

	ti := textinput.New()
	ti.Placeholder = "Search by name or username"
	ti.Prompt = "/ "
	ti.CharLimit = 64
	ti.PromptStyle = lipgloss.NewStyle().Foreground(accent)
	ti.PlaceholderStyle = dimStyle

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accent)

	return Model{
		ctx:     ctx,
		backend: backend,
		me:      opts.Me,
		keys:    defaultKeyMap(),
		pager:   feed.NewPager(backend, sink, feed.WithThreshold(threshold)),
		sink:    sink,
		board:   b,
		ctl:     interaction.NewController(backend, b),
		deb:     search.NewDebouncer(backend, p, search.WithDelay(delay), search.WithLimit(limit), search.WithContext(ctx)),
		panel:   p,
		pulse:   pulseLength,
		spinner: sp,
		input:   ti,
		lookups: make(map[string]bool),
		width:   80,
		height:  24,
	}
}

// Close drops any pending search.
func (m Model) Close() {
	m.deb.Close()
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.scroll(), m.listen(), m.spinner.Tick)
}

// Run shows the browser full screen until the user quits.
func Run(ctx context.Context, backend Backend, opts Options) error {
	m := New(ctx, backend, opts)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("browser: %w", err)
	}
	return nil
}

func likeTarget(postID string) interaction.Target {
	return interaction.Target{ID: postID, Kind: interaction.Like}
}

func followTarget(username string) interaction.Target {
	return interaction.Target{ID: username, Kind: interaction.Follow}
}

// visible is the number of posts that fit on screen.
func (m Model) visible() int {
	n := (m.height - chromeHeight) / postHeight
	if n < 1 {
		return 1
	}
	return n
}

// scroll asks the pager whether the viewport is close enough to the end
// to load more. Positions are measured in posts.
func (m Model) scroll() tea.Cmd {
	pos := feed.Position{Offset: m.top, Viewport: m.visible(), Content: len(m.posts)}
	pager, sink, ctx := m.pager, m.sink, m.ctx
	return func() tea.Msg {
		err := pager.OnScroll(ctx, pos)
		return pageMsg{posts: sink.drain(), err: err}
	}
}

func (m Model) listen() tea.Cmd {
	ch := m.panel.ch
	return func() tea.Msg { return <-ch }
}

func (m Model) loadUsers() tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		users, err := backend.GetAllUsers(ctx)
		return usersMsg{users: users, err: err}
	}
}

// start applies a toggle on screen and returns the commands that report
// its outcome and end its pulse.
func (m Model) start(t interaction.Target) tea.Cmd {
	a := m.ctl.Start(m.ctx, t)
	return tea.Batch(
		func() tea.Msg {
			<-a.Done()
			return attemptMsg{attempt: a}
		},
		tea.Tick(m.pulse, func(time.Time) tea.Msg { return pulseDoneMsg{target: t} }),
	)
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusErr = isErr
}

// follow keeps the selected post on screen.
func (m *Model) follow() {
	vis := m.visible()
	if m.selected < m.top {
		m.top = m.selected
	}
	if m.selected >= m.top+vis {
		m.top = m.selected - vis + 1
	}
	if m.top < 0 {
		m.top = 0
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(10, msg.Width-6)
		m.follow()
		return m, m.scroll()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pageMsg:
		return m.onPage(msg)

	case attemptMsg:
		m.onAttempt(msg.attempt)
		return m, nil

	case pulseDoneMsg:
		m.board.unpulse(msg.target)
		return m, nil

	case followStateMsg:
		return m.onFollowState(msg)

	case usersMsg:
		m.onUsers(msg)
		return m, nil

	case searchMsg:
		m.onSearch(msg)
		return m, m.listen()

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Force) {
			m.deb.Close()
			return m, tea.Quit
		}
		if m.mode == modeSearch {
			return m.updateSearch(msg)
		}
		return m.updateFeed(msg)
	}
	return m, nil
}

func (m Model) onPage(msg pageMsg) (tea.Model, tea.Cmd) {
	for _, p := range msg.posts {
		m.board.seed(likeTarget(p.ID), p.IsLiked)
	}
	m.posts = append(m.posts, msg.posts...)

	if msg.err != nil {
		m.setStatus("Couldn't load feed: "+msg.err.Error(), true)
		return m, nil
	}
	if len(msg.posts) == 0 {
		return m, nil
	}
	if m.statusErr {
		m.setStatus("", false)
	}
	// A short first page may not fill the screen.
	return m, m.scroll()
}

func (m *Model) onAttempt(a *interaction.Attempt) {
	if a.Status() != interaction.Reverted {
		if a.Target.Kind == interaction.Follow {
			if a.Desired {
				m.setStatus("✓ Following @"+a.Target.ID, false)
			} else {
				m.setStatus("✓ Unfollowed @"+a.Target.ID, false)
			}
		} else if m.statusErr {
			m.setStatus("", false)
		}
		return
	}

	var what string
	switch {
	case a.Target.Kind == interaction.Follow && a.Desired:
		what = "follow @" + a.Target.ID
	case a.Target.Kind == interaction.Follow:
		what = "unfollow @" + a.Target.ID
	case a.Desired:
		what = "like post"
	default:
		what = "unlike post"
	}
	m.setStatus(fmt.Sprintf("Couldn't %s: %v", what, a.Err()), true)
}

func (m Model) onFollowState(msg followStateMsg) (tea.Model, tea.Cmd) {
	delete(m.lookups, msg.username)
	if msg.err != nil {
		m.setStatus("Couldn't check follow status: "+msg.err.Error(), true)
		return m, nil
	}
	m.setStatus("", false)
	t := followTarget(msg.username)
	m.board.seed(t, msg.following)
	return m, m.start(t)
}

func (m *Model) onUsers(msg usersMsg) {
	if msg.err != nil {
		m.note = "Couldn't load users: " + msg.err.Error()
		m.noteErr = true
		return
	}
	m.all = msg.users
	if strings.TrimSpace(m.input.Value()) == "" {
		m.base, m.users = m.all, m.all
		m.note, m.noteErr = "", false
	}
}

// onSearch applies debouncer output. Anything that no longer matches the
// input is dropped.
func (m *Model) onSearch(msg searchMsg) {
	current := strings.TrimSpace(m.input.Value())
	if msg.kind == searchDefault {
		if current != "" {
			return
		}
		m.base, m.users = m.all, m.all
		m.note, m.noteErr = "", false
		m.userSel = 0
		return
	}
	if msg.query != current {
		return
	}

	switch msg.kind {
	case searchResults:
		m.base, m.users = msg.users, msg.users
		m.note, m.noteErr = "", false
	case searchEmpty:
		m.base, m.users = nil, nil
		m.note, m.noteErr = fmt.Sprintf("No users found for %q", msg.query), false
	case searchError:
		m.note, m.noteErr = "Search failed: "+msg.err.Error(), true
	}
	if m.userSel >= len(m.users) {
		m.userSel = 0
	}
}

func (m Model) updateFeed(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.deb.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Down):
		if m.selected < len(m.posts)-1 {
			m.selected++
		}
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.Top):
		m.selected = 0
	case key.Matches(msg, m.keys.Bottom):
		if len(m.posts) > 0 {
			m.selected = len(m.posts) - 1
		}
	case key.Matches(msg, m.keys.Like):
		if len(m.posts) == 0 {
			return m, nil
		}
		return m, m.start(likeTarget(m.posts[m.selected].ID))
	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		cmds := []tea.Cmd{m.input.Focus()}
		if m.all == nil {
			cmds = append(cmds, m.loadUsers())
		} else if strings.TrimSpace(m.input.Value()) == "" {
			m.base, m.users = m.all, m.all
		}
		return m, tea.Batch(cmds...)
	default:
		return m, nil
	}

	m.follow()
	return m, m.scroll()
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = modeFeed
		m.input.Blur()
		return m, nil
	case key.Matches(msg, searchUp):
		if m.userSel > 0 {
			m.userSel--
		}
		return m, nil
	case key.Matches(msg, searchDown):
		if m.userSel < len(m.users)-1 {
			m.userSel++
		}
		return m, nil
	case key.Matches(msg, m.keys.Follow):
		return m.toggleFollow()
	}

	prev := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != prev {
		m.users = narrow(m.base, v)
		m.userSel = 0
		m.note, m.noteErr = "", false
		m.deb.OnInput(v)
	}
	return m, cmd
}

func (m Model) toggleFollow() (tea.Model, tea.Cmd) {
	if len(m.users) == 0 {
		return m, nil
	}
	name := m.users[m.userSel].Username
	if name == m.me {
		m.setStatus("That's you", true)
		return m, nil
	}

	t := followTarget(name)
	if _, ok := m.board.known(t); ok {
		return m, m.start(t)
	}
	if m.lookups[name] {
		return m, nil
	}
	m.lookups[name] = true
	m.setStatus("Checking @"+name+"...", false)

	backend, ctx := m.backend, m.ctx
	return m, func() tea.Msg {
		following, err := backend.IsFollowing(ctx, name)
		return followStateMsg{username: name, following: following, err: err}
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n\n")
	if m.mode == modeSearch {
		b.WriteString(m.searchView())
	} else {
		b.WriteString(m.feedView())
	}
	b.WriteString("\n")
	b.WriteString(m.footer())
	return b.String()
}

func (m Model) header() string {
	title := headerStyle.Render("Campus Coders")
	if m.me != "" {
		title += " " + subStyle.Render("@"+m.me)
	}
	if m.mode == modeSearch {
		title += dimStyle.Render("  · search")
	}
	return title
}

func (m Model) feedView() string {
	if len(m.posts) == 0 {
		if m.pager.Cursor().Exhausted {
			return dimStyle.Render("No posts in your feed yet. Follow people to see their posts.")
		}
		return m.spinner.View() + " Loading feed..."
	}

	var b strings.Builder
	end := min(m.top+m.visible(), len(m.posts))
	for i := m.top; i < end; i++ {
		block := m.postView(m.posts[i])
		if i == m.selected {
			b.WriteString(selectedStyle.Render(block))
		} else {
			b.WriteString(itemStyle.Render(block))
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

func (m Model) postView(p api.Post) string {
	t := likeTarget(p.ID)
	liked := m.board.State(t)

	count := p.LikesCount
	if liked != p.IsLiked {
		if liked {
			count++
		} else if count > 0 {
			count--
		}
	}

	heart, style := heartOff, dimStyle
	if liked {
		heart, style = heartOn, likedStyle
	}
	if m.board.pulsing(t) {
		style = pulseStyle
	}

	author := titleStyle.Render(p.Author.DisplayName()) + " " +
		subStyle.Render("@"+p.Author.Username) +
		dimStyle.Render(" · "+formatter.TimeAgo(p.CreatedAt))

	caption := formatter.Truncate(p.Caption, max(10, m.width-8))
	if caption == "" {
		caption = dimStyle.Render("(no caption)")
	}
	if len(p.Media) > 0 {
		caption += " " + dimStyle.Render("["+formatter.Pluralize(len(p.Media), "image")+"]")
	}

	stats := style.Render(heart+" "+formatter.Count(count)) + "  " +
		dimStyle.Render("💬 "+formatter.Count(p.CommentsCount))

	return author + "\n" + caption + "\n" + stats
}

func (m Model) searchView() string {
	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if m.note != "" {
		if m.noteErr {
			b.WriteString(errorStyle.Render(m.note))
		} else {
			b.WriteString(dimStyle.Render(m.note))
		}
		b.WriteString("\n")
	}

	rows := max(1, m.height-chromeHeight-3)
	start := 0
	if m.userSel >= rows {
		start = m.userSel - rows + 1
	}
	end := min(start+rows, len(m.users))
	for i := start; i < end; i++ {
		u := m.users[i]
		line := titleStyle.Render(u.DisplayName()) + " " + subStyle.Render("@"+u.Username)
		if u.Course != "" {
			line += dimStyle.Render(" · " + u.Course)
		}
		t := followTarget(u.Username)
		if on, ok := m.board.known(t); ok && on {
			mark := okStyle
			if m.board.pulsing(t) {
				mark = pulseStyle
			}
			line += " " + mark.Render("✓ following")
		}
		if i == m.userSel {
			b.WriteString(selectedStyle.Render(line))
		} else {
			b.WriteString(itemStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) footer() string {
	var line string
	switch {
	case m.status != "" && m.statusErr:
		line = errorStyle.Render(m.status)
	case m.status != "":
		line = okStyle.Render(m.status)
	case m.mode == modeFeed && len(m.posts) > 0:
		cur := m.pager.Cursor()
		if cur.Loading {
			line = m.spinner.View() + " Loading more..."
		} else if cur.Exhausted {
			line = dimStyle.Render("You're all caught up.")
		}
	}

	help := "j/k move · l like · / search · q quit"
	if m.mode == modeSearch {
		help = "↑/↓ move · enter follow · esc back"
	}
	if line == "" {
		return dimStyle.Render(help)
	}
	return line + "\n" + dimStyle.Render(help)
}
