// Package formatter turns API records into the strings commands print.
package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/campuscoders/campus-cli/pkg/api"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

var (
	Bold    = color.New(color.Bold)
	Success = color.New(color.FgGreen)
	Error   = color.New(color.FgRed)
	Info    = color.New(color.FgCyan)
	Warning = color.New(color.FgYellow)
	Faint   = color.New(color.Faint)
)

// TimeAgo renders t relative to now, e.g. "3 minutes ago".
func TimeAgo(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

// Count abbreviates large counts: 999, 1.2K, 3.4M.
func Count(n int) string {
	switch {
	case n >= 1_000_000:
		return trimZero(fmt.Sprintf("%.1f", float64(n)/1_000_000)) + "M"
	case n >= 1_000:
		return trimZero(fmt.Sprintf("%.1f", float64(n)/1_000)) + "K"
	default:
		return humanize.Comma(int64(n))
	}
}

func trimZero(s string) string {
	return strings.TrimSuffix(s, ".0")
}

func Pluralize(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// Truncate cuts s to at most max runes, marking the cut with "...".
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// Heart is the like marker shown next to a post.
func Heart(liked bool) string {
	if liked {
		return Error.Sprint("♥")
	}
	return "♡"
}

// Post renders a post as a short text block.
func Post(p api.Post) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s  %s\n",
		Bold.Sprint(p.Author.DisplayName()),
		Faint.Sprint("@"+p.Author.Username),
		Faint.Sprint(TimeAgo(p.CreatedAt)))
	if p.Caption != "" {
		fmt.Fprintf(&b, "%s\n", p.Caption)
	}
	for _, m := range p.Media {
		fmt.Fprintf(&b, "  %s\n", Info.Sprint(m.URL))
	}
	fmt.Fprintf(&b, "%s %s  %s  %s\n",
		Heart(p.IsLiked), Count(p.LikesCount),
		Pluralize(p.CommentsCount, "comment"),
		Faint.Sprint("id:"+p.ID))
	return b.String()
}

func PostHeaders() []string {
	return []string{"ID", "AUTHOR", "CAPTION", "LIKES", "COMMENTS", "POSTED"}
}

func PostRow(p api.Post) []string {
	return []string{
		p.ID,
		"@" + p.Author.Username,
		Truncate(strings.ReplaceAll(p.Caption, "\n", " "), 40),
		Count(p.LikesCount),
		Count(p.CommentsCount),
		TimeAgo(p.CreatedAt),
	}
}

func UserHeaders() []string {
	return []string{"USERNAME", "NAME", "COURSE", "FOLLOWERS"}
}

func UserRow(u api.User) []string {
	course := u.Course
	if u.Year != "" {
		course = strings.TrimSpace(course + " Y" + u.Year)
	}
	return []string{"@" + u.Username, u.DisplayName(), course, Count(u.FollowersCount)}
}

func CommentHeaders() []string {
	return []string{"AUTHOR", "COMMENT", "POSTED"}
}

func CommentRow(c api.Comment) []string {
	return []string{"@" + c.Author.Username, c.Text, TimeAgo(c.CreatedAt)}
}
