package tui

import (
	"github.com/campuscoders/campus-cli/pkg/api"
	"github.com/campuscoders/campus-cli/pkg/interaction"
)

// pageMsg carries whatever a scroll check appended to the feed.
type pageMsg struct {
	posts []api.Post
	err   error
}

// attemptMsg is sent once a toggle is confirmed or reverted.
type attemptMsg struct {
	attempt *interaction.Attempt
}

type pulseDoneMsg struct {
	target interaction.Target
}

// followStateMsg answers a follow lookup made before the first toggle on
// a user.
type followStateMsg struct {
	username  string
	following bool
	err       error
}

type usersMsg struct {
	users []api.User
	err   error
}

type searchKind int

const (
	searchDefault searchKind = iota
	searchResults
	searchEmpty
	searchError
)

type searchMsg struct {
	kind  searchKind
	query string
	users []api.User
	err   error
}
