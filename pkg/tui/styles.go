package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#7C3AED")
	dim    = lipgloss.Color("#6B7280")
	light  = lipgloss.Color("#9CA3AF")
	white  = lipgloss.Color("#F9FAFB")
	red    = lipgloss.Color("#EF4444")
	green  = lipgloss.Color("#10B981")
	pink   = lipgloss.Color("#EC4899")
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(white).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(dim)
	subStyle   = lipgloss.NewStyle().Foreground(light)
	errorStyle = lipgloss.NewStyle().Foreground(red)
	okStyle    = lipgloss.NewStyle().Foreground(green)

	headerStyle = lipgloss.NewStyle().
			Foreground(white).
			Background(accent).
			Bold(true).
			Padding(0, 1)

	likedStyle = lipgloss.NewStyle().Foreground(pink)
	pulseStyle = lipgloss.NewStyle().Foreground(pink).Bold(true).Underline(true)

	selectedStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(accent).
			PaddingLeft(1)

	itemStyle = lipgloss.NewStyle().PaddingLeft(2)
)

const (
	heartOn  = "♥"
	heartOff = "♡"
)
