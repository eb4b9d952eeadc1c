package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/provisionr/provisionr-console/internal/opstate"
)

// Teal on slate, like the provisionR web page. Adaptive so the console stays
// readable on light terminals.
var (
	teal  = lipgloss.AdaptiveColor{Light: "#0f766e", Dark: "#2dd4bf"}
	slate = lipgloss.AdaptiveColor{Light: "#475569", Dark: "#94a3b8"}
	moss  = lipgloss.AdaptiveColor{Light: "#15803d", Dark: "#86efac"}
	rust  = lipgloss.AdaptiveColor{Light: "#b91c1c", Dark: "#fca5a5"}
	amber = lipgloss.AdaptiveColor{Light: "#b45309", Dark: "#fcd34d"}
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(teal)

	endpointStyle = lipgloss.NewStyle().
			Foreground(slate).
			Italic(true)

	tabStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			Foreground(teal).
			MarginTop(1)

	idleTabStyle = lipgloss.NewStyle().
			Foreground(slate).
			MarginTop(1)

	captionStyle = lipgloss.NewStyle().
			Foreground(slate).
			Bold(true)

	fieldLabelStyle = lipgloss.NewStyle().
			Foreground(slate).
			Width(20)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(teal).
			PaddingLeft(1)

	noticeStyle = lipgloss.NewStyle().
			Foreground(amber).
			Italic(true)

	helpBarStyle = lipgloss.NewStyle().
			Foreground(slate).
			MarginTop(1)
)

// bannerStyles colours an operation line by slot status.
var bannerStyles = map[opstate.Status]lipgloss.Style{
	opstate.Loading:   lipgloss.NewStyle().Foreground(amber),
	opstate.Succeeded: lipgloss.NewStyle().Foreground(moss),
	opstate.Failed:    lipgloss.NewStyle().Foreground(rust).Bold(true),
}

var bannerPrefix = map[opstate.Status]string{
	opstate.Loading:   "working:",
	opstate.Succeeded: "done:",
	opstate.Failed:    "error:",
}
