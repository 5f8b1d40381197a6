package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/jwulff/finvoice/internal/conversation"
)

// Colors used throughout the TUI.
var (
	ColorRed     = lipgloss.Color("#FF5F5F")
	ColorGreen   = lipgloss.Color("#5FD75F")
	ColorYellow  = lipgloss.Color("#FFD75F")
	ColorCyan    = lipgloss.Color("#00FFFF")
	ColorBlue    = lipgloss.Color("#5FAFFF")
	ColorGray    = lipgloss.Color("#666666")
	ColorDimGray = lipgloss.Color("#444444")
	ColorWhite   = lipgloss.Color("#FFFFFF")
	ColorMagenta = lipgloss.Color("#FF00FF")
)

// Base styles reused by UI components.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorCyan)

	RecordingDotStyle = lipgloss.NewStyle().
				Foreground(ColorRed).
				Bold(true)

	IdleDotStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	TimestampStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	PanelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite)

	PanelTitleActiveStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorCyan)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	FooterKeyStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	FooterDescStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	DividerStyle = lipgloss.NewStyle().
			Foreground(ColorDimGray)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta)

	UserLabelStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Bold(true)

	AssistantLabelStyle = lipgloss.NewStyle().
				Foreground(ColorCyan).
				Bold(true)

	UserTextStyle = lipgloss.NewStyle().
			Foreground(ColorBlue)

	VoiceBadgeStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta)

	MetricStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite)

	NoticeInfoStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	NoticeErrorStyle = lipgloss.NewStyle().
				Foreground(ColorRed).
				Bold(true)
)

var insightStyles = map[conversation.Category]lipgloss.Style{
	conversation.CategoryPositive: lipgloss.NewStyle().Foreground(ColorGreen),
	conversation.CategoryWarning:  lipgloss.NewStyle().Foreground(ColorYellow),
	conversation.CategoryNeutral:  lipgloss.NewStyle().Foreground(ColorBlue),
}

// InsightStyle returns the style for an insight category. Unknown categories
// render as neutral.
func InsightStyle(c conversation.Category) lipgloss.Style {
	if s, ok := insightStyles[c]; ok {
		return s
	}
	return insightStyles[conversation.CategoryNeutral]
}

// InsightIcon returns the glyph shown before an insight title.
func InsightIcon(c conversation.Category) string {
	switch c {
	case conversation.CategoryPositive:
		return "✔"
	case conversation.CategoryWarning:
		return "▲"
	}
	return "↗"
}
