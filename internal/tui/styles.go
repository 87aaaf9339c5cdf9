package tui

import (
	"github.com/charmbracelet/lipgloss"

	"epitrello/internal/tui/theme"
)

const (
	// Layout constants. cardCellHeight is the vertical footprint of one
	// rendered card including its margin; the drop-target geometry in
	// layout.go depends on these matching the rendered output.
	columnWidth             = 36
	columnGap               = 2
	columnPaddingHorizontal = 2
	columnHeaderLines       = 3
	cardCellHeight          = 4
	cardPaddingHorizontal   = 1
)

var (
	titleStyle = theme.Title.Padding(0, 1)

	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(1, columnPaddingHorizontal).
			Width(columnWidth)

	selectedColumnStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(theme.BorderFocused).
				Padding(1, columnPaddingHorizontal).
				Width(columnWidth)

	columnTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(theme.Primary).
				Align(lipgloss.Center)

	selectedColumnTitleStyle = lipgloss.NewStyle().
					Bold(true).
					Foreground(theme.Warning).
					Background(theme.Surface).
					Underline(true).
					Align(lipgloss.Center)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), false, false, false, true).
			BorderForeground(theme.Border).
			Padding(0, cardPaddingHorizontal).
			MarginBottom(1)

	selectedCardStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder(), false, false, false, true).
				BorderForeground(theme.BorderFocused).
				Background(theme.Surface).
				Padding(0, cardPaddingHorizontal).
				MarginBottom(1).
				Bold(true)

	grabbedCardStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder(), false, false, false, true).
				BorderForeground(theme.Warning).
				Background(lipgloss.Color("54")).
				Padding(0, cardPaddingHorizontal).
				MarginBottom(1).
				Bold(true)

	cardTitleStyle = lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true)

	cardLabelStyle = lipgloss.NewStyle().
			Foreground(theme.Accent).
			Italic(true)

	cardMetaStyle = lipgloss.NewStyle().
			Foreground(theme.TextMuted)

	emptyListStyle = lipgloss.NewStyle().
			Foreground(theme.TextMuted)

	presenceStyle = lipgloss.NewStyle().
			Foreground(theme.Secondary).
			Italic(true)

	filterIndicatorStyle = lipgloss.NewStyle().
				Foreground(theme.Warning).
				Bold(true)

	helpStyle = theme.Muted.Padding(1, 2)

	errorStyle   = theme.Error
	warningStyle = theme.Warn
	successStyle = theme.Ok
)
