package tui

import "github.com/charmbracelet/lipgloss"

// Styles
var (
	baseFg    = lipgloss.Color("#E6E6E6")
	baseDimFg = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	accentFg  = lipgloss.Color("#7C3AED")
	warnFg    = lipgloss.Color("#F59E0B")
	errFg     = lipgloss.Color("#EF4444")
	panelBg   = lipgloss.Color("#0F141A")
	borderCol = lipgloss.Color("#243141")
	focusCol  = lipgloss.Color("#7C3AED")

	appStyle    = lipgloss.NewStyle().Foreground(baseFg)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderCol).Padding(0, 1)
	focusStyle  = boxStyle.BorderForeground(focusCol)
	modalStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accentFg).Background(panelBg).Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(baseDimFg)
	warnStyle   = lipgloss.NewStyle().Foreground(warnFg)
	errStyle    = lipgloss.NewStyle().Foreground(errFg)
	cursorStyle = lipgloss.NewStyle().Foreground(accentFg).Bold(true)

	controlStyle = lipgloss.NewStyle().Foreground(baseFg).Background(borderCol).Padding(0, 1)
	badgeStyle   = lipgloss.NewStyle().Foreground(panelBg).Background(warnFg).Bold(true)
)
