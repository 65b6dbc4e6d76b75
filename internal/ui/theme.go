package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RAMA theme colors (from sysc family)
var (
	RAMARed        = lipgloss.Color("#ef233c") // Pantone red
	RAMABackground = lipgloss.Color("#2b2d42") // Space cadet
	RAMAForeground = lipgloss.Color("#edf2f4") // Anti-flash white
	RAMAMuted      = lipgloss.Color("#8d99ae") // Cool gray

	ColorSuccess = lipgloss.Color("#2ecc71")
	ColorWarning = lipgloss.Color("#f39c12")
	ColorError   = RAMARed
	ColorInfo    = lipgloss.Color("#3498db")
)

// Styles for TUI components
var (
	BorderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(RAMARed).
			Padding(1, 2)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(RAMAForeground).
			Background(RAMARed).
			Padding(0, 1).
			Width(80)

	FooterStyle = lipgloss.NewStyle().
			Foreground(RAMAMuted).
			Background(RAMABackground).
			Padding(0, 1).
			Width(80)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(RAMARed).
			MarginTop(1).
			MarginBottom(1)

	ContentStyle = lipgloss.NewStyle().
			Foreground(RAMAForeground)

	MutedStyle = lipgloss.NewStyle().
			Foreground(RAMAMuted)

	// Selected row
	HighlightStyle = lipgloss.NewStyle().
			Foreground(RAMABackground).
			Background(RAMARed).
			Bold(true)

	// Modified candidate names
	ModifiedStyle = lipgloss.NewStyle().
			Foreground(ColorInfo).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	StatStyle = lipgloss.NewStyle().
			Foreground(RAMARed).
			Bold(true)
)

// FormatKeybinding formats a keybinding for display in footer
func FormatKeybinding(key, description string) string {
	keyStyle := lipgloss.NewStyle().
		Foreground(RAMARed).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(RAMAMuted)

	return keyStyle.Render(key) + " " + descStyle.Render(description)
}

// FormatHeader formats a header at the given width
func FormatHeader(title string, width int) string {
	if width <= 0 {
		width = 80
	}
	return HeaderStyle.Width(width).Render(title)
}

// FormatFooter formats footer with keybindings
func FormatFooter(width int, keybindings ...string) string {
	if width <= 0 {
		width = 80
	}
	return FooterStyle.Width(width).Render(strings.Join(keybindings, "  "))
}

// Status markers (moonbit-inspired)
var (
	okMarker   = lipgloss.NewStyle().Foreground(ColorSuccess).SetString("[OK]")
	infoMarker = lipgloss.NewStyle().Foreground(ColorInfo).SetString("[INFO]")
	warnMarker = lipgloss.NewStyle().Foreground(ColorWarning).SetString("[WARN]")
	failMarker = lipgloss.NewStyle().Foreground(ColorError).SetString("[FAIL]")
)

func FormatStatusOK(message string) string {
	return okMarker.String() + " " + message
}

func FormatStatusInfo(message string) string {
	return infoMarker.String() + " " + message
}

func FormatStatusWarn(message string) string {
	return warnMarker.String() + " " + message
}

func FormatStatusFail(message string) string {
	return failMarker.String() + " " + message
}
