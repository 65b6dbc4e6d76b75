package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var namesinkASCII = strings.Join([]string{
	" _ __   __ _ _ __ ___   ___  ___(_)_ __ | | __",
	"| '_ \\ / _` | '_ ` _ \\ / _ \\/ __| | '_ \\| |/ /",
	"| | | | (_| | | | | | |  __/\\__ \\ | | | |   < ",
	"|_| |_|\\__,_|_| |_| |_|\\___||___/_|_| |_|_|\\_\\",
}, "\n")

// FormatASCIIHeader renders the namesink banner with the RAMA theme
func FormatASCIIHeader() string {
	return lipgloss.NewStyle().
		Foreground(RAMARed).
		Bold(true).
		Render(namesinkASCII)
}
