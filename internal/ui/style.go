// Package ui provides shared terminal styling for the bridge CLI.
package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette (256-color).
var (
	ClrBrand  = lipgloss.Color("114") // green
	ClrMuted  = lipgloss.Color("245") // gray
	ClrSubtle = lipgloss.Color("242") // darker gray
	ClrRed    = lipgloss.Color("203") // red/error
	ClrCyan   = lipgloss.Color("81")  // cyan for previews
	ClrYellow = lipgloss.Color("220") // yellow for questions
)

// Reusable styles.
var (
	Bold    = lipgloss.NewStyle().Bold(true)
	Brand   = lipgloss.NewStyle().Foreground(ClrBrand).Bold(true)
	Muted   = lipgloss.NewStyle().Foreground(ClrMuted)
	Subtle  = lipgloss.NewStyle().Foreground(ClrSubtle)
	Red     = lipgloss.NewStyle().Foreground(ClrRed)
	Cyan    = lipgloss.NewStyle().Foreground(ClrCyan)
	Yellow  = lipgloss.NewStyle().Foreground(ClrYellow)
)

// Prompt renders the REPL prompt with color.
func Prompt(mode string) string {
	return Brand.Render(mode+">") + " "
}

// Error formats an error message.
func Error(msg string) string {
	return Red.Render("error: " + msg)
}

// Errorf formats an error with printf-style formatting.
func Errorf(format string, a ...any) string {
	return Error(fmt.Sprintf(format, a...))
}

// Question formats a clarification question.
func Question(text string) string {
	return Yellow.Render(text)
}

// Preview formats a plan preview block.
func Preview(text string) string {
	return Cyan.Render(text)
}

// Dim renders dimmed/muted text.
func Dim(text string) string {
	return Subtle.Render(text)
}

// Enabled reports whether color output is enabled.
func Enabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return strings.ToLower(strings.TrimSpace(os.Getenv("TERM"))) != "dumb"
}
