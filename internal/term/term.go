// Package term provides terminal output styling for the banter CLI.
package term

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme for terminal output.
type Theme struct {
	Primary   lipgloss.Color // Main accent color
	Dim       lipgloss.Color // Dimmed/help text color
	Error     lipgloss.Color // Failure color
	User      lipgloss.Color // User transcript lines
	Assistant lipgloss.Color // Assistant transcript lines
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary:   lipgloss.Color("#00ff9f"),
	Dim:       lipgloss.Color("#6e7681"),
	Error:     lipgloss.Color("#ff5f5f"),
	User:      lipgloss.Color("#7aa2f7"),
	Assistant: lipgloss.Color("#00ff9f"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title     lipgloss.Style
	Label     lipgloss.Style
	Border    lipgloss.Style
	Help      lipgloss.Style
	OK        lipgloss.Style
	Fail      lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Padding(0, 1),
		Label:     lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Border:    lipgloss.NewStyle().Foreground(t.Primary),
		Help:      lipgloss.NewStyle().Foreground(t.Dim),
		OK:        lipgloss.NewStyle().Foreground(t.Primary),
		Fail:      lipgloss.NewStyle().Foreground(t.Error),
		User:      lipgloss.NewStyle().Bold(true).Foreground(t.User),
		Assistant: lipgloss.NewStyle().Bold(true).Foreground(t.Assistant),
	}
}

var styles = NewStyles(DefaultTheme)

// Banner renders the boxed startup banner.
func Banner(title, subtitle string) string {
	width := lipgloss.Width(title)
	if w := lipgloss.Width(subtitle); w > width {
		width = w
	}
	width += 4

	bc := styles.Border
	var b strings.Builder
	b.WriteString(bc.Render("╭"+strings.Repeat("─", width)+"╮") + "\n")
	b.WriteString(bc.Render("│") + styles.Title.Render(title) +
		strings.Repeat(" ", width-lipgloss.Width(title)-2) + bc.Render("│") + "\n")
	b.WriteString(bc.Render("│") + " " + styles.Help.Render(subtitle) +
		strings.Repeat(" ", width-lipgloss.Width(subtitle)-1) + bc.Render("│") + "\n")
	b.WriteString(bc.Render("╰" + strings.Repeat("─", width) + "╯"))
	return b.String()
}

// UserLine renders a transcript line spoken by the user.
func UserLine(text string) string {
	return styles.User.Render("you ▸") + " " + text
}

// AssistantLine renders a transcript line spoken by the assistant.
func AssistantLine(text string) string {
	return styles.Assistant.Render("banter ▸") + " " + text
}

// NoticeLine renders a dimmed status line.
func NoticeLine(text string) string {
	return styles.Help.Render("· " + text)
}

// CheckLine renders a health check result.
func CheckLine(ok bool, name, detail string) string {
	mark := styles.OK.Render("✓")
	if !ok {
		mark = styles.Fail.Render("✗")
	}
	line := mark + " " + styles.Label.Render(name)
	if detail != "" {
		line += " " + styles.Help.Render(detail)
	}
	return line
}

// PrintSuccess prints a success message with checkmark.
func PrintSuccess(format string, args ...any) {
	fmt.Printf("%s %s\n", styles.OK.Render("✓"), fmt.Sprintf(format, args...))
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", styles.Fail.Render("✗"), fmt.Sprintf(format, args...))
}

// PrintInfo prints an informational message.
func PrintInfo(format string, args ...any) {
	fmt.Printf("%s\n", fmt.Sprintf(format, args...))
}
