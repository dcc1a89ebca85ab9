package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // nodes, numbers
	colorGreen  = lipgloss.Color("35")  // success, cache hits
	colorYellow = lipgloss.Color("220") // warnings
	colorRed    = lipgloss.Color("167") // errors
	colorBlue   = lipgloss.Color("75")  // links, commands
	colorWhite  = lipgloss.Color("255") // values
	colorGray   = lipgloss.Color("245") // labels, borders
	colorDim    = lipgloss.Color("240") // muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleLink for URLs and node links.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status lines
// =============================================================================

func printStatus(icon string, style lipgloss.Style, msg string) {
	fmt.Println(style.Render(icon) + " " + msg)
}

func printSuccess(format string, args ...any) {
	printStatus(iconSuccess, styleIconSuccess, fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	printStatus(iconError, styleIconError, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	printStatus(iconWarning, styleIconWarning, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	printStatus(iconInfo, styleIconInfo, fmt.Sprintf(format, args...))
}

// printDetail prints an indented, muted line under a status line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile lists a written artifact.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// printStats summarises a drawn mind map: topic count, depth and whether the
// layout and artifacts came from the cache.
func printStats(topics, generations int, cached bool) {
	parts := []string{fmt.Sprintf("%d topics", topics)}
	if generations > 0 {
		parts = append(parts, fmt.Sprintf("%d levels", generations+1))
	}
	if cached {
		parts = append(parts, StyleSuccess.Render("cached"))
	} else {
		parts = append(parts, "fresh")
	}
	for i, p := range parts {
		parts[i] = StyleDim.Render(p)
	}
	fmt.Println("  " + strings.Join(parts, StyleDim.Render(" · ")))
}

// printHint suggests the command to run next, after a blank line.
func printHint(description, cmd string) {
	fmt.Println()
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}
