package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success, healthy
	colorYellow = lipgloss.Color("220") // Amber - warnings, busy
	colorRed    = lipgloss.Color("167") // Soft red - errors, down
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	// StyleError for failures.
	StyleError = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleCell    = lipgloss.NewStyle().Padding(0, 1)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

const (
	iconArrow = "→"
	iconDot   = "●"
)

// =============================================================================
// Status Output
// =============================================================================

// notice is a one-line message led by a colored icon. Tinted notices color
// the message too.
type notice struct {
	icon  string
	color lipgloss.Color
	tint  bool
}

var (
	noticeSuccess = notice{icon: "✓", color: colorGreen}
	noticeError   = notice{icon: "✗", color: colorRed}
	noticeWarning = notice{icon: "!", color: colorYellow, tint: true}
	noticeInfo    = notice{icon: "›", color: colorGray}
)

func (n notice) print(format string, args ...any) {
	style := lipgloss.NewStyle().Foreground(n.color)
	msg := fmt.Sprintf(format, args...)
	if n.tint {
		msg = style.Render(msg)
	}
	fmt.Println(style.Render(n.icon) + " " + msg)
}

func printSuccess(format string, args ...any) { noticeSuccess.print(format, args...) }
func printError(format string, args ...any)   { noticeError.print(format, args...) }
func printWarning(format string, args ...any) { noticeWarning.print(format, args...) }
func printInfo(format string, args ...any)    { noticeInfo.print(format, args...) }

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printFile points at a written file.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a value under a fixed-width label.
func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Status Colors
// =============================================================================

// statusStyle colors a traffic-light status word.
func statusStyle(status string) lipgloss.Style {
	switch status {
	case "red", "failed", "disconnected":
		return StyleError
	case "yellow", "connecting":
		return StyleWarning
	case "green", "connected":
		return StyleSuccess
	}
	return StyleDim
}

// renderStatus prints a colored dot and the status word.
func renderStatus(status string) string {
	if status == "" {
		return StyleDim.Render("—")
	}
	return statusStyle(status).Render(iconDot + " " + status)
}

// =============================================================================
// Tables
// =============================================================================

// renderTable draws rows in the rounded, dim-bordered style used across
// the CLI.
func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader.Padding(0, 1)
			}
			return styleCell
		}).
		Render()
}
