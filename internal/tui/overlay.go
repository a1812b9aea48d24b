package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// overlayRight paints stack onto base starting at row top, right aligned
// within width. Empty stack rows leave base untouched.
func overlayRight(base []string, stack []string, top, width int) []string {
	out := append([]string(nil), base...)
	for i, line := range stack {
		row := top + i
		if line == "" || row < 0 || row >= len(out) {
			continue
		}
		left := width - lipgloss.Width(line) - 1
		if left < 0 {
			left = 0
		}
		under := ansi.Truncate(out[row], left, "")
		if pad := left - ansi.StringWidth(under); pad > 0 {
			under += strings.Repeat(" ", pad)
		}
		out[row] = under + line
	}
	return out
}

// fitLines pads or trims s to exactly height lines.
func fitLines(s string, height int) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		return lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return lines
}
