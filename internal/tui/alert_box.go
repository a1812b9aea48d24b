package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
)

const closeLabel = "Close"

// fade blends c toward the background by (1 - opacity).
func fade(c lipgloss.Color, opacity float64) lipgloss.Color {
	fg, err := colorful.Hex(string(c))
	if err != nil {
		return c
	}
	bg, err := colorful.Hex(string(ColorBackground))
	if err != nil {
		return c
	}
	opacity = min(max(opacity, 0), 1)
	return lipgloss.Color(fg.BlendRgb(bg, 1-opacity).Clamped().Hex())
}

// closeControl renders the countdown and close hint, e.g. "[ 4 Close ]".
func (b *alertBox) closeControl() string {
	return fmt.Sprintf("[ %d %s ]", b.remaining, closeLabel)
}

// renderFull draws the whole box at the given opacity, ignoring its offset.
func (b *alertBox) renderFull(width int, opacity float64) string {
	accent := fade(categoryColor(b.category.String()), opacity)
	text := fade(ColorWhite, opacity)

	inner := max(width-4, 8)
	msgStyle := lipgloss.NewStyle().Foreground(text).Width(inner)

	lines := make([]string, 0, len(b.messages)+1)
	for _, msg := range b.messages {
		lines = append(lines, msgStyle.Render("• "+msg))
	}
	lines = append(lines, lipgloss.NewStyle().
		Foreground(accent).
		Bold(true).
		Width(inner).
		Align(lipgloss.Right).
		Render(b.closeControl()))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// height is the rendered height of the box, independent of animation state.
func (b *alertBox) height(width int) int {
	return lipgloss.Height(b.renderFull(width, 1))
}

// slot renders the box into its full-height slot. Rows hidden by the vertical
// offset come back as "" so the caller can leave the page underneath visible.
func (b *alertBox) slot(width int) []string {
	lines := strings.Split(b.renderFull(width, b.opacity), "\n")
	hidden := int(math.Round(float64(len(lines)) * min(max(b.offset, 0), 100) / 100))

	out := make([]string, len(lines))
	for i := hidden; i < len(lines); i++ {
		out[i] = lines[i-hidden]
	}
	return out
}

// StackLines renders the container top to bottom, one entry per terminal row.
// Empty entries are transparent.
func (m *AlertManager) StackLines() []string {
	var out []string
	for _, b := range m.boxes {
		out = append(out, b.slot(m.cfg.BoxWidth)...)
	}
	return out
}

// StackWidth is the rendered width of one box.
func (m *AlertManager) StackWidth() int {
	if len(m.boxes) == 0 {
		return 0
	}
	return lipgloss.Width(m.boxes[0].renderFull(m.cfg.BoxWidth, 1))
}

// CloseHit resolves a click at (row, col), relative to the top-left of the
// stack, to the category whose close control sits there.
func (m *AlertManager) CloseHit(row, col int) (AlertBox, bool) {
	top := 0
	for _, b := range m.boxes {
		h := b.height(m.cfg.BoxWidth)
		if row >= top && row < top+h {
			// The close control is on the last content row, right aligned.
			closeRow := top + h - 2
			w := m.StackWidth()
			closeStart := w - 2 - lipgloss.Width(b.closeControl())
			if row == closeRow && col >= closeStart && col < w-1 && b.phase != phaseExiting {
				return b.snapshot(), true
			}
			return AlertBox{}, false
		}
		top += h
	}
	return AlertBox{}, false
}
