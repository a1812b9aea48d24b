package tui

import tea "github.com/charmbracelet/bubbletea"

// Page is a top-level screen of the client.
type Page interface {
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View(width, height int) string
}
