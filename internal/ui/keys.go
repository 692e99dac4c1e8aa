package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}

func helpText() string {
	return "space pause  r reverse  +/- speed  s save image  q quit"
}

// indentBlock prefixes every line of a multi-line block with two spaces.
func indentBlock(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}
