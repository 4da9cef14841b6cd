package tui

import "github.com/charmbracelet/lipgloss"

const (
	ProgressWidth   = 40
	DefaultPaddingX = 2
	DefaultPaddingY = 1
)

var (
	appStyle = lipgloss.NewStyle().Padding(DefaultPaddingY, DefaultPaddingX)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("136")).
			Padding(0, 1)

	readoutStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("222")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("136")).
			Padding(0, 3)

	doneStyle = readoutStyle.Foreground(lipgloss.Color("42"))

	eggStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229"))

	stateStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)
