package ui

import "github.com/charmbracelet/lipgloss"

// Styles defines all lipgloss styles used in the CLI
var Styles = struct {
	Bold     lipgloss.Style
	Title    lipgloss.Style
	Muted    lipgloss.Style
	Header   lipgloss.Style
	Cell     lipgloss.Style
	Border   lipgloss.Style
	High     lipgloss.Style
	Mid      lipgloss.Style
	Low      lipgloss.Style
	Imputed  lipgloss.Style
	EmptyBox lipgloss.Style
}{
	Bold: lipgloss.NewStyle().Bold(true),

	Title: lipgloss.NewStyle().
		Foreground(lipgloss.Color("86")).
		Bold(true).
		MarginBottom(1),

	Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	Header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).Padding(0, 1),
	Cell:   lipgloss.NewStyle().Padding(0, 1),
	Border: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),

	High:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true).Padding(0, 1),
	Mid:     lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Padding(0, 1),
	Low:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Padding(0, 1),
	Imputed: lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Padding(0, 1),

	EmptyBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("229")).
		Padding(0, 1),
}
