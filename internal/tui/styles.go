package tui

import (
	"fmt"
	"strings"

	"upick/internal/view"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	focusedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	cardStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
	nameStyle = lipgloss.NewStyle().Bold(true)
)

// RenderCard draws a business card for the terminal.
func RenderCard(c view.Card) string {
	var b strings.Builder
	b.WriteString(nameStyle.Render(c.Name))
	if c.Price != "" {
		b.WriteString("  " + c.Price)
	}
	b.WriteString("\n")
	if c.Rating > 0 {
		fmt.Fprintf(&b, "%s %.1f (%d reviews)\n", labelStyle.Render("Rating"), c.Rating, c.Reviews)
	}
	fmt.Fprintf(&b, "%s %s mi\n", labelStyle.Render("Distance"), c.Distance)
	if c.Address != "" {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Address"), c.Address)
	}
	if c.Phone != "" {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Phone"), c.Phone)
	}
	if c.Actions.Provider != "" {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("More"), c.Actions.Provider)
	}
	fmt.Fprintf(&b, "%s %s", labelStyle.Render("Directions"), c.Actions.Directions)
	return cardStyle.Render(b.String())
}
