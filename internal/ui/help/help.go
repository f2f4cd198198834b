// Package help contains the key binding help overlay.
package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/biliterm/internal/keys"
	"github.com/zjrosen/biliterm/internal/ui/overlay"
	"github.com/zjrosen/biliterm/internal/ui/styles"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.TextPrimaryColor).
			PaddingLeft(2)

	dividerStyle = lipgloss.NewStyle().
			Foreground(styles.BorderDefaultColor)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.TextSecondaryColor).
			MarginTop(1)

	keyStyle = lipgloss.NewStyle().
			Foreground(styles.PromptColor).
			Width(12)

	descStyle = lipgloss.NewStyle().
			Foreground(styles.TextPrimaryColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.BorderFocusColor)

	contentStyle = lipgloss.NewStyle().
			Padding(0, 2)

	footerStyle = lipgloss.NewStyle().
			Foreground(styles.TextMutedColor).
			MarginTop(1)
)

// sectionTitles name the groups of keys.KeyMap.FullHelp in order.
var sectionTitles = []string{"Tabs", "Actions", "General"}

// Model holds the help overlay state.
type Model struct {
	keys   keys.KeyMap
	prompt keys.PromptKeyMap
	width  int
	height int
}

// New creates a help overlay for km.
func New(km keys.KeyMap) Model {
	return Model{keys: km, prompt: keys.DefaultPromptKeyMap()}
}

// SetSize updates dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// View renders the help box centered on an empty screen.
func (m Model) View() string {
	return m.Overlay("")
}

// Overlay renders the help box centered on background.
func (m Model) Overlay(background string) string {
	box := m.renderContent()
	if background == "" {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, box, background)
}

func (m Model) renderContent() string {
	columnStyle := lipgloss.NewStyle().MarginRight(4)

	groups := m.keys.FullHelp()
	columns := make([]string, 0, len(groups)+1)
	for i, group := range groups {
		title := "Keys"
		if i < len(sectionTitles) {
			title = sectionTitles[i]
		}
		columns = append(columns, columnStyle.Render(renderSection(title, group)))
	}
	columns = append(columns, renderSection("Prompt", m.prompt.ShortHelp()))

	body := lipgloss.JoinHorizontal(lipgloss.Top, columns...)
	boxWidth := lipgloss.Width(body) + 4

	var content strings.Builder
	content.WriteString(titleStyle.Render("Keybindings"))
	content.WriteString("\n")
	content.WriteString(dividerStyle.Render(strings.Repeat("─", boxWidth)))
	content.WriteString("\n")
	content.WriteString(contentStyle.Render(body + "\n" + footerStyle.Render("Press ? or Esc to close")))

	return boxStyle.Width(boxWidth).Render(content.String())
}

func renderSection(title string, bindings []key.Binding) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render(title))
	b.WriteString("\n")
	for _, binding := range bindings {
		if !binding.Enabled() {
			continue
		}
		h := binding.Help()
		b.WriteString(keyStyle.Render(h.Key) + descStyle.Render(h.Desc) + "\n")
	}
	return b.String()
}
