package tui

import (
	"fmt"
	"strings"

	"droidswitch/config/models"
	"droidswitch/internal/utils"

	"github.com/charmbracelet/lipgloss"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(true)

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	activeSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("42")).
				Background(lipgloss.Color("57")).
				Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	exceededStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))
)

// RenderMainView renders the provider list
func (m Model) RenderMainView() string {
	var b strings.Builder
	width := m.getEffectiveWidth(40)

	b.WriteString(titleStyle.Render("Droid providers"))
	b.WriteString("\n")
	b.WriteString(separatorStyle.Render(strings.Repeat("─", width)))
	b.WriteString("\n\n")

	if len(m.providers) == 0 {
		b.WriteString(dimStyle.Render("No providers yet, press 'a' to add one"))
		b.WriteString("\n")
	} else {
		visible := m.getVisibleListHeight()
		startIdx := m.scrollOffset
		endIdx := startIdx + visible
		if endIdx > len(m.providers) {
			endIdx = len(m.providers)
		}

		if startIdx > 0 {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  ↑ %d more...", startIdx)))
			b.WriteString("\n")
		}

		for i := startIdx; i < endIdx; i++ {
			b.WriteString(m.renderProviderLine(i, m.providers[i]))
			b.WriteString("\n")
		}

		if endIdx < len(m.providers) {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  ↓ %d more...", len(m.providers)-endIdx)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(separatorStyle.Render(strings.Repeat("─", width)))
	b.WriteString("\n")
	b.WriteString(m.RenderStatusBar())

	return b.String()
}

// getEffectiveWidth returns the effective width for rendering, with a minimum and maximum
func (m Model) getEffectiveWidth(defaultWidth int) int {
	if m.width <= 0 {
		return defaultWidth
	}
	maxWidth := 80
	if m.width < maxWidth {
		return m.width - 2
	}
	return maxWidth
}

// renderProviderLine renders a provider and its balance on two lines
func (m Model) renderProviderLine(index int, p models.Provider) string {
	isSelected := index == m.cursor
	isActive := p.ID == m.activeID

	cursor := "  "
	if isSelected {
		cursor = "> "
	}
	marker := "  "
	if isActive {
		marker = "✓ "
	}

	content := fmt.Sprintf("%s%s%s %s", cursor, marker, p.Name, utils.MaskAPIKey(p.APIKey))

	var line string
	switch {
	case isSelected && isActive:
		line = activeSelectedStyle.Render(content)
	case isSelected:
		line = selectedStyle.Render(content)
	case isActive:
		line = activeStyle.Render(content)
	default:
		line = normalStyle.Render(content)
	}

	return line + "\n" + renderBalance(p.Balance)
}

// renderBalance renders the cached usage snapshot of a provider
func renderBalance(bal *models.BalanceInfo) string {
	if bal == nil {
		return dimStyle.Render("      balance unknown")
	}
	text := fmt.Sprintf("      %s / %s used (%s), %s left",
		utils.FormatTokens(bal.Used),
		utils.FormatTokens(bal.Allowance),
		utils.FormatPercent(bal.PercentUsed, 1),
		utils.FormatTokens(bal.Remaining))
	if bal.ExpiryDate != "" {
		text += ", expires " + utils.FormatDate(bal.ExpiryDate)
	}
	if bal.Exceeded {
		return exceededStyle.Render(text + " [exceeded]")
	}
	return dimStyle.Render(text)
}

// RenderRemoveConfirm renders the remove confirmation dialog
func (m Model) RenderRemoveConfirm() string {
	var b strings.Builder
	width := m.getEffectiveWidth(40)

	b.WriteString(titleStyle.Render("Remove provider"))
	b.WriteString("\n")
	b.WriteString(separatorStyle.Render(strings.Repeat("─", width)))
	b.WriteString("\n\n")

	if p, ok := m.current(); ok {
		b.WriteString(normalStyle.Render("Remove "))
		b.WriteString(selectedStyle.Render(p.Name))
		b.WriteString(normalStyle.Render("?"))
		b.WriteString("\n\n")
		if p.ID == m.activeID {
			b.WriteString(errorStyle.Render("This is the active provider, droid will have no key afterwards."))
			b.WriteString("\n\n")
		}
	} else {
		b.WriteString(errorStyle.Render("No provider selected"))
		b.WriteString("\n")
	}

	b.WriteString(separatorStyle.Render(strings.Repeat("─", width)))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("y: remove │ n/Esc: cancel"))

	return b.String()
}

// RenderHelpView renders the help panel
func (m Model) RenderHelpView() string {
	var b strings.Builder
	width := m.getEffectiveWidth(50)

	b.WriteString(titleStyle.Render("Keyboard shortcuts"))
	b.WriteString("\n")
	b.WriteString(separatorStyle.Render(strings.Repeat("─", width)))
	b.WriteString("\n\n")

	sections := []string{"Navigation", "Providers", "Balance", "General"}
	for i, group := range DefaultKeyMap().FullHelp() {
		b.WriteString(sectionStyle.Render(sections[i]))
		b.WriteString("\n")
		for _, k := range group {
			b.WriteString(renderHelpLine(k.Help().Key, k.Help().Desc))
		}
		b.WriteString("\n")
	}

	b.WriteString(separatorStyle.Render(strings.Repeat("─", width)))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("q/Esc: back"))

	return b.String()
}

// renderHelpLine renders a single help line with key and description
func renderHelpLine(key, desc string) string {
	keyStyled := helpKeyStyle.Render(fmt.Sprintf("  %-10s", key))
	descStyled := normalStyle.Render(desc)
	return fmt.Sprintf("%s %s\n", keyStyled, descStyled)
}

// RenderStatusBar renders the bottom status bar
func (m Model) RenderStatusBar() string {
	var b strings.Builder

	if m.errorMsg != "" {
		b.WriteString(errorStyle.Render("✗ " + m.errorMsg))
		b.WriteString("\n")
	} else if m.refreshing {
		b.WriteString(dimStyle.Render("Querying balance..."))
		b.WriteString("\n")
	} else if m.message != "" {
		b.WriteString(messageStyle.Render("✓ " + m.message))
		b.WriteString("\n")
	}

	keys := DefaultKeyMap()
	shortHelp := keys.ShortHelp()
	hints := make([]string, 0, len(shortHelp))
	for _, k := range shortHelp {
		hints = append(hints, fmt.Sprintf("%s %s", helpKeyStyle.Render(k.Help().Key), helpStyle.Render(k.Help().Desc)))
	}
	b.WriteString(strings.Join(hints, helpStyle.Render(" │ ")))

	return b.String()
}
