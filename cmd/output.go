package cmd

import (
	"fmt"
	"io"
	"strings"

	"droidswitch/config/models"
	"droidswitch/internal/balance"
	"droidswitch/internal/shell"
	"droidswitch/internal/utils"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
)

func printSuccess(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, successStyle.Render("✓ "+fmt.Sprintf(format, args...)))
}

func printWarning(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, warningStyle.Render("Warning: "+fmt.Sprintf(format, args...)))
}

// formatBalance renders a usage snapshot on one line
func formatBalance(b *models.BalanceInfo) string {
	if b == nil {
		return dimStyle.Render("balance unknown")
	}
	line := fmt.Sprintf("%s / %s used (%s), %s left",
		utils.FormatTokens(b.Used),
		utils.FormatTokens(b.Allowance),
		utils.FormatPercent(b.PercentUsed, 1),
		utils.FormatTokens(b.Remaining),
	)
	if b.Overage > 0 {
		line += fmt.Sprintf(", overage %s", utils.FormatTokens(b.Overage))
	}
	if b.ExpiryDate != "" {
		line += ", expires " + utils.FormatDate(b.ExpiryDate)
	}
	if b.Exceeded {
		return warningStyle.Render(line + " [exceeded]")
	}
	return line
}

// describeBalanceError turns a balance client error into a short message
func describeBalanceError(err error) string {
	category := balance.Categorize(err)
	if category == balance.CategoryUnknown {
		return err.Error()
	}
	return fmt.Sprintf("%s (%v)", balance.UserMessage(category), err)
}

func providerLine(p models.Provider) string {
	marker := " "
	name := p.Name
	if p.IsActive {
		marker = activeStyle.Render("*")
		name = activeStyle.Render(p.Name)
	}
	return fmt.Sprintf("%s %s  %s  %s", marker, name, dimStyle.Render(utils.MaskAPIKey(p.APIKey)), formatBalance(p.Balance))
}

// printReport prints one line per target and side effect of a patcher run
func printReport(w io.Writer, report shell.Report) {
	for _, t := range report.Targets {
		line := fmt.Sprintf("  %-9s %s", t.Action, t.Path)
		switch {
		case t.Err != nil:
			fmt.Fprintln(w, warningStyle.Render(fmt.Sprintf("%s: %v", line, t.Err)))
		case t.Action == shell.ActionSkipped || t.Action == shell.ActionUnchanged:
			fmt.Fprintln(w, dimStyle.Render(line))
		default:
			fmt.Fprintln(w, line)
		}
	}
	for _, se := range report.SideEffects {
		if se.Err != nil {
			fmt.Fprintln(w, warningStyle.Render(fmt.Sprintf("  %-9s %s: %v", shell.ActionFailed, se.Name, se.Err)))
		} else {
			fmt.Fprintf(w, "  %-9s %s\n", "done", se.Name)
		}
	}
}

func indent(text, prefix string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
