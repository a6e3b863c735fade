package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"droidswitch/config/models"
)

// ModelSelector handles interactive model selection
type ModelSelector struct {
	in  io.Reader
	out io.Writer
}

// NewModelSelector creates a ModelSelector reading from in and writing the
// menu to out
func NewModelSelector(in io.Reader, out io.Writer) *ModelSelector {
	return &ModelSelector{in: in, out: out}
}

// ShouldPrompt reports whether the user should be asked to pick a model:
// prompting is not disabled, there is more than one model to choose from and
// stdin is an interactive terminal.
func (ms *ModelSelector) ShouldPrompt(catalog []models.ModelInfo, noPrompt bool) bool {
	if noPrompt {
		return false
	}
	if len(catalog) <= 1 {
		return false
	}
	return isInteractiveTerminal()
}

// PromptSimple presents a numbered list of models and returns the chosen id.
// Pressing Enter keeps the current model.
func (ms *ModelSelector) PromptSimple(catalog []models.ModelInfo, current string) (string, error) {
	reader := bufio.NewReader(ms.in)

	fmt.Fprintln(ms.out, "📋 Available models:")
	for i, m := range catalog {
		selection := fmt.Sprintf("  %2d. %s %s", i+1, m.Name, dimStyle.Render("("+m.ID+")"))
		if m.ID == current {
			selection = fmt.Sprintf("  ➤ %2d. %s %s (current)", i+1, m.Name, dimStyle.Render("("+m.ID+")"))
		}
		fmt.Fprintln(ms.out, selection)
	}

	fmt.Fprintf(ms.out, "\nSelect model (1-%d) [Enter to keep '%s']: ", len(catalog), current)

	input, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read user input: %w", err)
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return current, nil
	}

	idx, err := strconv.Atoi(input)
	if err != nil {
		return "", fmt.Errorf("invalid input, please enter a number between 1 and %d", len(catalog))
	}
	if idx < 1 || idx > len(catalog) {
		return "", fmt.Errorf("invalid selection, please enter a number between 1 and %d", len(catalog))
	}

	return catalog[idx-1].ID, nil
}

// isInteractiveTerminal checks if stdin is a terminal outside of CI
func isInteractiveTerminal() bool {
	if isCIEnvironment() {
		return false
	}

	term := os.Getenv("TERM")
	if term == "" || term == "dumb" {
		return false
	}

	return isTerminal()
}

// isCIEnvironment checks if we're running in a CI/CD environment
func isCIEnvironment() bool {
	ciVars := []string{
		"CI",
		"CONTINUOUS_INTEGRATION",
		"BUILD_NUMBER",
		"RUN_ID",
		"GITHUB_ACTIONS",
		"GITLAB_CI",
		"JENKINS_HOME",
		"TRAVIS",
		"CIRCLECI",
		"TEAMCITY_VERSION",
	}

	for _, envVar := range ciVars {
		if os.Getenv(envVar) != "" {
			return true
		}
	}
	return false
}
