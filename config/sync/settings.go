package sync

import (
	"errors"
	"fmt"
	"os"

	"droidswitch/config/models"
	"droidswitch/config/storage"

	"github.com/tidwall/jsonc"
)

// SettingsWriter updates the model and reasoning effort in the CLI's
// settings.json. The file may contain comments and trailing commas; they
// are not preserved.
type SettingsWriter struct {
	path string
}

// NewSettingsWriter creates a SettingsWriter for path
func NewSettingsWriter(path string) *SettingsWriter {
	return &SettingsWriter{path: path}
}

// Path returns the settings file location
func (w *SettingsWriter) Path() string {
	return w.path
}

// Apply writes model and reasoningEffort, creating the file if needed
func (w *SettingsWriter) Apply(modelID string, level models.ReasoningLevel) error {
	content := "{}"
	data, err := os.ReadFile(w.path)
	switch {
	case err == nil:
		content = string(jsonc.ToJSON(data))
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("failed to read settings: %w", err)
	}

	updated, err := UpdateFields(content, map[string]interface{}{
		"model":           modelID,
		"reasoningEffort": string(level),
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to parse settings %s: %w", w.path, err)
	}

	return storage.AtomicWrite(w.path, []byte(updated), 0644)
}
