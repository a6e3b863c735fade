package sync

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"droidswitch/config/storage"
	"droidswitch/internal/shell"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const apiKeyField = "api_key"

// EnvWriter mirrors the active key into the CLI's own config.json, where
// the installed wrapper reads it on every invocation.
type EnvWriter struct {
	path    string
	patcher *shell.Patcher
	log     logrus.FieldLogger
}

// NewEnvWriter creates an EnvWriter for path. patcher may be nil, in which
// case no wrapper is installed and no platform hook runs.
func NewEnvWriter(path string, patcher *shell.Patcher, log logrus.FieldLogger) *EnvWriter {
	return &EnvWriter{path: path, patcher: patcher, log: log}
}

// Path returns the env-config location
func (w *EnvWriter) Path() string {
	return w.path
}

// SetAPIKey stores key in the api_key field, keeping every other field,
// then persists it for the platform and installs the wrapper. Failures of
// those last two steps are logged, not returned.
func (w *EnvWriter) SetAPIKey(key string) error {
	content, _, err := w.readObject()
	if err != nil {
		return err
	}

	updated, err := UpdateFields(content, map[string]interface{}{apiKeyField: key}, nil)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", w.path, err)
	}
	if err := storage.AtomicWrite(w.path, []byte(updated), 0600); err != nil {
		return err
	}
	w.log.WithField("path", w.path).Info("updated api_key")

	if w.patcher == nil {
		return nil
	}
	if err := w.patcher.Integration().PersistKey(key); err != nil {
		w.log.WithError(err).Warn("failed to persist FACTORY_API_KEY")
	}
	w.logReport(w.patcher.Install())
	return nil
}

// ClearAPIKey removes the api_key field. A missing file is not an error. Like
// SetAPIKey it then clears the platform key and installs the wrapper, logging
// failures of those steps.
func (w *EnvWriter) ClearAPIKey() error {
	content, exists, err := w.readObject()
	if err != nil {
		return err
	}

	if exists {
		updated, err := UpdateFields(content, nil, []string{apiKeyField})
		if err != nil {
			return fmt.Errorf("failed to update %s: %w", w.path, err)
		}
		if err := storage.AtomicWrite(w.path, []byte(updated), 0600); err != nil {
			return err
		}
		w.log.WithField("path", w.path).Info("cleared api_key")
	}

	if w.patcher != nil {
		if err := w.patcher.Integration().PersistKey(""); err != nil {
			w.log.WithError(err).Warn("failed to clear FACTORY_API_KEY")
		}
		w.logReport(w.patcher.Install())
	}
	return nil
}

// APIKey returns the mirrored key, or "" if none is set
func (w *EnvWriter) APIKey() (string, error) {
	content, _, err := w.readObject()
	if err != nil {
		return "", err
	}
	return gjson.Get(content, apiKeyField).String(), nil
}

// readObject returns the file content, or "{}" when the file is missing or
// does not hold a JSON object.
func (w *EnvWriter) readObject() (string, bool, error) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "{}", false, nil
		}
		return "", false, fmt.Errorf("failed to read %s: %w", w.path, err)
	}

	content := string(data)
	if strings.TrimSpace(content) == "" {
		return "{}", true, nil
	}
	if !gjson.Valid(content) || !gjson.Parse(content).IsObject() {
		w.log.WithField("path", w.path).Warn("env config is not a JSON object, starting over")
		return "{}", true, nil
	}
	return content, true, nil
}

func (w *EnvWriter) logReport(report shell.Report) {
	for _, r := range report.Targets {
		entry := w.log.WithFields(logrus.Fields{"path": r.Path, "action": r.Action})
		if r.Err != nil {
			entry.WithError(r.Err).Warn("failed to install wrapper")
			continue
		}
		entry.Debug("wrapper target processed")
	}
	for _, e := range report.SideEffects {
		if e.Err != nil {
			w.log.WithError(e.Err).Warnf("%s failed", e.Name)
		}
	}
}
