package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"droidswitch/config/models"
	"droidswitch/config/storage"

	"github.com/tidwall/gjson"
)

// Store reads and writes the config document at one path
type Store struct {
	path string
}

// NewStore creates a Store for path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the path to the config file
func (s *Store) Path() string {
	return s.path
}

// Load reads the document. A missing or empty file yields the default
// document; a file that cannot be decoded is a *ParseError.
func (s *Store) Load() (*models.ConfigDocument, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.DefaultDocument(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if len(data) == 0 {
		return models.DefaultDocument(), nil
	}

	var doc models.ConfigDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Path: s.path, Err: err}
	}

	if doc.Providers == nil {
		doc.Providers = []models.Provider{}
	}
	if !gjson.GetBytes(data, "modelConfig").Exists() {
		doc.ModelConfig = models.DefaultModelConfig()
	} else if len(doc.ModelConfig.AvailableModels) == 0 {
		doc.ModelConfig.AvailableModels = models.BuiltinModels()
	}

	return &doc, nil
}

// Save writes the document atomically as indented JSON
func (s *Store) Save(doc *models.ConfigDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	data = append(data, '\n')
	return storage.AtomicWrite(s.path, data, 0600)
}
