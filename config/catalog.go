package config

import (
	"fmt"
	"strings"

	"droidswitch/config/models"

	"github.com/samber/lo"
)

func modelIndex(doc *models.ConfigDocument, id string) (int, error) {
	_, idx, ok := lo.FindIndexOf(doc.ModelConfig.AvailableModels, func(mi models.ModelInfo) bool {
		return mi.ID == id
	})
	if !ok {
		return -1, fmt.Errorf("model %q: %w", id, ErrNotFound)
	}
	return idx, nil
}

// Models returns the model catalog
func (m *Manager) Models() ([]models.ModelInfo, error) {
	doc, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	return doc.ModelConfig.AvailableModels, nil
}

// SelectedModel returns the selected model, or nil if the selection is
// empty or no longer in the catalog.
func (m *Manager) SelectedModel() (*models.ModelInfo, error) {
	doc, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	idx, err := modelIndex(doc, doc.ModelConfig.SelectedModelID)
	if err != nil {
		return nil, nil
	}
	mi := doc.ModelConfig.AvailableModels[idx]
	return &mi, nil
}

// SelectModel selects id and writes it, with its reasoning level, to the
// droid settings file.
func (m *Manager) SelectModel(id string) (*models.ModelInfo, error) {
	var selected models.ModelInfo
	err := m.update(func(doc *models.ConfigDocument) error {
		idx, err := modelIndex(doc, id)
		if err != nil {
			return err
		}
		selected = doc.ModelConfig.AvailableModels[idx]
		doc.ModelConfig.SelectedModelID = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := m.applySettings(selected); err != nil {
		return nil, err
	}
	m.log.WithField("model", id).Info("selected model")
	return &selected, nil
}

func (m *Manager) applySettings(mi models.ModelInfo) error {
	if m.settings == nil {
		return nil
	}
	if err := m.settings.Apply(mi.ID, mi.ReasoningLevel); err != nil {
		return fmt.Errorf("failed to update droid settings: %w", err)
	}
	return nil
}

// AddModel adds a custom model to the catalog
func (m *Manager) AddModel(mi models.ModelInfo) (*models.ModelInfo, error) {
	mi.ID = strings.TrimSpace(mi.ID)
	mi.Name = strings.TrimSpace(mi.Name)
	if err := m.validator.ValidateModelID(mi.ID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if mi.Name == "" {
		mi.Name = mi.ID
	}
	if mi.Provider == "" {
		mi.Provider = "Custom"
	}
	if mi.ReasoningLevel == "" {
		mi.ReasoningLevel = models.ReasoningMedium
	}
	mi.IsBuiltin = false

	err := m.update(func(doc *models.ConfigDocument) error {
		if _, err := modelIndex(doc, mi.ID); err == nil {
			return fmt.Errorf("model %q: %w", mi.ID, ErrDuplicateModel)
		}
		doc.ModelConfig.AvailableModels = append(doc.ModelConfig.AvailableModels, mi)
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.log.WithField("model", mi.ID).Info("added custom model")
	return &mi, nil
}

// RemoveModel removes a custom model. If it was selected the selection
// falls back to the default model.
func (m *Manager) RemoveModel(id string) error {
	return m.update(func(doc *models.ConfigDocument) error {
		idx, err := modelIndex(doc, id)
		if err != nil {
			return err
		}
		if doc.ModelConfig.AvailableModels[idx].IsBuiltin {
			return fmt.Errorf("model %q: %w", id, ErrBuiltinModel)
		}

		if doc.ModelConfig.SelectedModelID == id {
			doc.ModelConfig.SelectedModelID = models.DefaultModelID
		}
		doc.ModelConfig.AvailableModels = append(
			doc.ModelConfig.AvailableModels[:idx],
			doc.ModelConfig.AvailableModels[idx+1:]...,
		)
		return nil
	})
}

// SetReasoningLevel changes the reasoning level of a model. The settings
// file is rewritten when the model is the selected one.
func (m *Manager) SetReasoningLevel(id string, level models.ReasoningLevel) error {
	level, err := models.ParseReasoningLevel(string(level))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var (
		updated  models.ModelInfo
		selected bool
	)
	err = m.update(func(doc *models.ConfigDocument) error {
		idx, err := modelIndex(doc, id)
		if err != nil {
			return err
		}
		doc.ModelConfig.AvailableModels[idx].ReasoningLevel = level
		updated = doc.ModelConfig.AvailableModels[idx]
		selected = doc.ModelConfig.SelectedModelID == id
		return nil
	})
	if err != nil {
		return err
	}

	if selected {
		return m.applySettings(updated)
	}
	return nil
}

// ResetModels restores the built-in catalog and the default selection
func (m *Manager) ResetModels() error {
	return m.update(func(doc *models.ConfigDocument) error {
		doc.ModelConfig = models.DefaultModelConfig()
		return nil
	})
}
