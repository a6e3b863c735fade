package config

import (
	"errors"
	"testing"

	"droidswitch/config/models"
)

func TestSelectModel(t *testing.T) {
	settings := &fakeSettings{}
	m, _ := setupManager(t, WithSettingsWriter(settings))

	builtin := models.BuiltinModels()[1]
	selected, err := m.SelectModel(builtin.ID)
	if err != nil {
		t.Fatalf("SelectModel() unexpected error: %v", err)
	}
	if selected.ID != builtin.ID {
		t.Errorf("SelectModel() = %+v", selected)
	}
	if settings.model != builtin.ID || settings.level != builtin.ReasoningLevel {
		t.Errorf("settings = %q/%q", settings.model, settings.level)
	}

	got, err := m.SelectedModel()
	if err != nil || got == nil || got.ID != builtin.ID {
		t.Errorf("SelectedModel() = %+v, %v", got, err)
	}

	if _, err := m.SelectModel("unknown-model"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SelectModel(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestSelectModelSettingsFailure(t *testing.T) {
	settings := &fakeSettings{err: errors.New("malformed settings.json")}
	m, _ := setupManager(t, WithSettingsWriter(settings))

	if _, err := m.SelectModel(models.BuiltinModels()[0].ID); err == nil {
		t.Fatal("SelectModel() expected settings error")
	}
}

func TestAddModel(t *testing.T) {
	m, _ := setupManager(t)

	added, err := m.AddModel(models.ModelInfo{ID: " my-model ", IsBuiltin: true})
	if err != nil {
		t.Fatalf("AddModel() unexpected error: %v", err)
	}
	if added.ID != "my-model" || added.Name != "my-model" || added.IsBuiltin {
		t.Errorf("AddModel() = %+v", added)
	}
	if added.ReasoningLevel != models.ReasoningMedium || added.Provider != "Custom" {
		t.Errorf("defaults not applied: %+v", added)
	}

	if _, err := m.AddModel(models.ModelInfo{ID: "my-model"}); !errors.Is(err, ErrDuplicateModel) {
		t.Errorf("duplicate AddModel() error = %v", err)
	}
	if _, err := m.AddModel(models.ModelInfo{ID: "bad id"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("invalid AddModel() error = %v", err)
	}

	list, _ := m.Models()
	if len(list) != len(models.BuiltinModels())+1 {
		t.Errorf("Models() has %d entries", len(list))
	}
}

func TestRemoveModel(t *testing.T) {
	m, _ := setupManager(t)
	if _, err := m.AddModel(models.ModelInfo{ID: "custom-1", Name: "Custom"}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.SelectModel("custom-1"); err != nil {
		t.Fatal(err)
	}

	if err := m.RemoveModel(models.BuiltinModels()[0].ID); !errors.Is(err, ErrBuiltinModel) {
		t.Errorf("RemoveModel(builtin) error = %v", err)
	}
	if err := m.RemoveModel("custom-1"); err != nil {
		t.Fatalf("RemoveModel() unexpected error: %v", err)
	}

	selected, _ := m.SelectedModel()
	if selected == nil || selected.ID != models.DefaultModelID {
		t.Errorf("selection after removal = %+v, want default", selected)
	}
	if err := m.RemoveModel("custom-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second RemoveModel() error = %v", err)
	}
}

func TestSetReasoningLevel(t *testing.T) {
	settings := &fakeSettings{}
	m, _ := setupManager(t, WithSettingsWriter(settings))
	first := models.BuiltinModels()[0]
	other := models.BuiltinModels()[1]

	if _, err := m.SelectModel(first.ID); err != nil {
		t.Fatal(err)
	}

	if err := m.SetReasoningLevel(other.ID, models.ReasoningHigh); err != nil {
		t.Fatal(err)
	}
	if settings.model != first.ID {
		t.Error("changing an unselected model rewrote settings")
	}

	if err := m.SetReasoningLevel(first.ID, models.ReasoningOff); err != nil {
		t.Fatal(err)
	}
	if settings.level != models.ReasoningOff {
		t.Errorf("settings level = %q, want off", settings.level)
	}

	if err := m.SetReasoningLevel(first.ID, "extreme"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("SetReasoningLevel(extreme) error = %v", err)
	}
}

func TestResetModels(t *testing.T) {
	m, _ := setupManager(t)
	if _, err := m.AddModel(models.ModelInfo{ID: "custom-1"}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.SelectModel("custom-1"); err != nil {
		t.Fatal(err)
	}

	if err := m.ResetModels(); err != nil {
		t.Fatal(err)
	}
	list, _ := m.Models()
	if len(list) != len(models.BuiltinModels()) {
		t.Errorf("Models() after reset has %d entries", len(list))
	}
	selected, _ := m.SelectedModel()
	if selected == nil || selected.ID != models.DefaultModelID {
		t.Errorf("selection after reset = %+v", selected)
	}
}
