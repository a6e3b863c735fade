package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultModelID is selected when nothing else is
const DefaultModelID = "claude-sonnet-4-5-20250929"

// BalanceInfo is a usage snapshot returned by the usage endpoint
type BalanceInfo struct {
	Used        uint64  `json:"used"`
	Allowance   uint64  `json:"allowance"`
	Remaining   uint64  `json:"remaining"`
	Overage     uint64  `json:"overage"`
	UsedRatio   float64 `json:"usedRatio"`
	PercentUsed float64 `json:"percentUsed"`
	Exceeded    bool    `json:"exceeded"`
	ExpiryDate  string  `json:"expiryDate,omitempty"`
}

// Provider is a stored API credential
type Provider struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	APIKey    string       `json:"apiKey"`
	Balance   *BalanceInfo `json:"balance,omitempty"`
	IsActive  bool         `json:"isActive"`
	CreatedAt string       `json:"createdAt"`
	UpdatedAt string       `json:"updatedAt"`
}

// ReasoningLevel is the reasoning effort passed to the CLI settings
type ReasoningLevel string

const (
	ReasoningOff    ReasoningLevel = "off"
	ReasoningLow    ReasoningLevel = "low"
	ReasoningMedium ReasoningLevel = "medium"
	ReasoningHigh   ReasoningLevel = "high"
)

// ParseReasoningLevel parses a level name, case-insensitively
func ParseReasoningLevel(s string) (ReasoningLevel, error) {
	switch l := ReasoningLevel(strings.ToLower(strings.TrimSpace(s))); l {
	case ReasoningOff, ReasoningLow, ReasoningMedium, ReasoningHigh:
		return l, nil
	}
	return "", fmt.Errorf("invalid reasoning level %q (want off, low, medium or high)", s)
}

// UnmarshalJSON defaults empty and unknown levels to medium
func (l *ReasoningLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseReasoningLevel(s)
	if err != nil {
		parsed = ReasoningMedium
	}
	*l = parsed
	return nil
}

// ModelInfo describes one entry of the model catalog
type ModelInfo struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Provider       string         `json:"provider"`
	Description    string         `json:"description,omitempty"`
	IsBuiltin      bool           `json:"isBuiltin"`
	ReasoningLevel ReasoningLevel `json:"reasoningLevel"`
}

// ModelConfig holds the catalog and the selected model
type ModelConfig struct {
	AvailableModels []ModelInfo `json:"availableModels"`
	SelectedModelID string      `json:"selectedModelId,omitempty"`
}

// ConfigDocument is the whole persisted application state
type ConfigDocument struct {
	Providers        []Provider  `json:"providers"`
	ActiveProviderID string      `json:"activeProviderId,omitempty"`
	LastBalanceCheck string      `json:"lastBalanceCheck,omitempty"`
	ModelConfig      ModelConfig `json:"modelConfig"`
}

// PromptTemplate is a reusable system prompt
type PromptTemplate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Content     string `json:"content"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	IsBuiltin   bool   `json:"isBuiltin"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// PromptConfig is the persisted list of custom templates
type PromptConfig struct {
	Templates        []PromptTemplate `json:"templates"`
	ActiveTemplateID string           `json:"activeTemplateId,omitempty"`
}

// BuiltinModels returns a fresh copy of the built-in catalog
func BuiltinModels() []ModelInfo {
	return []ModelInfo{
		{ID: "claude-sonnet-4-5-20250929", Name: "Claude Sonnet 4.5", Provider: "Anthropic", Description: "1.2x - 日常开发默认选择", IsBuiltin: true, ReasoningLevel: ReasoningMedium},
		{ID: "claude-opus-4-5-20251101", Name: "Claude Opus 4.5", Provider: "Anthropic", Description: "1.2x - 高级推理模型", IsBuiltin: true, ReasoningLevel: ReasoningHigh},
		{ID: "claude-opus-4-1-20250805", Name: "Claude Opus 4.1", Provider: "Anthropic", Description: "6x - 复杂架构决策", IsBuiltin: true, ReasoningLevel: ReasoningHigh},
		{ID: "claude-haiku-4-5-20251001", Name: "Claude Haiku 4.5", Provider: "Anthropic", Description: "0.4x - 快速、高性价比", IsBuiltin: true, ReasoningLevel: ReasoningLow},
		{ID: "gpt-5.1-codex", Name: "GPT-5.1-Codex", Provider: "OpenAI", Description: "0.5x - 编码任务优化", IsBuiltin: true, ReasoningLevel: ReasoningMedium},
		{ID: "gpt-5.1", Name: "GPT-5.1", Provider: "OpenAI", Description: "0.5x - OpenAI 通用模型", IsBuiltin: true, ReasoningLevel: ReasoningMedium},
		{ID: "gemini-3-pro-preview", Name: "Gemini 3 Pro", Provider: "Google", Description: "0.8x - Google 多模态模型", IsBuiltin: true, ReasoningLevel: ReasoningMedium},
		{ID: "glm-4.6", Name: "Droid Core (GLM-4.6)", Provider: "智谱AI", Description: "0.25x - 开源、离线环境", IsBuiltin: true, ReasoningLevel: ReasoningLow},
	}
}

// DefaultModelConfig returns the built-in catalog with the default selection
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		AvailableModels: BuiltinModels(),
		SelectedModelID: DefaultModelID,
	}
}

// DefaultDocument returns the state used when no config file exists yet
func DefaultDocument() *ConfigDocument {
	return &ConfigDocument{
		Providers:   []Provider{},
		ModelConfig: DefaultModelConfig(),
	}
}
