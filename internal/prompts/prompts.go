// Package prompts manages the droid system prompt (AGENTS.md) and a library
// of reusable prompt templates.
package prompts

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"droidswitch/config"
	"droidswitch/config/models"
	"droidswitch/config/storage"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

//go:embed templates/*.md
var templateFS embed.FS

type recommended struct {
	id          string
	name        string
	description string
	category    string
}

var recommendedTable = []recommended{
	{"chinese-dev", "中文开发者 (通用)", "35.9k⭐ 基于 awesome-cursorrules，适合中文开发者的通用最佳实践", "通用"},
	{"typescript-best", "TypeScript 最佳实践", "35.9k⭐ TypeScript 编码标准和现代 Web 开发最佳实践", "TypeScript"},
	{"react-nextjs-expert", "React + Next.js 专家", "35.9k⭐ Next.js 14 App Router + React + TypeScript + Tailwind 完整规范", "React"},
	{"python-flask", "Python 最佳实践", "35.9k⭐ Python 现代软件开发最佳实践 (Flask/FastAPI)", "Python"},
	{"senior-engineer", "高级工程师模式", "153⭐ 将 AI 提升为自主首席工程师的专业工作流程", "工作流"},
	{"security-expert", "安全专家", "OWASP 安全最佳实践，适合需要高安全性的项目", "安全"},
	{"vue-nuxt", "Vue.js + Nuxt 专家", "35.9k⭐ Vue 3 Composition API + Nuxt 3 + Pinia 完整规范", "Vue"},
	{"svelte-kit", "Svelte + SvelteKit", "35.9k⭐ Svelte 5 Runes + SvelteKit 现代开发规范", "Svelte"},
	{"go-backend", "Go 后端开发", "Go 后端 API 开发最佳实践，适合构建高性能服务", "Go"},
	{"rust-dev", "Rust 开发", "Rust 系统编程最佳实践，构建安全高性能应用", "Rust"},
	{"code-reviewer", "代码审查专家", "专业代码审查指南，提升团队代码质量", "工作流"},
	{"fullstack-dev", "全栈开发者", "全栈开发综合指南，前后端一体化最佳实践", "通用"},
	{"tauri-desktop", "Tauri 桌面应用", "Tauri 跨平台桌面应用开发指南", "Rust"},
}

// Recommended returns the built-in templates
func Recommended() []models.PromptTemplate {
	return lo.Map(recommendedTable, func(r recommended, _ int) models.PromptTemplate {
		content, err := templateFS.ReadFile("templates/" + r.id + ".md")
		if err != nil {
			panic(fmt.Sprintf("missing embedded template %s: %v", r.id, err))
		}
		return models.PromptTemplate{
			ID:          r.id,
			Name:        r.name,
			Content:     strings.TrimRight(string(content), "\n"),
			Description: r.description,
			Category:    r.category,
			IsBuiltin:   true,
		}
	})
}

// Library reads and writes the system prompt and the custom templates
type Library struct {
	agentsPath string
	configPath string
	now        func() time.Time
	log        logrus.FieldLogger
}

// NewLibrary creates a Library backed by agentsPath and configPath
func NewLibrary(agentsPath, configPath string, log logrus.FieldLogger) *Library {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Library{
		agentsPath: agentsPath,
		configPath: configPath,
		now:        time.Now,
		log:        log,
	}
}

// AgentsPath returns the path to AGENTS.md
func (l *Library) AgentsPath() string {
	return l.agentsPath
}

// SystemPrompt returns the content of AGENTS.md, or "" if it does not exist
func (l *Library) SystemPrompt() (string, error) {
	data, err := os.ReadFile(l.agentsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read system prompt: %w", err)
	}
	return string(data), nil
}

// SetSystemPrompt replaces the content of AGENTS.md
func (l *Library) SetSystemPrompt(content string) error {
	if err := storage.AtomicWrite(l.agentsPath, []byte(content), 0644); err != nil {
		return err
	}
	l.log.WithField("path", l.agentsPath).Debug("updated system prompt")
	return nil
}

func (l *Library) load() (*models.PromptConfig, error) {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &models.PromptConfig{Templates: []models.PromptTemplate{}}, nil
		}
		return nil, fmt.Errorf("failed to read prompt config: %w", err)
	}

	var cfg models.PromptConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &config.ParseError{Path: l.configPath, Err: err}
	}
	if cfg.Templates == nil {
		cfg.Templates = []models.PromptTemplate{}
	}
	return &cfg, nil
}

func (l *Library) save(cfg *models.PromptConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize prompt config: %w", err)
	}
	return storage.AtomicWrite(l.configPath, append(data, '\n'), 0644)
}

// All returns the recommended templates followed by the custom ones
func (l *Library) All() ([]models.PromptTemplate, error) {
	cfg, err := l.load()
	if err != nil {
		return nil, err
	}
	custom := lo.Filter(cfg.Templates, func(t models.PromptTemplate, _ int) bool {
		return !t.IsBuiltin
	})
	return append(Recommended(), custom...), nil
}

// Add stores a custom template
func (l *Library) Add(name, content, description, category string) (*models.PromptTemplate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: template name cannot be empty", config.ErrInvalidInput)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: template content cannot be empty", config.ErrInvalidInput)
	}

	cfg, err := l.load()
	if err != nil {
		return nil, err
	}

	now := l.now()
	tmpl := models.PromptTemplate{
		ID:          fmt.Sprintf("custom-%d", now.UnixMilli()),
		Name:        name,
		Content:     content,
		Description: description,
		Category:    category,
		CreatedAt:   now.UTC().Format(time.RFC3339),
	}
	for lo.ContainsBy(cfg.Templates, func(t models.PromptTemplate) bool { return t.ID == tmpl.ID }) {
		now = now.Add(time.Millisecond)
		tmpl.ID = fmt.Sprintf("custom-%d", now.UnixMilli())
	}

	cfg.Templates = append(cfg.Templates, tmpl)
	if err := l.save(cfg); err != nil {
		return nil, err
	}

	l.log.WithField("id", tmpl.ID).Info("added prompt template")
	return &tmpl, nil
}

// Remove deletes a custom template. Built-in and unknown ids yield
// config.ErrNotFound.
func (l *Library) Remove(id string) error {
	cfg, err := l.load()
	if err != nil {
		return err
	}

	kept := lo.Reject(cfg.Templates, func(t models.PromptTemplate, _ int) bool {
		return t.ID == id && !t.IsBuiltin
	})
	if len(kept) == len(cfg.Templates) {
		return fmt.Errorf("custom template %q: %w", id, config.ErrNotFound)
	}

	cfg.Templates = kept
	if cfg.ActiveTemplateID == id {
		cfg.ActiveTemplateID = ""
	}
	return l.save(cfg)
}

// Apply writes the template to AGENTS.md and marks it active
func (l *Library) Apply(id string) (*models.PromptTemplate, error) {
	all, err := l.All()
	if err != nil {
		return nil, err
	}
	tmpl, ok := lo.Find(all, func(t models.PromptTemplate) bool { return t.ID == id })
	if !ok {
		return nil, fmt.Errorf("template %q: %w", id, config.ErrNotFound)
	}

	if err := l.SetSystemPrompt(tmpl.Content); err != nil {
		return nil, err
	}

	cfg, err := l.load()
	if err != nil {
		return nil, err
	}
	cfg.ActiveTemplateID = id
	if err := l.save(cfg); err != nil {
		return nil, err
	}

	l.log.WithField("template", tmpl.Name).Info("applied prompt template")
	return &tmpl, nil
}

// ActiveID returns the id of the last applied template, or ""
func (l *Library) ActiveID() (string, error) {
	cfg, err := l.load()
	if err != nil {
		return "", err
	}
	return cfg.ActiveTemplateID, nil
}
