package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"droidswitch/config/models"
	"droidswitch/config/validation"
	"droidswitch/internal/utils"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// EnvWriter mirrors the active key to where the droid CLI reads it
type EnvWriter interface {
	SetAPIKey(key string) error
	ClearAPIKey() error
	APIKey() (string, error)
}

// BalanceFetcher queries usage for API keys
type BalanceFetcher interface {
	Fetch(ctx context.Context, apiKey string) (*models.BalanceInfo, error)
	FetchAll(ctx context.Context, apiKeys []string) map[string]*models.BalanceInfo
}

// SettingsWriter applies the selected model to the droid CLI settings
type SettingsWriter interface {
	Apply(modelID string, level models.ReasoningLevel) error
}

// Manager implements the provider and model operations on top of a Store.
// Every operation loads the document, mutates it and saves it back.
type Manager struct {
	store     *Store
	env       EnvWriter
	balance   BalanceFetcher
	settings  SettingsWriter
	log       logrus.FieldLogger
	now       func() time.Time
	newID     func() string
	validator *validation.InputValidator
}

// Option configures a Manager
type Option func(*Manager)

// WithBalanceFetcher sets the client used by the balance operations
func WithBalanceFetcher(b BalanceFetcher) Option {
	return func(m *Manager) { m.balance = b }
}

// WithSettingsWriter sets where model selections are applied
func WithSettingsWriter(s SettingsWriter) Option {
	return func(m *Manager) { m.settings = s }
}

// WithLogger sets the logger
func WithLogger(log logrus.FieldLogger) Option {
	return func(m *Manager) { m.log = log }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithIDGenerator overrides the provider id generator
func WithIDGenerator(newID func() string) Option {
	return func(m *Manager) { m.newID = newID }
}

// NewManager creates a Manager. env must not be nil.
func NewManager(store *Store, env EnvWriter, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		env:       env,
		log:       logrus.StandardLogger(),
		now:       time.Now,
		newID:     uuid.NewString,
		validator: validation.NewInputValidator(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Store returns the underlying store
func (m *Manager) Store() *Store {
	return m.store
}

func (m *Manager) timestamp() string {
	return m.now().UTC().Format(time.RFC3339)
}

// update runs fn on a freshly loaded document and saves it if fn succeeds
func (m *Manager) update(fn func(doc *models.ConfigDocument) error) error {
	doc, err := m.store.Load()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return m.store.Save(doc)
}

func providerIndex(doc *models.ConfigDocument, id string) (int, error) {
	_, idx, ok := lo.FindIndexOf(doc.Providers, func(p models.Provider) bool {
		return p.ID == id
	})
	if !ok {
		return -1, fmt.Errorf("provider %q: %w", id, ErrNotFound)
	}
	return idx, nil
}

// List returns all providers in display order
func (m *Manager) List() ([]models.Provider, error) {
	doc, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	return doc.Providers, nil
}

// Get returns the provider with the given id
func (m *Manager) Get(id string) (*models.Provider, error) {
	doc, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	idx, err := providerIndex(doc, id)
	if err != nil {
		return nil, err
	}
	p := doc.Providers[idx]
	return &p, nil
}

// Find resolves ref as a provider id first and then as an exact name
func (m *Manager) Find(ref string) (*models.Provider, error) {
	doc, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	if p, ok := lo.Find(doc.Providers, func(p models.Provider) bool { return p.ID == ref }); ok {
		return &p, nil
	}
	if p, ok := lo.Find(doc.Providers, func(p models.Provider) bool { return p.Name == ref }); ok {
		return &p, nil
	}
	return nil, fmt.Errorf("provider %q: %w", ref, ErrNotFound)
}

// GetActive returns the active provider, or nil if none is active
func (m *Manager) GetActive() (*models.Provider, error) {
	doc, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	if doc.ActiveProviderID == "" {
		return nil, nil
	}
	p, ok := lo.Find(doc.Providers, func(p models.Provider) bool { return p.ID == doc.ActiveProviderID })
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// Add stores a new provider as given. Names and keys must be unique, compared
// exactly. Format checks such as the fk- prefix belong to the input layer.
func (m *Manager) Add(name, apiKey string) (*models.Provider, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: API key cannot be empty", ErrInvalidInput)
	}

	var added models.Provider
	err := m.update(func(doc *models.ConfigDocument) error {
		if lo.ContainsBy(doc.Providers, func(p models.Provider) bool { return p.Name == name }) {
			return fmt.Errorf("provider name %q: %w", name, ErrDuplicateName)
		}
		if lo.ContainsBy(doc.Providers, func(p models.Provider) bool { return p.APIKey == apiKey }) {
			return ErrDuplicateKey
		}
		added = m.newProvider(name, apiKey)
		doc.Providers = append(doc.Providers, added)
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.log.WithField("name", name).Info("added provider")
	return &added, nil
}

func (m *Manager) newProvider(name, apiKey string) models.Provider {
	now := m.timestamp()
	return models.Provider{
		ID:        m.newID(),
		Name:      name,
		APIKey:    apiKey,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Remove deletes a provider. Removing the active provider first clears the
// mirrored key so the CLI never keeps using a deleted credential.
func (m *Manager) Remove(id string) error {
	var name string
	err := m.update(func(doc *models.ConfigDocument) error {
		idx, err := providerIndex(doc, id)
		if err != nil {
			return err
		}
		name = doc.Providers[idx].Name

		if doc.ActiveProviderID == id {
			if err := m.env.ClearAPIKey(); err != nil {
				return fmt.Errorf("failed to clear active key: %w", err)
			}
			doc.ActiveProviderID = ""
		}

		doc.Providers = append(doc.Providers[:idx], doc.Providers[idx+1:]...)
		return nil
	})
	if err != nil {
		return err
	}

	m.log.WithField("name", name).Info("removed provider")
	return nil
}

// Switch makes id the active provider. The key is written to the env
// config before the store changes; if that fails the store is untouched.
func (m *Manager) Switch(id string) (*models.Provider, error) {
	var active models.Provider
	err := m.update(func(doc *models.ConfigDocument) error {
		idx, err := providerIndex(doc, id)
		if err != nil {
			return err
		}

		if err := m.env.SetAPIKey(doc.Providers[idx].APIKey); err != nil {
			return fmt.Errorf("failed to set active key: %w", err)
		}

		for i := range doc.Providers {
			doc.Providers[i].IsActive = doc.Providers[i].ID == id
		}
		doc.ActiveProviderID = id
		active = doc.Providers[idx]
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.log.WithField("name", active.Name).Info("switched provider")
	return &active, nil
}

// Disable deactivates the active provider, if any
func (m *Manager) Disable() error {
	doc, err := m.store.Load()
	if err != nil {
		return err
	}
	if doc.ActiveProviderID == "" {
		m.log.Debug("no active provider to disable")
		return nil
	}

	if err := m.env.ClearAPIKey(); err != nil {
		return fmt.Errorf("failed to clear active key: %w", err)
	}
	for i := range doc.Providers {
		doc.Providers[i].IsActive = false
	}
	doc.ActiveProviderID = ""
	if err := m.store.Save(doc); err != nil {
		return err
	}

	m.log.Info("disabled active provider")
	return nil
}

// CurrentKey returns the key currently mirrored for the droid CLI
func (m *Manager) CurrentKey() (string, error) {
	return m.env.APIKey()
}

var errNoBalanceFetcher = errors.New("balance client not configured")

// RefreshBalance queries usage for one provider and stores the snapshot.
// Fetch errors are returned as is and nothing is written.
func (m *Manager) RefreshBalance(ctx context.Context, id string) (*models.Provider, error) {
	if m.balance == nil {
		return nil, errNoBalanceFetcher
	}

	p, err := m.Get(id)
	if err != nil {
		return nil, err
	}

	info, err := m.balance.Fetch(ctx, p.APIKey)
	if err != nil {
		return nil, err
	}

	var updated models.Provider
	err = m.update(func(doc *models.ConfigDocument) error {
		idx, err := providerIndex(doc, id)
		if err != nil {
			return err
		}
		doc.Providers[idx].Balance = info
		doc.Providers[idx].UpdatedAt = m.timestamp()
		updated = doc.Providers[idx]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// RefreshAllBalances queries every provider in turn and stores whatever
// succeeded in one write. Providers whose query failed keep their old
// snapshot.
func (m *Manager) RefreshAllBalances(ctx context.Context) ([]models.Provider, error) {
	if m.balance == nil {
		return nil, errNoBalanceFetcher
	}

	doc, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	if len(doc.Providers) == 0 {
		return doc.Providers, nil
	}

	keys := lo.Uniq(lo.Map(doc.Providers, func(p models.Provider, _ int) string { return p.APIKey }))
	results := m.balance.FetchAll(ctx, keys)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var refreshed []models.Provider
	err = m.update(func(doc *models.ConfigDocument) error {
		now := m.timestamp()
		for i := range doc.Providers {
			if info, ok := results[doc.Providers[i].APIKey]; ok {
				doc.Providers[i].Balance = info
				doc.Providers[i].UpdatedAt = now
			}
		}
		doc.LastBalanceCheck = now
		refreshed = doc.Providers
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.log.WithFields(logrus.Fields{"ok": len(results), "total": len(keys)}).Info("refreshed balances")
	return refreshed, nil
}

// DefaultImportPrefix names imported providers when no prefix is given
const DefaultImportPrefix = "Droid"

// SkippedKey is a key Import did not add
type SkippedKey struct {
	Key    string
	Reason string
}

// ImportResult lists what Import added and skipped
type ImportResult struct {
	Added   []models.Provider
	Skipped []SkippedKey
}

// Import adds many keys at once, naming them "<prefix> 1", "<prefix> 2", ...
// and skipping numbers already in use. Keys that are invalid or already
// stored are reported in Skipped.
func (m *Manager) Import(keys []string, prefix string) (*ImportResult, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultImportPrefix
	}

	result := &ImportResult{}
	err := m.update(func(doc *models.ConfigDocument) error {
		names := make(map[string]bool, len(doc.Providers))
		stored := make(map[string]bool, len(doc.Providers))
		for _, p := range doc.Providers {
			names[p.Name] = true
			stored[p.APIKey] = true
		}

		n := 1
		for _, key := range keys {
			key = strings.TrimSpace(key)
			if err := m.validator.ValidateAPIKey(key); err != nil {
				result.Skipped = append(result.Skipped, SkippedKey{Key: key, Reason: err.Error()})
				continue
			}
			if stored[key] {
				result.Skipped = append(result.Skipped, SkippedKey{Key: key, Reason: ErrDuplicateKey.Error()})
				continue
			}

			name := fmt.Sprintf("%s %d", prefix, n)
			for names[name] {
				n++
				name = fmt.Sprintf("%s %d", prefix, n)
			}
			if err := m.validator.ValidateName(name); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
			n++

			p := m.newProvider(name, key)
			doc.Providers = append(doc.Providers, p)
			result.Added = append(result.Added, p)
			names[name] = true
			stored[key] = true
		}
		if len(result.Added) == 0 {
			return errNothingImported
		}
		return nil
	})
	if err != nil && !errors.Is(err, errNothingImported) {
		return nil, err
	}

	for _, s := range result.Skipped {
		m.log.WithField("key", utils.MaskAPIKey(s.Key)).Debugf("skipped: %s", s.Reason)
	}
	m.log.WithField("count", len(result.Added)).Info("imported providers")
	return result, nil
}

// errNothingImported aborts the save when no key was added
var errNothingImported = errors.New("nothing to import")
