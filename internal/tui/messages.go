package tui

import "droidswitch/config/models"

// ProvidersLoadedMsg is sent when the provider list is (re)loaded
type ProvidersLoadedMsg struct {
	Providers []models.Provider
	ActiveID  string
	Err       error
}

// ProviderSwitchedMsg is sent when the active provider changed
type ProviderSwitchedMsg struct {
	Provider *models.Provider
	Err      error
}

// ProviderDisabledMsg is sent when the active provider was cleared
type ProviderDisabledMsg struct {
	Err error
}

// ProviderAddedMsg is sent when a provider is added
type ProviderAddedMsg struct {
	Provider *models.Provider
	Err      error
}

// ProviderRemovedMsg is sent when a provider is removed
type ProviderRemovedMsg struct {
	Name string
	Err  error
}

// BalanceRefreshedMsg is sent when one balance query completes
type BalanceRefreshedMsg struct {
	Provider *models.Provider
	Err      error
}

// BalancesRefreshedMsg is sent when the batch balance refresh completes
type BalancesRefreshedMsg struct {
	Providers []models.Provider
	Err       error
}

// ConfigChangedMsg is sent when the config file changed on disk
type ConfigChangedMsg struct{}
