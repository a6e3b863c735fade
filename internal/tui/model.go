// Package tui provides the interactive provider menu
package tui

import (
	"context"

	"droidswitch/config"
	"droidswitch/config/models"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ViewState represents the current view state
type ViewState int

const (
	ViewMain   ViewState = iota // Provider list
	ViewAdd                     // Add provider form
	ViewRemove                  // Remove confirmation dialog
	ViewHelp                    // Help panel
)

// Model is the core state model for TUI
type Model struct {
	providers []models.Provider // Provider list
	activeID  string            // Current active provider id
	cursor    int               // Current cursor position
	viewState ViewState         // Current view state
	manager   *config.Manager
	ctx       context.Context
	watcher   *watcher

	// Form related
	formInputs []textinput.Model
	formFocus  int

	// Messages and errors
	message  string
	errorMsg string

	// Window size
	width  int
	height int

	scrollOffset int

	// refreshing is set while a balance query is in flight
	refreshing bool
}

// NewModel creates a new TUI model. ctx bounds the balance queries started
// from the menu.
func NewModel(ctx context.Context, manager *config.Manager) Model {
	return Model{
		providers:  []models.Provider{},
		viewState:  ViewMain,
		manager:    manager,
		ctx:        ctx,
		formInputs: []textinput.Model{},
		width:      80,
		height:     24,
	}
}

// Init initializes the model and returns initial commands
func (m Model) Init() tea.Cmd {
	if m.watcher != nil {
		return tea.Batch(loadProviders(m.manager), m.watcher.wait())
	}
	return loadProviders(m.manager)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.adjustScrollOffset()
		return m, nil

	case ProvidersLoadedMsg:
		if msg.Err != nil {
			m.errorMsg = msg.Err.Error()
			return m, nil
		}
		m.providers = msg.Providers
		m.activeID = msg.ActiveID
		// Keep the cursor in range after a removal or an external edit
		if m.cursor >= len(m.providers) {
			m.cursor = len(m.providers) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		m.adjustScrollOffset()
		return m, nil

	case ConfigChangedMsg:
		if m.watcher == nil {
			return m, loadProviders(m.manager)
		}
		return m, tea.Batch(loadProviders(m.manager), m.watcher.wait())

	case ProviderSwitchedMsg:
		if msg.Err != nil {
			m.errorMsg = msg.Err.Error()
			return m, nil
		}
		m.activeID = msg.Provider.ID
		m.message = "Switched to " + msg.Provider.Name
		return m, loadProviders(m.manager)

	case ProviderDisabledMsg:
		if msg.Err != nil {
			m.errorMsg = msg.Err.Error()
			return m, nil
		}
		m.activeID = ""
		m.message = "Active provider cleared"
		return m, loadProviders(m.manager)

	case ProviderAddedMsg:
		if msg.Err != nil {
			// Stay on the form so the input can be corrected
			m.errorMsg = msg.Err.Error()
			return m, nil
		}
		m.message = "Added " + msg.Provider.Name
		m.errorMsg = ""
		m.viewState = ViewMain
		m.formInputs = []textinput.Model{}
		m.formFocus = 0
		return m, loadProviders(m.manager)

	case ProviderRemovedMsg:
		m.viewState = ViewMain
		if msg.Err != nil {
			m.errorMsg = msg.Err.Error()
			return m, nil
		}
		m.message = "Removed " + msg.Name
		return m, loadProviders(m.manager)

	case BalanceRefreshedMsg:
		m.refreshing = false
		if msg.Err != nil {
			m.errorMsg = msg.Err.Error()
			return m, nil
		}
		m.message = "Balance updated for " + msg.Provider.Name
		return m, loadProviders(m.manager)

	case BalancesRefreshedMsg:
		m.refreshing = false
		if msg.Err != nil {
			m.errorMsg = msg.Err.Error()
			return m, nil
		}
		m.message = "Balances updated"
		return m, loadProviders(m.manager)
	}

	return m, nil
}

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.viewState {
	case ViewMain:
		return m.handleMainViewKeys(msg)
	case ViewAdd:
		return m.handleFormViewKeys(msg)
	case ViewRemove:
		return m.handleRemoveViewKeys(msg)
	case ViewHelp:
		return m.handleHelpViewKeys(msg)
	default:
		return m, nil
	}
}

func (m Model) current() (models.Provider, bool) {
	if m.cursor < 0 || m.cursor >= len(m.providers) {
		return models.Provider{}, false
	}
	return m.providers[m.cursor], true
}

func (m *Model) clearMessages() {
	m.message = ""
	m.errorMsg = ""
}

// handleMainViewKeys handles keyboard input in main view
func (m Model) handleMainViewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "j", "down":
		m.moveDown()
		m.clearMessages()
		return m, nil

	case "k", "up":
		m.moveUp()
		m.clearMessages()
		return m, nil

	case "g", "home":
		m.moveToTop()
		m.clearMessages()
		return m, nil

	case "G", "end":
		m.moveToBottom()
		m.clearMessages()
		return m, nil

	case "enter":
		if p, ok := m.current(); ok {
			m.clearMessages()
			return m, switchProvider(m.manager, p.ID)
		}
		return m, nil

	case "d":
		if m.activeID == "" {
			m.errorMsg = "No active provider"
			return m, nil
		}
		m.clearMessages()
		return m, disableProvider(m.manager)

	case "r":
		if m.refreshing {
			return m, nil
		}
		if p, ok := m.current(); ok {
			m.clearMessages()
			m.refreshing = true
			return m, refreshBalance(m.ctx, m.manager, p.ID)
		}
		return m, nil

	case "R":
		if m.refreshing || len(m.providers) == 0 {
			return m, nil
		}
		m.clearMessages()
		m.refreshing = true
		return m, refreshAllBalances(m.ctx, m.manager)

	case "a":
		m.initAddForm()
		return m, textinput.Blink

	case "x":
		if _, ok := m.current(); ok {
			m.clearMessages()
			m.viewState = ViewRemove
		}
		return m, nil

	case "?":
		m.viewState = ViewHelp
		return m, nil
	}

	return m, nil
}

// moveUp moves cursor up
func (m *Model) moveUp() {
	if m.cursor > 0 {
		m.cursor--
		m.adjustScrollOffset()
	}
}

// moveDown moves cursor down
func (m *Model) moveDown() {
	if m.cursor < len(m.providers)-1 {
		m.cursor++
		m.adjustScrollOffset()
	}
}

// moveToTop moves cursor to top
func (m *Model) moveToTop() {
	m.cursor = 0
	m.adjustScrollOffset()
}

// moveToBottom moves cursor to bottom
func (m *Model) moveToBottom() {
	if len(m.providers) > 0 {
		m.cursor = len(m.providers) - 1
		m.adjustScrollOffset()
	}
}

// getVisibleListHeight returns the number of providers that fit on screen.
// Each provider takes two lines: name and balance.
func (m *Model) getVisibleListHeight() int {
	// title, separator, blank, blank, separator, status bar, message line
	const chromeLines = 7
	available := (m.height - chromeLines) / 2
	if available < 1 {
		available = 1
	}
	return available
}

// adjustScrollOffset adjusts the scroll offset to keep cursor visible
func (m *Model) adjustScrollOffset() {
	visible := m.getVisibleListHeight()

	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	if m.cursor >= m.scrollOffset+visible {
		m.scrollOffset = m.cursor - visible + 1
	}

	maxOffset := len(m.providers) - visible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if m.scrollOffset > maxOffset {
		m.scrollOffset = maxOffset
	}
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}

// View renders the UI
func (m Model) View() string {
	switch m.viewState {
	case ViewAdd:
		return RenderForm(m.formInputs, m.formFocus, "Add provider", m.errorMsg)
	case ViewRemove:
		return m.RenderRemoveConfirm()
	case ViewHelp:
		return m.RenderHelpView()
	default:
		return m.RenderMainView()
	}
}

// handleFormViewKeys handles keyboard input in the add form
func (m Model) handleFormViewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.viewState = ViewMain
		m.formInputs = []textinput.Model{}
		m.formFocus = 0
		m.errorMsg = ""
		return m, nil

	case "tab", "down":
		m.formFocus = NextFormField(m.formInputs, m.formFocus)
		return m, nil

	case "shift+tab", "up":
		m.formFocus = PrevFormField(m.formInputs, m.formFocus)
		return m, nil

	case "enter":
		// Enter on the first field moves on, on the last it submits
		if m.formFocus < len(m.formInputs)-1 {
			m.formFocus = NextFormField(m.formInputs, m.formFocus)
			return m, nil
		}
		data := GetFormData(m.formInputs)
		if err := data.Validate(); err != nil {
			m.errorMsg = err.Error()
			return m, nil
		}
		m.errorMsg = ""
		return m, addProvider(m.manager, data)
	}

	var cmd tea.Cmd
	m.formInputs[m.formFocus], cmd = m.formInputs[m.formFocus].Update(msg)
	return m, cmd
}

// initAddForm initializes the form for adding a new provider
func (m *Model) initAddForm() {
	m.viewState = ViewAdd
	m.formInputs = FormInputs()
	m.formFocus = FormFieldName
	m.clearMessages()
}

// handleRemoveViewKeys handles keyboard input in the remove confirmation view
func (m Model) handleRemoveViewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "y", "Y":
		if p, ok := m.current(); ok {
			return m, removeProvider(m.manager, p)
		}
		m.viewState = ViewMain
		return m, nil

	case "n", "N", "esc", "q":
		m.viewState = ViewMain
		return m, nil
	}

	return m, nil
}

// handleHelpViewKeys handles keyboard input in help view
func (m Model) handleHelpViewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "q", "?":
		m.viewState = ViewMain
	}
	return m, nil
}

// loadProviders creates a command to load the provider list
func loadProviders(cm *config.Manager) tea.Cmd {
	return func() tea.Msg {
		providers, err := cm.List()
		if err != nil {
			return ProvidersLoadedMsg{Err: err}
		}
		active, err := cm.GetActive()
		if err != nil {
			return ProvidersLoadedMsg{Err: err}
		}
		msg := ProvidersLoadedMsg{Providers: providers}
		if active != nil {
			msg.ActiveID = active.ID
		}
		return msg
	}
}

func switchProvider(cm *config.Manager, id string) tea.Cmd {
	return func() tea.Msg {
		p, err := cm.Switch(id)
		return ProviderSwitchedMsg{Provider: p, Err: err}
	}
}

func disableProvider(cm *config.Manager) tea.Cmd {
	return func() tea.Msg {
		return ProviderDisabledMsg{Err: cm.Disable()}
	}
}

func addProvider(cm *config.Manager, data FormData) tea.Cmd {
	return func() tea.Msg {
		p, err := cm.Add(data.Name, data.APIKey)
		return ProviderAddedMsg{Provider: p, Err: err}
	}
}

func removeProvider(cm *config.Manager, p models.Provider) tea.Cmd {
	return func() tea.Msg {
		return ProviderRemovedMsg{Name: p.Name, Err: cm.Remove(p.ID)}
	}
}

func refreshBalance(ctx context.Context, cm *config.Manager, id string) tea.Cmd {
	return func() tea.Msg {
		p, err := cm.RefreshBalance(ctx, id)
		return BalanceRefreshedMsg{Provider: p, Err: err}
	}
}

func refreshAllBalances(ctx context.Context, cm *config.Manager) tea.Cmd {
	return func() tea.Msg {
		providers, err := cm.RefreshAllBalances(ctx)
		return BalancesRefreshedMsg{Providers: providers, Err: err}
	}
}
