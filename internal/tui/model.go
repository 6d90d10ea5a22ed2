package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fleety/fleetyctl/internal/api"
	"github.com/fleety/fleetyctl/internal/dashboard"
	"github.com/fleety/fleetyctl/internal/org"
)

// manageMode tracks what the manage overlay is currently doing
type manageMode int

const (
	// manageBrowse moves the cursor over the roster
	manageBrowse manageMode = iota
	// manageSearch types into the filter input
	manageSearch
	// manageAdd types a username to invite
	manageAdd
	// manageConfirm awaits a yes/no on a pending removal
	manageConfirm
)

// Model represents the dashboard TUI state. Screen transitions are owned by
// the controller; the model mirrors them and layers the manage overlay on
// top.
type Model struct {
	ctrl *dashboard.Controller

	// Login / register forms
	loginInputs    []textinput.Model
	registerInputs []textinput.Model
	focus          int
	formError      string

	// Dashboard state
	memberships   []api.OrgMembership
	membershipErr string
	cursor        int // 0 = global, i>0 = memberships[i-1]
	notice        string

	// Manage overlay state
	manager      *org.Manager
	manageOpen   bool
	mode         manageMode
	searchInput  textinput.Model
	addInput     textinput.Model
	addAdmin     bool
	rosterCursor int
	pending      org.RemovalRequest
	manageError  string

	// UI state
	busy     bool
	spin     spinner.Model
	width    int
	height   int
	ready    bool
	quitting bool

	styles Styles
}

// Styles contains lipgloss styles for the TUI
type Styles struct {
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Status      lipgloss.Style
	Error       lipgloss.Style
	Success     lipgloss.Style
	Warning     lipgloss.Style
	Muted       lipgloss.Style
	Border      lipgloss.Style
	Highlighted lipgloss.Style
	Help        lipgloss.Style
	Key         lipgloss.Style
	KeyDesc     lipgloss.Style
}

// NewModel creates a TUI model around an already started controller
func NewModel(ctrl *dashboard.Controller) Model {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword

	regUsername := textinput.New()
	regUsername.Placeholder = "username"
	regUsername.CharLimit = 64
	regUsername.Focus()

	regEmail := textinput.New()
	regEmail.Placeholder = "email"
	regEmail.CharLimit = 128

	regPassword := textinput.New()
	regPassword.Placeholder = "password"
	regPassword.CharLimit = 128
	regPassword.EchoMode = textinput.EchoPassword

	search := textinput.New()
	search.Placeholder = "filter by username or email"
	search.CharLimit = 128

	add := textinput.New()
	add.Placeholder = "username to add"
	add.CharLimit = 64

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctrl:           ctrl,
		loginInputs:    []textinput.Model{username, password},
		registerInputs: []textinput.Model{regUsername, regEmail, regPassword},
		searchInput:    search,
		addInput:       add,
		spin:           sp,
		styles:         DefaultStyles(),
	}
	m.syncMemberships()
	return m
}

// DefaultStyles returns the default lipgloss styles
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")). // Purple
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")). // Gray
			MarginBottom(1),
		Status: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")), // Cyan
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")), // Red
		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46")), // Green
		Warning: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("226")), // Yellow
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")), // Gray
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")). // Purple
			Padding(1, 2),
		Highlighted: lipgloss.NewStyle().
			Background(lipgloss.Color("63")).  // Purple
			Foreground(lipgloss.Color("230")). // Light yellow
			Bold(true).
			Padding(0, 1),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")). // Gray
			MarginTop(1),
		Key: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")), // Purple
		KeyDesc: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")), // Gray
	}
}

// Init initializes the TUI model (required by Bubble Tea)
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model state (required by Bubble Tea)
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case SessionResultMsg:
		m.busy = false
		if msg.Err != nil {
			m.formError = msg.Err.Error()
			return m, nil
		}
		m.formError = ""
		m.resetForms()
		m.syncMemberships()
		return m, nil

	case MembershipsMsg:
		m.busy = false
		m.syncMemberships()
		if m.cursor > len(m.memberships) {
			m.cursor = 0
		}
		return m, nil

	case ManageOpenedMsg:
		m.busy = false
		if msg.Err != nil {
			m.notice = msg.Err.Error()
			return m, nil
		}
		m.manager = msg.Manager
		m.manageOpen = true
		m.mode = manageBrowse
		m.rosterCursor = 0
		m.manageError = ""
		m.searchInput.SetValue("")
		return m, nil

	case RosterChangedMsg:
		m.busy = false
		if msg.Err != nil {
			m.manageError = msg.Err.Error()
			return m, nil
		}
		m.manageError = ""
		if m.rosterCursor >= len(m.visibleRoster()) {
			m.rosterCursor = 0
		}
		return m, nil
	}

	return m, nil
}

// View renders the TUI (required by Bubble Tea)
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.quitting {
		return ""
	}

	if m.manageOpen {
		return m.renderManage()
	}

	switch m.ctrl.View() {
	case dashboard.ViewLogin:
		return m.renderLogin()
	case dashboard.ViewRegister:
		return m.renderRegister()
	case dashboard.ViewDashboard:
		return m.renderDashboard()
	default:
		return m.renderHome()
	}
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Ctrl+C always quits
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.manageOpen {
		return m.handleManageKey(msg)
	}

	switch m.ctrl.View() {
	case dashboard.ViewLogin:
		return m.handleLoginKey(msg)
	case dashboard.ViewRegister:
		return m.handleRegisterKey(msg)
	case dashboard.ViewDashboard:
		return m.handleDashboardKey(msg)
	default:
		return m.handleHomeKey(msg)
	}
}

func (m Model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit
	case "l":
		m.resetForms()
		m.ctrl.Navigate(dashboard.ViewLogin)
	case "r":
		m.resetForms()
		m.ctrl.Navigate(dashboard.ViewRegister)
	}
	return m, nil
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.resetForms()
		m.ctrl.Navigate(dashboard.ViewHome)
		return m, nil
	case "tab", "down":
		return m.cycleFocus(m.loginInputs, 1), nil
	case "shift+tab", "up":
		return m.cycleFocus(m.loginInputs, -1), nil
	case "enter":
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.formError = ""
		return m, tea.Batch(m.loginCmd(), m.spin.Tick)
	}
	var cmd tea.Cmd
	m.loginInputs[m.focus], cmd = m.loginInputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) handleRegisterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.resetForms()
		m.ctrl.Navigate(dashboard.ViewHome)
		return m, nil
	case "tab", "down":
		return m.cycleFocus(m.registerInputs, 1), nil
	case "shift+tab", "up":
		return m.cycleFocus(m.registerInputs, -1), nil
	case "enter":
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.formError = ""
		return m, tea.Batch(m.registerCmd(), m.spin.Tick)
	}
	var cmd tea.Cmd
	m.registerInputs[m.focus], cmd = m.registerInputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.memberships) {
			m.cursor++
		}

	case "enter":
		if m.cursor == 0 {
			m.ctrl.SelectOrg("")
		} else {
			m.ctrl.SelectOrg(m.memberships[m.cursor-1].Organisation.ID)
		}
		m.notice = ""

	case "g":
		m.cursor = 0
		m.ctrl.SelectOrg("")
		m.notice = ""

	case "r":
		if m.busy {
			return m, nil
		}
		m.busy = true
		return m, tea.Batch(m.refreshCmd(), m.spin.Tick)

	case "m":
		if m.busy {
			return m, nil
		}
		if !m.ctrl.CanManageOrg() {
			m.notice = "select an organisation you administer first"
			return m, nil
		}
		m.busy = true
		return m, tea.Batch(m.openManageCmd(), m.spin.Tick)

	case "l":
		m.ctrl.Logout()
		m.memberships = nil
		m.membershipErr = ""
		m.cursor = 0
		m.notice = ""
		m.resetForms()
	}
	return m, nil
}

func (m Model) handleManageKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case manageSearch:
		switch msg.String() {
		case "esc":
			m.searchInput.SetValue("")
			m.searchInput.Blur()
			m.mode = manageBrowse
			m.rosterCursor = 0
			return m, nil
		case "enter":
			m.searchInput.Blur()
			m.mode = manageBrowse
			m.rosterCursor = 0
			return m, nil
		}
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd

	case manageAdd:
		switch msg.String() {
		case "esc":
			m.addInput.SetValue("")
			m.addInput.Blur()
			m.addAdmin = false
			m.mode = manageBrowse
			return m, nil
		case "tab":
			m.addAdmin = !m.addAdmin
			return m, nil
		case "enter":
			if m.busy {
				return m, nil
			}
			m.busy = true
			username := m.addInput.Value()
			makeAdmin := m.addAdmin
			m.addInput.SetValue("")
			m.addInput.Blur()
			m.addAdmin = false
			m.mode = manageBrowse
			return m, tea.Batch(m.addMemberCmd(username, makeAdmin), m.spin.Tick)
		}
		var cmd tea.Cmd
		m.addInput, cmd = m.addInput.Update(msg)
		return m, cmd

	case manageConfirm:
		switch msg.String() {
		case "y", "enter":
			if m.busy {
				return m, nil
			}
			m.busy = true
			m.mode = manageBrowse
			return m, tea.Batch(m.confirmRemovalCmd(m.pending.Token), m.spin.Tick)
		case "n", "esc":
			m.manager.CancelRemoval(m.pending.Token)
			m.pending = org.RemovalRequest{}
			m.mode = manageBrowse
		}
		return m, nil
	}

	// manageBrowse
	switch msg.String() {
	case "esc", "q":
		m.manageOpen = false
		m.manager = nil
		m.manageError = ""
		return m, nil

	case "up", "k":
		if m.rosterCursor > 0 {
			m.rosterCursor--
		}

	case "down", "j":
		if m.rosterCursor < len(m.visibleRoster())-1 {
			m.rosterCursor++
		}

	case "/":
		m.mode = manageSearch
		m.searchInput.Focus()
		return m, textinput.Blink

	case "a":
		m.mode = manageAdd
		m.addInput.Focus()
		return m, textinput.Blink

	case "t":
		if m.busy {
			return m, nil
		}
		member, ok := m.selectedMember()
		if !ok || m.isSelf(member) {
			return m, nil
		}
		m.busy = true
		return m, tea.Batch(m.setAdminCmd(member.User.ID, !member.IsOrgAdmin), m.spin.Tick)

	case "d":
		member, ok := m.selectedMember()
		if !ok || m.isSelf(member) {
			return m, nil
		}
		req, err := m.manager.RequestRemoval(m.manageOrgID(), member)
		if err != nil {
			m.manageError = err.Error()
			return m, nil
		}
		m.pending = req
		m.mode = manageConfirm

	case "r":
		if m.busy {
			return m, nil
		}
		m.busy = true
		return m, tea.Batch(m.refreshRosterCmd(), m.spin.Tick)
	}
	return m, nil
}

// Commands

func (m Model) loginCmd() tea.Cmd {
	ctrl := m.ctrl
	username := m.loginInputs[0].Value()
	password := m.loginInputs[1].Value()
	return func() tea.Msg {
		return SessionResultMsg{Err: ctrl.Login(context.Background(), username, password)}
	}
}

func (m Model) registerCmd() tea.Cmd {
	ctrl := m.ctrl
	username := m.registerInputs[0].Value()
	email := m.registerInputs[1].Value()
	password := m.registerInputs[2].Value()
	return func() tea.Msg {
		return SessionResultMsg{Err: ctrl.Register(context.Background(), username, email, password)}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return MembershipsMsg{Err: ctrl.RefreshMemberships(context.Background())}
	}
}

func (m Model) openManageCmd() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		mgr, err := ctrl.OpenManageOrg(context.Background())
		return ManageOpenedMsg{Manager: mgr, Err: err}
	}
}

func (m Model) addMemberCmd(username string, makeAdmin bool) tea.Cmd {
	mgr := m.manager
	orgID := m.manageOrgID()
	return func() tea.Msg {
		return RosterChangedMsg{Err: mgr.AddMember(context.Background(), orgID, username, makeAdmin)}
	}
}

func (m Model) confirmRemovalCmd(token string) tea.Cmd {
	mgr := m.manager
	return func() tea.Msg {
		return RosterChangedMsg{Err: mgr.ConfirmRemoval(context.Background(), token)}
	}
}

func (m Model) setAdminCmd(userID string, isAdmin bool) tea.Cmd {
	mgr := m.manager
	orgID := m.manageOrgID()
	return func() tea.Msg {
		return RosterChangedMsg{Err: mgr.SetAdmin(context.Background(), orgID, userID, isAdmin)}
	}
}

func (m Model) refreshRosterCmd() tea.Cmd {
	mgr := m.manager
	orgID := m.manageOrgID()
	return func() tea.Msg {
		return RosterChangedMsg{Err: mgr.Refresh(context.Background(), orgID)}
	}
}

// Messages emitted by the commands above

// SessionResultMsg carries the outcome of a login or register attempt
type SessionResultMsg struct {
	Err error
}

// MembershipsMsg signals that the membership list was refreshed
type MembershipsMsg struct {
	Err error
}

// ManageOpenedMsg carries a loaded roster manager for the active org
type ManageOpenedMsg struct {
	Manager *org.Manager
	Err     error
}

// RosterChangedMsg signals that a roster mutation finished
type RosterChangedMsg struct {
	Err error
}

// Helper functions

func (m Model) cycleFocus(inputs []textinput.Model, dir int) Model {
	inputs[m.focus].Blur()
	m.focus = (m.focus + dir + len(inputs)) % len(inputs)
	inputs[m.focus].Focus()
	return m
}

func (m *Model) resetForms() {
	for i := range m.loginInputs {
		m.loginInputs[i].SetValue("")
		m.loginInputs[i].Blur()
	}
	for i := range m.registerInputs {
		m.registerInputs[i].SetValue("")
		m.registerInputs[i].Blur()
	}
	m.loginInputs[0].Focus()
	m.registerInputs[0].Focus()
	m.focus = 0
	m.formError = ""
}

func (m *Model) syncMemberships() {
	list, err := m.ctrl.Memberships()
	m.memberships = list
	if err != nil {
		m.membershipErr = err.Error()
	} else {
		m.membershipErr = ""
	}
}

func (m Model) visibleRoster() []api.Member {
	if m.manager == nil {
		return nil
	}
	return org.Search(m.manager.Roster(), m.searchInput.Value())
}

func (m Model) selectedMember() (api.Member, bool) {
	visible := m.visibleRoster()
	if m.rosterCursor < 0 || m.rosterCursor >= len(visible) {
		return api.Member{}, false
	}
	return visible[m.rosterCursor], true
}

func (m Model) manageOrgID() string {
	return m.ctrl.ActiveScope().OrgID()
}

// isSelf reports whether a roster entry belongs to the acting user. Role
// toggles and removal are disabled on the viewer's own row.
func (m Model) isSelf(member api.Member) bool {
	user := m.ctrl.Sessions().User()
	return user != nil && user.ID == member.User.ID
}
