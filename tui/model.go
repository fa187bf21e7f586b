package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	bridgemanager "github.com/devgianlu/go-bridgemanager"
	"github.com/devgianlu/go-bridgemanager/apiclient"
	"github.com/devgianlu/go-bridgemanager/config"
	"github.com/devgianlu/go-bridgemanager/login"
	"github.com/devgianlu/go-bridgemanager/session"
	"github.com/devgianlu/go-bridgemanager/status"
)

type screen int

const (
	screenLogin screen = iota
	screenStarting
	screenBridges
)

type Options struct {
	Log bridgemanager.Logger
	// Api is the client of the manager API root.
	Api      *apiclient.Client
	Sessions *session.Manager
	Registry Registry

	// Session is the session restored from a previous run, nil shows the login form.
	Session *session.Session
}

// Model is the root bubbletea model: the manager login form followed by one tab per enabled bridge.
type Model struct {
	log      bridgemanager.Logger
	api      *apiclient.Client
	sessions *session.Manager
	registry Registry

	sess *session.Session
	cfg  config.Config

	screen    screen
	busy      bool
	err       error
	userInput textinput.Model
	passInput textinput.Model
	passFocus bool

	tabs   []bridgemanager.BridgeId
	active int
	views  map[bridgemanager.BridgeId]*status.View

	formBridge bridgemanager.BridgeId
	formStep   login.Step
	fields     []login.Field
	inputs     []textinput.Model
	focus      int

	showInternal bool
	// notice is an error of the active bridge that isn't kept by its view, e.g. a rejected field.
	notice error

	spinner spinner.Model
	theme   theme
	width   int
	height  int
}

type sessionMsg struct {
	sess *session.Session
	err  error
}

type configMsg struct {
	cfg config.Config
	err error
}

// viewMsg is sent when a request of a bridge view completes, the result is read from the view.
type viewMsg struct {
	id  bridgemanager.BridgeId
	err error
}

type loggedOutMsg struct {
	err error
}

func NewModel(opts Options) Model {
	userInput := textinput.New()
	userInput.Prompt = "User ID  "
	userInput.Placeholder = "@user:example.com"
	userInput.Focus()

	passInput := textinput.New()
	passInput.Prompt = "Password "
	passInput.Placeholder = "Password"
	passInput.EchoMode = textinput.EchoPassword
	passInput.EchoCharacter = '•'

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		log:       opts.Log,
		api:       opts.Api,
		sessions:  opts.Sessions,
		registry:  opts.Registry,
		sess:      opts.Session,
		screen:    screenLogin,
		userInput: userInput,
		passInput: passInput,
		views:     map[bridgemanager.BridgeId]*status.View{},
		spinner:   sp,
		theme:     newTheme(),
	}
	m.spinner.Style = m.theme.success

	if m.sess != nil {
		m.screen = screenStarting
		m.busy = true
	}

	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, textinput.Blink}
	if m.sess != nil {
		cmds = append(cmds, m.configCmd())
	}

	return tea.Batch(cmds...)
}

func (m Model) loginCmd(userId, password string) tea.Cmd {
	sessions := m.sessions
	return func() tea.Msg {
		sess, err := sessions.Login(context.Background(), userId, password)
		return sessionMsg{sess: sess, err: err}
	}
}

func (m Model) configCmd() tea.Cmd {
	log, api, sess := m.log, m.api, m.sess
	return func() tea.Msg {
		cfg, err := config.Fetch(context.Background(), log, api, sess)
		return configMsg{cfg: cfg, err: err}
	}
}

func (m Model) logoutCmd() tea.Cmd {
	sessions, sess := m.sessions, m.sess
	return func() tea.Msg {
		return loggedOutMsg{err: sessions.Logout(context.Background(), sess)}
	}
}

func mountCmd(id bridgemanager.BridgeId, view *status.View) tea.Cmd {
	return func() tea.Msg {
		return viewMsg{id: id, err: view.Mount(context.Background())}
	}
}

func refreshCmd(id bridgemanager.BridgeId, view *status.View) tea.Cmd {
	return func() tea.Msg {
		return viewMsg{id: id, err: view.Refresh(context.Background())}
	}
}

func bridgeLogoutCmd(id bridgemanager.BridgeId, view *status.View) tea.Cmd {
	return func() tea.Msg {
		return viewMsg{id: id, err: view.Logout(context.Background())}
	}
}

func loginMachineCmd(id bridgemanager.BridgeId, view *status.View) tea.Cmd {
	return func() tea.Msg {
		_, err := view.LoginMachine(context.Background())
		return viewMsg{id: id, err: err}
	}
}

func submitCmd(id bridgemanager.BridgeId, machine *login.Machine) tea.Cmd {
	return func() tea.Msg {
		return viewMsg{id: id, err: machine.Submit(context.Background())}
	}
}

func (m Model) activeBridge() (bridgemanager.BridgeId, bool) {
	if m.screen != screenBridges || len(m.tabs) == 0 {
		return "", false
	}

	return m.tabs[m.active], true
}

// activeView returns the view of the selected bridge, nil if the bridge is not supported.
func (m Model) activeView() *status.View {
	id, ok := m.activeBridge()
	if !ok {
		return nil
	}

	return m.views[id]
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.syncForm()
		return m, cmd
	case sessionMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.sess = msg.sess
		m.err = nil
		m.passInput.Reset()
		m.screen = screenStarting
		m.busy = true
		return m, m.configCmd()
	case configMsg:
		return m.handleConfig(msg)
	case viewMsg:
		return m.handleView(msg)
	case loggedOutMsg:
		if msg.err != nil {
			m.log.WithError(msg.err).Warnf("manager logout did not complete cleanly")
		}

		return m.reset(), textinput.Blink
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleConfig(msg configMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		m.err = msg.err

		var apiErr *apiclient.ApiError
		if errors.As(msg.err, &apiErr) && apiErr.Unauthorized() {
			m.log.Warnf("stored manager session was rejected, signing out")
			m.err = errors.New("your session has expired, please sign in again")
			return m, m.logoutCmd()
		}

		return m, nil
	}

	m.err = nil
	m.cfg = msg.cfg
	m.screen = screenBridges
	m.tabs = m.cfg.EnabledBridges()
	m.active = 0

	for _, id := range m.tabs {
		factory, ok := m.registry[id]
		if !ok {
			continue
		}

		m.views[id] = status.NewView(m.log, factory(m.log, m.api), m.sess, m.cfg)
	}

	return m, m.mountActive()
}

func (m Model) mountActive() tea.Cmd {
	id, ok := m.activeBridge()
	if !ok {
		return nil
	}

	view := m.views[id]
	if view == nil {
		return nil
	}

	return mountCmd(id, view)
}

func (m Model) handleView(msg viewMsg) (tea.Model, tea.Cmd) {
	var apiErr *apiclient.ApiError
	if errors.As(msg.err, &apiErr) && apiErr.Unauthorized() {
		m.err = errors.New("the manager rejected the session, press ctrl+x to sign in again")
	}

	id, ok := m.activeBridge()
	if !ok || id != msg.id {
		return m, nil
	}

	view := m.views[id]
	if view == nil {
		return m, nil
	}

	var validationErr *login.ValidationError
	if errors.As(msg.err, &validationErr) {
		m.notice = msg.err
	} else {
		m.notice = nil
	}

	m.syncForm()

	if errors.Is(msg.err, status.ErrNotMounted) {
		m.busy = false
		return m, nil
	}

	snap := view.Snapshot()
	if snap.State == status.StateSignedOut && view.Machine() == nil {
		if !m.busy {
			m.busy = true
			return m, loginMachineCmd(id, view)
		}

		// creating the login flow failed
		m.notice = msg.err
	}

	m.busy = false
	return m, nil
}

// syncForm rebuilds the inputs when the active login flow moved to another step.
func (m *Model) syncForm() {
	view := m.activeView()
	if view == nil {
		m.clearForm()
		return
	}

	machine := view.Machine()
	if machine == nil {
		m.clearForm()
		return
	}

	snap := machine.Snapshot()
	if m.formBridge == view.Bridge().Id() && m.formStep == snap.Step && len(m.inputs) == len(snap.Spec.Fields) {
		return
	}

	m.formBridge = view.Bridge().Id()
	m.formStep = snap.Step
	m.fields = snap.Spec.Fields
	m.inputs = make([]textinput.Model, len(m.fields))
	m.focus = 0

	for i, field := range m.fields {
		input := textinput.New()
		input.Prompt = "› "
		input.Placeholder = field.Label
		input.SetValue(snap.Values[field.Name])
		if field.Kind == login.FieldPassword {
			input.EchoMode = textinput.EchoPassword
			input.EchoCharacter = '•'
		}
		if field.Kind == login.FieldNumber {
			input.Validate = validateDigits
		}
		if i == 0 {
			input.Focus()
		}

		m.inputs[i] = input
	}
}

func (m *Model) clearForm() {
	m.formBridge = ""
	m.formStep = ""
	m.fields = nil
	m.inputs = nil
	m.focus = 0
}

func validateDigits(value string) error {
	for _, r := range value {
		if r < '0' || r > '9' {
			return errors.New("only digits are allowed")
		}
	}

	return nil
}

func (m *Model) setFocus(idx int) {
	if len(m.inputs) == 0 {
		return
	}

	idx = (idx + len(m.inputs)) % len(m.inputs)
	for i := range m.inputs {
		if i == idx {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}

	m.focus = idx
}

func (m Model) switchTab(delta int) (tea.Model, tea.Cmd) {
	if len(m.tabs) < 2 {
		return m, nil
	}

	if view := m.activeView(); view != nil {
		view.Unmount()
	}

	m.active = (m.active + delta + len(m.tabs)) % len(m.tabs)
	m.busy = false
	m.notice = nil
	m.clearForm()
	return m, m.mountActive()
}

// reset drops the session and every bridge view, going back to the login form.
func (m Model) reset() Model {
	for _, view := range m.views {
		view.Unmount()
	}

	m.sess = nil
	m.cfg = config.Config{}
	m.screen = screenLogin
	m.busy = false
	m.tabs = nil
	m.active = 0
	m.views = map[bridgemanager.BridgeId]*status.View{}
	m.showInternal = false
	m.notice = nil
	m.clearForm()

	m.passFocus = false
	m.passInput.Reset()
	m.passInput.Blur()
	m.userInput.Focus()
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.screen {
	case screenLogin:
		return m.handleLoginKey(msg)
	case screenStarting:
		switch msg.String() {
		case "enter":
			if !m.busy {
				m.busy = true
				m.err = nil
				return m, m.configCmd()
			}
		case "ctrl+x":
			return m, m.logoutCmd()
		}

		return m, nil
	default:
		return m.handleBridgeKey(msg)
	}
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		m.passFocus = !m.passFocus
		if m.passFocus {
			m.userInput.Blur()
			return m, m.passInput.Focus()
		}

		m.passInput.Blur()
		return m, m.userInput.Focus()
	case "enter":
		if m.busy {
			return m, nil
		} else if !m.passFocus && len(m.passInput.Value()) == 0 {
			m.passFocus = true
			m.userInput.Blur()
			return m, m.passInput.Focus()
		} else if len(m.userInput.Value()) == 0 || len(m.passInput.Value()) == 0 {
			return m, nil
		}

		m.busy = true
		m.err = nil
		return m, m.loginCmd(m.userInput.Value(), m.passInput.Value())
	}

	var cmd tea.Cmd
	if m.passFocus {
		m.passInput, cmd = m.passInput.Update(msg)
	} else {
		m.userInput, cmd = m.userInput.Update(msg)
	}

	return m, cmd
}

func (m Model) handleBridgeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id, _ := m.activeBridge()
	view := m.activeView()

	switch msg.String() {
	case "tab":
		return m.switchTab(1)
	case "shift+tab":
		return m.switchTab(-1)
	case "ctrl+x":
		return m, m.logoutCmd()
	case "ctrl+t":
		if m.cfg.InternalBridgeInfo() {
			m.showInternal = !m.showInternal
		}

		return m, nil
	case "ctrl+r":
		if view != nil {
			return m, refreshCmd(id, view)
		}

		return m, nil
	case "ctrl+o":
		if view != nil && view.Snapshot().State == status.StateSignedIn {
			return m, bridgeLogoutCmd(id, view)
		}

		return m, nil
	}

	if view == nil {
		return m, nil
	}

	machine := view.Machine()
	if machine == nil {
		return m, nil
	}

	switch msg.String() {
	case "ctrl+b":
		snap := machine.Snapshot()
		if len(snap.Spec.Alternatives) == 0 {
			return m, nil
		}

		if err := machine.Switch(snap.Spec.Alternatives[0].Step); err != nil {
			m.log.WithError(err).Debugf("cannot switch login method")
		}

		m.syncForm()
		return m, nil
	case "up":
		m.setFocus(m.focus - 1)
		return m, nil
	case "down":
		m.setFocus(m.focus + 1)
		return m, nil
	case "enter":
		if machine.CanSubmit() {
			return m, submitCmd(id, machine)
		}

		m.setFocus(m.focus + 1)
		return m, nil
	}

	if len(m.inputs) == 0 || machine.Loading() {
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if err := machine.SetValue(m.fields[m.focus].Name, m.inputs[m.focus].Value()); err != nil {
		m.log.WithError(err).Debugf("failed storing login field")
	}

	return m, cmd
}
