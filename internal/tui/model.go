// Package tui is the terminal front-end: a workflow canvas, an execution
// trace, a chat panel and a catalog sidebar around one session.Controller.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"zavaflow/internal/backend"
	"zavaflow/internal/catalog"
	"zavaflow/internal/session"
)

const (
	maxLogLines   = 50
	healthTimeout = 5 * time.Second
	timerBuffer   = 16
)

// HealthChecker reports backend liveness. *backend.Client satisfies it.
type HealthChecker interface {
	Health(ctx context.Context) (backend.HealthResponse, error)
}

type Options struct {
	Controller *session.Controller
	Exchanger  session.Exchanger
	Health     HealthChecker
	Catalog    *catalog.Catalog
	Timeout    time.Duration
	BackendURL string
	Logger     zerolog.Logger
}

type focusZone int

const (
	focusInput focusZone = iota
	focusSidebar
)

type exchangeDoneMsg struct {
	event session.Event
}

type timerMsg struct {
	fired session.TimerFired
}

type healthMsg struct {
	health backend.HealthResponse
	err    error
}

type sidebarItem struct {
	agentID string
	kbID    string
	label   string
}

type Model struct {
	ctrl      *session.Controller
	exchanger session.Exchanger
	health    HealthChecker
	cat       *catalog.Catalog
	timeout   time.Duration
	log       zerolog.Logger
	sched     *session.Scheduler
	inbound   chan tea.Msg
	cancel    context.CancelFunc

	state        session.State
	backendURL   string
	healthLine   string
	healthOK     bool
	statusLine   string
	logs         []string
	focus        focusZone
	sidebarItems []sidebarItem
	sidebarIndex int

	width  int
	height int

	input     textinput.Model
	chat      viewport.Model
	traceView viewport.Model
	spinner   spinner.Model

	theme uiTheme
}

func New(opts Options) Model {
	input := textinput.New()
	input.Prompt = "❯ "
	input.CharLimit = 2000
	input.Placeholder = "Ask a question..."
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b"))

	chat := viewport.New(0, 0)
	chat.MouseWheelEnabled = true
	chat.MouseWheelDelta = 3
	traceView := viewport.New(0, 0)
	traceView.MouseWheelEnabled = true

	cat := opts.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	ctrl := opts.Controller
	if ctrl == nil {
		ctrl = session.New(session.WithLogger(opts.Logger))
	}

	inbound := make(chan tea.Msg, timerBuffer)
	sched := session.NewScheduler(func(fired session.TimerFired) {
		inbound <- timerMsg{fired: fired}
	}, opts.Logger)

	items := make([]sidebarItem, 0, 8)
	for _, agent := range cat.Agents() {
		items = append(items, sidebarItem{agentID: agent.ID, label: agent.Name})
	}
	for _, kb := range cat.KnowledgeBases() {
		items = append(items, sidebarItem{kbID: kb.ID, label: kb.ID})
	}

	m := Model{
		ctrl:         ctrl,
		exchanger:    opts.Exchanger,
		health:       opts.Health,
		cat:          cat,
		timeout:      opts.Timeout,
		log:          opts.Logger,
		sched:        sched,
		inbound:      inbound,
		backendURL:   opts.BackendURL,
		healthLine:   "checking backend...",
		statusLine:   "ready",
		logs:         []string{},
		sidebarItems: items,
		input:        input,
		chat:         chat,
		traceView:    traceView,
		spinner:      sp,
		theme:        newTheme(),
	}
	m.state = ctrl.State()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		waitInbound(m.inbound),
		m.healthCmd(),
	)
}

// waitInbound pumps scheduler deliveries into the program one at a time.
func waitInbound(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

func (m Model) healthCmd() tea.Cmd {
	checker := m.health
	if checker == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
		defer cancel()
		health, err := checker.Health(ctx)
		return healthMsg{health: health, err: err}
	}
}

func (m *Model) exchangeCmd(ef session.Exchange) tea.Cmd {
	exchanger := m.exchanger
	timeout := m.timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	m.cancel = cancel
	return func() tea.Msg {
		defer cancel()
		if exchanger == nil {
			return exchangeDoneMsg{event: session.ExchangeFailed{Generation: ef.Generation, Err: fmt.Errorf("no backend configured")}}
		}
		return exchangeDoneMsg{event: session.Outcome(ctx, exchanger, ef)}
	}
}

// apply feeds one event to the controller and runs the resulting effects.
func (m *Model) apply(ev session.Event) tea.Cmd {
	effects := m.ctrl.Apply(ev)
	var cmds []tea.Cmd
	for _, ef := range effects {
		switch ef := ef.(type) {
		case session.CancelTimers:
			m.sched.CancelBefore(ef.Generation)
		case session.Schedule:
			m.sched.Schedule(ef)
		case session.Exchange:
			cmds = append(cmds, m.exchangeCmd(ef))
		}
	}
	m.state = m.ctrl.State()
	m.syncInput()
	m.renderPanes()
	return tea.Batch(cmds...)
}

func (m *Model) submit(text string) tea.Cmd {
	if strings.TrimSpace(text) == "" || m.state.Busy {
		return nil
	}
	cmd := m.apply(session.Submit{Text: text})
	m.input.Reset()
	m.statusLine = "query sent"
	m.appendLog("submitted: " + compactSingleLine(text, 80))
	return cmd
}

func (m *Model) cancelQuery() {
	if !m.state.Busy {
		return
	}
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.apply(session.Cancel{})
	m.statusLine = "query cancelled"
	m.appendLog("query cancelled")
}

// syncInput disables the input while a query is in flight.
func (m *Model) syncInput() {
	if m.state.Busy || m.focus != focusInput {
		m.input.Blur()
		return
	}
	m.input.Focus()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case healthMsg:
		if msg.err != nil {
			m.healthOK = false
			m.healthLine = "backend unreachable"
			m.logError(msg.err)
			m.log.Warn().Err(msg.err).Str("backend", m.backendURL).Msg("health check failed")
			break
		}
		m.healthOK = true
		m.healthLine = fmt.Sprintf("backend %s · v%s", nullCoalesce(msg.health.Status, "unknown"), nullCoalesce(msg.health.Version, "?"))
		m.log.Info().Str("status", msg.health.Status).Str("version", msg.health.Version).Msg("health check")
	case exchangeDoneMsg:
		// A result from a cancelled or superseded query must not touch the
		// live query's cancel func or status line.
		if gen, ok := exchangeGeneration(msg.event); ok && gen != m.state.Generation {
			m.log.Debug().Uint64("generation", gen).Uint64("current", m.state.Generation).Msg("dropping stale exchange result")
			break
		}
		m.cancel = nil
		if failed, ok := msg.event.(session.ExchangeFailed); ok && failed.Err != nil {
			m.logError(failed.Err)
		} else {
			m.statusLine = "ready"
		}
		cmds = append(cmds, m.apply(msg.event))
	case timerMsg:
		m.apply(msg.fired)
		cmds = append(cmds, waitInbound(m.inbound))
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.renderPanes()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	case tea.MouseMsg:
		var cmd tea.Cmd
		if m.inTracePane(msg.X) {
			m.traceView, cmd = m.traceView.Update(msg)
		} else {
			m.chat, cmd = m.chat.Update(msg)
		}
		cmds = append(cmds, cmd)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.sched.Stop()
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit
	case "esc":
		switch {
		case m.state.Busy:
			m.cancelQuery()
		case m.state.SelectedAgent != "" || m.state.SelectedKB != "":
			m.apply(session.CloseDetails{})
		case m.focus == focusSidebar:
			m.focus = focusInput
			m.syncInput()
		}
		return m, nil
	case "tab", "shift+tab":
		if m.focus == focusInput {
			m.focus = focusSidebar
		} else {
			m.focus = focusInput
		}
		m.syncInput()
		return m, nil
	case "ctrl+l":
		m.apply(session.ClearTrace{})
		m.statusLine = "trace cleared"
		return m, nil
	case "f1", "f2", "f3":
		idx := int(msg.String()[1] - '1')
		questions := m.cat.Questions()
		if idx < len(questions) {
			return m, m.submit(questions[idx].Text)
		}
		return m, nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd
	case "shift+up":
		m.traceView.LineUp(1)
		return m, nil
	case "shift+down":
		m.traceView.LineDown(1)
		return m, nil
	}

	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg)
	}
	if m.state.Busy {
		return m, nil
	}
	if msg.Type == tea.KeyEnter {
		return m, m.submit(m.input.Value())
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.sidebarItems) == 0 {
		return m, nil
	}
	switch msg.String() {
	case "up", "k":
		m.sidebarIndex = (m.sidebarIndex + len(m.sidebarItems) - 1) % len(m.sidebarItems)
	case "down", "j":
		m.sidebarIndex = (m.sidebarIndex + 1) % len(m.sidebarItems)
	case "enter", " ":
		item := m.sidebarItems[m.sidebarIndex]
		if item.agentID != "" {
			m.apply(session.ToggleAgent{ID: item.agentID})
		} else {
			m.apply(session.ToggleKnowledgeBase{ID: item.kbID})
		}
	case "x":
		m.apply(session.CloseDetails{})
	}
	return m, nil
}

func exchangeGeneration(ev session.Event) (uint64, bool) {
	switch ev := ev.(type) {
	case session.ExchangeSucceeded:
		return ev.Generation, true
	case session.ExchangeFailed:
		return ev.Generation, true
	default:
		return 0, false
	}
}

// State exposes the last controller snapshot the model rendered.
func (m Model) State() session.State {
	return m.state
}

func (m *Model) appendLog(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return
	}
	m.logs = append(m.logs, fmt.Sprintf("%s %s", time.Now().Format("15:04:05"), compactSingleLine(trimmed, 220)))
	if len(m.logs) > maxLogLines {
		m.logs = m.logs[len(m.logs)-maxLogLines:]
	}
}

func (m *Model) logError(err error) {
	if err == nil {
		return
	}
	m.appendLog("error: " + err.Error())
	m.statusLine = "error: " + compactSingleLine(err.Error(), 160)
}
