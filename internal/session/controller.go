// Package session drives one query lifecycle: it resets prior state, requests
// the backend exchange, records the trace, moves the workflow phase and builds
// the displayed messages. The UI feeds it events and executes the effects it
// returns, so every transition can be tested without a terminal.
package session

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"zavaflow/internal/backend"
	"zavaflow/internal/catalog"
	"zavaflow/internal/format"
	"zavaflow/internal/trace"
	"zavaflow/internal/workflow"
)

const (
	DefaultCompleteDelay = 500 * time.Millisecond
	DefaultIdleDelay     = 2 * time.Second

	// ErrorReply is the assistant message shown when the exchange fails.
	ErrorReply = "Sorry, there was an error processing your request."

	unnamedAgent = "specialist"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat bubble. Agent and Sources are set only on assistant
// replies that named an agent.
type Message struct {
	Role    Role
	Content string
	Agent   string
	Sources []backend.SourceRef
	Display format.Display
}

// State is an immutable snapshot of the session.
type State struct {
	Generation    uint64
	SessionID     string
	Phase         workflow.Phase
	ActiveAgent   string
	Busy          bool
	Messages      []Message
	Trace         []trace.Entry
	SelectedAgent string
	SelectedKB    string
}

// LoadingText describes the in-flight work for the chat panel.
func (s State) LoadingText() string {
	if s.Phase == workflow.PhaseRouting || s.ActiveAgent == "" {
		return "Routing query..."
	}
	return s.ActiveAgent + " processing..."
}

type Controller struct {
	completeDelay time.Duration
	idleDelay     time.Duration
	newID         func() string
	recorder      *trace.Recorder
	log           zerolog.Logger

	generation    uint64
	sessionID     string
	phase         workflow.Phase
	activeAgent   string
	busy          bool
	messages      []Message
	selectedAgent string
	selectedKB    string
}

type Option func(*Controller)

func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.recorder = trace.NewRecorder(now)
	}
}

// WithDelays sets the response→complete and response→idle delays.
func WithDelays(complete, idle time.Duration) Option {
	return func(c *Controller) {
		if complete > 0 {
			c.completeDelay = complete
		}
		if idle > 0 {
			c.idleDelay = idle
		}
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) {
		if fn != nil {
			c.newID = fn
		}
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Controller) {
		c.log = log
	}
}

func New(opts ...Option) *Controller {
	c := &Controller{
		completeDelay: DefaultCompleteDelay,
		idleDelay:     DefaultIdleDelay,
		newID:         uuid.NewString,
		recorder:      trace.NewRecorder(nil),
		log:           zerolog.Nop(),
		phase:         workflow.PhaseIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) State() State {
	messages := make([]Message, len(c.messages))
	copy(messages, c.messages)
	return State{
		Generation:    c.generation,
		SessionID:     c.sessionID,
		Phase:         c.phase,
		ActiveAgent:   c.activeAgent,
		Busy:          c.busy,
		Messages:      messages,
		Trace:         c.recorder.Entries(),
		SelectedAgent: c.selectedAgent,
		SelectedKB:    c.selectedKB,
	}
}

// Apply performs one transition and returns the effects the caller must run.
func (c *Controller) Apply(ev Event) []Effect {
	switch ev := ev.(type) {
	case Submit:
		return c.submit(ev.Text)
	case ExchangeSucceeded:
		return c.succeeded(ev)
	case ExchangeFailed:
		return c.failed(ev)
	case TimerFired:
		c.timerFired(ev)
	case Cancel:
		return c.cancel()
	case ClearTrace:
		c.recorder.Clear()
	case ToggleAgent:
		c.toggleAgent(ev.ID)
	case ToggleKnowledgeBase:
		c.toggleKnowledgeBase(ev.ID)
	case CloseDetails:
		c.selectedAgent = ""
		c.selectedKB = ""
	}
	return nil
}

func (c *Controller) submit(text string) []Effect {
	if strings.TrimSpace(text) == "" || c.busy {
		return nil
	}
	c.generation++
	c.sessionID = c.newID()
	c.messages = []Message{{Role: RoleUser, Content: text, Display: format.Text(text)}}
	c.recorder.Clear()
	c.phase = workflow.PhaseRouting
	c.activeAgent = ""
	c.busy = true
	c.recorder.Record(trace.KindInfo, fmt.Sprintf("User query received: \"%s\"", text))
	c.recorder.Record(trace.KindRoute, "Orchestrator analyzing intent...")
	c.log.Info().Uint64("generation", c.generation).Str("session_id", c.sessionID).Msg("query submitted")
	return []Effect{
		CancelTimers{Generation: c.generation},
		Exchange{
			Generation: c.generation,
			Request:    backend.ChatRequest{Message: text, SessionID: c.sessionID},
		},
	}
}

func (c *Controller) stale(generation uint64, what string) bool {
	if generation == c.generation {
		return false
	}
	c.log.Debug().Uint64("generation", generation).Uint64("current", c.generation).Msgf("discarding stale %s", what)
	return true
}

func (c *Controller) succeeded(ev ExchangeSucceeded) []Effect {
	if c.stale(ev.Generation, "response") || !c.busy {
		return nil
	}
	resp := ev.Response
	kind, fellBack := catalog.ResolveAgent(resp.Agent)
	if fellBack {
		c.log.Warn().Str("agent", resp.Agent).Str("fallback", kind.String()).Msg("unrecognized agent, using fallback knowledge base")
	}
	kb := kind.KnowledgeBase()
	agentName := resp.Agent
	if agentName == "" {
		agentName = unnamedAgent
	}

	c.phase = workflow.PhaseFor(kind)
	c.activeAgent = resp.Agent
	c.recorder.Record(trace.KindRoute, "Routed to "+agentName)
	c.recorder.Record(trace.KindQuery, fmt.Sprintf("%s querying %s via agentic retrieval...", agentName, kb))
	if len(resp.Sources) > 0 {
		c.recorder.Record(trace.KindResponse, fmt.Sprintf("Retrieved from %s: %s", kb, format.RetrievedTitles(resp.Sources)))
	} else {
		c.recorder.Record(trace.KindResponse, "Retrieved documents from "+kb)
	}
	c.messages = append(c.messages, Message{
		Role:    RoleAssistant,
		Content: resp.Message,
		Agent:   resp.Agent,
		Sources: resp.Sources,
		Display: format.Message(resp),
	})
	c.recorder.Record(trace.KindInfo, fmt.Sprintf("Response generated (%d chars)", utf8.RuneCountInString(resp.Message)))
	c.busy = false
	return []Effect{
		Schedule{Generation: c.generation, Step: StepComplete, Delay: c.completeDelay},
		Schedule{Generation: c.generation, Step: StepIdle, Delay: c.idleDelay},
	}
}

// failed leaves the trace untouched so no routing entries are fabricated.
func (c *Controller) failed(ev ExchangeFailed) []Effect {
	if c.stale(ev.Generation, "failure") || !c.busy {
		return nil
	}
	c.log.Warn().Err(ev.Err).Uint64("generation", ev.Generation).Msg("exchange failed")
	c.messages = append(c.messages, Message{
		Role:    RoleAssistant,
		Content: ErrorReply,
		Display: format.Text(ErrorReply),
	})
	c.busy = false
	return []Effect{
		Schedule{Generation: c.generation, Step: StepIdle, Delay: c.idleDelay},
	}
}

func (c *Controller) timerFired(ev TimerFired) {
	if c.stale(ev.Generation, "timer "+ev.Step.String()) {
		return
	}
	switch ev.Step {
	case StepComplete:
		c.phase = workflow.PhaseComplete
	case StepIdle:
		c.phase = workflow.PhaseIdle
		c.activeAgent = ""
	}
}

func (c *Controller) cancel() []Effect {
	if !c.busy {
		return nil
	}
	c.generation++
	c.busy = false
	c.phase = workflow.PhaseIdle
	c.activeAgent = ""
	c.recorder.Record(trace.KindInfo, "Query cancelled")
	c.log.Info().Uint64("generation", c.generation).Msg("query cancelled")
	return []Effect{CancelTimers{Generation: c.generation}}
}

func (c *Controller) toggleAgent(id string) {
	if id == "" {
		return
	}
	if c.selectedAgent == id {
		c.selectedAgent = ""
		return
	}
	c.selectedAgent = id
	c.selectedKB = ""
}

func (c *Controller) toggleKnowledgeBase(id string) {
	if id == "" {
		return
	}
	if c.selectedKB == id {
		c.selectedKB = ""
		return
	}
	c.selectedKB = id
	c.selectedAgent = ""
}
