package session

import (
	"time"

	"zavaflow/internal/backend"
)

// Event is an input to Controller.Apply.
type Event interface {
	isEvent()
}

// Submit starts a new query. Blank text and submissions while busy are ignored.
type Submit struct {
	Text string
}

type ExchangeSucceeded struct {
	Generation uint64
	Response   backend.ChatResponse
}

type ExchangeFailed struct {
	Generation uint64
	Err        error
}

type TimerFired struct {
	Generation uint64
	Step       Step
}

// Cancel abandons the in-flight exchange.
type Cancel struct{}

type ClearTrace struct{}

type ToggleAgent struct {
	ID string
}

type ToggleKnowledgeBase struct {
	ID string
}

type CloseDetails struct{}

func (Submit) isEvent()              {}
func (ExchangeSucceeded) isEvent()   {}
func (ExchangeFailed) isEvent()      {}
func (TimerFired) isEvent()          {}
func (Cancel) isEvent()              {}
func (ClearTrace) isEvent()          {}
func (ToggleAgent) isEvent()         {}
func (ToggleKnowledgeBase) isEvent() {}
func (CloseDetails) isEvent()        {}

// Step is a delayed phase transition.
type Step int

const (
	// StepComplete moves the diagram to the complete phase.
	StepComplete Step = iota + 1
	// StepIdle returns to idle and clears the active agent.
	StepIdle
)

func (s Step) String() string {
	switch s {
	case StepComplete:
		return "complete"
	case StepIdle:
		return "idle"
	default:
		return "unknown"
	}
}

// Effect is work the caller must perform after Apply.
type Effect interface {
	isEffect()
}

// Exchange asks the caller to issue the backend request and report the
// outcome as ExchangeSucceeded or ExchangeFailed with the same generation.
type Exchange struct {
	Generation uint64
	Request    backend.ChatRequest
}

// Schedule asks for TimerFired{Generation, Step} after Delay.
type Schedule struct {
	Generation uint64
	Step       Step
	Delay      time.Duration
}

// CancelTimers asks the caller to stop every timer older than Generation.
type CancelTimers struct {
	Generation uint64
}

func (Exchange) isEffect()     {}
func (Schedule) isEffect()     {}
func (CancelTimers) isEffect() {}
