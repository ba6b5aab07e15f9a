package session

import (
	"context"

	"zavaflow/internal/backend"
)

// Exchanger performs the backend exchange. *backend.Client satisfies it.
type Exchanger interface {
	Chat(ctx context.Context, req backend.ChatRequest) (backend.ChatResponse, error)
}

// Outcome turns the result of an Exchange effect into the event to Apply.
func Outcome(ctx context.Context, ex Exchanger, ef Exchange) Event {
	resp, err := ex.Chat(ctx, ef.Request)
	if err != nil {
		return ExchangeFailed{Generation: ef.Generation, Err: err}
	}
	return ExchangeSucceeded{Generation: ef.Generation, Response: resp}
}

// RunOnce drives a single query to settlement synchronously. Cooldown timers
// are skipped, so the returned state still shows the resolved phase. It
// reports false when the submission was rejected.
func RunOnce(ctx context.Context, c *Controller, ex Exchanger, text string) (State, bool) {
	for _, ef := range c.Apply(Submit{Text: text}) {
		exchange, ok := ef.(Exchange)
		if !ok {
			continue
		}
		c.Apply(Outcome(ctx, ex, exchange))
		return c.State(), true
	}
	return c.State(), false
}
