// Package trace records the execution trace shown for one query.
package trace

import (
	"sync"
	"time"
)

const timestampLayout = "15:04:05.000"

type Kind string

const (
	KindInfo     Kind = "info"
	KindRoute    Kind = "route"
	KindQuery    Kind = "query"
	KindResponse Kind = "response"
)

// Label is the short tag rendered in the trace panel.
func (k Kind) Label() string {
	switch k {
	case KindInfo:
		return "INFO"
	case KindRoute:
		return "ROUTE"
	case KindQuery:
		return "QUERY"
	case KindResponse:
		return "RESP"
	default:
		return "????"
	}
}

type Entry struct {
	Timestamp string
	Kind      Kind
	Message   string
}

// FormatTimestamp renders t as 24-hour wall-clock time with milliseconds.
func FormatTimestamp(t time.Time) string {
	return t.Format(timestampLayout)
}

// Recorder is an append-only log that can only be reset as a whole.
type Recorder struct {
	mu      sync.Mutex
	now     func() time.Time
	entries []Entry
}

// NewRecorder returns a recorder stamping entries with now. A nil clock uses time.Now.
func NewRecorder(now func() time.Time) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{now: now}
}

func (r *Recorder) Record(kind Kind, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{
		Timestamp: FormatTimestamp(r.now()),
		Kind:      kind,
		Message:   message,
	})
}

func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}

// Entries returns a copy of the current sequence.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
