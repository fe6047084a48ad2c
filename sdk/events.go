package sdk

import (
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Attr is one key:value pair of an event line.
type Attr struct {
	Key   string
	Value string
}

// Event is a domain notification. It renders as a terse pipe line like "pc|org:..|id:..|by:..".
type Event struct {
	Kind  string
	Attrs []Attr
}

// NewEvent builds an event from alternating key, value strings.
// Example payload: sdk.NewEvent("pc", "id", pid, "by", who)
func NewEvent(kind string, kv ...string) Event {
	e := Event{Kind: kind, Attrs: make([]Attr, 0, len(kv)/2)}
	for i := 0; i+1 < len(kv); i += 2 {
		e.Attrs = append(e.Attrs, Attr{Key: kv[i], Value: kv[i+1]})
	}
	return e
}

// Get returns the value of the first attr with the key, or "" when absent.
func (e Event) Get(key string) string {
	for _, a := range e.Attrs {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

// String renders the log line.
func (e Event) String() string {
	var b strings.Builder
	b.WriteString(e.Kind)
	for _, a := range e.Attrs {
		b.WriteByte('|')
		b.WriteString(a.Key)
		b.WriteByte(':')
		b.WriteString(a.Value)
	}
	return b.String()
}

// EventSink receives events in emission order.
type EventSink interface {
	Emit(e Event)
}

// EventBuffer holds the events of one call until the call commits.
type EventBuffer struct {
	events []Event
}

// Emit appends to the buffer.
func (b *EventBuffer) Emit(e Event) {
	b.events = append(b.events, e)
}

// Mark returns a position Rollback can return to, used for savepoints.
func (b *EventBuffer) Mark() int {
	return len(b.events)
}

// Rollback drops everything emitted after mark.
func (b *EventBuffer) Rollback(mark int) {
	if mark < len(b.events) {
		b.events = b.events[:mark]
	}
}

// Events returns the buffered events.
func (b *EventBuffer) Events() []Event {
	return b.events
}

// Flush forwards everything to sink and empties the buffer.
func (b *EventBuffer) Flush(sink EventSink) {
	for _, e := range b.events {
		sink.Emit(e)
	}
	b.events = nil
}

// LogSink writes every event line to zap as an info entry.
type LogSink struct {
	log *zap.Logger
}

// NewLogSink wraps a logger, nil is replaced by a no-op logger.
func NewLogSink(log *zap.Logger) *LogSink {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogSink{log: log}
}

func (s *LogSink) Emit(e Event) {
	s.log.Info("event", zap.String("kind", e.Kind), zap.String("line", e.String()))
}

// Recorder keeps committed events in memory so observers and tests can read them back.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Kinds lists the recorded event kinds in order.
func (r *Recorder) Kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}

// Filter returns the recorded events of one kind.
func (r *Recorder) Filter(kind string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Reset forgets everything.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// FanOut forwards each event to several sinks.
type FanOut []EventSink

func (f FanOut) Emit(e Event) {
	for _, s := range f {
		s.Emit(e)
	}
}
