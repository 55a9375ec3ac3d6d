// Package hooks provides an event system for report pipeline lifecycle
// events, used to surface progress to the CLI and the web dashboard.
package hooks

import (
	"context"
	"sync"

	"github.com/dealbrief/dealbrief/internal/logging"
)

// Event names emitted by the report pipeline.
const (
	EventReportStarted   = "report_started"
	EventToolCall        = "tool_call"
	EventToolResult      = "tool_result"
	EventChartGenerated  = "chart_generated"
	EventChartSkipped    = "chart_skipped"
	EventReportCompleted = "report_completed"
	EventReportFailed    = "report_failed"
)

// AllEvents lists all known event names.
var AllEvents = []string{
	EventReportStarted,
	EventToolCall,
	EventToolResult,
	EventChartGenerated,
	EventChartSkipped,
	EventReportCompleted,
	EventReportFailed,
}

// Payload carries event data to handlers.
type Payload struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data,omitempty"`
}

// Handler handles one event. Returning an error logs the failure but
// does not stop other handlers.
type Handler func(ctx context.Context, p Payload) error

// Manager manages handler registrations and dispatches events.
type Manager struct {
	mu       sync.RWMutex
	handlers map[string][]namedHandler
	log      *logging.Logger
}

type namedHandler struct {
	name    string
	handler Handler
}

// NewManager creates a hook manager.
func NewManager(log *logging.Logger) *Manager {
	return &Manager{
		handlers: make(map[string][]namedHandler),
		log:      log.Sub("hooks"),
	}
}

// On registers a handler for the given event. The name identifies the
// handler for removal and logging.
func (m *Manager) On(event, name string, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[event] = append(m.handlers[event], namedHandler{name: name, handler: handler})
	m.log.Debug().Str("event", event).Str("handler", name).Msg("hook registered")
}

// OnAll registers a handler for every known event.
func (m *Manager) OnAll(name string, handler Handler) {
	for _, event := range AllEvents {
		m.On(event, name, handler)
	}
}

// Off removes all handlers with the given name from the event.
func (m *Manager) Off(event, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	handlers := m.handlers[event]
	filtered := make([]namedHandler, 0, len(handlers))
	for _, h := range handlers {
		if h.name != name {
			filtered = append(filtered, h)
		}
	}
	m.handlers[event] = filtered
}

// OffAll removes the named handler from every event.
func (m *Manager) OffAll(name string) {
	for _, event := range AllEvents {
		m.Off(event, name)
	}
}

// Emit dispatches an event to all registered handlers synchronously,
// in registration order. Handler errors are logged and do not prevent
// subsequent handlers from running.
func (m *Manager) Emit(ctx context.Context, event string, data map[string]any) {
	m.mu.RLock()
	handlers := make([]namedHandler, len(m.handlers[event]))
	copy(handlers, m.handlers[event])
	m.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	payload := Payload{Event: event, Data: data}
	for _, h := range handlers {
		if err := h.handler(ctx, payload); err != nil {
			m.log.Warn().
				Err(err).
				Str("event", event).
				Str("handler", h.name).
				Msg("hook handler error")
		}
	}
}

// Count returns the number of handlers registered for an event.
func (m *Manager) Count(event string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handlers[event])
}
