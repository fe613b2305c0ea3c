package domain

import (
	"time"
)

// EventType defines the category of a network lifecycle event.
type EventType string

const (
	EventProcessorAdded    EventType = "processor_added"
	EventProcessorRemoved  EventType = "processor_removed"
	EventConnectionAdded   EventType = "connection_added"
	EventConnectionRemoved EventType = "connection_removed"
	EventInvalidated       EventType = "invalidated"
	EventEvaluated         EventType = "evaluated"
)

// EventBase contains common fields for all lifecycle events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Network   string    `json:"network,omitempty"`
}

// ProcessorEvent reports a processor being added, removed or invalidated.
type ProcessorEvent struct {
	EventBase
	ProcessorID string            `json:"processor_id"`
	ClassID     string            `json:"class_id,omitempty"`
	Level       InvalidationLevel `json:"level"`
}

// ConnectionEvent reports an edge being added or removed.
type ConnectionEvent struct {
	EventBase
	Connection PortConnection `json:"connection"`
}

// EvaluationEvent reports the outcome of one evaluation pass.
type EvaluationEvent struct {
	EventBase
	Evaluated []string      `json:"evaluated"`
	Duration  time.Duration `json:"duration"`
	Err       error         `json:"-"`
}

// LifecycleHooks defines callbacks for network observability.
// Hooks run synchronously on the mutating goroutine while the network is
// locked, so they must not call back into the network.
type LifecycleHooks struct {
	OnProcessorAdded    func(*ProcessorEvent)
	OnProcessorRemoved  func(*ProcessorEvent)
	OnConnectionAdded   func(*ConnectionEvent)
	OnConnectionRemoved func(*ConnectionEvent)
	OnInvalidated       func(*ProcessorEvent)
	OnEvaluated         func(*EvaluationEvent)
}

// ChainHooks fans every callback out to all given hook sets, in order.
func ChainHooks(hooks ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnProcessorAdded: func(e *ProcessorEvent) {
			for _, h := range hooks {
				if h.OnProcessorAdded != nil {
					h.OnProcessorAdded(e)
				}
			}
		},
		OnProcessorRemoved: func(e *ProcessorEvent) {
			for _, h := range hooks {
				if h.OnProcessorRemoved != nil {
					h.OnProcessorRemoved(e)
				}
			}
		},
		OnConnectionAdded: func(e *ConnectionEvent) {
			for _, h := range hooks {
				if h.OnConnectionAdded != nil {
					h.OnConnectionAdded(e)
				}
			}
		},
		OnConnectionRemoved: func(e *ConnectionEvent) {
			for _, h := range hooks {
				if h.OnConnectionRemoved != nil {
					h.OnConnectionRemoved(e)
				}
			}
		},
		OnInvalidated: func(e *ProcessorEvent) {
			for _, h := range hooks {
				if h.OnInvalidated != nil {
					h.OnInvalidated(e)
				}
			}
		},
		OnEvaluated: func(e *EvaluationEvent) {
			for _, h := range hooks {
				if h.OnEvaluated != nil {
					h.OnEvaluated(e)
				}
			}
		},
	}
}
