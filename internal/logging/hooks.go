package logging

import (
	"log/slog"

	"github.com/aretw0/portflow/pkg/domain"
)

// DebugHooks returns lifecycle hooks that log every network event at debug
// level.
func DebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnProcessorAdded: func(e *domain.ProcessorEvent) {
			logger.Debug("processor_added", "network", e.Network, "processor", e.ProcessorID, "class", e.ClassID)
		},
		OnProcessorRemoved: func(e *domain.ProcessorEvent) {
			logger.Debug("processor_removed", "network", e.Network, "processor", e.ProcessorID)
		},
		OnConnectionAdded: func(e *domain.ConnectionEvent) {
			logger.Debug("connection_added", "network", e.Network, "connection", e.Connection.String())
		},
		OnConnectionRemoved: func(e *domain.ConnectionEvent) {
			logger.Debug("connection_removed", "network", e.Network, "connection", e.Connection.String())
		},
		OnInvalidated: func(e *domain.ProcessorEvent) {
			logger.Debug("invalidated", "network", e.Network, "processor", e.ProcessorID, "level", e.Level.String())
		},
		OnEvaluated: func(e *domain.EvaluationEvent) {
			if e.Err != nil {
				logger.Warn("evaluation_failed", "network", e.Network, "evaluated", e.Evaluated, "err", e.Err)
				return
			}
			logger.Debug("evaluated", "network", e.Network, "evaluated", e.Evaluated, "duration", e.Duration)
		},
	}
}
