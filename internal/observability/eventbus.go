package observability

import (
	"context"
	"sort"

	"go.uber.org/zap"
)

// EventBus implements the domain EventPublisher interface on top of zap.
type EventBus struct {
	logger *zap.Logger
}

// NewEventBus creates a new event bus.
func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		logger: logger,
	}
}

// Publish publishes an event with the given type and data.
func (e *EventBus) Publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if e.logger == nil {
		return
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]zap.Field, 0, len(data)+1)
	fields = append(fields, zap.String("event", eventType))
	for _, k := range keys {
		fields = append(fields, zap.Any(k, data[k]))
	}

	// Carry request-scoped ids from ctx onto the event logger.
	logger := e.logger
	if requestID := GetRequestID(ctx); requestID != "" {
		logger = logger.With(zap.String("request_id", requestID))
	}
	if tenant := GetTenant(ctx); tenant != "" {
		logger = logger.With(zap.String("tenant", tenant))
	}

	logger.Info(eventType, fields...)
}
