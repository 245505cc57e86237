package event

import (
	"context"
	"time"

	"github.com/webstudio/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// IdempotentHandler skips events its handler already handled, which makes the
// bus redelivering an event harmless for that handler. Only successful runs
// are remembered, so a failed delivery is tried again.
type IdempotentHandler struct {
	name    string
	handler shared.EventHandler
	store   shared.IdempotencyStore
	ttl     time.Duration
	logger  *zap.Logger
}

// NewIdempotentHandler wraps handler. name scopes the remembered event ids,
// so several wrapped handlers can share one store.
func NewIdempotentHandler(name string, handler shared.EventHandler, store shared.IdempotencyStore, ttl time.Duration, logger *zap.Logger) *IdempotentHandler {
	return &IdempotentHandler{name: name, handler: handler, store: store, ttl: ttl, logger: logger.With(zap.String("handler", name))}
}

func (h *IdempotentHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	key := "event:" + h.name + ":" + e.EventID().String()
	done, err := h.store.IsProcessed(ctx, key)
	if err != nil {
		// store outage must not block delivery
		h.logger.Warn("Idempotency check failed", zap.String("event_id", e.EventID().String()), zap.Error(err))
	} else if done {
		h.logger.Debug("Duplicate event skipped", zap.String("event_id", e.EventID().String()))
		return nil
	}

	if err := h.handler.Handle(ctx, e); err != nil {
		return err
	}
	if _, err := h.store.MarkProcessed(ctx, key, h.ttl); err != nil {
		h.logger.Warn("Failed to record handled event", zap.String("event_id", e.EventID().String()), zap.Error(err))
	}
	return nil
}

func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}
