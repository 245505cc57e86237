package event

import (
	"context"

	"github.com/webstudio/backend/internal/domain/shared"
)

// HandlerFunc adapts a function to shared.EventHandler
type HandlerFunc struct {
	types []string
	fn    func(ctx context.Context, e shared.DomainEvent) error
}

// NewHandlerFunc returns a handler for the given types. It must be passed by
// pointer to Unsubscribe, so it is returned as one.
func NewHandlerFunc(fn func(ctx context.Context, e shared.DomainEvent) error, eventTypes ...string) *HandlerFunc {
	return &HandlerFunc{types: eventTypes, fn: fn}
}

func (h *HandlerFunc) Handle(ctx context.Context, e shared.DomainEvent) error {
	return h.fn(ctx, e)
}

func (h *HandlerFunc) EventTypes() []string {
	return h.types
}
