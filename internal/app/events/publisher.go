package events

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/puzpuzpuz/xsync/v3"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/ports"
)

// Publisher dispatches events to handlers registered under the event's name.
// Handlers run one after another in registration order.
type Publisher struct {
	handlers *xsync.MapOf[string, []ports.EventHandler]
}

var _ ports.EventPublisher = (*Publisher)(nil)

func NewPublisher() *Publisher {
	return &Publisher{handlers: xsync.NewMapOf[string, []ports.EventHandler]()}
}

func (p *Publisher) RegisterHandler(eventName string, handler ports.EventHandler) {
	p.handlers.Compute(eventName, func(current []ports.EventHandler, _ bool) ([]ports.EventHandler, bool) {
		next := slices.Clone(current)
		return append(next, handler), false
	})
}

// Publish awaits every handler. A failing handler does not stop later ones;
// all failures are joined into the returned error.
func (p *Publisher) Publish(ctx context.Context, event domain.Event) error {
	handlers, ok := p.handlers.Load(event.EventName())
	if !ok {
		return nil
	}

	var errs []error
	for i, handler := range handlers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := p.invoke(ctx, handler, event); err != nil {
			errs = append(errs, fmt.Errorf("handler %d for %s: %w", i, event.EventName(), err))
		}
	}
	return errors.Join(errs...)
}

func (p *Publisher) invoke(ctx context.Context, handler ports.EventHandler, event domain.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler.Handle(ctx, event)
}
