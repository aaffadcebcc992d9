package ports

import (
	"context"

	"todoapi/internal/core/domain"
)

type EventHandler interface {
	Handle(ctx context.Context, event domain.Event) error
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ctx context.Context, event domain.Event) error

func (f EventHandlerFunc) Handle(ctx context.Context, event domain.Event) error {
	return f(ctx, event)
}

type EventPublisher interface {
	RegisterHandler(eventName string, handler EventHandler)
	Publish(ctx context.Context, event domain.Event) error
}

// Notification is the payload pushed to connected clients.
type Notification struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
}

type NotificationPublisher interface {
	Notify(ctx context.Context, userID int64, notification Notification) error
}
