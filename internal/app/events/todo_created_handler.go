package events

import (
	"context"
	"fmt"
	"time"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/ports"
)

// TodoCreatedHandler forwards TodoCreated events to the notification channel.
type TodoCreatedHandler struct {
	notifier ports.NotificationPublisher
}

func NewTodoCreatedHandler(notifier ports.NotificationPublisher) *TodoCreatedHandler {
	return &TodoCreatedHandler{notifier: notifier}
}

func (h *TodoCreatedHandler) Handle(ctx context.Context, event domain.Event) error {
	created, ok := event.(domain.TodoCreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T", event)
	}

	return h.notifier.Notify(ctx, created.UserID, ports.Notification{
		ID:        created.TodoID,
		Title:     created.Title,
		CreatedAt: created.CreatedAt.UTC().Format(time.RFC3339),
	})
}
