package events_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"todoapi/internal/app/events"
	"todoapi/internal/core/domain"
	"todoapi/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type notifierMock struct {
	mock.Mock
}

func (m *notifierMock) Notify(ctx context.Context, userID int64, notification ports.Notification) error {
	args := m.Called(ctx, userID, notification)
	return args.Error(0)
}

func TestPublish_RunsHandlersSequentiallyInOrder(t *testing.T) {
	publisher := events.NewPublisher()
	var order []string

	publisher.RegisterHandler(domain.EventTodoCreated, ports.EventHandlerFunc(func(ctx context.Context, event domain.Event) error {
		time.Sleep(20 * time.Millisecond)
		order = append(order, "slow")
		return nil
	}))
	publisher.RegisterHandler(domain.EventTodoCreated, ports.EventHandlerFunc(func(ctx context.Context, event domain.Event) error {
		order = append(order, "fast")
		return nil
	}))

	err := publisher.Publish(context.Background(), domain.TodoCreatedEvent{TodoID: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"slow", "fast"}, order)
}

func TestPublish_AggregatesFailuresAndKeepsGoing(t *testing.T) {
	publisher := events.NewPublisher()
	errFirst := errors.New("first failed")
	called := false

	publisher.RegisterHandler(domain.EventTodoCreated, ports.EventHandlerFunc(func(ctx context.Context, event domain.Event) error {
		return errFirst
	}))
	publisher.RegisterHandler(domain.EventTodoCreated, ports.EventHandlerFunc(func(ctx context.Context, event domain.Event) error {
		panic("second exploded")
	}))
	publisher.RegisterHandler(domain.EventTodoCreated, ports.EventHandlerFunc(func(ctx context.Context, event domain.Event) error {
		called = true
		return nil
	}))

	err := publisher.Publish(context.Background(), domain.TodoCreatedEvent{TodoID: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, errFirst)
	assert.Contains(t, err.Error(), "second exploded")
	assert.True(t, called)
}

func TestPublish_NoHandlersIsNoop(t *testing.T) {
	assert.NoError(t, events.NewPublisher().Publish(context.Background(), domain.TodoCreatedEvent{}))
}

func TestTodoCreatedHandler_ForwardsNotification(t *testing.T) {
	notifier := new(notifierMock)
	createdAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	notifier.On("Notify", mock.Anything, int64(8), ports.Notification{
		ID:        15,
		Title:     "Buy milk",
		CreatedAt: "2026-01-02T03:04:05Z",
	}).Return(nil).Once()

	publisher := events.NewPublisher()
	publisher.RegisterHandler(domain.EventTodoCreated, events.NewTodoCreatedHandler(notifier))

	err := publisher.Publish(context.Background(), domain.NewTodoCreatedEvent(domain.Todo{
		ID:        15,
		UserID:    8,
		Title:     "Buy milk",
		CreatedAt: createdAt,
	}))
	require.NoError(t, err)
	notifier.AssertExpectations(t)
}
