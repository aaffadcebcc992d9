package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateTodoInput is the creation request as received from a caller.
type CreateTodoInput struct {
	Title          string
	Description    *string
	DueDate        *time.Time
	Status         TodoStatus
	Priority       *Priority
	AdditionalData *string
}

// UpdateTodoInput replaces every mutable field of an existing todo.
type UpdateTodoInput struct {
	Title          string
	Description    *string
	DueDate        *time.Time
	Status         TodoStatus
	Priority       *Priority
	AdditionalData *string
	IsDeleted      bool
}

// TodoFilter holds optional conjunctive criteria. Title matches by substring,
// DueDate matches the same UTC calendar day.
type TodoFilter struct {
	Status   *TodoStatus
	Priority *Priority
	Title    *string
	DueDate  *time.Time
}

// Key renders a deterministic representation of every criterion.
func (f TodoFilter) Key() string {
	var status, priority, title, dueDate string
	if f.Status != nil {
		status = string(*f.Status)
	}
	if f.Priority != nil {
		priority = string(*f.Priority)
	}
	if f.Title != nil {
		title = *f.Title
	}
	if f.DueDate != nil {
		dueDate = f.DueDate.UTC().Format(time.DateOnly)
	}
	return fmt.Sprintf("%s|%s|%s|%s", status, priority, title, dueDate)
}

// DayRange returns the half-open UTC interval covering the filter's due date.
func (f TodoFilter) DayRange() (time.Time, time.Time, bool) {
	if f.DueDate == nil {
		return time.Time{}, time.Time{}, false
	}
	start := truncateDay(f.DueDate.UTC())
	return start, start.Add(24 * time.Hour), true
}

const EventTodoCreated = "todo.created"

// Event is anything the publisher can route by name.
type Event interface {
	EventName() string
}

type TodoCreatedEvent struct {
	EventID   uuid.UUID
	TodoID    int64
	UserID    int64
	Title     string
	CreatedAt time.Time
}

func NewTodoCreatedEvent(todo Todo) TodoCreatedEvent {
	return TodoCreatedEvent{
		EventID:   uuid.New(),
		TodoID:    todo.ID,
		UserID:    todo.UserID,
		Title:     todo.Title,
		CreatedAt: todo.CreatedAt,
	}
}

func (TodoCreatedEvent) EventName() string {
	return EventTodoCreated
}
