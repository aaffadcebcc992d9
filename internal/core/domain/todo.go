package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

type TodoStatus string

const (
	TodoStatusPending    TodoStatus = "pending"
	TodoStatusInProgress TodoStatus = "in_progress"
	TodoStatusCompleted  TodoStatus = "completed"
	TodoStatusCancelled  TodoStatus = "cancelled"
)

// TodoStatuses lists every status in declaration order.
var TodoStatuses = []TodoStatus{
	TodoStatusPending,
	TodoStatusInProgress,
	TodoStatusCompleted,
	TodoStatusCancelled,
}

func (s TodoStatus) IsValid() bool {
	for _, status := range TodoStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (p Priority) IsValid() bool {
	for _, priority := range Priorities {
		if p == priority {
			return true
		}
	}
	return false
}

// PriorityPtr is a small helper for the optional Priority field.
func PriorityPtr(p Priority) *Priority {
	return &p
}

const (
	MaxTitleLength          = 255
	MaxDescriptionLength    = 200
	MaxAdditionalDataLength = 500
)

type Todo struct {
	ID             int64
	UserID         int64
	Title          string
	Description    *string
	CreatedAt      time.Time
	DueDate        *time.Time
	Status         TodoStatus
	Priority       *Priority
	AdditionalData *string
	IsDeleted      bool
	// Version is bumped by the store on every update.
	Version int64
}

func (t Todo) IsCompleted() bool {
	return t.Status == TodoStatusCompleted
}

// TodoFields holds every mutable field of a Todo.
type TodoFields struct {
	Title          string
	Description    *string
	DueDate        *time.Time
	Status         TodoStatus
	Priority       *Priority
	AdditionalData *string
	IsDeleted      bool
}

// NewTodo builds a Todo owned by userID. CreatedAt is set to now.
func NewTodo(userID int64, fields TodoFields, now time.Time) (*Todo, error) {
	fields = fields.normalized()
	if violations := fields.violations(now); len(violations) > 0 {
		return nil, &ValidationError{Errors: violations}
	}

	return &Todo{
		UserID:         userID,
		Title:          fields.Title,
		Description:    fields.Description,
		CreatedAt:      now,
		DueDate:        fields.DueDate,
		Status:         fields.Status,
		Priority:       fields.Priority,
		AdditionalData: fields.AdditionalData,
		IsDeleted:      fields.IsDeleted,
	}, nil
}

// Update replaces every mutable field at once. On failure the todo is left untouched.
func (t *Todo) Update(fields TodoFields, now time.Time) error {
	fields = fields.normalized()
	if violations := fields.violations(now); len(violations) > 0 {
		return &ValidationError{Errors: violations}
	}

	t.Title = fields.Title
	t.Description = fields.Description
	t.DueDate = fields.DueDate
	t.Status = fields.Status
	t.Priority = fields.Priority
	t.AdditionalData = fields.AdditionalData
	t.IsDeleted = fields.IsDeleted
	return nil
}

// Fields returns the mutable part of the todo.
func (t Todo) Fields() TodoFields {
	return TodoFields{
		Title:          t.Title,
		Description:    t.Description,
		DueDate:        t.DueDate,
		Status:         t.Status,
		Priority:       t.Priority,
		AdditionalData: t.AdditionalData,
		IsDeleted:      t.IsDeleted,
	}
}

func (f TodoFields) normalized() TodoFields {
	f.Title = strings.TrimSpace(f.Title)
	if f.Status == "" {
		f.Status = TodoStatusPending
	}
	return f
}

func (f TodoFields) violations(now time.Time) []string {
	var violations []string
	if f.Title == "" {
		violations = append(violations, MsgTitleRequired)
	} else if utf8.RuneCountInString(f.Title) > MaxTitleLength {
		violations = append(violations, MsgTitleTooLong)
	}
	if f.DueDate != nil && !f.DueDate.After(now) {
		violations = append(violations, MsgDueDateInPast)
	}
	if !f.Status.IsValid() {
		violations = append(violations, MsgInvalidStatus)
	}
	if f.Priority != nil && !f.Priority.IsValid() {
		violations = append(violations, MsgInvalidPriority)
	}
	return violations
}

// DaysRemaining counts whole calendar days from today until the due date, never negative.
func (t Todo) DaysRemaining(now time.Time) int {
	if t.DueDate == nil {
		return 0
	}
	due := truncateDay(t.DueDate.UTC())
	today := truncateDay(now.UTC())
	days := int(due.Sub(today).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
