package factory

import (
	"time"

	"todoapi/internal/core/domain"
)

// Default due-date offsets applied when the caller supplies none.
const (
	HighPriorityDueIn   = 2 * 24 * time.Hour
	MediumPriorityDueIn = 7 * 24 * time.Hour
	LowPriorityDueIn    = 30 * 24 * time.Hour
)

// TodoFactory builds validated, priority-tagged todos.
type TodoFactory struct {
	validator *Validator
	now       func() time.Time
}

func NewTodoFactory(validator *Validator, now func() time.Time) *TodoFactory {
	if now == nil {
		now = time.Now
	}
	if validator == nil {
		validator = NewValidator(now)
	}
	return &TodoFactory{validator: validator, now: now}
}

// Create uses the requested priority, Medium when absent, due in seven days by default.
func (f *TodoFactory) Create(userID int64, in domain.CreateTodoInput) (*domain.Todo, error) {
	priority := domain.PriorityMedium
	if in.Priority != nil {
		priority = *in.Priority
	}
	return f.build(userID, in, priority, MediumPriorityDueIn)
}

func (f *TodoFactory) CreateHighPriority(userID int64, in domain.CreateTodoInput) (*domain.Todo, error) {
	return f.build(userID, in, domain.PriorityHigh, HighPriorityDueIn)
}

func (f *TodoFactory) CreateMediumPriority(userID int64, in domain.CreateTodoInput) (*domain.Todo, error) {
	return f.build(userID, in, domain.PriorityMedium, MediumPriorityDueIn)
}

func (f *TodoFactory) CreateLowPriority(userID int64, in domain.CreateTodoInput) (*domain.Todo, error) {
	return f.build(userID, in, domain.PriorityLow, LowPriorityDueIn)
}

// Validator exposes the request validator used by the factory.
func (f *TodoFactory) Validator() *Validator {
	return f.validator
}

func (f *TodoFactory) build(userID int64, in domain.CreateTodoInput, priority domain.Priority, dueIn time.Duration) (*domain.Todo, error) {
	if err := f.validator.Validate(in); err != nil {
		return nil, err
	}

	now := f.now()
	dueDate := in.DueDate
	if dueDate == nil {
		d := now.Add(dueIn)
		dueDate = &d
	}

	return domain.NewTodo(userID, domain.TodoFields{
		Title:          in.Title,
		Description:    in.Description,
		DueDate:        dueDate,
		Status:         in.Status,
		Priority:       domain.PriorityPtr(priority),
		AdditionalData: in.AdditionalData,
	}, now)
}
