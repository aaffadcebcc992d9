package ports

import (
	"context"

	"todoapi/internal/core/domain"
)

// TodoRepository is user-scoped storage. Benign failures are reported through
// domain.WriteResult; the error return is reserved for infrastructure failures.
type TodoRepository interface {
	GetAll(ctx context.Context, userID int64) ([]domain.Todo, error)
	GetByID(ctx context.Context, userID, id int64) (*domain.Todo, error)
	Filter(ctx context.Context, userID int64, filter domain.TodoFilter) ([]domain.Todo, error)
	Add(ctx context.Context, todo *domain.Todo) (domain.WriteResult, error)
	Update(ctx context.Context, todo *domain.Todo) (domain.WriteResult, error)
	Delete(ctx context.Context, userID, id int64) (domain.WriteResult, error)
	SoftDelete(ctx context.Context, userID, id int64) (domain.WriteResult, error)
	CountCompletedPercentage(ctx context.Context, userID int64) (float64, error)
	CountPendingPercentage(ctx context.Context, userID int64) (float64, error)
}

type TodoService interface {
	GetAll(ctx context.Context, userID int64) domain.Response[domain.Todo]
	GetByID(ctx context.Context, userID, id int64) domain.Response[domain.Todo]
	Filter(ctx context.Context, userID int64, filter domain.TodoFilter) domain.Response[domain.Todo]
	AddTodo(ctx context.Context, userID int64, in domain.CreateTodoInput) domain.Response[domain.Todo]
	AddHighPriorityTodo(ctx context.Context, userID int64, in domain.CreateTodoInput) domain.Response[domain.Todo]
	AddMediumPriorityTodo(ctx context.Context, userID int64, in domain.CreateTodoInput) domain.Response[domain.Todo]
	AddLowPriorityTodo(ctx context.Context, userID int64, in domain.CreateTodoInput) domain.Response[domain.Todo]
	UpdateTodo(ctx context.Context, userID, id int64, in domain.UpdateTodoInput) domain.Response[domain.Todo]
	DeleteTodo(ctx context.Context, userID, id int64) domain.Response[domain.Todo]
	SoftDeleteTodo(ctx context.Context, userID, id int64) domain.Response[domain.Todo]
	CompletedPercentage(ctx context.Context, userID int64) domain.Response[float64]
	PendingPercentage(ctx context.Context, userID int64) domain.Response[float64]
}

// ProcessingQueue handles committed todos one at a time, off the request path.
type ProcessingQueue interface {
	Enqueue(todo domain.Todo)
}

// TodoCache memoizes percentage and filter reads per user.
type TodoCache interface {
	CompletedPercentage(ctx context.Context, userID int64, compute func(context.Context) (float64, error)) (float64, error)
	PendingPercentage(ctx context.Context, userID int64, compute func(context.Context) (float64, error)) (float64, error)
	Filter(ctx context.Context, userID int64, filter domain.TodoFilter, compute func(context.Context) ([]domain.Todo, error)) ([]domain.Todo, error)
	Invalidate(userID int64)
}
