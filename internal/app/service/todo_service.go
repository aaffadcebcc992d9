package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"todoapi/internal/app/factory"
	"todoapi/internal/core/domain"
	"todoapi/internal/core/ports"
)

const (
	msgTodosRetrieved    = "Todos retrieved."
	msgTodoRetrieved     = "Todo retrieved."
	msgTodoCreated       = "Todo created successfully."
	msgTodoUpdated       = "Todo updated successfully."
	msgTodoDeleted       = "Todo deleted successfully."
	msgTodoSoftDeleted   = "Todo marked as deleted."
	msgPercentage        = "Percentage calculated."
	msgValidationFailed  = "Validation failed."
	msgUnexpectedFailure = "An unexpected error occurred."
)

type builder func(userID int64, in domain.CreateTodoInput) (*domain.Todo, error)

type Option func(*TodoService)

// WithClock overrides the time source used when applying updates.
func WithClock(now func() time.Time) Option {
	return func(s *TodoService) {
		s.now = now
	}
}

// TodoService runs every todo use case and always answers with a domain.Response.
// Side effects (queue, cache invalidation, events) only follow a successful write.
type TodoService struct {
	todoRepository ports.TodoRepository
	todoFactory    *factory.TodoFactory
	queue          ports.ProcessingQueue
	cache          ports.TodoCache
	publisher      ports.EventPublisher
	now            func() time.Time
}

var _ ports.TodoService = (*TodoService)(nil)

func NewTodoService(
	todoRepository ports.TodoRepository,
	todoFactory *factory.TodoFactory,
	queue ports.ProcessingQueue,
	cache ports.TodoCache,
	publisher ports.EventPublisher,
	opts ...Option,
) *TodoService {
	s := &TodoService{
		todoRepository: todoRepository,
		todoFactory:    todoFactory,
		queue:          queue,
		cache:          cache,
		publisher:      publisher,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TodoService) GetAll(ctx context.Context, userID int64) (resp domain.Response[domain.Todo]) {
	defer recoverInto("GetAll", &resp)

	todos, err := s.todoRepository.GetAll(ctx, userID)
	if err != nil {
		return internalFailure[domain.Todo]("GetAll", err)
	}

	resp = domain.Success[domain.Todo](msgTodosRetrieved)
	resp.DataList = nonNil(todos)
	return resp
}

func (s *TodoService) GetByID(ctx context.Context, userID, id int64) (resp domain.Response[domain.Todo]) {
	defer recoverInto("GetByID", &resp)

	todo, err := s.todoRepository.GetByID(ctx, userID, id)
	if err != nil {
		return internalFailure[domain.Todo]("GetByID", err)
	}
	if todo == nil {
		return domain.Fail[domain.Todo](domain.FailureNotFound, domain.MsgTodoNotFound, domain.MsgTodoNotFound)
	}

	resp = domain.Success[domain.Todo](msgTodoRetrieved)
	resp.SingleData = todo
	resp.EntityID = todo.ID
	return resp
}

func (s *TodoService) Filter(ctx context.Context, userID int64, filter domain.TodoFilter) (resp domain.Response[domain.Todo]) {
	defer recoverInto("Filter", &resp)

	todos, err := s.cache.Filter(ctx, userID, filter, func(ctx context.Context) ([]domain.Todo, error) {
		return s.todoRepository.Filter(ctx, userID, filter)
	})
	if err != nil {
		return internalFailure[domain.Todo]("Filter", err)
	}

	resp = domain.Success[domain.Todo](msgTodosRetrieved)
	resp.DataList = nonNil(todos)
	return resp
}

func (s *TodoService) AddTodo(ctx context.Context, userID int64, in domain.CreateTodoInput) (resp domain.Response[domain.Todo]) {
	defer recoverInto("AddTodo", &resp)
	return s.add(ctx, "AddTodo", userID, in, s.todoFactory.Create)
}

func (s *TodoService) AddHighPriorityTodo(ctx context.Context, userID int64, in domain.CreateTodoInput) (resp domain.Response[domain.Todo]) {
	defer recoverInto("AddHighPriorityTodo", &resp)
	return s.add(ctx, "AddHighPriorityTodo", userID, in, s.todoFactory.CreateHighPriority)
}

func (s *TodoService) AddMediumPriorityTodo(ctx context.Context, userID int64, in domain.CreateTodoInput) (resp domain.Response[domain.Todo]) {
	defer recoverInto("AddMediumPriorityTodo", &resp)
	return s.add(ctx, "AddMediumPriorityTodo", userID, in, s.todoFactory.CreateMediumPriority)
}

func (s *TodoService) AddLowPriorityTodo(ctx context.Context, userID int64, in domain.CreateTodoInput) (resp domain.Response[domain.Todo]) {
	defer recoverInto("AddLowPriorityTodo", &resp)
	return s.add(ctx, "AddLowPriorityTodo", userID, in, s.todoFactory.CreateLowPriority)
}

func (s *TodoService) add(ctx context.Context, op string, userID int64, in domain.CreateTodoInput, build builder) domain.Response[domain.Todo] {
	todo, err := build(userID, in)
	if err != nil {
		return validationOrInternal[domain.Todo](op, err)
	}

	result, err := s.todoRepository.Add(ctx, todo)
	if err != nil {
		return internalFailure[domain.Todo](op, err)
	}
	if !result.Succeeded {
		return businessFailure[domain.Todo](result)
	}

	s.afterWrite(*todo)
	if err := s.publisher.Publish(context.WithoutCancel(ctx), domain.NewTodoCreatedEvent(*todo)); err != nil {
		zap.L().Error("failed to publish todo created event", zap.Int64("todo_id", todo.ID), zap.Error(err))
	}

	resp := domain.Success[domain.Todo](messageOr(result.Message, msgTodoCreated))
	resp.SingleData = todo
	resp.EntityID = todo.ID
	return resp
}

func (s *TodoService) UpdateTodo(ctx context.Context, userID, id int64, in domain.UpdateTodoInput) (resp domain.Response[domain.Todo]) {
	defer recoverInto("UpdateTodo", &resp)

	existing, err := s.todoRepository.GetByID(ctx, userID, id)
	if err != nil {
		return internalFailure[domain.Todo]("UpdateTodo", err)
	}
	if existing == nil {
		return domain.Fail[domain.Todo](domain.FailureNotFound, domain.MsgTodoNotFoundOrNotOwned, domain.MsgTodoNotFoundOrNotOwned)
	}

	if err := s.todoFactory.Validator().ValidateUpdate(in); err != nil {
		return validationOrInternal[domain.Todo]("UpdateTodo", err)
	}

	updated := *existing
	if err := updated.Update(domain.TodoFields{
		Title:          in.Title,
		Description:    in.Description,
		DueDate:        in.DueDate,
		Status:         in.Status,
		Priority:       in.Priority,
		AdditionalData: in.AdditionalData,
		IsDeleted:      in.IsDeleted,
	}, s.now()); err != nil {
		return validationOrInternal[domain.Todo]("UpdateTodo", err)
	}

	result, err := s.todoRepository.Update(ctx, &updated)
	if err != nil {
		return internalFailure[domain.Todo]("UpdateTodo", err)
	}
	if !result.Succeeded {
		return businessFailure[domain.Todo](result)
	}

	s.afterWrite(updated)

	resp = domain.Success[domain.Todo](messageOr(result.Message, msgTodoUpdated))
	resp.SingleData = &updated
	resp.EntityID = updated.ID
	return resp
}

func (s *TodoService) DeleteTodo(ctx context.Context, userID, id int64) (resp domain.Response[domain.Todo]) {
	defer recoverInto("DeleteTodo", &resp)

	existing, err := s.todoRepository.GetByID(ctx, userID, id)
	if err != nil {
		return internalFailure[domain.Todo]("DeleteTodo", err)
	}
	if existing == nil {
		return domain.Fail[domain.Todo](domain.FailureNotFound, domain.MsgTodoNotFoundOrNotOwned, domain.MsgTodoNotFoundOrNotOwned)
	}

	result, err := s.todoRepository.Delete(ctx, userID, id)
	if err != nil {
		return internalFailure[domain.Todo]("DeleteTodo", err)
	}
	if !result.Succeeded {
		return businessFailure[domain.Todo](result)
	}

	s.afterWrite(*existing)

	resp = domain.Success[domain.Todo](messageOr(result.Message, msgTodoDeleted))
	resp.EntityID = id
	return resp
}

func (s *TodoService) SoftDeleteTodo(ctx context.Context, userID, id int64) (resp domain.Response[domain.Todo]) {
	defer recoverInto("SoftDeleteTodo", &resp)

	existing, err := s.todoRepository.GetByID(ctx, userID, id)
	if err != nil {
		return internalFailure[domain.Todo]("SoftDeleteTodo", err)
	}
	if existing == nil {
		return domain.Fail[domain.Todo](domain.FailureNotFound, domain.MsgTodoAlreadyDeleted, domain.MsgTodoAlreadyDeleted)
	}

	result, err := s.todoRepository.SoftDelete(ctx, userID, id)
	if err != nil {
		return internalFailure[domain.Todo]("SoftDeleteTodo", err)
	}
	if !result.Succeeded {
		return businessFailure[domain.Todo](result)
	}

	deleted := *existing
	deleted.IsDeleted = true
	s.afterWrite(deleted)

	resp = domain.Success[domain.Todo](messageOr(result.Message, msgTodoSoftDeleted))
	resp.EntityID = id
	return resp
}

func (s *TodoService) CompletedPercentage(ctx context.Context, userID int64) (resp domain.Response[float64]) {
	defer recoverInto("CompletedPercentage", &resp)

	pct, err := s.cache.CompletedPercentage(ctx, userID, func(ctx context.Context) (float64, error) {
		return s.todoRepository.CountCompletedPercentage(ctx, userID)
	})
	if err != nil {
		return internalFailure[float64]("CompletedPercentage", err)
	}
	return percentageResponse(pct)
}

func (s *TodoService) PendingPercentage(ctx context.Context, userID int64) (resp domain.Response[float64]) {
	defer recoverInto("PendingPercentage", &resp)

	pct, err := s.cache.PendingPercentage(ctx, userID, func(ctx context.Context) (float64, error) {
		return s.todoRepository.CountPendingPercentage(ctx, userID)
	})
	if err != nil {
		return internalFailure[float64]("PendingPercentage", err)
	}
	return percentageResponse(pct)
}

// afterWrite runs the post-commit side effects shared by every write.
func (s *TodoService) afterWrite(todo domain.Todo) {
	s.queue.Enqueue(todo)
	s.cache.Invalidate(todo.UserID)
}

func percentageResponse(pct float64) domain.Response[float64] {
	resp := domain.Success[float64](msgPercentage)
	resp.SingleData = &pct
	return resp
}

func recoverInto[T any](op string, resp *domain.Response[T]) {
	if r := recover(); r != nil {
		zap.L().Error("todo operation panicked", zap.String("operation", op), zap.Any("panic", r))
		*resp = domain.Fail[T](domain.FailureInternal, msgUnexpectedFailure, fmt.Sprint(r))
	}
}

func internalFailure[T any](op string, err error) domain.Response[T] {
	zap.L().Error("todo operation failed", zap.String("operation", op), zap.Error(err))
	return domain.Fail[T](domain.FailureInternal, msgUnexpectedFailure, err.Error())
}

func validationOrInternal[T any](op string, err error) domain.Response[T] {
	if vErr, ok := domain.AsValidationError(err); ok {
		return domain.Fail[T](domain.FailureValidation, msgValidationFailed, vErr.Errors...)
	}
	return internalFailure[T](op, err)
}

func businessFailure[T any](result domain.WriteResult) domain.Response[T] {
	kind := domain.FailureConflict
	if errors.Is(result.Reason, domain.ErrTodoNotFound) {
		kind = domain.FailureNotFound
	}
	return domain.Fail[T](kind, result.Message, result.Message)
}

func messageOr(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}

func nonNil(todos []domain.Todo) []domain.Todo {
	if todos == nil {
		return []domain.Todo{}
	}
	return todos
}
