package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/ports"
)

const (
	msgTodoAdded       = "Todo added successfully."
	msgTodoUpdated     = "Todo updated successfully."
	msgTodoDeleted     = "Todo deleted successfully."
	msgTodoSoftDeleted = "Todo marked as deleted."
)

// TodoRepository keeps todos in process memory. The title check and the
// insert happen under one lock, so duplicate titles can never both succeed.
type TodoRepository struct {
	mu     sync.RWMutex
	todos  map[int64]domain.Todo
	nextID int64
}

var _ ports.TodoRepository = (*TodoRepository)(nil)

func NewTodoRepository() *TodoRepository {
	return &TodoRepository{todos: make(map[int64]domain.Todo)}
}

func (r *TodoRepository) GetAll(ctx context.Context, userID int64) ([]domain.Todo, error) {
	return r.Filter(ctx, userID, domain.TodoFilter{})
}

func (r *TodoRepository) GetByID(_ context.Context, userID, id int64) (*domain.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	todo, ok := r.todos[id]
	if !ok || todo.UserID != userID || todo.IsDeleted {
		return nil, nil
	}
	return &todo, nil
}

func (r *TodoRepository) Filter(_ context.Context, userID int64, filter domain.TodoFilter) ([]domain.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	start, end, byDay := filter.DayRange()
	var title string
	if filter.Title != nil {
		title = strings.ToLower(*filter.Title)
	}

	todos := make([]domain.Todo, 0)
	for _, todo := range r.todos {
		if todo.UserID != userID || todo.IsDeleted {
			continue
		}
		if filter.Status != nil && todo.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && (todo.Priority == nil || *todo.Priority != *filter.Priority) {
			continue
		}
		if title != "" && !strings.Contains(strings.ToLower(todo.Title), title) {
			continue
		}
		if byDay && (todo.DueDate == nil || todo.DueDate.Before(start) || !todo.DueDate.Before(end)) {
			continue
		}
		todos = append(todos, todo)
	}

	sort.Slice(todos, func(i, j int) bool { return todos[i].ID < todos[j].ID })
	return todos, nil
}

func (r *TodoRepository) Add(_ context.Context, todo *domain.Todo) (domain.WriteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.titleTaken(todo.Title, 0) {
		return domain.WriteFailed(domain.ErrDuplicateTitle, "A todo with that title already exists."), nil
	}

	r.nextID++
	todo.ID = r.nextID
	todo.Version = 1
	r.todos[todo.ID] = *todo
	return domain.WriteOK(msgTodoAdded), nil
}

func (r *TodoRepository) Update(_ context.Context, todo *domain.Todo) (domain.WriteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.todos[todo.ID]
	if !ok || current.UserID != todo.UserID || current.IsDeleted || current.Version != todo.Version {
		return domain.WriteFailed(domain.ErrConcurrentUpdate, "The todo was modified or deleted by another request."), nil
	}
	if r.titleTaken(todo.Title, todo.ID) {
		return domain.WriteFailed(domain.ErrDuplicateTitle, "A todo with that title already exists."), nil
	}

	todo.Version++
	todo.CreatedAt = current.CreatedAt
	r.todos[todo.ID] = *todo
	return domain.WriteOK(msgTodoUpdated), nil
}

func (r *TodoRepository) Delete(_ context.Context, userID, id int64) (domain.WriteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.todos[id]
	if !ok || current.UserID != userID {
		return domain.WriteFailed(domain.ErrTodoNotFound, domain.MsgTodoNotFound), nil
	}
	delete(r.todos, id)
	return domain.WriteOK(msgTodoDeleted), nil
}

func (r *TodoRepository) SoftDelete(_ context.Context, userID, id int64) (domain.WriteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.todos[id]
	if !ok || current.UserID != userID || current.IsDeleted {
		return domain.WriteFailed(domain.ErrTodoNotFound, domain.MsgTodoAlreadyDeleted), nil
	}
	current.IsDeleted = true
	current.Version++
	r.todos[id] = current
	return domain.WriteOK(msgTodoSoftDeleted), nil
}

func (r *TodoRepository) CountCompletedPercentage(_ context.Context, userID int64) (float64, error) {
	return r.percentage(userID, domain.TodoStatusCompleted), nil
}

func (r *TodoRepository) CountPendingPercentage(_ context.Context, userID int64) (float64, error) {
	return r.percentage(userID, domain.TodoStatusPending), nil
}

// Lookup returns the stored record regardless of owner or soft-delete state.
func (r *TodoRepository) Lookup(id int64) (domain.Todo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	todo, ok := r.todos[id]
	return todo, ok
}

func (r *TodoRepository) percentage(userID int64, status domain.TodoStatus) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total, matching int
	for _, todo := range r.todos {
		if todo.UserID != userID || todo.IsDeleted {
			continue
		}
		total++
		if todo.Status == status {
			matching++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(matching) * 100 / float64(total)
}

// titleTaken applies the same case-insensitive rule as the MySQL unique index.
func (r *TodoRepository) titleTaken(title string, exceptID int64) bool {
	for id, todo := range r.todos {
		if id != exceptID && strings.EqualFold(todo.Title, title) {
			return true
		}
	}
	return false
}
