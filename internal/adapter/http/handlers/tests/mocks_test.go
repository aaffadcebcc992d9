package tests

import (
	"context"

	"github.com/stretchr/testify/mock"

	"todoapi/internal/core/domain"
)

type todoServiceMock struct {
	mock.Mock
}

func (m *todoServiceMock) todos(args mock.Arguments) domain.Response[domain.Todo] {
	return args.Get(0).(domain.Response[domain.Todo])
}

func (m *todoServiceMock) GetAll(ctx context.Context, userID int64) domain.Response[domain.Todo] {
	return m.todos(m.Called(ctx, userID))
}

func (m *todoServiceMock) GetByID(ctx context.Context, userID, id int64) domain.Response[domain.Todo] {
	return m.todos(m.Called(ctx, userID, id))
}

func (m *todoServiceMock) Filter(ctx context.Context, userID int64, filter domain.TodoFilter) domain.Response[domain.Todo] {
	return m.todos(m.Called(ctx, userID, filter))
}

func (m *todoServiceMock) AddTodo(ctx context.Context, userID int64, in domain.CreateTodoInput) domain.Response[domain.Todo] {
	return m.todos(m.Called(ctx, userID, in))
}

func (m *todoServiceMock) AddHighPriorityTodo(ctx context.Context, userID int64, in domain.CreateTodoInput) domain.Response[domain.Todo] {
	return m.todos(m.Called(ctx, userID, in))
}

func (m *todoServiceMock) AddMediumPriorityTodo(ctx context.Context, userID int64, in domain.CreateTodoInput) domain.Response[domain.Todo] {
	return m.todos(m.Called(ctx, userID, in))
}

func (m *todoServiceMock) AddLowPriorityTodo(ctx context.Context, userID int64, in domain.CreateTodoInput) domain.Response[domain.Todo] {
	return m.todos(m.Called(ctx, userID, in))
}

func (m *todoServiceMock) UpdateTodo(ctx context.Context, userID, id int64, in domain.UpdateTodoInput) domain.Response[domain.Todo] {
	return m.todos(m.Called(ctx, userID, id, in))
}

func (m *todoServiceMock) DeleteTodo(ctx context.Context, userID, id int64) domain.Response[domain.Todo] {
	return m.todos(m.Called(ctx, userID, id))
}

func (m *todoServiceMock) SoftDeleteTodo(ctx context.Context, userID, id int64) domain.Response[domain.Todo] {
	return m.todos(m.Called(ctx, userID, id))
}

func (m *todoServiceMock) CompletedPercentage(ctx context.Context, userID int64) domain.Response[float64] {
	return m.Called(ctx, userID).Get(0).(domain.Response[float64])
}

func (m *todoServiceMock) PendingPercentage(ctx context.Context, userID int64) domain.Response[float64] {
	return m.Called(ctx, userID).Get(0).(domain.Response[float64])
}

type authServiceMock struct {
	mock.Mock
}

func (m *authServiceMock) Register(ctx context.Context, in domain.RegisterInput) (domain.AuthToken, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(domain.AuthToken), args.Error(1)
}

func (m *authServiceMock) Login(ctx context.Context, in domain.LoginInput) (domain.AuthToken, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(domain.AuthToken), args.Error(1)
}

func (m *authServiceMock) CurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	args := m.Called(ctx, userID)

	var user *domain.User
	if value := args.Get(0); value != nil {
		user = value.(*domain.User)
	}
	return user, args.Error(1)
}

// staticTokens accepts exactly one token.
type staticTokens struct {
	token  string
	userID int64
}

func (s staticTokens) Issue(user domain.User) (domain.AuthToken, error) {
	return domain.AuthToken{Token: s.token, User: user}, nil
}

func (s staticTokens) Verify(token string) (int64, error) {
	if token != s.token {
		return 0, domain.ErrInvalidToken
	}
	return s.userID, nil
}
