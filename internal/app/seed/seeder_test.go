package seed_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authadapter "todoapi/internal/adapter/auth"
	"todoapi/internal/adapter/memory"
	"todoapi/internal/app/cache"
	"todoapi/internal/app/events"
	"todoapi/internal/app/factory"
	"todoapi/internal/app/seed"
	"todoapi/internal/app/service"
	"todoapi/internal/config"
	"todoapi/internal/core/domain"
)

type discardQueue struct{}

func (discardQueue) Enqueue(domain.Todo) {}

func newSeeder() (*seed.Seeder, *service.TodoService) {
	tokens := authadapter.NewJWTIssuer(config.AuthConfig{JWTSecret: "seed", Issuer: "todo-api", TokenTTL: time.Hour})
	authService := service.NewAuthService(memory.NewUserRepository(), tokens)
	todoService := service.NewTodoService(
		memory.NewTodoRepository(),
		factory.NewTodoFactory(nil, nil),
		discardQueue{},
		cache.NewTodoCache(cache.DefaultConfig()),
		events.NewPublisher(),
	)
	return seed.NewSeeder(authService, todoService), todoService
}

func TestDefaultFixture(t *testing.T) {
	fixture, err := seed.DefaultFixture()
	require.NoError(t, err)

	assert.Equal(t, "demo", fixture.User.Username)
	require.Len(t, fixture.Todos, 3)
	assert.Equal(t, "Comprar víveres", fixture.Todos[0].Title)
	assert.Nil(t, fixture.Todos[0].Priority)
	assert.Equal(t, "completed", fixture.Todos[1].Status)
	assert.Equal(t, 3, fixture.Todos[2].DueInDays)
}

func TestParseFixture_RequiresCredentials(t *testing.T) {
	_, err := seed.ParseFixture([]byte("todos: []"))
	assert.Error(t, err)

	_, err = seed.ParseFixture([]byte("user: ["))
	assert.Error(t, err)
}

func TestSeeder_RunIsIdempotent(t *testing.T) {
	seeder, todoService := newSeeder()
	fixture, err := seed.DefaultFixture()
	require.NoError(t, err)
	ctx := context.Background()

	first, err := seeder.Run(ctx, fixture)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Created)
	assert.NotZero(t, first.UserID)

	second, err := seeder.Run(ctx, fixture)
	require.NoError(t, err)
	assert.Equal(t, first.UserID, second.UserID)
	assert.Zero(t, second.Created)

	all := todoService.GetAll(ctx, first.UserID)
	require.False(t, all.Failed())
	require.Len(t, all.DataList, 3)

	byTitle := map[string]domain.Todo{}
	for _, todo := range all.DataList {
		byTitle[todo.Title] = todo
	}
	assert.Equal(t, domain.PriorityMedium, *byTitle["Comprar víveres"].Priority)
	assert.True(t, byTitle["Llamar al doctor"].IsCompleted())
	assert.Equal(t, domain.PriorityLow, *byTitle["Llamar al doctor"].Priority)
	assert.Equal(t, domain.PriorityHigh, *byTitle["Enviar informe"].Priority)
	assert.Equal(t, 3, byTitle["Enviar informe"].DaysRemaining(time.Now()))
}
