package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/ports"
)

//go:embed seed.yaml
var defaultFixture []byte

type Fixture struct {
	User  UserFixture   `yaml:"user"`
	Todos []TodoFixture `yaml:"todos"`
}

type UserFixture struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type TodoFixture struct {
	Title          string  `yaml:"title"`
	Description    *string `yaml:"description"`
	DueInDays      int     `yaml:"due_in_days"`
	AdditionalData *string `yaml:"additional_data"`
	Status         string  `yaml:"status"`
	Priority       *string `yaml:"priority"`
}

// Result reports what a seeding run did.
type Result struct {
	UserID  int64
	Created int
	Skipped int
}

func DefaultFixture() (Fixture, error) {
	return ParseFixture(defaultFixture)
}

func ParseFixture(data []byte) (Fixture, error) {
	var fixture Fixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return Fixture{}, fmt.Errorf("parse seed fixture: %w", err)
	}
	if fixture.User.Username == "" || fixture.User.Password == "" {
		return Fixture{}, errors.New("seed fixture needs a username and password")
	}
	return fixture, nil
}

// Seeder loads demo data through the services, so it obeys the same
// validation and side effects as API traffic.
type Seeder struct {
	auth  ports.AuthService
	todos ports.TodoService
	now   func() time.Time
}

func NewSeeder(auth ports.AuthService, todos ports.TodoService) *Seeder {
	return &Seeder{auth: auth, todos: todos, now: time.Now}
}

// Run registers the fixture user (or logs in if it exists) and adds the
// fixture todos when that user has none yet.
func (s *Seeder) Run(ctx context.Context, fixture Fixture) (Result, error) {
	user, err := s.ensureUser(ctx, fixture.User)
	if err != nil {
		return Result{}, err
	}
	result := Result{UserID: user.ID}

	existing := s.todos.GetAll(ctx, user.ID)
	if existing.Failed() {
		return result, fmt.Errorf("list todos: %s", existing.Message)
	}
	if len(existing.DataList) > 0 {
		zap.L().Info("seed skipped, user already has todos", zap.Int64("user_id", user.ID))
		return result, nil
	}

	today := truncateDay(s.now().UTC())
	for _, todo := range fixture.Todos {
		resp := s.todos.AddTodo(ctx, user.ID, todo.input(today))
		if resp.Failed() {
			if resp.Failure == domain.FailureConflict {
				zap.L().Warn("seed todo skipped", zap.String("title", todo.Title), zap.String("reason", resp.Message))
				result.Skipped++
				continue
			}
			return result, fmt.Errorf("seed %q: %s %v", todo.Title, resp.Message, resp.Errors)
		}
		result.Created++
	}

	zap.L().Info("seed completed",
		zap.Int64("user_id", user.ID),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (s *Seeder) ensureUser(ctx context.Context, fixture UserFixture) (domain.User, error) {
	token, err := s.auth.Register(ctx, domain.RegisterInput{
		Username: fixture.Username,
		Email:    fixture.Email,
		Password: fixture.Password,
	})
	if err == nil {
		return token.User, nil
	}
	if !errors.Is(err, domain.ErrUserExists) {
		return domain.User{}, fmt.Errorf("register seed user: %w", err)
	}

	token, err = s.auth.Login(ctx, domain.LoginInput{Username: fixture.Username, Password: fixture.Password})
	if err != nil {
		return domain.User{}, fmt.Errorf("login seed user: %w", err)
	}
	return token.User, nil
}

func (t TodoFixture) input(today time.Time) domain.CreateTodoInput {
	in := domain.CreateTodoInput{
		Title:          t.Title,
		Description:    t.Description,
		AdditionalData: t.AdditionalData,
		Status:         domain.TodoStatus(t.Status),
	}
	if t.DueInDays > 0 {
		due := today.AddDate(0, 0, t.DueInDays)
		in.DueDate = &due
	}
	if t.Priority != nil {
		in.Priority = domain.PriorityPtr(domain.Priority(*t.Priority))
	}
	return in
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
