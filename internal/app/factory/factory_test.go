package factory_test

import (
	"strings"
	"testing"
	"time"

	"todoapi/internal/app/factory"
	"todoapi/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func newFactory() *factory.TodoFactory {
	return factory.NewTodoFactory(factory.NewValidator(clock), clock)
}

func TestCreate_DefaultsToMediumAndSevenDays(t *testing.T) {
	todo, err := newFactory().Create(3, domain.CreateTodoInput{Title: "Plan sprint"})
	require.NoError(t, err)

	require.NotNil(t, todo.Priority)
	assert.Equal(t, domain.PriorityMedium, *todo.Priority)
	require.NotNil(t, todo.DueDate)
	assert.Equal(t, fixedNow.Add(7*24*time.Hour), *todo.DueDate)
	assert.Equal(t, fixedNow, todo.CreatedAt)
	assert.Equal(t, int64(3), todo.UserID)
}

func TestCreate_KeepsRequestedPriority(t *testing.T) {
	todo, err := newFactory().Create(3, domain.CreateTodoInput{
		Title:    "Plan sprint",
		Priority: domain.PriorityPtr(domain.PriorityLow),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityLow, *todo.Priority)
}

func TestPriorityEntryPoints_ApplyDefaultDueDates(t *testing.T) {
	f := newFactory()
	cases := []struct {
		name     string
		create   func(int64, domain.CreateTodoInput) (*domain.Todo, error)
		priority domain.Priority
		dueIn    time.Duration
	}{
		{"high", f.CreateHighPriority, domain.PriorityHigh, 2 * 24 * time.Hour},
		{"medium", f.CreateMediumPriority, domain.PriorityMedium, 7 * 24 * time.Hour},
		{"low", f.CreateLowPriority, domain.PriorityLow, 30 * 24 * time.Hour},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			todo, err := tc.create(1, domain.CreateTodoInput{Title: "Buy milk"})
			require.NoError(t, err)
			assert.Equal(t, tc.priority, *todo.Priority)
			assert.Equal(t, fixedNow.Add(tc.dueIn), *todo.DueDate)
		})
	}
}

func TestCreateHighPriority_SuppliedDueDateWins(t *testing.T) {
	tomorrow := fixedNow.Add(24 * time.Hour)
	todo, err := newFactory().CreateHighPriority(1, domain.CreateTodoInput{Title: "Buy milk", DueDate: &tomorrow})
	require.NoError(t, err)

	assert.Equal(t, domain.PriorityHigh, *todo.Priority)
	assert.Equal(t, tomorrow, *todo.DueDate)
}

func TestValidate_ReportsAllViolationsInOrder(t *testing.T) {
	past := fixedNow.Add(-time.Hour)
	longDescription := strings.Repeat("d", 201)
	longData := strings.Repeat("a", 501)

	_, err := newFactory().Create(1, domain.CreateTodoInput{
		Title:          " ",
		DueDate:        &past,
		Description:    &longDescription,
		AdditionalData: &longData,
		Priority:       domain.PriorityPtr("urgent"),
		Status:         "archived",
	})

	vErr, ok := domain.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, []string{
		domain.MsgTitleRequired,
		domain.MsgDueDateInPast,
		domain.MsgDescriptionTooLong,
		domain.MsgAdditionalDataTooLong,
		domain.MsgInvalidPriority,
		domain.MsgInvalidStatus,
	}, vErr.Errors)
}

func TestValidate_RejectsOverlongTitle(t *testing.T) {
	_, err := newFactory().Create(1, domain.CreateTodoInput{
		Title:  strings.Repeat("t", domain.MaxTitleLength+1),
		Status: "archived",
	})

	vErr, ok := domain.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, []string{domain.MsgTitleTooLong, domain.MsgInvalidStatus}, vErr.Errors)
}

func TestValidate_AcceptsBoundaryLengths(t *testing.T) {
	title := strings.Repeat("ñ", domain.MaxTitleLength)
	description := strings.Repeat("é", 200)
	data := strings.Repeat("a", 500)

	err := factory.NewValidator(clock).Validate(domain.CreateTodoInput{
		Title:          title,
		Description:    &description,
		AdditionalData: &data,
		Status:         domain.TodoStatusInProgress,
	})
	assert.NoError(t, err)
}

func TestValidate_DueDateEqualToNowIsRejected(t *testing.T) {
	due := fixedNow
	err := factory.NewValidator(clock).Validate(domain.CreateTodoInput{Title: "ok", DueDate: &due})

	vErr, ok := domain.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, []string{domain.MsgDueDateInPast}, vErr.Errors)
}
