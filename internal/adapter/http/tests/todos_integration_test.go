//go:build integration
// +build integration

package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	authadapter "todoapi/internal/adapter/auth"
	dbadapter "todoapi/internal/adapter/db"
	httpadapter "todoapi/internal/adapter/http"
	"todoapi/internal/adapter/http/dto"
	"todoapi/internal/adapter/http/handlers"
	"todoapi/internal/adapter/notify"
	"todoapi/internal/app/cache"
	"todoapi/internal/app/events"
	"todoapi/internal/app/factory"
	"todoapi/internal/app/queue"
	appservice "todoapi/internal/app/service"
	"todoapi/internal/config"
	"todoapi/internal/core/domain"
)

type TodosIntegrationSuite struct {
	IntegrationSuiteBase
	router *gin.Engine
	queue  *queue.ProcessingQueue
	token  string
}

func TestTodosIntegrationSuite(t *testing.T) {
	suite.Run(t, new(TodosIntegrationSuite))
}

func (s *TodosIntegrationSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.ResetDatabase()

	processingQueue, err := queue.NewProcessingQueue(queue.SimulatedProcessor(0))
	s.Require().NoError(err)
	s.queue = processingQueue

	publisher := events.NewPublisher()
	publisher.RegisterHandler(domain.EventTodoCreated, events.NewTodoCreatedHandler(notify.LogNotifier{}))

	tokens := authadapter.NewJWTIssuer(config.AuthConfig{JWTSecret: "integration", Issuer: "todo-api", TokenTTL: time.Hour})
	authService := appservice.NewAuthService(dbadapter.NewUserRepository(s.DB), tokens)
	todoService := appservice.NewTodoService(
		dbadapter.NewTodoRepository(s.DB),
		factory.NewTodoFactory(nil, nil),
		processingQueue,
		cache.NewTodoCache(cache.DefaultConfig()),
		publisher,
	)

	router := gin.New()
	httpadapter.RegisterRoutes(router, tokens, httpadapter.Handlers{
		Health: handlers.NewHealthHandler(config.AppConfig{Name: "todo-api"}, s.DB.PingContext, nil),
		Auth:   handlers.NewAuthHandler(authService),
		Todos:  handlers.NewTodoHandler(todoService),
	})
	s.router = router

	token, err := authService.Register(context.Background(), domain.RegisterInput{
		Username: "demo",
		Email:    "demo@example.com",
		Password: "demo-password",
	})
	s.Require().NoError(err)
	s.token = token.Token
}

func (s *TodosIntegrationSuite) TearDownTest() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Require().NoError(s.queue.Close(ctx))
}

func (s *TodosIntegrationSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		s.Require().NoError(err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *TodosIntegrationSuite) envelope(rec *httptest.ResponseRecorder) dto.Envelope[dto.TodoItem] {
	var got dto.Envelope[dto.TodoItem]
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	return got
}

func (s *TodosIntegrationSuite) TestHealth_ReportsMySQL() {
	rec := s.do(http.MethodGet, "/api/health", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
}

func (s *TodosIntegrationSuite) TestCreateFetchAndList() {
	rec := s.do(http.MethodPost, "/api/todos", map[string]any{"title": "Buy milk", "description": "2 liters"})
	s.Require().Equal(http.StatusCreated, rec.Code)
	created := s.envelope(rec)
	s.Require().True(created.Successful)
	s.Require().NotZero(created.EntityID)
	s.Require().Equal("medium", *created.SingleData.Priority)
	s.Require().Equal(7, created.SingleData.DaysRemaining)

	rec = s.do(http.MethodGet, "/api/todos/"+itoa(created.EntityID), nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().Equal("Buy milk", s.envelope(rec).SingleData.Title)

	rec = s.do(http.MethodGet, "/api/todos", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().Len(s.envelope(rec).DataList, 1)
}

func (s *TodosIntegrationSuite) TestDuplicateTitleIsConflict() {
	s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/api/todos", map[string]any{"title": "Report"}).Code)

	rec := s.do(http.MethodPost, "/api/todos/priority/high", map[string]any{"title": "report"})
	s.Require().Equal(http.StatusConflict, rec.Code)
	s.Require().False(s.envelope(rec).Successful)
}

func (s *TodosIntegrationSuite) TestValidationFailureIsBadRequest() {
	rec := s.do(http.MethodPost, "/api/todos", map[string]any{"title": "  ", "due_date": "2001-01-01"})
	s.Require().Equal(http.StatusBadRequest, rec.Code)
	got := s.envelope(rec)
	s.Require().Contains(got.Errors, domain.MsgTitleRequired)
	s.Require().Contains(got.Errors, domain.MsgDueDateInPast)
}

func (s *TodosIntegrationSuite) TestUpdateThenPercentagesAndFilter() {
	rec := s.do(http.MethodPost, "/api/todos/priority/low", map[string]any{"title": "Call doctor"})
	id := s.envelope(rec).EntityID
	s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/api/todos", map[string]any{"title": "Send report"}).Code)

	rec = s.do(http.MethodGet, "/api/todos/stats/completed", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().Equal(0.0, percentage(s, rec))

	rec = s.do(http.MethodPut, "/api/todos/"+itoa(id), map[string]any{"title": "Call doctor", "status": "completed", "priority": "low"})
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/todos/stats/completed", nil)
	s.Require().Equal(50.0, percentage(s, rec))

	rec = s.do(http.MethodGet, "/api/todos/filter?status=completed&title=doctor", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	list := s.envelope(rec).DataList
	s.Require().Len(list, 1)
	s.Require().Equal(id, list[0].ID)
}

func (s *TodosIntegrationSuite) TestSoftDeleteThenDelete() {
	id := s.envelope(s.do(http.MethodPost, "/api/todos", map[string]any{"title": "Archive me"})).EntityID

	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/api/todos/"+itoa(id)+"/soft-delete", nil).Code)
	s.Require().Equal(http.StatusNotFound, s.do(http.MethodPost, "/api/todos/"+itoa(id)+"/soft-delete", nil).Code)
	s.Require().Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/todos/"+itoa(id), nil).Code)
	s.Require().Equal(http.StatusNotFound, s.do(http.MethodDelete, "/api/todos/999999", nil).Code)
}

func percentage(s *TodosIntegrationSuite, rec *httptest.ResponseRecorder) float64 {
	var got dto.Envelope[float64]
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	s.Require().NotNil(got.SingleData)
	return *got.SingleData
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
