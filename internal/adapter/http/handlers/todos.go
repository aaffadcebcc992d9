package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"todoapi/internal/adapter/http/dto"
	"todoapi/internal/adapter/http/mapper"
	"todoapi/internal/adapter/http/middleware"
	"todoapi/internal/adapter/http/validation"
	"todoapi/internal/core/domain"
	"todoapi/internal/core/ports"
	"todoapi/pkg/apierrors"
)

const (
	LevelHigh   = "high"
	LevelMedium = "medium"
	LevelLow    = "low"
)

type TodoHandler struct {
	todoService ports.TodoService
	now         func() time.Time
}

func NewTodoHandler(todoService ports.TodoService) *TodoHandler {
	return &TodoHandler{todoService: todoService, now: time.Now}
}

func (h *TodoHandler) GetAll(c *gin.Context) {
	resp := h.todoService.GetAll(c.Request.Context(), middleware.UserIDFromContext(c))
	h.writeTodos(c, http.StatusOK, resp)
}

func (h *TodoHandler) GetByID(c *gin.Context) {
	id, ok := todoID(c)
	if !ok {
		return
	}
	resp := h.todoService.GetByID(c.Request.Context(), middleware.UserIDFromContext(c), id)
	h.writeTodos(c, http.StatusOK, resp)
}

func (h *TodoHandler) Filter(c *gin.Context) {
	filter, err := validation.BuildTodoFilter(c.Request.URL.Query())
	if err != nil {
		badRequest(c, apierrors.MsgInvalidTodoFilter)
		return
	}
	resp := h.todoService.Filter(c.Request.Context(), middleware.UserIDFromContext(c), filter)
	h.writeTodos(c, http.StatusOK, resp)
}

func (h *TodoHandler) Create(c *gin.Context) {
	in, ok := bindCreateInput(c)
	if !ok {
		return
	}
	resp := h.todoService.AddTodo(c.Request.Context(), middleware.UserIDFromContext(c), in)
	h.writeTodos(c, http.StatusCreated, resp)
}

// CreateWithPriority serves POST /todos/priority/:level; the level overrides any body priority.
func (h *TodoHandler) CreateWithPriority(c *gin.Context) {
	var add func(context.Context, int64, domain.CreateTodoInput) domain.Response[domain.Todo]
	switch c.Param("level") {
	case LevelHigh:
		add = h.todoService.AddHighPriorityTodo
	case LevelMedium:
		add = h.todoService.AddMediumPriorityTodo
	case LevelLow:
		add = h.todoService.AddLowPriorityTodo
	default:
		badRequest(c, apierrors.MsgInvalidPriorityLevel)
		return
	}

	in, ok := bindCreateInput(c)
	if !ok {
		return
	}
	resp := add(c.Request.Context(), middleware.UserIDFromContext(c), in)
	h.writeTodos(c, http.StatusCreated, resp)
}

func (h *TodoHandler) Update(c *gin.Context) {
	id, ok := todoID(c)
	if !ok {
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		badRequest(c, apierrors.MsgInvalidTodoPayload)
		return
	}
	var req dto.UpdateTodoRequest
	raw, err := validation.DecodeTodoRequest(body, &req)
	if err != nil {
		badRequest(c, apierrors.MsgInvalidTodoPayload)
		return
	}
	in, err := validation.BuildUpdateTodoInput(req, raw)
	if err != nil {
		badRequest(c, apierrors.MsgInvalidTodoPayload)
		return
	}

	resp := h.todoService.UpdateTodo(c.Request.Context(), middleware.UserIDFromContext(c), id, in)
	h.writeTodos(c, http.StatusOK, resp)
}

func (h *TodoHandler) Delete(c *gin.Context) {
	id, ok := todoID(c)
	if !ok {
		return
	}
	resp := h.todoService.DeleteTodo(c.Request.Context(), middleware.UserIDFromContext(c), id)
	h.writeTodos(c, http.StatusOK, resp)
}

func (h *TodoHandler) SoftDelete(c *gin.Context) {
	id, ok := todoID(c)
	if !ok {
		return
	}
	resp := h.todoService.SoftDeleteTodo(c.Request.Context(), middleware.UserIDFromContext(c), id)
	h.writeTodos(c, http.StatusOK, resp)
}

func (h *TodoHandler) CompletedPercentage(c *gin.Context) {
	resp := h.todoService.CompletedPercentage(c.Request.Context(), middleware.UserIDFromContext(c))
	c.JSON(StatusFor(resp.Failed(), resp.Failure, http.StatusOK), mapper.ToPercentageEnvelope(resp))
}

func (h *TodoHandler) PendingPercentage(c *gin.Context) {
	resp := h.todoService.PendingPercentage(c.Request.Context(), middleware.UserIDFromContext(c))
	c.JSON(StatusFor(resp.Failed(), resp.Failure, http.StatusOK), mapper.ToPercentageEnvelope(resp))
}

func (h *TodoHandler) writeTodos(c *gin.Context, okStatus int, resp domain.Response[domain.Todo]) {
	c.JSON(StatusFor(resp.Failed(), resp.Failure, okStatus), mapper.ToTodoEnvelope(resp, h.now()))
}

// StatusFor maps an envelope outcome to an HTTP status code.
func StatusFor(failed bool, kind domain.FailureKind, okStatus int) int {
	if !failed {
		return okStatus
	}
	switch kind {
	case domain.FailureValidation:
		return http.StatusBadRequest
	case domain.FailureNotFound:
		return http.StatusNotFound
	case domain.FailureConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func bindCreateInput(c *gin.Context) (domain.CreateTodoInput, bool) {
	body, err := c.GetRawData()
	if err != nil {
		badRequest(c, apierrors.MsgInvalidTodoPayload)
		return domain.CreateTodoInput{}, false
	}
	var req dto.CreateTodoRequest
	if _, err := validation.DecodeTodoRequest(body, &req); err != nil {
		badRequest(c, apierrors.MsgInvalidTodoPayload)
		return domain.CreateTodoInput{}, false
	}
	in, err := validation.BuildCreateTodoInput(req)
	if err != nil {
		badRequest(c, apierrors.MsgInvalidTodoPayload)
		return domain.CreateTodoInput{}, false
	}
	return in, true
}

func todoID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, apierrors.MsgInvalidTodoID)
		return 0, false
	}
	return id, true
}

func badRequest(c *gin.Context, msgKey string, details ...string) {
	c.JSON(
		http.StatusBadRequest,
		apierrors.CreateError(http.StatusBadRequest, msgKey, middleware.GetLang(c), details...),
	)
}
