package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	"todoapi/internal/adapter/http/dto"
	"todoapi/internal/core/domain"
)

var (
	ErrInvalidTodoPayload = errors.New("invalid todo payload")
	ErrInvalidTodoFilter  = errors.New("invalid todo filter")
)

// nonNullable fields may be omitted but not sent as an explicit null.
var nonNullable = []string{"status", "is_deleted"}

// DecodeTodoRequest unmarshals body into req and also returns the raw fields,
// so callers can tell an omitted field from an explicit null.
func DecodeTodoRequest(body []byte, req any) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return nil, ErrInvalidTodoPayload
	}
	if err := json.Unmarshal(body, req); err != nil {
		return nil, ErrInvalidTodoPayload
	}
	for _, field := range nonNullable {
		if hasJSONField(raw, field) && isJSONNull(raw[field]) {
			return nil, ErrInvalidTodoPayload
		}
	}
	return raw, nil
}

func BuildCreateTodoInput(req dto.CreateTodoRequest) (domain.CreateTodoInput, error) {
	dueDate, err := parseOptionalDueDate(req.DueDate)
	if err != nil {
		return domain.CreateTodoInput{}, err
	}

	in := domain.CreateTodoInput{
		Title:          req.Title,
		Description:    req.Description,
		DueDate:        dueDate,
		Priority:       toPriority(req.Priority),
		AdditionalData: req.AdditionalData,
	}
	if req.Status != nil {
		in.Status = domain.TodoStatus(strings.TrimSpace(*req.Status))
	}
	return in, nil
}

func BuildUpdateTodoInput(req dto.UpdateTodoRequest, raw map[string]json.RawMessage) (domain.UpdateTodoInput, error) {
	if len(raw) == 0 {
		return domain.UpdateTodoInput{}, ErrInvalidTodoPayload
	}

	dueDate, err := parseOptionalDueDate(req.DueDate)
	if err != nil {
		return domain.UpdateTodoInput{}, err
	}

	in := domain.UpdateTodoInput{
		Title:          req.Title,
		Description:    req.Description,
		DueDate:        dueDate,
		Priority:       toPriority(req.Priority),
		AdditionalData: req.AdditionalData,
	}
	if req.Status != nil {
		in.Status = domain.TodoStatus(strings.TrimSpace(*req.Status))
	}
	if req.IsDeleted != nil {
		in.IsDeleted = *req.IsDeleted
	}
	return in, nil
}

// BuildTodoFilter reads status, priority, title and due_date query parameters.
// Blank parameters are treated as absent.
func BuildTodoFilter(query url.Values) (domain.TodoFilter, error) {
	var filter domain.TodoFilter

	if value := strings.TrimSpace(query.Get("status")); value != "" {
		status := domain.TodoStatus(value)
		if !status.IsValid() {
			return domain.TodoFilter{}, ErrInvalidTodoFilter
		}
		filter.Status = &status
	}

	if value := strings.TrimSpace(query.Get("priority")); value != "" {
		priority := domain.Priority(value)
		if !priority.IsValid() {
			return domain.TodoFilter{}, ErrInvalidTodoFilter
		}
		filter.Priority = &priority
	}

	if value := strings.TrimSpace(query.Get("title")); value != "" {
		filter.Title = &value
	}

	if value := strings.TrimSpace(query.Get("due_date")); value != "" {
		dueDate, err := ParseDueDate(value)
		if err != nil {
			return domain.TodoFilter{}, ErrInvalidTodoFilter
		}
		filter.DueDate = &dueDate
	}

	return filter, nil
}

// ParseDueDate accepts RFC 3339 timestamps or plain dates, read as UTC midnight.
func ParseDueDate(value string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed.UTC(), nil
	}
	parsed, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, err
	}
	return parsed, nil
}

func parseOptionalDueDate(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	parsed, err := ParseDueDate(strings.TrimSpace(*value))
	if err != nil {
		return nil, ErrInvalidTodoPayload
	}
	return &parsed, nil
}

func toPriority(value *string) *domain.Priority {
	if value == nil {
		return nil
	}
	return domain.PriorityPtr(domain.Priority(strings.TrimSpace(*value)))
}

func hasJSONField(raw map[string]json.RawMessage, field string) bool {
	_, ok := raw[field]
	return ok
}

func isJSONNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}
