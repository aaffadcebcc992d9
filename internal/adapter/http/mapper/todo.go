package mapper

import (
	"time"

	"todoapi/internal/adapter/http/dto"
	"todoapi/internal/core/domain"
)

func ToTodoItems(todos []domain.Todo, now time.Time) []dto.TodoItem {
	items := make([]dto.TodoItem, 0, len(todos))
	for _, todo := range todos {
		items = append(items, ToTodoItem(todo, now))
	}
	return items
}

func ToTodoItem(todo domain.Todo, now time.Time) dto.TodoItem {
	item := dto.TodoItem{
		ID:            todo.ID,
		UserID:        todo.UserID,
		Title:         todo.Title,
		CreatedAt:     todo.CreatedAt.UTC().Format(time.RFC3339),
		Status:        string(todo.Status),
		IsDeleted:     todo.IsDeleted,
		IsCompleted:   todo.IsCompleted(),
		DaysRemaining: todo.DaysRemaining(now),
	}

	if todo.Description != nil {
		value := *todo.Description
		item.Description = &value
	}

	if todo.DueDate != nil {
		value := todo.DueDate.UTC().Format(time.RFC3339)
		item.DueDate = &value
	}

	if todo.Priority != nil {
		value := string(*todo.Priority)
		item.Priority = &value
	}

	if todo.AdditionalData != nil {
		value := *todo.AdditionalData
		item.AdditionalData = &value
	}

	return item
}

// ToTodoEnvelope converts a service response, keeping its outcome fields as-is.
func ToTodoEnvelope(resp domain.Response[domain.Todo], now time.Time) dto.Envelope[dto.TodoItem] {
	env := dto.Envelope[dto.TodoItem]{
		Successful: resp.Successful,
		Message:    resp.Message,
		Errors:     nonNilErrors(resp.Errors),
		EntityID:   resp.EntityID,
	}
	if resp.DataList != nil {
		env.DataList = ToTodoItems(resp.DataList, now)
	}
	if resp.SingleData != nil {
		item := ToTodoItem(*resp.SingleData, now)
		env.SingleData = &item
	}
	return env
}

func ToPercentageEnvelope(resp domain.Response[float64]) dto.Envelope[float64] {
	return dto.Envelope[float64]{
		Successful: resp.Successful,
		Message:    resp.Message,
		Errors:     nonNilErrors(resp.Errors),
		SingleData: resp.SingleData,
	}
}

func ToAuthResponse(token domain.AuthToken) dto.AuthResponse {
	return dto.AuthResponse{
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt.UTC().Format(time.RFC3339),
		User:      ToUserItem(token.User),
	}
}

func ToUserItem(user domain.User) dto.UserItem {
	return dto.UserItem{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func nonNilErrors(errs []string) []string {
	if errs == nil {
		return []string{}
	}
	return errs
}
