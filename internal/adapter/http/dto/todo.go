package dto

type TodoItem struct {
	ID             int64   `json:"id"`
	UserID         int64   `json:"user_id"`
	Title          string  `json:"title"`
	Description    *string `json:"description,omitempty"`
	CreatedAt      string  `json:"created_at"`
	DueDate        *string `json:"due_date,omitempty"`
	Status         string  `json:"status"`
	Priority       *string `json:"priority,omitempty"`
	AdditionalData *string `json:"additional_data,omitempty"`
	IsDeleted      bool    `json:"is_deleted"`
	IsCompleted    bool    `json:"is_completed"`
	DaysRemaining  int     `json:"days_remaining"`
}

// CreateTodoRequest is also used by the fixed-priority routes, which ignore Priority.
type CreateTodoRequest struct {
	Title          string  `json:"title"`
	Description    *string `json:"description"`
	DueDate        *string `json:"due_date"`
	Status         *string `json:"status"`
	Priority       *string `json:"priority"`
	AdditionalData *string `json:"additional_data"`
}

// UpdateTodoRequest replaces every mutable field; omitted optional fields are cleared.
type UpdateTodoRequest struct {
	Title          string  `json:"title"`
	Description    *string `json:"description"`
	DueDate        *string `json:"due_date"`
	Status         *string `json:"status"`
	Priority       *string `json:"priority"`
	AdditionalData *string `json:"additional_data"`
	IsDeleted      *bool   `json:"is_deleted"`
}

// Envelope mirrors domain.Response with transport payloads.
type Envelope[T any] struct {
	Successful bool     `json:"successful"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors"`
	DataList   []T      `json:"data_list,omitempty"`
	SingleData *T       `json:"single_data,omitempty"`
	EntityID   int64    `json:"entity_id,omitempty"`
}
