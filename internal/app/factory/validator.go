package factory

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"todoapi/internal/core/domain"
)

// fieldOrder fixes the order violations are reported in.
var fieldOrder = []string{"Title", "DueDate", "Description", "AdditionalData", "Priority", "Status"}

// Validator checks creation requests and reports all violations at once.
type Validator struct {
	now func() time.Time
}

func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{now: now}
}

// Validate returns a *domain.ValidationError listing every violation, or nil.
func (v *Validator) Validate(in domain.CreateTodoInput) error {
	return v.validate(in.Title, in.Description, in.DueDate, in.Status, in.Priority, in.AdditionalData)
}

// ValidateUpdate applies the same rules to a replacement of all mutable fields.
func (v *Validator) ValidateUpdate(in domain.UpdateTodoInput) error {
	return v.validate(in.Title, in.Description, in.DueDate, in.Status, in.Priority, in.AdditionalData)
}

type payload struct {
	Title          string
	Description    *string
	DueDate        *time.Time
	Status         domain.TodoStatus
	Priority       *domain.Priority
	AdditionalData *string
}

func (v *Validator) validate(
	title string,
	description *string,
	dueDate *time.Time,
	status domain.TodoStatus,
	priority *domain.Priority,
	additionalData *string,
) error {
	p := payload{
		Title:          title,
		Description:    description,
		DueDate:        dueDate,
		Status:         status,
		Priority:       priority,
		AdditionalData: additionalData,
	}
	now := v.now()

	err := validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.By(notBlank),
			validation.RuneLength(0, domain.MaxTitleLength).Error(domain.MsgTitleTooLong)),
		validation.Field(&p.DueDate, validation.By(strictlyAfter(now))),
		validation.Field(&p.Description,
			validation.RuneLength(0, domain.MaxDescriptionLength).Error(domain.MsgDescriptionTooLong)),
		validation.Field(&p.AdditionalData,
			validation.RuneLength(0, domain.MaxAdditionalDataLength).Error(domain.MsgAdditionalDataTooLong)),
		validation.Field(&p.Priority, validation.By(knownPriority)),
		validation.Field(&p.Status, validation.By(knownStatus)),
	)
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	violations := make([]string, 0, len(fieldErrs))
	for _, field := range fieldOrder {
		if fieldErr, ok := fieldErrs[field]; ok && fieldErr != nil {
			violations = append(violations, fieldErr.Error())
		}
	}
	return &domain.ValidationError{Errors: violations}
}

func notBlank(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New(domain.MsgTitleRequired)
	}
	return nil
}

func strictlyAfter(now time.Time) validation.RuleFunc {
	return func(value interface{}) error {
		due, ok := value.(*time.Time)
		if !ok || due == nil {
			return nil
		}
		if !due.After(now) {
			return errors.New(domain.MsgDueDateInPast)
		}
		return nil
	}
}

func knownPriority(value interface{}) error {
	priority, ok := value.(*domain.Priority)
	if !ok || priority == nil {
		return nil
	}
	if !priority.IsValid() {
		return errors.New(domain.MsgInvalidPriority)
	}
	return nil
}

func knownStatus(value interface{}) error {
	status, _ := value.(domain.TodoStatus)
	if status == "" {
		return nil
	}
	if !status.IsValid() {
		return errors.New(domain.MsgInvalidStatus)
	}
	return nil
}
