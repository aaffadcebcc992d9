package domain

// FailureKind classifies a failed Response so transports can pick a status code.
type FailureKind string

const (
	FailureNone       FailureKind = ""
	FailureValidation FailureKind = "validation"
	FailureNotFound   FailureKind = "not_found"
	FailureConflict   FailureKind = "conflict"
	FailureInternal   FailureKind = "internal"
)

// Response is the envelope every service operation returns.
type Response[T any] struct {
	Successful bool        `json:"successful"`
	Message    string      `json:"message"`
	Errors     []string    `json:"errors"`
	DataList   []T         `json:"data_list,omitempty"`
	SingleData *T          `json:"single_data,omitempty"`
	EntityID   int64       `json:"entity_id,omitempty"`
	Failure    FailureKind `json:"-"`
}

// Failed treats any recorded error as a failure, even if Successful was left true.
func (r Response[T]) Failed() bool {
	return !r.Successful || len(r.Errors) > 0
}

func Success[T any](message string) Response[T] {
	return Response[T]{Successful: true, Message: message, Errors: []string{}}
}

func Fail[T any](kind FailureKind, message string, errs ...string) Response[T] {
	if errs == nil {
		errs = []string{}
	}
	return Response[T]{Message: message, Errors: errs, Failure: kind}
}

// WriteResult is the outcome of a repository write that may fail for business reasons.
type WriteResult struct {
	Succeeded bool
	Message   string
	// Reason is set when Succeeded is false.
	Reason error
}

func WriteOK(message string) WriteResult {
	return WriteResult{Succeeded: true, Message: message}
}

func WriteFailed(reason error, message string) WriteResult {
	return WriteResult{Message: message, Reason: reason}
}
