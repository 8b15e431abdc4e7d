package interview

import (
	"context"
	"errors"
	"fmt"
)

type StartRequest struct {
	Name       string          `json:"name"`
	Experience ExperienceLevel `json:"experience"`
}

type Submission struct {
	SessionID  string
	QuestionID string
	Answer     Answer
}

// Client is the evaluation backend as seen by the UI flow. Implementations
// live under external/ so the flow is testable without a network.
type Client interface {
	StartSession(ctx context.Context, req StartRequest) (*Session, error)
	SubmitAnswer(ctx context.Context, sub Submission) (*SubmitResult, error)
	FetchReport(ctx context.Context, sessionID string) (*Report, error)
	Health(ctx context.Context) error
}

// APIError is a non-2xx response with the server's message already
// extracted from the body's detail/error fields, or a generic
// "server error (status): body" fold when neither parses.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(status int, message string) *APIError {
	if message == "" {
		message = fmt.Sprintf("server error (%d)", status)
	}
	return &APIError{Status: status, Message: message}
}

// UserMessage extracts the text shown to the candidate for a failed request.
// Server-provided messages pass through untouched; transport failures get a
// network-error prefix.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "network error: " + err.Error()
}
