package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Status of a submission through the service.
type Status string

const (
	StatusSubmitted Status = "SUBMITTED"
	StatusAccepted  Status = "ACCEPTED"
	StatusRejected  Status = "REJECTED"
	StatusFailed    Status = "FAILED"
)

var (
	ErrAppNameRequired = errors.New("app name is required")
	ErrInvalidPriority = errors.New("invalid priority value")
	ErrPayloadRequired = errors.New("transaction payload is required")
)

// Submission is a domain model for a BOC passed through the service.
type Submission struct {
	Id          string          `json:"id"`
	AppName     string          `json:"app_name"`
	Priority    int             `json:"priority"`
	Payload     Payload         `json:"payload"`
	Status      Status          `json:"status"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorKind   string          `json:"error_kind,omitempty"`
	ErrorCode   int64           `json:"error_code,omitempty"`
	ErrorMsg    string          `json:"error_message,omitempty"`
	RawResponse string          `json:"raw_response,omitempty"`
	SubmittedAt time.Time       `json:"submitted_at"`
	CompletedAt time.Time       `json:"completed_at"`
}

func NewSubmission(appName string, priority int, payload Payload) (*Submission, error) {
	//TODO: Add ACL to only allow from valid applications
	if appName == "" {
		return nil, ErrAppNameRequired
	}

	if priority < 1 || priority > 3 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPriority, priority)
	}

	if payload.Len() == 0 {
		return nil, ErrPayloadRequired
	}

	return &Submission{
		AppName:     appName,
		Priority:    priority,
		Payload:     payload,
		Status:      StatusSubmitted,
		SubmittedAt: time.Now().UTC(),
	}, nil
}

// Done reports whether the submission reached a final status.
func (s *Submission) Done() bool {
	return s.Status == StatusAccepted || s.Status == StatusRejected || s.Status == StatusFailed
}
