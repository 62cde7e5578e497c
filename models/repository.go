package models

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("record not found")

// StorageError wraps a backend read/write failure with a stable prefix so
// callers can tell storage failures apart from validation failures.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// HealthStatus is the result of a repository health probe. HealthCheck never
// returns an error; a failed probe is reported through this struct.
type HealthStatus struct {
	Healthy   bool   `json:"healthy"`
	LatencyMs int64  `json:"latencyMs"`
	Error     string `json:"error,omitempty"`
}

// Repository is the uniform CRUD contract over both storage backends.
type Repository interface {
	CreateApplication(ctx context.Context, app *Application) error
	GetApplicationByID(ctx context.Context, id uint) (*Application, error)
	GetAllApplications(ctx context.Context) ([]Application, error)
	UpdateApplicationPayment(ctx context.Context, id uint, status, sessionID string, paidAt *time.Time) error

	CreateContactSubmission(ctx context.Context, sub *ContactSubmission) error
	GetAllContactSubmissions(ctx context.Context) ([]ContactSubmission, error)

	CreateContactMessage(ctx context.Context, msg *ContactMessage) error
	GetAllContactMessages(ctx context.Context) ([]ContactMessage, error)

	CreateEmailSignup(ctx context.Context, signup *EmailSignup) error
	GetAllEmailSignups(ctx context.Context) ([]EmailSignup, error)

	HealthCheck(ctx context.Context) HealthStatus
	BackendName() string
	BackendDescription() string
	Close() error
}
