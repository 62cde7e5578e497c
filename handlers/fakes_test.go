package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/andy-arrow/vocal-excellence-backend/models"
	"github.com/andy-arrow/vocal-excellence-backend/utils"
)

// fakeRepo is an in-memory Repository for handler tests.
type fakeRepo struct {
	failWrites bool
	unhealthy  bool

	apps     []models.Application
	subs     []models.ContactSubmission
	messages []models.ContactMessage
	signups  []models.EmailSignup
}

var errBackendDown = errors.New("connection refused")

func (f *fakeRepo) CreateApplication(ctx context.Context, app *models.Application) error {
	if f.failWrites {
		return &models.StorageError{Op: "create application", Err: errBackendDown}
	}
	app.ID = uint(len(f.apps) + 1)
	app.CreatedAt = time.Now()
	f.apps = append(f.apps, *app)
	return nil
}

func (f *fakeRepo) GetApplicationByID(ctx context.Context, id uint) (*models.Application, error) {
	for i := range f.apps {
		if f.apps[i].ID == id {
			return &f.apps[i], nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeRepo) GetAllApplications(ctx context.Context) ([]models.Application, error) {
	if f.failWrites {
		return nil, &models.StorageError{Op: "list applications", Err: errBackendDown}
	}
	return f.apps, nil
}

func (f *fakeRepo) UpdateApplicationPayment(ctx context.Context, id uint, status, sessionID string, paidAt *time.Time) error {
	for i := range f.apps {
		if f.apps[i].ID == id {
			f.apps[i].PaymentStatus = status
			f.apps[i].PaymentSessionID = sessionID
			f.apps[i].PaidAt = paidAt
			return nil
		}
	}
	return models.ErrNotFound
}

func (f *fakeRepo) CreateContactSubmission(ctx context.Context, sub *models.ContactSubmission) error {
	if f.failWrites {
		return &models.StorageError{Op: "create contact submission", Err: errBackendDown}
	}
	sub.ID = uint(len(f.subs) + 1)
	sub.CreatedAt = time.Now()
	f.subs = append(f.subs, *sub)
	return nil
}

func (f *fakeRepo) GetAllContactSubmissions(ctx context.Context) ([]models.ContactSubmission, error) {
	return f.subs, nil
}

func (f *fakeRepo) CreateContactMessage(ctx context.Context, msg *models.ContactMessage) error {
	if f.failWrites {
		return &models.StorageError{Op: "create contact message", Err: errBackendDown}
	}
	msg.ID = uint(len(f.messages) + 1)
	msg.CreatedAt = time.Now()
	f.messages = append(f.messages, *msg)
	return nil
}

func (f *fakeRepo) GetAllContactMessages(ctx context.Context) ([]models.ContactMessage, error) {
	return f.messages, nil
}

func (f *fakeRepo) CreateEmailSignup(ctx context.Context, signup *models.EmailSignup) error {
	if f.failWrites {
		return &models.StorageError{Op: "create email signup", Err: errBackendDown}
	}
	signup.ID = uint(len(f.signups) + 1)
	signup.CreatedAt = time.Now()
	f.signups = append(f.signups, *signup)
	return nil
}

func (f *fakeRepo) GetAllEmailSignups(ctx context.Context) ([]models.EmailSignup, error) {
	return f.signups, nil
}

func (f *fakeRepo) HealthCheck(ctx context.Context) models.HealthStatus {
	if f.unhealthy {
		return models.HealthStatus{Healthy: false, LatencyMs: 2, Error: "connection refused"}
	}
	return models.HealthStatus{Healthy: true, LatencyMs: 1}
}

func (f *fakeRepo) BackendName() string        { return "local" }
func (f *fakeRepo) BackendDescription() string { return "in-memory fake" }
func (f *fakeRepo) Close() error               { return nil }

// fakeMailer returns a canned result and records what it was asked to send.
type fakeMailer struct {
	result       utils.NotifyResult
	applications []models.Application
	contacts     []string
}

func (m *fakeMailer) SendApplicationNotifications(ctx context.Context, app *models.Application) utils.NotifyResult {
	m.applications = append(m.applications, *app)
	return m.result
}

func (m *fakeMailer) SendContactNotification(ctx context.Context, name, email, message string) utils.NotifyResult {
	m.contacts = append(m.contacts, email)
	return m.result
}
