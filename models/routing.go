package models

import (
	"context"
	"fmt"
	"time"
)

// RepositoryConfig is the subset of configuration the storage factory needs.
type RepositoryConfig struct {
	Backend        string // "local" or "remote"
	DatabaseDSN    string
	RemoteStoreURL string
	RemoteStoreKey string
}

// RoutingRepository routes each entity to a backend. Application,
// ContactSubmission and EmailSignup operations go to the primary backend;
// ContactMessage operations always go to the local backend because the remote
// store has no contact_messages table. That exception is deliberate and lives
// only here.
//
//	Entity             primary=local   primary=remote
//	Application        local           remote
//	ContactSubmission  local           remote
//	EmailSignup        local           remote
//	ContactMessage     local           local (always)
type RoutingRepository struct {
	primary Repository
	local   Repository
}

// NewRepository selects the primary backend from configuration and composes
// the routing wrapper over it. Called once at startup; the result is injected
// into the handler layer and never reinitialized.
func NewRepository(cfg RepositoryConfig) (*RoutingRepository, error) {
	local, err := NewPostgresRepository(cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case "local":
		return &RoutingRepository{primary: local, local: local}, nil
	case "remote":
		remote := NewRemoteRepository(cfg.RemoteStoreURL, cfg.RemoteStoreKey)
		return &RoutingRepository{primary: remote, local: local}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// NewRoutingRepository composes the wrapper over explicit backends. Used by
// tests and by callers that construct the backends themselves.
func NewRoutingRepository(primary, local Repository) *RoutingRepository {
	return &RoutingRepository{primary: primary, local: local}
}

func (r *RoutingRepository) CreateApplication(ctx context.Context, app *Application) error {
	return r.primary.CreateApplication(ctx, app)
}

func (r *RoutingRepository) GetApplicationByID(ctx context.Context, id uint) (*Application, error) {
	return r.primary.GetApplicationByID(ctx, id)
}

func (r *RoutingRepository) GetAllApplications(ctx context.Context) ([]Application, error) {
	return r.primary.GetAllApplications(ctx)
}

func (r *RoutingRepository) UpdateApplicationPayment(ctx context.Context, id uint, status, sessionID string, paidAt *time.Time) error {
	return r.primary.UpdateApplicationPayment(ctx, id, status, sessionID, paidAt)
}

func (r *RoutingRepository) CreateContactSubmission(ctx context.Context, sub *ContactSubmission) error {
	return r.primary.CreateContactSubmission(ctx, sub)
}

func (r *RoutingRepository) GetAllContactSubmissions(ctx context.Context) ([]ContactSubmission, error) {
	return r.primary.GetAllContactSubmissions(ctx)
}

func (r *RoutingRepository) CreateContactMessage(ctx context.Context, msg *ContactMessage) error {
	return r.local.CreateContactMessage(ctx, msg)
}

func (r *RoutingRepository) GetAllContactMessages(ctx context.Context) ([]ContactMessage, error) {
	return r.local.GetAllContactMessages(ctx)
}

func (r *RoutingRepository) CreateEmailSignup(ctx context.Context, signup *EmailSignup) error {
	return r.primary.CreateEmailSignup(ctx, signup)
}

func (r *RoutingRepository) GetAllEmailSignups(ctx context.Context) ([]EmailSignup, error) {
	return r.primary.GetAllEmailSignups(ctx)
}

func (r *RoutingRepository) HealthCheck(ctx context.Context) HealthStatus {
	return r.primary.HealthCheck(ctx)
}

func (r *RoutingRepository) BackendName() string {
	return r.primary.BackendName()
}

func (r *RoutingRepository) BackendDescription() string {
	return r.primary.BackendDescription()
}

func (r *RoutingRepository) Close() error {
	err := r.local.Close()
	if r.primary != r.local {
		if perr := r.primary.Close(); err == nil {
			err = perr
		}
	}
	return err
}
