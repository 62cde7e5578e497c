package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// PostgresRepository is the local backend, backed by GORM.
type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&Application{}, &ContactSubmission{}, &ContactMessage{}, &EmailSignup{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) CreateApplication(ctx context.Context, app *Application) error {
	if err := r.db.WithContext(ctx).Create(app).Error; err != nil {
		return &StorageError{Op: "create application", Err: err}
	}
	return nil
}

func (r *PostgresRepository) GetApplicationByID(ctx context.Context, id uint) (*Application, error) {
	var app Application
	if err := r.db.WithContext(ctx).First(&app, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, &StorageError{Op: "get application", Err: err}
	}
	return &app, nil
}

func (r *PostgresRepository) GetAllApplications(ctx context.Context) ([]Application, error) {
	var apps []Application
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&apps).Error; err != nil {
		return nil, &StorageError{Op: "list applications", Err: err}
	}
	return apps, nil
}

func (r *PostgresRepository) UpdateApplicationPayment(ctx context.Context, id uint, status, sessionID string, paidAt *time.Time) error {
	updates := map[string]interface{}{
		"payment_status":     status,
		"payment_session_id": sessionID,
	}
	if paidAt != nil {
		updates["paid_at"] = *paidAt
	}
	res := r.db.WithContext(ctx).Model(&Application{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return &StorageError{Op: "update application payment", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) CreateContactSubmission(ctx context.Context, sub *ContactSubmission) error {
	if err := r.db.WithContext(ctx).Create(sub).Error; err != nil {
		return &StorageError{Op: "create contact submission", Err: err}
	}
	return nil
}

func (r *PostgresRepository) GetAllContactSubmissions(ctx context.Context) ([]ContactSubmission, error) {
	var subs []ContactSubmission
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&subs).Error; err != nil {
		return nil, &StorageError{Op: "list contact submissions", Err: err}
	}
	return subs, nil
}

func (r *PostgresRepository) CreateContactMessage(ctx context.Context, msg *ContactMessage) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return &StorageError{Op: "create contact message", Err: err}
	}
	return nil
}

func (r *PostgresRepository) GetAllContactMessages(ctx context.Context) ([]ContactMessage, error) {
	var msgs []ContactMessage
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&msgs).Error; err != nil {
		return nil, &StorageError{Op: "list contact messages", Err: err}
	}
	return msgs, nil
}

func (r *PostgresRepository) CreateEmailSignup(ctx context.Context, signup *EmailSignup) error {
	if err := r.db.WithContext(ctx).Create(signup).Error; err != nil {
		return &StorageError{Op: "create email signup", Err: err}
	}
	return nil
}

func (r *PostgresRepository) GetAllEmailSignups(ctx context.Context) ([]EmailSignup, error) {
	var signups []EmailSignup
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&signups).Error; err != nil {
		return nil, &StorageError{Op: "list email signups", Err: err}
	}
	return signups, nil
}

// HealthCheck issues a trivial query and measures round-trip time. It never
// returns an error; failures are reported in the result.
func (r *PostgresRepository) HealthCheck(ctx context.Context) HealthStatus {
	start := time.Now()
	sqlDB, err := r.db.DB()
	if err != nil {
		return HealthStatus{Healthy: false, LatencyMs: time.Since(start).Milliseconds(), Error: err.Error()}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return HealthStatus{Healthy: false, LatencyMs: time.Since(start).Milliseconds(), Error: err.Error()}
	}
	return HealthStatus{Healthy: true, LatencyMs: time.Since(start).Milliseconds()}
}

func (r *PostgresRepository) BackendName() string {
	return "local"
}

func (r *PostgresRepository) BackendDescription() string {
	return "PostgreSQL via GORM"
}

func (r *PostgresRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
