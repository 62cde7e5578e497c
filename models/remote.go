package models

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"
)

// RemoteRepository is the hosted backend: a PostgREST-style REST layer in
// front of the managed database. Its column names follow a lowercase,
// no-underscore convention (`firstname`, not `first_name`). Rows migrated
// from the local database may still carry the underscore spelling, so reads
// accept both; writes always use the remote convention.
type RemoteRepository struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewRemoteRepository(baseURL, apiKey string) *RemoteRepository {
	return &RemoteRepository{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (r *RemoteRepository) CreateApplication(ctx context.Context, app *Application) error {
	rows, err := r.insert(ctx, "applications", applicationWriteRow(app))
	if err != nil {
		return &StorageError{Op: "create application", Err: err}
	}
	if len(rows) > 0 {
		*app = mapApplicationRow(rows[0])
	}
	return nil
}

func (r *RemoteRepository) GetApplicationByID(ctx context.Context, id uint) (*Application, error) {
	rows, err := r.selectRows(ctx, "applications", fmt.Sprintf("id=eq.%d", id))
	if err != nil {
		return nil, &StorageError{Op: "get application", Err: err}
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	app := mapApplicationRow(rows[0])
	return &app, nil
}

func (r *RemoteRepository) GetAllApplications(ctx context.Context) ([]Application, error) {
	rows, err := r.selectRows(ctx, "applications", "order=createdat.desc")
	if err != nil {
		return nil, &StorageError{Op: "list applications", Err: err}
	}
	apps := make([]Application, 0, len(rows))
	for _, row := range rows {
		apps = append(apps, mapApplicationRow(row))
	}
	// Migrated rows may only carry the `created_at` spelling, which the remote
	// order clause cannot see, so re-sort after mapping.
	sort.SliceStable(apps, func(i, j int) bool { return apps[i].CreatedAt.After(apps[j].CreatedAt) })
	return apps, nil
}

func (r *RemoteRepository) UpdateApplicationPayment(ctx context.Context, id uint, status, sessionID string, paidAt *time.Time) error {
	payload := map[string]interface{}{
		"paymentstatus":    status,
		"paymentsessionid": sessionID,
	}
	if paidAt != nil {
		payload["paidat"] = paidAt.UTC().Format(time.RFC3339)
	}
	rows, err := r.patch(ctx, "applications", fmt.Sprintf("id=eq.%d", id), payload)
	if err != nil {
		return &StorageError{Op: "update application payment", Err: err}
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RemoteRepository) CreateContactSubmission(ctx context.Context, sub *ContactSubmission) error {
	rows, err := r.insert(ctx, "contact_submissions", map[string]interface{}{
		"name":      sub.Name,
		"email":     sub.Email,
		"vocaltype": sub.VocalType,
		"message":   sub.Message,
		"source":    sub.Source,
	})
	if err != nil {
		return &StorageError{Op: "create contact submission", Err: err}
	}
	if len(rows) > 0 {
		*sub = mapContactSubmissionRow(rows[0])
	}
	return nil
}

func (r *RemoteRepository) GetAllContactSubmissions(ctx context.Context) ([]ContactSubmission, error) {
	rows, err := r.selectRows(ctx, "contact_submissions", "order=createdat.desc")
	if err != nil {
		return nil, &StorageError{Op: "list contact submissions", Err: err}
	}
	subs := make([]ContactSubmission, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, mapContactSubmissionRow(row))
	}
	return subs, nil
}

// The remote store has no contact_messages table. The routing repository
// never sends ContactMessage operations here; these exist to satisfy the
// Repository contract.
func (r *RemoteRepository) CreateContactMessage(ctx context.Context, msg *ContactMessage) error {
	return &StorageError{Op: "create contact message", Err: errors.New("contact_messages table does not exist on the remote backend")}
}

func (r *RemoteRepository) GetAllContactMessages(ctx context.Context) ([]ContactMessage, error) {
	return nil, &StorageError{Op: "list contact messages", Err: errors.New("contact_messages table does not exist on the remote backend")}
}

func (r *RemoteRepository) CreateEmailSignup(ctx context.Context, signup *EmailSignup) error {
	rows, err := r.insert(ctx, "email_signups", map[string]interface{}{
		"email":    signup.Email,
		"source":   signup.Source,
		"variant":  signup.Variant,
		"pagepath": signup.PagePath,
	})
	if err != nil {
		return &StorageError{Op: "create email signup", Err: err}
	}
	if len(rows) > 0 {
		*signup = mapEmailSignupRow(rows[0])
	}
	return nil
}

func (r *RemoteRepository) GetAllEmailSignups(ctx context.Context) ([]EmailSignup, error) {
	rows, err := r.selectRows(ctx, "email_signups", "order=createdat.desc")
	if err != nil {
		return nil, &StorageError{Op: "list email signups", Err: err}
	}
	signups := make([]EmailSignup, 0, len(rows))
	for _, row := range rows {
		signups = append(signups, mapEmailSignupRow(row))
	}
	return signups, nil
}

func (r *RemoteRepository) HealthCheck(ctx context.Context) HealthStatus {
	start := time.Now()
	_, err := r.selectRows(ctx, "applications", "select=id&limit=1")
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return HealthStatus{Healthy: false, LatencyMs: latency, Error: err.Error()}
	}
	return HealthStatus{Healthy: true, LatencyMs: latency}
}

func (r *RemoteRepository) BackendName() string {
	return "remote"
}

func (r *RemoteRepository) BackendDescription() string {
	return "hosted REST data store"
}

func (r *RemoteRepository) Close() error {
	r.client.CloseIdleConnections()
	return nil
}

// HTTP plumbing

func (r *RemoteRepository) insert(ctx context.Context, table string, payload interface{}) ([]map[string]interface{}, error) {
	return r.do(ctx, http.MethodPost, table, "", payload)
}

func (r *RemoteRepository) patch(ctx context.Context, table, query string, payload interface{}) ([]map[string]interface{}, error) {
	return r.do(ctx, http.MethodPatch, table, query, payload)
}

func (r *RemoteRepository) selectRows(ctx context.Context, table, query string) ([]map[string]interface{}, error) {
	return r.do(ctx, http.MethodGet, table, query, nil)
}

func (r *RemoteRepository) do(ctx context.Context, method, table, query string, payload interface{}) ([]map[string]interface{}, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/%s", r.baseURL, url.PathEscape(table))
	if query != "" {
		endpoint += "?" + query
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", r.apiKey)
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("remote store error: %s: %s", resp.Status, string(data))
	}

	if len(data) == 0 {
		return nil, nil
	}
	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse remote store response: %w", err)
	}
	return rows, nil
}

// Row mapping. Readers accept either naming convention because data has been
// migrated between conventions and both must stay readable.

func applicationWriteRow(app *Application) map[string]interface{} {
	row := map[string]interface{}{
		"firstname":           app.FirstName,
		"lastname":            app.LastName,
		"email":               app.Email,
		"phone":               app.Phone,
		"dateofbirth":         app.DateOfBirth,
		"nationality":         app.Nationality,
		"city":                app.City,
		"country":             app.Country,
		"vocalrange":          app.VocalRange,
		"yearssinging":        app.YearsSinging,
		"musicalbackground":   app.MusicalBackground,
		"reasonforapplying":   app.ReasonForApplying,
		"heardaboutus":        app.HeardAboutUs,
		"dietaryrestriction":  app.DietaryRestriction,
		"dietarydetail":       app.DietaryDetail,
		"scholarshipinterest": app.ScholarshipInterest,
		"termsagreed":         app.TermsAgreed,
		"audiofile1path":      app.AudioFile1Path,
		"audiofile2path":      app.AudioFile2Path,
		"cvfilepath":          app.CVFilePath,
		"recommendationpath":  app.RecommendationFilePath,
		"paymentstatus":       app.PaymentStatus,
		"paymentsessionid":    app.PaymentSessionID,
		"source":              app.Source,
	}
	return row
}

func mapApplicationRow(row map[string]interface{}) Application {
	return Application{
		ID:                     rowID(row),
		FirstName:              rowString(row, "firstname", "first_name"),
		LastName:               rowString(row, "lastname", "last_name"),
		Email:                  rowString(row, "email"),
		Phone:                  rowString(row, "phone"),
		DateOfBirth:            rowString(row, "dateofbirth", "date_of_birth"),
		Nationality:            rowString(row, "nationality"),
		City:                   rowString(row, "city"),
		Country:                rowString(row, "country"),
		VocalRange:             rowString(row, "vocalrange", "vocal_range"),
		YearsSinging:           rowString(row, "yearssinging", "years_singing"),
		MusicalBackground:      rowString(row, "musicalbackground", "musical_background"),
		ReasonForApplying:      rowString(row, "reasonforapplying", "reason_for_applying"),
		HeardAboutUs:           rowString(row, "heardaboutus", "heard_about_us"),
		DietaryRestriction:     rowString(row, "dietaryrestriction", "dietary_restriction"),
		DietaryDetail:          rowString(row, "dietarydetail", "dietary_detail"),
		ScholarshipInterest:    rowBool(row, "scholarshipinterest", "scholarship_interest"),
		TermsAgreed:            rowBool(row, "termsagreed", "terms_agreed"),
		AudioFile1Path:         rowStringPtr(row, "audiofile1path", "audio_file1_path"),
		AudioFile2Path:         rowStringPtr(row, "audiofile2path", "audio_file2_path"),
		CVFilePath:             rowStringPtr(row, "cvfilepath", "cv_file_path"),
		RecommendationFilePath: rowStringPtr(row, "recommendationpath", "recommendation_path"),
		PaymentStatus:          rowString(row, "paymentstatus", "payment_status"),
		PaymentSessionID:       rowString(row, "paymentsessionid", "payment_session_id"),
		PaidAt:                 rowTimePtr(row, "paidat", "paid_at"),
		Source:                 rowString(row, "source"),
		CreatedAt:              rowTime(row, "createdat", "created_at"),
	}
}

func mapContactSubmissionRow(row map[string]interface{}) ContactSubmission {
	return ContactSubmission{
		ID:        rowID(row),
		Name:      rowString(row, "name"),
		Email:     rowString(row, "email"),
		VocalType: rowString(row, "vocaltype", "vocal_type"),
		Message:   rowString(row, "message"),
		Source:    rowString(row, "source"),
		CreatedAt: rowTime(row, "createdat", "created_at"),
	}
}

func mapEmailSignupRow(row map[string]interface{}) EmailSignup {
	return EmailSignup{
		ID:        rowID(row),
		Email:     rowString(row, "email"),
		Source:    rowString(row, "source"),
		Variant:   rowString(row, "variant"),
		PagePath:  rowString(row, "pagepath", "page_path"),
		CreatedAt: rowTime(row, "createdat", "created_at"),
	}
}

func rowValue(row map[string]interface{}, keys ...string) interface{} {
	for _, key := range keys {
		if v, ok := row[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func rowID(row map[string]interface{}) uint {
	switch v := rowValue(row, "id").(type) {
	case float64:
		return uint(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return uint(n)
		}
	}
	return 0
}

func rowString(row map[string]interface{}, keys ...string) string {
	if s, ok := rowValue(row, keys...).(string); ok {
		return s
	}
	return ""
}

func rowStringPtr(row map[string]interface{}, keys ...string) *string {
	if s, ok := rowValue(row, keys...).(string); ok && s != "" {
		return &s
	}
	return nil
}

func rowBool(row map[string]interface{}, keys ...string) bool {
	if b, ok := rowValue(row, keys...).(bool); ok {
		return b
	}
	return false
}

func rowTime(row map[string]interface{}, keys ...string) time.Time {
	if t := rowTimePtr(row, keys...); t != nil {
		return *t
	}
	return time.Time{}
}

func rowTimePtr(row map[string]interface{}, keys ...string) *time.Time {
	s, ok := rowValue(row, keys...).(string)
	if !ok || s == "" {
		return nil
	}
	// The trailing layouts cover Postgres text timestamps, with and without a
	// bare UTC offset like "+00".
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05-07:00",
		"2006-01-02 15:04:05-07",
		"2006-01-02 15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
