package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andy-arrow/vocal-excellence-backend/models"
)

// mailProvider fakes the email API and fails sends addressed to the
// recipients listed in failFor.
type mailProvider struct {
	mu       sync.Mutex
	requests []map[string]interface{}
	failFor  map[string]bool
}

func (p *mailProvider) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&payload)

		p.mu.Lock()
		p.requests = append(p.requests, payload)
		p.mu.Unlock()

		to, _ := payload["to"].([]interface{})
		if len(to) > 0 {
			if addr, _ := to[0].(string); p.failFor[addr] {
				http.Error(w, `{"message":"delivery refused"}`, http.StatusBadGateway)
				return
			}
		}
		w.Write([]byte(`{"id":"email_1"}`))
	})
}

func (p *mailProvider) sendsTo(addr string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	count := 0
	for _, req := range p.requests {
		if to, _ := req["to"].([]interface{}); len(to) > 0 {
			if s, _ := to[0].(string); s == addr {
				count++
			}
		}
	}
	return count
}

func newTestMailer(endpoint string) *resendMailer {
	return &resendMailer{
		apiKey:     "test-key",
		from:       "Vocal Excellence <noreply@example.com>",
		adminEmail: "admin@example.com",
		endpoint:   endpoint,
		client:     &http.Client{Timeout: 5 * time.Second},
		retry:      RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond},
	}
}

func testApplication() *models.Application {
	return &models.Application{
		ID:                7,
		FirstName:         "Ana",
		LastName:          "Ko",
		Email:             "ana@example.com",
		Phone:             "+357 99 111111",
		VocalRange:        "soprano",
		MusicalBackground: "choir singer for six years",
	}
}

func TestBothEmailsSucceed(t *testing.T) {
	provider := &mailProvider{failFor: map[string]bool{}}
	srv := httptest.NewServer(provider.handler())
	defer srv.Close()

	m := newTestMailer(srv.URL)
	result := m.SendApplicationNotifications(context.Background(), testApplication())

	assert.True(t, result.Success)
	assert.Empty(t, result.Error)
	assert.Equal(t, 1, provider.sendsTo("ana@example.com"))
	assert.Equal(t, 1, provider.sendsTo("admin@example.com"))
}

func TestOneFailedEmailStillReportsSuccess(t *testing.T) {
	// Applicant delivery is refused, admin delivery works: the two sends are
	// independent and one landing is enough.
	provider := &mailProvider{failFor: map[string]bool{"ana@example.com": true}}
	srv := httptest.NewServer(provider.handler())
	defer srv.Close()

	m := newTestMailer(srv.URL)
	result := m.SendApplicationNotifications(context.Background(), testApplication())

	assert.True(t, result.Success)
	// The failed send was retried to exhaustion.
	assert.Equal(t, 3, provider.sendsTo("ana@example.com"))
	assert.Equal(t, 1, provider.sendsTo("admin@example.com"))
}

func TestAdminFailureAloneStillReportsSuccess(t *testing.T) {
	provider := &mailProvider{failFor: map[string]bool{"admin@example.com": true}}
	srv := httptest.NewServer(provider.handler())
	defer srv.Close()

	m := newTestMailer(srv.URL)
	result := m.SendApplicationNotifications(context.Background(), testApplication())

	assert.True(t, result.Success)
	assert.Equal(t, 3, provider.sendsTo("admin@example.com"))
}

func TestBothEmailsFailingReportsFailure(t *testing.T) {
	provider := &mailProvider{failFor: map[string]bool{
		"ana@example.com":   true,
		"admin@example.com": true,
	}}
	srv := httptest.NewServer(provider.handler())
	defer srv.Close()

	m := newTestMailer(srv.URL)
	result := m.SendApplicationNotifications(context.Background(), testApplication())

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "applicant email")
	assert.Contains(t, result.Error, "admin email")
}

func TestTransientProviderFailureIsRetried(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()
		if n < 3 {
			http.Error(w, "upstream flake", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"id":"email_1"}`))
	}))
	defer srv.Close()

	m := newTestMailer(srv.URL)
	m.adminEmail = "" // isolate the applicant send

	result := m.SendApplicationNotifications(context.Background(), testApplication())
	assert.True(t, result.Success)
	assert.Equal(t, 3, attempts)
}

func TestContactNotification(t *testing.T) {
	provider := &mailProvider{failFor: map[string]bool{}}
	srv := httptest.NewServer(provider.handler())
	defer srv.Close()

	m := newTestMailer(srv.URL)
	result := m.SendContactNotification(context.Background(), "Ana", "ana@example.com", "When does enrollment open?")

	require.True(t, result.Success)
	require.Len(t, provider.requests, 1)
	html, _ := provider.requests[0]["html"].(string)
	assert.Contains(t, html, "Ana")
	assert.Contains(t, html, "When does enrollment open?")
}

func TestAdminTemplateConditionalRows(t *testing.T) {
	app := testApplication()
	app.DietaryRestriction = "other"
	app.DietaryDetail = "no shellfish"

	html := adminNotificationHTML(app)
	assert.Contains(t, html, "Dietary restriction")
	assert.Contains(t, html, "no shellfish")

	app.DietaryRestriction = "none"
	html = adminNotificationHTML(app)
	assert.NotContains(t, html, "Dietary restriction")

	// Absent file slots render no rows.
	assert.False(t, strings.Contains(html, "Audio 1"))
}
