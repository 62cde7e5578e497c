package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/andy-arrow/vocal-excellence-backend/models"
)

// NotifyResult reports a notification outcome as data. Notification failure
// must never prevent the caller from reporting the underlying record as saved,
// so the mailer returns this struct instead of an error.
type NotifyResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type Mailer interface {
	// SendApplicationNotifications sends the applicant welcome email and the
	// admin notification email independently. Success is true if at least one
	// of the two landed.
	SendApplicationNotifications(ctx context.Context, app *models.Application) NotifyResult
	// SendContactNotification acknowledges a contact-form submission.
	SendContactNotification(ctx context.Context, name, email, message string) NotifyResult
}

type MailerConfig struct {
	APIKey     string
	From       string
	AdminEmail string
	// Endpoint overrides the provider URL; empty means the default.
	Endpoint string
}

const defaultMailEndpoint = "https://api.resend.com/emails"

type resendMailer struct {
	apiKey     string
	from       string
	adminEmail string
	endpoint   string
	client     *http.Client
	retry      RetryPolicy
}

// NewMailer builds the provider-backed mailer. Each individual send is retried
// up to 3 attempts with 500ms exponential backoff.
func NewMailer(cfg MailerConfig) Mailer {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultMailEndpoint
	}
	return &resendMailer{
		apiKey:     cfg.APIKey,
		from:       cfg.From,
		adminEmail: cfg.AdminEmail,
		endpoint:   endpoint,
		client:     &http.Client{Timeout: 15 * time.Second},
		retry:      RetryPolicy{MaxAttempts: 3, BaseDelay: 500 * time.Millisecond},
	}
}

func (m *resendMailer) SendApplicationNotifications(ctx context.Context, app *models.Application) NotifyResult {
	// The two sends are attempted independently; a failure in one does not
	// block or roll back the other.
	applicantErr := m.sendWithRetry(ctx, app.Email,
		"Your Vocal Excellence application has been received",
		applicantWelcomeHTML(app))
	if applicantErr != nil {
		log.Printf("Applicant email to %s failed: %v", app.Email, applicantErr)
	}

	var adminErr error
	if m.adminEmail == "" {
		adminErr = errors.New("admin notification address not configured")
	} else {
		adminErr = m.sendWithRetry(ctx, m.adminEmail,
			fmt.Sprintf("New application: %s %s", app.FirstName, app.LastName),
			adminNotificationHTML(app))
		if adminErr != nil {
			log.Printf("Admin email for application %d failed: %v", app.ID, adminErr)
		}
	}

	if applicantErr == nil || adminErr == nil {
		return NotifyResult{Success: true}
	}
	return NotifyResult{Success: false, Error: fmt.Sprintf("applicant email: %v; admin email: %v", applicantErr, adminErr)}
}

func (m *resendMailer) SendContactNotification(ctx context.Context, name, email, message string) NotifyResult {
	err := m.sendWithRetry(ctx, email,
		"We received your message",
		contactAcknowledgmentHTML(name, message))
	if err != nil {
		log.Printf("Contact acknowledgment to %s failed: %v", email, err)
		return NotifyResult{Success: false, Error: err.Error()}
	}
	return NotifyResult{Success: true}
}

func (m *resendMailer) sendWithRetry(ctx context.Context, to, subject, html string) error {
	return m.retry.Do(ctx, func(ctx context.Context) error {
		return m.send(ctx, to, subject, html)
	})
}

func (m *resendMailer) send(ctx context.Context, to, subject, html string) error {
	payload, err := json.Marshal(map[string]interface{}{
		"from":    m.from,
		"to":      []string{to},
		"subject": subject,
		"html":    html,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("email provider returned %s: %s", resp.Status, string(body))
	}
	return nil
}

// Templates are plain string interpolation with conditional rows only.

func applicantWelcomeHTML(app *models.Application) string {
	return fmt.Sprintf(`<h1>Thank you, %s!</h1>
<p>We have received your application to the Vocal Excellence Summer Workshop.</p>
<p>Our team will review your materials and contact you at %s with the next steps, including payment details.</p>
<p>The Vocal Excellence team</p>`, app.FirstName, app.Email)
}

func adminNotificationHTML(app *models.Application) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>New application #%d</h2><table>", app.ID)
	row := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "<tr><td><b>%s</b></td><td>%s</td></tr>", label, value)
		}
	}
	row("Name", app.FirstName+" "+app.LastName)
	row("Email", app.Email)
	row("Phone", app.Phone)
	row("Date of birth", app.DateOfBirth)
	row("Nationality", app.Nationality)
	row("Location", strings.TrimSuffix(app.City+", "+app.Country, ", "))
	row("Vocal range", app.VocalRange)
	row("Years singing", app.YearsSinging)
	row("Heard about us", app.HeardAboutUs)
	if app.DietaryRestriction != "" && app.DietaryRestriction != "none" {
		detail := app.DietaryRestriction
		if app.DietaryDetail != "" {
			detail += " (" + app.DietaryDetail + ")"
		}
		row("Dietary restriction", detail)
	}
	if app.ScholarshipInterest {
		row("Scholarship", "interested")
	}
	row("Musical background", app.MusicalBackground)
	row("Reason for applying", app.ReasonForApplying)
	row("Audio 1", strValue(app.AudioFile1Path))
	row("Audio 2", strValue(app.AudioFile2Path))
	row("CV", strValue(app.CVFilePath))
	row("Recommendation", strValue(app.RecommendationFilePath))
	b.WriteString("</table>")
	return b.String()
}

func contactAcknowledgmentHTML(name, message string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<p>Hi %s,</p><p>Thanks for getting in touch with Vocal Excellence. We will reply as soon as we can.</p>`, name)
	if message != "" {
		fmt.Fprintf(&b, "<p>Your message:</p><blockquote>%s</blockquote>", message)
	}
	b.WriteString("<p>The Vocal Excellence team</p>")
	return b.String()
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
