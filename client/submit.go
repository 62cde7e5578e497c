package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/andy-arrow/vocal-excellence-backend/utils"
	"github.com/andy-arrow/vocal-excellence-backend/validation"
)

// SubmissionError carries everything the UI can show the user after a failed
// submission: message, details and the HTTP code when one was received.
type SubmissionError struct {
	Message string
	Details string
	Code    int
}

func (e *SubmissionError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

// SubmitResult describes the outcome of a successful submission. The payment
// session is created after the application is saved and is not transactional
// with it: PaymentSetupFailed means "payment setup failed, application
// saved", never a lost application.
type SubmitResult struct {
	ApplicationID      uint
	EmailStatus        utils.NotifyResult
	Message            string
	PaymentURL         string
	PaymentSessionID   string
	PaymentSetupFailed bool
}

type Submitter struct {
	baseURL string
	client  *http.Client
	retry   utils.RetryPolicy
}

func NewSubmitter(baseURL string) *Submitter {
	return &Submitter{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
		// 3 total attempts, 1s exponential backoff.
		retry: utils.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second},
	}
}

// Submit assembles the validated form state plus staged files into one
// multipart request and posts it with bounded retry. Transport failures and
// 5xx responses are retried; a 4xx response is terminal because resubmitting
// the same invalid payload cannot succeed.
func (s *Submitter) Submit(ctx context.Context, form *Form) (*SubmitResult, error) {
	if errs := validation.ValidateApplication(&form.Data); len(errs) > 0 {
		return nil, &SubmissionError{
			Message: "validation failed",
			Details: validation.Join(errs),
			Code:    http.StatusBadRequest,
		}
	}

	body, contentType, err := buildMultipart(form)
	if err != nil {
		return nil, &SubmissionError{Message: "failed to assemble submission", Details: err.Error()}
	}

	var result *SubmitResult
	var terminal *SubmissionError

	err = s.retry.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/applications", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", contentType)

		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("server error: %s", resp.Status)
		}

		var parsed struct {
			Success       bool               `json:"success"`
			ApplicationID uint               `json:"applicationId"`
			EmailStatus   utils.NotifyResult `json:"emailStatus"`
			Message       string             `json:"message"`
			Error         string             `json:"error"`
			Details       json.RawMessage    `json:"details"`
		}
		if err := json.Unmarshal(respBody, &parsed); err != nil {
			return fmt.Errorf("unreadable server response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			terminal = &SubmissionError{
				Message: parsed.Error,
				Details: string(parsed.Details),
				Code:    resp.StatusCode,
			}
			return nil
		}

		result = &SubmitResult{
			ApplicationID: parsed.ApplicationID,
			EmailStatus:   parsed.EmailStatus,
			Message:       parsed.Message,
		}
		return nil
	})
	if err != nil {
		return nil, &SubmissionError{Message: "submission failed after retries", Details: err.Error()}
	}
	if terminal != nil {
		return nil, terminal
	}

	// Payment setup runs after the application is saved; its failure is
	// reported but never unwinds the submission.
	sessionID, payURL, payErr := s.createPaymentSession(ctx, result.ApplicationID)
	if payErr != nil {
		result.PaymentSetupFailed = true
		result.Message = "payment setup failed, application saved"
		return result, nil
	}
	result.PaymentSessionID = sessionID
	result.PaymentURL = payURL
	return result, nil
}

func (s *Submitter) createPaymentSession(ctx context.Context, applicationID uint) (sessionID, url string, err error) {
	payload, err := json.Marshal(map[string]uint{"applicationId": applicationID})
	if err != nil {
		return "", "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/payments/session", bytes.NewReader(payload))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("payment session request returned %s", resp.Status)
	}

	var parsed struct {
		SessionID string `json:"sessionId"`
		URL       string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", "", err
	}
	return parsed.SessionID, parsed.URL, nil
}

func buildMultipart(form *Form) (body []byte, contentType string, err error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	data, err := json.Marshal(form.Data)
	if err != nil {
		return nil, "", err
	}
	if err := w.WriteField("applicationData", string(data)); err != nil {
		return nil, "", err
	}

	for _, slot := range Slots {
		staged := form.Files().Get(slot)
		if staged == nil {
			continue
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, string(slot), staged.Name))
		h.Set("Content-Type", staged.ContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(staged.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
