package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andy-arrow/vocal-excellence-backend/utils"
)

func postJSON(t *testing.T, router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSubmitContactMessage(t *testing.T) {
	repo := &fakeRepo{}
	mailer := &fakeMailer{result: utils.NotifyResult{Success: true}}
	h := NewContactHandler(repo, mailer, nil)

	r := gin.New()
	r.POST("/api/contact", h.SubmitContact)

	rec := postJSON(t, r, "/api/contact", `{"name":"Bob","email":"bob@example.com","message":"When does enrollment open?"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"messageId":1`)

	require.Len(t, repo.messages, 1)
	assert.Equal(t, "contact-form", repo.messages[0].Source)
	assert.Equal(t, []string{"bob@example.com"}, mailer.contacts)
}

func TestSubmitContactValidation(t *testing.T) {
	repo := &fakeRepo{}
	h := NewContactHandler(repo, nil, nil)

	r := gin.New()
	r.POST("/api/contact", h.SubmitContact)

	rec := postJSON(t, r, "/api/contact", `{"name":"B","email":"not-an-email"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "email")
	assert.Empty(t, repo.messages)
}

func TestSubmitContactSubmission(t *testing.T) {
	repo := &fakeRepo{}
	h := NewContactHandler(repo, nil, nil)

	r := gin.New()
	r.POST("/api/contact-submissions", h.SubmitContactSubmission)

	rec := postJSON(t, r, "/api/contact-submissions",
		`{"name":"Ana","email":"ana@example.com","vocalType":"soprano","message":"Scholarship info please"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, repo.subs, 1)
	assert.Equal(t, "soprano", repo.subs[0].VocalType)
}

func TestCreateSignupNormalizesEmail(t *testing.T) {
	repo := &fakeRepo{}
	h := NewSignupHandler(repo, nil)

	r := gin.New()
	r.POST("/api/email-signups", h.CreateSignup)

	rec := postJSON(t, r, "/api/email-signups", `{"email":"  Ana@Example.COM ","source":"popup","variant":"B"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		ID      uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, uint(1), resp.ID)

	require.Len(t, repo.signups, 1)
	assert.Equal(t, "ana@example.com", repo.signups[0].Email)
	assert.Equal(t, "B", repo.signups[0].Variant)
}

func TestCreateSignupRejectsInvalidEmail(t *testing.T) {
	repo := &fakeRepo{}
	h := NewSignupHandler(repo, nil)

	r := gin.New()
	r.POST("/api/email-signups", h.CreateSignup)

	rec := postJSON(t, r, "/api/email-signups", `{"email":"not-an-email"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, repo.signups)
}
