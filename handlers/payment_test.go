package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andy-arrow/vocal-excellence-backend/models"
)

func newPaymentRouter(repo *fakeRepo) *gin.Engine {
	h := NewPaymentHandler(repo, "https://pay.example.com/checkout")
	r := gin.New()
	r.POST("/api/payments/session", h.CreateSession)
	r.POST("/api/payments/confirm", h.Confirm)
	return r
}

func TestPaymentSessionLifecycle(t *testing.T) {
	repo := &fakeRepo{}
	require.NoError(t, repo.CreateApplication(context.Background(), &models.Application{
		Email: "ana@example.com", PaymentStatus: models.PaymentStatusUnpaid,
	}))
	router := newPaymentRouter(repo)

	rec := postJSON(t, router, "/api/payments/session", `{"applicationId":1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success   bool   `json:"success"`
		SessionID string `json:"sessionId"`
		URL       string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, len(resp.SessionID) > 3 && resp.SessionID[:3] == "cs_")
	assert.Contains(t, resp.URL, "https://pay.example.com/checkout/")

	assert.Equal(t, models.PaymentStatusPending, repo.apps[0].PaymentStatus)
	assert.Equal(t, resp.SessionID, repo.apps[0].PaymentSessionID)
	assert.Nil(t, repo.apps[0].PaidAt)

	rec = postJSON(t, router, "/api/payments/confirm", `{"applicationId":1,"sessionId":"`+resp.SessionID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.PaymentStatusPaid, repo.apps[0].PaymentStatus)
	require.NotNil(t, repo.apps[0].PaidAt)
}

func TestPaymentSessionUnknownApplication(t *testing.T) {
	router := newPaymentRouter(&fakeRepo{})

	rec := postJSON(t, router, "/api/payments/session", `{"applicationId":42}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = postJSON(t, router, "/api/payments/session", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
