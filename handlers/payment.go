package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/andy-arrow/vocal-excellence-backend/models"
)

type PaymentHandler struct {
	repo        models.Repository
	checkoutURL string
}

func NewPaymentHandler(repo models.Repository, checkoutURL string) *PaymentHandler {
	return &PaymentHandler{repo: repo, checkoutURL: checkoutURL}
}

// CreateSession marks an application as awaiting payment and returns the
// checkout URL. Deliberately not transactional with intake: a failure here
// never rolls back the saved application.
func (h *PaymentHandler) CreateSession(c *gin.Context) {
	var req struct {
		ApplicationID uint `json:"applicationId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ApplicationID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "applicationId is required"})
		return
	}

	if _, err := h.repo.GetApplicationByID(c.Request.Context(), req.ApplicationID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "application not found"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	sessionID := "cs_" + uuid.NewString()
	if err := h.repo.UpdateApplicationPayment(c.Request.Context(), req.ApplicationID, models.PaymentStatusPending, sessionID, nil); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"sessionId": sessionID,
		"url":       fmt.Sprintf("%s/%s", h.checkoutURL, sessionID),
	})
}

// Confirm records a completed payment. A targeted single-row update keyed by
// id; the only mutation an application ever receives after intake.
func (h *PaymentHandler) Confirm(c *gin.Context) {
	var req struct {
		ApplicationID uint   `json:"applicationId"`
		SessionID     string `json:"sessionId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ApplicationID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "applicationId is required"})
		return
	}

	now := time.Now().UTC()
	if err := h.repo.UpdateApplicationPayment(c.Request.Context(), req.ApplicationID, models.PaymentStatusPaid, req.SessionID, &now); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "application not found"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
