package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andy-arrow/vocal-excellence-backend/models"
	"github.com/andy-arrow/vocal-excellence-backend/monitoring"
	"github.com/andy-arrow/vocal-excellence-backend/utils"
	"github.com/andy-arrow/vocal-excellence-backend/validation"
)

type ContactHandler struct {
	repo   models.Repository
	mailer utils.Mailer
	kafka  utils.KafkaProducer
}

func NewContactHandler(repo models.Repository, mailer utils.Mailer, kafka utils.KafkaProducer) *ContactHandler {
	return &ContactHandler{repo: repo, mailer: mailer, kafka: kafka}
}

// SubmitContact serves the older contact form, which writes to the legacy
// contact_messages table. The routing repository keeps that table on the
// local backend regardless of the configured primary.
func (h *ContactHandler) SubmitContact(c *gin.Context) {
	var data validation.ContactData
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid contact data format"})
		return
	}

	if errs := validation.ValidateContact(&data); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   validation.Join(errs),
			"details": errs,
		})
		return
	}

	msg := &models.ContactMessage{
		Name:    data.Name,
		Email:   data.Email,
		Message: data.Message,
		Source:  "contact-form",
	}
	if err := h.repo.CreateContactMessage(c.Request.Context(), msg); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	if h.mailer != nil {
		status := h.mailer.SendContactNotification(c.Request.Context(), msg.Name, msg.Email, msg.Message)
		result := "sent"
		if !status.Success {
			result = "failed"
		}
		monitoring.EmailSendsTotal.WithLabelValues("contact", result).Inc()
	}

	if h.kafka != nil {
		go h.sendContactEvent("contact_received", msg.ID, msg.Email)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "messageId": msg.ID})
}

func (h *ContactHandler) ListContactMessages(c *gin.Context) {
	msgs, err := h.repo.GetAllContactMessages(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// SubmitContactSubmission serves the newer contact form variant, whose table
// follows the primary backend.
func (h *ContactHandler) SubmitContactSubmission(c *gin.Context) {
	var data validation.ContactSubmissionData
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid contact data format"})
		return
	}

	if errs := validation.ValidateContactSubmission(&data); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   validation.Join(errs),
			"details": errs,
		})
		return
	}

	sub := &models.ContactSubmission{
		Name:      data.Name,
		Email:     data.Email,
		VocalType: data.VocalType,
		Message:   data.Message,
		Source:    data.Source,
	}
	if err := h.repo.CreateContactSubmission(c.Request.Context(), sub); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	if h.mailer != nil {
		status := h.mailer.SendContactNotification(c.Request.Context(), sub.Name, sub.Email, sub.Message)
		result := "sent"
		if !status.Success {
			result = "failed"
		}
		monitoring.EmailSendsTotal.WithLabelValues("contact", result).Inc()
	}

	if h.kafka != nil {
		go h.sendContactEvent("contact_received", sub.ID, sub.Email)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "id": sub.ID})
}

func (h *ContactHandler) ListContactSubmissions(c *gin.Context) {
	subs, err := h.repo.GetAllContactSubmissions(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, subs)
}

func (h *ContactHandler) sendContactEvent(eventType string, id uint, email string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	event := map[string]interface{}{
		"event": eventType,
		"id":    id,
		"email": email,
	}
	jsonData, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal Kafka event: %v", err)
		return
	}
	if err := h.kafka.SendMessage(ctx, utils.ApplicationEventsTopic, nil, jsonData); err != nil {
		log.Printf("Failed to send Kafka message: %v", err)
	}
}
