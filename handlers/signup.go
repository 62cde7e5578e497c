package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andy-arrow/vocal-excellence-backend/models"
	"github.com/andy-arrow/vocal-excellence-backend/utils"
	"github.com/andy-arrow/vocal-excellence-backend/validation"
)

type SignupHandler struct {
	repo  models.Repository
	kafka utils.KafkaProducer
}

func NewSignupHandler(repo models.Repository, kafka utils.KafkaProducer) *SignupHandler {
	return &SignupHandler{repo: repo, kafka: kafka}
}

func (h *SignupHandler) CreateSignup(c *gin.Context) {
	var data validation.SignupData
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid signup data format"})
		return
	}

	// Leads are normalized before validation so "  Ana@Example.COM " and
	// "ana@example.com" are the same signup.
	data.Email = strings.ToLower(strings.TrimSpace(data.Email))

	if errs := validation.ValidateSignup(&data); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   validation.Join(errs),
			"details": errs,
		})
		return
	}

	signup := &models.EmailSignup{
		Email:    data.Email,
		Source:   data.Source,
		Variant:  data.Variant,
		PagePath: data.PagePath,
	}
	if err := h.repo.CreateEmailSignup(c.Request.Context(), signup); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	if h.kafka != nil {
		go h.sendSignupEvent(signup)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "id": signup.ID})
}

func (h *SignupHandler) ListSignups(c *gin.Context) {
	signups, err := h.repo.GetAllEmailSignups(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, signups)
}

func (h *SignupHandler) sendSignupEvent(signup *models.EmailSignup) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	event := map[string]interface{}{
		"event":   "signup_received",
		"id":      signup.ID,
		"email":   signup.Email,
		"variant": signup.Variant,
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
