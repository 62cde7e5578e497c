package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andy-arrow/vocal-excellence-backend/models"
	"github.com/andy-arrow/vocal-excellence-backend/monitoring"
	"github.com/andy-arrow/vocal-excellence-backend/utils"
	"github.com/andy-arrow/vocal-excellence-backend/validation"
)

const maxUploadSize = 50 << 20 // 50MB per file

var audioMIMETypes = map[string]bool{
	"audio/mpeg":  true,
	"audio/mp3":   true,
	"audio/wav":   true,
	"audio/ogg":   true,
	"audio/m4a":   true,
	"audio/x-m4a": true,
}

var documentMIMETypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// fileSlots are the four named multipart parts an application may carry.
var fileSlots = []struct {
	Field string
	Audio bool
}{
	{Field: "audioFile1", Audio: true},
	{Field: "audioFile2", Audio: true},
	{Field: "cvFile", Audio: false},
	{Field: "recommendationFile", Audio: false},
}

type ApplicationHandler struct {
	repo      models.Repository
	mailer    utils.Mailer // nil when no provider key is configured
	cache     utils.RedisClient
	kafka     utils.KafkaProducer
	uploadDir string
}

func NewApplicationHandler(repo models.Repository, mailer utils.Mailer, cache utils.RedisClient, kafka utils.KafkaProducer, uploadDir string) *ApplicationHandler {
	return &ApplicationHandler{
		repo:      repo,
		mailer:    mailer,
		cache:     cache,
		kafka:     kafka,
		uploadDir: uploadDir,
	}
}

// SubmitApplication runs the intake pipeline for one multipart submission:
// parse, validate, stage files, persist, notify. Validation failures stop
// before storage; notification failures are reported as a soft emailStatus
// field and never change the HTTP status, because at that point the record
// already exists and a client retry must not lose it.
func (h *ApplicationHandler) SubmitApplication(c *gin.Context) {
	raw := c.PostForm("applicationData")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid application data format"})
		return
	}

	var data validation.ApplicationData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid application data format"})
		return
	}

	if errs := validation.ValidateApplication(&data); len(errs) > 0 {
		monitoring.SubmissionsTotal.WithLabelValues("validation_failed").Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   validation.Join(errs),
			"details": errs,
		})
		return
	}

	// Files must be durably staged before the record is persisted, so a saved
	// application never references a file that was lost mid-request.
	paths, status, err := h.stageFiles(c)
	if err != nil {
		if status >= http.StatusInternalServerError {
			_ = c.Error(err)
		}
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}

	app := buildApplication(&data, paths)

	if err := h.repo.CreateApplication(c.Request.Context(), app); err != nil {
		monitoring.SubmissionsTotal.WithLabelValues("storage_failed").Inc()
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	monitoring.SubmissionsTotal.WithLabelValues("accepted").Inc()

	emailStatus := utils.NotifyResult{Success: false, Error: "email notifications not configured"}
	if h.mailer != nil {
		emailStatus = h.mailer.SendApplicationNotifications(c.Request.Context(), app)
		result := "sent"
		if !emailStatus.Success {
			result = "failed"
		}
		monitoring.EmailSendsTotal.WithLabelValues("application", result).Inc()
	} else {
		monitoring.EmailSendsTotal.WithLabelValues("application", "skipped").Inc()
	}

	if h.cache != nil {
		go func(app models.Application) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := utils.CacheApplication(ctx, h.cache, &app); err != nil {
				log.Printf("Failed to cache application %d: %v", app.ID, err)
			}
		}(*app)
	}
	if h.kafka != nil {
		go h.sendEvent("application_received", *app)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"applicationId": app.ID,
		"emailStatus":   emailStatus,
		"message":       "Application submitted successfully",
	})
}

func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid application ID format"})
		return
	}

	if h.cache != nil {
		if cached, err := h.cache.GetFromCache(c.Request.Context(), utils.ApplicationCacheKey(id)); err == nil && cached != "" {
			var app models.Application
			if err := json.Unmarshal([]byte(cached), &app); err == nil {
				c.JSON(http.StatusOK, app)
				return
			}
		}
	}

	app, err := h.repo.GetApplicationByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if h.cache != nil {
		go func(app models.Application) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := utils.CacheApplication(ctx, h.cache, &app); err != nil {
				log.Printf("Failed to cache application %d: %v", app.ID, err)
			}
		}(*app)
	}

	c.JSON(http.StatusOK, app)
}

func (h *ApplicationHandler) ListApplications(c *gin.Context) {
	apps, err := h.repo.GetAllApplications(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, apps)
}

// stageFiles writes each present upload slot to local disk under a directory
// named by the submission timestamp. Returns the HTTP status to use when err
// is non-nil: client-correctable problems (size, type) are 400, disk failures
// are 500.
func (h *ApplicationHandler) stageFiles(c *gin.Context) (map[string]*string, int, error) {
	dir := filepath.Join(h.uploadDir, strconv.FormatInt(time.Now().UnixMilli(), 10))
	dirCreated := false
	abort := func() {
		if !dirCreated {
			return
		}
		if err := os.RemoveAll(dir); err != nil {
			log.Printf("Failed to remove staging directory %s: %v", dir, err)
		}
	}

	paths := make(map[string]*string, len(fileSlots))
	for _, slot := range fileSlots {
		file, err := c.FormFile(slot.Field)
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				paths[slot.Field] = nil
				continue
			}
			abort()
			return nil, http.StatusBadRequest, fmt.Errorf("failed to read %s: %w", slot.Field, err)
		}

		if file.Size > maxUploadSize {
			abort()
			return nil, http.StatusBadRequest, fmt.Errorf("%s exceeds the 50MB limit", slot.Field)
		}
		if err := checkMIMEType(slot.Field, slot.Audio, file); err != nil {
			abort()
			return nil, http.StatusBadRequest, err
		}

		if !dirCreated {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, http.StatusInternalServerError, fmt.Errorf("failed to create upload directory: %w", err)
			}
			dirCreated = true
		}

		// Slots may carry identical client filenames; the slot prefix keeps
		// each upload at its own path.
		dst := filepath.Join(dir, slot.Field+"-"+sanitizeFilename(file.Filename))
		if err := c.SaveUploadedFile(file, dst); err != nil {
			abort()
			return nil, http.StatusInternalServerError, fmt.Errorf("failed to save %s: %w", slot.Field, err)
		}
		p := dst
		paths[slot.Field] = &p
	}
	return paths, 0, nil
}

func checkMIMEType(field string, audio bool, file *multipart.FileHeader) error {
	contentType := file.Header.Get("Content-Type")
	allowed := documentMIMETypes
	kind := "document"
	if audio {
		allowed = audioMIMETypes
		kind = "audio"
	}
	if !allowed[contentType] {
		return fmt.Errorf("%s has unsupported %s type %q", field, kind, contentType)
	}
	return nil
}

func buildApplication(data *validation.ApplicationData, paths map[string]*string) *models.Application {
	return &models.Application{
		FirstName:              data.FirstName,
		LastName:               data.LastName,
		Email:                  data.Email,
		Phone:                  data.Phone,
		DateOfBirth:            data.DateOfBirth,
		Nationality:            data.Nationality,
		City:                   data.City,
		Country:                data.Country,
		VocalRange:             data.VocalRange,
		YearsSinging:           data.YearsSinging,
		MusicalBackground:      data.MusicalBackground,
		ReasonForApplying:      data.ReasonForApplying,
		HeardAboutUs:           data.HeardAboutUs,
		DietaryRestriction:     data.DietaryRestriction,
		DietaryDetail:          data.DietaryDetail,
		ScholarshipInterest:    data.ScholarshipInterest,
		TermsAgreed:            data.TermsAgreed,
		AudioFile1Path:         paths["audioFile1"],
		AudioFile2Path:         paths["audioFile2"],
		CVFilePath:             paths["cvFile"],
		RecommendationFilePath: paths["recommendationFile"],
		PaymentStatus:          models.PaymentStatusUnpaid,
		Source:                 data.Source,
	}
}

func (h *ApplicationHandler) sendEvent(eventType string, app models.Application) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	event := map[string]interface{}{
		"event": eventType,
		"data":  app,
	}
	jsonData, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal Kafka event: %v", err)
		return
	}

	if err := h.kafka.SendMessage(ctx, utils.ApplicationEventsTopic, []byte(strconv.FormatUint(uint64(app.ID), 10)), jsonData); err != nil {
		log.Printf("Failed to send Kafka message: %v", err)
	}
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, "..", "")
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "upload"
	}
	return base
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	return uint(id), err
}
