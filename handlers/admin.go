package handlers

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andy-arrow/vocal-excellence-backend/models"
	"github.com/andy-arrow/vocal-excellence-backend/utils"
)

type AdminHandler struct {
	repo     models.Repository
	search   utils.ElasticsearchClient // nil when no search index is configured
	password string
}

func NewAdminHandler(repo models.Repository, search utils.ElasticsearchClient, password string) *AdminHandler {
	return &AdminHandler{repo: repo, search: search, password: password}
}

// Verify compares the submitted password against the configured secret.
// Plain string equality, matching the original behavior; no hashing and no
// constant-time comparison.
func (h *AdminHandler) Verify(c *gin.Context) {
	if h.password == "" {
		// The missing variable name is logged server-side only.
		log.Printf("Admin verification attempted but ADMIN_PASSWORD is not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "admin verification is unavailable"})
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
		return
	}

	if req.Password != h.password {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Search queries the Elasticsearch reporting index that the consumer mirrors
// applications into. Reads only the index, never primary storage.
func (h *AdminHandler) Search(c *gin.Context) {
	if h.search == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "search index is not configured"})
		return
	}

	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "q is required"})
		return
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  q,
				"fields": []string{"firstName", "lastName", "email", "vocalRange", "heardAboutUs"},
			},
		},
	}
	results, err := h.search.SearchApplications(c.Request.Context(), utils.ApplicationsIndex, query)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "results": results})
}

// Export writes the four intake entities as one CSV. The entities share no
// foreign keys; this tagged-union listing is the only place they are unified.
func (h *AdminHandler) Export(c *gin.Context) {
	entity := c.DefaultQuery("entity", "all")
	ctx := c.Request.Context()

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=export-%s.csv", time.Now().Format("2006-01-02")))

	w := csv.NewWriter(c.Writer)
	defer w.Flush()

	_ = w.Write([]string{"type", "id", "name", "email", "created_at", "detail"})

	writeRow := func(kind string, id uint, name, email string, createdAt time.Time, detail string) {
		_ = w.Write([]string{
			kind,
			strconv.FormatUint(uint64(id), 10),
			name,
			email,
			createdAt.UTC().Format(time.RFC3339),
			detail,
		})
	}

	if entity == "all" || entity == "applications" {
		apps, err := h.repo.GetAllApplications(ctx)
		if err != nil {
			_ = c.Error(err)
			return
		}
		for _, a := range apps {
			writeRow("application", a.ID, a.FirstName+" "+a.LastName, a.Email, a.CreatedAt,
				fmt.Sprintf("vocal_range=%s payment=%s", a.VocalRange, a.PaymentStatus))
		}
	}
	if entity == "all" || entity == "contact-submissions" {
		subs, err := h.repo.GetAllContactSubmissions(ctx)
		if err != nil {
			_ = c.Error(err)
			return
		}
		for _, s := range subs {
			writeRow("contact_submission", s.ID, s.Name, s.Email, s.CreatedAt, s.Message)
		}
	}
	if entity == "all" || entity == "contact-messages" {
		msgs, err := h.repo.GetAllContactMessages(ctx)
		if err != nil {
			_ = c.Error(err)
			return
		}
		for _, m := range msgs {
			writeRow("contact_message", m.ID, m.Name, m.Email, m.CreatedAt, m.Message)
		}
	}
	if entity == "all" || entity == "email-signups" {
		signups, err := h.repo.GetAllEmailSignups(ctx)
		if err != nil {
			_ = c.Error(err)
			return
		}
		for _, s := range signups {
			writeRow("email_signup", s.ID, "", s.Email, s.CreatedAt,
				fmt.Sprintf("variant=%s page=%s", s.Variant, s.PagePath))
		}
	}
}
