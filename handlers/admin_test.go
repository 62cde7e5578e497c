package handlers

import (
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andy-arrow/vocal-excellence-backend/models"
)

func newAdminRouter(h *AdminHandler) *gin.Engine {
	r := gin.New()
	r.POST("/api/admin/verify", h.Verify)
	r.GET("/api/admin/export", h.Export)
	r.GET("/api/admin/search", h.Search)
	return r
}

// fakeSearch stands in for the reporting index.
type fakeSearch struct {
	queries []map[string]interface{}
	results []map[string]interface{}
	err     error
}

func (s *fakeSearch) IndexApplication(ctx context.Context, index string, id string, document interface{}) error {
	return nil
}

func (s *fakeSearch) SearchApplications(ctx context.Context, index string, query map[string]interface{}) ([]map[string]interface{}, error) {
	s.queries = append(s.queries, query)
	return s.results, s.err
}

func (s *fakeSearch) Close() error { return nil }

func postVerify(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/admin/verify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAdminVerify(t *testing.T) {
	router := newAdminRouter(NewAdminHandler(&fakeRepo{}, nil, "hunter2"))

	rec := postVerify(router, `{"password":"hunter2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)

	rec = postVerify(router, `{"password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminVerifyWithoutConfiguredSecret(t *testing.T) {
	router := newAdminRouter(NewAdminHandler(&fakeRepo{}, nil, ""))

	rec := postVerify(router, `{"password":"anything"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	// The missing variable name must not leak to the client.
	assert.NotContains(t, rec.Body.String(), "ADMIN_PASSWORD")
}

func TestAdminExportUnifiesEntities(t *testing.T) {
	repo := &fakeRepo{}
	ctx := context.Background()
	require.NoError(t, repo.CreateApplication(ctx, &models.Application{
		FirstName: "Ana", LastName: "Ko", Email: "ana@example.com", VocalRange: "soprano", PaymentStatus: models.PaymentStatusUnpaid,
	}))
	require.NoError(t, repo.CreateContactMessage(ctx, &models.ContactMessage{Name: "Bob", Email: "bob@example.com", Message: "hi"}))
	require.NoError(t, repo.CreateEmailSignup(ctx, &models.EmailSignup{Email: "lead@example.com", Variant: "B", PagePath: "/pricing"}))

	router := newAdminRouter(NewAdminHandler(repo, nil, "hunter2"))
	req := httptest.NewRequest(http.MethodGet, "/api/admin/export", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")

	rows, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4) // header + three entities

	assert.Equal(t, []string{"type", "id", "name", "email", "created_at", "detail"}, rows[0])

	kinds := []string{rows[1][0], rows[2][0], rows[3][0]}
	assert.Contains(t, kinds, "application")
	assert.Contains(t, kinds, "contact_message")
	assert.Contains(t, kinds, "email_signup")
}

func TestAdminExportSingleEntity(t *testing.T) {
	repo := &fakeRepo{}
	require.NoError(t, repo.CreateEmailSignup(context.Background(), &models.EmailSignup{Email: "lead@example.com"}))

	router := newAdminRouter(NewAdminHandler(repo, nil, "hunter2"))
	req := httptest.NewRequest(http.MethodGet, "/api/admin/export?entity=email-signups", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	rows, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "email_signup", rows[1][0])
}

func TestAdminSearchQueriesReportingIndex(t *testing.T) {
	search := &fakeSearch{results: []map[string]interface{}{
		{"id": float64(7), "firstName": "Ana", "email": "ana@example.com"},
	}}
	router := newAdminRouter(NewAdminHandler(&fakeRepo{}, search, "hunter2"))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/search?q=ana", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ana@example.com")

	require.Len(t, search.queries, 1)
	match := search.queries[0]["query"].(map[string]interface{})["multi_match"].(map[string]interface{})
	assert.Equal(t, "ana", match["query"])
}

func TestAdminSearchRequiresQuery(t *testing.T) {
	router := newAdminRouter(NewAdminHandler(&fakeRepo{}, &fakeSearch{}, "hunter2"))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/search?q=%20", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminSearchWithoutIndexConfigured(t *testing.T) {
	router := newAdminRouter(NewAdminHandler(&fakeRepo{}, nil, "hunter2"))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/search?q=ana", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
