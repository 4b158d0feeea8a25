package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/geo-cli/internal/model"
	"github.com/sells-group/geo-cli/internal/orchestrator"
	"github.com/sells-group/geo-cli/internal/store"
)

type stubRunner struct {
	result *model.Result
	err    error
}

func (s *stubRunner) Execute(_ context.Context, _ model.AnalysisRequest) (*model.Result, error) {
	return s.result, s.err
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testResult(id string) *model.Result {
	return &model.Result{
		ID:        id,
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Request: model.AnalysisRequest{
			Query:       "crm software",
			BrandDomain: "acme.com",
			Competitors: []string{"rival.com"},
		},
		Comparison: model.Comparison{
			BrandScore: model.VisibilityScore{Domain: "acme.com", MentionRate: 0.5, TotalMentions: 2},
			CompetitorScores: []model.VisibilityScore{
				{Domain: "rival.com", MentionRate: 0.75, TotalMentions: 3},
			},
			VisibilityGap: 0.25,
			TopCompetitor: "rival.com",
		},
		Summary: "GEO Analysis Summary for \"crm software\"",
		Status:  model.RunStatusCompleted,
	}
}

func TestServe_Health(t *testing.T) {
	router := newRouter(&stubRunner{}, newTestStore(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServe_Analyze(t *testing.T) {
	router := newRouter(&stubRunner{result: testResult("run-1")}, newTestStore(t))

	body := strings.NewReader(`{"query":"crm software","brand_domain":"acme.com"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analyze", body))

	require.Equal(t, http.StatusOK, rec.Code)
	var got model.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "run-1", got.ID)
	assert.Equal(t, "rival.com", got.Comparison.TopCompetitor)
}

func TestServe_Analyze_BadBody(t *testing.T) {
	router := newRouter(&stubRunner{}, newTestStore(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader("{not json")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServe_Analyze_ValidationError(t *testing.T) {
	router := newRouter(&stubRunner{err: eris.Wrap(orchestrator.ErrInvalidRequest, "query is required")}, newTestStore(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "query is required")
}

func TestServe_Analyze_SentinelNotMessageMatch(t *testing.T) {
	// An unrelated failure that merely mentions invalid request in its
	// message is still a server error.
	router := newRouter(&stubRunner{err: eris.New("gateway: upstream rejected an invalid request")}, newTestStore(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"query":"x","brand_domain":"y"}`)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServe_Analyze_InternalError(t *testing.T) {
	router := newRouter(&stubRunner{err: eris.New("orchestrator: cancelled")}, newTestStore(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"query":"x","brand_domain":"y"}`)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServe_Compare_RequiresTwoDomains(t *testing.T) {
	router := newRouter(&stubRunner{}, newTestStore(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/compare", strings.NewReader(`{"query":"crm","domains":["acme.com"]}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "two domains")
}

func TestServe_Compare(t *testing.T) {
	router := newRouter(&stubRunner{result: testResult("run-2")}, newTestStore(t))

	body := strings.NewReader(`{"query":"crm software","domains":["acme.com","rival.com"]}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/compare", body))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServe_ListRuns_Empty(t *testing.T) {
	router := newRouter(&stubRunner{}, newTestStore(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestServe_GetRun(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.SaveResult(context.Background(), testResult("run-1")))
	router := newRouter(&stubRunner{}, st)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/run-1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got model.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "run-1", got.ID)
}

func TestServe_GetRun_NotFound(t *testing.T) {
	router := newRouter(&stubRunner{}, newTestStore(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServe_SearchRuns(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.SaveResult(context.Background(), testResult("run-1")))
	router := newRouter(&stubRunner{}, st)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/search?q=crm+software", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var hits []store.SearchHit
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hits))
	require.NotEmpty(t, hits)
	assert.Equal(t, "run-1", hits[0].ID)
}

func TestServe_SearchRuns_MissingQuery(t *testing.T) {
	router := newRouter(&stubRunner{}, newTestStore(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/search", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
