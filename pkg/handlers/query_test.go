package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dynasql/dynasql/pkg/apperrors"
	"github.com/dynasql/dynasql/pkg/cache"
	"github.com/dynasql/dynasql/pkg/services"
)

// stubEngine returns canned results and records the last request.
type stubEngine struct {
	lastRequest *services.QueryRequest
	result      *services.QueryResult
	err         error
	cleared     bool
}

func (s *stubEngine) Run(_ context.Context, req *services.QueryRequest) (*services.QueryResult, error) {
	s.lastRequest = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubEngine) ListTemplates() map[string]string {
	return map[string]string{"customer_analysis": "Analyze customer order history"}
}

func (s *stubEngine) CacheStats() cache.Stats {
	return cache.Stats{Size: 2, Hits: 5, Misses: 3, HitRatio: 0.625}
}

func (s *stubEngine) ClearCache() { s.cleared = true }

func newTestMux(engine services.QueryEngine) *http.ServeMux {
	mux := http.NewServeMux()
	NewQueryHandler(engine, zap.NewNop()).RegisterRoutes(mux)
	return mux
}

func TestQuery_Success(t *testing.T) {
	engine := &stubEngine{
		result: &services.QueryResult{
			Rows:              []map[string]any{{"order_id": 1}},
			RowCount:          1,
			DBExecutionMillis: 4,
			TemplateMillis:    1,
			CacheInfo:         cache.Stats{Size: 1, Misses: 1},
		},
	}
	mux := newTestMux(engine)

	body := `{
		"template_id": "customer_analysis",
		"parameters": {"customer_id": 42, "start_date": "2024-01-01", "end_date": "2024-12-31"},
		"sort": [{"field": "amount", "direction": "DESC"}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp["status"])
	assert.Equal(t, float64(1), resp["row_count"])
	assert.Equal(t, float64(4), resp["db_execution_time_ms"])

	// Request decoded into engine types.
	require.NotNil(t, engine.lastRequest)
	assert.Equal(t, "customer_analysis", engine.lastRequest.TemplateID)
	assert.Len(t, engine.lastRequest.Parameters, 3)
	require.Len(t, engine.lastRequest.Sort, 1)
	assert.Equal(t, "amount", engine.lastRequest.Sort[0].Field)
}

func TestQuery_InvalidJSON(t *testing.T) {
	mux := newTestMux(&stubEngine{})

	req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuery_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing template_id", body: `{"parameters": {}}`},
		{name: "missing parameters", body: `{"template_id": "customer_analysis"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newTestMux(&stubEngine{})
			req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "invalid_input", resp["code"])
		})
	}
}

func TestQuery_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "unknown template",
			err:        apperrors.ErrUnknownTemplate,
			wantStatus: http.StatusNotFound,
			wantCode:   "unknown_template",
		},
		{
			name:       "validation error",
			err:        &apperrors.ValidationError{Reason: "missing required parameters: customer_id"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation_error",
		},
		{
			name:       "template error",
			err:        &apperrors.TemplateError{Reason: "'if flag' block is not closed with 'endif'"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "template_error",
		},
		{
			name:       "execution error",
			err:        &apperrors.ExecutionError{Err: assert.AnError},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "execution_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newTestMux(&stubEngine{err: tt.err})

			body := `{"template_id": "x", "parameters": {}}`
			req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader(body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp["code"])
			assert.Equal(t, "error", resp["status"])
		})
	}
}

func TestListTemplates(t *testing.T) {
	mux := newTestMux(&stubEngine{})

	req := httptest.NewRequest(http.MethodGet, "/api/templates", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status    string            `json:"status"`
		Templates map[string]string `json:"templates"`
		Count     int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, 1, resp.Count)
	assert.Contains(t, resp.Templates, "customer_analysis")
}

func TestCacheStats(t *testing.T) {
	mux := newTestMux(&stubEngine{})

	req := httptest.NewRequest(http.MethodGet, "/api/cache/stats", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status string      `json:"status"`
		Stats  cache.Stats `json:"cache_stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(5), resp.Stats.Hits)
	assert.Equal(t, int64(3), resp.Stats.Misses)
	assert.Equal(t, 2, resp.Stats.Size)
}

func TestClearCache(t *testing.T) {
	engine := &stubEngine{}
	mux := newTestMux(engine)

	req := httptest.NewRequest(http.MethodPost, "/api/cache/clear", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, engine.cleared)
}
