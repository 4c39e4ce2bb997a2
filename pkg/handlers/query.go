package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dynasql/dynasql/pkg/apperrors"
	"github.com/dynasql/dynasql/pkg/cache"
	"github.com/dynasql/dynasql/pkg/params"
	"github.com/dynasql/dynasql/pkg/services"
	"github.com/dynasql/dynasql/pkg/sql"
)

// QueryHandler serves query execution and engine administration endpoints.
type QueryHandler struct {
	engine services.QueryEngine
	logger *zap.Logger
}

// NewQueryHandler creates a QueryHandler with dependencies.
func NewQueryHandler(engine services.QueryEngine, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{engine: engine, logger: logger}
}

// RegisterRoutes registers the handler's routes on the given mux.
func (h *QueryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/query", h.Query)
	mux.HandleFunc("GET /api/templates", h.ListTemplates)
	mux.HandleFunc("GET /api/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/cache/clear", h.ClearCache)
}

// queryRequest is the wire shape of POST /api/query.
type queryRequest struct {
	TemplateID string          `json:"template_id"`
	Parameters map[string]any  `json:"parameters"`
	GroupBy    []string        `json:"group_by,omitempty"`
	Sort       []sql.SortField `json:"sort,omitempty"`
}

// queryResponse is the wire shape of a successful query.
type queryResponse struct {
	Status            string           `json:"status"`
	Data              []map[string]any `json:"data"`
	RowCount          int              `json:"row_count"`
	DBExecutionMillis int64            `json:"db_execution_time_ms"`
	TemplateMillis    int64            `json:"template_time_ms"`
	TotalMillis       int64            `json:"total_time_ms"`
	CacheInfo         cache.Stats      `json:"cache_info"`
}

// Query handles POST /api/query.
func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger := h.logger.With(zap.String("request_id", uuid.NewString()))

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, logger, http.StatusBadRequest, "invalid_input", "request body must be valid JSON")
		return
	}
	if req.TemplateID == "" {
		h.writeError(w, logger, http.StatusBadRequest, "invalid_input", "template_id is required")
		return
	}
	if req.Parameters == nil {
		h.writeError(w, logger, http.StatusBadRequest, "invalid_input", "parameters is required")
		return
	}

	logger.Info("Received query request",
		zap.String("template_id", req.TemplateID),
		zap.Int("parameter_count", len(req.Parameters)),
		zap.Bool("dynamic_clauses", len(req.GroupBy) > 0 || len(req.Sort) > 0),
	)

	result, err := h.engine.Run(r.Context(), &services.QueryRequest{
		TemplateID: req.TemplateID,
		Parameters: params.FromMap(req.Parameters),
		GroupBy:    req.GroupBy,
		Sort:       req.Sort,
	})
	if err != nil {
		h.writeEngineError(w, logger, err)
		return
	}

	resp := queryResponse{
		Status:            "success",
		Data:              result.Rows,
		RowCount:          result.RowCount,
		DBExecutionMillis: result.DBExecutionMillis,
		TemplateMillis:    result.TemplateMillis,
		TotalMillis:       time.Since(start).Milliseconds(),
		CacheInfo:         result.CacheInfo,
	}

	logger.Info("Query complete",
		zap.Int("row_count", resp.RowCount),
		zap.Int64("total_time_ms", resp.TotalMillis),
	)

	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		logger.Error("Failed to encode query response", zap.Error(err))
	}
}

// ListTemplates handles GET /api/templates.
func (h *QueryHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	list := h.engine.ListTemplates()
	if err := WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "success",
		"templates": list,
		"count":     len(list),
	}); err != nil {
		h.logger.Error("Failed to encode template list", zap.Error(err))
	}
}

// CacheStats handles GET /api/cache/stats.
func (h *QueryHandler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if err := WriteJSON(w, http.StatusOK, map[string]any{
		"status":      "success",
		"cache_stats": h.engine.CacheStats(),
	}); err != nil {
		h.logger.Error("Failed to encode cache stats", zap.Error(err))
	}
}

// ClearCache handles POST /api/cache/clear.
func (h *QueryHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.engine.ClearCache()
	if err := WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "cache cleared",
	}); err != nil {
		h.logger.Error("Failed to encode clear response", zap.Error(err))
	}
}

// writeEngineError maps engine failures to transport responses. Validation
// and template errors are caller faults; unknown templates are 404; anything
// from the execution layer is a 500 with the reason passed through.
func (h *QueryHandler) writeEngineError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var (
		validationErr *apperrors.ValidationError
		templateErr   *apperrors.TemplateError
		executionErr  *apperrors.ExecutionError
	)

	switch {
	case errors.Is(err, apperrors.ErrUnknownTemplate):
		h.writeError(w, logger, http.StatusNotFound, "unknown_template", err.Error())
	case errors.As(err, &validationErr):
		h.writeError(w, logger, http.StatusBadRequest, "validation_error", validationErr.Error())
	case errors.As(err, &templateErr):
		h.writeError(w, logger, http.StatusBadRequest, "template_error", templateErr.Error())
	case errors.As(err, &executionErr):
		h.writeError(w, logger, http.StatusInternalServerError, "execution_error", executionErr.Error())
	default:
		logger.Error("Unexpected engine error", zap.Error(err))
		h.writeError(w, logger, http.StatusInternalServerError, "server_error", "an unexpected error occurred")
	}
}

func (h *QueryHandler) writeError(w http.ResponseWriter, logger *zap.Logger, status int, code, message string) {
	logger.Warn("Request failed",
		zap.Int("status", status),
		zap.String("code", code),
		zap.String("error", message),
	)
	if err := ErrorResponse(w, status, code, message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}
