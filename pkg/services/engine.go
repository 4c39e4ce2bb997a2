// Package services composes the query engine: parameter validation, render
// caching, clause injection, template rendering and delegated execution.
package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dynasql/dynasql/pkg/apperrors"
	"github.com/dynasql/dynasql/pkg/cache"
	"github.com/dynasql/dynasql/pkg/database"
	"github.com/dynasql/dynasql/pkg/params"
	"github.com/dynasql/dynasql/pkg/sql"
	"github.com/dynasql/dynasql/pkg/templates"
)

// QueryRequest is one resolved query invocation. GroupBy and Sort are the
// dynamic clauses; when either is non-empty the render cache is bypassed for
// the whole request.
type QueryRequest struct {
	TemplateID string
	Parameters map[string]params.Value
	GroupBy    []string
	Sort       []sql.SortField
}

// dynamic reports whether the request carries GROUP BY or ORDER BY clauses.
func (r *QueryRequest) dynamic() bool {
	return len(r.GroupBy) > 0 || len(r.Sort) > 0
}

// QueryResult carries rows plus timing and cache accounting back to the caller.
type QueryResult struct {
	Rows              []map[string]any
	RowCount          int
	DBExecutionMillis int64
	TemplateMillis    int64
	CacheInfo         cache.Stats
}

// QueryEngine resolves, renders and executes template-driven queries and
// exposes the administrative operations of the engine.
type QueryEngine interface {
	Run(ctx context.Context, req *QueryRequest) (*QueryResult, error)
	ListTemplates() map[string]string
	CacheStats() cache.Stats
	ClearCache()
}

type queryEngine struct {
	registry *templates.Registry
	cache    *cache.RenderCache
	executor database.Executor
	logger   *zap.Logger
}

// NewQueryEngine creates a query engine with dependencies.
func NewQueryEngine(
	registry *templates.Registry,
	renderCache *cache.RenderCache,
	executor database.Executor,
	logger *zap.Logger,
) QueryEngine {
	return &queryEngine{
		registry: registry,
		cache:    renderCache,
		executor: executor,
		logger:   logger,
	}
}

// Run validates the request, resolves the final SQL (from cache where
// permitted), and delegates execution. Validation, lookup and rendering
// failures are typed and terminal; nothing is retried here.
func (e *queryEngine) Run(ctx context.Context, req *QueryRequest) (*QueryResult, error) {
	meta, _ := e.registry.Metadata(req.TemplateID)
	if err := templates.ValidateParameters(meta, req.Parameters); err != nil {
		e.logger.Warn("Parameter validation failed",
			zap.String("template_id", req.TemplateID),
			zap.Error(err),
		)
		return nil, err
	}

	start := time.Now()

	sqlText, err := e.resolveSQL(req)
	if err != nil {
		return nil, err
	}

	templateMillis := time.Since(start).Milliseconds()

	bound := sql.FilterBindParameters(sqlText, req.Parameters)

	e.logger.Debug("Executing rendered SQL",
		zap.String("template_id", req.TemplateID),
		zap.String("sql", sqlText),
		zap.Int("bound_params", len(bound)),
	)

	result, err := e.executor.Execute(ctx, sqlText, bound)
	if err != nil {
		return nil, err
	}

	return &QueryResult{
		Rows:              result.Rows,
		RowCount:          result.RowCount,
		DBExecutionMillis: result.ExecutionMillis,
		TemplateMillis:    templateMillis,
		CacheInfo:         e.cache.Stats(),
	}, nil
}

// resolveSQL produces the final SQL text for the request. Requests without
// dynamic clauses go through the render cache; requests with them always
// render fresh and are never cached, because the same key would otherwise
// alias different injected clauses.
func (e *queryEngine) resolveSQL(req *QueryRequest) (string, error) {
	dynamic := req.dynamic()
	key := cache.Key(req.TemplateID, req.Parameters)

	if !dynamic {
		if cached, ok := e.cache.Get(key); ok {
			e.logger.Debug("Render cache hit", zap.String("template_id", req.TemplateID))
			return cached, nil
		}
	}

	tpl, ok := e.registry.Get(req.TemplateID)
	if !ok {
		e.logger.Warn("Unknown template requested", zap.String("template_id", req.TemplateID))
		return "", apperrors.ErrUnknownTemplate
	}

	text := tpl.Text
	text = sql.InjectGroupBy(text, req.GroupBy)
	text = sql.InjectOrderBy(text, req.Sort)

	rendered, err := sql.Render(text, req.Parameters)
	if err != nil {
		e.logger.Error("Template rendering failed",
			zap.String("template_id", req.TemplateID),
			zap.Error(err),
		)
		return "", err
	}

	if !dynamic {
		e.cache.Put(key, rendered)
	}
	return rendered, nil
}

// ListTemplates returns every registered template ID with its description.
func (e *queryEngine) ListTemplates() map[string]string {
	return e.registry.List()
}

// CacheStats returns a snapshot of render cache accounting.
func (e *queryEngine) CacheStats() cache.Stats {
	return e.cache.Stats()
}

// ClearCache drops all cached renders and resets the counters.
func (e *queryEngine) ClearCache() {
	e.cache.Clear()
	e.logger.Info("Render cache cleared")
}
