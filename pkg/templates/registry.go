package templates

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Registry resolves template IDs to templates and metadata. It starts from
// the built-in set and can merge overrides from an external YAML source.
// Templates are immutable between explicit reloads; all access is
// mutex-guarded so reloads are safe under concurrent requests.
type Registry struct {
	mu       sync.RWMutex
	texts    map[string]string
	metadata map[string]*Metadata
	logger   *zap.Logger
}

// NewRegistry creates a registry populated with the built-in templates.
func NewRegistry(logger *zap.Logger) *Registry {
	texts := make(map[string]string, len(builtinTemplates))
	for id, text := range builtinTemplates {
		texts[id] = text
	}
	meta := make(map[string]*Metadata, len(builtinMetadata))
	for id, m := range builtinMetadata {
		meta[id] = m
	}
	return &Registry{
		texts:    texts,
		metadata: meta,
		logger:   logger,
	}
}

// Get returns the template for id, or false if it is not registered.
func (r *Registry) Get(id string) (*Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	text, ok := r.texts[id]
	if !ok {
		return nil, false
	}
	return &Template{ID: id, Text: text, Metadata: r.metadata[id]}, true
}

// Metadata returns the metadata for id. Templates loaded from overrides may
// have none, in which case validation is skipped for them.
func (r *Registry) Metadata(id string) (*Metadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.metadata[id]
	return m, ok
}

// List returns every registered template ID mapped to its description.
func (r *Registry) List() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.texts))
	for id := range r.texts {
		if m, ok := r.metadata[id]; ok {
			out[id] = m.Description
		} else {
			out[id] = "No description available"
		}
	}
	return out
}

// LoadOverrides merges template definitions from a YAML file (mapping of
// template ID to template text) into the registry, overwriting by ID. It is
// idempotent: later calls override earlier ones for the same ID. A missing or
// unreadable file is non-fatal; the current set remains authoritative.
func (r *Registry) LoadOverrides(path string) {
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		r.logger.Warn("Failed to read template overrides file",
			zap.String("path", path),
			zap.Error(err),
		)
		return
	}

	var overrides map[string]string
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		r.logger.Warn("Failed to parse template overrides file",
			zap.String("path", path),
			zap.Error(err),
		)
		return
	}

	r.mu.Lock()
	for id, text := range overrides {
		r.texts[id] = text
	}
	r.mu.Unlock()

	r.logger.Info("Loaded template overrides",
		zap.String("path", path),
		zap.Int("count", len(overrides)),
	)
}
