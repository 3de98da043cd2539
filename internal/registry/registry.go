// Package registry owns the process-wide mapping from dataset identifiers to
// their normalized tables and the lazily-built canonical plant object. It is
// injected into the services rather than accessed as ambient global state so
// the concurrency contract stays explicit and testable.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"windoa/internal/plant"
)

// ErrNotFound is returned when a dataset identifier is not registered.
var ErrNotFound = errors.New("dataset not found")

// idLength is the number of uuid characters kept for a dataset identifier.
// Eight hex characters carry 48 bits of uuid randomness, enough to make
// collisions negligible at process-lifetime scale.
const idLength = 8

// PlantBuilder constructs the canonical plant object from stored tables.
// The analysis kind is a validation hint only.
type PlantBuilder func(meta plant.Metadata, tables plant.Tables, kind plant.AnalysisKind) (*plant.Data, error)

// DatasetInfo is the listing view of one dataset.
type DatasetInfo struct {
	ID         string   `json:"dataset_id"`
	Categories []string `json:"categories"`
}

// Dataset is the read view returned by Get.
type Dataset struct {
	ID       string
	Tables   plant.Tables
	Metadata *plant.Metadata
	HasPlant bool
}

type entry struct {
	tables plant.Tables
	meta   *plant.Metadata

	mu    sync.RWMutex
	plant *plant.Data
}

// Registry is the in-memory dataset store. All methods are safe for
// concurrent use; operations on different identifiers never contend beyond
// the map lock.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string

	group   singleflight.Group
	builder PlantBuilder
	logger  *slog.Logger
}

// New creates a registry that builds plant objects with the given builder.
func New(builder PlantBuilder, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		entries: make(map[string]*entry),
		builder: builder,
		logger:  logger.With(slog.String("component", "registry")),
	}
}

// Create stores a new dataset and returns its identifier. A nil metadata
// means defaults are applied when the plant object is first built.
func (r *Registry) Create(tables plant.Tables, meta *plant.Metadata) string {
	return r.CreateWithPrefix("", tables, meta)
}

// CreateWithPrefix stores a new dataset with a human-readable identifier
// prefix (for the bundled example dataset).
func (r *Registry) CreateWithPrefix(prefix string, tables plant.Tables, meta *plant.Metadata) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var id string
	for {
		id = prefix + newID()
		if _, exists := r.entries[id]; !exists {
			break
		}
	}

	r.entries[id] = &entry{tables: tables, meta: meta}
	r.order = append(r.order, id)

	r.logger.Info("dataset registered",
		slog.String("dataset_id", id),
		slog.Any("categories", tables.Categories()))
	return id
}

// Get returns the dataset view, or absence.
func (r *Registry) Get(id string) (*Dataset, bool) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}

	e.mu.RLock()
	hasPlant := e.plant != nil
	e.mu.RUnlock()

	return &Dataset{
		ID:       id,
		Tables:   e.tables,
		Metadata: e.meta,
		HasPlant: hasPlant,
	}, true
}

// List enumerates all live datasets in insertion order. Callers must not
// depend on the ordering.
func (r *Registry) List() []DatasetInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]DatasetInfo, 0, len(r.order))
	for _, id := range r.order {
		e, ok := r.entries[id]
		if !ok {
			continue
		}
		out = append(out, DatasetInfo{ID: id, Categories: e.tables.Categories()})
	}
	return out
}

// Delete removes a dataset, reporting whether it existed. This is the only
// deliberate memory-reclamation path; an analysis already running against
// the dataset keeps its own reference to the plant object and completes.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return false
	}
	delete(r.entries, id)
	for i, ordered := range r.order {
		if ordered == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	r.logger.Info("dataset deleted", slog.String("dataset_id", id))
	return true
}

// GetOrCreatePlant returns the dataset's plant object, building and caching
// it on first use. A cached object is returned unconditionally, even when a
// later request names a different analysis kind: one plant object serves all
// kinds once built. Concurrent first requests are collapsed through
// singleflight so the expensive construction happens at most once.
func (r *Registry) GetOrCreatePlant(ctx context.Context, id string, kind plant.AnalysisKind) (*plant.Data, error) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	e.mu.RLock()
	cached := e.plant
	e.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	result, err, _ := r.group.Do(id, func() (interface{}, error) {
		// Re-check under the flight: a previous flight may have
		// populated the cache between our check and this call.
		e.mu.RLock()
		cached := e.plant
		e.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		meta := plant.DefaultMetadata()
		if e.meta != nil {
			meta = *e.meta
		}

		built, err := r.builder(meta, e.tables, kind)
		if err != nil {
			return nil, fmt.Errorf("cannot create plant object: %w", err)
		}

		e.mu.Lock()
		e.plant = built
		e.mu.Unlock()

		r.logger.InfoContext(ctx, "plant object built",
			slog.String("dataset_id", id),
			slog.String("analysis_kind", string(kind)),
			slog.Int("turbines", len(built.TurbineIDs)))
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*plant.Data), nil
}

func newID() string {
	return uuid.New().String()[:idLength]
}
