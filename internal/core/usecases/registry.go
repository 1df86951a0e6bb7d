package usecases

import (
	"sync"

	"github.com/samirrijal/civicmap/internal/core/domain"
)

// LayerRegistry maps categories and base map names to their layer handles.
type LayerRegistry struct {
	mu       sync.RWMutex
	overlays map[string]domain.LayerHandle
	bases    []domain.LayerHandle
}

// NewLayerRegistry creates a registry holding the given base layers.
func NewLayerRegistry(bases []domain.BaseLayer) *LayerRegistry {
	r := &LayerRegistry{overlays: make(map[string]domain.LayerHandle)}
	for _, b := range bases {
		r.bases = append(r.bases, domain.LayerHandle{
			ID:          "base:" + b.Name,
			Kind:        domain.LayerBase,
			Name:        b.Name,
			TileURL:     b.TileURL,
			Attribution: b.Attribution,
		})
	}
	return r
}

// Register creates the overlay handle of a loaded category.
func (r *LayerRegistry) Register(category domain.Category, count int, iconBaseURL string) domain.LayerHandle {
	h := domain.LayerHandle{
		ID:      "overlay:" + category.Name,
		Kind:    domain.LayerOverlay,
		Name:    category.Name,
		IconURL: iconBaseURL + category.IconFile(),
		Count:   count,
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.overlays[category.Name]; ok {
		return existing
	}
	r.overlays[category.Name] = h
	return h
}

// Overlay returns the layer of a category.
func (r *LayerRegistry) Overlay(category string) (domain.LayerHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.overlays[category]
	return h, ok
}

// Base returns a base layer by name.
func (r *LayerRegistry) Base(name string) (domain.LayerHandle, bool) {
	for _, b := range r.bases {
		if b.Name == name {
			return b, true
		}
	}
	return domain.LayerHandle{}, false
}

// BaseLayers returns every base layer in declaration order.
func (r *LayerRegistry) BaseLayers() []domain.LayerHandle {
	out := make([]domain.LayerHandle, len(r.bases))
	copy(out, r.bases)
	return out
}
