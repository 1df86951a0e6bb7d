package usecases

import (
	"github.com/samirrijal/civicmap/internal/core/domain"
	"github.com/samirrijal/civicmap/internal/core/ports"
)

// HighlightManager owns the single highlight marker of a page.
type HighlightManager struct {
	view       ports.MapView
	visibility *VisibilityController
	zoom       int

	marker  *domain.Marker
	feature *domain.Feature
}

// NewHighlightManager creates a manager and binds it to visibility so that
// a reset also clears the highlight.
func NewHighlightManager(view ports.MapView, visibility *VisibilityController, zoom int) *HighlightManager {
	h := &HighlightManager{view: view, visibility: visibility, zoom: zoom}
	visibility.highlight = h
	return h
}

// Highlight replaces any current highlight with a marker on feature, makes
// its category visible, opens its popup and zooms onto it.
func (h *HighlightManager) Highlight(feature domain.Feature, at domain.GeoPoint, category string) error {
	h.Clear()
	if err := h.visibility.ensureVisible(category); err != nil {
		return err
	}

	m := h.view.AddMarker(at)
	h.marker = &m
	h.feature = &feature

	h.view.OpenPopup(at, FormatPopup(feature.Attributes, category))
	h.view.SetView(at, h.zoom)
	return nil
}

// Clear removes the highlight marker and its popup, if any.
func (h *HighlightManager) Clear() {
	if h.marker == nil {
		return
	}
	h.view.RemoveMarker(*h.marker)
	h.view.ClosePopup()
	h.marker = nil
	h.feature = nil
}

// Active returns the highlighted feature.
func (h *HighlightManager) Active() (domain.Feature, bool) {
	if h.feature == nil {
		return domain.Feature{}, false
	}
	return *h.feature, true
}
