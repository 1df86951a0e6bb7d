package usecases

import (
	"fmt"

	"github.com/samirrijal/civicmap/internal/core/domain"
	"github.com/samirrijal/civicmap/internal/core/ports"
)

// VisibilityController keeps the set of attached category layers equal to
// the set of checked legend boxes. Map and legend are reconciled before the
// chart is redrawn.
type VisibilityController struct {
	store     *DataStore
	registry  *LayerRegistry
	view      ports.MapView
	legend    ports.Legend
	search    ports.SearchBox
	chart     *ChartController
	highlight *HighlightManager
	home      domain.Viewport
}

// NewVisibilityController wires the controller to one page's collaborators.
func NewVisibilityController(
	store *DataStore,
	registry *LayerRegistry,
	view ports.MapView,
	legend ports.Legend,
	search ports.SearchBox,
	chart *ChartController,
	home domain.Viewport,
) *VisibilityController {
	return &VisibilityController{
		store:    store,
		registry: registry,
		view:     view,
		legend:   legend,
		search:   search,
		chart:    chart,
		home:     home,
	}
}

// Toggle shows or hides one category.
func (v *VisibilityController) Toggle(category string, visible bool) error {
	layer, err := v.overlay(category)
	if err != nil {
		return err
	}
	v.attach(layer, visible)
	v.legend.SetChecked(category, visible)
	v.chart.Redraw()
	return nil
}

// ShowOnly hides every category except one.
func (v *VisibilityController) ShowOnly(category string) error {
	if _, err := v.overlay(category); err != nil {
		return err
	}
	for _, cat := range v.store.Categories() {
		layer, ok := v.registry.Overlay(cat.Name)
		if !ok {
			continue
		}
		on := cat.Name == category
		v.attach(layer, on)
		v.legend.SetChecked(cat.Name, on)
	}
	v.chart.Redraw()
	return nil
}

// ResetAll clears the highlight, recentres the map, empties the search box
// and shows every loaded category.
func (v *VisibilityController) ResetAll() {
	if v.highlight != nil {
		v.highlight.Clear()
	}
	v.view.SetView(v.home.Center, v.home.Zoom)
	v.search.SetValue("")
	v.showLoaded()
	v.chart.Redraw()
}

// Attach shows a category that just finished loading.
func (v *VisibilityController) Attach(category string) error {
	layer, err := v.overlay(category)
	if err != nil {
		return err
	}
	v.attach(layer, true)
	v.legend.SetChecked(category, true)
	v.chart.Redraw()
	return nil
}

// ensureVisible attaches a category only when it is hidden.
func (v *VisibilityController) ensureVisible(category string) error {
	layer, err := v.overlay(category)
	if err != nil {
		return err
	}
	if v.view.HasLayer(layer) {
		return nil
	}
	v.attach(layer, true)
	v.legend.SetChecked(category, true)
	v.chart.Redraw()
	return nil
}

func (v *VisibilityController) showLoaded() {
	for _, cat := range v.store.Categories() {
		layer, ok := v.registry.Overlay(cat.Name)
		if !ok {
			continue
		}
		v.attach(layer, true)
		v.legend.SetChecked(cat.Name, true)
	}
}

func (v *VisibilityController) attach(layer domain.LayerHandle, on bool) {
	has := v.view.HasLayer(layer)
	switch {
	case on && !has:
		v.view.AddLayer(layer)
	case !on && has:
		v.view.RemoveLayer(layer)
	}
}

func (v *VisibilityController) overlay(category string) (domain.LayerHandle, error) {
	layer, ok := v.registry.Overlay(category)
	if ok {
		return layer, nil
	}
	if _, known := v.store.Category(category); known {
		return domain.LayerHandle{}, fmt.Errorf("%w: %q", domain.ErrDataNotReady, category)
	}
	return domain.LayerHandle{}, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
}
