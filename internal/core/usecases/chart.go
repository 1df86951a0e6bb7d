package usecases

import (
	"github.com/samirrijal/civicmap/internal/core/domain"
	"github.com/samirrijal/civicmap/internal/core/ports"
)

// ChartController keeps the doughnut chart in step with the legend.
type ChartController struct {
	store    *DataStore
	legend   ports.Legend
	renderer ports.ChartRenderer
}

// NewChartController creates a chart controller. renderer may be nil.
func NewChartController(store *DataStore, legend ports.Legend, renderer ports.ChartRenderer) *ChartController {
	return &ChartController{store: store, legend: legend, renderer: renderer}
}

// Recompute builds the breakdown of the visible categories, in category order.
func (c *ChartController) Recompute(visible []string) domain.ChartSpec {
	shown := make(map[string]bool, len(visible))
	for _, name := range visible {
		shown[name] = true
	}

	spec := domain.ChartSpec{
		Type:           "doughnut",
		DatasetLabel:   "Amenities",
		Cutout:         "60%",
		LegendPosition: "bottom",
		Entries:        []domain.ChartEntry{},
	}
	for _, cat := range c.store.Categories() {
		if !shown[cat.Name] {
			continue
		}
		spec.Entries = append(spec.Entries, domain.ChartEntry{
			Label: cat.Name,
			Count: c.store.Count(cat.Name),
			Color: domain.ChartPalette[len(spec.Entries)%len(domain.ChartPalette)],
		})
	}
	return spec
}

// Visible returns the checked categories in category order.
func (c *ChartController) Visible() []string {
	var out []string
	for _, cat := range c.store.Categories() {
		if c.legend.IsChecked(cat.Name) {
			out = append(out, cat.Name)
		}
	}
	return out
}

// Redraw discards the current chart and draws the breakdown of the checked
// categories. Without a chart target only the chart spec is returned.
func (c *ChartController) Redraw() domain.ChartSpec {
	spec := c.Recompute(c.Visible())
	if c.renderer == nil {
		return spec
	}
	c.renderer.Destroy()
	if !c.renderer.Available() {
		return spec
	}
	c.renderer.Draw(spec)
	return spec
}
