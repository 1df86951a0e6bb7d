package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/samirrijal/civicmap/internal/core/domain"
	"github.com/samirrijal/civicmap/internal/core/ports"
	"github.com/samirrijal/civicmap/internal/pkg/metrics"
)

// Session is the application state of one map page. All mutations are
// serialised by mu; the scene collaborators are only touched while it is held.
type Session struct {
	ID     string
	mobile bool

	catalog *Catalog
	scene   ports.Scene

	mu         sync.Mutex
	closed     bool
	baseLayer  domain.LayerHandle
	visibility *VisibilityController
	highlight  *HighlightManager
	chart      *ChartController
	suggester  *Suggester
	// searchGen stamps the latest command that moves the view. A geocode
	// answer is applied only while its stamp is still current.
	searchGen uint64

	onChange func(*Session)
}

// NewSession builds a session on scene: the default base map, every loaded
// category visible, the home viewport and the initial chart. onChange runs
// after every state change, outside the session lock, and may be nil.
func NewSession(id string, mobile bool, catalog *Catalog, scene ports.Scene, onChange func(*Session)) *Session {
	settings := catalog.Settings
	s := &Session{
		ID:       id,
		mobile:   mobile,
		catalog:  catalog,
		scene:    scene,
		onChange: onChange,
	}

	s.chart = NewChartController(catalog.Store, scene.Legend(), scene.Chart())
	s.visibility = NewVisibilityController(
		catalog.Store,
		catalog.Registry,
		scene.Map(),
		scene.Legend(),
		scene.SearchBox(),
		s.chart,
		settings.DefaultView,
	)
	s.highlight = NewHighlightManager(scene.Map(), s.visibility, settings.HighlightZoom)
	s.suggester = NewSuggester(catalog.Geocoder, settings.SuggestDelay, settings.SuggestLimit, catalog.searchBounds, s.deliverSuggestions)

	base, ok := catalog.Registry.Base(settings.DefaultBaseLayer)
	if !ok {
		if bases := catalog.Registry.BaseLayers(); len(bases) > 0 {
			base = bases[0]
		}
	}
	if base.ID != "" {
		scene.Map().AddLayer(base)
		s.baseLayer = base
	}

	for _, cat := range catalog.Store.Categories() {
		layer, ok := catalog.Registry.Overlay(cat.Name)
		if !ok {
			continue
		}
		scene.Map().AddLayer(layer)
		scene.Legend().SetChecked(cat.Name, true)
	}

	panels := scene.Panels()
	panels.SetOpen(domain.PanelSidebar, false)
	panels.SetOpen(domain.PanelTools, !mobile)
	panels.SetOpen(domain.PanelLegend, false)
	panels.SetOpen(domain.PanelLayers, false)
	panels.SetOpen(domain.PanelSearch, false)

	scene.Map().SetView(settings.DefaultView.Center, settings.DefaultView.Zoom)
	s.chart.Redraw()
	return s
}

// Mobile reports whether the session drives a small-screen layout.
func (s *Session) Mobile() bool { return s.mobile }

// Search resolves query and applies the result. Errors are also recorded as
// notices on the scene.
func (s *Session) Search(ctx context.Context, query string) (domain.Action, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.Action{}, domain.ErrSessionNotFound
	}

	s.searchGen++
	gen := s.searchGen
	s.scene.SearchBox().SetValue(query)
	action, err := s.catalog.Resolver.Resolve(query)
	if err != nil {
		if errors.Is(err, domain.ErrBoundaryNotReady) {
			s.closeSearchOnMobile()
		}
		s.notify(err)
		s.mu.Unlock()
		s.changed()
		metrics.SearchesTotal.WithLabelValues(outcomeOf(err)).Inc()
		return action, err
	}

	switch action.Kind {
	case domain.ActionNone:
		s.mu.Unlock()
		s.changed()
		return action, nil

	case domain.ActionFilter:
		err = s.visibility.ShowOnly(action.Category)

	case domain.ActionHighlight:
		f := action.Feature
		err = s.highlight.Highlight(*f, f.Location, action.Category)

	case domain.ActionGeocode:
		s.closeSearchOnMobile()
		s.mu.Unlock()
		s.changed()
		err = s.geocode(ctx, gen, action)
		if err == nil {
			metrics.SearchesTotal.WithLabelValues(string(action.Kind)).Inc()
		} else {
			metrics.SearchesTotal.WithLabelValues(outcomeOf(err)).Inc()
		}
		return action, err
	}

	if err != nil {
		s.notify(err)
	}
	s.closeSearchOnMobile()
	s.mu.Unlock()
	s.changed()

	if err != nil {
		metrics.SearchesTotal.WithLabelValues(outcomeOf(err)).Inc()
		return action, err
	}
	metrics.SearchesTotal.WithLabelValues(string(action.Kind)).Inc()
	return action, nil
}

// geocode runs the remote lookup without holding the session lock and then
// applies the first result. An answer that arrives after a newer search,
// reset, filter or suggestion pick is dropped.
func (s *Session) geocode(ctx context.Context, gen uint64, action domain.Action) error {
	places, err := s.catalog.Geocoder.Search(ctx, action.Query, *action.Bounds, ports.GeocodeOptions{Limit: 1})
	if err != nil && !errors.Is(err, domain.ErrNetworkFailure) {
		err = fmt.Errorf("%w: %v", domain.ErrNetworkFailure, err)
	}
	if err == nil && len(places) == 0 {
		err = domain.ErrNotFound
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionNotFound
	}
	if gen != s.searchGen {
		s.mu.Unlock()
		slog.Debug("geocode answer superseded", "session", s.ID, "query", action.Query)
		return nil
	}
	if err != nil {
		slog.Debug("geocode search failed", "session", s.ID, "query", action.Query, "error", err)
		s.notify(err)
	} else {
		s.highlight.Clear()
		s.scene.Map().SetView(places[0].Location, s.catalog.Settings.GeocodeZoom)
	}
	s.mu.Unlock()
	s.changed()
	return err
}

// Input records new search text and schedules live suggestions for it.
func (s *Session) Input(text string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.scene.SearchBox().SetValue(text)
	if strings.TrimSpace(text) == "" {
		s.scene.Suggestions().Hide()
	} else {
		s.scene.Suggestions().ShowLoading()
	}
	s.suggester.Input(text)
	s.mu.Unlock()
	s.changed()
}

func (s *Session) deliverSuggestions(gen uint64, places []domain.Place, err error) {
	s.mu.Lock()
	if s.closed || !s.suggester.Current(gen) {
		s.mu.Unlock()
		return
	}
	list := s.scene.Suggestions()
	switch {
	case err != nil:
		slog.Debug("suggestions unavailable", "session", s.ID, "error", err)
		list.Hide()
	case len(places) == 0:
		list.ShowEmpty()
	default:
		list.Show(places)
	}
	s.mu.Unlock()
	s.changed()
}

// SelectSuggestion moves the map to the suggestion at index and copies its
// name into the search box.
func (s *Session) SelectSuggestion(index int) (domain.Place, error) {
	s.mu.Lock()
	items := s.scene.Suggestions().Items()
	if s.closed || index < 0 || index >= len(items) {
		s.mu.Unlock()
		return domain.Place{}, domain.ErrSuggestionMissing
	}
	place := items[index]
	s.searchGen++
	s.suggester.Cancel()
	s.scene.Map().SetView(place.Location, s.catalog.Settings.GeocodeZoom)
	s.scene.SearchBox().SetValue(place.DisplayName)
	s.scene.Suggestions().Hide()
	s.mu.Unlock()
	s.changed()
	return place, nil
}

// Toggle shows or hides one category.
func (s *Session) Toggle(category string, visible bool) error {
	return s.apply(func() error { return s.visibility.Toggle(category, visible) })
}

// ShowOnly hides every category except one.
func (s *Session) ShowOnly(category string) error {
	return s.apply(func() error {
		s.searchGen++
		return s.visibility.ShowOnly(category)
	})
}

// Reset restores the initial map: every category shown, no highlight, home
// viewport, empty search and no suggestions.
func (s *Session) Reset() error {
	return s.apply(func() error {
		s.searchGen++
		s.visibility.ResetAll()
		s.suggester.Cancel()
		s.scene.Suggestions().Hide()
		return nil
	})
}

// SetBaseLayer swaps the base map.
func (s *Session) SetBaseLayer(name string) error {
	return s.apply(func() error {
		next, ok := s.catalog.Registry.Base(name)
		if !ok {
			return fmt.Errorf("%w: %q", domain.ErrUnknownBaseLayer, name)
		}
		if next.ID == s.baseLayer.ID {
			return nil
		}
		view := s.scene.Map()
		if s.baseLayer.ID != "" {
			view.RemoveLayer(s.baseLayer)
		}
		view.AddLayer(next)
		s.baseLayer = next
		return nil
	})
}

// BaseLayer returns the active base map.
func (s *Session) BaseLayer() domain.LayerHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseLayer
}

// TogglePanel opens or closes a panel and returns its new state. Legend and
// layer panels exclude each other; opening the search bar closes both.
func (s *Session) TogglePanel(panel domain.Panel) (bool, error) {
	var open bool
	err := s.apply(func() error {
		panels := s.scene.Panels()
		open = !panels.IsOpen(panel)
		switch panel {
		case domain.PanelLegend, domain.PanelLayers, domain.PanelSearch:
			if open {
				panels.SetOpen(domain.PanelLegend, false)
				panels.SetOpen(domain.PanelLayers, false)
			}
		case domain.PanelSidebar, domain.PanelTools:
		default:
			return fmt.Errorf("%w: %q", domain.ErrUnknownPanel, panel)
		}
		panels.SetOpen(panel, open)
		return nil
	})
	return open, err
}

// OnCategoryLoaded shows a category whose data just arrived.
func (s *Session) OnCategoryLoaded(category domain.Category) {
	err := s.apply(func() error { return s.visibility.Attach(category.Name) })
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		slog.Warn("attach loaded category", "session", s.ID, "category", category.Name, "error", err)
	}
}

// Chart returns the breakdown of the checked categories.
func (s *Session) Chart() domain.ChartSpec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chart.Recompute(s.chart.Visible())
}

// Highlighted returns the highlighted feature, if any.
func (s *Session) Highlighted() (domain.Feature, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.highlight.Active()
}

// Snapshot returns the renderable state of the session.
func (s *Session) Snapshot() domain.SceneState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.scene.Snapshot()
	st.SessionID = s.ID
	st.Mobile = s.mobile
	st.BaseLayer = s.baseLayer.Name
	return st
}

// Close stops pending suggestions. Further calls fail with
// ErrSessionNotFound.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	// Lookups in flight take mu before delivering.
	s.suggester.Close()
}

func (s *Session) apply(fn func() error) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionNotFound
	}
	err := fn()
	s.mu.Unlock()
	if err == nil {
		s.changed()
	}
	return err
}

func (s *Session) closeSearchOnMobile() {
	if !s.mobile {
		return
	}
	s.scene.Panels().SetOpen(domain.PanelSearch, false)
	s.scene.Suggestions().Hide()
}

func (s *Session) notify(err error) {
	s.scene.Notifier().Notify(domain.NoticeFor(err))
}

func (s *Session) changed() {
	if s.onChange != nil {
		s.onChange(s)
	}
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, domain.ErrDataNotReady):
		return "data_not_ready"
	case errors.Is(err, domain.ErrBoundaryNotReady):
		return "boundary_not_ready"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrNetworkFailure):
		return "network_failure"
	default:
		return "error"
	}
}
