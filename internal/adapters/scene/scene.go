// Package scene keeps the renderable state of one map page in memory. The
// session drives it through the ports UI interfaces and thin clients render
// its snapshots.
package scene

import (
	"strconv"
	"sync"
	"time"

	"github.com/samirrijal/civicmap/internal/core/domain"
	"github.com/samirrijal/civicmap/internal/core/ports"
)

const maxNotices = 10

// Options shape a new scene.
type Options struct {
	Mobile bool
	// ChartTarget is false for pages without a chart canvas.
	ChartTarget bool
}

// Scene is an in-memory ports.Scene.
type Scene struct {
	mu sync.Mutex

	categories []domain.Category
	iconBase   string
	opts       Options

	version     uint64
	layers      []domain.LayerHandle
	legend      map[string]bool
	view        domain.Viewport
	markerSeq   int
	markers     map[string]domain.Marker
	popup       *domain.Popup
	chart       *domain.ChartSpec
	searchText  string
	suggestions domain.SuggestionState
	notices     []domain.Notice
	panels      map[domain.Panel]bool
}

var _ ports.Scene = (*Scene)(nil)

// New creates an empty scene listing categories in its legend.
func New(categories []domain.Category, iconBaseURL string, opts Options) *Scene {
	cats := make([]domain.Category, len(categories))
	copy(cats, categories)
	return &Scene{
		categories: cats,
		iconBase:   iconBaseURL,
		opts:       opts,
		legend:     make(map[string]bool, len(cats)),
		markers:    make(map[string]domain.Marker),
		panels:     make(map[domain.Panel]bool),
	}
}

func (s *Scene) Map() ports.MapView                { return mapView{s} }
func (s *Scene) Legend() ports.Legend              { return legend{s} }
func (s *Scene) Chart() ports.ChartRenderer        { return chart{s} }
func (s *Scene) SearchBox() ports.SearchBox        { return searchBox{s} }
func (s *Scene) Suggestions() ports.SuggestionList { return suggestions{s} }
func (s *Scene) Notifier() ports.Notifier          { return notifier{s} }
func (s *Scene) Panels() ports.PanelSet            { return panels{s} }

// MarkerCount returns the number of markers on the map.
func (s *Scene) MarkerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.markers)
}

// Snapshot copies the current state.
func (s *Scene) Snapshot() domain.SceneState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := domain.SceneState{
		Version:    s.version,
		Layers:     make([]string, 0, len(s.layers)),
		Legend:     make([]domain.LegendEntry, 0, len(s.categories)),
		View:       s.view,
		SearchText: s.searchText,
		Panels:     make(map[domain.Panel]bool, len(s.panels)),
		Mobile:     s.opts.Mobile,
	}
	for _, l := range s.layers {
		if l.Kind == domain.LayerBase {
			st.BaseLayer = l.Name
		}
		st.Layers = append(st.Layers, l.ID)
	}
	for _, c := range s.categories {
		st.Legend = append(st.Legend, domain.LegendEntry{
			Category: c.Name,
			IconURL:  s.iconBase + c.IconFile(),
			Checked:  s.legend[c.Name],
		})
	}
	for _, m := range s.markers {
		st.Highlight = &m
	}
	if s.popup != nil {
		p := *s.popup
		st.Popup = &p
	}
	if s.chart != nil {
		c := *s.chart
		c.Entries = append([]domain.ChartEntry(nil), s.chart.Entries...)
		st.Chart = &c
	}
	st.Suggestions = s.suggestions
	st.Suggestions.Items = append([]domain.Place(nil), s.suggestions.Items...)
	st.Notices = append([]domain.Notice(nil), s.notices...)
	for k, v := range s.panels {
		st.Panels[k] = v
	}
	return st
}

// touch bumps the version. Callers hold mu.
func (s *Scene) touch() { s.version++ }

type mapView struct{ s *Scene }

func (m mapView) AddLayer(layer domain.LayerHandle) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, l := range m.s.layers {
		if l.ID == layer.ID {
			return
		}
	}
	m.s.layers = append(m.s.layers, layer)
	m.s.touch()
}

func (m mapView) RemoveLayer(layer domain.LayerHandle) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for i, l := range m.s.layers {
		if l.ID == layer.ID {
			m.s.layers = append(m.s.layers[:i], m.s.layers[i+1:]...)
			m.s.touch()
			return
		}
	}
}

func (m mapView) HasLayer(layer domain.LayerHandle) bool {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, l := range m.s.layers {
		if l.ID == layer.ID {
			return true
		}
	}
	return false
}

func (m mapView) SetView(center domain.GeoPoint, zoom int) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.view = domain.Viewport{Center: center, Zoom: zoom}
	m.s.touch()
}

func (m mapView) AddMarker(at domain.GeoPoint) domain.Marker {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.markerSeq++
	mk := domain.Marker{ID: "marker-" + strconv.Itoa(m.s.markerSeq), Location: at}
	m.s.markers[mk.ID] = mk
	m.s.touch()
	return mk
}

func (m mapView) RemoveMarker(marker domain.Marker) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.markers[marker.ID]; ok {
		delete(m.s.markers, marker.ID)
		m.s.touch()
	}
}

func (m mapView) OpenPopup(at domain.GeoPoint, content domain.PopupContent) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.popup = &domain.Popup{Location: at, Content: content}
	m.s.touch()
}

func (m mapView) ClosePopup() {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.popup != nil {
		m.s.popup = nil
		m.s.touch()
	}
}

type legend struct{ s *Scene }

func (l legend) SetChecked(category string, checked bool) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if l.s.legend[category] != checked {
		l.s.legend[category] = checked
		l.s.touch()
	}
}

func (l legend) IsChecked(category string) bool {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.s.legend[category]
}

type chart struct{ s *Scene }

func (c chart) Available() bool { return c.s.opts.ChartTarget }

func (c chart) Destroy() {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.s.chart != nil {
		c.s.chart = nil
		c.s.touch()
	}
}

func (c chart) Draw(spec domain.ChartSpec) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.chart = &spec
	c.s.touch()
}

type searchBox struct{ s *Scene }

func (b searchBox) Value() string {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	return b.s.searchText
}

func (b searchBox) SetValue(text string) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if b.s.searchText != text {
		b.s.searchText = text
		b.s.touch()
	}
}

type suggestions struct{ s *Scene }

func (l suggestions) ShowLoading() {
	l.set(domain.SuggestionState{Visible: true, Loading: true})
}

func (l suggestions) Show(places []domain.Place) {
	l.set(domain.SuggestionState{Visible: true, Items: append([]domain.Place(nil), places...)})
}

func (l suggestions) ShowEmpty() {
	l.set(domain.SuggestionState{Visible: true, Empty: true})
}

func (l suggestions) Hide() {
	l.set(domain.SuggestionState{})
}

// Items returns the selectable suggestions; hidden lists have none.
func (l suggestions) Items() []domain.Place {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if !l.s.suggestions.Visible {
		return nil
	}
	return append([]domain.Place(nil), l.s.suggestions.Items...)
}

func (l suggestions) set(st domain.SuggestionState) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	l.s.suggestions = st
	l.s.touch()
}

type notifier struct{ s *Scene }

func (n notifier) Notify(message string) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	n.s.notices = append(n.s.notices, domain.Notice{Message: message, At: time.Now().UTC()})
	if len(n.s.notices) > maxNotices {
		n.s.notices = n.s.notices[len(n.s.notices)-maxNotices:]
	}
	n.s.touch()
}

type panels struct{ s *Scene }

func (p panels) IsOpen(panel domain.Panel) bool {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	return p.s.panels[panel]
}

func (p panels) SetOpen(panel domain.Panel, open bool) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if cur, ok := p.s.panels[panel]; !ok || cur != open {
		p.s.panels[panel] = open
		p.s.touch()
	}
}
