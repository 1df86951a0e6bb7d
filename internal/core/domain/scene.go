package domain

import "time"

// ChartPalette colours chart slices by position.
var ChartPalette = []string{
	"#2c6fb7",
	"#5bc0de",
	"#5cb85c",
	"#f0ad4e",
	"#d9534f",
	"#8e44ad",
	"#1abc9c",
}

// ChartEntry is one slice of the category breakdown.
type ChartEntry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
	Color string `json:"color"`
}

// ChartSpec describes the doughnut chart of visible categories.
type ChartSpec struct {
	Type           string       `json:"type"`
	DatasetLabel   string       `json:"dataset_label"`
	Cutout         string       `json:"cutout"`
	LegendPosition string       `json:"legend_position"`
	Entries        []ChartEntry `json:"entries"`
}

// Labels returns the slice labels in order.
func (c ChartSpec) Labels() []string {
	out := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		out[i] = e.Label
	}
	return out
}

// Counts returns the slice values in order.
func (c ChartSpec) Counts() []int {
	out := make([]int, len(c.Entries))
	for i, e := range c.Entries {
		out[i] = e.Count
	}
	return out
}

// PopupRow is one formatted attribute line.
type PopupRow struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// PopupContent is the structured body of a feature popup.
type PopupContent struct {
	Header      string     `json:"header"`
	Category    string     `json:"category"`
	Rows        []PopupRow `json:"rows"`
	Scrollable  bool       `json:"scrollable"`
	EmptyNotice string     `json:"empty_notice,omitempty"`
}

// Panel names a collapsible piece of page chrome.
type Panel string

const (
	PanelSidebar Panel = "sidebar"
	PanelTools   Panel = "tools"
	PanelLegend  Panel = "legend"
	PanelLayers  Panel = "layers"
	PanelSearch  Panel = "search"
)

// ParsePanel validates a panel name.
func ParsePanel(s string) (Panel, error) {
	switch p := Panel(s); p {
	case PanelSidebar, PanelTools, PanelLegend, PanelLayers, PanelSearch:
		return p, nil
	}
	return "", ErrUnknownPanel
}

// MapSettings are the viewport and search tunables shared by all sessions.
type MapSettings struct {
	DefaultView      Viewport
	HighlightZoom    int
	GeocodeZoom      int
	DefaultBaseLayer string
	SuggestDelay     time.Duration
	SuggestLimit     int
	IconBaseURL      string
}

// DefaultMapSettings centres the map on Coimbatore.
func DefaultMapSettings() MapSettings {
	return MapSettings{
		DefaultView:      Viewport{Center: GeoPoint{Lat: 11.0168, Lon: 76.9558}, Zoom: 12},
		HighlightZoom:    18,
		GeocodeZoom:      16,
		DefaultBaseLayer: "default",
		SuggestDelay:     300 * time.Millisecond,
		SuggestLimit:     5,
		IconBaseURL:      "data/icons/",
	}
}

// LegendEntry is one legend checkbox.
type LegendEntry struct {
	Category string `json:"category"`
	IconURL  string `json:"icon_url"`
	Checked  bool   `json:"checked"`
}

// Marker is the highlight marker.
type Marker struct {
	ID       string   `json:"id"`
	Location GeoPoint `json:"location"`
}

// Popup is an open popup anchored on the map.
type Popup struct {
	Location GeoPoint     `json:"location"`
	Content  PopupContent `json:"content"`
}

// SuggestionState mirrors the suggestion dropdown.
type SuggestionState struct {
	Visible bool    `json:"visible"`
	Loading bool    `json:"loading"`
	Empty   bool    `json:"empty"`
	Items   []Place `json:"items,omitempty"`
}

// Notice is a user-visible message.
type Notice struct {
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// SceneState is everything a thin client needs to render one session.
type SceneState struct {
	SessionID   string          `json:"session_id"`
	Version     uint64          `json:"version"`
	BaseLayer   string          `json:"base_layer"`
	Layers      []string        `json:"layers"`
	Legend      []LegendEntry   `json:"legend"`
	Highlight   *Marker         `json:"highlight,omitempty"`
	Popup       *Popup          `json:"popup,omitempty"`
	View        Viewport        `json:"view"`
	Chart       *ChartSpec      `json:"chart,omitempty"`
	SearchText  string          `json:"search_text"`
	Suggestions SuggestionState `json:"suggestions"`
	Notices     []Notice        `json:"notices,omitempty"`
	Panels      map[Panel]bool  `json:"panels"`
	Mobile      bool            `json:"mobile"`
}
