package ports

import "github.com/samirrijal/civicmap/internal/core/domain"

// MapView is the map surface of one page.
type MapView interface {
	AddLayer(layer domain.LayerHandle)
	RemoveLayer(layer domain.LayerHandle)
	HasLayer(layer domain.LayerHandle) bool
	SetView(center domain.GeoPoint, zoom int)
	AddMarker(at domain.GeoPoint) domain.Marker
	RemoveMarker(marker domain.Marker)
	OpenPopup(at domain.GeoPoint, content domain.PopupContent)
	ClosePopup()
}

// Legend is the list of per-category checkboxes, addressed by category name.
type Legend interface {
	SetChecked(category string, checked bool)
	IsChecked(category string) bool
}

// ChartRenderer draws the category breakdown.
type ChartRenderer interface {
	// Available is false when the page has no chart target.
	Available() bool
	Destroy()
	Draw(spec domain.ChartSpec)
}

// SearchBox is the free-text input.
type SearchBox interface {
	Value() string
	SetValue(text string)
}

// SuggestionList is the dropdown under the search box.
type SuggestionList interface {
	ShowLoading()
	Show(places []domain.Place)
	ShowEmpty()
	Hide()
	Items() []domain.Place
}

// Notifier surfaces a message to the user.
type Notifier interface {
	Notify(message string)
}

// PanelSet opens and closes page chrome.
type PanelSet interface {
	IsOpen(panel domain.Panel) bool
	SetOpen(panel domain.Panel, open bool)
}

// Scene bundles the UI collaborators of one page.
type Scene interface {
	Map() MapView
	Legend() Legend
	Chart() ChartRenderer
	SearchBox() SearchBox
	Suggestions() SuggestionList
	Notifier() Notifier
	Panels() PanelSet
	Snapshot() domain.SceneState
}
