package domain

import "errors"

// ActionKind tells the caller how a search query was resolved.
type ActionKind string

const (
	ActionNone      ActionKind = "none"
	ActionFilter    ActionKind = "filter_by_category"
	ActionHighlight ActionKind = "highlight_feature"
	ActionGeocode   ActionKind = "external_geocode"
)

// Action is the outcome of resolving a free-text query. Only the fields
// relevant to Kind are set.
type Action struct {
	Kind     ActionKind `json:"kind"`
	Query    string     `json:"query,omitempty"`
	Category string     `json:"category,omitempty"`
	Feature  *Feature   `json:"feature,omitempty"`
	Bounds   *Bounds    `json:"bounds,omitempty"`
}

// Errors surfaced to the user as notices. None of them is fatal.
var (
	ErrDataNotReady      = errors.New("amenity data still loading")
	ErrBoundaryNotReady  = errors.New("map boundary not loaded yet")
	ErrNotFound          = errors.New("location not found")
	ErrNetworkFailure    = errors.New("network request failed")
	ErrUnknownCategory   = errors.New("unknown amenity category")
	ErrUnknownBaseLayer  = errors.New("unknown base layer")
	ErrUnknownPanel      = errors.New("unknown panel")
	ErrSessionNotFound   = errors.New("session not found")
	ErrSuggestionMissing = errors.New("suggestion not available")
)

// NoticeFor returns the user-facing text for an error kind.
func NoticeFor(err error) string {
	switch {
	case errors.Is(err, ErrDataNotReady):
		return "Amenity data still loading. Please try again in a moment."
	case errors.Is(err, ErrBoundaryNotReady):
		return "Map boundary not loaded yet. Please try again."
	case errors.Is(err, ErrNotFound):
		return "Location not found!"
	case errors.Is(err, ErrNetworkFailure):
		return "Error during search"
	default:
		return err.Error()
	}
}
