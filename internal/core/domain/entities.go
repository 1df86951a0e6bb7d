package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Category is one amenity type shown as its own map layer (e.g. Hospitals).
type Category struct {
	Name       string `json:"name"`
	SourceFile string `json:"source_file"`
}

// IconFile derives the icon image name from the category's data file.
func (c Category) IconFile() string {
	return strings.TrimSuffix(c.SourceFile, ".geojson") + ".png"
}

// DefaultCategories is the fixed category set, in enumeration order.
var DefaultCategories = []Category{
	{Name: "Hospitals", SourceFile: "hospital.geojson"},
	{Name: "Schools", SourceFile: "school.geojson"},
	{Name: "Police Stations", SourceFile: "police.geojson"},
	{Name: "Fire Stations", SourceFile: "fire_station.geojson"},
	{Name: "Post Offices", SourceFile: "post_office.geojson"},
	{Name: "Town Halls", SourceFile: "town_hall.geojson"},
	{Name: "Prisons", SourceFile: "prison.geojson"},
}

// NullSentinel is the string some datasets use instead of a missing value.
const NullSentinel = "NULL"

// Attribute is a single feature property.
type Attribute struct {
	Key   string
	Value any
}

// Attributes keeps feature properties in the order the dataset declared them.
type Attributes []Attribute

// Get returns the value stored under key.
func (a Attributes) Get(key string) (any, bool) {
	for _, attr := range a {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return nil, false
}

// Name returns the "name" property when it is a non-empty string.
func (a Attributes) Name() string {
	v, ok := a.Get("name")
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// MarshalJSON encodes the attributes as a JSON object without reordering keys.
func (a Attributes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, attr := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(attr.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(attr.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping its keys in document order.
// Numbers are kept as json.Number; null yields no attributes.
func (a *Attributes) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = Attributes{}
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("attributes must be a JSON object")
	}

	out := Attributes{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected attribute key %v", tok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("attribute %q: %w", key, err)
		}
		out = append(out, Attribute{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*a = out
	return nil
}

// Feature is one amenity point loaded from a category dataset.
type Feature struct {
	ID         string     `json:"id"`
	Category   string     `json:"category"`
	Location   GeoPoint   `json:"location"`
	Attributes Attributes `json:"attributes"`
}

// Name is the feature's display name, empty when the dataset has none.
func (f Feature) Name() string {
	return f.Attributes.Name()
}

// BaseLayer is a selectable background tile layer.
type BaseLayer struct {
	Name        string `json:"name"`
	TileURL     string `json:"tile_url"`
	Attribution string `json:"attribution"`
}

// DefaultBaseLayers are the base map choices offered to every session.
var DefaultBaseLayers = []BaseLayer{
	{
		Name:        "default",
		TileURL:     "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: "&copy; OpenStreetMap contributors",
	},
	{
		Name:        "satellite",
		TileURL:     "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}",
		Attribution: "Tiles &copy; Esri &mdash; Source: Esri, i-cubed, USDA, USGS, AEX, GeoEye, Getmapping, Aerogrid, IGN, IGP, UPR-EGP, and the GIS User Community",
	},
	{
		Name:        "terrain",
		TileURL:     "https://{s}.tile.opentopomap.org/{z}/{x}/{y}.png",
		Attribution: "Map data: &copy; OpenStreetMap contributors, SRTM | Map style: &copy; OpenTopoMap",
	},
}

// LayerKind distinguishes amenity overlays from base maps.
type LayerKind string

const (
	LayerOverlay LayerKind = "overlay"
	LayerBase    LayerKind = "base"
)

// LayerHandle is the renderable object bound to a category or a base map.
type LayerHandle struct {
	ID      string    `json:"id"`
	Kind    LayerKind `json:"kind"`
	Name    string    `json:"name"`
	IconURL string    `json:"icon_url,omitempty"`
	Count   int       `json:"count"`
	TileURL string    `json:"tile_url,omitempty"`
	// Attribution is the tile credit line of a base layer.
	Attribution string `json:"attribution,omitempty"`
}

// Place is a geocoder candidate.
type Place struct {
	DisplayName string   `json:"display_name"`
	Location    GeoPoint `json:"location"`
}

// Viewport is a map center and zoom level.
type Viewport struct {
	Center GeoPoint `json:"center"`
	Zoom   int      `json:"zoom"`
}
