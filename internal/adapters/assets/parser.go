// Package assets reads the boundary and amenity GeoJSON datasets.
package assets

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/civicmap/internal/core/domain"
)

// ErrEmptyBoundary is returned for boundary files without any geometry.
var ErrEmptyBoundary = errors.New("boundary has no geometry")

type rawCollection struct {
	Type     string       `json:"type"`
	Features []rawFeature `json:"features"`
}

type rawFeature struct {
	Geometry   json.RawMessage `json:"geometry"`
	Properties json.RawMessage `json:"properties"`
}

// ParseFeatures decodes a category FeatureCollection. Property order is kept
// as written in the file. Features without geometry are skipped; non-point
// geometries are placed at the centre of their bounds.
func ParseFeatures(data []byte, category domain.Category) ([]domain.Feature, error) {
	var fc rawCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", category.SourceFile, err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("decode %s: expected FeatureCollection, got %q", category.SourceFile, fc.Type)
	}

	prefix := strings.TrimSuffix(category.SourceFile, ".geojson")
	features := make([]domain.Feature, 0, len(fc.Features))
	for i, raw := range fc.Features {
		loc, ok, err := location(raw.Geometry)
		if err != nil {
			return nil, fmt.Errorf("decode %s feature %d: %w", category.SourceFile, i, err)
		}
		if !ok {
			continue
		}
		attrs, err := decodeProperties(raw.Properties)
		if err != nil {
			return nil, fmt.Errorf("decode %s feature %d properties: %w", category.SourceFile, i, err)
		}
		features = append(features, domain.Feature{
			ID:         prefix + ":" + strconv.Itoa(i),
			Category:   category.Name,
			Location:   loc,
			Attributes: attrs,
		})
	}
	return features, nil
}

func location(raw json.RawMessage) (domain.GeoPoint, bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return domain.GeoPoint{}, false, nil
	}
	g, err := geojson.UnmarshalGeometry(raw)
	if err != nil {
		return domain.GeoPoint{}, false, err
	}
	geom := g.Geometry()
	if geom == nil {
		return domain.GeoPoint{}, false, nil
	}
	p, ok := geom.(orb.Point)
	if !ok {
		p = geom.Bound().Center()
	}
	return domain.GeoPoint{Lat: p.Lat(), Lon: p.Lon()}, true, nil
}

func decodeProperties(raw json.RawMessage) (domain.Attributes, error) {
	var attrs domain.Attributes
	if err := attrs.UnmarshalJSON(raw); err != nil {
		return nil, err
	}
	return attrs, nil
}

// ParseBoundary returns the bounding rectangle of a boundary file, which may
// be a FeatureCollection, a single Feature or a bare geometry.
func ParseBoundary(data []byte) (domain.Bounds, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return domain.Bounds{}, fmt.Errorf("decode boundary: %w", err)
	}

	var geoms []orb.Geometry
	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return domain.Bounds{}, fmt.Errorf("decode boundary: %w", err)
		}
		for _, f := range fc.Features {
			geoms = append(geoms, f.Geometry)
		}
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return domain.Bounds{}, fmt.Errorf("decode boundary: %w", err)
		}
		geoms = append(geoms, f.Geometry)
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return domain.Bounds{}, fmt.Errorf("decode boundary: %w", err)
		}
		geoms = append(geoms, g.Geometry())
	}

	var (
		bound orb.Bound
		found bool
	)
	for _, g := range geoms {
		if g == nil {
			continue
		}
		if !found {
			bound, found = g.Bound(), true
			continue
		}
		bound = bound.Union(g.Bound())
	}
	if !found {
		return domain.Bounds{}, ErrEmptyBoundary
	}

	return domain.Bounds{
		MinLat: bound.Min.Lat(),
		MinLon: bound.Min.Lon(),
		MaxLat: bound.Max.Lat(),
		MaxLon: bound.Max.Lon(),
	}, nil
}
