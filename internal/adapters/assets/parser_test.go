package assets

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/civicmap/internal/core/domain"
)

var hospitals = domain.Category{Name: "Hospitals", SourceFile: "hospital.geojson"}

const hospitalCollection = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [76.9617, 11.0018]},
      "properties": {"name": "Government Hospital", "phone": "0422 230 1393", "beds": 1200, "website": null, "emergency": "yes"}
    },
    {
      "type": "Feature",
      "geometry": null,
      "properties": {"name": "Ghost Clinic"}
    },
    {
      "type": "Feature",
      "geometry": {"type": "Polygon", "coordinates": [[[76.9, 11.0], [77.0, 11.0], [77.0, 11.1], [76.9, 11.1], [76.9, 11.0]]]},
      "properties": {"name": "KMCH", "operator": "NULL"}
    },
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [76.95, 11.01]}
    }
  ]
}`

func TestParseFeatures(t *testing.T) {
	features, err := ParseFeatures([]byte(hospitalCollection), hospitals)
	require.NoError(t, err)
	require.Len(t, features, 3, "null geometry is skipped")

	first := features[0]
	assert.Equal(t, "hospital:0", first.ID)
	assert.Equal(t, "Hospitals", first.Category)
	assert.Equal(t, "Government Hospital", first.Name())
	assert.InDelta(t, 11.0018, first.Location.Lat, 1e-9)
	assert.InDelta(t, 76.9617, first.Location.Lon, 1e-9)

	keys := make([]string, len(first.Attributes))
	for i, a := range first.Attributes {
		keys[i] = a.Key
	}
	assert.Equal(t, []string{"name", "phone", "beds", "website", "emergency"}, keys)

	beds, _ := first.Attributes.Get("beds")
	assert.Equal(t, json.Number("1200"), beds)
	website, ok := first.Attributes.Get("website")
	assert.True(t, ok)
	assert.Nil(t, website)

	poly := features[1]
	assert.Equal(t, "hospital:2", poly.ID, "ids follow the position in the file")
	assert.InDelta(t, 11.05, poly.Location.Lat, 1e-9)
	assert.InDelta(t, 76.95, poly.Location.Lon, 1e-9)

	assert.Empty(t, features[2].Attributes)
	assert.Equal(t, "", features[2].Name())
}

func TestParseFeatures_Invalid(t *testing.T) {
	_, err := ParseFeatures([]byte(`{"type":"Feature","geometry":null}`), hospitals)
	assert.Error(t, err)

	_, err = ParseFeatures([]byte(`not json`), hospitals)
	assert.Error(t, err)

	_, err = ParseFeatures([]byte(`{"type":"FeatureCollection","features":[{"geometry":{"type":"Point","coordinates":"x"}}]}`), hospitals)
	assert.Error(t, err)
}

func TestParseFeatures_Empty(t *testing.T) {
	features, err := ParseFeatures([]byte(`{"type":"FeatureCollection","features":[]}`), hospitals)
	require.NoError(t, err)
	assert.Empty(t, features)
}

func TestParseBoundary(t *testing.T) {
	tests := []struct {
		name string
		data string
		want domain.Bounds
	}{
		{
			name: "feature collection",
			data: `{"type":"FeatureCollection","features":[
				{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[76.8,10.9],[77.0,10.9],[77.0,11.1],[76.8,10.9]]]}},
				{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[77.1,11.2]}}
			]}`,
			want: domain.Bounds{MinLat: 10.9, MinLon: 76.8, MaxLat: 11.2, MaxLon: 77.1},
		},
		{
			name: "single feature",
			data: `{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[76.8,10.9],[77.1,10.9],[77.1,11.2],[76.8,11.2],[76.8,10.9]]]}}`,
			want: domain.Bounds{MinLat: 10.9, MinLon: 76.8, MaxLat: 11.2, MaxLon: 77.1},
		},
		{
			name: "bare geometry",
			data: `{"type":"MultiPoint","coordinates":[[76.8,10.9],[77.1,11.2]]}`,
			want: domain.Bounds{MinLat: 10.9, MinLon: 76.8, MaxLat: 11.2, MaxLon: 77.1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBoundary([]byte(tt.data))
			require.NoError(t, err)
			assert.InDelta(t, tt.want.MinLat, got.MinLat, 1e-9)
			assert.InDelta(t, tt.want.MinLon, got.MinLon, 1e-9)
			assert.InDelta(t, tt.want.MaxLat, got.MaxLat, 1e-9)
			assert.InDelta(t, tt.want.MaxLon, got.MaxLon, 1e-9)
		})
	}
}

func TestParseBoundary_Empty(t *testing.T) {
	_, err := ParseBoundary([]byte(`{"type":"FeatureCollection","features":[]}`))
	assert.True(t, errors.Is(err, ErrEmptyBoundary))
}
