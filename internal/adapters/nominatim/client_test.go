package nominatim

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/civicmap/internal/core/domain"
	"github.com/samirrijal/civicmap/internal/core/ports"
)

var coimbatore = domain.Bounds{MinLat: 10.9, MinLon: 76.8, MaxLat: 11.2, MaxLon: 77.1}

func TestSearchParams(t *testing.T) {
	v := SearchParams("temple", coimbatore, ports.GeocodeOptions{Limit: 1})

	assert.Equal(t, "json", v.Get("format"))
	assert.Equal(t, "temple", v.Get("q"))
	assert.Equal(t, "1", v.Get("limit"))
	assert.Equal(t, "76.8,11.2,77.1,10.9", v.Get("viewbox"))
	assert.Equal(t, "1", v.Get("bounded"))
	assert.Empty(t, v.Get("addressdetails"))

	v = SearchParams("temple", coimbatore, ports.GeocodeOptions{Limit: 5, AddressDetails: true})
	assert.Equal(t, "1", v.Get("addressdetails"))
	assert.Equal(t, "5", v.Get("limit"))
}

func TestSearch_ParsesPlaces(t *testing.T) {
	var got url.Values
	var agent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		got = r.URL.Query()
		agent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"display_name":"Perur Pateeswarar Temple, Coimbatore","lat":"10.9755","lon":"76.9167"},
			{"display_name":"broken","lat":"north","lon":"76.9"}
		]`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", "civicmap-test", 2*time.Second)
	places, err := c.Search(context.Background(), "temple", coimbatore, ports.GeocodeOptions{Limit: 1})
	require.NoError(t, err)

	require.Len(t, places, 1)
	assert.Equal(t, "Perur Pateeswarar Temple, Coimbatore", places[0].DisplayName)
	assert.InDelta(t, 10.9755, places[0].Location.Lat, 1e-9)
	assert.InDelta(t, 76.9167, places[0].Location.Lon, 1e-9)

	assert.Equal(t, "temple", got.Get("q"))
	assert.Equal(t, "76.8,11.2,77.1,10.9", got.Get("viewbox"))
	assert.Equal(t, "1", got.Get("bounded"))
	assert.Equal(t, "civicmap-test", agent)
}

func TestSearch_EmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	places, err := New(srv.URL, "", time.Second).Search(context.Background(), "atlantis", coimbatore, ports.GeocodeOptions{})
	require.NoError(t, err)
	assert.Empty(t, places)
}

func TestSearch_ServerErrorIsNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "", time.Second).Search(context.Background(), "temple", coimbatore, ports.GeocodeOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNetworkFailure))
}

func TestSearch_BadBodyIsNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "", time.Second).Search(context.Background(), "temple", coimbatore, ports.GeocodeOptions{})
	assert.ErrorIs(t, err, domain.ErrNetworkFailure)
}

func TestSearch_UnreachableIsNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	_, err := New(addr, "", time.Second).Search(context.Background(), "temple", coimbatore, ports.GeocodeOptions{})
	assert.ErrorIs(t, err, domain.ErrNetworkFailure)
}
