// Package nominatim is a geocoder client for the Nominatim search API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/civicmap/internal/core/domain"
	"github.com/samirrijal/civicmap/internal/core/ports"
	"github.com/samirrijal/civicmap/internal/pkg/metrics"
)

var tracer = otel.Tracer("github.com/samirrijal/civicmap/internal/adapters/nominatim")

// Client implements ports.Geocoder.
type Client struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	http      *fasthttp.Client
}

var _ ports.Geocoder = (*Client)(nil)

// New creates a client for the Nominatim instance at baseURL.
func New(baseURL, userAgent string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		timeout:   timeout,
		http: &fasthttp.Client{
			Name:                "civicmap-geocoder",
			MaxResponseBodySize: 4 << 20,
		},
	}
}

type place struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Search queries /search restricted to bounds. Transport failures, non-200
// answers and undecodable bodies wrap domain.ErrNetworkFailure.
func (c *Client) Search(ctx context.Context, query string, bounds domain.Bounds, opts ports.GeocodeOptions) ([]domain.Place, error) {
	ctx, span := tracer.Start(ctx, "Nominatim.Search", trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(attribute.String("query", query), attribute.Int("limit", opts.Limit))
	defer span.End()

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/search?" + SearchParams(query, bounds, opts).Encode())
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.SetUserAgent(c.userAgent)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	start := time.Now()
	err := c.http.DoDeadline(req, resp, deadline)
	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode())
	}
	metrics.GeocodeDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())

	if err == nil && resp.StatusCode() != fasthttp.StatusOK {
		err = fmt.Errorf("unexpected status %d", resp.StatusCode())
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: nominatim search: %v", domain.ErrNetworkFailure, err)
	}

	var raw []place
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: decode nominatim response: %v", domain.ErrNetworkFailure, err)
	}

	places := make([]domain.Place, 0, len(raw))
	for _, p := range raw {
		lat, err1 := strconv.ParseFloat(p.Lat, 64)
		lon, err2 := strconv.ParseFloat(p.Lon, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		places = append(places, domain.Place{
			DisplayName: p.DisplayName,
			Location:    domain.GeoPoint{Lat: lat, Lon: lon},
		})
	}
	span.SetAttributes(attribute.Int("results", len(places)))
	return places, nil
}

// SearchParams builds the query string of a bounded search.
func SearchParams(query string, bounds domain.Bounds, opts ports.GeocodeOptions) url.Values {
	v := url.Values{}
	v.Set("format", "json")
	v.Set("q", query)
	if opts.AddressDetails {
		v.Set("addressdetails", "1")
	}
	if opts.Limit > 0 {
		v.Set("limit", strconv.Itoa(opts.Limit))
	}
	v.Set("viewbox", bounds.Viewbox())
	v.Set("bounded", "1")
	return v
}
