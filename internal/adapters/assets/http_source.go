package assets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/samirrijal/civicmap/internal/core/domain"
	"github.com/samirrijal/civicmap/internal/core/ports"
)

const defaultFetchTimeout = 30 * time.Second

// HTTPSource fetches datasets from a static file server using the same
// layout as FileSource.
type HTTPSource struct {
	baseURL      string
	boundaryFile string
	client       *fasthttp.Client
}

var _ ports.AssetSource = (*HTTPSource)(nil)

// NewHTTPSource creates an HTTPSource below baseURL.
func NewHTTPSource(baseURL, boundaryFile string) *HTTPSource {
	return &HTTPSource{
		baseURL:      strings.TrimRight(baseURL, "/"),
		boundaryFile: boundaryFile,
		client: &fasthttp.Client{
			Name:                "civicmap-assets",
			MaxResponseBodySize: 64 << 20,
		},
	}
}

func (s *HTTPSource) LoadBoundary(ctx context.Context) (domain.Bounds, error) {
	data, err := s.fetch(ctx, BoundaryDir+"/"+s.boundaryFile)
	if err != nil {
		return domain.Bounds{}, err
	}
	return ParseBoundary(data)
}

func (s *HTTPSource) LoadCategory(ctx context.Context, category domain.Category) ([]domain.Feature, error) {
	data, err := s.fetch(ctx, AmenitiesDir+"/"+category.SourceFile)
	if err != nil {
		return nil, err
	}
	return ParseFeatures(data, category)
}

func (s *HTTPSource) fetch(ctx context.Context, rel string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.baseURL + "/" + rel)
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultFetchTimeout)
	}
	if err := s.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rel, err)
	}
	if code := resp.StatusCode(); code != fasthttp.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", rel, code)
	}

	// The body buffer is released with the response.
	body := resp.Body()
	out := make([]byte, len(body))
	copy(out, body)
	return out, nil
}
