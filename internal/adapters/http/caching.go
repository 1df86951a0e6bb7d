package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// cacheRule maps a path to a Cache-Control value. exact rules match the
// whole path, the others match a prefix. The first matching rule wins.
type cacheRule struct {
	path  string
	exact bool
	value string
}

var cacheRules = []cacheRule{
	// Readiness flips while assets load.
	{path: "/v1/health", exact: true, value: "no-cache"},
	{path: "/v1/ready", exact: true, value: "no-cache"},
	{path: "/metrics", exact: true, value: "no-cache"},
	// Scenes change on every command.
	{path: "/v1/sessions", value: "no-store"},
	{path: "/v1/base-layers", exact: true, value: "public, max-age=86400"},
	{path: "/v1/categories", exact: true, value: "public, max-age=60"},
	{path: "/v1/boundary", exact: true, value: "public, max-age=60"},
	// A loaded dataset never changes for the life of the process.
	{path: "/v1/categories/", value: "public, max-age=3600"},
	{path: "/v1/resolve", exact: true, value: "public, max-age=60"},
	{path: "/docs", value: "public, max-age=3600"},
	{path: "/v1/", value: "public, max-age=300"},
}

func cacheControlFor(path string) string {
	for _, r := range cacheRules {
		if r.exact && path == r.path || !r.exact && strings.HasPrefix(path, r.path) {
			return r.value
		}
	}
	return ""
}

// CachingMiddleware sets Cache-Control on GET responses that the handler
// left without one.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if c.Method() != fiber.MethodGet {
			return err
		}
		if len(c.Response().Header.Peek(fiber.HeaderCacheControl)) > 0 {
			return err
		}
		if v := cacheControlFor(c.Path()); v != "" {
			c.Set(fiber.HeaderCacheControl, v)
		}
		return err
	}
}
