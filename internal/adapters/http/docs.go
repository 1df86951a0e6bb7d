package http

import (
	"context"
	"os"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gofiber/fiber/v2"
)

// DefaultSpecPath is where the API description lives relative to the
// working directory of the server.
const DefaultSpecPath = "api/openapi.yaml"

const swaggerUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>CivicMap API - Swagger UI</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
  <style>html{box-sizing:border-box}*,*::before,*::after{box-sizing:inherit}body{margin:0;background:#fafafa}</style>
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: '/docs/openapi.json',
      dom_id: '#swagger-ui',
      deepLinking: true,
      presets: [SwaggerUIBundle.presets.apis, SwaggerUIBundle.SwaggerUIStandalonePreset],
      layout: 'BaseLayout',
    });
  </script>
</body>
</html>`

// SetupDocs registers Swagger UI at /docs, the raw spec at /docs/openapi.yaml
// and its validated JSON form at /docs/openapi.json.
func SetupDocs(app *fiber.App, specPath string) {
	if specPath == "" {
		specPath = DefaultSpecPath
	}
	spec := &specDoc{path: specPath}

	app.Get("/docs", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(swaggerUIHTML)
	})

	app.Get("/docs/openapi.yaml", func(c *fiber.Ctx) error {
		data, err := os.ReadFile(specPath)
		if err != nil {
			return errNotFound(c, "openapi.yaml not found")
		}
		c.Set(fiber.HeaderContentType, "application/yaml")
		return c.Send(data)
	})

	app.Get("/docs/openapi.json", func(c *fiber.Ctx) error {
		data, err := spec.json(c.UserContext())
		if err != nil {
			LoggerFromCtx(c.UserContext()).Warn("openapi spec unavailable", "path", specPath, "error", err)
			return errNotFound(c, "openapi spec unavailable")
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(data)
	})
}

// specDoc loads and validates the spec once, on first request.
type specDoc struct {
	path string

	once sync.Once
	data []byte
	err  error
}

func (s *specDoc) json(ctx context.Context) ([]byte, error) {
	s.once.Do(func() {
		loader := &openapi3.Loader{Context: ctx, IsExternalRefsAllowed: false}
		doc, err := loader.LoadFromFile(s.path)
		if err != nil {
			s.err = err
			return
		}
		if err := doc.Validate(ctx); err != nil {
			s.err = err
			return
		}
		s.data, s.err = doc.MarshalJSON()
	})
	return s.data, s.err
}
