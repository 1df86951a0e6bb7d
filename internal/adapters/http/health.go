package http

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
)

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "healthy",
			"uptime":   time.Since(startedAt).String(),
			"started":  humanize.Time(startedAt),
			"sessions": deps.Sessions.Len(),
			"version":  "dev",
		})
	}
}

// ReadyHandler reports whether the assets finished loading and the optional
// backing services are reachable.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()

		checks := make(map[string]string)
		allOK := true

		// Amenity data
		store := deps.Catalog.Store
		var failed []string
		for _, cat := range store.Categories() {
			if store.Failed(cat.Name) != nil {
				failed = append(failed, cat.Name)
			}
		}
		switch {
		case !store.Ready():
			checks["assets"] = fmt.Sprintf("loading (%d/%d)", store.Completed(), len(store.Categories()))
			allOK = false
		case len(failed) > 0:
			// Failed categories stay empty; the map is still usable.
			checks["assets"] = "degraded: " + strings.Join(failed, ", ")
		default:
			checks["assets"] = "ok"
		}
		if _, ok := store.Boundary(); ok {
			checks["boundary"] = "ok"
		} else {
			checks["boundary"] = "loading"
			allOK = false
		}

		// Database
		if deps.DB != nil {
			if err := deps.DB.Ping(ctx); err != nil {
				checks["database"] = "error: " + err.Error()
				allOK = false
			} else {
				checks["database"] = "ok"
			}
		} else {
			checks["database"] = "not configured"
		}

		// NATS
		if deps.Relay != nil {
			if deps.Relay.Connected() {
				checks["nats"] = "ok"
			} else {
				checks["nats"] = "disconnected"
				allOK = false
			}
		} else {
			checks["nats"] = "not configured"
		}

		// Valkey cache
		if deps.Cache != nil {
			if err := deps.Cache.Ping(ctx); err != nil {
				checks["cache"] = "error: " + err.Error()
				allOK = false
			} else {
				checks["cache"] = "ok"
			}
		} else {
			checks["cache"] = "not configured"
		}

		status := "ready"
		code := 200
		if !allOK {
			status = "not ready"
			code = 503
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	}
}
