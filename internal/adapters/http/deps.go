package http

import (
	"github.com/samirrijal/civicmap/internal/adapters/postgres"
	"github.com/samirrijal/civicmap/internal/adapters/valkey"
	"github.com/samirrijal/civicmap/internal/core/usecases"
)

// SceneRelay streams published scenes of one session.
type SceneRelay interface {
	Connected() bool
	Subscribe(sessionID string, handler func(data []byte)) (func(), error)
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Catalog  *usecases.Catalog
	Sessions *usecases.SessionManager
	Relay    SceneRelay
	DB       *postgres.DB
	Cache    *valkey.Cache
	// SpecPath locates the OpenAPI document; empty means DefaultSpecPath.
	SpecPath string
}
