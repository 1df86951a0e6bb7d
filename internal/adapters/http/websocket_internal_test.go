package http

import (
	"encoding/json"
	"testing"

	"github.com/samirrijal/civicmap/internal/adapters/scene"
	"github.com/samirrijal/civicmap/internal/core/domain"
	"github.com/samirrijal/civicmap/internal/core/ports"
	"github.com/samirrijal/civicmap/internal/core/usecases"
)

func newCommandSession(t *testing.T) *usecases.Session {
	t.Helper()
	hospitals := domain.Category{Name: "Hospitals", SourceFile: "hospital.geojson"}
	store := usecases.NewDataStore([]domain.Category{hospitals})
	registry := usecases.NewLayerRegistry(domain.DefaultBaseLayers)
	catalog := usecases.NewCatalog(store, registry, nil, domain.DefaultMapSettings())
	registry.Register(hospitals, 0, "data/icons/")
	store.Complete(hospitals.Name, nil, nil)

	sessions := usecases.NewSessionManager(catalog, func(id string, mobile bool) ports.Scene {
		return scene.New(store.Categories(), "data/icons/", scene.Options{Mobile: mobile})
	}, nil)
	t.Cleanup(sessions.Close)
	return sessions.Create(false)
}

func TestRunCommand_ReplyShape(t *testing.T) {
	visible := false
	tests := []struct {
		name   string
		cmd    wsCommand
		status string
		hasErr bool
	}{
		{"toggle", wsCommand{Action: "toggle", Category: "Hospitals", Visible: &visible}, "ok", false},
		{"snapshot", wsCommand{Action: "snapshot"}, "ok", false},
		{"unknown category", wsCommand{Action: "only", Category: "Nope"}, "error", true},
		{"missing visible", wsCommand{Action: "toggle", Category: "Hospitals"}, "error", true},
		{"unknown action", wsCommand{Action: "bogus"}, "error", true},
		{"unknown panel", wsCommand{Action: "panel", Panel: "nope"}, "error", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newCommandSession(t)
			data, err := json.Marshal(runCommand(s, tt.cmd))
			if err != nil {
				t.Fatal(err)
			}
			var reply map[string]any
			if err := json.Unmarshal(data, &reply); err != nil {
				t.Fatal(err)
			}
			if reply["type"] != "reply" || reply["action"] != tt.cmd.Action {
				t.Errorf("unexpected reply %s", data)
			}
			if reply["status"] != tt.status {
				t.Errorf("expected status %q, got %s", tt.status, data)
			}
			if _, ok := reply["error"]; ok != tt.hasErr {
				t.Errorf("error present = %v, want %v: %s", ok, tt.hasErr, data)
			}
		})
	}
}
