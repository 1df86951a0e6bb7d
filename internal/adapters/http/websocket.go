package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/civicmap/internal/core/domain"
	"github.com/samirrijal/civicmap/internal/core/usecases"
	"github.com/samirrijal/civicmap/internal/pkg/metrics"
)

const (
	wsSessionKey   = "ws_session"
	wsPingInterval = 30 * time.Second
	wsSearchBudget = 15 * time.Second
)

// wsCommand is sent from client to drive its session.
// Example: {"action":"search","query":"hospital"}
type wsCommand struct {
	Action   string `json:"action"`
	Query    string `json:"query,omitempty"`
	Text     string `json:"text,omitempty"`
	Index    int    `json:"index,omitempty"`
	Category string `json:"category,omitempty"`
	Visible  *bool  `json:"visible,omitempty"`
	Name     string `json:"name,omitempty"`
	Panel    string `json:"panel,omitempty"`
}

// wsReply acknowledges a command.
type wsReply struct {
	Type   string         `json:"type"`
	Action string         `json:"action,omitempty"`
	Status string         `json:"status"`
	Error  string         `json:"error,omitempty"`
	Result *domain.Action `json:"result,omitempty"`
}

// wsScene wraps a pushed scene.
type wsScene struct {
	Type  string          `json:"type"`
	Scene json.RawMessage `json:"scene"`
}

// WebSocketUpgrade rejects plain requests and resolves ?session=<id>.
func WebSocketUpgrade(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		s, err := deps.Sessions.Get(c.Query("session"))
		if err != nil {
			return errDomain(c, err)
		}
		c.Locals(wsSessionKey, s)
		return c.Next()
	}
}

// WebSocketHandler streams scene updates of one session and accepts
// commands for it. Scenes are relayed from NATS when available; otherwise
// they come from the session manager in-process.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		s, ok := c.Locals(wsSessionKey).(*usecases.Session)
		if !ok {
			return
		}
		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr, "session", s.ID)
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var mu sync.Mutex
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}
		sendScene := func(st domain.SceneState) {
			data, err := json.Marshal(st)
			if err != nil {
				return
			}
			_ = writeJSON(wsScene{Type: "scene", Scene: data})
		}

		relayed := false
		if deps.Relay != nil && deps.Relay.Connected() {
			unsubscribe, err := deps.Relay.Subscribe(s.ID, func(data []byte) {
				_ = writeJSON(wsScene{Type: "scene", Scene: data})
			})
			if err != nil {
				slog.Warn("ws scene subscribe failed", "session", s.ID, "error", err)
			} else {
				relayed = true
				defer unsubscribe()
			}
		}
		if !relayed {
			unsubscribe := deps.Sessions.Subscribe(s.ID, sendScene)
			defer unsubscribe()
		}
		sendScene(s.Snapshot())

		// Keep-alive ping
		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(wsPingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var cmd wsCommand
			if err := json.Unmarshal(msg, &cmd); err != nil {
				_ = writeJSON(wsReply{Type: "reply", Status: "error", Error: "invalid JSON"})
				continue
			}

			_ = writeJSON(runCommand(s, cmd))
			if cmd.Action == "snapshot" {
				sendScene(s.Snapshot())
			}
		}

		slog.Info("ws client disconnected", "remote", remoteAddr, "session", s.ID)
	}
}

func runCommand(s *usecases.Session, cmd wsCommand) wsReply {
	reply := wsReply{Type: "reply", Action: cmd.Action, Status: "ok"}
	var err error

	switch cmd.Action {
	case "search":
		ctx, cancel := context.WithTimeout(context.Background(), wsSearchBudget)
		var action domain.Action
		action, err = s.Search(ctx, cmd.Query)
		cancel()
		if err == nil {
			reply.Result = &action
		}
	case "input":
		s.Input(cmd.Text)
	case "select":
		_, err = s.SelectSuggestion(cmd.Index)
	case "toggle":
		if cmd.Visible == nil {
			reply.Status, reply.Error = "error", "visible is required"
			return reply
		}
		err = s.Toggle(cmd.Category, *cmd.Visible)
	case "only":
		err = s.ShowOnly(cmd.Category)
	case "reset":
		err = s.Reset()
	case "base_layer":
		err = s.SetBaseLayer(cmd.Name)
	case "panel":
		var panel domain.Panel
		if panel, err = domain.ParsePanel(cmd.Panel); err == nil {
			_, err = s.TogglePanel(panel)
		}
	case "snapshot":
	default:
		reply.Status, reply.Error = "error", "unknown action: "+cmd.Action
		return reply
	}

	if err != nil {
		reply.Status = "error"
		reply.Error = domain.NoticeFor(err)
	}
	return reply
}
