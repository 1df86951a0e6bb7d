package http

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/civicmap/internal/core/domain"
	"github.com/samirrijal/civicmap/internal/core/usecases"
)

// SearchResponse is the outcome of a search and the scene it produced.
type SearchResponse struct {
	Action domain.Action     `json:"action"`
	Scene  domain.SceneState `json:"scene"`
}

// PanelResponse reports the new state of a toggled panel.
type PanelResponse struct {
	Panel domain.Panel      `json:"panel"`
	Open  bool              `json:"open"`
	Scene domain.SceneState `json:"scene"`
}

// withSession resolves the :id parameter before calling fn.
func withSession(deps *Dependencies, fn func(c *fiber.Ctx, s *usecases.Session) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := deps.Sessions.Get(c.Params("id"))
		if err != nil {
			return errDomain(c, err)
		}
		return fn(c, s)
	}
}

// CreateSessionHandler opens a map session.
// The layout is taken from {"mobile": bool} or ?mobile=true.
func CreateSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Mobile bool `json:"mobile"`
		}
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return errBadRequest(c, "invalid request body")
			}
		}
		mobile := body.Mobile || c.QueryBool("mobile", false)

		s := deps.Sessions.Create(mobile)
		c.Location("/v1/sessions/" + s.ID)
		return c.Status(fiber.StatusCreated).JSON(s.Snapshot())
	}
}

// GetSessionHandler returns the current scene.
func GetSessionHandler(deps *Dependencies) fiber.Handler {
	return withSession(deps, func(c *fiber.Ctx, s *usecases.Session) error {
		return c.JSON(s.Snapshot())
	})
}

// DeleteSessionHandler closes a session.
func DeleteSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Sessions.Delete(c.Params("id")); err != nil {
			return errDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SessionSearchHandler resolves {"query": "..."} and applies it.
func SessionSearchHandler(deps *Dependencies) fiber.Handler {
	return withSession(deps, func(c *fiber.Ctx, s *usecases.Session) error {
		var body struct {
			Query string `json:"query"`
		}
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if len(body.Query) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}

		action, err := s.Search(c.UserContext(), body.Query)
		if err != nil {
			LoggerFromCtx(c.UserContext()).Info("search failed",
				"session", s.ID, "query", strings.TrimSpace(body.Query), "error", err)
			return errDomain(c, err)
		}
		return c.JSON(SearchResponse{Action: action, Scene: s.Snapshot()})
	})
}

// SessionInputHandler records typed text and schedules suggestions.
func SessionInputHandler(deps *Dependencies) fiber.Handler {
	return withSession(deps, func(c *fiber.Ctx, s *usecases.Session) error {
		var body struct {
			Text string `json:"text"`
		}
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if len(body.Text) > 200 {
			return errBadRequest(c, "text too long (max 200 characters)")
		}
		s.Input(body.Text)
		return c.Status(fiber.StatusAccepted).JSON(s.Snapshot())
	})
}

// SelectSuggestionHandler applies the suggestion at :index.
func SelectSuggestionHandler(deps *Dependencies) fiber.Handler {
	return withSession(deps, func(c *fiber.Ctx, s *usecases.Session) error {
		index, err := strconv.Atoi(c.Params("index"))
		if err != nil {
			return errBadRequest(c, "index must be an integer")
		}
		if _, err := s.SelectSuggestion(index); err != nil {
			return errDomain(c, err)
		}
		return c.JSON(s.Snapshot())
	})
}

// SetLayerHandler shows or hides a category: {"visible": bool}.
func SetLayerHandler(deps *Dependencies) fiber.Handler {
	return withSession(deps, func(c *fiber.Ctx, s *usecases.Session) error {
		var body struct {
			Visible *bool `json:"visible"`
		}
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if body.Visible == nil {
			return errBadRequest(c, "visible is required")
		}
		if err := s.Toggle(pathParam(c, "category"), *body.Visible); err != nil {
			return errDomain(c, err)
		}
		return c.JSON(s.Snapshot())
	})
}

// ShowOnlyHandler hides every category except :category.
func ShowOnlyHandler(deps *Dependencies) fiber.Handler {
	return withSession(deps, func(c *fiber.Ctx, s *usecases.Session) error {
		if err := s.ShowOnly(pathParam(c, "category")); err != nil {
			return errDomain(c, err)
		}
		return c.JSON(s.Snapshot())
	})
}

// ResetHandler restores the initial view.
func ResetHandler(deps *Dependencies) fiber.Handler {
	return withSession(deps, func(c *fiber.Ctx, s *usecases.Session) error {
		if err := s.Reset(); err != nil {
			return errDomain(c, err)
		}
		return c.JSON(s.Snapshot())
	})
}

// SetBaseLayerHandler switches the base map: {"name": "satellite"}.
func SetBaseLayerHandler(deps *Dependencies) fiber.Handler {
	return withSession(deps, func(c *fiber.Ctx, s *usecases.Session) error {
		var body struct {
			Name string `json:"name"`
		}
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if body.Name == "" {
			return errBadRequest(c, "name is required")
		}
		if err := s.SetBaseLayer(body.Name); err != nil {
			return errDomain(c, err)
		}
		return c.JSON(s.Snapshot())
	})
}

// TogglePanelHandler opens or closes :panel.
func TogglePanelHandler(deps *Dependencies) fiber.Handler {
	return withSession(deps, func(c *fiber.Ctx, s *usecases.Session) error {
		panel, err := domain.ParsePanel(c.Params("panel"))
		if err != nil {
			return errDomain(c, err)
		}
		open, err := s.TogglePanel(panel)
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(PanelResponse{Panel: panel, Open: open, Scene: s.Snapshot()})
	})
}

// SessionChartHandler returns the breakdown of visible categories.
func SessionChartHandler(deps *Dependencies) fiber.Handler {
	return withSession(deps, func(c *fiber.Ctx, s *usecases.Session) error {
		return c.JSON(s.Chart())
	})
}
