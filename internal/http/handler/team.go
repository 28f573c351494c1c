package handler

import (
	"marketapi/internal/http/middleware"
	"marketapi/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateTeam serves POST /team/create; the caller becomes the team lead.
func CreateTeam(svc service.TeamService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		t, err := svc.Create(c.UserContext(), middleware.CurrentUser(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(t)
	}
}

// GetTeam serves GET /team/:id.
func GetTeam(svc service.TeamService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return writeServiceError(c, err)
		}
		t, err := svc.Get(c.UserContext(), id, middleware.CurrentUser(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(t)
	}
}

// UpdateTeam serves PATCH /team/:id with {stage, team}.
func UpdateTeam(svc service.TeamService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return writeServiceError(c, err)
		}
		var req service.UpdateTeamRequest
		if err := bindJSON(c, &req); err != nil {
			return writeServiceError(c, err)
		}
		t, err := svc.Update(c.UserContext(), id, middleware.CurrentUser(c), req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(t)
	}
}

// CompleteTeam serves POST /team/:id/complete.
func CompleteTeam(svc service.TeamService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return writeServiceError(c, err)
		}
		t, err := svc.Complete(c.UserContext(), id, middleware.CurrentUser(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(t)
	}
}
