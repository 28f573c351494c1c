package handler

import (
	"fmt"

	"marketapi/internal/http/middleware"
	"marketapi/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetBrief serves GET /brief/:id and GET /briefs/:id.
func GetBrief(svc service.BriefService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return writeServiceError(c, err)
		}
		b, err := svc.Get(c.UserContext(), id, middleware.CurrentUser(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(b)
	}
}

// BriefUserStatus serves GET /brief/:id/user-status.
func BriefUserStatus(svc service.BriefService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return writeServiceError(c, err)
		}
		st, err := svc.UserStatus(c.UserContext(), id, middleware.CurrentUser(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(st)
	}
}

// BriefSellers serves GET /brief/:id/sellers.
func BriefSellers(svc service.BriefService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return writeServiceError(c, err)
		}
		res, err := svc.Sellers(c.UserContext(), id, middleware.CurrentUser(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// NotifySellers serves POST /brief/:id/sellers/notify.
func NotifySellers(svc service.BriefService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return writeServiceError(c, err)
		}
		var req service.NotifySellersRequest
		if err := bindJSON(c, &req); err != nil {
			return writeServiceError(c, err)
		}
		if err := svc.NotifySellers(c.UserContext(), id, middleware.CurrentUser(c), req); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// CreateBrief serves POST /briefs.
func CreateBrief(svc service.BriefService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req service.CreateBriefRequest
		if err := bindJSON(c, &req); err != nil {
			return writeServiceError(c, err)
		}
		b, err := svc.Create(c.UserContext(), middleware.CurrentUser(c), req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(b)
	}
}

// UpdateBrief serves PATCH /briefs/:id with the data fields to merge.
func UpdateBrief(svc service.BriefService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return writeServiceError(c, err)
		}
		var data map[string]any
		if err := bindJSON(c, &data); err != nil {
			return writeServiceError(c, err)
		}
		b, err := svc.Update(c.UserContext(), id, middleware.CurrentUser(c), data)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(b)
	}
}

// PublishBrief serves POST /briefs/:id/publish.
func PublishBrief(svc service.BriefService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return writeServiceError(c, err)
		}
		b, err := svc.Publish(c.UserContext(), id, middleware.CurrentUser(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(b)
	}
}

type pageLinks struct {
	Self string `json:"self"`
	Prev string `json:"prev,omitempty"`
	Next string `json:"next,omitempty"`
}

type briefListResponse struct {
	*service.BriefPage
	Links pageLinks `json:"links"`
}

func links(path string, page, perPage, total int) pageLinks {
	at := func(p int) string { return fmt.Sprintf("%s?page=%d&per_page=%d", path, p, perPage) }
	l := pageLinks{Self: at(page)}
	if page > 1 {
		l.Prev = at(page - 1)
	}
	if page*perPage < total {
		l.Next = at(page + 1)
	}
	return l
}

// ListBriefs serves GET /briefs?page=&per_page=.
func ListBriefs(svc service.BriefService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := queryInt(c, "page", 1)
		if err != nil {
			return writeServiceError(c, err)
		}
		perPage, err := queryInt(c, "per_page", 0)
		if err != nil {
			return writeServiceError(c, err)
		}
		res, err := svc.List(c.UserContext(), page, perPage)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(briefListResponse{BriefPage: res, Links: links(c.Path(), res.Page, res.PerPage, res.Total)})
	}
}

// BuyerDashboard serves GET /buyer/dashboard?status=.
func BuyerDashboard(svc service.BriefService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := svc.Dashboard(c.UserContext(), middleware.CurrentUser(c), c.Query("status"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(d)
	}
}
