package handler

import (
	"marketapi/internal/http/middleware"
	"marketapi/internal/model"
	"marketapi/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CanRespond serves GET /brief/:id/respond: 200 when the supplier may respond.
func CanRespond(svc service.BriefResponseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return writeServiceError(c, err)
		}
		sup, b, err := svc.CanRespond(c.UserContext(), id, middleware.CurrentUser(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"briefId": b.ID, "supplierCode": sup.Code})
	}
}

// CreateBriefResponse serves POST /brief/:id/respond.
func CreateBriefResponse(svc service.BriefResponseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return writeServiceError(c, err)
		}
		var data map[string]any
		if err := bindJSON(c, &data); err != nil {
			return writeServiceError(c, err)
		}
		r, err := svc.Create(c.UserContext(), id, middleware.CurrentUser(c), data)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"briefResponses": r})
	}
}

// ListBriefResponses serves GET /brief/:id/responses.
func ListBriefResponses(svc service.BriefResponseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return writeServiceError(c, err)
		}
		res, err := svc.ListForBrief(c.UserContext(), id, middleware.CurrentUser(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// ListSupplierResponses serves GET /brief-responses, the supplier's dashboard.
func ListSupplierResponses(svc service.BriefResponseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := svc.ListForSupplier(c.UserContext(), middleware.CurrentUser(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"briefResponses": rows})
	}
}

// GetBriefResponse serves GET /brief-response/:id.
func GetBriefResponse(svc service.BriefResponseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return writeServiceError(c, err)
		}
		r, err := svc.Get(c.UserContext(), id, middleware.CurrentUser(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(r)
	}
}

// WithdrawBriefResponse serves POST /brief-response/:id/withdraw.
func WithdrawBriefResponse(svc service.BriefResponseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return writeServiceError(c, err)
		}
		r, err := svc.Withdraw(c.UserContext(), id, middleware.CurrentUser(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(r)
	}
}

// UploadResponseDocument serves POST /brief/:id/respond/documents/:supplier_code/:slug
// (multipart/form-data, field name: file).
func UploadResponseDocument(svc service.BriefResponseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		briefID, err := paramID(c, "id")
		if err != nil {
			return writeServiceError(c, err)
		}
		code, err := paramID(c, "supplier_code")
		if err != nil {
			return writeServiceError(c, err)
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		name, err := svc.UploadDocument(c.UserContext(), briefID, code, c.Params("slug"), middleware.CurrentUser(c), f, fh.Size)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"filename": name})
	}
}

// DownloadResponseDocument serves GET /brief/:id/respond/documents/:supplier_code/:slug.
// Buyers also need the download_responses team permission.
func DownloadResponseDocument(svc service.BriefResponseService, teams service.TeamService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		briefID, err := paramID(c, "id")
		if err != nil {
			return writeServiceError(c, err)
		}
		code, err := paramID(c, "supplier_code")
		if err != nil {
			return writeServiceError(c, err)
		}
		user := middleware.CurrentUser(c)
		if user.Role == model.RoleBuyer {
			if err := teams.RequirePermission(c.UserContext(), user, model.PermissionDownloadResponses); err != nil {
				return writeServiceError(c, err)
			}
		}

		doc, err := svc.DownloadDocument(c.UserContext(), briefID, code, c.Params("slug"), user)
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Set(fiber.HeaderContentType, doc.ContentType)
		return c.SendStream(doc.Body, int(doc.Size))
	}
}

type contactRequest struct {
	EmailAddress string `json:"emailAddress"`
}

// GetResponseContact serves GET /brief-response-contact/:brief_id.
func GetResponseContact(svc service.BriefResponseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		briefID, err := paramID(c, "brief_id")
		if err != nil {
			return writeServiceError(c, err)
		}
		contact, err := svc.GetContact(c.UserContext(), briefID, middleware.CurrentUser(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(contact)
	}
}

// UpdateResponseContact serves PUT /brief-response-contact/:brief_id with {emailAddress}.
func UpdateResponseContact(svc service.BriefResponseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		briefID, err := paramID(c, "brief_id")
		if err != nil {
			return writeServiceError(c, err)
		}
		var req contactRequest
		if err := bindJSON(c, &req); err != nil {
			return writeServiceError(c, err)
		}
		contact, err := svc.UpdateContact(c.UserContext(), briefID, middleware.CurrentUser(c), req.EmailAddress)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(contact)
	}
}
