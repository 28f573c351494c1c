package handler

import (
	"marketapi/internal/http/middleware"
	"marketapi/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetDomain serves GET /domain/:name_or_id.
func GetDomain(svc service.DomainService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := svc.Get(c.UserContext(), c.Params("name_or_id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(d)
	}
}

// GetFramework serves GET /framework/:slug.
func GetFramework(svc service.DomainService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := svc.Framework(c.UserContext(), c.Params("slug"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(f)
	}
}

// ListSuppliers serves GET /suppliers?name=&page=&per_page=.
func ListSuppliers(svc service.SupplierService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := queryInt(c, "page", 1)
		if err != nil {
			return writeServiceError(c, err)
		}
		perPage, err := queryInt(c, "per_page", 0)
		if err != nil {
			return writeServiceError(c, err)
		}
		res, err := svc.List(c.UserContext(), c.Query("name"), page, perPage)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetSupplier serves GET /suppliers/:code.
func GetSupplier(svc service.SupplierService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		code, err := paramID(c, "code")
		if err != nil {
			return writeServiceError(c, err)
		}
		s, err := svc.Get(c.UserContext(), code)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(s)
	}
}

// ABNUsed serves GET /suppliers/abn/:abn/used.
func ABNUsed(svc service.SupplierService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		used, err := svc.ABNUsed(c.UserContext(), c.Params("abn"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"used": used})
	}
}

// ABNLookup serves GET /suppliers/abn/:abn/lookup.
func ABNLookup(svc service.SupplierService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name, err := svc.ABNLookup(c.UserContext(), c.Params("abn"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"abn": c.Params("abn"), "organisation_name": name})
	}
}

// SupplierMessages serves GET /suppliers/:code/messages?skip_application_check=.
func SupplierMessages(svc service.SupplierService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		code, err := paramID(c, "code")
		if err != nil {
			return writeServiceError(c, err)
		}
		msgs, err := svc.Messages(c.UserContext(), code, middleware.CurrentUser(c), c.QueryBool("skip_application_check"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"messages": msgs})
	}
}
