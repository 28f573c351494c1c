package middleware

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"strconv"

	"marketapi/internal/model"

	"github.com/gofiber/fiber/v2"
)

const (
	// UserIDHeader is set by the authenticating gateway.
	UserIDHeader = "X-User-ID"
	// UserLocalKey is the Fiber locals key holding the *model.User.
	UserLocalKey = "user"
)

// UserFinder loads users by id.
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

// Identity loads the user named by X-User-ID. Requests without the header pass through anonymous;
// an unknown or inactive user is rejected with 401.
func Identity(users UserFinder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(UserIDHeader)
		if raw == "" {
			return c.Next()
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid user id")
		}

		u, err := users.FindByID(c.UserContext(), id)
		if errors.Is(err, sql.ErrNoRows) {
			return fiber.NewError(fiber.StatusUnauthorized, "unknown user")
		}
		if err != nil {
			return err
		}
		if !u.Active {
			return fiber.NewError(fiber.StatusUnauthorized, "user is not active")
		}

		c.Locals(UserLocalKey, u)
		return c.Next()
	}
}

// CurrentUser returns the user stored by Identity, or nil.
func CurrentUser(c *fiber.Ctx) *model.User {
	u, _ := c.Locals(UserLocalKey).(*model.User)
	return u
}

// RequireRole answers 401 without a user and 403 when the user's role is not listed.
// With no roles any authenticated user passes.
func RequireRole(roles ...model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := CurrentUser(c)
		if u == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		if len(roles) > 0 && !slices.Contains(roles, u.Role) {
			return fiber.NewError(fiber.StatusForbidden, "role "+string(u.Role)+" is not allowed")
		}
		return c.Next()
	}
}
