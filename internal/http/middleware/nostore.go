package middleware

import "github.com/gofiber/fiber/v2"

// NoStore marks responses as uncacheable. Applied to routes that serve user-specific data.
func NoStore() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		c.Set(fiber.HeaderCacheControl, "no-store")
		return err
	}
}
