package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// requestError is a malformed request detected before reaching a service.
// writeServiceError answers it with a 400 carrying its own code.
type requestError struct {
	code    string
	message string
}

func (e *requestError) Error() string { return e.message }

// paramID parses a positive integer path parameter.
func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, &requestError{code: "INVALID_ID", message: "invalid id format"}
	}
	return id, nil
}

// queryID parses a required positive integer query value.
func queryID(c *fiber.Ctx, name, code string) (int64, error) {
	id, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, &requestError{code: code, message: "invalid " + name}
	}
	return id, nil
}

// queryInt parses an optional integer query value.
func queryInt(c *fiber.Ctx, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &requestError{code: "INVALID_" + strings.ToUpper(name), message: "invalid " + name}
	}
	return v, nil
}

// bindJSON decodes the request body into v.
func bindJSON(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return &requestError{code: "INVALID_BODY", message: "invalid request body"}
	}
	return nil
}
