package folio

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Every JSON response carries a stable success discriminator; failures add a
// human-readable error string and nothing else. Raw errors and stack traces
// never reach the client.

func respondOK(c echo.Context, fields map[string]any) error {
	body := map[string]any{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	return c.JSON(http.StatusOK, body)
}

func respondError(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]any{
		"success": false,
		"error":   msg,
	})
}
