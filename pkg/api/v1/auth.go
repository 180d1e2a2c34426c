package apiv1

import (
	"crypto/subtle"
	"strings"

	"github.com/labstack/echo/v4"
)

// AuthMiddleware enforces the static bearer token the service is configured
// with. An empty token disables enforcement; local mode runs without
// credentials. The health group is registered without this middleware so
// liveness checks stay open.
func AuthMiddleware(token string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token == "" {
				return next(c)
			}

			header := c.Request().Header.Get(echo.HeaderAuthorization)
			presented, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				return HTTPUnauthorized("invalid or missing bearer token")
			}
			return next(c)
		}
	}
}
