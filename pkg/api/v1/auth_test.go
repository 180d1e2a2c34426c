package apiv1

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func authRequest(t *testing.T, token, header string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	g := e.Group("/api/v1/volumes", AuthMiddleware(token))
	g.GET("", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/volumes", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	assert.Equal(t, http.StatusOK, authRequest(t, "s3cret", "Bearer s3cret").Code)
	assert.Equal(t, http.StatusUnauthorized, authRequest(t, "s3cret", "").Code)
	assert.Equal(t, http.StatusUnauthorized, authRequest(t, "s3cret", "Bearer wrong").Code)
	assert.Equal(t, http.StatusUnauthorized, authRequest(t, "s3cret", "s3cret").Code)
}

func TestAuthMiddlewareDisabledWithoutToken(t *testing.T) {
	// An empty configured token disables enforcement (local mode).
	assert.Equal(t, http.StatusOK, authRequest(t, "", "").Code)
}
