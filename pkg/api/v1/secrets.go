package apiv1

import (
	"github.com/JBibu/zerobyte/pkg/secrets"
	"github.com/JBibu/zerobyte/pkg/types"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type SecretsGroup struct {
	routerGroup *echo.Group
	resolver    *secrets.StoreResolver
}

func NewSecretsGroup(g *echo.Group, resolver *secrets.StoreResolver) *SecretsGroup {
	group := &SecretsGroup{routerGroup: g, resolver: resolver}

	g.POST("", group.CreateSecret)
	g.DELETE("/:secret_id", group.DeleteSecret)

	return group
}

type CreateSecretRequest struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type CreateSecretResponse struct {
	Ref string `json:"ref"`
}

// CreateSecret stores a credential and returns its opaque reference. The
// value is sealed before it reaches storage and is never echoed back.
func (s *SecretsGroup) CreateSecret(c echo.Context) error {
	var req CreateSecretRequest
	if err := c.Bind(&req); err != nil {
		return HTTPBadRequest("invalid request body")
	}
	if req.Value == "" {
		return HTTPBadRequest("secret value is required")
	}

	ref, err := s.resolver.Create(c.Request().Context(), req.Name, req.Value)
	if err != nil {
		log.Error().Err(err).Str("name", req.Name).Msg("failed to create secret")
		return HTTPInternalServerError("failed to create secret")
	}

	return SuccessResponse(c, CreateSecretResponse{Ref: string(ref)})
}

func (s *SecretsGroup) DeleteSecret(c echo.Context) error {
	ref := c.Param("secret_id")
	if err := s.resolver.Delete(c.Request().Context(), types.SecretRef(ref)); err != nil {
		return HTTPNotFound()
	}
	return SuccessResponse(c, nil)
}
