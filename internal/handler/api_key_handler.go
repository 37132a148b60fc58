package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/jhalttu/textpipe/internal/store"
	"github.com/labstack/echo/v4"
)

type APIKeyServicer interface {
	CreateAPIKey(ctx context.Context) (*store.APIKey, error)
	DeleteAPIKey(ctx context.Context, id int64) error
	ListAPIKeys(ctx context.Context) ([]*store.APIKey, error)
}

func SetupAPIKeyRoutes(g *echo.Group, apiKeyService APIKeyServicer) {
	h := NewAPIKeyHandler(apiKeyService)
	apiKeysGroup := g.Group("/api/api-keys", IsAuthenticated)
	apiKeysGroup.GET("", h.GetAPIKeys, RoleMiddleware(store.Admin))
	apiKeysGroup.POST("", h.PostAPIKey, RoleMiddleware(store.Admin))
	apiKeysGroup.DELETE("/:id", h.DeleteAPIKey, RoleMiddleware(store.Admin))
}

type APIKeyHandler struct {
	apiKeyService APIKeyServicer
}

func NewAPIKeyHandler(apiKeyService APIKeyServicer) *APIKeyHandler {
	return &APIKeyHandler{apiKeyService}
}

func (h *APIKeyHandler) GetAPIKeys(c echo.Context) error {
	apiKeys, err := h.apiKeyService.ListAPIKeys(c.Request().Context())
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return newError(err,
			http.StatusInternalServerError,
			"something went wrong while listing api keys",
		)
	}
	return c.JSON(http.StatusOK, apiKeys)
}

func (h *APIKeyHandler) PostAPIKey(c echo.Context) error {
	ak, err := h.apiKeyService.CreateAPIKey(c.Request().Context())
	if err != nil {
		return newError(
			err,
			http.StatusInternalServerError, "unable to create api key",
		)
	}

	return c.JSON(http.StatusCreated, ak)
}

func (h *APIKeyHandler) DeleteAPIKey(c echo.Context) error {
	akp := new(APIKeyParams)
	if err := c.Bind(akp); err != nil {
		return newError(
			err,
			http.StatusBadRequest, "invalid api key data",
		)
	}

	if err := h.apiKeyService.DeleteAPIKey(c.Request().Context(), akp.ID); err != nil {
		return newError(
			err,
			http.StatusInternalServerError, "unable to delete api key",
		)
	}

	return c.NoContent(http.StatusNoContent)
}
