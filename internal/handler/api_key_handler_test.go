package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jhalttu/textpipe/internal/store"
	"github.com/jhalttu/textpipe/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestAPIKeyHandler_GetAPIKeys(t *testing.T) {
	t.Run("successfully list api keys", func(t *testing.T) {
		// arrange
		mockService := new(testutil.MockAPIKeyService)
		mockService.On("ListAPIKeys", context.Background()).Return(
			[]*store.APIKey{
				{ID: 1, Value: "7e43a0ce-1c72-4d49-8a52-c0c2983580f4", CreatedOn: time.Now().UTC()},
				{ID: 2, Value: "4c12d4a2-f1c0-4c3b-9c20-22bc310e32b6", CreatedOn: time.Now().UTC()},
			},
			nil,
		)
		h := NewAPIKeyHandler(mockService)
		e := echo.New()
		c, rec := newJSONContext(e, http.MethodGet, "/api/api-keys", nil)

		// act
		err := h.GetAPIKeys(c)

		// assert
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "7e43a0ce-1c72-4d49-8a52-c0c2983580f4")
		assert.Contains(t, rec.Body.String(), "4c12d4a2-f1c0-4c3b-9c20-22bc310e32b6")
	})
}

func TestAPIKeyHandler_PostAPIKey(t *testing.T) {
	t.Run("successfully create api key", func(t *testing.T) {
		// arrange
		mockService := new(testutil.MockAPIKeyService)
		mockService.On("CreateAPIKey", context.Background()).Return(
			&store.APIKey{
				ID:        1,
				Value:     "7e43a0ce-1c72-4d49-8a52-c0c2983580f4",
				CreatedOn: time.Now().UTC(),
			},
			nil,
		)
		h := NewAPIKeyHandler(mockService)
		e := echo.New()
		c, rec := newJSONContext(e, http.MethodPost, "/api/api-keys", nil)

		// act
		err := h.PostAPIKey(c)

		// assert
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), "7e43a0ce-1c72-4d49-8a52-c0c2983580f4")
	})
}

func TestAPIKeyHandler_DeleteAPIKey(t *testing.T) {
	t.Run("successfully delete api key", func(t *testing.T) {
		// arrange
		mockService := new(testutil.MockAPIKeyService)
		mockService.On("DeleteAPIKey", context.Background(), int64(1)).Return(nil)
		h := NewAPIKeyHandler(mockService)
		e := echo.New()
		c, rec := newJSONContext(e, http.MethodDelete, "/api/api-keys/1", nil)
		c.SetParamNames("id")
		c.SetParamValues("1")

		// act
		err := h.DeleteAPIKey(c)

		// assert
		assert.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		mockService.AssertCalled(t, "DeleteAPIKey", context.Background(), int64(1))
	})
}
