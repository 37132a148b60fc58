package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jhalttu/textpipe/internal/store"
	"github.com/jhalttu/textpipe/internal/util"
	"github.com/jhalttu/textpipe/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestAuthHandler_PostLogin(t *testing.T) {
	t.Run("success - session cookie is set", func(t *testing.T) {
		// arrange
		user := generateUser(
			store.Operator,
			util.AsPtr(time.Now().UTC()),
			nil,
		)
		session := &store.AuthSession{
			AuthSessionID:      uuid.NewString(),
			AuthSessionUserID:  user.UserID,
			AuthSessionExpires: time.Now().UTC().Add(time.Hour),
		}
		mockService := new(testutil.MockUserService)
		mockService.On(
			"GetUserByUsernameAndPassword",
			context.Background(),
			user.Username,
			testUserPassword,
		).Return(user, nil)
		mockService.On("CreateAuthSession", context.Background(), user.UserID).
			Return(session, nil)
		mockCookies := new(MockCookieService)
		mockCookies.On("SetSessionCookie", session.AuthSessionID).Return(nil)

		e := echo.New()
		c, rec := newJSONContext(e, http.MethodPost, "/api/auth/login", map[string]any{
			"username": user.Username,
			"password": testUserPassword,
		})
		h := NewAuthHandler(mockService, mockCookies)

		// act
		err := h.PostLogin(c)

		// assert
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), user.Username)
		mockService.AssertExpectations(t)
		mockCookies.AssertExpectations(t)
	})
	t.Run("failure - wrong password", func(t *testing.T) {
		// arrange
		mockService := new(testutil.MockUserService)
		mockService.On(
			"GetUserByUsernameAndPassword",
			context.Background(),
			"someone",
			"wrong",
		).Return(nil, assert.AnError)

		e := echo.New()
		c, _ := newJSONContext(e, http.MethodPost, "/api/auth/login", map[string]any{
			"username": "someone",
			"password": "wrong",
		})
		h := NewAuthHandler(mockService, nil)

		// act
		err := h.PostLogin(c)

		// assert
		assert.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})
}

func TestAuthHandler_PostSetPassword(t *testing.T) {
	t.Run("success - password set, session removed", func(t *testing.T) {
		// arrange
		user := generateUser(store.Operator, nil, nil)
		mockService := new(testutil.MockUserService)
		mockService.On(
			"SetUserPassword", context.Background(), user.UserID, "newpassword",
		).Return(nil)
		mockCookies := new(MockCookieService)
		mockCookies.On("RemoveSessionCookie").Return()

		e := echo.New()
		c, rec := newJSONContext(e, http.MethodPost, "/api/auth/set-password", map[string]any{
			"username":         user.Username,
			"password":         "newpassword",
			"password_confirm": "newpassword",
		})
		c.Set("user", user)
		h := NewAuthHandler(mockService, mockCookies)

		// act
		err := h.PostSetPassword(c)

		// assert
		assert.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		mockService.AssertExpectations(t)
		mockCookies.AssertExpectations(t)
	})
	t.Run("failure - passwords do not match", func(t *testing.T) {
		// arrange
		user := generateUser(store.Operator, nil, nil)
		mockService := new(testutil.MockUserService)

		e := echo.New()
		c, _ := newJSONContext(e, http.MethodPost, "/api/auth/set-password", map[string]any{
			"username":         user.Username,
			"password":         "newpassword",
			"password_confirm": "different",
		})
		c.Set("user", user)
		h := NewAuthHandler(mockService, nil)

		// act
		err := h.PostSetPassword(c)

		// assert
		assert.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
		mockService.AssertNotCalled(t, "SetUserPassword")
	})
}
