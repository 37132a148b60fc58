package handler

import (
	"net/http"
	"time"

	"github.com/jhalttu/textpipe/internal"
	"github.com/jhalttu/textpipe/internal/store"
	"github.com/labstack/echo/v4"
)

func SetupConfigRoutes(g *echo.Group) {
	configGroup := g.Group("/api/config", IsAuthenticated, RoleMiddleware(store.Admin))
	configGroup.GET("", GetConfig)
	configGroup.PUT("", PutConfig)
}

func GetConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, internal.Config)
}

func PutConfig(c echo.Context) error {
	cp := new(ConfigParams)
	if err := c.Bind(cp); err != nil {
		return newError(err, http.StatusBadRequest, "invalid config data")
	}

	config := &internal.Configuration{
		SessionExpiresHours: internal.HoursDuration(
			time.Duration(cp.SessionExpiresHours) * time.Hour,
		),
		QueueSize:        cp.QueueSize,
		PollDelaySeconds: cp.PollDelaySeconds,
		PollMaxAttempts:  cp.PollMaxAttempts,
	}

	if err := internal.UpdateConfiguration(config); err != nil {
		return newError(
			err,
			http.StatusInternalServerError,
			"unable to update configuration file",
		)
	}

	return c.JSON(http.StatusOK, internal.Config)
}
