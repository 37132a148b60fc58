package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jhalttu/textpipe/internal/profiler"
	"github.com/jhalttu/textpipe/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type ProfileServicer interface {
	SystemProfile(
		ctx context.Context,
		trainingJobName string,
		binCount int,
		heatmapBucket time.Duration,
		dimensions ...string,
	) (*service.SystemProfile, error)
	FrameworkProfile(
		ctx context.Context,
		trainingJobName string,
		busiest int,
	) (*service.FrameworkProfile, error)
	MergedProfile(
		ctx context.Context,
		trainingJobName string,
		traceStart time.Time,
	) ([]profiler.MergedEvent, error)
}

func SetupProfileRoutes(g *echo.Group, profileService ProfileServicer) {
	h := NewProfileHandler(profileService)
	profilesGroup := g.Group("/api/training-jobs/:training_job/profile", IsAuthenticated)
	profilesGroup.GET("/system", h.GetSystemProfile)
	profilesGroup.GET("/framework", h.GetFrameworkProfile)
	profilesGroup.GET("/merged", h.GetMergedProfile)
}

type ProfileHandler struct {
	profileService ProfileServicer
}

func NewProfileHandler(profileService ProfileServicer) *ProfileHandler {
	return &ProfileHandler{profileService}
}

func (h *ProfileHandler) GetSystemProfile(c echo.Context) error {
	pp := new(ProfileParams)
	if err := c.Bind(pp); err != nil || pp.TrainingJob == "" {
		return newError(err, http.StatusBadRequest, "invalid training job name")
	}

	var dimensions []string
	if pp.Dimension != "" {
		dimensions = append(dimensions, pp.Dimension)
	}

	profile, err := h.profileService.SystemProfile(
		c.Request().Context(),
		pp.TrainingJob,
		pp.Bins,
		time.Duration(pp.BucketSeconds)*time.Second,
		dimensions...,
	)
	if err != nil {
		if errors.Is(err, profiler.ErrNoProfilingData) {
			return newError(err, http.StatusNotFound, "no profiling data available")
		}
		return newError(err, http.StatusInternalServerError, "unable to read system profile")
	}

	return c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) GetFrameworkProfile(c echo.Context) error {
	pp := new(ProfileParams)
	if err := c.Bind(pp); err != nil || pp.TrainingJob == "" {
		return newError(err, http.StatusBadRequest, "invalid training job name")
	}

	if pp.Busiest == 0 {
		pp.Busiest = 10
	}

	profile, err := h.profileService.FrameworkProfile(
		c.Request().Context(), pp.TrainingJob, pp.Busiest,
	)
	if err != nil {
		if errors.Is(err, profiler.ErrNoProfilingData) {
			return newError(err, http.StatusNotFound, "no profiling data available")
		}
		return newError(err, http.StatusInternalServerError, "unable to read framework profile")
	}

	return c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) GetMergedProfile(c echo.Context) error {
	pp := new(ProfileParams)
	if err := c.Bind(pp); err != nil || pp.TrainingJob == "" {
		return newError(err, http.StatusBadRequest, "invalid training job name")
	}

	traceStart := time.Time{}
	if pp.TraceStart != "" {
		parsed, err := time.Parse(time.RFC3339, pp.TraceStart)
		if err != nil {
			return newError(err, http.StatusBadRequest, "invalid trace start timestamp")
		}
		traceStart = parsed
	}

	events, err := h.profileService.MergedProfile(
		c.Request().Context(), pp.TrainingJob, traceStart,
	)
	if err != nil {
		return newError(err, http.StatusInternalServerError, "unable to read merged profile")
	}

	return c.JSON(http.StatusOK, events)
}
