package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jhalttu/textpipe/internal/profiler"
	"github.com/jhalttu/textpipe/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) SystemProfile(
	ctx context.Context,
	trainingJobName string,
	binCount int,
	heatmapBucket time.Duration,
	dimensions ...string,
) (*service.SystemProfile, error) {
	callArgs := []any{ctx, trainingJobName, binCount, heatmapBucket}
	for _, d := range dimensions {
		callArgs = append(callArgs, d)
	}
	args := m.Called(callArgs...)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SystemProfile), args.Error(1)
}

func (m *MockProfileService) FrameworkProfile(
	ctx context.Context,
	trainingJobName string,
	busiest int,
) (*service.FrameworkProfile, error) {
	args := m.Called(ctx, trainingJobName, busiest)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FrameworkProfile), args.Error(1)
}

func (m *MockProfileService) MergedProfile(
	ctx context.Context,
	trainingJobName string,
	traceStart time.Time,
) ([]profiler.MergedEvent, error) {
	args := m.Called(ctx, trainingJobName, traceStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]profiler.MergedEvent), args.Error(1)
}

func TestProfileHandler_GetSystemProfile(t *testing.T) {
	t.Run("dimension filter is forwarded", func(t *testing.T) {
		// arrange
		mockService := new(MockProfileService)
		mockService.On(
			"SystemProfile",
			context.Background(), "clf-train-1", 12, 30*time.Second, "cpu",
		).Return(
			&service.SystemProfile{
				TrainingJob: "clf-train-1",
				Histograms: []profiler.Histogram{
					{Metric: "CPUUtilization", Dimension: "cpu", Mean: 50.0, Count: 2},
				},
			},
			nil,
		)
		h := NewProfileHandler(mockService)
		e := echo.New()
		c, rec := newJSONContext(
			e,
			http.MethodGet,
			"/api/training-jobs/clf-train-1/profile/system?bins=12&bucket_seconds=30&dimension=cpu",
			nil,
		)
		c.SetParamNames("training_job")
		c.SetParamValues("clf-train-1")

		// act
		err := h.GetSystemProfile(c)

		// assert
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "CPUUtilization")
	})
	t.Run("missing profiling data returns not found", func(t *testing.T) {
		// arrange
		mockService := new(MockProfileService)
		mockService.On(
			"SystemProfile",
			context.Background(), "clf-train-1", 0, time.Duration(0),
		).Return(nil, profiler.ErrNoProfilingData)
		h := NewProfileHandler(mockService)
		e := echo.New()
		c, _ := newJSONContext(
			e, http.MethodGet, "/api/training-jobs/clf-train-1/profile/system", nil,
		)
		c.SetParamNames("training_job")
		c.SetParamValues("clf-train-1")

		// act
		err := h.GetSystemProfile(c)

		// assert
		assert.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusNotFound, he.Code)
	})
}

func TestProfileHandler_GetFrameworkProfile(t *testing.T) {
	t.Run("busiest defaults to ten spans", func(t *testing.T) {
		// arrange
		mockService := new(MockProfileService)
		mockService.On("FrameworkProfile", context.Background(), "clf-train-1", 10).Return(
			&service.FrameworkProfile{
				TrainingJob: "clf-train-1",
				Timeline: profiler.Timeline{
					Tracks: []profiler.Track{{Name: "1/1", Spans: []profiler.Span{
						{Label: "Step:ModeKeys.TRAIN", StartUS: 0, EndUS: 1500},
					}}},
				},
				Busiest: []profiler.Span{
					{Label: "Step:ModeKeys.TRAIN", StartUS: 0, EndUS: 1500},
				},
			},
			nil,
		)
		h := NewProfileHandler(mockService)
		e := echo.New()
		c, rec := newJSONContext(
			e, http.MethodGet, "/api/training-jobs/clf-train-1/profile/framework", nil,
		)
		c.SetParamNames("training_job")
		c.SetParamValues("clf-train-1")

		// act
		err := h.GetFrameworkProfile(c)

		// assert
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Step:ModeKeys.TRAIN")
		mockService.AssertCalled(t, "FrameworkProfile", context.Background(), "clf-train-1", 10)
	})
}

func TestProfileHandler_GetMergedProfile(t *testing.T) {
	t.Run("trace start is parsed from query", func(t *testing.T) {
		// arrange
		traceStart := time.Date(2026, 8, 12, 9, 30, 0, 0, time.UTC)
		mockService := new(MockProfileService)
		mockService.On("MergedProfile", context.Background(), "clf-train-1", traceStart).
			Return(
				[]profiler.MergedEvent{
					{
						Source: profiler.SourceFramework,
						Label:  "Step:ModeKeys.TRAIN",
						Start:  traceStart,
						End:    traceStart.Add(time.Second),
					},
				},
				nil,
			)
		h := NewProfileHandler(mockService)
		e := echo.New()
		c, rec := newJSONContext(
			e,
			http.MethodGet,
			"/api/training-jobs/clf-train-1/profile/merged?trace_start=2026-08-12T09:30:00Z",
			nil,
		)
		c.SetParamNames("training_job")
		c.SetParamValues("clf-train-1")

		// act
		err := h.GetMergedProfile(c)

		// assert
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "framework")
	})
	t.Run("malformed trace start is rejected", func(t *testing.T) {
		// arrange
		mockService := new(MockProfileService)
		h := NewProfileHandler(mockService)
		e := echo.New()
		c, _ := newJSONContext(
			e,
			http.MethodGet,
			"/api/training-jobs/clf-train-1/profile/merged?trace_start=yesterday",
			nil,
		)
		c.SetParamNames("training_job")
		c.SetParamValues("clf-train-1")

		// act
		err := h.GetMergedProfile(c)

		// assert
		assert.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
		mockService.AssertNotCalled(t, "MergedProfile")
	})
}
