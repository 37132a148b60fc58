package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhalttu/textpipe/internal"
	"github.com/jhalttu/textpipe/internal/service"
	"github.com/jhalttu/textpipe/internal/store"
	"github.com/labstack/echo/v4"
)

const maxExecutionsPerPage int64 = 10

func SetupPipelineRoutes(g *echo.Group, pipelineService PipelineServicer) {
	h := NewPipelineHandler(pipelineService)
	g.POST(
		"/api/pipelines/:pipeline_id/webhook-trigger",
		h.PostExecutionWebhookTrigger,
	)
	pipelinesGroup := g.Group("/api/pipelines", IsAuthenticated)
	pipelinesGroup.GET("", h.GetPipelines)
	pipelinesGroup.POST("", h.PostPipeline)
	pipelinesGroup.GET("/:pipeline_id", h.GetPipeline)
	pipelinesGroup.PATCH("/:pipeline_id", h.PatchPipeline)
	pipelinesGroup.DELETE("/:pipeline_id", h.DeletePipeline)
	pipelinesGroup.GET("/:pipeline_id/definition", h.GetPipelineDefinition)
	pipelinesGroup.POST("/:pipeline_id/register", h.PostRegisterPipeline)
	pipelinesGroup.PATCH("/:pipeline_id/schedule", h.PatchPipelineSchedule)
	pipelinesGroup.GET("/:pipeline_id/executions", h.GetExecutions)
	pipelinesGroup.POST("/:pipeline_id/executions", h.PostExecution)
	pipelinesGroup.GET("/:pipeline_id/executions/latest", h.GetLatestExecutions)
	pipelinesGroup.GET("/:pipeline_id/executions/:execution_id", h.GetExecution)
	pipelinesGroup.GET("/:pipeline_id/executions/:execution_id/events", h.GetExecutionEvents)
	pipelinesGroup.POST("/:pipeline_id/executions/:execution_id/cancel", h.PostCancelExecution)
}

type PipelineWriter interface {
	CreatePipeline(
		ctx context.Context,
		name, description, spec string,
	) (*store.Pipeline, error)
	UpdatePipeline(
		ctx context.Context,
		pipelineID int64,
		name, description, spec string,
	) error
	UpdatePipelineSchedule(ctx context.Context, id int64, schedule, scheduleParams *string) error
	DeletePipeline(ctx context.Context, pipelineID int64) error
}

type PipelineReader interface {
	GetPipelineByID(ctx context.Context, pipelineID int64) (*store.Pipeline, error)
	ListPipelines(ctx context.Context) ([]*store.Pipeline, error)
	CompileDefinition(p *store.Pipeline) ([]byte, error)
}

type PipelineRegistrar interface {
	RegisterPipeline(ctx context.Context, pipelineID int64) (*store.Pipeline, error)
}

type ExecutionServicer interface {
	TriggerExecution(
		ctx context.Context,
		pipelineID int64,
		params map[string]string,
	) (*store.Execution, error)
	CancelExecution(pipelineID, executionID int64) error
	GetExecutionByID(ctx context.Context, executionID int64) (*store.Execution, error)
	ListLatestPipelineExecutions(
		ctx context.Context,
		pipelineID, limit int64,
	) ([]store.Execution, error)
	ListPipelineExecutionsPaginated(
		ctx context.Context,
		pipelineID, limit, offset int64,
	) ([]store.Execution, error)
	GetPipelineExecutionCount(ctx context.Context, pipelineID int64) (int64, error)
	GetPipelineExecutionQueue(id int64) (*service.ExecutionQueue, bool)
	GetAPIKeyByValue(ctx context.Context, value string) (*store.APIKey, error)
}

type PipelineServicer interface {
	PipelineWriter
	PipelineReader
	PipelineRegistrar
	ExecutionServicer
}

type PipelineHandler struct {
	pipelineService PipelineServicer
}

func NewPipelineHandler(pipelineService PipelineServicer) *PipelineHandler {
	return &PipelineHandler{pipelineService: pipelineService}
}

func (h *PipelineHandler) GetPipelines(c echo.Context) error {
	pipelines, err := h.pipelineService.ListPipelines(c.Request().Context())
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return newError(err,
			http.StatusInternalServerError, "something went wrong listing pipelines",
		)
	}
	return c.JSON(http.StatusOK, pipelines)
}

func (h *PipelineHandler) PostPipeline(c echo.Context) error {
	pp := new(PipelineParams)
	if err := c.Bind(pp); err != nil {
		return newError(err, http.StatusBadRequest, "invalid pipeline data")
	}

	pp.Name = strings.TrimSpace(pp.Name)
	pp.Description = strings.TrimSpace(pp.Description)

	p, err := h.pipelineService.CreatePipeline(
		c.Request().Context(),
		pp.Name,
		pp.Description,
		pp.Spec,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return newError(err,
				http.StatusConflict,
				fmt.Sprintf("A pipeline with the name %s already exists", pp.Name),
			)
		}
		return newError(err, http.StatusBadRequest, "unable to create pipeline")
	}

	return c.JSON(http.StatusCreated, p)
}

func (h *PipelineHandler) GetPipeline(c echo.Context) error {
	pp := new(PipelineParams)
	if err := c.Bind(pp); err != nil {
		return newError(err, http.StatusBadRequest, "invalid pipeline data")
	}

	p, err := h.pipelineService.GetPipelineByID(c.Request().Context(), pp.PipelineID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return newError(err, http.StatusNotFound, "pipeline not found")
		}
		return newError(err,
			http.StatusInternalServerError,
			"something went wrong getting pipeline data",
		)
	}

	return c.JSON(http.StatusOK, p)
}

func (h *PipelineHandler) PatchPipeline(c echo.Context) error {
	pp := new(PipelineParams)
	if err := c.Bind(pp); err != nil {
		return newError(err, http.StatusBadRequest, "invalid pipeline data")
	}

	pp.Name = strings.TrimSpace(pp.Name)
	pp.Description = strings.TrimSpace(pp.Description)

	err := h.pipelineService.UpdatePipeline(
		c.Request().Context(),
		pp.PipelineID,
		pp.Name,
		pp.Description,
		pp.Spec,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return newError(err, http.StatusNotFound, "pipeline not found")
		}
		return newError(err, http.StatusBadRequest, "unable to update pipeline")
	}

	return c.NoContent(http.StatusNoContent)
}

// GetPipelineDefinition compiles the stored document without registering it,
// so the caller can inspect the definition the engine would receive.
func (h *PipelineHandler) GetPipelineDefinition(c echo.Context) error {
	pp := new(PipelineParams)
	if err := c.Bind(pp); err != nil {
		return newError(err, http.StatusBadRequest, "invalid pipeline data")
	}

	p, err := h.pipelineService.GetPipelineByID(c.Request().Context(), pp.PipelineID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return newError(err, http.StatusNotFound, "pipeline not found")
		}
		return newError(err, http.StatusInternalServerError, "unable to read pipeline data")
	}

	definition, err := h.pipelineService.CompileDefinition(p)
	if err != nil {
		return newError(err, http.StatusBadRequest, "unable to compile pipeline definition")
	}

	return c.JSONBlob(http.StatusOK, definition)
}

func (h *PipelineHandler) PostRegisterPipeline(c echo.Context) error {
	pp := new(PipelineParams)
	if err := c.Bind(pp); err != nil {
		return newError(err, http.StatusBadRequest, "invalid pipeline data")
	}

	p, err := h.pipelineService.RegisterPipeline(c.Request().Context(), pp.PipelineID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return newError(err, http.StatusNotFound, "pipeline not found")
		}
		return newError(err, http.StatusInternalServerError, "unable to register pipeline")
	}

	return c.JSON(http.StatusOK, p)
}

func (h *PipelineHandler) PatchPipelineSchedule(c echo.Context) error {
	pp := new(PipelineParams)
	if err := c.Bind(pp); err != nil {
		return newError(err, http.StatusBadRequest, "invalid pipeline data")
	}

	if err := h.pipelineService.UpdatePipelineSchedule(
		c.Request().Context(), pp.PipelineID, pp.Schedule, pp.ScheduleParams,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return newError(err, http.StatusNotFound, "invalid pipeline id")
		}
		return newError(
			err, http.StatusInternalServerError, "unable to update pipeline schedule",
		)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *PipelineHandler) DeletePipeline(c echo.Context) error {
	pp := new(PipelineParams)
	if err := c.Bind(pp); err != nil {
		return newError(err, http.StatusBadRequest, "invalid pipeline data")
	}

	if pp.PipelineID == 0 {
		return newError(errors.New("pipeline id was zero"),
			http.StatusBadRequest, "invalid pipeline id",
		)
	}

	if err := h.pipelineService.DeletePipeline(
		c.Request().Context(), pp.PipelineID,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return newError(err, http.StatusNotFound, "pipeline not found")
		}
		return newError(err, http.StatusInternalServerError, "unable to delete pipeline")
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *PipelineHandler) PostExecution(c echo.Context) error {
	ep := new(ExecutionParams)
	if err := c.Bind(ep); err != nil {
		return newError(err, http.StatusBadRequest, "invalid execution data")
	}

	e, err := h.pipelineService.TriggerExecution(
		c.Request().Context(), ep.PipelineID, ep.Parameters,
	)
	if err != nil {
		var full *service.ErrExecutionQueueFull
		if errors.As(err, &full) {
			return newError(err, http.StatusTooManyRequests, "execution queue is full")
		}
		if errors.Is(err, sql.ErrNoRows) {
			return newError(err, http.StatusNotFound, "pipeline not found")
		}
		return newError(err, http.StatusBadRequest, "unable to start execution")
	}

	return c.JSON(http.StatusCreated, e)
}

func (h *PipelineHandler) PostExecutionWebhookTrigger(c echo.Context) error {
	apiKeyValue := c.Request().Header.Get(internal.WebhookTriggerKeyHeader)
	ep := new(ExecutionParams)
	if err := c.Bind(ep); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid execution data")
	}

	_, err := h.pipelineService.GetAPIKeyByValue(c.Request().Context(), apiKeyValue)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid api key")
	}

	// A redelivered webhook carries the same delivery ID and is dropped.
	deliveryID := c.Request().Header.Get(internal.WebhookDeliveryHeader)
	if deliveryID != "" && store.Guard != nil {
		seen, err := store.Guard.Seen(deliveryID, time.Now().UTC().Add(24*time.Hour))
		if err != nil {
			return echo.NewHTTPError(
				http.StatusInternalServerError, "unable to check webhook delivery",
			).WithInternal(err)
		}
		if seen {
			return c.NoContent(http.StatusOK)
		}
	}

	e, err := h.pipelineService.TriggerExecution(
		c.Request().Context(), ep.PipelineID, ep.Parameters,
	)
	if err != nil {
		var full *service.ErrExecutionQueueFull
		if errors.As(err, &full) {
			return echo.NewHTTPError(
				http.StatusTooManyRequests, "execution queue is full",
			).WithInternal(err)
		}
		return echo.NewHTTPError(
			http.StatusBadRequest, "unable to start execution",
		).WithInternal(err)
	}

	return c.JSON(http.StatusCreated, e)
}

func (h *PipelineHandler) GetExecution(c echo.Context) error {
	ep := new(ExecutionParams)
	if err := c.Bind(ep); err != nil {
		return newError(err, http.StatusBadRequest, "invalid execution data")
	}

	e, err := h.pipelineService.GetExecutionByID(c.Request().Context(), ep.ExecutionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return newError(err, http.StatusNotFound, "execution not found")
		}
		return newError(err, http.StatusInternalServerError, "unable to read execution data")
	}

	return c.JSON(http.StatusOK, e)
}

func (h *PipelineHandler) GetLatestExecutions(c echo.Context) error {
	ep := new(ExecutionParams)
	if err := c.Bind(ep); err != nil {
		return newError(err, http.StatusBadRequest, "invalid pipeline data")
	}

	executions, err := h.pipelineService.ListLatestPipelineExecutions(
		c.Request().Context(), ep.PipelineID, 3,
	)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return newError(err, http.StatusInternalServerError, "unable to list executions")
	}

	return c.JSON(http.StatusOK, executions)
}

func (h *PipelineHandler) GetExecutions(c echo.Context) error {
	lep := new(ListExecutionsParams)
	if err := c.Bind(lep); err != nil {
		return newError(err, http.StatusBadRequest, "invalid request data")
	}

	count, err := h.pipelineService.GetPipelineExecutionCount(
		c.Request().Context(), lep.PipelineID,
	)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return newError(err, http.StatusInternalServerError, "unable to count executions")
	}

	page := max(lep.Page, 1)
	executions, err := h.pipelineService.ListPipelineExecutionsPaginated(
		c.Request().Context(),
		lep.PipelineID,
		maxExecutionsPerPage,
		(page-1)*maxExecutionsPerPage,
	)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return newError(err, http.StatusInternalServerError, "error listing executions")
	}

	maxPages := count / maxExecutionsPerPage
	if count%maxExecutionsPerPage != 0 {
		maxPages++
	}

	return c.JSON(http.StatusOK, echo.Map{
		"executions": executions,
		"page":       page,
		"max_pages":  maxPages,
		"count":      count,
	})
}

// GetExecutionEvents streams status snapshots of one execution as
// server-sent events until the client disconnects.
func (h *PipelineHandler) GetExecutionEvents(c echo.Context) error {
	ep := new(ExecutionParams)
	if err := c.Bind(ep); err != nil {
		return newError(err, http.StatusBadRequest, "invalid pipeline or execution ID")
	}

	w := c.Response()
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	eq, ok := h.pipelineService.GetPipelineExecutionQueue(ep.PipelineID)
	if !ok {
		return nil
	}

	id := uuid.NewString()
	eq.StatusSSEClients.AddClient(id)
	defer eq.StatusSSEClients.RemoveClient(id)

	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case e := <-eq.StatusSSEClients.GetClient(id):
			if e.ExecutionID != ep.ExecutionID {
				continue
			}
			if err := writeSSEEvent(w, e.ExecutionID, "status", e); err != nil {
				log.Println("err writing execution event:", err)
				continue
			}
			w.Flush()
		default:
			time.Sleep(3 * time.Second)
		}
	}
}

func (h *PipelineHandler) PostCancelExecution(c echo.Context) error {
	ep := new(ExecutionParams)
	if err := c.Bind(ep); err != nil {
		return newError(err, http.StatusBadRequest, "invalid pipeline or execution ID")
	}

	if err := h.pipelineService.CancelExecution(ep.PipelineID, ep.ExecutionID); err != nil {
		return newError(err, http.StatusNotFound, "execution queue not found")
	}

	return c.JSON(http.StatusAccepted, echo.Map{"message": "cancelling execution"})
}
