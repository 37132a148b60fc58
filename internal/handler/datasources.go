package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jhalttu/textpipe/internal/service"
	"github.com/jhalttu/textpipe/internal/settings"
	"github.com/jhalttu/textpipe/internal/store"
	"github.com/labstack/echo/v4"
)

type IngestServicer interface {
	IngestDataSource(
		ctx context.Context,
		dataSourceID int64,
		remotePath, bucket, keyPrefix string,
	) (*service.IngestResult, error)
}

func SetupDataSourceRoutes(
	g *echo.Group,
	dataSourceService service.DataSourceServicer,
	ingestService IngestServicer,
) {
	h := NewDataSourceHandler(dataSourceService, ingestService)
	dataSourcesGroup := g.Group("/api/data-sources", IsAuthenticated)
	dataSourcesGroup.GET("", h.GetDataSources)
	dataSourcesGroup.POST("", h.PostDataSource, RoleMiddleware(store.Admin))
	dataSourcesGroup.GET("/:data_source_id", h.GetDataSource)
	dataSourcesGroup.PATCH("/:data_source_id", h.PatchDataSource, RoleMiddleware(store.Admin))
	dataSourcesGroup.DELETE("/:data_source_id", h.DeleteDataSource, RoleMiddleware(store.Admin))
	dataSourcesGroup.POST("/:data_source_id/test-connection", h.PostTestDataSourceConnection)
	dataSourcesGroup.POST("/:data_source_id/ingest", h.PostIngestDataSource)
}

type DataSourceHandler struct {
	dataSourceService service.DataSourceServicer
	ingestService     IngestServicer
}

func NewDataSourceHandler(
	dataSourceService service.DataSourceServicer,
	ingestService IngestServicer,
) *DataSourceHandler {
	return &DataSourceHandler{dataSourceService, ingestService}
}

func (h *DataSourceHandler) GetDataSources(c echo.Context) error {
	sources, err := h.dataSourceService.ListDataSources(c.Request().Context())
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return newError(err,
			http.StatusInternalServerError,
			"something went wrong listing data sources",
		)
	}
	return c.JSON(http.StatusOK, sources)
}

func (h *DataSourceHandler) GetDataSource(c echo.Context) error {
	dp := new(DataSourceParams)
	if err := c.Bind(dp); err != nil {
		return newError(err, http.StatusBadRequest, "invalid data source data")
	}

	ds, err := h.dataSourceService.GetDataSourceByID(c.Request().Context(), dp.DataSourceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return newError(err, http.StatusNotFound, "data source was not found")
		}
		return newError(err,
			http.StatusInternalServerError,
			"something went wrong while getting data source data",
		)
	}

	return c.JSON(http.StatusOK, ds)
}

func (h *DataSourceHandler) PostDataSource(c echo.Context) error {
	dp := new(DataSourceParams)
	if err := c.Bind(dp); err != nil {
		return newError(err, http.StatusBadRequest, "invalid data source data")
	}

	dp.Name = strings.TrimSpace(dp.Name)
	dp.Hostname = strings.TrimSpace(dp.Hostname)
	dp.RootPath = strings.TrimSpace(dp.RootPath)
	dp.Description = strings.TrimSpace(dp.Description)

	ds, err := h.dataSourceService.CreateDataSource(
		c.Request().Context(),
		dp.DataSourceCredentialID,
		dp.Name,
		dp.Hostname,
		dp.RootPath,
		dp.Description,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return newError(
				err,
				http.StatusConflict,
				fmt.Sprintf("A data source with the name %s already exists", dp.Name),
			)
		}
		return newError(err, http.StatusInternalServerError, "unable to create data source")
	}

	return c.JSON(http.StatusCreated, ds)
}

func (h *DataSourceHandler) PatchDataSource(c echo.Context) error {
	dp := new(DataSourceParams)
	if err := c.Bind(dp); err != nil {
		return newError(err, http.StatusBadRequest, "invalid data source data")
	}

	if err := h.dataSourceService.UpdateDataSource(
		c.Request().Context(),
		dp.DataSourceID,
		dp.DataSourceCredentialID,
		dp.Name,
		dp.Hostname,
		dp.RootPath,
		dp.Description,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return newError(err, http.StatusNotFound, "data source was not found")
		}
		return newError(err,
			http.StatusInternalServerError,
			"something went wrong while updating data source",
		)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *DataSourceHandler) DeleteDataSource(c echo.Context) error {
	dp := new(DataSourceParams)
	if err := c.Bind(dp); err != nil || dp.DataSourceID == 0 {
		return newError(err, http.StatusBadRequest, "invalid data source ID")
	}

	ds, err := h.dataSourceService.GetDataSourceByID(c.Request().Context(), dp.DataSourceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return newError(err, http.StatusNotFound, "data source not found")
		}
		return newError(err, http.StatusInternalServerError, "unable to delete data source")
	}

	if err := h.dataSourceService.DeleteDataSource(
		c.Request().Context(), ds.DataSourceID,
	); err != nil {
		message := "unable to delete data source"
		if isForeignKeyConstraintError(err) {
			message = "data source is in use"
		}
		return newError(err, http.StatusConflict, message)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *DataSourceHandler) PostTestDataSourceConnection(c echo.Context) error {
	dp := new(DataSourceParams)
	if err := c.Bind(dp); err != nil || dp.DataSourceID == 0 {
		return newError(err, http.StatusBadRequest, "invalid data source ID")
	}

	if err := h.dataSourceService.TestDataSourceConnection(
		c.Request().Context(), dp.DataSourceID,
	); err != nil {
		return newError(err,
			http.StatusInternalServerError,
			"testing data source connection failed, check logs for details",
		)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "connection ok"})
}

func (h *DataSourceHandler) PostIngestDataSource(c echo.Context) error {
	ip := new(IngestParams)
	if err := c.Bind(ip); err != nil || ip.DataSourceID == 0 {
		return newError(err, http.StatusBadRequest, "invalid ingest data")
	}

	if ip.KeyPrefix == "" {
		ip.KeyPrefix = fmt.Sprintf("datasets/%d", ip.DataSourceID)
	}

	result, err := h.ingestService.IngestDataSource(
		c.Request().Context(),
		ip.DataSourceID,
		ip.RemotePath,
		settings.Settings.ArtifactBucket,
		ip.KeyPrefix,
	)
	if err != nil {
		return newError(err,
			http.StatusInternalServerError,
			"ingesting data source failed, check logs for details",
		)
	}

	return c.JSON(http.StatusOK, result)
}
