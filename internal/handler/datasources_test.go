package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/jhalttu/textpipe/internal/service"
	"github.com/jhalttu/textpipe/internal/settings"
	"github.com/jhalttu/textpipe/internal/store"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockDataSourceService struct {
	mock.Mock
}

func (m *MockDataSourceService) CreateDataSource(
	ctx context.Context,
	credentialID int64,
	name, hostname, rootPath, description string,
) (*store.DataSource, error) {
	args := m.Called(ctx, credentialID, name, hostname, rootPath, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.DataSource), args.Error(1)
}

func (m *MockDataSourceService) GetDataSourceByID(
	ctx context.Context,
	dataSourceID int64,
) (*store.DataSource, error) {
	args := m.Called(ctx, dataSourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.DataSource), args.Error(1)
}

func (m *MockDataSourceService) GetDataSourceAndCredentials(
	ctx context.Context,
	dataSourceID int64,
) (*store.DataSource, []*store.Credential, error) {
	args := m.Called(ctx, dataSourceID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*store.DataSource), args.Get(1).([]*store.Credential), args.Error(2)
}

func (m *MockDataSourceService) ListDataSources(
	ctx context.Context,
) ([]*store.DataSource, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*store.DataSource), args.Error(1)
}

func (m *MockDataSourceService) ListDataSourcesAndCredentials(
	ctx context.Context,
) ([]*store.DataSource, []*store.Credential, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]*store.DataSource), args.Get(1).([]*store.Credential), args.Error(2)
}

func (m *MockDataSourceService) UpdateDataSource(
	ctx context.Context,
	dataSourceID, credentialID int64,
	name, hostname, rootPath, description string,
) error {
	args := m.Called(ctx, dataSourceID, credentialID, name, hostname, rootPath, description)
	return args.Error(0)
}

func (m *MockDataSourceService) DeleteDataSource(ctx context.Context, dataSourceID int64) error {
	args := m.Called(ctx, dataSourceID)
	return args.Error(0)
}

func (m *MockDataSourceService) TestDataSourceConnection(
	ctx context.Context,
	dataSourceID int64,
) error {
	args := m.Called(ctx, dataSourceID)
	return args.Error(0)
}

type MockIngestService struct {
	mock.Mock
}

func (m *MockIngestService) IngestDataSource(
	ctx context.Context,
	dataSourceID int64,
	remotePath, bucket, keyPrefix string,
) (*service.IngestResult, error) {
	args := m.Called(ctx, dataSourceID, remotePath, bucket, keyPrefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.IngestResult), args.Error(1)
}

func TestDataSourceHandler_PostDataSource(t *testing.T) {
	t.Run("successfully create data source", func(t *testing.T) {
		// arrange
		mockService := new(MockDataSourceService)
		mockService.On(
			"CreateDataSource",
			context.Background(),
			int64(2),
			"corpus-server", "data.example.com", "/srv/corpora", "labeled ticket exports",
		).Return(
			&store.DataSource{DataSourceID: 1, Name: "corpus-server"}, nil,
		)
		h := NewDataSourceHandler(mockService, nil)
		e := echo.New()
		c, rec := newJSONContext(e, http.MethodPost, "/api/data-sources", echo.Map{
			"data_source_credential_id": 2,
			"name":                      " corpus-server ",
			"hostname":                  "data.example.com",
			"root_path":                 "/srv/corpora ",
			"description":               "labeled ticket exports",
		})

		// act
		err := h.PostDataSource(c)

		// assert
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), "corpus-server")
	})
	t.Run("duplicate name returns conflict", func(t *testing.T) {
		// arrange
		mockService := new(MockDataSourceService)
		mockService.On(
			"CreateDataSource",
			context.Background(),
			int64(2),
			"corpus-server", "data.example.com", "/srv/corpora", "labeled ticket exports",
		).Return(nil, uniqueConstraintError)
		h := NewDataSourceHandler(mockService, nil)
		e := echo.New()
		c, _ := newJSONContext(e, http.MethodPost, "/api/data-sources", echo.Map{
			"data_source_credential_id": 2,
			"name":                      "corpus-server",
			"hostname":                  "data.example.com",
			"root_path":                 "/srv/corpora",
			"description":               "labeled ticket exports",
		})

		// act
		err := h.PostDataSource(c)

		// assert
		assert.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusConflict, he.Code)
	})
}

func TestDataSourceHandler_DeleteDataSource(t *testing.T) {
	t.Run("data source in use returns conflict", func(t *testing.T) {
		// arrange
		mockService := new(MockDataSourceService)
		mockService.On("GetDataSourceByID", context.Background(), int64(1)).Return(
			&store.DataSource{DataSourceID: 1, Name: "corpus-server"}, nil,
		)
		mockService.On("DeleteDataSource", context.Background(), int64(1)).
			Return(foreignKeyConstraintError)
		h := NewDataSourceHandler(mockService, nil)
		e := echo.New()
		c, _ := newJSONContext(e, http.MethodDelete, "/api/data-sources/1", nil)
		c.SetParamNames("data_source_id")
		c.SetParamValues("1")

		// act
		err := h.DeleteDataSource(c)

		// assert
		assert.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusConflict, he.Code)
		assert.Equal(t, "data source is in use", he.Message)
	})
}

func TestDataSourceHandler_PostTestDataSourceConnection(t *testing.T) {
	t.Run("successful connection test", func(t *testing.T) {
		// arrange
		mockService := new(MockDataSourceService)
		mockService.On("TestDataSourceConnection", context.Background(), int64(1)).Return(nil)
		h := NewDataSourceHandler(mockService, nil)
		e := echo.New()
		c, rec := newJSONContext(
			e, http.MethodPost, "/api/data-sources/1/test-connection", nil,
		)
		c.SetParamNames("data_source_id")
		c.SetParamValues("1")

		// act
		err := h.PostTestDataSourceConnection(c)

		// assert
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "connection ok")
	})
}

func TestDataSourceHandler_PostIngestDataSource(t *testing.T) {
	t.Run("missing key prefix defaults to dataset folder", func(t *testing.T) {
		// arrange
		settings.Settings = settings.NewSettings()
		settings.Settings.ArtifactBucket = "ml-artifacts"
		mockIngest := new(MockIngestService)
		mockIngest.On(
			"IngestDataSource",
			context.Background(),
			int64(1),
			"tickets/2026-08", "ml-artifacts", "datasets/1",
		).Return(
			&service.IngestResult{
				DataSource: "corpus-server",
				Bucket:     "ml-artifacts",
				KeyPrefix:  "datasets/1",
				Keys:       []string{"datasets/1/tickets/2026-08/train.csv"},
			},
			nil,
		)
		h := NewDataSourceHandler(nil, mockIngest)
		e := echo.New()
		c, rec := newJSONContext(e, http.MethodPost, "/api/data-sources/1/ingest", echo.Map{
			"remote_path": "tickets/2026-08",
		})
		c.SetParamNames("data_source_id")
		c.SetParamValues("1")

		// act
		err := h.PostIngestDataSource(c)

		// assert
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "datasets/1/tickets/2026-08/train.csv")
	})
}
