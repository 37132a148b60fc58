package store

import "context"

// DataSource is a host datasets are ingested from over SFTP before an
// execution uploads them to object storage.
type DataSource struct {
	DataSourceID           int64
	DataSourceCredentialID *int64
	Name                   string
	Hostname               string
	// RootPath is the remote directory datasets are read from.
	RootPath    string
	Description string
}

type DataSourceStore interface {
	CreateDataSource(context.Context, int64, string, string, string, string) (*DataSource, error)
	ReadDataSourceByID(context.Context, int64) (*DataSource, error)
	UpdateDataSource(context.Context, int64, int64, string, string, string, string) error
	DeleteDataSource(context.Context, int64) error
	ListDataSources(context.Context) ([]*DataSource, error)
}
