package store

import (
	"context"
	"database/sql"

	"github.com/georgysavva/scany/v2/sqlscan"
)

type DataSourceSQLiteStore struct {
	rdb, rwdb *sql.DB
}

func NewDataSourceSQLiteStore(rdb, rwdb *sql.DB) *DataSourceSQLiteStore {
	return &DataSourceSQLiteStore{rdb, rwdb}
}

func (store *DataSourceSQLiteStore) CreateDataSource(
	ctx context.Context,
	credentialID int64,
	name, hostname, rootPath, description string,
) (*DataSource, error) {
	ds := &DataSource{
		DataSourceCredentialID: &credentialID,
		Name:                   name,
		Hostname:               hostname,
		RootPath:               rootPath,
		Description:            description,
	}
	query := `insert into data_sources (
		data_source_credential_id,
		name,
		hostname,
		root_path,
		description
	)
	values ($1, $2, $3, $4, $5)
	returning data_source_id`
	err := sqlscan.Get(
		ctx, store.rwdb, ds, query,
		ds.DataSourceCredentialID,
		ds.Name,
		ds.Hostname,
		ds.RootPath,
		ds.Description,
	)
	return ds, err
}

func (store *DataSourceSQLiteStore) ReadDataSourceByID(
	ctx context.Context,
	id int64,
) (*DataSource, error) {
	ds := &DataSource{DataSourceID: id}
	query := `select * from data_sources where data_source_id = $1`
	err := sqlscan.Get(ctx, store.rdb, ds, query, ds.DataSourceID)
	if err != nil {
		return nil, err
	}
	return ds, nil
}

func (store *DataSourceSQLiteStore) UpdateDataSource(
	ctx context.Context,
	dataSourceID, credentialID int64,
	name, hostname, rootPath, description string,
) error {
	query := `update data_sources
	set data_source_credential_id = $1,
		name = $2,
		hostname = $3,
		root_path = $4,
		description = $5
	where data_source_id = $6`
	_, err := store.rwdb.ExecContext(
		ctx, query,
		credentialID,
		name,
		hostname,
		rootPath,
		description,
		dataSourceID,
	)
	return err
}

func (store *DataSourceSQLiteStore) DeleteDataSource(ctx context.Context, id int64) error {
	query := "delete from data_sources where data_source_id = $1"
	_, err := store.rwdb.ExecContext(ctx, query, id)
	return err
}

func (store *DataSourceSQLiteStore) ListDataSources(ctx context.Context) ([]*DataSource, error) {
	query := `select * from data_sources`
	sources := make([]*DataSource, 0)
	err := sqlscan.Select(ctx, store.rdb, &sources, query)
	return sources, err
}
