package store

import (
	"context"
	"database/sql"

	"github.com/georgysavva/scany/v2/sqlscan"
)

type PipelineSQLiteStore struct {
	rdb, rwdb *sql.DB
}

func NewPipelineSQLiteStore(rdb, rwdb *sql.DB) *PipelineSQLiteStore {
	return &PipelineSQLiteStore{rdb, rwdb}
}

func (store *PipelineSQLiteStore) CreatePipeline(
	ctx context.Context,
	name, description, spec string,
) (*Pipeline, error) {
	p := &Pipeline{
		Name:        name,
		Description: description,
		Spec:        spec,
	}
	query := `insert into pipelines (
		name,
		description,
		spec
	)
	values ($1, $2, $3)
	returning pipeline_id`
	if err := sqlscan.Get(
		ctx, store.rwdb, p, query,
		p.Name,
		p.Description,
		p.Spec,
	); err != nil {
		return nil, err
	}
	return p, nil
}

func (store *PipelineSQLiteStore) ReadPipelineByID(
	ctx context.Context,
	id int64,
) (*Pipeline, error) {
	p := &Pipeline{PipelineID: id}
	query := "select * from pipelines where pipeline_id = $1"
	if err := sqlscan.Get(ctx, store.rdb, p, query, p.PipelineID); err != nil {
		return nil, err
	}
	return p, nil
}

func (store *PipelineSQLiteStore) ReadPipelineByName(
	ctx context.Context,
	name string,
) (*Pipeline, error) {
	p := new(Pipeline)
	query := "select * from pipelines where name = $1"
	if err := sqlscan.Get(ctx, store.rdb, p, query, name); err != nil {
		return nil, err
	}
	return p, nil
}

func (store *PipelineSQLiteStore) UpdatePipeline(
	ctx context.Context,
	id int64,
	name, description, spec string,
) error {
	query := `update pipelines
	set name = $1,
		description = $2,
		spec = $3
	where pipeline_id = $4`
	_, err := store.rwdb.ExecContext(
		ctx, query,
		name,
		description,
		spec,
		id,
	)
	return err
}

func (store *PipelineSQLiteStore) UpdatePipelineRemoteARN(
	ctx context.Context,
	id int64,
	remoteARN *string,
) error {
	query := `update pipelines
	set remote_arn = $1
	where pipeline_id = $2`
	_, err := store.rwdb.ExecContext(ctx, query, remoteARN, id)
	return err
}

func (store *PipelineSQLiteStore) UpdatePipelineSchedule(
	ctx context.Context,
	id int64,
	schedule, scheduleParams *string,
) error {
	query := `update pipelines
	set schedule = $1,
		schedule_params = $2
	where pipeline_id = $3`
	_, err := store.rwdb.ExecContext(ctx, query, schedule, scheduleParams, id)
	return err
}

func (store *PipelineSQLiteStore) UpdatePipelineScheduleJobID(
	ctx context.Context,
	id int64,
	scheduleJobID *string,
) error {
	query := `update pipelines
	set schedule_job_id = $1
	where pipeline_id = $2`
	_, err := store.rwdb.ExecContext(ctx, query, scheduleJobID, id)
	return err
}

func (store *PipelineSQLiteStore) DeletePipeline(ctx context.Context, id int64) error {
	query := "delete from pipelines where pipeline_id = $1"
	_, err := store.rwdb.ExecContext(ctx, query, id)
	return err
}

func (store *PipelineSQLiteStore) ListPipelines(ctx context.Context) ([]*Pipeline, error) {
	query := "select * from pipelines order by name"
	pipelines := make([]*Pipeline, 0)
	err := sqlscan.Select(ctx, store.rdb, &pipelines, query)
	return pipelines, err
}

func (store *PipelineSQLiteStore) ListScheduledPipelines(
	ctx context.Context,
) ([]*Pipeline, error) {
	query := "select * from pipelines where schedule is not null"
	pipelines := make([]*Pipeline, 0)
	err := sqlscan.Select(ctx, store.rdb, &pipelines, query)
	return pipelines, err
}
