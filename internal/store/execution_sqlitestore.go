package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/jhalttu/textpipe/internal"
)

type ExecutionSQLiteStore struct {
	rdb, rwdb *sql.DB
}

func NewExecutionSQLiteStore(rdb, rwdb *sql.DB) *ExecutionSQLiteStore {
	return &ExecutionSQLiteStore{rdb, rwdb}
}

func (store *ExecutionSQLiteStore) CreateExecution(
	ctx context.Context,
	pipelineID int64,
	parameters *string,
) (*Execution, error) {
	e := &Execution{
		ExecutionPipelineID: pipelineID,
		Parameters:          parameters,
		Status:              StatusQueued,
	}
	query := `insert into executions (
		execution_pipeline_id,
		parameters,
		status
	)
	values ($1, $2, $3)
	returning execution_id, created_on`
	if err := sqlscan.Get(
		ctx, store.rwdb, e, query,
		e.ExecutionPipelineID, e.Parameters, e.Status,
	); err != nil {
		return nil, err
	}
	return e, nil
}

func (store *ExecutionSQLiteStore) ReadExecutionByID(
	ctx context.Context,
	id int64,
) (*Execution, error) {
	e := &Execution{ExecutionID: id}
	query := "select * from executions where execution_id = $1"
	if err := sqlscan.Get(ctx, store.rdb, e, query, e.ExecutionID); err != nil {
		return nil, err
	}
	return e, nil
}

func (store *ExecutionSQLiteStore) UpdateExecutionStarted(
	ctx context.Context,
	id int64,
	remoteARN string,
	status ExecutionStatus,
	startedOn *time.Time,
) error {
	query := `update executions
	set remote_arn = $1,
		status = $2,
		started_on = $3
	where execution_id = $4`
	_, err := store.rwdb.ExecContext(
		ctx, query,
		remoteARN,
		status,
		startedOn.Format(internal.DBTimestampLayout),
		id,
	)
	return err
}

func (store *ExecutionSQLiteStore) UpdateExecutionEnded(
	ctx context.Context,
	id int64,
	status ExecutionStatus,
	failureReason *string,
	endedOn *time.Time,
) error {
	query := `update executions
	set status = $1,
		failure_reason = $2,
		ended_on = $3
	where execution_id = $4`
	_, err := store.rwdb.ExecContext(
		ctx, query,
		status,
		failureReason,
		endedOn.Format(internal.DBTimestampLayout),
		id,
	)
	return err
}

func (store *ExecutionSQLiteStore) UpdateExecutionSteps(
	ctx context.Context,
	id int64,
	steps string,
) error {
	query := `update executions
	set steps = $1
	where execution_id = $2`
	_, err := store.rwdb.ExecContext(ctx, query, steps, id)
	return err
}

func (store *ExecutionSQLiteStore) DeleteExecution(ctx context.Context, id int64) error {
	query := "delete from executions where execution_id = $1"
	_, err := store.rwdb.ExecContext(ctx, query, id)
	return err
}

func (store *ExecutionSQLiteStore) ListPipelineExecutions(
	ctx context.Context,
	pipelineID int64,
) ([]Execution, error) {
	query := `select * from executions
	where execution_pipeline_id = $1`
	executions := make([]Execution, 0)
	err := sqlscan.Select(ctx, store.rdb, &executions, query, pipelineID)
	return executions, err
}

func (store *ExecutionSQLiteStore) ListLatestPipelineExecutions(
	ctx context.Context,
	pipelineID, limit int64,
) ([]Execution, error) {
	query := `select * from executions
	where execution_pipeline_id = $1
	order by created_on desc limit $2`
	executions := make([]Execution, 0)
	err := sqlscan.Select(ctx, store.rdb, &executions, query, pipelineID, limit)
	return executions, err
}

func (store *ExecutionSQLiteStore) ListPipelineExecutionsPaginated(
	ctx context.Context,
	pipelineID, limit, offset int64,
) ([]Execution, error) {
	query := `select
		e.execution_id,
		e.execution_pipeline_id,
		e.remote_arn,
		e.status,
		e.failure_reason,
		e.created_on,
		e.started_on,
		e.ended_on,
		p.name as pipeline_name
	from executions e
	join pipelines p
	on e.execution_pipeline_id = p.pipeline_id
	where execution_pipeline_id = $1
	order by created_on desc limit $2 offset $3`
	executions := make([]Execution, 0)
	err := sqlscan.Select(ctx, store.rdb, &executions, query, pipelineID, limit, offset)
	return executions, err
}

func (store *ExecutionSQLiteStore) CountPipelineExecutions(
	ctx context.Context,
	pipelineID int64,
) (int64, error) {
	var count int64
	query := `select count(*) from executions where execution_pipeline_id = $1`
	err := sqlscan.Get(ctx, store.rdb, &count, query, pipelineID)
	return count, err
}

func (store *ExecutionSQLiteStore) ListUnfinishedExecutions(
	ctx context.Context,
) ([]Execution, error) {
	query := `select * from executions
	where status in ($1, $2)
	order by created_on`
	executions := make([]Execution, 0)
	err := sqlscan.Select(ctx, store.rdb, &executions, query, StatusQueued, StatusExecuting)
	return executions, err
}
