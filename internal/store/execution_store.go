package store

import (
	"context"
	"time"
)

type ExecutionStatus string

const (
	StatusQueued    ExecutionStatus = "queued"
	StatusExecuting ExecutionStatus = "executing"
	StatusSucceeded ExecutionStatus = "succeeded"
	StatusFailed    ExecutionStatus = "failed"
	StatusStopped   ExecutionStatus = "stopped"
)

func (s ExecutionStatus) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusStopped:
		return true
	}
	return false
}

type Execution struct {
	ExecutionID         int64 `param:"execution_id"`
	ExecutionPipelineID int64
	// RemoteARN identifies the execution on the managed engine once started.
	RemoteARN *string
	// Parameters is a JSON object of parameter overrides.
	Parameters *string
	// Steps is a JSON snapshot of the engine's step states.
	Steps         *string
	Status        ExecutionStatus
	FailureReason *string
	CreatedOn     time.Time
	StartedOn     *time.Time
	EndedOn       *time.Time

	PipelineName string
}

type ExecutionStore interface {
	CreateExecution(context.Context, int64, *string) (*Execution, error)
	ReadExecutionByID(context.Context, int64) (*Execution, error)
	UpdateExecutionStarted(context.Context, int64, string, ExecutionStatus, *time.Time) error
	UpdateExecutionEnded(context.Context, int64, ExecutionStatus, *string, *time.Time) error
	UpdateExecutionSteps(context.Context, int64, string) error
	DeleteExecution(context.Context, int64) error
	ListPipelineExecutions(context.Context, int64) ([]Execution, error)
	ListLatestPipelineExecutions(context.Context, int64, int64) ([]Execution, error)
	ListPipelineExecutionsPaginated(context.Context, int64, int64, int64) ([]Execution, error)
	CountPipelineExecutions(context.Context, int64) (int64, error)
	ListUnfinishedExecutions(context.Context) ([]Execution, error)
}
