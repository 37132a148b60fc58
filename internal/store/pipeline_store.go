package store

import (
	"context"
)

type Pipeline struct {
	PipelineID  int64
	Name        string
	Description string
	// Spec is the YAML pipeline document.
	Spec string
	// RemoteARN is set once the pipeline has been registered with the
	// managed engine.
	RemoteARN *string
	// Schedule in cron syntax for recurring executions
	Schedule *string
	// ScheduleParams is a JSON object of parameter overrides for scheduled
	// executions.
	ScheduleParams *string
	// Scheduled job ID
	ScheduleJobID *string
}

type PipelineStore interface {
	CreatePipeline(context.Context, string, string, string) (*Pipeline, error)
	ReadPipelineByID(context.Context, int64) (*Pipeline, error)
	ReadPipelineByName(context.Context, string) (*Pipeline, error)
	UpdatePipeline(context.Context, int64, string, string, string) error
	UpdatePipelineRemoteARN(context.Context, int64, *string) error
	UpdatePipelineSchedule(context.Context, int64, *string, *string) error
	UpdatePipelineScheduleJobID(context.Context, int64, *string) error
	DeletePipeline(context.Context, int64) error
	ListPipelines(context.Context) ([]*Pipeline, error)
	ListScheduledPipelines(context.Context) ([]*Pipeline, error)
}
