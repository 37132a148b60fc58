package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/jhalttu/textpipe/internal"
	"github.com/jhalttu/textpipe/internal/pipeline"
	"github.com/jhalttu/textpipe/internal/settings"
	"github.com/jhalttu/textpipe/internal/store"
	"github.com/jhalttu/textpipe/internal/util"
)

type PipelineWriter interface {
	CreatePipeline(context.Context, string, string, string) (*store.Pipeline, error)
	UpdatePipeline(context.Context, int64, string, string, string) error
	UpdatePipelineRemoteARN(context.Context, int64, *string) error
	UpdatePipelineSchedule(context.Context, int64, *string, *string) error
	UpdatePipelineScheduleJobID(context.Context, int64, *string) error
	DeletePipeline(context.Context, int64) error
}

type PipelineReader interface {
	ReadPipelineByID(context.Context, int64) (*store.Pipeline, error)
	ReadPipelineByName(context.Context, string) (*store.Pipeline, error)
	ListPipelines(context.Context) ([]*store.Pipeline, error)
	ListScheduledPipelines(context.Context) ([]*store.Pipeline, error)
}

type PipelineStore interface {
	PipelineWriter
	PipelineReader
}

type ExecutionWriter interface {
	CreateExecution(context.Context, int64, *string) (*store.Execution, error)
	UpdateExecutionStarted(context.Context, int64, string, store.ExecutionStatus, *time.Time) error
	UpdateExecutionEnded(context.Context, int64, store.ExecutionStatus, *string, *time.Time) error
	UpdateExecutionSteps(context.Context, int64, string) error
	DeleteExecution(context.Context, int64) error
}

type ExecutionReader interface {
	ReadExecutionByID(context.Context, int64) (*store.Execution, error)
	ListPipelineExecutions(context.Context, int64) ([]store.Execution, error)
	ListLatestPipelineExecutions(context.Context, int64, int64) ([]store.Execution, error)
	ListPipelineExecutionsPaginated(context.Context, int64, int64, int64) ([]store.Execution, error)
	CountPipelineExecutions(context.Context, int64) (int64, error)
	ListUnfinishedExecutions(context.Context) ([]store.Execution, error)
}

type ExecutionStore interface {
	ExecutionWriter
	ExecutionReader
}

// PipelineEngine is the slice of the managed pipeline service used to
// register pipeline definitions, plus the execution operations the queues
// delegate to.
type PipelineEngine interface {
	ExecutionEngine
	UpsertPipeline(ctx context.Context, name, roleARN string, definition []byte) (string, error)
	DeletePipeline(ctx context.Context, name string) error
}

type APIKeyStore interface {
	ReadAPIKeyByID(context.Context, int64) (*store.APIKey, error)
	ReadAPIKeyByValue(context.Context, string) (*store.APIKey, error)
	ListAPIKeys(context.Context) ([]*store.APIKey, error)
}

type PipelineService struct {
	pipelineStore  PipelineStore
	executionStore ExecutionStore
	apiKeyStore    APIKeyStore
	engine         PipelineEngine
	scheduler      gocron.Scheduler

	mu     sync.Mutex
	queues map[int64]*ExecutionQueue
}

func NewPipelineService(
	pipelineStore PipelineStore,
	executionStore ExecutionStore,
	apiKeyStore APIKeyStore,
	engine PipelineEngine,
	scheduler gocron.Scheduler,
) *PipelineService {
	return &PipelineService{
		pipelineStore:  pipelineStore,
		executionStore: executionStore,
		apiKeyStore:    apiKeyStore,
		engine:         engine,
		scheduler:      scheduler,
		queues:         make(map[int64]*ExecutionQueue),
	}
}

// InitializeExecutionQueues builds a queue per pipeline and picks up
// executions that were queued or in flight when the server last stopped.
func (s *PipelineService) InitializeExecutionQueues(ctx context.Context) error {
	pipelines, err := s.ListPipelines(ctx)
	if err != nil {
		return err
	}

	s.AddExecutionQueues(pipelines, internal.Config.QueueSize)
	s.StartExecutionQueues()

	unfinished, err := s.executionStore.ListUnfinishedExecutions(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	for i := range unfinished {
		e := unfinished[i]
		eq, ok := s.GetPipelineExecutionQueue(e.ExecutionPipelineID)
		if !ok {
			continue
		}
		switch e.Status {
		case store.StatusQueued:
			if err := eq.Enqueue(&e); err != nil {
				log.Println("err requeueing execution:", err)
			}
		case store.StatusExecuting:
			go eq.Watch(&e)
		}
	}
	return nil
}

func (s *PipelineService) CreatePipeline(
	ctx context.Context,
	name, description, spec string,
) (*store.Pipeline, error) {
	if _, err := pipeline.ParseSpec([]byte(spec)); err != nil {
		return nil, err
	}
	p, err := s.pipelineStore.CreatePipeline(ctx, name, description, spec)
	if err != nil {
		return nil, err
	}
	s.AddExecutionQueue(p.PipelineID, p.Name, internal.Config.QueueSize)
	if err := s.StartExecutionQueue(p.PipelineID); err != nil {
		return p, err
	}
	return p, nil
}

func (s *PipelineService) GetPipelineByID(
	ctx context.Context,
	pipelineID int64,
) (*store.Pipeline, error) {
	return s.pipelineStore.ReadPipelineByID(ctx, pipelineID)
}

func (s *PipelineService) GetPipelineByName(
	ctx context.Context,
	name string,
) (*store.Pipeline, error) {
	return s.pipelineStore.ReadPipelineByName(ctx, name)
}

func (s *PipelineService) ListPipelines(
	ctx context.Context,
) ([]*store.Pipeline, error) {
	pipelines, err := s.pipelineStore.ListPipelines(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return pipelines, nil
}

func (s *PipelineService) ListScheduledPipelines(
	ctx context.Context,
) ([]*store.Pipeline, error) {
	pipelines, err := s.pipelineStore.ListScheduledPipelines(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return pipelines, nil
}

func (s *PipelineService) UpdatePipeline(
	ctx context.Context,
	pipelineID int64,
	name, description, spec string,
) error {
	if _, err := pipeline.ParseSpec([]byte(spec)); err != nil {
		return err
	}
	return s.pipelineStore.UpdatePipeline(ctx, pipelineID, name, description, spec)
}

func (s *PipelineService) DeletePipeline(
	ctx context.Context, pipelineID int64,
) error {
	p, err := s.pipelineStore.ReadPipelineByID(ctx, pipelineID)
	if err != nil {
		return err
	}
	if p.RemoteARN != nil {
		if err := s.engine.DeletePipeline(ctx, p.Name); err != nil {
			return err
		}
	}
	if err := s.pipelineStore.DeletePipeline(ctx, pipelineID); err != nil {
		return err
	}
	s.RemoveExecutionQueue(pipelineID)
	return nil
}

// CompileDefinition turns the pipeline's YAML document into the definition
// JSON the managed engine accepts.
func (s *PipelineService) CompileDefinition(p *store.Pipeline) ([]byte, error) {
	parsed, err := pipeline.ParseSpec([]byte(p.Spec))
	if err != nil {
		return nil, err
	}
	return parsed.Definition(pipeline.CompileOptions{
		RoleARN: settings.Settings.PipelineRoleARN,
	})
}

// RegisterPipeline compiles the stored document and creates or updates the
// pipeline on the managed engine.
func (s *PipelineService) RegisterPipeline(
	ctx context.Context,
	pipelineID int64,
) (*store.Pipeline, error) {
	p, err := s.pipelineStore.ReadPipelineByID(ctx, pipelineID)
	if err != nil {
		return nil, err
	}
	definition, err := s.CompileDefinition(p)
	if err != nil {
		return nil, err
	}
	arn, err := s.engine.UpsertPipeline(
		ctx, p.Name, settings.Settings.PipelineRoleARN, definition,
	)
	if err != nil {
		return nil, err
	}
	if err := s.pipelineStore.UpdatePipelineRemoteARN(
		ctx, p.PipelineID, util.AsPtr(arn),
	); err != nil {
		return nil, err
	}
	p.RemoteARN = util.AsPtr(arn)
	return p, nil
}

// TriggerExecution records a new execution and hands it to the pipeline's
// queue. The pipeline must have been registered with the engine first.
func (s *PipelineService) TriggerExecution(
	ctx context.Context,
	pipelineID int64,
	params map[string]string,
) (*store.Execution, error) {
	p, err := s.pipelineStore.ReadPipelineByID(ctx, pipelineID)
	if err != nil {
		return nil, err
	}
	if p.RemoteARN == nil {
		return nil, fmt.Errorf("pipeline %s is not registered", p.Name)
	}

	var parameters *string
	if len(params) > 0 {
		b, err := json.Marshal(params)
		if err != nil {
			return nil, err
		}
		parameters = util.AsPtr(string(b))
	}

	e, err := s.executionStore.CreateExecution(ctx, pipelineID, parameters)
	if err != nil {
		return nil, err
	}
	if err := s.EnqueueExecution(e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *PipelineService) CancelExecution(pipelineID, executionID int64) error {
	eq, ok := s.GetPipelineExecutionQueue(pipelineID)
	if !ok {
		return fmt.Errorf("execution queue for pipeline %d does not exist", pipelineID)
	}
	eq.CancelExecution(executionID)
	return nil
}

func (s *PipelineService) GetExecutionByID(
	ctx context.Context, executionID int64,
) (*store.Execution, error) {
	return s.executionStore.ReadExecutionByID(ctx, executionID)
}

func (s *PipelineService) DeleteExecution(
	ctx context.Context, executionID int64,
) error {
	return s.executionStore.DeleteExecution(ctx, executionID)
}

func (s *PipelineService) ListPipelineExecutions(
	ctx context.Context,
	pipelineID int64,
) ([]store.Execution, error) {
	executions, err := s.executionStore.ListPipelineExecutions(ctx, pipelineID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return executions, nil
}

func (s *PipelineService) ListLatestPipelineExecutions(
	ctx context.Context,
	pipelineID, limit int64,
) ([]store.Execution, error) {
	return s.executionStore.ListLatestPipelineExecutions(ctx, pipelineID, limit)
}

func (s *PipelineService) ListPipelineExecutionsPaginated(
	ctx context.Context,
	pipelineID, limit, offset int64,
) ([]store.Execution, error) {
	return s.executionStore.ListPipelineExecutionsPaginated(
		ctx, pipelineID, limit, offset,
	)
}

func (s *PipelineService) GetPipelineExecutionCount(
	ctx context.Context, id int64,
) (int64, error) {
	return s.executionStore.CountPipelineExecutions(ctx, id)
}

func (s *PipelineService) GetAPIKeyByValue(
	ctx context.Context,
	value string,
) (*store.APIKey, error) {
	return s.apiKeyStore.ReadAPIKeyByValue(ctx, value)
}

func (s *PipelineService) GetAPIKeyByID(
	ctx context.Context,
	id int64,
) (*store.APIKey, error) {
	return s.apiKeyStore.ReadAPIKeyByID(ctx, id)
}

func (s *PipelineService) ListAPIKeys(
	ctx context.Context,
) ([]*store.APIKey, error) {
	return s.apiKeyStore.ListAPIKeys(ctx)
}

func (s *PipelineService) UpdatePipelineSchedule(
	ctx context.Context,
	id int64,
	schedule, scheduleParams *string,
) error {
	p, err := s.pipelineStore.ReadPipelineByID(ctx, id)
	if err != nil {
		return err
	}

	if schedule == nil {
		if p.ScheduleJobID != nil && s.scheduler != nil {
			if err := s.scheduler.RemoveJob(uuid.MustParse(*p.ScheduleJobID)); err != nil {
				log.Println("unable to remove existing job: ", err)
			}
		}
		if err := s.pipelineStore.UpdatePipelineSchedule(ctx, p.PipelineID, nil, nil); err != nil {
			return err
		}
		return s.pipelineStore.UpdatePipelineScheduleJobID(ctx, p.PipelineID, nil)
	}

	if p.ScheduleJobID != nil && s.scheduler != nil {
		if err := s.scheduler.RemoveJob(uuid.MustParse(*p.ScheduleJobID)); err != nil {
			log.Println("unable to remove existing job: ", err)
		}
	}
	jobID, err := s.SchedulePipelineExecution(p.PipelineID, *schedule, scheduleParams)
	if err != nil {
		return err
	}
	if err := s.pipelineStore.UpdatePipelineSchedule(
		ctx, p.PipelineID, schedule, scheduleParams,
	); err != nil {
		return err
	}
	return s.pipelineStore.UpdatePipelineScheduleJobID(ctx, p.PipelineID, jobID)
}

func (s *PipelineService) SchedulePipelineExecution(
	pipelineID int64,
	schedule string,
	scheduleParams *string,
) (*string, error) {
	if s.scheduler == nil {
		return nil, nil
	}
	params := make(map[string]string)
	if scheduleParams != nil {
		if err := json.Unmarshal([]byte(*scheduleParams), &params); err != nil {
			return nil, err
		}
	}
	job, err := s.scheduler.NewJob(
		gocron.CronJob(schedule, false),
		gocron.NewTask(func() {
			if _, err := s.TriggerExecution(
				context.Background(),
				pipelineID,
				params,
			); err != nil {
				log.Println("err triggering scheduled execution:", err)
			}
		}))
	if err != nil {
		return nil, fmt.Errorf("error scheduling pipeline job: %+w", err)
	}
	return util.AsPtr(job.ID().String()), nil
}

// InitializeSchedules re-registers cron jobs for pipelines that carry a
// schedule, refreshing their stored job IDs.
func (s *PipelineService) InitializeSchedules(ctx context.Context) error {
	pipelines, err := s.ListScheduledPipelines(ctx)
	if err != nil {
		return err
	}
	for _, p := range pipelines {
		if p.Schedule == nil {
			continue
		}
		jobID, err := s.SchedulePipelineExecution(p.PipelineID, *p.Schedule, p.ScheduleParams)
		if err != nil {
			return err
		}
		if err := s.pipelineStore.UpdatePipelineScheduleJobID(
			ctx, p.PipelineID, jobID,
		); err != nil {
			return err
		}
	}
	return nil
}

func (s *PipelineService) AddExecutionQueues(pipelines []*store.Pipeline, maxQueued int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range pipelines {
		s.queues[p.PipelineID] = NewExecutionQueue(
			p.Name, s.executionStore, s.engine, maxQueued,
		)
	}
}

func (s *PipelineService) StartExecutionQueues() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.queues {
		go s.queues[i].Run()
	}
}

func (s *PipelineService) AddExecutionQueue(id int64, name string, maxQueued int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queues[id] = NewExecutionQueue(name, s.executionStore, s.engine, maxQueued)
}

func (s *PipelineService) StartExecutionQueue(id int64) error {
	eq, ok := s.GetPipelineExecutionQueue(id)
	if !ok {
		return fmt.Errorf("execution queue for pipeline %d does not exist", id)
	}
	go eq.Run()
	return nil
}

func (s *PipelineService) GetPipelineExecutionQueue(id int64) (*ExecutionQueue, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	eq, ok := s.queues[id]
	return eq, ok
}

func (s *PipelineService) RemoveExecutionQueue(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.queues, id)
}

func (s *PipelineService) EnqueueExecution(e *store.Execution) error {
	eq, ok := s.GetPipelineExecutionQueue(e.ExecutionPipelineID)
	if !ok {
		return fmt.Errorf(
			"execution queue for pipeline %d does not exist", e.ExecutionPipelineID,
		)
	}
	return eq.Enqueue(e)
}

func (s *PipelineService) ShutdownExecutionQueue(id int64) {
	eq, ok := s.GetPipelineExecutionQueue(id)
	if !ok {
		return
	}
	eq.Shutdown()
}

func (s *PipelineService) ShutdownAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var wg sync.WaitGroup
	for _, eq := range s.queues {
		wg.Go(func() {
			eq.Shutdown()
		})
	}
	wg.Wait()
}
