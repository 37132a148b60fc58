package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jhalttu/textpipe/internal"
	"github.com/jhalttu/textpipe/internal/awsml"
	"github.com/jhalttu/textpipe/internal/store"
	"github.com/jhalttu/textpipe/internal/util"
)

// ExecutionEngine is the slice of the managed pipeline service the queue
// needs to start and follow remote executions.
type ExecutionEngine interface {
	StartExecution(
		ctx context.Context,
		pipelineName, displayName string,
		params map[string]string,
	) (string, error)
	DescribeExecution(ctx context.Context, arn string) (awsml.ExecutionState, error)
	ListExecutionSteps(ctx context.Context, arn string) ([]awsml.ExecutionStep, error)
	StopExecution(ctx context.Context, arn string) error
}

func NewExecutionQueue(
	pipelineName string,
	executionStore ExecutionStore,
	engine ExecutionEngine,
	maxQueued int64,
) *ExecutionQueue {
	return &ExecutionQueue{
		pipelineName:     pipelineName,
		executionStore:   executionStore,
		engine:           engine,
		StatusSSEClients: NewSSEClientMap[store.Execution](),
		queue:            make(chan *store.Execution, maxQueued),
		done:             make(chan struct{}),
		cancelMap:        NewCancelMap[int64](),
	}
}

// ExecutionQueue serializes the executions of a single pipeline. The heavy
// lifting happens on the managed engine; the queue starts an execution,
// polls it to completion and mirrors its state into the local store.
type ExecutionQueue struct {
	pipelineName     string
	executionStore   ExecutionStore
	engine           ExecutionEngine
	StatusSSEClients *SSEClientMap[store.Execution]

	queue     chan *store.Execution
	done      chan struct{}
	cancelMap *CancelMap[int64]

	mu sync.Mutex
}

func (eq *ExecutionQueue) CancelExecution(executionID int64) {
	eq.cancelMap.Call(executionID)
}

func (eq *ExecutionQueue) Enqueue(e *store.Execution) error {
	select {
	case eq.queue <- e:
		return nil
	default:
		return NewErrExecutionQueueFull()
	}
}

func (eq *ExecutionQueue) Run() {
	for {
		select {
		case execution := <-eq.queue:
			ctx, cancel := context.WithCancel(context.Background())
			eq.cancelMap.AddCancel(execution.ExecutionID, cancel)

			if err := eq.processExecution(ctx, execution); err != nil {
				eq.failExecution(execution.ExecutionID, err)
			}

			eq.cancelMap.RemoveCancel(execution.ExecutionID)
			cancel()
		case <-eq.done:
			close(eq.queue)
			return
		}
	}
}

func (eq *ExecutionQueue) Shutdown() {
	eq.mu.Lock()
	defer eq.mu.Unlock()
	select {
	case <-eq.done:
	default:
		close(eq.done)
	}
}

// Watch resumes polling an execution that was already started on the engine,
// for example after a server restart.
func (eq *ExecutionQueue) Watch(execution *store.Execution) {
	if execution.RemoteARN == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	eq.cancelMap.AddCancel(execution.ExecutionID, cancel)
	defer func() {
		eq.cancelMap.RemoveCancel(execution.ExecutionID)
		cancel()
	}()

	if err := eq.watchExecution(ctx, execution.ExecutionID, *execution.RemoteARN); err != nil {
		eq.failExecution(execution.ExecutionID, err)
	}
}

func (eq *ExecutionQueue) processExecution(
	ctx context.Context,
	execution *store.Execution,
) error {
	params := make(map[string]string)
	if execution.Parameters != nil {
		if err := json.Unmarshal([]byte(*execution.Parameters), &params); err != nil {
			return err
		}
	}

	arn, err := eq.engine.StartExecution(
		ctx,
		eq.pipelineName,
		fmt.Sprintf("%s-%d", util.SanitizeName(eq.pipelineName), execution.ExecutionID),
		params,
	)
	if err != nil {
		return err
	}

	if err := eq.executionStore.UpdateExecutionStarted(
		context.Background(),
		execution.ExecutionID,
		arn,
		store.StatusExecuting,
		util.AsPtr(time.Now().UTC()),
	); err != nil {
		return err
	}
	eq.publishStatus(execution.ExecutionID)

	return eq.watchExecution(ctx, execution.ExecutionID, arn)
}

func (eq *ExecutionQueue) watchExecution(
	ctx context.Context,
	executionID int64,
	arn string,
) error {
	for attempt := int64(0); attempt < internal.Config.PollMaxAttempts; attempt++ {
		state, err := eq.engine.DescribeExecution(ctx, arn)
		if err != nil {
			return err
		}

		if steps, err := eq.engine.ListExecutionSteps(ctx, arn); err != nil {
			log.Println("err listing execution steps:", err)
		} else if b, err := json.Marshal(steps); err == nil {
			if err := eq.executionStore.UpdateExecutionSteps(
				context.Background(), executionID, string(b),
			); err != nil {
				log.Println("err updating execution steps:", err)
			}
		}

		if state.Status.Terminal() {
			if err := eq.executionStore.UpdateExecutionEnded(
				context.Background(),
				executionID,
				storeExecutionStatus(state.Status),
				failureReason(state),
				util.AsPtr(time.Now().UTC()),
			); err != nil {
				return err
			}
			eq.publishStatus(executionID)
			return nil
		}
		eq.publishStatus(executionID)

		select {
		case <-ctx.Done():
			if err := eq.engine.StopExecution(context.Background(), arn); err != nil {
				log.Println("err stopping execution:", err)
			}
			return ExecutionCancelError{Message: "execution cancelled by user"}
		case <-time.After(internal.Config.PollDelay()):
		}
	}

	return fmt.Errorf(
		"execution %s still running after %d polls",
		arn,
		internal.Config.PollMaxAttempts,
	)
}

// failExecution records a terminal state for executions the watch loop could
// not finish cleanly.
func (eq *ExecutionQueue) failExecution(executionID int64, err error) {
	status := store.StatusFailed
	var cancelErr ExecutionCancelError
	if errors.As(err, &cancelErr) {
		status = store.StatusStopped
	}
	if sqlErr := eq.executionStore.UpdateExecutionEnded(
		context.Background(),
		executionID,
		status,
		util.AsPtr(err.Error()),
		util.AsPtr(time.Now().UTC()),
	); sqlErr != nil {
		log.Println("err updating failed execution:", errors.Join(err, sqlErr))
	}
	log.Println("err processing execution:", err)
	eq.publishStatus(executionID)
}

func (eq *ExecutionQueue) publishStatus(executionID int64) {
	e, err := eq.executionStore.ReadExecutionByID(context.Background(), executionID)
	if err != nil {
		log.Println("err reading execution for status update:", err)
		return
	}
	eq.StatusSSEClients.SendToClients(*e)
}

func storeExecutionStatus(s awsml.ExecutionStatus) store.ExecutionStatus {
	switch s {
	case awsml.ExecutionSucceeded:
		return store.StatusSucceeded
	case awsml.ExecutionStopped:
		return store.StatusStopped
	case awsml.ExecutionFailed:
		return store.StatusFailed
	default:
		return store.StatusExecuting
	}
}

func failureReason(state awsml.ExecutionState) *string {
	if state.FailureReason == "" {
		return nil
	}
	return util.AsPtr(state.FailureReason)
}
