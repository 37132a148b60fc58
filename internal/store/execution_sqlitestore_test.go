package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhalttu/textpipe/internal/util"
)

func TestExecutionSQLiteStore_CreateExecution(t *testing.T) {
	t.Run("success - execution starts queued", func(t *testing.T) {
		// arrange
		p := createPipeline(t)
		params := util.AsPtr(`{"TrainData":"s3://b/train.csv"}`)

		// act
		e, err := executionStore.CreateExecution(context.Background(), p.PipelineID, params)

		// assert
		assert.NoError(t, err)
		assert.NotNil(t, e)
		assert.NotEqual(t, 0, e.ExecutionID)
		assert.Equal(t, StatusQueued, e.Status)
		assert.Equal(t, *params, *e.Parameters)
		assert.False(t, e.CreatedOn.IsZero())
		assert.Nil(t, e.RemoteARN)
	})
	t.Run("failure - unknown pipeline", func(t *testing.T) {
		// act
		e, err := executionStore.CreateExecution(context.Background(), 99999, nil)

		// assert
		assert.Error(t, err)
		assert.Nil(t, e)
	})
}

func TestExecutionSQLiteStore_Lifecycle(t *testing.T) {
	t.Run("success - queued, started, ended", func(t *testing.T) {
		// arrange
		p := createPipeline(t)
		e, err := executionStore.CreateExecution(context.Background(), p.PipelineID, nil)
		assert.NoError(t, err)
		startedOn := util.AsPtr(time.Now().UTC())

		// act
		err = executionStore.UpdateExecutionStarted(
			context.Background(), e.ExecutionID, "arn:exec", StatusExecuting, startedOn,
		)

		// assert
		assert.NoError(t, err)
		running, err := executionStore.ReadExecutionByID(context.Background(), e.ExecutionID)
		assert.NoError(t, err)
		assert.Equal(t, StatusExecuting, running.Status)
		assert.Equal(t, "arn:exec", *running.RemoteARN)
		assert.NotNil(t, running.StartedOn)

		// act
		endedOn := util.AsPtr(time.Now().UTC())
		err = executionStore.UpdateExecutionEnded(
			context.Background(),
			e.ExecutionID,
			StatusFailed,
			util.AsPtr("accuracy gate rejected the model"),
			endedOn,
		)

		// assert
		assert.NoError(t, err)
		done, err := executionStore.ReadExecutionByID(context.Background(), e.ExecutionID)
		assert.NoError(t, err)
		assert.Equal(t, StatusFailed, done.Status)
		assert.Equal(t, "accuracy gate rejected the model", *done.FailureReason)
		assert.NotNil(t, done.EndedOn)
	})

	t.Run("success - step snapshot updated", func(t *testing.T) {
		// arrange
		p := createPipeline(t)
		e, err := executionStore.CreateExecution(context.Background(), p.PipelineID, nil)
		assert.NoError(t, err)
		steps := `[{"name":"PrepareData","status":"Succeeded"}]`

		// act
		err = executionStore.UpdateExecutionSteps(context.Background(), e.ExecutionID, steps)

		// assert
		assert.NoError(t, err)
		updated, err := executionStore.ReadExecutionByID(context.Background(), e.ExecutionID)
		assert.NoError(t, err)
		assert.Equal(t, steps, *updated.Steps)
	})
}

func TestExecutionSQLiteStore_Lists(t *testing.T) {
	t.Run("success - latest, paginated and count", func(t *testing.T) {
		// arrange
		p := createPipeline(t)
		for range 5 {
			_, err := executionStore.CreateExecution(context.Background(), p.PipelineID, nil)
			assert.NoError(t, err)
		}

		// act
		latest, errLatest := executionStore.ListLatestPipelineExecutions(
			context.Background(), p.PipelineID, 3,
		)
		page, errPage := executionStore.ListPipelineExecutionsPaginated(
			context.Background(), p.PipelineID, 2, 2,
		)
		count, errCount := executionStore.CountPipelineExecutions(
			context.Background(), p.PipelineID,
		)

		// assert
		assert.NoError(t, errLatest)
		assert.Len(t, latest, 3)
		assert.NoError(t, errPage)
		assert.Len(t, page, 2)
		assert.Equal(t, p.Name, page[0].PipelineName)
		assert.NoError(t, errCount)
		assert.Equal(t, int64(5), count)
	})

	t.Run("success - unfinished executions", func(t *testing.T) {
		// arrange
		p := createPipeline(t)
		queued, err := executionStore.CreateExecution(context.Background(), p.PipelineID, nil)
		assert.NoError(t, err)
		finished, err := executionStore.CreateExecution(context.Background(), p.PipelineID, nil)
		assert.NoError(t, err)
		assert.NoError(t, executionStore.UpdateExecutionEnded(
			context.Background(), finished.ExecutionID, StatusSucceeded, nil,
			util.AsPtr(time.Now().UTC()),
		))

		// act
		unfinished, err := executionStore.ListUnfinishedExecutions(context.Background())

		// assert
		assert.NoError(t, err)
		ids := make([]int64, 0, len(unfinished))
		for _, e := range unfinished {
			ids = append(ids, e.ExecutionID)
		}
		assert.Contains(t, ids, queued.ExecutionID)
		assert.NotContains(t, ids, finished.ExecutionID)
	})
}

func TestExecutionSQLiteStore_DeleteExecution(t *testing.T) {
	t.Run("success - executions cascade with the pipeline", func(t *testing.T) {
		// arrange
		p := createPipeline(t)
		e, err := executionStore.CreateExecution(context.Background(), p.PipelineID, nil)
		assert.NoError(t, err)

		// act
		err = pipelineStore.DeletePipeline(context.Background(), p.PipelineID)

		// assert
		assert.NoError(t, err)
		_, err = executionStore.ReadExecutionByID(context.Background(), e.ExecutionID)
		assert.Error(t, err)
	})
}
