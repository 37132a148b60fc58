package awsml

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
	"github.com/google/uuid"
)

// ExecutionStatus is our view of a remote pipeline execution state.
type ExecutionStatus string

const (
	ExecutionExecuting ExecutionStatus = "executing"
	ExecutionSucceeded ExecutionStatus = "succeeded"
	ExecutionFailed    ExecutionStatus = "failed"
	ExecutionStopped   ExecutionStatus = "stopped"
)

// Terminal reports whether the execution can no longer change state.
func (s ExecutionStatus) Terminal() bool {
	switch s {
	case ExecutionSucceeded, ExecutionFailed, ExecutionStopped:
		return true
	}
	return false
}

type ExecutionState struct {
	ARN           string
	Status        ExecutionStatus
	FailureReason string
}

type ExecutionStep struct {
	Name          string
	Status        string
	FailureReason string
	StartedAt     *time.Time
	EndedAt       *time.Time
}

// UpsertPipeline creates the named pipeline from the definition document, or
// updates it in place when it already exists. Returns the pipeline ARN.
func (c *Client) UpsertPipeline(
	ctx context.Context, name, roleARN string, definition []byte,
) (string, error) {
	def := string(definition)
	_, err := c.sagemaker.DescribePipeline(ctx, &sagemaker.DescribePipelineInput{
		PipelineName: aws.String(name),
	})
	if err != nil {
		err = opError("describe_pipeline", name, err)
		if !IsNotFound(err) {
			return "", err
		}
		out, err := c.sagemaker.CreatePipeline(ctx, &sagemaker.CreatePipelineInput{
			PipelineName:       aws.String(name),
			PipelineDefinition: aws.String(def),
			RoleArn:            aws.String(roleARN),
		})
		if err != nil {
			return "", opError("create_pipeline", name, err)
		}
		return aws.ToString(out.PipelineArn), nil
	}

	out, err := c.sagemaker.UpdatePipeline(ctx, &sagemaker.UpdatePipelineInput{
		PipelineName:       aws.String(name),
		PipelineDefinition: aws.String(def),
		RoleArn:            aws.String(roleARN),
	})
	if err != nil {
		return "", opError("update_pipeline", name, err)
	}
	return aws.ToString(out.PipelineArn), nil
}

func (c *Client) DeletePipeline(ctx context.Context, name string) error {
	_, err := c.sagemaker.DeletePipeline(ctx, &sagemaker.DeletePipelineInput{
		PipelineName:       aws.String(name),
		ClientRequestToken: aws.String(uuid.NewString()),
	})
	if err != nil {
		return opError("delete_pipeline", name, err)
	}
	return nil
}

// StartExecution starts the pipeline with the given parameter overrides and
// returns the execution ARN.
func (c *Client) StartExecution(
	ctx context.Context, pipelineName, displayName string, params map[string]string,
) (string, error) {
	in := &sagemaker.StartPipelineExecutionInput{
		PipelineName:       aws.String(pipelineName),
		ClientRequestToken: aws.String(uuid.NewString()),
	}
	if displayName != "" {
		in.PipelineExecutionDisplayName = aws.String(displayName)
	}
	for name, value := range params {
		in.PipelineParameters = append(in.PipelineParameters, types.Parameter{
			Name:  aws.String(name),
			Value: aws.String(value),
		})
	}
	out, err := c.sagemaker.StartPipelineExecution(ctx, in)
	if err != nil {
		return "", opError("start_execution", pipelineName, err)
	}
	return aws.ToString(out.PipelineExecutionArn), nil
}

func (c *Client) DescribeExecution(ctx context.Context, arn string) (ExecutionState, error) {
	out, err := c.sagemaker.DescribePipelineExecution(ctx, &sagemaker.DescribePipelineExecutionInput{
		PipelineExecutionArn: aws.String(arn),
	})
	if err != nil {
		return ExecutionState{}, opError("describe_execution", arn, err)
	}
	return ExecutionState{
		ARN:           arn,
		Status:        mapExecutionStatus(out.PipelineExecutionStatus),
		FailureReason: aws.ToString(out.FailureReason),
	}, nil
}

func mapExecutionStatus(s types.PipelineExecutionStatus) ExecutionStatus {
	switch s {
	case types.PipelineExecutionStatusSucceeded:
		return ExecutionSucceeded
	case types.PipelineExecutionStatusFailed:
		return ExecutionFailed
	case types.PipelineExecutionStatusStopped:
		return ExecutionStopped
	default:
		// Executing and Stopping both still move
		return ExecutionExecuting
	}
}

// ListExecutionSteps returns the execution's steps in start order, branch
// steps included once the engine schedules them.
func (c *Client) ListExecutionSteps(ctx context.Context, arn string) ([]ExecutionStep, error) {
	out, err := c.sagemaker.ListPipelineExecutionSteps(ctx, &sagemaker.ListPipelineExecutionStepsInput{
		PipelineExecutionArn: aws.String(arn),
		SortOrder:            types.SortOrderAscending,
	})
	if err != nil {
		return nil, opError("list_execution_steps", arn, err)
	}
	steps := make([]ExecutionStep, 0, len(out.PipelineExecutionSteps))
	for _, s := range out.PipelineExecutionSteps {
		steps = append(steps, ExecutionStep{
			Name:          aws.ToString(s.StepName),
			Status:        string(s.StepStatus),
			FailureReason: aws.ToString(s.FailureReason),
			StartedAt:     s.StartTime,
			EndedAt:       s.EndTime,
		})
	}
	return steps, nil
}

func (c *Client) StopExecution(ctx context.Context, arn string) error {
	_, err := c.sagemaker.StopPipelineExecution(ctx, &sagemaker.StopPipelineExecutionInput{
		PipelineExecutionArn: aws.String(arn),
		ClientRequestToken:   aws.String(uuid.NewString()),
	})
	if err != nil {
		return opError("stop_execution", arn, err)
	}
	return nil
}

// WaitForExecution polls until the execution reaches a terminal status. The
// returned state is the last observed one, also on timeout.
func (c *Client) WaitForExecution(
	ctx context.Context, arn string, delay time.Duration, maxAttempts int64,
) (ExecutionState, error) {
	var state ExecutionState
	err := waitFor(ctx, delay, maxAttempts, func(ctx context.Context) (bool, error) {
		var err error
		state, err = c.DescribeExecution(ctx, arn)
		if err != nil {
			return false, err
		}
		return state.Status.Terminal(), nil
	})
	return state, err
}

type TrainingJobInfo struct {
	Name                 string
	Status               string
	SecondaryStatus      string
	ProfilerS3OutputPath string
	ProfilingStatus      string
	TrainingStartTime    *time.Time
}

func (c *Client) DescribeTrainingJob(ctx context.Context, name string) (TrainingJobInfo, error) {
	out, err := c.sagemaker.DescribeTrainingJob(ctx, &sagemaker.DescribeTrainingJobInput{
		TrainingJobName: aws.String(name),
	})
	if err != nil {
		return TrainingJobInfo{}, opError("describe_training_job", name, err)
	}
	info := TrainingJobInfo{
		Name:              name,
		Status:            string(out.TrainingJobStatus),
		SecondaryStatus:   string(out.SecondaryStatus),
		ProfilingStatus:   string(out.ProfilingStatus),
		TrainingStartTime: out.TrainingStartTime,
	}
	if out.ProfilerConfig != nil {
		info.ProfilerS3OutputPath = aws.ToString(out.ProfilerConfig.S3OutputPath)
	}
	return info, nil
}
