package awsml

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/stretchr/testify/mock"
)

func out[T any](args mock.Arguments, i int) T {
	var zero T
	if v, ok := args.Get(i).(T); ok {
		return v
	}
	return zero
}

type mockSageMakerAPI struct {
	mock.Mock
}

func (m *mockSageMakerAPI) CreatePipeline(
	ctx context.Context, in *sagemaker.CreatePipelineInput, _ ...func(*sagemaker.Options),
) (*sagemaker.CreatePipelineOutput, error) {
	args := m.Called(ctx, in)
	return out[*sagemaker.CreatePipelineOutput](args, 0), args.Error(1)
}

func (m *mockSageMakerAPI) UpdatePipeline(
	ctx context.Context, in *sagemaker.UpdatePipelineInput, _ ...func(*sagemaker.Options),
) (*sagemaker.UpdatePipelineOutput, error) {
	args := m.Called(ctx, in)
	return out[*sagemaker.UpdatePipelineOutput](args, 0), args.Error(1)
}

func (m *mockSageMakerAPI) DescribePipeline(
	ctx context.Context, in *sagemaker.DescribePipelineInput, _ ...func(*sagemaker.Options),
) (*sagemaker.DescribePipelineOutput, error) {
	args := m.Called(ctx, in)
	return out[*sagemaker.DescribePipelineOutput](args, 0), args.Error(1)
}

func (m *mockSageMakerAPI) DeletePipeline(
	ctx context.Context, in *sagemaker.DeletePipelineInput, _ ...func(*sagemaker.Options),
) (*sagemaker.DeletePipelineOutput, error) {
	args := m.Called(ctx, in)
	return out[*sagemaker.DeletePipelineOutput](args, 0), args.Error(1)
}

func (m *mockSageMakerAPI) StartPipelineExecution(
	ctx context.Context, in *sagemaker.StartPipelineExecutionInput, _ ...func(*sagemaker.Options),
) (*sagemaker.StartPipelineExecutionOutput, error) {
	args := m.Called(ctx, in)
	return out[*sagemaker.StartPipelineExecutionOutput](args, 0), args.Error(1)
}

func (m *mockSageMakerAPI) DescribePipelineExecution(
	ctx context.Context, in *sagemaker.DescribePipelineExecutionInput, _ ...func(*sagemaker.Options),
) (*sagemaker.DescribePipelineExecutionOutput, error) {
	args := m.Called(ctx, in)
	return out[*sagemaker.DescribePipelineExecutionOutput](args, 0), args.Error(1)
}

func (m *mockSageMakerAPI) ListPipelineExecutionSteps(
	ctx context.Context, in *sagemaker.ListPipelineExecutionStepsInput, _ ...func(*sagemaker.Options),
) (*sagemaker.ListPipelineExecutionStepsOutput, error) {
	args := m.Called(ctx, in)
	return out[*sagemaker.ListPipelineExecutionStepsOutput](args, 0), args.Error(1)
}

func (m *mockSageMakerAPI) StopPipelineExecution(
	ctx context.Context, in *sagemaker.StopPipelineExecutionInput, _ ...func(*sagemaker.Options),
) (*sagemaker.StopPipelineExecutionOutput, error) {
	args := m.Called(ctx, in)
	return out[*sagemaker.StopPipelineExecutionOutput](args, 0), args.Error(1)
}

func (m *mockSageMakerAPI) DescribeTrainingJob(
	ctx context.Context, in *sagemaker.DescribeTrainingJobInput, _ ...func(*sagemaker.Options),
) (*sagemaker.DescribeTrainingJobOutput, error) {
	args := m.Called(ctx, in)
	return out[*sagemaker.DescribeTrainingJobOutput](args, 0), args.Error(1)
}

type mockComprehendAPI struct {
	mock.Mock
}

func (m *mockComprehendAPI) CreateDocumentClassifier(
	ctx context.Context, in *comprehend.CreateDocumentClassifierInput, _ ...func(*comprehend.Options),
) (*comprehend.CreateDocumentClassifierOutput, error) {
	args := m.Called(ctx, in)
	return out[*comprehend.CreateDocumentClassifierOutput](args, 0), args.Error(1)
}

func (m *mockComprehendAPI) DescribeDocumentClassifier(
	ctx context.Context, in *comprehend.DescribeDocumentClassifierInput, _ ...func(*comprehend.Options),
) (*comprehend.DescribeDocumentClassifierOutput, error) {
	args := m.Called(ctx, in)
	return out[*comprehend.DescribeDocumentClassifierOutput](args, 0), args.Error(1)
}

func (m *mockComprehendAPI) CreateEndpoint(
	ctx context.Context, in *comprehend.CreateEndpointInput, _ ...func(*comprehend.Options),
) (*comprehend.CreateEndpointOutput, error) {
	args := m.Called(ctx, in)
	return out[*comprehend.CreateEndpointOutput](args, 0), args.Error(1)
}

func (m *mockComprehendAPI) DescribeEndpoint(
	ctx context.Context, in *comprehend.DescribeEndpointInput, _ ...func(*comprehend.Options),
) (*comprehend.DescribeEndpointOutput, error) {
	args := m.Called(ctx, in)
	return out[*comprehend.DescribeEndpointOutput](args, 0), args.Error(1)
}

func (m *mockComprehendAPI) ClassifyDocument(
	ctx context.Context, in *comprehend.ClassifyDocumentInput, _ ...func(*comprehend.Options),
) (*comprehend.ClassifyDocumentOutput, error) {
	args := m.Called(ctx, in)
	return out[*comprehend.ClassifyDocumentOutput](args, 0), args.Error(1)
}

type mockLambdaAPI struct {
	mock.Mock
}

func (m *mockLambdaAPI) Invoke(
	ctx context.Context, in *lambda.InvokeInput, _ ...func(*lambda.Options),
) (*lambda.InvokeOutput, error) {
	args := m.Called(ctx, in)
	return out[*lambda.InvokeOutput](args, 0), args.Error(1)
}

type mockS3API struct {
	mock.Mock
}

func (m *mockS3API) GetObject(
	ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options),
) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, in)
	return out[*s3.GetObjectOutput](args, 0), args.Error(1)
}

func (m *mockS3API) PutObject(
	ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, in)
	return out[*s3.PutObjectOutput](args, 0), args.Error(1)
}

func (m *mockS3API) ListObjectsV2(
	ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options),
) (*s3.ListObjectsV2Output, error) {
	args := m.Called(ctx, in)
	return out[*s3.ListObjectsV2Output](args, 0), args.Error(1)
}
