package awsml

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
)

// Narrow views over the SDK clients, covering only the calls we make.

type sagemakerAPI interface {
	CreatePipeline(
		ctx context.Context, in *sagemaker.CreatePipelineInput, opts ...func(*sagemaker.Options),
	) (*sagemaker.CreatePipelineOutput, error)
	UpdatePipeline(
		ctx context.Context, in *sagemaker.UpdatePipelineInput, opts ...func(*sagemaker.Options),
	) (*sagemaker.UpdatePipelineOutput, error)
	DescribePipeline(
		ctx context.Context, in *sagemaker.DescribePipelineInput, opts ...func(*sagemaker.Options),
	) (*sagemaker.DescribePipelineOutput, error)
	DeletePipeline(
		ctx context.Context, in *sagemaker.DeletePipelineInput, opts ...func(*sagemaker.Options),
	) (*sagemaker.DeletePipelineOutput, error)
	StartPipelineExecution(
		ctx context.Context, in *sagemaker.StartPipelineExecutionInput, opts ...func(*sagemaker.Options),
	) (*sagemaker.StartPipelineExecutionOutput, error)
	DescribePipelineExecution(
		ctx context.Context, in *sagemaker.DescribePipelineExecutionInput, opts ...func(*sagemaker.Options),
	) (*sagemaker.DescribePipelineExecutionOutput, error)
	ListPipelineExecutionSteps(
		ctx context.Context, in *sagemaker.ListPipelineExecutionStepsInput, opts ...func(*sagemaker.Options),
	) (*sagemaker.ListPipelineExecutionStepsOutput, error)
	StopPipelineExecution(
		ctx context.Context, in *sagemaker.StopPipelineExecutionInput, opts ...func(*sagemaker.Options),
	) (*sagemaker.StopPipelineExecutionOutput, error)
	DescribeTrainingJob(
		ctx context.Context, in *sagemaker.DescribeTrainingJobInput, opts ...func(*sagemaker.Options),
	) (*sagemaker.DescribeTrainingJobOutput, error)
}

type comprehendAPI interface {
	CreateDocumentClassifier(
		ctx context.Context, in *comprehend.CreateDocumentClassifierInput, opts ...func(*comprehend.Options),
	) (*comprehend.CreateDocumentClassifierOutput, error)
	DescribeDocumentClassifier(
		ctx context.Context, in *comprehend.DescribeDocumentClassifierInput, opts ...func(*comprehend.Options),
	) (*comprehend.DescribeDocumentClassifierOutput, error)
	CreateEndpoint(
		ctx context.Context, in *comprehend.CreateEndpointInput, opts ...func(*comprehend.Options),
	) (*comprehend.CreateEndpointOutput, error)
	DescribeEndpoint(
		ctx context.Context, in *comprehend.DescribeEndpointInput, opts ...func(*comprehend.Options),
	) (*comprehend.DescribeEndpointOutput, error)
	ClassifyDocument(
		ctx context.Context, in *comprehend.ClassifyDocumentInput, opts ...func(*comprehend.Options),
	) (*comprehend.ClassifyDocumentOutput, error)
}

type lambdaAPI interface {
	Invoke(
		ctx context.Context, in *lambda.InvokeInput, opts ...func(*lambda.Options),
	) (*lambda.InvokeOutput, error)
}

type s3API interface {
	GetObject(
		ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options),
	) (*s3.GetObjectOutput, error)
	PutObject(
		ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options),
	) (*s3.PutObjectOutput, error)
	ListObjectsV2(
		ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options),
	) (*s3.ListObjectsV2Output, error)
}
