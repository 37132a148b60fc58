package awsml

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/comprehend/types"
)

type ClassifierInput struct {
	Name              string
	VersionName       string
	DataAccessRoleARN string
	TrainDataS3URI    string
	TestDataS3URI     string
	OutputS3URI       string
	LanguageCode      string
}

// CreateClassifier starts training a custom document classifier and returns
// its ARN. Training runs remotely; poll with WaitForClassifier.
func (c *Client) CreateClassifier(ctx context.Context, in ClassifierInput) (string, error) {
	lang := types.LanguageCode(in.LanguageCode)
	if in.LanguageCode == "" {
		lang = types.LanguageCodeEn
	}
	input := &comprehend.CreateDocumentClassifierInput{
		DocumentClassifierName: aws.String(in.Name),
		DataAccessRoleArn:      aws.String(in.DataAccessRoleARN),
		LanguageCode:           lang,
		Mode:                   types.DocumentClassifierModeMultiClass,
		InputDataConfig: &types.DocumentClassifierInputDataConfig{
			S3Uri: aws.String(in.TrainDataS3URI),
		},
	}
	if in.VersionName != "" {
		input.VersionName = aws.String(in.VersionName)
	}
	if in.TestDataS3URI != "" {
		input.InputDataConfig.TestS3Uri = aws.String(in.TestDataS3URI)
	}
	if in.OutputS3URI != "" {
		input.OutputDataConfig = &types.DocumentClassifierOutputDataConfig{
			S3Uri: aws.String(in.OutputS3URI),
		}
	}
	out, err := c.comprehend.CreateDocumentClassifier(ctx, input)
	if err != nil {
		return "", opError("create_classifier", in.Name, err)
	}
	return aws.ToString(out.DocumentClassifierArn), nil
}

// EvaluationMetrics are the trained classifier's test-set metrics.
type EvaluationMetrics struct {
	Accuracy  float64
	Precision float64
	Recall    float64
	F1Score   float64
}

type ClassifierState struct {
	ARN     string
	Status  string
	Message string
	Metrics *EvaluationMetrics
}

// Done reports whether training finished, successfully or not.
func (s ClassifierState) Done() bool {
	switch s.Status {
	case string(types.ModelStatusTrained), string(types.ModelStatusInError):
		return true
	}
	return false
}

func (s ClassifierState) Trained() bool {
	return s.Status == string(types.ModelStatusTrained)
}

func (c *Client) DescribeClassifier(ctx context.Context, arn string) (ClassifierState, error) {
	out, err := c.comprehend.DescribeDocumentClassifier(ctx, &comprehend.DescribeDocumentClassifierInput{
		DocumentClassifierArn: aws.String(arn),
	})
	if err != nil {
		return ClassifierState{}, opError("describe_classifier", arn, err)
	}
	props := out.DocumentClassifierProperties
	state := ClassifierState{
		ARN:     arn,
		Status:  string(props.Status),
		Message: aws.ToString(props.Message),
	}
	if props.ClassifierMetadata != nil && props.ClassifierMetadata.EvaluationMetrics != nil {
		m := props.ClassifierMetadata.EvaluationMetrics
		state.Metrics = &EvaluationMetrics{
			Accuracy:  aws.ToFloat64(m.Accuracy),
			Precision: aws.ToFloat64(m.Precision),
			Recall:    aws.ToFloat64(m.Recall),
			F1Score:   aws.ToFloat64(m.F1Score),
		}
	}
	return state, nil
}

// WaitForClassifier polls until training ends. The returned state carries the
// evaluation metrics when training succeeded.
func (c *Client) WaitForClassifier(
	ctx context.Context, arn string, delay time.Duration, maxAttempts int64,
) (ClassifierState, error) {
	var state ClassifierState
	err := waitFor(ctx, delay, maxAttempts, func(ctx context.Context) (bool, error) {
		var err error
		state, err = c.DescribeClassifier(ctx, arn)
		if err != nil {
			return false, err
		}
		return state.Done(), nil
	})
	return state, err
}

// CreateClassifierEndpoint provisions a synchronous inference endpoint for
// the trained model and returns the endpoint ARN.
func (c *Client) CreateClassifierEndpoint(
	ctx context.Context, name, modelARN string, inferenceUnits int32,
) (string, error) {
	if inferenceUnits <= 0 {
		inferenceUnits = 1
	}
	out, err := c.comprehend.CreateEndpoint(ctx, &comprehend.CreateEndpointInput{
		EndpointName:          aws.String(name),
		ModelArn:              aws.String(modelARN),
		DesiredInferenceUnits: aws.Int32(inferenceUnits),
	})
	if err != nil {
		return "", opError("create_endpoint", name, err)
	}
	return aws.ToString(out.EndpointArn), nil
}

type EndpointState struct {
	ARN     string
	Status  string
	Message string
}

func (s EndpointState) Done() bool {
	switch s.Status {
	case string(types.EndpointStatusInService), string(types.EndpointStatusFailed):
		return true
	}
	return false
}

func (s EndpointState) InService() bool {
	return s.Status == string(types.EndpointStatusInService)
}

func (c *Client) DescribeClassifierEndpoint(ctx context.Context, arn string) (EndpointState, error) {
	out, err := c.comprehend.DescribeEndpoint(ctx, &comprehend.DescribeEndpointInput{
		EndpointArn: aws.String(arn),
	})
	if err != nil {
		return EndpointState{}, opError("describe_endpoint", arn, err)
	}
	props := out.EndpointProperties
	return EndpointState{
		ARN:     arn,
		Status:  string(props.Status),
		Message: aws.ToString(props.Message),
	}, nil
}

func (c *Client) WaitForClassifierEndpoint(
	ctx context.Context, arn string, delay time.Duration, maxAttempts int64,
) (EndpointState, error) {
	var state EndpointState
	err := waitFor(ctx, delay, maxAttempts, func(ctx context.Context) (bool, error) {
		var err error
		state, err = c.DescribeClassifierEndpoint(ctx, arn)
		if err != nil {
			return false, err
		}
		return state.Done(), nil
	})
	return state, err
}

type ClassScore struct {
	Name  string  `json:"name"`
	Score float32 `json:"score"`
}

// ClassifyDocument runs one text through the endpoint and returns the class
// scores, best first.
func (c *Client) ClassifyDocument(
	ctx context.Context, endpointARN, text string,
) ([]ClassScore, error) {
	out, err := c.comprehend.ClassifyDocument(ctx, &comprehend.ClassifyDocumentInput{
		EndpointArn: aws.String(endpointARN),
		Text:        aws.String(text),
	})
	if err != nil {
		return nil, opError("classify_document", endpointARN, err)
	}
	scores := make([]ClassScore, 0, len(out.Classes))
	for _, class := range out.Classes {
		scores = append(scores, ClassScore{
			Name:  aws.ToString(class.Name),
			Score: aws.ToFloat32(class.Score),
		})
	}
	return scores, nil
}
