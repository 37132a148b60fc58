package awsml

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/comprehend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestClient_CreateClassifier(t *testing.T) {
	t.Run("success - english multiclass with test channel", func(t *testing.T) {
		// arrange
		cm := new(mockComprehendAPI)
		cm.On("CreateDocumentClassifier", mock.Anything, mock.MatchedBy(func(in *comprehend.CreateDocumentClassifierInput) bool {
			return in.LanguageCode == types.LanguageCodeEn &&
				in.Mode == types.DocumentClassifierModeMultiClass &&
				aws.ToString(in.InputDataConfig.S3Uri) == "s3://b/train.csv" &&
				aws.ToString(in.InputDataConfig.TestS3Uri) == "s3://b/test.csv"
		})).Return(&comprehend.CreateDocumentClassifierOutput{
			DocumentClassifierArn: aws.String("arn:classifier"),
		}, nil)
		c := &Client{comprehend: cm}

		// act
		arn, err := c.CreateClassifier(context.Background(), ClassifierInput{
			Name:              "textpipe-classifier",
			DataAccessRoleARN: "arn:aws:iam::1:role/data",
			TrainDataS3URI:    "s3://b/train.csv",
			TestDataS3URI:     "s3://b/test.csv",
		})

		// assert
		assert.NoError(t, err)
		assert.Equal(t, "arn:classifier", arn)
		cm.AssertExpectations(t)
	})
}

func TestClient_WaitForClassifier(t *testing.T) {
	t.Run("success - metrics surface once trained", func(t *testing.T) {
		// arrange
		cm := new(mockComprehendAPI)
		cm.On("DescribeDocumentClassifier", mock.Anything, mock.Anything).
			Return(&comprehend.DescribeDocumentClassifierOutput{
				DocumentClassifierProperties: &types.DocumentClassifierProperties{
					Status: types.ModelStatusTraining,
				},
			}, nil).Once()
		cm.On("DescribeDocumentClassifier", mock.Anything, mock.Anything).
			Return(&comprehend.DescribeDocumentClassifierOutput{
				DocumentClassifierProperties: &types.DocumentClassifierProperties{
					Status: types.ModelStatusTrained,
					ClassifierMetadata: &types.ClassifierMetadata{
						EvaluationMetrics: &types.ClassifierEvaluationMetrics{
							Accuracy: aws.Float64(0.91),
							F1Score:  aws.Float64(0.88),
						},
					},
				},
			}, nil).Once()
		c := &Client{comprehend: cm}

		// act
		state, err := c.WaitForClassifier(context.Background(), "arn:classifier", time.Millisecond, 5)

		// assert
		assert.NoError(t, err)
		assert.True(t, state.Trained())
		assert.NotNil(t, state.Metrics)
		assert.Equal(t, 0.91, state.Metrics.Accuracy)
	})

	t.Run("success - in-error is done but not trained", func(t *testing.T) {
		// arrange
		cm := new(mockComprehendAPI)
		cm.On("DescribeDocumentClassifier", mock.Anything, mock.Anything).
			Return(&comprehend.DescribeDocumentClassifierOutput{
				DocumentClassifierProperties: &types.DocumentClassifierProperties{
					Status:  types.ModelStatusInError,
					Message: aws.String("not enough documents per label"),
				},
			}, nil)
		c := &Client{comprehend: cm}

		// act
		state, err := c.WaitForClassifier(context.Background(), "arn:classifier", time.Millisecond, 5)

		// assert
		assert.NoError(t, err)
		assert.True(t, state.Done())
		assert.False(t, state.Trained())
		assert.Equal(t, "not enough documents per label", state.Message)
	})
}

func TestClient_CreateClassifierEndpoint(t *testing.T) {
	t.Run("success - defaults to one inference unit", func(t *testing.T) {
		// arrange
		cm := new(mockComprehendAPI)
		cm.On("CreateEndpoint", mock.Anything, mock.MatchedBy(func(in *comprehend.CreateEndpointInput) bool {
			return aws.ToInt32(in.DesiredInferenceUnits) == 1
		})).Return(&comprehend.CreateEndpointOutput{
			EndpointArn: aws.String("arn:endpoint"),
		}, nil)
		c := &Client{comprehend: cm}

		// act
		arn, err := c.CreateClassifierEndpoint(context.Background(), "textpipe-ep", "arn:classifier", 0)

		// assert
		assert.NoError(t, err)
		assert.Equal(t, "arn:endpoint", arn)
	})
}

func TestClient_ClassifyDocument(t *testing.T) {
	t.Run("success - class scores returned", func(t *testing.T) {
		// arrange
		cm := new(mockComprehendAPI)
		cm.On("ClassifyDocument", mock.Anything, mock.MatchedBy(func(in *comprehend.ClassifyDocumentInput) bool {
			return aws.ToString(in.Text) == "the pitch was perfect"
		})).Return(&comprehend.ClassifyDocumentOutput{
			Classes: []types.DocumentClass{
				{Name: aws.String("BASEBALL"), Score: aws.Float32(0.97)},
				{Name: aws.String("HOCKEY"), Score: aws.Float32(0.03)},
			},
		}, nil)
		c := &Client{comprehend: cm}

		// act
		scores, err := c.ClassifyDocument(context.Background(), "arn:endpoint", "the pitch was perfect")

		// assert
		assert.NoError(t, err)
		assert.Len(t, scores, 2)
		assert.Equal(t, "BASEBALL", scores[0].Name)
		assert.InDelta(t, 0.97, scores[0].Score, 0.001)
	})
}
