package workstep

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jhalttu/textpipe/internal/awsml"
)

type mockDeployClient struct {
	mock.Mock
}

func (m *mockDeployClient) CreateClassifierEndpoint(
	ctx context.Context, name, modelARN string, inferenceUnits int32,
) (string, error) {
	args := m.Called(ctx, name, modelARN, inferenceUnits)
	return args.String(0), args.Error(1)
}

func (m *mockDeployClient) WaitForClassifierEndpoint(
	ctx context.Context, arn string, delay time.Duration, maxAttempts int64,
) (awsml.EndpointState, error) {
	args := m.Called(ctx, arn, delay, maxAttempts)
	return args.Get(0).(awsml.EndpointState), args.Error(1)
}

func TestDeploy(t *testing.T) {
	t.Run("success - endpoint artifact written", func(t *testing.T) {
		// arrange
		dir := t.TempDir()
		modelPath := filepath.Join(dir, "model.json")
		assert.NoError(t, writeJSON(modelPath, ModelArtifact{ModelARN: "arn:classifier"}))

		client := new(mockDeployClient)
		client.On("CreateClassifierEndpoint", mock.Anything, "textpipe-ep", "arn:classifier", int32(1)).
			Return("arn:endpoint", nil)
		client.On("WaitForClassifierEndpoint", mock.Anything, "arn:endpoint", mock.Anything, mock.Anything).
			Return(awsml.EndpointState{ARN: "arn:endpoint", Status: "IN_SERVICE"}, nil)

		in := DeployInput{
			EndpointName:    "textpipe-ep",
			InferenceUnits:  1,
			ModelPath:       modelPath,
			EndpointPath:    filepath.Join(dir, "endpoint", "endpoint.json"),
			PollDelay:       time.Millisecond,
			PollMaxAttempts: 2,
		}

		// act
		artifact, err := Deploy(context.Background(), client, in)

		// assert
		assert.NoError(t, err)
		assert.Equal(t, "arn:endpoint", artifact.EndpointARN)

		var onDisk EndpointArtifact
		assert.NoError(t, readJSON(in.EndpointPath, &onDisk))
		assert.Equal(t, "arn:endpoint", onDisk.EndpointARN)
		assert.Equal(t, "arn:classifier", onDisk.ModelARN)
	})

	t.Run("fail - endpoint never reaches service", func(t *testing.T) {
		// arrange
		dir := t.TempDir()
		modelPath := filepath.Join(dir, "model.json")
		assert.NoError(t, writeJSON(modelPath, ModelArtifact{ModelARN: "arn:classifier"}))

		client := new(mockDeployClient)
		client.On("CreateClassifierEndpoint", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return("arn:endpoint", nil)
		client.On("WaitForClassifierEndpoint", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(awsml.EndpointState{ARN: "arn:endpoint", Status: "FAILED"}, nil)

		// act
		_, err := Deploy(context.Background(), client, DeployInput{
			ModelPath:    modelPath,
			EndpointPath: filepath.Join(dir, "endpoint.json"),
		})

		// assert
		assert.ErrorContains(t, err, "did not reach service")
	})

	t.Run("fail - model artifact missing arn", func(t *testing.T) {
		// arrange
		dir := t.TempDir()
		modelPath := filepath.Join(dir, "model.json")
		assert.NoError(t, writeJSON(modelPath, ModelArtifact{}))

		// act
		_, err := Deploy(context.Background(), new(mockDeployClient), DeployInput{
			ModelPath: modelPath,
		})

		// assert
		assert.ErrorContains(t, err, "without an arn")
	})
}
