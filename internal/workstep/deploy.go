package workstep

import (
	"context"
	"log"
	"time"

	"github.com/pkg/errors"

	"github.com/jhalttu/textpipe/internal/awsml"
)

type deployClient interface {
	CreateClassifierEndpoint(
		ctx context.Context, name, modelARN string, inferenceUnits int32,
	) (string, error)
	WaitForClassifierEndpoint(
		ctx context.Context, arn string, delay time.Duration, maxAttempts int64,
	) (awsml.EndpointState, error)
}

// EndpointArtifact is what the deploy step publishes for the endpoint test.
type EndpointArtifact struct {
	EndpointARN string `json:"endpoint_arn"`
	ModelARN    string `json:"model_arn"`
	DeployedAt  string `json:"deployed_at"`
}

type DeployInput struct {
	EndpointName   string
	InferenceUnits int32
	// ModelPath is the model artifact written by train-eval.
	ModelPath string
	// EndpointPath is where the endpoint artifact is written.
	EndpointPath    string
	PollDelay       time.Duration
	PollMaxAttempts int64
}

// Deploy provisions an inference endpoint for the trained model and records
// its ARN for the endpoint test.
func Deploy(ctx context.Context, client deployClient, in DeployInput) (EndpointArtifact, error) {
	var model ModelArtifact
	if err := readJSON(in.ModelPath, &model); err != nil {
		return EndpointArtifact{}, err
	}
	if model.ModelARN == "" {
		return EndpointArtifact{}, errors.Errorf("model artifact %s without an arn", in.ModelPath)
	}

	arn, err := client.CreateClassifierEndpoint(ctx, in.EndpointName, model.ModelARN, in.InferenceUnits)
	if err != nil {
		return EndpointArtifact{}, err
	}
	log.Printf("provisioning endpoint %s", arn)

	state, err := client.WaitForClassifierEndpoint(ctx, arn, in.PollDelay, in.PollMaxAttempts)
	if err != nil {
		return EndpointArtifact{}, err
	}
	if !state.InService() {
		return EndpointArtifact{}, errors.Errorf("endpoint %s did not reach service", arn)
	}

	artifact := EndpointArtifact{
		EndpointARN: arn,
		ModelARN:    model.ModelARN,
		DeployedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := writeJSON(in.EndpointPath, artifact); err != nil {
		return EndpointArtifact{}, err
	}
	log.Printf("endpoint %s in service", arn)
	return artifact, nil
}
