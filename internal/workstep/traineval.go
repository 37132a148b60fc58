package workstep

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/jhalttu/textpipe/internal/awsml"
)

// classifierClient is the slice of the AWS client train-eval needs.
type classifierClient interface {
	CreateClassifier(ctx context.Context, in awsml.ClassifierInput) (string, error)
	WaitForClassifier(
		ctx context.Context, arn string, delay time.Duration, maxAttempts int64,
	) (awsml.ClassifierState, error)
}

// EvaluationReport is the artifact the accuracy gate reads. Field names are
// part of the pipeline contract.
type EvaluationReport struct {
	Accuracy  float64 `json:"Accuracy"`
	Precision float64 `json:"Precision"`
	Recall    float64 `json:"Recall"`
	F1Score   float64 `json:"F1Score"`
}

// ModelArtifact hands the trained model ARN to the deploy step.
type ModelArtifact struct {
	ModelARN    string `json:"model_arn"`
	TrainedAt   string `json:"trained_at"`
	Classifier  string `json:"classifier"`
	VersionName string `json:"version_name,omitempty"`
}

type TrainEvalInput struct {
	ClassifierName    string
	VersionName       string
	DataAccessRoleARN string
	TrainDataS3URI    string
	TestDataS3URI     string
	OutputS3URI       string
	// EvaluationPath and ModelPath are the local artifact files; the engine
	// uploads their directory as the step's output channel.
	EvaluationPath  string
	ModelPath       string
	PollDelay       time.Duration
	PollMaxAttempts int64
}

// TrainEval trains a custom classifier, waits for it, and writes the
// evaluation report and model artifact.
func TrainEval(ctx context.Context, client classifierClient, in TrainEvalInput) (EvaluationReport, error) {
	arn, err := client.CreateClassifier(ctx, awsml.ClassifierInput{
		Name:              in.ClassifierName,
		VersionName:       in.VersionName,
		DataAccessRoleARN: in.DataAccessRoleARN,
		TrainDataS3URI:    in.TrainDataS3URI,
		TestDataS3URI:     in.TestDataS3URI,
		OutputS3URI:       in.OutputS3URI,
	})
	if err != nil {
		return EvaluationReport{}, err
	}
	log.Printf("training classifier %s", arn)

	state, err := client.WaitForClassifier(ctx, arn, in.PollDelay, in.PollMaxAttempts)
	if err != nil {
		return EvaluationReport{}, err
	}
	if !state.Trained() {
		return EvaluationReport{}, errors.Errorf(
			"classifier %s ended in status %s: %s", arn, state.Status, state.Message,
		)
	}
	if state.Metrics == nil {
		return EvaluationReport{}, errors.Errorf("classifier %s trained without metrics", arn)
	}

	report := EvaluationReport{
		Accuracy:  state.Metrics.Accuracy,
		Precision: state.Metrics.Precision,
		Recall:    state.Metrics.Recall,
		F1Score:   state.Metrics.F1Score,
	}
	if err := writeJSON(in.EvaluationPath, report); err != nil {
		return EvaluationReport{}, err
	}
	artifact := ModelArtifact{
		ModelARN:    arn,
		TrainedAt:   time.Now().UTC().Format(time.RFC3339),
		Classifier:  in.ClassifierName,
		VersionName: in.VersionName,
	}
	if err := writeJSON(in.ModelPath, artifact); err != nil {
		return EvaluationReport{}, err
	}
	log.Printf("classifier %s trained, accuracy %.4f", arn, report.Accuracy)
	return report, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", filepath.Dir(path))
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encoding %s", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "decoding %s", path)
	}
	return nil
}
