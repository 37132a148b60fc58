package main

import (
	"context"
	"flag"
	"log"
	"path/filepath"
	"time"

	"github.com/jhalttu/textpipe/internal"
	"github.com/jhalttu/textpipe/internal/awsml"
	"github.com/jhalttu/textpipe/internal/workstep"
)

func main() {
	classifierName := flag.String("classifier-name", "", "classifier name")
	versionName := flag.String("version-name", "", "classifier version name")
	dataAccessRoleARN := flag.String(
		"data-access-role-arn", "", "role the classifier assumes to read training data",
	)
	trainDataS3URI := flag.String("train-data-s3-uri", "", "s3 uri of the training split")
	testDataS3URI := flag.String("test-data-s3-uri", "", "s3 uri of the evaluation split")
	outputS3URI := flag.String("output-s3-uri", "", "s3 uri for classifier output")
	evaluationPath := flag.String(
		"evaluation-path",
		filepath.Join(internal.ProcessingEvaluationDir, internal.EvaluationFileName),
		"output path for the evaluation report",
	)
	modelPath := flag.String(
		"model-path", filepath.Join(internal.ProcessingEvaluationDir, "model.json"),
		"output path for the model artifact",
	)
	region := flag.String("region", "", "aws region")
	pollDelay := flag.Duration("poll-delay", 60*time.Second, "delay between status polls")
	pollMaxAttempts := flag.Int64("poll-max-attempts", 120, "maximum status polls")
	flag.Parse()

	if *classifierName == "" || *dataAccessRoleARN == "" || *trainDataS3URI == "" {
		log.Fatal("classifier-name, data-access-role-arn and train-data-s3-uri are required")
	}

	ctx := context.Background()
	client, err := awsml.New(ctx, awsml.WithRegion(*region))
	if err != nil {
		log.Fatal(err)
	}

	if _, err := workstep.TrainEval(ctx, client, workstep.TrainEvalInput{
		ClassifierName:    *classifierName,
		VersionName:       *versionName,
		DataAccessRoleARN: *dataAccessRoleARN,
		TrainDataS3URI:    *trainDataS3URI,
		TestDataS3URI:     *testDataS3URI,
		OutputS3URI:       *outputS3URI,
		EvaluationPath:    *evaluationPath,
		ModelPath:         *modelPath,
		PollDelay:         *pollDelay,
		PollMaxAttempts:   *pollMaxAttempts,
	}); err != nil {
		log.Fatal(err)
	}
}
