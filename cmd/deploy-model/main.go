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
	endpointName := flag.String("endpoint-name", "", "endpoint name")
	inferenceUnits := flag.Int("inference-units", 1, "endpoint inference units")
	modelPath := flag.String(
		"model-path", filepath.Join(internal.ProcessingInputDir, "model.json"),
		"model artifact written by the training step",
	)
	endpointPath := flag.String(
		"endpoint-path", filepath.Join(internal.ProcessingEvaluationDir, "endpoint.json"),
		"output path for the endpoint artifact",
	)
	endpointS3URI := flag.String(
		"endpoint-s3-uri", "", "optional s3 uri the endpoint artifact is also uploaded to",
	)
	region := flag.String("region", "", "aws region")
	pollDelay := flag.Duration("poll-delay", 30*time.Second, "delay between status polls")
	pollMaxAttempts := flag.Int64("poll-max-attempts", 120, "maximum status polls")
	flag.Parse()

	if *endpointName == "" {
		log.Fatal("endpoint-name is required")
	}

	ctx := context.Background()
	client, err := awsml.New(ctx, awsml.WithRegion(*region))
	if err != nil {
		log.Fatal(err)
	}

	artifact, err := workstep.Deploy(ctx, client, workstep.DeployInput{
		EndpointName:    *endpointName,
		InferenceUnits:  int32(*inferenceUnits),
		ModelPath:       *modelPath,
		EndpointPath:    *endpointPath,
		PollDelay:       *pollDelay,
		PollMaxAttempts: *pollMaxAttempts,
	})
	if err != nil {
		log.Fatal(err)
	}

	if *endpointS3URI != "" {
		if err := client.PutJSON(ctx, *endpointS3URI, artifact); err != nil {
			log.Fatal(err)
		}
		log.Printf("endpoint artifact uploaded to %s", *endpointS3URI)
	}
}
