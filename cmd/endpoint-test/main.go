package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/pkg/errors"

	"github.com/jhalttu/textpipe/internal/awsml"
	"github.com/jhalttu/textpipe/internal/workstep"
)

// Event points the test at the endpoint artifact the deploy step uploaded
// and carries one document to classify.
type Event struct {
	EndpointS3URI string `json:"endpoint_s3_uri"`
	Text          string `json:"text"`
}

type Response struct {
	Label   string             `json:"label"`
	Score   float32            `json:"score"`
	Classes []awsml.ClassScore `json:"classes"`
}

type handler struct {
	client *awsml.Client
}

func (h *handler) handle(ctx context.Context, event Event) (Response, error) {
	if event.EndpointS3URI == "" || event.Text == "" {
		return Response{}, errors.New("endpoint_s3_uri and text are required")
	}

	var artifact workstep.EndpointArtifact
	if err := h.client.GetJSON(ctx, event.EndpointS3URI, &artifact); err != nil {
		return Response{}, err
	}
	if artifact.EndpointARN == "" {
		return Response{}, errors.Errorf(
			"endpoint artifact %s without an arn", event.EndpointS3URI,
		)
	}

	classes, err := h.client.ClassifyDocument(ctx, artifact.EndpointARN, event.Text)
	if err != nil {
		return Response{}, err
	}
	if len(classes) == 0 {
		return Response{}, errors.Errorf(
			"endpoint %s returned no classes", artifact.EndpointARN,
		)
	}

	log.Printf("classified test document as %s (%.4f)", classes[0].Name, classes[0].Score)
	return Response{
		Label:   classes[0].Name,
		Score:   classes[0].Score,
		Classes: classes,
	}, nil
}

func main() {
	client, err := awsml.New(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	h := &handler{client: client}
	lambda.Start(h.handle)
}
