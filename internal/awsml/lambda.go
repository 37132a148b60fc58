package awsml

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/pkg/errors"
)

// InvokeFunction invokes the function synchronously with the JSON-encoded
// payload and returns the raw response payload. A function-side error is
// returned as an error, not a payload.
func (c *Client) InvokeFunction(
	ctx context.Context, functionName string, payload any,
) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, opError("invoke_function", functionName, err)
	}
	out, err := c.lambda.Invoke(ctx, &lambda.InvokeInput{
		FunctionName: aws.String(functionName),
		Payload:      body,
	})
	if err != nil {
		return nil, opError("invoke_function", functionName, err)
	}
	if fe := aws.ToString(out.FunctionError); fe != "" {
		return nil, opError(
			"invoke_function",
			functionName,
			errors.Errorf("%s: %s", fe, string(out.Payload)),
		)
	}
	return out.Payload, nil
}
