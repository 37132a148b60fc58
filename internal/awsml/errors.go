// Package awsml wraps the AWS clients the pipeline server talks to:
// the pipeline engine, the text classifier service, function invocation
// and object storage.
package awsml

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// Error carries the failed operation and the resource it touched on top of
// the SDK error.
type Error struct {
	Op       string
	Resource string
	Err      error
}

func (e *Error) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("awsml.%s %s: %v", e.Op, e.Resource, e.Err)
	}
	return fmt.Sprintf("awsml.%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

var (
	ErrNotFound     = errors.New("awsml: resource not found")
	ErrAccessDenied = errors.New("awsml: access denied")
	ErrThrottled    = errors.New("awsml: throttled")
	ErrConflict     = errors.New("awsml: resource conflict")
	ErrWaitTimeout  = errors.New("awsml: wait attempts exhausted")
)

// opError classifies an SDK error by its API error code and wraps it with
// operation and resource context.
func opError(op, resource string, err error) error {
	if err == nil {
		return nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ResourceNotFound", "ResourceNotFoundException", "NoSuchKey", "NotFound":
			err = fmt.Errorf("%w: %s", ErrNotFound, apiErr.ErrorMessage())
		case "AccessDenied", "AccessDeniedException":
			err = fmt.Errorf("%w: %s", ErrAccessDenied, apiErr.ErrorMessage())
		case "ThrottlingException", "TooManyRequestsException":
			err = fmt.Errorf("%w: %s", ErrThrottled, apiErr.ErrorMessage())
		case "ResourceInUse", "ResourceInUseException", "ConflictException":
			err = fmt.Errorf("%w: %s", ErrConflict, apiErr.ErrorMessage())
		}
	}
	return &Error{Op: op, Resource: resource, Err: err}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
