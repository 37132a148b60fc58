package profiler

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var ErrNoProfilingData = errors.New("profiler: no profiling data available")

func (j *TrainingJob) waitForData(
	ctx context.Context, prefix string, delay time.Duration, maxAttempts int64,
) error {
	for attempt := int64(0); attempt < maxAttempts; attempt++ {
		keys, err := j.store.ListKeys(ctx, j.bucket, j.key(prefix))
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return ErrNoProfilingData
}

// WaitForSystemProfilingData polls until the system monitor has written at
// least one file.
func (j *TrainingJob) WaitForSystemProfilingData(
	ctx context.Context, delay time.Duration, maxAttempts int64,
) error {
	return j.waitForData(ctx, systemPrefix, delay, maxAttempts)
}

// WaitForFrameworkProfilingData polls until the framework profiler has
// written at least one trace file.
func (j *TrainingJob) WaitForFrameworkProfilingData(
	ctx context.Context, delay time.Duration, maxAttempts int64,
) error {
	return j.waitForData(ctx, frameworkPrefix, delay, maxAttempts)
}
