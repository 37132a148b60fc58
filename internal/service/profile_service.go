package service

import (
	"context"
	"strings"
	"time"

	"github.com/jhalttu/textpipe/internal"
	"github.com/jhalttu/textpipe/internal/awsml"
	"github.com/jhalttu/textpipe/internal/profiler"
)

// ProfileEngine is the slice of the managed service the profile service
// needs to locate a training job's profiling output.
type ProfileEngine interface {
	DescribeTrainingJob(ctx context.Context, name string) (awsml.TrainingJobInfo, error)
	ListKeys(ctx context.Context, bucket, prefix string) ([]string, error)
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

type ProfileService struct {
	engine ProfileEngine
}

func NewProfileService(engine ProfileEngine) *ProfileService {
	return &ProfileService{engine: engine}
}

// SystemProfile is the aggregated view over a training job's system monitor
// output.
type SystemProfile struct {
	TrainingJob string               `json:"training_job"`
	Histograms  []profiler.Histogram `json:"histograms"`
	Heatmap     profiler.Heatmap     `json:"heatmap"`
}

// FrameworkProfile is the span view over a training job's framework
// annotations.
type FrameworkProfile struct {
	TrainingJob string            `json:"training_job"`
	Timeline    profiler.Timeline `json:"timeline"`
	Busiest     []profiler.Span   `json:"busiest"`
}

func (s *ProfileService) trainingJob(
	ctx context.Context,
	trainingJobName string,
) (*profiler.TrainingJob, awsml.TrainingJobInfo, error) {
	info, err := s.engine.DescribeTrainingJob(ctx, trainingJobName)
	if err != nil {
		return nil, info, err
	}
	bucket, prefix, err := awsml.ParseS3URI(info.ProfilerS3OutputPath)
	if err != nil {
		return nil, info, err
	}
	// The monitor writes under <output-path>/<job-name>/profiler-output/.
	prefix = strings.TrimSuffix(prefix, "/") + "/" + info.Name
	return profiler.NewTrainingJob(s.engine, bucket, prefix), info, nil
}

// SystemProfile waits for system monitor data and folds it into utilization
// histograms and a per-node heatmap.
func (s *ProfileService) SystemProfile(
	ctx context.Context,
	trainingJobName string,
	binCount int,
	heatmapBucket time.Duration,
	dimensions ...string,
) (*SystemProfile, error) {
	job, _, err := s.trainingJob(ctx, trainingJobName)
	if err != nil {
		return nil, err
	}
	if err := job.WaitForSystemProfilingData(
		ctx, internal.Config.PollDelay(), internal.Config.PollMaxAttempts,
	); err != nil {
		return nil, err
	}
	metrics, err := job.SystemMetrics(ctx)
	if err != nil {
		return nil, err
	}
	return &SystemProfile{
		TrainingJob: trainingJobName,
		Histograms:  profiler.MetricsHistogram(metrics, binCount, dimensions...),
		Heatmap:     profiler.UtilizationHeatmap(metrics, heatmapBucket, dimensions...),
	}, nil
}

// FrameworkProfile waits for framework trace data and lays it out as
// per-thread timeline tracks plus the longest spans.
func (s *ProfileService) FrameworkProfile(
	ctx context.Context,
	trainingJobName string,
	busiest int,
) (*FrameworkProfile, error) {
	job, _, err := s.trainingJob(ctx, trainingJobName)
	if err != nil {
		return nil, err
	}
	if err := job.WaitForFrameworkProfilingData(
		ctx, internal.Config.PollDelay(), internal.Config.PollMaxAttempts,
	); err != nil {
		return nil, err
	}
	events, err := job.FrameworkEvents(ctx)
	if err != nil {
		return nil, err
	}
	timeline := profiler.TimelineCharts(events)
	return &FrameworkProfile{
		TrainingJob: trainingJobName,
		Timeline:    timeline,
		Busiest:     timeline.Busiest(busiest),
	}, nil
}

// MergedProfile aligns framework spans and system readings on one wall-clock
// axis. A zero traceStart anchors the trace at the job's training start time,
// so spans land next to the system readings taken while they ran.
func (s *ProfileService) MergedProfile(
	ctx context.Context,
	trainingJobName string,
	traceStart time.Time,
) ([]profiler.MergedEvent, error) {
	job, info, err := s.trainingJob(ctx, trainingJobName)
	if err != nil {
		return nil, err
	}
	if traceStart.IsZero() && info.TrainingStartTime != nil {
		traceStart = *info.TrainingStartTime
	}
	events, err := job.FrameworkEvents(ctx)
	if err != nil {
		return nil, err
	}
	metrics, err := job.SystemMetrics(ctx)
	if err != nil {
		return nil, err
	}
	return profiler.MergedTimeline(traceStart, events, metrics), nil
}
