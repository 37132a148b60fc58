// Package profiler reads the system and framework profiling data a training
// job writes to object storage and aggregates it into histograms, timelines
// and heatmaps.
package profiler

import (
	"context"
	"time"
)

const (
	systemPrefix    = "profiler-output/system"
	frameworkPrefix = "profiler-output/framework"
)

// SystemMetric is one sampled reading from the system monitor: CPU core,
// GPU, memory or network utilization on one node.
type SystemMetric struct {
	Name      string  `json:"Name"`
	Dimension string  `json:"Dimension"`
	Value     float64 `json:"Value"`
	NodeID    string  `json:"NodeId"`
	// Timestamp is seconds since epoch with fractional precision.
	Timestamp float64 `json:"Timestamp"`
}

func (m SystemMetric) Time() time.Time {
	sec := int64(m.Timestamp)
	nsec := int64((m.Timestamp - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec).UTC()
}

// TraceEvent is one framework annotation in trace-event form: a named span
// with microsecond start and duration, attributed to a process/thread track.
type TraceEvent struct {
	Name     string `json:"name"`
	Category string `json:"cat"`
	Phase    string `json:"ph"`
	PID      int64  `json:"pid"`
	TID      int64  `json:"tid"`
	// StartUS and DurationUS are microseconds since the trace epoch.
	StartUS    int64          `json:"ts"`
	DurationUS int64          `json:"dur"`
	Args       map[string]any `json:"args,omitempty"`
}

func (e TraceEvent) EndUS() int64 {
	return e.StartUS + e.DurationUS
}

// objectStore is the slice of the storage client the profiler needs.
type objectStore interface {
	ListKeys(ctx context.Context, bucket, prefix string) ([]string, error)
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// TrainingJob locates one job's profiling output under
// s3://<bucket>/<prefix>/profiler-output/.
type TrainingJob struct {
	store  objectStore
	bucket string
	prefix string
}

func NewTrainingJob(store objectStore, bucket, prefix string) *TrainingJob {
	return &TrainingJob{store: store, bucket: bucket, prefix: prefix}
}
