package profiler

import (
	"sort"
	"time"
)

// MergedEvent is one entry of the merged view over framework spans and
// system readings, on a shared wall-clock axis.
type MergedEvent struct {
	Source string    `json:"source"`
	Label  string    `json:"label"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Value  float64   `json:"value,omitempty"`
}

const (
	SourceFramework = "framework"
	SourceSystem    = "system"
)

// MergedTimeline aligns framework spans (trace epoch given by traceStart)
// with system readings into one start-ordered list.
func MergedTimeline(
	traceStart time.Time, events []TraceEvent, metrics []SystemMetric,
) []MergedEvent {
	merged := make([]MergedEvent, 0, len(events)+len(metrics))
	for _, e := range events {
		start := traceStart.Add(time.Duration(e.StartUS) * time.Microsecond)
		merged = append(merged, MergedEvent{
			Source: SourceFramework,
			Label:  e.Name,
			Start:  start,
			End:    start.Add(time.Duration(e.DurationUS) * time.Microsecond),
		})
	}
	for _, m := range metrics {
		at := m.Time()
		merged = append(merged, MergedEvent{
			Source: SourceSystem,
			Label:  m.Name,
			Start:  at,
			End:    at,
			Value:  m.Value,
		})
	}
	sort.SliceStable(merged, func(i, k int) bool {
		return merged[i].Start.Before(merged[k].Start)
	})
	return merged
}
