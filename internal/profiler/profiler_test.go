package profiler

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

// fakeStore serves objects from a map, counting List calls.
type fakeStore struct {
	objects   map[string][]byte
	listCalls int
	listErr   error
}

func (f *fakeStore) ListKeys(_ context.Context, _, prefix string) ([]string, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var keys []string
	for key := range f.objects {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (f *fakeStore) GetObject(_ context.Context, _, key string) ([]byte, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.Errorf("no such key %s", key)
	}
	return data, nil
}

func TestTrainingJob_SystemMetrics(t *testing.T) {
	t.Run("success - parses json lines across files, sorted", func(t *testing.T) {
		// arrange
		store := &fakeStore{objects: map[string][]byte{
			"jobs/tj-1/profiler-output/system/b.json": []byte(
				`{"Name":"cpu0","Dimension":"CPUUtilization","Value":70,"NodeId":"algo-1","Timestamp":1700000002.5}` + "\n",
			),
			"jobs/tj-1/profiler-output/system/a.json": []byte(
				`{"Name":"cpu0","Dimension":"CPUUtilization","Value":50,"NodeId":"algo-1","Timestamp":1700000001.0}` + "\n" +
					`{"Name":"gpu0","Dimension":"GPUUtilization","Value":90,"NodeId":"algo-1","Timestamp":1700000001.5}` + "\n",
			),
			"jobs/tj-1/profiler-output/system/ignore.txt": []byte("not json"),
		}}
		job := NewTrainingJob(store, "bucket", "jobs/tj-1")

		// act
		metrics, err := job.SystemMetrics(context.Background())

		// assert
		assert.NoError(t, err)
		assert.Len(t, metrics, 3)
		assert.Equal(t, "cpu0", metrics[0].Name)
		assert.Equal(t, 50.0, metrics[0].Value)
		assert.Equal(t, "gpu0", metrics[1].Name)
		assert.Equal(t, 70.0, metrics[2].Value)
	})

	t.Run("fail - malformed line", func(t *testing.T) {
		// arrange
		store := &fakeStore{objects: map[string][]byte{
			"jobs/tj-1/profiler-output/system/a.json": []byte("{broken\n"),
		}}
		job := NewTrainingJob(store, "bucket", "jobs/tj-1")

		// act
		_, err := job.SystemMetrics(context.Background())

		// assert
		assert.ErrorContains(t, err, "parsing jobs/tj-1/profiler-output/system/a.json")
	})
}

func TestTrainingJob_FrameworkEvents(t *testing.T) {
	t.Run("success - keeps complete duration events only", func(t *testing.T) {
		// arrange
		store := &fakeStore{objects: map[string][]byte{
			"jobs/tj-1/profiler-output/framework/trace.json": []byte(`{"traceEvents":[
				{"name":"Step:ModeKeys.TRAIN","ph":"X","pid":1,"tid":1,"ts":2000,"dur":500},
				{"name":"process_name","ph":"M","pid":1,"tid":0,"ts":0},
				{"name":"DataLoader","cat":"io","ph":"X","pid":1,"tid":2,"ts":1000,"dur":300}
			]}`),
		}}
		job := NewTrainingJob(store, "bucket", "jobs/tj-1")

		// act
		events, err := job.FrameworkEvents(context.Background())

		// assert
		assert.NoError(t, err)
		assert.Len(t, events, 2)
		assert.Equal(t, "DataLoader", events[0].Name)
		assert.Equal(t, int64(1300), events[0].EndUS())
		assert.Equal(t, "Step:ModeKeys.TRAIN", events[1].Name)
	})

	t.Run("success - bare array form", func(t *testing.T) {
		// arrange
		store := &fakeStore{objects: map[string][]byte{
			"jobs/tj-1/profiler-output/framework/trace.json": []byte(
				`[{"name":"Step","ph":"X","pid":1,"tid":1,"ts":10,"dur":5}]`,
			),
		}}
		job := NewTrainingJob(store, "bucket", "jobs/tj-1")

		// act
		events, err := job.FrameworkEvents(context.Background())

		// assert
		assert.NoError(t, err)
		assert.Len(t, events, 1)
	})
}

func TestMetricsHistogram(t *testing.T) {
	metrics := []SystemMetric{
		{Name: "cpu0", Dimension: "CPUUtilization", Value: 10},
		{Name: "cpu0", Dimension: "CPUUtilization", Value: 20},
		{Name: "cpu0", Dimension: "CPUUtilization", Value: 90},
		{Name: "gpu0", Dimension: "GPUUtilization", Value: 80},
	}

	t.Run("success - bins and stats per metric", func(t *testing.T) {
		// act
		histograms := MetricsHistogram(metrics, 4)

		// assert
		assert.Len(t, histograms, 2)
		cpu := histograms[0]
		assert.Equal(t, "cpu0", cpu.Metric)
		assert.Equal(t, 3, cpu.Count)
		assert.Equal(t, 10.0, cpu.Min)
		assert.Equal(t, 90.0, cpu.Max)
		assert.InDelta(t, 40.0, cpu.Mean, 0.001)
		total := 0
		for _, b := range cpu.Bins {
			total += b.Count
		}
		assert.Equal(t, 3, total)
	})

	t.Run("success - dimension filter", func(t *testing.T) {
		// act
		histograms := MetricsHistogram(metrics, 4, "gpu")

		// assert
		assert.Len(t, histograms, 1)
		assert.Equal(t, "GPUUtilization", histograms[0].Dimension)
	})

	t.Run("success - constant values collapse to one bin", func(t *testing.T) {
		// act
		histograms := MetricsHistogram([]SystemMetric{
			{Name: "cpu0", Dimension: "CPUUtilization", Value: 42},
			{Name: "cpu0", Dimension: "CPUUtilization", Value: 42},
		}, 10)

		// assert
		assert.Len(t, histograms[0].Bins, 1)
		assert.Equal(t, 2, histograms[0].Bins[0].Count)
	})
}

func TestTimelineCharts(t *testing.T) {
	t.Run("success - one track per pid/tid, spans ordered", func(t *testing.T) {
		// arrange
		events := []TraceEvent{
			{Name: "Step2", Category: "train", PID: 1, TID: 1, StartUS: 2000, DurationUS: 100},
			{Name: "Step1", Category: "train", PID: 1, TID: 1, StartUS: 1000, DurationUS: 100},
			{Name: "Load", Category: "io", PID: 1, TID: 2, StartUS: 500, DurationUS: 2000},
		}

		// act
		tl := TimelineCharts(events)

		// assert
		assert.Len(t, tl.Tracks, 2)
		assert.Equal(t, "io/1/2", tl.Tracks[0].Name)
		assert.Equal(t, "train/1/1", tl.Tracks[1].Name)
		assert.Equal(t, "Step1", tl.Tracks[1].Spans[0].Label)
		assert.Equal(t, "Step2", tl.Tracks[1].Spans[1].Label)

		busiest := tl.Busiest(1)
		assert.Len(t, busiest, 1)
		assert.Equal(t, "Load", busiest[0].Label)
	})
}

func TestUtilizationHeatmap(t *testing.T) {
	t.Run("success - bucketed means per node and metric", func(t *testing.T) {
		// arrange
		metrics := []SystemMetric{
			{Name: "cpu0", Dimension: "CPUUtilization", NodeID: "algo-1", Timestamp: 100.0, Value: 40},
			{Name: "cpu0", Dimension: "CPUUtilization", NodeID: "algo-1", Timestamp: 101.0, Value: 60},
			{Name: "cpu0", Dimension: "CPUUtilization", NodeID: "algo-1", Timestamp: 106.0, Value: 10},
			{Name: "cpu0", Dimension: "CPUUtilization", NodeID: "algo-2", Timestamp: 100.0, Value: 100},
		}

		// act
		hm := UtilizationHeatmap(metrics, 5*time.Second, "cpu")

		// assert
		assert.Equal(t, 2, hm.Buckets)
		assert.Len(t, hm.Rows, 2)
		algo1 := hm.Rows[0]
		assert.Equal(t, "algo-1", algo1.NodeID)
		assert.Equal(t, 50.0, algo1.Cells[0])
		assert.Equal(t, 10.0, algo1.Cells[1])
		assert.Equal(t, 100.0, hm.Rows[1].Cells[0])
	})

	t.Run("success - empty input", func(t *testing.T) {
		// act
		hm := UtilizationHeatmap(nil, time.Second)

		// assert
		assert.Empty(t, hm.Rows)
	})
}

func TestMergedTimeline(t *testing.T) {
	t.Run("success - both sources on one clock, ordered", func(t *testing.T) {
		// arrange
		traceStart := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		events := []TraceEvent{
			{Name: "Step", Phase: "X", StartUS: 2_000_000, DurationUS: 1_000_000},
		}
		metrics := []SystemMetric{
			{Name: "cpu0", Value: 55, Timestamp: float64(traceStart.Unix()) + 1},
		}

		// act
		merged := MergedTimeline(traceStart, events, metrics)

		// assert
		assert.Len(t, merged, 2)
		assert.Equal(t, SourceSystem, merged[0].Source)
		assert.Equal(t, 55.0, merged[0].Value)
		assert.Equal(t, SourceFramework, merged[1].Source)
		assert.Equal(t, traceStart.Add(2*time.Second), merged[1].Start)
		assert.Equal(t, traceStart.Add(3*time.Second), merged[1].End)
	})
}

func TestTrainingJob_WaitForProfilingData(t *testing.T) {
	t.Run("success - returns once data appears", func(t *testing.T) {
		// arrange
		store := &fakeStore{objects: map[string][]byte{
			"jobs/tj-1/profiler-output/system/a.json": []byte(""),
		}}
		job := NewTrainingJob(store, "bucket", "jobs/tj-1")

		// act
		err := job.WaitForSystemProfilingData(context.Background(), time.Millisecond, 3)

		// assert
		assert.NoError(t, err)
		assert.Equal(t, 1, store.listCalls)
	})

	t.Run("fail - attempts exhausted", func(t *testing.T) {
		// arrange
		store := &fakeStore{objects: map[string][]byte{}}
		job := NewTrainingJob(store, "bucket", "jobs/tj-1")

		// act
		err := job.WaitForFrameworkProfilingData(context.Background(), time.Millisecond, 3)

		// assert
		assert.ErrorIs(t, err, ErrNoProfilingData)
		assert.Equal(t, 3, store.listCalls)
	})
}
