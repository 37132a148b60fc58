package profiler

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// fetchConcurrency bounds parallel object downloads.
const fetchConcurrency = 8

func (j *TrainingJob) key(parts ...string) string {
	all := append([]string{strings.TrimSuffix(j.prefix, "/")}, parts...)
	return strings.Join(all, "/")
}

// SystemMetrics downloads and parses every system monitor file, returning
// the readings sorted by timestamp.
func (j *TrainingJob) SystemMetrics(ctx context.Context) ([]SystemMetric, error) {
	keys, err := j.store.ListKeys(ctx, j.bucket, j.key(systemPrefix))
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	var metrics []SystemMetric
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for _, key := range keys {
		if !strings.HasSuffix(key, ".json") {
			continue
		}
		g.Go(func() error {
			data, err := j.store.GetObject(ctx, j.bucket, key)
			if err != nil {
				return err
			}
			parsed, err := parseSystemMetrics(data)
			if err != nil {
				return errors.Wrapf(err, "parsing %s", key)
			}
			mu.Lock()
			metrics = append(metrics, parsed...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(metrics, func(i, k int) bool {
		return metrics[i].Timestamp < metrics[k].Timestamp
	})
	return metrics, nil
}

// parseSystemMetrics reads one monitor file: JSON objects, one per line.
func parseSystemMetrics(data []byte) ([]SystemMetric, error) {
	var metrics []SystemMetric
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var m SystemMetric
		if err := json.Unmarshal(line, &m); err != nil {
			return nil, err
		}
		metrics = append(metrics, m)
	}
	return metrics, scanner.Err()
}

// FrameworkEvents downloads and parses every framework trace file, returning
// complete duration events sorted by start time.
func (j *TrainingJob) FrameworkEvents(ctx context.Context) ([]TraceEvent, error) {
	keys, err := j.store.ListKeys(ctx, j.bucket, j.key(frameworkPrefix))
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	var events []TraceEvent
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for _, key := range keys {
		if !strings.HasSuffix(key, ".json") {
			continue
		}
		g.Go(func() error {
			data, err := j.store.GetObject(ctx, j.bucket, key)
			if err != nil {
				return err
			}
			parsed, err := parseTraceEvents(data)
			if err != nil {
				return errors.Wrapf(err, "parsing %s", key)
			}
			mu.Lock()
			events = append(events, parsed...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(events, func(i, k int) bool {
		return events[i].StartUS < events[k].StartUS
	})
	return events, nil
}

// parseTraceEvents accepts either a bare event array or the wrapped
// {"traceEvents": [...]} form, keeping only complete duration events.
func parseTraceEvents(data []byte) ([]TraceEvent, error) {
	var raw []TraceEvent
	if err := json.Unmarshal(data, &raw); err != nil {
		var wrapped struct {
			TraceEvents []TraceEvent `json:"traceEvents"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, err
		}
		raw = wrapped.TraceEvents
	}
	events := make([]TraceEvent, 0, len(raw))
	for _, e := range raw {
		if e.Phase != "X" || e.Name == "" {
			continue
		}
		events = append(events, e)
	}
	return events, nil
}
