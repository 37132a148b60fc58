package profiler

import (
	"sort"
	"time"
)

// Heatmap is a per-node utilization matrix: one row per node and metric, one
// cell per time bucket, cell value the bucket's mean reading.
type Heatmap struct {
	BucketSeconds int64        `json:"bucket_seconds"`
	Start         time.Time    `json:"start"`
	Rows          []HeatmapRow `json:"rows"`
	Buckets       int          `json:"buckets"`
}

type HeatmapRow struct {
	NodeID string    `json:"node_id"`
	Metric string    `json:"metric"`
	Cells  []float64 `json:"cells"`
}

// UtilizationHeatmap buckets the readings into fixed windows. Dimension
// filters work as in MetricsHistogram.
func UtilizationHeatmap(
	metrics []SystemMetric, bucket time.Duration, dimensions ...string,
) Heatmap {
	if bucket <= 0 {
		bucket = 5 * time.Second
	}
	hm := Heatmap{BucketSeconds: int64(bucket / time.Second)}

	var filtered []SystemMetric
	for _, m := range metrics {
		if matchesDimension(m.Dimension, dimensions) {
			filtered = append(filtered, m)
		}
	}
	if len(filtered) == 0 {
		return hm
	}

	start := filtered[0].Timestamp
	end := filtered[0].Timestamp
	for _, m := range filtered {
		if m.Timestamp < start {
			start = m.Timestamp
		}
		if m.Timestamp > end {
			end = m.Timestamp
		}
	}
	hm.Start = SystemMetric{Timestamp: start}.Time()
	bucketSec := bucket.Seconds()
	hm.Buckets = int((end-start)/bucketSec) + 1

	type rowKey struct {
		node   string
		metric string
	}
	sums := map[rowKey][]float64{}
	counts := map[rowKey][]int{}
	for _, m := range filtered {
		k := rowKey{node: m.NodeID, metric: m.Name}
		if sums[k] == nil {
			sums[k] = make([]float64, hm.Buckets)
			counts[k] = make([]int, hm.Buckets)
		}
		idx := int((m.Timestamp - start) / bucketSec)
		if idx >= hm.Buckets {
			idx = hm.Buckets - 1
		}
		sums[k][idx] += m.Value
		counts[k][idx]++
	}

	for k, sum := range sums {
		cells := make([]float64, hm.Buckets)
		for i := range cells {
			if counts[k][i] > 0 {
				cells[i] = sum[i] / float64(counts[k][i])
			}
		}
		hm.Rows = append(hm.Rows, HeatmapRow{NodeID: k.node, Metric: k.metric, Cells: cells})
	}
	sort.Slice(hm.Rows, func(i, k int) bool {
		if hm.Rows[i].NodeID != hm.Rows[k].NodeID {
			return hm.Rows[i].NodeID < hm.Rows[k].NodeID
		}
		return hm.Rows[i].Metric < hm.Rows[k].Metric
	})
	return hm
}
