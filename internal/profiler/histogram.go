package profiler

import (
	"math"
	"sort"
	"strings"
)

// Histogram is the value distribution of one metric on one dimension.
type Histogram struct {
	Metric    string  `json:"metric"`
	Dimension string  `json:"dimension"`
	Bins      []Bin   `json:"bins"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Mean      float64 `json:"mean"`
	Count     int     `json:"count"`
}

type Bin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// MetricsHistogram bins the readings per metric/dimension pair. Dimension
// filters are substring matches against the reading's dimension ("CPU",
// "GPU", ...); empty selects everything.
func MetricsHistogram(metrics []SystemMetric, binCount int, dimensions ...string) []Histogram {
	if binCount <= 0 {
		binCount = 20
	}

	type group struct {
		metric    string
		dimension string
	}
	grouped := map[group][]float64{}
	for _, m := range metrics {
		if !matchesDimension(m.Dimension, dimensions) {
			continue
		}
		g := group{metric: m.Name, dimension: m.Dimension}
		grouped[g] = append(grouped[g], m.Value)
	}

	histograms := make([]Histogram, 0, len(grouped))
	for g, values := range grouped {
		histograms = append(histograms, buildHistogram(g.metric, g.dimension, values, binCount))
	}
	sort.Slice(histograms, func(i, k int) bool {
		if histograms[i].Dimension != histograms[k].Dimension {
			return histograms[i].Dimension < histograms[k].Dimension
		}
		return histograms[i].Metric < histograms[k].Metric
	})
	return histograms
}

func matchesDimension(dimension string, filters []string) bool {
	if len(filters) == 0 {
		return true
	}
	for _, f := range filters {
		if strings.Contains(strings.ToLower(dimension), strings.ToLower(f)) {
			return true
		}
	}
	return false
}

func buildHistogram(metric, dimension string, values []float64, binCount int) Histogram {
	h := Histogram{Metric: metric, Dimension: dimension, Count: len(values)}
	if len(values) == 0 {
		return h
	}

	h.Min = values[0]
	h.Max = values[0]
	sum := 0.0
	for _, v := range values {
		h.Min = math.Min(h.Min, v)
		h.Max = math.Max(h.Max, v)
		sum += v
	}
	h.Mean = sum / float64(len(values))

	width := (h.Max - h.Min) / float64(binCount)
	if width == 0 {
		h.Bins = []Bin{{Low: h.Min, High: h.Max, Count: len(values)}}
		return h
	}
	h.Bins = make([]Bin, binCount)
	for i := range h.Bins {
		h.Bins[i].Low = h.Min + float64(i)*width
		h.Bins[i].High = h.Bins[i].Low + width
	}
	for _, v := range values {
		idx := int((v - h.Min) / width)
		if idx >= binCount {
			idx = binCount - 1
		}
		h.Bins[idx].Count++
	}
	return h
}
