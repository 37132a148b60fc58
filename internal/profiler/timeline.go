package profiler

import (
	"fmt"
	"sort"
)

// Span is one labeled interval on a timeline track, microseconds since the
// trace epoch.
type Span struct {
	Label   string `json:"label"`
	StartUS int64  `json:"start_us"`
	EndUS   int64  `json:"end_us"`
}

type Track struct {
	Name  string `json:"name"`
	Spans []Span `json:"spans"`
}

type Timeline struct {
	Tracks []Track `json:"tracks"`
}

// TimelineCharts lays the framework events out on one track per
// process/thread pair, spans in start order.
func TimelineCharts(events []TraceEvent) Timeline {
	tracks := map[string][]Span{}
	for _, e := range events {
		name := trackName(e)
		tracks[name] = append(tracks[name], Span{
			Label:   e.Name,
			StartUS: e.StartUS,
			EndUS:   e.EndUS(),
		})
	}

	tl := Timeline{Tracks: make([]Track, 0, len(tracks))}
	for name, spans := range tracks {
		sort.SliceStable(spans, func(i, k int) bool {
			return spans[i].StartUS < spans[k].StartUS
		})
		tl.Tracks = append(tl.Tracks, Track{Name: name, Spans: spans})
	}
	sort.Slice(tl.Tracks, func(i, k int) bool {
		return tl.Tracks[i].Name < tl.Tracks[k].Name
	})
	return tl
}

func trackName(e TraceEvent) string {
	if e.Category != "" {
		return fmt.Sprintf("%s/%d/%d", e.Category, e.PID, e.TID)
	}
	return fmt.Sprintf("%d/%d", e.PID, e.TID)
}

// Busiest returns the n longest spans across all tracks, longest first.
func (t Timeline) Busiest(n int) []Span {
	var all []Span
	for _, track := range t.Tracks {
		all = append(all, track.Spans...)
	}
	sort.SliceStable(all, func(i, k int) bool {
		return all[i].EndUS-all[i].StartUS > all[k].EndUS-all[k].StartUS
	})
	if n > 0 && n < len(all) {
		all = all[:n]
	}
	return all
}
