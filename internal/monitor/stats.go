package monitor

import "time"

// Reporting windows.
const (
	Window5Min    = 5 * time.Minute
	Window15Min   = 15 * time.Minute
	Window1Hour   = time.Hour
	Window24Hours = 24 * time.Hour
)

// Stats holds windowed income sums for one cycle. The 5-minute window is
// always reported, possibly as a partial value right after startup. The
// longer windows stay nil until the session has been running at least that
// long, so "no data yet" is never confused with zero activity.
type Stats struct {
	Last5Min    float64
	Last15Min   *float64
	LastHour    *float64
	Last24Hours *float64
	Total       float64
}

// ComputeStats derives the windowed sums from the history as of now. A
// window is included once elapsed time reaches the window length, boundary
// inclusive.
func ComputeStats(h *History, now, sessionStart time.Time) Stats {
	elapsed := now.Sub(sessionStart)

	s := Stats{
		Last5Min: h.SumSince(now.Add(-Window5Min)),
		Total:    h.Total(),
	}
	if elapsed >= Window15Min {
		v := h.SumSince(now.Add(-Window15Min))
		s.Last15Min = &v
	}
	if elapsed >= Window1Hour {
		v := h.SumSince(now.Add(-Window1Hour))
		s.LastHour = &v
	}
	if elapsed >= Window24Hours {
		v := h.SumSince(now.Add(-Window24Hours))
		s.Last24Hours = &v
	}
	return s
}
