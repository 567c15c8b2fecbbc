package tracker

import "time"

// Stats summarizes closed signals within a trailing window. A signal
// counts as a win iff its ROI at close was positive.
type Stats struct {
	Total      int
	Wins       int
	Losses     int
	WinRate    float64 // percent
	AverageROI float64
	TotalROI   float64
	PeriodDays int
}

// Stats projects the completed archive over the last windowDays days.
// Read-only; it never mutates tracker state.
func (t *Tracker) Stats(windowDays int) Stats {
	cutoff := time.Now().AddDate(0, 0, -windowDays)
	out := Stats{PeriodDays: windowDays}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, sig := range t.completed {
		if sig.CloseTime.IsZero() || sig.CloseTime.Before(cutoff) {
			continue
		}
		out.Total++
		if sig.CurrentROI > 0 {
			out.Wins++
		} else {
			out.Losses++
		}
		out.TotalROI += sig.CurrentROI
	}
	if out.Total > 0 {
		out.WinRate = float64(out.Wins) / float64(out.Total) * 100
		out.AverageROI = out.TotalROI / float64(out.Total)
	}
	return out
}
