package tracker

import (
	"log"

	"SignalSentinel/internal/model"
)

// ReturnPct is the direction-aware percent change from entry. A zero
// entry price returns 0 rather than dividing by it.
func ReturnPct(dir model.Direction, entry, price float64) float64 {
	if entry == 0 {
		return 0
	}
	if dir == model.Short {
		return (entry - price) / entry * 100
	}
	return (price - entry) / entry * 100
}

// Realized is the ROI locked in by fills.
func Realized(sig *model.Signal) float64 {
	var total float64
	for _, f := range sig.Fills {
		total += f.Weighted
	}
	return total
}

// CurrentROI is the realized ROI plus the unrealized contribution of the
// still-open fraction at the given price.
func CurrentROI(sig *model.Signal, price float64) float64 {
	realized := Realized(sig)
	open := sig.OpenFraction()
	if open <= 0 {
		return realized
	}
	if sig.EntryPrice == 0 {
		log.Printf("[WARN] zero entry price on %s, reporting realized ROI only", sig.ID)
		return realized
	}
	return realized + ReturnPct(sig.Direction, sig.EntryPrice, price)*open
}
