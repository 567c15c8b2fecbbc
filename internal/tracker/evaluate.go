package tracker

import "SignalSentinel/internal/model"

// Evaluate runs one step of the threshold state machine: given the
// current price it returns the single event the tick produces, or nil.
//
// Levels are checked highest target first, and only a not-yet-hit level
// can fire. Coarse polling means one price update can satisfy several
// thresholds at once; reporting only the highest keeps the position from
// being double-closed, and TP3 terminates it regardless of intermediate
// targets. Evaluate never mutates the signal.
func Evaluate(sig *model.Signal, price float64) *model.Event {
	switch sig.Direction {
	case model.Long:
		switch {
		case !sig.TP3Hit && price >= sig.TP3:
			return event(sig, model.LevelTP3, price)
		case !sig.TP2Hit && price >= sig.TP2:
			return event(sig, model.LevelTP2, price)
		case !sig.TP1Hit && price >= sig.TP1:
			return event(sig, model.LevelTP1, price)
		case !sig.SLHit && price <= sig.StopLoss:
			return event(sig, model.LevelStop, price)
		}
	case model.Short:
		switch {
		case !sig.TP3Hit && price <= sig.TP3:
			return event(sig, model.LevelTP3, price)
		case !sig.TP2Hit && price <= sig.TP2:
			return event(sig, model.LevelTP2, price)
		case !sig.TP1Hit && price <= sig.TP1:
			return event(sig, model.LevelTP1, price)
		case !sig.SLHit && price >= sig.StopLoss:
			return event(sig, model.LevelStop, price)
		}
	}
	return nil
}

func event(sig *model.Signal, level model.Level, price float64) *model.Event {
	return &model.Event{
		SignalID:  sig.ID,
		Level:     level,
		Price:     price,
		ReturnPct: ReturnPct(sig.Direction, sig.EntryPrice, price),
	}
}
