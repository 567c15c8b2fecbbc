package tracker

import (
	"context"
	"log"
	"time"

	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/model"
)

// finalPersistTimeout bounds the detached final-close write so shutdown
// cannot hang on a wedged store.
const finalPersistTimeout = 30 * time.Second

// monitor is the per-signal loop. It is the only goroutine that mutates
// its signal; all mutations happen under t.mu so readers can snapshot.
func (t *Tracker) monitor(sig *model.Signal) {
	defer t.wg.Done()

	log.Printf("[INFO] monitoring %s (%s %s)", sig.ID, sig.Symbol, sig.Direction)
	ticker := time.NewTicker(t.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.ctx.Done():
			log.Printf("[INFO] monitor %s cancelled", sig.ID)
			return
		case <-ticker.C:
		}
		if t.tick(sig) {
			return
		}
	}
}

// tick performs one poll cycle and reports whether the signal reached a
// terminal state.
func (t *Tracker) tick(sig *model.Signal) bool {
	fctx, cancel := context.WithTimeout(t.ctx, t.cfg.FetchTimeout)
	price, err := t.feed.FetchPrice(fctx, sig.Symbol)
	cancel()
	if err != nil {
		// Transient: skip the tick, the next one retries.
		log.Printf("[WARN] price unavailable for %s: %v", sig.Symbol, err)
		return false
	}

	t.mu.Lock()
	ev := Evaluate(sig, price)
	if ev != nil {
		t.apply(sig, ev)
	}
	sig.CurrentROI = CurrentROI(sig, price)
	snap := sig.Clone()
	t.mu.Unlock()

	if err := t.store.Update(t.ctx, snap, false); err != nil {
		// State stays correct in memory and is re-persisted next tick.
		metrics.DroppedUpdates.Inc()
		log.Printf("[WARN] dropped update for %s: %v", sig.ID, err)
	}

	if ev == nil {
		return false
	}

	metrics.ThresholdEvents.WithLabelValues(string(ev.Level)).Inc()
	t.publish(snap, *ev)

	switch {
	case ev.Level == model.LevelStop:
		t.close(sig, model.StatusStopped)
		return true
	case ev.Level == model.LevelTP3, snap.TP1Hit && snap.TP2Hit && snap.TP3Hit:
		t.close(sig, model.StatusCompleted)
		return true
	}
	return false
}

// apply books the event on the signal: the hit flag turns on and a fill
// closes the level's configured fraction, or whatever is left for a stop.
// Caller holds t.mu.
func (t *Tracker) apply(sig *model.Signal, ev *model.Event) {
	switch ev.Level {
	case model.LevelTP1:
		sig.TP1Hit = true
	case model.LevelTP2:
		sig.TP2Hit = true
	case model.LevelTP3:
		sig.TP3Hit = true
	case model.LevelStop:
		sig.SLHit = true
	}
	fraction := sig.Allocation.Of(ev.Level)
	if ev.Level == model.LevelStop {
		fraction = sig.OpenFraction()
	}
	sig.Fills = append(sig.Fills, model.Fill{
		Level:     ev.Level,
		Price:     ev.Price,
		Fraction:  fraction,
		ReturnPct: ev.ReturnPct,
		Weighted:  ev.ReturnPct * fraction,
		Time:      time.Now(),
	})
	log.Printf("[INFO] %s hit on %s at %.4f (%+.2f%%, %.0f%% of position)",
		ev.Level, sig.ID, ev.Price, ev.ReturnPct, fraction*100)
}

// close transitions the signal to a terminal status, persists the final
// record and retires it from the registry. The final ROI keeps only the
// realized contributions; nothing is open anymore.
func (t *Tracker) close(sig *model.Signal, status model.Status) {
	t.mu.Lock()
	sig.Status = status
	sig.CloseTime = time.Now()
	sig.CurrentROI = Realized(sig)
	snap := sig.Clone()
	t.mu.Unlock()

	// Detached from the monitor context: a shutdown arriving mid-close
	// must not strand a transitioned status without its persisted close.
	fctx, cancel := context.WithTimeout(context.WithoutCancel(t.ctx), finalPersistTimeout)
	defer cancel()
	if err := t.store.Update(fctx, snap, true); err != nil {
		log.Printf("[ERROR] final close for %s not durable, operator attention needed: %v", sig.ID, err)
	}

	t.Retire(sig.ID)
	log.Printf("[INFO] signal %s closed: %s, final ROI %+.2f%%", sig.ID, status, snap.CurrentROI)
}

func (t *Tracker) publish(snap *model.Signal, ev model.Event) {
	if t.sink == nil {
		return
	}
	if err := t.sink.Publish(t.ctx, snap, ev); err != nil {
		log.Printf("[ERROR] publish %s event for %s: %v", ev.Level, snap.ID, err)
	}
}
