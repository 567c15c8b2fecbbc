// Package tracker owns the lifecycle of open trading signals: it
// registers them, watches live prices with one monitor per signal, books
// partial fills at the configured targets and retires closed positions.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/pricefeed"
	"SignalSentinel/internal/store"
)

var (
	// ErrInvalidSignal rejects a malformed definition at registration.
	ErrInvalidSignal = errors.New("invalid signal definition")
	// ErrNotFound means no signal with that id is tracked.
	ErrNotFound = errors.New("unknown signal")
)

// Sink receives threshold events for delivery. The tracker does not know
// or care how they are rendered.
type Sink interface {
	Publish(ctx context.Context, sig *model.Signal, ev model.Event) error
}

// Config holds tracker tuning knobs.
type Config struct {
	PollInterval time.Duration    // monitor tick cadence
	FetchTimeout time.Duration    // per-tick price fetch budget
	Allocation   model.Allocation // position split across targets
}

// archiveSeed bounds how far back the completed archive is reloaded on
// startup.
const archiveSeed = 90 * 24 * time.Hour

// Tracker is the signal registry plus the monitors it spawns. The active
// map and completed archive are the only state shared across monitors;
// both are guarded by mu. Each signal's fields are mutated only by its
// own monitor, under mu so that readers can take consistent snapshots.
type Tracker struct {
	feed  pricefeed.Source
	store store.Store
	sink  Sink
	cfg   Config

	mu        sync.Mutex
	active    map[string]*model.Signal
	completed []*model.Signal

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Tracker. sink may be nil when no delivery is configured.
func New(feed pricefeed.Source, st store.Store, sink Sink, cfg Config) *Tracker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 15 * time.Second
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 10 * time.Second
	}
	if !cfg.Allocation.Valid() {
		cfg.Allocation = model.DefaultAllocation
	}
	return &Tracker{
		feed:   feed,
		store:  st,
		sink:   sink,
		cfg:    cfg,
		active: make(map[string]*model.Signal),
	}
}

// Start recovers persisted state and begins monitoring. It must be called
// before Register.
func (t *Tracker) Start(ctx context.Context) error {
	t.ctx, t.cancel = context.WithCancel(ctx)

	actives, err := t.store.LoadActive(ctx)
	if err != nil {
		return fmt.Errorf("load active signals: %w", err)
	}
	recovered := 0
	for _, sig := range actives {
		if sig.EntryPrice == 0 {
			log.Printf("[WARN] skipping corrupt signal %s: entry price is zero", sig.ID)
			continue
		}
		if !sig.Allocation.Valid() {
			sig.Allocation = t.cfg.Allocation
		}
		if len(sig.Fills) == 0 {
			rebuildFills(sig)
		}
		t.mu.Lock()
		t.active[sig.ID] = sig
		t.mu.Unlock()
		t.spawn(sig)
		recovered++
	}

	// Re-seed the completed archive so stats windows survive restarts.
	done, err := t.store.LoadCompleted(ctx, time.Now().Add(-archiveSeed))
	if err != nil {
		log.Printf("[WARN] load completed signals: %v", err)
	} else {
		t.mu.Lock()
		t.completed = append(t.completed, done...)
		t.mu.Unlock()
	}

	metrics.ActiveSignals.Set(float64(recovered))
	log.Printf("[INFO] tracker started: %d active signals recovered, %d archived", recovered, len(done))
	return nil
}

// Stop cancels every monitor and waits for them to exit.
func (t *Tracker) Stop() {
	if t.cancel != nil {
		t.cancel()
	}
	t.wg.Wait()
	log.Println("[INFO] tracker stopped")
}

// Register validates a definition, persists the initial record and starts
// a monitor for it. Returns the assigned signal id.
func (t *Tracker) Register(def model.Definition) (string, error) {
	if err := validate(def); err != nil {
		return "", err
	}

	now := time.Now()
	sig := &model.Signal{
		ID:           newID(def.Symbol, now),
		Symbol:       def.Symbol,
		Direction:    def.Direction,
		EntryPrice:   def.EntryPrice,
		StopLoss:     def.StopLoss,
		TP1:          def.TP1,
		TP2:          def.TP2,
		TP3:          def.TP3,
		Status:       model.StatusActive,
		QualityScore: def.QualityScore,
		Allocation:   t.cfg.Allocation,
		EntryTime:    now,
	}

	// The record is a recoverable cache of in-memory state; an insert
	// failure must not kill the registration.
	if err := t.store.Insert(t.ctx, sig); err != nil {
		log.Printf("[ERROR] persist new signal %s: %v", sig.ID, err)
	}

	t.mu.Lock()
	t.active[sig.ID] = sig
	size := len(t.active)
	t.mu.Unlock()

	t.spawn(sig)
	metrics.ActiveSignals.Set(float64(size))
	log.Printf("[INFO] registered signal %s (%s %s @ %.4f)", sig.ID, sig.Symbol, sig.Direction, sig.EntryPrice)
	return sig.ID, nil
}

// Retire moves a signal from the active map to the completed archive.
// Retiring an unknown or already-retired id is a no-op.
func (t *Tracker) Retire(id string) {
	t.mu.Lock()
	sig, ok := t.active[id]
	if ok {
		delete(t.active, id)
		t.completed = append(t.completed, sig)
	}
	size := len(t.active)
	t.mu.Unlock()
	if ok {
		metrics.ActiveSignals.Set(float64(size))
	}
}

// Get returns a copy of a tracked or archived signal.
func (t *Tracker) Get(id string) (*model.Signal, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if sig, ok := t.active[id]; ok {
		return sig.Clone(), nil
	}
	for _, sig := range t.completed {
		if sig.ID == id {
			return sig.Clone(), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// ListActive returns copies of all monitored signals, oldest first.
func (t *Tracker) ListActive() []*model.Signal {
	t.mu.Lock()
	out := make([]*model.Signal, 0, len(t.active))
	for _, sig := range t.active {
		out = append(out, sig.Clone())
	}
	t.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].EntryTime.Equal(out[j].EntryTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].EntryTime.Before(out[j].EntryTime)
	})
	return out
}

// rebuildFills reconstructs the fill ledger from the hit flags. Stored
// rows carry flags and ROI but not the fills themselves, so a recovered
// signal would otherwise report its whole position as open and a later
// stop would close 100% instead of the true remainder. Fill times are
// approximated by the entry time; the weighted contributions are exact
// because target prices are fixed at registration.
func rebuildFills(sig *model.Signal) {
	for _, lv := range []struct {
		level model.Level
		price float64
	}{
		{model.LevelTP1, sig.TP1},
		{model.LevelTP2, sig.TP2},
		{model.LevelTP3, sig.TP3},
	} {
		if !sig.Hit(lv.level) {
			continue
		}
		ret := ReturnPct(sig.Direction, sig.EntryPrice, lv.price)
		fraction := sig.Allocation.Of(lv.level)
		sig.Fills = append(sig.Fills, model.Fill{
			Level:     lv.level,
			Price:     lv.price,
			Fraction:  fraction,
			ReturnPct: ret,
			Weighted:  ret * fraction,
			Time:      sig.EntryTime,
		})
	}
}

func (t *Tracker) spawn(sig *model.Signal) {
	t.wg.Add(1)
	go t.monitor(sig)
}

func validate(def model.Definition) error {
	if strings.TrimSpace(def.Symbol) == "" {
		return fmt.Errorf("%w: empty symbol", ErrInvalidSignal)
	}
	for name, p := range map[string]float64{
		"entry_price": def.EntryPrice,
		"stop_loss":   def.StopLoss,
		"tp1":         def.TP1,
		"tp2":         def.TP2,
		"tp3":         def.TP3,
	} {
		if p <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidSignal, name, p)
		}
	}
	switch def.Direction {
	case model.Long:
		if !(def.StopLoss < def.EntryPrice && def.EntryPrice < def.TP1 && def.TP1 < def.TP2 && def.TP2 < def.TP3) {
			return fmt.Errorf("%w: long prices must satisfy sl < entry < tp1 < tp2 < tp3", ErrInvalidSignal)
		}
	case model.Short:
		if !(def.StopLoss > def.EntryPrice && def.EntryPrice > def.TP1 && def.TP1 > def.TP2 && def.TP2 > def.TP3) {
			return fmt.Errorf("%w: short prices must satisfy sl > entry > tp1 > tp2 > tp3", ErrInvalidSignal)
		}
	default:
		return fmt.Errorf("%w: direction must be LONG or SHORT, got %q", ErrInvalidSignal, def.Direction)
	}
	return nil
}

// newID keeps the readable symbol_unixtime shape; the uuid suffix makes
// same-second registrations on one symbol unique.
func newID(symbol string, now time.Time) string {
	return fmt.Sprintf("%s_%d_%s", symbol, now.Unix(), uuid.NewString()[:8])
}
