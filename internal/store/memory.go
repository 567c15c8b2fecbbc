package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"SignalSentinel/internal/model"
)

// MemoryStore keeps signals in memory. Used when SQLite is not configured
// and as a stand-in for tests.
type MemoryStore struct {
	mu      sync.Mutex
	signals map[string]*model.Signal
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{signals: make(map[string]*model.Signal)}
}

func (m *MemoryStore) Insert(_ context.Context, sig *model.Signal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.signals[sig.ID]; ok {
		return fmt.Errorf("signal %s already stored", sig.ID)
	}
	m.signals[sig.ID] = sig.Clone()
	return nil
}

func (m *MemoryStore) Update(_ context.Context, sig *model.Signal, _ bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.signals[sig.ID]; !ok {
		return fmt.Errorf("signal %s not stored", sig.ID)
	}
	m.signals[sig.ID] = sig.Clone()
	return nil
}

func (m *MemoryStore) LoadActive(_ context.Context) ([]*model.Signal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Signal
	for _, sig := range m.signals {
		if sig.Status == model.StatusActive {
			out = append(out, sig.Clone())
		}
	}
	return out, nil
}

func (m *MemoryStore) LoadCompleted(_ context.Context, cutoff time.Time) ([]*model.Signal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Signal
	for _, sig := range m.signals {
		if sig.Status != model.StatusActive && !sig.CloseTime.Before(cutoff) {
			out = append(out, sig.Clone())
		}
	}
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }
