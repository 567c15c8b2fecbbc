// Package store persists tracked signals.
package store

import (
	"context"
	"time"

	"SignalSentinel/internal/model"
)

// Store is the persistence gateway for tracked signals.
//
// Non-final updates are a best-effort cache of recomputable state; a
// dropped one is re-persisted on the next tick. Final updates carry the
// close of a position and are retried more aggressively.
type Store interface {
	Insert(ctx context.Context, sig *model.Signal) error
	Update(ctx context.Context, sig *model.Signal, final bool) error
	LoadActive(ctx context.Context) ([]*model.Signal, error)
	// LoadCompleted returns signals closed at or after cutoff.
	LoadCompleted(ctx context.Context, cutoff time.Time) ([]*model.Signal, error)
	Close() error
}
