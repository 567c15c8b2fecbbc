// Package pricefeed supplies current prices for tracked symbols.
package pricefeed

import (
	"context"
	"errors"
	"log"

	"SignalSentinel/internal/metrics"
)

// ErrUnavailable means no configured source could produce a price.
var ErrUnavailable = errors.New("pricefeed: no source returned a price")

// Source fetches the current price of a symbol from one venue.
type Source interface {
	FetchPrice(ctx context.Context, symbol string) (float64, error)
	Name() string
}

// MockSource returns controllable fixed data for development and testing.
type MockSource struct {
	Price     float64
	Err       error
	PriceFunc func(symbol string) (float64, error)
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) FetchPrice(_ context.Context, symbol string) (float64, error) {
	if m.PriceFunc != nil {
		return m.PriceFunc(symbol)
	}
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Price, nil
}

// Chain tries sources in fixed priority order; the first success wins.
type Chain struct {
	sources []Source
}

// NewChain creates a Chain over the given sources, highest priority first.
func NewChain(sources ...Source) *Chain {
	return &Chain{sources: sources}
}

func (c *Chain) Name() string { return "chain" }

// FetchPrice asks each source in turn and returns the first positive
// price. A source failure is logged and the next source is tried.
func (c *Chain) FetchPrice(ctx context.Context, symbol string) (float64, error) {
	for _, src := range c.sources {
		price, err := src.FetchPrice(ctx, symbol)
		if err != nil {
			metrics.PriceFetchErrors.WithLabelValues(src.Name()).Inc()
			log.Printf("[WARN] %s price fetch for %s: %v", src.Name(), symbol, err)
			continue
		}
		if price > 0 {
			return price, nil
		}
	}
	return 0, ErrUnavailable
}
