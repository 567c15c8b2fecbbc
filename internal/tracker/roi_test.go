package tracker

import (
	"math"
	"testing"

	"SignalSentinel/internal/model"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestReturnPct(t *testing.T) {
	tests := []struct {
		name  string
		dir   model.Direction
		entry float64
		price float64
		want  float64
	}{
		{"long gain", model.Long, 50000, 50500, 1.0},
		{"long loss", model.Long, 50000, 49000, -2.0},
		{"short gain", model.Short, 3000, 2970, 1.0},
		{"short loss", model.Short, 3000, 3060, -2.0},
		{"zero entry never divides", model.Long, 0, 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReturnPct(tt.dir, tt.entry, tt.price)
			if !almostEqual(got, tt.want) {
				t.Errorf("ReturnPct = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRealized_WeightedRoundTrip(t *testing.T) {
	sig := longSignal()
	sig.Fills = []model.Fill{
		{Level: model.LevelTP1, Fraction: 0.25, ReturnPct: 1.0, Weighted: 0.25},
		{Level: model.LevelTP2, Fraction: 0.50, ReturnPct: 2.0, Weighted: 1.0},
		{Level: model.LevelTP3, Fraction: 0.25, ReturnPct: 3.0, Weighted: 0.75},
	}
	if got := Realized(sig); !almostEqual(got, 2.0) {
		t.Errorf("Realized = %v, want 2.0", got)
	}
	// Everything closed: the live price no longer matters.
	if got := CurrentROI(sig, 1); !almostEqual(got, 2.0) {
		t.Errorf("CurrentROI with no open fraction = %v, want 2.0", got)
	}
}

func TestRealized_PartialThenStop(t *testing.T) {
	// entry 50000, tp1 +1% on 25%, tp2 +2% on 50%, then the stop takes
	// the remaining 25% at -2%: net stays positive.
	sig := longSignal()
	sig.Fills = []model.Fill{
		{Level: model.LevelTP1, Fraction: 0.25, ReturnPct: 1.0, Weighted: 0.25},
		{Level: model.LevelTP2, Fraction: 0.50, ReturnPct: 2.0, Weighted: 1.0},
		{Level: model.LevelStop, Fraction: 0.25, ReturnPct: -2.0, Weighted: -0.5},
	}
	got := Realized(sig)
	if !almostEqual(got, 0.75) {
		t.Errorf("Realized = %v, want 0.75", got)
	}
	if got <= 0 {
		t.Error("partial-then-stop scenario should stay positive")
	}
}

func TestCurrentROI_UnrealizedOnOpenFraction(t *testing.T) {
	sig := longSignal()
	sig.TP1Hit = true
	sig.Fills = []model.Fill{
		{Level: model.LevelTP1, Fraction: 0.25, ReturnPct: 1.0, Weighted: 0.25},
	}
	// 75% still open at +2%: 0.25 + 2*0.75 = 1.75
	if got := CurrentROI(sig, 51000); !almostEqual(got, 1.75) {
		t.Errorf("CurrentROI = %v, want 1.75", got)
	}
	// Open fraction under water: 0.25 + (-2)*0.75 = -1.25
	if got := CurrentROI(sig, 49000); !almostEqual(got, -1.25) {
		t.Errorf("CurrentROI = %v, want -1.25", got)
	}
}

func TestCurrentROI_ZeroEntryFallsBackToRealized(t *testing.T) {
	sig := longSignal()
	sig.EntryPrice = 0

	if got := CurrentROI(sig, 51000); !almostEqual(got, 0) {
		t.Errorf("CurrentROI with zero entry and no fills = %v, want 0", got)
	}

	sig.Fills = []model.Fill{
		{Level: model.LevelTP1, Fraction: 0.25, ReturnPct: 1.0, Weighted: 0.25},
	}
	if got := CurrentROI(sig, 51000); !almostEqual(got, 0.25) {
		t.Errorf("CurrentROI with zero entry = %v, want realized 0.25", got)
	}
}
