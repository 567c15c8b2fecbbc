package tracker

import (
	"testing"

	"SignalSentinel/internal/model"
)

func longSignal() *model.Signal {
	return &model.Signal{
		ID:         "BTCUSDT_1_test",
		Symbol:     "BTCUSDT",
		Direction:  model.Long,
		EntryPrice: 50000,
		StopLoss:   49000,
		TP1:        50500,
		TP2:        51000,
		TP3:        51500,
		Status:     model.StatusActive,
		Allocation: model.DefaultAllocation,
	}
}

func shortSignal() *model.Signal {
	return &model.Signal{
		ID:         "ETHUSDT_1_test",
		Symbol:     "ETHUSDT",
		Direction:  model.Short,
		EntryPrice: 3000,
		StopLoss:   3060,
		TP1:        2970,
		TP2:        2940,
		TP3:        2910,
		Status:     model.StatusActive,
		Allocation: model.DefaultAllocation,
	}
}

func TestEvaluate_LongPriorityOrder(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		want  model.Level
		none  bool
	}{
		{"below everything but above stop", 50200, "", true},
		{"exactly tp1", 50500, model.LevelTP1, false},
		{"between tp1 and tp2", 50700, model.LevelTP1, false},
		{"gap straight through tp1 and tp2 reports tp2 only", 51200, model.LevelTP2, false},
		{"through all targets reports tp3", 52000, model.LevelTP3, false},
		{"exactly stop", 49000, model.LevelStop, false},
		{"below stop", 48000, model.LevelStop, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Evaluate(longSignal(), tt.price)
			if tt.none {
				if ev != nil {
					t.Fatalf("expected no event, got %v", ev.Level)
				}
				return
			}
			if ev == nil {
				t.Fatalf("expected %s event, got none", tt.want)
			}
			if ev.Level != tt.want {
				t.Errorf("expected %s, got %s", tt.want, ev.Level)
			}
			if ev.Price != tt.price {
				t.Errorf("event price %v, want %v", ev.Price, tt.price)
			}
		})
	}
}

func TestEvaluate_ShortMirrors(t *testing.T) {
	sig := shortSignal()

	if ev := Evaluate(sig, 2970); ev == nil || ev.Level != model.LevelTP1 {
		t.Fatalf("expected tp1 for short at 2970, got %v", ev)
	}
	if ev := Evaluate(sig, 2900); ev == nil || ev.Level != model.LevelTP3 {
		t.Fatalf("expected tp3 for short at 2900, got %v", ev)
	}
	if ev := Evaluate(sig, 3060); ev == nil || ev.Level != model.LevelStop {
		t.Fatalf("expected stop for short at 3060, got %v", ev)
	}
	if ev := Evaluate(sig, 3010); ev != nil {
		t.Fatalf("expected no event for short at 3010, got %v", ev.Level)
	}
}

func TestEvaluate_HitFlagsAreMonotonic(t *testing.T) {
	sig := longSignal()
	sig.TP1Hit = true

	// TP1 already booked: the same price never re-fires it.
	if ev := Evaluate(sig, 50600); ev != nil {
		t.Fatalf("tp1 re-fired: %v", ev.Level)
	}

	sig.TP2Hit = true
	sig.TP3Hit = true
	if ev := Evaluate(sig, 60000); ev != nil {
		t.Fatalf("expected no event with all targets hit, got %v", ev.Level)
	}

	sig.SLHit = true
	if ev := Evaluate(sig, 1); ev != nil {
		t.Fatalf("stop re-fired: %v", ev.Level)
	}
}

func TestEvaluate_AscendingPathFiresInOrder(t *testing.T) {
	sig := longSignal()
	path := []float64{49500, 49900, 50100, 50500, 50800, 51000, 51200, 51500, 52000}

	var fired []model.Level
	for _, price := range path {
		ev := Evaluate(sig, price)
		if ev == nil {
			continue
		}
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
		fired = append(fired, ev.Level)
	}

	want := []model.Level{model.LevelTP1, model.LevelTP2, model.LevelTP3}
	if len(fired) != len(want) {
		t.Fatalf("fired %v, want %v", fired, want)
	}
	for i := range want {
		if fired[i] != want[i] {
			t.Fatalf("fired %v, want %v", fired, want)
		}
	}
}

func TestEvaluate_StopBeforeAnyTarget(t *testing.T) {
	sig := longSignal()
	path := []float64{49800, 49500, 49100, 48900, 48700}

	var fired []model.Level
	for _, price := range path {
		ev := Evaluate(sig, price)
		if ev == nil {
			continue
		}
		if ev.Level == model.LevelStop {
			sig.SLHit = true
		}
		fired = append(fired, ev.Level)
	}
	if len(fired) != 1 || fired[0] != model.LevelStop {
		t.Fatalf("expected exactly one stop event, got %v", fired)
	}
}
