package notifier

import (
	"context"

	"SignalSentinel/internal/model"
)

// TelegramSink adapts the notifier to the tracker's event sink.
type TelegramSink struct {
	Notifier *TelegramNotifier
	// RiskyScoreThreshold: signals scored below it get the cautious
	// message template.
	RiskyScoreThreshold float64
}

func NewTelegramSink(tn *TelegramNotifier, riskyThreshold float64) *TelegramSink {
	return &TelegramSink{Notifier: tn, RiskyScoreThreshold: riskyThreshold}
}

// Publish renders the event and delivers it with bounded retry.
func (s *TelegramSink) Publish(ctx context.Context, sig *model.Signal, ev model.Event) error {
	var msg string
	if ev.Level == model.LevelStop {
		msg = FormatStopAlert(sig, ev)
	} else {
		msg = FormatTargetAlert(sig, ev, sig.QualityScore < s.RiskyScoreThreshold)
	}
	return s.Notifier.SendWithRetry(ctx, msg)
}
