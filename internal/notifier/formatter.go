package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"SignalSentinel/internal/model"
	"SignalSentinel/internal/tracker"
)

// fmtPrice renders a price with thousands separators for readability in
// chat messages.
func fmtPrice(p float64) string {
	return humanize.CommafWithDigits(p, 4)
}

// FormatTargetAlert formats a take-profit event into a Telegram message.
// risky entries get a more cautious template.
func FormatTargetAlert(sig *model.Signal, ev model.Event, risky bool) string {
	var b strings.Builder

	title := strings.ToUpper(string(ev.Level))
	if risky {
		b.WriteString(fmt.Sprintf("🎯 <b>%s HIT (RISKY ENTRY)</b> 🎯\n\n", title))
		b.WriteString("⚠️ Elevated risk on this signal!\n\n")
	} else {
		b.WriteString(fmt.Sprintf("🎯 <b>%s HIT</b> 🎯\n\n", title))
	}

	b.WriteString(fmt.Sprintf("📊 %s %s\n", sig.Symbol, sig.Direction))
	b.WriteString(fmt.Sprintf("💰 Entry: $%s\n", fmtPrice(sig.EntryPrice)))
	b.WriteString(fmt.Sprintf("📈 Current: $%s\n", fmtPrice(ev.Price)))
	b.WriteString(fmt.Sprintf("💵 Profit: %+.2f%%\n\n", ev.ReturnPct))

	switch ev.Level {
	case model.LevelTP1:
		closed := sig.Allocation.TP1
		if risky {
			closed = 0.50
		}
		b.WriteString("✅ Suggested:\n")
		b.WriteString(fmt.Sprintf("   • Take %.0f%% off the table\n", closed*100))
		b.WriteString("   • Move stop to break-even\n")
		b.WriteString("   • Hold the rest for TP2")
	case model.LevelTP2:
		b.WriteString("✅ Suggested:\n")
		b.WriteString(fmt.Sprintf("   • Take %.0f%% off the table\n", sig.Allocation.TP2*100))
		b.WriteString("   • Hold the rest for TP3\n")
		b.WriteString("   • Stop already at break-even")
	case model.LevelTP3:
		b.WriteString("✅ Suggested:\n")
		b.WriteString("   • Trail the remainder or close out\n")
		b.WriteString("   • Trade complete! 🎉")
	}

	return b.String()
}

// FormatStopAlert formats a stop-loss event into a Telegram message.
func FormatStopAlert(sig *model.Signal, ev model.Event) string {
	var b strings.Builder
	b.WriteString("🛑 <b>STOP TRIGGERED</b> 🛑\n\n")
	b.WriteString(fmt.Sprintf("📊 %s %s\n", sig.Symbol, sig.Direction))
	b.WriteString(fmt.Sprintf("💰 Entry: $%s\n", fmtPrice(sig.EntryPrice)))
	b.WriteString(fmt.Sprintf("📉 Current: $%s\n", fmtPrice(ev.Price)))
	b.WriteString(fmt.Sprintf("🛑 Stop Loss: $%s\n", fmtPrice(sig.StopLoss)))
	loss := ev.ReturnPct
	if n := len(sig.Fills); n > 0 && sig.Fills[n-1].Level == model.LevelStop {
		loss = sig.Fills[n-1].Weighted
	}
	b.WriteString(fmt.Sprintf("💸 Loss: %.2f%%\n\n", loss))
	b.WriteString("❌ Position closed")
	return b.String()
}

// FormatStatsDigest formats a tracking statistics summary.
func FormatStatsDigest(st tracker.Stats) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>Signal Stats</b> | last %d days\n\n", st.PeriodDays))
	if st.Total == 0 {
		b.WriteString("No signals closed in this window.")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("Closed: %d (%d wins / %d losses)\n", st.Total, st.Wins, st.Losses))
	b.WriteString(fmt.Sprintf("Win rate: %.1f%%\n", st.WinRate))
	b.WriteString(fmt.Sprintf("Average ROI: %+.2f%%\n", st.AverageROI))
	b.WriteString(fmt.Sprintf("Total ROI: %+.2f%%\n", st.TotalROI))
	return b.String()
}

// FormatActiveList formats the monitored signals for display.
func FormatActiveList(signals []*model.Signal) string {
	if len(signals) == 0 {
		return "No active signals."
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("👁 <b>Active Signals</b> (%d)\n\n", len(signals)))
	for _, s := range signals {
		b.WriteString(fmt.Sprintf("• %s %s @ $%s | ROI %+.2f%% | since %s\n",
			s.Symbol, s.Direction, fmtPrice(s.EntryPrice), s.CurrentROI,
			s.EntryTime.Format(time.DateOnly)))
	}
	return b.String()
}
