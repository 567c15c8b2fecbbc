package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"

	"SignalSentinel/internal/model"
	"SignalSentinel/internal/notifier"
	"SignalSentinel/internal/tracker"
)

// Scheduler runs the periodic stats digest and dispatches operator
// commands received over Telegram.
type Scheduler struct {
	Cron       *cron.Cron
	Tracker    *tracker.Tracker
	Notifier   *notifier.TelegramNotifier
	WindowDays int
	Ctx        context.Context
}

// NewScheduler creates a Scheduler.
func NewScheduler(ctx context.Context, tr *tracker.Tracker, tn *notifier.TelegramNotifier, windowDays int) *Scheduler {
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds()),
		Tracker:    tr,
		Notifier:   tn,
		WindowDays: windowDays,
		Ctx:        ctx,
	}
}

// RegisterAll registers the daily digest task.
func (s *Scheduler) RegisterAll(digestCron string) error {
	if _, err := s.Cron.AddFunc(digestCron, s.dailyDigest); err != nil {
		return fmt.Errorf("register digest task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

func (s *Scheduler) dailyDigest() {
	log.Println("[INFO] running stats digest")
	stats := s.Tracker.Stats(s.WindowDays)
	s.trySend(notifier.FormatStatsDigest(stats))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	switch fields[0] {
	case "/stats":
		days := s.WindowDays
		if len(fields) > 1 {
			if n, err := strconv.Atoi(fields[1]); err == nil && n > 0 {
				days = n
			}
		}
		return notifier.FormatStatsDigest(s.Tracker.Stats(days))
	case "/active":
		return notifier.FormatActiveList(s.Tracker.ListActive())
	case "/track":
		return s.handleTrack(fields[1:])
	default:
		return "Available commands:\n" +
			"• /stats [days] — win rate and ROI over the window\n" +
			"• /active — currently monitored signals\n" +
			"• /track SYMBOL LONG|SHORT entry sl tp1 tp2 tp3 [score]"
	}
}

// handleTrack registers a signal described inline, e.g.
// /track BTCUSDT LONG 50000 49000 50500 51000 51500 72
func (s *Scheduler) handleTrack(args []string) string {
	if len(args) < 7 {
		return "Usage: /track SYMBOL LONG|SHORT entry sl tp1 tp2 tp3 [score]"
	}
	def := model.Definition{
		Symbol:    strings.ToUpper(args[0]),
		Direction: model.Direction(strings.ToUpper(args[1])),
	}
	prices := make([]float64, 5)
	for i, raw := range args[2:7] {
		p, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Sprintf("Bad price %q", raw)
		}
		prices[i] = p
	}
	def.EntryPrice, def.StopLoss, def.TP1, def.TP2, def.TP3 = prices[0], prices[1], prices[2], prices[3], prices[4]
	if len(args) > 7 {
		if score, err := strconv.ParseFloat(args[7], 64); err == nil {
			def.QualityScore = score
		}
	}

	id, err := s.Tracker.Register(def)
	if err != nil {
		if errors.Is(err, tracker.ErrInvalidSignal) {
			return fmt.Sprintf("Rejected: %v", err)
		}
		return fmt.Sprintf("Registration failed: %v", err)
	}
	return fmt.Sprintf("Tracking %s", id)
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
