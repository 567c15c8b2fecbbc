package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"SignalSentinel/internal/backoff"
	"SignalSentinel/internal/model"
)

// SQLiteStore persists signals to a SQLite database. Concurrent monitors
// share the handle; SQLITE_BUSY-class errors surface as locked errors and
// are absorbed by the retry policies.
type SQLiteStore struct {
	db           *sql.DB
	UpdatePolicy backoff.Policy
	FinalPolicy  backoff.Policy
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode keeps readers off the writers' backs.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=30000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	s := &SQLiteStore{
		db:           db,
		UpdatePolicy: backoff.Policy{MaxAttempts: 10, BaseDelay: 200 * time.Millisecond, MaxDelay: 5 * time.Second},
		FinalPolicy:  backoff.Policy{MaxAttempts: 20, BaseDelay: 200 * time.Millisecond, MaxDelay: 5 * time.Second},
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signals (
			signal_id     TEXT PRIMARY KEY,
			symbol        TEXT NOT NULL,
			direction     TEXT NOT NULL,
			entry_price   REAL NOT NULL,
			stop_loss     REAL NOT NULL,
			tp1           REAL NOT NULL,
			tp2           REAL NOT NULL,
			tp3           REAL NOT NULL,
			tp1_hit       INTEGER NOT NULL DEFAULT 0,
			tp2_hit       INTEGER NOT NULL DEFAULT 0,
			tp3_hit       INTEGER NOT NULL DEFAULT 0,
			sl_hit        INTEGER NOT NULL DEFAULT 0,
			current_roi   REAL NOT NULL DEFAULT 0,
			status        TEXT NOT NULL,
			quality_score REAL NOT NULL DEFAULT 0,
			entry_time    INTEGER NOT NULL,
			close_time    INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_status ON signals(status)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_close ON signals(close_time)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// isLocked matches the shared-store contention errors worth retrying.
func isLocked(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "locked") || strings.Contains(msg, "busy")
}

func (s *SQLiteStore) Insert(ctx context.Context, sig *model.Signal) error {
	return backoff.Retry(ctx, s.UpdatePolicy, isLocked, func() error {
		_, err := s.db.ExecContext(ctx, `INSERT INTO signals
			(signal_id, symbol, direction, entry_price, stop_loss, tp1, tp2, tp3,
			 tp1_hit, tp2_hit, tp3_hit, sl_hit, current_roi, status, quality_score, entry_time)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			sig.ID, sig.Symbol, string(sig.Direction),
			sig.EntryPrice, sig.StopLoss, sig.TP1, sig.TP2, sig.TP3,
			sig.TP1Hit, sig.TP2Hit, sig.TP3Hit, sig.SLHit,
			sig.CurrentROI, string(sig.Status), sig.QualityScore, sig.EntryTime.Unix(),
		)
		return err
	})
}

func (s *SQLiteStore) Update(ctx context.Context, sig *model.Signal, final bool) error {
	policy := s.UpdatePolicy
	if final {
		policy = s.FinalPolicy
	}
	return backoff.Retry(ctx, policy, isLocked, func() error {
		if final {
			_, err := s.db.ExecContext(ctx, `UPDATE signals
				SET tp1_hit = ?, tp2_hit = ?, tp3_hit = ?, sl_hit = ?,
				    current_roi = ?, status = ?, close_time = ?
				WHERE signal_id = ?`,
				sig.TP1Hit, sig.TP2Hit, sig.TP3Hit, sig.SLHit,
				sig.CurrentROI, string(sig.Status), sig.CloseTime.Unix(), sig.ID,
			)
			return err
		}
		_, err := s.db.ExecContext(ctx, `UPDATE signals
			SET tp1_hit = ?, tp2_hit = ?, tp3_hit = ?, sl_hit = ?, current_roi = ?
			WHERE signal_id = ?`,
			sig.TP1Hit, sig.TP2Hit, sig.TP3Hit, sig.SLHit, sig.CurrentROI, sig.ID,
		)
		return err
	})
}

func (s *SQLiteStore) LoadActive(ctx context.Context) ([]*model.Signal, error) {
	return s.load(ctx, `SELECT signal_id, symbol, direction, entry_price, stop_loss,
		tp1, tp2, tp3, tp1_hit, tp2_hit, tp3_hit, sl_hit,
		current_roi, status, quality_score, entry_time, close_time
		FROM signals WHERE status = ? ORDER BY entry_time`, string(model.StatusActive))
}

func (s *SQLiteStore) LoadCompleted(ctx context.Context, cutoff time.Time) ([]*model.Signal, error) {
	return s.load(ctx, `SELECT signal_id, symbol, direction, entry_price, stop_loss,
		tp1, tp2, tp3, tp1_hit, tp2_hit, tp3_hit, sl_hit,
		current_roi, status, quality_score, entry_time, close_time
		FROM signals WHERE status != ? AND close_time >= ? ORDER BY close_time`,
		string(model.StatusActive), cutoff.Unix())
}

func (s *SQLiteStore) load(ctx context.Context, query string, args ...any) ([]*model.Signal, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query signals: %w", err)
	}
	defer rows.Close()

	var out []*model.Signal
	for rows.Next() {
		var (
			sig       model.Signal
			direction string
			status    string
			entryTS   int64
			closeTS   sql.NullInt64
		)
		if err := rows.Scan(&sig.ID, &sig.Symbol, &direction, &sig.EntryPrice, &sig.StopLoss,
			&sig.TP1, &sig.TP2, &sig.TP3, &sig.TP1Hit, &sig.TP2Hit, &sig.TP3Hit, &sig.SLHit,
			&sig.CurrentROI, &status, &sig.QualityScore, &entryTS, &closeTS); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		sig.Direction = model.Direction(direction)
		sig.Status = model.Status(status)
		sig.EntryTime = time.Unix(entryTS, 0)
		if closeTS.Valid {
			sig.CloseTime = time.Unix(closeTS.Int64, 0)
		}
		out = append(out, &sig)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}
