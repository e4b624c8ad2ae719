package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/marce1l/Telegram-sniping-bot/internal/domain"
)

// Journal implements domain.TradeStore using SQLite.
type Journal struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewJournal(dbPath string, logger *slog.Logger) (*Journal, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create database directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	// Single connection for SQLite
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	j := &Journal{db: db, logger: logger}

	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	return j, nil
}

func (j *Journal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS orders (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		chat_id     INTEGER NOT NULL,
		order_type  TEXT NOT NULL,
		contract    TEXT,
		amount      REAL,
		slippage    REAL,
		complete    INTEGER NOT NULL DEFAULT 0,
		outcome     TEXT NOT NULL,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_orders_chat ON orders(chat_id, created_at);

	CREATE TABLE IF NOT EXISTS watch_snapshots (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		chat_id     INTEGER NOT NULL,
		addresses   TEXT NOT NULL,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_watch_chat ON watch_snapshots(chat_id, created_at);
	`

	_, err := j.db.Exec(schema)
	return err
}

func (j *Journal) RecordOrder(ctx context.Context, rec domain.OrderRecord) (int64, error) {
	res, err := j.db.ExecContext(ctx,
		`INSERT INTO orders (chat_id, order_type, contract, amount, slippage, complete, outcome)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ChatID, rec.OrderType,
		nullString(rec.Contract), nullFloat(rec.Amount), nullFloat(rec.Slippage),
		rec.Complete, string(rec.Outcome),
	)
	if err != nil {
		return 0, fmt.Errorf("record order: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("order id: %w", err)
	}
	return id, nil
}

func (j *Journal) SetOutcome(ctx context.Context, orderID int64, outcome domain.OrderOutcome) error {
	res, err := j.db.ExecContext(ctx,
		`UPDATE orders SET outcome = ? WHERE id = ?`, string(outcome), orderID)
	if err != nil {
		return fmt.Errorf("set outcome: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("set outcome: order %d not found", orderID)
	}
	return nil
}

func (j *Journal) RecentOrders(ctx context.Context, chatID int64, limit int) ([]domain.OrderRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, chat_id, order_type, contract, amount, slippage, complete, outcome, created_at
		 FROM orders WHERE chat_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent orders: %w", err)
	}
	defer rows.Close()

	var records []domain.OrderRecord
	for rows.Next() {
		var (
			rec      domain.OrderRecord
			contract sql.NullString
			amount   sql.NullFloat64
			slippage sql.NullFloat64
			outcome  string
			created  time.Time
		)
		if err := rows.Scan(&rec.ID, &rec.ChatID, &rec.OrderType,
			&contract, &amount, &slippage, &rec.Complete, &outcome, &created); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if contract.Valid {
			rec.Contract = &contract.String
		}
		if amount.Valid {
			rec.Amount = &amount.Float64
		}
		if slippage.Valid {
			rec.Slippage = &slippage.Float64
		}
		rec.Outcome = domain.OrderOutcome(outcome)
		rec.CreatedAt = created
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (j *Journal) RecordWatchSnapshot(ctx context.Context, snap domain.WatchSnapshot) error {
	addresses, err := json.Marshal(snap.Addresses)
	if err != nil {
		return fmt.Errorf("marshal addresses: %w", err)
	}
	_, err = j.db.ExecContext(ctx,
		`INSERT INTO watch_snapshots (chat_id, addresses) VALUES (?, ?)`,
		snap.ChatID, string(addresses))
	if err != nil {
		return fmt.Errorf("record watch snapshot: %w", err)
	}
	return nil
}

func (j *Journal) LatestWatchSnapshot(ctx context.Context, chatID int64) (*domain.WatchSnapshot, error) {
	var (
		addresses string
		created   time.Time
	)
	err := j.db.QueryRowContext(ctx,
		`SELECT addresses, created_at FROM watch_snapshots
		 WHERE chat_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		chatID).Scan(&addresses, &created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest watch snapshot: %w", err)
	}

	snap := &domain.WatchSnapshot{ChatID: chatID, CreatedAt: created}
	if err := json.Unmarshal([]byte(addresses), &snap.Addresses); err != nil {
		return nil, fmt.Errorf("unmarshal addresses: %w", err)
	}
	return snap, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

var _ domain.TradeStore = (*Journal)(nil)
