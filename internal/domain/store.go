package domain

import (
	"context"
	"time"
)

// OrderOutcome is the terminal (or pending) status of a journaled order.
type OrderOutcome string

const (
	// OutcomePending: order validated, confirmation prompt shown.
	OutcomePending OrderOutcome = "pending"
	// OutcomeExecuted: user confirmed, execution hook ran.
	OutcomeExecuted OrderOutcome = "executed"
	// OutcomeDeclined: user pressed No.
	OutcomeDeclined OrderOutcome = "declined"
	// OutcomeRejected: one or more parameters failed validation.
	OutcomeRejected OrderOutcome = "rejected"
	// OutcomeAborted: confirmation callback carried an unusable payload.
	OutcomeAborted OrderOutcome = "aborted"
)

// OrderRecord is a journaled trade order. Nil parameter fields mirror the
// TradeOrder that produced it.
type OrderRecord struct {
	ID        int64
	ChatID    int64
	OrderType string
	Contract  *string
	Amount    *float64
	Slippage  *float64
	Complete  bool
	Outcome   OrderOutcome
	CreatedAt time.Time
}

// WatchSnapshot is one accepted /watch submission.
type WatchSnapshot struct {
	ChatID    int64
	Addresses []string
	CreatedAt time.Time
}

// TradeStore journals validated orders and watch-list submissions.
type TradeStore interface {
	RecordOrder(ctx context.Context, rec OrderRecord) (int64, error)
	SetOutcome(ctx context.Context, orderID int64, outcome OrderOutcome) error
	RecentOrders(ctx context.Context, chatID int64, limit int) ([]OrderRecord, error)
	RecordWatchSnapshot(ctx context.Context, snap WatchSnapshot) error
	LatestWatchSnapshot(ctx context.Context, chatID int64) (*WatchSnapshot, error)
	Close() error
}
