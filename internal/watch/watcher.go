package watch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/marce1l/Telegram-sniping-bot/internal/domain"
)

const pollTimeout = 30 * time.Second

// Watcher polls the ETH balance of every watched wallet on a cron
// schedule and notifies the owning chat when a balance changes. Watch
// lists are registered per chat and replaced wholesale on each /watch.
type Watcher struct {
	cron      *cron.Cron
	market    domain.MarketData
	transport domain.Transport
	logger    *slog.Logger

	mu    sync.Mutex
	lists map[int64][]string
	// last holds the balance seen on the previous poll, keyed by
	// chatID/address so two chats watching one wallet get independent
	// notifications.
	last map[string]float64
}

func New(spec string, market domain.MarketData, transport domain.Transport, logger *slog.Logger) (*Watcher, error) {
	w := &Watcher{
		cron:      cron.New(),
		market:    market,
		transport: transport,
		logger:    logger,
		lists:     make(map[int64][]string),
		last:      make(map[string]float64),
	}
	if _, err := w.cron.AddFunc(spec, w.poll); err != nil {
		return nil, fmt.Errorf("invalid watch schedule %q: %w", spec, err)
	}
	return w, nil
}

// SetList replaces the chat's watched wallets. An empty list stops
// notifications for that chat.
func (w *Watcher) SetList(chatID int64, wallets []string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, old := range w.lists[chatID] {
		delete(w.last, balanceKey(chatID, old))
	}
	if len(wallets) == 0 {
		delete(w.lists, chatID)
		return
	}
	w.lists[chatID] = append([]string(nil), wallets...)
}

// Start begins the schedule and stops it when ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) {
	w.cron.Start()
	w.logger.Info("wallet watcher started")
	go func() {
		<-ctx.Done()
		stopCtx := w.cron.Stop()
		<-stopCtx.Done()
		w.logger.Info("wallet watcher stopped")
	}()
}

func (w *Watcher) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), pollTimeout)
	defer cancel()

	w.mu.Lock()
	snapshot := make(map[int64][]string, len(w.lists))
	for chatID, wallets := range w.lists {
		snapshot[chatID] = append([]string(nil), wallets...)
	}
	w.mu.Unlock()

	for chatID, wallets := range snapshot {
		for _, wallet := range wallets {
			balance, err := w.market.EthBalance(ctx, wallet)
			if err != nil {
				w.logger.Warn("watched wallet balance check failed", "wallet", wallet, "err", err)
				continue
			}
			w.observe(ctx, chatID, wallet, balance)
		}
	}
}

func (w *Watcher) observe(ctx context.Context, chatID int64, wallet string, balance float64) {
	key := balanceKey(chatID, wallet)

	w.mu.Lock()
	prev, seen := w.last[key]
	w.last[key] = balance
	w.mu.Unlock()

	if !seen || prev == balance {
		return
	}

	text := fmt.Sprintf("👀 Watched wallet activity\n\n%s\nETH balance: %g → %g", wallet, prev, balance)
	if err := w.transport.SendText(ctx, chatID, text); err != nil {
		w.logger.Warn("failed to notify watched wallet change", "chat_id", chatID, "err", err)
	}
}

func balanceKey(chatID int64, wallet string) string {
	return fmt.Sprintf("%d/%s", chatID, wallet)
}
