package bus

import (
	"log/slog"
	"sync"
	"time"

	"github.com/marce1l/Telegram-sniping-bot/internal/domain"
)

const publishTimeout = 10 * time.Second

// UpdateBus is a Go-channel based queue between the chat transport and the
// dialog engine. The transport publishes every inbound update here; the
// engine is the single subscriber.
type UpdateBus struct {
	inbound chan domain.Update
	mu      sync.RWMutex
	closed  bool
	logger  *slog.Logger
}

// New creates an UpdateBus with the given buffer size.
func New(bufferSize int, logger *slog.Logger) *UpdateBus {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	return &UpdateBus{
		inbound: make(chan domain.Update, bufferSize),
		logger:  logger,
	}
}

// Publish enqueues an update. Blocks up to 10 seconds if the bus is full
// instead of dropping.
func (b *UpdateBus) Publish(u domain.Update) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		b.logger.Warn("attempted to publish to closed bus")
		return
	}

	select {
	case b.inbound <- u:
	default:
		// Bus full — wait with timeout instead of dropping
		b.logger.Warn("inbound bus full, waiting...", "chat_id", u.ChatID)
		timer := time.NewTimer(publishTimeout)
		defer timer.Stop()
		select {
		case b.inbound <- u:
			b.logger.Info("update delivered after wait", "chat_id", u.ChatID)
		case <-timer.C:
			b.logger.Error("update dropped: bus full for 10s",
				"chat_id", u.ChatID,
				"kind", u.Kind,
			)
		}
	}
}

func (b *UpdateBus) Subscribe() <-chan domain.Update {
	return b.inbound
}

func (b *UpdateBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.closed {
		b.closed = true
		close(b.inbound)
	}
}
