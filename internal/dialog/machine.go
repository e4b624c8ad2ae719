package dialog

import (
	"sync"

	"github.com/marce1l/Telegram-sniping-bot/internal/domain"
)

// State is where a chat currently sits in the command/confirmation flow.
type State int

const (
	// AwaitingCommand accepts the full command surface.
	AwaitingCommand State = iota
	// AwaitingConfirmation accepts only the Yes/No callback (and /cancel).
	AwaitingConfirmation
)

func (s State) String() string {
	switch s {
	case AwaitingCommand:
		return "awaiting_command"
	case AwaitingConfirmation:
		return "awaiting_confirmation"
	default:
		return "unknown"
	}
}

// Conversation is the per-chat state container. Conversations are created
// lazily on the first update from a chat and live for the process
// lifetime. The mutex guards field access between the chat's handler
// worker and the wallet watcher; handlers never hold it across transport
// or market calls.
type Conversation struct {
	ChatID int64

	mu              sync.Mutex
	state           State
	pending         *domain.TradeOrder
	pendingOrderID  int64 // journal row of the pending order, 0 = none
	promptMessageID int   // confirmation prompt to delete on callback
	watch           []string
}

func (c *Conversation) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Conversation) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// setPending stores a validated (possibly partial) order. The partial
// order is recorded even when validation failed, before the rejection
// messages go out.
func (c *Conversation) setPending(order *domain.TradeOrder, journalID int64) {
	c.mu.Lock()
	c.pending = order
	c.pendingOrderID = journalID
	c.mu.Unlock()
}

// setPrompt remembers the confirmation prompt message so the callback
// handler can delete it.
func (c *Conversation) setPrompt(messageID int) {
	c.mu.Lock()
	c.promptMessageID = messageID
	c.mu.Unlock()
}

func (c *Conversation) takePending() (*domain.TradeOrder, int64, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	order, id, msgID := c.pending, c.pendingOrderID, c.promptMessageID
	c.pending, c.pendingOrderID, c.promptMessageID = nil, 0, 0
	return order, id, msgID
}

// WatchList returns a copy of the chat's watched wallet addresses.
func (c *Conversation) WatchList() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.watch...)
}

// setWatchList replaces the watch list wholesale, even with an empty one.
func (c *Conversation) setWatchList(wallets []string) {
	c.mu.Lock()
	c.watch = wallets
	c.mu.Unlock()
}

// Conversations is the registry of per-chat state, keyed by chat ID.
type Conversations struct {
	mu     sync.RWMutex
	byChat map[int64]*Conversation
}

func NewConversations() *Conversations {
	return &Conversations{byChat: make(map[int64]*Conversation)}
}

// Get returns the chat's conversation, creating it in the default
// AwaitingCommand state on first contact.
func (cs *Conversations) Get(chatID int64) *Conversation {
	cs.mu.RLock()
	conv, ok := cs.byChat[chatID]
	cs.mu.RUnlock()
	if ok {
		return conv
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	if conv, ok := cs.byChat[chatID]; ok {
		return conv
	}
	conv = &Conversation{ChatID: chatID, state: AwaitingCommand}
	cs.byChat[chatID] = conv
	return conv
}

// route identifies the handler an update resolves to.
type route int

const (
	routeNone route = iota // drop silently (e.g. stray callback)
	routeInvalid
	routeHelp
	routeTrade
	routeBalance
	routeTokens
	routeGas
	routeWatch
	routeCancel
	routeConfirm
)

// commandRoutes maps keywords reachable from AwaitingCommand.
var commandRoutes = map[string]route{
	"help":    routeHelp,
	"buy":     routeTrade,
	"sell":    routeTrade,
	"balance": routeBalance,
	"tokens":  routeTokens,
	"gas":     routeGas,
	"watch":   routeWatch,
}

// resolveRoute is the state machine's transition table:
// (state, update kind, command) -> handler. It is pure so it can be
// tested without a transport. cmd is nil when the text did not parse as
// a command.
func resolveRoute(state State, kind domain.UpdateKind, cmd *Command) route {
	if kind == domain.UpdateCallback {
		if state == AwaitingConfirmation {
			return routeConfirm
		}
		// Callback with no confirmation pending (e.g. pressed after
		// /cancel): nothing to resolve.
		return routeNone
	}

	if cmd == nil {
		return routeInvalid
	}

	// /cancel works from any state.
	if cmd.Name == "cancel" {
		return routeCancel
	}

	if state == AwaitingCommand {
		if r, ok := commandRoutes[cmd.Name]; ok {
			return r
		}
	}

	return routeInvalid
}
