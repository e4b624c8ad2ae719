package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/marce1l/Telegram-sniping-bot/internal/domain"
	"github.com/marce1l/Telegram-sniping-bot/internal/market"
)

const chatQueueSize = 16

// UpdateSource is where the engine pulls inbound updates from
// (internal/bus in production, a plain channel in tests).
type UpdateSource interface {
	Subscribe() <-chan domain.Update
}

// WatchRegistry receives the accepted watch list of a chat so a scheduler
// can start polling it.
type WatchRegistry interface {
	SetList(chatID int64, wallets []string)
}

// Engine is the conversational command dispatcher: it owns the per-chat
// state machine and drives command parsing, validation and the
// confirmation flow.
type Engine struct {
	transport domain.Transport
	market    domain.MarketData
	store     domain.TradeStore // optional
	watch     WatchRegistry     // optional
	source    UpdateSource
	wallet    string
	logger    *slog.Logger
	convs     *Conversations

	// executeTrade is the on-chain submission hook. Transaction
	// submission is an external collaborator; the default does nothing.
	executeTrade func(ctx context.Context, order domain.TradeOrder) error
}

// EngineConfig holds the engine's collaborators and tuning.
type EngineConfig struct {
	Transport     domain.Transport
	Market        domain.MarketData
	Store         domain.TradeStore
	Watch         WatchRegistry
	Source        UpdateSource
	WalletAddress string
	Logger        *slog.Logger
	ExecuteTrade  func(ctx context.Context, order domain.TradeOrder) error
}

func NewEngine(cfg EngineConfig) *Engine {
	return &Engine{
		transport:    cfg.Transport,
		market:       cfg.Market,
		store:        cfg.Store,
		watch:        cfg.Watch,
		source:       cfg.Source,
		wallet:       cfg.WalletAddress,
		logger:       cfg.Logger,
		convs:        NewConversations(),
		executeTrade: cfg.ExecuteTrade,
	}
}

// Conversations exposes the registry so the wallet watcher can read
// per-chat watch lists.
func (e *Engine) Conversations() *Conversations {
	return e.convs
}

// Run consumes inbound updates until the source closes or ctx is
// cancelled. Updates for the same chat are handled one at a time in
// arrival order; distinct chats run concurrently on their own workers.
func (e *Engine) Run(ctx context.Context) {
	e.logger.Info("dialog engine started")

	workers := make(map[int64]chan domain.Update)
	var wg sync.WaitGroup
	defer func() {
		for _, ch := range workers {
			close(ch)
		}
		wg.Wait()
		e.logger.Info("dialog engine stopped")
	}()

	inbound := e.source.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-inbound:
			if !ok {
				e.logger.Info("update source closed")
				return
			}
			ch, ok := workers[u.ChatID]
			if !ok {
				ch = make(chan domain.Update, chatQueueSize)
				workers[u.ChatID] = ch
				wg.Add(1)
				go func(updates <-chan domain.Update) {
					defer wg.Done()
					for u := range updates {
						e.dispatch(ctx, u)
					}
				}(ch)
			}
			select {
			case ch <- u:
			case <-ctx.Done():
				return
			}
		}
	}
}

// dispatch routes one update through the state machine and converts
// handler failures into a logged generic reply instead of crashing the
// loop.
func (e *Engine) dispatch(ctx context.Context, u domain.Update) {
	conv := e.convs.Get(u.ChatID)

	var cmd *Command
	if u.Kind == domain.UpdateMessage {
		if parsed, err := ParseCommand(u.Text, e.transport.BotName()); err == nil {
			cmd = parsed
		}
	}

	r := resolveRoute(conv.State(), u.Kind, cmd)

	var err error
	switch r {
	case routeNone:
		e.logger.Debug("dropping unroutable update", "chat_id", u.ChatID, "kind", u.Kind)
		return
	case routeHelp:
		err = e.transport.SendText(ctx, u.ChatID, helpText)
	case routeTrade:
		err = e.handleTrade(ctx, conv, cmd)
	case routeBalance:
		err = e.handleBalance(ctx, conv)
	case routeTokens:
		err = e.handleTokens(ctx, conv)
	case routeGas:
		err = e.handleGas(ctx, conv)
	case routeWatch:
		err = e.handleWatch(ctx, conv, cmd)
	case routeCancel:
		err = e.handleCancel(ctx, conv)
	case routeConfirm:
		err = e.handleConfirm(ctx, conv, u)
	case routeInvalid:
		err = e.transport.SendText(ctx, u.ChatID, msgInvalidState)
	}

	if err != nil {
		e.logger.Error("handler failed", "chat_id", u.ChatID, "state", conv.State().String(), "err", err)
		if sendErr := e.transport.SendText(ctx, u.ChatID, msgInternalError); sendErr != nil {
			e.logger.Error("failed to report error to chat", "chat_id", u.ChatID, "err", sendErr)
		}
	}
}

// handleTrade validates buy/sell arguments, journals the result and either
// starts the confirmation flow or reports one message per failing field.
func (e *Engine) handleTrade(ctx context.Context, conv *Conversation, cmd *Command) error {
	orderType, err := domain.ParseOrderType(cmd.Name)
	if err != nil {
		return err
	}

	res := ValidateTradeArgs(cmd.Args, orderType)
	if !res.ArgCountOK {
		// Wrong argument count: no order is constructed and no
		// per-field messages are sent.
		conv.setState(AwaitingCommand)
		return e.transport.SendText(ctx, conv.ChatID, msgBadTradeParams)
	}

	order := res.Order
	journalID := e.journalOrder(ctx, conv.ChatID, &order)
	conv.setPending(&order, journalID)

	if !order.Complete() {
		if order.Contract == nil {
			if err := e.transport.SendText(ctx, conv.ChatID, msgBadContract); err != nil {
				return err
			}
		}
		if order.Amount == nil {
			if err := e.transport.SendText(ctx, conv.ChatID, msgBadAmount); err != nil {
				return err
			}
		}
		if order.Slippage == nil {
			if err := e.transport.SendText(ctx, conv.ChatID, msgBadSlippage); err != nil {
				return err
			}
		}
		conv.setState(AwaitingCommand)
		return nil
	}

	if err := e.transport.SendText(ctx, conv.ChatID, formatOrder(&order)); err != nil {
		return err
	}
	msgID, err := e.transport.SendWithChoice(ctx, conv.ChatID, msgConfirmPrompt, []domain.Choice{
		{Label: "No", Data: "no"},
		{Label: "Yes", Data: "yes"},
	})
	if err != nil {
		return err
	}
	conv.setPrompt(msgID)
	conv.setState(AwaitingConfirmation)

	e.logger.Info("awaiting trade confirmation",
		"chat_id", conv.ChatID,
		"order_type", order.Type.String(),
		"contract", *order.Contract,
	)
	return nil
}

func (e *Engine) handleBalance(ctx context.Context, conv *Conversation) error {
	balance, err := e.market.EthBalance(ctx, e.wallet)
	if err != nil {
		return fmt.Errorf("eth balance: %w", err)
	}
	return e.transport.SendText(ctx, conv.ChatID, formatEthBalance(balance))
}

func (e *Engine) handleTokens(ctx context.Context, conv *Conversation) error {
	balances, err := e.market.TokenBalances(ctx, e.wallet)
	if err != nil {
		return fmt.Errorf("token balances: %w", err)
	}
	return e.transport.SendText(ctx, conv.ChatID, formatTokenBalances(balances))
}

func (e *Engine) handleGas(ctx context.Context, conv *Conversation) error {
	gwei, err := e.market.GasPriceGwei(ctx)
	if err != nil {
		return fmt.Errorf("gas price: %w", err)
	}
	ethUSD, err := e.market.EthUSDPrice(ctx)
	if err != nil {
		return fmt.Errorf("eth price: %w", err)
	}
	return e.transport.SendText(ctx, conv.ChatID, formatGasEstimate(market.EstimateSwapFees(gwei, ethUSD)))
}

func (e *Engine) handleWatch(ctx context.Context, conv *Conversation, cmd *Command) error {
	wallets := ValidateWatchArgs(cmd.Args)

	// The stored list is replaced wholesale even when nothing validated.
	conv.setWatchList(wallets)
	if e.watch != nil {
		e.watch.SetList(conv.ChatID, wallets)
	}
	if e.store != nil {
		snap := domain.WatchSnapshot{ChatID: conv.ChatID, Addresses: wallets}
		if err := e.store.RecordWatchSnapshot(ctx, snap); err != nil {
			e.logger.Warn("failed to journal watch snapshot", "chat_id", conv.ChatID, "err", err)
		}
	}

	if len(wallets) == 0 {
		return e.transport.SendText(ctx, conv.ChatID, msgBadWallets)
	}
	return e.transport.SendText(ctx, conv.ChatID, formatWatchList(wallets))
}

func (e *Engine) handleCancel(ctx context.Context, conv *Conversation) error {
	conv.takePending()
	conv.setState(AwaitingCommand)
	return e.transport.SendText(ctx, conv.ChatID, msgCancelled)
}

// journalOrder records a validated (possibly partial) order. Journal
// failures are logged, not returned: the journal must never block trading.
func (e *Engine) journalOrder(ctx context.Context, chatID int64, order *domain.TradeOrder) int64 {
	if e.store == nil {
		return 0
	}
	outcome := domain.OutcomePending
	if !order.Complete() {
		outcome = domain.OutcomeRejected
	}
	id, err := e.store.RecordOrder(ctx, domain.OrderRecord{
		ChatID:    chatID,
		OrderType: order.Type.String(),
		Contract:  order.Contract,
		Amount:    order.Amount,
		Slippage:  order.Slippage,
		Complete:  order.Complete(),
		Outcome:   outcome,
	})
	if err != nil {
		e.logger.Warn("failed to journal order", "chat_id", chatID, "err", err)
		return 0
	}
	return id
}

func (e *Engine) setOutcome(ctx context.Context, orderID int64, outcome domain.OrderOutcome) {
	if e.store == nil || orderID == 0 {
		return
	}
	if err := e.store.SetOutcome(ctx, orderID, outcome); err != nil {
		e.logger.Warn("failed to journal order outcome", "order_id", orderID, "err", err)
	}
}
