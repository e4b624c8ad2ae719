package dialog

import (
	"context"

	"github.com/marce1l/Telegram-sniping-bot/internal/domain"
)

// handleConfirm finalizes a pending trade from the Yes/No callback. Every
// branch ends with the conversation back in AwaitingCommand. Callback
// acknowledgement and prompt deletion are best-effort: a transport hiccup
// there must not leave the chat stuck awaiting confirmation.
func (e *Engine) handleConfirm(ctx context.Context, conv *Conversation, u domain.Update) error {
	order, journalID, promptID := conv.takePending()
	conv.setState(AwaitingCommand)

	if u.CallbackData == "" {
		e.setOutcome(ctx, journalID, domain.OutcomeAborted)
		return e.transport.SendText(ctx, conv.ChatID, msgCallbackError)
	}

	if err := e.transport.AcknowledgeCallback(ctx, u.CallbackID); err != nil {
		e.logger.Warn("failed to acknowledge callback", "chat_id", conv.ChatID, "err", err)
	}
	if u.MessageID != 0 {
		promptID = u.MessageID
	}
	if promptID != 0 {
		if err := e.transport.DeleteMessage(ctx, conv.ChatID, promptID); err != nil {
			e.logger.Warn("failed to delete confirmation prompt", "chat_id", conv.ChatID, "message_id", promptID, "err", err)
		}
	}

	switch u.CallbackData {
	case "yes":
		if e.executeTrade != nil && order != nil {
			if err := e.executeTrade(ctx, *order); err != nil {
				e.setOutcome(ctx, journalID, domain.OutcomeAborted)
				return err
			}
		}
		e.setOutcome(ctx, journalID, domain.OutcomeExecuted)
		e.logger.Info("trade confirmed", "chat_id", conv.ChatID, "order_id", journalID)
		return e.transport.SendText(ctx, conv.ChatID, msgExecuted)
	case "no":
		e.setOutcome(ctx, journalID, domain.OutcomeDeclined)
		return e.transport.SendText(ctx, conv.ChatID, msgNotExecuted)
	default:
		e.setOutcome(ctx, journalID, domain.OutcomeAborted)
		return e.transport.SendText(ctx, conv.ChatID, msgCallbackError)
	}
}
