package domain

import (
	"context"
	"time"
)

// UpdateKind distinguishes the two inbound event types the chat transport
// can deliver.
type UpdateKind int

const (
	// UpdateMessage is a plain text message from a chat.
	UpdateMessage UpdateKind = iota
	// UpdateCallback is a button press on a previously sent choice prompt.
	UpdateCallback
)

// Update is a single inbound event from the chat transport.
type Update struct {
	Kind     UpdateKind
	ChatID   int64
	SenderID int64

	// Text is the message body (UpdateMessage only).
	Text string

	// CallbackID identifies the callback for acknowledgement,
	// CallbackData carries the button payload ("" = absent), and
	// MessageID is the message the pressed keyboard was attached to
	// (UpdateCallback only).
	CallbackID   string
	CallbackData string
	MessageID    int

	Timestamp time.Time
}

// Choice is one button of an interactive prompt.
type Choice struct {
	Label string
	Data  string
}

// Transport is the chat collaborator the dialog engine talks to. The
// Telegram implementation lives in internal/channel.
type Transport interface {
	// BotName returns the bot's own handle, used to strip "@bot" command
	// suffixes in group chats.
	BotName() string

	SendText(ctx context.Context, chatID int64, text string) error

	// SendWithChoice sends text with an attached row of buttons and
	// returns the ID of the sent message so it can be deleted later.
	SendWithChoice(ctx context.Context, chatID int64, text string, options []Choice) (int, error)

	DeleteMessage(ctx context.Context, chatID int64, messageID int) error

	// AcknowledgeCallback stops the client-side pending indicator for a
	// button press.
	AcknowledgeCallback(ctx context.Context, callbackID string) error
}
