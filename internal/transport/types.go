package transport

import "context"

type UpdateKind string

const (
	UpdateMessage UpdateKind = "message"
	UpdateWebApp  UpdateKind = "web_app"
)

type Update struct {
	Kind    UpdateKind
	Message *Message
}

// Message is a platform-neutral inbound message.
// For Kind=web_app, WebAppData carries the raw JSON payload submitted by the
// mini-app; Text is empty.
type Message struct {
	ID           int
	ChatID       int64
	FromID       int64
	FromUsername string
	FromName     string // display name (first/last), may be empty
	Text         string
	WebAppData   string
	IsGroup      bool
}

type ChatTarget struct {
	ChatID int64
}

type MessageRef struct {
	ChatID    int64
	MessageID int
}

type SendOptions struct {
	ParseMode          string
	DisablePreview     bool
	ReplyMarkupAdapter any // adapter-specific markup (Telegram: *telebot.ReplyMarkup)
}

type Adapter interface {
	Start(ctx context.Context, out chan<- Update) error
	Stop(ctx context.Context) error

	SendText(ctx context.Context, to ChatTarget, text string, opt *SendOptions) (MessageRef, error)
}

// WebAppKeyboarder is an optional interface for adapters that can build a
// platform-specific keyboard opening an embedded web app.
type WebAppKeyboarder interface {
	WebAppKeyboard(label, url string) any
}
