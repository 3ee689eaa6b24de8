package ports

import (
	"context"
)

// SendMessageParams holds the options for sending a message.
type SendMessageParams struct {
	ChatID    int64
	Text      string
	ParseMode string // e.g., "MarkdownV2" or "HTML"
}

// BotClientPort defines the interface for *sending* messages to users.
type BotClientPort interface {
	SendMessage(ctx context.Context, params SendMessageParams) (int, error)
}
