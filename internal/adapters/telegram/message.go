package telegram

import (
	"CivicPulse/internal/core/domain"
	"CivicPulse/internal/core/ports"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Builder helps construct SendMessageParams.
type Builder struct {
	params ports.SendMessageParams
}

// NewBuilder creates a new message builder.
func NewBuilder(chatID int64) *Builder {
	return &Builder{
		params: ports.SendMessageParams{
			ChatID:    chatID,
			ParseMode: tgbotapi.ModeMarkdownV2,
		},
	}
}

// WithText sets the message text. It must already be escaped for the parse mode.
func (b *Builder) WithText(text string) *Builder {
	b.params.Text = text
	return b
}

// WithParseMode overrides the default parse mode.
func (b *Builder) WithParseMode(mode string) *Builder {
	b.params.ParseMode = mode
	return b
}

// Build returns the final SendMessageParams struct.
func (b *Builder) Build() ports.SendMessageParams {
	return b.params
}

var notificationTitles = map[domain.NotificationType]string{
	domain.NotificationReportAssigned: "Report assigned",
	domain.NotificationReportResolved: "Report resolved",
	domain.NotificationReportVerified: "Report verified",
}

// NotificationMessage renders a stored notification for chatID.
func NotificationMessage(chatID int64, n *domain.Notification) ports.SendMessageParams {
	title, ok := notificationTitles[n.Type]
	if !ok {
		title = "Update"
	}
	esc := func(s string) string { return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, s) }
	text := fmt.Sprintf("*%s*\n%s\n\n_Report %s_", esc(title), esc(n.Message), esc(n.RelatedID.String()))
	return NewBuilder(chatID).WithText(text).Build()
}
