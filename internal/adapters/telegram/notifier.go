package telegram

import (
	"CivicPulse/internal/core/domain"
	"CivicPulse/internal/core/ports"
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Notifier delivers committed notifications to their recipients over
// Telegram. With no bot configured it only logs what it would send.
type Notifier struct {
	bot   ports.BotClientPort
	users ports.UserRepository
	log   zerolog.Logger
}

// NewNotifier creates a Notifier. bot may be nil.
func NewNotifier(bot ports.BotClientPort, users ports.UserRepository, baseLogger *zerolog.Logger) *Notifier {
	return &Notifier{
		bot:   bot,
		users: users,
		log:   baseLogger.With().Str("component", "telegram_notifier").Logger(),
	}
}

// Subscribe registers the notifier on the bus.
func (n *Notifier) Subscribe(bus ports.EventBus) {
	bus.Subscribe(ports.TopicNotificationCreated, n.HandleNotificationCreated)
}

// HandleNotificationCreated is the EventHandler for ports.TopicNotificationCreated.
func (n *Notifier) HandleNotificationCreated(ctx context.Context, event ports.Event) error {
	note, ok := event.Data.(*domain.Notification)
	if !ok || note == nil {
		n.log.Error().Str("topic", event.Topic).Msg("Received invalid data for notification event")
		return nil // Don't retry
	}

	log := n.log.With().
		Str("notification_id", note.ID.String()).
		Str("recipient_id", note.RecipientID.String()).
		Str("type", string(note.Type)).
		Logger()

	recipient, err := n.users.GetByID(ctx, note.RecipientID)
	if err != nil {
		return fmt.Errorf("look up recipient %s: %w", note.RecipientID, err)
	}
	if recipient == nil || recipient.TelegramChatID == nil {
		log.Debug().Msg("Recipient has no Telegram chat, skipping delivery")
		return nil
	}
	if n.bot == nil {
		log.Info().Str("message", note.Message).Msg("Telegram delivery disabled, notification logged only")
		return nil
	}

	msgID, err := n.bot.SendMessage(ctx, NotificationMessage(*recipient.TelegramChatID, note))
	if err != nil {
		log.Error().Err(err).Msg("Failed to deliver notification")
		return err
	}
	log.Info().Int("message_id", msgID).Msg("Notification delivered")
	return nil
}
