package ports

import (
	"CivicPulse/internal/core/domain"
	"context"

	"github.com/google/uuid"
)

// NotificationSink accepts notification requests produced by the report lifecycle.
type NotificationSink interface {
	Emit(ctx context.Context, req domain.NotificationRequest) (*domain.Notification, error)
}

// NotificationRepository stores notifications for their recipients.
type NotificationRepository interface {
	NotificationSink

	// GetByID returns (nil, nil) if the notification does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error)

	// ListByRecipient returns the recipient's notifications, newest first.
	ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]*domain.Notification, error)

	MarkRead(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByRecipient(ctx context.Context, recipientID uuid.UUID) error
}
