package postgres

import (
	"CivicPulse/internal/core/domain"
	"CivicPulse/internal/core/ports"
	"CivicPulse/internal/shared/sentinel"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type notificationRepository struct {
	q   querier
	log zerolog.Logger
}

var _ ports.NotificationRepository = (*notificationRepository)(nil)

// NewNotificationRepository creates a pool-bound notification repository.
func NewNotificationRepository(db *DB, baseLogger *zerolog.Logger) ports.NotificationRepository {
	return &notificationRepository{
		q:   db.pool,
		log: baseLogger.With().Str("component", "notification_repo").Logger(),
	}
}

const notificationQueryCols = `
	id, recipient_id, actor_id, type, message, related_id, is_read, created_at
`

// Emit stores req as an unread notification.
func (r *notificationRepository) Emit(ctx context.Context, req domain.NotificationRequest) (*domain.Notification, error) {
	n := &domain.Notification{
		ID:                  uuid.New(),
		NotificationRequest: req,
	}
	query := `
		INSERT INTO notifications (id, recipient_id, actor_id, type, message, related_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING is_read, created_at
	`
	err := r.q.QueryRow(ctx, query,
		n.ID, req.RecipientID, req.ActorID, string(req.Type), req.Message, req.RelatedID,
	).Scan(&n.IsRead, &n.CreatedAt)
	if err != nil {
		r.log.Error().Err(err).
			Str("recipient_id", req.RecipientID.String()).
			Str("type", string(req.Type)).
			Msg("Failed to insert notification")
		return nil, err
	}
	return n, nil
}

func (r *notificationRepository) scanNotification(row pgx.Row) (*domain.Notification, error) {
	var n domain.Notification
	var typ string
	if err := row.Scan(
		&n.ID,
		&n.RecipientID,
		&n.ActorID,
		&typ,
		&n.Message,
		&n.RelatedID,
		&n.IsRead,
		&n.CreatedAt,
	); err != nil {
		return nil, err
	}
	n.Type = domain.NotificationType(typ)
	return &n, nil
}

func (r *notificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	query := `SELECT ` + notificationQueryCols + ` FROM notifications WHERE id = $1`
	n, err := r.scanNotification(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error().Err(err).Str("notification_id", id.String()).Msg("Failed to load notification")
		return nil, err
	}
	return n, nil
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]*domain.Notification, error) {
	query := `SELECT ` + notificationQueryCols + ` FROM notifications
		WHERE recipient_id = $1 ORDER BY created_at DESC, seq DESC`
	rows, err := r.q.Query(ctx, query, recipientID)
	if err != nil {
		r.log.Error().Err(err).Str("recipient_id", recipientID.String()).Msg("Failed to list notifications")
		return nil, err
	}
	defer rows.Close()

	notes := []*domain.Notification{}
	for rows.Next() {
		n, err := r.scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	return r.execOne(ctx, `UPDATE notifications SET is_read = true WHERE id = $1`, id)
}

func (r *notificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.execOne(ctx, `DELETE FROM notifications WHERE id = $1`, id)
}

func (r *notificationRepository) DeleteByRecipient(ctx context.Context, recipientID uuid.UUID) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM notifications WHERE recipient_id = $1`, recipientID)
	if err != nil {
		r.log.Error().Err(err).Str("recipient_id", recipientID.String()).Msg("Failed to delete notifications")
		return err
	}
	r.log.Debug().Int64("deleted", tag.RowsAffected()).Msg("Notifications deleted")
	return nil
}

func (r *notificationRepository) execOne(ctx context.Context, query string, id uuid.UUID) error {
	tag, err := r.q.Exec(ctx, query, id)
	if err != nil {
		r.log.Error().Err(err).Str("notification_id", id.String()).Msg("Notification write failed")
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("notification %s: %w", id, sentinel.ErrNotFound)
	}
	return nil
}
