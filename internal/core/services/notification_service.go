package services

import (
	"CivicPulse/internal/core/domain"
	"CivicPulse/internal/core/ports"
	"CivicPulse/internal/shared/sentinel"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// NotificationService lets users read and manage their own notifications.
type NotificationService struct {
	users ports.UserRepository
	notes ports.NotificationRepository
	log   zerolog.Logger
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(
	users ports.UserRepository,
	notes ports.NotificationRepository,
	baseLogger *zerolog.Logger,
) *NotificationService {
	return &NotificationService{
		users: users,
		notes: notes,
		log:   baseLogger.With().Str("component", "notification_service").Logger(),
	}
}

// List returns the actor's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, actorName string) ([]*domain.Notification, error) {
	actor, err := resolveActor(ctx, s.users, actorName)
	if err != nil {
		return nil, err
	}
	notes, err := s.notes.ListByRecipient(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notes, nil
}

// MarkRead flags one of the actor's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, actorName string, id uuid.UUID) error {
	if _, err := s.owned(ctx, actorName, id, "modify"); err != nil {
		return err
	}
	if err := s.notes.MarkRead(ctx, id); err != nil {
		return notFoundOr(err, id, "mark read")
	}
	return nil
}

// Delete removes one of the actor's notifications.
func (s *NotificationService) Delete(ctx context.Context, actorName string, id uuid.UUID) error {
	if _, err := s.owned(ctx, actorName, id, "delete"); err != nil {
		return err
	}
	if err := s.notes.Delete(ctx, id); err != nil {
		return notFoundOr(err, id, "delete")
	}
	return nil
}

// DeleteAll removes every notification addressed to the actor.
func (s *NotificationService) DeleteAll(ctx context.Context, actorName string) error {
	actor, err := resolveActor(ctx, s.users, actorName)
	if err != nil {
		return err
	}
	if err := s.notes.DeleteByRecipient(ctx, actor.ID); err != nil {
		return fmt.Errorf("delete notifications: %w", err)
	}
	s.log.Info().Str("user_id", actor.ID.String()).Msg("Cleared all notifications")
	return nil
}

func (s *NotificationService) owned(ctx context.Context, actorName string, id uuid.UUID, verb string) (*domain.Notification, error) {
	actor, err := resolveActor(ctx, s.users, actorName)
	if err != nil {
		return nil, err
	}
	n, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load notification %s: %w", id, err)
	}
	if n == nil {
		return nil, domain.NewError(domain.KindNotFound, "notification %s not found", id)
	}
	if n.RecipientID != actor.ID {
		return nil, domain.NewError(domain.KindUnauthorized, "unauthorized to %s this notification", verb)
	}
	return n, nil
}

// notFoundOr reports a notification removed after the ownership check
// (for example by a concurrent DeleteAll) as not_found.
func notFoundOr(err error, id uuid.UUID, op string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return domain.NewError(domain.KindNotFound, "notification %s not found", id)
	}
	return fmt.Errorf("%s notification %s: %w", op, id, err)
}
