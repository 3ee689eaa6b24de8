package services

import (
	"CivicPulse/internal/core/domain"
	"CivicPulse/internal/core/ports"
	"context"
	"fmt"
	"strings"
)

// resolveActor maps an authenticated identity to a directory user.
func resolveActor(ctx context.Context, users ports.UserRepository, username string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.NewError(domain.KindUnauthorized, "authentication required")
	}
	user, err := users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("look up user %q: %w", username, err)
	}
	if user == nil {
		return nil, domain.NewError(domain.KindNotFound, "user %q not found", username)
	}
	return user, nil
}

// outcomeLabel is the metrics label for a transition result.
func outcomeLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := domain.KindOf(err); kind != "" {
		return string(kind)
	}
	return "error"
}
