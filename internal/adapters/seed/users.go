package seed

import (
	"CivicPulse/internal/core/domain"
	"CivicPulse/internal/core/ports"
	"CivicPulse/internal/shared/sentinel"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// UserRecord is one entry of a seed file.
type UserRecord struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	DisplayName    string `json:"displayName"`
	Role           string `json:"role"`
	TelegramChatID *int64 `json:"telegramChatId"`
}

// LoadUsersFile reads a JSON array of users from path and adds the ones
// missing from the directory.
func LoadUsersFile(ctx context.Context, path string, users ports.UserRepository, baseLogger *zerolog.Logger) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}
	var records []UserRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return 0, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return Users(ctx, records, users, baseLogger)
}

// Users creates every record whose username is not taken yet and returns
// how many were created. Existing users are left untouched.
func Users(ctx context.Context, records []UserRecord, users ports.UserRepository, baseLogger *zerolog.Logger) (int, error) {
	log := baseLogger.With().Str("component", "seed").Logger()

	created := 0
	for i, rec := range records {
		user, err := rec.toUser()
		if err != nil {
			return created, fmt.Errorf("seed record %d: %w", i, err)
		}

		existing, err := users.GetByUsername(ctx, user.Username)
		if err != nil {
			return created, fmt.Errorf("look up %q: %w", user.Username, err)
		}
		if existing != nil {
			log.Debug().Str("username", user.Username).Msg("User already present, skipping")
			continue
		}

		if err := users.Create(ctx, user); err != nil {
			// Another instance may have seeded the same user concurrently.
			if errors.Is(err, sentinel.ErrConflict) {
				log.Debug().Str("username", user.Username).Msg("User created concurrently, skipping")
				continue
			}
			return created, fmt.Errorf("create %q: %w", user.Username, err)
		}
		created++
		log.Info().
			Str("user_id", user.ID.String()).
			Str("username", user.Username).
			Str("role", string(user.Role)).
			Msg("Seeded user")
	}
	return created, nil
}

func (rec UserRecord) toUser() (*domain.User, error) {
	username := strings.TrimSpace(rec.Username)
	if username == "" {
		return nil, domain.NewError(domain.KindValidation, "username is required")
	}
	role, err := domain.ParseRole(strings.ToUpper(strings.TrimSpace(rec.Role)))
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	if rec.ID != "" {
		if id, err = uuid.Parse(rec.ID); err != nil {
			return nil, domain.NewError(domain.KindValidation, "invalid id %q for %s", rec.ID, username)
		}
	}
	display := strings.TrimSpace(rec.DisplayName)
	if display == "" {
		display = username
	}

	return &domain.User{
		ID:             id,
		Username:       username,
		DisplayName:    display,
		Role:           role,
		TelegramChatID: rec.TelegramChatID,
	}, nil
}
