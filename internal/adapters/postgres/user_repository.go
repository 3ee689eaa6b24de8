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
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

type userRepository struct {
	q   querier
	log zerolog.Logger
}

var _ ports.UserRepository = (*userRepository)(nil) // Ensure compliance

// NewUserRepository creates a new repository for user operations.
func NewUserRepository(db *DB, baseLogger *zerolog.Logger) ports.UserRepository {
	return &userRepository{
		q:   db.pool,
		log: baseLogger.With().Str("component", "user_repo").Logger(),
	}
}

const userQueryCols = `
	id, username, display_name, role, telegram_chat_id, created_at, updated_at
`

// Create saves a new user. A taken id or username yields sentinel.ErrConflict.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if !user.Role.Valid() {
		return domain.NewError(domain.KindValidation, "unknown role %q", user.Role)
	}

	query := `
		INSERT INTO users (id, username, display_name, role, telegram_chat_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := r.q.QueryRow(ctx, query,
		user.ID,
		user.Username,
		user.DisplayName,
		string(user.Role),
		user.TelegramChatID,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %s: %w", user.Username, sentinel.ErrConflict)
		}
		r.log.Error().Err(err).Str("username", user.Username).Msg("Failed to insert new user")
		return err
	}
	return nil
}

func (r *userRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	var role string
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.DisplayName,
		&role,
		&user.TelegramChatID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Role = domain.Role(role)
	return &user, nil
}

// GetByID finds a user by their internal UUID.
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userQueryCols + ` FROM users WHERE id = $1`

	user, err := r.scanUser(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.log.Debug().Str("user_id", id.String()).Msg("User not found")
			return nil, nil // Return nil, nil for "not found"
		}
		r.log.Error().Err(err).Str("user_id", id.String()).Msg("Failed to load user")
		return nil, err
	}
	return user, nil
}

// GetByUsername finds a user by username.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userQueryCols + ` FROM users WHERE username = $1`

	user, err := r.scanUser(r.q.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.log.Debug().Str("username", username).Msg("User not found")
			return nil, nil
		}
		r.log.Error().Err(err).Str("username", username).Msg("Failed to load user")
		return nil, err
	}
	return user, nil
}

// ListByRole returns all users holding role.
func (r *userRepository) ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	query := `SELECT ` + userQueryCols + ` FROM users WHERE role = $1 ORDER BY display_name, username`

	rows, err := r.q.Query(ctx, query, string(role))
	if err != nil {
		r.log.Error().Err(err).Str("role", string(role)).Msg("Failed to list users")
		return nil, err
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
