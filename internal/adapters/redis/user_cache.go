package redis

import (
	"CivicPulse/internal/core/domain"
	"CivicPulse/internal/core/ports"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	userByIDPrefix   = "civicpulse:user:id:"
	userByNamePrefix = "civicpulse:user:name:"
)

// cachedUserRepository is a read-through cache in front of the user
// directory. Redis failures degrade to the wrapped repository.
type cachedUserRepository struct {
	next   ports.UserRepository
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

var _ ports.UserRepository = (*cachedUserRepository)(nil)

// NewCachedUserRepository wraps next with a Redis cache whose entries expire after ttl.
func NewCachedUserRepository(next ports.UserRepository, client *redis.Client, ttl time.Duration, baseLogger *zerolog.Logger) ports.UserRepository {
	return &cachedUserRepository{
		next:   next,
		client: client,
		ttl:    ttl,
		log:    baseLogger.With().Str("component", "user_cache").Logger(),
	}
}

func (c *cachedUserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := c.next.Create(ctx, user); err != nil {
		return err
	}
	c.store(ctx, user)
	return nil
}

func (c *cachedUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if u := c.load(ctx, userByIDPrefix+id.String()); u != nil {
		return u, nil
	}
	u, err := c.next.GetByID(ctx, id)
	if err != nil || u == nil {
		return u, err
	}
	c.store(ctx, u)
	return u, nil
}

func (c *cachedUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if u := c.load(ctx, userByNamePrefix+username); u != nil {
		return u, nil
	}
	u, err := c.next.GetByUsername(ctx, username)
	if err != nil || u == nil {
		return u, err
	}
	c.store(ctx, u)
	return u, nil
}

// ListByRole is not cached.
func (c *cachedUserRepository) ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	return c.next.ListByRole(ctx, role)
}

func (c *cachedUserRepository) load(ctx context.Context, key string) *domain.User {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("key", key).Msg("User cache read failed")
		}
		return nil
	}
	var u domain.User
	if err := json.Unmarshal(raw, &u); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Discarding undecodable cache entry")
		return nil
	}
	return &u
}

func (c *cachedUserRepository) store(ctx context.Context, u *domain.User) {
	raw, err := json.Marshal(u)
	if err != nil {
		c.log.Warn().Err(err).Str("user_id", u.ID.String()).Msg("Failed to encode user for cache")
		return
	}
	pipe := c.client.Pipeline()
	pipe.Set(ctx, userByIDPrefix+u.ID.String(), raw, c.ttl)
	pipe.Set(ctx, userByNamePrefix+u.Username, raw, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warn().Err(err).Str("user_id", u.ID.String()).Msg("User cache write failed")
	}
}
