package memory

import (
	"CivicPulse/internal/core/domain"
	"CivicPulse/internal/core/ports"
	"CivicPulse/internal/shared/sentinel"
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

type userRepo struct {
	s *Store
}

var _ ports.UserRepository = (*userRepo)(nil)

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.users[user.ID]; ok {
			return fmt.Errorf("user %s: %w", user.ID, sentinel.ErrConflict)
		}
		for _, u := range st.users {
			if u.Username == user.Username {
				return fmt.Errorf("username %q: %w", user.Username, sentinel.ErrConflict)
			}
		}
		now := r.s.clock().UTC()
		if user.CreatedAt.IsZero() {
			user.CreatedAt = now
		}
		user.UpdatedAt = now
		st.users[user.ID] = cloneUser(*user)
		return nil
	})
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var out *domain.User
	r.s.read(func(st *state) {
		if u, ok := st.users[id]; ok {
			c := cloneUser(u)
			out = &c
		}
	})
	return out, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var out *domain.User
	r.s.read(func(st *state) {
		for _, u := range st.users {
			if u.Username == username {
				c := cloneUser(u)
				out = &c
				return
			}
		}
	})
	return out, nil
}

func (r *userRepo) ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	var out []*domain.User
	r.s.read(func(st *state) {
		for _, u := range st.users {
			if u.Role == role {
				c := cloneUser(u)
				out = append(out, &c)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayName != out[j].DisplayName {
			return out[i].DisplayName < out[j].DisplayName
		}
		return out[i].Username < out[j].Username
	})
	return out, nil
}

func cloneUser(u domain.User) domain.User {
	if u.TelegramChatID != nil {
		v := *u.TelegramChatID
		u.TelegramChatID = &v
	}
	return u
}
