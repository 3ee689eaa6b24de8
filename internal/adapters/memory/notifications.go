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

type notificationRepo struct {
	s  *Store
	tx *state
}

var _ ports.NotificationRepository = (*notificationRepo)(nil)

func (r *notificationRepo) Emit(ctx context.Context, req domain.NotificationRequest) (*domain.Notification, error) {
	n := domain.Notification{
		ID:                  uuid.New(),
		NotificationRequest: req,
		CreatedAt:           r.s.clock().UTC(),
	}
	err := r.apply(ctx, func(st *state) error {
		st.notes[n.ID] = storedNote{seq: st.next(), note: n}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	var out *domain.Notification
	r.view(func(st *state) {
		if sn, ok := st.notes[id]; ok {
			n := sn.note
			out = &n
		}
	})
	return out, nil
}

func (r *notificationRepo) ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]*domain.Notification, error) {
	var matched []storedNote
	r.view(func(st *state) {
		for _, sn := range st.notes {
			if sn.note.RecipientID == recipientID {
				matched = append(matched, sn)
			}
		}
	})
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq > matched[j].seq })

	out := make([]*domain.Notification, 0, len(matched))
	for _, sn := range matched {
		n := sn.note
		out = append(out, &n)
	}
	return out, nil
}

func (r *notificationRepo) MarkRead(ctx context.Context, id uuid.UUID) error {
	return r.apply(ctx, func(st *state) error {
		sn, ok := st.notes[id]
		if !ok {
			return fmt.Errorf("notification %s: %w", id, sentinel.ErrNotFound)
		}
		sn.note.IsRead = true
		st.notes[id] = sn
		return nil
	})
}

func (r *notificationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.apply(ctx, func(st *state) error {
		if _, ok := st.notes[id]; !ok {
			return fmt.Errorf("notification %s: %w", id, sentinel.ErrNotFound)
		}
		delete(st.notes, id)
		return nil
	})
}

func (r *notificationRepo) DeleteByRecipient(ctx context.Context, recipientID uuid.UUID) error {
	return r.apply(ctx, func(st *state) error {
		for id, sn := range st.notes {
			if sn.note.RecipientID == recipientID {
				delete(st.notes, id)
			}
		}
		return nil
	})
}

func (r *notificationRepo) apply(ctx context.Context, fn func(st *state) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	return r.s.write(ctx, fn)
}

func (r *notificationRepo) view(fn func(st *state)) {
	if r.tx != nil {
		fn(r.tx)
		return
	}
	r.s.read(fn)
}
