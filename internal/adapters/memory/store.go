package memory

import (
	"CivicPulse/internal/core/domain"
	"CivicPulse/internal/core/ports"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store is an in-process implementation of every persistence port. It is
// used when no database is configured and by service tests.
//
// Writers are serialized by writeMu for the whole transaction, which gives
// the same outcome as a row lock on every report. A transaction works on a
// copy of the state that replaces the committed state only on success.
type Store struct {
	writeMu sync.Mutex
	mu      sync.RWMutex
	st      *state
	clock   func() time.Time
	log     zerolog.Logger
}

type state struct {
	seq     int64
	users   map[uuid.UUID]domain.User
	reports map[uuid.UUID]storedReport
	notes   map[uuid.UUID]storedNote
}

type storedReport struct {
	seq    int64
	report domain.Report
}

type storedNote struct {
	seq  int64
	note domain.Notification
}

var _ ports.UnitOfWork = (*Store)(nil)

// NewStore creates an empty Store.
func NewStore(baseLogger *zerolog.Logger) *Store {
	log := baseLogger.With().Str("component", "memory_store").Logger()
	log.Info().Msg("Using in-memory store")
	return &Store{
		st: &state{
			users:   make(map[uuid.UUID]domain.User),
			reports: make(map[uuid.UUID]storedReport),
			notes:   make(map[uuid.UUID]storedNote),
		},
		clock: time.Now,
		log:   log,
	}
}

// Users returns the user directory backed by this store.
func (s *Store) Users() ports.UserRepository { return &userRepo{s: s} }

// Reports returns a report repository outside any transaction.
func (s *Store) Reports() ports.ReportRepository { return &reportRepo{s: s} }

// Notifications returns a notification repository outside any transaction.
func (s *Store) Notifications() ports.NotificationRepository { return &notificationRepo{s: s} }

// RunInTx implements ports.UnitOfWork.
func (s *Store) RunInTx(ctx context.Context, fn func(tx ports.TxStores) error) error {
	return s.write(ctx, func(staged *state) error {
		return fn(&txStores{
			reports: &reportRepo{s: s, tx: staged},
			notes:   &notificationRepo{s: s, tx: staged},
		})
	})
}

func (s *Store) write(ctx context.Context, fn func(staged *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	staged := s.st.clone()
	s.mu.RUnlock()

	if err := fn(staged); err != nil {
		return err
	}

	s.mu.Lock()
	s.st = staged
	s.mu.Unlock()
	return nil
}

func (s *Store) read(fn func(st *state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.st)
}

func (st *state) clone() *state {
	c := &state{
		seq:     st.seq,
		users:   make(map[uuid.UUID]domain.User, len(st.users)),
		reports: make(map[uuid.UUID]storedReport, len(st.reports)),
		notes:   make(map[uuid.UUID]storedNote, len(st.notes)),
	}
	for k, v := range st.users {
		c.users[k] = v
	}
	for k, v := range st.reports {
		c.reports[k] = v
	}
	for k, v := range st.notes {
		c.notes[k] = v
	}
	return c
}

func (st *state) next() int64 {
	st.seq++
	return st.seq
}

type txStores struct {
	reports *reportRepo
	notes   *notificationRepo
}

func (t *txStores) Reports() ports.ReportRepository       { return t.reports }
func (t *txStores) Notifications() ports.NotificationSink { return t.notes }
