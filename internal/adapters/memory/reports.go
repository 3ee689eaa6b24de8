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

// reportRepo reads and writes either the committed state or, inside a
// transaction, the staged copy.
type reportRepo struct {
	s  *Store
	tx *state
}

var _ ports.ReportRepository = (*reportRepo)(nil)

func (r *reportRepo) Create(ctx context.Context, report *domain.Report) error {
	return r.apply(ctx, func(st *state) error {
		if _, ok := st.reports[report.ID]; ok {
			return fmt.Errorf("report %s: %w", report.ID, sentinel.ErrConflict)
		}
		st.reports[report.ID] = storedReport{seq: st.next(), report: cloneReport(*report)}
		return nil
	})
}

func (r *reportRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	var out *domain.Report
	r.view(func(st *state) {
		if sr, ok := st.reports[id]; ok {
			c := cloneReport(sr.report)
			out = &c
		}
	})
	return out, nil
}

// GetByIDForUpdate needs no extra locking: transactions already hold the
// store's write lock.
func (r *reportRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	return r.GetByID(ctx, id)
}

func (r *reportRepo) Update(ctx context.Context, report *domain.Report) error {
	return r.apply(ctx, func(st *state) error {
		sr, ok := st.reports[report.ID]
		if !ok {
			return fmt.Errorf("report %s: %w", report.ID, sentinel.ErrNotFound)
		}
		sr.report = cloneReport(*report)
		st.reports[report.ID] = sr
		return nil
	})
}

func (r *reportRepo) List(ctx context.Context, filter ports.ReportFilter) ([]*domain.Report, error) {
	var matched []storedReport
	r.view(func(st *state) {
		for _, sr := range st.reports {
			if matches(sr.report, filter) {
				matched = append(matched, sr)
			}
		}
	})

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.report.CreatedAt.Equal(b.report.CreatedAt) {
			return a.report.CreatedAt.After(b.report.CreatedAt)
		}
		return a.seq > b.seq
	})

	out := make([]*domain.Report, 0, len(matched))
	for _, sr := range matched {
		c := cloneReport(sr.report)
		out = append(out, &c)
	}
	return out, nil
}

func (r *reportRepo) apply(ctx context.Context, fn func(st *state) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	return r.s.write(ctx, fn)
}

func (r *reportRepo) view(fn func(st *state)) {
	if r.tx != nil {
		fn(r.tx)
		return
	}
	r.s.read(fn)
}

func matches(r domain.Report, f ports.ReportFilter) bool {
	if f.SubmittedBy != nil && r.SubmittedBy != *f.SubmittedBy {
		return false
	}
	if f.AssignedTo != nil && !r.IsAssignedTo(*f.AssignedTo) {
		return false
	}
	if f.Status != nil && r.Status != *f.Status {
		return false
	}
	return true
}

// cloneReport copies the pointer fields so callers never share memory
// with the store.
func cloneReport(r domain.Report) domain.Report {
	if r.AssignedTo != nil {
		v := *r.AssignedTo
		r.AssignedTo = &v
	}
	if r.ProofPhotoURL != nil {
		v := *r.ProofPhotoURL
		r.ProofPhotoURL = &v
	}
	if r.CivicCoinsEarned != nil {
		v := *r.CivicCoinsEarned
		r.CivicCoinsEarned = &v
	}
	if r.ResolvedAt != nil {
		v := *r.ResolvedAt
		r.ResolvedAt = &v
	}
	if r.VerifiedAt != nil {
		v := *r.VerifiedAt
		r.VerifiedAt = &v
	}
	return r
}
