package ports

import (
	"CivicPulse/internal/core/domain"
	"context"

	"github.com/google/uuid"
)

// ReportFilter narrows List. Nil fields match everything.
type ReportFilter struct {
	SubmittedBy *uuid.UUID
	AssignedTo  *uuid.UUID
	Status      *domain.ReportStatus
}

// ReportRepository defines the persistence operations for Reports.
// Lookups return (nil, nil) when the report does not exist.
type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Report, error)

	// GetByIDForUpdate reads the report and locks it until the surrounding
	// transaction ends. Outside a transaction it behaves like GetByID.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Report, error)

	Update(ctx context.Context, report *domain.Report) error

	// List returns matching reports, newest first.
	List(ctx context.Context, filter ReportFilter) ([]*domain.Report, error)
}
