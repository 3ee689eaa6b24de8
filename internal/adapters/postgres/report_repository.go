package postgres

import (
	"CivicPulse/internal/core/domain"
	"CivicPulse/internal/core/ports"
	"CivicPulse/internal/shared/sentinel"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type reportRepository struct {
	q   querier
	sec ports.SecurityPort // proof_photo_url is stored encrypted
	log zerolog.Logger
}

var _ ports.ReportRepository = (*reportRepository)(nil)

// NewReportRepository creates a pool-bound report repository.
func NewReportRepository(db *DB, baseLogger *zerolog.Logger) ports.ReportRepository {
	return &reportRepository{
		q:   db.pool,
		sec: db.sec,
		log: baseLogger.With().Str("component", "report_repo").Logger(),
	}
}

const reportQueryCols = `
	id, title, description, latitude, longitude, status, submitted_by, assigned_to,
	proof_photo_url, civic_coins_earned, created_at, updated_at, resolved_at, verified_at
`

func (r *reportRepository) Create(ctx context.Context, report *domain.Report) error {
	proof, err := r.sealProof(report)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO reports (
			id, title, description, latitude, longitude, status, submitted_by, assigned_to,
			proof_photo_url, civic_coins_earned, created_at, updated_at, resolved_at, verified_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = r.q.Exec(ctx, query,
		report.ID,
		report.Title,
		report.Description,
		report.Location.Latitude,
		report.Location.Longitude,
		string(report.Status),
		report.SubmittedBy,
		report.AssignedTo,
		proof,
		report.CivicCoinsEarned,
		report.CreatedAt,
		report.UpdatedAt,
		report.ResolvedAt,
		report.VerifiedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("report %s: %w", report.ID, sentinel.ErrConflict)
		}
		r.log.Error().Err(err).Str("report_id", report.ID.String()).Msg("Failed to insert report")
		return err
	}
	return nil
}

func (r *reportRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	return r.get(ctx, `SELECT `+reportQueryCols+` FROM reports WHERE id = $1`, id)
}

// GetByIDForUpdate takes a row lock held until the surrounding transaction
// ends. Concurrent transitions on the same report queue behind it.
func (r *reportRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	return r.get(ctx, `SELECT `+reportQueryCols+` FROM reports WHERE id = $1 FOR UPDATE`, id)
}

func (r *reportRepository) get(ctx context.Context, query string, id uuid.UUID) (*domain.Report, error) {
	report, err := r.scanReport(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error().Err(err).Str("report_id", id.String()).Msg("Failed to load report")
		return nil, err
	}
	return report, nil
}

func (r *reportRepository) Update(ctx context.Context, report *domain.Report) error {
	proof, err := r.sealProof(report)
	if err != nil {
		return err
	}

	query := `
		UPDATE reports SET
			title = $2, description = $3, status = $4, assigned_to = $5,
			proof_photo_url = $6, civic_coins_earned = $7, updated_at = $8,
			resolved_at = $9, verified_at = $10
		WHERE id = $1
	`
	tag, err := r.q.Exec(ctx, query,
		report.ID,
		report.Title,
		report.Description,
		string(report.Status),
		report.AssignedTo,
		proof,
		report.CivicCoinsEarned,
		report.UpdatedAt,
		report.ResolvedAt,
		report.VerifiedAt,
	)
	if err != nil {
		r.log.Error().Err(err).Str("report_id", report.ID.String()).Msg("Failed to update report")
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("report %s: %w", report.ID, sentinel.ErrNotFound)
	}
	return nil
}

func (r *reportRepository) List(ctx context.Context, filter ports.ReportFilter) ([]*domain.Report, error) {
	var where []string
	var args []any
	add := func(clause string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if filter.SubmittedBy != nil {
		add("submitted_by = $%d", *filter.SubmittedBy)
	}
	if filter.AssignedTo != nil {
		add("assigned_to = $%d", *filter.AssignedTo)
	}
	if filter.Status != nil {
		add("status = $%d", string(*filter.Status))
	}

	query := `SELECT ` + reportQueryCols + ` FROM reports`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, seq DESC`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		r.log.Error().Err(err).Msg("Failed to list reports")
		return nil, err
	}
	defer rows.Close()

	reports := []*domain.Report{}
	for rows.Next() {
		rep, err := r.scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

func (r *reportRepository) scanReport(row pgx.Row) (*domain.Report, error) {
	var rep domain.Report
	var status string
	var encProof *string

	err := row.Scan(
		&rep.ID,
		&rep.Title,
		&rep.Description,
		&rep.Location.Latitude,
		&rep.Location.Longitude,
		&status,
		&rep.SubmittedBy,
		&rep.AssignedTo,
		&encProof,
		&rep.CivicCoinsEarned,
		&rep.CreatedAt,
		&rep.UpdatedAt,
		&rep.ResolvedAt,
		&rep.VerifiedAt,
	)
	if err != nil {
		return nil, err
	}
	rep.Status = domain.ReportStatus(status)

	if encProof != nil {
		dec, err := r.sec.DecryptString(*encProof)
		if err != nil {
			r.log.Error().Err(err).Str("report_id", rep.ID.String()).Msg("Failed to decrypt proof photo url (tampered?)")
			return nil, err
		}
		rep.ProofPhotoURL = &dec
	}
	return &rep, nil
}

func (r *reportRepository) sealProof(report *domain.Report) (*string, error) {
	if report.ProofPhotoURL == nil {
		return nil, nil
	}
	enc, err := r.sec.EncryptString(*report.ProofPhotoURL)
	if err != nil {
		r.log.Error().Err(err).Str("report_id", report.ID.String()).Msg("Failed to encrypt proof photo url")
		return nil, err
	}
	return &enc, nil
}
