package services

import (
	"CivicPulse/internal/core/domain"
	"CivicPulse/internal/core/lifecycle"
	"CivicPulse/internal/core/ports"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ReportService runs lifecycle transitions against the stores. Each
// transition reads, validates and writes inside one transaction, and
// delivery events are published only after that transaction commits.
type ReportService struct {
	engine  *lifecycle.Engine
	users   ports.UserRepository
	reports ports.ReportRepository
	uow     ports.UnitOfWork
	bus     ports.EventBus
	metrics ports.TransitionMetrics
	log     zerolog.Logger
}

// NewReportService wires a ReportService. metrics may be nil.
func NewReportService(
	engine *lifecycle.Engine,
	users ports.UserRepository,
	reports ports.ReportRepository,
	uow ports.UnitOfWork,
	bus ports.EventBus,
	metrics ports.TransitionMetrics,
	baseLogger *zerolog.Logger,
) *ReportService {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &ReportService{
		engine:  engine,
		users:   users,
		reports: reports,
		uow:     uow,
		bus:     bus,
		metrics: metrics,
		log:     baseLogger.With().Str("component", "report_service").Logger(),
	}
}

// step produces an outcome from tx-bound stores and the resolved actor.
type step func(ctx context.Context, tx ports.TxStores, actor *domain.User) (lifecycle.Outcome, error)

// Submit creates a report owned by the actor.
func (s *ReportService) Submit(ctx context.Context, actorName string, in lifecycle.SubmitInput) (*domain.Report, error) {
	return s.run(ctx, lifecycle.TransitionSubmit, actorName, uuid.Nil,
		func(ctx context.Context, tx ports.TxStores, actor *domain.User) (lifecycle.Outcome, error) {
			return s.engine.Submit(*actor, in)
		})
}

// Assign hands an OPEN report to a staff member.
func (s *ReportService) Assign(ctx context.Context, actorName string, reportID, staffID uuid.UUID) (*domain.Report, error) {
	return s.run(ctx, lifecycle.TransitionAssign, actorName, reportID,
		func(ctx context.Context, tx ports.TxStores, actor *domain.User) (lifecycle.Outcome, error) {
			report, err := lockReport(ctx, tx, reportID)
			if err != nil {
				return lifecycle.Outcome{}, err
			}
			staff, err := s.users.GetByID(ctx, staffID)
			if err != nil {
				return lifecycle.Outcome{}, fmt.Errorf("look up staff %s: %w", staffID, err)
			}
			return s.engine.Assign(*report, *actor, staff)
		})
}

// Resolve marks an assigned report as resolved from the actor's current location.
func (s *ReportService) Resolve(ctx context.Context, actorName string, reportID uuid.UUID, in lifecycle.ResolveInput) (*domain.Report, error) {
	return s.run(ctx, lifecycle.TransitionResolve, actorName, reportID,
		func(ctx context.Context, tx ports.TxStores, actor *domain.User) (lifecycle.Outcome, error) {
			report, err := lockReport(ctx, tx, reportID)
			if err != nil {
				return lifecycle.Outcome{}, err
			}
			return s.engine.Resolve(*report, *actor, in)
		})
}

// Verify closes a resolved report from the submitter's current location.
func (s *ReportService) Verify(ctx context.Context, actorName string, reportID uuid.UUID, current domain.Location) (*domain.Report, error) {
	return s.run(ctx, lifecycle.TransitionVerify, actorName, reportID,
		func(ctx context.Context, tx ports.TxStores, actor *domain.User) (lifecycle.Outcome, error) {
			report, err := lockReport(ctx, tx, reportID)
			if err != nil {
				return lifecycle.Outcome{}, err
			}
			return s.engine.Verify(*report, *actor, current)
		})
}

func (s *ReportService) run(ctx context.Context, t lifecycle.Transition, actorName string, reportID uuid.UUID, fn step) (*domain.Report, error) {
	log := s.log.With().
		Str("transition", string(t)).
		Str("actor", actorName).
		Logger()
	if reportID != uuid.Nil {
		log = log.With().Str("report_id", reportID.String()).Logger()
	}

	actor, err := resolveActor(ctx, s.users, actorName)
	if err != nil {
		s.reject(log, t, err)
		return nil, err
	}

	var outcome lifecycle.Outcome
	var stored []*domain.Notification
	err = s.uow.RunInTx(ctx, func(tx ports.TxStores) error {
		out, err := fn(ctx, tx, actor)
		if err != nil {
			return err
		}
		notes, err := applyEffects(ctx, tx, out.Effects)
		if err != nil {
			return err
		}
		outcome, stored = out, notes
		return nil
	})
	if err != nil {
		s.reject(log, t, err)
		return nil, err
	}

	s.metrics.ObserveTransition(string(t), outcomeLabel(nil))
	if outcome.Report.CivicCoinsEarned != nil && t == lifecycle.TransitionVerify {
		s.metrics.AddCivicCoins(*outcome.Report.CivicCoinsEarned)
	}
	for _, n := range stored {
		if err := s.bus.Publish(ctx, ports.TopicNotificationCreated, n); err != nil {
			log.Error().Err(err).Str("notification_id", n.ID.String()).Msg("Failed to publish notification event")
		}
	}

	if reportID == uuid.Nil {
		log = log.With().Str("report_id", outcome.Report.ID.String()).Logger()
	}
	log.Info().Str("status", string(outcome.Report.Status)).Msg("Report transition applied")

	report := outcome.Report
	return &report, nil
}

func (s *ReportService) reject(log zerolog.Logger, t lifecycle.Transition, err error) {
	label := outcomeLabel(err)
	s.metrics.ObserveTransition(string(t), label)
	if label == "error" {
		log.Error().Err(err).Msg("Report transition failed")
		return
	}
	log.Warn().Str("reason", label).Msg(err.Error())
}

func lockReport(ctx context.Context, tx ports.TxStores, id uuid.UUID) (*domain.Report, error) {
	report, err := tx.Reports().GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load report %s: %w", id, err)
	}
	if report == nil {
		return nil, domain.NewError(domain.KindNotFound, "report %s not found", id)
	}
	return report, nil
}

// applyEffects performs the engine's writes in order and returns the
// stored notifications.
func applyEffects(ctx context.Context, tx ports.TxStores, effects []lifecycle.Effect) ([]*domain.Notification, error) {
	var stored []*domain.Notification
	for _, eff := range effects {
		switch eff.Kind {
		case lifecycle.EffectCreateReport:
			r := eff.Report
			if err := tx.Reports().Create(ctx, &r); err != nil {
				return nil, fmt.Errorf("create report: %w", err)
			}
		case lifecycle.EffectSaveReport:
			r := eff.Report
			if err := tx.Reports().Update(ctx, &r); err != nil {
				return nil, fmt.Errorf("save report %s: %w", r.ID, err)
			}
		case lifecycle.EffectEmitNotification:
			n, err := tx.Notifications().Emit(ctx, eff.Notification)
			if err != nil {
				return nil, fmt.Errorf("emit %s notification: %w", eff.Notification.Type, err)
			}
			stored = append(stored, n)
		default:
			return nil, fmt.Errorf("unsupported effect %s", eff.Kind)
		}
	}
	return stored, nil
}

// Get returns one report if the actor may see it: admins, the submitter
// and the assignee.
func (s *ReportService) Get(ctx context.Context, actorName string, id uuid.UUID) (*domain.Report, error) {
	actor, err := resolveActor(ctx, s.users, actorName)
	if err != nil {
		return nil, err
	}
	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load report %s: %w", id, err)
	}
	if report == nil {
		return nil, domain.NewError(domain.KindNotFound, "report %s not found", id)
	}
	if !actor.HasRole(domain.RoleAdmin) && report.SubmittedBy != actor.ID && !report.IsAssignedTo(actor.ID) {
		return nil, domain.NewError(domain.KindUnauthorized, "you cannot view this report")
	}
	return report, nil
}

// ListAll returns every report, optionally narrowed to one status. Admin only.
func (s *ReportService) ListAll(ctx context.Context, actorName string, status string) ([]*domain.Report, error) {
	actor, err := resolveActor(ctx, s.users, actorName)
	if err != nil {
		return nil, err
	}
	if !actor.HasRole(domain.RoleAdmin) {
		return nil, domain.NewError(domain.KindUnauthorized, "only admins can list all reports")
	}

	var filter ports.ReportFilter
	if status != "" {
		st, err := domain.ParseReportStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Status = &st
	}
	return s.list(ctx, filter)
}

// ListMine returns the reports the actor submitted.
func (s *ReportService) ListMine(ctx context.Context, actorName string) ([]*domain.Report, error) {
	actor, err := resolveActor(ctx, s.users, actorName)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, ports.ReportFilter{SubmittedBy: &actor.ID})
}

// ListAssigned returns the reports assigned to the actor. Staff and admins only.
func (s *ReportService) ListAssigned(ctx context.Context, actorName string) ([]*domain.Report, error) {
	actor, err := resolveActor(ctx, s.users, actorName)
	if err != nil {
		return nil, err
	}
	if !actor.HasRole(domain.RoleStaff) && !actor.HasRole(domain.RoleAdmin) {
		return nil, domain.NewError(domain.KindUnauthorized, "only staff members can access assigned reports")
	}
	return s.list(ctx, ports.ReportFilter{AssignedTo: &actor.ID})
}

// ListStaff returns every STAFF user, for picking an assignee. Admin only.
func (s *ReportService) ListStaff(ctx context.Context, actorName string) ([]*domain.User, error) {
	actor, err := resolveActor(ctx, s.users, actorName)
	if err != nil {
		return nil, err
	}
	if !actor.HasRole(domain.RoleAdmin) {
		return nil, domain.NewError(domain.KindUnauthorized, "only admins can list staff")
	}
	staff, err := s.users.ListByRole(ctx, domain.RoleStaff)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	return staff, nil
}

func (s *ReportService) list(ctx context.Context, filter ports.ReportFilter) ([]*domain.Report, error) {
	reports, err := s.reports.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

type nopMetrics struct{}

func (nopMetrics) ObserveTransition(string, string) {}
func (nopMetrics) AddCivicCoins(int)                {}
