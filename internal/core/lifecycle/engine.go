package lifecycle

import (
	"CivicPulse/internal/core/domain"
	"CivicPulse/internal/core/geo"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Transition names a role-gated operation on a report.
type Transition string

const (
	TransitionSubmit  Transition = "submit"
	TransitionAssign  Transition = "assign"
	TransitionResolve Transition = "resolve"
	TransitionVerify  Transition = "verify"
)

// SubmitInput is the payload of a submit transition.
type SubmitInput struct {
	Title       string
	Description string
	Location    domain.Location
}

// ResolveInput is the payload of a resolve transition.
type ResolveInput struct {
	ProofPhotoURL string
	Current       domain.Location
}

// Engine applies lifecycle transitions to report values.
// It performs no I/O and keeps no state between calls; callers persist
// the returned effects.
type Engine struct {
	clock func() time.Time
	newID func() uuid.UUID
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source used for timestamps.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithIDGenerator overrides how new report ids are produced.
func WithIDGenerator(gen func() uuid.UUID) Option {
	return func(e *Engine) { e.newID = gen }
}

// NewEngine creates an Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		clock: time.Now,
		newID: uuid.New,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Submit creates a new OPEN report owned by actor.
func (e *Engine) Submit(actor domain.User, in SubmitInput) (Outcome, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Outcome{}, domain.NewError(domain.KindValidation, "title is required")
	}
	if err := in.Location.Validate(); err != nil {
		return Outcome{}, err
	}
	if err := authorize(TransitionSubmit, actor, nil); err != nil {
		return Outcome{}, err
	}

	now := e.now()
	report := domain.Report{
		ID:          e.newID(),
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Location:    in.Location,
		Status:      transitions[TransitionSubmit].to,
		SubmittedBy: actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	return Outcome{
		Transition: TransitionSubmit,
		Report:     report,
		Effects:    []Effect{createReport(report)},
	}, nil
}

// Assign moves an OPEN report to IN_PROGRESS under staff. staff is nil when
// the requested assignee does not exist; that is only reported to callers
// who passed the authorization and state checks.
func (e *Engine) Assign(report domain.Report, actor domain.User, staff *domain.User) (Outcome, error) {
	if err := e.guard(TransitionAssign, actor, report); err != nil {
		return Outcome{}, err
	}
	if staff == nil {
		return Outcome{}, domain.NewError(domain.KindNotFound, "staff member not found")
	}
	if !staff.HasRole(domain.RoleStaff) {
		return Outcome{}, domain.NewError(domain.KindInvalidRoleTarget,
			"can only assign to staff members, %s has role %s", staff.Username, staff.Role)
	}

	next := report
	staffID := staff.ID
	next.Status = transitions[TransitionAssign].to
	next.AssignedTo = &staffID
	next.UpdatedAt = e.now()

	return Outcome{
		Transition: TransitionAssign,
		Report:     next,
		Effects: []Effect{
			saveReport(next),
			emit(domain.NotificationRequest{
				RecipientID: next.SubmittedBy,
				ActorID:     actor.ID,
				Type:        domain.NotificationReportAssigned,
				Message:     "Your report has been assigned to " + staff.DisplayName + " and is In Progress",
				RelatedID:   next.ID,
			}),
		},
	}, nil
}

// Resolve marks an IN_PROGRESS report as RESOLVED. The actor must be the
// assigned staff member and must stand within the geofence of the report.
func (e *Engine) Resolve(report domain.Report, actor domain.User, in ResolveInput) (Outcome, error) {
	proof := strings.TrimSpace(in.ProofPhotoURL)
	if proof == "" {
		return Outcome{}, domain.NewError(domain.KindValidation, "proof photo url is required")
	}
	if err := in.Current.Validate(); err != nil {
		return Outcome{}, err
	}
	if err := e.guard(TransitionResolve, actor, report); err != nil {
		return Outcome{}, err
	}
	if err := checkPresence(report.Location, in.Current,
		"you must be at the issue location to mark this as resolved"); err != nil {
		return Outcome{}, err
	}

	now := e.now()
	next := report
	next.Status = transitions[TransitionResolve].to
	next.ProofPhotoURL = &proof
	next.ResolvedAt = &now
	next.UpdatedAt = now

	return Outcome{
		Transition: TransitionResolve,
		Report:     next,
		Effects: []Effect{
			saveReport(next),
			emit(domain.NotificationRequest{
				RecipientID: next.SubmittedBy,
				ActorID:     actor.ID,
				Type:        domain.NotificationReportResolved,
				Message:     "Your issue has been resolved! Please verify.",
				RelatedID:   next.ID,
			}),
		},
	}, nil
}

// Verify closes a RESOLVED report and grants the reward. Only the original
// submitter may verify, from within the geofence of the report.
func (e *Engine) Verify(report domain.Report, actor domain.User, current domain.Location) (Outcome, error) {
	if err := current.Validate(); err != nil {
		return Outcome{}, err
	}
	if err := e.guard(TransitionVerify, actor, report); err != nil {
		return Outcome{}, err
	}
	if report.AssignedTo == nil {
		return Outcome{}, domain.NewError(domain.KindIllegalState, "report %s has no assignee", report.ID)
	}
	if err := checkPresence(report.Location, current, "go to the issue location to verify"); err != nil {
		return Outcome{}, err
	}

	now := e.now()
	coins := domain.CivicCoinsReward
	next := report
	next.Status = transitions[TransitionVerify].to
	next.VerifiedAt = &now
	next.CivicCoinsEarned = &coins
	next.UpdatedAt = now

	return Outcome{
		Transition: TransitionVerify,
		Report:     next,
		Effects: []Effect{
			saveReport(next),
			emit(domain.NotificationRequest{
				RecipientID: *next.AssignedTo,
				ActorID:     actor.ID,
				Type:        domain.NotificationReportVerified,
				Message:     "Your resolved report has been verified by " + actor.DisplayName,
				RelatedID:   next.ID,
			}),
		},
	}, nil
}

// guard runs the authorization and state checks shared by every
// transition on an existing report.
func (e *Engine) guard(t Transition, actor domain.User, report domain.Report) error {
	if err := authorize(t, actor, &report); err != nil {
		return err
	}
	rule := transitions[t]
	if report.Status != rule.from || !rule.from.CanTransitionTo(rule.to) {
		return domain.NewError(domain.KindIllegalState,
			"cannot %s a report in status %s, it must be %s", t, report.Status, rule.from)
	}
	return nil
}

func (e *Engine) now() time.Time {
	return e.clock().UTC()
}

func checkPresence(anchor, current domain.Location, reason string) error {
	distance, ok := geo.Within(anchor, current, domain.GeofenceRadiusMeters)
	if !ok {
		return domain.NewError(domain.KindOutOfRange, "%s, you are %dm away", reason, int64(math.Round(distance)))
	}
	return nil
}
