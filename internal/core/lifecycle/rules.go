package lifecycle

import (
	"CivicPulse/internal/core/domain"
)

// policy decides whether actor may perform a transition on report.
// report is nil for submit.
type policy func(actor domain.User, report *domain.Report) error

type rule struct {
	from      domain.ReportStatus // Empty for submit
	to        domain.ReportStatus
	authorize policy
}

// transitions is the single source of truth for who may move a report
// from which status to which.
var transitions = map[Transition]rule{
	TransitionSubmit: {
		to:        domain.StatusOpen,
		authorize: anyKnownRole,
	},
	TransitionAssign: {
		from:      domain.StatusOpen,
		to:        domain.StatusInProgress,
		authorize: requireRole(domain.RoleAdmin, "only admins can assign reports"),
	},
	TransitionResolve: {
		from: domain.StatusInProgress,
		to:   domain.StatusResolved,
		authorize: allOf(
			requireRole(domain.RoleStaff, "only staff members can resolve reports"),
			requireAssignee,
		),
	},
	TransitionVerify: {
		from:      domain.StatusResolved,
		to:        domain.StatusClosed,
		authorize: requireSubmitter,
	},
}

// Target returns the status a transition leads to.
func Target(t Transition) (domain.ReportStatus, bool) {
	r, ok := transitions[t]
	return r.to, ok
}

func authorize(t Transition, actor domain.User, report *domain.Report) error {
	r, ok := transitions[t]
	if !ok {
		return domain.NewError(domain.KindValidation, "unknown transition %q", t)
	}
	return r.authorize(actor, report)
}

func anyKnownRole(actor domain.User, _ *domain.Report) error {
	if !actor.Role.Valid() {
		return domain.NewError(domain.KindUnauthorized, "user %s has no valid role", actor.Username)
	}
	return nil
}

func requireRole(role domain.Role, reason string) policy {
	return func(actor domain.User, _ *domain.Report) error {
		if actor.Role != role {
			return domain.NewError(domain.KindUnauthorized, "%s", reason)
		}
		return nil
	}
}

func requireAssignee(actor domain.User, report *domain.Report) error {
	if report == nil || !report.IsAssignedTo(actor.ID) {
		return domain.NewError(domain.KindUnauthorized, "this report is not assigned to you")
	}
	return nil
}

func requireSubmitter(actor domain.User, report *domain.Report) error {
	if report == nil || report.SubmittedBy != actor.ID {
		return domain.NewError(domain.KindUnauthorized, "you can only verify your own reports")
	}
	return nil
}

func allOf(policies ...policy) policy {
	return func(actor domain.User, report *domain.Report) error {
		for _, p := range policies {
			if err := p(actor, report); err != nil {
				return err
			}
		}
		return nil
	}
}
