package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReportStatus is the lifecycle state of a report.
type ReportStatus string

const (
	StatusOpen       ReportStatus = "OPEN"
	StatusInProgress ReportStatus = "IN_PROGRESS"
	StatusResolved   ReportStatus = "RESOLVED"
	StatusClosed     ReportStatus = "CLOSED"
)

// statusSuccessor is the adjacency table of legal status changes.
// A status maps to the only status it may move to; CLOSED is terminal.
var statusSuccessor = map[ReportStatus]ReportStatus{
	StatusOpen:       StatusInProgress,
	StatusInProgress: StatusResolved,
	StatusResolved:   StatusClosed,
}

var statusRank = map[ReportStatus]int{
	StatusOpen:       1,
	StatusInProgress: 2,
	StatusResolved:   3,
	StatusClosed:     4,
}

// Valid reports whether s is a known status.
func (s ReportStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Rank orders statuses along the lifecycle. Unknown statuses rank 0.
func (s ReportStatus) Rank() int {
	return statusRank[s]
}

// CanTransitionTo reports whether next is the legal successor of s.
func (s ReportStatus) CanTransitionTo(next ReportStatus) bool {
	succ, ok := statusSuccessor[s]
	return ok && succ == next
}

// ParseReportStatus converts a stored or user-supplied status string.
func ParseReportStatus(v string) (ReportStatus, error) {
	s := ReportStatus(v)
	if !s.Valid() {
		return "", NewError(KindValidation, "unknown report status %q", v)
	}
	return s, nil
}

const (
	// GeofenceRadiusMeters is the maximum distance between the actor and
	// the report location for resolve and verify.
	GeofenceRadiusMeters = 100.0

	// CivicCoinsReward is granted to the submitter when a report closes.
	CivicCoinsReward = 10
)

// Report is one civic issue.
//
// Location is fixed at submission and is the anchor for every geofence check.
// AssignedTo, ProofPhotoURL, ResolvedAt, CivicCoinsEarned and VerifiedAt
// are each written by exactly one transition and never cleared.
type Report struct {
	ID               uuid.UUID
	Title            string
	Description      string
	Location         Location
	Status           ReportStatus
	SubmittedBy      uuid.UUID
	AssignedTo       *uuid.UUID // Nullable until assign
	ProofPhotoURL    *string    // Encrypted at rest
	CivicCoinsEarned *int
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ResolvedAt       *time.Time
	VerifiedAt       *time.Time
}

// IsAssignedTo reports whether the report is assigned to userID.
func (r Report) IsAssignedTo(userID uuid.UUID) bool {
	return r.AssignedTo != nil && *r.AssignedTo == userID
}
