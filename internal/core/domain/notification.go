package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType tags what a notification is about.
type NotificationType string

const (
	NotificationReportAssigned NotificationType = "REPORT_ASSIGNED"
	NotificationReportResolved NotificationType = "REPORT_RESOLVED"
	NotificationReportVerified NotificationType = "REPORT_VERIFIED"
)

// NotificationRequest describes a notification to be stored and delivered
// by a collaborator. The lifecycle engine only produces these.
type NotificationRequest struct {
	RecipientID uuid.UUID
	ActorID     uuid.UUID
	Type        NotificationType
	Message     string
	RelatedID   uuid.UUID // The report the notification refers to
}

// Notification is a stored NotificationRequest.
type Notification struct {
	ID uuid.UUID
	NotificationRequest
	IsRead    bool
	CreatedAt time.Time
}
