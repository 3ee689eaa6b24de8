package rest

import (
	"CivicPulse/internal/core/domain"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

type submitRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

type assignRequest struct {
	StaffID string `json:"staffId"`
}

type resolveRequest struct {
	ProofPhotoURL    string   `json:"proofPhotoUrl"`
	CurrentLatitude  *float64 `json:"currentLatitude"`
	CurrentLongitude *float64 `json:"currentLongitude"`
}

type verifyRequest struct {
	CurrentLatitude  *float64 `json:"currentLatitude"`
	CurrentLongitude *float64 `json:"currentLongitude"`
}

// decode reads a JSON body into dst. Malformed input is a validation error.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.NewError(domain.KindValidation, "request body is required")
		}
		return domain.NewError(domain.KindValidation, "malformed JSON body: %v", err)
	}
	return nil
}

// location builds a Location from optional fields; both must be present.
func location(lat, lng *float64) (domain.Location, error) {
	if lat == nil || lng == nil {
		return domain.Location{}, domain.NewError(domain.KindValidation, "latitude and longitude are required")
	}
	return domain.Location{Latitude: *lat, Longitude: *lng}, nil
}

func parseID(raw, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NewError(domain.KindValidation, "invalid %s %q", what, raw)
	}
	return id, nil
}

type reportResponse struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Latitude         float64    `json:"latitude"`
	Longitude        float64    `json:"longitude"`
	Status           string     `json:"status"`
	SubmittedBy      uuid.UUID  `json:"submittedBy"`
	AssignedTo       *uuid.UUID `json:"assignedTo,omitempty"`
	ProofPhotoURL    *string    `json:"proofPhotoUrl,omitempty"`
	CivicCoinsEarned *int       `json:"civicCoinsEarned,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	ResolvedAt       *time.Time `json:"resolvedAt,omitempty"`
	VerifiedAt       *time.Time `json:"verifiedAt,omitempty"`
}

func toReport(r *domain.Report) reportResponse {
	return reportResponse{
		ID:               r.ID,
		Title:            r.Title,
		Description:      r.Description,
		Latitude:         r.Location.Latitude,
		Longitude:        r.Location.Longitude,
		Status:           string(r.Status),
		SubmittedBy:      r.SubmittedBy,
		AssignedTo:       r.AssignedTo,
		ProofPhotoURL:    r.ProofPhotoURL,
		CivicCoinsEarned: r.CivicCoinsEarned,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
		ResolvedAt:       r.ResolvedAt,
		VerifiedAt:       r.VerifiedAt,
	}
}

func toReports(rs []*domain.Report) []reportResponse {
	out := make([]reportResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, toReport(r))
	}
	return out
}

type userResponse struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Role        string    `json:"role"`
}

func toUsers(us []*domain.User) []userResponse {
	out := make([]userResponse, 0, len(us))
	for _, u := range us {
		out = append(out, userResponse{ID: u.ID, Username: u.Username, DisplayName: u.DisplayName, Role: string(u.Role)})
	}
	return out
}

type notificationResponse struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	ActorID   uuid.UUID `json:"actorId"`
	RelatedID uuid.UUID `json:"relatedId"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

func toNotifications(ns []*domain.Notification) []notificationResponse {
	out := make([]notificationResponse, 0, len(ns))
	for _, n := range ns {
		out = append(out, notificationResponse{
			ID:        n.ID,
			Type:      string(n.Type),
			Message:   n.Message,
			ActorID:   n.ActorID,
			RelatedID: n.RelatedID,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		})
	}
	return out
}
