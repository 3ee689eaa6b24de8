package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is a closed set of user roles.
type Role string

const (
	RoleUser  Role = "USER"
	RoleStaff Role = "STAFF"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// ParseRole converts a stored role string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", NewError(KindValidation, "unknown role %q", s)
	}
	return r, nil
}

// User represents an account in the user directory.
// The report lifecycle only ever reads it.
type User struct {
	ID             uuid.UUID
	Username       string // Identity carried by auth tokens
	DisplayName    string
	Role           Role
	TelegramChatID *int64 // Nullable, used for notification delivery
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasRole reports whether the user holds role r.
func (u *User) HasRole(r Role) bool {
	return u != nil && u.Role == r
}
