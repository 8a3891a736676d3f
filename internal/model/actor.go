package model

import "github.com/google/uuid"

// Actor is the authenticated identity resolved once per request by the
// auth middleware and passed explicitly into every core operation.
type Actor struct {
	ID    uuid.UUID
	Email string
	Role  string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
