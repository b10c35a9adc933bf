package auth

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/haani-backend/pkg/enums"
)

// Actor is the identity performing a finance operation. It is always passed
// explicitly; nothing reads it from ambient state.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// SystemActor is used by scheduled jobs.
func SystemActor() Actor {
	return Actor{Role: enums.UserRoleSystem}
}

// IsAdmin reports whether the actor may review and pay out requests.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.UserRoleAdmin
}

// IsSystem reports whether the actor is the scheduler.
func (a Actor) IsSystem() bool {
	return a.Role == enums.UserRoleSystem
}

// IDPtr returns the actor id, or nil for the system actor.
func (a Actor) IDPtr() *uuid.UUID {
	if a.UserID == uuid.Nil {
		return nil
	}
	id := a.UserID
	return &id
}

// FromClaims builds the actor carried by a verified token.
func FromClaims(claims *AccessTokenClaims) Actor {
	if claims == nil {
		return Actor{}
	}
	return Actor{UserID: claims.UserID, Role: claims.Role}
}
