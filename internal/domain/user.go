package domain

import (
	"context"

	"github.com/google/uuid"
)

// User is the slice of an identity record this service reads: a stable
// identifier and a display name. Authentication itself happens at the
// transport edge; the core only consumes the identifier.
type User struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Name string    `json:"name" db:"name"`
	Role string    `json:"role" db:"role"`
}

// IdentityProvider is the read-only collaborator owning user records,
// used to enrich reviews with author display names.
type IdentityProvider interface {
	// GetUser resolves a user by ID, ErrNotFound if absent
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
}
