package domain

import (
	"context"

	"github.com/google/uuid"
)

// Listing is the slice of a listing record this service depends on. The
// listing lifecycle is owned elsewhere; only existence and ownership are
// read here.
type Listing struct {
	ID      uuid.UUID `json:"id" db:"id"`
	OwnerID uuid.UUID `json:"owner_id" db:"owner_id"`
}

// ListingSummary carries the display fields joined onto an author's own
// reviews.
type ListingSummary struct {
	ID       uuid.UUID `json:"id" db:"id"`
	Title    string    `json:"title" db:"title"`
	Type     string    `json:"type" db:"type"`
	Location string    `json:"location" db:"location"`
}

// ListingDirectory is the read-only collaborator owning listing records.
type ListingDirectory interface {
	// GetListing resolves a listing's existence and owner, ErrNotFound if
	// absent
	GetListing(ctx context.Context, id uuid.UUID) (*Listing, error)

	// GetListingSummary resolves the display summary for a listing,
	// ErrNotFound if absent
	GetListingSummary(ctx context.Context, id uuid.UUID) (*ListingSummary, error)
}
