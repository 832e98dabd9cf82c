package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Review represents one user's opinion of one listing. Reviews are never
// edited in place: they are created once and removed only by their author.
type Review struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ListingID uuid.UUID `json:"listing_id" db:"listing_id" validate:"required"`
	AuthorID  uuid.UUID `json:"author_id" db:"author_id" validate:"required"`
	Rating    int       `json:"rating" db:"rating" validate:"required,min=1,max=5"`
	Comment   string    `json:"comment" db:"comment" validate:"max=500"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ReviewWithAuthor is a Review enriched with the author's display name,
// resolved through the identity provider at read time.
type ReviewWithAuthor struct {
	Review
	AuthorName string `json:"author_name"`
}

// ReviewWithListing is a Review enriched with a summary of the listing it
// refers to, resolved through the listing directory at read time.
type ReviewWithListing struct {
	Review
	Listing *ListingSummary `json:"listing"`
}

// ReviewRepository defines the interface for review data access.
// Insert owns the (listing_id, author_id) uniqueness invariant: the
// duplicate check and the write are a single atomic conditional insert
// backed by a storage-level unique constraint, never check-then-insert.
type ReviewRepository interface {
	// Insert stores a new review. Returns ErrAlreadyExists if the author
	// has already reviewed the listing, ErrNotFound if the listing
	// vanished before the write landed.
	Insert(ctx context.Context, review *Review) error

	// GetByID retrieves a review by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Review, error)

	// FindByListingAndAuthor retrieves the single review an author left on
	// a listing
	FindByListingAndAuthor(ctx context.Context, listingID, authorID uuid.UUID) (*Review, error)

	// ListByListing retrieves all reviews for a listing, newest first
	ListByListing(ctx context.Context, listingID uuid.UUID) ([]*Review, error)

	// ListByAuthor retrieves all reviews by an author, newest first
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*Review, error)

	// DeleteByID permanently removes a review and reports whether a row
	// existed. Deleting an absent review is not a storage error.
	DeleteByID(ctx context.Context, id uuid.UUID) (bool, error)
}
