package review

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/stayfinder/listing_reviews/internal/domain"
)

// Policy decides whether an identity may create or delete a review. It is
// stateless: every decision is a function of its arguments only.
type Policy struct{}

// NewPolicy creates a new authorization policy
func NewPolicy() *Policy {
	return &Policy{}
}

// CanCreate denies a listing owner reviewing their own listing. This runs
// before the uniqueness check so the more specific failure wins when both
// would apply.
func (p *Policy) CanCreate(listing *domain.Listing, authorID uuid.UUID) error {
	if listing.OwnerID == authorID {
		return fmt.Errorf("%w: you cannot review your own listing", domain.ErrForbidden)
	}
	return nil
}

// CanDelete permits the review's author, plus any identities explicitly
// named in allowed. Elevated-privilege deletes are granted by the caller
// passing extra identities, never inferred from roles here.
func (p *Policy) CanDelete(review *domain.Review, requesterID uuid.UUID, allowed ...uuid.UUID) error {
	if review.AuthorID == requesterID {
		return nil
	}
	for _, id := range allowed {
		if id == requesterID {
			return nil
		}
	}
	return fmt.Errorf("%w: not authorized to delete this review", domain.ErrForbidden)
}
