package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/stayfinder/listing_reviews/internal/domain"
	"github.com/stayfinder/listing_reviews/internal/pkg/logger"
)

// ReviewCache defines the interface for the per-listing review list cache
type ReviewCache interface {
	GetReviewsList(ctx context.Context, listingID uuid.UUID) ([]*domain.ReviewWithAuthor, error)
	SetReviewsList(ctx context.Context, listingID uuid.UUID, reviews []*domain.ReviewWithAuthor) error
	InvalidateReviewsList(ctx context.Context, listingID uuid.UUID) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// ReviewEvent represents an event related to a review
type ReviewEvent struct {
	EventType string         `json:"event_type"`
	Timestamp time.Time      `json:"timestamp"`
	ListingID uuid.UUID      `json:"listing_id"`
	OwnerID   uuid.UUID      `json:"owner_id"`
	Review    *domain.Review `json:"review"`
}

// ListingReviews is the result of a listing read: the review set together
// with the statistics derived from that same set.
type ListingReviews struct {
	Count         int                        `json:"count"`
	AverageRating float64                    `json:"average_rating"`
	Reviews       []*domain.ReviewWithAuthor `json:"reviews"`
}

// Event subjects published on review mutations
const (
	SubjectReviewCreated = "reviews.created"
	SubjectReviewDeleted = "reviews.deleted"
)

// Service orchestrates review operations. It holds no state of its own:
// all state lives in the review store and the collaborators.
type Service struct {
	reviews   domain.ReviewRepository
	listings  domain.ListingDirectory
	identity  domain.IdentityProvider
	policy    *Policy
	cache     ReviewCache
	publisher EventPublisher
	validate  *validator.Validate
	logger    *logger.Logger
}

// NewService creates a new review service
func NewService(
	reviews domain.ReviewRepository,
	listings domain.ListingDirectory,
	identity domain.IdentityProvider,
	cache ReviewCache,
	publisher EventPublisher,
	log *logger.Logger,
) *Service {
	return &Service{
		reviews:   reviews,
		listings:  listings,
		identity:  identity,
		policy:    NewPolicy(),
		cache:     cache,
		publisher: publisher,
		validate:  validator.New(),
		logger:    log,
	}
}

// Create creates a new review. Check order: payload bounds, listing
// existence, self-review policy, then the store's atomic uniqueness
// guarantee. Two racing creates for the same (listing, author) pair end
// with one success and one ErrAlreadyExists from the store.
func (s *Service) Create(ctx context.Context, review *domain.Review) (*domain.ReviewWithAuthor, error) {
	if err := s.validate.Struct(review); err != nil {
		s.logger.Debugf("Review validation failed: %v", err)
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, err)
	}

	listing, err := s.listings.GetListing(ctx, review.ListingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: listing not found", domain.ErrNotFound)
		}
		s.logger.Error("Failed to resolve listing", err)
		return nil, domain.ErrUnavailable
	}

	if err := s.policy.CanCreate(listing, review.AuthorID); err != nil {
		return nil, err
	}

	// Resolve the author before mutating so an identity outage fails the
	// request without leaving a review the caller never saw.
	author, err := s.identity.GetUser(ctx, review.AuthorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown caller", domain.ErrUnauthenticated)
		}
		s.logger.Error("Failed to resolve author", err)
		return nil, domain.ErrUnavailable
	}

	if err := s.reviews.Insert(ctx, review); err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyExists):
			return nil, fmt.Errorf("%w: you have already reviewed this listing", domain.ErrAlreadyExists)
		case errors.Is(err, domain.ErrNotFound):
			return nil, fmt.Errorf("%w: listing not found", domain.ErrNotFound)
		}
		s.logger.Error("Failed to create review", err)
		return nil, domain.ErrUnavailable
	}

	// Stale cache would show the old review set and average
	if err := s.cache.InvalidateReviewsList(ctx, review.ListingID); err != nil {
		s.logger.Warnf("Failed to invalidate cache for listing %s: %v", review.ListingID, err)
	}

	s.publishEvent(SubjectReviewCreated, listing.OwnerID, review)

	s.logger.WithFields(map[string]interface{}{
		"review_id":  review.ID,
		"listing_id": review.ListingID,
		"author_id":  review.AuthorID,
		"rating":     review.Rating,
	}).Info("Review created successfully")

	return &domain.ReviewWithAuthor{Review: *review, AuthorName: author.Name}, nil
}

// ListByListing returns a listing's reviews newest first, together with
// the aggregate derived from the same set. The listing's existence is not
// re-validated on read: an unknown listing yields an empty result, never
// an error.
func (s *Service) ListByListing(ctx context.Context, listingID uuid.UUID) (*ListingReviews, error) {
	enriched, err := s.cache.GetReviewsList(ctx, listingID)
	if err == nil {
		s.logger.Debugf("Cache hit for listing %s reviews", listingID)
		return listingReviewsFrom(enriched), nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		s.logger.Warnf("Cache read failed for listing %s: %v", listingID, err)
	}

	reviews, err := s.reviews.ListByListing(ctx, listingID)
	if err != nil {
		s.logger.Error("Failed to list reviews by listing", err)
		return nil, domain.ErrUnavailable
	}

	enriched, err = s.enrichWithAuthors(ctx, reviews)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetReviewsList(ctx, listingID, enriched); err != nil {
		s.logger.Warnf("Failed to cache reviews for listing %s: %v", listingID, err)
	}

	return listingReviewsFrom(enriched), nil
}

// ListByAuthor returns the author's own reviews newest first, each with a
// summary of the listing it refers to. The author identity always comes
// from the authenticated caller, never from a request parameter.
func (s *Service) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*domain.ReviewWithListing, error) {
	reviews, err := s.reviews.ListByAuthor(ctx, authorID)
	if err != nil {
		s.logger.Error("Failed to list reviews by author", err)
		return nil, domain.ErrUnavailable
	}

	enriched := make([]*domain.ReviewWithListing, 0, len(reviews))
	summaries := make(map[uuid.UUID]*domain.ListingSummary)
	for _, r := range reviews {
		summary, seen := summaries[r.ListingID]
		if !seen {
			summary, err = s.listings.GetListingSummary(ctx, r.ListingID)
			if err != nil {
				if !errors.Is(err, domain.ErrNotFound) {
					s.logger.Error("Failed to resolve listing summary", err)
					return nil, domain.ErrUnavailable
				}
				// Listing since removed; the review keeps its weak reference
				summary = nil
			}
			summaries[r.ListingID] = summary
		}
		enriched = append(enriched, &domain.ReviewWithListing{Review: *r, Listing: summary})
	}

	return enriched, nil
}

// Delete removes a review by its author. The store delete is idempotent;
// the second attempt reports not found from here.
func (s *Service) Delete(ctx context.Context, reviewID, requesterID uuid.UUID) error {
	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: review not found", domain.ErrNotFound)
		}
		s.logger.Error("Failed to get review for deletion", err)
		return domain.ErrUnavailable
	}

	if err := s.policy.CanDelete(review, requesterID); err != nil {
		return err
	}

	deleted, err := s.reviews.DeleteByID(ctx, reviewID)
	if err != nil {
		s.logger.Error("Failed to delete review", err)
		return domain.ErrUnavailable
	}
	if !deleted {
		// Lost a race with a concurrent delete of the same review
		return fmt.Errorf("%w: review not found", domain.ErrNotFound)
	}

	if err := s.cache.InvalidateReviewsList(ctx, review.ListingID); err != nil {
		s.logger.Warnf("Failed to invalidate cache for listing %s: %v", review.ListingID, err)
	}

	s.publishEvent(SubjectReviewDeleted, uuid.Nil, review)

	s.logger.WithFields(map[string]interface{}{
		"review_id":  reviewID,
		"listing_id": review.ListingID,
	}).Info("Review deleted successfully")

	return nil
}

// enrichWithAuthors joins author display names onto reviews through the
// identity provider, one lookup per distinct author.
func (s *Service) enrichWithAuthors(ctx context.Context, reviews []*domain.Review) ([]*domain.ReviewWithAuthor, error) {
	enriched := make([]*domain.ReviewWithAuthor, 0, len(reviews))
	names := make(map[uuid.UUID]string)
	for _, r := range reviews {
		name, seen := names[r.AuthorID]
		if !seen {
			author, err := s.identity.GetUser(ctx, r.AuthorID)
			if err != nil {
				if !errors.Is(err, domain.ErrNotFound) {
					s.logger.Error("Failed to resolve author name", err)
					return nil, domain.ErrUnavailable
				}
				s.logger.Debugf("Author %s no longer exists", r.AuthorID)
			} else {
				name = author.Name
			}
			names[r.AuthorID] = name
		}
		enriched = append(enriched, &domain.ReviewWithAuthor{Review: *r, AuthorName: name})
	}
	return enriched, nil
}

func listingReviewsFrom(reviews []*domain.ReviewWithAuthor) *ListingReviews {
	if reviews == nil {
		reviews = []*domain.ReviewWithAuthor{}
	}
	summary := Aggregate(reviews)
	return &ListingReviews{
		Count:         summary.Count,
		AverageRating: summary.AverageRating,
		Reviews:       reviews,
	}
}

// publishEvent publishes a review event (non-blocking)
func (s *Service) publishEvent(eventType string, ownerID uuid.UUID, review *domain.Review) {
	event := ReviewEvent{
		EventType: eventType,
		Timestamp: time.Now(),
		ListingID: review.ListingID,
		OwnerID:   ownerID,
		Review:    review,
	}

	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Errorf(err, "Failed to marshal event for review %s", review.ID)
		return
	}

	// Publish in background to avoid blocking the request
	go func() {
		if err := s.publisher.Publish(context.Background(), eventType, data); err != nil {
			s.logger.Errorf(err, "Failed to publish event for review %s", review.ID)
		}
	}()
}
