package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/stayfinder/listing_reviews/internal/domain"
)

// Postgres error codes the insert path maps to domain errors
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// ReviewRepository implements domain.ReviewRepository for PostgreSQL
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository creates a new PostgreSQL review repository
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Insert stores a new review. The duplicate check is the constraint
// UNIQUE (listing_id, author_id): two racing inserts for the same pair
// resolve to one row and one ErrAlreadyExists, with no window for a
// check-then-insert race.
func (r *ReviewRepository) Insert(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (listing_id, author_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRowxContext(
		ctx,
		query,
		review.ListingID,
		review.AuthorID,
		review.Rating,
		review.Comment,
	).Scan(
		&review.ID,
		&review.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case pqUniqueViolation:
				return domain.ErrAlreadyExists
			case pqForeignKeyViolation:
				// Listing deleted between the service's existence check and
				// the write
				return domain.ErrNotFound
			}
		}
		return err
	}

	return nil
}

// GetByID retrieves a review by ID
func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	query := `
		SELECT id, listing_id, author_id, rating, comment, created_at
		FROM reviews
		WHERE id = $1
	`

	var review domain.Review
	err := r.db.GetContext(ctx, &review, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return &review, nil
}

// FindByListingAndAuthor retrieves the single review an author left on a listing
func (r *ReviewRepository) FindByListingAndAuthor(ctx context.Context, listingID, authorID uuid.UUID) (*domain.Review, error) {
	query := `
		SELECT id, listing_id, author_id, rating, comment, created_at
		FROM reviews
		WHERE listing_id = $1 AND author_id = $2
	`

	var review domain.Review
	err := r.db.GetContext(ctx, &review, query, listingID, authorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return &review, nil
}

// ListByListing retrieves all reviews for a listing, newest first
func (r *ReviewRepository) ListByListing(ctx context.Context, listingID uuid.UUID) ([]*domain.Review, error) {
	query := `
		SELECT id, listing_id, author_id, rating, comment, created_at
		FROM reviews
		WHERE listing_id = $1
		ORDER BY created_at DESC, id DESC
	`

	var reviews []*domain.Review
	err := r.db.SelectContext(ctx, &reviews, query, listingID)
	if err != nil {
		return nil, err
	}

	return reviews, nil
}

// ListByAuthor retrieves all reviews by an author, newest first
func (r *ReviewRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*domain.Review, error) {
	query := `
		SELECT id, listing_id, author_id, rating, comment, created_at
		FROM reviews
		WHERE author_id = $1
		ORDER BY created_at DESC, id DESC
	`

	var reviews []*domain.Review
	err := r.db.SelectContext(ctx, &reviews, query, authorID)
	if err != nil {
		return nil, err
	}

	return reviews, nil
}

// DeleteByID permanently removes a review and reports whether a row existed
func (r *ReviewRepository) DeleteByID(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `DELETE FROM reviews WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}
