package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/stayfinder/listing_reviews/internal/domain"
)

// ListingDirectory implements domain.ListingDirectory against the shared
// listings table. The listing lifecycle is owned by the listing service;
// this side only ever reads.
type ListingDirectory struct {
	db *sqlx.DB
}

// NewListingDirectory creates a new PostgreSQL listing directory
func NewListingDirectory(db *sqlx.DB) *ListingDirectory {
	return &ListingDirectory{db: db}
}

// GetListing resolves a listing's existence and owner
func (d *ListingDirectory) GetListing(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	query := `SELECT id, owner_id FROM listings WHERE id = $1`

	var listing domain.Listing
	err := d.db.GetContext(ctx, &listing, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return &listing, nil
}

// GetListingSummary resolves the display summary for a listing
func (d *ListingDirectory) GetListingSummary(ctx context.Context, id uuid.UUID) (*domain.ListingSummary, error) {
	query := `SELECT id, title, type, location FROM listings WHERE id = $1`

	var summary domain.ListingSummary
	err := d.db.GetContext(ctx, &summary, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return &summary, nil
}
