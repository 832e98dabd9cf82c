package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/stayfinder/listing_reviews/internal/domain"
)

// IdentityProvider implements domain.IdentityProvider against the shared
// users table, read-only.
type IdentityProvider struct {
	db *sqlx.DB
}

// NewIdentityProvider creates a new PostgreSQL identity provider
func NewIdentityProvider(db *sqlx.DB) *IdentityProvider {
	return &IdentityProvider{db: db}
}

// GetUser resolves a user by ID
func (p *IdentityProvider) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT id, name, role FROM users WHERE id = $1`

	var user domain.User
	err := p.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return &user, nil
}
