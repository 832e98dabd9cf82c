package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/stayfinder/listing_reviews/internal/pkg/logger"
)

// Recorder writes owner notification rows for review activity on a listing
type Recorder struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewRecorder creates a new notification recorder
func NewRecorder(db *sqlx.DB, logger *logger.Logger) *Recorder {
	return &Recorder{
		db:     db,
		logger: logger,
	}
}

// Record inserts one notification for the listing's owner covering all the
// review events collapsed into this flush. The owner is resolved from the
// listings table at write time; a listing removed in the meantime simply
// produces no notification.
func (r *Recorder) Record(ctx context.Context, listingID uuid.UUID, created, removed int, lastEventAt time.Time) error {
	query := `
		INSERT INTO review_notifications (listing_id, owner_id, reviews_added, reviews_removed, last_event_at)
		SELECT id, owner_id, $2, $3, $4
		FROM listings
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, listingID, created, removed, lastEventAt)
	if err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		r.logger.WithFields(map[string]interface{}{
			"listing_id": listingID.String(),
		}).Info("Listing no longer exists, skipping notification")
		return nil
	}

	r.logger.WithFields(map[string]interface{}{
		"listing_id":      listingID.String(),
		"reviews_added":   created,
		"reviews_removed": removed,
	}).Info("Recorded owner notification")

	return nil
}
