package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stayfinder/listing_reviews/internal/pkg/logger"
)

const (
	// Debounce window - review events for the same listing within this
	// duration collapse into one notification
	debounceWindow = 1 * time.Second

	// Retry configuration
	maxRetries     = 3
	initialBackoff = 100 * time.Millisecond
)

// ReviewEvent is the slice of the published review event the notifier needs
type ReviewEvent struct {
	EventType string    `json:"event_type"`
	ListingID uuid.UUID `json:"listing_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Event types the notifier distinguishes
const (
	eventReviewCreated = "reviews.created"
	eventReviewDeleted = "reviews.deleted"
)

// Worker consumes review events and records owner notifications, debounced
// per listing so a burst of reviews produces one row, not many.
type Worker struct {
	recorder *Recorder
	logger   *logger.Logger

	mu         sync.Mutex
	pending    map[uuid.UUID]*pendingNotification
	shutdownCh chan struct{}
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
}

type pendingNotification struct {
	listingID   uuid.UUID
	created     int
	removed     int
	lastEventAt time.Time
	timer       *time.Timer
}

// NewWorker creates a new notification worker
func NewWorker(recorder *Recorder, logger *logger.Logger) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	return &Worker{
		recorder:   recorder,
		logger:     logger,
		pending:    make(map[uuid.UUID]*pendingNotification),
		shutdownCh: make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// HandleEvent processes a review event
func (w *Worker) HandleEvent(data []byte) error {
	var event ReviewEvent
	if err := json.Unmarshal(data, &event); err != nil {
		w.logger.Error("Failed to unmarshal review event", err)
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	w.logger.WithFields(map[string]interface{}{
		"event_type": event.EventType,
		"listing_id": event.ListingID.String(),
		"timestamp":  event.Timestamp,
	}).Info("Received review event")

	w.scheduleNotification(event)

	return nil
}

// scheduleNotification implements the debouncing logic: events for the
// same listing within the window accumulate into one pending notification.
func (w *Worker) scheduleNotification(event ReviewEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()

	select {
	case <-w.shutdownCh:
		w.logger.Info("Worker shutting down, ignoring new event")
		return
	default:
	}

	existing, found := w.pending[event.ListingID]
	if found {
		existing.timer.Stop()
		w.logger.WithFields(map[string]interface{}{
			"listing_id": event.ListingID.String(),
		}).Debug("Debouncing: resetting timer for listing")
	} else {
		existing = &pendingNotification{listingID: event.ListingID}
		w.pending[event.ListingID] = existing
		w.wg.Add(1)
	}

	switch event.EventType {
	case eventReviewCreated:
		existing.created++
	case eventReviewDeleted:
		existing.removed++
	default:
		w.logger.Warnf("Unknown review event type %q", event.EventType)
	}
	if event.Timestamp.After(existing.lastEventAt) {
		existing.lastEventAt = event.Timestamp
	}

	listingID := event.ListingID
	existing.timer = time.AfterFunc(debounceWindow, func() {
		w.flush(listingID)
	})
}

// flush records the accumulated notification with retry and backoff
func (w *Worker) flush(listingID uuid.UUID) {
	w.mu.Lock()
	pending, ok := w.pending[listingID]
	delete(w.pending, listingID)
	w.mu.Unlock()

	// A reset timer can fire for an entry an earlier flush already took
	if !ok {
		return
	}
	defer w.wg.Done()

	w.logger.WithFields(map[string]interface{}{
		"listing_id": listingID.String(),
		"created":    pending.created,
		"removed":    pending.removed,
	}).Info("Flushing owner notification")

	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			w.logger.WithFields(map[string]interface{}{
				"listing_id": listingID.String(),
				"attempt":    attempt + 1,
				"backoff_ms": backoff.Milliseconds(),
			}).Warn("Retrying notification record")

			select {
			case <-time.After(backoff):
			case <-w.ctx.Done():
				w.logger.Info("Worker context cancelled, aborting retry")
				return
			}

			backoff *= 2
		}

		ctx, cancel := context.WithTimeout(w.ctx, 5*time.Second)
		err := w.recorder.Record(ctx, listingID, pending.created, pending.removed, pending.lastEventAt)
		cancel()

		if err == nil {
			return
		}

		lastErr = err
		w.logger.WithFields(map[string]interface{}{
			"listing_id": listingID.String(),
			"attempt":    attempt + 1,
		}).Error("Failed to record notification", err)
	}

	w.logger.WithFields(map[string]interface{}{
		"listing_id":  listingID.String(),
		"max_retries": maxRetries,
	}).Error("Notification record failed after all retries", lastErr)
}

// Shutdown gracefully shuts down the worker: cancels pending timers and
// waits for in-flight records to complete.
func (w *Worker) Shutdown(ctx context.Context) error {
	w.logger.Info("Shutting down notification worker...")

	close(w.shutdownCh)
	w.cancel()

	w.mu.Lock()
	pendingCount := len(w.pending)
	for _, p := range w.pending {
		p.timer.Stop()
		w.wg.Done()
	}
	w.pending = make(map[uuid.UUID]*pendingNotification)
	w.mu.Unlock()

	w.logger.WithFields(map[string]interface{}{
		"cancelled_notifications": pendingCount,
	}).Info("Cancelled pending notifications")

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("All in-flight notifications completed")
		return nil
	case <-ctx.Done():
		w.logger.Warn("Shutdown timeout reached, forcing exit")
		return ctx.Err()
	}
}

// GetPendingCount returns the number of pending notifications (used for monitoring/testing)
func (w *Worker) GetPendingCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}
