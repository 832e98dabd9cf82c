package notifier

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayfinder/listing_reviews/internal/pkg/logger"
)

func newTestWorker(t *testing.T) (*Worker, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logger.New("test")
	recorder := NewRecorder(sqlx.NewDb(db, "sqlmock"), log)
	return NewWorker(recorder, log), mock
}

func eventPayload(t *testing.T, eventType string, listingID uuid.UUID) []byte {
	data, err := json.Marshal(ReviewEvent{
		EventType: eventType,
		ListingID: listingID,
		Timestamp: time.Now(),
	})
	require.NoError(t, err)
	return data
}

func TestWorker_HandleEvent_Invalid(t *testing.T) {
	worker, _ := newTestWorker(t)

	err := worker.HandleEvent([]byte("not json"))

	assert.Error(t, err)
	assert.Equal(t, 0, worker.GetPendingCount())
}

func TestWorker_FlushesAfterDebounce(t *testing.T) {
	worker, mock := newTestWorker(t)
	listingID := uuid.New()

	mock.ExpectExec("INSERT INTO review_notifications").
		WithArgs(listingID, 1, 0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, worker.HandleEvent(eventPayload(t, eventReviewCreated, listingID)))
	assert.Equal(t, 1, worker.GetPendingCount())

	// The entry leaves the pending map before the insert runs, so wait on
	// the database expectation rather than the counter
	assert.Eventually(t, func() bool {
		return mock.ExpectationsWereMet() == nil
	}, 3*time.Second, 50*time.Millisecond)
	assert.Equal(t, 0, worker.GetPendingCount())
}

func TestWorker_DebouncesBurst(t *testing.T) {
	worker, mock := newTestWorker(t)
	listingID := uuid.New()

	// Three events inside the window collapse into one row
	mock.ExpectExec("INSERT INTO review_notifications").
		WithArgs(listingID, 2, 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, worker.HandleEvent(eventPayload(t, eventReviewCreated, listingID)))
	require.NoError(t, worker.HandleEvent(eventPayload(t, eventReviewCreated, listingID)))
	require.NoError(t, worker.HandleEvent(eventPayload(t, eventReviewDeleted, listingID)))
	assert.Equal(t, 1, worker.GetPendingCount())

	assert.Eventually(t, func() bool {
		return mock.ExpectationsWereMet() == nil
	}, 3*time.Second, 50*time.Millisecond)
	assert.Equal(t, 0, worker.GetPendingCount())
}

func TestWorker_SeparateListingsDoNotCollapse(t *testing.T) {
	worker, mock := newTestWorker(t)
	listingA := uuid.New()
	listingB := uuid.New()

	// sqlmock is ordered by default; the flush order of two timers started
	// in the same instant is not deterministic, so match in any order
	mock.MatchExpectationsInOrder(false)
	mock.ExpectExec("INSERT INTO review_notifications").
		WithArgs(listingA, 1, 0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO review_notifications").
		WithArgs(listingB, 1, 0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, worker.HandleEvent(eventPayload(t, eventReviewCreated, listingA)))
	require.NoError(t, worker.HandleEvent(eventPayload(t, eventReviewCreated, listingB)))
	assert.Equal(t, 2, worker.GetPendingCount())

	assert.Eventually(t, func() bool {
		return mock.ExpectationsWereMet() == nil
	}, 3*time.Second, 50*time.Millisecond)
	assert.Equal(t, 0, worker.GetPendingCount())
}

func TestWorker_Shutdown_CancelsPending(t *testing.T) {
	worker, mock := newTestWorker(t)
	listingID := uuid.New()

	require.NoError(t, worker.HandleEvent(eventPayload(t, eventReviewCreated, listingID)))
	assert.Equal(t, 1, worker.GetPendingCount())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, worker.Shutdown(ctx))

	assert.Equal(t, 0, worker.GetPendingCount())
	// The pending notification was cancelled, never recorded
	assert.NoError(t, mock.ExpectationsWereMet())

	// Events after shutdown are dropped
	require.NoError(t, worker.HandleEvent(eventPayload(t, eventReviewCreated, uuid.New())))
	assert.Equal(t, 0, worker.GetPendingCount())
}

func TestRecorder_ListingGone(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	recorder := NewRecorder(sqlx.NewDb(db, "sqlmock"), logger.New("test"))

	listingID := uuid.New()
	mock.ExpectExec("INSERT INTO review_notifications").
		WithArgs(listingID, 1, 0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	// A listing removed before the flush is not an error
	assert.NoError(t, recorder.Record(context.Background(), listingID, 1, 0, time.Now()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
