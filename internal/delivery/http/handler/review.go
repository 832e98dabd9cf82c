package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/stayfinder/listing_reviews/internal/delivery/http/middleware"
	"github.com/stayfinder/listing_reviews/internal/delivery/http/request"
	"github.com/stayfinder/listing_reviews/internal/delivery/http/response"
	"github.com/stayfinder/listing_reviews/internal/domain"
	"github.com/stayfinder/listing_reviews/internal/pkg/logger"
	"github.com/stayfinder/listing_reviews/internal/usecase/review"
)

// ReviewHandler handles HTTP requests for reviews
type ReviewHandler struct {
	service *review.Service
	logger  *logger.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(service *review.Service, log *logger.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		logger:  log,
	}
}

// CreateReviewRequest represents the request body for creating a review.
// The author is always the authenticated caller, never a body field.
type CreateReviewRequest struct {
	ListingID string `json:"listing_id" validate:"required"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"max=500"`
}

// Create handles POST /api/v1/reviews
// @Summary Create a review for a listing
// @Description Create a review as the authenticated caller. One review per (listing, author); owners cannot review their own listings.
// @Tags Reviews
// @Accept json
// @Produce json
// @Param review body CreateReviewRequest true "Review details"
// @Success 201 {object} map[string]interface{} "Review created with author name"
// @Failure 400 {object} map[string]string "Invalid request body or fields"
// @Failure 401 {object} map[string]string "Missing or invalid token"
// @Failure 403 {object} map[string]string "Self-review"
// @Failure 404 {object} map[string]string "Listing not found"
// @Failure 409 {object} map[string]string "Already reviewed"
// @Security BearerAuth
// @Router /reviews [post]
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.CallerID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateReviewRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid listing ID")
		return
	}

	created, err := h.service.Create(r.Context(), &domain.Review{
		ListingID: listingID,
		AuthorID:  callerID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Created(w, created)
}

// ListByListing handles GET /api/v1/listings/:id/reviews
// @Summary Get reviews for a listing
// @Description Get all reviews for a listing, newest first, with count and average rating derived from the same set. Unknown listings yield an empty result.
// @Tags Reviews
// @Accept json
// @Produce json
// @Param id path string true "Listing ID (UUID)"
// @Success 200 {object} review.ListingReviews
// @Failure 400 {object} map[string]string "Invalid listing ID"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /listings/{id}/reviews [get]
func (h *ReviewHandler) ListByListing(w http.ResponseWriter, r *http.Request) {
	listingID, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid listing ID")
		return
	}

	result, err := h.service.ListByListing(r.Context(), listingID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListMine handles GET /api/v1/reviews/me
// @Summary Get the caller's reviews
// @Description Get the authenticated caller's own reviews, newest first, each with a listing summary.
// @Tags Reviews
// @Accept json
// @Produce json
// @Success 200 {array} domain.ReviewWithListing
// @Failure 401 {object} map[string]string "Missing or invalid token"
// @Security BearerAuth
// @Router /reviews/me [get]
func (h *ReviewHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.CallerID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	reviews, err := h.service.ListByAuthor(r.Context(), callerID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, reviews)
}

// Delete handles DELETE /api/v1/reviews/:id
// @Summary Delete a review
// @Description Permanently delete a review. Only the author may delete it.
// @Tags Reviews
// @Accept json
// @Produce json
// @Param id path string true "Review ID (UUID)"
// @Success 204 "Review deleted"
// @Failure 400 {object} map[string]string "Invalid review ID"
// @Failure 401 {object} map[string]string "Missing or invalid token"
// @Failure 403 {object} map[string]string "Not the author"
// @Failure 404 {object} map[string]string "Review not found"
// @Security BearerAuth
// @Router /reviews/{id} [delete]
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.CallerID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	if err := h.service.Delete(r.Context(), id, callerID); err != nil {
		h.handleError(w, err)
		return
	}

	response.NoContent(w)
}

// handleError maps service layer errors onto HTTP responses. Error detail
// travels with the sentinel; unexpected failures stay generic.
func (h *ReviewHandler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthenticated):
		response.Error(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		response.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		response.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		response.Error(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("Internal error in review handler", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}
