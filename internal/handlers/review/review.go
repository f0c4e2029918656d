// internal/handlers/review/review.go
package review

import (
	"context"
	"net/http"

	"bookly-service/internal/domain/review"
	"bookly-service/internal/domain/user"
	"bookly-service/internal/middleware"
	"bookly-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Service interface {
	AddReview(ctx context.Context, author *user.User, bookUID uuid.UUID, req *review.CreateReviewRequest) (*review.Review, error)
	GetReview(ctx context.Context, uid uuid.UUID) (*review.Review, error)
	ListReviews(ctx context.Context) ([]review.Review, error)
	ListBookReviews(ctx context.Context, bookUID uuid.UUID) ([]review.Review, error)
	DeleteReview(ctx context.Context, requester *user.User, uid uuid.UUID) error
}

type ReviewHandler struct {
	service Service
}

func NewReviewHandler(service Service) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// ListReviews returns every review (admin only)
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	reviews, err := h.service.ListReviews(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "reviews retrieved", reviews)
}

func (h *ReviewHandler) GetReview(c *gin.Context) {
	uid, ok := middleware.ParseUUIDParam(c, "review_uid")
	if !ok {
		return
	}

	rv, err := h.service.GetReview(c.Request.Context(), uid)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "review retrieved", rv)
}

// AddReview records the current user's review of a book
func (h *ReviewHandler) AddReview(c *gin.Context) {
	bookUID, ok := middleware.ParseUUIDParam(c, "book_uid")
	if !ok {
		return
	}

	var req review.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	rv, err := h.service.AddReview(c.Request.Context(), middleware.MustGetUser(c), bookUID, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "review added", rv)
}

func (h *ReviewHandler) ListBookReviews(c *gin.Context) {
	bookUID, ok := middleware.ParseUUIDParam(c, "book_uid")
	if !ok {
		return
	}

	reviews, err := h.service.ListBookReviews(c.Request.Context(), bookUID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "reviews retrieved", reviews)
}

// DeleteReview removes a review; only its author may do so
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	uid, ok := middleware.ParseUUIDParam(c, "review_uid")
	if !ok {
		return
	}

	if err := h.service.DeleteReview(c.Request.Context(), middleware.MustGetUser(c), uid); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "review deleted", nil)
}
