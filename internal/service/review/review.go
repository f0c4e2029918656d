// internal/service/review/review.go
package review

import (
	"context"
	"fmt"
	"strings"

	"bookly-service/internal/domain/book"
	"bookly-service/internal/domain/review"
	"bookly-service/internal/domain/user"
	xerrors "bookly-service/internal/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, rv *review.Review) error
	FindByUID(ctx context.Context, uid uuid.UUID) (*review.Review, error)
	Delete(ctx context.Context, uid uuid.UUID) error
	ListAll(ctx context.Context) ([]review.Review, error)
	ListByBook(ctx context.Context, bookUID uuid.UUID) ([]review.Review, error)
}

type BookFinder interface {
	FindByUID(ctx context.Context, uid uuid.UUID) (*book.Book, error)
}

// Notifier tells a book's submitter about new reviews.
type Notifier interface {
	ReviewCreated(submitterUID string, rv *review.Review, bookTitle string)
}

type ReviewService struct {
	reviewRepo Repository
	books      BookFinder
	notifier   Notifier
	logger     *zap.Logger
}

func NewReviewService(reviewRepo Repository, books BookFinder, notifier Notifier, logger *zap.Logger) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		books:      books,
		notifier:   notifier,
		logger:     logger,
	}
}

// AddReview records author's review of a book
func (s *ReviewService) AddReview(ctx context.Context, author *user.User, bookUID uuid.UUID, req *review.CreateReviewRequest) (*review.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", xerrors.ErrBadRequest)
	}

	b, err := s.books.FindByUID(ctx, bookUID)
	if err != nil {
		return nil, err
	}

	authorUID := author.UID
	rv := &review.Review{
		UID:        uuid.New(),
		Rating:     req.Rating,
		ReviewText: strings.TrimSpace(req.ReviewText),
		UserUID:    &authorUID,
		BookUID:    &b.UID,
	}

	if err := s.reviewRepo.Create(ctx, rv); err != nil {
		s.logger.Error("failed to create review", zap.Error(err))
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	s.logger.Info("review created",
		zap.String("review_uid", rv.UID.String()),
		zap.String("book_uid", b.UID.String()),
		zap.String("user_uid", authorUID.String()),
	)

	if s.notifier != nil && b.UserUID != nil && *b.UserUID != authorUID {
		s.notifier.ReviewCreated(b.UserUID.String(), rv, b.Title)
	}

	return rv, nil
}

// GetReview retrieves one review
func (s *ReviewService) GetReview(ctx context.Context, uid uuid.UUID) (*review.Review, error) {
	return s.reviewRepo.FindByUID(ctx, uid)
}

// ListReviews lists every review
func (s *ReviewService) ListReviews(ctx context.Context) ([]review.Review, error) {
	reviews, err := s.reviewRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// ListBookReviews lists the reviews of an existing book
func (s *ReviewService) ListBookReviews(ctx context.Context, bookUID uuid.UUID) ([]review.Review, error) {
	if _, err := s.books.FindByUID(ctx, bookUID); err != nil {
		return nil, err
	}
	reviews, err := s.reviewRepo.ListByBook(ctx, bookUID)
	if err != nil {
		return nil, fmt.Errorf("failed to list book reviews: %w", err)
	}
	return reviews, nil
}

// DeleteReview removes a review; only its author may do so
func (s *ReviewService) DeleteReview(ctx context.Context, requester *user.User, uid uuid.UUID) error {
	rv, err := s.reviewRepo.FindByUID(ctx, uid)
	if err != nil {
		return err
	}
	if rv.UserUID == nil || *rv.UserUID != requester.UID {
		return fmt.Errorf("%w: cannot delete this review", xerrors.ErrForbidden)
	}

	if err := s.reviewRepo.Delete(ctx, uid); err != nil {
		return err
	}

	s.logger.Info("review deleted", zap.String("review_uid", uid.String()))
	return nil
}
