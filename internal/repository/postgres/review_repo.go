// internal/repository/postgres/review_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"bookly-service/internal/domain/review"
	xerrors "bookly-service/internal/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reviewColumns = `uid, rating, review_text, user_uid, book_uid, created_at, updated_at`

type ReviewRepository struct {
	db *pgxpool.Pool
}

func NewReviewRepository(db *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func scanReview(row pgx.Row) (*review.Review, error) {
	var rv review.Review
	err := row.Scan(
		&rv.UID, &rv.Rating, &rv.ReviewText, &rv.UserUID, &rv.BookUID, &rv.CreatedAt, &rv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

// Create inserts a new review
func (r *ReviewRepository) Create(ctx context.Context, rv *review.Review) error {
	query := `
		INSERT INTO reviews (uid, rating, review_text, user_uid, book_uid)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query, rv.UID, rv.Rating, rv.ReviewText, rv.UserUID, rv.BookUID).
		Scan(&rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}

	return nil
}

// FindByUID retrieves a review by uid
func (r *ReviewRepository) FindByUID(ctx context.Context, uid uuid.UUID) (*review.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE uid = $1`

	rv, err := scanReview(r.db.QueryRow(ctx, query, uid))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find review: %w", err)
	}

	return rv, nil
}

// Delete removes a review
func (r *ReviewRepository) Delete(ctx context.Context, uid uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE uid = $1`, uid)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrReviewNotFound
	}

	return nil
}

// ListAll retrieves every review, newest first
func (r *ReviewRepository) ListAll(ctx context.Context) ([]review.Review, error) {
	return r.queryReviews(ctx, `SELECT `+reviewColumns+` FROM reviews ORDER BY created_at DESC`)
}

// ListByBook retrieves the reviews of one book, newest first
func (r *ReviewRepository) ListByBook(ctx context.Context, bookUID uuid.UUID) ([]review.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE book_uid = $1 ORDER BY created_at DESC`
	return r.queryReviews(ctx, query, bookUID)
}

func (r *ReviewRepository) queryReviews(ctx context.Context, query string, args ...interface{}) ([]review.Review, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []review.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, *rv)
	}

	return reviews, rows.Err()
}
