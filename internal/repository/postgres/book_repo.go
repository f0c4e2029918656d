// internal/repository/postgres/book_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookly-service/internal/domain/book"
	xerrors "bookly-service/internal/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
)

const bookColumns = `uid, user_uid, title, author, publisher,
		       to_char(published_date, 'YYYY-MM-DD'), page_count, language,
		       COALESCE(tags, '{}'), created_at, updated_at`

var bookSortColumns = map[string]bool{
	"created_at":     true,
	"title":          true,
	"author":         true,
	"published_date": true,
	"page_count":     true,
}

type BookRepository struct {
	db *DB
}

func NewBookRepository(db *DB) *BookRepository {
	return &BookRepository{db: db}
}

func scanBook(row pgx.Row) (*book.Book, error) {
	var b book.Book
	err := row.Scan(
		&b.UID, &b.UserUID, &b.Title, &b.Author, &b.Publisher,
		&b.PublishedDate, &b.PageCount, &b.Language,
		&b.Tags, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts a new book
func (r *BookRepository) Create(ctx context.Context, b *book.Book) error {
	query := `
		INSERT INTO books (
			uid, user_uid, title, author, publisher, published_date, page_count, language, tags
		) VALUES ($1, $2, $3, $4, $5, $6::date, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := r.db.Pool().QueryRow(
		ctx, query,
		b.UID, b.UserUID, b.Title, b.Author, b.Publisher, b.PublishedDate, b.PageCount, b.Language, b.Tags,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}

	return nil
}

// FindByUID retrieves a book by uid
func (r *BookRepository) FindByUID(ctx context.Context, uid uuid.UUID) (*book.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE uid = $1`

	b, err := scanBook(r.db.Pool().QueryRow(ctx, query, uid))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find book: %w", err)
	}

	return b, nil
}

// Update writes every mutable column of b
func (r *BookRepository) Update(ctx context.Context, b *book.Book) error {
	query := `
		UPDATE books
		SET title = $1, author = $2, publisher = $3, published_date = $4::date,
		    page_count = $5, language = $6, tags = $7, updated_at = $8
		WHERE uid = $9
		RETURNING updated_at
	`

	err := r.db.Pool().QueryRow(
		ctx, query,
		b.Title, b.Author, b.Publisher, b.PublishedDate,
		b.PageCount, b.Language, b.Tags, time.Now(), b.UID,
	).Scan(&b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return xerrors.ErrBookNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}

	return nil
}

// Delete removes a book together with its reviews
func (r *BookRepository) Delete(ctx context.Context, uid uuid.UUID) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM reviews WHERE book_uid = $1`, uid); err != nil {
			return fmt.Errorf("failed to delete book reviews: %w", err)
		}

		result, err := tx.Exec(ctx, `DELETE FROM books WHERE uid = $1`, uid)
		if err != nil {
			return fmt.Errorf("failed to delete book: %w", err)
		}
		if result.RowsAffected() == 0 {
			return xerrors.ErrBookNotFound
		}
		return nil
	})
}

// List retrieves books with filters, newest first unless sorted otherwise
func (r *BookRepository) List(ctx context.Context, filters *book.BookListFilters) ([]book.Book, int64, error) {
	conditions := []string{"TRUE"}
	args := []interface{}{}
	argPos := 1

	if filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR author ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+filters.Search+"%")
		argPos++
	}

	if len(filters.Tags) > 0 {
		conditions = append(conditions, fmt.Sprintf("tags && $%d", argPos))
		args = append(args, pq.Array(filters.Tags))
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM books WHERE %s", whereClause)
	if err := r.db.Pool().QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	page, pageSize, offset := normalizePage(filters.Page, filters.PageSize)
	filters.Page, filters.PageSize = page, pageSize

	query := fmt.Sprintf(`
		SELECT %s
		FROM books
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, bookColumns, whereClause,
		orderClause(filters.SortBy, filters.SortOrder, "created_at", bookSortColumns),
		argPos, argPos+1)
	args = append(args, pageSize, offset)

	books, err := r.queryBooks(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

// ListByUser retrieves every book submitted by userUID, newest first
func (r *BookRepository) ListByUser(ctx context.Context, userUID uuid.UUID) ([]book.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE user_uid = $1 ORDER BY created_at DESC`
	return r.queryBooks(ctx, query, userUID)
}

func (r *BookRepository) queryBooks(ctx context.Context, query string, args ...interface{}) ([]book.Book, error) {
	rows, err := r.db.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	books := []book.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, *b)
	}

	return books, rows.Err()
}
