// internal/service/book/book.go
package book

import (
	"context"
	"fmt"
	"strings"

	"bookly-service/internal/domain/book"
	xerrors "bookly-service/internal/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, b *book.Book) error
	FindByUID(ctx context.Context, uid uuid.UUID) (*book.Book, error)
	Update(ctx context.Context, b *book.Book) error
	Delete(ctx context.Context, uid uuid.UUID) error
	List(ctx context.Context, filters *book.BookListFilters) ([]book.Book, int64, error)
	ListByUser(ctx context.Context, userUID uuid.UUID) ([]book.Book, error)
}

type BookService struct {
	bookRepo Repository
	logger   *zap.Logger
}

func NewBookService(bookRepo Repository, logger *zap.Logger) *BookService {
	return &BookService{
		bookRepo: bookRepo,
		logger:   logger,
	}
}

// ListBooks returns a page of books
func (s *BookService) ListBooks(ctx context.Context, filters *book.BookListFilters) (*book.BookListResponse, error) {
	filters.Tags = normalizeTags(filters.Tags)

	books, total, err := s.bookRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	totalPages := 0
	if filters.PageSize > 0 {
		totalPages = int((total + int64(filters.PageSize) - 1) / int64(filters.PageSize))
	}

	return &book.BookListResponse{
		Books:      books,
		Total:      total,
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalPages: totalPages,
	}, nil
}

// CreateBook records a book submitted by userUID
func (s *BookService) CreateBook(ctx context.Context, userUID uuid.UUID, req *book.CreateBookRequest) (*book.Book, error) {
	submitter := userUID
	b := &book.Book{
		UID:           uuid.New(),
		UserUID:       &submitter,
		Title:         strings.TrimSpace(req.Title),
		Author:        strings.TrimSpace(req.Author),
		Publisher:     strings.TrimSpace(req.Publisher),
		PublishedDate: req.PublishedDate,
		PageCount:     req.PageCount,
		Language:      strings.TrimSpace(req.Language),
		Tags:          normalizeTags(req.Tags),
	}

	if err := s.bookRepo.Create(ctx, b); err != nil {
		s.logger.Error("failed to create book", zap.Error(err))
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	s.logger.Info("book created",
		zap.String("book_uid", b.UID.String()),
		zap.String("user_uid", userUID.String()),
	)

	return b, nil
}

// GetBook retrieves one book
func (s *BookService) GetBook(ctx context.Context, uid uuid.UUID) (*book.Book, error) {
	return s.bookRepo.FindByUID(ctx, uid)
}

// UpdateBook applies the provided fields and leaves the rest untouched
func (s *BookService) UpdateBook(ctx context.Context, uid uuid.UUID, req *book.UpdateBookRequest) (*book.Book, error) {
	b, err := s.bookRepo.FindByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if req.IsEmpty() {
		return b, nil
	}

	if req.Title != nil {
		b.Title = strings.TrimSpace(*req.Title)
	}
	if req.Author != nil {
		b.Author = strings.TrimSpace(*req.Author)
	}
	if req.Publisher != nil {
		b.Publisher = strings.TrimSpace(*req.Publisher)
	}
	if req.PublishedDate != nil {
		b.PublishedDate = *req.PublishedDate
	}
	if req.PageCount != nil {
		if *req.PageCount < 1 {
			return nil, fmt.Errorf("%w: page_count must be positive", xerrors.ErrBadRequest)
		}
		b.PageCount = *req.PageCount
	}
	if req.Language != nil {
		b.Language = strings.TrimSpace(*req.Language)
	}
	if req.Tags != nil {
		b.Tags = normalizeTags(req.Tags)
	}

	if err := s.bookRepo.Update(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("book updated", zap.String("book_uid", uid.String()))
	return b, nil
}

// DeleteBook removes a book and its reviews
func (s *BookService) DeleteBook(ctx context.Context, uid uuid.UUID) error {
	if err := s.bookRepo.Delete(ctx, uid); err != nil {
		return err
	}
	s.logger.Info("book deleted", zap.String("book_uid", uid.String()))
	return nil
}

// ListUserBooks lists the books a user submitted
func (s *BookService) ListUserBooks(ctx context.Context, userUID uuid.UUID) ([]book.Book, error) {
	books, err := s.bookRepo.ListByUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user books: %w", err)
	}
	return books, nil
}

// normalizeTags lowercases, trims and de-duplicates tags, keeping order.
func normalizeTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
