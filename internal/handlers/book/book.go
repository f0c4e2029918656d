// internal/handlers/book/book.go
package book

import (
	"context"
	"net/http"

	"bookly-service/internal/domain/book"
	"bookly-service/internal/middleware"
	xerrors "bookly-service/internal/pkg/errors"
	"bookly-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Service interface {
	ListBooks(ctx context.Context, filters *book.BookListFilters) (*book.BookListResponse, error)
	CreateBook(ctx context.Context, userUID uuid.UUID, req *book.CreateBookRequest) (*book.Book, error)
	GetBook(ctx context.Context, uid uuid.UUID) (*book.Book, error)
	UpdateBook(ctx context.Context, uid uuid.UUID, req *book.UpdateBookRequest) (*book.Book, error)
	DeleteBook(ctx context.Context, uid uuid.UUID) error
	ListUserBooks(ctx context.Context, userUID uuid.UUID) ([]book.Book, error)
}

type BookHandler struct {
	service Service
}

func NewBookHandler(service Service) *BookHandler {
	return &BookHandler{service: service}
}

// ListBooks godoc
// GET /books?search=&tag=&page=&page_size=&sort_by=&sort_order=
func (h *BookHandler) ListBooks(c *gin.Context) {
	var filters book.BookListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid query parameters", err)
		return
	}

	result, err := h.service.ListBooks(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "books retrieved", result)
}

// CreateBook records a book submitted by the current user
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req book.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	u := middleware.MustGetUser(c)
	b, err := h.service.CreateBook(c.Request.Context(), u.UID, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "book created", b)
}

func (h *BookHandler) GetBook(c *gin.Context) {
	uid, ok := middleware.ParseUUIDParam(c, "book_uid")
	if !ok {
		return
	}

	b, err := h.service.GetBook(c.Request.Context(), uid)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "book retrieved", b)
}

// UpdateBook applies only the fields present in the body
func (h *BookHandler) UpdateBook(c *gin.Context) {
	uid, ok := middleware.ParseUUIDParam(c, "book_uid")
	if !ok {
		return
	}

	var req book.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}
	if req.IsEmpty() {
		response.ValidationError(c, "no fields to update", xerrors.ErrBadRequest)
		return
	}

	b, err := h.service.UpdateBook(c.Request.Context(), uid, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "book updated", b)
}

func (h *BookHandler) DeleteBook(c *gin.Context) {
	uid, ok := middleware.ParseUUIDParam(c, "book_uid")
	if !ok {
		return
	}

	if err := h.service.DeleteBook(c.Request.Context(), uid); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "book deleted", nil)
}

// ListUserBooks returns the books one user submitted
func (h *BookHandler) ListUserBooks(c *gin.Context) {
	uid, ok := middleware.ParseUUIDParam(c, "user_uid")
	if !ok {
		return
	}

	books, err := h.service.ListUserBooks(c.Request.Context(), uid)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "books retrieved", books)
}
