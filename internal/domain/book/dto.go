// internal/domain/book/dto.go
package book

type CreateBookRequest struct {
	Title         string   `json:"title" binding:"required,max=255"`
	Author        string   `json:"author" binding:"required,max=255"`
	Publisher     string   `json:"publisher" binding:"required,max=255"`
	PublishedDate string   `json:"published_date" binding:"required,datetime=2006-01-02"`
	PageCount     int      `json:"page_count" binding:"required,min=1"`
	Language      string   `json:"language" binding:"required,max=50"`
	Tags          []string `json:"tags"`
}

// UpdateBookRequest carries only the fields the caller wants to change.
type UpdateBookRequest struct {
	Title         *string  `json:"title" binding:"omitempty,max=255"`
	Author        *string  `json:"author" binding:"omitempty,max=255"`
	Publisher     *string  `json:"publisher" binding:"omitempty,max=255"`
	PublishedDate *string  `json:"published_date" binding:"omitempty,datetime=2006-01-02"`
	PageCount     *int     `json:"page_count" binding:"omitempty,min=1"`
	Language      *string  `json:"language" binding:"omitempty,max=50"`
	Tags          []string `json:"tags"`
}

// IsEmpty reports whether the request changes nothing.
func (r *UpdateBookRequest) IsEmpty() bool {
	return r.Title == nil && r.Author == nil && r.Publisher == nil &&
		r.PublishedDate == nil && r.PageCount == nil && r.Language == nil && r.Tags == nil
}

type BookListFilters struct {
	Search    string   `form:"search"` // title or author
	Tags      []string `form:"tag"`
	Page      int      `form:"page"`
	PageSize  int      `form:"page_size" binding:"omitempty,max=100"`
	SortBy    string   `form:"sort_by" binding:"omitempty,oneof=created_at title author published_date page_count"`
	SortOrder string   `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

type BookListResponse struct {
	Books      []Book `json:"books"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalPages int    `json:"total_pages"`
}
