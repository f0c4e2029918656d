// internal/domain/review/dto.go
package review

type CreateReviewRequest struct {
	Rating     int    `json:"rating" binding:"required,min=1,max=5"`
	ReviewText string `json:"review_text" binding:"required"`
}
