// internal/websocket/handler/review.go
package handler

import (
	"context"
	"encoding/json"
	"fmt"

	"bookly-service/internal/domain/review"
	wstypes "bookly-service/internal/domain/websocket"
	ws "bookly-service/internal/websocket"

	"github.com/google/uuid"
)

const defaultReviewLimit = 10

// ReviewLister is the slice of the review service the socket needs.
type ReviewLister interface {
	ListBookReviews(ctx context.Context, bookUID uuid.UUID) ([]review.Review, error)
}

type ReviewHandler struct {
	reviews ReviewLister
}

func NewReviewHandler(reviews ReviewLister) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// SupportedEvents returns events this handler supports
func (h *ReviewHandler) SupportedEvents() []wstypes.EventType {
	return []wstypes.EventType{wstypes.EventTypeReviewList}
}

// HandleMessage processes review-related messages
func (h *ReviewHandler) HandleMessage(ctx context.Context, client *ws.Client, msg *wstypes.WSMessage) error {
	switch msg.Type {
	case wstypes.EventTypeReviewList:
		return h.handleListReviews(ctx, client, msg)
	default:
		return fmt.Errorf("unsupported event type: %s", msg.Type)
	}
}

// handleListReviews returns the latest reviews of one book
func (h *ReviewHandler) handleListReviews(ctx context.Context, client *ws.Client, msg *wstypes.WSMessage) error {
	var req struct {
		BookUID string `json:"book_uid"`
		Limit   int    `json:"limit"`
	}
	if err := mapToStruct(msg.Data, &req); err != nil {
		client.SendError("invalid_request", "Invalid review list request", err.Error())
		return nil
	}

	bookUID, err := uuid.Parse(req.BookUID)
	if err != nil {
		client.SendError("invalid_request", "book_uid must be a valid uuid", "")
		return nil
	}
	if req.Limit <= 0 || req.Limit > 50 {
		req.Limit = defaultReviewLimit
	}

	reviews, err := h.reviews.ListBookReviews(ctx, bookUID)
	if err != nil {
		client.SendError("list_failed", "Failed to get reviews", err.Error())
		return nil
	}
	if len(reviews) > req.Limit {
		reviews = reviews[:req.Limit]
	}

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeReviewList, map[string]interface{}{
		"book_uid": bookUID,
		"reviews":  reviews,
		"count":    len(reviews),
	}))
	return nil
}

func mapToStruct(data interface{}, target interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, target)
}
