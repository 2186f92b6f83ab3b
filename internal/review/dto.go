package review

import (
	"time"

	"github.com/oapi-codegen/nullable"
)

// CreateReviewRequest represents the request body for reviewing an event
type CreateReviewRequest struct {
	EventID     int64   `json:"event_id" validate:"required,gt=0"`
	Score       int     `json:"score" validate:"required,min=1,max=5"`
	Title       string  `json:"title" validate:"required,max=100"`
	Description *string `json:"description"`
}

// PutReviewRequest replaces a review. An absent description clears it.
type PutReviewRequest struct {
	Score       int     `json:"score" validate:"required,min=1,max=5"`
	Title       string  `json:"title" validate:"required,max=100"`
	Description *string `json:"description"`
}

// PatchReviewRequest is a partial update. Null score or title is rejected, null description clears it.
type PatchReviewRequest struct {
	Score       nullable.Nullable[int]    `json:"score" swaggertype:"integer"`
	Title       nullable.Nullable[string] `json:"title" swaggertype:"string"`
	Description nullable.Nullable[string] `json:"description" swaggertype:"string"`
}

// ReviewResponse represents a review in API responses
type ReviewResponse struct {
	ID          int64   `json:"id"`
	EventID     int64   `json:"event_id"`
	UserID      int64   `json:"user_id"`
	Score       int     `json:"score"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	CreatedAt   string  `json:"created_at"`
}

// ToResponse converts a Review model to a ReviewResponse DTO
func (r *Review) ToResponse() *ReviewResponse {
	return &ReviewResponse{
		ID:          r.ID,
		EventID:     r.EventID,
		UserID:      r.UserID,
		Score:       r.Score,
		Title:       r.Title,
		Description: r.Description,
		CreatedAt:   r.CreatedAt.UTC().Format(time.RFC3339),
	}
}
