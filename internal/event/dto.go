package event

import (
	"time"

	"github.com/oapi-codegen/nullable"
)

// CreateEventRequest represents the request body for creating an event
type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required,max=100"`
	Description string    `json:"description" validate:"required"`
	CategoryID  int64     `json:"category_id" validate:"required,gt=0"`
	CityIDs     []int64   `json:"city_ids" validate:"required,min=1,dive,gt=0"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required"`
	MaxPeople   int       `json:"max_people" validate:"required,min=2"`
	ClubID      *int64    `json:"club_id,omitempty" validate:"omitempty,gt=0"`
}

// PutEventRequest replaces every editable field of an event
type PutEventRequest struct {
	Title       string    `json:"title" validate:"required,max=100"`
	Description string    `json:"description" validate:"required"`
	CategoryID  int64     `json:"category_id" validate:"required,gt=0"`
	CityIDs     []int64   `json:"city_ids" validate:"required,min=1,dive,gt=0"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required"`
	MaxPeople   int       `json:"max_people" validate:"required,min=2"`
}

// PatchEventRequest is a partial update. Omitted fields are unchanged, null is rejected.
type PatchEventRequest struct {
	Title       nullable.Nullable[string]    `json:"title" swaggertype:"string"`
	Description nullable.Nullable[string]    `json:"description" swaggertype:"string"`
	CategoryID  nullable.Nullable[int64]     `json:"category_id" swaggertype:"integer"`
	CityIDs     nullable.Nullable[[]int64]   `json:"city_ids" swaggertype:"array,integer"`
	StartTime   nullable.Nullable[time.Time] `json:"start_time" swaggertype:"string"`
	EndTime     nullable.Nullable[time.Time] `json:"end_time" swaggertype:"string"`
	MaxPeople   nullable.Nullable[int]       `json:"max_people" swaggertype:"integer"`
}

// EventResponse represents an event in API responses
type EventResponse struct {
	ID          int64   `json:"id"`
	HostID      int64   `json:"host_id"`
	ClubID      *int64  `json:"club_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	CategoryID  int64   `json:"category_id"`
	CityIDs     []int64 `json:"city_ids"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	MaxPeople   int     `json:"max_people"`
	Status      Status  `json:"status"`
}

// ParticipantResponse is a joined user
type ParticipantResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// EventDetailResponse adds the joined users to an event
type EventDetailResponse struct {
	EventResponse
	Participants []*ParticipantResponse `json:"participants"`
}

// ToResponse converts an Event model to an EventResponse DTO with the status at now
func (e *Event) ToResponse(now time.Time) *EventResponse {
	cityIDs := e.CityIDs
	if cityIDs == nil {
		cityIDs = []int64{}
	}
	return &EventResponse{
		ID:          e.ID,
		HostID:      e.HostID,
		ClubID:      e.ClubID,
		Title:       e.Title,
		Description: e.Description,
		CategoryID:  e.CategoryID,
		CityIDs:     cityIDs,
		StartTime:   e.StartTime.UTC().Format(time.RFC3339),
		EndTime:     e.EndTime.UTC().Format(time.RFC3339),
		MaxPeople:   e.MaxPeople,
		Status:      e.StatusAt(now),
	}
}

// ToDetailResponse includes the participants loaded on the event
func (e *Event) ToDetailResponse(now time.Time) *EventDetailResponse {
	participants := make([]*ParticipantResponse, len(e.Participants))
	for i, p := range e.Participants {
		participants[i] = &ParticipantResponse{ID: p.UserID, Name: p.Name}
	}
	return &EventDetailResponse{
		EventResponse: *e.ToResponse(now),
		Participants:  participants,
	}
}
