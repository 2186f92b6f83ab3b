package review

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/meetup/pkg/middleware"
	"github.com/fkhayef/meetup/pkg/request"
	"github.com/fkhayef/meetup/pkg/response"
)

// Handler handles HTTP requests for review operations
type Handler struct {
	service *Service
}

// NewHandler creates a new review handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for review endpoints. Visibility depends on the caller,
// so every route requires authentication.
func (h *Handler) Routes(requireAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(requireAuth)

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}", h.PutUpdate)
	r.Patch("/{id}", h.PatchUpdate)
	r.Delete("/{id}", h.Delete)

	return r
}

// Create handles POST /reviews
// @Summary      Review an event
// @Description  Participants other than the host may review an ended event once
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateReviewRequest true "Review"
// @Success      201 {object} response.APIResponse{data=ReviewResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /reviews [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.CallerID(w, r)
	if !ok {
		return
	}

	var req CreateReviewRequest
	if err := request.Decode(r, &req); err != nil {
		response.ServiceError(w, r, err, "Invalid request body")
		return
	}

	review, err := h.service.CreateReview(r.Context(), callerID, &req)
	if err != nil {
		response.ServiceError(w, r, err, "Failed to create review")
		return
	}

	response.JSON(w, http.StatusCreated, review.ToResponse())
}

// List handles GET /reviews
// @Summary      List reviews
// @Description  Only reviews visible to the caller are returned
// @Tags         reviews
// @Produce      json
// @Security     BearerAuth
// @Param        event_id query int false "Event ID"
// @Param        user_id query int false "Author user ID"
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]ReviewResponse}
// @Router       /reviews [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.CallerID(w, r)
	if !ok {
		return
	}
	page, perPage := request.Pagination(r)

	eventID, err := request.OptionalInt64Query(r, "event_id")
	if err != nil {
		response.ServiceError(w, r, err, "Invalid event_id")
		return
	}
	userID, err := request.OptionalInt64Query(r, "user_id")
	if err != nil {
		response.ServiceError(w, r, err, "Invalid user_id")
		return
	}

	reviews, total, err := h.service.GetReviews(r.Context(), callerID, ListFilter{EventID: eventID, UserID: userID}, page, perPage)
	if err != nil {
		response.ServiceError(w, r, err, "Failed to list reviews")
		return
	}

	out := make([]*ReviewResponse, len(reviews))
	for i, rv := range reviews {
		out[i] = rv.ToResponse()
	}
	response.JSONWithMeta(w, http.StatusOK, out, response.NewMeta(page, perPage, total))
}

// GetByID handles GET /reviews/{id}
// @Summary      Get a review
// @Tags         reviews
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Review ID"
// @Success      200 {object} response.APIResponse{data=ReviewResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /reviews/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := request.IDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid review ID")
		return
	}

	callerID, ok := middleware.CallerID(w, r)
	if !ok {
		return
	}

	review, err := h.service.GetReview(r.Context(), callerID, id)
	if err != nil {
		response.ServiceError(w, r, err, "Failed to get review")
		return
	}

	response.JSON(w, http.StatusOK, review.ToResponse())
}

// PutUpdate handles PUT /reviews/{id}
// @Summary      Replace a review
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Review ID"
// @Param        request body PutReviewRequest true "Review"
// @Success      200 {object} response.APIResponse{data=ReviewResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /reviews/{id} [put]
func (h *Handler) PutUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := request.IDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid review ID")
		return
	}

	callerID, ok := middleware.CallerID(w, r)
	if !ok {
		return
	}

	var req PutReviewRequest
	if err := request.Decode(r, &req); err != nil {
		response.ServiceError(w, r, err, "Invalid request body")
		return
	}

	review, err := h.service.PutUpdateReview(r.Context(), id, callerID, &req)
	if err != nil {
		response.ServiceError(w, r, err, "Failed to update review")
		return
	}

	response.JSON(w, http.StatusOK, review.ToResponse())
}

// PatchUpdate handles PATCH /reviews/{id}
// @Summary      Update a review
// @Description  Null score or title is rejected; null description clears it
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Review ID"
// @Param        request body PatchReviewRequest true "Review patch"
// @Success      200 {object} response.APIResponse{data=ReviewResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /reviews/{id} [patch]
func (h *Handler) PatchUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := request.IDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid review ID")
		return
	}

	callerID, ok := middleware.CallerID(w, r)
	if !ok {
		return
	}

	var req PatchReviewRequest
	if err := request.Decode(r, &req); err != nil {
		response.ServiceError(w, r, err, "Invalid request body")
		return
	}

	review, err := h.service.PatchUpdateReview(r.Context(), id, callerID, &req)
	if err != nil {
		response.ServiceError(w, r, err, "Failed to update review")
		return
	}

	response.JSON(w, http.StatusOK, review.ToResponse())
}

// Delete handles DELETE /reviews/{id}
// @Summary      Delete a review
// @Tags         reviews
// @Security     BearerAuth
// @Param        id path int true "Review ID"
// @Success      204
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /reviews/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := request.IDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid review ID")
		return
	}

	callerID, ok := middleware.CallerID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteReview(r.Context(), id, callerID); err != nil {
		response.ServiceError(w, r, err, "Failed to delete review")
		return
	}

	response.NoContent(w)
}
