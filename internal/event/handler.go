package event

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/meetup/pkg/middleware"
	"github.com/fkhayef/meetup/pkg/request"
	"github.com/fkhayef/meetup/pkg/response"
)

// Handler handles HTTP requests for event operations
type Handler struct {
	service *Service
}

// NewHandler creates a new event handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for event endpoints
func (h *Handler) Routes(requireAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", h.Create)
		r.Get("/me", h.ListMine)
		r.Put("/{id}", h.PutUpdate)
		r.Patch("/{id}", h.PatchUpdate)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/join", h.Join)
		r.Post("/{id}/out", h.Out)
	})

	return r
}

// Create handles POST /events
// @Summary      Create an event
// @Description  The caller hosts and joins the event. Club events require club membership.
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateEventRequest true "Event creation request"
// @Success      201 {object} response.APIResponse{data=EventResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /events [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.CallerID(w, r)
	if !ok {
		return
	}

	var req CreateEventRequest
	if err := request.Decode(r, &req); err != nil {
		response.ServiceError(w, r, err, "Invalid request body")
		return
	}

	event, err := h.service.CreateEvent(r.Context(), callerID, &req)
	if err != nil {
		response.ServiceError(w, r, err, "Failed to create event")
		return
	}

	response.JSON(w, http.StatusCreated, event.ToResponse(h.service.Now()))
}

// GetByID handles GET /events/{id}
// @Summary      Get event detail
// @Description  Event with its city ids, participants and derived status
// @Tags         events
// @Produce      json
// @Param        id path int true "Event ID"
// @Success      200 {object} response.APIResponse{data=EventDetailResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /events/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := request.IDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid event ID")
		return
	}

	event, err := h.service.GetEvent(r.Context(), id)
	if err != nil {
		response.ServiceError(w, r, err, "Failed to get event")
		return
	}

	response.JSON(w, http.StatusOK, event.ToDetailResponse(h.service.Now()))
}

// List handles GET /events
// @Summary      List events
// @Tags         events
// @Produce      json
// @Param        host_id query int false "Host user ID"
// @Param        category_id query int false "Category ID"
// @Param        city_id query int false "City ID"
// @Param        club_id query int false "Club ID"
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]EventResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /events [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := request.Pagination(r)

	var filter ListFilter
	for name, dst := range map[string]**int64{
		"host_id":     &filter.HostID,
		"category_id": &filter.CategoryID,
		"city_id":     &filter.CityID,
		"club_id":     &filter.ClubID,
	} {
		v, err := request.OptionalInt64Query(r, name)
		if err != nil {
			response.ServiceError(w, r, err, "Invalid "+name)
			return
		}
		*dst = v
	}

	events, total, err := h.service.ListEvents(r.Context(), filter, page, perPage)
	if err != nil {
		response.ServiceError(w, r, err, "Failed to list events")
		return
	}

	response.JSONWithMeta(w, http.StatusOK, h.toResponses(events), response.NewMeta(page, perPage, total))
}

// ListMine handles GET /events/me
// @Summary      List my events
// @Description  Events the caller hosts or joined
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=[]EventResponse}
// @Router       /events/me [get]
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.CallerID(w, r)
	if !ok {
		return
	}

	events, err := h.service.ListMyEvents(r.Context(), callerID)
	if err != nil {
		response.ServiceError(w, r, err, "Failed to list events")
		return
	}

	response.JSON(w, http.StatusOK, h.toResponses(events))
}

func (h *Handler) toResponses(events []*Event) []*EventResponse {
	now := h.service.Now()
	out := make([]*EventResponse, len(events))
	for i, e := range events {
		out[i] = e.ToResponse(now)
	}
	return out
}

// PutUpdate handles PUT /events/{id}
// @Summary      Replace an event
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Event ID"
// @Param        request body PutEventRequest true "Event"
// @Success      200 {object} response.APIResponse{data=EventResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /events/{id} [put]
func (h *Handler) PutUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := request.IDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid event ID")
		return
	}

	callerID, ok := middleware.CallerID(w, r)
	if !ok {
		return
	}

	var req PutEventRequest
	if err := request.Decode(r, &req); err != nil {
		response.ServiceError(w, r, err, "Invalid request body")
		return
	}

	event, err := h.service.PutUpdateEvent(r.Context(), id, callerID, &req)
	if err != nil {
		response.ServiceError(w, r, err, "Failed to update event")
		return
	}

	response.JSON(w, http.StatusOK, event.ToResponse(h.service.Now()))
}

// PatchUpdate handles PATCH /events/{id}
// @Summary      Update an event
// @Description  Partial update by the host. Null is rejected for every field.
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Event ID"
// @Param        request body PatchEventRequest true "Event patch"
// @Success      200 {object} response.APIResponse{data=EventResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /events/{id} [patch]
func (h *Handler) PatchUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := request.IDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid event ID")
		return
	}

	callerID, ok := middleware.CallerID(w, r)
	if !ok {
		return
	}

	var req PatchEventRequest
	if err := request.Decode(r, &req); err != nil {
		response.ServiceError(w, r, err, "Invalid request body")
		return
	}

	event, err := h.service.PatchUpdateEvent(r.Context(), id, callerID, &req)
	if err != nil {
		response.ServiceError(w, r, err, "Failed to update event")
		return
	}

	response.JSON(w, http.StatusOK, event.ToResponse(h.service.Now()))
}

// Delete handles DELETE /events/{id}
// @Summary      Delete an event
// @Description  Host only, before the event starts
// @Tags         events
// @Security     BearerAuth
// @Param        id path int true "Event ID"
// @Success      204
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /events/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := request.IDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid event ID")
		return
	}

	callerID, ok := middleware.CallerID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteEvent(r.Context(), id, callerID); err != nil {
		response.ServiceError(w, r, err, "Failed to delete event")
		return
	}

	response.NoContent(w)
}

// Join handles POST /events/{id}/join
// @Summary      Join an event
// @Tags         events
// @Security     BearerAuth
// @Param        id path int true "Event ID"
// @Success      204
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /events/{id}/join [post]
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	id, ok := request.IDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid event ID")
		return
	}

	callerID, ok := middleware.CallerID(w, r)
	if !ok {
		return
	}

	if err := h.service.JoinEvent(r.Context(), id, callerID); err != nil {
		response.ServiceError(w, r, err, "Failed to join event")
		return
	}

	response.NoContent(w)
}

// Out handles POST /events/{id}/out
// @Summary      Leave an event
// @Tags         events
// @Security     BearerAuth
// @Param        id path int true "Event ID"
// @Success      204
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /events/{id}/out [post]
func (h *Handler) Out(w http.ResponseWriter, r *http.Request) {
	id, ok := request.IDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid event ID")
		return
	}

	callerID, ok := middleware.CallerID(w, r)
	if !ok {
		return
	}

	if err := h.service.OutEvent(r.Context(), id, callerID); err != nil {
		response.ServiceError(w, r, err, "Failed to leave event")
		return
	}

	response.NoContent(w)
}
