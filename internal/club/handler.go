package club

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/meetup/pkg/middleware"
	"github.com/fkhayef/meetup/pkg/request"
	"github.com/fkhayef/meetup/pkg/response"
)

// Handler handles HTTP requests for club operations
type Handler struct {
	service *Service
}

// NewHandler creates a new club handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for club endpoints
func (h *Handler) Routes(requireAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Get("/{id}/members", h.ListMembers)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", h.Create)
		r.Patch("/{id}", h.PatchUpdate)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/join", h.Join)
		r.Post("/{id}/approve", h.Decide)
		r.Post("/{id}/out", h.Out)
		r.Get("/{id}/waiting", h.WaitingList)
		r.Get("/{id}/membership", h.Membership)
		r.Put("/{id}/lead", h.ChangeLead)
	})

	return r
}

// Create handles POST /clubs
// @Summary      Create a club
// @Description  The caller becomes the lead and first member
// @Tags         clubs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateClubRequest true "Club creation request"
// @Success      201 {object} response.APIResponse{data=ClubResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Router       /clubs [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.CallerID(w, r)
	if !ok {
		return
	}

	var req CreateClubRequest
	if err := request.Decode(r, &req); err != nil {
		response.ServiceError(w, r, err, "Invalid request body")
		return
	}

	club, err := h.service.CreateClub(r.Context(), callerID, &req)
	if err != nil {
		response.ServiceError(w, r, err, "Failed to create club")
		return
	}

	response.JSON(w, http.StatusCreated, club.ToResponse())
}

// GetByID handles GET /clubs/{id}
// @Summary      Get club by ID
// @Tags         clubs
// @Produce      json
// @Param        id path int true "Club ID"
// @Success      200 {object} response.APIResponse{data=ClubResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /clubs/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := request.IDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid club ID")
		return
	}

	club, err := h.service.GetClub(r.Context(), id)
	if err != nil {
		response.ServiceError(w, r, err, "Failed to get club")
		return
	}

	response.JSON(w, http.StatusOK, club.ToResponse())
}

// List handles GET /clubs
// @Summary      List clubs
// @Description  Paginated list of active clubs, optionally filtered by lead
// @Tags         clubs
// @Produce      json
// @Param        lead_id query int false "Lead user ID"
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]ClubResponse}
// @Router       /clubs [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := request.Pagination(r)

	leadID, err := request.OptionalInt64Query(r, "lead_id")
	if err != nil {
		response.ServiceError(w, r, err, "Invalid lead_id")
		return
	}

	clubs, total, err := h.service.ListClubs(r.Context(), ListFilter{LeadID: leadID}, page, perPage)
	if err != nil {
		response.ServiceError(w, r, err, "Failed to list clubs")
		return
	}

	out := make([]*ClubResponse, len(clubs))
	for i, c := range clubs {
		out[i] = c.ToResponse()
	}

	response.JSONWithMeta(w, http.StatusOK, out, response.NewMeta(page, perPage, total))
}

// ListMembers handles GET /clubs/{id}/members
// @Summary      List club members
// @Tags         clubs
// @Produce      json
// @Param        id path int true "Club ID"
// @Success      200 {object} response.APIResponse{data=[]MemberResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /clubs/{id}/members [get]
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := request.IDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid club ID")
		return
	}

	members, err := h.service.ListMembers(r.Context(), id)
	if err != nil {
		response.ServiceError(w, r, err, "Failed to list members")
		return
	}

	out := make([]*MemberResponse, len(members))
	for i, m := range members {
		out[i] = m.ToResponse()
	}
	response.JSON(w, http.StatusOK, out)
}

// PatchUpdate handles PATCH /clubs/{id}
// @Summary      Update a club
// @Description  Partial update by the lead. Null is rejected for every field.
// @Tags         clubs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Club ID"
// @Param        request body PatchClubRequest true "Club patch request"
// @Success      200 {object} response.APIResponse{data=ClubResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /clubs/{id} [patch]
func (h *Handler) PatchUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := request.IDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid club ID")
		return
	}

	callerID, ok := middleware.CallerID(w, r)
	if !ok {
		return
	}

	var req PatchClubRequest
	if err := request.Decode(r, &req); err != nil {
		response.ServiceError(w, r, err, "Invalid request body")
		return
	}

	club, err := h.service.PatchUpdateClub(r.Context(), id, callerID, &req)
	if err != nil {
		response.ServiceError(w, r, err, "Failed to update club")
		return
	}

	response.JSON(w, http.StatusOK, club.ToResponse())
}

// Delete handles DELETE /clubs/{id}
// @Summary      Delete a club
// @Description  Soft-deletes the club and removes its upcoming events. Lead only.
// @Tags         clubs
// @Security     BearerAuth
// @Param        id path int true "Club ID"
// @Success      204
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /clubs/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := request.IDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid club ID")
		return
	}

	callerID, ok := middleware.CallerID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteClub(r.Context(), id, callerID); err != nil {
		response.ServiceError(w, r, err, "Failed to delete club")
		return
	}

	response.NoContent(w)
}

// Join handles POST /clubs/{id}/join
// @Summary      Request to join a club
// @Description  Files a PENDING request for the lead to decide
// @Tags         clubs
// @Security     BearerAuth
// @Param        id path int true "Club ID"
// @Success      204
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /clubs/{id}/join [post]
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	id, ok := request.IDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid club ID")
		return
	}

	callerID, ok := middleware.CallerID(w, r)
	if !ok {
		return
	}

	if err := h.service.JoinClub(r.Context(), id, callerID); err != nil {
		response.ServiceError(w, r, err, "Failed to join club")
		return
	}

	response.NoContent(w)
}

// Decide handles POST /clubs/{id}/approve
// @Summary      Approve or reject a join request
// @Description  Lead only. Rejection is permanent for that user.
// @Tags         clubs
// @Accept       json
// @Security     BearerAuth
// @Param        id path int true "Club ID"
// @Param        request body DecideJoinRequest true "Decision"
// @Success      204
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /clubs/{id}/approve [post]
func (h *Handler) Decide(w http.ResponseWriter, r *http.Request) {
	id, ok := request.IDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid club ID")
		return
	}

	callerID, ok := middleware.CallerID(w, r)
	if !ok {
		return
	}

	var req DecideJoinRequest
	if err := request.Decode(r, &req); err != nil {
		response.ServiceError(w, r, err, "Invalid request body")
		return
	}

	if err := h.service.DecideClubJoin(r.Context(), id, callerID, req.UserID, req.Decision); err != nil {
		response.ServiceError(w, r, err, "Failed to decide join request")
		return
	}

	response.NoContent(w)
}

// Out handles POST /clubs/{id}/out
// @Summary      Leave a club
// @Description  Hosted events in the club are deleted and joined ones are left
// @Tags         clubs
// @Security     BearerAuth
// @Param        id path int true "Club ID"
// @Success      204
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /clubs/{id}/out [post]
func (h *Handler) Out(w http.ResponseWriter, r *http.Request) {
	id, ok := request.IDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid club ID")
		return
	}

	callerID, ok := middleware.CallerID(w, r)
	if !ok {
		return
	}

	if err := h.service.OutClub(r.Context(), id, callerID); err != nil {
		response.ServiceError(w, r, err, "Failed to leave club")
		return
	}

	response.NoContent(w)
}

// WaitingList handles GET /clubs/{id}/waiting
// @Summary      List pending join requests
// @Tags         clubs
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Club ID"
// @Success      200 {object} response.APIResponse{data=[]WaitingResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /clubs/{id}/waiting [get]
func (h *Handler) WaitingList(w http.ResponseWriter, r *http.Request) {
	id, ok := request.IDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid club ID")
		return
	}

	callerID, ok := middleware.CallerID(w, r)
	if !ok {
		return
	}

	entries, err := h.service.GetWaitingList(r.Context(), id, callerID)
	if err != nil {
		response.ServiceError(w, r, err, "Failed to list join requests")
		return
	}

	out := make([]*WaitingResponse, len(entries))
	for i, e := range entries {
		out[i] = e.ToResponse()
	}
	response.JSON(w, http.StatusOK, out)
}

// Membership handles GET /clubs/{id}/membership
// @Summary      Get my membership state
// @Tags         clubs
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Club ID"
// @Success      200 {object} response.APIResponse{data=MembershipResponse}
// @Router       /clubs/{id}/membership [get]
func (h *Handler) Membership(w http.ResponseWriter, r *http.Request) {
	id, ok := request.IDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid club ID")
		return
	}

	callerID, ok := middleware.CallerID(w, r)
	if !ok {
		return
	}

	state, err := h.service.MembershipState(r.Context(), id, callerID)
	if err != nil {
		response.ServiceError(w, r, err, "Failed to get membership")
		return
	}

	response.JSON(w, http.StatusOK, &MembershipResponse{ClubID: id, UserID: callerID, State: state})
}

// ChangeLead handles PUT /clubs/{id}/lead
// @Summary      Hand the club to another member
// @Tags         clubs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Club ID"
// @Param        request body ChangeLeadRequest true "New lead"
// @Success      200 {object} response.APIResponse{data=ClubResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /clubs/{id}/lead [put]
func (h *Handler) ChangeLead(w http.ResponseWriter, r *http.Request) {
	id, ok := request.IDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid club ID")
		return
	}

	callerID, ok := middleware.CallerID(w, r)
	if !ok {
		return
	}

	var req ChangeLeadRequest
	if err := request.Decode(r, &req); err != nil {
		response.ServiceError(w, r, err, "Invalid request body")
		return
	}

	club, err := h.service.ChangeClubLead(r.Context(), id, callerID, req.UserID)
	if err != nil {
		response.ServiceError(w, r, err, "Failed to change lead")
		return
	}

	response.JSON(w, http.StatusOK, club.ToResponse())
}
