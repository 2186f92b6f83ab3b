package region

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/meetup/pkg/response"
)

// Handler handles HTTP requests for the region catalogs
type Handler struct {
	service *Service
}

// NewHandler creates a new region handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CategoryRoutes returns the router for category endpoints
func (h *Handler) CategoryRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListCategories)
	return r
}

// CityRoutes returns the router for city endpoints
func (h *Handler) CityRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListCities)
	return r
}

// ListCategories handles GET /categories
// @Summary      List categories
// @Tags         regions
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]CategoryResponse}
// @Router       /categories [get]
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		response.ServiceError(w, r, err, "Failed to list categories")
		return
	}

	out := make([]*CategoryResponse, len(categories))
	for i, c := range categories {
		out[i] = c.ToResponse()
	}
	response.JSON(w, http.StatusOK, out)
}

// ListCities handles GET /cities
// @Summary      List cities
// @Tags         regions
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]CityResponse}
// @Router       /cities [get]
func (h *Handler) ListCities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.service.ListCities(r.Context())
	if err != nil {
		response.ServiceError(w, r, err, "Failed to list cities")
		return
	}

	out := make([]*CityResponse, len(cities))
	for i, c := range cities {
		out[i] = c.ToResponse()
	}
	response.JSON(w, http.StatusOK, out)
}
