package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"maizecast/internal/core"
	"maizecast/internal/reference"
	"maizecast/internal/types"
)

// ReferenceHandler serves the static agronomic reference data. Everything
// here is compiled in; no request touches the database or the model service.
type ReferenceHandler struct{}

// NewReferenceHandler creates a ReferenceHandler.
func NewReferenceHandler() *ReferenceHandler {
	return &ReferenceHandler{}
}

// RegisterRoutes mounts the reference routes on the provided chi.Router.
func (h *ReferenceHandler) RegisterRoutes(r chi.Router) {
	r.Route("/reference", func(r chi.Router) {
		r.Get("/districts", h.Districts)
		r.Get("/soils", h.Soils)
		r.Get("/ranges", h.Ranges)
		r.Get("/statistics", h.Statistics)
		r.Get("/practices", h.Practices)
	})
}

// DistrictsResponse is the body for GET /v1/reference/districts.
type DistrictsResponse struct {
	Districts []reference.DistrictInfo `json:"districts"`
	Count     int                      `json:"count"`
}

// Districts handles GET /v1/reference/districts.
func (h *ReferenceHandler) Districts(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, r, http.StatusOK, core.APIResponse{
		Data: DistrictsResponse{
			Districts: reference.DistrictDirectory,
			Count:     len(reference.DistrictDirectory),
		},
	})
}

// SoilsResponse is the body for GET /v1/reference/soils.
type SoilsResponse struct {
	Soils []reference.SoilProfile `json:"soils"`
	Count int                     `json:"count"`
}

// Soils handles GET /v1/reference/soils.
func (h *ReferenceHandler) Soils(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, r, http.StatusOK, core.APIResponse{
		Data: SoilsResponse{
			Soils: reference.SoilProfiles,
			Count: len(reference.SoilProfiles),
		},
	})
}

// RangesResponse pairs the hard validation bounds with the advisory bands.
type RangesResponse struct {
	Validation []types.FieldRange        `json:"validation"`
	Advisory   reference.ParameterRanges `json:"advisory"`
}

// Ranges handles GET /v1/reference/ranges.
func (h *ReferenceHandler) Ranges(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, r, http.StatusOK, core.APIResponse{
		Data: RangesResponse{
			Validation: types.InputRanges,
			Advisory:   reference.AdvisoryRanges,
		},
	})
}

// Statistics handles GET /v1/reference/statistics.
func (h *ReferenceHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: reference.HistoricalStats})
}

// Practices handles GET /v1/reference/practices.
func (h *ReferenceHandler) Practices(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: reference.Guidance})
}
