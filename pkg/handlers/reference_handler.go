package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/collegeroi/roi-engine/pkg/apperrors"
	"github.com/collegeroi/roi-engine/pkg/models"
	"github.com/collegeroi/roi-engine/pkg/services"
)

// ============================================================================
// Response Types
// ============================================================================

// InstitutionListResponse for GET /api/institutions
type InstitutionListResponse struct {
	Institutions []*models.Institution `json:"institutions"`
	Total        int                   `json:"total"`
}

// ProgramSummary is a program row plus its CIP family name for pick-lists.
type ProgramSummary struct {
	*models.Program
	Category string `json:"category"`
}

// ProgramListResponse for GET /api/institutions/{unitID}/programs
type ProgramListResponse struct {
	Programs []ProgramSummary `json:"programs"`
	Total    int              `json:"total"`
}

// RegionListResponse for GET /api/regions
type RegionListResponse struct {
	Regions []*models.Region `json:"regions"`
	Total   int              `json:"total"`
}

// ============================================================================
// Handler
// ============================================================================

// searchLimit caps institution search results per request.
const searchLimit = 50

// ReferenceHandler serves the read-only browse endpoints the planner uses to
// build its pick-lists. Thin pass-through over the reference store; no
// computation happens here.
type ReferenceHandler struct {
	store  services.ReferenceStore
	logger *zap.Logger
}

// NewReferenceHandler creates a new reference browse handler.
func NewReferenceHandler(store services.ReferenceStore, logger *zap.Logger) *ReferenceHandler {
	return &ReferenceHandler{
		store:  store,
		logger: logger,
	}
}

// RegisterRoutes registers the reference handler's routes on the given mux.
func (h *ReferenceHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/institutions", h.SearchInstitutions)
	mux.HandleFunc("GET /api/institutions/{unitID}", h.GetInstitution)
	mux.HandleFunc("GET /api/institutions/{unitID}/programs", h.ListPrograms)
	mux.HandleFunc("GET /api/regions", h.ListRegions)
}

// SearchInstitutions handles GET /api/institutions?state=CA&q=berk
func (h *ReferenceHandler) SearchInstitutions(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	query := r.URL.Query().Get("q")

	institutions, err := h.store.Institutions.Search(r.Context(), state, query, searchLimit)
	if err != nil {
		h.logger.Error("Failed to search institutions",
			zap.String("state", state),
			zap.String("query", query),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "search_institutions_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := InstitutionListResponse{
		Institutions: institutions,
		Total:        len(institutions),
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// GetInstitution handles GET /api/institutions/{unitID}
func (h *ReferenceHandler) GetInstitution(w http.ResponseWriter, r *http.Request) {
	unitID, ok := ParseUnitID(w, r, h.logger)
	if !ok {
		return
	}

	institution, err := h.store.Institutions.GetByUnitID(r.Context(), unitID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "institution_not_found", "Institution not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}

		h.logger.Error("Failed to get institution",
			zap.Int("unit_id", unitID),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "get_institution_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: institution}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListPrograms handles GET /api/institutions/{unitID}/programs
func (h *ReferenceHandler) ListPrograms(w http.ResponseWriter, r *http.Request) {
	unitID, ok := ParseUnitID(w, r, h.logger)
	if !ok {
		return
	}

	if _, err := h.store.Institutions.GetByUnitID(r.Context(), unitID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "institution_not_found", "Institution not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}

		h.logger.Error("Failed to get institution",
			zap.Int("unit_id", unitID),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "get_institution_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	programs, err := h.store.Programs.ListByInstitution(r.Context(), unitID)
	if err != nil {
		h.logger.Error("Failed to list programs",
			zap.Int("unit_id", unitID),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "list_programs_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	summaries := make([]ProgramSummary, len(programs))
	for i, program := range programs {
		summaries[i] = ProgramSummary{
			Program:  program,
			Category: models.CIPFamily(program.CIPCode),
		}
	}

	response := ProgramListResponse{
		Programs: summaries,
		Total:    len(summaries),
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListRegions handles GET /api/regions
func (h *ReferenceHandler) ListRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := h.store.Regions.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list regions", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "list_regions_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := RegionListResponse{
		Regions: regions,
		Total:   len(regions),
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
