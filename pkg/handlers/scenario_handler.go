package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/collegeroi/roi-engine/pkg/apperrors"
	"github.com/collegeroi/roi-engine/pkg/jsonutil"
	"github.com/collegeroi/roi-engine/pkg/models"
	"github.com/collegeroi/roi-engine/pkg/services"
)

// ============================================================================
// Request/Response Types
// ============================================================================

// ComputeScenarioRequest for POST /api/scenarios/compute. Money overrides
// accept both JSON numbers and numeric strings; absent or null means "use the
// published default".
type ComputeScenarioRequest struct {
	UnitID          int    `json:"unit_id"`
	CIPCode         string `json:"cip_code"`
	CredentialLevel int    `json:"credential_level"`
	InState         bool   `json:"in_state"`

	HousingType string                 `json:"housing_type"`
	Roommates   int                    `json:"roommates"`
	RentMonthly jsonutil.FlexibleFloat `json:"rent_monthly"`
	LocationKey *string                `json:"location_key"`

	UtilitiesMonthly jsonutil.FlexibleFloat `json:"utilities_monthly"`
	FoodMonthly      jsonutil.FlexibleFloat `json:"food_monthly"`
	TransportMonthly jsonutil.FlexibleFloat `json:"transport_monthly"`
	MiscMonthly      jsonutil.FlexibleFloat `json:"misc_monthly"`
	BooksAnnual      jsonutil.FlexibleFloat `json:"books_annual"`

	AidAnnual  jsonutil.FlexibleFloat `json:"aid_annual"`
	CashAnnual jsonutil.FlexibleFloat `json:"cash_annual"`
	LoanAPR    jsonutil.FlexibleFloat `json:"loan_apr"`
	TaxRate    jsonutil.FlexibleFloat `json:"tax_rate"`

	RegionCode *string `json:"region_code"`
	Label      string  `json:"label"`
}

// Scenario converts the wire form into the service-level request.
func (req *ComputeScenarioRequest) Scenario() models.ScenarioRequest {
	return models.ScenarioRequest{
		UnitID:          req.UnitID,
		CIPCode:         req.CIPCode,
		CredentialLevel: req.CredentialLevel,
		InState:         req.InState,

		HousingType: req.HousingType,
		Roommates:   req.Roommates,
		RentMonthly: req.RentMonthly.Ptr(),
		LocationKey: req.LocationKey,

		UtilitiesMonthly: req.UtilitiesMonthly.Ptr(),
		FoodMonthly:      req.FoodMonthly.Ptr(),
		TransportMonthly: req.TransportMonthly.Ptr(),
		MiscMonthly:      req.MiscMonthly.Ptr(),
		BooksAnnual:      req.BooksAnnual.Ptr(),

		AidAnnual:  req.AidAnnual.Ptr(),
		CashAnnual: req.CashAnnual.Ptr(),
		LoanAPR:    req.LoanAPR.Ptr(),
		TaxRate:    req.TaxRate.Ptr(),

		RegionCode: req.RegionCode,
		Label:      req.Label,
	}
}

// CompareScenariosRequest for POST /api/scenarios/compare
type CompareScenariosRequest struct {
	Scenarios []ComputeScenarioRequest `json:"scenarios"`
}

// CompareScenariosResponse carries one outcome per scenario in input order.
type CompareScenariosResponse struct {
	Outcomes []models.ScenarioOutcome `json:"outcomes"`
	Total    int                      `json:"total"`
}

// ============================================================================
// Handler
// ============================================================================

// ScenarioHandler handles scenario computation HTTP requests.
type ScenarioHandler struct {
	scenarioService services.ScenarioService
	logger          *zap.Logger
}

// NewScenarioHandler creates a new scenario handler.
func NewScenarioHandler(scenarioService services.ScenarioService, logger *zap.Logger) *ScenarioHandler {
	return &ScenarioHandler{
		scenarioService: scenarioService,
		logger:          logger,
	}
}

// RegisterRoutes registers the scenario handler's routes on the given mux.
func (h *ScenarioHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/scenarios/compute", h.Compute)
	mux.HandleFunc("POST /api/scenarios/compare", h.Compare)
	mux.HandleFunc("GET /api/datasets/versions", h.DatasetVersions)
}

// Compute handles POST /api/scenarios/compute
func (h *ScenarioHandler) Compute(w http.ResponseWriter, r *http.Request) {
	var req ComputeScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	scenario := req.Scenario()
	result, err := h.scenarioService.Compute(r.Context(), &scenario)
	if err != nil {
		h.writeScenarioError(w, err, "compute_failed", "Scenario computation failed",
			zap.Int("unit_id", req.UnitID),
			zap.String("cip_code", req.CIPCode))
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: result}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Compare handles POST /api/scenarios/compare
func (h *ScenarioHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req CompareScenariosRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	scenarios := make([]models.ScenarioRequest, len(req.Scenarios))
	for i := range req.Scenarios {
		scenarios[i] = req.Scenarios[i].Scenario()
	}

	outcomes, err := h.scenarioService.Compare(r.Context(), scenarios)
	if err != nil {
		h.writeScenarioError(w, err, "compare_failed", "Scenario comparison failed",
			zap.Int("scenario_count", len(req.Scenarios)))
		return
	}

	response := CompareScenariosResponse{
		Outcomes: outcomes,
		Total:    len(outcomes),
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// DatasetVersions handles GET /api/datasets/versions
func (h *ScenarioHandler) DatasetVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := h.scenarioService.DatasetVersions(r.Context())
	if err != nil {
		h.logger.Error("Failed to get dataset versions", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "dataset_versions_failed", "Dataset versions could not be read"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: versions}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// writeScenarioError maps a service error onto the HTTP contract: validation
// 400, unknown reference keys 404, everything else a generic 500 with the
// detail kept in the logs.
func (h *ScenarioHandler) writeScenarioError(w http.ResponseWriter, err error, failCode, failMessage string, fields ...zap.Field) {
	switch {
	case apperrors.IsValidation(err):
		if err := ErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
	case errors.Is(err, apperrors.ErrNotFound):
		if err := ErrorResponse(w, http.StatusNotFound, "not_found", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
	default:
		h.logger.Error("Scenario request failed", append(fields, zap.Error(err))...)
		if err := ErrorResponse(w, http.StatusInternalServerError, failCode, failMessage); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
	}
}
