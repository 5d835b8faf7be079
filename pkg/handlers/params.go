package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// ParseUnitID extracts and validates the IPEDS unit ID from the request path.
// Returns the parsed ID and true on success, or 0 and false on error (after
// writing an error response).
// Expects path parameter: unitID
func ParseUnitID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (int, bool) {
	idStr := r.PathValue("unitID")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_unit_id", "Invalid unit ID format"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return 0, false
	}
	return id, true
}
