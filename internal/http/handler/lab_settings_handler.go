package handler

import (
	"net/http"

	"github.com/meatlab/lims-api/internal/domain"
	"github.com/meatlab/lims-api/internal/service"
	"go.uber.org/zap"
)

type LabSettingsHandler struct {
	settingsService *service.LabSettingsService
	logger          *zap.Logger
}

func NewLabSettingsHandler(settingsService *service.LabSettingsService, logger *zap.Logger) *LabSettingsHandler {
	return &LabSettingsHandler{
		settingsService: settingsService,
		logger:          logger,
	}
}

// Get godoc
// @Summary Get lab settings
// @Description Letterhead used on every report. isDefault is true until an administrator saves settings.
// @Tags Settings
// @Produce json
// @Success 200 {object} domain.LabSettingsDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /settings [get]
func (h *LabSettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.Get(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get lab settings")
		return
	}

	respondJSON(w, http.StatusOK, settings)
}

// Update godoc
// @Summary Update lab settings
// @Tags Settings
// @Accept json
// @Produce json
// @Param request body domain.UpdateLabSettingsRequest true "Settings"
// @Success 200 {object} domain.LabSettingsDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /settings [put]
func (h *LabSettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateLabSettingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondInvalidBody(w)
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	settings, err := h.settingsService.Update(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update lab settings")
		return
	}

	respondJSON(w, http.StatusOK, settings)
}
