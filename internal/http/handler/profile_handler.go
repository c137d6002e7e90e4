package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meatlab/lims-api/internal/domain"
	"github.com/meatlab/lims-api/internal/service"
	"go.uber.org/zap"
)

type ProfileHandler struct {
	profileService *service.ProfileService
	logger         *zap.Logger
}

func NewProfileHandler(profileService *service.ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		logger:         logger,
	}
}

// Me godoc
// @Summary Get current user
// @Description Profile and role of the authenticated caller
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.ProfileDTO
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /auth/me [get]
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profileService.Me(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get current user")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// List godoc
// @Summary List profiles
// @Tags Profiles
// @Produce json
// @Success 200 {array} domain.ProfileDTO
// @Failure 403 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /profiles [get]
func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.profileService.List(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list profiles")
		return
	}

	respondJSON(w, http.StatusOK, profiles)
}

// Analysts godoc
// @Summary List analysts
// @Description Profiles that can be assigned to samples
// @Tags Profiles
// @Produce json
// @Success 200 {array} domain.ProfileDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /profiles/analysts [get]
func (h *ProfileHandler) Analysts(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.profileService.Analysts(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list analysts")
		return
	}

	respondJSON(w, http.StatusOK, profiles)
}

// UpdateRole godoc
// @Summary Change profile role
// @Tags Profiles
// @Accept json
// @Produce json
// @Param id path string true "Profile ID" format(uuid)
// @Param request body domain.UpdateProfileRoleRequest true "Role"
// @Success 200 {object} domain.ProfileDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /profiles/{id}/role [put]
func (h *ProfileHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid profile ID format",
		})
		return
	}

	var req domain.UpdateProfileRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondInvalidBody(w)
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	profile, err := h.profileService.UpdateRole(r.Context(), id, req.Role)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update role")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}
