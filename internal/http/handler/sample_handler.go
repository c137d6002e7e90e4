package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meatlab/lims-api/internal/domain"
	"github.com/meatlab/lims-api/internal/report"
	"github.com/meatlab/lims-api/internal/repository"
	"github.com/meatlab/lims-api/internal/service"
	"go.uber.org/zap"
)

type SampleHandler struct {
	sampleService *service.SampleService
	resultService *service.TestResultService
	reportService *service.ReportService
	logger        *zap.Logger
}

func NewSampleHandler(
	sampleService *service.SampleService,
	resultService *service.TestResultService,
	reportService *service.ReportService,
	logger *zap.Logger,
) *SampleHandler {
	return &SampleHandler{
		sampleService: sampleService,
		resultService: resultService,
		reportService: reportService,
		logger:        logger,
	}
}

func (h *SampleHandler) sampleID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid sample ID format",
		})
		return uuid.Nil, false
	}
	return id, true
}

// List godoc
// @Summary List samples
// @Description Paginated samples, newest received first by default
// @Tags Samples
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by sample code, type or source"
// @Param status query string false "Filter by status" Enums(pending, completed)
// @Param clientId query string false "Filter by client" format(uuid)
// @Param sortBy query string false "Sort field" Enums(createdAt, updatedAt, receivedDate, collectionDate, sampleCode, sampleType, status)
// @Param sortOrder query string false "Sort order" Enums(asc, desc)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.SampleDTO}
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /samples [get]
func (h *SampleHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	filters := &repository.SampleFilters{Search: r.URL.Query().Get("search")}

	if status := r.URL.Query().Get("status"); status != "" {
		s := domain.SampleStatus(status)
		if !s.IsValid() {
			respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
				Error:   "Bad Request",
				Message: "status must be pending or completed",
			})
			return
		}
		filters.Status = &s
	}

	if clientID := r.URL.Query().Get("clientId"); clientID != "" {
		id, err := uuid.Parse(clientID)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
				Error:   "Bad Request",
				Message: "Invalid client ID format",
			})
			return
		}
		filters.ClientID = &id
	}

	result, err := h.sampleService.List(r.Context(), page, pageSize, filters, parseSortConfig(r))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list samples")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Types godoc
// @Summary List sample types
// @Description The sample types offered by the intake form
// @Tags Samples
// @Produce json
// @Success 200 {array} string
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /samples/types [get]
func (h *SampleHandler) Types(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.sampleService.SampleTypes())
}

// GetByID godoc
// @Summary Get sample by ID
// @Tags Samples
// @Produce json
// @Param id path string true "Sample ID" format(uuid)
// @Success 200 {object} domain.SampleWithDetailsDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /samples/{id} [get]
func (h *SampleHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sampleID(w, r)
	if !ok {
		return
	}

	sample, err := h.sampleService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get sample")
		return
	}

	respondJSON(w, http.StatusOK, sample)
}

// Create godoc
// @Summary Register sample
// @Description Register a received sample. A code is generated when none is given.
// @Tags Samples
// @Accept json
// @Produce json
// @Param request body domain.CreateSampleRequest true "Sample data"
// @Success 201 {object} domain.SampleWithDetailsDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /samples [post]
func (h *SampleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateSampleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondInvalidBody(w)
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	sample, err := h.sampleService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create sample")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/samples/%s", sample.ID))
	respondJSON(w, http.StatusCreated, sample)
}

// Update godoc
// @Summary Update sample
// @Tags Samples
// @Accept json
// @Produce json
// @Param id path string true "Sample ID" format(uuid)
// @Param request body domain.UpdateSampleRequest true "Sample data"
// @Success 200 {object} domain.SampleWithDetailsDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /samples/{id} [put]
func (h *SampleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sampleID(w, r)
	if !ok {
		return
	}

	var req domain.UpdateSampleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondInvalidBody(w)
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	sample, err := h.sampleService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update sample")
		return
	}

	respondJSON(w, http.StatusOK, sample)
}

// Delete godoc
// @Summary Delete sample
// @Description Deletes the sample together with its result and reports
// @Tags Samples
// @Param id path string true "Sample ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /samples/{id} [delete]
func (h *SampleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sampleID(w, r)
	if !ok {
		return
	}

	if err := h.sampleService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete sample")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BulkDelete godoc
// @Summary Bulk delete samples
// @Description Administrators may wipe all, pending or completed samples
// @Tags Samples
// @Accept json
// @Produce json
// @Param request body domain.BulkDeleteSamplesRequest true "Scope"
// @Success 200 {object} domain.BulkDeleteResultDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /samples/bulk-delete [post]
func (h *SampleHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req domain.BulkDeleteSamplesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondInvalidBody(w)
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	result, err := h.sampleService.BulkDelete(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete samples")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetResult godoc
// @Summary Get test result
// @Tags Test Results
// @Produce json
// @Param id path string true "Sample ID" format(uuid)
// @Success 200 {object} domain.TestResultDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /samples/{id}/result [get]
func (h *SampleHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sampleID(w, r)
	if !ok {
		return
	}

	result, err := h.resultService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get test result")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// SaveResult godoc
// @Summary Record test result
// @Description Creates or replaces the sample's result and marks the sample completed
// @Tags Test Results
// @Accept json
// @Produce json
// @Param id path string true "Sample ID" format(uuid)
// @Param request body domain.UpsertTestResultRequest true "Result data"
// @Success 200 {object} domain.TestResultDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /samples/{id}/result [put]
func (h *SampleHandler) SaveResult(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sampleID(w, r)
	if !ok {
		return
	}

	var req domain.UpsertTestResultRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondInvalidBody(w)
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	result, err := h.resultService.Save(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to save test result")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GenerateReport godoc
// @Summary Generate sample report
// @Description Renders the PDF report for a sample. Download records the report in the history; print returns an auto printing document inline.
// @Tags Reports
// @Produce application/pdf
// @Param id path string true "Sample ID" format(uuid)
// @Param action query string false "Delivery" Enums(download, print) default(download)
// @Success 200 {file} file
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /samples/{id}/report [get]
func (h *SampleHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sampleID(w, r)
	if !ok {
		return
	}

	action, err := report.ParseAction(r.URL.Query().Get("action"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: err.Error(),
		})
		return
	}

	rendered, err := h.reportService.Generate(r.Context(), id, report.Options{Action: action})
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to generate report")
		return
	}

	if rendered.Report != nil {
		w.Header().Set("X-Report-ID", rendered.Report.ID.String())
	}
	writePDF(w, rendered)
}
