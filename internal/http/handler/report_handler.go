package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meatlab/lims-api/internal/domain"
	"github.com/meatlab/lims-api/internal/report"
	"github.com/meatlab/lims-api/internal/repository"
	"github.com/meatlab/lims-api/internal/service"
	"go.uber.org/zap"
)

type ReportHandler struct {
	reportService *service.ReportService
	logger        *zap.Logger
}

func NewReportHandler(reportService *service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// writePDF streams a rendered report. Downloads are sent as attachments,
// print documents inline so the browser opens its print dialog.
func writePDF(w http.ResponseWriter, rendered *service.RenderedReport) {
	disposition := "attachment"
	if rendered.Action == report.ActionPrint {
		disposition = "inline"
	}
	w.Header().Set("Content-Type", rendered.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, rendered.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(rendered.Data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rendered.Data)
}

func (h *ReportHandler) reportID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid report ID format",
		})
		return uuid.Nil, false
	}
	return id, true
}

// List godoc
// @Summary List reports
// @Description Report history, newest first. The window limits results to reports generated today, in the last 7 days or in the last month.
// @Tags Reports
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by sample code, type or source"
// @Param window query string false "Date window" Enums(today, week, month)
// @Param sampleId query string false "Filter by sample" format(uuid)
// @Param clientId query string false "Filter by client" format(uuid)
// @Param sortBy query string false "Sort field" Enums(dateGenerated, createdAt, reportType, sampleCode)
// @Param sortOrder query string false "Sort order" Enums(asc, desc)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ReportDTO}
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /reports [get]
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	q := r.URL.Query()

	filters := &repository.ReportFilters{Search: q.Get("search")}

	switch window := repository.DateWindow(q.Get("window")); window {
	case repository.DateWindowAll, repository.DateWindowToday, repository.DateWindowWeek, repository.DateWindowMonth:
		filters.Window = window
	default:
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "window must be today, week or month",
		})
		return
	}

	for param, dst := range map[string]**uuid.UUID{"sampleId": &filters.SampleID, "clientId": &filters.ClientID} {
		raw := q.Get(param)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
				Error:   "Bad Request",
				Message: fmt.Sprintf("Invalid %s format", param),
			})
			return
		}
		*dst = &id
	}

	result, err := h.reportService.List(r.Context(), page, pageSize, filters, parseSortConfig(r))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list reports")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get report
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID" format(uuid)
// @Success 200 {object} domain.ReportDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /reports/{id} [get]
func (h *ReportHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.reportID(w, r)
	if !ok {
		return
	}

	dto, err := h.reportService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get report")
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

// Create godoc
// @Summary Create report
// @Description Runs the report creation form: the sample is matched by code or created, its result replaced, and the report recorded.
// @Tags Reports
// @Accept json
// @Produce json
// @Param request body domain.CreateReportRequest true "Report form"
// @Success 201 {object} domain.ReportDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /reports [post]
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateReportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondInvalidBody(w)
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.reportService.CreateReport(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create report")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/reports/%s", dto.ID))
	respondJSON(w, http.StatusCreated, dto)
}

// Download godoc
// @Summary Download report PDF
// @Description Returns the archived PDF when available, otherwise renders the sample again
// @Tags Reports
// @Produce application/pdf
// @Param id path string true "Report ID" format(uuid)
// @Param action query string false "Delivery" Enums(download, print) default(download)
// @Success 200 {file} file
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /reports/{id}/pdf [get]
func (h *ReportHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := h.reportID(w, r)
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

	rendered, err := h.reportService.Download(r.Context(), id, action)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to download report")
		return
	}

	writePDF(w, rendered)
}

// Delete godoc
// @Summary Delete report
// @Description Removes the report from the history. The sample is kept.
// @Tags Reports
// @Param id path string true "Report ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /reports/{id} [delete]
func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.reportID(w, r)
	if !ok {
		return
	}

	if err := h.reportService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete report")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Template godoc
// @Summary Get report form template
// @Description Prefilled custom data for a report type
// @Tags Reports
// @Produce json
// @Param type query string true "Report type" Enums(meat, air, water, foodhandler, foodsurface, deboning)
// @Success 200 {object} object
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /reports/templates [get]
func (h *ReportHandler) Template(w http.ResponseWriter, r *http.Request) {
	tmpl, err := h.reportService.Template(domain.ReportType(r.URL.Query().Get("type")))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to load template")
		return
	}

	respondJSON(w, http.StatusOK, tmpl)
}
