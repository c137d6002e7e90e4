package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/meatlab/lims-api/internal/domain"
	"github.com/meatlab/lims-api/internal/repository"
	"github.com/meatlab/lims-api/internal/service"
	"go.uber.org/zap"
)

var validate = validator.New()

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// decodeJSON reads a size limited JSON body into target
func decodeJSON(w http.ResponseWriter, r *http.Request, target interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(target)
}

// respondInvalidBody sends the standard response for an undecodable body
func respondInvalidBody(w http.ResponseWriter) {
	respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
		Error:   "Bad Request",
		Message: "Invalid request body",
	})
}

// respondValidationError sends a standardized validation error response with specific field messages
func respondValidationError(w http.ResponseWriter, err error) {
	errs := make(map[string]string)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			errs[toJSONFieldName(fe.Field())] = formatValidationError(fe)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(domain.APIError{
		Type:   domain.ErrorTypeValidation,
		Title:  "Validation Error",
		Status: http.StatusBadRequest,
		Detail: "One or more fields failed validation",
		Errors: errs,
	})
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", toJSONFieldName(fe.Field()))
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("Must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", fe.Param())
	default:
		return domain.GetValidationMessage(fe.Tag())
	}
}

// toJSONFieldName converts a Go struct field name to its JSON equivalent (camelCase)
func toJSONFieldName(field string) string {
	if len(field) == 0 {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// respondWithError sends a standardized JSON problem response
func respondWithError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.APIError{
		Type:   getErrorType(status),
		Title:  http.StatusText(status),
		Status: status,
		Detail: message,
	})
}

// getErrorType returns the appropriate error type for an HTTP status code
func getErrorType(status int) string {
	switch status {
	case http.StatusBadRequest:
		return domain.ErrorTypeBadRequest
	case http.StatusUnauthorized:
		return domain.ErrorTypeUnauthorized
	case http.StatusForbidden:
		return domain.ErrorTypeForbidden
	case http.StatusNotFound:
		return domain.ErrorTypeNotFound
	case http.StatusConflict:
		return domain.ErrorTypeConflict
	default:
		return domain.ErrorTypeInternal
	}
}

// serviceErrorStatus maps service sentinels to HTTP statuses
var serviceErrorStatus = []struct {
	err    error
	status int
}{
	{service.ErrClientNotFound, http.StatusNotFound},
	{service.ErrSampleNotFound, http.StatusNotFound},
	{service.ErrTestResultNotFound, http.StatusNotFound},
	{service.ErrReportNotFound, http.StatusNotFound},
	{service.ErrProfileNotFound, http.StatusNotFound},
	{service.ErrDuplicateSampleCode, http.StatusConflict},
	{service.ErrCannotRemoveLastAdmin, http.StatusConflict},
	{service.ErrInvalidInput, http.StatusBadRequest},
	{service.ErrInvalidCustomData, http.StatusBadRequest},
	{service.ErrInvalidReportRequest, http.StatusBadRequest},
	{service.ErrInvalidRole, http.StatusBadRequest},
	{service.ErrPermissionDenied, http.StatusForbidden},
}

// respondServiceError translates a service error into a response. Unknown
// errors are logged and reported as 500 with the given fallback message.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error, fallback string) {
	for _, m := range serviceErrorStatus {
		if errors.Is(err, m.err) {
			respondJSON(w, m.status, domain.ErrorResponse{
				Error:   http.StatusText(m.status),
				Message: err.Error(),
			})
			return
		}
	}

	logger.Error(strings.ToLower(fallback), zap.Error(err))
	respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
		Error:   "Internal Server Error",
		Message: fallback,
	})
}

// parsePagination reads page and pageSize, defaulting to the first page of 20
func parsePagination(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = repository.DefaultPageSize
	}
	return page, pageSize
}

// parseSortConfig reads sortBy and sortOrder query parameters
func parseSortConfig(r *http.Request) repository.SortConfig {
	return repository.SortConfig{
		Field: r.URL.Query().Get("sortBy"),
		Order: repository.ParseSortOrder(r.URL.Query().Get("sortOrder")),
	}
}
