package service

import (
	"errors"
	"strings"
)

// Common service errors
var (
	// ErrPermissionDenied is returned when a user doesn't have permission for an action
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrClientNotFound is returned when a client is not found
	ErrClientNotFound = errors.New("client not found")

	// ErrSampleNotFound is returned when a sample is not found
	ErrSampleNotFound = errors.New("sample not found")

	// ErrDuplicateSampleCode is returned when a sample code is already taken
	ErrDuplicateSampleCode = errors.New("sample with this code already exists")

	// ErrTestResultNotFound is returned when a sample has no recorded result
	ErrTestResultNotFound = errors.New("test result not found")

	// ErrInvalidCustomData is returned when custom data does not match the report type
	ErrInvalidCustomData = errors.New("invalid custom data")

	// ErrReportNotFound is returned when a report is not found
	ErrReportNotFound = errors.New("report not found")

	// ErrInvalidReportRequest is returned when a report form is incomplete
	ErrInvalidReportRequest = errors.New("invalid report request")

	// ErrProfileNotFound is returned when a profile is not found
	ErrProfileNotFound = errors.New("profile not found")

	// ErrInvalidRole is returned when an unknown role is requested
	ErrInvalidRole = errors.New("invalid role")

	// ErrCannotRemoveLastAdmin is returned when demoting the only admin
	ErrCannotRemoveLastAdmin = errors.New("cannot remove the last admin role")
)

// isUniqueViolation detects unique constraint errors from postgres and sqlite
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "sqlstate 23505")
}
