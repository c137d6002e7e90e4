package repository

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// MaxPageSize is the maximum allowed page size for paginated queries
const MaxPageSize = 200

// DefaultPageSize is used when the caller does not ask for a page size
const DefaultPageSize = 20

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// SortConfig holds sorting configuration for list queries
type SortConfig struct {
	Field string    // API field name
	Order SortOrder // asc or desc
}

// DefaultSortConfig returns an empty field so each list falls back to its own default column
func DefaultSortConfig() SortConfig {
	return SortConfig{Order: SortOrderDesc}
}

// ParseSortOrder parses a string into SortOrder, defaulting to desc
func ParseSortOrder(s string) SortOrder {
	if strings.ToLower(s) == "asc" {
		return SortOrderAsc
	}
	return SortOrderDesc
}

// BuildOrderClause builds the ORDER BY clause from a whitelist of API field
// names to column names. Unknown fields fall back to defaultColumn.
func BuildOrderClause(config SortConfig, fieldMap map[string]string, defaultColumn string) string {
	column, ok := fieldMap[config.Field]
	if !ok {
		column = defaultColumn
	}

	order := "DESC"
	if config.Order == SortOrderAsc {
		order = "ASC"
	}

	return column + " " + order
}

// normalizePage clamps pagination parameters to sane bounds
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// paginate applies offset and limit for the given page
func paginate(query *gorm.DB, page, pageSize int) *gorm.DB {
	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}

// likePattern lower-cases a search term and wraps it for a LIKE match
func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}

// DateWindow restricts report listings to a recent period
type DateWindow string

const (
	DateWindowAll   DateWindow = ""
	DateWindowToday DateWindow = "today"
	DateWindowWeek  DateWindow = "week"
	DateWindowMonth DateWindow = "month"
)

// Since returns the start of the window relative to now, or the zero time
// for an unbounded window.
func (w DateWindow) Since(now time.Time) time.Time {
	switch w {
	case DateWindowToday:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case DateWindowWeek:
		return now.AddDate(0, 0, -7)
	case DateWindowMonth:
		return now.AddDate(0, -1, 0)
	default:
		return time.Time{}
	}
}
