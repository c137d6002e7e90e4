package domain

import (
	"strings"
)

// ReportType selects the layout and custom data shape of a laboratory report
type ReportType string

const (
	ReportTypeMeat        ReportType = "meat"
	ReportTypeAir         ReportType = "air"
	ReportTypeWater       ReportType = "water"
	ReportTypeFoodHandler ReportType = "foodhandler"
	ReportTypeFoodSurface ReportType = "foodsurface"
	ReportTypeDeboning    ReportType = "deboning"
)

// AllReportTypes lists the supported report types in display order
var AllReportTypes = []ReportType{
	ReportTypeMeat,
	ReportTypeAir,
	ReportTypeWater,
	ReportTypeFoodHandler,
	ReportTypeFoodSurface,
	ReportTypeDeboning,
}

// IsValid reports whether the report type is supported
func (t ReportType) IsValid() bool {
	for _, rt := range AllReportTypes {
		if rt == t {
			return true
		}
	}
	return false
}

// Title is the heading printed on the report
func (t ReportType) Title() string {
	switch t {
	case ReportTypeMeat:
		return "MICROBIOLOGICAL ANALYSIS REPORT - MEAT"
	case ReportTypeAir:
		return "AIR QUALITY MONITORING REPORT"
	case ReportTypeWater:
		return "WATER QUALITY ANALYSIS REPORT"
	case ReportTypeFoodHandler:
		return "FOOD HANDLER HYGIENE TEST REPORT"
	case ReportTypeFoodSurface:
		return "FOOD SURFACE HYGIENE TEST REPORT"
	case ReportTypeDeboning:
		return "DEBONING AREA HYGIENE TEST REPORT"
	default:
		return "LABORATORY TEST REPORT"
	}
}

// CodePrefix is the prefix used for generated sample codes
func (t ReportType) CodePrefix() string {
	switch t {
	case ReportTypeAir:
		return "AIR"
	case ReportTypeWater:
		return "WATER"
	case ReportTypeFoodHandler:
		return "FH"
	case ReportTypeFoodSurface:
		return "FS"
	case ReportTypeDeboning:
		return "DB"
	default:
		return "SAMPLE"
	}
}

// DefaultSampleType is the sample type recorded when a report is created without one
func (t ReportType) DefaultSampleType() string {
	switch t {
	case ReportTypeAir:
		return "Air Quality Monitoring"
	case ReportTypeWater:
		return "Water Quality Analysis"
	case ReportTypeFoodHandler:
		return "Food Handler Testing"
	case ReportTypeFoodSurface:
		return "Food Surface Testing"
	case ReportTypeDeboning:
		return "Deboning Testing"
	default:
		return "Frozen Beef Meat"
	}
}

// DetectReportType infers the report type from a free-text sample type.
// Matching is case-insensitive and falls back to meat.
func DetectReportType(sampleType string) ReportType {
	st := strings.ToLower(sampleType)
	switch {
	case strings.Contains(st, "meat"):
		return ReportTypeMeat
	case strings.Contains(st, "air"):
		return ReportTypeAir
	case strings.Contains(st, "water"):
		return ReportTypeWater
	case strings.Contains(st, "food handler"):
		return ReportTypeFoodHandler
	case strings.Contains(st, "food surface"), strings.Contains(st, "surface"):
		return ReportTypeFoodSurface
	case strings.Contains(st, "deboning"):
		return ReportTypeDeboning
	default:
		return ReportTypeMeat
	}
}

// SampleTypes offered when registering a sample by hand
var SampleTypes = []string{"Water", "Meat", "Swab", "Air", "Food", "Soil", "Other"}
