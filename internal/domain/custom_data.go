package domain

import (
	"encoding/json"
	"fmt"
)

// ReportHeader carries the sample details entered alongside every report form
type ReportHeader struct {
	SampleType     string `json:"sampleType,omitempty"`
	SampleCode     string `json:"sampleCode,omitempty"`
	CollectionDate string `json:"collectionDate,omitempty"`
	ReportDate     string `json:"reportDate,omitempty"`
	Supplier       string `json:"supplier,omitempty"`
	Status         string `json:"status,omitempty"`
	Activity       string `json:"activity,omitempty"`
}

// AirDepartment is one settle-plate reading row
type AirDepartment struct {
	SNo    string `json:"sNo"`
	Name   string `json:"name"`
	Plate1 string `json:"plate1"`
	Plate2 string `json:"plate2"`
	Plate3 string `json:"plate3"`
}

// AirQualityData is the custom data of an air report
type AirQualityData struct {
	ReportHeader
	SampleTechnique string          `json:"sampleTechnique,omitempty"`
	Departments     []AirDepartment `json:"departments"`
	Remarks         string          `json:"remarks,omitempty"`
}

// WaterSamplingPoint is one physical, chemical and microbiological reading
type WaterSamplingPoint struct {
	SNo            string `json:"sNo"`
	Location       string `json:"location"`
	Date           string `json:"date,omitempty"`
	Color          string `json:"color"`
	Odor           string `json:"odor"`
	Clarity        string `json:"clarity"`
	PH             string `json:"ph"`
	TDS            string `json:"tds"`
	APC            string `json:"apc"`
	TotalColiform  string `json:"totalColiform"`
	FaecalColiform string `json:"faecalColiform"`
}

// WaterQualityData is the custom data of a water report
type WaterQualityData struct {
	ReportHeader
	SampleCollectedIn string               `json:"sampleCollectedIn,omitempty"`
	SamplingPoints    []WaterSamplingPoint `json:"samplingPoints"`
	Remarks           string               `json:"remarks,omitempty"`
}

// WorkerSwab is one hand swab taken from a food handler
type WorkerSwab struct {
	SNo      string `json:"sNo"`
	Area     string `json:"area"`
	Name     string `json:"name"`
	APC      string `json:"apc"`
	Coliform string `json:"coliform"`
}

// WorkerHygieneData is the custom data of food handler and deboning reports
type WorkerHygieneData struct {
	ReportHeader
	Department        string       `json:"department,omitempty"`
	SamplingTechnique string       `json:"samplingTechnique,omitempty"`
	Workers           []WorkerSwab `json:"workers"`
	Remarks           string       `json:"remarks,omitempty"`
}

// SurfaceSwab is one swab taken from a food contact surface
type SurfaceSwab struct {
	SNo      string `json:"sNo"`
	Area     string `json:"area"`
	APC      string `json:"apc"`
	Coliform string `json:"coliform"`
}

// SurfaceHygieneData is the custom data of a food surface report
type SurfaceHygieneData struct {
	ReportHeader
	Department        string        `json:"department,omitempty"`
	SamplingTechnique string        `json:"samplingTechnique,omitempty"`
	Surfaces          []SurfaceSwab `json:"surfaces"`
	Remarks           string        `json:"remarks,omitempty"`
}

// MeatSampleRow is one carcass or cut analysed in a meat report
type MeatSampleRow struct {
	SupplierCode   string `json:"supplierCode"`
	CollectionDate string `json:"collectionDate"`
	ReportDate     string `json:"reportDate"`
	SampleNo       string `json:"sampleNo"`
	Species        string `json:"species"`
	TPC            string `json:"tpc"`
	SAureus        string `json:"sAureus"`
	Coliforms      string `json:"coliforms"`
	EcoliO157      string `json:"ecoliO157"`
	Salmonella     string `json:"salmonella"`
	Comments       string `json:"comments"`
}

// MeatReportData keeps every row of a multi-sample meat report
type MeatReportData struct {
	SampleRows []MeatSampleRow `json:"sampleRows"`
}

// ParseCustomData decodes a stored custom data document into the payload
// type matching the report type. An empty document yields nil, nil.
func ParseCustomData(t ReportType, raw RawJSON) (interface{}, error) {
	if raw.IsEmpty() {
		return nil, nil
	}

	var target interface{}
	switch t {
	case ReportTypeMeat:
		target = &MeatReportData{}
	case ReportTypeAir:
		target = &AirQualityData{}
	case ReportTypeWater:
		target = &WaterQualityData{}
	case ReportTypeFoodHandler, ReportTypeDeboning:
		target = &WorkerHygieneData{}
	case ReportTypeFoodSurface:
		target = &SurfaceHygieneData{}
	default:
		return nil, fmt.Errorf("unsupported report type %q", t)
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("invalid %s custom data: %w", t, err)
	}
	return target, nil
}

// DefaultCustomData returns the pre-filled form used when starting a new report
func DefaultCustomData(t ReportType) interface{} {
	switch t {
	case ReportTypeAir:
		return &AirQualityData{
			ReportHeader: ReportHeader{
				SampleType: t.DefaultSampleType(),
				Status:     "COMPLETED",
				Activity:   "Monitoring of Air Bioburden Setting Agar Plate Technique",
			},
			SampleTechnique: "Settle Plate Technique",
			Departments: []AirDepartment{
				{SNo: "1", Name: "Beef 1", Plate1: "12", Plate2: "14", Plate3: "13"},
				{SNo: "2", Name: "Beef 2", Plate1: "22", Plate2: "17", Plate3: "11"},
				{SNo: "3", Name: "Debone", Plate1: "15", Plate2: "17", Plate3: "18"},
			},
			Remarks: "Results are Satisfactory",
		}
	case ReportTypeWater:
		return &WaterQualityData{
			ReportHeader: ReportHeader{
				SampleType: t.DefaultSampleType(),
				Status:     "COMPLETED",
				Activity:   "Physical, Chemical, and Microbiological Analysis of water quality",
			},
			SampleCollectedIn: "Sterile Flasks",
			SamplingPoints: []WaterSamplingPoint{
				{SNo: "1", Location: "RO Plant Outlet", Color: "Colorless", Odor: "Odorless", Clarity: "No turbidity", PH: "7.8", TDS: "370", APC: "4", TotalColiform: "Nil", FaecalColiform: "Nil"},
				{SNo: "2", Location: "Showers 1 (Beef)", Color: "Colorless", Odor: "Odorless", Clarity: "No turbidity", PH: "8.3", TDS: "550", APC: "15", TotalColiform: "Nil", FaecalColiform: "Nil"},
				{SNo: "3", Location: "Showers 2 (Beef)", Color: "Colorless", Odor: "Odorless", Clarity: "No turbidity", PH: "7.5", TDS: "480", APC: "22", TotalColiform: "Nil", FaecalColiform: "Nil"},
			},
			Remarks: "All parameters within acceptable limits",
		}
	case ReportTypeFoodHandler:
		return &WorkerHygieneData{
			ReportHeader: ReportHeader{
				SampleType: t.DefaultSampleType(),
				Status:     "COMPLETED",
				Activity:   "Microbiological Testing of Food Handling Person's Hands that comes in contact with Food.",
			},
			Department:        "Beef Plant 1",
			SamplingTechnique: "Finger Print Technique/ Swab Technique",
			Workers: []WorkerSwab{
				{SNo: "1", Area: "Cattle Box Area", Name: "rizwan", APC: "16", Coliform: "NIL"},
				{SNo: "2", Area: "Fore Hook Cutting Lift 1", Name: "adil", APC: "12", Coliform: "NIL"},
				{SNo: "3", Area: "Hind Hook Cutting Lift 2", Name: "hamid", APC: "14", Coliform: "NIL"},
			},
		}
	case ReportTypeFoodSurface:
		return &SurfaceHygieneData{
			ReportHeader: ReportHeader{
				SampleType: t.DefaultSampleType(),
				Status:     "COMPLETED",
				Activity:   "Microbiological Testing of Food Contact Surfaces",
			},
			Department:        "Beef Plant 1",
			SamplingTechnique: "Swab Technique",
			Surfaces: []SurfaceSwab{
				{SNo: "1", Area: "Cattle Box Area", APC: "18", Coliform: "Nil"},
				{SNo: "2", Area: "Fore Hook Cutting Lift 1", APC: "22", Coliform: "Nil"},
				{SNo: "3", Area: "Hind Hook Cutting Lift 2", APC: "23", Coliform: "Nil"},
			},
		}
	case ReportTypeDeboning:
		return &WorkerHygieneData{
			ReportHeader: ReportHeader{
				SampleType: t.DefaultSampleType(),
				Status:     "COMPLETED",
				Activity:   "Microbiological Testing of Deboning Food Handlers",
			},
			Department:        "Deboning",
			SamplingTechnique: "Finger Print Technique/ Swab Technique",
			Workers: []WorkerSwab{
				{SNo: "1", Area: "Deboning Tray # 1", Name: "shameer", APC: "22", Coliform: "NIL"},
				{SNo: "2", Area: "Deboning Tray # 2", Name: "naveed", APC: "15", Coliform: "NIL"},
				{SNo: "3", Area: "Deboning Tray # 3", Name: "ahsan", APC: "19", Coliform: "NIL"},
			},
		}
	default:
		return &MeatReportData{
			SampleRows: []MeatSampleRow{
				{
					SampleNo:   "1",
					Species:    "Frozen Beef withBone",
					TPC:        "5000",
					SAureus:    "80",
					Coliforms:  "Nil",
					EcoliO157:  "Nil",
					Salmonella: "Nil",
					Comments:   "Acceptable",
				},
			},
		}
	}
}
