package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/meatlab/lims-api/internal/domain"
)

// meatRow is one analysed meat sample with its computed verdict
type meatRow struct {
	domain.MeatSampleRow
	verdict domain.Verdict
}

var meatColumns = []Column[meatRow]{
	{Header: "Sample No", Width: 18, Align: "C", Value: func(r meatRow) string { return r.SampleNo }},
	{Header: "Species", Width: 42, Value: func(r meatRow) string { return r.Species }},
	{Header: "TPC (cfu/g)", Width: 22, Align: "C", Value: func(r meatRow) string { return r.TPC }},
	{Header: "S. aureus", Width: 20, Align: "C", Value: func(r meatRow) string { return r.SAureus }},
	{Header: "Coliforms", Width: 20, Align: "C", Value: func(r meatRow) string { return r.Coliforms }},
	{Header: "E. coli O157", Width: 22, Align: "C", Value: func(r meatRow) string { return r.EcoliO157 }},
	{Header: "Salmonella", Width: 18, Align: "C", Value: func(r meatRow) string { return r.Salmonella }},
	{Header: "Result", Width: 18, Align: "C", Value: func(r meatRow) string { return string(r.verdict) }},
}

// judgeMeatRows computes per-row verdicts and the overall verdict. The
// overall verdict fails when any row fails and passes only when every row passes.
func judgeMeatRows(rows []domain.MeatSampleRow) ([]meatRow, domain.Verdict) {
	judged := make([]meatRow, 0, len(rows))
	overall := domain.VerdictPass
	for _, row := range rows {
		var tpc *float64
		if v, ok := domain.ParseCount(row.TPC); ok {
			tpc = &v
		}
		coliforms, ecoli, salmonella := row.Coliforms, row.EcoliO157, row.Salmonella
		v := domain.MeatVerdict(tpc, &coliforms, &ecoli, &salmonella)
		switch {
		case v == domain.VerdictFail:
			overall = domain.VerdictFail
		case v == "" && overall != domain.VerdictFail:
			overall = ""
		}
		judged = append(judged, meatRow{MeatSampleRow: row, verdict: v})
	}
	if len(judged) == 0 {
		overall = ""
	}
	return judged, overall
}

// parameterRow is one line of a single-sample result table
type parameterRow struct {
	name  string
	value string
	limit string
}

var parameterColumns = []Column[parameterRow]{
	{Header: "Parameter", Width: 70, Value: func(r parameterRow) string { return r.name }},
	{Header: "Result", Width: 60, Align: "C", Value: func(r parameterRow) string { return r.value }},
	{Header: "Specification", Width: 50, Align: "C", Value: func(r parameterRow) string { return r.limit }},
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// resultParameters lists the recorded values of a fixed-column result
func resultParameters(result *domain.TestResult) []parameterRow {
	var rows []parameterRow
	if result.TPC != nil {
		rows = append(rows, parameterRow{"TPC (cfu/g)", formatNumber(*result.TPC), fmt.Sprintf("<= %d", domain.TPCLimit)})
	}
	add := func(name string, v *string, limit string) {
		if v != nil && strings.TrimSpace(*v) != "" {
			rows = append(rows, parameterRow{name, *v, limit})
		}
	}
	add("S. aureus (cfu/g)", result.SAureus, "")
	add("Coliforms", result.Coliforms, "Negative")
	add("E. coli O157:H7", result.EcoliO157, "Negative")
	add("Salmonella", result.Salmonella, "Negative")
	add("Listeria", result.Listeria, "Negative")
	if result.PH != nil {
		rows = append(rows, parameterRow{"pH", formatNumber(*result.PH), "6.5 - 8.5"})
	}
	if result.TDS != nil {
		rows = append(rows, parameterRow{"TDS (ppm)", formatNumber(*result.TDS), ""})
	}
	return rows
}

// plateAverage averages the readable plate counts of an air sampling point
func plateAverage(d domain.AirDepartment) string {
	var sum float64
	var n int
	for _, p := range []string{d.Plate1, d.Plate2, d.Plate3} {
		if v, ok := domain.ParseCount(p); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return "-"
	}
	return strconv.FormatFloat(sum/float64(n), 'f', 1, 64)
}

var airColumns = []Column[domain.AirDepartment]{
	{Header: "S.No", Width: 15, Align: "C", Value: func(d domain.AirDepartment) string { return d.SNo }},
	{Header: "Department", Width: 60, Value: func(d domain.AirDepartment) string { return d.Name }},
	{Header: "Plate 1", Width: 25, Align: "C", Value: func(d domain.AirDepartment) string { return d.Plate1 }},
	{Header: "Plate 2", Width: 25, Align: "C", Value: func(d domain.AirDepartment) string { return d.Plate2 }},
	{Header: "Plate 3", Width: 25, Align: "C", Value: func(d domain.AirDepartment) string { return d.Plate3 }},
	{Header: "Average", Width: 30, Align: "C", Value: plateAverage},
}

var waterColumns = []Column[domain.WaterSamplingPoint]{
	{Header: "S.No", Width: 10, Align: "C", Value: func(p domain.WaterSamplingPoint) string { return p.SNo }},
	{Header: "Location", Width: 36, Value: func(p domain.WaterSamplingPoint) string { return p.Location }},
	{Header: "Color", Width: 18, Align: "C", Value: func(p domain.WaterSamplingPoint) string { return p.Color }},
	{Header: "Odor", Width: 18, Align: "C", Value: func(p domain.WaterSamplingPoint) string { return p.Odor }},
	{Header: "Clarity", Width: 22, Align: "C", Value: func(p domain.WaterSamplingPoint) string { return p.Clarity }},
	{Header: "pH", Width: 12, Align: "C", Value: func(p domain.WaterSamplingPoint) string { return p.PH }},
	{Header: "TDS ppm", Width: 14, Align: "C", Value: func(p domain.WaterSamplingPoint) string { return p.TDS }},
	{Header: "APC", Width: 14, Align: "C", Value: func(p domain.WaterSamplingPoint) string { return p.APC }},
	{Header: "T. Coliform", Width: 18, Align: "C", Value: func(p domain.WaterSamplingPoint) string { return p.TotalColiform }},
	{Header: "F. Coliform", Width: 18, Align: "C", Value: func(p domain.WaterSamplingPoint) string { return p.FaecalColiform }},
}

var workerColumns = []Column[domain.WorkerSwab]{
	{Header: "S.No", Width: 15, Align: "C", Value: func(w domain.WorkerSwab) string { return w.SNo }},
	{Header: "Area", Width: 60, Value: func(w domain.WorkerSwab) string { return w.Area }},
	{Header: "Name", Width: 45, Value: func(w domain.WorkerSwab) string { return w.Name }},
	{Header: "APC", Width: 30, Align: "C", Value: func(w domain.WorkerSwab) string { return w.APC }},
	{Header: "Coliform", Width: 30, Align: "C", Value: func(w domain.WorkerSwab) string { return w.Coliform }},
}

var surfaceColumns = []Column[domain.SurfaceSwab]{
	{Header: "S.No", Width: 15, Align: "C", Value: func(s domain.SurfaceSwab) string { return s.SNo }},
	{Header: "Area/Location", Width: 105, Value: func(s domain.SurfaceSwab) string { return s.Area }},
	{Header: "APC", Width: 30, Align: "C", Value: func(s domain.SurfaceSwab) string { return s.APC }},
	{Header: "Coliform", Width: 30, Align: "C", Value: func(s domain.SurfaceSwab) string { return s.Coliform }},
}

// section is the type-specific body of a report
type section struct {
	details []detail
	table   *table
	remarks string
	verdict domain.Verdict
	empty   string
}

type detail struct {
	name  string
	value string
}

func headerDetails(h domain.ReportHeader, extra ...detail) []detail {
	return append([]detail{{"Activity", h.Activity}}, extra...)
}

// buildSection maps the document's custom data, or its fixed result, onto a section
func buildSection(doc *Document) section {
	switch data := doc.CustomData.(type) {
	case *domain.MeatReportData:
		if len(data.SampleRows) > 0 {
			rows, verdict := judgeMeatRows(data.SampleRows)
			t := newTable("Test Results:", meatColumns, rows)
			s := section{table: &t, verdict: verdict}
			if doc.Result != nil {
				s.remarks = doc.Result.Remarks
			}
			return s
		}
	case *domain.AirQualityData:
		t := newTable("Air Quality Measurements:", airColumns, data.Departments)
		return section{
			details: headerDetails(data.ReportHeader, detail{"Sampling Technique", data.SampleTechnique}),
			table:   &t,
			remarks: data.Remarks,
		}
	case *domain.WaterQualityData:
		t := newTable("Water Quality Parameters:", waterColumns, data.SamplingPoints)
		return section{
			details: headerDetails(data.ReportHeader, detail{"Sample Collected In", data.SampleCollectedIn}),
			table:   &t,
			remarks: data.Remarks,
		}
	case *domain.WorkerHygieneData:
		t := newTable("Worker Hygiene Test Results:", workerColumns, data.Workers)
		return section{
			details: headerDetails(data.ReportHeader,
				detail{"Department", data.Department},
				detail{"Sampling Technique", data.SamplingTechnique}),
			table:   &t,
			remarks: data.Remarks,
		}
	case *domain.SurfaceHygieneData:
		t := newTable("Surface Hygiene Test Results:", surfaceColumns, data.Surfaces)
		return section{
			details: headerDetails(data.ReportHeader,
				detail{"Department", data.Department},
				detail{"Sampling Technique", data.SamplingTechnique}),
			table:   &t,
			remarks: data.Remarks,
		}
	}

	if doc.Result == nil {
		return section{empty: "No test results available"}
	}

	t := newTable("Test Results:", parameterColumns, resultParameters(doc.Result))
	s := section{table: &t, remarks: doc.Result.Remarks}
	if doc.Type == domain.ReportTypeMeat {
		r := doc.Result
		s.verdict = domain.MeatVerdict(r.TPC, r.Coliforms, r.EcoliO157, r.Salmonella, r.Listeria)
	}
	return s
}
