package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/meatlab/lims-api/internal/auth"
	"github.com/meatlab/lims-api/internal/domain"
	"github.com/meatlab/lims-api/internal/report"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// defaultMeatTPC is recorded when the first meat row carries no readable count
const defaultMeatTPC = 5000

// Fixed remarks stored for hygiene reports, which keep their findings per row
var hygieneRemarks = map[domain.ReportType]string{
	domain.ReportTypeFoodHandler: "Food Handler Testing Report",
	domain.ReportTypeFoodSurface: "Food Contact Surface Testing Report",
	domain.ReportTypeDeboning:    "Deboning Food Handler Testing Report",
}

// reportForm is a create request normalised for storage
type reportForm struct {
	header     domain.ReportHeader
	result     domain.TestResult
	customData domain.RawJSON
}

// CreateReport runs the report creation form: the sample is matched by
// code (updated when it exists, created otherwise), its result replaced and
// a report row recorded. The sample ends up completed.
func (s *ReportService) CreateReport(ctx context.Context, req *domain.CreateReportRequest) (*domain.ReportDTO, error) {
	if !req.ReportType.IsValid() {
		return nil, fmt.Errorf("%w: unknown report type %q", ErrInvalidReportRequest, req.ReportType)
	}

	form, err := buildReportForm(req)
	if err != nil {
		return nil, err
	}

	today := startOfDay(s.now())
	collected, err := parseDateOr(form.header.CollectionDate, today)
	if err != nil {
		return nil, err
	}
	reportDate, err := parseDateOr(form.header.ReportDate, today)
	if err != nil {
		return nil, err
	}

	if req.ClientID != nil {
		if _, err := s.clientRepo.GetByID(ctx, *req.ClientID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrClientNotFound
			}
			return nil, fmt.Errorf("failed to get client: %w", err)
		}
	}

	code := strings.TrimSpace(form.header.SampleCode)
	if code == "" {
		code, err = s.codes.Generate(ctx, req.ReportType.CodePrefix())
		if err != nil {
			return nil, err
		}
	}

	sampleType := form.header.SampleType
	if sampleType == "" {
		sampleType = req.ReportType.DefaultSampleType()
	}

	sample, err := s.sampleRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up sample: %w", err)
	}

	actor := auth.ActorID(ctx)
	if sample == nil {
		sample = &domain.Sample{
			SampleCode:     code,
			SampleType:     sampleType,
			Source:         form.header.Supplier,
			CollectionDate: collected,
			ReceivedDate:   reportDate,
			ClientID:       req.ClientID,
			AnalystID:      actor,
			Status:         domain.SampleStatusCompleted,
			CreatedByID:    actor,
		}
		if err := s.sampleRepo.Create(ctx, sample); err != nil {
			if isUniqueViolation(err) {
				return nil, ErrDuplicateSampleCode
			}
			return nil, fmt.Errorf("failed to create sample: %w", err)
		}
	} else {
		sample.SampleType = sampleType
		sample.Source = form.header.Supplier
		sample.CollectionDate = collected
		sample.ReceivedDate = reportDate
		if req.ClientID != nil {
			sample.ClientID = req.ClientID
		}
		if sample.AnalystID == nil {
			sample.AnalystID = actor
		}
		sample.Status = domain.SampleStatusCompleted
		if err := s.sampleRepo.Update(ctx, sample); err != nil {
			return nil, fmt.Errorf("failed to update sample: %w", err)
		}
	}

	result := form.result
	result.SampleID = sample.ID
	result.CustomData = form.customData
	result.TestedByID = actor
	result.TestedAt = reportDate
	if err := s.resultRepo.Upsert(ctx, &result); err != nil {
		return nil, fmt.Errorf("failed to save test result: %w", err)
	}

	row, err := s.record(ctx, sample, req.ReportType, report.Filename(code, s.now()))
	if err != nil {
		return nil, err
	}

	s.logger.Info("report created",
		zap.String("report_id", row.ID.String()),
		zap.String("sample_code", code),
		zap.String("report_type", string(req.ReportType)))

	return s.GetByID(ctx, row.ID)
}

// buildReportForm validates the per-type payload and maps it onto the
// fixed result columns and the stored custom data document.
func buildReportForm(req *domain.CreateReportRequest) (*reportForm, error) {
	form := &reportForm{header: domain.ReportHeader{
		SampleCode:     strings.TrimSpace(req.SampleCode),
		SampleType:     strings.TrimSpace(req.SampleType),
		Supplier:       strings.TrimSpace(req.Supplier),
		CollectionDate: strings.TrimSpace(req.CollectionDate),
		ReportDate:     strings.TrimSpace(req.ReportDate),
	}}

	if req.ReportType == domain.ReportTypeMeat {
		return form, form.fillMeat(req)
	}

	if req.CustomData.IsEmpty() {
		return nil, fmt.Errorf("%w: %s report requires custom data", ErrInvalidReportRequest, req.ReportType)
	}
	parsed, err := domain.ParseCustomData(req.ReportType, req.CustomData)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCustomData, err)
	}

	switch data := parsed.(type) {
	case *domain.AirQualityData:
		if len(data.Departments) == 0 {
			return nil, fmt.Errorf("%w: at least one department is required", ErrInvalidReportRequest)
		}
		form.mergeHeader(data.ReportHeader)
		form.result.Remarks = data.Remarks
	case *domain.WaterQualityData:
		if len(data.SamplingPoints) == 0 {
			return nil, fmt.Errorf("%w: at least one sampling point is required", ErrInvalidReportRequest)
		}
		form.mergeHeader(data.ReportHeader)
		form.result.Remarks = data.Remarks
		first := data.SamplingPoints[0]
		form.result.PH = parseOptionalFloat(first.PH)
		form.result.TDS = parseOptionalFloat(first.TDS)
	case *domain.WorkerHygieneData:
		if len(data.Workers) == 0 {
			return nil, fmt.Errorf("%w: at least one worker is required", ErrInvalidReportRequest)
		}
		form.mergeHeader(data.ReportHeader)
		form.result.Remarks = hygieneRemarks[req.ReportType]
	case *domain.SurfaceHygieneData:
		if len(data.Surfaces) == 0 {
			return nil, fmt.Errorf("%w: at least one surface is required", ErrInvalidReportRequest)
		}
		form.mergeHeader(data.ReportHeader)
		form.result.Remarks = hygieneRemarks[req.ReportType]
	}
	if req.Remarks != "" {
		form.result.Remarks = req.Remarks
	}

	form.customData = req.CustomData
	return form, nil
}

// fillMeat stores every row in custom data and copies the first row into
// the fixed microbiology columns
func (f *reportForm) fillMeat(req *domain.CreateReportRequest) error {
	rows := req.SampleRows
	if len(rows) == 0 && !req.CustomData.IsEmpty() {
		parsed, err := domain.ParseCustomData(domain.ReportTypeMeat, req.CustomData)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidCustomData, err)
		}
		rows = parsed.(*domain.MeatReportData).SampleRows
	}
	if len(rows) == 0 {
		return fmt.Errorf("%w: at least one sample row is required", ErrInvalidReportRequest)
	}

	first := rows[0]
	// The first row's supplier code keys the sample unless a code was given.
	f.mergeHeader(domain.ReportHeader{
		SampleCode:     first.SupplierCode,
		CollectionDate: first.CollectionDate,
		ReportDate:     first.ReportDate,
	})
	switch {
	case f.header.Supplier == "":
		return fmt.Errorf("%w: supplier name is required", ErrInvalidReportRequest)
	case strings.TrimSpace(first.SupplierCode) == "":
		return fmt.Errorf("%w: supplier code is required", ErrInvalidReportRequest)
	case f.header.CollectionDate == "":
		return fmt.Errorf("%w: collection date is required", ErrInvalidReportRequest)
	case f.header.ReportDate == "":
		return fmt.Errorf("%w: report date is required", ErrInvalidReportRequest)
	}

	tpc := float64(defaultMeatTPC)
	if v, ok := domain.ParseCount(first.TPC); ok {
		tpc = v
	}
	listeria := "nil"
	f.result = domain.TestResult{
		TPC:        &tpc,
		SAureus:    optionalString(first.SAureus),
		Coliforms:  optionalString(strings.ToLower(first.Coliforms)),
		EcoliO157:  optionalString(strings.ToLower(first.EcoliO157)),
		Salmonella: optionalString(strings.ToLower(first.Salmonella)),
		Listeria:   &listeria,
		Remarks:    first.Comments,
	}
	if req.Remarks != "" {
		f.result.Remarks = req.Remarks
	}

	data, err := json.Marshal(domain.MeatReportData{SampleRows: rows})
	if err != nil {
		return fmt.Errorf("failed to encode sample rows: %w", err)
	}
	f.customData = data
	return nil
}

// mergeHeader fills fields the request left empty from the form header
func (f *reportForm) mergeHeader(h domain.ReportHeader) {
	fill := func(dst *string, v string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = strings.TrimSpace(v)
		}
	}
	fill(&f.header.SampleCode, h.SampleCode)
	fill(&f.header.SampleType, h.SampleType)
	fill(&f.header.Supplier, h.Supplier)
	fill(&f.header.CollectionDate, h.CollectionDate)
	fill(&f.header.ReportDate, h.ReportDate)
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func parseOptionalFloat(s string) *float64 {
	if v, ok := domain.ParseCount(s); ok {
		return &v
	}
	return nil
}

