package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meatlab/lims-api/internal/auth"
	"github.com/meatlab/lims-api/internal/domain"
	"github.com/meatlab/lims-api/internal/mapper"
	"github.com/meatlab/lims-api/internal/report"
	"github.com/meatlab/lims-api/internal/repository"
	"github.com/meatlab/lims-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const pdfContentType = "application/pdf"

// ReportObserver receives report generation events, typically for metrics
type ReportObserver interface {
	ReportRendered(reportType domain.ReportType, action report.Action, took time.Duration)
	ReportFailed(reportType domain.ReportType)
}

// RenderedReport is a generated PDF ready for delivery
type RenderedReport struct {
	Filename string
	Action   report.Action
	Data     []byte
	// Report is the recorded history row; nil for print delivery
	Report *domain.ReportDTO
}

// ContentType returns the MIME type of the document
func (r *RenderedReport) ContentType() string {
	return pdfContentType
}

type ReportService struct {
	sampleRepo  *repository.SampleRepository
	resultRepo  *repository.TestResultRepository
	reportRepo  *repository.ReportRepository
	profileRepo *repository.ProfileRepository
	clientRepo  *repository.ClientRepository
	settings    *LabSettingsService
	codes       *SampleCodeService
	renderer    *report.Renderer
	images      report.ImageSource
	archive     storage.Storage
	observer    ReportObserver
	logger      *zap.Logger
	now         func() time.Time
}

// ReportServiceDeps groups the collaborators of the report service
type ReportServiceDeps struct {
	SampleRepo  *repository.SampleRepository
	ResultRepo  *repository.TestResultRepository
	ReportRepo  *repository.ReportRepository
	ProfileRepo *repository.ProfileRepository
	ClientRepo  *repository.ClientRepository
	Settings    *LabSettingsService
	Codes       *SampleCodeService
	Renderer    *report.Renderer
	// Images fetches letterhead graphics; nil draws placeholders
	Images report.ImageSource
	// Archive stores downloaded PDFs; nil disables archiving
	Archive  storage.Storage
	Observer ReportObserver
}

func NewReportService(deps ReportServiceDeps, logger *zap.Logger) *ReportService {
	return &ReportService{
		sampleRepo:  deps.SampleRepo,
		resultRepo:  deps.ResultRepo,
		reportRepo:  deps.ReportRepo,
		profileRepo: deps.ProfileRepo,
		clientRepo:  deps.ClientRepo,
		settings:    deps.Settings,
		codes:       deps.Codes,
		renderer:    deps.Renderer,
		images:      deps.Images,
		archive:     deps.Archive,
		observer:    deps.Observer,
		logger:      logger,
		now:         time.Now,
	}
}

// Assemble gathers everything the layout engine needs for one sample. Any
// failed lookup aborts generation.
func (s *ReportService) Assemble(ctx context.Context, sampleID uuid.UUID) (*report.Document, *domain.Sample, error) {
	return s.assemble(ctx, sampleID, "")
}

// assemble lays the sample out as reportType, or the type detected from the
// sample type when reportType is not a supported one.
func (s *ReportService) assemble(ctx context.Context, sampleID uuid.UUID, reportType domain.ReportType) (*report.Document, *domain.Sample, error) {
	sample, err := s.sampleRepo.GetByID(ctx, sampleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrSampleNotFound
		}
		return nil, nil, fmt.Errorf("failed to get sample: %w", err)
	}

	settings, _, err := s.settings.Current(ctx)
	if err != nil {
		return nil, nil, err
	}

	analyst, err := s.analystName(ctx, sample)
	if err != nil {
		return nil, nil, err
	}

	if !reportType.IsValid() {
		reportType = domain.DetectReportType(sample.SampleType)
	}
	doc := &report.Document{
		Type: reportType,
		Letterhead: report.Letterhead{
			LabName:   settings.LabName,
			Address:   settings.Address,
			Phone:     settings.Phone,
			Email:     settings.Email,
			Logo:      report.LoadImage(ctx, s.images, s.logger, "logo", settings.LabLogoURL),
			Signature: report.LoadImage(ctx, s.images, s.logger, "signature", settings.SignatureURL),
			Stamp:     report.LoadImage(ctx, s.images, s.logger, "stamp", settings.StampURL),
		},
		Sample: report.SampleInfo{
			Code:           sample.SampleCode,
			Type:           sample.SampleType,
			Source:         sample.Source,
			CollectionDate: sample.CollectionDate,
			ReceivedDate:   sample.ReceivedDate,
			Status:         string(sample.Status),
		},
		Analyst:     analyst,
		Result:      sample.TestResult,
		GeneratedAt: s.now(),
	}
	if sample.Client != nil {
		doc.Sample.Client = sample.Client.Name
	}

	if sample.TestResult != nil {
		data, err := domain.ParseCustomData(reportType, sample.TestResult.CustomData)
		if err != nil {
			s.logger.Warn("ignoring malformed custom data",
				zap.String("sample_id", sample.ID.String()),
				zap.String("report_type", string(reportType)),
				zap.Error(err))
		} else {
			doc.CustomData = data
		}
	}

	return doc, sample, nil
}

// analystName prefers the sample's assigned analyst, then the caller's own profile
func (s *ReportService) analystName(ctx context.Context, sample *domain.Sample) (string, error) {
	if sample.Analyst != nil && strings.TrimSpace(sample.Analyst.FullName) != "" {
		return sample.Analyst.FullName, nil
	}

	actor := auth.ActorID(ctx)
	if actor == nil {
		return report.FallbackAnalystName, nil
	}
	profile, err := s.profileRepo.GetByID(ctx, *actor)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return report.FallbackAnalystName, nil
		}
		return "", fmt.Errorf("failed to get analyst profile: %w", err)
	}
	if strings.TrimSpace(profile.FullName) == "" {
		return report.FallbackAnalystName, nil
	}
	return profile.FullName, nil
}

// Generate renders the report for a sample. Download delivery records a
// report row and archives the PDF when archiving is enabled; print
// delivery records nothing.
func (s *ReportService) Generate(ctx context.Context, sampleID uuid.UUID, opts report.Options) (*RenderedReport, error) {
	start := s.now()

	doc, sample, err := s.Assemble(ctx, sampleID)
	if err != nil {
		return nil, err
	}

	data, err := s.renderer.Render(doc, opts)
	if err != nil {
		if s.observer != nil {
			s.observer.ReportFailed(doc.Type)
		}
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	rendered := &RenderedReport{
		Filename: report.Filename(sample.SampleCode, s.now()),
		Action:   opts.Action,
		Data:     data,
	}

	if opts.Action == report.ActionDownload {
		row, err := s.record(ctx, sample, doc.Type, rendered.Filename)
		if err != nil {
			return nil, err
		}
		s.archivePDF(ctx, row, data)
		dto := mapper.ToReportDTO(row)
		rendered.Report = &dto
	}

	if s.observer != nil {
		s.observer.ReportRendered(doc.Type, opts.Action, s.now().Sub(start))
	}

	s.logger.Info("report generated",
		zap.String("sample_code", sample.SampleCode),
		zap.String("report_type", string(doc.Type)),
		zap.String("action", string(opts.Action)),
		zap.Int("bytes", len(data)))

	return rendered, nil
}

func (s *ReportService) record(ctx context.Context, sample *domain.Sample, reportType domain.ReportType, filename string) (*domain.Report, error) {
	row := &domain.Report{
		SampleID:      sample.ID,
		ClientID:      sample.ClientID,
		ReportType:    reportType,
		PDFURL:        filename,
		GeneratedByID: auth.ActorID(ctx),
		DateGenerated: s.now().UTC(),
	}
	if err := s.reportRepo.Create(ctx, row); err != nil {
		return nil, fmt.Errorf("failed to record report: %w", err)
	}
	return row, nil
}

// archivePDF stores the document. Failures are logged; the download still succeeds.
func (s *ReportService) archivePDF(ctx context.Context, row *domain.Report, data []byte) {
	if s.archive == nil {
		return
	}

	at := row.DateGenerated
	key := path.Join("reports", at.Format("2006"), at.Format("01"), row.ID.String(), row.PDFURL)
	storagePath, _, err := s.archive.Upload(ctx, key, pdfContentType, bytes.NewReader(data))
	if err != nil {
		s.logger.Error("failed to archive report",
			zap.String("report_id", row.ID.String()),
			zap.Error(err))
		return
	}

	if err := s.reportRepo.UpdateStoragePath(ctx, row.ID, storagePath); err != nil {
		s.logger.Error("failed to record archive path",
			zap.String("report_id", row.ID.String()),
			zap.Error(err))
		return
	}
	row.StoragePath = storagePath
}

// Download returns the PDF of a recorded report: the archived copy when one
// exists, otherwise a fresh rendering of the sample's current data laid out
// as the recorded report type.
func (s *ReportService) Download(ctx context.Context, id uuid.UUID, action report.Action) (*RenderedReport, error) {
	row, err := s.reportRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	if row.StoragePath != "" && s.archive != nil && action == report.ActionDownload {
		data, err := s.readArchive(ctx, row.StoragePath)
		if err == nil {
			return &RenderedReport{Filename: row.PDFURL, Action: action, Data: data}, nil
		}
		s.logger.Warn("archived report unavailable, rendering again",
			zap.String("report_id", row.ID.String()),
			zap.Error(err))
	}

	start := s.now()
	doc, _, err := s.assemble(ctx, row.SampleID, row.ReportType)
	if err != nil {
		return nil, err
	}
	data, err := s.renderer.Render(doc, report.Options{Action: action})
	if err != nil {
		if s.observer != nil {
			s.observer.ReportFailed(doc.Type)
		}
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	if s.observer != nil {
		s.observer.ReportRendered(doc.Type, action, s.now().Sub(start))
	}

	return &RenderedReport{Filename: row.PDFURL, Action: action, Data: data}, nil
}

func (s *ReportService) readArchive(ctx context.Context, storagePath string) ([]byte, error) {
	rc, err := s.archive.Download(ctx, storagePath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (s *ReportService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ReportDTO, error) {
	row, err := s.reportRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	dto := mapper.ToReportDTO(row)
	return &dto, nil
}

func (s *ReportService) List(ctx context.Context, page, pageSize int, filters *repository.ReportFilters, sort repository.SortConfig) (*domain.PaginatedResponse, error) {
	if filters != nil && filters.Now.IsZero() {
		filters.Now = s.now().UTC()
	}

	rows, total, err := s.reportRepo.ListWithSortConfig(ctx, page, pageSize, filters, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	dtos := make([]domain.ReportDTO, len(rows))
	for i := range rows {
		dtos[i] = mapper.ToReportDTO(&rows[i])
	}

	return paginated(dtos, total, page, pageSize), nil
}

// Delete removes a report row and its archived PDF. The sample is kept.
func (s *ReportService) Delete(ctx context.Context, id uuid.UUID) error {
	row, err := s.reportRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReportNotFound
		}
		return fmt.Errorf("failed to get report: %w", err)
	}

	if err := s.reportRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReportNotFound
		}
		return fmt.Errorf("failed to delete report: %w", err)
	}

	if row.StoragePath != "" && s.archive != nil {
		if err := s.archive.Delete(ctx, row.StoragePath); err != nil {
			s.logger.Warn("failed to delete archived report",
				zap.String("report_id", id.String()),
				zap.String("storage_path", row.StoragePath),
				zap.Error(err))
		}
	}

	return nil
}

// Template returns the prefilled form for a report type
func (s *ReportService) Template(reportType domain.ReportType) (interface{}, error) {
	if !reportType.IsValid() {
		return nil, fmt.Errorf("%w: unknown report type %q", ErrInvalidReportRequest, reportType)
	}
	return domain.DefaultCustomData(reportType), nil
}
