package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meatlab/lims-api/internal/domain"
	"github.com/meatlab/lims-api/internal/report"
	"github.com/meatlab/lims-api/internal/repository"
	"github.com/meatlab/lims-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	rendered []report.Action
	types    []domain.ReportType
	failed   int
}

func (o *recordingObserver) ReportRendered(rt domain.ReportType, action report.Action, _ time.Duration) {
	o.rendered = append(o.rendered, action)
	o.types = append(o.types, rt)
}

func (o *recordingObserver) ReportFailed(domain.ReportType) {
	o.failed++
}

func countReports(t *testing.T, svc *testServices) int64 {
	t.Helper()
	n, err := svc.repos.report.Count(context.Background())
	require.NoError(t, err)
	return n
}

func TestReportService_GenerateDownloadRecordsAndArchives(t *testing.T) {
	svc := setupServices(t)
	observer := &recordingObserver{}
	svc.reports.observer = observer
	analyst := testutil.CreateTestProfile(t, svc.db, "Sara", domain.RoleAnalyst)
	ctx := testutil.ContextForProfile(analyst)
	sample := testutil.CreateTestSample(t, svc.db, "SAMPLE-2026-0001")
	testutil.CreateTestResult(t, svc.db, sample.ID, 50000)

	rendered, err := svc.reports.Generate(ctx, sample.ID, report.Options{Action: report.ActionDownload})
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(rendered.Data, []byte("%PDF")))
	assert.Equal(t, "application/pdf", rendered.ContentType())
	require.NotNil(t, rendered.Report)
	assert.True(t, rendered.Report.Archived)
	assert.Equal(t, domain.ReportTypeMeat, rendered.Report.ReportType)
	assert.Equal(t, rendered.Filename, rendered.Report.PDFURL)
	assert.Equal(t, int64(1), countReports(t, svc))
	assert.Equal(t, []report.Action{report.ActionDownload}, observer.rendered)

	row, err := svc.repos.report.GetByID(ctx, rendered.Report.ID)
	require.NoError(t, err)
	require.NotNil(t, row.GeneratedByID)
	assert.Equal(t, analyst.ID, *row.GeneratedByID)

	rc, err := svc.archive.Download(ctx, row.StoragePath)
	require.NoError(t, err)
	defer rc.Close()
	archived, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, rendered.Data, archived)
}

func TestReportService_GeneratePrintRecordsNothing(t *testing.T) {
	svc := setupServices(t)
	sample := testutil.CreateTestSample(t, svc.db, "SAMPLE-2026-0002")

	rendered, err := svc.reports.Generate(context.Background(), sample.ID, report.Options{Action: report.ActionPrint})
	require.NoError(t, err)

	assert.Nil(t, rendered.Report)
	assert.True(t, bytes.HasPrefix(rendered.Data, []byte("%PDF")))
	assert.Zero(t, countReports(t, svc))
}

func TestReportService_GenerateUnknownSample(t *testing.T) {
	svc := setupServices(t)

	_, err := svc.reports.Generate(context.Background(), uuid.New(), report.Options{Action: report.ActionDownload})
	assert.ErrorIs(t, err, ErrSampleNotFound)
	assert.Zero(t, countReports(t, svc))
}

func TestReportService_GenerateIgnoresMalformedCustomData(t *testing.T) {
	svc := setupServices(t)
	sample := testutil.CreateTestSample(t, svc.db, "WATER-2026-0001", testutil.WithType("Water Quality Analysis"))
	result := testutil.CreateTestResult(t, svc.db, sample.ID, 10)
	require.NoError(t, svc.db.Model(result).Update("custom_data", domain.RawJSON(`{"samplingPoints":"broken"}`)).Error)

	rendered, err := svc.reports.Generate(context.Background(), sample.ID, report.Options{Action: report.ActionPrint})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(rendered.Data, []byte("%PDF")))
}

func TestReportService_AnalystName(t *testing.T) {
	svc := setupServices(t)
	assigned := testutil.CreateTestProfile(t, svc.db, "Assigned Analyst", domain.RoleAnalyst)
	caller := testutil.CreateTestProfile(t, svc.db, "Caller", domain.RoleAdmin)

	withAnalyst := testutil.CreateTestSample(t, svc.db, "A-1", testutil.WithAnalyst(assigned.ID))
	without := testutil.CreateTestSample(t, svc.db, "A-2")

	doc, _, err := svc.reports.Assemble(testutil.ContextForProfile(caller), withAnalyst.ID)
	require.NoError(t, err)
	assert.Equal(t, "Assigned Analyst", doc.Analyst)

	doc, _, err = svc.reports.Assemble(testutil.ContextForProfile(caller), without.ID)
	require.NoError(t, err)
	assert.Equal(t, "Caller", doc.Analyst)

	doc, _, err = svc.reports.Assemble(context.Background(), without.ID)
	require.NoError(t, err)
	assert.Equal(t, report.FallbackAnalystName, doc.Analyst)
	assert.Equal(t, report.FallbackLabName, doc.Letterhead.LabName)
}

func TestReportService_DownloadPrefersArchive(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	sample := testutil.CreateTestSample(t, svc.db, "SAMPLE-2026-0003")
	testutil.CreateTestResult(t, svc.db, sample.ID, 100)

	rendered, err := svc.reports.Generate(ctx, sample.ID, report.Options{Action: report.ActionDownload})
	require.NoError(t, err)

	row, err := svc.repos.report.GetByID(ctx, rendered.Report.ID)
	require.NoError(t, err)
	_, _, err = svc.archive.Upload(ctx, row.StoragePath, "application/pdf", bytes.NewReader([]byte("%PDF-archived")))
	require.NoError(t, err)

	again, err := svc.reports.Download(ctx, row.ID, report.ActionDownload)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-archived"), again.Data)
	assert.Equal(t, row.PDFURL, again.Filename)

	printed, err := svc.reports.Download(ctx, row.ID, report.ActionPrint)
	require.NoError(t, err)
	assert.NotEqual(t, []byte("%PDF-archived"), printed.Data)
	assert.Equal(t, int64(1), countReports(t, svc))

	_, err = svc.reports.Download(ctx, uuid.New(), report.ActionDownload)
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestReportService_DownloadRendersStoredType(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	data, err := json.Marshal(domain.DefaultCustomData(domain.ReportTypeWater))
	require.NoError(t, err)

	created, err := svc.reports.CreateReport(ctx, &domain.CreateReportRequest{
		ReportType: domain.ReportTypeWater,
		CustomData: data,
	})
	require.NoError(t, err)

	// A sample type that would be detected as meat.
	require.NoError(t, svc.db.Model(&domain.Sample{}).Where("id = ?", created.SampleID).
		Update("sample_type", "Frozen Beef").Error)

	observer := &recordingObserver{}
	svc.reports.observer = observer

	printed, err := svc.reports.Download(ctx, created.ID, report.ActionPrint)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(printed.Data, []byte("%PDF")))
	assert.Equal(t, []report.Action{report.ActionPrint}, observer.rendered)
	assert.Equal(t, []domain.ReportType{domain.ReportTypeWater}, observer.types)
	assert.Zero(t, observer.failed)
}

func TestReportService_DeleteRemovesArchive(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	sample := testutil.CreateTestSample(t, svc.db, "SAMPLE-2026-0004")

	rendered, err := svc.reports.Generate(ctx, sample.ID, report.Options{Action: report.ActionDownload})
	require.NoError(t, err)
	row, err := svc.repos.report.GetByID(ctx, rendered.Report.ID)
	require.NoError(t, err)

	require.NoError(t, svc.reports.Delete(ctx, row.ID))

	_, err = svc.archive.Download(ctx, row.StoragePath)
	assert.Error(t, err)
	assert.Zero(t, countReports(t, svc))

	_, err = svc.samples.GetByID(ctx, sample.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.reports.Delete(ctx, row.ID), ErrReportNotFound)
}

func TestReportService_List(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	client := testutil.CreateTestClient(t, svc.db, "ABC Foods")
	first := testutil.CreateTestSample(t, svc.db, "L-1", testutil.WithClient(client.ID))
	second := testutil.CreateTestSample(t, svc.db, "L-2")

	for _, id := range []uuid.UUID{first.ID, second.ID, first.ID} {
		_, err := svc.reports.Generate(ctx, id, report.Options{Action: report.ActionDownload})
		require.NoError(t, err)
	}

	page, err := svc.reports.List(ctx, 1, 20, &repository.ReportFilters{}, repository.DefaultSortConfig())
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)

	page, err = svc.reports.List(ctx, 1, 20, &repository.ReportFilters{ClientID: &client.ID}, repository.DefaultSortConfig())
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	page, err = svc.reports.List(ctx, 1, 20, &repository.ReportFilters{SampleID: &second.ID, Window: repository.DateWindowToday}, repository.DefaultSortConfig())
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	rows := page.Data.([]domain.ReportDTO)
	require.NotNil(t, rows[0].Sample)
	assert.Equal(t, "L-2", rows[0].Sample.SampleCode)
}

func TestReportService_CreateMeatReport(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	req := &domain.CreateReportRequest{
		ReportType: domain.ReportTypeMeat,
		Supplier:   "ABC Foods",
		SampleRows: []domain.MeatSampleRow{
			{SupplierCode: "SUP-9", CollectionDate: "2026-02-01", ReportDate: "2026-02-03", SampleNo: "1", Species: "Beef", TPC: "1,200", Salmonella: "Nil", Comments: "Acceptable"},
			{SampleNo: "2", Species: "Mutton", TPC: "4000"},
		},
	}

	created, err := svc.reports.CreateReport(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, created.Sample)

	assert.Equal(t, "SUP-9", created.Sample.SampleCode)
	assert.Equal(t, "ABC Foods", created.Sample.Source)
	assert.Equal(t, "2026-02-01", created.Sample.CollectionDate)
	assert.Equal(t, "2026-02-03", created.Sample.ReceivedDate)
	assert.Equal(t, domain.SampleStatusCompleted, created.Sample.Status)
	require.NotNil(t, created.Sample.TestResult)
	require.NotNil(t, created.Sample.TestResult.TPC)
	assert.Equal(t, 1200.0, *created.Sample.TestResult.TPC)
	assert.Equal(t, "Acceptable", created.Sample.TestResult.Remarks)

	var stored domain.MeatReportData
	require.NoError(t, json.Unmarshal(created.Sample.TestResult.CustomData, &stored))
	assert.Len(t, stored.SampleRows, 2)

	// Resubmitting the same supplier code updates the sample in place.
	req.SampleRows[0].TPC = "3000"
	again, err := svc.reports.CreateReport(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, created.SampleID, again.SampleID)
	assert.Equal(t, 3000.0, *again.Sample.TestResult.TPC)

	samples, err := svc.repos.sample.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), samples)
	assert.Equal(t, int64(2), countReports(t, svc))
}

func TestReportService_CreateMeatReportRequiresHeader(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	row := func(mutate func(*domain.MeatSampleRow)) []domain.MeatSampleRow {
		r := domain.MeatSampleRow{SupplierCode: "SUP-1", CollectionDate: "2026-02-01", ReportDate: "2026-02-03", TPC: "100"}
		mutate(&r)
		return []domain.MeatSampleRow{r}
	}

	tests := []struct {
		name     string
		supplier string
		rows     []domain.MeatSampleRow
	}{
		{"missing supplier name", "", row(func(*domain.MeatSampleRow) {})},
		{"blank supplier name", "   ", row(func(*domain.MeatSampleRow) {})},
		{"missing supplier code", "ABC Foods", row(func(r *domain.MeatSampleRow) { r.SupplierCode = "" })},
		{"missing collection date", "ABC Foods", row(func(r *domain.MeatSampleRow) { r.CollectionDate = "" })},
		{"missing report date", "ABC Foods", row(func(r *domain.MeatSampleRow) { r.ReportDate = "" })},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.reports.CreateReport(ctx, &domain.CreateReportRequest{
				ReportType: domain.ReportTypeMeat,
				Supplier:   tt.supplier,
				SampleRows: tt.rows,
			})
			assert.ErrorIs(t, err, ErrInvalidReportRequest)
		})
	}

	samples, err := svc.repos.sample.Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, samples)

	// Request level dates stand in for the row's.
	created, err := svc.reports.CreateReport(ctx, &domain.CreateReportRequest{
		ReportType:     domain.ReportTypeMeat,
		Supplier:       "ABC Foods",
		CollectionDate: "2026-03-01",
		ReportDate:     "2026-03-02",
		SampleRows:     []domain.MeatSampleRow{{SupplierCode: "SUP-2", TPC: "100"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "SUP-2", created.Sample.SampleCode)
	assert.Equal(t, "2026-03-01", created.Sample.CollectionDate)
}

func TestReportService_CreateReportReusesSampleCode(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	req := &domain.CreateReportRequest{
		ReportType:     domain.ReportTypeMeat,
		SampleCode:     "BATCH-7",
		Supplier:       "ABC Foods",
		CollectionDate: "2026-02-01",
		ReportDate:     "2026-02-02",
		SampleRows:     []domain.MeatSampleRow{{SupplierCode: "SUP-7", SampleNo: "1", TPC: "not counted"}},
	}
	first, err := svc.reports.CreateReport(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "BATCH-7", first.Sample.SampleCode)
	require.NotNil(t, first.Sample.TestResult.TPC)
	assert.Equal(t, float64(defaultMeatTPC), *first.Sample.TestResult.TPC)

	req.SampleRows = []domain.MeatSampleRow{{SupplierCode: "SUP-8", SampleNo: "1", TPC: "9000"}}
	second, err := svc.reports.CreateReport(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, first.SampleID, second.SampleID)
	assert.Equal(t, 9000.0, *second.Sample.TestResult.TPC)

	samples, err := svc.repos.sample.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), samples)

	var results int64
	require.NoError(t, svc.db.Model(&domain.TestResult{}).Count(&results).Error)
	assert.Equal(t, int64(1), results)
}

func TestReportService_CreateWaterReport(t *testing.T) {
	svc := setupServices(t)
	data, err := json.Marshal(domain.DefaultCustomData(domain.ReportTypeWater))
	require.NoError(t, err)

	created, err := svc.reports.CreateReport(context.Background(), &domain.CreateReportRequest{
		ReportType: domain.ReportTypeWater,
		CustomData: data,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ReportTypeWater, created.ReportType)
	assert.Equal(t, "Water Quality Analysis", created.Sample.SampleType)
	result := created.Sample.TestResult
	require.NotNil(t, result)
	require.NotNil(t, result.PH)
	assert.Equal(t, 7.8, *result.PH)
	require.NotNil(t, result.TDS)
	assert.Equal(t, 370.0, *result.TDS)
	assert.Equal(t, "All parameters within acceptable limits", result.Remarks)
}

func TestReportService_CreateHygieneReportUsesFixedRemarks(t *testing.T) {
	svc := setupServices(t)
	data, err := json.Marshal(domain.DefaultCustomData(domain.ReportTypeDeboning))
	require.NoError(t, err)

	created, err := svc.reports.CreateReport(context.Background(), &domain.CreateReportRequest{
		ReportType: domain.ReportTypeDeboning,
		CustomData: data,
	})
	require.NoError(t, err)
	assert.Equal(t, hygieneRemarks[domain.ReportTypeDeboning], created.Sample.TestResult.Remarks)
	assert.Contains(t, created.Sample.SampleCode, "DB-")
}

func TestReportService_CreateReportRejects(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	missing := uuid.New()
	validRows := []domain.MeatSampleRow{{SupplierCode: "SUP-1", CollectionDate: "2026-02-01", ReportDate: "2026-02-03", TPC: "1"}}

	tests := []struct {
		name string
		req  *domain.CreateReportRequest
		want error
	}{
		{"unknown type", &domain.CreateReportRequest{ReportType: "soil"}, ErrInvalidReportRequest},
		{"meat without rows", &domain.CreateReportRequest{ReportType: domain.ReportTypeMeat}, ErrInvalidReportRequest},
		{"air without data", &domain.CreateReportRequest{ReportType: domain.ReportTypeAir}, ErrInvalidReportRequest},
		{"air without departments", &domain.CreateReportRequest{ReportType: domain.ReportTypeAir, CustomData: domain.RawJSON(`{"departments":[]}`)}, ErrInvalidReportRequest},
		{"malformed data", &domain.CreateReportRequest{ReportType: domain.ReportTypeFoodSurface, CustomData: domain.RawJSON(`{"surfaces":1}`)}, ErrInvalidCustomData},
		{"unknown client", &domain.CreateReportRequest{ReportType: domain.ReportTypeMeat, ClientID: &missing, Supplier: "ABC Foods", SampleRows: validRows}, ErrClientNotFound},
		{"bad date", &domain.CreateReportRequest{ReportType: domain.ReportTypeMeat, ReportDate: "yesterday", Supplier: "ABC Foods", SampleRows: validRows}, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.reports.CreateReport(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	samples, err := svc.repos.sample.Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, samples)
}

func TestReportService_Template(t *testing.T) {
	svc := setupServices(t)

	tmpl, err := svc.reports.Template(domain.ReportTypeAir)
	require.NoError(t, err)
	assert.IsType(t, &domain.AirQualityData{}, tmpl)

	_, err = svc.reports.Template("soil")
	assert.ErrorIs(t, err, ErrInvalidReportRequest)
}
