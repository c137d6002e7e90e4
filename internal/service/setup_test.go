package service

import (
	"testing"

	"github.com/meatlab/lims-api/internal/report"
	"github.com/meatlab/lims-api/internal/repository"
	"github.com/meatlab/lims-api/internal/storage"
	"github.com/meatlab/lims-api/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testServices struct {
	db       *gorm.DB
	samples  *SampleService
	results  *TestResultService
	clients  *ClientService
	profiles *ProfileService
	settings *LabSettingsService
	reports  *ReportService
	archive  *storage.LocalStorage
	repos    testRepos
}

type testRepos struct {
	sample  *repository.SampleRepository
	result  *repository.TestResultRepository
	report  *repository.ReportRepository
	client  *repository.ClientRepository
	profile *repository.ProfileRepository
}

func setupServices(t *testing.T) *testServices {
	t.Helper()

	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	repos := testRepos{
		sample:  repository.NewSampleRepository(db),
		result:  repository.NewTestResultRepository(db),
		report:  repository.NewReportRepository(db),
		client:  repository.NewClientRepository(db),
		profile: repository.NewProfileRepository(db),
	}

	archive, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	codes := NewSampleCodeService(repository.NewSampleCodeSequenceRepository(db), logger)
	settings := NewLabSettingsService(repository.NewLabSettingsRepository(db), report.FallbackLabName, logger)

	return &testServices{
		db:       db,
		samples:  NewSampleService(repos.sample, repos.client, repos.profile, codes, logger),
		results:  NewTestResultService(repos.result, repos.sample, logger),
		clients:  NewClientService(repos.client, logger),
		profiles: NewProfileService(repos.profile, logger),
		settings: settings,
		reports: NewReportService(ReportServiceDeps{
			SampleRepo:  repos.sample,
			ResultRepo:  repos.result,
			ReportRepo:  repos.report,
			ProfileRepo: repos.profile,
			ClientRepo:  repos.client,
			Settings:    settings,
			Codes:       codes,
			Renderer:    report.NewRenderer(logger),
			Archive:     archive,
		}, logger),
		archive: archive,
		repos:   repos,
	}
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }
