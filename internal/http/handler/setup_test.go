package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/meatlab/lims-api/internal/domain"
	"github.com/meatlab/lims-api/internal/http/handler"
	"github.com/meatlab/lims-api/internal/report"
	"github.com/meatlab/lims-api/internal/repository"
	"github.com/meatlab/lims-api/internal/service"
	"github.com/meatlab/lims-api/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testHandlers struct {
	db       *gorm.DB
	client   *handler.ClientHandler
	sample   *handler.SampleHandler
	report   *handler.ReportHandler
	settings *handler.LabSettingsHandler
	profile  *handler.ProfileHandler
	bot      *service.BotService
}

func setupHandlers(t *testing.T) *testHandlers {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	sampleRepo := repository.NewSampleRepository(db)
	resultRepo := repository.NewTestResultRepository(db)
	reportRepo := repository.NewReportRepository(db)
	clientRepo := repository.NewClientRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	codes := service.NewSampleCodeService(repository.NewSampleCodeSequenceRepository(db), logger)
	settings := service.NewLabSettingsService(repository.NewLabSettingsRepository(db), report.FallbackLabName, logger)
	reports := service.NewReportService(service.ReportServiceDeps{
		SampleRepo:  sampleRepo,
		ResultRepo:  resultRepo,
		ReportRepo:  reportRepo,
		ProfileRepo: profileRepo,
		ClientRepo:  clientRepo,
		Settings:    settings,
		Codes:       codes,
		Renderer:    report.NewRenderer(logger),
	}, logger)

	return &testHandlers{
		db:     db,
		client: handler.NewClientHandler(service.NewClientService(clientRepo, logger), logger),
		sample: handler.NewSampleHandler(
			service.NewSampleService(sampleRepo, clientRepo, profileRepo, codes, logger),
			service.NewTestResultService(resultRepo, sampleRepo, logger),
			reports,
			logger,
		),
		report:   handler.NewReportHandler(reports, logger),
		settings: handler.NewLabSettingsHandler(settings, logger),
		profile:  handler.NewProfileHandler(service.NewProfileService(profileRepo, logger), logger),
		bot:      service.NewBotService(sampleRepo, resultRepo, reports, nil, false, logger),
	}
}

func analystContext(t *testing.T, db *gorm.DB) context.Context {
	t.Helper()
	return testutil.ContextForProfile(testutil.CreateTestProfile(t, db, "Test Analyst", domain.RoleAnalyst))
}

// newRequest builds a request with an authenticated context and chi URL params
func newRequest(ctx context.Context, method, target string, body interface{}, params map[string]string) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	return req.WithContext(ctx)
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}
