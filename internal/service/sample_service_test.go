package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meatlab/lims-api/internal/domain"
	"github.com/meatlab/lims-api/internal/repository"
	"github.com/meatlab/lims-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleService_CreateGeneratesCode(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	year := time.Now().Year()

	first, err := svc.samples.Create(ctx, &domain.CreateSampleRequest{SampleType: "Air Quality Monitoring"})
	require.NoError(t, err)
	second, err := svc.samples.Create(ctx, &domain.CreateSampleRequest{SampleType: "Air"})
	require.NoError(t, err)
	meat, err := svc.samples.Create(ctx, &domain.CreateSampleRequest{SampleType: "Beef"})
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("AIR-%d-0001", year), first.SampleCode)
	assert.Equal(t, fmt.Sprintf("AIR-%d-0002", year), second.SampleCode)
	assert.Equal(t, fmt.Sprintf("SAMPLE-%d-0001", year), meat.SampleCode)
	assert.Equal(t, domain.SampleStatusPending, first.Status)
}

func TestSampleService_CreateWithDetails(t *testing.T) {
	svc := setupServices(t)
	client := testutil.CreateTestClient(t, svc.db, "ABC Foods")
	analyst := testutil.CreateTestProfile(t, svc.db, "Sara Analyst", domain.RoleAnalyst)
	ctx := testutil.ContextForProfile(analyst)

	created, err := svc.samples.Create(ctx, &domain.CreateSampleRequest{
		SampleCode:     "W-100",
		SampleType:     "Water",
		Source:         "RO Plant",
		CollectionDate: "2026-02-01",
		ReceivedDate:   "2026-02-02",
		ClientID:       &client.ID,
		AnalystID:      &analyst.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, "W-100", created.SampleCode)
	assert.Equal(t, "2026-02-02", created.ReceivedDate)
	require.NotNil(t, created.Client)
	assert.Equal(t, "ABC Foods", created.Client.Name)
	assert.Equal(t, "Sara Analyst", created.AnalystName)
}

func TestSampleService_CreateRejects(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	testutil.CreateTestSample(t, svc.db, "DUP-1")
	missing := uuid.New()

	_, err := svc.samples.Create(ctx, &domain.CreateSampleRequest{SampleCode: "DUP-1", SampleType: "Beef"})
	assert.ErrorIs(t, err, ErrDuplicateSampleCode)

	_, err = svc.samples.Create(ctx, &domain.CreateSampleRequest{SampleType: "Beef", ClientID: &missing})
	assert.ErrorIs(t, err, ErrClientNotFound)

	_, err = svc.samples.Create(ctx, &domain.CreateSampleRequest{SampleType: "Beef", AnalystID: &missing})
	assert.ErrorIs(t, err, ErrProfileNotFound)

	_, err = svc.samples.Create(ctx, &domain.CreateSampleRequest{SampleType: "Beef", ReceivedDate: "02/03/2026"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSampleService_ListNewestReceivedFirst(t *testing.T) {
	svc := setupServices(t)
	testutil.CreateTestSample(t, svc.db, "JAN", testutil.WithReceived(testutil.Date(2026, 1, 1)))
	testutil.CreateTestSample(t, svc.db, "MAR", testutil.WithReceived(testutil.Date(2026, 3, 1)))
	testutil.CreateTestSample(t, svc.db, "FEB", testutil.WithReceived(testutil.Date(2026, 2, 1)),
		testutil.WithStatus(domain.SampleStatusCompleted))

	page, err := svc.samples.List(context.Background(), 1, 20, nil, repository.DefaultSortConfig())
	require.NoError(t, err)

	samples := page.Data.([]domain.SampleDTO)
	require.Len(t, samples, 3)
	assert.Equal(t, []string{"MAR", "FEB", "JAN"}, []string{samples[0].SampleCode, samples[1].SampleCode, samples[2].SampleCode})
	assert.Equal(t, int64(3), page.Total)

	pending := domain.SampleStatusPending
	page, err = svc.samples.List(context.Background(), 1, 20, &repository.SampleFilters{Status: &pending}, repository.DefaultSortConfig())
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	page, err = svc.samples.List(context.Background(), 1, 20, &repository.SampleFilters{Search: "fe"}, repository.DefaultSortConfig())
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}

func TestSampleService_Update(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	sample := testutil.CreateTestSample(t, svc.db, "S-1")
	testutil.CreateTestSample(t, svc.db, "S-2")

	req := &domain.UpdateSampleRequest{
		SampleCode:     "S-2",
		SampleType:     "Beef",
		CollectionDate: "2026-01-05",
		ReceivedDate:   "2026-01-06",
		Status:         domain.SampleStatusPending,
	}
	_, err := svc.samples.Update(ctx, sample.ID, req)
	assert.ErrorIs(t, err, ErrDuplicateSampleCode)

	req.SampleCode = "S-1B"
	req.Status = domain.SampleStatusCompleted
	updated, err := svc.samples.Update(ctx, sample.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "S-1B", updated.SampleCode)
	assert.Equal(t, domain.SampleStatusCompleted, updated.Status)

	_, err = svc.samples.Update(ctx, uuid.New(), req)
	assert.ErrorIs(t, err, ErrSampleNotFound)
}

func TestSampleService_DeleteCascades(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	sample := testutil.CreateTestSample(t, svc.db, "DEL-1")
	testutil.CreateTestResult(t, svc.db, sample.ID, 1000)

	require.NoError(t, svc.samples.Delete(ctx, sample.ID))

	var results int64
	require.NoError(t, svc.db.Model(&domain.TestResult{}).Count(&results).Error)
	assert.Zero(t, results)

	assert.ErrorIs(t, svc.samples.Delete(ctx, sample.ID), ErrSampleNotFound)
}

func TestSampleService_BulkDelete(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	testutil.CreateTestSample(t, svc.db, "P-1")
	testutil.CreateTestSample(t, svc.db, "P-2")
	done := testutil.CreateTestSample(t, svc.db, "C-1", testutil.WithStatus(domain.SampleStatusCompleted))
	testutil.CreateTestResult(t, svc.db, done.ID, 100)

	res, err := svc.samples.BulkDelete(ctx, &domain.BulkDeleteSamplesRequest{Scope: "pending"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Deleted)

	count, err := svc.repos.sample.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	res, err = svc.samples.BulkDelete(ctx, &domain.BulkDeleteSamplesRequest{Scope: "all"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Deleted)

	_, err = svc.samples.BulkDelete(ctx, &domain.BulkDeleteSamplesRequest{Scope: "archived"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
