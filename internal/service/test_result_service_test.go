package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/meatlab/lims-api/internal/domain"
	"github.com/meatlab/lims-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestResultService_SaveCompletesSample(t *testing.T) {
	svc := setupServices(t)
	analyst := testutil.CreateTestProfile(t, svc.db, "Sara", domain.RoleAnalyst)
	ctx := testutil.ContextForProfile(analyst)
	sample := testutil.CreateTestSample(t, svc.db, "R-1")

	saved, err := svc.results.Save(ctx, sample.ID, &domain.UpsertTestResultRequest{
		TPC:        floatPtr(50000),
		Salmonella: strPtr("negative"),
	})
	require.NoError(t, err)
	assert.Equal(t, sample.ID, saved.SampleID)

	got, err := svc.samples.GetByID(ctx, sample.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SampleStatusCompleted, got.Status)
	assert.True(t, got.HasResult)
}

func TestTestResultService_SaveReplacesResult(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	sample := testutil.CreateTestSample(t, svc.db, "R-2")

	_, err := svc.results.Save(ctx, sample.ID, &domain.UpsertTestResultRequest{TPC: floatPtr(1000)})
	require.NoError(t, err)
	_, err = svc.results.Save(ctx, sample.ID, &domain.UpsertTestResultRequest{TPC: floatPtr(2000), Remarks: "retest"})
	require.NoError(t, err)

	var count int64
	require.NoError(t, svc.db.Model(&domain.TestResult{}).Where("sample_id = ?", sample.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	got, err := svc.results.Get(ctx, sample.ID)
	require.NoError(t, err)
	require.NotNil(t, got.TPC)
	assert.Equal(t, 2000.0, *got.TPC)
	assert.Equal(t, "retest", got.Remarks)
}

func TestTestResultService_CustomDataMustMatchType(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	sample := testutil.CreateTestSample(t, svc.db, "AIR-1", testutil.WithType("Air Quality Monitoring"))

	_, err := svc.results.Save(ctx, sample.ID, &domain.UpsertTestResultRequest{
		CustomData: domain.RawJSON(`{"departments": {"name": "Beef 1"}}`),
	})
	assert.ErrorIs(t, err, ErrInvalidCustomData)

	_, err = svc.results.Save(ctx, sample.ID, &domain.UpsertTestResultRequest{
		CustomData: domain.RawJSON(`{"departments":[{"sNo":"1","name":"Beef 1","plate1":"12","plate2":"14","plate3":"13"}]}`),
	})
	require.NoError(t, err)
}

func TestTestResultService_GetMissing(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	sample := testutil.CreateTestSample(t, svc.db, "R-3")

	_, err := svc.results.Get(ctx, sample.ID)
	assert.ErrorIs(t, err, ErrTestResultNotFound)

	_, err = svc.results.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrSampleNotFound)

	_, err = svc.results.Save(ctx, uuid.New(), &domain.UpsertTestResultRequest{})
	assert.ErrorIs(t, err, ErrSampleNotFound)
}
