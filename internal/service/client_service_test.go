package service

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/meatlab/lims-api/internal/domain"
	"github.com/meatlab/lims-api/internal/repository"
	"github.com/meatlab/lims-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientService_CRUD(t *testing.T) {
	svc := setupServices(t)
	admin := testutil.CreateTestProfile(t, svc.db, "Admin", domain.RoleAdmin)
	ctx := testutil.ContextForProfile(admin)

	created, err := svc.clients.Create(ctx, &domain.CreateClientRequest{
		Name:    "ABC Foods",
		Company: "ABC Foods Ltd",
		Email:   "qa@abc.test",
	})
	require.NoError(t, err)
	assert.Equal(t, "ABC Foods", created.Name)

	updated, err := svc.clients.Update(ctx, created.ID, &domain.UpdateClientRequest{Name: "ABC Foods Intl", Phone: "042-111"})
	require.NoError(t, err)
	assert.Equal(t, "ABC Foods Intl", updated.Name)
	assert.Equal(t, "042-111", updated.Phone)

	got, err := svc.clients.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "ABC Foods Intl", got.Name)

	_, err = svc.clients.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrClientNotFound)
	_, err = svc.clients.Update(ctx, uuid.New(), &domain.UpdateClientRequest{Name: "x"})
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestClientService_DeleteKeepsSamples(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	client := testutil.CreateTestClient(t, svc.db, "ABC Foods")
	sample := testutil.CreateTestSample(t, svc.db, "C-1", testutil.WithClient(client.ID))

	require.NoError(t, svc.clients.Delete(ctx, client.ID))

	got, err := svc.samples.GetByID(ctx, sample.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ClientID)

	assert.ErrorIs(t, svc.clients.Delete(ctx, client.ID), ErrClientNotFound)
}

func TestClientService_ListWithSampleCounts(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	abc := testutil.CreateTestClient(t, svc.db, "ABC Foods")
	testutil.CreateTestClient(t, svc.db, "XYZ Meats")
	testutil.CreateTestSample(t, svc.db, "C-1", testutil.WithClient(abc.ID))
	testutil.CreateTestSample(t, svc.db, "C-2", testutil.WithClient(abc.ID))

	page, err := svc.clients.List(ctx, 1, 20, nil, repository.SortConfig{Field: "name", Order: repository.SortOrderAsc})
	require.NoError(t, err)
	clients := page.Data.([]domain.ClientDTO)
	require.Len(t, clients, 2)
	assert.Equal(t, "ABC Foods", clients[0].Name)
	assert.Equal(t, int64(2), clients[0].SampleCount)
	assert.Zero(t, clients[1].SampleCount)

	page, err = svc.clients.List(ctx, 1, 20, &repository.ClientFilters{Search: "xyz"}, repository.DefaultSortConfig())
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}

func TestClientService_ExportCSV(t *testing.T) {
	svc := setupServices(t)
	abc := testutil.CreateTestClient(t, svc.db, "ABC, Foods")
	testutil.CreateTestSample(t, svc.db, "C-1", testutil.WithClient(abc.ID))

	data, err := svc.clients.ExportCSV(context.Background(), nil)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Name", records[0][0])
	assert.Equal(t, "ABC, Foods", records[1][0])
	assert.Equal(t, "1", records[1][5])
}

func TestLabSettingsService_FallbackAndUpdate(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	got, err := svc.settings.Get(ctx)
	require.NoError(t, err)
	assert.True(t, got.IsDefault)
	assert.NotEmpty(t, got.LabName)

	_, err = svc.settings.Update(ctx, &domain.UpdateLabSettingsRequest{LabName: "Meat Lab QA", Phone: "123"})
	require.NoError(t, err)
	updated, err := svc.settings.Update(ctx, &domain.UpdateLabSettingsRequest{LabName: "Meat Lab QA 2"})
	require.NoError(t, err)
	assert.Equal(t, "Meat Lab QA 2", updated.LabName)
	assert.Empty(t, updated.Phone)

	var rows int64
	require.NoError(t, svc.db.Model(&domain.LabSettings{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	got, err = svc.settings.Get(ctx)
	require.NoError(t, err)
	assert.False(t, got.IsDefault)
	assert.Equal(t, "Meat Lab QA 2", got.LabName)
}
