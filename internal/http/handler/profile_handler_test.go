package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meatlab/lims-api/internal/domain"
	"github.com/meatlab/lims-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileHandler_UpdateRole(t *testing.T) {
	h := setupHandlers(t)
	admin := testutil.CreateTestProfile(t, h.db, "Admin", domain.RoleAdmin)
	viewer := testutil.CreateTestProfile(t, h.db, "Viewer", domain.RoleViewer)
	ctx := testutil.ContextForProfile(admin)

	tests := []struct {
		name           string
		id             string
		body           interface{}
		expectedStatus int
	}{
		{"promote viewer", viewer.ID.String(), domain.UpdateProfileRoleRequest{Role: domain.RoleAnalyst}, http.StatusOK},
		{"unknown role", viewer.ID.String(), map[string]string{"role": "owner"}, http.StatusBadRequest},
		{"bad id", "nope", domain.UpdateProfileRoleRequest{Role: domain.RoleAnalyst}, http.StatusBadRequest},
		{"demote last admin", admin.ID.String(), domain.UpdateProfileRoleRequest{Role: domain.RoleViewer}, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.profile.UpdateRole(rr, newRequest(ctx, http.MethodPut, "/", tt.body, map[string]string{"id": tt.id}))
			assert.Equal(t, tt.expectedStatus, rr.Code, rr.Body.String())
		})
	}
}

func TestProfileHandler_Me(t *testing.T) {
	h := setupHandlers(t)
	analyst := testutil.CreateTestProfile(t, h.db, "Sara", domain.RoleAnalyst)

	rr := httptest.NewRecorder()
	h.profile.Me(rr, newRequest(testutil.ContextForProfile(analyst), http.MethodGet, "/", nil, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var me domain.ProfileDTO
	decodeBody(t, rr, &me)
	assert.Equal(t, "Sara", me.FullName)

	rr = httptest.NewRecorder()
	h.profile.Me(rr, newRequest(context.Background(), http.MethodGet, "/", nil, nil))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestLabSettingsHandler_GetAndUpdate(t *testing.T) {
	h := setupHandlers(t)
	admin := testutil.CreateTestProfile(t, h.db, "Admin", domain.RoleAdmin)
	ctx := testutil.ContextForProfile(admin)

	rr := httptest.NewRecorder()
	h.settings.Get(rr, newRequest(ctx, http.MethodGet, "/", nil, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var current domain.LabSettingsDTO
	decodeBody(t, rr, &current)
	assert.True(t, current.IsDefault)

	rr = httptest.NewRecorder()
	h.settings.Update(rr, newRequest(ctx, http.MethodPut, "/", domain.UpdateLabSettingsRequest{LabName: "Meat Lab QA", LabLogoURL: "not a url"}, nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	h.settings.Update(rr, newRequest(ctx, http.MethodPut, "/", domain.UpdateLabSettingsRequest{LabName: "Meat Lab QA", LabLogoURL: "https://cdn.lab.test/logo.png"}, nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var updated domain.LabSettingsDTO
	decodeBody(t, rr, &updated)
	assert.False(t, updated.IsDefault)
	assert.Equal(t, "Meat Lab QA", updated.LabName)
}
