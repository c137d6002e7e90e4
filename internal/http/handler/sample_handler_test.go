package handler_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/meatlab/lims-api/internal/domain"
	"github.com/meatlab/lims-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleHandler_Create(t *testing.T) {
	h := setupHandlers(t)
	ctx := analystContext(t, h.db)

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
	}{
		{
			name:           "valid sample",
			body:           domain.CreateSampleRequest{SampleType: "Water", Source: "RO Plant", ReceivedDate: "2026-02-01"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing sample type",
			body:           domain.CreateSampleRequest{Source: "RO Plant"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad date format",
			body:           domain.CreateSampleRequest{SampleType: "Water", ReceivedDate: "01/02/2026"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed json",
			body:           `{"sampleType":`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newRequest(ctx, http.MethodPost, "/api/v1/samples", tt.body, nil)
			rr := httptest.NewRecorder()

			h.sample.Create(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code, rr.Body.String())
			if tt.expectedStatus == http.StatusCreated {
				var created domain.SampleWithDetailsDTO
				decodeBody(t, rr, &created)
				assert.Contains(t, created.SampleCode, "WATER-")
				assert.Equal(t, "/api/v1/samples/"+created.ID.String(), rr.Header().Get("Location"))
			}
		})
	}
}

func TestSampleHandler_CreateDuplicateCode(t *testing.T) {
	h := setupHandlers(t)
	ctx := analystContext(t, h.db)
	testutil.CreateTestSample(t, h.db, "DUP-1")

	req := newRequest(ctx, http.MethodPost, "/api/v1/samples", domain.CreateSampleRequest{SampleCode: "DUP-1", SampleType: "Beef"}, nil)
	rr := httptest.NewRecorder()
	h.sample.Create(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestSampleHandler_GetByID(t *testing.T) {
	h := setupHandlers(t)
	ctx := analystContext(t, h.db)
	sample := testutil.CreateTestSample(t, h.db, "GET-1")

	rr := httptest.NewRecorder()
	h.sample.GetByID(rr, newRequest(ctx, http.MethodGet, "/api/v1/samples/"+sample.ID.String(), nil, map[string]string{"id": sample.ID.String()}))
	require.Equal(t, http.StatusOK, rr.Code)
	var got domain.SampleWithDetailsDTO
	decodeBody(t, rr, &got)
	assert.Equal(t, "GET-1", got.SampleCode)

	rr = httptest.NewRecorder()
	h.sample.GetByID(rr, newRequest(ctx, http.MethodGet, "/api/v1/samples/x", nil, map[string]string{"id": "not-a-uuid"}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	missing := uuid.NewString()
	rr = httptest.NewRecorder()
	h.sample.GetByID(rr, newRequest(ctx, http.MethodGet, "/api/v1/samples/"+missing, nil, map[string]string{"id": missing}))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	var errResp domain.ErrorResponse
	decodeBody(t, rr, &errResp)
	assert.NotEmpty(t, errResp.Message)
}

func TestSampleHandler_List(t *testing.T) {
	h := setupHandlers(t)
	ctx := analystContext(t, h.db)
	testutil.CreateTestSample(t, h.db, "L-1")
	testutil.CreateTestSample(t, h.db, "L-2", testutil.WithStatus(domain.SampleStatusCompleted))

	rr := httptest.NewRecorder()
	h.sample.List(rr, newRequest(ctx, http.MethodGet, "/api/v1/samples?status=completed", nil, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var page domain.PaginatedResponse
	decodeBody(t, rr, &page)
	assert.Equal(t, int64(1), page.Total)

	rr = httptest.NewRecorder()
	h.sample.List(rr, newRequest(ctx, http.MethodGet, "/api/v1/samples?status=archived", nil, nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	h.sample.List(rr, newRequest(ctx, http.MethodGet, "/api/v1/samples?clientId=nope", nil, nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSampleHandler_SaveAndGetResult(t *testing.T) {
	h := setupHandlers(t)
	ctx := analystContext(t, h.db)
	sample := testutil.CreateTestSample(t, h.db, "RES-1")
	params := map[string]string{"id": sample.ID.String()}

	rr := httptest.NewRecorder()
	h.sample.GetResult(rr, newRequest(ctx, http.MethodGet, "/", nil, params))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	h.sample.SaveResult(rr, newRequest(ctx, http.MethodPut, "/", map[string]interface{}{"tpc": 150000, "salmonella": "negative"}, params))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var saved domain.TestResultDTO
	decodeBody(t, rr, &saved)
	assert.Equal(t, domain.VerdictFail, saved.Verdict)

	rr = httptest.NewRecorder()
	h.sample.SaveResult(rr, newRequest(ctx, http.MethodPut, "/", map[string]interface{}{"ph": 20}, params))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	h.sample.GetResult(rr, newRequest(ctx, http.MethodGet, "/", nil, params))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestSampleHandler_GenerateReport(t *testing.T) {
	h := setupHandlers(t)
	ctx := analystContext(t, h.db)
	sample := testutil.CreateTestSample(t, h.db, "PDF-1")
	testutil.CreateTestResult(t, h.db, sample.ID, 5000)
	params := map[string]string{"id": sample.ID.String()}

	rr := httptest.NewRecorder()
	h.sample.GenerateReport(rr, newRequest(ctx, http.MethodGet, "/?action=download", nil, params))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "attachment")
	assert.NotEmpty(t, rr.Header().Get("X-Report-ID"))
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")))

	rr = httptest.NewRecorder()
	h.sample.GenerateReport(rr, newRequest(ctx, http.MethodGet, "/?action=print", nil, params))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "inline")
	assert.Empty(t, rr.Header().Get("X-Report-ID"))

	rr = httptest.NewRecorder()
	h.sample.GenerateReport(rr, newRequest(ctx, http.MethodGet, "/?action=email", nil, params))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSampleHandler_BulkDelete(t *testing.T) {
	h := setupHandlers(t)
	testutil.CreateTestSample(t, h.db, "B-1")

	rr := httptest.NewRecorder()
	h.sample.BulkDelete(rr, newRequest(context.Background(), http.MethodPost, "/", domain.BulkDeleteSamplesRequest{Scope: "everything"}, nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	h.sample.BulkDelete(rr, newRequest(context.Background(), http.MethodPost, "/", domain.BulkDeleteSamplesRequest{Scope: "all"}, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var res domain.BulkDeleteResultDTO
	decodeBody(t, rr, &res)
	assert.Equal(t, int64(1), res.Deleted)
}

func TestSampleHandler_Types(t *testing.T) {
	h := setupHandlers(t)

	rr := httptest.NewRecorder()
	h.sample.Types(rr, newRequest(context.Background(), http.MethodGet, "/", nil, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var types []string
	decodeBody(t, rr, &types)
	assert.Contains(t, types, "Meat")
}
