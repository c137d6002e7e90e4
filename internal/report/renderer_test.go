package report

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/meatlab/lims-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testDocument(rt domain.ReportType) *Document {
	tpc := 50000.0
	negative := "negative"
	return &Document{
		Type: rt,
		Letterhead: Letterhead{
			LabName: "Meat Lab QA",
			Address: "Plot 12, Industrial Area",
			Phone:   "+92 300 0000000",
		},
		Sample: SampleInfo{
			Code:           rt.CodePrefix() + "-2026-0001",
			Type:           rt.DefaultSampleType(),
			Source:         "Beef Plant 1",
			CollectionDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			ReceivedDate:   time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			Status:         string(domain.SampleStatusCompleted),
		},
		Result: &domain.TestResult{
			TPC:        &tpc,
			Coliforms:  &negative,
			Salmonella: &negative,
			Remarks:    "Results are satisfactory",
		},
		CustomData:  domain.DefaultCustomData(rt),
		GeneratedAt: time.Date(2026, 3, 3, 10, 30, 0, 0, time.UTC),
	}
}

func TestRenderer_RendersEveryReportType(t *testing.T) {
	r := NewRenderer(zap.NewNop())

	for _, rt := range domain.AllReportTypes {
		t.Run(string(rt), func(t *testing.T) {
			data, err := r.Render(testDocument(rt), Options{Action: ActionDownload})
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
		})
	}
}

func TestRenderer_WithoutCustomDataOrResult(t *testing.T) {
	doc := testDocument(domain.ReportTypeMeat)
	doc.CustomData = nil
	doc.Result = nil
	doc.Letterhead = Letterhead{}
	doc.GeneratedAt = time.Time{}

	data, err := NewRenderer(zap.NewNop()).Render(doc, Options{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRenderer_PrintEmbedsAutoPrint(t *testing.T) {
	r := NewRenderer(zap.NewNop())
	doc := testDocument(domain.ReportTypeAir)

	printed, err := r.Render(doc, Options{Action: ActionPrint})
	require.NoError(t, err)
	downloaded, err := r.Render(doc, Options{Action: ActionDownload})
	require.NoError(t, err)

	assert.Contains(t, string(printed), "/JavaScript")
	assert.NotContains(t, string(downloaded), "/JavaScript")
}

func TestRenderer_DrawsLetterheadImages(t *testing.T) {
	doc := testDocument(domain.ReportTypeWater)
	logo := testPNG(t)
	doc.Letterhead.Logo = &Image{Name: "logo", Data: logo}
	doc.Letterhead.Signature = &Image{Name: "signature"}
	doc.Letterhead.Stamp = &Image{Name: "stamp", Data: []byte("not an image")}

	data, err := NewRenderer(zap.NewNop()).Render(doc, Options{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestJudgeMeatRows(t *testing.T) {
	tests := []struct {
		name    string
		rows    []domain.MeatSampleRow
		verdict domain.Verdict
	}{
		{
			name:    "all rows pass",
			rows:    []domain.MeatSampleRow{{TPC: "5000", Salmonella: "Nil"}, {TPC: "80,000"}},
			verdict: domain.VerdictPass,
		},
		{
			name:    "high count fails",
			rows:    []domain.MeatSampleRow{{TPC: "5000"}, {TPC: "150000"}},
			verdict: domain.VerdictFail,
		},
		{
			name:    "positive pathogen fails",
			rows:    []domain.MeatSampleRow{{TPC: "100", Salmonella: "Positive"}},
			verdict: domain.VerdictFail,
		},
		{
			name:    "unreadable count leaves verdict open",
			rows:    []domain.MeatSampleRow{{TPC: "5000"}, {TPC: "TNTC"}},
			verdict: "",
		},
		{
			name:    "no rows",
			verdict: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			judged, verdict := judgeMeatRows(tt.rows)
			assert.Len(t, judged, len(tt.rows))
			assert.Equal(t, tt.verdict, verdict)
		})
	}
}

func TestPlateAverage(t *testing.T) {
	assert.Equal(t, "13.0", plateAverage(domain.AirDepartment{Plate1: "12", Plate2: "14", Plate3: "13"}))
	assert.Equal(t, "10.0", plateAverage(domain.AirDepartment{Plate1: "10", Plate2: "x"}))
	assert.Equal(t, "-", plateAverage(domain.AirDepartment{}))
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction("")
	require.NoError(t, err)
	assert.Equal(t, ActionDownload, a)

	a, err = ParseAction("print")
	require.NoError(t, err)
	assert.Equal(t, ActionPrint, a)

	_, err = ParseAction("email")
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	at := time.Date(2026, 3, 3, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "AIR-2026-0001_Report_2026-03-03.pdf", Filename("AIR-2026-0001", at))
}

func TestDetectImageType(t *testing.T) {
	assert.Equal(t, "PNG", detectImageType(testPNG(t)))
	assert.Equal(t, "", detectImageType([]byte("plain text")))
}

type failingImageSource struct{}

func (failingImageSource) Fetch(context.Context, string) ([]byte, error) {
	return nil, errors.New("unreachable")
}

func TestLoadImage(t *testing.T) {
	logo := testPNG(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/logo.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(logo)
	}))
	defer srv.Close()

	ctx := context.Background()
	logger := zap.NewNop()
	src := NewHTTPImageSource(time.Second)

	assert.Nil(t, LoadImage(ctx, src, logger, "logo", ""))

	img := LoadImage(ctx, src, logger, "logo", srv.URL+"/logo.png")
	require.NotNil(t, img)
	assert.Equal(t, logo, img.Data)

	missing := LoadImage(ctx, src, logger, "stamp", srv.URL+"/stamp.png")
	require.NotNil(t, missing)
	assert.Empty(t, missing.Data)

	failed := LoadImage(ctx, failingImageSource{}, logger, "signature", "https://example.invalid/sig.png")
	require.NotNil(t, failed)
	assert.Equal(t, "signature", failed.Name)
	assert.Empty(t, failed.Data)
}

// pageCount counts page objects in an uncompressed PDF object table
func pageCount(data []byte) int {
	return bytes.Count(data, []byte("/Type /Page")) - bytes.Count(data, []byte("/Type /Pages"))
}

func TestRenderer_PaginatesLongTables(t *testing.T) {
	r := NewRenderer(zap.NewNop())

	short := testDocument(domain.ReportTypeFoodSurface)
	data, err := r.Render(short, Options{Action: ActionDownload})
	require.NoError(t, err)
	shortPages := pageCount(data)
	assert.GreaterOrEqual(t, shortPages, 1)

	surfaces := make([]domain.SurfaceSwab, 120)
	for i := range surfaces {
		surfaces[i] = domain.SurfaceSwab{
			SNo:      strconv.Itoa(i + 1),
			Area:     "Cutting board " + strconv.Itoa(i+1),
			APC:      "<10",
			Coliform: "Nil",
		}
	}
	long := testDocument(domain.ReportTypeFoodSurface)
	long.CustomData = &domain.SurfaceHygieneData{Surfaces: surfaces}

	data, err = r.Render(long, Options{Action: ActionDownload})
	require.NoError(t, err)
	assert.Greater(t, pageCount(data), shortPages)
	assert.Greater(t, pageCount(data), 1)
}
