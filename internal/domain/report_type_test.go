package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectReportType(t *testing.T) {
	tests := map[string]ReportType{
		"Frozen Beef Meat":       ReportTypeMeat,
		"AIR QUALITY monitoring": ReportTypeAir,
		"Water Quality Analysis": ReportTypeWater,
		"Food Handler Testing":   ReportTypeFoodHandler,
		"Food Surface Testing":   ReportTypeFoodSurface,
		"Conveyor surface":       ReportTypeFoodSurface,
		"Deboning Testing":       ReportTypeDeboning,
		"Swab":                   ReportTypeMeat,
		"":                       ReportTypeMeat,
	}
	for in, want := range tests {
		assert.Equal(t, want, DetectReportType(in), in)
	}
}

func TestDetectReportType_RoundTripsDefaultSampleType(t *testing.T) {
	for _, rt := range AllReportTypes {
		assert.Equal(t, rt, DetectReportType(rt.DefaultSampleType()), rt)
	}
}

func TestReportType_IsValid(t *testing.T) {
	for _, rt := range AllReportTypes {
		assert.True(t, rt.IsValid(), rt)
		assert.NotEmpty(t, rt.CodePrefix())
		assert.NotEmpty(t, rt.Title())
	}
	assert.False(t, ReportType("soil").IsValid())
}

func TestParseCustomData(t *testing.T) {
	t.Run("empty document", func(t *testing.T) {
		got, err := ParseCustomData(ReportTypeAir, nil)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("deboning uses worker form", func(t *testing.T) {
		raw := RawJSON(`{"department":"Debone","workers":[{"sNo":"1","area":"Table","name":"ali","apc":"10","coliform":"NIL"}]}`)
		got, err := ParseCustomData(ReportTypeDeboning, raw)
		require.NoError(t, err)
		data, ok := got.(*WorkerHygieneData)
		require.True(t, ok)
		assert.Equal(t, "Debone", data.Department)
		require.Len(t, data.Workers, 1)
		assert.Equal(t, "ali", data.Workers[0].Name)
	})

	t.Run("malformed document", func(t *testing.T) {
		_, err := ParseCustomData(ReportTypeWater, RawJSON(`{"samplingPoints": "x"}`))
		assert.Error(t, err)
	})
}

func TestDefaultCustomData_IsParseable(t *testing.T) {
	for _, rt := range AllReportTypes {
		if rt == ReportTypeMeat {
			continue
		}
		raw, err := json.Marshal(DefaultCustomData(rt))
		require.NoError(t, err)
		got, err := ParseCustomData(rt, raw)
		require.NoError(t, err, rt)
		assert.NotNil(t, got, rt)
	}
}
