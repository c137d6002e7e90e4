package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptrF(v float64) *float64 { return &v }
func ptrS(v string) *string   { return &v }

func TestMeatVerdict(t *testing.T) {
	tests := []struct {
		name      string
		tpc       *float64
		pathogens []*string
		want      Verdict
	}{
		{"below limit passes", ptrF(50000), nil, VerdictPass},
		{"at limit passes", ptrF(TPCLimit), nil, VerdictPass},
		{"above limit fails", ptrF(150000), nil, VerdictFail},
		{"missing tpc has no verdict", nil, []*string{ptrS("negative")}, ""},
		{"positive salmonella fails", ptrF(100), []*string{ptrS("negative"), ptrS("Positive")}, VerdictFail},
		{"detected fails without tpc", nil, []*string{ptrS(" detected ")}, VerdictFail},
		{"nil pathogen ignored", ptrF(10), []*string{nil}, VerdictPass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MeatVerdict(tt.tpc, tt.pathogens...))
		})
	}
}

func TestVerdictSummary(t *testing.T) {
	assert.Equal(t, "Satisfactory", VerdictPass.Summary())
	assert.Equal(t, "Unsatisfactory", VerdictFail.Summary())
	assert.Equal(t, "", Verdict("").Summary())
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"5000", 5000, true},
		{"1,200", 1200, true},
		{" 3.5 ", 3.5, true},
		{"Nil", 0, true},
		{"not detected", 0, true},
		{"", 0, false},
		{"TNTC", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseCount(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
