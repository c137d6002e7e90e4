package report

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/phpdave11/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type swabRow struct {
	no   int
	area string
}

func TestLayout_DrawTableRepeatsHeaderOnEachPage(t *testing.T) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	l := newLayout(pdf)
	l.y = sampleSectionY

	rows := make([]swabRow, 120)
	for i := range rows {
		rows[i] = swabRow{no: i + 1, area: "Cutting board"}
	}
	tbl := newTable("Swab results", []Column[swabRow]{
		{Header: "NO", Width: 20, Align: "C", Value: func(r swabRow) string { return strconv.Itoa(r.no) }},
		{Header: "SWAB AREA", Width: 100, Value: func(r swabRow) string { return r.area }},
	}, rows)

	l.drawTable(tbl)
	require.False(t, pdf.Err(), "%v", pdf.Error())

	pages := pdf.PageNo()
	assert.Greater(t, pages, 1)
	assert.LessOrEqual(t, l.y, pageBreakY+3)

	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	assert.Equal(t, pages, bytes.Count(buf.Bytes(), []byte("(SWAB AREA)")))
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("(120)")))
}
