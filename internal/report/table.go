package report

const (
	tableRowHeight  = 6.0
	tableFontSize   = 8.0
	tableCellMargin = 2.0
)

// Column describes one column of a results table over rows of type T
type Column[T any] struct {
	Header string
	Width  float64
	Align  string
	Value  func(row T) string
}

// table is a column-spec table flattened to printable cells
type table struct {
	title   string
	headers []string
	widths  []float64
	aligns  []string
	cells   [][]string
	size    float64
}

// newTable evaluates every column for every row
func newTable[T any](title string, columns []Column[T], rows []T) table {
	t := table{
		title:   title,
		headers: make([]string, len(columns)),
		widths:  make([]float64, len(columns)),
		aligns:  make([]string, len(columns)),
		cells:   make([][]string, 0, len(rows)),
		size:    tableFontSize,
	}
	for i, c := range columns {
		t.headers[i] = c.Header
		t.widths[i] = c.Width
		t.aligns[i] = c.Align
		if t.aligns[i] == "" {
			t.aligns[i] = "L"
		}
	}
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = c.Value(row)
		}
		t.cells = append(t.cells, cells)
	}
	return t
}

// drawTable prints the table at the cursor. Before each row the cursor is
// checked against the page break line; on overflow a new page is started
// and the header row is drawn again.
func (l *layout) drawTable(t table) {
	if t.title != "" {
		l.ensure(lineHeight + 1 + 2*tableRowHeight)
		l.label(t.title)
	}

	l.ensure(2 * tableRowHeight)
	l.drawTableHeader(t)

	l.font("", t.size)
	for _, row := range t.cells {
		if l.ensure(tableRowHeight) {
			l.drawTableHeader(t)
			l.font("", t.size)
		}
		x := pageMargin
		for i, cell := range row {
			l.pdf.SetXY(x, l.y)
			l.pdf.CellFormat(t.widths[i], tableRowHeight, l.fit(cell, t.widths[i]-tableCellMargin), "1", 0, t.aligns[i], false, 0, "")
			x += t.widths[i]
		}
		l.y += tableRowHeight
	}
	l.y += 3
}

func (l *layout) drawTableHeader(t table) {
	l.font("B", t.size)
	l.pdf.SetFillColor(230, 230, 230)
	x := pageMargin
	for i, h := range t.headers {
		l.pdf.SetXY(x, l.y)
		l.pdf.CellFormat(t.widths[i], tableRowHeight, l.fit(h, t.widths[i]-tableCellMargin), "1", 0, "C", true, 0, "")
		x += t.widths[i]
	}
	l.y += tableRowHeight
}
