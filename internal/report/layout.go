package report

import (
	"strings"

	"github.com/phpdave11/gofpdf"
)

// Page geometry in millimetres (A4 portrait)
const (
	pageMargin     = 15.0
	pageBreakY     = 260.0
	continuationY  = 20.0
	footerOffset   = 20.0
	lineHeight     = 5.0
	fontFamily     = "Helvetica"
	ellipsis       = "..."
	baseline       = 3.8
	headerRuleY    = 38.0
	sampleSectionY = 51.0
)

// layout wraps a gofpdf document with a running vertical cursor. The
// cursor y is the top of the next free line.
type layout struct {
	pdf          *gofpdf.Fpdf
	tr           func(string) string
	y            float64
	pageWidth    float64
	pageHeight   float64
	contentWidth float64
}

func newLayout(pdf *gofpdf.Fpdf) *layout {
	w, h := pdf.GetPageSize()
	return &layout{
		pdf:          pdf,
		tr:           pdf.UnicodeTranslatorFromDescriptor(""),
		pageWidth:    w,
		pageHeight:   h,
		contentWidth: w - 2*pageMargin,
	}
}

func (l *layout) font(style string, size float64) {
	l.pdf.SetFont(fontFamily, style, size)
}

// text writes txt on the line at the current cursor
func (l *layout) text(x float64, txt string) {
	l.pdf.Text(x, l.y+baseline, l.tr(txt))
}

// centered writes txt centred on the page with its baseline at y
func (l *layout) centered(y float64, txt string) {
	t := l.tr(txt)
	l.pdf.Text((l.pageWidth-l.pdf.GetStringWidth(t))/2, y, t)
}

// rightAligned writes txt ending at the right margin with its baseline at y
func (l *layout) rightAligned(y float64, txt string) {
	t := l.tr(txt)
	l.pdf.Text(l.pageWidth-pageMargin-l.pdf.GetStringWidth(t), y, t)
}

// newPage starts a continuation page and resets the cursor
func (l *layout) newPage() {
	l.pdf.AddPage()
	l.y = continuationY
}

// ensure starts a new page when h millimetres no longer fit above the break line
func (l *layout) ensure(h float64) bool {
	if l.y+h > pageBreakY {
		l.newPage()
		return true
	}
	return false
}

// label writes a bold heading line
func (l *layout) label(txt string) {
	l.ensure(lineHeight + 2)
	l.font("B", 10)
	l.text(pageMargin, txt)
	l.y += lineHeight + 1
}

// field writes a "Name: value" line, skipping empty values
func (l *layout) field(name, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	l.ensure(lineHeight)
	l.font("", 10)
	l.text(pageMargin, name+": "+value)
	l.y += lineHeight
}

// paragraph writes wrapped text across the content width
func (l *layout) paragraph(txt string, size float64) {
	l.font("", size)
	lines := l.pdf.SplitLines([]byte(l.tr(txt)), l.contentWidth)
	for _, line := range lines {
		l.ensure(lineHeight)
		l.pdf.Text(pageMargin, l.y+baseline, string(line))
		l.y += lineHeight
	}
}

// fit translates txt and truncates it with an ellipsis so it fits into
// width w. The translated text is single-byte, so trimming works on bytes.
func (l *layout) fit(txt string, w float64) string {
	t := l.tr(txt)
	if l.pdf.GetStringWidth(t) <= w {
		return t
	}
	b := []byte(t)
	for len(b) > 0 && l.pdf.GetStringWidth(string(b)+ellipsis) > w {
		b = b[:len(b)-1]
	}
	return string(b) + ellipsis
}
