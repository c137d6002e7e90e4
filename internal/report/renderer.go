package report

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/meatlab/lims-api/internal/domain"
	"github.com/phpdave11/gofpdf"
	"go.uber.org/zap"
)

const (
	dateFormat      = "02 Jan 2006"
	timestampFormat = "02 Jan 2006 15:04"
	autoPrintScript = "print(true);"
)

// Renderer lays out laboratory reports as A4 PDF documents
type Renderer struct {
	logger *zap.Logger
}

// NewRenderer creates a new report renderer
func NewRenderer(logger *zap.Logger) *Renderer {
	return &Renderer{logger: logger}
}

// Render produces the PDF bytes for doc. Print delivery embeds an
// auto-print action that opens the print dialog when the file is viewed.
func (r *Renderer) Render(doc *Document, opts Options) ([]byte, error) {
	generatedAt := doc.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AliasNbPages("{nb}")
	pdf.SetTitle(fmt.Sprintf("%s %s", doc.Type.Title(), doc.Sample.Code), true)
	pdf.SetCreator(labName(doc.Letterhead), true)
	pdf.SetCreationDate(generatedAt)
	if opts.Action == ActionPrint {
		pdf.SetJavascript(autoPrintScript)
	}

	l := newLayout(pdf)
	analyst := doc.Analyst
	if strings.TrimSpace(analyst) == "" {
		analyst = FallbackAnalystName
	}
	pdf.SetFooterFunc(func() {
		r.drawFooter(l, analyst, generatedAt)
	})

	pdf.AddPage()
	r.drawLetterhead(l, doc)
	r.drawSampleInfo(l, doc)
	r.drawSection(l, buildSection(doc))
	r.drawSignatures(l, doc.Letterhead)

	if pdf.Err() {
		return nil, fmt.Errorf("failed to lay out report: %w", pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	return buf.Bytes(), nil
}

func labName(lh Letterhead) string {
	if strings.TrimSpace(lh.LabName) == "" {
		return FallbackLabName
	}
	return lh.LabName
}

func (r *Renderer) drawLetterhead(l *layout, doc *Document) {
	lh := doc.Letterhead
	r.drawImage(l, lh.Logo, pageMargin, 12, 20, 20)

	l.font("B", 16)
	l.centered(20, labName(lh))

	l.font("", 10)
	if lh.Address != "" {
		l.centered(26, lh.Address)
	}

	var contact []string
	if lh.Phone != "" {
		contact = append(contact, "Tel: "+lh.Phone)
	}
	if lh.Email != "" {
		contact = append(contact, "Email: "+lh.Email)
	}
	if len(contact) > 0 {
		l.centered(32, strings.Join(contact, " | "))
	}

	l.pdf.SetLineWidth(0.5)
	l.pdf.Line(pageMargin, headerRuleY, l.pageWidth-pageMargin, headerRuleY)

	l.font("B", 14)
	l.centered(46, doc.Type.Title())
	l.y = sampleSectionY
}

func (r *Renderer) drawSampleInfo(l *layout, doc *Document) {
	s := doc.Sample
	l.label("Sample Information:")
	l.field("Sample Code", s.Code)
	l.field("Sample Type", s.Type)
	l.field("Source/Supplier", s.Source)
	if s.Client != "" && s.Client != s.Source {
		l.field("Client", s.Client)
	}
	if !s.CollectionDate.IsZero() {
		l.field("Collection Date", s.CollectionDate.Format(dateFormat))
	}
	if !s.ReceivedDate.IsZero() {
		l.field("Received Date", s.ReceivedDate.Format(dateFormat))
	}
	l.field("Status", strings.ToUpper(s.Status))
	l.y += lineHeight
}

func (r *Renderer) drawSection(l *layout, s section) {
	var details []detail
	for _, d := range s.details {
		if strings.TrimSpace(d.value) != "" {
			details = append(details, d)
		}
	}
	if len(details) > 0 {
		l.label("Test Details:")
		for _, d := range details {
			l.field(d.name, d.value)
		}
		l.y += 3
	}

	if s.empty != "" {
		l.font("I", 10)
		l.text(pageMargin, s.empty)
		l.y += lineHeight
		return
	}

	if s.table != nil {
		l.drawTable(*s.table)
	}

	if strings.TrimSpace(s.remarks) != "" {
		l.label("Remarks:")
		l.paragraph(s.remarks, 10)
		l.y += 2
	}

	if s.verdict != "" {
		l.ensure(lineHeight + 2)
		l.font("B", 11)
		if s.verdict == domain.VerdictPass {
			l.pdf.SetTextColor(0, 128, 0)
		} else {
			l.pdf.SetTextColor(200, 0, 0)
		}
		l.text(pageMargin, fmt.Sprintf("Result: %s (TPC limit %d cfu/g)", s.verdict.Summary(), domain.TPCLimit))
		l.pdf.SetTextColor(0, 0, 0)
		l.y += lineHeight + 2
	}
}

func (r *Renderer) drawSignatures(l *layout, lh Letterhead) {
	const blockHeight = 32.0
	l.ensure(blockHeight)

	top := l.y + 4
	right := l.pageWidth - pageMargin
	r.drawImage(l, lh.Stamp, right-95, top, 25, 25)
	r.drawImage(l, lh.Signature, right-55, top+2, 50, 18)

	lineY := top + 22
	l.pdf.SetLineWidth(0.3)
	l.pdf.Line(right-60, lineY, right, lineY)
	l.font("", 9)
	l.rightAligned(lineY+4, "Authorized Signatory")
	l.y = lineY + 6
}

func (r *Renderer) drawFooter(l *layout, analyst string, generatedAt time.Time) {
	footerY := l.pageHeight - footerOffset
	l.pdf.SetLineWidth(0.3)
	l.pdf.Line(pageMargin, footerY, l.pageWidth-pageMargin, footerY)

	l.font("", 8)
	l.pdf.Text(pageMargin, footerY+5, l.tr("Analyzed by: "+analyst))
	l.rightAligned(footerY+5, "Generated: "+generatedAt.Format(timestampFormat))
	l.centered(footerY+10, fmt.Sprintf("Page %d of {nb}", l.pdf.PageNo()))
}

// drawImage places img in the given box. Images that are configured but
// could not be loaded or decoded are drawn as an outlined placeholder.
func (r *Renderer) drawImage(l *layout, img *Image, x, y, w, h float64) {
	if img == nil {
		return
	}

	if len(img.Data) > 0 {
		imageType := detectImageType(img.Data)
		if imageType == "" {
			r.logger.Warn("unsupported report image format", zap.String("image", img.Name))
		} else {
			opts := gofpdf.ImageOptions{ImageType: imageType}
			l.pdf.RegisterImageOptionsReader(img.Name, opts, bytes.NewReader(img.Data))
			if l.pdf.Ok() {
				l.pdf.ImageOptions(img.Name, x, y, w, h, false, opts, 0, "")
				return
			}
			r.logger.Warn("failed to decode report image",
				zap.String("image", img.Name),
				zap.Error(l.pdf.Error()))
			l.pdf.ClearError()
		}
	}

	l.pdf.SetDrawColor(170, 170, 170)
	l.pdf.SetLineWidth(0.2)
	l.pdf.Rect(x, y, w, h, "D")
	l.pdf.SetDrawColor(0, 0, 0)
}

func detectImageType(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/png":
		return "PNG"
	case "image/jpeg":
		return "JPG"
	case "image/gif":
		return "GIF"
	default:
		return ""
	}
}
