package report

import (
	"fmt"
	"time"

	"github.com/meatlab/lims-api/internal/domain"
)

// FallbackLabName is printed when the lab has not configured its letterhead
const FallbackLabName = "THE ORGANIC MEAT COMPANY LIMITED"

// FallbackAnalystName is printed in the footer when no analyst is known
const FallbackAnalystName = "Lab Analyst"

// Action selects how the rendered document is delivered
type Action string

const (
	ActionDownload Action = "download"
	ActionPrint    Action = "print"
)

// ParseAction maps a query value to an Action, defaulting to download
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case "", ActionDownload:
		return ActionDownload, nil
	case ActionPrint:
		return ActionPrint, nil
	default:
		return "", fmt.Errorf("unknown report action %q", s)
	}
}

// Image is a letterhead graphic. A configured image whose bytes could not be
// fetched has a Name but no Data and is drawn as a placeholder.
type Image struct {
	Name string
	Data []byte
}

// Letterhead is the lab identity printed at the top of the first page
type Letterhead struct {
	LabName   string
	Address   string
	Phone     string
	Email     string
	Logo      *Image
	Signature *Image
	Stamp     *Image
}

// SampleInfo is the sample block printed under the title
type SampleInfo struct {
	Code           string
	Type           string
	Source         string
	Client         string
	CollectionDate time.Time
	ReceivedDate   time.Time
	Status         string
}

// Document is the normalised input of the layout engine
type Document struct {
	Type        domain.ReportType
	Letterhead  Letterhead
	Sample      SampleInfo
	Analyst     string
	Result      *domain.TestResult
	CustomData  interface{}
	GeneratedAt time.Time
}

// Options controls delivery of the rendered document
type Options struct {
	Action Action
}

// Filename returns the download name of a report for a sample code
func Filename(sampleCode string, at time.Time) string {
	return fmt.Sprintf("%s_Report_%s.pdf", sampleCode, at.Format("2006-01-02"))
}
