package mapper

import (
	"time"

	"github.com/meatlab/lims-api/internal/domain"
)

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.DateLayout)
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(domain.TimestampLayout)
}

// ToClientDTO converts Client to ClientDTO
func ToClientDTO(client *domain.Client, sampleCount int64) domain.ClientDTO {
	return domain.ClientDTO{
		ID:          client.ID,
		Name:        client.Name,
		Company:     client.Company,
		Email:       client.Email,
		Phone:       client.Phone,
		Address:     client.Address,
		SampleCount: sampleCount,
		CreatedAt:   formatTimestamp(client.CreatedAt),
		UpdatedAt:   formatTimestamp(client.UpdatedAt),
	}
}

// ToSampleDTO converts Sample to SampleDTO. Client and Analyst names are
// filled only when the associations were preloaded.
func ToSampleDTO(sample *domain.Sample) domain.SampleDTO {
	dto := domain.SampleDTO{
		ID:             sample.ID,
		SampleCode:     sample.SampleCode,
		SampleType:     sample.SampleType,
		Source:         sample.Source,
		CollectionDate: formatDate(sample.CollectionDate),
		ReceivedDate:   formatDate(sample.ReceivedDate),
		ClientID:       sample.ClientID,
		AnalystID:      sample.AnalystID,
		Status:         sample.Status,
		ReportType:     domain.DetectReportType(sample.SampleType),
		HasResult:      sample.TestResult != nil,
		CreatedAt:      formatTimestamp(sample.CreatedAt),
		UpdatedAt:      formatTimestamp(sample.UpdatedAt),
	}
	if sample.Client != nil {
		dto.ClientName = sample.Client.Name
	}
	if sample.Analyst != nil {
		dto.AnalystName = sample.Analyst.FullName
	}
	return dto
}

// ToSampleWithDetailsDTO converts Sample with its associations
func ToSampleWithDetailsDTO(sample *domain.Sample) domain.SampleWithDetailsDTO {
	dto := domain.SampleWithDetailsDTO{SampleDTO: ToSampleDTO(sample)}
	if sample.Client != nil {
		client := ToClientDTO(sample.Client, 0)
		dto.Client = &client
	}
	if sample.TestResult != nil {
		result := ToTestResultDTO(sample.TestResult, dto.ReportType)
		dto.TestResult = &result
	}
	return dto
}

// ToTestResultDTO converts TestResult to TestResultDTO. The verdict is only
// computed for meat results.
func ToTestResultDTO(result *domain.TestResult, reportType domain.ReportType) domain.TestResultDTO {
	dto := domain.TestResultDTO{
		ID:         result.ID,
		SampleID:   result.SampleID,
		TPC:        result.TPC,
		SAureus:    result.SAureus,
		Coliforms:  result.Coliforms,
		EcoliO157:  result.EcoliO157,
		Salmonella: result.Salmonella,
		Listeria:   result.Listeria,
		PH:         result.PH,
		TDS:        result.TDS,
		Remarks:    result.Remarks,
		CustomData: result.CustomData,
		TestedByID: result.TestedByID,
		TestedAt:   formatTimestamp(result.TestedAt),
	}
	if reportType == domain.ReportTypeMeat {
		dto.Verdict = domain.MeatVerdict(result.TPC, result.Coliforms, result.EcoliO157, result.Salmonella, result.Listeria)
	}
	return dto
}

// ToReportDTO converts Report to ReportDTO
func ToReportDTO(report *domain.Report) domain.ReportDTO {
	dto := domain.ReportDTO{
		ID:            report.ID,
		SampleID:      report.SampleID,
		ClientID:      report.ClientID,
		ReportType:    report.ReportType,
		PDFURL:        report.PDFURL,
		Archived:      report.StoragePath != "",
		GeneratedByID: report.GeneratedByID,
		DateGenerated: formatTimestamp(report.DateGenerated),
	}
	if report.GeneratedBy != nil {
		dto.GeneratedByName = report.GeneratedBy.FullName
	}
	if report.Sample != nil {
		sample := ToSampleWithDetailsDTO(report.Sample)
		dto.Sample = &sample
	}
	return dto
}

// ToLabSettingsDTO converts LabSettings to LabSettingsDTO
func ToLabSettingsDTO(settings *domain.LabSettings, isDefault bool) domain.LabSettingsDTO {
	dto := domain.LabSettingsDTO{
		LabName:      settings.LabName,
		LabLogoURL:   settings.LabLogoURL,
		SignatureURL: settings.SignatureURL,
		StampURL:     settings.StampURL,
		Address:      settings.Address,
		Phone:        settings.Phone,
		Email:        settings.Email,
		IsDefault:    isDefault,
		UpdatedAt:    formatTimestamp(settings.UpdatedAt),
	}
	if !isDefault {
		id := settings.ID
		dto.ID = &id
	}
	return dto
}

// ToProfileDTO converts Profile to ProfileDTO
func ToProfileDTO(profile *domain.Profile) domain.ProfileDTO {
	return domain.ProfileDTO{
		ID:        profile.ID,
		FullName:  profile.FullName,
		Email:     profile.Email,
		Role:      profile.Role,
		Phone:     profile.Phone,
		CreatedAt: formatTimestamp(profile.CreatedAt),
	}
}
