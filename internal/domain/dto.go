package domain

import (
	"github.com/google/uuid"
)

// DateLayout is the wire format of calendar dates
const DateLayout = "2006-01-02"

// TimestampLayout is the wire format of timestamps
const TimestampLayout = "2006-01-02T15:04:05Z"

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// Pagination
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// Clients

type ClientDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Company     string    `json:"company,omitempty"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Address     string    `json:"address,omitempty"`
	SampleCount int64     `json:"sampleCount"`
	CreatedAt   string    `json:"createdAt"`
	UpdatedAt   string    `json:"updatedAt"`
}

type CreateClientRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Company string `json:"company,omitempty" validate:"max=200"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   string `json:"phone,omitempty" validate:"max=50"`
	Address string `json:"address,omitempty" validate:"max=500"`
}

type UpdateClientRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Company string `json:"company,omitempty" validate:"max=200"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   string `json:"phone,omitempty" validate:"max=50"`
	Address string `json:"address,omitempty" validate:"max=500"`
}

// Samples

type SampleDTO struct {
	ID             uuid.UUID    `json:"id"`
	SampleCode     string       `json:"sampleCode"`
	SampleType     string       `json:"sampleType"`
	Source         string       `json:"source,omitempty"`
	CollectionDate string       `json:"collectionDate"`
	ReceivedDate   string       `json:"receivedDate"`
	ClientID       *uuid.UUID   `json:"clientId,omitempty"`
	ClientName     string       `json:"clientName,omitempty"`
	AnalystID      *uuid.UUID   `json:"analystId,omitempty"`
	AnalystName    string       `json:"analystName,omitempty"`
	Status         SampleStatus `json:"status"`
	ReportType     ReportType   `json:"reportType"`
	HasResult      bool         `json:"hasResult"`
	CreatedAt      string       `json:"createdAt"`
	UpdatedAt      string       `json:"updatedAt"`
}

// SampleWithDetailsDTO is a sample together with its client and test result
type SampleWithDetailsDTO struct {
	SampleDTO
	Client     *ClientDTO     `json:"client,omitempty"`
	TestResult *TestResultDTO `json:"testResult,omitempty"`
}

type CreateSampleRequest struct {
	SampleCode     string       `json:"sampleCode,omitempty" validate:"max=100"`
	SampleType     string       `json:"sampleType" validate:"required,max=100"`
	Source         string       `json:"source,omitempty" validate:"max=255"`
	CollectionDate string       `json:"collectionDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ReceivedDate   string       `json:"receivedDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ClientID       *uuid.UUID   `json:"clientId,omitempty"`
	AnalystID      *uuid.UUID   `json:"analystId,omitempty"`
	Status         SampleStatus `json:"status,omitempty" validate:"omitempty,oneof=pending completed"`
}

type UpdateSampleRequest struct {
	SampleCode     string       `json:"sampleCode" validate:"required,max=100"`
	SampleType     string       `json:"sampleType" validate:"required,max=100"`
	Source         string       `json:"source,omitempty" validate:"max=255"`
	CollectionDate string       `json:"collectionDate" validate:"required,datetime=2006-01-02"`
	ReceivedDate   string       `json:"receivedDate" validate:"required,datetime=2006-01-02"`
	ClientID       *uuid.UUID   `json:"clientId,omitempty"`
	AnalystID      *uuid.UUID   `json:"analystId,omitempty"`
	Status         SampleStatus `json:"status" validate:"required,oneof=pending completed"`
}

// BulkDeleteSamplesRequest selects which samples an administrator wipes
type BulkDeleteSamplesRequest struct {
	Scope string `json:"scope" validate:"required,oneof=all pending completed"`
}

type BulkDeleteResultDTO struct {
	Deleted int64 `json:"deleted"`
}

// Test results

type TestResultDTO struct {
	ID         uuid.UUID  `json:"id"`
	SampleID   uuid.UUID  `json:"sampleId"`
	TPC        *float64   `json:"tpc,omitempty"`
	SAureus    *string    `json:"sAureus,omitempty"`
	Coliforms  *string    `json:"coliforms,omitempty"`
	EcoliO157  *string    `json:"ecoliO157,omitempty"`
	Salmonella *string    `json:"salmonella,omitempty"`
	Listeria   *string    `json:"listeria,omitempty"`
	PH         *float64   `json:"ph,omitempty"`
	TDS        *float64   `json:"tds,omitempty"`
	Remarks    string     `json:"remarks,omitempty"`
	CustomData RawJSON    `json:"customData,omitempty"`
	TestedByID *uuid.UUID `json:"testedById,omitempty"`
	TestedAt   string     `json:"testedAt"`
	Verdict    Verdict    `json:"verdict,omitempty"`
}

type UpsertTestResultRequest struct {
	TPC        *float64 `json:"tpc,omitempty" validate:"omitempty,gte=0"`
	SAureus    *string  `json:"sAureus,omitempty" validate:"omitempty,max=50"`
	Coliforms  *string  `json:"coliforms,omitempty" validate:"omitempty,max=50"`
	EcoliO157  *string  `json:"ecoliO157,omitempty" validate:"omitempty,max=50"`
	Salmonella *string  `json:"salmonella,omitempty" validate:"omitempty,max=50"`
	Listeria   *string  `json:"listeria,omitempty" validate:"omitempty,max=50"`
	PH         *float64 `json:"ph,omitempty" validate:"omitempty,gte=0,lte=14"`
	TDS        *float64 `json:"tds,omitempty" validate:"omitempty,gte=0"`
	Remarks    string   `json:"remarks,omitempty" validate:"max=2000"`
	CustomData RawJSON  `json:"customData,omitempty"`
}

// Reports

type ReportDTO struct {
	ID              uuid.UUID            `json:"id"`
	SampleID        uuid.UUID            `json:"sampleId"`
	ClientID        *uuid.UUID           `json:"clientId,omitempty"`
	ReportType      ReportType           `json:"reportType"`
	PDFURL          string               `json:"pdfUrl"`
	Archived        bool                 `json:"archived"`
	GeneratedByID   *uuid.UUID           `json:"generatedById,omitempty"`
	GeneratedByName string               `json:"generatedByName,omitempty"`
	DateGenerated   string               `json:"dateGenerated"`
	Sample          *SampleWithDetailsDTO `json:"sample,omitempty"`
}

// CreateReportRequest drives the report creation form. Meat reports carry
// SampleRows; every other type carries its typed form in CustomData.
type CreateReportRequest struct {
	ReportType     ReportType      `json:"reportType" validate:"required,oneof=meat air water foodhandler foodsurface deboning"`
	SampleCode     string          `json:"sampleCode,omitempty" validate:"max=100"`
	SampleType     string          `json:"sampleType,omitempty" validate:"max=100"`
	Supplier       string          `json:"supplier,omitempty" validate:"max=255"`
	CollectionDate string          `json:"collectionDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ReportDate     string          `json:"reportDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ClientID       *uuid.UUID      `json:"clientId,omitempty"`
	Remarks        string          `json:"remarks,omitempty" validate:"max=2000"`
	SampleRows     []MeatSampleRow `json:"sampleRows,omitempty"`
	CustomData     RawJSON         `json:"customData,omitempty"`
}

// Lab settings

type LabSettingsDTO struct {
	ID           *uuid.UUID `json:"id,omitempty"`
	LabName      string     `json:"labName"`
	LabLogoURL   string     `json:"labLogoUrl,omitempty"`
	SignatureURL string     `json:"signatureUrl,omitempty"`
	StampURL     string     `json:"stampUrl,omitempty"`
	Address      string     `json:"address,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	Email        string     `json:"email,omitempty"`
	IsDefault    bool       `json:"isDefault"`
	UpdatedAt    string     `json:"updatedAt,omitempty"`
}

type UpdateLabSettingsRequest struct {
	LabName      string `json:"labName" validate:"required,max=200"`
	LabLogoURL   string `json:"labLogoUrl,omitempty" validate:"omitempty,url,max=500"`
	SignatureURL string `json:"signatureUrl,omitempty" validate:"omitempty,url,max=500"`
	StampURL     string `json:"stampUrl,omitempty" validate:"omitempty,url,max=500"`
	Address      string `json:"address,omitempty" validate:"max=500"`
	Phone        string `json:"phone,omitempty" validate:"max=50"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
}

// Profiles

type ProfileDTO struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email,omitempty"`
	Role      UserRole  `json:"role"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt string    `json:"createdAt"`
}

type UpdateProfileRoleRequest struct {
	Role UserRole `json:"role" validate:"required,oneof=admin analyst viewer"`
}

// Dashboard

type DashboardDTO struct {
	TotalSamples     int64       `json:"totalSamples"`
	PendingSamples   int64       `json:"pendingSamples"`
	CompletedSamples int64       `json:"completedSamples"`
	TotalReports     int64       `json:"totalReports"`
	RecentSamples    []SampleDTO `json:"recentSamples"`
}

// Bot webhook

type BotWebhookResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}
