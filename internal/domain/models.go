package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns a random UUID when the caller left ID empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// UserRole is the laboratory role assigned to a profile
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleAnalyst UserRole = "analyst"
	RoleViewer  UserRole = "viewer"
)

// IsValid reports whether the role is one of the known roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleAnalyst, RoleViewer:
		return true
	}
	return false
}

// CanModify reports whether the role may create and edit lab records
func (r UserRole) CanModify() bool {
	return r == RoleAdmin || r == RoleAnalyst
}

// SampleStatus tracks a sample through the laboratory workflow
type SampleStatus string

const (
	SampleStatusPending   SampleStatus = "pending"
	SampleStatusCompleted SampleStatus = "completed"
)

// IsValid reports whether the status is one of the known statuses
func (s SampleStatus) IsValid() bool {
	switch s {
	case SampleStatusPending, SampleStatusCompleted:
		return true
	}
	return false
}

// Profile is a laboratory user. The ID matches the identity provider's subject.
type Profile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName  string    `gorm:"type:varchar(200);not null"`
	Email     string    `gorm:"type:varchar(255);index"`
	Role      UserRole  `gorm:"type:varchar(20);not null;default:'viewer'"`
	Phone     string    `gorm:"type:varchar(50)"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// Client is a customer who submits samples for analysis
type Client struct {
	BaseModel
	Name        string     `gorm:"type:varchar(200);not null;index"`
	Company     string     `gorm:"type:varchar(200)"`
	Email       string     `gorm:"type:varchar(255)"`
	Phone       string     `gorm:"type:varchar(50)"`
	Address     string     `gorm:"type:text"`
	CreatedByID *uuid.UUID `gorm:"type:uuid;column:created_by"`
}

// Sample is a physical specimen received by the laboratory
type Sample struct {
	BaseModel
	SampleCode     string       `gorm:"type:varchar(100);not null;uniqueIndex"`
	SampleType     string       `gorm:"type:varchar(100);not null"`
	Source         string       `gorm:"type:varchar(255)"`
	CollectionDate time.Time    `gorm:"type:date;not null"`
	ReceivedDate   time.Time    `gorm:"type:date;not null;index"`
	ClientID       *uuid.UUID   `gorm:"type:uuid;index"`
	Client         *Client      `gorm:"foreignKey:ClientID;constraint:OnDelete:SET NULL"`
	AnalystID      *uuid.UUID   `gorm:"type:uuid;index"`
	Analyst        *Profile     `gorm:"foreignKey:AnalystID;constraint:OnDelete:SET NULL"`
	Status         SampleStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	CreatedByID    *uuid.UUID   `gorm:"type:uuid;column:created_by"`
	TestResult     *TestResult  `gorm:"foreignKey:SampleID;constraint:OnDelete:CASCADE"`
}

// TestResult holds the measurements for one sample. Meat analyses use the
// fixed columns; other report types keep their rows in CustomData.
type TestResult struct {
	BaseModel
	SampleID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	TPC        *float64   `gorm:"column:tpc"`
	SAureus    *string    `gorm:"column:s_aureus;type:varchar(50)"`
	Coliforms  *string    `gorm:"type:varchar(50)"`
	EcoliO157  *string    `gorm:"column:ecoli_o157;type:varchar(50)"`
	Salmonella *string    `gorm:"type:varchar(50)"`
	Listeria   *string    `gorm:"type:varchar(50)"`
	PH         *float64   `gorm:"column:ph"`
	TDS        *float64   `gorm:"column:tds"`
	Remarks    string     `gorm:"type:text"`
	CustomData RawJSON    `gorm:"type:jsonb"`
	TestedByID *uuid.UUID `gorm:"type:uuid;column:tested_by"`
	TestedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// Report records a generated PDF for a sample
type Report struct {
	BaseModel
	SampleID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Sample        *Sample    `gorm:"foreignKey:SampleID;constraint:OnDelete:CASCADE"`
	ClientID      *uuid.UUID `gorm:"type:uuid;index"`
	ReportType    ReportType `gorm:"type:varchar(20);not null;default:'meat'"`
	PDFURL        string     `gorm:"column:pdf_url;type:varchar(500);not null"`
	StoragePath   string     `gorm:"type:varchar(500)"`
	GeneratedByID *uuid.UUID `gorm:"type:uuid;column:generated_by"`
	GeneratedBy   *Profile   `gorm:"foreignKey:GeneratedByID"`
	DateGenerated time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

// LabSettings is the single letterhead record used on every report
type LabSettings struct {
	BaseModel
	LabName      string     `gorm:"type:varchar(200);not null"`
	LabLogoURL   string     `gorm:"type:varchar(500)"`
	SignatureURL string     `gorm:"type:varchar(500)"`
	StampURL     string     `gorm:"type:varchar(500)"`
	Address      string     `gorm:"type:text"`
	Phone        string     `gorm:"type:varchar(50)"`
	Email        string     `gorm:"type:varchar(255)"`
	UpdatedByID  *uuid.UUID `gorm:"type:uuid;column:updated_by"`
}

func (LabSettings) TableName() string {
	return "lab_settings"
}

// SampleCodeSequence tracks the last issued sample code number per prefix and year
type SampleCodeSequence struct {
	Prefix       string    `gorm:"type:varchar(20);primaryKey"`
	Year         int       `gorm:"primaryKey"`
	LastSequence int       `gorm:"not null;default:0"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}
