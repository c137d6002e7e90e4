// Package testutil provides an in-memory database and fixtures for tests.
package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meatlab/lims-api/internal/auth"
	"github.com/meatlab/lims-api/internal/database"
	"github.com/meatlab/lims-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var dbCounter atomic.Int64

// SetupTestDB opens a private in-memory sqlite database with the schema migrated.
// Each call gets its own database so tests can run in parallel.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:lims_test_%d?mode=memory&cache=shared&_foreign_keys=on", dbCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err, "failed to open sqlite test database")

	require.NoError(t, database.AutoMigrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

// Date returns midnight UTC for the given calendar day
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CreateTestProfile creates a profile with the given role
func CreateTestProfile(t *testing.T, db *gorm.DB, name string, role domain.UserRole) *domain.Profile {
	t.Helper()
	profile := &domain.Profile{
		ID:       uuid.New(),
		FullName: name,
		Email:    fmt.Sprintf("%s@lab.test", uuid.NewString()[:8]),
		Role:     role,
	}
	require.NoError(t, db.Create(profile).Error)
	return profile
}

// CreateTestClient creates a client record
func CreateTestClient(t *testing.T, db *gorm.DB, name string) *domain.Client {
	t.Helper()
	client := &domain.Client{
		Name:    name,
		Company: name + " Ltd",
		Email:   "orders@client.test",
		Phone:   "0300-1234567",
	}
	require.NoError(t, db.Omit(clause.Associations).Create(client).Error)
	return client
}

// SampleOption customises a fixture sample
type SampleOption func(*domain.Sample)

// WithClient links the sample to a client
func WithClient(id uuid.UUID) SampleOption {
	return func(s *domain.Sample) { s.ClientID = &id }
}

// WithAnalyst assigns the sample to an analyst
func WithAnalyst(id uuid.UUID) SampleOption {
	return func(s *domain.Sample) { s.AnalystID = &id }
}

// WithStatus sets the sample status
func WithStatus(status domain.SampleStatus) SampleOption {
	return func(s *domain.Sample) { s.Status = status }
}

// WithReceived sets both collection and received dates
func WithReceived(day time.Time) SampleOption {
	return func(s *domain.Sample) {
		s.CollectionDate = day
		s.ReceivedDate = day
	}
}

// WithType sets the sample type
func WithType(sampleType string) SampleOption {
	return func(s *domain.Sample) { s.SampleType = sampleType }
}

// CreateTestSample creates a pending beef sample received today
func CreateTestSample(t *testing.T, db *gorm.DB, code string, opts ...SampleOption) *domain.Sample {
	t.Helper()
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	sample := &domain.Sample{
		SampleCode:     code,
		SampleType:     "Beef",
		Source:         "Supplier A",
		CollectionDate: today,
		ReceivedDate:   today,
		Status:         domain.SampleStatusPending,
	}
	for _, opt := range opts {
		opt(sample)
	}
	require.NoError(t, db.Omit(clause.Associations).Create(sample).Error)
	return sample
}

// CreateTestResult records a meat result for a sample
func CreateTestResult(t *testing.T, db *gorm.DB, sampleID uuid.UUID, tpc float64) *domain.TestResult {
	t.Helper()
	negative := "negative"
	result := &domain.TestResult{
		SampleID:   sampleID,
		TPC:        &tpc,
		Coliforms:  &negative,
		EcoliO157:  &negative,
		Salmonella: &negative,
		TestedAt:   time.Now().UTC(),
	}
	require.NoError(t, db.Create(result).Error)
	return result
}

// ContextWithRole returns a context carrying an authenticated user
func ContextWithRole(id uuid.UUID, name string, role domain.UserRole) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      id,
		DisplayName: name,
		Email:       "user@lab.test",
		Role:        role,
	})
}

// ContextForProfile returns a context authenticated as the profile
func ContextForProfile(p *domain.Profile) context.Context {
	return ContextWithRole(p.ID, p.FullName, p.Role)
}
