package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travelcrm/backend/internal/domain/shared"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockCounterRepo(t *testing.T) (*GormCounterRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormCounterRepository(gormDB), mock, mockDB
}

func TestAllocateEnquiryNumber_LocksCounterRow(t *testing.T) {
	repo, mock, mockDB := newMockCounterRepo(t)
	defer mockDB.Close()

	tenantID := uuid.New()
	counterID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "tenant_id", "scope", "current", "created_at", "updated_at"}).
		AddRow(counterID.String(), tenantID.String(), "enquiry", 41, time.Now(), time.Now())

	// The counter read must take a row write lock so concurrent
	// allocations serialize.
	mock.ExpectQuery(`SELECT \* FROM "enquiry_counters" WHERE tenant_id = \$1 AND scope = \$2 .* FOR UPDATE`).
		WithArgs(tenantID, "enquiry", 1).
		WillReturnRows(rows)

	mock.ExpectExec(`UPDATE "enquiry_counters" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	number, err := repo.AllocateEnquiryNumber(context.Background(), tenantID)
	require.NoError(t, err)
	assert.Equal(t, "0042", number)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocateEnquiryNumber_MissingCounter(t *testing.T) {
	repo, mock, mockDB := newMockCounterRepo(t)
	defer mockDB.Close()

	tenantID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "enquiry_counters"`).
		WillReturnError(gorm.ErrRecordNotFound)

	_, err := repo.AllocateEnquiryNumber(context.Background(), tenantID)
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "COUNTER_NOT_CONFIGURED", domainErr.Code)
}

func TestAllocateEnquiryNumber_GrowsPastWidth(t *testing.T) {
	repo, mock, mockDB := newMockCounterRepo(t)
	defer mockDB.Close()

	tenantID := uuid.New()
	counterID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "tenant_id", "scope", "current", "created_at", "updated_at"}).
		AddRow(counterID.String(), tenantID.String(), "enquiry", 9999, time.Now(), time.Now())

	mock.ExpectQuery(`SELECT \* FROM "enquiry_counters"`).
		WillReturnRows(rows)
	mock.ExpectExec(`UPDATE "enquiry_counters" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	number, err := repo.AllocateEnquiryNumber(context.Background(), tenantID)
	require.NoError(t, err)
	assert.Equal(t, "10000", number)
}
