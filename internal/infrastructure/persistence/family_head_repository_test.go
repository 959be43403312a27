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

func newMockFamilyHeadRepo(t *testing.T) (*GormFamilyHeadRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormFamilyHeadRepository(gormDB), mock, mockDB
}

func TestFindByIDForTenantForUpdate_LocksRow(t *testing.T) {
	repo, mock, mockDB := newMockFamilyHeadRepo(t)
	defer mockDB.Close()

	tenantID := uuid.New()
	headID := uuid.New()
	enquiryID := uuid.New()

	rows := sqlmock.NewRows([]string{
		"id", "tenant_id", "enquiry_id", "name", "phone", "email", "address",
		"created_by", "version", "created_at", "updated_at",
	}).AddRow(
		headID.String(), tenantID.String(), enquiryID.String(), "Asha Patel",
		"+911234567890", "", "", nil, 1, time.Now(), time.Now(),
	)

	// Payment recording serializes on this write lock, so the row read
	// must carry FOR UPDATE.
	mock.ExpectQuery(`SELECT \* FROM "family_heads" WHERE tenant_id = \$1 AND id = \$2 .* FOR UPDATE`).
		WithArgs(tenantID, headID, 1).
		WillReturnRows(rows)

	head, err := repo.FindByIDForTenantForUpdate(context.Background(), tenantID, headID)
	require.NoError(t, err)
	assert.Equal(t, headID, head.ID)
	assert.Equal(t, enquiryID, head.EnquiryID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDForTenantForUpdate_Missing(t *testing.T) {
	repo, mock, mockDB := newMockFamilyHeadRepo(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT \* FROM "family_heads"`).
		WillReturnError(gorm.ErrRecordNotFound)

	_, err := repo.FindByIDForTenantForUpdate(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
