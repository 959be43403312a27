package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/travelcrm/backend/internal/domain/enquiry"
	"github.com/travelcrm/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CounterModel is the GORM model for per-tenant number sequences
type CounterModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_counters_tenant_scope,priority:1"`
	Scope     string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_counters_tenant_scope,priority:2"`
	Current   int64     `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the model
func (CounterModel) TableName() string {
	return "enquiry_counters"
}

// GormCounterRepository implements the enquiry.CounterRepository interface.
// Allocation locks the counter row so concurrent transactions never mint
// the same number.
type GormCounterRepository struct {
	db *gorm.DB
}

// NewGormCounterRepository creates a new counter repository
func NewGormCounterRepository(db *gorm.DB) *GormCounterRepository {
	return &GormCounterRepository{db: db}
}

// AllocateEnquiryNumber increments the tenant's enquiry sequence and
// returns the formatted number. Must be called inside a transaction so
// the row lock holds until commit.
func (r *GormCounterRepository) AllocateEnquiryNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	var model CounterModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "tenant_id = ? AND scope = ?", tenantID, enquiry.CounterScopeEnquiry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", shared.NewDomainError("COUNTER_NOT_CONFIGURED", "Enquiry counter is not configured for this tenant")
		}
		return "", err
	}

	model.Current++
	if err := r.db.WithContext(ctx).
		Model(&CounterModel{}).
		Where("id = ?", model.ID).
		Update("current", model.Current).Error; err != nil {
		return "", err
	}

	return enquiry.FormatEnquiryNumber(model.Current), nil
}

var _ enquiry.CounterRepository = (*GormCounterRepository)(nil)
