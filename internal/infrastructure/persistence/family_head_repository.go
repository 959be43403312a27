package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/travelcrm/backend/internal/domain/booking"
	"github.com/travelcrm/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FamilyHeadModel is the GORM model for family heads
type FamilyHeadModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	EnquiryID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Name      string     `gorm:"type:varchar(120);not null"`
	Phone     string     `gorm:"type:varchar(32);not null"`
	Email     string     `gorm:"type:varchar(120)"`
	Address   string     `gorm:"type:text"`
	CreatedBy *uuid.UUID `gorm:"type:uuid"`
	Version   int        `gorm:"not null;default:1"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the model
func (FamilyHeadModel) TableName() string {
	return "family_heads"
}

// ToEntity converts the model to a domain entity
func (m *FamilyHeadModel) ToEntity() *booking.FamilyHead {
	return &booking.FamilyHead{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			TenantID:  m.TenantID,
			CreatedBy: m.CreatedBy,
		},
		EnquiryID: m.EnquiryID,
		Name:      m.Name,
		Phone:     m.Phone,
		Email:     m.Email,
		Address:   m.Address,
	}
}

// FamilyHeadModelFromEntity creates a model from a domain entity
func FamilyHeadModelFromEntity(h *booking.FamilyHead) *FamilyHeadModel {
	return &FamilyHeadModel{
		ID:        h.ID,
		TenantID:  h.TenantID,
		EnquiryID: h.EnquiryID,
		Name:      h.Name,
		Phone:     h.Phone,
		Email:     h.Email,
		Address:   h.Address,
		CreatedBy: h.CreatedBy,
		Version:   h.Version,
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
	}
}

// GormFamilyHeadRepository implements the booking.FamilyHeadRepository interface
type GormFamilyHeadRepository struct {
	db *gorm.DB
}

// NewGormFamilyHeadRepository creates a new family head repository
func NewGormFamilyHeadRepository(db *gorm.DB) *GormFamilyHeadRepository {
	return &GormFamilyHeadRepository{db: db}
}

// FindByID retrieves a family head by ID
func (r *GormFamilyHeadRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.FamilyHead, error) {
	var model FamilyHeadModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// FindByIDForTenant retrieves a family head by ID within a tenant
func (r *GormFamilyHeadRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*booking.FamilyHead, error) {
	var model FamilyHeadModel
	if err := r.db.WithContext(ctx).
		First(&model, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// FindByIDForTenantForUpdate reads the family head with a row write lock.
// The lock is the serialization point for the balance chain: every payment
// submission takes it before reading the latest installment, so one always
// exists to block on even when no installments have been recorded yet.
func (r *GormFamilyHeadRepository) FindByIDForTenantForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*booking.FamilyHead, error) {
	var model FamilyHeadModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// FindByEnquiry returns the earliest family head registered for the enquiry
func (r *GormFamilyHeadRepository) FindByEnquiry(ctx context.Context, tenantID, enquiryID uuid.UUID) (*booking.FamilyHead, error) {
	var model FamilyHeadModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND enquiry_id = ?", tenantID, enquiryID).
		Order("created_at ASC").
		First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// FindAllByEnquiry retrieves every family head for an enquiry
func (r *GormFamilyHeadRepository) FindAllByEnquiry(ctx context.Context, tenantID, enquiryID uuid.UUID) ([]booking.FamilyHead, error) {
	var models []FamilyHeadModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND enquiry_id = ?", tenantID, enquiryID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	heads := make([]booking.FamilyHead, len(models))
	for i, model := range models {
		heads[i] = *model.ToEntity()
	}
	return heads, nil
}

// ExistsForEnquiry reports whether the enquiry has at least one family head
func (r *GormFamilyHeadRepository) ExistsForEnquiry(ctx context.Context, tenantID, enquiryID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&FamilyHeadModel{}).
		Where("tenant_id = ? AND enquiry_id = ?", tenantID, enquiryID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create persists a new family head
func (r *GormFamilyHeadRepository) Create(ctx context.Context, head *booking.FamilyHead) error {
	model := FamilyHeadModelFromEntity(head)
	return r.db.WithContext(ctx).Create(model).Error
}

var _ booking.FamilyHeadRepository = (*GormFamilyHeadRepository)(nil)
