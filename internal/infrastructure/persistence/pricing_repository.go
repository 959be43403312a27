package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/travelcrm/backend/internal/domain/booking"
	"github.com/travelcrm/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// PricingRecordModel is the GORM model for pricing records
type PricingRecordModel struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	EnquiryID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	FamilyHeadID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	TourPrice          decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	AdditionalDiscount decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	DiscountPrice      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	GST                decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0;column:gst"`
	TCS                decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0;column:tcs"`
	GrandTotal         decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	CreatedBy          *uuid.UUID      `gorm:"type:uuid"`
	Version            int             `gorm:"not null;default:1"`
	CreatedAt          time.Time       `gorm:"autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the model
func (PricingRecordModel) TableName() string {
	return "pricing_records"
}

// ToEntity converts the model to a domain entity
func (m *PricingRecordModel) ToEntity() *booking.PricingRecord {
	return &booking.PricingRecord{
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
		EnquiryID:          m.EnquiryID,
		FamilyHeadID:       m.FamilyHeadID,
		TourPrice:          m.TourPrice,
		AdditionalDiscount: m.AdditionalDiscount,
		DiscountPrice:      m.DiscountPrice,
		GST:                m.GST,
		TCS:                m.TCS,
		GrandTotal:         m.GrandTotal,
	}
}

// PricingRecordModelFromEntity creates a model from a domain entity
func PricingRecordModelFromEntity(p *booking.PricingRecord) *PricingRecordModel {
	return &PricingRecordModel{
		ID:                 p.ID,
		TenantID:           p.TenantID,
		EnquiryID:          p.EnquiryID,
		FamilyHeadID:       p.FamilyHeadID,
		TourPrice:          p.TourPrice,
		AdditionalDiscount: p.AdditionalDiscount,
		DiscountPrice:      p.DiscountPrice,
		GST:                p.GST,
		TCS:                p.TCS,
		GrandTotal:         p.GrandTotal,
		CreatedBy:          p.CreatedBy,
		Version:            p.Version,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

// GormPricingRepository implements the booking.PricingRepository interface
type GormPricingRepository struct {
	db *gorm.DB
}

// NewGormPricingRepository creates a new pricing repository
func NewGormPricingRepository(db *gorm.DB) *GormPricingRepository {
	return &GormPricingRepository{db: db}
}

// FindByFamilyHead retrieves the pricing record for a family head
func (r *GormPricingRepository) FindByFamilyHead(ctx context.Context, tenantID, familyHeadID uuid.UUID) (*booking.PricingRecord, error) {
	var model PricingRecordModel
	if err := r.db.WithContext(ctx).
		First(&model, "tenant_id = ? AND family_head_id = ?", tenantID, familyHeadID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// ExistsForFamilyHead reports whether pricing has been set for the family head
func (r *GormPricingRepository) ExistsForFamilyHead(ctx context.Context, tenantID, familyHeadID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&PricingRecordModel{}).
		Where("tenant_id = ? AND family_head_id = ?", tenantID, familyHeadID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create persists a new pricing record
func (r *GormPricingRepository) Create(ctx context.Context, record *booking.PricingRecord) error {
	model := PricingRecordModelFromEntity(record)
	return r.db.WithContext(ctx).Create(model).Error
}

// Save updates an existing pricing record
func (r *GormPricingRepository) Save(ctx context.Context, record *booking.PricingRecord) error {
	model := PricingRecordModelFromEntity(record)
	return r.db.WithContext(ctx).Save(model).Error
}

var _ booking.PricingRepository = (*GormPricingRepository)(nil)
