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

// GuestRefundModel is the GORM model for per-guest cancellation records
type GuestRefundModel struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	EnquiryID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	GuestDetailID       uuid.UUID       `gorm:"type:uuid;not null"`
	CancellationCharges decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	RefundAmount        decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Settlement          string          `gorm:"type:varchar(20);not null"`
	Reason              string          `gorm:"type:text;not null"`
	CreatedAt           time.Time       `gorm:"autoCreateTime"`
	UpdatedAt           time.Time       `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the model
func (GuestRefundModel) TableName() string {
	return "guest_refunds"
}

// ToEntity converts the model to a domain entity
func (m *GuestRefundModel) ToEntity() *booking.GuestRefund {
	return &booking.GuestRefund{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		TenantID:            m.TenantID,
		EnquiryID:           m.EnquiryID,
		GuestDetailID:       m.GuestDetailID,
		CancellationCharges: m.CancellationCharges,
		RefundAmount:        m.RefundAmount,
		Settlement:          booking.RefundSettlement(m.Settlement),
		Reason:              m.Reason,
	}
}

// GuestRefundModelFromEntity creates a model from a domain entity
func GuestRefundModelFromEntity(g *booking.GuestRefund) *GuestRefundModel {
	return &GuestRefundModel{
		ID:                  g.ID,
		TenantID:            g.TenantID,
		EnquiryID:           g.EnquiryID,
		GuestDetailID:       g.GuestDetailID,
		CancellationCharges: g.CancellationCharges,
		RefundAmount:        g.RefundAmount,
		Settlement:          string(g.Settlement),
		Reason:              g.Reason,
		CreatedAt:           g.CreatedAt,
		UpdatedAt:           g.UpdatedAt,
	}
}

// GormGuestRefundRepository implements the booking.GuestRefundRepository interface
type GormGuestRefundRepository struct {
	db *gorm.DB
}

// NewGormGuestRefundRepository creates a new guest refund repository
func NewGormGuestRefundRepository(db *gorm.DB) *GormGuestRefundRepository {
	return &GormGuestRefundRepository{db: db}
}

// Create persists a new refund record
func (r *GormGuestRefundRepository) Create(ctx context.Context, refund *booking.GuestRefund) error {
	model := GuestRefundModelFromEntity(refund)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByEnquiry retrieves all refund records for an enquiry
func (r *GormGuestRefundRepository) FindByEnquiry(ctx context.Context, tenantID, enquiryID uuid.UUID) ([]booking.GuestRefund, error) {
	var models []GuestRefundModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND enquiry_id = ?", tenantID, enquiryID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	refunds := make([]booking.GuestRefund, len(models))
	for i, model := range models {
		refunds[i] = *model.ToEntity()
	}
	return refunds, nil
}

var _ booking.GuestRefundRepository = (*GormGuestRefundRepository)(nil)
