package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/travelcrm/backend/internal/domain/payment"
	"github.com/travelcrm/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// InstallmentModel is the GORM model for installments
type InstallmentModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	EnquiryID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	FamilyHeadID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	AdvanceAmount decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Balance       decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Status        int             `gorm:"not null;default:0"`
	Mode          string          `gorm:"type:varchar(20);not null"`
	ProofPath     string          `gorm:"type:varchar(512)"`
	Remark        string          `gorm:"type:text"`
	ConfirmedAt   *time.Time
	CreatedBy     *uuid.UUID `gorm:"type:uuid"`
	Version       int        `gorm:"not null;default:1"`
	CreatedAt     time.Time  `gorm:"autoCreateTime;index"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the model
func (InstallmentModel) TableName() string {
	return "installments"
}

// ToEntity converts the model to a domain entity
func (m *InstallmentModel) ToEntity() *payment.Installment {
	return &payment.Installment{
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
		EnquiryID:     m.EnquiryID,
		FamilyHeadID:  m.FamilyHeadID,
		AdvanceAmount: m.AdvanceAmount,
		Balance:       m.Balance,
		Status:        payment.InstallmentStatus(m.Status),
		Mode:          payment.PaymentMode(m.Mode),
		ProofPath:     m.ProofPath,
		Remark:        m.Remark,
		ConfirmedAt:   m.ConfirmedAt,
	}
}

// InstallmentModelFromEntity creates a model from a domain entity
func InstallmentModelFromEntity(i *payment.Installment) *InstallmentModel {
	return &InstallmentModel{
		ID:            i.ID,
		TenantID:      i.TenantID,
		EnquiryID:     i.EnquiryID,
		FamilyHeadID:  i.FamilyHeadID,
		AdvanceAmount: i.AdvanceAmount,
		Balance:       i.Balance,
		Status:        int(i.Status),
		Mode:          string(i.Mode),
		ProofPath:     i.ProofPath,
		Remark:        i.Remark,
		ConfirmedAt:   i.ConfirmedAt,
		CreatedBy:     i.CreatedBy,
		Version:       i.Version,
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}
}

// GormInstallmentRepository implements the payment.InstallmentRepository interface
type GormInstallmentRepository struct {
	db *gorm.DB
}

// NewGormInstallmentRepository creates a new installment repository
func NewGormInstallmentRepository(db *gorm.DB) *GormInstallmentRepository {
	return &GormInstallmentRepository{db: db}
}

// FindByID retrieves an installment by ID
func (r *GormInstallmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Installment, error) {
	var model InstallmentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// FindByIDForTenant retrieves an installment by ID within a tenant
func (r *GormInstallmentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*payment.Installment, error) {
	var model InstallmentModel
	if err := r.db.WithContext(ctx).
		First(&model, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// FindByFamilyHead retrieves the payment history for a family head,
// oldest first so the balance chain reads top to bottom
func (r *GormInstallmentRepository) FindByFamilyHead(ctx context.Context, tenantID, familyHeadID uuid.UUID) ([]payment.Installment, error) {
	var models []InstallmentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND family_head_id = ?", tenantID, familyHeadID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	installments := make([]payment.Installment, len(models))
	for i, model := range models {
		installments[i] = *model.ToEntity()
	}
	return installments, nil
}

// FindLatest returns the newest installment for the family head. Callers
// that extend the balance chain must hold the family-head row lock before
// reading, so the result cannot go stale under a concurrent submission.
func (r *GormInstallmentRepository) FindLatest(ctx context.Context, tenantID, familyHeadID uuid.UUID) (*payment.Installment, error) {
	var model InstallmentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND family_head_id = ?", tenantID, familyHeadID).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// SumAdvances totals the advances recorded against a family head
func (r *GormInstallmentRepository) SumAdvances(ctx context.Context, tenantID, familyHeadID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&InstallmentModel{}).
		Where("tenant_id = ? AND family_head_id = ?", tenantID, familyHeadID).
		Select("COALESCE(SUM(advance_amount), 0)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// AllSettledForEnquiry reports whether every family head under the enquiry
// that has payments carries a latest balance of zero. Heads with no
// installments at all count against settlement.
func (r *GormInstallmentRepository) AllSettledForEnquiry(ctx context.Context, tenantID, enquiryID uuid.UUID) (bool, error) {
	var headCount int64
	if err := r.db.WithContext(ctx).
		Model(&FamilyHeadModel{}).
		Where("tenant_id = ? AND enquiry_id = ?", tenantID, enquiryID).
		Count(&headCount).Error; err != nil {
		return false, err
	}
	if headCount == 0 {
		return false, nil
	}

	// Count heads whose most recent installment has balance zero.
	var settledCount int64
	err := r.db.WithContext(ctx).
		Model(&InstallmentModel{}).
		Select("COUNT(DISTINCT family_head_id)").
		Where("tenant_id = ? AND enquiry_id = ? AND balance = 0", tenantID, enquiryID).
		Where(`id IN (
			SELECT i2.id FROM installments i2
			WHERE i2.family_head_id = installments.family_head_id
			ORDER BY i2.created_at DESC LIMIT 1
		)`).
		Scan(&settledCount).Error
	if err != nil {
		return false, err
	}

	return settledCount == headCount, nil
}

// Create persists a new installment
func (r *GormInstallmentRepository) Create(ctx context.Context, installment *payment.Installment) error {
	model := InstallmentModelFromEntity(installment)
	return r.db.WithContext(ctx).Create(model).Error
}

// Save updates an existing installment
func (r *GormInstallmentRepository) Save(ctx context.Context, installment *payment.Installment) error {
	model := InstallmentModelFromEntity(installment)
	return r.db.WithContext(ctx).Save(model).Error
}

var _ payment.InstallmentRepository = (*GormInstallmentRepository)(nil)
