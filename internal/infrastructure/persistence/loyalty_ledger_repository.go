package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/travelcrm/backend/internal/domain/loyalty"
	"github.com/travelcrm/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// LedgerEntryModel is the GORM model for loyalty ledger entries
type LedgerEntryModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_ledger_tenant_user,priority:1"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_ledger_tenant_user,priority:2"`
	Points      int64      `gorm:"not null"`
	EntryType   int        `gorm:"not null"`
	Reason      string     `gorm:"type:varchar(40);not null"`
	EnquiryID   *uuid.UUID `gorm:"type:uuid;index"`
	Description string     `gorm:"type:text"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the model
func (LedgerEntryModel) TableName() string {
	return "loyalty_ledger_entries"
}

// ToEntity converts the model to a domain entity
func (m *LedgerEntryModel) ToEntity() *loyalty.LedgerEntry {
	return &loyalty.LedgerEntry{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		TenantID:    m.TenantID,
		UserID:      m.UserID,
		Points:      m.Points,
		EntryType:   loyalty.EntryType(m.EntryType),
		Reason:      loyalty.Reason(m.Reason),
		EnquiryID:   m.EnquiryID,
		Description: m.Description,
	}
}

// LedgerEntryModelFromEntity creates a model from a domain entity
func LedgerEntryModelFromEntity(e *loyalty.LedgerEntry) *LedgerEntryModel {
	return &LedgerEntryModel{
		ID:          e.ID,
		TenantID:    e.TenantID,
		UserID:      e.UserID,
		Points:      e.Points,
		EntryType:   int(e.EntryType),
		Reason:      string(e.Reason),
		EnquiryID:   e.EnquiryID,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// GormLedgerRepository implements the loyalty.LedgerRepository interface
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new loyalty ledger repository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// Create persists a new ledger entry. Entries are append-only.
func (r *GormLedgerRepository) Create(ctx context.Context, entry *loyalty.LedgerEntry) error {
	model := LedgerEntryModelFromEntity(entry)
	return r.db.WithContext(ctx).Create(model).Error
}

// SumWindow returns the signed sum of the user's entries in the trailing
// window ending at asOf. Credits add, debits subtract.
func (r *GormLedgerRepository) SumWindow(ctx context.Context, tenantID, userID uuid.UUID, asOf time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&LedgerEntryModel{}).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Where("created_at > ? AND created_at <= ?", loyalty.WindowStart(asOf), asOf).
		Select("COALESCE(SUM(CASE WHEN entry_type = ? THEN -points ELSE points END), 0)", int(loyalty.EntryDebit)).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// FindByUser returns the user's ledger page, newest first, with the total count
func (r *GormLedgerRepository) FindByUser(ctx context.Context, tenantID, userID uuid.UUID, page, pageSize int) ([]loyalty.LedgerEntry, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&LedgerEntryModel{}).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var models []LedgerEntryModel
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&models).Error; err != nil {
		return nil, 0, err
	}

	entries := make([]loyalty.LedgerEntry, len(models))
	for i, model := range models {
		entries[i] = *model.ToEntity()
	}
	return entries, count, nil
}

// FindCreditsByEnquiry returns the credit entries attributed to an enquiry
func (r *GormLedgerRepository) FindCreditsByEnquiry(ctx context.Context, tenantID, enquiryID uuid.UUID) ([]loyalty.LedgerEntry, error) {
	var models []LedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND enquiry_id = ? AND entry_type = ?", tenantID, enquiryID, int(loyalty.EntryCredit)).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	entries := make([]loyalty.LedgerEntry, len(models))
	for i, model := range models {
		entries[i] = *model.ToEntity()
	}
	return entries, nil
}

// ExistsReversalForEnquiry reports whether a cancellation reversal has
// already been posted against the enquiry
func (r *GormLedgerRepository) ExistsReversalForEnquiry(ctx context.Context, tenantID, enquiryID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&LedgerEntryModel{}).
		Where("tenant_id = ? AND enquiry_id = ? AND reason = ?",
			tenantID, enquiryID, string(loyalty.ReasonCancellationReversal)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountActiveReferrals counts the distinct bookings whose confirmation
// credited this referrer, skipping bookings that were later reversed by a
// cancellation. The count derives from the referrer's own referral
// credits so it stays correct when self-booking awards are disabled.
func (r *GormLedgerRepository) CountActiveReferrals(ctx context.Context, tenantID, referrerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&LedgerEntryModel{}).
		Select("COUNT(DISTINCT enquiry_id)").
		Where("tenant_id = ? AND user_id = ? AND reason = ? AND entry_type = ? AND enquiry_id IS NOT NULL",
			tenantID, referrerID, string(loyalty.ReasonReferral), int(loyalty.EntryCredit)).
		Where(`NOT EXISTS (SELECT 1 FROM loyalty_ledger_entries reversals
			WHERE reversals.tenant_id = loyalty_ledger_entries.tenant_id
			AND reversals.enquiry_id = loyalty_ledger_entries.enquiry_id
			AND reversals.reason = ?)`,
			string(loyalty.ReasonCancellationReversal)).
		Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

var _ loyalty.LedgerRepository = (*GormLedgerRepository)(nil)
