package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/travelcrm/backend/internal/domain/enquiry"
	"github.com/travelcrm/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// FollowUpCallModel is the GORM model for follow-up call logs
type FollowUpCallModel struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	EnquiryID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	Notes            string     `gorm:"type:text;not null"`
	CalledBy         uuid.UUID  `gorm:"type:uuid;not null"`
	NextFollowUpDate *time.Time
	NextFollowUpTime string    `gorm:"type:varchar(10)"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the model
func (FollowUpCallModel) TableName() string {
	return "follow_up_calls"
}

// ToEntity converts the model to a domain entity
func (m *FollowUpCallModel) ToEntity() *enquiry.FollowUpCall {
	return &enquiry.FollowUpCall{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		TenantID:         m.TenantID,
		EnquiryID:        m.EnquiryID,
		Notes:            m.Notes,
		CalledBy:         m.CalledBy,
		NextFollowUpDate: m.NextFollowUpDate,
		NextFollowUpTime: m.NextFollowUpTime,
	}
}

// FollowUpCallModelFromEntity creates a model from a domain entity
func FollowUpCallModelFromEntity(f *enquiry.FollowUpCall) *FollowUpCallModel {
	return &FollowUpCallModel{
		ID:               f.ID,
		TenantID:         f.TenantID,
		EnquiryID:        f.EnquiryID,
		Notes:            f.Notes,
		CalledBy:         f.CalledBy,
		NextFollowUpDate: f.NextFollowUpDate,
		NextFollowUpTime: f.NextFollowUpTime,
		CreatedAt:        f.CreatedAt,
		UpdatedAt:        f.UpdatedAt,
	}
}

// GormFollowUpRepository implements the enquiry.FollowUpRepository interface
type GormFollowUpRepository struct {
	db *gorm.DB
}

// NewGormFollowUpRepository creates a new follow-up repository
func NewGormFollowUpRepository(db *gorm.DB) *GormFollowUpRepository {
	return &GormFollowUpRepository{db: db}
}

// Create persists a new call-log entry
func (r *GormFollowUpRepository) Create(ctx context.Context, call *enquiry.FollowUpCall) error {
	model := FollowUpCallModelFromEntity(call)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByEnquiry retrieves all call logs for an enquiry, newest first
func (r *GormFollowUpRepository) FindByEnquiry(ctx context.Context, tenantID, enquiryID uuid.UUID) ([]enquiry.FollowUpCall, error) {
	var models []FollowUpCallModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND enquiry_id = ?", tenantID, enquiryID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	calls := make([]enquiry.FollowUpCall, len(models))
	for i, model := range models {
		calls[i] = *model.ToEntity()
	}
	return calls, nil
}

// ExistsForEnquiry reports whether any call has been logged against the enquiry
func (r *GormFollowUpRepository) ExistsForEnquiry(ctx context.Context, tenantID, enquiryID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&FollowUpCallModel{}).
		Where("tenant_id = ? AND enquiry_id = ?", tenantID, enquiryID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var _ enquiry.FollowUpRepository = (*GormFollowUpRepository)(nil)
