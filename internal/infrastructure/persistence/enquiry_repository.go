package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/travelcrm/backend/internal/domain/enquiry"
	"github.com/travelcrm/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// EnquiryModel is the GORM model for enquiries
type EnquiryModel struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_enquiries_tenant_number,priority:1;index"`
	EnquiryNumber    string     `gorm:"type:varchar(20);not null;uniqueIndex:idx_enquiries_tenant_number,priority:2"`
	Variant          string     `gorm:"type:varchar(10);not null"`
	TourID           uuid.UUID  `gorm:"type:uuid;not null;index"`
	GuestName        string     `gorm:"type:varchar(120);not null"`
	GuestPhone       string     `gorm:"type:varchar(32);not null"`
	GuestEmail       string     `gorm:"type:varchar(120)"`
	AdultCount       int        `gorm:"not null"`
	ChildCount       int        `gorm:"not null;default:0"`
	Process          int        `gorm:"not null;default:1;index"`
	AssignedTo       uuid.UUID  `gorm:"type:uuid;not null;index"`
	NextFollowUpDate *time.Time `gorm:"index"`
	NextFollowUpTime string     `gorm:"type:varchar(10)"`
	ConfirmedAt      *time.Time
	CancelledAt      *time.Time
	ClosureReason    string     `gorm:"type:text"`
	CreatedBy        *uuid.UUID `gorm:"type:uuid"`
	Version          int        `gorm:"not null;default:1"`
	CreatedAt        time.Time  `gorm:"autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the model
func (EnquiryModel) TableName() string {
	return "enquiries"
}

// ToEntity converts the model to a domain entity
func (m *EnquiryModel) ToEntity() *enquiry.Enquiry {
	return &enquiry.Enquiry{
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
		EnquiryNumber:    m.EnquiryNumber,
		Variant:          enquiry.TourVariant(m.Variant),
		TourID:           m.TourID,
		GuestName:        m.GuestName,
		GuestPhone:       m.GuestPhone,
		GuestEmail:       m.GuestEmail,
		AdultCount:       m.AdultCount,
		ChildCount:       m.ChildCount,
		Process:          enquiry.ProcessState(m.Process),
		AssignedTo:       m.AssignedTo,
		NextFollowUpDate: m.NextFollowUpDate,
		NextFollowUpTime: m.NextFollowUpTime,
		ConfirmedAt:      m.ConfirmedAt,
		CancelledAt:      m.CancelledAt,
		ClosureReason:    m.ClosureReason,
	}
}

// EnquiryModelFromEntity creates a model from a domain entity
func EnquiryModelFromEntity(e *enquiry.Enquiry) *EnquiryModel {
	return &EnquiryModel{
		ID:               e.ID,
		TenantID:         e.TenantID,
		EnquiryNumber:    e.EnquiryNumber,
		Variant:          string(e.Variant),
		TourID:           e.TourID,
		GuestName:        e.GuestName,
		GuestPhone:       e.GuestPhone,
		GuestEmail:       e.GuestEmail,
		AdultCount:       e.AdultCount,
		ChildCount:       e.ChildCount,
		Process:          int(e.Process),
		AssignedTo:       e.AssignedTo,
		NextFollowUpDate: e.NextFollowUpDate,
		NextFollowUpTime: e.NextFollowUpTime,
		ConfirmedAt:      e.ConfirmedAt,
		CancelledAt:      e.CancelledAt,
		ClosureReason:    e.ClosureReason,
		CreatedBy:        e.CreatedBy,
		Version:          e.Version,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

// GormEnquiryRepository implements the enquiry.Repository interface
type GormEnquiryRepository struct {
	db *gorm.DB
}

// NewGormEnquiryRepository creates a new enquiry repository
func NewGormEnquiryRepository(db *gorm.DB) *GormEnquiryRepository {
	return &GormEnquiryRepository{db: db}
}

// FindByID retrieves an enquiry by its ID
func (r *GormEnquiryRepository) FindByID(ctx context.Context, id uuid.UUID) (*enquiry.Enquiry, error) {
	var model EnquiryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// FindByIDForTenant retrieves an enquiry by ID within a tenant
func (r *GormEnquiryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*enquiry.Enquiry, error) {
	var model EnquiryModel
	if err := r.db.WithContext(ctx).
		First(&model, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// FindByNumber retrieves an enquiry by its human-readable number
func (r *GormEnquiryRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, enquiryNumber string) (*enquiry.Enquiry, error) {
	var model EnquiryModel
	if err := r.db.WithContext(ctx).
		First(&model, "tenant_id = ? AND enquiry_number = ?", tenantID, enquiryNumber).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// FindAllForTenant retrieves the filtered enquiry page for a tenant
func (r *GormEnquiryRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter enquiry.Filter) ([]enquiry.Enquiry, error) {
	var models []EnquiryModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&EnquiryModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	orderBy := ValidateSortField(filter.OrderBy, EnquirySortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	if filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	enquiries := make([]enquiry.Enquiry, len(models))
	for i, model := range models {
		enquiries[i] = *model.ToEntity()
	}
	return enquiries, nil
}

// CountForTenant counts enquiries matching the filter
func (r *GormEnquiryRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter enquiry.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&EnquiryModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormEnquiryRepository) applyFilter(query *gorm.DB, filter enquiry.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(
			"enquiry_number ILIKE ? OR guest_name ILIKE ? OR guest_phone ILIKE ?",
			pattern, pattern, pattern,
		)
	}
	if filter.Process != nil {
		query = query.Where("process = ?", int(*filter.Process))
	}
	if filter.Variant != nil {
		query = query.Where("variant = ?", string(*filter.Variant))
	}
	if filter.AssignedTo != nil {
		query = query.Where("assigned_to = ?", *filter.AssignedTo)
	}
	if filter.FollowUpFrom != nil {
		query = query.Where("next_follow_up_date >= ?", *filter.FollowUpFrom)
	}
	if filter.FollowUpTo != nil {
		query = query.Where("next_follow_up_date <= ?", *filter.FollowUpTo)
	}
	return query
}

// Save creates or updates an enquiry
func (r *GormEnquiryRepository) Save(ctx context.Context, e *enquiry.Enquiry) error {
	model := EnquiryModelFromEntity(e)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormEnquiryRepository) SaveWithLock(ctx context.Context, e *enquiry.Enquiry) error {
	model := EnquiryModelFromEntity(e)
	result := r.db.WithContext(ctx).
		Model(&EnquiryModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version-1).
		Updates(map[string]interface{}{
			"process":             model.Process,
			"next_follow_up_date": model.NextFollowUpDate,
			"next_follow_up_time": model.NextFollowUpTime,
			"confirmed_at":        model.ConfirmedAt,
			"cancelled_at":        model.CancelledAt,
			"closure_reason":      model.ClosureReason,
			"version":             model.Version,
			"updated_at":          model.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_FAILED", "Enquiry was modified by another transaction")
	}
	return nil
}

var _ enquiry.Repository = (*GormEnquiryRepository)(nil)
