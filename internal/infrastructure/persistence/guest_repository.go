package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/travelcrm/backend/internal/domain/booking"
	"github.com/travelcrm/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GuestDetailModel is the GORM model for guest details
type GuestDetailModel struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	FamilyHeadID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Name         string     `gorm:"type:varchar(120);not null"`
	Age          int        `gorm:"not null;default:0"`
	Gender       string     `gorm:"type:varchar(16)"`
	GuestUserID  *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt    time.Time  `gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the model
func (GuestDetailModel) TableName() string {
	return "guest_details"
}

// ToEntity converts the model to a domain entity
func (m *GuestDetailModel) ToEntity() *booking.GuestDetail {
	return &booking.GuestDetail{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		TenantID:     m.TenantID,
		FamilyHeadID: m.FamilyHeadID,
		Name:         m.Name,
		Age:          m.Age,
		Gender:       m.Gender,
		GuestUserID:  m.GuestUserID,
	}
}

// GuestDetailModelFromEntity creates a model from a domain entity
func GuestDetailModelFromEntity(g *booking.GuestDetail) *GuestDetailModel {
	return &GuestDetailModel{
		ID:           g.ID,
		TenantID:     g.TenantID,
		FamilyHeadID: g.FamilyHeadID,
		Name:         g.Name,
		Age:          g.Age,
		Gender:       g.Gender,
		GuestUserID:  g.GuestUserID,
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}
}

// GormGuestRepository implements the booking.GuestRepository interface
type GormGuestRepository struct {
	db *gorm.DB
}

// NewGormGuestRepository creates a new guest repository
func NewGormGuestRepository(db *gorm.DB) *GormGuestRepository {
	return &GormGuestRepository{db: db}
}

// FindByID retrieves a guest by ID
func (r *GormGuestRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.GuestDetail, error) {
	var model GuestDetailModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// FindByFamilyHead retrieves all guests under a family head
func (r *GormGuestRepository) FindByFamilyHead(ctx context.Context, tenantID, familyHeadID uuid.UUID) ([]booking.GuestDetail, error) {
	var models []GuestDetailModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND family_head_id = ?", tenantID, familyHeadID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return guestEntities(models), nil
}

// FindByEnquiry retrieves all guests across every family head of an enquiry
func (r *GormGuestRepository) FindByEnquiry(ctx context.Context, tenantID, enquiryID uuid.UUID) ([]booking.GuestDetail, error) {
	var models []GuestDetailModel
	if err := r.db.WithContext(ctx).
		Joins("JOIN family_heads ON family_heads.id = guest_details.family_head_id").
		Where("guest_details.tenant_id = ? AND family_heads.enquiry_id = ?", tenantID, enquiryID).
		Order("guest_details.created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return guestEntities(models), nil
}

func guestEntities(models []GuestDetailModel) []booking.GuestDetail {
	guests := make([]booking.GuestDetail, len(models))
	for i, model := range models {
		guests[i] = *model.ToEntity()
	}
	return guests
}

// Create persists a new guest
func (r *GormGuestRepository) Create(ctx context.Context, guest *booking.GuestDetail) error {
	model := GuestDetailModelFromEntity(guest)
	return r.db.WithContext(ctx).Create(model).Error
}

var _ booking.GuestRepository = (*GormGuestRepository)(nil)
