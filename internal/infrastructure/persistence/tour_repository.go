package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/travelcrm/backend/internal/domain/catalog"
	"github.com/travelcrm/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// TourModel is the GORM model for the tour lookup
type TourModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:varchar(200);not null"`
	Variant   string    `gorm:"type:varchar(10);not null"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the model
func (TourModel) TableName() string {
	return "tours"
}

// ToEntity converts the model to a domain entity
func (m *TourModel) ToEntity() *catalog.Tour {
	return &catalog.Tour{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		TenantID: m.TenantID,
		Name:     m.Name,
		Variant:  m.Variant,
		Active:   m.Active,
	}
}

// GormTourRepository implements the catalog.TourRepository interface
type GormTourRepository struct {
	db *gorm.DB
}

// NewGormTourRepository creates a new tour repository
func NewGormTourRepository(db *gorm.DB) *GormTourRepository {
	return &GormTourRepository{db: db}
}

// FindByID retrieves a tour by ID within a tenant
func (r *GormTourRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Tour, error) {
	var model TourModel
	if err := r.db.WithContext(ctx).
		First(&model, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// Exists reports whether an active tour with the given ID exists
func (r *GormTourRepository) Exists(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&TourModel{}).
		Where("tenant_id = ? AND id = ? AND active = ?", tenantID, id, true).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ResolveNames maps tour IDs to display names in a single query
func (r *GormTourRepository) ResolveNames(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	var models []TourModel
	if err := r.db.WithContext(ctx).
		Select("id", "name").
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&models).Error; err != nil {
		return nil, err
	}

	for _, model := range models {
		names[model.ID] = model.Name
	}
	return names, nil
}

var _ catalog.TourRepository = (*GormTourRepository)(nil)
