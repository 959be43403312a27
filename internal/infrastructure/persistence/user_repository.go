package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/travelcrm/backend/internal/domain/identity"
	"github.com/travelcrm/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// UserModel is the GORM model for registered guest identities
type UserModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	Name       string     `gorm:"type:varchar(120);not null"`
	Phone      string     `gorm:"type:varchar(32);not null"`
	Email      string     `gorm:"type:varchar(120)"`
	ReferredBy *uuid.UUID `gorm:"type:uuid;index"`
	CreatedBy  *uuid.UUID `gorm:"type:uuid"`
	Version    int        `gorm:"not null;default:1"`
	CreatedAt  time.Time  `gorm:"autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the model
func (UserModel) TableName() string {
	return "users"
}

// ToEntity converts the model to a domain entity
func (m *UserModel) ToEntity() *identity.User {
	return &identity.User{
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
		Name:       m.Name,
		Phone:      m.Phone,
		Email:      m.Email,
		ReferredBy: m.ReferredBy,
	}
}

// UserModelFromEntity creates a model from a domain entity
func UserModelFromEntity(u *identity.User) *UserModel {
	return &UserModel{
		ID:         u.ID,
		TenantID:   u.TenantID,
		Name:       u.Name,
		Phone:      u.Phone,
		Email:      u.Email,
		ReferredBy: u.ReferredBy,
		CreatedBy:  u.CreatedBy,
		Version:    u.Version,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// GormUserRepository implements the identity.UserRepository interface
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new user repository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID retrieves a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// FindByIDForTenant retrieves a user by ID within a tenant
func (r *GormUserRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*identity.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).
		First(&model, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// Create persists a new user
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	model := UserModelFromEntity(user)
	return r.db.WithContext(ctx).Create(model).Error
}

var _ identity.UserRepository = (*GormUserRepository)(nil)
