package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/travelcrm/backend/internal/domain/shared"
)

// User is a registered guest identity. Loyalty points accrue against users;
// ReferredBy links the user that introduced this one and is the anchor for
// referral attribution when a referred user's enquiry is confirmed.
type User struct {
	shared.TenantAggregateRoot
	Name       string     `json:"name"`
	Phone      string     `json:"phone"`
	Email      string     `json:"email"`
	ReferredBy *uuid.UUID `json:"referred_by"`
}

// NewUser creates a registered guest identity
func NewUser(tenantID uuid.UUID, name, phone, email string) (*User, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "User name cannot be empty")
	}
	if phone == "" {
		return nil, shared.NewDomainError("INVALID_PHONE", "User phone cannot be empty")
	}

	return &User{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Phone:               phone,
		Email:               email,
	}, nil
}

// WithReferrer records who introduced this user
func (u *User) WithReferrer(referrerID uuid.UUID) *User {
	if referrerID != uuid.Nil {
		u.ReferredBy = &referrerID
	}
	return u
}

// UserRepository provides access to registered guest identities
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*User, error)
	Create(ctx context.Context, user *User) error
}
