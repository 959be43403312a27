package booking

import (
	"github.com/google/uuid"
	"github.com/travelcrm/backend/internal/domain/shared"
)

// GuestDetail is an individual traveler under a family head. A guest may be
// linked to a registered user, which is the identity loyalty points accrue
// against; unlinked guests earn nothing.
//
// The guest count per family head is deliberately unconstrained; it is not
// validated against the enquiry's declared pax.
type GuestDetail struct {
	shared.BaseEntity
	TenantID     uuid.UUID  `json:"tenant_id"`
	FamilyHeadID uuid.UUID  `json:"family_head_id"`
	Name         string     `json:"name"`
	Age          int        `json:"age"`
	Gender       string     `json:"gender"`
	GuestUserID  *uuid.UUID `json:"guest_user_id"`
}

// NewGuestDetail creates a new guest under a family head
func NewGuestDetail(tenantID, familyHeadID uuid.UUID, name string, age int, gender string) (*GuestDetail, error) {
	if familyHeadID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_FAMILY_HEAD", "Family head ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Guest name cannot be empty")
	}
	if age < 0 {
		return nil, shared.NewDomainError("INVALID_AGE", "Guest age cannot be negative")
	}

	return &GuestDetail{
		BaseEntity:   shared.NewBaseEntity(),
		TenantID:     tenantID,
		FamilyHeadID: familyHeadID,
		Name:         name,
		Age:          age,
		Gender:       gender,
	}, nil
}

// LinkUser attaches the registered user this guest travels as
func (g *GuestDetail) LinkUser(userID uuid.UUID) {
	if userID == uuid.Nil {
		return
	}
	g.GuestUserID = &userID
}
