package booking

import (
	"github.com/google/uuid"
	"github.com/travelcrm/backend/internal/domain/shared"
)

// FamilyHead is the billing unit within a confirmed enquiry: one family or
// party sharing a single invoice. Pricing and installments hang off it.
type FamilyHead struct {
	shared.TenantAggregateRoot
	EnquiryID uuid.UUID `json:"enquiry_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
}

// NewFamilyHead creates a new family head for an enquiry
func NewFamilyHead(tenantID, enquiryID uuid.UUID, name, phone, email, address string) (*FamilyHead, error) {
	if enquiryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ENQUIRY", "Enquiry ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Family head name cannot be empty")
	}
	if phone == "" {
		return nil, shared.NewDomainError("INVALID_PHONE", "Family head phone cannot be empty")
	}

	return &FamilyHead{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		EnquiryID:           enquiryID,
		Name:                name,
		Phone:               phone,
		Email:               email,
		Address:             address,
	}, nil
}
