package booking

import (
	"context"

	"github.com/google/uuid"
)

// FamilyHeadRepository provides access to family heads
type FamilyHeadRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*FamilyHead, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*FamilyHead, error)
	// FindByIDForTenantForUpdate reads the family head with a row write
	// lock held until the enclosing transaction ends. Payment recording
	// serializes on this lock.
	FindByIDForTenantForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*FamilyHead, error)
	// FindByEnquiry returns the first family head registered for the
	// enquiry, or shared.ErrNotFound if none exists yet.
	FindByEnquiry(ctx context.Context, tenantID, enquiryID uuid.UUID) (*FamilyHead, error)
	FindAllByEnquiry(ctx context.Context, tenantID, enquiryID uuid.UUID) ([]FamilyHead, error)
	ExistsForEnquiry(ctx context.Context, tenantID, enquiryID uuid.UUID) (bool, error)
	Create(ctx context.Context, head *FamilyHead) error
}

// GuestRepository provides access to guest details
type GuestRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*GuestDetail, error)
	FindByFamilyHead(ctx context.Context, tenantID, familyHeadID uuid.UUID) ([]GuestDetail, error)
	FindByEnquiry(ctx context.Context, tenantID, enquiryID uuid.UUID) ([]GuestDetail, error)
	Create(ctx context.Context, guest *GuestDetail) error
}

// PricingRepository provides access to pricing records
type PricingRepository interface {
	FindByFamilyHead(ctx context.Context, tenantID, familyHeadID uuid.UUID) (*PricingRecord, error)
	ExistsForFamilyHead(ctx context.Context, tenantID, familyHeadID uuid.UUID) (bool, error)
	Create(ctx context.Context, record *PricingRecord) error
	Save(ctx context.Context, record *PricingRecord) error
}

// GuestRefundRepository provides access to per-guest cancellation records
type GuestRefundRepository interface {
	Create(ctx context.Context, refund *GuestRefund) error
	FindByEnquiry(ctx context.Context, tenantID, enquiryID uuid.UUID) ([]GuestRefund, error)
}
