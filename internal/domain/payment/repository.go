package payment

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InstallmentRepository provides access to the payment ledger. The
// read-then-insert balance sequence must run while the family-head row is
// write-locked so concurrent installment submissions for the same family
// head serialize instead of racing.
type InstallmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Installment, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Installment, error)
	FindByFamilyHead(ctx context.Context, tenantID, familyHeadID uuid.UUID) ([]Installment, error)
	// FindLatest returns the most recent installment for the family head,
	// or shared.ErrNotFound when none exists.
	FindLatest(ctx context.Context, tenantID, familyHeadID uuid.UUID) (*Installment, error)
	SumAdvances(ctx context.Context, tenantID, familyHeadID uuid.UUID) (decimal.Decimal, error)
	// AllSettledForEnquiry reports whether every family head under the
	// enquiry that has payments has a latest balance of zero.
	AllSettledForEnquiry(ctx context.Context, tenantID, enquiryID uuid.UUID) (bool, error)
	Create(ctx context.Context, installment *Installment) error
	Save(ctx context.Context, installment *Installment) error
}
