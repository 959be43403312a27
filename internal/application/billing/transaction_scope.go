package billing

import (
	"context"

	"github.com/travelcrm/backend/internal/domain/booking"
	"github.com/travelcrm/backend/internal/domain/enquiry"
	"github.com/travelcrm/backend/internal/domain/payment"
)

// TransactionScope provides transactional access to the billing
// repositories. Pricing writes and the installment read-then-insert balance
// sequence both need to run atomically against the same transaction.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the billing repositories
// within a transaction. The family-head repository's FindByIDForTenantForUpdate
// lock is held until the owning transaction ends.
type TransactionalRepositories interface {
	// EnquiryRepo returns the enquiry repository scoped to the current transaction
	EnquiryRepo() enquiry.Repository
	// FamilyHeadRepo returns the family head repository scoped to the current transaction
	FamilyHeadRepo() booking.FamilyHeadRepository
	// PricingRepo returns the pricing repository scoped to the current transaction
	PricingRepo() booking.PricingRepository
	// InstallmentRepo returns the installment ledger repository scoped to the current transaction
	InstallmentRepo() payment.InstallmentRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing.
type NoOpTransactionScope struct {
	enquiryRepo     enquiry.Repository
	familyHeadRepo  booking.FamilyHeadRepository
	pricingRepo     booking.PricingRepository
	installmentRepo payment.InstallmentRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	enquiryRepo enquiry.Repository,
	familyHeadRepo booking.FamilyHeadRepository,
	pricingRepo booking.PricingRepository,
	installmentRepo payment.InstallmentRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		enquiryRepo:     enquiryRepo,
		familyHeadRepo:  familyHeadRepo,
		pricingRepo:     pricingRepo,
		installmentRepo: installmentRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// EnquiryRepo returns the enquiry repository.
func (s *NoOpTransactionScope) EnquiryRepo() enquiry.Repository { return s.enquiryRepo }

// FamilyHeadRepo returns the family head repository.
func (s *NoOpTransactionScope) FamilyHeadRepo() booking.FamilyHeadRepository {
	return s.familyHeadRepo
}

// PricingRepo returns the pricing repository.
func (s *NoOpTransactionScope) PricingRepo() booking.PricingRepository { return s.pricingRepo }

// InstallmentRepo returns the installment ledger repository.
func (s *NoOpTransactionScope) InstallmentRepo() payment.InstallmentRepository {
	return s.installmentRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
