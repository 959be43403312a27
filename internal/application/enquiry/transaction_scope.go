package enquiry

import (
	"context"

	"github.com/travelcrm/backend/internal/domain/booking"
	"github.com/travelcrm/backend/internal/domain/catalog"
	"github.com/travelcrm/backend/internal/domain/enquiry"
	"github.com/travelcrm/backend/internal/domain/identity"
	"github.com/travelcrm/backend/internal/domain/loyalty"
)

// TransactionScope provides transactional access to the enquiry lifecycle
// repositories. When a function is executed within a transaction scope, all
// repository operations are part of the same database transaction and are
// committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories the enquiry
// lifecycle touches within a transaction. Everything returned shares the
// same underlying database transaction; in particular the counter
// repository's row lock is held until that transaction ends.
type TransactionalRepositories interface {
	// EnquiryRepo returns the enquiry repository scoped to the current transaction
	EnquiryRepo() enquiry.Repository
	// CounterRepo returns the enquiry number allocator scoped to the current transaction
	CounterRepo() enquiry.CounterRepository
	// FollowUpRepo returns the follow-up call log repository scoped to the current transaction
	FollowUpRepo() enquiry.FollowUpRepository
	// FamilyHeadRepo returns the family head repository scoped to the current transaction
	FamilyHeadRepo() booking.FamilyHeadRepository
	// GuestRepo returns the guest detail repository scoped to the current transaction
	GuestRepo() booking.GuestRepository
	// RefundRepo returns the guest refund repository scoped to the current transaction
	RefundRepo() booking.GuestRefundRepository
	// LedgerRepo returns the loyalty ledger repository scoped to the current transaction
	LedgerRepo() loyalty.LedgerRepository
	// UserRepo returns the registered guest identity repository scoped to the current transaction
	UserRepo() identity.UserRepository
	// TourRepo returns the read-only tour lookup scoped to the current transaction
	TourRepo() catalog.TourRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. This is useful for testing or when transaction support is
// not required.
type NoOpTransactionScope struct {
	enquiryRepo    enquiry.Repository
	counterRepo    enquiry.CounterRepository
	followUpRepo   enquiry.FollowUpRepository
	familyHeadRepo booking.FamilyHeadRepository
	guestRepo      booking.GuestRepository
	refundRepo     booking.GuestRefundRepository
	ledgerRepo     loyalty.LedgerRepository
	userRepo       identity.UserRepository
	tourRepo       catalog.TourRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	enquiryRepo enquiry.Repository,
	counterRepo enquiry.CounterRepository,
	followUpRepo enquiry.FollowUpRepository,
	familyHeadRepo booking.FamilyHeadRepository,
	guestRepo booking.GuestRepository,
	refundRepo booking.GuestRefundRepository,
	ledgerRepo loyalty.LedgerRepository,
	userRepo identity.UserRepository,
	tourRepo catalog.TourRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		enquiryRepo:    enquiryRepo,
		counterRepo:    counterRepo,
		followUpRepo:   followUpRepo,
		familyHeadRepo: familyHeadRepo,
		guestRepo:      guestRepo,
		refundRepo:     refundRepo,
		ledgerRepo:     ledgerRepo,
		userRepo:       userRepo,
		tourRepo:       tourRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// EnquiryRepo returns the enquiry repository.
func (s *NoOpTransactionScope) EnquiryRepo() enquiry.Repository { return s.enquiryRepo }

// CounterRepo returns the enquiry number allocator.
func (s *NoOpTransactionScope) CounterRepo() enquiry.CounterRepository { return s.counterRepo }

// FollowUpRepo returns the follow-up call log repository.
func (s *NoOpTransactionScope) FollowUpRepo() enquiry.FollowUpRepository { return s.followUpRepo }

// FamilyHeadRepo returns the family head repository.
func (s *NoOpTransactionScope) FamilyHeadRepo() booking.FamilyHeadRepository {
	return s.familyHeadRepo
}

// GuestRepo returns the guest detail repository.
func (s *NoOpTransactionScope) GuestRepo() booking.GuestRepository { return s.guestRepo }

// RefundRepo returns the guest refund repository.
func (s *NoOpTransactionScope) RefundRepo() booking.GuestRefundRepository { return s.refundRepo }

// LedgerRepo returns the loyalty ledger repository.
func (s *NoOpTransactionScope) LedgerRepo() loyalty.LedgerRepository { return s.ledgerRepo }

// UserRepo returns the registered guest identity repository.
func (s *NoOpTransactionScope) UserRepo() identity.UserRepository { return s.userRepo }

// TourRepo returns the read-only tour lookup.
func (s *NoOpTransactionScope) TourRepo() catalog.TourRepository { return s.tourRepo }

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
