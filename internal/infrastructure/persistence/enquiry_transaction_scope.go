package persistence

import (
	"context"

	enquiryapp "github.com/travelcrm/backend/internal/application/enquiry"
	"github.com/travelcrm/backend/internal/domain/booking"
	"github.com/travelcrm/backend/internal/domain/catalog"
	"github.com/travelcrm/backend/internal/domain/enquiry"
	"github.com/travelcrm/backend/internal/domain/identity"
	"github.com/travelcrm/backend/internal/domain/loyalty"
	"gorm.io/gorm"
)

// GormEnquiryTransactionScope implements the enquiry application layer's
// TransactionScope on a real database transaction.
type GormEnquiryTransactionScope struct {
	db *gorm.DB
}

// NewGormEnquiryTransactionScope creates a new transaction scope
func NewGormEnquiryTransactionScope(db *gorm.DB) *GormEnquiryTransactionScope {
	return &GormEnquiryTransactionScope{db: db}
}

// Execute runs fn inside a database transaction. Every repository handed to
// fn is bound to that transaction, so the counter row lock taken during
// number allocation holds until commit.
func (s *GormEnquiryTransactionScope) Execute(ctx context.Context, fn func(repos enquiryapp.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormEnquiryTransactionalRepositories{tx: tx})
	})
}

type gormEnquiryTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormEnquiryTransactionalRepositories) EnquiryRepo() enquiry.Repository {
	return NewGormEnquiryRepository(r.tx)
}

func (r *gormEnquiryTransactionalRepositories) CounterRepo() enquiry.CounterRepository {
	return NewGormCounterRepository(r.tx)
}

func (r *gormEnquiryTransactionalRepositories) FollowUpRepo() enquiry.FollowUpRepository {
	return NewGormFollowUpRepository(r.tx)
}

func (r *gormEnquiryTransactionalRepositories) FamilyHeadRepo() booking.FamilyHeadRepository {
	return NewGormFamilyHeadRepository(r.tx)
}

func (r *gormEnquiryTransactionalRepositories) GuestRepo() booking.GuestRepository {
	return NewGormGuestRepository(r.tx)
}

func (r *gormEnquiryTransactionalRepositories) RefundRepo() booking.GuestRefundRepository {
	return NewGormGuestRefundRepository(r.tx)
}

func (r *gormEnquiryTransactionalRepositories) LedgerRepo() loyalty.LedgerRepository {
	return NewGormLedgerRepository(r.tx)
}

func (r *gormEnquiryTransactionalRepositories) UserRepo() identity.UserRepository {
	return NewGormUserRepository(r.tx)
}

func (r *gormEnquiryTransactionalRepositories) TourRepo() catalog.TourRepository {
	return NewGormTourRepository(r.tx)
}

var _ enquiryapp.TransactionScope = (*GormEnquiryTransactionScope)(nil)
var _ enquiryapp.TransactionalRepositories = (*gormEnquiryTransactionalRepositories)(nil)
