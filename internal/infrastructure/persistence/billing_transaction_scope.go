package persistence

import (
	"context"

	billingapp "github.com/travelcrm/backend/internal/application/billing"
	"github.com/travelcrm/backend/internal/domain/booking"
	"github.com/travelcrm/backend/internal/domain/enquiry"
	"github.com/travelcrm/backend/internal/domain/payment"
	"gorm.io/gorm"
)

// GormBillingTransactionScope implements the billing application layer's
// TransactionScope on a real database transaction.
type GormBillingTransactionScope struct {
	db *gorm.DB
}

// NewGormBillingTransactionScope creates a new transaction scope
func NewGormBillingTransactionScope(db *gorm.DB) *GormBillingTransactionScope {
	return &GormBillingTransactionScope{db: db}
}

// Execute runs fn inside a database transaction. The installment
// repository's latest-row lock holds until commit, serializing concurrent
// payment submissions per family head.
func (s *GormBillingTransactionScope) Execute(ctx context.Context, fn func(repos billingapp.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormBillingTransactionalRepositories{tx: tx})
	})
}

type gormBillingTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormBillingTransactionalRepositories) EnquiryRepo() enquiry.Repository {
	return NewGormEnquiryRepository(r.tx)
}

func (r *gormBillingTransactionalRepositories) FamilyHeadRepo() booking.FamilyHeadRepository {
	return NewGormFamilyHeadRepository(r.tx)
}

func (r *gormBillingTransactionalRepositories) PricingRepo() booking.PricingRepository {
	return NewGormPricingRepository(r.tx)
}

func (r *gormBillingTransactionalRepositories) InstallmentRepo() payment.InstallmentRepository {
	return NewGormInstallmentRepository(r.tx)
}

var _ billingapp.TransactionScope = (*GormBillingTransactionScope)(nil)
var _ billingapp.TransactionalRepositories = (*gormBillingTransactionalRepositories)(nil)
