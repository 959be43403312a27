package enquiry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/travelcrm/backend/internal/domain/booking"
	"github.com/travelcrm/backend/internal/domain/catalog"
	"github.com/travelcrm/backend/internal/domain/enquiry"
	"github.com/travelcrm/backend/internal/domain/identity"
	"github.com/travelcrm/backend/internal/domain/loyalty"
	"github.com/travelcrm/backend/internal/domain/payment"
)

// =============================================================================
// Mock repositories shared by the enquiry application service tests
// =============================================================================

type MockEnquiryRepository struct {
	mock.Mock
}

func (m *MockEnquiryRepository) FindByID(ctx context.Context, id uuid.UUID) (*enquiry.Enquiry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*enquiry.Enquiry), args.Error(1)
}

func (m *MockEnquiryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*enquiry.Enquiry, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*enquiry.Enquiry), args.Error(1)
}

func (m *MockEnquiryRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, enquiryNumber string) (*enquiry.Enquiry, error) {
	args := m.Called(ctx, tenantID, enquiryNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*enquiry.Enquiry), args.Error(1)
}

func (m *MockEnquiryRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter enquiry.Filter) ([]enquiry.Enquiry, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]enquiry.Enquiry), args.Error(1)
}

func (m *MockEnquiryRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter enquiry.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEnquiryRepository) Save(ctx context.Context, e *enquiry.Enquiry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEnquiryRepository) SaveWithLock(ctx context.Context, e *enquiry.Enquiry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

type MockCounterRepository struct {
	mock.Mock
}

func (m *MockCounterRepository) AllocateEnquiryNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

type MockFollowUpRepository struct {
	mock.Mock
}

func (m *MockFollowUpRepository) Create(ctx context.Context, call *enquiry.FollowUpCall) error {
	args := m.Called(ctx, call)
	return args.Error(0)
}

func (m *MockFollowUpRepository) FindByEnquiry(ctx context.Context, tenantID, enquiryID uuid.UUID) ([]enquiry.FollowUpCall, error) {
	args := m.Called(ctx, tenantID, enquiryID)
	return args.Get(0).([]enquiry.FollowUpCall), args.Error(1)
}

func (m *MockFollowUpRepository) ExistsForEnquiry(ctx context.Context, tenantID, enquiryID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, enquiryID)
	return args.Bool(0), args.Error(1)
}

type MockFamilyHeadRepository struct {
	mock.Mock
}

func (m *MockFamilyHeadRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.FamilyHead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.FamilyHead), args.Error(1)
}

func (m *MockFamilyHeadRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*booking.FamilyHead, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.FamilyHead), args.Error(1)
}

func (m *MockFamilyHeadRepository) FindByIDForTenantForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*booking.FamilyHead, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.FamilyHead), args.Error(1)
}

func (m *MockFamilyHeadRepository) FindByEnquiry(ctx context.Context, tenantID, enquiryID uuid.UUID) (*booking.FamilyHead, error) {
	args := m.Called(ctx, tenantID, enquiryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.FamilyHead), args.Error(1)
}

func (m *MockFamilyHeadRepository) FindAllByEnquiry(ctx context.Context, tenantID, enquiryID uuid.UUID) ([]booking.FamilyHead, error) {
	args := m.Called(ctx, tenantID, enquiryID)
	return args.Get(0).([]booking.FamilyHead), args.Error(1)
}

func (m *MockFamilyHeadRepository) ExistsForEnquiry(ctx context.Context, tenantID, enquiryID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, enquiryID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFamilyHeadRepository) Create(ctx context.Context, head *booking.FamilyHead) error {
	args := m.Called(ctx, head)
	return args.Error(0)
}

type MockGuestRepository struct {
	mock.Mock
}

func (m *MockGuestRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.GuestDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.GuestDetail), args.Error(1)
}

func (m *MockGuestRepository) FindByFamilyHead(ctx context.Context, tenantID, familyHeadID uuid.UUID) ([]booking.GuestDetail, error) {
	args := m.Called(ctx, tenantID, familyHeadID)
	return args.Get(0).([]booking.GuestDetail), args.Error(1)
}

func (m *MockGuestRepository) FindByEnquiry(ctx context.Context, tenantID, enquiryID uuid.UUID) ([]booking.GuestDetail, error) {
	args := m.Called(ctx, tenantID, enquiryID)
	return args.Get(0).([]booking.GuestDetail), args.Error(1)
}

func (m *MockGuestRepository) Create(ctx context.Context, guest *booking.GuestDetail) error {
	args := m.Called(ctx, guest)
	return args.Error(0)
}

type MockGuestRefundRepository struct {
	mock.Mock
}

func (m *MockGuestRefundRepository) Create(ctx context.Context, refund *booking.GuestRefund) error {
	args := m.Called(ctx, refund)
	return args.Error(0)
}

func (m *MockGuestRefundRepository) FindByEnquiry(ctx context.Context, tenantID, enquiryID uuid.UUID) ([]booking.GuestRefund, error) {
	args := m.Called(ctx, tenantID, enquiryID)
	return args.Get(0).([]booking.GuestRefund), args.Error(1)
}

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Create(ctx context.Context, entry *loyalty.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) SumWindow(ctx context.Context, tenantID, userID uuid.UUID, asOf time.Time) (int64, error) {
	args := m.Called(ctx, tenantID, userID, asOf)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) FindByUser(ctx context.Context, tenantID, userID uuid.UUID, page, pageSize int) ([]loyalty.LedgerEntry, int64, error) {
	args := m.Called(ctx, tenantID, userID, page, pageSize)
	return args.Get(0).([]loyalty.LedgerEntry), args.Get(1).(int64), args.Error(2)
}

func (m *MockLedgerRepository) FindCreditsByEnquiry(ctx context.Context, tenantID, enquiryID uuid.UUID) ([]loyalty.LedgerEntry, error) {
	args := m.Called(ctx, tenantID, enquiryID)
	return args.Get(0).([]loyalty.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) ExistsReversalForEnquiry(ctx context.Context, tenantID, enquiryID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, enquiryID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerRepository) CountActiveReferrals(ctx context.Context, tenantID, referrerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, referrerID)
	return args.Get(0).(int64), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type MockTourRepository struct {
	mock.Mock
}

func (m *MockTourRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Tour, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Tour), args.Error(1)
}

func (m *MockTourRepository) Exists(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockTourRepository) ResolveNames(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).(map[uuid.UUID]string), args.Error(1)
}

type MockInstallmentRepository struct {
	mock.Mock
}

func (m *MockInstallmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Installment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Installment), args.Error(1)
}

func (m *MockInstallmentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*payment.Installment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Installment), args.Error(1)
}

func (m *MockInstallmentRepository) FindByFamilyHead(ctx context.Context, tenantID, familyHeadID uuid.UUID) ([]payment.Installment, error) {
	args := m.Called(ctx, tenantID, familyHeadID)
	return args.Get(0).([]payment.Installment), args.Error(1)
}

func (m *MockInstallmentRepository) FindLatest(ctx context.Context, tenantID, familyHeadID uuid.UUID) (*payment.Installment, error) {
	args := m.Called(ctx, tenantID, familyHeadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Installment), args.Error(1)
}

func (m *MockInstallmentRepository) SumAdvances(ctx context.Context, tenantID, familyHeadID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, familyHeadID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockInstallmentRepository) AllSettledForEnquiry(ctx context.Context, tenantID, enquiryID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, enquiryID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInstallmentRepository) Create(ctx context.Context, installment *payment.Installment) error {
	args := m.Called(ctx, installment)
	return args.Error(0)
}

func (m *MockInstallmentRepository) Save(ctx context.Context, installment *payment.Installment) error {
	args := m.Called(ctx, installment)
	return args.Error(0)
}

// mockRepos bundles the mocks behind a NoOpTransactionScope for service tests
type mockRepos struct {
	enquiryRepo    *MockEnquiryRepository
	counterRepo    *MockCounterRepository
	followUpRepo   *MockFollowUpRepository
	familyHeadRepo *MockFamilyHeadRepository
	guestRepo      *MockGuestRepository
	refundRepo     *MockGuestRefundRepository
	ledgerRepo     *MockLedgerRepository
	userRepo       *MockUserRepository
	tourRepo       *MockTourRepository
}

func newMockRepos() *mockRepos {
	return &mockRepos{
		enquiryRepo:    new(MockEnquiryRepository),
		counterRepo:    new(MockCounterRepository),
		followUpRepo:   new(MockFollowUpRepository),
		familyHeadRepo: new(MockFamilyHeadRepository),
		guestRepo:      new(MockGuestRepository),
		refundRepo:     new(MockGuestRefundRepository),
		ledgerRepo:     new(MockLedgerRepository),
		userRepo:       new(MockUserRepository),
		tourRepo:       new(MockTourRepository),
	}
}

func (r *mockRepos) scope() TransactionScope {
	return NewNoOpTransactionScope(
		r.enquiryRepo, r.counterRepo, r.followUpRepo,
		r.familyHeadRepo, r.guestRepo, r.refundRepo,
		r.ledgerRepo, r.userRepo, r.tourRepo,
	)
}
