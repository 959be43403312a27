package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/travelcrm/backend/internal/domain/booking"
	"github.com/travelcrm/backend/internal/domain/enquiry"
	"github.com/travelcrm/backend/internal/domain/payment"
)

// =============================================================================
// Mock repositories shared by the billing service tests
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

type MockPricingRepository struct {
	mock.Mock
}

func (m *MockPricingRepository) FindByFamilyHead(ctx context.Context, tenantID, familyHeadID uuid.UUID) (*booking.PricingRecord, error) {
	args := m.Called(ctx, tenantID, familyHeadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.PricingRecord), args.Error(1)
}

func (m *MockPricingRepository) ExistsForFamilyHead(ctx context.Context, tenantID, familyHeadID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, familyHeadID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPricingRepository) Create(ctx context.Context, record *booking.PricingRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockPricingRepository) Save(ctx context.Context, record *booking.PricingRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
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

type MockProofStorage struct {
	mock.Mock
}

func (m *MockProofStorage) Upload(ctx context.Context, storageKey string, data []byte, contentType string) error {
	args := m.Called(ctx, storageKey, data, contentType)
	return args.Error(0)
}

func (m *MockProofStorage) GenerateDownloadURL(ctx context.Context, storageKey string) (string, error) {
	args := m.Called(ctx, storageKey)
	return args.String(0), args.Error(1)
}

// mockRepos bundles the mocks behind a NoOpTransactionScope for service tests
type mockRepos struct {
	enquiryRepo     *MockEnquiryRepository
	familyHeadRepo  *MockFamilyHeadRepository
	pricingRepo     *MockPricingRepository
	installmentRepo *MockInstallmentRepository
}

func newMockRepos() *mockRepos {
	return &mockRepos{
		enquiryRepo:     new(MockEnquiryRepository),
		familyHeadRepo:  new(MockFamilyHeadRepository),
		pricingRepo:     new(MockPricingRepository),
		installmentRepo: new(MockInstallmentRepository),
	}
}

func (r *mockRepos) scope() TransactionScope {
	return NewNoOpTransactionScope(r.enquiryRepo, r.familyHeadRepo, r.pricingRepo, r.installmentRepo)
}
