package billing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/travelcrm/backend/internal/domain/booking"
	"github.com/travelcrm/backend/internal/domain/payment"
	"github.com/travelcrm/backend/internal/domain/shared"
	"github.com/travelcrm/backend/internal/domain/shared/valueobject"
)

func pricingFixture(t *testing.T, tenantID uuid.UUID, head *booking.FamilyHead) *booking.PricingRecord {
	t.Helper()
	record, err := booking.NewPricingRecord(tenantID, head.EnquiryID, head.ID,
		valueobject.NewMoneyINR(decimal.NewFromInt(250000)),
		valueobject.NewMoneyINR(decimal.NewFromInt(10000)),
		valueobject.NewMoneyINR(decimal.NewFromInt(11750)),
		valueobject.NewMoneyINR(decimal.NewFromInt(500)))
	require.NoError(t, err)
	return record
}

func TestPaymentService_RecordPayment(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("first installment starts from the grand total", func(t *testing.T) {
		repos := newMockRepos()
		storage := new(MockProofStorage)
		head := familyHeadFixture(t, tenantID)
		pricing := pricingFixture(t, tenantID, head)

		repos.familyHeadRepo.On("FindByIDForTenantForUpdate", mock.Anything, tenantID, head.ID).Return(head, nil)
		repos.installmentRepo.On("FindLatest", mock.Anything, tenantID, head.ID).Return(nil, shared.ErrNotFound)
		repos.pricingRepo.On("FindByFamilyHead", mock.Anything, tenantID, head.ID).Return(pricing, nil)
		repos.installmentRepo.On("Create", mock.Anything, mock.AnythingOfType("*payment.Installment")).Return(nil)

		inst, err := NewPaymentService(repos.scope(), storage).RecordPayment(ctx, RecordPaymentRequest{
			TenantID:     tenantID,
			FamilyHeadID: head.ID,
			Advance:      decimal.NewFromInt(100000),
			Mode:         payment.ModeUPI,
		})

		require.NoError(t, err)
		assert.True(t, inst.Balance.Equal(decimal.NewFromInt(152250)), "balance was %s", inst.Balance)
		assert.Equal(t, payment.InstallmentPending, inst.Status)
	})

	t.Run("the family-head row is taken with a write lock", func(t *testing.T) {
		repos := newMockRepos()
		storage := new(MockProofStorage)
		head := familyHeadFixture(t, tenantID)
		pricing := pricingFixture(t, tenantID, head)

		repos.familyHeadRepo.On("FindByIDForTenantForUpdate", mock.Anything, tenantID, head.ID).Return(head, nil)
		repos.installmentRepo.On("FindLatest", mock.Anything, tenantID, head.ID).Return(nil, shared.ErrNotFound)
		repos.pricingRepo.On("FindByFamilyHead", mock.Anything, tenantID, head.ID).Return(pricing, nil)
		repos.installmentRepo.On("Create", mock.Anything, mock.AnythingOfType("*payment.Installment")).Return(nil)

		_, err := NewPaymentService(repos.scope(), storage).RecordPayment(ctx, RecordPaymentRequest{
			TenantID:     tenantID,
			FamilyHeadID: head.ID,
			Advance:      decimal.NewFromInt(100000),
			Mode:         payment.ModeUPI,
		})

		require.NoError(t, err)
		repos.familyHeadRepo.AssertCalled(t, "FindByIDForTenantForUpdate", mock.Anything, tenantID, head.ID)
		repos.familyHeadRepo.AssertNotCalled(t, "FindByIDForTenant", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("second submission sees the first installment, not the grand total", func(t *testing.T) {
		repos := newMockRepos()
		storage := new(MockProofStorage)
		head := familyHeadFixture(t, tenantID)
		pricing := pricingFixture(t, tenantID, head)
		svc := NewPaymentService(repos.scope(), storage)

		repos.familyHeadRepo.On("FindByIDForTenantForUpdate", mock.Anything, tenantID, head.ID).Return(head, nil)
		repos.installmentRepo.On("FindLatest", mock.Anything, tenantID, head.ID).Return(nil, shared.ErrNotFound).Once()
		repos.pricingRepo.On("FindByFamilyHead", mock.Anything, tenantID, head.ID).Return(pricing, nil)
		repos.installmentRepo.On("Create", mock.Anything, mock.AnythingOfType("*payment.Installment")).Return(nil)

		first, err := svc.RecordPayment(ctx, RecordPaymentRequest{
			TenantID:     tenantID,
			FamilyHeadID: head.ID,
			Advance:      decimal.NewFromInt(152250),
			Mode:         payment.ModeBankTransfer,
		})
		require.NoError(t, err)
		assert.True(t, first.Balance.Equal(decimal.NewFromInt(100000)))

		repos.installmentRepo.On("FindLatest", mock.Anything, tenantID, head.ID).Return(first, nil).Once()

		_, err = svc.RecordPayment(ctx, RecordPaymentRequest{
			TenantID:     tenantID,
			FamilyHeadID: head.ID,
			Advance:      decimal.NewFromInt(152250),
			Mode:         payment.ModeBankTransfer,
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INSUFFICIENT_BALANCE", domainErr.Code)
	})

	t.Run("later installments chain from the latest row", func(t *testing.T) {
		repos := newMockRepos()
		storage := new(MockProofStorage)
		head := familyHeadFixture(t, tenantID)

		prior, err := payment.NewInstallment(tenantID, head.EnquiryID, head.ID,
			valueobject.NewMoneyINR(decimal.NewFromInt(252250)),
			valueobject.NewMoneyINR(decimal.NewFromInt(100000)),
			payment.ModeUPI, "", "")
		require.NoError(t, err)

		repos.familyHeadRepo.On("FindByIDForTenantForUpdate", mock.Anything, tenantID, head.ID).Return(head, nil)
		repos.installmentRepo.On("FindLatest", mock.Anything, tenantID, head.ID).Return(prior, nil)
		repos.installmentRepo.On("Create", mock.Anything, mock.AnythingOfType("*payment.Installment")).Return(nil)

		inst, err := NewPaymentService(repos.scope(), storage).RecordPayment(ctx, RecordPaymentRequest{
			TenantID:     tenantID,
			FamilyHeadID: head.ID,
			Advance:      decimal.NewFromInt(152250),
			Mode:         payment.ModeBankTransfer,
		})

		require.NoError(t, err)
		assert.True(t, inst.Balance.IsZero())
		assert.True(t, inst.IsSettled())
		repos.pricingRepo.AssertNotCalled(t, "FindByFamilyHead", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("overpayment is rejected with no write", func(t *testing.T) {
		repos := newMockRepos()
		storage := new(MockProofStorage)
		head := familyHeadFixture(t, tenantID)

		prior, err := payment.NewInstallment(tenantID, head.EnquiryID, head.ID,
			valueobject.NewMoneyINR(decimal.NewFromInt(252250)),
			valueobject.NewMoneyINR(decimal.NewFromInt(100000)),
			payment.ModeUPI, "", "")
		require.NoError(t, err)

		repos.familyHeadRepo.On("FindByIDForTenantForUpdate", mock.Anything, tenantID, head.ID).Return(head, nil)
		repos.installmentRepo.On("FindLatest", mock.Anything, tenantID, head.ID).Return(prior, nil)

		_, err = NewPaymentService(repos.scope(), storage).RecordPayment(ctx, RecordPaymentRequest{
			TenantID:     tenantID,
			FamilyHeadID: head.ID,
			Advance:      decimal.NewFromInt(160000),
			Mode:         payment.ModeCash,
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INSUFFICIENT_BALANCE", domainErr.Code)
		repos.installmentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("pricing must exist before the first payment", func(t *testing.T) {
		repos := newMockRepos()
		storage := new(MockProofStorage)
		head := familyHeadFixture(t, tenantID)

		repos.familyHeadRepo.On("FindByIDForTenantForUpdate", mock.Anything, tenantID, head.ID).Return(head, nil)
		repos.installmentRepo.On("FindLatest", mock.Anything, tenantID, head.ID).Return(nil, shared.ErrNotFound)
		repos.pricingRepo.On("FindByFamilyHead", mock.Anything, tenantID, head.ID).Return(nil, shared.ErrNotFound)

		_, err := NewPaymentService(repos.scope(), storage).RecordPayment(ctx, RecordPaymentRequest{
			TenantID:     tenantID,
			FamilyHeadID: head.ID,
			Advance:      decimal.NewFromInt(1000),
			Mode:         payment.ModeCash,
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PRICING_REQUIRED", domainErr.Code)
	})

	t.Run("uploads the proof and persists its key", func(t *testing.T) {
		repos := newMockRepos()
		storage := new(MockProofStorage)
		head := familyHeadFixture(t, tenantID)
		pricing := pricingFixture(t, tenantID, head)

		storage.On("Upload", mock.Anything, mock.AnythingOfType("string"), []byte("img-bytes"), "image/jpeg").Return(nil)
		repos.familyHeadRepo.On("FindByIDForTenantForUpdate", mock.Anything, tenantID, head.ID).Return(head, nil)
		repos.installmentRepo.On("FindLatest", mock.Anything, tenantID, head.ID).Return(nil, shared.ErrNotFound)
		repos.pricingRepo.On("FindByFamilyHead", mock.Anything, tenantID, head.ID).Return(pricing, nil)
		repos.installmentRepo.On("Create", mock.Anything, mock.AnythingOfType("*payment.Installment")).Return(nil)

		inst, err := NewPaymentService(repos.scope(), storage).RecordPayment(ctx, RecordPaymentRequest{
			TenantID:     tenantID,
			FamilyHeadID: head.ID,
			Advance:      decimal.NewFromInt(50000),
			Mode:         payment.ModeUPI,
			Proof: &ProofUpload{
				FileName:    "upi-screenshot.jpg",
				ContentType: "image/jpeg",
				Data:        []byte("img-bytes"),
			},
		})

		require.NoError(t, err)
		assert.NotEmpty(t, inst.ProofPath)
		assert.Contains(t, inst.ProofPath, ".jpg")
		storage.AssertExpectations(t)
	})
}

func TestPaymentService_ConfirmPayment(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	repos := newMockRepos()
	storage := new(MockProofStorage)

	inst, err := payment.NewInstallment(tenantID, uuid.New(), uuid.New(),
		valueobject.NewMoneyINR(decimal.NewFromInt(100000)),
		valueobject.NewMoneyINR(decimal.NewFromInt(40000)),
		payment.ModeCard, "", "")
	require.NoError(t, err)

	repos.installmentRepo.On("FindByIDForTenant", mock.Anything, tenantID, inst.ID).Return(inst, nil)
	repos.installmentRepo.On("Save", mock.Anything, inst).Return(nil)

	confirmed, err := NewPaymentService(repos.scope(), storage).ConfirmPayment(ctx, tenantID, inst.ID)

	require.NoError(t, err)
	assert.Equal(t, payment.InstallmentConfirmed, confirmed.Status)
}

func TestPaymentService_GetPaymentSummary(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	repos := newMockRepos()
	storage := new(MockProofStorage)
	head := familyHeadFixture(t, tenantID)
	pricing := pricingFixture(t, tenantID, head)

	repos.pricingRepo.On("FindByFamilyHead", mock.Anything, tenantID, head.ID).Return(pricing, nil)
	repos.installmentRepo.On("SumAdvances", mock.Anything, tenantID, head.ID).Return(decimal.NewFromInt(100000), nil)

	summary, err := NewPaymentService(repos.scope(), storage).GetPaymentSummary(ctx, tenantID, head.ID)

	require.NoError(t, err)
	assert.True(t, summary.GrandTotal.Equal(decimal.NewFromInt(252250)))
	assert.True(t, summary.TotalAdvance.Equal(decimal.NewFromInt(100000)))
	assert.True(t, summary.Balance.Equal(decimal.NewFromInt(152250)))
}
