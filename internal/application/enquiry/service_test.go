package enquiry

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	loyaltyapp "github.com/travelcrm/backend/internal/application/loyalty"
	"github.com/travelcrm/backend/internal/domain/booking"
	"github.com/travelcrm/backend/internal/domain/enquiry"
	"github.com/travelcrm/backend/internal/domain/identity"
	"github.com/travelcrm/backend/internal/domain/loyalty"
	"github.com/travelcrm/backend/internal/domain/shared"
)

func newService(r *mockRepos) *Service {
	return NewService(
		r.scope(), r.enquiryRepo, r.followUpRepo, r.familyHeadRepo,
		new(MockInstallmentRepository), loyaltyapp.NoOpBalanceCache{},
		PointsPolicy{SelfBookingPoints: 500, ReferralPoints: 250},
	)
}

func createRequest(tenantID uuid.UUID, tourID uuid.UUID) CreateEnquiryRequest {
	return CreateEnquiryRequest{
		TenantID:   tenantID,
		Variant:    enquiry.TourVariantGroup,
		TourID:     tourID,
		GuestName:  "Meera Iyer",
		GuestPhone: "+91-9800000010",
		AdultCount: 2,
		ChildCount: 1,
		AssignedTo: uuid.New(),
		CreatedBy:  uuid.New(),
	}
}

func TestService_CreateEnquiry(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	tourID := uuid.New()

	t.Run("allocates a number and saves", func(t *testing.T) {
		repos := newMockRepos()
		repos.tourRepo.On("Exists", mock.Anything, tenantID, tourID).Return(true, nil)
		repos.counterRepo.On("AllocateEnquiryNumber", mock.Anything, tenantID).Return("0007", nil)
		repos.enquiryRepo.On("Save", mock.Anything, mock.AnythingOfType("*enquiry.Enquiry")).Return(nil)

		created, err := newService(repos).CreateEnquiry(ctx, createRequest(tenantID, tourID))

		require.NoError(t, err)
		assert.Equal(t, "0007", created.EnquiryNumber)
		assert.Equal(t, enquiry.ProcessCreated, created.Process)
		repos.counterRepo.AssertExpectations(t)
		repos.enquiryRepo.AssertExpectations(t)
	})

	t.Run("unknown tour consumes no sequence number", func(t *testing.T) {
		repos := newMockRepos()
		repos.tourRepo.On("Exists", mock.Anything, tenantID, tourID).Return(false, nil)

		_, err := newService(repos).CreateEnquiry(ctx, createRequest(tenantID, tourID))

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "TOUR_NOT_FOUND", domainErr.Code)
		repos.counterRepo.AssertNotCalled(t, "AllocateEnquiryNumber", mock.Anything, mock.Anything)
	})

	t.Run("invalid input after allocation rolls back", func(t *testing.T) {
		repos := newMockRepos()
		repos.tourRepo.On("Exists", mock.Anything, tenantID, tourID).Return(true, nil)
		repos.counterRepo.On("AllocateEnquiryNumber", mock.Anything, tenantID).Return("0008", nil)

		req := createRequest(tenantID, tourID)
		req.AdultCount = 0
		_, err := newService(repos).CreateEnquiry(ctx, req)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_PAX", domainErr.Code)
		repos.enquiryRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestService_ConfirmEnquiry(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	makeEnquiry := func(t *testing.T) *enquiry.Enquiry {
		t.Helper()
		e, err := enquiry.NewEnquiry(tenantID, "0010", enquiry.TourVariantGroup, uuid.New(),
			"Meera Iyer", "+91-9800000010", "", 2, 0, uuid.New(), uuid.New())
		require.NoError(t, err)
		return e
	}

	t.Run("requires a family head", func(t *testing.T) {
		repos := newMockRepos()
		e := makeEnquiry(t)
		repos.enquiryRepo.On("FindByIDForTenant", mock.Anything, tenantID, e.ID).Return(e, nil)
		repos.familyHeadRepo.On("ExistsForEnquiry", mock.Anything, tenantID, e.ID).Return(false, nil)

		_, err := newService(repos).ConfirmEnquiry(ctx, tenantID, e.ID)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "FAMILY_HEAD_REQUIRED", domainErr.Code)
		repos.enquiryRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("posts self-booking and referral credits in the same scope", func(t *testing.T) {
		repos := newMockRepos()
		e := makeEnquiry(t)
		referrerID := uuid.New()

		guestUser, err := identity.NewUser(tenantID, "Meera Iyer", "+91-9800000010", "")
		require.NoError(t, err)
		guestUser.WithReferrer(referrerID)

		guest, err := booking.NewGuestDetail(tenantID, uuid.New(), "Meera Iyer", 34, "F")
		require.NoError(t, err)
		guest.LinkUser(guestUser.ID)

		repos.enquiryRepo.On("FindByIDForTenant", mock.Anything, tenantID, e.ID).Return(e, nil)
		repos.familyHeadRepo.On("ExistsForEnquiry", mock.Anything, tenantID, e.ID).Return(true, nil)
		repos.enquiryRepo.On("SaveWithLock", mock.Anything, e).Return(nil)
		repos.guestRepo.On("FindByEnquiry", mock.Anything, tenantID, e.ID).Return([]booking.GuestDetail{*guest}, nil)
		repos.userRepo.On("FindByIDForTenant", mock.Anything, tenantID, guestUser.ID).Return(guestUser, nil)
		repos.ledgerRepo.On("Create", mock.Anything, mock.AnythingOfType("*loyalty.LedgerEntry")).Return(nil).Twice()

		confirmed, err := newService(repos).ConfirmEnquiry(ctx, tenantID, e.ID)

		require.NoError(t, err)
		assert.True(t, confirmed.IsConfirmed())
		repos.ledgerRepo.AssertNumberOfCalls(t, "Create", 2)

		posted := make(map[loyalty.Reason]uuid.UUID)
		for _, call := range repos.ledgerRepo.Calls {
			entry := call.Arguments.Get(1).(*loyalty.LedgerEntry)
			posted[entry.Reason] = entry.UserID
			assert.Equal(t, loyalty.EntryCredit, entry.EntryType)
			require.NotNil(t, entry.EnquiryID)
			assert.Equal(t, e.ID, *entry.EnquiryID)
		}
		assert.Equal(t, guestUser.ID, posted[loyalty.ReasonSelfBooking])
		assert.Equal(t, referrerID, posted[loyalty.ReasonReferral])
	})

	t.Run("unlinked guests earn nothing", func(t *testing.T) {
		repos := newMockRepos()
		e := makeEnquiry(t)

		guest, err := booking.NewGuestDetail(tenantID, uuid.New(), "Walk-in Guest", 40, "M")
		require.NoError(t, err)

		repos.enquiryRepo.On("FindByIDForTenant", mock.Anything, tenantID, e.ID).Return(e, nil)
		repos.familyHeadRepo.On("ExistsForEnquiry", mock.Anything, tenantID, e.ID).Return(true, nil)
		repos.enquiryRepo.On("SaveWithLock", mock.Anything, e).Return(nil)
		repos.guestRepo.On("FindByEnquiry", mock.Anything, tenantID, e.ID).Return([]booking.GuestDetail{*guest}, nil)

		_, err = newService(repos).ConfirmEnquiry(ctx, tenantID, e.ID)

		require.NoError(t, err)
		repos.ledgerRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestService_LogFollowUp(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("logs the call and reschedules", func(t *testing.T) {
		repos := newMockRepos()
		e, err := enquiry.NewEnquiry(tenantID, "0011", enquiry.TourVariantCustom, uuid.New(),
			"Arjun Rao", "+91-9800000011", "", 1, 0, uuid.New(), uuid.New())
		require.NoError(t, err)

		next := time.Now().Add(72 * time.Hour)
		repos.enquiryRepo.On("FindByIDForTenant", mock.Anything, tenantID, e.ID).Return(e, nil)
		repos.enquiryRepo.On("Save", mock.Anything, e).Return(nil)
		repos.followUpRepo.On("Create", mock.Anything, mock.AnythingOfType("*enquiry.FollowUpCall")).Return(nil)

		call, err := newService(repos).LogFollowUp(ctx, LogFollowUpRequest{
			TenantID:         tenantID,
			EnquiryID:        e.ID,
			CalledBy:         uuid.New(),
			Notes:            "shared itinerary options",
			NextFollowUpDate: &next,
			NextFollowUpTime: "11:00",
		})

		require.NoError(t, err)
		assert.Equal(t, "shared itinerary options", call.Notes)
		require.NotNil(t, e.NextFollowUpDate)
		assert.Equal(t, next, *e.NextFollowUpDate)
		assert.Equal(t, enquiry.ProcessCreated, e.Process)
	})
}

func TestService_CompletionStatus(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	e, err := enquiry.NewEnquiry(tenantID, "0012", enquiry.TourVariantCustom, uuid.New(),
		"Nisha Verma", "+91-9800000012", "", 2, 0, uuid.New(), uuid.New())
	require.NoError(t, err)
	require.NoError(t, e.Confirm())

	repos := newMockRepos()
	installmentRepo := new(MockInstallmentRepository)
	repos.enquiryRepo.On("FindByIDForTenant", mock.Anything, tenantID, e.ID).Return(e, nil)
	repos.followUpRepo.On("ExistsForEnquiry", mock.Anything, tenantID, e.ID).Return(true, nil)
	repos.familyHeadRepo.On("ExistsForEnquiry", mock.Anything, tenantID, e.ID).Return(true, nil)
	installmentRepo.On("AllSettledForEnquiry", mock.Anything, tenantID, e.ID).Return(true, nil)

	svc := NewService(repos.scope(), repos.enquiryRepo, repos.followUpRepo, repos.familyHeadRepo,
		installmentRepo, loyaltyapp.NoOpBalanceCache{}, PointsPolicy{})

	status, err := svc.CompletionStatus(ctx, tenantID, e.ID)

	require.NoError(t, err)
	assert.Equal(t, enquiry.CompletionBooked, status)
}
