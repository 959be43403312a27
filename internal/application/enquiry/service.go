package enquiry

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	loyaltyapp "github.com/travelcrm/backend/internal/application/loyalty"
	"github.com/travelcrm/backend/internal/domain/booking"
	"github.com/travelcrm/backend/internal/domain/enquiry"
	"github.com/travelcrm/backend/internal/domain/loyalty"
	"github.com/travelcrm/backend/internal/domain/payment"
	"github.com/travelcrm/backend/internal/domain/shared"
	"github.com/travelcrm/backend/internal/infrastructure/telemetry"
)

// PointsPolicy fixes how many points a confirmation is worth. Values come
// from configuration; zero disables the corresponding credit.
type PointsPolicy struct {
	SelfBookingPoints int64
	ReferralPoints    int64
}

// Service orchestrates the enquiry lifecycle: creation with sequential
// number allocation, follow-up logging, confirmation with loyalty accrual,
// and read-side views. All multi-write operations run inside a single
// transaction scope.
type Service struct {
	scope           TransactionScope
	enquiryRepo     enquiry.Repository
	followUpRepo    enquiry.FollowUpRepository
	familyHeadRepo  booking.FamilyHeadRepository
	installmentRepo payment.InstallmentRepository
	balanceCache    loyaltyapp.BalanceCache
	points          PointsPolicy
}

// NewService creates a new enquiry lifecycle service
func NewService(
	scope TransactionScope,
	enquiryRepo enquiry.Repository,
	followUpRepo enquiry.FollowUpRepository,
	familyHeadRepo booking.FamilyHeadRepository,
	installmentRepo payment.InstallmentRepository,
	balanceCache loyaltyapp.BalanceCache,
	points PointsPolicy,
) *Service {
	return &Service{
		scope:           scope,
		enquiryRepo:     enquiryRepo,
		followUpRepo:    followUpRepo,
		familyHeadRepo:  familyHeadRepo,
		installmentRepo: installmentRepo,
		balanceCache:    balanceCache,
		points:          points,
	}
}

// CreateEnquiryRequest represents a request to open a new enquiry
type CreateEnquiryRequest struct {
	TenantID   uuid.UUID
	Variant    enquiry.TourVariant
	TourID     uuid.UUID
	GuestName  string
	GuestPhone string
	GuestEmail string
	AdultCount int
	ChildCount int
	AssignedTo uuid.UUID
	CreatedBy  uuid.UUID
}

// CreateEnquiry opens a new enquiry. The tour is checked before a number is
// allocated, so a lookup miss never consumes a sequence value; allocation,
// formatting and the insert all commit or roll back together.
func (s *Service) CreateEnquiry(ctx context.Context, req CreateEnquiryRequest) (*enquiry.Enquiry, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "enquiry", "create_enquiry")
	defer span.End()

	var created *enquiry.Enquiry
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		exists, err := repos.TourRepo().Exists(ctx, req.TenantID, req.TourID)
		if err != nil {
			return fmt.Errorf("failed to check tour: %w", err)
		}
		if !exists {
			return shared.NewDomainError("TOUR_NOT_FOUND", "Tour does not exist")
		}

		number, err := repos.CounterRepo().AllocateEnquiryNumber(ctx, req.TenantID)
		if err != nil {
			return fmt.Errorf("failed to allocate enquiry number: %w", err)
		}

		e, err := enquiry.NewEnquiry(
			req.TenantID, number, req.Variant, req.TourID,
			req.GuestName, req.GuestPhone, req.GuestEmail,
			req.AdultCount, req.ChildCount, req.AssignedTo, req.CreatedBy,
		)
		if err != nil {
			return err
		}

		if err := repos.EnquiryRepo().Save(ctx, e); err != nil {
			return fmt.Errorf("failed to save enquiry: %w", err)
		}
		created = e
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttribute(span, "enquiry_number", created.EnquiryNumber)
	return created, nil
}

// LogFollowUpRequest represents a follow-up call being logged
type LogFollowUpRequest struct {
	TenantID         uuid.UUID
	EnquiryID        uuid.UUID
	CalledBy         uuid.UUID
	Notes            string
	NextFollowUpDate *time.Time
	NextFollowUpTime string
}

// LogFollowUp appends a call-log entry and, when a next follow-up is given,
// reschedules the enquiry. The process state is never touched.
func (s *Service) LogFollowUp(ctx context.Context, req LogFollowUpRequest) (*enquiry.FollowUpCall, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "enquiry", "log_follow_up")
	defer span.End()

	var logged *enquiry.FollowUpCall
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		e, err := repos.EnquiryRepo().FindByIDForTenant(ctx, req.TenantID, req.EnquiryID)
		if err != nil {
			return err
		}

		call, err := enquiry.NewFollowUpCall(req.TenantID, req.EnquiryID, req.CalledBy, req.Notes)
		if err != nil {
			return err
		}

		if req.NextFollowUpDate != nil {
			call.WithNextFollowUp(*req.NextFollowUpDate, req.NextFollowUpTime)
			if err := e.RescheduleFollowUp(*req.NextFollowUpDate, req.NextFollowUpTime); err != nil {
				return err
			}
			if err := repos.EnquiryRepo().Save(ctx, e); err != nil {
				return fmt.Errorf("failed to reschedule follow-up: %w", err)
			}
		} else if e.IsCancelled() {
			return shared.NewDomainError("INVALID_STATE", "Cannot log follow-up on a cancelled enquiry")
		}

		if err := repos.FollowUpRepo().Create(ctx, call); err != nil {
			return fmt.Errorf("failed to save follow-up call: %w", err)
		}
		logged = call
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return logged, nil
}

// ListFollowUps returns the call history for an enquiry, newest first.
func (s *Service) ListFollowUps(ctx context.Context, tenantID, enquiryID uuid.UUID) ([]enquiry.FollowUpCall, error) {
	return s.followUpRepo.FindByEnquiry(ctx, tenantID, enquiryID)
}

// ConfirmEnquiry transitions the enquiry to Confirmed and posts loyalty
// credits in the same transaction: a self-booking credit to every
// user-linked guest, and a referral credit to each such user's referrer.
func (s *Service) ConfirmEnquiry(ctx context.Context, tenantID, enquiryID uuid.UUID) (*enquiry.Enquiry, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "enquiry", "confirm_enquiry")
	defer span.End()

	var confirmed *enquiry.Enquiry
	var touchedUsers []uuid.UUID
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		e, err := repos.EnquiryRepo().FindByIDForTenant(ctx, tenantID, enquiryID)
		if err != nil {
			return err
		}

		hasHead, err := repos.FamilyHeadRepo().ExistsForEnquiry(ctx, tenantID, enquiryID)
		if err != nil {
			return fmt.Errorf("failed to check family head: %w", err)
		}
		if !hasHead {
			return shared.NewDomainError("FAMILY_HEAD_REQUIRED",
				fmt.Sprintf("Enquiry %s cannot be confirmed without a registered family head", e.EnquiryNumber))
		}

		if err := e.Confirm(); err != nil {
			return err
		}
		if err := repos.EnquiryRepo().SaveWithLock(ctx, e); err != nil {
			return fmt.Errorf("failed to save enquiry: %w", err)
		}

		users, err := s.postConfirmationCredits(ctx, repos, e)
		if err != nil {
			return err
		}
		touchedUsers = users
		confirmed = e
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	for _, userID := range touchedUsers {
		if err := s.balanceCache.Invalidate(ctx, tenantID, userID); err != nil {
			telemetry.RecordError(span, err)
		}
	}
	return confirmed, nil
}

// postConfirmationCredits awards self-booking points to each user-linked
// guest and referral points to their referrers. Returns the users whose
// balances changed.
func (s *Service) postConfirmationCredits(
	ctx context.Context,
	repos TransactionalRepositories,
	e *enquiry.Enquiry,
) ([]uuid.UUID, error) {
	guests, err := repos.GuestRepo().FindByEnquiry(ctx, e.TenantID, e.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load guests: %w", err)
	}

	var touched []uuid.UUID
	for _, g := range guests {
		if g.GuestUserID == nil {
			continue
		}
		userID := *g.GuestUserID

		if s.points.SelfBookingPoints > 0 {
			credit, err := loyalty.NewCreditEntry(e.TenantID, userID, s.points.SelfBookingPoints,
				loyalty.ReasonSelfBooking, fmt.Sprintf("Booking confirmed for enquiry %s", e.EnquiryNumber))
			if err != nil {
				return nil, err
			}
			if err := repos.LedgerRepo().Create(ctx, credit.WithEnquiry(e.ID)); err != nil {
				return nil, fmt.Errorf("failed to post self-booking credit: %w", err)
			}
			touched = append(touched, userID)
		}

		if s.points.ReferralPoints <= 0 {
			continue
		}
		user, err := repos.UserRepo().FindByIDForTenant(ctx, e.TenantID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load guest user: %w", err)
		}
		if user.ReferredBy == nil {
			continue
		}
		referral, err := loyalty.NewCreditEntry(e.TenantID, *user.ReferredBy, s.points.ReferralPoints,
			loyalty.ReasonReferral, fmt.Sprintf("Referred guest %s booked enquiry %s", user.Name, e.EnquiryNumber))
		if err != nil {
			return nil, err
		}
		if err := repos.LedgerRepo().Create(ctx, referral.WithEnquiry(e.ID)); err != nil {
			return nil, fmt.Errorf("failed to post referral credit: %w", err)
		}
		touched = append(touched, *user.ReferredBy)
	}
	return touched, nil
}

// GetEnquiry returns one enquiry for the tenant.
func (s *Service) GetEnquiry(ctx context.Context, tenantID, enquiryID uuid.UUID) (*enquiry.Enquiry, error) {
	return s.enquiryRepo.FindByIDForTenant(ctx, tenantID, enquiryID)
}

// ListEnquiries returns the filtered, paginated enquiry list.
func (s *Service) ListEnquiries(ctx context.Context, tenantID uuid.UUID, filter enquiry.Filter) (shared.Paginated[enquiry.Enquiry], error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	items, err := s.enquiryRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[enquiry.Enquiry]{}, err
	}
	total, err := s.enquiryRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[enquiry.Enquiry]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// CompletionStatus derives the enquiry's progress from live signals; the
// value is computed on every read and never stored.
func (s *Service) CompletionStatus(ctx context.Context, tenantID, enquiryID uuid.UUID) (enquiry.CompletionStatus, error) {
	e, err := s.enquiryRepo.FindByIDForTenant(ctx, tenantID, enquiryID)
	if err != nil {
		return "", err
	}

	hasFollowUp, err := s.followUpRepo.ExistsForEnquiry(ctx, tenantID, enquiryID)
	if err != nil {
		return "", fmt.Errorf("failed to check follow-ups: %w", err)
	}

	hasHead, err := s.familyHeadRepo.ExistsForEnquiry(ctx, tenantID, enquiryID)
	if err != nil {
		return "", fmt.Errorf("failed to check family head: %w", err)
	}

	allSettled := false
	if e.Variant == enquiry.TourVariantCustom {
		allSettled, err = s.installmentRepo.AllSettledForEnquiry(ctx, tenantID, enquiryID)
		if err != nil {
			return "", fmt.Errorf("failed to check balances: %w", err)
		}
	}

	return enquiry.DeriveCompletionStatus(enquiry.StatusSnapshot{
		Variant:            e.Variant,
		Process:            e.Process,
		HasFollowUp:        hasFollowUp,
		HasFamilyHead:      hasHead,
		AllBalancesSettled: allSettled,
	}), nil
}
