package enquiry

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	loyaltyapp "github.com/travelcrm/backend/internal/application/loyalty"
	"github.com/travelcrm/backend/internal/domain/booking"
	"github.com/travelcrm/backend/internal/domain/enquiry"
	"github.com/travelcrm/backend/internal/domain/loyalty"
	"github.com/travelcrm/backend/internal/infrastructure/telemetry"
)

// CancellationService closes enquiries. One transaction flips the state,
// posts compensating loyalty debits mirroring the credits attributed to the
// enquiry, and records per-guest refund outcomes for custom tours.
type CancellationService struct {
	scope        TransactionScope
	balanceCache loyaltyapp.BalanceCache
}

// NewCancellationService creates a new cancellation service
func NewCancellationService(scope TransactionScope, balanceCache loyaltyapp.BalanceCache) *CancellationService {
	return &CancellationService{scope: scope, balanceCache: balanceCache}
}

// GuestRefundInput is the per-guest settlement captured on custom-tour cancellation
type GuestRefundInput struct {
	GuestDetailID       uuid.UUID
	CancellationCharges decimal.Decimal
	RefundAmount        decimal.Decimal
	Settlement          booking.RefundSettlement
}

// CancelEnquiryRequest represents a cancellation
type CancelEnquiryRequest struct {
	TenantID  uuid.UUID
	EnquiryID uuid.UUID
	Reason    string
	Refunds   []GuestRefundInput
}

// CancelEnquiry cancels an enquiry. Calling it again on an already-cancelled
// enquiry succeeds without posting anything: the reversal-entry check keeps
// the loyalty debit from ever being applied twice.
func (s *CancellationService) CancelEnquiry(ctx context.Context, req CancelEnquiryRequest) (*enquiry.Enquiry, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "enquiry", "cancel_enquiry")
	defer span.End()

	var cancelled *enquiry.Enquiry
	var touchedUsers []uuid.UUID
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		e, err := repos.EnquiryRepo().FindByIDForTenant(ctx, req.TenantID, req.EnquiryID)
		if err != nil {
			return err
		}

		alreadyCancelled := e.IsCancelled()
		if err := e.Cancel(req.Reason); err != nil {
			return err
		}
		if !alreadyCancelled {
			if err := repos.EnquiryRepo().SaveWithLock(ctx, e); err != nil {
				return fmt.Errorf("failed to save enquiry: %w", err)
			}
		}

		users, err := s.reverseLoyaltyCredits(ctx, repos, e)
		if err != nil {
			return err
		}
		touchedUsers = users

		if e.Variant == enquiry.TourVariantCustom && !alreadyCancelled {
			if err := s.recordGuestRefunds(ctx, repos, e, req.Refunds); err != nil {
				return err
			}
		}

		cancelled = e
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	for _, userID := range touchedUsers {
		if err := s.balanceCache.Invalidate(ctx, req.TenantID, userID); err != nil {
			telemetry.RecordError(span, err)
		}
	}
	return cancelled, nil
}

// reverseLoyaltyCredits posts one debit per credit attributed to the
// enquiry, tagged with the closure reason. A reversal that already exists
// means a previous cancellation got here first; nothing is posted again.
func (s *CancellationService) reverseLoyaltyCredits(
	ctx context.Context,
	repos TransactionalRepositories,
	e *enquiry.Enquiry,
) ([]uuid.UUID, error) {
	reversed, err := repos.LedgerRepo().ExistsReversalForEnquiry(ctx, e.TenantID, e.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check reversal: %w", err)
	}
	if reversed {
		return nil, nil
	}

	credits, err := repos.LedgerRepo().FindCreditsByEnquiry(ctx, e.TenantID, e.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load enquiry credits: %w", err)
	}

	var touched []uuid.UUID
	for _, credit := range credits {
		debit, err := loyalty.NewDebitEntry(e.TenantID, credit.UserID, credit.Points,
			loyalty.ReasonCancellationReversal,
			fmt.Sprintf("Enquiry %s cancelled: %s", e.EnquiryNumber, e.ClosureReason))
		if err != nil {
			return nil, err
		}
		if err := repos.LedgerRepo().Create(ctx, debit.WithEnquiry(e.ID)); err != nil {
			return nil, fmt.Errorf("failed to post reversal debit: %w", err)
		}
		touched = append(touched, credit.UserID)
	}
	return touched, nil
}

func (s *CancellationService) recordGuestRefunds(
	ctx context.Context,
	repos TransactionalRepositories,
	e *enquiry.Enquiry,
	inputs []GuestRefundInput,
) error {
	for _, in := range inputs {
		refund, err := booking.NewGuestRefund(e.TenantID, e.ID, in.GuestDetailID,
			in.CancellationCharges, in.RefundAmount, in.Settlement, e.ClosureReason)
		if err != nil {
			return err
		}
		if err := repos.RefundRepo().Create(ctx, refund); err != nil {
			return fmt.Errorf("failed to save guest refund: %w", err)
		}
	}
	return nil
}

// ListGuestRefunds returns the refund records captured for an enquiry.
func (s *CancellationService) ListGuestRefunds(ctx context.Context, tenantID, enquiryID uuid.UUID) ([]booking.GuestRefund, error) {
	var refunds []booking.GuestRefund
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		refunds, err = repos.RefundRepo().FindByEnquiry(ctx, tenantID, enquiryID)
		return err
	})
	return refunds, err
}
