package loyalty

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LedgerRepository provides access to the append-only loyalty ledger
type LedgerRepository interface {
	Create(ctx context.Context, entry *LedgerEntry) error
	// SumWindow returns the signed sum of entries for the user whose
	// created_at falls within the trailing window ending at asOf.
	SumWindow(ctx context.Context, tenantID, userID uuid.UUID, asOf time.Time) (int64, error)
	FindByUser(ctx context.Context, tenantID, userID uuid.UUID, page, pageSize int) ([]LedgerEntry, int64, error)
	// FindCreditsByEnquiry returns credit entries attributed to the enquiry.
	FindCreditsByEnquiry(ctx context.Context, tenantID, enquiryID uuid.UUID) ([]LedgerEntry, error)
	// ExistsReversalForEnquiry reports whether a cancellation reversal has
	// already been posted for the enquiry; used to keep cancellation
	// idempotent.
	ExistsReversalForEnquiry(ctx context.Context, tenantID, enquiryID uuid.UUID) (bool, error)
	// CountActiveReferrals is the derived referral aggregate: the number
	// of distinct bookings that credited this referrer and were not
	// reversed by a cancellation.
	CountActiveReferrals(ctx context.Context, tenantID, referrerID uuid.UUID) (int64, error)
}
