package loyalty

import (
	"time"

	"github.com/google/uuid"
	"github.com/travelcrm/backend/internal/domain/shared"
)

// EntryType is the accounting side of a ledger entry. The numeric codes are
// part of the persisted contract.
type EntryType int

const (
	EntryCredit EntryType = 0
	EntryDebit  EntryType = 1
)

// IsValid checks if the entry type is valid
func (t EntryType) IsValid() bool {
	return t == EntryCredit || t == EntryDebit
}

// String returns the string representation of EntryType
func (t EntryType) String() string {
	if t == EntryDebit {
		return "debit"
	}
	return "credit"
}

// Reason is the business cause of a ledger entry
type Reason string

const (
	ReasonSelfBooking          Reason = "SELF_BOOKING"
	ReasonReferral             Reason = "REFERRAL"
	ReasonRedemption           Reason = "REDEMPTION"
	ReasonCancellationReversal Reason = "CANCELLATION_REVERSAL"
)

// IsValid checks if the reason is valid
func (r Reason) IsValid() bool {
	switch r {
	case ReasonSelfBooking, ReasonReferral, ReasonRedemption, ReasonCancellationReversal:
		return true
	}
	return false
}

// WindowDays is the trailing window a loyalty balance is computed over.
const WindowDays = 365

// WindowStart returns the open lower bound of the balance window ending at asOf.
func WindowStart(asOf time.Time) time.Time {
	return asOf.AddDate(0, 0, -WindowDays)
}

// LedgerEntry is one signed row in the append-only loyalty ledger. Balances
// are always recomputed from entries inside the trailing window; nothing is
// ever mutated or deleted, reversals post compensating debits instead.
type LedgerEntry struct {
	shared.BaseEntity
	TenantID    uuid.UUID  `json:"tenant_id"`
	UserID      uuid.UUID  `json:"user_id"`
	Points      int64      `json:"points"` // magnitude, always positive
	EntryType   EntryType  `json:"entry_type"`
	Reason      Reason     `json:"reason"`
	EnquiryID   *uuid.UUID `json:"enquiry_id"`
	Description string     `json:"description"`
}

func newLedgerEntry(tenantID, userID uuid.UUID, points int64, entryType EntryType, reason Reason, description string) (*LedgerEntry, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if points <= 0 {
		return nil, shared.NewDomainError("INVALID_POINTS", "Points must be positive")
	}
	if !reason.IsValid() {
		return nil, shared.NewDomainError("INVALID_REASON", "Ledger reason is not valid")
	}

	return &LedgerEntry{
		BaseEntity:  shared.NewBaseEntity(),
		TenantID:    tenantID,
		UserID:      userID,
		Points:      points,
		EntryType:   entryType,
		Reason:      reason,
		Description: description,
	}, nil
}

// NewCreditEntry creates a credit (points earned)
func NewCreditEntry(tenantID, userID uuid.UUID, points int64, reason Reason, description string) (*LedgerEntry, error) {
	return newLedgerEntry(tenantID, userID, points, EntryCredit, reason, description)
}

// NewDebitEntry creates a debit (points spent or reversed)
func NewDebitEntry(tenantID, userID uuid.UUID, points int64, reason Reason, description string) (*LedgerEntry, error) {
	return newLedgerEntry(tenantID, userID, points, EntryDebit, reason, description)
}

// WithEnquiry records the enquiry this entry is attributed to
func (e *LedgerEntry) WithEnquiry(enquiryID uuid.UUID) *LedgerEntry {
	if enquiryID != uuid.Nil {
		e.EnquiryID = &enquiryID
	}
	return e
}

// Signed returns the entry's contribution to a balance
func (e *LedgerEntry) Signed() int64 {
	if e.EntryType == EntryDebit {
		return -e.Points
	}
	return e.Points
}
