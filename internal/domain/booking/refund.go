package booking

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/travelcrm/backend/internal/domain/shared"
)

// RefundSettlement is how a cancelled guest's money comes back
type RefundSettlement string

const (
	SettlementRefund     RefundSettlement = "REFUND"
	SettlementCreditNote RefundSettlement = "CREDIT_NOTE"
)

// IsValid checks if the settlement choice is valid
func (s RefundSettlement) IsValid() bool {
	return s == SettlementRefund || s == SettlementCreditNote
}

// GuestRefund captures the per-guest cancellation outcome for custom tours:
// what was charged for cancelling and what flows back, either as a money
// refund or a credit note.
type GuestRefund struct {
	shared.BaseEntity
	TenantID            uuid.UUID        `json:"tenant_id"`
	EnquiryID           uuid.UUID        `json:"enquiry_id"`
	GuestDetailID       uuid.UUID        `json:"guest_detail_id"`
	CancellationCharges decimal.Decimal  `json:"cancellation_charges"`
	RefundAmount        decimal.Decimal  `json:"refund_amount"`
	Settlement          RefundSettlement `json:"settlement"`
	Reason              string           `json:"reason"`
}

// NewGuestRefund creates a per-guest cancellation refund record
func NewGuestRefund(
	tenantID, enquiryID, guestDetailID uuid.UUID,
	cancellationCharges, refundAmount decimal.Decimal,
	settlement RefundSettlement,
	reason string,
) (*GuestRefund, error) {
	if enquiryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ENQUIRY", "Enquiry ID cannot be empty")
	}
	if guestDetailID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_GUEST", "Guest detail ID cannot be empty")
	}
	if cancellationCharges.IsNegative() || refundAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Charges and refund amount cannot be negative")
	}
	if !settlement.IsValid() {
		return nil, shared.NewDomainError("INVALID_SETTLEMENT", "Settlement must be REFUND or CREDIT_NOTE")
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Cancellation reason is required")
	}

	return &GuestRefund{
		BaseEntity:          shared.NewBaseEntity(),
		TenantID:            tenantID,
		EnquiryID:           enquiryID,
		GuestDetailID:       guestDetailID,
		CancellationCharges: cancellationCharges,
		RefundAmount:        refundAmount,
		Settlement:          settlement,
		Reason:              reason,
	}, nil
}
