package payment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/travelcrm/backend/internal/domain/shared"
	"github.com/travelcrm/backend/internal/domain/shared/valueobject"
)

// InstallmentStatus represents the confirmation state of an installment.
// The numeric codes are part of the persisted contract.
type InstallmentStatus int

const (
	InstallmentPending   InstallmentStatus = 0
	InstallmentConfirmed InstallmentStatus = 1
)

// IsValid checks if the status is a valid InstallmentStatus
func (s InstallmentStatus) IsValid() bool {
	return s == InstallmentPending || s == InstallmentConfirmed
}

// String returns the string representation of InstallmentStatus
func (s InstallmentStatus) String() string {
	if s == InstallmentConfirmed {
		return "confirmed"
	}
	return "pending"
}

// PaymentMode is how the advance was tendered
type PaymentMode string

const (
	ModeCash         PaymentMode = "CASH"
	ModeUPI          PaymentMode = "UPI"
	ModeCard         PaymentMode = "CARD"
	ModeBankTransfer PaymentMode = "BANK_TRANSFER"
	ModeCheque       PaymentMode = "CHEQUE"
)

// IsValid checks if the mode is a valid PaymentMode
func (m PaymentMode) IsValid() bool {
	switch m {
	case ModeCash, ModeUPI, ModeCard, ModeBankTransfer, ModeCheque:
		return true
	}
	return false
}

// Installment is one immutable, append-only payment row against a family
// head's grand total. Balance is fixed at insert time from the prior row's
// balance; history is never rewritten.
type Installment struct {
	shared.TenantAggregateRoot
	EnquiryID     uuid.UUID         `json:"enquiry_id"`
	FamilyHeadID  uuid.UUID         `json:"family_head_id"`
	AdvanceAmount decimal.Decimal   `json:"advance_amount"`
	Balance       decimal.Decimal   `json:"balance"`
	Status        InstallmentStatus `json:"status"`
	Mode          PaymentMode       `json:"mode"`
	ProofPath     string            `json:"proof_path"`
	Remark        string            `json:"remark"`
	ConfirmedAt   *time.Time        `json:"confirmed_at"`
}

// NewInstallment creates a pending installment, deriving the new balance
// from the prior one. An advance that would drive the balance negative is
// rejected outright; it is a guard, not an adjustment.
func NewInstallment(
	tenantID, enquiryID, familyHeadID uuid.UUID,
	priorBalance, advance valueobject.Money,
	mode PaymentMode,
	proofPath, remark string,
) (*Installment, error) {
	if enquiryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ENQUIRY", "Enquiry ID cannot be empty")
	}
	if familyHeadID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_FAMILY_HEAD", "Family head ID cannot be empty")
	}
	if advance.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Advance payment must be positive")
	}
	if !mode.IsValid() {
		return nil, shared.NewDomainError("INVALID_MODE", "Payment mode is not valid")
	}

	newBalance := priorBalance.Amount().Sub(advance.Amount())
	if newBalance.IsNegative() {
		return nil, shared.NewDomainError("INSUFFICIENT_BALANCE",
			fmt.Sprintf("Advance %s exceeds pending balance %s", advance.Amount(), priorBalance.Amount()))
	}

	return &Installment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		EnquiryID:           enquiryID,
		FamilyHeadID:        familyHeadID,
		AdvanceAmount:       advance.Amount(),
		Balance:             newBalance,
		Status:              InstallmentPending,
		Mode:                mode,
		ProofPath:           proofPath,
		Remark:              remark,
	}, nil
}

// Confirm advances a pending installment to confirmed
func (i *Installment) Confirm() error {
	if i.Status == InstallmentConfirmed {
		return shared.NewDomainError("ALREADY_CONFIRMED", "Installment is already confirmed")
	}

	now := time.Now()
	i.Status = InstallmentConfirmed
	i.ConfirmedAt = &now
	i.UpdatedAt = now
	i.IncrementVersion()

	return nil
}

// IsSettled returns true once the balance has reached zero
func (i *Installment) IsSettled() bool {
	return i.Balance.IsZero()
}

// GetBalanceMoney returns the resulting balance as Money
func (i *Installment) GetBalanceMoney() valueobject.Money {
	return valueobject.NewMoneyINR(i.Balance)
}
