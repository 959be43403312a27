package enquiry

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/travelcrm/backend/internal/domain/shared"
)

// TourVariant distinguishes group departures from tailor-made itineraries
type TourVariant string

const (
	TourVariantGroup  TourVariant = "GROUP"
	TourVariantCustom TourVariant = "CUSTOM"
)

// IsValid checks if the variant is a valid TourVariant
func (v TourVariant) IsValid() bool {
	return v == TourVariantGroup || v == TourVariantCustom
}

// String returns the string representation of TourVariant
func (v TourVariant) String() string {
	return string(v)
}

// ProcessState represents the lifecycle state of an enquiry.
// The numeric codes are part of the persisted contract.
type ProcessState int

const (
	ProcessCreated   ProcessState = 1
	ProcessConfirmed ProcessState = 2
	ProcessCancelled ProcessState = 3
)

// IsValid checks if the state is a valid ProcessState
func (s ProcessState) IsValid() bool {
	switch s {
	case ProcessCreated, ProcessConfirmed, ProcessCancelled:
		return true
	}
	return false
}

// IsTerminal returns true if no further transitions are possible
func (s ProcessState) IsTerminal() bool {
	return s == ProcessCancelled
}

// String returns the string representation of ProcessState
func (s ProcessState) String() string {
	switch s {
	case ProcessCreated:
		return "created"
	case ProcessConfirmed:
		return "confirmed"
	case ProcessCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Enquiry is a prospective booking (group or custom tour) progressing
// through follow-up to confirmation or cancellation. It is the aggregate
// root for the booking lifecycle; rows are state-flagged, never deleted.
type Enquiry struct {
	shared.TenantAggregateRoot
	EnquiryNumber    string       `json:"enquiry_number"` // zero-padded, shared sequence across variants
	Variant          TourVariant  `json:"variant"`
	TourID           uuid.UUID    `json:"tour_id"`
	GuestName        string       `json:"guest_name"`
	GuestPhone       string       `json:"guest_phone"`
	GuestEmail       string       `json:"guest_email"`
	AdultCount       int          `json:"adult_count"`
	ChildCount       int          `json:"child_count"`
	Process          ProcessState `json:"process"`
	AssignedTo       uuid.UUID    `json:"assigned_to"`
	NextFollowUpDate *time.Time   `json:"next_follow_up_date"`
	NextFollowUpTime string       `json:"next_follow_up_time"`
	ConfirmedAt      *time.Time   `json:"confirmed_at"`
	CancelledAt      *time.Time   `json:"cancelled_at"`
	ClosureReason    string       `json:"closure_reason"`
}

// NewEnquiry creates a new enquiry in the Created state
func NewEnquiry(
	tenantID uuid.UUID,
	enquiryNumber string,
	variant TourVariant,
	tourID uuid.UUID,
	guestName, guestPhone, guestEmail string,
	adultCount, childCount int,
	assignedTo uuid.UUID,
	createdBy uuid.UUID,
) (*Enquiry, error) {
	if enquiryNumber == "" {
		return nil, shared.NewDomainError("INVALID_ENQUIRY_NUMBER", "Enquiry number cannot be empty")
	}
	if !variant.IsValid() {
		return nil, shared.NewDomainError("INVALID_VARIANT", "Tour variant must be GROUP or CUSTOM")
	}
	if tourID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TOUR", "Tour ID cannot be empty")
	}
	if guestName == "" {
		return nil, shared.NewDomainError("INVALID_GUEST_NAME", "Guest name cannot be empty")
	}
	if guestPhone == "" {
		return nil, shared.NewDomainError("INVALID_GUEST_PHONE", "Guest phone cannot be empty")
	}
	if adultCount <= 0 {
		return nil, shared.NewDomainError("INVALID_PAX", "At least one adult is required")
	}
	if childCount < 0 {
		return nil, shared.NewDomainError("INVALID_PAX", "Child count cannot be negative")
	}
	if assignedTo == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_AGENT", "Assigned agent cannot be empty")
	}

	return &Enquiry{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, createdBy),
		EnquiryNumber:       enquiryNumber,
		Variant:             variant,
		TourID:              tourID,
		GuestName:           guestName,
		GuestPhone:          guestPhone,
		GuestEmail:          guestEmail,
		AdultCount:          adultCount,
		ChildCount:          childCount,
		Process:             ProcessCreated,
		AssignedTo:          assignedTo,
	}, nil
}

// Confirm transitions the enquiry from Created to Confirmed.
// The caller is responsible for verifying that at least one family head
// has been registered before confirming.
func (e *Enquiry) Confirm() error {
	switch e.Process {
	case ProcessConfirmed:
		return shared.NewDomainError("ALREADY_CONFIRMED", fmt.Sprintf("Enquiry %s is already confirmed", e.EnquiryNumber))
	case ProcessCancelled:
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot confirm cancelled enquiry %s", e.EnquiryNumber))
	}

	now := time.Now()
	e.Process = ProcessConfirmed
	e.ConfirmedAt = &now
	e.UpdatedAt = now
	e.IncrementVersion()

	return nil
}

// Cancel transitions the enquiry to Cancelled with the given closure reason.
// Cancelling an already-cancelled enquiry is a no-op that reports success,
// matching soft-delete semantics expected by callers.
func (e *Enquiry) Cancel(reason string) error {
	if e.Process == ProcessCancelled {
		return nil
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Closure reason is required")
	}

	now := time.Now()
	e.Process = ProcessCancelled
	e.CancelledAt = &now
	e.ClosureReason = reason
	e.UpdatedAt = now
	e.IncrementVersion()

	return nil
}

// RescheduleFollowUp sets the next follow-up date and time slot.
// Follow-up scheduling never changes the process state.
func (e *Enquiry) RescheduleFollowUp(date time.Time, timeSlot string) error {
	if e.Process == ProcessCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot schedule follow-up on a cancelled enquiry")
	}

	e.NextFollowUpDate = &date
	e.NextFollowUpTime = timeSlot
	e.UpdatedAt = time.Now()
	e.IncrementVersion()

	return nil
}

// IsConfirmed returns true if the enquiry has been confirmed
func (e *Enquiry) IsConfirmed() bool {
	return e.Process == ProcessConfirmed
}

// IsCancelled returns true if the enquiry has been cancelled
func (e *Enquiry) IsCancelled() bool {
	return e.Process == ProcessCancelled
}

// TotalPax returns the declared traveler count
func (e *Enquiry) TotalPax() int {
	return e.AdultCount + e.ChildCount
}
