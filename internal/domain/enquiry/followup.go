package enquiry

import (
	"time"

	"github.com/google/uuid"
	"github.com/travelcrm/backend/internal/domain/shared"
)

// FollowUpCall is a single call-log entry against an enquiry. Logging a
// call may reschedule the enquiry's next follow-up but never changes its
// process state.
type FollowUpCall struct {
	shared.BaseEntity
	TenantID         uuid.UUID  `json:"tenant_id"`
	EnquiryID        uuid.UUID  `json:"enquiry_id"`
	Notes            string     `json:"notes"`
	CalledBy         uuid.UUID  `json:"called_by"`
	NextFollowUpDate *time.Time `json:"next_follow_up_date"`
	NextFollowUpTime string     `json:"next_follow_up_time"`
}

// NewFollowUpCall creates a new call-log entry
func NewFollowUpCall(tenantID, enquiryID, calledBy uuid.UUID, notes string) (*FollowUpCall, error) {
	if enquiryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ENQUIRY", "Enquiry ID cannot be empty")
	}
	if calledBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_AGENT", "Calling agent cannot be empty")
	}
	if notes == "" {
		return nil, shared.NewDomainError("INVALID_NOTES", "Call notes cannot be empty")
	}

	return &FollowUpCall{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		EnquiryID:  enquiryID,
		Notes:      notes,
		CalledBy:   calledBy,
	}, nil
}

// WithNextFollowUp records the rescheduled follow-up carried by this call
func (f *FollowUpCall) WithNextFollowUp(date time.Time, timeSlot string) *FollowUpCall {
	f.NextFollowUpDate = &date
	f.NextFollowUpTime = timeSlot
	return f
}
