package enquiry

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository provides access to enquiry aggregates
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Enquiry, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Enquiry, error)
	FindByNumber(ctx context.Context, tenantID uuid.UUID, enquiryNumber string) (*Enquiry, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter Filter) ([]Enquiry, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter Filter) (int64, error)
	Save(ctx context.Context, e *Enquiry) error
	SaveWithLock(ctx context.Context, e *Enquiry) error
}

// FollowUpRepository provides access to follow-up call logs
type FollowUpRepository interface {
	Create(ctx context.Context, call *FollowUpCall) error
	FindByEnquiry(ctx context.Context, tenantID, enquiryID uuid.UUID) ([]FollowUpCall, error)
	ExistsForEnquiry(ctx context.Context, tenantID, enquiryID uuid.UUID) (bool, error)
}

// CounterRepository allocates human-readable enquiry numbers. Allocate must
// run on the same transaction as the enquiry insert; implementations take a
// write lock on the counter row so concurrent allocations serialize. A
// missing counter row is a configuration error, not a retriable condition.
type CounterRepository interface {
	AllocateEnquiryNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// Filter represents enquiry list filter options
type Filter struct {
	Search       string
	Process      *ProcessState
	Variant      *TourVariant
	AssignedTo   *uuid.UUID
	FollowUpFrom *time.Time
	FollowUpTo   *time.Time
	Page         int
	PageSize     int
	OrderBy      string
	OrderDir     string
}
