package enquiry

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CounterScopeEnquiry is the sequence scope shared by group and custom tours.
const CounterScopeEnquiry = "enquiry"

// enquiryNumberWidth is the zero-padding width of formatted enquiry numbers.
const enquiryNumberWidth = 4

// Counter is the persisted sequence row behind enquiry number allocation.
// There is exactly one row per (tenant, scope); it is mutated once per
// allocation under a row lock so concurrent allocators serialize on it.
type Counter struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Scope     string    `json:"scope"`
	Current   int64     `json:"current"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FormatEnquiryNumber renders a sequence value as the human-readable,
// zero-padded enquiry number.
func FormatEnquiryNumber(n int64) string {
	return fmt.Sprintf("%0*d", enquiryNumberWidth, n)
}
