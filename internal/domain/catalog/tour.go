package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/travelcrm/backend/internal/domain/shared"
)

// Tour is the read-only lookup an enquiry points at. Tour management itself
// lives outside this service; the booking core only needs existence checks
// at enquiry creation and name resolution for ledger history views.
type Tour struct {
	shared.BaseEntity
	TenantID uuid.UUID `json:"tenant_id"`
	Name     string    `json:"name"`
	Variant  string    `json:"variant"`
	Active   bool      `json:"active"`
}

// TourRepository provides read-only access to the tour lookup
type TourRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Tour, error)
	Exists(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
	// ResolveNames maps tour IDs to display names for history views.
	ResolveNames(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]string, error)
}
