package enquiry

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/travelcrm/backend/internal/domain/booking"
	"github.com/travelcrm/backend/internal/domain/shared"
	"github.com/travelcrm/backend/internal/infrastructure/telemetry"
)

// RegistryService registers the billing party (family head) and individual
// travelers under a confirmed or in-progress enquiry.
type RegistryService struct {
	scope TransactionScope
}

// NewRegistryService creates a new family/guest registry service
func NewRegistryService(scope TransactionScope) *RegistryService {
	return &RegistryService{scope: scope}
}

// RegisterFamilyHeadRequest represents a family head registration
type RegisterFamilyHeadRequest struct {
	TenantID  uuid.UUID
	EnquiryID uuid.UUID
	Name      string
	Phone     string
	Email     string
	Address   string
}

// RegisterFamilyHead registers the billing party for an enquiry. The
// operation is idempotent per enquiry: when a head already exists it is
// returned unchanged and no duplicate is created.
func (s *RegistryService) RegisterFamilyHead(ctx context.Context, req RegisterFamilyHeadRequest) (*booking.FamilyHead, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "registry", "register_family_head")
	defer span.End()

	var head *booking.FamilyHead
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		e, err := repos.EnquiryRepo().FindByIDForTenant(ctx, req.TenantID, req.EnquiryID)
		if err != nil {
			return err
		}
		if e.IsCancelled() {
			return shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("Cannot register a family head on cancelled enquiry %s", e.EnquiryNumber))
		}

		existing, err := repos.FamilyHeadRepo().FindByEnquiry(ctx, req.TenantID, req.EnquiryID)
		if err == nil {
			head = existing
			return nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("failed to check existing family head: %w", err)
		}

		created, err := booking.NewFamilyHead(req.TenantID, req.EnquiryID,
			req.Name, req.Phone, req.Email, req.Address)
		if err != nil {
			return err
		}
		if err := repos.FamilyHeadRepo().Create(ctx, created); err != nil {
			return fmt.Errorf("failed to save family head: %w", err)
		}
		head = created
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return head, nil
}

// RegisterGuestRequest represents a traveler being added under a family head
type RegisterGuestRequest struct {
	TenantID     uuid.UUID
	FamilyHeadID uuid.UUID
	Name         string
	Age          int
	Gender       string
	GuestUserID  *uuid.UUID
}

// RegisterGuest adds a traveler under a family head, optionally linked to a
// registered user for loyalty accrual. The guest count is not validated
// against the enquiry's declared pax.
func (s *RegistryService) RegisterGuest(ctx context.Context, req RegisterGuestRequest) (*booking.GuestDetail, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "registry", "register_guest")
	defer span.End()

	var guest *booking.GuestDetail
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.FamilyHeadRepo().FindByIDForTenant(ctx, req.TenantID, req.FamilyHeadID); err != nil {
			return err
		}

		g, err := booking.NewGuestDetail(req.TenantID, req.FamilyHeadID, req.Name, req.Age, req.Gender)
		if err != nil {
			return err
		}
		if req.GuestUserID != nil {
			if _, err := repos.UserRepo().FindByIDForTenant(ctx, req.TenantID, *req.GuestUserID); err != nil {
				return fmt.Errorf("failed to resolve guest user: %w", err)
			}
			g.LinkUser(*req.GuestUserID)
		}

		if err := repos.GuestRepo().Create(ctx, g); err != nil {
			return fmt.Errorf("failed to save guest: %w", err)
		}
		guest = g
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return guest, nil
}

// GetFamilyHead returns the registered billing party for an enquiry.
func (s *RegistryService) GetFamilyHead(ctx context.Context, tenantID, enquiryID uuid.UUID) (*booking.FamilyHead, error) {
	var head *booking.FamilyHead
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		head, err = repos.FamilyHeadRepo().FindByEnquiry(ctx, tenantID, enquiryID)
		return err
	})
	return head, err
}

// ListGuests returns the travelers registered under a family head.
func (s *RegistryService) ListGuests(ctx context.Context, tenantID, familyHeadID uuid.UUID) ([]booking.GuestDetail, error) {
	var guests []booking.GuestDetail
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		guests, err = repos.GuestRepo().FindByFamilyHead(ctx, tenantID, familyHeadID)
		return err
	})
	return guests, err
}
