package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/travelcrm/backend/internal/domain/booking"
	"github.com/travelcrm/backend/internal/domain/shared"
	"github.com/travelcrm/backend/internal/domain/shared/valueobject"
	"github.com/travelcrm/backend/internal/infrastructure/telemetry"
)

// PricingService computes and persists the discount and tax breakdown for a
// family head's booking.
type PricingService struct {
	scope TransactionScope
}

// NewPricingService creates a new pricing service
func NewPricingService(scope TransactionScope) *PricingService {
	return &PricingService{scope: scope}
}

// SetPricingRequest represents a pricing submission for a family head.
// GST and TCS are absolute amounts, never rates.
type SetPricingRequest struct {
	TenantID           uuid.UUID
	FamilyHeadID       uuid.UUID
	TourPrice          decimal.Decimal
	AdditionalDiscount decimal.Decimal
	GST                decimal.Decimal
	TCS                decimal.Decimal
}

// SetPricing computes discountPrice and grandTotal and persists the record.
// Resubmitting identical amounts returns the stored record unchanged; a
// record with installments already posted against it can never change.
func (s *PricingService) SetPricing(ctx context.Context, req SetPricingRequest) (*booking.PricingRecord, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "set_pricing")
	defer span.End()

	var record *booking.PricingRecord
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		head, err := repos.FamilyHeadRepo().FindByIDForTenant(ctx, req.TenantID, req.FamilyHeadID)
		if err != nil {
			return err
		}

		computed, err := booking.NewPricingRecord(
			req.TenantID, head.EnquiryID, req.FamilyHeadID,
			valueobject.NewMoneyINR(req.TourPrice),
			valueobject.NewMoneyINR(req.AdditionalDiscount),
			valueobject.NewMoneyINR(req.GST),
			valueobject.NewMoneyINR(req.TCS),
		)
		if err != nil {
			return err
		}

		existing, err := repos.PricingRepo().FindByFamilyHead(ctx, req.TenantID, req.FamilyHeadID)
		if err != nil {
			if !errors.Is(err, shared.ErrNotFound) {
				return fmt.Errorf("failed to check existing pricing: %w", err)
			}
			if err := repos.PricingRepo().Create(ctx, computed); err != nil {
				return fmt.Errorf("failed to save pricing: %w", err)
			}
			record = computed
			return nil
		}

		if samePricing(existing, computed) {
			record = existing
			return nil
		}

		installments, err := repos.InstallmentRepo().FindByFamilyHead(ctx, req.TenantID, req.FamilyHeadID)
		if err != nil {
			return fmt.Errorf("failed to check installments: %w", err)
		}
		if len(installments) > 0 {
			return shared.NewDomainError("PRICING_LOCKED",
				"Pricing cannot change once installments have been recorded")
		}

		existing.TourPrice = computed.TourPrice
		existing.AdditionalDiscount = computed.AdditionalDiscount
		existing.DiscountPrice = computed.DiscountPrice
		existing.GST = computed.GST
		existing.TCS = computed.TCS
		existing.GrandTotal = computed.GrandTotal
		existing.IncrementVersion()
		if err := repos.PricingRepo().Save(ctx, existing); err != nil {
			return fmt.Errorf("failed to update pricing: %w", err)
		}
		record = existing
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttribute(span, "grand_total", record.GrandTotal.String())
	return record, nil
}

// GetPricing returns the pricing record for a family head.
func (s *PricingService) GetPricing(ctx context.Context, tenantID, familyHeadID uuid.UUID) (*booking.PricingRecord, error) {
	var record *booking.PricingRecord
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		record, err = repos.PricingRepo().FindByFamilyHead(ctx, tenantID, familyHeadID)
		return err
	})
	return record, err
}

func samePricing(a, b *booking.PricingRecord) bool {
	return a.TourPrice.Equal(b.TourPrice) &&
		a.AdditionalDiscount.Equal(b.AdditionalDiscount) &&
		a.GST.Equal(b.GST) &&
		a.TCS.Equal(b.TCS)
}
