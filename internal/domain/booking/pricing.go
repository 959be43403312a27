package booking

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/travelcrm/backend/internal/domain/shared"
	"github.com/travelcrm/backend/internal/domain/shared/valueobject"
)

// PricingRecord holds the discount and tax breakdown for one family head's
// booking. GST and TCS arrive as caller-supplied absolute amounts, not
// rates. The record is treated as immutable once any installment has been
// recorded against it.
type PricingRecord struct {
	shared.TenantAggregateRoot
	EnquiryID          uuid.UUID       `json:"enquiry_id"`
	FamilyHeadID       uuid.UUID       `json:"family_head_id"`
	TourPrice          decimal.Decimal `json:"tour_price"`
	AdditionalDiscount decimal.Decimal `json:"additional_discount"`
	DiscountPrice      decimal.Decimal `json:"discount_price"`
	GST                decimal.Decimal `json:"gst"`
	TCS                decimal.Decimal `json:"tcs"`
	GrandTotal         decimal.Decimal `json:"grand_total"`
}

// NewPricingRecord computes and creates the pricing for a family head:
//
//	discountPrice = tourPrice - additionalDiscount
//	grandTotal    = discountPrice + gst + tcs
func NewPricingRecord(
	tenantID, enquiryID, familyHeadID uuid.UUID,
	tourPrice, additionalDiscount, gst, tcs valueobject.Money,
) (*PricingRecord, error) {
	if enquiryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ENQUIRY", "Enquiry ID cannot be empty")
	}
	if familyHeadID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_FAMILY_HEAD", "Family head ID cannot be empty")
	}
	if tourPrice.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Tour price must be positive")
	}
	if additionalDiscount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Additional discount cannot be negative")
	}
	if additionalDiscount.Amount().GreaterThan(tourPrice.Amount()) {
		return nil, shared.NewDomainError("INVALID_DISCOUNT",
			fmt.Sprintf("Discount %s exceeds tour price %s", additionalDiscount.Amount(), tourPrice.Amount()))
	}
	if gst.IsNegative() || tcs.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "GST and TCS cannot be negative")
	}

	discountPrice := tourPrice.Amount().Sub(additionalDiscount.Amount())
	grandTotal := discountPrice.Add(gst.Amount()).Add(tcs.Amount())

	return &PricingRecord{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		EnquiryID:           enquiryID,
		FamilyHeadID:        familyHeadID,
		TourPrice:           tourPrice.Amount(),
		AdditionalDiscount:  additionalDiscount.Amount(),
		DiscountPrice:       discountPrice,
		GST:                 gst.Amount(),
		TCS:                 tcs.Amount(),
		GrandTotal:          grandTotal,
	}, nil
}

// GetGrandTotalMoney returns the grand total as Money
func (p *PricingRecord) GetGrandTotalMoney() valueobject.Money {
	return valueobject.NewMoneyINR(p.GrandTotal)
}
