package telemetry

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys for booking metrics.
var (
	AttrVariant = attribute.Key("variant")
	AttrReason  = attribute.Key("reason")
	AttrMode    = attribute.Key("mode")
)

// BookingMetrics holds the instruments for the booking lifecycle and the
// financial ledger. Instruments are registered once at startup and shared.
type BookingMetrics struct {
	enquiriesCreated   *Counter
	enquiriesConfirmed *Counter
	enquiriesCancelled *Counter
	paymentsRecorded   *Counter
	paymentAmount      *Histogram
	pointsCredited     *Counter
	pointsDebited      *Counter
}

// NewBookingMetrics registers the booking instruments on the given meter.
func NewBookingMetrics(meter metric.Meter) (*BookingMetrics, error) {
	enquiriesCreated, err := NewCounter(meter,
		"travelcrm.enquiries.created",
		"Number of enquiries created", "{enquiry}")
	if err != nil {
		return nil, err
	}
	enquiriesConfirmed, err := NewCounter(meter,
		"travelcrm.enquiries.confirmed",
		"Number of enquiries confirmed", "{enquiry}")
	if err != nil {
		return nil, err
	}
	enquiriesCancelled, err := NewCounter(meter,
		"travelcrm.enquiries.cancelled",
		"Number of enquiries cancelled", "{enquiry}")
	if err != nil {
		return nil, err
	}
	paymentsRecorded, err := NewCounter(meter,
		"travelcrm.payments.recorded",
		"Number of installments recorded", "{installment}")
	if err != nil {
		return nil, err
	}
	paymentAmount, err := NewHistogram(meter,
		"travelcrm.payments.amount",
		"Advance amount per installment", "INR")
	if err != nil {
		return nil, err
	}
	pointsCredited, err := NewCounter(meter,
		"travelcrm.loyalty.points.credited",
		"Loyalty points credited", "{point}")
	if err != nil {
		return nil, err
	}
	pointsDebited, err := NewCounter(meter,
		"travelcrm.loyalty.points.debited",
		"Loyalty points debited", "{point}")
	if err != nil {
		return nil, err
	}

	return &BookingMetrics{
		enquiriesCreated:   enquiriesCreated,
		enquiriesConfirmed: enquiriesConfirmed,
		enquiriesCancelled: enquiriesCancelled,
		paymentsRecorded:   paymentsRecorded,
		paymentAmount:      paymentAmount,
		pointsCredited:     pointsCredited,
		pointsDebited:      pointsDebited,
	}, nil
}

// RecordEnquiryCreated counts a created enquiry by variant.
func (m *BookingMetrics) RecordEnquiryCreated(ctx context.Context, variant string) {
	if m == nil {
		return
	}
	m.enquiriesCreated.Inc(ctx, AttrVariant.String(variant))
}

// RecordEnquiryConfirmed counts a confirmed enquiry.
func (m *BookingMetrics) RecordEnquiryConfirmed(ctx context.Context, variant string) {
	if m == nil {
		return
	}
	m.enquiriesConfirmed.Inc(ctx, AttrVariant.String(variant))
}

// RecordEnquiryCancelled counts a cancelled enquiry.
func (m *BookingMetrics) RecordEnquiryCancelled(ctx context.Context, variant string) {
	if m == nil {
		return
	}
	m.enquiriesCancelled.Inc(ctx, AttrVariant.String(variant))
}

// RecordPayment counts an installment and records its advance amount.
func (m *BookingMetrics) RecordPayment(ctx context.Context, mode string, advance decimal.Decimal) {
	if m == nil {
		return
	}
	m.paymentsRecorded.Inc(ctx, AttrMode.String(mode))
	amount, _ := advance.Float64()
	m.paymentAmount.Record(ctx, amount, AttrMode.String(mode))
}

// RecordPointsCredited counts credited loyalty points by reason.
func (m *BookingMetrics) RecordPointsCredited(ctx context.Context, reason string, points int64) {
	if m == nil {
		return
	}
	m.pointsCredited.Add(ctx, points, AttrReason.String(reason))
}

// RecordPointsDebited counts debited loyalty points by reason.
func (m *BookingMetrics) RecordPointsDebited(ctx context.Context, reason string, points int64) {
	if m == nil {
		return
	}
	m.pointsDebited.Add(ctx, points, AttrReason.String(reason))
}

// MustNewBookingMetrics registers the booking instruments and panics on
// failure. Instrument registration only fails on name collisions, which is
// a programming error.
func MustNewBookingMetrics(meter metric.Meter) *BookingMetrics {
	m, err := NewBookingMetrics(meter)
	if err != nil {
		panic(fmt.Sprintf("booking metrics registration: %v", err))
	}
	return m
}
