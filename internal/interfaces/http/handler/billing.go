package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	billingapp "github.com/travelcrm/backend/internal/application/billing"
	"github.com/travelcrm/backend/internal/domain/payment"
	"github.com/travelcrm/backend/internal/infrastructure/telemetry"
	"github.com/travelcrm/backend/internal/interfaces/http/dto"
)

// maxProofFileSize caps payment-proof uploads at 10MB.
const maxProofFileSize = 10 << 20

// BillingHandler handles pricing and installment endpoints.
type BillingHandler struct {
	BaseHandler
	pricingService *billingapp.PricingService
	paymentService *billingapp.PaymentService
	metrics        *telemetry.BookingMetrics
}

// NewBillingHandler creates a new BillingHandler. metrics may be nil.
func NewBillingHandler(
	pricingService *billingapp.PricingService,
	paymentService *billingapp.PaymentService,
	metrics *telemetry.BookingMetrics,
) *BillingHandler {
	return &BillingHandler{
		pricingService: pricingService,
		paymentService: paymentService,
		metrics:        metrics,
	}
}

// SetPricingRequest is the request body for pricing a family head's
// booking. GST and TCS are absolute amounts, not rates.
type SetPricingRequest struct {
	TourPrice          decimal.Decimal `json:"tour_price" binding:"required"`
	AdditionalDiscount decimal.Decimal `json:"additional_discount"`
	GST                decimal.Decimal `json:"gst"`
	TCS                decimal.Decimal `json:"tcs"`
}

// SetPricing records the pricing for a family head. Identical
// resubmissions are idempotent; once installments exist the pricing is
// locked and any change is rejected.
func (h *BillingHandler) SetPricing(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID not found")
		return
	}
	familyHeadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid family head ID")
		return
	}

	var req SetPricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	record, err := h.pricingService.SetPricing(c.Request.Context(), billingapp.SetPricingRequest{
		TenantID:           tenantID,
		FamilyHeadID:       familyHeadID,
		TourPrice:          req.TourPrice,
		AdditionalDiscount: req.AdditionalDiscount,
		GST:                req.GST,
		TCS:                req.TCS,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// GetPricing returns the pricing record for a family head.
func (h *BillingHandler) GetPricing(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID not found")
		return
	}
	familyHeadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid family head ID")
		return
	}

	record, err := h.pricingService.GetPricing(c.Request.Context(), tenantID, familyHeadID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// RecordPayment appends an installment for a family head. The request is
// multipart/form-data: amount, mode and remark as form fields, plus an
// optional "proof" file part.
func (h *BillingHandler) RecordPayment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID not found")
		return
	}
	familyHeadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid family head ID")
		return
	}

	advanceStr := c.PostForm("advance")
	if advanceStr == "" {
		h.BadRequest(c, "advance is required")
		return
	}
	advance, err := decimal.NewFromString(advanceStr)
	if err != nil {
		h.BadRequest(c, "advance must be a decimal amount")
		return
	}

	mode := payment.PaymentMode(c.PostForm("mode"))
	if !mode.IsValid() {
		h.BadRequest(c, "mode must be one of CASH, UPI, CARD, BANK_TRANSFER, CHEQUE")
		return
	}

	req := billingapp.RecordPaymentRequest{
		TenantID:     tenantID,
		FamilyHeadID: familyHeadID,
		Advance:      advance,
		Mode:         mode,
		Remark:       c.PostForm("remark"),
	}

	file, header, err := c.Request.FormFile("proof")
	if err == nil {
		defer file.Close()
		if header.Size > maxProofFileSize {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeValidation,
				"proof file exceeds maximum size of 10MB")
			return
		}
		data, err := io.ReadAll(file)
		if err != nil {
			h.InternalError(c, "Failed to read proof file")
			return
		}
		req.Proof = &billingapp.ProofUpload{
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		}
	} else if err != http.ErrMissingFile {
		h.BadRequest(c, "Invalid proof file")
		return
	}

	inst, err := h.paymentService.RecordPayment(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.metrics.RecordPayment(c.Request.Context(), string(inst.Mode), inst.AdvanceAmount)
	h.Created(c, inst)
}

// ConfirmPayment advances a pending installment to confirmed.
func (h *BillingHandler) ConfirmPayment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID not found")
		return
	}
	installmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid installment ID")
		return
	}

	inst, err := h.paymentService.ConfirmPayment(c.Request.Context(), tenantID, installmentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inst)
}

// ListPayments returns the installment history for a family head.
func (h *BillingHandler) ListPayments(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID not found")
		return
	}
	familyHeadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid family head ID")
		return
	}

	installments, err := h.paymentService.ListPayments(c.Request.Context(), tenantID, familyHeadID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, installments)
}

// PaymentSummary returns the reconciliation view for a family head:
// grand total, sum of advances, and the recomputed balance.
func (h *BillingHandler) PaymentSummary(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID not found")
		return
	}
	familyHeadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid family head ID")
		return
	}

	summary, err := h.paymentService.GetPaymentSummary(c.Request.Context(), tenantID, familyHeadID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// ProofURLResponse carries a time-limited download URL for a proof file.
type ProofURLResponse struct {
	URL string `json:"url"`
}

// ProofURL returns a presigned download URL for an installment's payment
// proof.
func (h *BillingHandler) ProofURL(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID not found")
		return
	}
	installmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid installment ID")
		return
	}

	url, err := h.paymentService.ProofDownloadURL(c.Request.Context(), tenantID, installmentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ProofURLResponse{URL: url})
}
