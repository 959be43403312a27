package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	enquiryapp "github.com/travelcrm/backend/internal/application/enquiry"
	"github.com/travelcrm/backend/internal/domain/booking"
	"github.com/travelcrm/backend/internal/domain/enquiry"
	"github.com/travelcrm/backend/internal/infrastructure/telemetry"
	"github.com/travelcrm/backend/internal/interfaces/http/dto"
)

// dateLayout is the wire format for bare dates such as follow-up dates.
const dateLayout = "2006-01-02"

// EnquiryHandler handles the enquiry lifecycle endpoints.
type EnquiryHandler struct {
	BaseHandler
	enquiryService      *enquiryapp.Service
	cancellationService *enquiryapp.CancellationService
	metrics             *telemetry.BookingMetrics
}

// NewEnquiryHandler creates a new EnquiryHandler. metrics may be nil.
func NewEnquiryHandler(
	enquiryService *enquiryapp.Service,
	cancellationService *enquiryapp.CancellationService,
	metrics *telemetry.BookingMetrics,
) *EnquiryHandler {
	return &EnquiryHandler{
		enquiryService:      enquiryService,
		cancellationService: cancellationService,
		metrics:             metrics,
	}
}

// CreateEnquiryRequest is the request body for opening an enquiry.
type CreateEnquiryRequest struct {
	Variant    string    `json:"variant" binding:"required,oneof=GROUP CUSTOM"`
	TourID     uuid.UUID `json:"tour_id" binding:"required"`
	GuestName  string    `json:"guest_name" binding:"required,min=1,max=200"`
	GuestPhone string    `json:"guest_phone" binding:"required,min=5,max=20"`
	GuestEmail string    `json:"guest_email" binding:"omitempty,email,max=200"`
	AdultCount int       `json:"adult_count" binding:"required,gte=1"`
	ChildCount int       `json:"child_count" binding:"gte=0"`
	AssignedTo uuid.UUID `json:"assigned_to" binding:"required"`
}

// Create opens a new enquiry and allocates its sequential number.
func (h *EnquiryHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID not found")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User ID not found")
		return
	}

	var req CreateEnquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	created, err := h.enquiryService.CreateEnquiry(c.Request.Context(), enquiryapp.CreateEnquiryRequest{
		TenantID:   tenantID,
		Variant:    enquiry.TourVariant(req.Variant),
		TourID:     req.TourID,
		GuestName:  req.GuestName,
		GuestPhone: req.GuestPhone,
		GuestEmail: req.GuestEmail,
		AdultCount: req.AdultCount,
		ChildCount: req.ChildCount,
		AssignedTo: req.AssignedTo,
		CreatedBy:  userID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.metrics.RecordEnquiryCreated(c.Request.Context(), created.Variant.String())
	h.Created(c, created)
}

// ListEnquiriesRequest is the query string for the enquiry list.
type ListEnquiriesRequest struct {
	dto.ListRequest
	Process      *int    `form:"process" binding:"omitempty,oneof=1 2 3"`
	Variant      *string `form:"variant" binding:"omitempty,oneof=GROUP CUSTOM"`
	AssignedTo   *string `form:"assigned_to" binding:"omitempty,uuid"`
	FollowUpFrom *string `form:"follow_up_from" binding:"omitempty,datetime=2006-01-02"`
	FollowUpTo   *string `form:"follow_up_to" binding:"omitempty,datetime=2006-01-02"`
}

// List returns the filtered, paginated enquiry list for the tenant.
func (h *EnquiryHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID not found")
		return
	}

	var req ListEnquiriesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.ApplyDefaults()

	filter := enquiry.Filter{
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
	}
	if req.Process != nil {
		state := enquiry.ProcessState(*req.Process)
		filter.Process = &state
	}
	if req.Variant != nil {
		variant := enquiry.TourVariant(*req.Variant)
		filter.Variant = &variant
	}
	if req.AssignedTo != nil {
		id, err := uuid.Parse(*req.AssignedTo)
		if err != nil {
			h.BadRequest(c, "Invalid assigned_to ID")
			return
		}
		filter.AssignedTo = &id
	}
	if req.FollowUpFrom != nil {
		from, _ := time.Parse(dateLayout, *req.FollowUpFrom)
		filter.FollowUpFrom = &from
	}
	if req.FollowUpTo != nil {
		to, _ := time.Parse(dateLayout, *req.FollowUpTo)
		filter.FollowUpTo = &to
	}

	page, err := h.enquiryService.ListEnquiries(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get returns one enquiry.
func (h *EnquiryHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID not found")
		return
	}
	enquiryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid enquiry ID")
		return
	}

	e, err := h.enquiryService.GetEnquiry(c.Request.Context(), tenantID, enquiryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, e)
}

// CompletionStatusResponse is the derived progress of an enquiry.
type CompletionStatusResponse struct {
	EnquiryID uuid.UUID                `json:"enquiry_id"`
	Status    enquiry.CompletionStatus `json:"status"`
}

// Status returns the enquiry's derived completion status. The value is
// computed from live signals on every call.
func (h *EnquiryHandler) Status(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID not found")
		return
	}
	enquiryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid enquiry ID")
		return
	}

	status, err := h.enquiryService.CompletionStatus(c.Request.Context(), tenantID, enquiryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, CompletionStatusResponse{EnquiryID: enquiryID, Status: status})
}

// LogFollowUpRequest is the request body for logging a follow-up call.
type LogFollowUpRequest struct {
	Notes            string `json:"notes" binding:"required,min=1,max=2000"`
	NextFollowUpDate string `json:"next_follow_up_date" binding:"omitempty,datetime=2006-01-02"`
	NextFollowUpTime string `json:"next_follow_up_time" binding:"omitempty,max=20"`
}

// LogFollowUp appends a call-log entry and optionally reschedules the
// enquiry's next follow-up.
func (h *EnquiryHandler) LogFollowUp(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID not found")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User ID not found")
		return
	}
	enquiryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid enquiry ID")
		return
	}

	var req LogFollowUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := enquiryapp.LogFollowUpRequest{
		TenantID:         tenantID,
		EnquiryID:        enquiryID,
		CalledBy:         userID,
		Notes:            req.Notes,
		NextFollowUpTime: req.NextFollowUpTime,
	}
	if req.NextFollowUpDate != "" {
		date, _ := time.Parse(dateLayout, req.NextFollowUpDate)
		appReq.NextFollowUpDate = &date
	}

	call, err := h.enquiryService.LogFollowUp(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, call)
}

// ListFollowUps returns the call history for an enquiry, newest first.
func (h *EnquiryHandler) ListFollowUps(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID not found")
		return
	}
	enquiryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid enquiry ID")
		return
	}

	calls, err := h.enquiryService.ListFollowUps(c.Request.Context(), tenantID, enquiryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, calls)
}

// Confirm transitions the enquiry to Confirmed and posts loyalty credits.
func (h *EnquiryHandler) Confirm(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID not found")
		return
	}
	enquiryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid enquiry ID")
		return
	}

	confirmed, err := h.enquiryService.ConfirmEnquiry(c.Request.Context(), tenantID, enquiryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.metrics.RecordEnquiryConfirmed(c.Request.Context(), confirmed.Variant.String())
	h.Success(c, confirmed)
}

// GuestRefundRequest is one per-guest refund line in a cancellation.
type GuestRefundRequest struct {
	GuestDetailID       uuid.UUID       `json:"guest_detail_id" binding:"required"`
	CancellationCharges decimal.Decimal `json:"cancellation_charges"`
	RefundAmount        decimal.Decimal `json:"refund_amount"`
	Settlement          string          `json:"settlement" binding:"required,oneof=REFUND CREDIT_NOTE"`
}

// CancelEnquiryRequest is the request body for cancelling an enquiry.
type CancelEnquiryRequest struct {
	Reason  string               `json:"reason" binding:"required,min=1,max=1000"`
	Refunds []GuestRefundRequest `json:"refunds" binding:"omitempty,dive"`
}

// Cancel cancels the enquiry, reverses its loyalty credits, and records
// any per-guest refund settlements.
func (h *EnquiryHandler) Cancel(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID not found")
		return
	}
	enquiryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid enquiry ID")
		return
	}

	var req CancelEnquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := enquiryapp.CancelEnquiryRequest{
		TenantID:  tenantID,
		EnquiryID: enquiryID,
		Reason:    req.Reason,
	}
	for _, r := range req.Refunds {
		appReq.Refunds = append(appReq.Refunds, enquiryapp.GuestRefundInput{
			GuestDetailID:       r.GuestDetailID,
			CancellationCharges: r.CancellationCharges,
			RefundAmount:        r.RefundAmount,
			Settlement:          booking.RefundSettlement(r.Settlement),
		})
	}

	cancelled, err := h.cancellationService.CancelEnquiry(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.metrics.RecordEnquiryCancelled(c.Request.Context(), cancelled.Variant.String())
	h.Success(c, cancelled)
}

// ListGuestRefunds returns the refund settlements recorded for a
// cancelled enquiry.
func (h *EnquiryHandler) ListGuestRefunds(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID not found")
		return
	}
	enquiryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid enquiry ID")
		return
	}

	refunds, err := h.cancellationService.ListGuestRefunds(c.Request.Context(), tenantID, enquiryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, refunds)
}
