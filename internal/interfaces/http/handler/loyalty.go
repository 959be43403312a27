package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	loyaltyapp "github.com/travelcrm/backend/internal/application/loyalty"
	"github.com/travelcrm/backend/internal/infrastructure/telemetry"
	"github.com/travelcrm/backend/internal/interfaces/http/dto"
)

// LoyaltyHandler handles loyalty balance, history and redemption endpoints.
type LoyaltyHandler struct {
	BaseHandler
	loyaltyService *loyaltyapp.Service
	metrics        *telemetry.BookingMetrics
}

// NewLoyaltyHandler creates a new LoyaltyHandler. metrics may be nil.
func NewLoyaltyHandler(loyaltyService *loyaltyapp.Service, metrics *telemetry.BookingMetrics) *LoyaltyHandler {
	return &LoyaltyHandler{loyaltyService: loyaltyService, metrics: metrics}
}

// BalanceResponse is a user's point balance at a point in time.
type BalanceResponse struct {
	UserID  uuid.UUID `json:"user_id"`
	Balance int64     `json:"balance"`
	AsOf    time.Time `json:"as_of"`
}

// Balance returns the user's point balance inside the trailing 365-day
// window. An optional as_of query parameter (RFC 3339) moves the window
// end; it defaults to now.
func (h *LoyaltyHandler) Balance(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID not found")
		return
	}
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	asOf := time.Now()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.BadRequest(c, "as_of must be an RFC 3339 timestamp")
			return
		}
		asOf = parsed
	}

	balance, err := h.loyaltyService.Balance(c.Request.Context(), tenantID, userID, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, BalanceResponse{UserID: userID, Balance: balance, AsOf: asOf})
}

// History returns the user's paginated ledger history, newest first.
func (h *LoyaltyHandler) History(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID not found")
		return
	}
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.ApplyDefaults()

	page, err := h.loyaltyService.History(c.Request.Context(), tenantID, userID, req.Page, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// ReferralsResponse is the number of successful referrals for a user.
type ReferralsResponse struct {
	UserID        uuid.UUID `json:"user_id"`
	ReferralCount int64     `json:"referral_count"`
}

// Referrals returns how many referral credits the user has earned.
func (h *LoyaltyHandler) Referrals(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID not found")
		return
	}
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	count, err := h.loyaltyService.ReferralCount(c.Request.Context(), tenantID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ReferralsResponse{UserID: userID, ReferralCount: count})
}

// RedeemRequest is the request body for redeeming points.
type RedeemRequest struct {
	Points      int64  `json:"points" binding:"required,gt=0"`
	Description string `json:"description" binding:"max=500"`
}

// Redeem debits points from the user's balance. A redemption that would
// exceed the current window balance is rejected.
func (h *LoyaltyHandler) Redeem(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID not found")
		return
	}
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	entry, err := h.loyaltyService.Redeem(c.Request.Context(), tenantID, userID, req.Points, req.Description)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.metrics.RecordPointsDebited(c.Request.Context(), string(entry.Reason), req.Points)
	h.Created(c, entry)
}
