package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	enquiryapp "github.com/travelcrm/backend/internal/application/enquiry"
)

// FamilyHandler handles family head and guest registration endpoints.
type FamilyHandler struct {
	BaseHandler
	registryService *enquiryapp.RegistryService
}

// NewFamilyHandler creates a new FamilyHandler
func NewFamilyHandler(registryService *enquiryapp.RegistryService) *FamilyHandler {
	return &FamilyHandler{registryService: registryService}
}

// RegisterFamilyHeadRequest is the request body for registering the
// billing party of an enquiry.
type RegisterFamilyHeadRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=200"`
	Phone   string `json:"phone" binding:"required,min=5,max=20"`
	Email   string `json:"email" binding:"omitempty,email,max=200"`
	Address string `json:"address" binding:"max=500"`
}

// RegisterFamilyHead registers the billing party for an enquiry. The
// operation is idempotent: repeating it returns the existing head.
func (h *FamilyHandler) RegisterFamilyHead(c *gin.Context) {
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

	var req RegisterFamilyHeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	head, err := h.registryService.RegisterFamilyHead(c.Request.Context(), enquiryapp.RegisterFamilyHeadRequest{
		TenantID:  tenantID,
		EnquiryID: enquiryID,
		Name:      req.Name,
		Phone:     req.Phone,
		Email:     req.Email,
		Address:   req.Address,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, head)
}

// GetFamilyHead returns the billing party registered for an enquiry.
func (h *FamilyHandler) GetFamilyHead(c *gin.Context) {
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

	head, err := h.registryService.GetFamilyHead(c.Request.Context(), tenantID, enquiryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, head)
}

// RegisterGuestRequest is the request body for adding a traveler under a
// family head. GuestUserID links the traveler to a registered user so
// loyalty points can accrue to them.
type RegisterGuestRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=200"`
	Age         int     `json:"age" binding:"required,gte=0,lte=120"`
	Gender      string  `json:"gender" binding:"required,oneof=MALE FEMALE OTHER"`
	GuestUserID *string `json:"guest_user_id" binding:"omitempty,uuid"`
}

// RegisterGuest adds a traveler under a family head.
func (h *FamilyHandler) RegisterGuest(c *gin.Context) {
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

	var req RegisterGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := enquiryapp.RegisterGuestRequest{
		TenantID:     tenantID,
		FamilyHeadID: familyHeadID,
		Name:         req.Name,
		Age:          req.Age,
		Gender:       req.Gender,
	}
	if req.GuestUserID != nil {
		userID, err := uuid.Parse(*req.GuestUserID)
		if err != nil {
			h.BadRequest(c, "Invalid guest user ID")
			return
		}
		appReq.GuestUserID = &userID
	}

	guest, err := h.registryService.RegisterGuest(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, guest)
}

// ListGuests returns the travelers registered under a family head.
func (h *FamilyHandler) ListGuests(c *gin.Context) {
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

	guests, err := h.registryService.ListGuests(c.Request.Context(), tenantID, familyHeadID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, guests)
}
