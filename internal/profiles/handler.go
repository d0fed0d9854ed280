package profiles

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sofraeats/marketplace/pkg/common"
	"github.com/sofraeats/marketplace/pkg/middleware"
	"github.com/sofraeats/marketplace/pkg/models"
)

// Handler handles HTTP requests for profiles
type Handler struct {
	service *Service
}

// NewHandler creates a new profiles handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register resolves the caller's auth identity to a profile, creating a
// customer profile on first contact. Safe to call on every login.
func (h *Handler) Register(c *gin.Context) {
	authID, err := middleware.GetAuthID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		FullName string `json:"full_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.service.Ensure(c.Request.Context(), authID, req.FullName)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.SuccessResponse(c, profile)
}

// GetMe handles fetching the caller's own profile
func (h *Handler) GetMe(c *gin.Context) {
	callerID, err := middleware.GetProfileID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), callerID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.SuccessResponse(c, profile)
}

// UpdateMe handles the caller editing their own profile
func (h *Handler) UpdateMe(c *gin.Context) {
	callerID, err := middleware.GetProfileID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.service.UpdateProfile(c.Request.Context(), callerID, &req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.SuccessResponse(c, profile)
}
