package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sofraeats/marketplace/internal/orders"
	"github.com/sofraeats/marketplace/internal/providers"
	"github.com/sofraeats/marketplace/internal/profiles"
	"github.com/sofraeats/marketplace/internal/settlements"
	"github.com/sofraeats/marketplace/pkg/common"
	"github.com/sofraeats/marketplace/pkg/middleware"
	"github.com/sofraeats/marketplace/pkg/models"
	"github.com/sofraeats/marketplace/pkg/pagination"
)

// Handler handles back-office HTTP requests. The admin-role guard runs in
// middleware before any of these.
type Handler struct {
	service *Service
}

// NewHandler creates a new admin handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Dashboard handles the platform snapshot
func (h *Handler) Dashboard(c *gin.Context) {
	stats, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.SuccessResponse(c, stats)
}

// PendingProviders handles listing applications awaiting review
func (h *Handler) PendingProviders(c *gin.Context) {
	params := pagination.ParseParams(c)
	page, err := h.service.providers.PendingApplications(c.Request.Context(), params.Page, params.PageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.SuccessResponseWithMeta(c, page.Data, pagination.BuildMeta(page.Page, page.PageSize, page.Count))
}

// ListProviders handles the unscoped provider listing
func (h *Handler) ListProviders(c *gin.Context) {
	params := pagination.ParseParams(c)
	var filters providers.ListFilters
	if raw := c.Query("status"); raw != "" {
		status := models.ProviderStatus(raw)
		filters.Status = &status
	}
	filters.Search = c.Query("search")

	page, err := h.service.providers.List(c.Request.Context(), params.Page, params.PageSize, filters, providers.SortNewest)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.SuccessResponseWithMeta(c, page.Data, pagination.BuildMeta(page.Page, page.PageSize, page.Count))
}

// ApproveProvider handles accepting an application
func (h *Handler) ApproveProvider(c *gin.Context) {
	actorID, providerID, ok := h.actorAndTarget(c, "id")
	if !ok {
		return
	}

	var req models.ProviderApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	provider, err := h.service.ApproveProvider(c.Request.Context(), actorID, providerID, &req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.SuccessResponse(c, provider)
}

// RejectProvider handles declining an application
func (h *Handler) RejectProvider(c *gin.Context) {
	actorID, providerID, ok := h.actorAndTarget(c, "id")
	if !ok {
		return
	}

	var req models.ProviderRejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	provider, err := h.service.RejectProvider(c.Request.Context(), actorID, providerID, req.Reason)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.SuccessResponse(c, provider)
}

// SuspendProvider handles taking a provider off the marketplace
func (h *Handler) SuspendProvider(c *gin.Context) {
	actorID, providerID, ok := h.actorAndTarget(c, "id")
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	provider, err := h.service.SuspendProvider(c.Request.Context(), actorID, providerID, req.Reason)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.SuccessResponse(c, provider)
}

// ReinstateProvider handles lifting a suspension
func (h *Handler) ReinstateProvider(c *gin.Context) {
	actorID, providerID, ok := h.actorAndTarget(c, "id")
	if !ok {
		return
	}

	provider, err := h.service.ReinstateProvider(c.Request.Context(), actorID, providerID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.SuccessResponse(c, provider)
}

// SetProviderFeatured handles toggling the featured flag
func (h *Handler) SetProviderFeatured(c *gin.Context) {
	actorID, providerID, ok := h.actorAndTarget(c, "id")
	if !ok {
		return
	}

	var req struct {
		Featured bool `json:"featured"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	provider, err := h.service.SetProviderFeatured(c.Request.Context(), actorID, providerID, req.Featured)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.SuccessResponse(c, provider)
}

// ListProfiles handles the profile listing
func (h *Handler) ListProfiles(c *gin.Context) {
	params := pagination.ParseParams(c)
	var filters profiles.ListFilters
	if raw := c.Query("role"); raw != "" {
		role := models.ProfileRole(raw)
		filters.Role = &role
	}
	filters.Search = c.Query("search")

	page, err := h.service.profiles.ListProfiles(c.Request.Context(), params.Page, params.PageSize, filters)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.SuccessResponseWithMeta(c, page.Data, pagination.BuildMeta(page.Page, page.PageSize, page.Count))
}

// ChangeProfileRole handles promoting or demoting a profile
func (h *Handler) ChangeProfileRole(c *gin.Context) {
	actorID, profileID, ok := h.actorAndTarget(c, "id")
	if !ok {
		return
	}

	var req models.RoleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.service.ChangeProfileRole(c.Request.Context(), actorID, profileID, req.Role)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.SuccessResponse(c, profile)
}

// DeactivateProfile handles turning a profile off
func (h *Handler) DeactivateProfile(c *gin.Context) {
	actorID, profileID, ok := h.actorAndTarget(c, "id")
	if !ok {
		return
	}

	profile, err := h.service.DeactivateProfile(c.Request.Context(), actorID, profileID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.SuccessResponse(c, profile)
}

// ReactivateProfile handles turning a profile back on
func (h *Handler) ReactivateProfile(c *gin.Context) {
	actorID, profileID, ok := h.actorAndTarget(c, "id")
	if !ok {
		return
	}

	profile, err := h.service.ReactivateProfile(c.Request.Context(), actorID, profileID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.SuccessResponse(c, profile)
}

// ListOrders handles the unscoped order listing
func (h *Handler) ListOrders(c *gin.Context) {
	params := pagination.ParseParams(c)
	var filters orders.ListFilters
	if raw := c.Query("status"); raw != "" {
		status := models.OrderStatus(raw)
		filters.Status = &status
	}

	page, err := h.service.orders.ListOrders(c.Request.Context(), params.Page, params.PageSize, filters, nil)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.SuccessResponseWithMeta(c, page.Data, pagination.BuildMeta(page.Page, page.PageSize, page.Count))
}

// RefundOrder handles issuing a refund
func (h *Handler) RefundOrder(c *gin.Context) {
	actorID, orderID, ok := h.actorAndTarget(c, "id")
	if !ok {
		return
	}

	var req struct {
		Reason *string `json:"reason,omitempty"`
	}
	_ = c.ShouldBindJSON(&req)

	order, err := h.service.RefundOrder(c.Request.Context(), actorID, orderID, req.Reason)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.SuccessResponse(c, order)
}

// ListSettlements handles the unscoped settlement listing
func (h *Handler) ListSettlements(c *gin.Context) {
	params := pagination.ParseParams(c)
	var filters settlements.ListFilters
	if raw := c.Query("status"); raw != "" {
		status := models.SettlementStatus(raw)
		filters.Status = &status
	}
	if raw := c.Query("provider_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filters.ProviderID = &id
		}
	}

	page, err := h.service.settlements.ListSettlements(c.Request.Context(), params.Page, params.PageSize, filters)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.SuccessResponseWithMeta(c, page.Data, pagination.BuildMeta(page.Page, page.PageSize, page.Count))
}

// RecordPayout handles opening a payout attempt
func (h *Handler) RecordPayout(c *gin.Context) {
	actorID, err := middleware.GetProfileID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.PayoutCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	payout, err := h.service.RecordPayout(c.Request.Context(), actorID, &req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.CreatedResponse(c, payout)
}

// CompletePayout handles finishing a payout
func (h *Handler) CompletePayout(c *gin.Context) {
	actorID, payoutID, ok := h.actorAndTarget(c, "id")
	if !ok {
		return
	}

	var req struct {
		Reference *string `json:"reference,omitempty"`
	}
	_ = c.ShouldBindJSON(&req)

	payout, err := h.service.CompletePayout(c.Request.Context(), actorID, payoutID, req.Reference)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.SuccessResponse(c, payout)
}

// SettlementDetail handles loading a settlement with its payout history
func (h *Handler) SettlementDetail(c *gin.Context) {
	actorID, settlementID, ok := h.actorAndTarget(c, "id")
	if !ok {
		return
	}

	detail, err := h.service.SettlementDetail(c.Request.Context(), actorID, settlementID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.SuccessResponse(c, detail)
}

// StartPayout handles marking a payout as in flight
func (h *Handler) StartPayout(c *gin.Context) {
	actorID, payoutID, ok := h.actorAndTarget(c, "id")
	if !ok {
		return
	}

	payout, err := h.service.StartPayout(c.Request.Context(), actorID, payoutID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.SuccessResponse(c, payout)
}

// FailPayout handles recording a failed payout attempt
func (h *Handler) FailPayout(c *gin.Context) {
	actorID, payoutID, ok := h.actorAndTarget(c, "id")
	if !ok {
		return
	}

	var req struct {
		Note string `json:"note" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	payout, err := h.service.FailPayout(c.Request.Context(), actorID, payoutID, req.Note)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.SuccessResponse(c, payout)
}

// AuditTrail handles paging through the audit log
func (h *Handler) AuditTrail(c *gin.Context) {
	params := pagination.ParseParams(c)
	var filters AuditFilters
	filters.Action = c.Query("action")
	if raw := c.Query("actor_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filters.ActorID = &id
		}
	}

	page, err := h.service.AuditTrail(c.Request.Context(), params.Page, params.PageSize, filters)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.SuccessResponseWithMeta(c, page.Data, pagination.BuildMeta(page.Page, page.PageSize, page.Count))
}

func (h *Handler) actorAndTarget(c *gin.Context, param string) (actorID, targetID uuid.UUID, ok bool) {
	actorID, err := middleware.GetProfileID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, uuid.Nil, false
	}
	targetID, err = uuid.Parse(c.Param(param))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid ID")
		return uuid.Nil, uuid.Nil, false
	}
	return actorID, targetID, true
}
