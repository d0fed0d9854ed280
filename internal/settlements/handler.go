package settlements

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sofraeats/marketplace/pkg/common"
	"github.com/sofraeats/marketplace/pkg/middleware"
	"github.com/sofraeats/marketplace/pkg/models"
	"github.com/sofraeats/marketplace/pkg/pagination"
)

// Handler handles HTTP requests for settlements
type Handler struct {
	service *Service
}

// NewHandler creates a new settlements handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListMine handles the merchant's own settlement listing
func (h *Handler) ListMine(c *gin.Context) {
	callerID, err := middleware.GetProfileID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	params := pagination.ParseParams(c)
	page, err := h.service.ListMySettlements(c.Request.Context(), callerID, params.Page, params.PageSize, parseListFilters(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.SuccessResponseWithMeta(c, page.Data, pagination.BuildMeta(page.Page, page.PageSize, page.Count))
}

// GetDetail handles the settlement detail view with payout history
func (h *Handler) GetDetail(c *gin.Context) {
	callerID, err := middleware.GetProfileID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	role, _ := middleware.GetProfileRole(c)

	settlementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid settlement ID")
		return
	}

	detail, err := h.service.GetDetail(c.Request.Context(), settlementID, callerID, role)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.SuccessResponse(c, detail)
}

// MyCommissionSummary handles the merchant's commission dashboard widget
func (h *Handler) MyCommissionSummary(c *gin.Context) {
	callerID, err := middleware.GetProfileID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	from, to := parseDateRange(c)
	summary, err := h.service.MyCommissionSummary(c.Request.Context(), callerID, from, to)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.SuccessResponse(c, summary)
}

func parseListFilters(c *gin.Context) ListFilters {
	var filters ListFilters
	if raw := c.Query("status"); raw != "" {
		status := models.SettlementStatus(raw)
		filters.Status = &status
	}
	from, to := parseDateRange(c)
	if !from.IsZero() {
		filters.From = &from
	}
	if !to.IsZero() {
		filters.To = &to
	}
	return filters
}

func parseDateRange(c *gin.Context) (from, to time.Time) {
	if raw := c.Query("from"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			from = t
		}
	}
	if raw := c.Query("to"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			to = t
		}
	}
	return from, to
}
