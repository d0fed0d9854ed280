package providers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sofraeats/marketplace/pkg/common"
	"github.com/sofraeats/marketplace/pkg/middleware"
	"github.com/sofraeats/marketplace/pkg/models"
	"github.com/sofraeats/marketplace/pkg/pagination"
	"github.com/sofraeats/marketplace/pkg/repository"
)

// Handler handles HTTP requests for providers
type Handler struct {
	service *Service
}

// NewHandler creates a new providers handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Browse handles the public storefront provider listing
func (h *Handler) Browse(c *gin.Context) {
	params := pagination.ParseParams(c)
	page, err := h.service.Browse(c.Request.Context(), params.Page, params.PageSize, parseListFilters(c), parseSort(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.SuccessResponseWithMeta(c, page.Data, pagination.BuildMeta(page.Page, page.PageSize, page.Count))
}

// Featured handles the featured-provider strip
func (h *Handler) Featured(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}
	featured, err := h.service.Featured(c.Request.Context(), limit)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.SuccessResponse(c, featured)
}

// GetProvider handles the public provider detail view
func (h *Handler) GetProvider(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("provider_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid provider ID")
		return
	}
	provider, err := h.service.GetPublic(c.Request.Context(), providerID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.SuccessResponse(c, provider)
}

// Apply handles a merchant submitting a provider application
func (h *Handler) Apply(c *gin.Context) {
	callerID, err := middleware.GetProfileID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.ProviderApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	provider, err := h.service.Apply(c.Request.Context(), callerID, &req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.CreatedResponse(c, provider)
}

// GetMine handles fetching the caller's own provider
func (h *Handler) GetMine(c *gin.Context) {
	callerID, err := middleware.GetProfileID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	provider, err := h.service.GetMine(c.Request.Context(), callerID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.SuccessResponse(c, provider)
}

// UpdateSettings handles the owner editing provider settings
func (h *Handler) UpdateSettings(c *gin.Context) {
	callerID, err := middleware.GetProfileID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.ProviderSettingsUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	provider, err := h.service.UpdateSettings(c.Request.Context(), callerID, &req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.SuccessResponse(c, provider)
}

// ChangeTradingStatus handles the owner toggling open/closed/paused/vacation
func (h *Handler) ChangeTradingStatus(c *gin.Context) {
	callerID, err := middleware.GetProfileID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.ProviderStatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	provider, err := h.service.ChangeTradingStatus(c.Request.Context(), callerID, req.Status)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.SuccessResponse(c, provider)
}

func parseListFilters(c *gin.Context) ListFilters {
	var filters ListFilters
	if raw := c.Query("status"); raw != "" {
		status := models.ProviderStatus(raw)
		filters.Status = &status
	}
	if raw := c.Query("category"); raw != "" {
		category := models.ProviderCategory(raw)
		filters.Category = &category
	}
	if raw := c.Query("governorate_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filters.GovernorateID = &id
		}
	}
	if raw := c.Query("city_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filters.CityID = &id
		}
	}
	if raw := c.Query("district_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filters.DistrictID = &id
		}
	}
	filters.FeaturedOnly = c.Query("featured") == "true"
	filters.Search = c.Query("search")
	return filters
}

func parseSort(c *gin.Context) *repository.Sort {
	switch c.Query("sort") {
	case "newest":
		return SortNewest
	case "name":
		return SortNameEn
	default:
		return SortTopRated
	}
}
