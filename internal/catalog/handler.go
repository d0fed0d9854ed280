package catalog

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sofraeats/marketplace/pkg/common"
	"github.com/sofraeats/marketplace/pkg/middleware"
	"github.com/sofraeats/marketplace/pkg/models"
	"github.com/sofraeats/marketplace/pkg/pagination"
)

// Handler handles HTTP requests for catalog editing and menu reads
type Handler struct {
	service *Service
}

// NewHandler creates a new catalog handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetMenu handles the public storefront menu view
func (h *Handler) GetMenu(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("provider_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid provider ID")
		return
	}

	menu, err := h.service.GetMenu(c.Request.Context(), providerID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	common.SuccessResponse(c, menu)
}

// ListCategories handles listing the caller's menu sections
func (h *Handler) ListCategories(c *gin.Context) {
	callerID, err := middleware.GetProfileID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	providerID, err := uuid.Parse(c.Param("provider_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid provider ID")
		return
	}

	categories, err := h.service.ListCategories(c.Request.Context(), providerID, callerID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	common.SuccessResponse(c, categories)
}

// CreateCategory handles adding a menu section
func (h *Handler) CreateCategory(c *gin.Context) {
	callerID, err := middleware.GetProfileID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	providerID, err := uuid.Parse(c.Param("provider_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid provider ID")
		return
	}

	var req models.CategoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	category, err := h.service.CreateCategory(c.Request.Context(), providerID, callerID, &req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	common.CreatedResponse(c, category)
}

// UpdateCategory handles editing a menu section
func (h *Handler) UpdateCategory(c *gin.Context) {
	callerID, err := middleware.GetProfileID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid category ID")
		return
	}

	var req models.CategoryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	category, err := h.service.UpdateCategory(c.Request.Context(), categoryID, callerID, &req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	common.SuccessResponse(c, category)
}

// DeleteCategory handles removing a menu section
func (h *Handler) DeleteCategory(c *gin.Context) {
	callerID, err := middleware.GetProfileID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid category ID")
		return
	}

	if err := h.service.DeleteCategory(c.Request.Context(), categoryID, callerID); err != nil {
		common.RespondWithError(c, err)
		return
	}

	common.SuccessResponse(c, gin.H{"deleted": true})
}

// ListProducts handles listing the caller's products
func (h *Handler) ListProducts(c *gin.Context) {
	callerID, err := middleware.GetProfileID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	providerID, err := uuid.Parse(c.Param("provider_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid provider ID")
		return
	}

	params := pagination.ParseParams(c)
	page, err := h.service.ListProducts(c.Request.Context(), providerID, callerID, params.Page, params.PageSize, parseProductFilters(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	common.SuccessResponseWithMeta(c, page.Data, pagination.BuildMeta(page.Page, page.PageSize, page.Count))
}

// CreateProduct handles adding a product
func (h *Handler) CreateProduct(c *gin.Context) {
	callerID, err := middleware.GetProfileID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	providerID, err := uuid.Parse(c.Param("provider_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid provider ID")
		return
	}

	var req models.ProductCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.service.CreateProduct(c.Request.Context(), providerID, callerID, &req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	common.CreatedResponse(c, product)
}

// UpdateProduct handles editing a product
func (h *Handler) UpdateProduct(c *gin.Context) {
	callerID, err := middleware.GetProfileID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid product ID")
		return
	}

	var req models.ProductUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.service.UpdateProduct(c.Request.Context(), productID, callerID, &req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	common.SuccessResponse(c, product)
}

// DeleteProduct handles removing a product
func (h *Handler) DeleteProduct(c *gin.Context) {
	callerID, err := middleware.GetProfileID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := h.service.DeleteProduct(c.Request.Context(), productID, callerID); err != nil {
		common.RespondWithError(c, err)
		return
	}

	common.SuccessResponse(c, gin.H{"deleted": true})
}

func parseProductFilters(c *gin.Context) ProductFilters {
	var filters ProductFilters
	if raw := c.Query("category_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filters.CategoryID = &id
		}
	}
	if raw := c.Query("available"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			filters.Available = &v
		}
	}
	return filters
}
