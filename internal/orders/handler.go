package orders

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sofraeats/marketplace/pkg/common"
	"github.com/sofraeats/marketplace/pkg/middleware"
	"github.com/sofraeats/marketplace/pkg/models"
	"github.com/sofraeats/marketplace/pkg/pagination"
	"github.com/sofraeats/marketplace/pkg/repository"
)

// Handler handles HTTP requests for orders
type Handler struct {
	service *Service
}

// NewHandler creates a new orders handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// PlaceOrder handles a customer placing a new order
func (h *Handler) PlaceOrder(c *gin.Context) {
	customerID, err := middleware.GetProfileID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.OrderCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.service.PlaceOrder(c.Request.Context(), customerID, &req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	common.CreatedResponse(c, order)
}

// GetOrder handles fetching one order's detail view
func (h *Handler) GetOrder(c *gin.Context) {
	callerID, err := middleware.GetProfileID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	role, _ := middleware.GetProfileRole(c)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid order ID")
		return
	}

	detail, err := h.service.GetOrderDetail(c.Request.Context(), orderID, callerID, role)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	common.SuccessResponse(c, detail)
}

// ListMyOrders handles listing the authenticated customer's orders
func (h *Handler) ListMyOrders(c *gin.Context) {
	customerID, err := middleware.GetProfileID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	params := pagination.ParseParams(c)
	filters, err := parseListFilters(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.service.ListCustomerOrders(c.Request.Context(), customerID, params.Page, params.PageSize, filters)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	common.SuccessResponseWithMeta(c, page.Data, pagination.BuildMeta(page.Page, page.PageSize, page.Count))
}

// ListProviderOrders handles listing orders for the provider dashboard
func (h *Handler) ListProviderOrders(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("provider_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid provider ID")
		return
	}

	params := pagination.ParseParams(c)
	filters, err := parseListFilters(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.service.ListProviderOrders(c.Request.Context(), providerID, params.Page, params.PageSize, filters, parseSort(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	common.SuccessResponseWithMeta(c, page.Data, pagination.BuildMeta(page.Page, page.PageSize, page.Count))
}

// RecentOrders handles the customer's reorder shortcut list
func (h *Handler) RecentOrders(c *gin.Context) {
	customerID, err := middleware.GetProfileID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 5
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 20 {
			limit = n
		}
	}

	orders, err := h.service.RecentOrders(c.Request.Context(), customerID, limit)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	common.SuccessResponse(c, orders)
}

// ActiveOrders handles the provider's in-flight order queue
func (h *Handler) ActiveOrders(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("provider_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid provider ID")
		return
	}

	orders, err := h.service.ActiveOrders(c.Request.Context(), providerID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	common.SuccessResponse(c, orders)
}

// UpdateStatus handles a provider moving an order along its lifecycle
func (h *Handler) UpdateStatus(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("provider_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid provider ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid order ID")
		return
	}

	var req models.OrderStatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.service.UpdateStatusByProvider(c.Request.Context(), orderID, providerID, &req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	common.SuccessResponse(c, order)
}

// CancelOrder handles a customer cancelling a pending order
func (h *Handler) CancelOrder(c *gin.Context) {
	customerID, err := middleware.GetProfileID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid order ID")
		return
	}

	var req struct {
		Reason *string `json:"reason,omitempty"`
	}
	_ = c.ShouldBindJSON(&req)

	order, err := h.service.CancelByCustomer(c.Request.Context(), orderID, customerID, req.Reason)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	common.SuccessResponse(c, order)
}

// Statistics handles the provider statistics view
func (h *Handler) Statistics(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("provider_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid provider ID")
		return
	}

	from, to, err := parseDateRange(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	stats, err := h.service.GetStatistics(c.Request.Context(), &providerID, from, to)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	common.SuccessResponse(c, stats)
}

func parseListFilters(c *gin.Context) (ListFilters, error) {
	var filters ListFilters

	if raw := c.Query("status"); raw != "" {
		status := models.OrderStatus(raw)
		filters.Status = &status
	}
	if raw := c.Query("payment_method"); raw != "" {
		method := models.PaymentMethod(raw)
		filters.PaymentMethod = &method
	}
	filters.Search = c.Query("search")

	from, to, err := parseDateRange(c)
	if err != nil {
		return ListFilters{}, err
	}
	if !from.IsZero() {
		filters.From = &from
	}
	if !to.IsZero() {
		filters.To = &to
	}
	return filters, nil
}

func parseDateRange(c *gin.Context) (time.Time, time.Time, error) {
	var from, to time.Time
	var err error

	if raw := c.Query("from"); raw != "" {
		from, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if raw := c.Query("to"); raw != "" {
		to, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return from, to, nil
}

func parseSort(c *gin.Context) *repository.Sort {
	switch c.Query("sort") {
	case "oldest":
		return SortOldest
	case "total":
		return SortTotalDesc
	default:
		return SortNewest
	}
}
