package orders

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sofraeats/marketplace/pkg/common"
	"github.com/sofraeats/marketplace/pkg/eventbus"
	"github.com/sofraeats/marketplace/pkg/logger"
	"github.com/sofraeats/marketplace/pkg/models"
	"github.com/sofraeats/marketplace/pkg/repository"
	"github.com/sofraeats/marketplace/pkg/tracing"
)

// Service handles order business logic
type Service struct {
	repo      RepositoryInterface
	providers ProviderReader
	products  ProductReader
	counters  CounterUpdater
	bus       EventPublisher
	source    string
}

// NewService creates a new orders service
func NewService(repo RepositoryInterface, providers ProviderReader, products ProductReader, source string) *Service {
	return &Service{
		repo:      repo,
		providers: providers,
		products:  products,
		source:    source,
	}
}

// SetEventPublisher wires lifecycle event publishing. Nil disables it.
func (s *Service) SetEventPublisher(bus EventPublisher) {
	s.bus = bus
}

// SetCounterUpdater wires profile counter increments on delivery.
func (s *Service) SetCounterUpdater(counters CounterUpdater) {
	s.counters = counters
}

// PlaceOrder prices and creates a new order for the customer.
func (s *Service) PlaceOrder(ctx context.Context, customerID uuid.UUID, req *models.OrderCreateRequest) (models.Order, error) {
	ctx, span := tracing.StartSpan(ctx, "orders-service", "PlaceOrder")
	defer span.End()

	provider, err := s.providers.GetByID(ctx, req.ProviderID)
	if err != nil {
		return models.Order{}, common.NewNotFoundError("provider not found", err)
	}
	if provider.Status != models.ProviderStatusOpen {
		return models.Order{}, common.NewConflictError("provider is not accepting orders")
	}

	var subtotal float64
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		product, err := s.products.GetProduct(ctx, line.ProductID)
		if err != nil {
			return models.Order{}, common.NewBadRequestError("unknown product in order", err)
		}
		if product.ProviderID != req.ProviderID {
			return models.Order{}, common.NewBadRequestError("product does not belong to this provider", nil)
		}
		if !product.IsAvailable {
			return models.Order{}, common.NewConflictError("product is currently unavailable")
		}

		lineSubtotal := round2(product.Price * float64(line.Quantity))
		items = append(items, models.OrderItem{
			ID:        uuid.New(),
			ProductID: product.ID,
			NameAr:    product.NameAr,
			NameEn:    product.NameEn,
			UnitPrice: product.Price,
			Quantity:  line.Quantity,
			Subtotal:  lineSubtotal,
		})
		subtotal += lineSubtotal
	}
	subtotal = round2(subtotal)

	if subtotal < provider.MinOrderAmount {
		return models.Order{}, common.NewBadRequestError("order is below the provider's minimum amount", nil)
	}

	total := round2(subtotal + provider.DeliveryFee)
	commission := round2(effectiveCommissionRate(&provider, time.Now()) * total)

	order := &models.Order{
		ID:                 uuid.New(),
		CustomerID:         customerID,
		ProviderID:         req.ProviderID,
		Status:             models.OrderStatusPending,
		Subtotal:           subtotal,
		DeliveryFee:        provider.DeliveryFee,
		Discount:           0,
		Total:              total,
		PlatformCommission: commission,
		PaymentMethod:      req.PaymentMethod,
		PaymentStatus:      models.PaymentStatusPending,
		DeliveryAddress:    req.DeliveryAddress,
		Notes:              req.Notes,
	}

	created, err := s.repo.CreateWithItems(ctx, order, items)
	if err != nil {
		tracing.RecordError(ctx, err)
		return models.Order{}, common.NewInternalError("failed to place order", err)
	}

	tracing.AddSpanAttributes(ctx, tracing.OrderAttributes(
		created.ID.String(), customerID.String(), req.ProviderID.String())...)
	tracing.AddSpanAttributes(ctx, tracing.OrderTotalKey.Float64(total))

	s.publish(ctx, eventbus.SubjectOrderPlaced, eventbus.OrderPlacedData{
		OrderID:         created.ID,
		CustomerID:      created.CustomerID,
		ProviderID:      created.ProviderID,
		Total:           created.Total,
		DeliveryFee:     created.DeliveryFee,
		PaymentMethod:   string(created.PaymentMethod),
		DeliveryAddress: created.DeliveryAddress,
		ItemCount:       len(items),
		PlacedAt:        created.CreatedAt,
	})

	return created, nil
}

// GetOrder retrieves an order by ID.
func (s *Service) GetOrder(ctx context.Context, orderID uuid.UUID) (models.Order, error) {
	return s.repo.GetByID(ctx, orderID)
}

// GetOrderDetail retrieves the joined detail view, enforcing that the caller
// is a party to the order (or an admin).
func (s *Service) GetOrderDetail(ctx context.Context, orderID, callerID uuid.UUID, role models.ProfileRole) (models.OrderDetail, error) {
	detail, err := s.repo.GetDetail(ctx, orderID)
	if err != nil {
		return models.OrderDetail{}, err
	}
	if role != models.RoleAdmin && detail.CustomerID != callerID {
		// Providers access orders through the provider-scoped listing, where
		// ownership is checked against the provider record.
		return models.OrderDetail{}, common.NewForbiddenError("not your order")
	}
	return detail, nil
}

// ListCustomerOrders pages through a customer's own orders.
func (s *Service) ListCustomerOrders(ctx context.Context, customerID uuid.UUID, page, pageSize int, filters ListFilters) (repository.Page[models.Order], error) {
	filters.CustomerID = &customerID
	return s.repo.List(ctx, page, pageSize, filters, SortNewest)
}

// ListProviderOrders pages through a provider's orders.
func (s *Service) ListProviderOrders(ctx context.Context, providerID uuid.UUID, page, pageSize int, filters ListFilters, sort *repository.Sort) (repository.Page[models.Order], error) {
	filters.ProviderID = &providerID
	return s.repo.List(ctx, page, pageSize, filters, sort)
}

// ListOrders pages through all orders without scoping. Admin only; the
// handler layer guards the role.
func (s *Service) ListOrders(ctx context.Context, page, pageSize int, filters ListFilters, sort *repository.Sort) (repository.Page[models.Order], error) {
	return s.repo.List(ctx, page, pageSize, filters, sort)
}

// ActiveOrders returns the provider's in-flight queue, oldest first.
func (s *Service) ActiveOrders(ctx context.Context, providerID uuid.UUID) ([]models.Order, error) {
	return s.repo.ActiveForProvider(ctx, providerID)
}

// RecentOrders returns the customer's latest orders.
func (s *Service) RecentOrders(ctx context.Context, customerID uuid.UUID, limit int) ([]models.Order, error) {
	return s.repo.RecentForCustomer(ctx, customerID, limit)
}

// UpdateStatusByProvider moves an order along its lifecycle on behalf of the
// provider that owns it.
func (s *Service) UpdateStatusByProvider(ctx context.Context, orderID, providerID uuid.UUID, req *models.OrderStatusUpdateRequest) (models.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if order.ProviderID != providerID {
		return models.Order{}, common.NewForbiddenError("not your order")
	}
	if req.Status == models.OrderStatusRefunded {
		return models.Order{}, common.NewForbiddenError("refunds are issued by the back-office")
	}
	return s.transition(ctx, order, req.Status, req.CancellationReason, "provider")
}

// CancelByCustomer cancels the customer's own order while it is still pending.
func (s *Service) CancelByCustomer(ctx context.Context, orderID, customerID uuid.UUID, reason *string) (models.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if order.CustomerID != customerID {
		return models.Order{}, common.NewForbiddenError("not your order")
	}
	if order.Status != models.OrderStatusPending {
		return models.Order{}, common.NewAppError(409, "order can no longer be cancelled", common.ErrInvalidTransition)
	}
	return s.transition(ctx, order, models.OrderStatusCancelled, reason, "customer")
}

// AdminUpdateStatus moves an order on behalf of the back-office. The
// transition table still applies; admins get no shortcuts through it.
func (s *Service) AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus, reason *string) (models.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	return s.transition(ctx, order, status, reason, "admin")
}

// GetStatistics aggregates orders over [from, to). A zero range defaults to
// the last 30 days.
func (s *Service) GetStatistics(ctx context.Context, providerID *uuid.UUID, from, to time.Time) (Statistics, error) {
	if from.IsZero() && to.IsZero() {
		to = time.Now()
		from = to.AddDate(0, 0, -30)
	}
	if !to.After(from) {
		return Statistics{}, common.NewBadRequestError("invalid date range", nil)
	}
	return s.repo.GetStatistics(ctx, providerID, from, to)
}

func (s *Service) transition(ctx context.Context, order models.Order, to models.OrderStatus, reason *string, actor string) (models.Order, error) {
	if !CanTransition(order.Status, to) {
		return models.Order{}, common.NewAppError(409, "illegal status transition", common.ErrInvalidTransition)
	}

	extra := repository.Values{}
	if to == models.OrderStatusCancelled && reason != nil {
		extra["cancellation_reason"] = *reason
	}
	if to == models.OrderStatusDelivered && order.PaymentMethod == models.PaymentMethodCash {
		// Cash settles at the door.
		extra["payment_status"] = models.PaymentStatusPaid
	}
	if to == models.OrderStatusRefunded {
		extra["payment_status"] = models.PaymentStatusRefunded
	}

	updated, err := s.repo.UpdateStatus(ctx, order.ID, to, extra)
	if err != nil {
		return models.Order{}, err
	}

	s.verifyCommission(ctx, &updated)

	if to == models.OrderStatusCancelled {
		s.publish(ctx, eventbus.SubjectOrderCancelled, eventbus.OrderCancelledData{
			OrderID:     updated.ID,
			CustomerID:  updated.CustomerID,
			ProviderID:  updated.ProviderID,
			CancelledBy: actor,
			Reason:      stringOrEmpty(reason),
			CancelledAt: time.Now().UTC(),
		})
	} else {
		s.publish(ctx, eventbus.SubjectForStatus(to), eventbus.OrderStatusChangedData{
			OrderID:    updated.ID,
			CustomerID: updated.CustomerID,
			ProviderID: updated.ProviderID,
			FromStatus: order.Status,
			ToStatus:   to,
			ChangedAt:  time.Now().UTC(),
		})
	}

	if to == models.OrderStatusDelivered && s.counters != nil {
		if err := s.counters.IncrementOrderCounters(ctx, updated.CustomerID, updated.Total); err != nil {
			// Counters are best-effort aggregates; the delivery stands.
			logger.WarnContext(ctx, "failed to bump profile counters",
				zap.String("order_id", updated.ID.String()),
				zap.Error(err),
			)
		}
	}

	return updated, nil
}

// verifyCommission cross-checks the stored commission against the provider's
// current rate. The stored value is canonical; a disagreement is only logged,
// never substituted.
func (s *Service) verifyCommission(ctx context.Context, order *models.Order) {
	provider, err := s.providers.GetByID(ctx, order.ProviderID)
	if err != nil {
		return
	}
	expected := round2(effectiveCommissionRate(&provider, order.CreatedAt) * order.Total)
	if math.Abs(expected-order.PlatformCommission) > 0.01 {
		logger.WarnContext(ctx, "stored commission disagrees with local formula",
			zap.String("order_id", order.ID.String()),
			zap.Float64("stored", order.PlatformCommission),
			zap.Float64("computed", expected),
			zap.Float64("rate", provider.CommissionRate),
		)
	}
}

// effectiveCommissionRate is the provider's rate, zeroed while the
// grace period is running at the given time.
func effectiveCommissionRate(provider *models.Provider, at time.Time) float64 {
	if provider.GracePeriodUntil != nil && at.Before(*provider.GracePeriodUntil) {
		return 0
	}
	return provider.CommissionRate
}

func (s *Service) publish(ctx context.Context, subject string, data interface{}) {
	if s.bus == nil || subject == "" {
		return
	}
	event, err := eventbus.NewEvent(subject, s.source, data)
	if err != nil {
		logger.WarnContext(ctx, "failed to build event", zap.String("subject", subject), zap.Error(err))
		return
	}
	if err := s.bus.Publish(ctx, subject, event); err != nil {
		logger.WarnContext(ctx, "failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
