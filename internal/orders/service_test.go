package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofraeats/marketplace/pkg/common"
	"github.com/sofraeats/marketplace/pkg/eventbus"
	"github.com/sofraeats/marketplace/pkg/models"
	"github.com/sofraeats/marketplace/pkg/repository"
)

// mockRepository is a stateful in-memory stand-in for the pgx repository.
type mockRepository struct {
	orders        map[uuid.UUID]models.Order
	items         map[uuid.UUID][]models.OrderItem
	createErr     error
	updateErr     error
	lastExtra     repository.Values
	lastNewStatus models.OrderStatus
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		orders: make(map[uuid.UUID]models.Order),
		items:  make(map[uuid.UUID][]models.OrderItem),
	}
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return models.Order{}, repository.ErrNotFound
	}
	return order, nil
}

func (m *mockRepository) GetItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	return m.items[orderID], nil
}

func (m *mockRepository) GetDetail(ctx context.Context, id uuid.UUID) (models.OrderDetail, error) {
	order, ok := m.orders[id]
	if !ok {
		return models.OrderDetail{}, repository.ErrNotFound
	}
	return models.OrderDetail{Order: order, Items: m.items[id]}, nil
}

func (m *mockRepository) List(ctx context.Context, page, pageSize int, filters ListFilters, sort *repository.Sort) (repository.Page[models.Order], error) {
	var matched []models.Order
	for _, order := range m.orders {
		if filters.CustomerID != nil && order.CustomerID != *filters.CustomerID {
			continue
		}
		if filters.ProviderID != nil && order.ProviderID != *filters.ProviderID {
			continue
		}
		if filters.Status != nil && order.Status != *filters.Status {
			continue
		}
		matched = append(matched, order)
	}
	return repository.Page[models.Order]{Data: matched, Count: int64(len(matched)), Page: page, PageSize: pageSize}, nil
}

func (m *mockRepository) CreateWithItems(ctx context.Context, order *models.Order, items []models.OrderItem) (models.Order, error) {
	if m.createErr != nil {
		return models.Order{}, m.createErr
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	m.orders[order.ID] = *order
	m.items[order.ID] = items
	return *order, nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus, extra repository.Values) (models.Order, error) {
	if m.updateErr != nil {
		return models.Order{}, m.updateErr
	}
	order, ok := m.orders[id]
	if !ok {
		return models.Order{}, repository.ErrNotFound
	}
	order.Status = status
	if v, ok := extra["payment_status"]; ok {
		order.PaymentStatus = v.(models.PaymentStatus)
	}
	if v, ok := extra["cancellation_reason"]; ok {
		reason := v.(string)
		order.CancellationReason = &reason
	}
	m.orders[id] = order
	m.lastExtra = extra
	m.lastNewStatus = status
	return order, nil
}

func (m *mockRepository) CountByStatus(ctx context.Context, providerID uuid.UUID, status models.OrderStatus) (int64, error) {
	var n int64
	for _, order := range m.orders {
		if order.ProviderID == providerID && order.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *mockRepository) GetStatistics(ctx context.Context, providerID *uuid.UUID, from, to time.Time) (Statistics, error) {
	var rows []models.Order
	for _, order := range m.orders {
		if providerID != nil && order.ProviderID != *providerID {
			continue
		}
		rows = append(rows, order)
	}
	return aggregate(rows), nil
}

func (m *mockRepository) RecentForCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]models.Order, error) {
	var out []models.Order
	for _, order := range m.orders {
		if order.CustomerID == customerID {
			out = append(out, order)
		}
	}
	return out, nil
}

func (m *mockRepository) ActiveForProvider(ctx context.Context, providerID uuid.UUID) ([]models.Order, error) {
	var out []models.Order
	for _, order := range m.orders {
		if order.ProviderID == providerID && !order.Status.IsClosed() {
			out = append(out, order)
		}
	}
	return out, nil
}

type mockProviders struct {
	providers map[uuid.UUID]models.Provider
}

func (m *mockProviders) GetByID(ctx context.Context, id uuid.UUID) (models.Provider, error) {
	provider, ok := m.providers[id]
	if !ok {
		return models.Provider{}, repository.ErrNotFound
	}
	return provider, nil
}

type mockProducts struct {
	products map[uuid.UUID]models.Product
}

func (m *mockProducts) GetProduct(ctx context.Context, id uuid.UUID) (models.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return models.Product{}, repository.ErrNotFound
	}
	return product, nil
}

type mockCounters struct {
	calls  int
	lastID uuid.UUID
	amount float64
	err    error
}

func (m *mockCounters) IncrementOrderCounters(ctx context.Context, profileID uuid.UUID, amount float64) error {
	m.calls++
	m.lastID = profileID
	m.amount = amount
	return m.err
}

type mockBus struct {
	subjects []string
	events   []*eventbus.Event
}

func (m *mockBus) Publish(ctx context.Context, subject string, event *eventbus.Event) error {
	m.subjects = append(m.subjects, subject)
	m.events = append(m.events, event)
	return nil
}

func openProvider() models.Provider {
	return models.Provider{
		ID:             uuid.New(),
		Status:         models.ProviderStatusOpen,
		CommissionRate: 0.15,
		DeliveryFee:    10,
		MinOrderAmount: 5,
	}
}

func fixture() (*Service, *mockRepository, *mockProviders, *mockProducts, *mockBus) {
	repo := newMockRepository()
	providers := &mockProviders{providers: make(map[uuid.UUID]models.Provider)}
	products := &mockProducts{products: make(map[uuid.UUID]models.Product)}
	bus := &mockBus{}

	svc := NewService(repo, providers, products, "test")
	svc.SetEventPublisher(bus)
	return svc, repo, providers, products, bus
}

func TestPlaceOrder_PricesAndCommission(t *testing.T) {
	svc, repo, providers, products, bus := fixture()

	provider := openProvider()
	providers.providers[provider.ID] = provider

	productID := uuid.New()
	products.products[productID] = models.Product{
		ID: productID, ProviderID: provider.ID, NameEn: "Shawarma", NameAr: "شاورما",
		Price: 2.5, IsAvailable: true,
	}

	customerID := uuid.New()
	order, err := svc.PlaceOrder(context.Background(), customerID, &models.OrderCreateRequest{
		ProviderID:      provider.ID,
		Items:           []models.OrderItemCreateRequest{{ProductID: productID, Quantity: 4}},
		PaymentMethod:   models.PaymentMethodCash,
		DeliveryAddress: "12 Corniche St",
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, 10.0, order.Subtotal)
	assert.Equal(t, 10.0, order.DeliveryFee)
	assert.Equal(t, 20.0, order.Total)
	assert.InDelta(t, 3.0, order.PlatformCommission, 0.001) // 15% of 20

	items := repo.items[order.ID]
	require.Len(t, items, 1)
	assert.Equal(t, 10.0, items[0].Subtotal)

	require.Len(t, bus.subjects, 1)
	assert.Equal(t, eventbus.SubjectOrderPlaced, bus.subjects[0])
}

func TestPlaceOrder_GracePeriodZeroesCommission(t *testing.T) {
	svc, _, providers, products, _ := fixture()

	provider := openProvider()
	until := time.Now().Add(24 * time.Hour)
	provider.GracePeriodUntil = &until
	providers.providers[provider.ID] = provider

	productID := uuid.New()
	products.products[productID] = models.Product{
		ID: productID, ProviderID: provider.ID, Price: 20, IsAvailable: true,
	}

	order, err := svc.PlaceOrder(context.Background(), uuid.New(), &models.OrderCreateRequest{
		ProviderID:      provider.ID,
		Items:           []models.OrderItemCreateRequest{{ProductID: productID, Quantity: 1}},
		PaymentMethod:   models.PaymentMethodCard,
		DeliveryAddress: "somewhere",
	})
	require.NoError(t, err)
	assert.Zero(t, order.PlatformCommission)
}

func TestPlaceOrder_ProviderNotOpen(t *testing.T) {
	svc, _, providers, _, _ := fixture()

	provider := openProvider()
	provider.Status = models.ProviderStatusClosed
	providers.providers[provider.ID] = provider

	_, err := svc.PlaceOrder(context.Background(), uuid.New(), &models.OrderCreateRequest{
		ProviderID:      provider.ID,
		Items:           []models.OrderItemCreateRequest{{ProductID: uuid.New(), Quantity: 1}},
		PaymentMethod:   models.PaymentMethodCash,
		DeliveryAddress: "x",
	})
	require.Error(t, err)

	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 409, appErr.Code)
}

func TestPlaceOrder_BelowMinimum(t *testing.T) {
	svc, _, providers, products, _ := fixture()

	provider := openProvider()
	provider.MinOrderAmount = 50
	providers.providers[provider.ID] = provider

	productID := uuid.New()
	products.products[productID] = models.Product{
		ID: productID, ProviderID: provider.ID, Price: 3, IsAvailable: true,
	}

	_, err := svc.PlaceOrder(context.Background(), uuid.New(), &models.OrderCreateRequest{
		ProviderID:      provider.ID,
		Items:           []models.OrderItemCreateRequest{{ProductID: productID, Quantity: 2}},
		PaymentMethod:   models.PaymentMethodCash,
		DeliveryAddress: "x",
	})
	require.Error(t, err)

	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 400, appErr.Code)
}

func TestPlaceOrder_ForeignProduct(t *testing.T) {
	svc, _, providers, products, _ := fixture()

	provider := openProvider()
	providers.providers[provider.ID] = provider

	productID := uuid.New()
	products.products[productID] = models.Product{
		ID: productID, ProviderID: uuid.New(), Price: 5, IsAvailable: true,
	}

	_, err := svc.PlaceOrder(context.Background(), uuid.New(), &models.OrderCreateRequest{
		ProviderID:      provider.ID,
		Items:           []models.OrderItemCreateRequest{{ProductID: productID, Quantity: 1}},
		PaymentMethod:   models.PaymentMethodCash,
		DeliveryAddress: "x",
	})
	assert.Error(t, err)
}

func seedOrder(repo *mockRepository, providerID uuid.UUID, status models.OrderStatus) models.Order {
	order := models.Order{
		ID:                 uuid.New(),
		CustomerID:         uuid.New(),
		ProviderID:         providerID,
		Status:             status,
		Total:              30,
		PlatformCommission: 4.5,
		PaymentMethod:      models.PaymentMethodCash,
		PaymentStatus:      models.PaymentStatusPending,
		CreatedAt:          time.Now(),
	}
	repo.orders[order.ID] = order
	return order
}

func TestUpdateStatusByProvider_HappyPath(t *testing.T) {
	svc, repo, providers, _, bus := fixture()

	provider := openProvider()
	providers.providers[provider.ID] = provider
	order := seedOrder(repo, provider.ID, models.OrderStatusPending)

	updated, err := svc.UpdateStatusByProvider(context.Background(), order.ID, provider.ID, &models.OrderStatusUpdateRequest{
		Status: models.OrderStatusConfirmed,
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, updated.Status)
	assert.Equal(t, []string{eventbus.SubjectOrderConfirmed}, bus.subjects)
}

func TestUpdateStatusByProvider_IllegalTransition(t *testing.T) {
	svc, repo, providers, _, _ := fixture()

	provider := openProvider()
	providers.providers[provider.ID] = provider
	order := seedOrder(repo, provider.ID, models.OrderStatusPending)

	_, err := svc.UpdateStatusByProvider(context.Background(), order.ID, provider.ID, &models.OrderStatusUpdateRequest{
		Status: models.OrderStatusDelivered,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidTransition))

	// Order untouched.
	assert.Equal(t, models.OrderStatusPending, repo.orders[order.ID].Status)
}

func TestUpdateStatusByProvider_WrongProvider(t *testing.T) {
	svc, repo, providers, _, _ := fixture()

	provider := openProvider()
	providers.providers[provider.ID] = provider
	order := seedOrder(repo, provider.ID, models.OrderStatusPending)

	_, err := svc.UpdateStatusByProvider(context.Background(), order.ID, uuid.New(), &models.OrderStatusUpdateRequest{
		Status: models.OrderStatusConfirmed,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrForbidden))
}

func TestUpdateStatusByProvider_RefundRefused(t *testing.T) {
	svc, repo, providers, _, _ := fixture()

	provider := openProvider()
	providers.providers[provider.ID] = provider
	order := seedOrder(repo, provider.ID, models.OrderStatusDelivered)

	_, err := svc.UpdateStatusByProvider(context.Background(), order.ID, provider.ID, &models.OrderStatusUpdateRequest{
		Status: models.OrderStatusRefunded,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrForbidden))
}

func TestTransition_DeliveredMarksCashPaidAndBumpsCounters(t *testing.T) {
	svc, repo, providers, _, _ := fixture()
	counters := &mockCounters{}
	svc.SetCounterUpdater(counters)

	provider := openProvider()
	providers.providers[provider.ID] = provider
	order := seedOrder(repo, provider.ID, models.OrderStatusDelivering)

	updated, err := svc.UpdateStatusByProvider(context.Background(), order.ID, provider.ID, &models.OrderStatusUpdateRequest{
		Status: models.OrderStatusDelivered,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, updated.PaymentStatus)
	assert.Equal(t, 1, counters.calls)
	assert.Equal(t, order.CustomerID, counters.lastID)
	assert.Equal(t, order.Total, counters.amount)
}

func TestTransition_CounterFailureDoesNotFailDelivery(t *testing.T) {
	svc, repo, providers, _, _ := fixture()
	counters := &mockCounters{err: errors.New("profiles down")}
	svc.SetCounterUpdater(counters)

	provider := openProvider()
	providers.providers[provider.ID] = provider
	order := seedOrder(repo, provider.ID, models.OrderStatusDelivering)

	_, err := svc.UpdateStatusByProvider(context.Background(), order.ID, provider.ID, &models.OrderStatusUpdateRequest{
		Status: models.OrderStatusDelivered,
	})
	assert.NoError(t, err)
}

func TestCancelByCustomer(t *testing.T) {
	svc, repo, providers, _, bus := fixture()

	provider := openProvider()
	providers.providers[provider.ID] = provider
	order := seedOrder(repo, provider.ID, models.OrderStatusPending)

	reason := "changed my mind"
	updated, err := svc.CancelByCustomer(context.Background(), order.ID, order.CustomerID, &reason)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, updated.Status)
	require.NotNil(t, updated.CancellationReason)
	assert.Equal(t, reason, *updated.CancellationReason)
	assert.Equal(t, []string{eventbus.SubjectOrderCancelled}, bus.subjects)
}

func TestCancelByCustomer_TooLate(t *testing.T) {
	svc, repo, providers, _, _ := fixture()

	provider := openProvider()
	providers.providers[provider.ID] = provider
	order := seedOrder(repo, provider.ID, models.OrderStatusPreparing)

	_, err := svc.CancelByCustomer(context.Background(), order.ID, order.CustomerID, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidTransition))
}

func TestCancelByCustomer_NotOwner(t *testing.T) {
	svc, repo, providers, _, _ := fixture()

	provider := openProvider()
	providers.providers[provider.ID] = provider
	order := seedOrder(repo, provider.ID, models.OrderStatusPending)

	_, err := svc.CancelByCustomer(context.Background(), order.ID, uuid.New(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrForbidden))
}

func TestAdminUpdateStatus_RefundFromDelivered(t *testing.T) {
	svc, repo, providers, _, _ := fixture()

	provider := openProvider()
	providers.providers[provider.ID] = provider
	order := seedOrder(repo, provider.ID, models.OrderStatusDelivered)

	updated, err := svc.AdminUpdateStatus(context.Background(), order.ID, models.OrderStatusRefunded, nil)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusRefunded, updated.Status)
	assert.Equal(t, models.PaymentStatusRefunded, updated.PaymentStatus)
}

func TestGetOrderDetail_Access(t *testing.T) {
	svc, repo, providers, _, _ := fixture()

	provider := openProvider()
	providers.providers[provider.ID] = provider
	order := seedOrder(repo, provider.ID, models.OrderStatusPending)

	_, err := svc.GetOrderDetail(context.Background(), order.ID, order.CustomerID, models.RoleCustomer)
	assert.NoError(t, err)

	_, err = svc.GetOrderDetail(context.Background(), order.ID, uuid.New(), models.RoleCustomer)
	assert.Error(t, err)

	_, err = svc.GetOrderDetail(context.Background(), order.ID, uuid.New(), models.RoleAdmin)
	assert.NoError(t, err)
}

func TestGetStatistics_DefaultsWindow(t *testing.T) {
	svc, repo, providers, _, _ := fixture()

	provider := openProvider()
	providers.providers[provider.ID] = provider

	delivered := seedOrder(repo, provider.ID, models.OrderStatusDelivered)
	seedOrder(repo, provider.ID, models.OrderStatusCancelled)
	seedOrder(repo, provider.ID, models.OrderStatusPending)

	stats, err := svc.GetStatistics(context.Background(), &provider.ID, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalOrders)
	assert.Equal(t, int64(1), stats.ByStatus[models.OrderStatusDelivered])
	assert.Equal(t, delivered.Total, stats.TotalRevenue)
	assert.Equal(t, delivered.PlatformCommission, stats.TotalCommission)
}

func TestGetStatistics_RejectsBackwardsRange(t *testing.T) {
	svc, _, _, _, _ := fixture()

	now := time.Now()
	_, err := svc.GetStatistics(context.Background(), nil, now, now.Add(-time.Hour))
	assert.Error(t, err)
}
