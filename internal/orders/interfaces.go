package orders

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sofraeats/marketplace/pkg/eventbus"
	"github.com/sofraeats/marketplace/pkg/models"
	"github.com/sofraeats/marketplace/pkg/repository"
)

// RepositoryInterface defines the contract for order repository operations
type RepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (models.Order, error)
	GetItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	GetDetail(ctx context.Context, id uuid.UUID) (models.OrderDetail, error)
	List(ctx context.Context, page, pageSize int, filters ListFilters, sort *repository.Sort) (repository.Page[models.Order], error)
	CreateWithItems(ctx context.Context, order *models.Order, items []models.OrderItem) (models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus, extra repository.Values) (models.Order, error)
	CountByStatus(ctx context.Context, providerID uuid.UUID, status models.OrderStatus) (int64, error)
	GetStatistics(ctx context.Context, providerID *uuid.UUID, from, to time.Time) (Statistics, error)
	RecentForCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]models.Order, error)
	ActiveForProvider(ctx context.Context, providerID uuid.UUID) ([]models.Order, error)
}

// ProviderReader is the slice of the providers module the order flow needs.
type ProviderReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (models.Provider, error)
}

// ProductReader is the slice of the catalog module the order flow needs.
type ProductReader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (models.Product, error)
}

// CounterUpdater bumps the running profile counters after a delivery.
type CounterUpdater interface {
	IncrementOrderCounters(ctx context.Context, profileID uuid.UUID, amount float64) error
}

// EventPublisher publishes lifecycle events. A nil publisher disables events.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, event *eventbus.Event) error
}
