package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sofraeats/marketplace/pkg/models"
	"github.com/sofraeats/marketplace/pkg/repository"
)

const (
	ordersTable     = "orders"
	orderItemsTable = "order_items"
)

// orderCols is the full projection, used as the default and re-selected by
// RETURNING on writes.
var orderCols = []string{
	"id", "customer_id", "provider_id", "status",
	"subtotal", "delivery_fee", "discount", "total", "platform_commission",
	"payment_method", "payment_status", "delivery_address", "notes",
	"cancellation_reason",
	"confirmed_at", "preparing_at", "ready_at", "delivering_at",
	"delivered_at", "cancelled_at", "refunded_at",
	"created_at", "updated_at",
}

// orderListCols is the narrow projection for list views.
var orderListCols = []string{
	"id", "customer_id", "provider_id", "status",
	"total", "payment_method", "payment_status", "created_at",
}

// orderStatsCols is the projection fetched for in-memory aggregation.
var orderStatsCols = []string{"status", "total", "platform_commission", "created_at"}

var orderItemCols = []string{
	"id", "order_id", "product_id", "name_ar", "name_en",
	"unit_price", "quantity", "subtotal",
}

// statusStampColumn maps each reachable status to the timestamp column
// stamped when the order first gets there. Pending has no stamp; created_at
// covers it.
var statusStampColumn = map[models.OrderStatus]string{
	models.OrderStatusConfirmed:  "confirmed_at",
	models.OrderStatusPreparing:  "preparing_at",
	models.OrderStatusReady:      "ready_at",
	models.OrderStatusDelivering: "delivering_at",
	models.OrderStatusDelivered:  "delivered_at",
	models.OrderStatusCancelled:  "cancelled_at",
	models.OrderStatusRefunded:   "refunded_at",
}

// ListFilters are the supported order listing predicates. They compile in a
// fixed order so the generated SQL is stable regardless of which are set.
type ListFilters struct {
	CustomerID    *uuid.UUID
	ProviderID    *uuid.UUID
	Status        *models.OrderStatus
	Statuses      []models.OrderStatus
	PaymentMethod *models.PaymentMethod
	From          *time.Time
	To            *time.Time
	// Search matches the delivery address, case-insensitive.
	Search string
}

func (f ListFilters) compile() []repository.Filter {
	var filters []repository.Filter
	if f.CustomerID != nil {
		filters = append(filters, repository.Eq("customer_id", *f.CustomerID))
	}
	if f.ProviderID != nil {
		filters = append(filters, repository.Eq("provider_id", *f.ProviderID))
	}
	if f.Status != nil {
		filters = append(filters, repository.Eq("status", *f.Status))
	} else if len(f.Statuses) > 0 {
		values := make([]interface{}, len(f.Statuses))
		for i, s := range f.Statuses {
			values[i] = s
		}
		filters = append(filters, repository.In("status", values...))
	}
	if f.PaymentMethod != nil {
		filters = append(filters, repository.Eq("payment_method", *f.PaymentMethod))
	}
	if f.From != nil {
		filters = append(filters, repository.Gte("created_at", *f.From))
	}
	if f.To != nil {
		filters = append(filters, repository.Lt("created_at", *f.To))
	}
	if f.Search != "" {
		filters = append(filters, repository.ILike("delivery_address", "%"+f.Search+"%"))
	}
	return filters
}

// Named sort strategies for order listings.
var (
	SortNewest    = repository.Desc("created_at")
	SortOldest    = repository.Asc("created_at")
	SortTotalDesc = repository.Desc("total")
)

// Statistics is the in-memory aggregation over a window of orders.
type Statistics struct {
	TotalOrders     int64                        `json:"total_orders"`
	TotalRevenue    float64                      `json:"total_revenue"`
	TotalCommission float64                      `json:"total_commission"`
	ByStatus        map[models.OrderStatus]int64 `json:"by_status"`
}

// Repository handles database access for orders and their line items.
type Repository struct {
	pool  *pgxpool.Pool
	base  *repository.Base[models.Order]
	items *repository.Base[models.OrderItem]
}

// NewRepository creates a new orders repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{
		pool:  pool,
		base:  repository.New[models.Order](pool, ordersTable, orderCols...),
		items: repository.New[models.OrderItem](pool, orderItemsTable, orderItemCols...),
	}
}

// GetByID fetches one order with the full projection.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (models.Order, error) {
	return r.base.FindByID(ctx, id)
}

// GetItems fetches the line items of an order.
func (r *Repository) GetItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	items, _, err := r.items.FindBy(ctx, "order_id", orderID, repository.Options{
		Sort: repository.Asc("id"),
	})
	return items, err
}

// GetDetail fetches the joined detail read model plus line items.
func (r *Repository) GetDetail(ctx context.Context, id uuid.UUID) (models.OrderDetail, error) {
	query := `
		SELECT o.id, o.customer_id, o.provider_id, o.status,
			   o.subtotal, o.delivery_fee, o.discount, o.total, o.platform_commission,
			   o.payment_method, o.payment_status, o.delivery_address, o.notes,
			   o.cancellation_reason,
			   o.confirmed_at, o.preparing_at, o.ready_at, o.delivering_at,
			   o.delivered_at, o.cancelled_at, o.refunded_at,
			   o.created_at, o.updated_at,
			   pr.full_name AS customer_name,
			   p.name_ar AS provider_name_ar, p.name_en AS provider_name_en
		FROM orders o
		JOIN profiles pr ON pr.id = o.customer_id
		JOIN providers p ON p.id = o.provider_id
		WHERE o.id = $1
	`

	var detail models.OrderDetail
	row := r.pool.QueryRow(ctx, query, id)
	err := row.Scan(
		&detail.ID, &detail.CustomerID, &detail.ProviderID, &detail.Status,
		&detail.Subtotal, &detail.DeliveryFee, &detail.Discount, &detail.Total, &detail.PlatformCommission,
		&detail.PaymentMethod, &detail.PaymentStatus, &detail.DeliveryAddress, &detail.Notes,
		&detail.CancellationReason,
		&detail.ConfirmedAt, &detail.PreparingAt, &detail.ReadyAt, &detail.DeliveringAt,
		&detail.DeliveredAt, &detail.CancelledAt, &detail.RefundedAt,
		&detail.CreatedAt, &detail.UpdatedAt,
		&detail.CustomerName, &detail.ProviderNameAr, &detail.ProviderNameEn,
	)
	if err != nil {
		return models.OrderDetail{}, fmt.Errorf("get order detail %s: %w", id, mapNoRows(err))
	}

	items, err := r.GetItems(ctx, id)
	if err != nil {
		return models.OrderDetail{}, err
	}
	detail.Items = items
	return detail, nil
}

// List pages through orders matching the filters with the narrow projection.
func (r *Repository) List(ctx context.Context, page, pageSize int, filters ListFilters, sort *repository.Sort) (repository.Page[models.Order], error) {
	if sort == nil {
		sort = SortNewest
	}
	return r.base.FindPaginated(ctx, page, pageSize, repository.Options{
		Select:  orderListCols,
		Filters: filters.compile(),
		Sort:    sort,
	})
}

// CreateWithItems inserts the order and its line items in one transaction.
// The returned order carries the generated columns.
func (r *Repository) CreateWithItems(ctx context.Context, order *models.Order, items []models.OrderItem) (models.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return models.Order{}, fmt.Errorf("begin create order: %w", err)
	}
	defer tx.Rollback(ctx)

	txOrders := repository.New[models.Order](tx, ordersTable, orderCols...)
	created, err := txOrders.Create(ctx, repository.Values{
		"id":                  order.ID,
		"customer_id":         order.CustomerID,
		"provider_id":         order.ProviderID,
		"status":              order.Status,
		"subtotal":            order.Subtotal,
		"delivery_fee":        order.DeliveryFee,
		"discount":            order.Discount,
		"total":               order.Total,
		"platform_commission": order.PlatformCommission,
		"payment_method":      order.PaymentMethod,
		"payment_status":      order.PaymentStatus,
		"delivery_address":    order.DeliveryAddress,
		"notes":               order.Notes,
	})
	if err != nil {
		return models.Order{}, err
	}

	rows := make([]repository.Values, len(items))
	for i, item := range items {
		rows[i] = repository.Values{
			"id":         item.ID,
			"order_id":   created.ID,
			"product_id": item.ProductID,
			"name_ar":    item.NameAr,
			"name_en":    item.NameEn,
			"unit_price": item.UnitPrice,
			"quantity":   item.Quantity,
			"subtotal":   item.Subtotal,
		}
	}
	txItems := repository.New[models.OrderItem](tx, orderItemsTable, orderItemCols...)
	if _, err := txItems.CreateMany(ctx, rows); err != nil {
		return models.Order{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Order{}, fmt.Errorf("commit create order: %w", err)
	}
	return created, nil
}

// UpdateStatus moves the order to status and stamps the matching reached-at
// column. Stamping overwrites; transition legality is enforced above this
// layer. extra carries additional columns to set in the same UPDATE
// (e.g. cancellation_reason).
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus, extra repository.Values) (models.Order, error) {
	values := repository.Values{
		"status":     status,
		"updated_at": time.Now(),
	}
	if col, ok := statusStampColumn[status]; ok {
		values[col] = time.Now()
	}
	for k, v := range extra {
		values[k] = v
	}
	return r.base.Update(ctx, id, values)
}

// CountByStatus counts orders of a provider in the given status.
func (r *Repository) CountByStatus(ctx context.Context, providerID uuid.UUID, status models.OrderStatus) (int64, error) {
	return r.base.Count(ctx,
		repository.Eq("provider_id", providerID),
		repository.Eq("status", status),
	)
}

// GetStatistics aggregates orders in [from, to) in memory. providerID narrows
// to one provider when non-nil. Recomputed per call, never cached.
func (r *Repository) GetStatistics(ctx context.Context, providerID *uuid.UUID, from, to time.Time) (Statistics, error) {
	filters := ListFilters{ProviderID: providerID, From: &from, To: &to}
	rows, _, err := r.base.FindAll(ctx, repository.Options{
		Select:  orderStatsCols,
		Filters: filters.compile(),
	})
	if err != nil {
		return Statistics{}, err
	}
	return aggregate(rows), nil
}

func aggregate(rows []models.Order) Statistics {
	stats := Statistics{ByStatus: make(map[models.OrderStatus]int64)}
	for _, row := range rows {
		stats.TotalOrders++
		stats.ByStatus[row.Status]++
		if row.Status == models.OrderStatusDelivered {
			stats.TotalRevenue += row.Total
			stats.TotalCommission += row.PlatformCommission
		}
	}
	return stats
}

// RecentForCustomer is a preset: the customer's latest orders.
func (r *Repository) RecentForCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = 10
	}
	items, _, err := r.base.FindBy(ctx, "customer_id", customerID, repository.Options{
		Select: orderListCols,
		Sort:   SortNewest,
		Limit:  limit,
	})
	return items, err
}

// ActiveForProvider is a preset: the provider's in-flight orders, oldest first
// so the kitchen works the queue in order.
func (r *Repository) ActiveForProvider(ctx context.Context, providerID uuid.UUID) ([]models.Order, error) {
	items, _, err := r.base.FindAll(ctx, repository.Options{
		Filters: []repository.Filter{
			repository.Eq("provider_id", providerID),
			repository.In("status",
				models.OrderStatusPending, models.OrderStatusConfirmed,
				models.OrderStatusPreparing, models.OrderStatusReady,
				models.OrderStatusDelivering,
			),
		},
		Sort: SortOldest,
	})
	return items, err
}

func mapNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}
