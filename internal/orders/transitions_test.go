package orders

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/sofraeats/marketplace/pkg/models"
	"github.com/sofraeats/marketplace/pkg/repository"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from models.OrderStatus
		to   models.OrderStatus
		want bool
	}{
		{models.OrderStatusPending, models.OrderStatusConfirmed, true},
		{models.OrderStatusPending, models.OrderStatusCancelled, true},
		{models.OrderStatusPending, models.OrderStatusPreparing, false},
		{models.OrderStatusPending, models.OrderStatusDelivered, false},
		{models.OrderStatusConfirmed, models.OrderStatusPreparing, true},
		{models.OrderStatusConfirmed, models.OrderStatusCancelled, true},
		{models.OrderStatusConfirmed, models.OrderStatusReady, false},
		{models.OrderStatusPreparing, models.OrderStatusReady, true},
		{models.OrderStatusPreparing, models.OrderStatusCancelled, true},
		{models.OrderStatusPreparing, models.OrderStatusDelivering, false},
		{models.OrderStatusReady, models.OrderStatusDelivering, true},
		{models.OrderStatusReady, models.OrderStatusCancelled, false},
		{models.OrderStatusDelivering, models.OrderStatusDelivered, true},
		{models.OrderStatusDelivering, models.OrderStatusCancelled, false},
		{models.OrderStatusDelivered, models.OrderStatusRefunded, true},
		{models.OrderStatusDelivered, models.OrderStatusPending, false},
		{models.OrderStatusCancelled, models.OrderStatusPending, false},
		{models.OrderStatusCancelled, models.OrderStatusConfirmed, false},
		{models.OrderStatusRefunded, models.OrderStatusDelivered, false},
		// Self-transitions are never legal.
		{models.OrderStatusPending, models.OrderStatusPending, false},
		{models.OrderStatusDelivered, models.OrderStatusDelivered, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestNextStatuses(t *testing.T) {
	assert.ElementsMatch(t,
		[]models.OrderStatus{models.OrderStatusConfirmed, models.OrderStatusCancelled},
		NextStatuses(models.OrderStatusPending))

	assert.ElementsMatch(t,
		[]models.OrderStatus{models.OrderStatusDelivering},
		NextStatuses(models.OrderStatusReady))

	assert.Empty(t, NextStatuses(models.OrderStatusCancelled))
	assert.Empty(t, NextStatuses(models.OrderStatusRefunded))
}

func TestClosedStatusesMatchLifecycle(t *testing.T) {
	all := []models.OrderStatus{
		models.OrderStatusPending, models.OrderStatusConfirmed,
		models.OrderStatusPreparing, models.OrderStatusReady,
		models.OrderStatusDelivering, models.OrderStatusDelivered,
		models.OrderStatusCancelled, models.OrderStatusRefunded,
	}

	// Every open status has a next step; closed statuses allow at most the
	// admin refund out of delivered.
	for _, status := range all {
		next := NextStatuses(status)
		if status.IsClosed() {
			for _, to := range next {
				assert.Equalf(t, models.OrderStatusRefunded, to,
					"%s is closed but transitions to %s", status, to)
			}
		} else {
			assert.NotEmptyf(t, next, "%s is open but has no next step", status)
		}
	}

	assert.Equal(t, []models.OrderStatus{models.OrderStatusRefunded},
		NextStatuses(models.OrderStatusDelivered))
}

func TestListFilters_CompileOrder(t *testing.T) {
	customerID := uuid.New()
	providerID := uuid.New()
	status := models.OrderStatusDelivered
	method := models.PaymentMethodCash
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	filters := ListFilters{
		Search:        "corniche",
		To:            &to,
		From:          &from,
		PaymentMethod: &method,
		Status:        &status,
		ProviderID:    &providerID,
		CustomerID:    &customerID,
	}.compile()

	want := []repository.Filter{
		repository.Eq("customer_id", customerID),
		repository.Eq("provider_id", providerID),
		repository.Eq("status", status),
		repository.Eq("payment_method", method),
		repository.Gte("created_at", from),
		repository.Lt("created_at", to),
		repository.ILike("delivery_address", "%corniche%"),
	}
	assert.Equal(t, want, filters)
}

func TestListFilters_StatusWinsOverStatuses(t *testing.T) {
	status := models.OrderStatusPending
	filters := ListFilters{
		Status:   &status,
		Statuses: []models.OrderStatus{models.OrderStatusConfirmed, models.OrderStatusReady},
	}.compile()

	assert.Equal(t, []repository.Filter{repository.Eq("status", status)}, filters)
}

func TestListFilters_StatusesCompileToIn(t *testing.T) {
	filters := ListFilters{
		Statuses: []models.OrderStatus{models.OrderStatusConfirmed, models.OrderStatusReady},
	}.compile()

	assert.Equal(t, []repository.Filter{
		repository.In("status", models.OrderStatusConfirmed, models.OrderStatusReady),
	}, filters)
}

func TestListFilters_EmptyCompilesToNothing(t *testing.T) {
	assert.Empty(t, ListFilters{}.compile())
}

func TestAggregate(t *testing.T) {
	rows := []models.Order{
		{Status: models.OrderStatusDelivered, Total: 30, PlatformCommission: 4.5},
		{Status: models.OrderStatusDelivered, Total: 20, PlatformCommission: 3},
		{Status: models.OrderStatusCancelled, Total: 50, PlatformCommission: 7.5},
		{Status: models.OrderStatusPending, Total: 15, PlatformCommission: 2.25},
	}

	stats := aggregate(rows)
	assert.Equal(t, int64(4), stats.TotalOrders)
	// Cancelled and pending orders never count toward revenue.
	assert.Equal(t, 50.0, stats.TotalRevenue)
	assert.Equal(t, 7.5, stats.TotalCommission)
	assert.Equal(t, int64(2), stats.ByStatus[models.OrderStatusDelivered])
	assert.Equal(t, int64(1), stats.ByStatus[models.OrderStatusCancelled])
	assert.Equal(t, int64(1), stats.ByStatus[models.OrderStatusPending])
}

func TestAggregate_Empty(t *testing.T) {
	stats := aggregate(nil)
	assert.Zero(t, stats.TotalOrders)
	assert.Zero(t, stats.TotalRevenue)
	assert.NotNil(t, stats.ByStatus)
}

func TestEffectiveCommissionRate(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	inGrace := &models.Provider{CommissionRate: 0.15, GracePeriodUntil: &future}
	assert.Zero(t, effectiveCommissionRate(inGrace, now))

	graceOver := &models.Provider{CommissionRate: 0.15, GracePeriodUntil: &past}
	assert.Equal(t, 0.15, effectiveCommissionRate(graceOver, now))

	noGrace := &models.Provider{CommissionRate: 0.12}
	assert.Equal(t, 0.12, effectiveCommissionRate(noGrace, now))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 3.0, round2(2.999))
	assert.Equal(t, 2.5, round2(2.5))
	assert.Equal(t, 0.15, round2(0.145+0.005))
	assert.Equal(t, 12.35, round2(12.345000001))
}

func TestStatusStampColumns(t *testing.T) {
	assert.Equal(t, "confirmed_at", statusStampColumn[models.OrderStatusConfirmed])
	assert.Equal(t, "preparing_at", statusStampColumn[models.OrderStatusPreparing])
	assert.Equal(t, "ready_at", statusStampColumn[models.OrderStatusReady])
	assert.Equal(t, "delivering_at", statusStampColumn[models.OrderStatusDelivering])
	assert.Equal(t, "delivered_at", statusStampColumn[models.OrderStatusDelivered])
	assert.Equal(t, "cancelled_at", statusStampColumn[models.OrderStatusCancelled])
	assert.Equal(t, "refunded_at", statusStampColumn[models.OrderStatusRefunded])

	// Pending is the creation state; created_at covers it.
	_, stamped := statusStampColumn[models.OrderStatusPending]
	assert.False(t, stamped)
}
