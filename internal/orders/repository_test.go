package orders

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofraeats/marketplace/pkg/models"
	"github.com/sofraeats/marketplace/pkg/repository"
)

var errCaptured = errors.New("captured")

// captureDB records the SQL the repository emits and fails every call, so
// tests can assert the generated statement without a database.
type captureDB struct {
	query string
	args  []interface{}
}

func (c *captureDB) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	c.query = sql
	c.args = args
	return nil, errCaptured
}

func (c *captureDB) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	c.query = sql
	c.args = args
	return errRow{}
}

func (c *captureDB) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	c.query = sql
	c.args = args
	return pgconn.CommandTag{}, errCaptured
}

type errRow struct{}

func (errRow) Scan(dest ...interface{}) error { return errCaptured }

func captureRepository(db *captureDB) *Repository {
	return &Repository{
		base:  repository.New[models.Order](db, ordersTable, orderCols...),
		items: repository.New[models.OrderItem](db, orderItemsTable, orderItemCols...),
	}
}

func TestUpdateStatus_StampsTransitionColumn(t *testing.T) {
	cases := []struct {
		status models.OrderStatus
		stamp  string
	}{
		{models.OrderStatusConfirmed, "confirmed_at"},
		{models.OrderStatusPreparing, "preparing_at"},
		{models.OrderStatusReady, "ready_at"},
		{models.OrderStatusDelivering, "delivering_at"},
		{models.OrderStatusDelivered, "delivered_at"},
		{models.OrderStatusCancelled, "cancelled_at"},
		{models.OrderStatusRefunded, "refunded_at"},
	}
	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			db := &captureDB{}
			repo := captureRepository(db)

			_, err := repo.UpdateStatus(context.Background(), uuid.New(), tc.status, nil)
			require.ErrorIs(t, err, errCaptured)

			assert.Contains(t, db.query,
				fmt.Sprintf("UPDATE orders SET %s = $1, status = $2, updated_at = $3", tc.stamp))
			assert.Equal(t, tc.status, db.args[1])
		})
	}
}

func TestUpdateStatus_PendingHasNoStampColumn(t *testing.T) {
	db := &captureDB{}
	repo := captureRepository(db)

	_, err := repo.UpdateStatus(context.Background(), uuid.New(), models.OrderStatusPending, nil)
	require.ErrorIs(t, err, errCaptured)

	assert.Contains(t, db.query, "UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3")
}
