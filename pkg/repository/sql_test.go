package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSelectDefaults(t *testing.T) {
	query, args, err := buildSelect("orders", nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM orders", query)
	assert.Empty(t, args)
}

func TestBuildSelectFullComposition(t *testing.T) {
	opts := Options{
		Filters: []Filter{Eq("provider_id", "p1"), Eq("status", "pending")},
		Sort:    Desc("created_at"),
		Limit:   10,
		Offset:  20,
	}
	query, args, err := buildSelect("orders", []string{"id", "status", "total"}, opts)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT id, status, total FROM orders WHERE provider_id = $1 AND status = $2 ORDER BY created_at DESC LIMIT $3 OFFSET $4",
		query)
	assert.Equal(t, []interface{}{"p1", "pending", 10, 20}, args)
}

func TestBuildSelectRejectsBadProjection(t *testing.T) {
	_, _, err := buildSelect("orders", []string{"id, (SELECT 1)"}, Options{})
	assert.Error(t, err)

	_, _, err = buildSelect("orders", nil, Options{Sort: Asc("created_at; --")})
	assert.Error(t, err)
}

func TestBuildCount(t *testing.T) {
	query, args, err := buildCount("providers", []Filter{Eq("status", "approved")})
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM providers WHERE status = $1", query)
	assert.Equal(t, []interface{}{"approved"}, args)

	query, args, err = buildCount("providers", nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM providers", query)
	assert.Empty(t, args)
}

func TestBuildInsertDeterministicColumnOrder(t *testing.T) {
	values := Values{"name_en": "Zaatar House", "status": "pending_approval", "category": "restaurant"}
	query, args, err := buildInsert("providers", values, []string{"id", "name_en", "status"})
	require.NoError(t, err)
	// Columns are emitted in lexical order regardless of map iteration.
	assert.Equal(t,
		"INSERT INTO providers (category, name_en, status) VALUES ($1, $2, $3) RETURNING id, name_en, status",
		query)
	assert.Equal(t, []interface{}{"restaurant", "Zaatar House", "pending_approval"}, args)
}

func TestBuildInsertMany(t *testing.T) {
	items := []Values{
		{"order_id": "o1", "product_id": "p1", "quantity": 2},
		{"order_id": "o1", "product_id": "p2", "quantity": 1},
	}
	query, args, err := buildInsertMany("order_items", items, []string{"id", "order_id"})
	require.NoError(t, err)
	assert.Equal(t,
		"INSERT INTO order_items (order_id, product_id, quantity) VALUES ($1, $2, $3), ($4, $5, $6) RETURNING id, order_id",
		query)
	assert.Len(t, args, 6)
}

func TestBuildInsertManyRejectsRaggedRows(t *testing.T) {
	items := []Values{
		{"order_id": "o1", "quantity": 2},
		{"order_id": "o1"},
	}
	_, _, err := buildInsertMany("order_items", items, []string{"id"})
	assert.Error(t, err)
}

func TestBuildUpdate(t *testing.T) {
	values := Values{"status": "confirmed", "updated_at": "now"}
	query, args, err := buildUpdate("orders", values, "id", "o1", []string{"id", "status"})
	require.NoError(t, err)
	assert.Equal(t,
		"UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3 RETURNING id, status",
		query)
	assert.Equal(t, []interface{}{"confirmed", "now", "o1"}, args)
}

func TestBuildUpsert(t *testing.T) {
	values := Values{"auth_id": "a1", "full_name": "Huda", "role": "customer"}
	query, _, err := buildUpsert("profiles", values, "auth_id", nil, []string{"id", "auth_id"})
	require.NoError(t, err)
	assert.Equal(t,
		"INSERT INTO profiles (auth_id, full_name, role) VALUES ($1, $2, $3) "+
			"ON CONFLICT (auth_id) DO UPDATE SET full_name = EXCLUDED.full_name, role = EXCLUDED.role "+
			"RETURNING id, auth_id",
		query)
}

func TestBuildUpsert_UpdateSubset(t *testing.T) {
	values := Values{
		"id": "p1", "auth_id": "a1", "full_name": "Huda",
		"role": "customer", "is_active": true, "updated_at": "now",
	}
	query, _, err := buildUpsert("profiles", values, "auth_id",
		[]string{"full_name", "updated_at"}, []string{"id", "auth_id"})
	require.NoError(t, err)
	assert.Equal(t,
		"INSERT INTO profiles (auth_id, full_name, id, is_active, role, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6) "+
			"ON CONFLICT (auth_id) DO UPDATE SET full_name = EXCLUDED.full_name, updated_at = EXCLUDED.updated_at "+
			"RETURNING id, auth_id",
		query)
}

func TestBuildUpsert_UpdateColumnMustBeInserted(t *testing.T) {
	values := Values{"auth_id": "a1"}
	_, _, err := buildUpsert("profiles", values, "auth_id", []string{"full_name"}, []string{"id"})
	require.Error(t, err)
}

func TestBuildDelete(t *testing.T) {
	query, err := buildDelete("orders", "id")
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM orders WHERE id = $1", query)

	_, err = buildDelete("orders", "id OR 1=1")
	assert.Error(t, err)
}

func TestBuildRejectsEmptyValues(t *testing.T) {
	_, _, err := buildInsert("orders", Values{}, []string{"id"})
	assert.Error(t, err)
	_, _, err = buildUpdate("orders", Values{}, "id", 1, []string{"id"})
	assert.Error(t, err)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 3, totalPages(25, 10))
	assert.Equal(t, 1, totalPages(10, 10))
	assert.Equal(t, 0, totalPages(0, 10))
	assert.Equal(t, 1, totalPages(1, 10))
	assert.Equal(t, 0, totalPages(5, 0))
}
