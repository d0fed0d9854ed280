package eventbus

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofraeats/marketplace/pkg/models"
)

func TestNewEvent_Success(t *testing.T) {
	data := map[string]string{"order_id": "abc"}

	event, err := NewEvent("orders.placed", "storefront", data)
	require.NoError(t, err)
	require.NotNil(t, event)

	assert.Equal(t, "orders.placed", event.Type)
	assert.Equal(t, "storefront", event.Source)
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.Timestamp.IsZero())

	_, err = uuid.Parse(event.ID)
	assert.NoError(t, err)

	var decoded map[string]string
	err = json.Unmarshal(event.Data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "abc", decoded["order_id"])
}

func TestNewEvent_NilData(t *testing.T) {
	event, err := NewEvent("test.event", "test-source", nil)
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage("null"), event.Data)
}

func TestNewEvent_OrderPlacedRoundTrip(t *testing.T) {
	data := OrderPlacedData{
		OrderID:         uuid.New(),
		CustomerID:      uuid.New(),
		ProviderID:      uuid.New(),
		Total:           148.50,
		DeliveryFee:     10,
		PaymentMethod:   "cash",
		DeliveryAddress: "12 Corniche St, Apt 4",
		ItemCount:       3,
		PlacedAt:        time.Now(),
	}

	event, err := NewEvent(SubjectOrderPlaced, "storefront", data)
	require.NoError(t, err)

	var decoded OrderPlacedData
	err = json.Unmarshal(event.Data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, data.OrderID, decoded.OrderID)
	assert.Equal(t, data.ProviderID, decoded.ProviderID)
	assert.Equal(t, data.Total, decoded.Total)
	assert.Equal(t, data.DeliveryAddress, decoded.DeliveryAddress)
	assert.Equal(t, data.ItemCount, decoded.ItemCount)
}

func TestNewEvent_UnmarshalableData(t *testing.T) {
	// Channels cannot be marshaled to JSON
	event, err := NewEvent("test", "src", make(chan int))
	assert.Error(t, err)
	assert.Nil(t, event)
}

func TestNewEvent_UniqueIDs(t *testing.T) {
	ids := make(map[string]bool)
	for i := 0; i < 100; i++ {
		event, err := NewEvent("test", "src", nil)
		require.NoError(t, err)
		assert.False(t, ids[event.ID], "duplicate event ID generated")
		ids[event.ID] = true
	}
}

func TestNewEvent_TimestampIsUTC(t *testing.T) {
	event, err := NewEvent("test", "src", nil)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, event.Timestamp.Location())
}

func TestSubjectForStatus(t *testing.T) {
	tests := []struct {
		status  models.OrderStatus
		subject string
	}{
		{models.OrderStatusPending, SubjectOrderPlaced},
		{models.OrderStatusConfirmed, SubjectOrderConfirmed},
		{models.OrderStatusPreparing, SubjectOrderPreparing},
		{models.OrderStatusReady, SubjectOrderReady},
		{models.OrderStatusDelivering, SubjectOrderDelivering},
		{models.OrderStatusDelivered, SubjectOrderDelivered},
		{models.OrderStatusCancelled, SubjectOrderCancelled},
		{models.OrderStatusRefunded, SubjectOrderRefunded},
		{models.OrderStatus("bogus"), ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.subject, SubjectForStatus(tt.status), string(tt.status))
	}
}

func TestEvent_JSONRoundTrip(t *testing.T) {
	original, err := NewEvent(SubjectOrderDelivered, "merchant", map[string]int{"total": 25})
	require.NoError(t, err)

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Event
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, original.ID, decoded.ID)
	assert.Equal(t, original.Type, decoded.Type)
	assert.Equal(t, original.Source, decoded.Source)
	assert.JSONEq(t, string(original.Data), string(decoded.Data))
}
