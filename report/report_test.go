package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderbot/carrier"
	"orderbot/models"
	"orderbot/order"
	"orderbot/quote"
)

func TestSuccessRateZeroTotal(t *testing.T) {
	assert.Equal(t, 0.0, Report{}.SuccessRate())
}

func TestSuccessRateAllSuccessful(t *testing.T) {
	rep := Report{Total: 3, Successes: []order.Success{{}, {}, {}}}
	assert.Equal(t, 100.0, rep.SuccessRate())
	assert.Empty(t, rep.Failures)
}

func TestMergeReconcilesBothStages(t *testing.T) {
	quotes := quote.Summary{
		Total:     4,
		Successes: []quote.Success{{QuoteID: "q-1"}, {QuoteID: "q-2"}},
		Failures: []quote.Failure{
			{Record: models.OrderRecord{ClientID: "bad-row"}, Reason: "validation error: client_email must be a valid email"},
			{Record: models.OrderRecord{ClientID: "down"}, Reason: "connection refused"},
		},
	}
	orders := order.Summary{
		Total:     2,
		Successes: []order.Success{{QuoteID: "q-1", CarrierOrderID: "track-1"}},
		Failures: []order.Failure{
			{QuoteID: "q-2", Record: models.OrderRecord{ClientID: "c2"}, Reason: "status=409"},
		},
	}

	rep := Merge(quotes, orders)
	// total is what entered the quote stage, not what survived it
	assert.Equal(t, 4, rep.Total)
	require.Len(t, rep.Successes, 1)
	require.Len(t, rep.Failures, 3)
	assert.Equal(t, "bad-row", rep.Failures[0].Record.ClientID)
	assert.Equal(t, "q-2", rep.Failures[2].QuoteID)
	assert.Equal(t, 25.0, rep.SuccessRate())
}

func TestAuditRecords(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	success := order.Success{
		QuoteID:        "q-1",
		CarrierOrderID: "track-1",
		PickupCode:     "ORD17489",
		Context: order.Context{
			QuoteID: "q-1",
			Client: models.ClientDetails{
				ClientID: "client-1", Name: "Maria Lopez", Phone: "+34600111222", Email: "maria@example.com",
			},
			Restaurant: models.RestaurantDetails{Name: "La Cocina", PickupAddressBookID: "book-1"},
			Order:      models.OrderDetails{Description: "Lunch menu A"},
			Record: models.OrderRecord{
				PickupTimeUTC:      "2025-06-02T11:30:00Z",
				DeliveryRawAddress: "Calle Mayor 1",
				DeliveryLatitude:   40.4,
				DeliveryLongitude:  -3.7,
			},
			Quote: carrier.QuoteResponse{QuotePrice: 12.5, CurrencyCode: "EUR"},
		},
		Response: carrier.OrderResponse{Status: carrier.OrderStatus{State: "CREATED", CreatedAt: "2025-06-02T09:00:01Z"}},
	}

	records := AuditRecords([]order.Success{success}, now)
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, now, rec.Timestamp)
	assert.Equal(t, "track-1", rec.OrderID)
	assert.Equal(t, "q-1", rec.QuoteID)
	assert.Equal(t, "CREATED", rec.OrderState)
	assert.Equal(t, "Maria Lopez", rec.ClientName)
	assert.Equal(t, "+34600111222", rec.ClientPhone)
	assert.Equal(t, "maria@example.com", rec.ClientEmail)
	assert.Equal(t, "La Cocina", rec.RestaurantName)
	assert.Equal(t, "book-1", rec.PickupAddressBookID)
	assert.Equal(t, "2025-06-02T11:30:00Z", rec.PickupTime)
	assert.Equal(t, "ORD17489", rec.PickupOrderCode)
	assert.Equal(t, "Calle Mayor 1", rec.DeliveryAddress)
	assert.Equal(t, 12.5, rec.QuotePrice)
	assert.Equal(t, "EUR", rec.Currency)
}

func TestAuditRecordsEmpty(t *testing.T) {
	assert.Empty(t, AuditRecords(nil, time.Now()))
}
