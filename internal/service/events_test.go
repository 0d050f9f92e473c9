package service_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Taller-2-Arq-de-Sistemas/censudex-inventory/internal/service"
)

func TestOrderRequest_Validate(t *testing.T) {
	valid := service.OrderRequest{
		OrderID: "order-1",
		UserID:  "user-1",
		Items:   []service.OrderItem{{ProductID: 1, Quantity: 3}},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*service.OrderRequest)
	}{
		{name: "missing order id", mutate: func(o *service.OrderRequest) { o.OrderID = "" }},
		{name: "nil items", mutate: func(o *service.OrderRequest) { o.Items = nil }},
		{name: "empty items", mutate: func(o *service.OrderRequest) { o.Items = []service.OrderItem{} }},
		{name: "zero product id", mutate: func(o *service.OrderRequest) { o.Items[0].ProductID = 0 }},
		{name: "negative product id", mutate: func(o *service.OrderRequest) { o.Items[0].ProductID = -1 }},
		{name: "zero quantity", mutate: func(o *service.OrderRequest) { o.Items[0].Quantity = 0 }},
		{name: "negative quantity", mutate: func(o *service.OrderRequest) { o.Items[0].Quantity = -3 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := valid
			order.Items = append([]service.OrderItem(nil), valid.Items...)
			tt.mutate(&order)
			require.Error(t, order.Validate())
		})
	}
}

// Имена полей событий — существующий wire-контракт, на который подписаны
// другие сервисы
func TestEventWireFormat(t *testing.T) {
	name := "keyboard"
	failed := service.OrderFailedEvent{
		OrderID:     "order-1",
		UserID:      "user-1",
		ProductID:   1,
		ProductName: &name,
		Reason:      string(service.ReasonInsufficientStock),
		Requested:   20,
		Available:   3,
		Timestamp:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	raw, err := json.Marshal(failed)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"orderId": "order-1",
		"userId": "user-1",
		"productId": 1,
		"productName": "keyboard",
		"reason": "insufficient stock",
		"requested": 20,
		"available": 3,
		"timestamp": "2025-06-01T12:00:00Z"
	}`, string(raw))

	// productName сериализуется как null, если товар не найден
	failed.ProductName = nil
	raw, err = json.Marshal(failed)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"productName":null`)

	low := service.StockLowEvent{
		ProductID:    1,
		ProductName:  "keyboard",
		CurrentStock: 3,
		MinimumStock: 5,
		Timestamp:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	raw, err = json.Marshal(low)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"productId": 1,
		"productName": "keyboard",
		"stockActual": 3,
		"stockMinimo": 5,
		"timestamp": "2025-06-01T12:00:00Z"
	}`, string(raw))
}
