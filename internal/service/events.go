package service

import (
	"errors"
	"fmt"
	"time"
)

// Routing keys доменных событий инвентаря
// Имена совпадают с именами очередей, на которые они забиндены
const (
	RoutingKeyOrderFailed = "order.failed.stock"
	RoutingKeyStockLow    = "stock.low"
)

// FailureReason — причина отказа сверки остатков
type FailureReason string

const (
	ReasonProductNotFound   FailureReason = "product not found"
	ReasonStockLookupFailed FailureReason = "stock lookup failed"
	ReasonInsufficientStock FailureReason = "insufficient stock"
	ReasonStockNegative     FailureReason = "resulting stock negative"
	ReasonStockUpdateFailed FailureReason = "stock update failed"
	ReasonInternal          FailureReason = "internal error"
)

// OrderItem — позиция заказа
type OrderItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int32 `json:"quantity"`
}

// OrderRequest — входящее событие order.created
type OrderRequest struct {
	OrderID string      `json:"orderId"`
	UserID  string      `json:"userId"`
	Items   []OrderItem `json:"items"`
}

// Validate проверяет форму входящего заказа до начала обработки
// Невалидный заказ отвергается на границе consumer-а без побочных эффектов
func (o OrderRequest) Validate() error {
	if o.OrderID == "" {
		return errors.New("orderId is required")
	}
	if len(o.Items) == 0 {
		return errors.New("items must not be empty")
	}
	for i, item := range o.Items {
		if item.ProductID <= 0 {
			return fmt.Errorf("productId must be positive in items[%d]", i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("quantity must be > 0 in items[%d]", i)
		}
	}
	return nil
}

// ReconcileResult — результат сверки остатков по одному заказу
// ProductID — позиция, на которой сверка остановилась (0 при успехе)
type ReconcileResult struct {
	Success   bool
	Reason    FailureReason
	ProductID int64
}

// OrderFailedEvent публикуется, когда заказ не может быть выполнен
// ProductName равен nil, если товар не найден
type OrderFailedEvent struct {
	OrderID     string    `json:"orderId"`
	UserID      string    `json:"userId"`
	ProductID   int64     `json:"productId"`
	ProductName *string   `json:"productName"`
	Reason      string    `json:"reason"`
	Requested   int32     `json:"requested"`
	Available   int32     `json:"available"`
	Timestamp   time.Time `json:"timestamp"`
}

// StockLowEvent публикуется, когда остаток товара опустился строго ниже минимума
// Имена полей stockActual/stockMinimo — часть существующего wire-контракта
type StockLowEvent struct {
	ProductID    int64     `json:"productId"`
	ProductName  string    `json:"productName"`
	CurrentStock int32     `json:"stockActual"`
	MinimumStock int32     `json:"stockMinimo"`
	Timestamp    time.Time `json:"timestamp"`
}
