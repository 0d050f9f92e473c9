package service

import "context"

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=EventPublisher --dir=. --output=./mocks --outpkg=mocks

// EventPublisher определяет интерфейс для публикации доменных событий инвентаря
// Service слой зависит от интерфейса, а не от конкретного брокера
type EventPublisher interface {
	// PublishOrderFailed публикует событие о невыполнимом заказе
	PublishOrderFailed(ctx context.Context, event OrderFailedEvent) error

	// PublishStockLow публикует событие о низком остатке товара
	PublishStockLow(ctx context.Context, event StockLowEvent) error
}
