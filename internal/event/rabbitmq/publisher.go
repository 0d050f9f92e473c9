package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/Taller-2-Arq-de-Sistemas/censudex-inventory/internal/service"
)

// Publisher реализует service.EventPublisher используя RabbitMQ
// Публикует persistent JSON сообщения в inventory exchange
type Publisher struct {
	logger *zap.Logger
	ch     *amqp.Channel
}

// NewPublisher создаёт новый RabbitMQ publisher доменных событий инвентаря
func NewPublisher(logger *zap.Logger, ch *amqp.Channel) *Publisher {
	return &Publisher{
		logger: logger,
		ch:     ch,
	}
}

// PublishOrderFailed публикует событие о невыполнимом заказе
func (p *Publisher) PublishOrderFailed(ctx context.Context, event service.OrderFailedEvent) error {
	if err := p.publish(ctx, service.RoutingKeyOrderFailed, event); err != nil {
		return err
	}

	p.logger.Info("order failed event published",
		zap.String("routing_key", service.RoutingKeyOrderFailed),
		zap.String("order_id", event.OrderID),
		zap.Int64("product_id", event.ProductID),
		zap.String("reason", event.Reason),
	)
	return nil
}

// PublishStockLow публикует событие о низком остатке товара
func (p *Publisher) PublishStockLow(ctx context.Context, event service.StockLowEvent) error {
	if err := p.publish(ctx, service.RoutingKeyStockLow, event); err != nil {
		return err
	}

	p.logger.Info("stock low event published",
		zap.String("routing_key", service.RoutingKeyStockLow),
		zap.Int64("product_id", event.ProductID),
		zap.Int32("current_stock", event.CurrentStock),
		zap.Int32("minimum_stock", event.MinimumStock),
	)
	return nil
}

func (p *Publisher) publish(ctx context.Context, routingKey string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("could not marshal event: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		ExchangeInventory, // exchange
		routingKey,        // routing key
		false,             // mandatory
		false,             // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.New().String(),
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		p.logger.Error("failed to publish event",
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
		return err
	}

	return nil
}
