package rabbitmq

import (
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Топология брокера: два topic exchange и три durable очереди
// Имена — часть существующего контракта между сервисами
const (
	ExchangeOrder     = "order_exchange"
	ExchangeInventory = "inventory_exchange"
	exchangeType      = "topic"

	QueueOrderCreated     = "order.created"
	QueueOrderFailedStock = "order.failed.stock"
	QueueStockLow         = "stock.low"

	RoutingKeyOrderCreated = "order.created"
)

// Setup подключается к RabbitMQ с retry и открывает канал
// Retry нужен при старте в контейнерах: брокер может подниматься дольше сервиса
func Setup(url string, attempts int, logger *zap.Logger) (*amqp.Connection, *amqp.Channel, error) {
	if attempts <= 0 {
		attempts = 5
	}

	var conn *amqp.Connection
	var err error
	for i := 0; i < attempts; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		logger.Warn("failed to connect to RabbitMQ",
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", attempts),
			zap.Error(err),
		)
		if i < attempts-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("could not open channel: %w", err)
	}

	if err := DeclareTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, err
	}

	return conn, ch, nil
}

// DeclareTopology объявляет exchanges, очереди и биндинги
// Объявления идемпотентны: повторный вызов с теми же параметрами безопасен
func DeclareTopology(ch *amqp.Channel) error {
	for _, exchange := range []string{ExchangeOrder, ExchangeInventory} {
		err := ch.ExchangeDeclare(
			exchange,     // name
			exchangeType, // type
			true,         // durable
			false,        // auto-deleted
			false,        // internal
			false,        // no-wait
			nil,          // arguments
		)
		if err != nil {
			return fmt.Errorf("could not declare exchange %s: %w", exchange, err)
		}
	}

	bindings := []struct {
		queue      string
		routingKey string
		exchange   string
	}{
		{QueueOrderCreated, RoutingKeyOrderCreated, ExchangeOrder},
		{QueueOrderFailedStock, QueueOrderFailedStock, ExchangeInventory},
		{QueueStockLow, QueueStockLow, ExchangeInventory},
	}

	for _, b := range bindings {
		if _, err := ch.QueueDeclare(
			b.queue, // name
			true,    // durable
			false,   // delete when unused
			false,   // exclusive
			false,   // no-wait
			nil,     // arguments
		); err != nil {
			return fmt.Errorf("could not declare queue %s: %w", b.queue, err)
		}

		if err := ch.QueueBind(b.queue, b.routingKey, b.exchange, false, nil); err != nil {
			return fmt.Errorf("could not bind queue %s: %w", b.queue, err)
		}
	}

	return nil
}
