package rabbitmq

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/Taller-2-Arq-de-Sistemas/censudex-inventory/internal/service"
)

// decision — итоговое решение по одному сообщению
// Каждое сообщение завершается ровно одним ack или nack
type decision int

const (
	decisionAck decision = iota
	decisionReject
)

// FailurePolicy определяет поведение consumer-а при сбоях обработки
// MaxAttempts=1 — исходная политика "любой сбой = постоянный drop"
type FailurePolicy struct {
	// MaxAttempts — сколько раз выполнить сверку до отказа
	// Повторяются только сбои чтения остатка (фаза валидации, без побочных
	// эффектов); сбои фазы коммита не повторяются, так как часть позиций
	// могла быть уже списана
	MaxAttempts int
	// BackoffBase — базовая задержка между попытками (экспоненциальный рост)
	BackoffBase time.Duration
}

// OrderCreatedConsumer обрабатывает события order.created из RabbitMQ
// Сообщения обрабатываются по одному; отвергнутые сообщения не возвращаются
// в очередь (requeue=false) — повторная доставка остаётся политикой брокера
type OrderCreatedConsumer struct {
	logger  *zap.Logger
	ch      *amqp.Channel
	service *service.StockService
	policy  FailurePolicy
}

// NewOrderCreatedConsumer создаёт новый consumer событий создания заказа
func NewOrderCreatedConsumer(logger *zap.Logger, ch *amqp.Channel, svc *service.StockService, policy FailurePolicy) *OrderCreatedConsumer {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	if policy.BackoffBase <= 0 {
		policy.BackoffBase = 1 * time.Second
	}

	return &OrderCreatedConsumer{
		logger:  logger,
		ch:      ch,
		service: svc,
		policy:  policy,
	}
}

// Start запускает consumer и блокируется до отмены контекста
// или закрытия канала
func (c *OrderCreatedConsumer) Start(ctx context.Context) error {
	deliveries, err := c.ch.Consume(
		QueueOrderCreated, // queue
		"",                // consumer tag
		false,             // auto-ack: выключен, решение принимается явно
		false,             // exclusive
		false,             // no-local
		false,             // no-wait
		nil,               // args
	)
	if err != nil {
		return err
	}

	c.logger.Info("starting order created consumer",
		zap.String("queue", QueueOrderCreated),
		zap.Int("max_attempts", c.policy.MaxAttempts),
		zap.Duration("backoff_base", c.policy.BackoffBase),
	)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer context cancelled, stopping")
			return nil
		case d, ok := <-deliveries:
			if !ok {
				c.logger.Info("delivery channel closed, stopping")
				return nil
			}

			switch c.processDelivery(ctx, d.Body) {
			case decisionAck:
				if err := d.Ack(false); err != nil {
					c.logger.Error("failed to ack message", zap.Error(err))
				}
			case decisionReject:
				// requeue=false: сообщение не возвращается в очередь
				if err := d.Nack(false, false); err != nil {
					c.logger.Error("failed to nack message", zap.Error(err))
				}
			}
		}
	}
}

// processDelivery обрабатывает одно сообщение и возвращает решение ack/reject
// Из метода не выходит ни ошибка, ни panic: граница очереди всегда
// завершается ровно одним решением
func (c *OrderCreatedConsumer) processDelivery(ctx context.Context, body []byte) (d decision) {
	defer func() {
		if rec := recover(); rec != nil {
			c.logger.Error("panic while processing delivery", zap.Any("panic", rec))
			d = decisionReject
		}
	}()

	var order service.OrderRequest
	if err := json.Unmarshal(body, &order); err != nil {
		c.logger.Error("failed to unmarshal order message", zap.Error(err))
		return decisionReject
	}

	if err := order.Validate(); err != nil {
		c.logger.Error("invalid order message",
			zap.String("order_id", order.OrderID),
			zap.Error(err),
		)
		return decisionReject
	}

	c.logger.Info("received order created event",
		zap.String("order_id", order.OrderID),
		zap.String("user_id", order.UserID),
		zap.Int("items", len(order.Items)),
	)

	result := c.handleWithRetry(ctx, order)
	if !result.Success {
		// Повторяемый сбой не публикует событие внутри сверки, чтобы
		// промежуточные попытки не породили отказ для заказа, который
		// в итоге выполнится. Попытки исчерпаны, публикуем один раз
		if retryable(result.Reason) {
			c.service.ReportLookupFailure(ctx, order, result.ProductID)
		}
		c.logger.Warn("order stock reconciliation failed, rejecting message",
			zap.String("order_id", order.OrderID),
			zap.String("reason", string(result.Reason)),
		)
		return decisionReject
	}

	c.logger.Info("order stock reconciled, acknowledging message",
		zap.String("order_id", order.OrderID),
	)
	return decisionAck
}

// handleWithRetry выполняет сверку с ограниченным количеством попыток
// Повторяются только сбои без побочных эффектов (см. FailurePolicy)
func (c *OrderCreatedConsumer) handleWithRetry(ctx context.Context, order service.OrderRequest) service.ReconcileResult {
	var result service.ReconcileResult

	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			backoff := c.policy.BackoffBase * time.Duration(1<<uint(attempt-2))
			c.logger.Info("retrying order stock reconciliation",
				zap.String("order_id", order.OrderID),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", c.policy.MaxAttempts),
				zap.Duration("backoff", backoff),
			)

			select {
			case <-ctx.Done():
				return result
			case <-time.After(backoff):
			}
		}

		result = c.service.ProcessOrderStock(ctx, order)
		if result.Success || !retryable(result.Reason) {
			return result
		}

		c.logger.Warn("retryable reconciliation failure",
			zap.String("order_id", order.OrderID),
			zap.String("reason", string(result.Reason)),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.policy.MaxAttempts),
		)
	}

	return result
}

// retryable сообщает, можно ли безопасно повторить сверку после отказа
// Только отказ чтения остатка происходит до каких-либо списаний
func retryable(reason service.FailureReason) bool {
	return reason == service.ReasonStockLookupFailed
}
