package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Taller-2-Arq-de-Sistemas/censudex-inventory/internal/repository"
)

// ErrNegativeStock возвращается при попытке установить отрицательный остаток
var ErrNegativeStock = errors.New("stock cannot be negative")

// ErrStockUnchanged возвращается, когда новый остаток равен текущему
// и политика RejectUnchangedStock включена
var ErrStockUnchanged = errors.New("new stock is the same as current stock")

// Options содержит политики поведения StockService
type Options struct {
	// RejectUnchangedStock — отвергать ли ручную корректировку,
	// если новый остаток равен текущему
	RejectUnchangedStock bool
}

// DefaultOptions возвращает политики по умолчанию
func DefaultOptions() Options {
	return Options{RejectUnchangedStock: true}
}

// StockService содержит бизнес-логику сверки и корректировки остатков
// Зависит от интерфейсов StockRepository и EventPublisher,
// а не от конкретных реализаций
type StockService struct {
	repo                 repository.StockRepository
	publisher            EventPublisher
	logger               *zap.Logger
	rejectUnchangedStock bool
}

// NewStockService создаёт новый экземпляр StockService
// Принимает repository и publisher как зависимости - это позволяет
// легко подменять их в тестах
func NewStockService(repo repository.StockRepository, publisher EventPublisher, logger *zap.Logger, opts Options) *StockService {
	return &StockService{
		repo:                 repo,
		publisher:            publisher,
		logger:               logger,
		rejectUnchangedStock: opts.RejectUnchangedStock,
	}
}

// ProcessOrderStock сверяет и списывает остатки по всем позициям одного заказа
//
// Двухфазный алгоритм "всё или ничего":
//   - Фаза 1 (валидация): по каждой позиции читается остаток; первый отказ
//     (товар не найден / ошибка чтения / недостаточно остатка) прерывает заказ
//     целиком, запись не происходит. Для всех отказов, кроме ошибки чтения,
//     публикуется одно OrderFailedEvent; ошибку чтения публикует вызывающая
//     сторона через ReportLookupFailure, когда решит не повторять сверку.
//   - Фаза 2 (коммит): по каждой позиции выполняется атомарный условный
//     декремент. Уже списанные позиции не откатываются при отказе последующих.
//
// Метод никогда не возвращает ошибку наружу: любой сбой превращается
// в ReconcileResult с причиной отказа
func (s *StockService) ProcessOrderStock(ctx context.Context, order OrderRequest) (result ReconcileResult) {
	logger := s.logger.With(
		zap.String("order_id", order.OrderID),
		zap.String("user_id", order.UserID),
	)

	// Граница consume-колбэка: ни один fault не должен пересечь её
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("panic during stock reconciliation", zap.Any("panic", rec))
			s.publishOrderFailed(ctx, logger, order, 0, nil, ReasonInternal, 0, 0)
			result = ReconcileResult{Success: false, Reason: ReasonInternal}
		}
	}()

	logger.Info("reconciling order stock", zap.Int("items", len(order.Items)))

	// Фаза 1 — валидация без побочных эффектов
	for _, item := range order.Items {
		level, err := s.repo.GetStock(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				logger.Warn("product not found during validation", zap.Int64("product_id", item.ProductID))
				s.publishOrderFailed(ctx, logger, order, item.ProductID, nil, ReasonProductNotFound, 0, 0)
				return ReconcileResult{Success: false, Reason: ReasonProductNotFound, ProductID: item.ProductID}
			}
			// Событие здесь не публикуется: сбой чтения повторяем, и заказ
			// ещё может выполниться. Событие публикует вызывающая сторона
			// через ReportLookupFailure, когда попытки исчерпаны
			logger.Error("stock lookup failed during validation",
				zap.Int64("product_id", item.ProductID),
				zap.Error(err),
			)
			return ReconcileResult{Success: false, Reason: ReasonStockLookupFailed, ProductID: item.ProductID}
		}

		if item.Quantity > level.CurrentStock {
			logger.Warn("insufficient stock",
				zap.Int64("product_id", item.ProductID),
				zap.Int32("requested", item.Quantity),
				zap.Int32("available", level.CurrentStock),
			)
			name := level.Name
			s.publishOrderFailed(ctx, logger, order, item.ProductID, &name, ReasonInsufficientStock, item.Quantity, level.CurrentStock)
			return ReconcileResult{Success: false, Reason: ReasonInsufficientStock, ProductID: item.ProductID}
		}
	}

	// Фаза 2 — коммит
	// Декремент атомарен на уровне хранилища: между фазами другой writer
	// мог изменить остаток, поэтому условие current_stock >= quantity
	// проверяется ещё раз внутри самой записи
	for _, item := range order.Items {
		level, err := s.repo.DecrementStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			if errors.Is(err, repository.ErrInsufficientStock) {
				logger.Warn("stock changed between validation and commit",
					zap.Int64("product_id", item.ProductID),
					zap.Int32("requested", item.Quantity),
				)
				name, available := s.lookupForEvent(ctx, item.ProductID)
				s.publishOrderFailed(ctx, logger, order, item.ProductID, name, ReasonStockNegative, item.Quantity, available)
				return ReconcileResult{Success: false, Reason: ReasonStockNegative, ProductID: item.ProductID}
			}
			logger.Error("stock update failed during commit",
				zap.Int64("product_id", item.ProductID),
				zap.Error(err),
			)
			name, _ := s.lookupForEvent(ctx, item.ProductID)
			s.publishOrderFailed(ctx, logger, order, item.ProductID, name, ReasonStockUpdateFailed, 0, 0)
			return ReconcileResult{Success: false, Reason: ReasonStockUpdateFailed, ProductID: item.ProductID}
		}

		// Строго ниже минимума: равенство порогу событие не порождает
		if level.CurrentStock < level.MinimumStock {
			s.publishStockLow(ctx, logger, item.ProductID, level)
		}
	}

	logger.Info("order stock reconciled", zap.Int("items", len(order.Items)))
	return ReconcileResult{Success: true}
}

// ReportLookupFailure публикует OrderFailedEvent о сбое чтения остатка
// Вызывается consumer-ом один раз, после исчерпания попыток сверки:
// иначе каждый повторяемый сбой порождал бы событие об отказе для заказа,
// который в итоге может выполниться
func (s *StockService) ReportLookupFailure(ctx context.Context, order OrderRequest, productID int64) {
	logger := s.logger.With(
		zap.String("order_id", order.OrderID),
		zap.String("user_id", order.UserID),
	)
	s.publishOrderFailed(ctx, logger, order, productID, nil, ReasonStockLookupFailed, 0, 0)
}

// UpdateStockResult содержит результат ручной корректировки остатка
type UpdateStockResult struct {
	Product repository.Product
	// Warning непустой, если новый остаток ниже минимального порога
	Warning string
}

// UpdateStockManually устанавливает остаток товара вручную
// Валидация выполняется до любого обращения к репозиторию
// Политика RejectUnchangedStock управляет отказом при newStock == currentStock
func (s *StockService) UpdateStockManually(ctx context.Context, productID int64, newStock int32) (UpdateStockResult, error) {
	if newStock < 0 {
		return UpdateStockResult{}, ErrNegativeStock
	}

	level, err := s.repo.GetStock(ctx, productID)
	if err != nil {
		return UpdateStockResult{}, err
	}

	if s.rejectUnchangedStock && newStock == level.CurrentStock {
		return UpdateStockResult{}, ErrStockUnchanged
	}

	product, err := s.repo.UpdateStock(ctx, productID, newStock)
	if err != nil {
		return UpdateStockResult{}, err
	}

	s.logger.Info("stock updated manually",
		zap.Int64("product_id", productID),
		zap.Int32("old_stock", level.CurrentStock),
		zap.Int32("new_stock", newStock),
	)

	result := UpdateStockResult{Product: product}
	if newStock < level.MinimumStock {
		result.Warning = "stock is below minimum level"
		s.publishStockLow(ctx, s.logger, productID, repository.StockLevel{
			Name:         level.Name,
			CurrentStock: newStock,
			MinimumStock: level.MinimumStock,
		})
	}

	return result, nil
}

// GetProduct возвращает товар целиком
func (s *StockService) GetProduct(ctx context.Context, productID int64) (repository.Product, error) {
	return s.repo.GetProduct(ctx, productID)
}

// GetAllProducts возвращает все товары каталога
func (s *StockService) GetAllProducts(ctx context.Context) ([]repository.Product, error) {
	return s.repo.GetAllProducts(ctx)
}

// publishOrderFailed публикует OrderFailedEvent
// Публикация best-effort: отказ publisher-а логируется, но не меняет
// результат сверки
func (s *StockService) publishOrderFailed(ctx context.Context, logger *zap.Logger, order OrderRequest, productID int64, productName *string, reason FailureReason, requested, available int32) {
	event := OrderFailedEvent{
		OrderID:     order.OrderID,
		UserID:      order.UserID,
		ProductID:   productID,
		ProductName: productName,
		Reason:      string(reason),
		Requested:   requested,
		Available:   available,
		Timestamp:   time.Now().UTC(),
	}
	if err := s.publisher.PublishOrderFailed(ctx, event); err != nil {
		logger.Error("failed to publish order failed event",
			zap.Int64("product_id", productID),
			zap.String("reason", string(reason)),
			zap.Error(err),
		)
	}
}

// publishStockLow публикует StockLowEvent (не влияет на результат операции)
func (s *StockService) publishStockLow(ctx context.Context, logger *zap.Logger, productID int64, level repository.StockLevel) {
	event := StockLowEvent{
		ProductID:    productID,
		ProductName:  level.Name,
		CurrentStock: level.CurrentStock,
		MinimumStock: level.MinimumStock,
		Timestamp:    time.Now().UTC(),
	}
	if err := s.publisher.PublishStockLow(ctx, event); err != nil {
		logger.Error("failed to publish stock low event",
			zap.Int64("product_id", productID),
			zap.Error(err),
		)
	}
}

// lookupForEvent best-effort читает имя и остаток товара для обогащения
// события об ошибке; при сбое чтения событие уходит без этих полей
func (s *StockService) lookupForEvent(ctx context.Context, productID int64) (*string, int32) {
	level, err := s.repo.GetStock(ctx, productID)
	if err != nil {
		return nil, 0
	}
	name := level.Name
	return &name, level.CurrentStock
}
