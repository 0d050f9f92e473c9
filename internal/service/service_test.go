package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Taller-2-Arq-de-Sistemas/censudex-inventory/internal/repository"
	"github.com/Taller-2-Arq-de-Sistemas/censudex-inventory/internal/repository/memory"
	repomocks "github.com/Taller-2-Arq-de-Sistemas/censudex-inventory/internal/repository/mocks"
	"github.com/Taller-2-Arq-de-Sistemas/censudex-inventory/internal/service"
	svcmocks "github.com/Taller-2-Arq-de-Sistemas/censudex-inventory/internal/service/mocks"
)

func newTestService(t *testing.T) (*service.StockService, *repomocks.StockRepository, *svcmocks.EventPublisher) {
	t.Helper()
	repoMock := repomocks.NewStockRepository(t)
	pubMock := svcmocks.NewEventPublisher(t)
	svc := service.NewStockService(repoMock, pubMock, zap.NewNop(), service.DefaultOptions())
	return svc, repoMock, pubMock
}

func TestStockService_ProcessOrderStock_Success(t *testing.T) {
	ctx := context.Background()
	svc, repoMock, _ := newTestService(t)

	order := service.OrderRequest{
		OrderID: "order-1",
		UserID:  "user-1",
		Items: []service.OrderItem{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 5},
		},
	}

	// Фаза 1: оба товара доступны
	repoMock.On("GetStock", ctx, int64(1)).
		Return(repository.StockLevel{Name: "keyboard", CurrentStock: 10, MinimumStock: 2}, nil).Once()
	repoMock.On("GetStock", ctx, int64(2)).
		Return(repository.StockLevel{Name: "mouse", CurrentStock: 20, MinimumStock: 3}, nil).Once()

	// Фаза 2: декременты проходят, остатки выше минимума
	repoMock.On("DecrementStock", ctx, int64(1), int32(2)).
		Return(repository.StockLevel{Name: "keyboard", CurrentStock: 8, MinimumStock: 2}, nil).Once()
	repoMock.On("DecrementStock", ctx, int64(2), int32(5)).
		Return(repository.StockLevel{Name: "mouse", CurrentStock: 15, MinimumStock: 3}, nil).Once()

	result := svc.ProcessOrderStock(ctx, order)

	require.True(t, result.Success)
	require.Empty(t, result.Reason)
}

func TestStockService_ProcessOrderStock_PublishesStockLow(t *testing.T) {
	ctx := context.Background()
	svc, repoMock, pubMock := newTestService(t)

	// currentStock=10, minimumStock=5, заказ на 7 -> остаток 3, строго ниже минимума
	order := service.OrderRequest{
		OrderID: "order-1",
		UserID:  "user-1",
		Items:   []service.OrderItem{{ProductID: 1, Quantity: 7}},
	}

	repoMock.On("GetStock", ctx, int64(1)).
		Return(repository.StockLevel{Name: "keyboard", CurrentStock: 10, MinimumStock: 5}, nil).Once()
	repoMock.On("DecrementStock", ctx, int64(1), int32(7)).
		Return(repository.StockLevel{Name: "keyboard", CurrentStock: 3, MinimumStock: 5}, nil).Once()

	pubMock.On("PublishStockLow", ctx, mock.MatchedBy(func(e service.StockLowEvent) bool {
		return e.ProductID == 1 &&
			e.ProductName == "keyboard" &&
			e.CurrentStock == 3 &&
			e.MinimumStock == 5
	})).Return(nil).Once()

	result := svc.ProcessOrderStock(ctx, order)

	require.True(t, result.Success)
}

func TestStockService_ProcessOrderStock_NoEventWhenStockEqualsMinimum(t *testing.T) {
	ctx := context.Background()
	svc, repoMock, _ := newTestService(t)

	// Остаток после списания равен порогу: событие не публикуется
	order := service.OrderRequest{
		OrderID: "order-1",
		UserID:  "user-1",
		Items:   []service.OrderItem{{ProductID: 1, Quantity: 5}},
	}

	repoMock.On("GetStock", ctx, int64(1)).
		Return(repository.StockLevel{Name: "keyboard", CurrentStock: 10, MinimumStock: 5}, nil).Once()
	repoMock.On("DecrementStock", ctx, int64(1), int32(5)).
		Return(repository.StockLevel{Name: "keyboard", CurrentStock: 5, MinimumStock: 5}, nil).Once()

	result := svc.ProcessOrderStock(ctx, order)

	require.True(t, result.Success)
}

func TestStockService_ProcessOrderStock_InsufficientStock(t *testing.T) {
	ctx := context.Background()
	svc, repoMock, pubMock := newTestService(t)

	// currentStock=3, заказ на 20: отказ на фазе валидации, без записи
	order := service.OrderRequest{
		OrderID: "order-2",
		UserID:  "user-1",
		Items:   []service.OrderItem{{ProductID: 1, Quantity: 20}},
	}

	repoMock.On("GetStock", ctx, int64(1)).
		Return(repository.StockLevel{Name: "keyboard", CurrentStock: 3, MinimumStock: 5}, nil).Once()

	pubMock.On("PublishOrderFailed", ctx, mock.MatchedBy(func(e service.OrderFailedEvent) bool {
		return e.OrderID == "order-2" &&
			e.ProductID == 1 &&
			e.ProductName != nil && *e.ProductName == "keyboard" &&
			e.Reason == string(service.ReasonInsufficientStock) &&
			e.Requested == 20 &&
			e.Available == 3
	})).Return(nil).Once()

	result := svc.ProcessOrderStock(ctx, order)

	require.False(t, result.Success)
	require.Equal(t, service.ReasonInsufficientStock, result.Reason)
	repoMock.AssertNotCalled(t, "DecrementStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestStockService_ProcessOrderStock_FirstFailureAbortsValidation(t *testing.T) {
	ctx := context.Background()
	svc, repoMock, pubMock := newTestService(t)

	// Первый товар не найден: второй даже не проверяется
	order := service.OrderRequest{
		OrderID: "order-3",
		UserID:  "user-2",
		Items: []service.OrderItem{
			{ProductID: 7, Quantity: 1},
			{ProductID: 8, Quantity: 1},
		},
	}

	repoMock.On("GetStock", ctx, int64(7)).
		Return(repository.StockLevel{}, repository.ErrNotFound).Once()

	pubMock.On("PublishOrderFailed", ctx, mock.MatchedBy(func(e service.OrderFailedEvent) bool {
		return e.OrderID == "order-3" &&
			e.ProductID == 7 &&
			e.ProductName == nil &&
			e.Reason == string(service.ReasonProductNotFound) &&
			e.Requested == 0 &&
			e.Available == 0
	})).Return(nil).Once()

	result := svc.ProcessOrderStock(ctx, order)

	require.False(t, result.Success)
	require.Equal(t, service.ReasonProductNotFound, result.Reason)
	repoMock.AssertNotCalled(t, "GetStock", mock.Anything, int64(8))
}

func TestStockService_ProcessOrderStock_StockLookupFailed(t *testing.T) {
	ctx := context.Background()
	svc, repoMock, pubMock := newTestService(t)

	order := service.OrderRequest{
		OrderID: "order-4",
		UserID:  "user-1",
		Items:   []service.OrderItem{{ProductID: 1, Quantity: 1}},
	}

	repoMock.On("GetStock", ctx, int64(1)).
		Return(repository.StockLevel{}, errors.New("database connection failed")).Once()

	// Сбой чтения сигнализируется без публикации: решение о событии
	// принимает вызывающая сторона после своих ретраев
	result := svc.ProcessOrderStock(ctx, order)

	require.False(t, result.Success)
	require.Equal(t, service.ReasonStockLookupFailed, result.Reason)
	require.Equal(t, int64(1), result.ProductID)
	pubMock.AssertNotCalled(t, "PublishOrderFailed", mock.Anything, mock.Anything)
}

func TestStockService_ReportLookupFailure(t *testing.T) {
	ctx := context.Background()
	svc, _, pubMock := newTestService(t)

	order := service.OrderRequest{
		OrderID: "order-4",
		UserID:  "user-1",
		Items:   []service.OrderItem{{ProductID: 1, Quantity: 1}},
	}

	pubMock.On("PublishOrderFailed", ctx, mock.MatchedBy(func(e service.OrderFailedEvent) bool {
		return e.OrderID == "order-4" &&
			e.ProductID == 1 &&
			e.ProductName == nil &&
			e.Reason == string(service.ReasonStockLookupFailed)
	})).Return(nil).Once()

	svc.ReportLookupFailure(ctx, order, 1)
}

func TestStockService_ProcessOrderStock_StockChangedBetweenPhases(t *testing.T) {
	ctx := context.Background()
	svc, repoMock, pubMock := newTestService(t)

	// Два товара: первый списывается, на втором остаток "уехал" между фазами.
	// Уже списанная позиция не откатывается.
	order := service.OrderRequest{
		OrderID: "order-5",
		UserID:  "user-1",
		Items: []service.OrderItem{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 4},
		},
	}

	repoMock.On("GetStock", ctx, int64(1)).
		Return(repository.StockLevel{Name: "keyboard", CurrentStock: 10, MinimumStock: 1}, nil).Once()
	repoMock.On("GetStock", ctx, int64(2)).
		Return(repository.StockLevel{Name: "mouse", CurrentStock: 4, MinimumStock: 1}, nil).Once()

	repoMock.On("DecrementStock", ctx, int64(1), int32(2)).
		Return(repository.StockLevel{Name: "keyboard", CurrentStock: 8, MinimumStock: 1}, nil).Once()
	repoMock.On("DecrementStock", ctx, int64(2), int32(4)).
		Return(repository.StockLevel{}, repository.ErrInsufficientStock).Once()

	// best-effort чтение для обогащения события
	repoMock.On("GetStock", ctx, int64(2)).
		Return(repository.StockLevel{Name: "mouse", CurrentStock: 1, MinimumStock: 1}, nil).Once()

	pubMock.On("PublishOrderFailed", ctx, mock.MatchedBy(func(e service.OrderFailedEvent) bool {
		return e.ProductID == 2 &&
			e.Reason == string(service.ReasonStockNegative) &&
			e.Requested == 4 &&
			e.Available == 1
	})).Return(nil).Once()

	result := svc.ProcessOrderStock(ctx, order)

	require.False(t, result.Success)
	require.Equal(t, service.ReasonStockNegative, result.Reason)
}

func TestStockService_ProcessOrderStock_StockUpdateFailed(t *testing.T) {
	ctx := context.Background()
	svc, repoMock, pubMock := newTestService(t)

	order := service.OrderRequest{
		OrderID: "order-6",
		UserID:  "user-1",
		Items:   []service.OrderItem{{ProductID: 1, Quantity: 2}},
	}

	repoMock.On("GetStock", ctx, int64(1)).
		Return(repository.StockLevel{Name: "keyboard", CurrentStock: 10, MinimumStock: 1}, nil).Once()
	repoMock.On("DecrementStock", ctx, int64(1), int32(2)).
		Return(repository.StockLevel{}, errors.New("write timeout")).Once()
	repoMock.On("GetStock", ctx, int64(1)).
		Return(repository.StockLevel{Name: "keyboard", CurrentStock: 10, MinimumStock: 1}, nil).Once()

	pubMock.On("PublishOrderFailed", ctx, mock.MatchedBy(func(e service.OrderFailedEvent) bool {
		return e.Reason == string(service.ReasonStockUpdateFailed) &&
			e.ProductName != nil && *e.ProductName == "keyboard"
	})).Return(nil).Once()

	result := svc.ProcessOrderStock(ctx, order)

	require.False(t, result.Success)
	require.Equal(t, service.ReasonStockUpdateFailed, result.Reason)
}

func TestStockService_ProcessOrderStock_PublishFailureDoesNotFailOrder(t *testing.T) {
	ctx := context.Background()
	svc, repoMock, pubMock := newTestService(t)

	order := service.OrderRequest{
		OrderID: "order-7",
		UserID:  "user-1",
		Items:   []service.OrderItem{{ProductID: 1, Quantity: 7}},
	}

	repoMock.On("GetStock", ctx, int64(1)).
		Return(repository.StockLevel{Name: "keyboard", CurrentStock: 10, MinimumStock: 5}, nil).Once()
	repoMock.On("DecrementStock", ctx, int64(1), int32(7)).
		Return(repository.StockLevel{Name: "keyboard", CurrentStock: 3, MinimumStock: 5}, nil).Once()

	// Publisher недоступен: списание всё равно считается успешным
	pubMock.On("PublishStockLow", ctx, mock.Anything).
		Return(errors.New("broker unavailable")).Once()

	result := svc.ProcessOrderStock(ctx, order)

	require.True(t, result.Success)
}

// Документированный пробел, а не гарантия: повторная доставка того же
// сообщения после успешного коммита списывает остаток второй раз,
// так как дедупликации по orderId нет
func TestStockService_ProcessOrderStock_DuplicateDelivery(t *testing.T) {
	ctx := context.Background()

	repo := memory.NewMemoryRepository([]repository.Product{
		{ID: 1, Name: "keyboard", Category: "peripherals", CurrentStock: 10, MinimumStock: 2, Status: repository.StatusActive},
	})
	pubMock := svcmocks.NewEventPublisher(t)
	svc := service.NewStockService(repo, pubMock, zap.NewNop(), service.DefaultOptions())

	order := service.OrderRequest{
		OrderID: "order-dup",
		UserID:  "user-1",
		Items:   []service.OrderItem{{ProductID: 1, Quantity: 3}},
	}

	require.True(t, svc.ProcessOrderStock(ctx, order).Success)
	require.True(t, svc.ProcessOrderStock(ctx, order).Success)

	level, err := repo.GetStock(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int32(4), level.CurrentStock)
}
