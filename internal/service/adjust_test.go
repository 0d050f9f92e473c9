package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Taller-2-Arq-de-Sistemas/censudex-inventory/internal/repository"
	repomocks "github.com/Taller-2-Arq-de-Sistemas/censudex-inventory/internal/repository/mocks"
	"github.com/Taller-2-Arq-de-Sistemas/censudex-inventory/internal/service"
	svcmocks "github.com/Taller-2-Arq-de-Sistemas/censudex-inventory/internal/service/mocks"
)

func TestStockService_UpdateStockManually_Success(t *testing.T) {
	ctx := context.Background()
	svc, repoMock, _ := newTestService(t)

	repoMock.On("GetStock", ctx, int64(1)).
		Return(repository.StockLevel{Name: "keyboard", CurrentStock: 10, MinimumStock: 2}, nil).Once()
	repoMock.On("UpdateStock", ctx, int64(1), int32(25)).
		Return(repository.Product{ID: 1, Name: "keyboard", CurrentStock: 25, MinimumStock: 2, Status: repository.StatusActive}, nil).Once()

	result, err := svc.UpdateStockManually(ctx, 1, 25)

	require.NoError(t, err)
	require.Equal(t, int32(25), result.Product.CurrentStock)
	require.Empty(t, result.Warning)
}

func TestStockService_UpdateStockManually_NegativeStock(t *testing.T) {
	ctx := context.Background()
	svc, repoMock, _ := newTestService(t)

	// Валидация срабатывает до любого обращения к репозиторию
	_, err := svc.UpdateStockManually(ctx, 1, -5)

	require.ErrorIs(t, err, service.ErrNegativeStock)
	repoMock.AssertNotCalled(t, "GetStock", mock.Anything, mock.Anything)
	repoMock.AssertNotCalled(t, "UpdateStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestStockService_UpdateStockManually_NotFound(t *testing.T) {
	ctx := context.Background()
	svc, repoMock, _ := newTestService(t)

	repoMock.On("GetStock", ctx, int64(42)).
		Return(repository.StockLevel{}, repository.ErrNotFound).Once()

	_, err := svc.UpdateStockManually(ctx, 42, 10)

	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStockService_UpdateStockManually_UnchangedRejected(t *testing.T) {
	ctx := context.Background()
	svc, repoMock, _ := newTestService(t)

	repoMock.On("GetStock", ctx, int64(1)).
		Return(repository.StockLevel{Name: "keyboard", CurrentStock: 10, MinimumStock: 2}, nil).Once()

	_, err := svc.UpdateStockManually(ctx, 1, 10)

	require.ErrorIs(t, err, service.ErrStockUnchanged)
	repoMock.AssertNotCalled(t, "UpdateStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestStockService_UpdateStockManually_UnchangedAllowedByPolicy(t *testing.T) {
	ctx := context.Background()
	repoMock := repomocks.NewStockRepository(t)
	pubMock := svcmocks.NewEventPublisher(t)
	svc := service.NewStockService(repoMock, pubMock, zap.NewNop(), service.Options{
		RejectUnchangedStock: false,
	})

	repoMock.On("GetStock", ctx, int64(1)).
		Return(repository.StockLevel{Name: "keyboard", CurrentStock: 10, MinimumStock: 2}, nil).Once()
	repoMock.On("UpdateStock", ctx, int64(1), int32(10)).
		Return(repository.Product{ID: 1, Name: "keyboard", CurrentStock: 10, MinimumStock: 2, Status: repository.StatusActive}, nil).Once()

	result, err := svc.UpdateStockManually(ctx, 1, 10)

	require.NoError(t, err)
	require.Equal(t, int32(10), result.Product.CurrentStock)
}

func TestStockService_UpdateStockManually_WriteFailed(t *testing.T) {
	ctx := context.Background()
	svc, repoMock, _ := newTestService(t)

	repoMock.On("GetStock", ctx, int64(1)).
		Return(repository.StockLevel{Name: "keyboard", CurrentStock: 10, MinimumStock: 2}, nil).Once()
	repoMock.On("UpdateStock", ctx, int64(1), int32(20)).
		Return(repository.Product{}, errors.New("write timeout")).Once()

	_, err := svc.UpdateStockManually(ctx, 1, 20)

	require.Error(t, err)
}

func TestStockService_UpdateStockManually_BelowMinimumWarns(t *testing.T) {
	ctx := context.Background()
	svc, repoMock, pubMock := newTestService(t)

	// Новый остаток ниже минимума: ответ с предупреждением плюс событие
	repoMock.On("GetStock", ctx, int64(1)).
		Return(repository.StockLevel{Name: "keyboard", CurrentStock: 10, MinimumStock: 5}, nil).Once()
	repoMock.On("UpdateStock", ctx, int64(1), int32(2)).
		Return(repository.Product{ID: 1, Name: "keyboard", CurrentStock: 2, MinimumStock: 5, Status: repository.StatusActive}, nil).Once()

	pubMock.On("PublishStockLow", ctx, mock.MatchedBy(func(e service.StockLowEvent) bool {
		return e.ProductID == 1 &&
			e.ProductName == "keyboard" &&
			e.CurrentStock == 2 &&
			e.MinimumStock == 5
	})).Return(nil).Once()

	result, err := svc.UpdateStockManually(ctx, 1, 2)

	require.NoError(t, err)
	require.NotEmpty(t, result.Warning)
}
