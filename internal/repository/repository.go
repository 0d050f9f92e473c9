package repository

import (
	"context"
	"errors"
)

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=StockRepository --dir=. --output=./mocks --outpkg=mocks

// Status представляет статус товара в каталоге
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Product представляет товар в каталоге инвентаря
// Инвариант хранилища: CurrentStock >= 0
type Product struct {
	ID           int64
	Name         string
	Category     string
	CurrentStock int32
	MinimumStock int32
	Status       Status
}

// StockLevel — read-view остатка товара для сверки заказов
// Репозиторий возвращает её вместо полного Product, чтобы не тащить лишние поля
type StockLevel struct {
	Name         string
	CurrentStock int32
	MinimumStock int32
}

// StockRepository определяет интерфейс для работы с хранилищем товаров
// Service слой зависит от этого интерфейса, а не от конкретной реализации
type StockRepository interface {
	// GetStock получает остаток товара (имя, текущий и минимальный stock)
	// Возвращает ErrNotFound, если товар не найден
	GetStock(ctx context.Context, productID int64) (StockLevel, error)

	// DecrementStock атомарно уменьшает остаток товара на quantity,
	// только если текущий остаток >= quantity
	// Возвращает уровень остатка ПОСЛЕ уменьшения
	// Возвращает ErrInsufficientStock, если условие не выполнено
	DecrementStock(ctx context.Context, productID int64, quantity int32) (StockLevel, error)

	// UpdateStock устанавливает остаток товара в newStock
	// Возвращает обновлённый товар или ErrNotFound
	UpdateStock(ctx context.Context, productID int64, newStock int32) (Product, error)

	// GetProduct получает товар целиком
	// Возвращает ErrNotFound, если товар не найден
	GetProduct(ctx context.Context, productID int64) (Product, error)

	// GetAllProducts возвращает все товары каталога
	GetAllProducts(ctx context.Context) ([]Product, error)
}

// ErrNotFound возвращается, когда товар не найден в хранилище
var ErrNotFound = errors.New("product not found")

// ErrInsufficientStock возвращается, когда условный декремент не прошёл:
// остатка меньше, чем запрошено (или товар исчез между фазами)
var ErrInsufficientStock = errors.New("insufficient stock")
