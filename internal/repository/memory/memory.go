package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Taller-2-Arq-de-Sistemas/censudex-inventory/internal/repository"
)

// MemoryRepository реализует StockRepository используя in-memory хранилище
// Используется для разработки и тестирования
// В production заменяется на реализацию с MongoDB
type MemoryRepository struct {
	mu       sync.RWMutex
	products map[int64]repository.Product
}

// NewMemoryRepository создаёт новый in-memory репозиторий
// с переданным начальным набором товаров
func NewMemoryRepository(initial []repository.Product) *MemoryRepository {
	products := make(map[int64]repository.Product, len(initial))
	for _, p := range initial {
		products[p.ID] = p
	}
	return &MemoryRepository{products: products}
}

// GetStock получает остаток товара из памяти
func (r *MemoryRepository) GetStock(ctx context.Context, productID int64) (repository.StockLevel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.products[productID]
	if !exists {
		return repository.StockLevel{}, repository.ErrNotFound
	}

	return repository.StockLevel{
		Name:         p.Name,
		CurrentStock: p.CurrentStock,
		MinimumStock: p.MinimumStock,
	}, nil
}

// DecrementStock атомарно уменьшает остаток товара
// Проверка и запись выполняются под одним мьютексом, поэтому
// конкурентные декременты не могут увести остаток ниже нуля
func (r *MemoryRepository) DecrementStock(ctx context.Context, productID int64, quantity int32) (repository.StockLevel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.products[productID]
	if !exists || p.CurrentStock < quantity {
		return repository.StockLevel{}, repository.ErrInsufficientStock
	}

	p.CurrentStock -= quantity
	r.products[productID] = p

	return repository.StockLevel{
		Name:         p.Name,
		CurrentStock: p.CurrentStock,
		MinimumStock: p.MinimumStock,
	}, nil
}

// UpdateStock устанавливает остаток товара в newStock
func (r *MemoryRepository) UpdateStock(ctx context.Context, productID int64, newStock int32) (repository.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.products[productID]
	if !exists {
		return repository.Product{}, repository.ErrNotFound
	}

	p.CurrentStock = newStock
	r.products[productID] = p
	return p, nil
}

// GetProduct получает товар целиком
func (r *MemoryRepository) GetProduct(ctx context.Context, productID int64) (repository.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.products[productID]
	if !exists {
		return repository.Product{}, repository.ErrNotFound
	}
	return p, nil
}

// GetAllProducts возвращает все товары, отсортированные по ID
func (r *MemoryRepository) GetAllProducts(ctx context.Context) ([]repository.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]repository.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
