package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Taller-2-Arq-de-Sistemas/censudex-inventory/internal/repository"
)

// ProductDocument представляет документ в коллекции MongoDB
type ProductDocument struct {
	ProductID    int64     `bson:"product_id"`
	Name         string    `bson:"name"`
	Category     string    `bson:"category"`
	CurrentStock int32     `bson:"current_stock"`
	MinimumStock int32     `bson:"minimum_stock"`
	Status       string    `bson:"status"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

// Repository реализует StockRepository используя MongoDB
type Repository struct {
	client *mongo.Client
	db     *mongo.Database
	col    *mongo.Collection
}

// NewRepository создаёт новый MongoDB репозиторий
// Создаёт уникальный индекс на product_id при инициализации
func NewRepository(client *mongo.Client, dbName string) *Repository {
	db := client.Database(dbName)
	col := db.Collection("products")

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "product_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Создаём индекс (если уже существует - игнорируем ошибку)
	_, _ = col.Indexes().CreateOne(ctx, indexModel)

	return &Repository{
		client: client,
		db:     db,
		col:    col,
	}
}

// GetStock получает остаток товара из MongoDB
// Возвращает ErrNotFound, если товар не найден
func (r *Repository) GetStock(ctx context.Context, productID int64) (repository.StockLevel, error) {
	var doc ProductDocument
	err := r.col.FindOne(ctx, bson.M{"product_id": productID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return repository.StockLevel{}, repository.ErrNotFound
		}
		return repository.StockLevel{}, err
	}

	return repository.StockLevel{
		Name:         doc.Name,
		CurrentStock: doc.CurrentStock,
		MinimumStock: doc.MinimumStock,
	}, nil
}

// DecrementStock атомарно уменьшает остаток товара
// Использует FindOneAndUpdate для атомарной проверки и обновления:
// уменьшить current_stock на quantity, только если current_stock >= quantity
// Возвращает уровень остатка после уменьшения
func (r *Repository) DecrementStock(ctx context.Context, productID int64, quantity int32) (repository.StockLevel, error) {
	filter := bson.M{
		"product_id":    productID,
		"current_stock": bson.M{"$gte": quantity},
	}

	update := bson.M{
		"$inc": bson.M{"current_stock": -quantity},
		"$set": bson.M{"updated_at": time.Now()},
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After)

	var doc ProductDocument
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Либо товара нет, либо current_stock < quantity.
			// Обе ситуации — провал условного декремента; фаза валидации
			// уже отличила "товар не найден" от "недостаточно остатка".
			return repository.StockLevel{}, repository.ErrInsufficientStock
		}
		return repository.StockLevel{}, err
	}

	return repository.StockLevel{
		Name:         doc.Name,
		CurrentStock: doc.CurrentStock,
		MinimumStock: doc.MinimumStock,
	}, nil
}

// UpdateStock устанавливает остаток товара в newStock
// Возвращает обновлённый товар или ErrNotFound
func (r *Repository) UpdateStock(ctx context.Context, productID int64, newStock int32) (repository.Product, error) {
	filter := bson.M{"product_id": productID}
	update := bson.M{
		"$set": bson.M{
			"current_stock": newStock,
			"updated_at":    time.Now(),
		},
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After)

	var doc ProductDocument
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return repository.Product{}, repository.ErrNotFound
		}
		return repository.Product{}, err
	}

	return toProduct(doc), nil
}

// GetProduct получает товар целиком
func (r *Repository) GetProduct(ctx context.Context, productID int64) (repository.Product, error) {
	var doc ProductDocument
	err := r.col.FindOne(ctx, bson.M{"product_id": productID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return repository.Product{}, repository.ErrNotFound
		}
		return repository.Product{}, err
	}
	return toProduct(doc), nil
}

// GetAllProducts возвращает все товары каталога, отсортированные по product_id
func (r *Repository) GetAllProducts(ctx context.Context) ([]repository.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "product_id", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []repository.Product
	for cursor.Next(ctx) {
		var doc ProductDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		products = append(products, toProduct(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func toProduct(doc ProductDocument) repository.Product {
	return repository.Product{
		ID:           doc.ProductID,
		Name:         doc.Name,
		Category:     doc.Category,
		CurrentStock: doc.CurrentStock,
		MinimumStock: doc.MinimumStock,
		Status:       repository.Status(doc.Status),
	}
}
