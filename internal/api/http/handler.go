package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/Taller-2-Arq-de-Sistemas/censudex-inventory/internal/repository"
	"github.com/Taller-2-Arq-de-Sistemas/censudex-inventory/internal/service"
)

// Handler содержит HTTP-обработчики для Inventory Service
// Зависит от service слоя, но не знает о деталях реализации (брокер, БД и т.д.)
type Handler struct {
	stockService *service.StockService
	logger       *zap.Logger
}

// NewHandler создаёт новый HTTP handler
func NewHandler(stockService *service.StockService, logger *zap.Logger) *Handler {
	return &Handler{
		stockService: stockService,
		logger:       logger,
	}
}

// FieldError описывает ошибку валидации одного поля запроса
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// UpdateStockRequest представляет тело PATCH /products/{id}
// Поле указательное, чтобы отличать "не передано" от нуля
type UpdateStockRequest struct {
	NewStock *int32 `json:"newStock"`
}

// Validate возвращает список ошибок по полям; пустой список означает,
// что запрос корректен
func (r UpdateStockRequest) Validate() []FieldError {
	var errs []FieldError
	if r.NewStock == nil {
		errs = append(errs, FieldError{Field: "newStock", Message: "newStock is required"})
	} else if *r.NewStock < 0 {
		errs = append(errs, FieldError{Field: "newStock", Message: "newStock must be >= 0"})
	}
	return errs
}

// ProductResponse представляет товар в HTTP ответе
type ProductResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	CurrentStock int32  `json:"currentStock"`
	MinimumStock int32  `json:"minimumStock"`
	Status       string `json:"status"`
}

func toProductResponse(p repository.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Category:     p.Category,
		CurrentStock: p.CurrentStock,
		MinimumStock: p.MinimumStock,
		Status:       string(p.Status),
	}
}

// GetProducts обрабатывает GET /products - список всех товаров
func (h *Handler) GetProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	products, err := h.stockService.GetAllProducts(ctx)
	if err != nil {
		h.logger.Error("failed to get products", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to get products")
		return
	}

	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "products retrieved successfully",
		"data":    out,
	})
}

// GetProductByID обрабатывает GET /products/{id} - товар по ID
func (h *Handler) GetProductByID(w http.ResponseWriter, r *http.Request, rawID string) {
	ctx := r.Context()

	id, fieldErrs := parseProductID(rawID)
	if fieldErrs != nil {
		writeValidationError(w, fieldErrs)
		return
	}

	product, err := h.stockService.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("failed to get product", zap.Int64("product_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "product retrieved successfully",
		"data":    toProductResponse(product),
	})
}

// UpdateProductStock обрабатывает PATCH /products/{id} - ручная корректировка остатка
func (h *Handler) UpdateProductStock(w http.ResponseWriter, r *http.Request, rawID string) {
	ctx := r.Context()

	id, fieldErrs := parseProductID(rawID)
	if fieldErrs != nil {
		writeValidationError(w, fieldErrs)
		return
	}

	var reqBody UpdateStockRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if errs := reqBody.Validate(); errs != nil {
		writeValidationError(w, errs)
		return
	}

	result, err := h.stockService.UpdateStockManually(ctx, id, *reqBody.NewStock)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNegativeStock):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrStockUnchanged):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "product not found")
		default:
			h.logger.Error("failed to update stock", zap.Int64("product_id", id), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to update stock")
		}
		return
	}

	message := "stock updated successfully"
	if result.Warning != "" {
		message = message + ". Warning: " + result.Warning
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": message,
		"data":    toProductResponse(result.Product),
	})
}

// parseProductID валидирует path-параметр id: положительное целое
func parseProductID(raw string) (int64, []FieldError) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, []FieldError{{Field: "id", Message: "id must be a positive integer"}}
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": message,
	})
}

func writeValidationError(w http.ResponseWriter, errs []FieldError) {
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error": map[string]interface{}{
			"message": "validation failed",
			"params":  errs,
		},
	})
}
