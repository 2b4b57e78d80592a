package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ucbazaar/shop-backend/internal/model"
	"github.com/ucbazaar/shop-backend/internal/repository"
	"github.com/ucbazaar/shop-backend/internal/service"
	"gorm.io/gorm"
)

type ProductHandler struct {
	products repository.ProductRepository
	stock    service.StockLedger
}

func NewProductHandler(products repository.ProductRepository, stock service.StockLedger) *ProductHandler {
	return &ProductHandler{products: products, stock: stock}
}

type ProductResponse struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Stock       int64  `json:"stock"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	Fulfillment string `json:"fulfillment"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func toProductResponse(p *model.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Stock:       p.Stock,
		Category:    p.Category,
		Status:      string(p.Status),
		Fulfillment: string(p.Fulfillment),
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *ProductHandler) List(c echo.Context) error {
	onlyActive := c.QueryParam("active") == "true"
	list, err := h.products.List(c.Request().Context(), onlyActive)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch products"))
	}
	resp := make([]ProductResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toProductResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

type createProductRequest struct {
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Category    string `json:"category"`
	Fulfillment string `json:"fulfillment"`
}

func (h *ProductHandler) Create(c echo.Context) error {
	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Price < 0 || req.Category == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "name, price and category are required"))
	}
	fulfillment := model.FulfillmentType(req.Fulfillment)
	if fulfillment != model.FulfillmentAuto && fulfillment != model.FulfillmentManual {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "fulfillment must be auto or manual"))
	}
	p := &model.Product{
		Name:        req.Name,
		Price:       req.Price,
		Category:    req.Category,
		Status:      model.ProductStatusActive,
		Fulfillment: fulfillment,
	}
	if err := h.products.Create(c.Request().Context(), p); err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to create product"))
	}
	return c.JSON(http.StatusCreated, toProductResponse(p))
}

type patchProductRequest struct {
	Name   *string `json:"name"`
	Price  *int64  `json:"price"`
	Status *string `json:"status"`
}

func (h *ProductHandler) Patch(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid product id"))
	}
	var req patchProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	ctx := c.Request().Context()
	p, err := h.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "product not found"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch product"))
	}
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "price must be non-negative"))
		}
		p.Price = *req.Price
	}
	if req.Status != nil {
		status := model.ProductStatus(*req.Status)
		if status != model.ProductStatusActive && status != model.ProductStatusInactive {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "status must be active or inactive"))
		}
		p.Status = status
	}
	if err := h.products.Update(ctx, p); err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to update product"))
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}

type adjustStockRequest struct {
	Delta int64  `json:"delta"`
	Note  string `json:"note"`
}

// AdjustStock is the only admin path that touches the stock counter; it
// goes through the ledger so the history row is never skipped.
func (h *ProductHandler) AdjustStock(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid product id"))
	}
	var req adjustStockRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	level, err := h.stock.Adjust(c.Request().Context(), id, req.Delta, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "product not found"))
		case errors.Is(err, service.ErrInsufficientStock):
			return c.JSON(http.StatusBadRequest, NewErrorResponse("insufficient_stock", "adjustment would drive stock negative"))
		default:
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to adjust stock"))
		}
	}
	return c.JSON(http.StatusOK, map[string]int64{"stock": level})
}

type StockHistoryResponse struct {
	ID        uint64 `json:"id"`
	ProductID uint64 `json:"productId"`
	Delta     int64  `json:"delta"`
	Type      string `json:"type"`
	Note      string `json:"note"`
	CreatedAt string `json:"createdAt"`
}

func (h *ProductHandler) History(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid product id"))
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	list, err := h.stock.History(c.Request().Context(), id, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch history"))
	}
	resp := make([]StockHistoryResponse, 0, len(list))
	for _, row := range list {
		resp = append(resp, StockHistoryResponse{
			ID:        row.ID,
			ProductID: row.ProductID,
			Delta:     row.Delta,
			Type:      row.Type,
			Note:      row.Note,
			CreatedAt: row.CreatedAt.Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, resp)
}
