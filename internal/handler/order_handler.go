package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ucbazaar/shop-backend/internal/model"
	"github.com/ucbazaar/shop-backend/internal/repository"
	"github.com/ucbazaar/shop-backend/internal/service"
	"github.com/ucbazaar/shop-backend/internal/session"
)

type OrderHandler struct {
	svc       service.OrderService
	referrals service.ReferralLedger
	carts     session.Store
}

func NewOrderHandler(svc service.OrderService, referrals service.ReferralLedger, carts session.Store) *OrderHandler {
	return &OrderHandler{svc: svc, referrals: referrals, carts: carts}
}

type LineItemResponse struct {
	ProductID   uint64 `json:"productId"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Qty         int    `json:"qty"`
	Category    string `json:"category"`
	Fulfillment string `json:"fulfillment"`
}

type OrderResponse struct {
	ID         uint64             `json:"id"`
	UserID     int64              `json:"userId"`
	PubgID     string             `json:"pubgId"`
	Nickname   string             `json:"nickname,omitempty"`
	Items      []LineItemResponse `json:"items"`
	Total      int64              `json:"total"`
	Status     string             `json:"status"`
	CheckoutID string             `json:"checkoutId,omitempty"`
	CreatedAt  string             `json:"createdAt"`
	UpdatedAt  string             `json:"updatedAt"`
	Warning    string             `json:"warning,omitempty"`
}

func toOrderResponse(o *model.Order) OrderResponse {
	items := make([]LineItemResponse, 0, len(o.Products))
	for _, it := range o.Products {
		items = append(items, LineItemResponse{
			ProductID:   it.ProductID,
			Name:        it.Name,
			Price:       it.Price,
			Qty:         it.Qty,
			Category:    it.Category,
			Fulfillment: string(it.Fulfillment),
		})
	}
	return OrderResponse{
		ID:         o.ID,
		UserID:     o.UserID,
		PubgID:     o.PubgID,
		Nickname:   o.Nickname,
		Items:      items,
		Total:      o.Total(),
		Status:     string(o.Status),
		CheckoutID: o.CheckoutID,
		CreatedAt:  o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  o.UpdatedAt.Format(time.RFC3339),
	}
}

type ListOrdersResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int64           `json:"total"`
}

func (h *OrderHandler) List(c echo.Context) error {
	var f repository.OrderFilter
	if s := c.QueryParam("status"); s != "" {
		status := model.OrderStatus(s)
		if !status.Valid() {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid status filter"))
		}
		f.Status = status
	}
	for param, dst := range map[string]**time.Time{"from": &f.From, "to": &f.To} {
		if v := c.QueryParam(param); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid "+param+" date"))
			}
			*dst = &t
		}
	}
	f.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	f.Offset, _ = strconv.Atoi(c.QueryParam("offset"))

	orders, total, err := h.svc.List(c.Request().Context(), f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch orders"))
	}
	resp := ListOrdersResponse{Orders: make([]OrderResponse, 0, len(orders)), Total: total}
	for i := range orders {
		resp.Orders = append(resp.Orders, toOrderResponse(&orders[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid order id"))
	}
	o, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "order not found"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch order"))
	}
	return c.JSON(http.StatusOK, toOrderResponse(o))
}

type createOrderRequest struct {
	UserID     int64  `json:"userId"`
	PubgID     string `json:"pubgId"`
	Nickname   string `json:"nickname"`
	ReferrerID int64  `json:"referrerId"`
	Items      []struct {
		ProductID uint64 `json:"productId"`
		Qty       int    `json:"qty"`
	} `json:"items"`
}

// Create builds a checkout group from the request body, or from the user's
// stored cart session when no explicit items are given.
func (h *OrderHandler) Create(c echo.Context) error {
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	ctx := c.Request().Context()

	lines := make([]service.CartLine, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, service.CartLine{ProductID: it.ProductID, Qty: it.Qty})
	}

	var fromCart bool
	if len(lines) == 0 && h.carts != nil {
		cart, err := h.carts.Get(ctx, req.UserID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to load cart"))
		}
		if cart != nil {
			fromCart = true
			if req.PubgID == "" {
				req.PubgID = cart.PubgID
			}
			if req.Nickname == "" {
				req.Nickname = cart.Nickname
			}
			if req.ReferrerID == 0 {
				req.ReferrerID = cart.ReferrerID
			}
			for _, it := range cart.Items {
				lines = append(lines, service.CartLine{ProductID: it.ProductID, Qty: it.Qty})
			}
		}
	}

	orders, err := h.svc.Checkout(ctx, req.UserID, req.PubgID, req.Nickname, lines)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", err.Error()))
		case errors.Is(err, service.ErrEmptyCart), errors.Is(err, service.ErrProductUnavailable):
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
		default:
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
		}
	}

	if req.ReferrerID != 0 {
		// Attribution is first-write-wins; a failure here must not undo the
		// created orders.
		_ = h.referrals.Attach(ctx, req.UserID, req.ReferrerID)
	}
	if fromCart {
		_ = h.carts.Delete(ctx, req.UserID)
	}

	resp := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, toOrderResponse(&orders[i]))
	}
	return c.JSON(http.StatusCreated, resp)
}

type patchOrderRequest struct {
	Status   string  `json:"status"`
	Nickname *string `json:"nickname"`
}

func (h *OrderHandler) Patch(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid order id"))
	}
	var req patchOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	if req.Status == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "status is required"))
	}

	res, err := h.svc.Transition(c.Request().Context(), id, model.OrderStatus(req.Status), req.Nickname)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "order not found"))
		case errors.Is(err, service.ErrInvalidStatus):
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid status"))
		case errors.Is(err, service.ErrConflict):
			return c.JSON(http.StatusConflict, NewErrorResponse("conflict", "order changed concurrently, retry"))
		default:
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to update order"))
		}
	}

	resp := toOrderResponse(res.Order)
	if res.CustomerUnreachable {
		resp.Warning = "customer_unreachable"
	}
	return c.JSON(http.StatusOK, resp)
}
