package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/peachwood/api/internal/platform/httpx"
	"github.com/peachwood/api/internal/services"
)

const (
	maxOrderBodySize  = 256 * 1024
	defaultOrderLimit = 50
	maxOrderLimit     = 200
)

type createOrderRequest struct {
	Products []struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	} `json:"products"`
	CustomerDetails *struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
		Phone     string `json:"phone"`
		Address   string `json:"address"`
		City      string `json:"city"`
		State     string `json:"state"`
		ZipCode   string `json:"zipCode"`
		Country   string `json:"country"`
	} `json:"customerDetails"`
	Notes string `json:"notes"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

// OrderHandlers exposes the order endpoints.
type OrderHandlers struct {
	orders       services.OrderService
	exposeErrors bool
}

// NewOrderHandlers constructs a new OrderHandlers instance. When exposeErrors
// is set, internal error detail is included in 500 responses.
func NewOrderHandlers(orders services.OrderService, exposeErrors bool) *OrderHandlers {
	return &OrderHandlers{
		orders:       orders,
		exposeErrors: exposeErrors,
	}
}

// Routes registers the /orders endpoints.
func (h *OrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/", h.createOrder)
	r.Get("/", h.listOrders)
	r.Get("/number/{orderNumber}", h.getOrderByNumber)
	r.Get("/{orderID}", h.getOrder)
	r.Patch("/{orderID}/status", h.updateOrderStatus)
	r.Patch("/{orderID}/cancel", h.cancelOrder)
}

func (h *OrderHandlers) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	defer func() {
		_ = r.Body.Close()
	}()

	var payload createOrderRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxOrderBodySize))
	if err := decoder.Decode(&payload); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("Invalid JSON body", http.StatusBadRequest))
		return
	}

	if len(payload.Products) == 0 {
		httpx.WriteError(ctx, w, httpx.NewError("Order must contain at least one product", http.StatusBadRequest))
		return
	}
	if payload.CustomerDetails == nil {
		httpx.WriteError(ctx, w, httpx.NewError("Customer details are required", http.StatusBadRequest))
		return
	}

	cmd := services.CreateOrderCommand{
		Items: make([]services.OrderItemInput, 0, len(payload.Products)),
		Customer: services.CustomerInput{
			FirstName: payload.CustomerDetails.FirstName,
			LastName:  payload.CustomerDetails.LastName,
			Email:     payload.CustomerDetails.Email,
			Phone:     payload.CustomerDetails.Phone,
			Address:   payload.CustomerDetails.Address,
			City:      payload.CustomerDetails.City,
			State:     payload.CustomerDetails.State,
			ZipCode:   payload.CustomerDetails.ZipCode,
			Country:   payload.CustomerDetails.Country,
		},
		Notes: payload.Notes,
	}
	for _, item := range payload.Products {
		cmd.Items = append(cmd.Items, services.OrderItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, err := h.orders.CreateOrder(ctx, cmd)
	if err != nil {
		h.writeError(w, r, err, "Failed to create order")
		return
	}

	httpx.WriteMessage(ctx, w, http.StatusCreated, "Order placed successfully", newOrderResponse(order))
}

func (h *OrderHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	filter := services.OrderFilter{
		Status: strings.TrimSpace(query.Get("status")),
		Limit:  defaultOrderLimit,
		Page:   1,
	}

	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("limit must be an integer", http.StatusBadRequest))
			return
		}
		switch {
		case limit <= 0:
			filter.Limit = defaultOrderLimit
		case limit > maxOrderLimit:
			filter.Limit = maxOrderLimit
		default:
			filter.Limit = limit
		}
	}
	if raw := strings.TrimSpace(query.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("page must be an integer", http.StatusBadRequest))
			return
		}
		if page > 0 {
			filter.Page = page
		}
	}

	page, err := h.orders.ListOrders(ctx, filter)
	if err != nil {
		h.writeError(w, r, err, "Failed to fetch orders")
		return
	}

	payload := newOrderListResponse(page.Items)
	httpx.WriteList(ctx, w, http.StatusOK, payload, map[string]any{
		"count": len(payload),
		"total": page.Total,
		"page":  page.Page,
		"pages": page.Pages,
	})
}

func (h *OrderHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	order, err := h.orders.GetOrder(ctx, chi.URLParam(r, "orderID"))
	if err != nil {
		h.writeError(w, r, err, "Failed to fetch order")
		return
	}

	httpx.WriteData(ctx, w, http.StatusOK, newOrderResponse(order))
}

func (h *OrderHandlers) getOrderByNumber(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	order, err := h.orders.GetOrderByNumber(ctx, chi.URLParam(r, "orderNumber"))
	if err != nil {
		h.writeError(w, r, err, "Failed to fetch order")
		return
	}

	httpx.WriteData(ctx, w, http.StatusOK, newOrderResponse(order))
}

func (h *OrderHandlers) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	defer func() {
		_ = r.Body.Close()
	}()

	var payload updateOrderStatusRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxOrderBodySize))
	if err := decoder.Decode(&payload); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("Invalid JSON body", http.StatusBadRequest))
		return
	}

	order, err := h.orders.UpdateOrderStatus(ctx, chi.URLParam(r, "orderID"), payload.Status)
	if err != nil {
		h.writeError(w, r, err, "Failed to update order status")
		return
	}

	httpx.WriteMessage(ctx, w, http.StatusOK, "Order status updated successfully", newOrderResponse(order))
}

func (h *OrderHandlers) cancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	order, err := h.orders.CancelOrder(ctx, chi.URLParam(r, "orderID"))
	if err != nil {
		h.writeError(w, r, err, "Failed to cancel order")
		return
	}

	httpx.WriteMessage(ctx, w, http.StatusOK, "Order cancelled successfully", newOrderResponse(order))
}

func (h *OrderHandlers) writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	ctx := r.Context()

	var verr *services.ValidationError
	if errors.As(err, &verr) {
		httpx.WriteError(ctx, w, httpx.NewError("Validation failed", http.StatusBadRequest).WithFieldErrors(verr.Fields()))
		return
	}

	var rejection *services.RejectionError
	if errors.As(err, &rejection) {
		status := http.StatusBadRequest
		if errors.Is(err, services.ErrOrderProductNotFound) {
			status = http.StatusNotFound
		}
		httpx.WriteError(ctx, w, httpx.NewError(rejection.Message, status))
		return
	}

	switch {
	case errors.Is(err, services.ErrOrderInvalidID):
		httpx.WriteError(ctx, w, httpx.NewError("Invalid order ID format", http.StatusBadRequest))
	case errors.Is(err, services.ErrOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("Order not found", http.StatusNotFound))
	case errors.Is(err, services.ErrOrderConflict):
		httpx.WriteError(ctx, w, httpx.NewError("Order could not be placed, please retry", http.StatusConflict))
	default:
		respErr := httpx.NewError(fallback, http.StatusInternalServerError)
		if h.exposeErrors {
			respErr = respErr.WithDetail(err.Error())
		}
		httpx.WriteError(ctx, w, respErr)
	}
}
