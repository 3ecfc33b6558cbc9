package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	"github.com/peachwood/api/internal/domain"
	"github.com/peachwood/api/internal/platform/events"
	"github.com/peachwood/api/internal/repositories"
)

const (
	orderIDPrefix = "ord_"

	// Order number collisions are vanishingly rare; a handful of retries
	// keeps placement from failing on an unlucky draw.
	orderNumberAttempts = 3
)

var (
	// ErrOrderInvalidInput signals the caller provided invalid data.
	ErrOrderInvalidInput = errors.New("order: invalid input")
	// ErrOrderInvalidID indicates a malformed order identifier.
	ErrOrderInvalidID = errors.New("order: invalid order id")
	// ErrOrderNotFound indicates the order could not be located.
	ErrOrderNotFound = errors.New("order: not found")
	// ErrOrderProductNotFound indicates a referenced product does not exist.
	ErrOrderProductNotFound = errors.New("order: product not found")
	// ErrOrderProductUnavailable indicates a referenced product is out of
	// stock or cannot cover the requested quantity.
	ErrOrderProductUnavailable = errors.New("order: product unavailable")
	// ErrOrderStatusInvalid indicates an unknown order status value.
	ErrOrderStatusInvalid = errors.New("order: invalid status")
	// ErrOrderNotCancellable indicates the order is past the point of cancellation.
	ErrOrderNotCancellable = errors.New("order: not cancellable")
	// ErrOrderConflict indicates a persistent write conflict.
	ErrOrderConflict = errors.New("order: conflict")
)

// RejectionError pairs a sentinel category with the customer-facing message
// surfaced on the API.
type RejectionError struct {
	Err     error
	Message string
}

// Error implements the error interface.
func (e *RejectionError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// Unwrap exposes the sentinel category for errors.Is checks.
func (e *RejectionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func reject(sentinel error, format string, args ...any) error {
	return &RejectionError{Err: sentinel, Message: fmt.Sprintf(format, args...)}
}

// OrderEventPublisher publishes order lifecycle events for downstream consumers.
type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, event events.OrderEvent) (string, error)
}

// OrderServiceDeps bundles collaborators required to construct the order service.
type OrderServiceDeps struct {
	Orders       repositories.OrderRepository
	Products     repositories.ProductRepository
	OrderNumbers *OrderNumberGenerator
	Clock        func() time.Time
	IDGenerator  func() string
	Events       OrderEventPublisher
	Logger       func(ctx context.Context, event string, fields map[string]any)
}

type orderService struct {
	orders  repositories.OrderRepository
	catalog repositories.ProductRepository
	numbers *OrderNumberGenerator
	clock   func() time.Time
	newID   func() string
	events  OrderEventPublisher
	logger  func(context.Context, string, map[string]any)
}

// NewOrderService wires dependencies into a concrete OrderService implementation.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Orders == nil {
		return nil, errors.New("order service: order repository is required")
	}
	if deps.Products == nil {
		return nil, errors.New("order service: product repository is required")
	}

	numbers := deps.OrderNumbers
	if numbers == nil {
		numbers = NewOrderNumberGenerator()
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string {
			return ulid.Make().String()
		}
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &orderService{
		orders:  deps.Orders,
		catalog: deps.Products,
		numbers: numbers,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID:  idGen,
		events: deps.Events,
		logger: logger,
	}, nil
}

func (s *orderService) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (domain.Order, error) {
	if len(cmd.Items) == 0 {
		return domain.Order{}, reject(ErrOrderInvalidInput, "Order must contain at least one product")
	}

	customer, err := validateCustomer(cmd.Customer)
	if err != nil {
		return domain.Order{}, err
	}

	items, subtotal, err := s.priceItems(ctx, cmd.Items)
	if err != nil {
		return domain.Order{}, err
	}

	tax := subtotal * domain.TaxRate
	now := s.clock()

	order := domain.Order{
		ID:              orderIDPrefix + s.newID(),
		Products:        items,
		CustomerDetails: customer,
		Subtotal:        subtotal,
		Tax:             tax,
		ShippingCost:    0,
		TotalAmount:     subtotal + tax,
		Status:          domain.OrderStatusPlaced,
		PaymentStatus:   domain.PaymentStatusPaid,
		ShippingMethod:  defaultShippingMethod,
		Notes:           truncate(cleanText(cmd.Notes), maxNotesLength),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.insertWithFreshNumber(ctx, &order); err != nil {
		return domain.Order{}, err
	}

	s.publishEvent(ctx, events.OrderEvent{
		Type:        events.TypeOrderCreated,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      string(order.Status),
		TotalAmount: order.TotalAmount,
		OccurredAt:  now,
	})

	return order, nil
}

// priceItems resolves each requested product, checks availability, and prices
// the line items server-side. Client-supplied amounts are never trusted.
func (s *orderService) priceItems(ctx context.Context, inputs []OrderItemInput) ([]domain.OrderLineItem, float64, error) {
	items := make([]domain.OrderLineItem, 0, len(inputs))
	subtotal := 0.0

	for _, input := range inputs {
		productID := strings.TrimSpace(input.ProductID)
		if !validPrefixedID(productID, productIDPrefix) {
			return nil, 0, reject(ErrOrderProductNotFound, "Product with ID %s not found", productID)
		}

		quantity := input.Quantity
		if quantity <= 0 {
			quantity = 1
		}

		product, err := s.catalog.FindByID(ctx, productID)
		if err != nil {
			var repoErr repositories.RepositoryError
			if errors.As(err, &repoErr) && repoErr.IsNotFound() {
				return nil, 0, reject(ErrOrderProductNotFound, "Product with ID %s not found", productID)
			}
			return nil, 0, s.mapRepositoryError(err)
		}

		if !product.Available() {
			return nil, 0, reject(ErrOrderProductUnavailable, "Product %q is currently out of stock", product.Name)
		}
		if product.StockQuantity < quantity {
			return nil, 0, reject(ErrOrderProductUnavailable, "Insufficient stock for %q. Available: %d", product.Name, product.StockQuantity)
		}

		lineSubtotal := product.Price * float64(quantity)
		subtotal += lineSubtotal

		items = append(items, domain.OrderLineItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  quantity,
			Subtotal:  lineSubtotal,
		})
	}

	return items, subtotal, nil
}

// insertWithFreshNumber stores the order, regenerating the order number when
// the reservation collides with an existing one.
func (s *orderService) insertWithFreshNumber(ctx context.Context, order *domain.Order) error {
	var lastErr error
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		order.OrderNumber = s.numbers.Next()

		err := s.orders.Insert(ctx, *order)
		if err == nil {
			return nil
		}

		var repoErr repositories.RepositoryError
		if errors.As(err, &repoErr) && repoErr.IsConflict() {
			lastErr = err
			s.logger(ctx, "order.number.collision", map[string]any{
				"orderNumber": order.OrderNumber,
				"attempt":     attempt + 1,
			})
			continue
		}
		return s.mapRepositoryError(err)
	}
	return fmt.Errorf("%w: order number generation exhausted: %v", ErrOrderConflict, lastErr)
}

func (s *orderService) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	orderID, err := normalizeOrderID(orderID)
	if err != nil {
		return domain.Order{}, err
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, s.mapRepositoryError(err)
	}
	return order, nil
}

func (s *orderService) GetOrderByNumber(ctx context.Context, orderNumber string) (domain.Order, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return domain.Order{}, reject(ErrOrderInvalidInput, "Order number is required")
	}

	order, err := s.orders.FindByNumber(ctx, orderNumber)
	if err != nil {
		return domain.Order{}, s.mapRepositoryError(err)
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, filter OrderFilter) (domain.Page[domain.Order], error) {
	repoFilter := repositories.OrderListFilter{
		Limit: filter.Limit,
		Page:  filter.Page,
	}
	// Any status value is passed through as a filter. An unknown status
	// simply matches nothing rather than failing the request.
	if status := strings.TrimSpace(filter.Status); status != "" {
		repoFilter.Status = domain.OrderStatus(status)
	}

	page, err := s.orders.List(ctx, repoFilter)
	if err != nil {
		return domain.Page[domain.Order]{}, s.mapRepositoryError(err)
	}
	return page, nil
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, orderID string, status string) (domain.Order, error) {
	orderID, err := normalizeOrderID(orderID)
	if err != nil {
		return domain.Order{}, err
	}

	status = strings.TrimSpace(status)
	if !domain.ValidOrderStatus(status) {
		return domain.Order{}, reject(ErrOrderStatusInvalid, "Invalid status. Must be one of: %s", joinOrderStatuses())
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, s.mapRepositoryError(err)
	}

	previous := order.Status
	order.Status = domain.OrderStatus(status)
	order.UpdatedAt = s.clock()

	if err := s.orders.Update(ctx, order); err != nil {
		return domain.Order{}, s.mapRepositoryError(err)
	}

	s.publishEvent(ctx, events.OrderEvent{
		Type:           events.TypeOrderStatusChanged,
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		Status:         string(order.Status),
		PreviousStatus: string(previous),
		OccurredAt:     order.UpdatedAt,
	})

	return order, nil
}

func (s *orderService) CancelOrder(ctx context.Context, orderID string) (domain.Order, error) {
	orderID, err := normalizeOrderID(orderID)
	if err != nil {
		return domain.Order{}, err
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, s.mapRepositoryError(err)
	}

	if !order.Status.Cancellable() {
		return domain.Order{}, reject(ErrOrderNotCancellable, "Cannot cancel order with status: %s", order.Status)
	}

	previous := order.Status
	order.Status = domain.OrderStatusCancelled
	order.UpdatedAt = s.clock()

	if err := s.orders.Update(ctx, order); err != nil {
		return domain.Order{}, s.mapRepositoryError(err)
	}

	s.publishEvent(ctx, events.OrderEvent{
		Type:           events.TypeOrderStatusChanged,
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		Status:         string(order.Status),
		PreviousStatus: string(previous),
		OccurredAt:     order.UpdatedAt,
	})

	return order, nil
}

// publishEvent emits the event on a best-effort basis. Failures are logged
// and never surface to the caller.
func (s *orderService) publishEvent(ctx context.Context, event events.OrderEvent) {
	if s.events == nil {
		return
	}
	if _, err := s.events.PublishOrderEvent(ctx, event); err != nil {
		s.logger(ctx, "order.event.publish.failed", map[string]any{
			"type":   event.Type,
			"order":  event.OrderID,
			"error":  err.Error(),
			"status": event.Status,
		})
	}
}

func (s *orderService) mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrOrderNotFound, err)
		case repoErr.IsConflict():
			return fmt.Errorf("%w: %v", ErrOrderConflict, err)
		case repoErr.IsUnavailable():
			return fmt.Errorf("order: repository unavailable: %w", err)
		}
	}

	return err
}

func normalizeOrderID(orderID string) (string, error) {
	orderID = strings.TrimSpace(orderID)
	if !validPrefixedID(orderID, orderIDPrefix) {
		return "", fmt.Errorf("%w: %q", ErrOrderInvalidID, orderID)
	}
	return orderID, nil
}

func joinOrderStatuses() string {
	names := make([]string, 0, len(domain.OrderStatuses))
	for _, status := range domain.OrderStatuses {
		names = append(names, string(status))
	}
	return strings.Join(names, ", ")
}

// truncate caps value at limit characters, never splitting a multibyte rune.
func truncate(value string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(value) <= limit {
		return value
	}
	runes := []rune(value)
	return string(runes[:limit])
}
