package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/peachwood/api/internal/domain"
	"github.com/peachwood/api/internal/platform/events"
	"github.com/peachwood/api/internal/repositories"
)

const testOrderID = "ord_01ARZ3NDEKTSV4RRFFQ69G5FAV"

var testClock = func() time.Time { return time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC) }

func validCustomerInput() CustomerInput {
	return CustomerInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     "555-0100",
		Address:   "12 Analytical Way",
		City:      "London",
		State:     "LDN",
		ZipCode:   "12345",
	}
}

func availableProduct() domain.Product {
	return domain.Product{
		ID:            testProductID,
		Name:          "Eternal Grace Necklace",
		Price:         189.99,
		Category:      domain.CategoryNecklaces,
		InStock:       true,
		StockQuantity: 50,
	}
}

func newOrderService(t *testing.T, orders *stubOrderRepository, products *stubProductRepository, publisher OrderEventPublisher) OrderService {
	t.Helper()
	svc, err := NewOrderService(OrderServiceDeps{
		Orders:   orders,
		Products: products,
		OrderNumbers: NewOrderNumberGenerator(
			WithOrderNumberClock(testClock),
			WithOrderNumberRandom(func() int { return 1234 }),
		),
		Clock:       testClock,
		IDGenerator: func() string { return "01ARZ3NDEKTSV4RRFFQ69G5FAV" },
		Events:      publisher,
	})
	if err != nil {
		t.Fatalf("NewOrderService: %v", err)
	}
	return svc
}

func TestCreateOrderRequiresItems(t *testing.T) {
	svc := newOrderService(t, &stubOrderRepository{}, &stubProductRepository{}, nil)

	_, err := svc.CreateOrder(context.Background(), CreateOrderCommand{Customer: validCustomerInput()})
	if !errors.Is(err, ErrOrderInvalidInput) {
		t.Fatalf("expected ErrOrderInvalidInput, got %v", err)
	}
	if err.Error() != "Order must contain at least one product" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestCreateOrderValidatesCustomer(t *testing.T) {
	svc := newOrderService(t, &stubOrderRepository{}, &stubProductRepository{}, nil)

	customer := validCustomerInput()
	customer.Email = "not-an-email"
	customer.City = ""

	_, err := svc.CreateOrder(context.Background(), CreateOrderCommand{
		Items:    []OrderItemInput{{ProductID: testProductID, Quantity: 1}},
		Customer: customer,
	})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	fields := strings.Join(verr.Fields(), "|")
	if !strings.Contains(fields, "Please provide a valid email address") {
		t.Fatalf("expected email message in %q", fields)
	}
	if !strings.Contains(fields, "City is required") {
		t.Fatalf("expected city message in %q", fields)
	}
}

func TestCreateOrderPricesServerSide(t *testing.T) {
	var inserted domain.Order
	orders := &stubOrderRepository{
		insertFn: func(_ context.Context, order domain.Order) error {
			inserted = order
			return nil
		},
	}
	products := &stubProductRepository{
		findFn: func(_ context.Context, productID string) (domain.Product, error) {
			return availableProduct(), nil
		},
	}
	publisher := &stubEventPublisher{}
	svc := newOrderService(t, orders, products, publisher)

	order, err := svc.CreateOrder(context.Background(), CreateOrderCommand{
		Items:    []OrderItemInput{{ProductID: testProductID, Quantity: 2}},
		Customer: validCustomerInput(),
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	wantSubtotal := 189.99 * 2
	if math.Abs(order.Subtotal-wantSubtotal) > 1e-9 {
		t.Fatalf("expected subtotal %.2f, got %.2f", wantSubtotal, order.Subtotal)
	}
	if math.Abs(order.Tax-wantSubtotal*0.1) > 1e-9 {
		t.Fatalf("expected tax %.4f, got %.4f", wantSubtotal*0.1, order.Tax)
	}
	if order.ShippingCost != 0 {
		t.Fatalf("expected free shipping, got %.2f", order.ShippingCost)
	}
	if math.Abs(order.TotalAmount-(order.Subtotal+order.Tax)) > 1e-9 {
		t.Fatalf("expected total %.4f, got %.4f", order.Subtotal+order.Tax, order.TotalAmount)
	}
	if order.Status != domain.OrderStatusPlaced {
		t.Fatalf("expected Placed status, got %s", order.Status)
	}
	if order.PaymentStatus != domain.PaymentStatusPaid {
		t.Fatalf("expected Paid payment status, got %s", order.PaymentStatus)
	}
	if order.ShippingMethod != "Standard Shipping" {
		t.Fatalf("expected default shipping method, got %q", order.ShippingMethod)
	}
	if order.CustomerDetails.Address.Country != "United States" {
		t.Fatalf("expected default country, got %q", order.CustomerDetails.Address.Country)
	}
	if !strings.HasPrefix(order.ID, "ord_") {
		t.Fatalf("expected ord_ prefix, got %q", order.ID)
	}
	if !strings.HasPrefix(order.OrderNumber, "PW") {
		t.Fatalf("expected PW order number, got %q", order.OrderNumber)
	}
	if inserted.OrderNumber != order.OrderNumber {
		t.Fatalf("expected inserted order number %q, got %q", order.OrderNumber, inserted.OrderNumber)
	}

	if len(publisher.published) != 1 {
		t.Fatalf("expected 1 event, got %d", len(publisher.published))
	}
	event := publisher.published[0]
	if event.Type != events.TypeOrderCreated || event.OrderID != order.ID {
		t.Fatalf("unexpected event %#v", event)
	}
}

func TestCreateOrderPricesMultipleLineItems(t *testing.T) {
	const secondProductID = "prd_01BX5ZZKBKACTAV9WEVGEMMVS0"
	catalog := map[string]domain.Product{
		testProductID: {
			ID:            testProductID,
			Name:          "Eternal Grace Necklace",
			Price:         100,
			Category:      domain.CategoryNecklaces,
			InStock:       true,
			StockQuantity: 50,
		},
		secondProductID: {
			ID:            secondProductID,
			Name:          "Twisted Band Ring",
			Price:         50,
			Category:      domain.CategoryRings,
			InStock:       true,
			StockQuantity: 90,
		},
	}
	orders := &stubOrderRepository{
		insertFn: func(context.Context, domain.Order) error { return nil },
	}
	products := &stubProductRepository{
		findFn: func(_ context.Context, productID string) (domain.Product, error) {
			product, ok := catalog[productID]
			if !ok {
				return domain.Product{}, errStubNotFound
			}
			return product, nil
		},
	}
	svc := newOrderService(t, orders, products, nil)

	order, err := svc.CreateOrder(context.Background(), CreateOrderCommand{
		Items: []OrderItemInput{
			{ProductID: testProductID, Quantity: 2},
			{ProductID: secondProductID, Quantity: 1},
		},
		Customer: validCustomerInput(),
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if math.Abs(order.Subtotal-250) > 1e-9 {
		t.Fatalf("expected subtotal 250, got %.2f", order.Subtotal)
	}
	if math.Abs(order.Tax-25) > 1e-9 {
		t.Fatalf("expected tax 25, got %.2f", order.Tax)
	}
	if math.Abs(order.TotalAmount-275) > 1e-9 {
		t.Fatalf("expected total 275, got %.2f", order.TotalAmount)
	}

	if len(order.Products) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(order.Products))
	}
	want := []domain.OrderLineItem{
		{ProductID: testProductID, Name: "Eternal Grace Necklace", Price: 100, Quantity: 2, Subtotal: 200},
		{ProductID: secondProductID, Name: "Twisted Band Ring", Price: 50, Quantity: 1, Subtotal: 50},
	}
	for i, item := range order.Products {
		if item != want[i] {
			t.Fatalf("line item %d: expected %#v, got %#v", i, want[i], item)
		}
	}
}

func TestCreateOrderTruncatesNotesOnRuneBoundary(t *testing.T) {
	orders := &stubOrderRepository{
		insertFn: func(context.Context, domain.Order) error { return nil },
	}
	products := &stubProductRepository{
		findFn: func(context.Context, string) (domain.Product, error) {
			return availableProduct(), nil
		},
	}
	svc := newOrderService(t, orders, products, nil)

	// The 500th character is multibyte, so a byte-offset cut would leave
	// a dangling partial rune at the end of the stored notes.
	notes := strings.Repeat("a", 499) + "é" + strings.Repeat("b", 40)

	order, err := svc.CreateOrder(context.Background(), CreateOrderCommand{
		Items:    []OrderItemInput{{ProductID: testProductID, Quantity: 1}},
		Customer: validCustomerInput(),
		Notes:    notes,
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if !utf8.ValidString(order.Notes) {
		t.Fatalf("expected valid UTF-8 notes, got %q", order.Notes)
	}
	if got := utf8.RuneCountInString(order.Notes); got != 500 {
		t.Fatalf("expected 500-character notes, got %d", got)
	}
	if want := strings.Repeat("a", 499) + "é"; order.Notes != want {
		t.Fatalf("expected notes cut after the accented character, got %q", order.Notes)
	}
}

func TestCreateOrderRejectsUnknownProduct(t *testing.T) {
	products := &stubProductRepository{
		findFn: func(context.Context, string) (domain.Product, error) {
			return domain.Product{}, errStubNotFound
		},
	}
	svc := newOrderService(t, &stubOrderRepository{}, products, nil)

	_, err := svc.CreateOrder(context.Background(), CreateOrderCommand{
		Items:    []OrderItemInput{{ProductID: testProductID, Quantity: 1}},
		Customer: validCustomerInput(),
	})
	if !errors.Is(err, ErrOrderProductNotFound) {
		t.Fatalf("expected ErrOrderProductNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), testProductID) {
		t.Fatalf("expected product id in message, got %q", err.Error())
	}
}

func TestCreateOrderRejectsOutOfStock(t *testing.T) {
	product := availableProduct()
	product.InStock = false
	products := &stubProductRepository{
		findFn: func(context.Context, string) (domain.Product, error) {
			return product, nil
		},
	}
	svc := newOrderService(t, &stubOrderRepository{}, products, nil)

	_, err := svc.CreateOrder(context.Background(), CreateOrderCommand{
		Items:    []OrderItemInput{{ProductID: testProductID, Quantity: 1}},
		Customer: validCustomerInput(),
	})
	if !errors.Is(err, ErrOrderProductUnavailable) {
		t.Fatalf("expected ErrOrderProductUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "out of stock") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestCreateOrderRejectsInsufficientStock(t *testing.T) {
	product := availableProduct()
	product.StockQuantity = 1
	products := &stubProductRepository{
		findFn: func(context.Context, string) (domain.Product, error) {
			return product, nil
		},
	}
	svc := newOrderService(t, &stubOrderRepository{}, products, nil)

	_, err := svc.CreateOrder(context.Background(), CreateOrderCommand{
		Items:    []OrderItemInput{{ProductID: testProductID, Quantity: 3}},
		Customer: validCustomerInput(),
	})
	if !errors.Is(err, ErrOrderProductUnavailable) {
		t.Fatalf("expected ErrOrderProductUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "Available: 1") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestCreateOrderRetriesOnNumberCollision(t *testing.T) {
	attempts := 0
	orders := &stubOrderRepository{
		insertFn: func(_ context.Context, order domain.Order) error {
			attempts++
			if attempts < 3 {
				return errStubConflict
			}
			return nil
		},
	}
	products := &stubProductRepository{
		findFn: func(context.Context, string) (domain.Product, error) {
			return availableProduct(), nil
		},
	}
	svc := newOrderService(t, orders, products, nil)

	_, err := svc.CreateOrder(context.Background(), CreateOrderCommand{
		Items:    []OrderItemInput{{ProductID: testProductID, Quantity: 1}},
		Customer: validCustomerInput(),
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 insert attempts, got %d", attempts)
	}
}

func TestCreateOrderGivesUpAfterRepeatedCollisions(t *testing.T) {
	orders := &stubOrderRepository{
		insertFn: func(context.Context, domain.Order) error {
			return errStubConflict
		},
	}
	products := &stubProductRepository{
		findFn: func(context.Context, string) (domain.Product, error) {
			return availableProduct(), nil
		},
	}
	svc := newOrderService(t, orders, products, nil)

	_, err := svc.CreateOrder(context.Background(), CreateOrderCommand{
		Items:    []OrderItemInput{{ProductID: testProductID, Quantity: 1}},
		Customer: validCustomerInput(),
	})
	if !errors.Is(err, ErrOrderConflict) {
		t.Fatalf("expected ErrOrderConflict, got %v", err)
	}
}

func TestCreateOrderSucceedsWhenPublishFails(t *testing.T) {
	orders := &stubOrderRepository{
		insertFn: func(context.Context, domain.Order) error { return nil },
	}
	products := &stubProductRepository{
		findFn: func(context.Context, string) (domain.Product, error) {
			return availableProduct(), nil
		},
	}
	publisher := &stubEventPublisher{err: errors.New("broker down")}
	svc := newOrderService(t, orders, products, publisher)

	_, err := svc.CreateOrder(context.Background(), CreateOrderCommand{
		Items:    []OrderItemInput{{ProductID: testProductID, Quantity: 1}},
		Customer: validCustomerInput(),
	})
	if err != nil {
		t.Fatalf("expected order placement to survive publish failure, got %v", err)
	}
}

func TestGetOrderRejectsMalformedID(t *testing.T) {
	svc := newOrderService(t, &stubOrderRepository{}, &stubProductRepository{}, nil)

	_, err := svc.GetOrder(context.Background(), "1234")
	if !errors.Is(err, ErrOrderInvalidID) {
		t.Fatalf("expected ErrOrderInvalidID, got %v", err)
	}
}

func TestListOrdersPassesUnknownStatusThrough(t *testing.T) {
	var captured repositories.OrderListFilter
	orders := &stubOrderRepository{
		listFn: func(_ context.Context, filter repositories.OrderListFilter) (domain.Page[domain.Order], error) {
			captured = filter
			return domain.Page[domain.Order]{Items: nil, Total: 0, Page: 1, Pages: 0}, nil
		},
	}
	svc := newOrderService(t, orders, &stubProductRepository{}, nil)

	page, err := svc.ListOrders(context.Background(), OrderFilter{Status: "Lost"})
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if captured.Status != domain.OrderStatus("Lost") {
		t.Fatalf("expected status filter passed through, got %q", captured.Status)
	}
	if len(page.Items) != 0 || page.Total != 0 {
		t.Fatalf("expected empty page, got %#v", page)
	}
}

func TestListOrdersPassesFilter(t *testing.T) {
	var captured repositories.OrderListFilter
	orders := &stubOrderRepository{
		listFn: func(_ context.Context, filter repositories.OrderListFilter) (domain.Page[domain.Order], error) {
			captured = filter
			return domain.Page[domain.Order]{Items: []domain.Order{{ID: testOrderID}}, Total: 1, Page: 2, Pages: 1}, nil
		},
	}
	svc := newOrderService(t, orders, &stubProductRepository{}, nil)

	page, err := svc.ListOrders(context.Background(), OrderFilter{Status: "Placed", Limit: 10, Page: 2})
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if captured.Status != domain.OrderStatusPlaced || captured.Limit != 10 || captured.Page != 2 {
		t.Fatalf("unexpected filter %#v", captured)
	}
	if page.Total != 1 {
		t.Fatalf("unexpected page %#v", page)
	}
}

func TestUpdateOrderStatusRejectsUnknownStatus(t *testing.T) {
	svc := newOrderService(t, &stubOrderRepository{}, &stubProductRepository{}, nil)

	_, err := svc.UpdateOrderStatus(context.Background(), testOrderID, "Lost")
	if !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("expected ErrOrderStatusInvalid, got %v", err)
	}
	if !strings.Contains(err.Error(), "Pending, Placed, Processing, Shipped, Delivered, Cancelled") {
		t.Fatalf("expected status list in message, got %q", err.Error())
	}
}

func TestUpdateOrderStatusPublishesTransition(t *testing.T) {
	stored := domain.Order{ID: testOrderID, OrderNumber: "PW000001231234", Status: domain.OrderStatusPlaced}
	var updated domain.Order
	orders := &stubOrderRepository{
		findFn: func(context.Context, string) (domain.Order, error) {
			return stored, nil
		},
		updateFn: func(_ context.Context, order domain.Order) error {
			updated = order
			return nil
		},
	}
	publisher := &stubEventPublisher{}
	svc := newOrderService(t, orders, &stubProductRepository{}, publisher)

	order, err := svc.UpdateOrderStatus(context.Background(), testOrderID, "Shipped")
	if err != nil {
		t.Fatalf("UpdateOrderStatus: %v", err)
	}
	if order.Status != domain.OrderStatusShipped {
		t.Fatalf("expected Shipped, got %s", order.Status)
	}
	if updated.Status != domain.OrderStatusShipped {
		t.Fatalf("expected persisted Shipped, got %s", updated.Status)
	}

	if len(publisher.published) != 1 {
		t.Fatalf("expected 1 event, got %d", len(publisher.published))
	}
	event := publisher.published[0]
	if event.Type != events.TypeOrderStatusChanged || event.PreviousStatus != "Placed" || event.Status != "Shipped" {
		t.Fatalf("unexpected event %#v", event)
	}
}

func TestCancelOrderRejectsShipped(t *testing.T) {
	orders := &stubOrderRepository{
		findFn: func(context.Context, string) (domain.Order, error) {
			return domain.Order{ID: testOrderID, Status: domain.OrderStatusShipped}, nil
		},
	}
	svc := newOrderService(t, orders, &stubProductRepository{}, nil)

	_, err := svc.CancelOrder(context.Background(), testOrderID)
	if !errors.Is(err, ErrOrderNotCancellable) {
		t.Fatalf("expected ErrOrderNotCancellable, got %v", err)
	}
	if err.Error() != "Cannot cancel order with status: Shipped" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestCancelOrderSetsCancelled(t *testing.T) {
	var updated domain.Order
	orders := &stubOrderRepository{
		findFn: func(context.Context, string) (domain.Order, error) {
			return domain.Order{ID: testOrderID, Status: domain.OrderStatusPlaced}, nil
		},
		updateFn: func(_ context.Context, order domain.Order) error {
			updated = order
			return nil
		},
	}
	publisher := &stubEventPublisher{}
	svc := newOrderService(t, orders, &stubProductRepository{}, publisher)

	order, err := svc.CancelOrder(context.Background(), testOrderID)
	if err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	if order.Status != domain.OrderStatusCancelled {
		t.Fatalf("expected Cancelled, got %s", order.Status)
	}
	if updated.Status != domain.OrderStatusCancelled {
		t.Fatalf("expected persisted Cancelled, got %s", updated.Status)
	}
	if len(publisher.published) != 1 {
		t.Fatalf("expected 1 event, got %d", len(publisher.published))
	}
}
