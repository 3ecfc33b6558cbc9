package services

import (
	"context"

	"github.com/peachwood/api/internal/domain"
)

// CatalogService exposes product catalog reads and admin mutations.
type CatalogService interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
	ListProductsByCategory(ctx context.Context, category string) ([]domain.Product, error)
	CreateProduct(ctx context.Context, input ProductInput) (domain.Product, error)
	UpdateProduct(ctx context.Context, productID string, input ProductInput) (domain.Product, error)
	DeleteProduct(ctx context.Context, productID string) error
}

// ProductFilter narrows and orders catalog listings.
type ProductFilter struct {
	Category string
	MinPrice *float64
	MaxPrice *float64
	Sort     string
}

// ProductInput carries the writable fields of a product.
type ProductInput struct {
	Name          string
	Price         float64
	Description   string
	ImageURL      string
	Category      string
	Details       []string
	InStock       *bool
	StockQuantity *int
}

// OrderService exposes order placement and lifecycle management.
type OrderService interface {
	CreateOrder(ctx context.Context, cmd CreateOrderCommand) (domain.Order, error)
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (domain.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) (domain.Page[domain.Order], error)
	UpdateOrderStatus(ctx context.Context, orderID string, status string) (domain.Order, error)
	CancelOrder(ctx context.Context, orderID string) (domain.Order, error)
}

// CreateOrderCommand carries the order placement request.
type CreateOrderCommand struct {
	Items    []OrderItemInput
	Customer CustomerInput
	Notes    string
}

// OrderItemInput references a catalog product and a requested quantity.
type OrderItemInput struct {
	ProductID string
	Quantity  int
}

// CustomerInput carries customer contact and shipping fields. Address is the
// street line; the remaining address parts arrive alongside it.
type CustomerInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	City      string
	State     string
	ZipCode   string
	Country   string
}

// OrderFilter narrows and pages order listings.
type OrderFilter struct {
	Status string
	Limit  int
	Page   int
}

// SystemService reports process health and dependency readiness.
type SystemService interface {
	Health(ctx context.Context) HealthSnapshot
	Readiness(ctx context.Context) (domain.HealthReport, error)
}

// HealthSnapshot is the liveness payload served on the health endpoint.
type HealthSnapshot struct {
	Environment string
	Uptime      string
	Timestamp   string
}
