package repositories

import (
	"context"

	"github.com/peachwood/api/internal/domain"
)

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// ProductSort selects the ordering applied to product listings.
type ProductSort string

const (
	ProductSortDefault   ProductSort = "default"
	ProductSortPriceLow  ProductSort = "price-low"
	ProductSortPriceHigh ProductSort = "price-high"
	ProductSortName      ProductSort = "name"
)

// ProductListFilter narrows and orders product listings.
type ProductListFilter struct {
	Category    domain.Category
	MinPrice    *float64
	MaxPrice    *float64
	Sort        ProductSort
	InStockOnly bool
}

// ProductRepository persists catalog products.
type ProductRepository interface {
	Insert(ctx context.Context, product domain.Product) error
	Update(ctx context.Context, product domain.Product) error
	Delete(ctx context.Context, productID string) error
	FindByID(ctx context.Context, productID string) (domain.Product, error)
	List(ctx context.Context, filter ProductListFilter) ([]domain.Product, error)
}

// OrderListFilter narrows and pages order listings.
type OrderListFilter struct {
	Status domain.OrderStatus
	Limit  int
	Page   int
}

// OrderRepository persists orders together with their order number reservations.
type OrderRepository interface {
	// Insert stores a new order and reserves its order number atomically.
	// A duplicate order number reports a conflict.
	Insert(ctx context.Context, order domain.Order) error
	Update(ctx context.Context, order domain.Order) error
	FindByID(ctx context.Context, orderID string) (domain.Order, error)
	FindByNumber(ctx context.Context, orderNumber string) (domain.Order, error)
	List(ctx context.Context, filter OrderListFilter) (domain.Page[domain.Order], error)
}

// HealthRepository evaluates dependency readiness probes.
type HealthRepository interface {
	Collect(ctx context.Context) (domain.HealthReport, error)
}
