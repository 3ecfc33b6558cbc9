package domain

import (
	"time"
)

// TaxRate is the flat tax applied to every order subtotal.
const TaxRate = 0.10

// Category enumerates the fixed set of product categories.
type Category string

const (
	CategoryNecklaces Category = "Necklaces"
	CategoryEarrings  Category = "Earrings"
	CategoryRings     Category = "Rings"
	CategoryBracelets Category = "Bracelets"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryNecklaces,
	CategoryEarrings,
	CategoryRings,
	CategoryBracelets,
}

// ValidCategory reports whether the value is one of the fixed categories.
func ValidCategory(value string) bool {
	for _, c := range Categories {
		if string(c) == value {
			return true
		}
	}
	return false
}

// Product is a catalog entry. Prices are decimal amounts in the store
// currency; stock quantities never go negative.
type Product struct {
	ID            string
	Name          string
	Price         float64
	Description   string
	ImageURL      string
	Category      Category
	Details       []string
	InStock       bool
	StockQuantity int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Available reports whether the product can be ordered: the in-stock flag
// is set and at least one unit remains.
func (p Product) Available() bool {
	return p.InStock && p.StockQuantity > 0
}

// OrderStatus tracks order fulfilment progress.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusPlaced     OrderStatus = "Placed"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// OrderStatuses lists every valid order status.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPlaced,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// ValidOrderStatus reports whether the value is in the order status enum.
func ValidOrderStatus(value string) bool {
	for _, s := range OrderStatuses {
		if string(s) == value {
			return true
		}
	}
	return false
}

// Cancellable reports whether an order in this status may still be
// cancelled. Shipped, Delivered, and already-Cancelled orders may not.
func (s OrderStatus) Cancellable() bool {
	switch s {
	case OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return false
	default:
		return true
	}
}

// PaymentStatus mirrors the demo payment lifecycle.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusPaid    PaymentStatus = "Paid"
	PaymentStatusFailed  PaymentStatus = "Failed"
)

// Address is a postal address attached to an order's customer details.
type Address struct {
	Street  string
	City    string
	State   string
	ZipCode string
	Country string
}

// CustomerDetails captures the purchaser's contact information.
type CustomerDetails struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   Address
}

// FullName joins the customer's first and last name.
func (c CustomerDetails) FullName() string {
	return c.FirstName + " " + c.LastName
}

// OrderLineItem is one product/quantity pair within an order. Name and
// price are frozen snapshots taken at order time and never re-derived
// from the live product.
type OrderLineItem struct {
	ProductID string
	Name      string
	Price     float64
	Quantity  int
	Subtotal  float64
}

// Order is a placed customer order. Financial fields are computed
// server-side at creation and immutable afterwards; only the status
// fields change over the order's lifetime.
type Order struct {
	ID              string
	OrderNumber     string
	Products        []OrderLineItem
	CustomerDetails CustomerDetails
	Subtotal        float64
	Tax             float64
	ShippingCost    float64
	TotalAmount     float64
	Status          OrderStatus
	PaymentStatus   PaymentStatus
	ShippingMethod  string
	TrackingNumber  *string
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TotalItems sums the quantities across every line item.
func (o Order) TotalItems() int {
	total := 0
	for _, item := range o.Products {
		total += item.Quantity
	}
	return total
}

// Page is an offset-paginated result set with total-count metadata.
type Page[T any] struct {
	Items []T
	Total int
	Page  int
	Pages int
}
