package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/peachwood/api/internal/domain"
	pfirestore "github.com/peachwood/api/internal/platform/firestore"
	"github.com/peachwood/api/internal/repositories"
)

const (
	orderCollection       = "orders"
	orderNumberCollection = "orderNumbers"
)

type orderDocument struct {
	OrderNumber     string              `firestore:"orderNumber"`
	Products        []orderItemDocument `firestore:"products"`
	CustomerDetails customerDocument    `firestore:"customerDetails"`
	Subtotal        float64             `firestore:"subtotal"`
	Tax             float64             `firestore:"tax"`
	ShippingCost    float64             `firestore:"shippingCost"`
	TotalAmount     float64             `firestore:"totalAmount"`
	Status          string              `firestore:"status"`
	PaymentStatus   string              `firestore:"paymentStatus"`
	ShippingMethod  string              `firestore:"shippingMethod"`
	TrackingNumber  *string             `firestore:"trackingNumber,omitempty"`
	Notes           string              `firestore:"notes,omitempty"`
	CreatedAt       time.Time           `firestore:"createdAt"`
	UpdatedAt       time.Time           `firestore:"updatedAt"`
}

type orderItemDocument struct {
	ProductID string  `firestore:"productId"`
	Name      string  `firestore:"name"`
	Price     float64 `firestore:"price"`
	Quantity  int     `firestore:"quantity"`
	Subtotal  float64 `firestore:"subtotal"`
}

type customerDocument struct {
	FirstName string          `firestore:"firstName"`
	LastName  string          `firestore:"lastName"`
	Email     string          `firestore:"email"`
	Phone     string          `firestore:"phone"`
	Address   addressDocument `firestore:"address"`
}

type addressDocument struct {
	Street  string `firestore:"street"`
	City    string `firestore:"city"`
	State   string `firestore:"state"`
	ZipCode string `firestore:"zipCode"`
	Country string `firestore:"country"`
}

type orderNumberReservation struct {
	OrderID    string    `firestore:"orderId"`
	ReservedAt time.Time `firestore:"reservedAt"`
}

// OrderRepository is a Firestore-backed order store. Order numbers are kept
// unique through a reservation document created in the same transaction as
// the order itself.
type OrderRepository struct {
	provider *pfirestore.Provider
	base     *pfirestore.BaseRepository[orderDocument]
	numbers  *pfirestore.BaseRepository[orderNumberReservation]
}

// NewOrderRepository constructs a Firestore-backed order repository.
func NewOrderRepository(provider *pfirestore.Provider) (*OrderRepository, error) {
	if provider == nil {
		return nil, errors.New("order repository requires firestore provider")
	}
	return &OrderRepository{
		provider: provider,
		base:     pfirestore.NewBaseRepository[orderDocument](provider, orderCollection),
		numbers:  pfirestore.NewBaseRepository[orderNumberReservation](provider, orderNumberCollection),
	}, nil
}

// Insert stores a new order and reserves its order number atomically.
// A duplicate order number surfaces as a conflict.
func (r *OrderRepository) Insert(ctx context.Context, order domain.Order) error {
	orderRef, err := r.base.DocumentRef(ctx, order.ID)
	if err != nil {
		return err
	}
	numberRef, err := r.numbers.DocumentRef(ctx, order.OrderNumber)
	if err != nil {
		return err
	}

	err = r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Create(numberRef, orderNumberReservation{
			OrderID:    order.ID,
			ReservedAt: order.CreatedAt.UTC(),
		}); err != nil {
			return err
		}
		return tx.Create(orderRef, encodeOrder(order))
	})
	if err != nil {
		return pfirestore.WrapError("orders.insert", err)
	}
	return nil
}

// Update replaces the stored order document.
func (r *OrderRepository) Update(ctx context.Context, order domain.Order) error {
	return r.base.Set(ctx, order.ID, encodeOrder(order))
}

// FindByID fetches an order by its document ID.
func (r *OrderRepository) FindByID(ctx context.Context, orderID string) (domain.Order, error) {
	doc, err := r.base.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	return decodeOrder(doc.ID, doc.Data), nil
}

// FindByNumber fetches an order by its customer-facing order number.
func (r *OrderRepository) FindByNumber(ctx context.Context, orderNumber string) (domain.Order, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	docs, err := r.base.Query(ctx, func(query firestore.Query) firestore.Query {
		return query.Where("orderNumber", "==", orderNumber).Limit(1)
	})
	if err != nil {
		return domain.Order{}, err
	}
	if len(docs) == 0 {
		return domain.Order{}, pfirestore.NewNotFoundError("orders.findbynumber")
	}
	return decodeOrder(docs[0].ID, docs[0].Data), nil
}

// List returns a page of orders, newest first, optionally narrowed by status.
func (r *OrderRepository) List(ctx context.Context, filter repositories.OrderListFilter) (domain.Page[domain.Order], error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	narrow := func(query firestore.Query) firestore.Query {
		if filter.Status != "" {
			query = query.Where("status", "==", string(filter.Status))
		}
		return query
	}

	total, err := r.base.Count(ctx, narrow)
	if err != nil {
		return domain.Page[domain.Order]{}, err
	}

	docs, err := r.base.Query(ctx, func(query firestore.Query) firestore.Query {
		return narrow(query).
			OrderBy("createdAt", firestore.Desc).
			Offset((page - 1) * limit).
			Limit(limit)
	})
	if err != nil {
		return domain.Page[domain.Order]{}, err
	}

	orders := make([]domain.Order, 0, len(docs))
	for _, doc := range docs {
		orders = append(orders, decodeOrder(doc.ID, doc.Data))
	}

	pages := 0
	if total > 0 {
		pages = (total + limit - 1) / limit
	}

	return domain.Page[domain.Order]{
		Items: orders,
		Total: total,
		Page:  page,
		Pages: pages,
	}, nil
}

func encodeOrder(order domain.Order) orderDocument {
	items := make([]orderItemDocument, 0, len(order.Products))
	for _, item := range order.Products {
		items = append(items, orderItemDocument{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal,
		})
	}

	return orderDocument{
		OrderNumber: order.OrderNumber,
		Products:    items,
		CustomerDetails: customerDocument{
			FirstName: order.CustomerDetails.FirstName,
			LastName:  order.CustomerDetails.LastName,
			Email:     order.CustomerDetails.Email,
			Phone:     order.CustomerDetails.Phone,
			Address: addressDocument{
				Street:  order.CustomerDetails.Address.Street,
				City:    order.CustomerDetails.Address.City,
				State:   order.CustomerDetails.Address.State,
				ZipCode: order.CustomerDetails.Address.ZipCode,
				Country: order.CustomerDetails.Address.Country,
			},
		},
		Subtotal:       order.Subtotal,
		Tax:            order.Tax,
		ShippingCost:   order.ShippingCost,
		TotalAmount:    order.TotalAmount,
		Status:         string(order.Status),
		PaymentStatus:  string(order.PaymentStatus),
		ShippingMethod: order.ShippingMethod,
		TrackingNumber: order.TrackingNumber,
		Notes:          order.Notes,
		CreatedAt:      order.CreatedAt.UTC(),
		UpdatedAt:      order.UpdatedAt.UTC(),
	}
}

func decodeOrder(id string, doc orderDocument) domain.Order {
	items := make([]domain.OrderLineItem, 0, len(doc.Products))
	for _, item := range doc.Products {
		items = append(items, domain.OrderLineItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal,
		})
	}

	return domain.Order{
		ID:          id,
		OrderNumber: doc.OrderNumber,
		Products:    items,
		CustomerDetails: domain.CustomerDetails{
			FirstName: doc.CustomerDetails.FirstName,
			LastName:  doc.CustomerDetails.LastName,
			Email:     doc.CustomerDetails.Email,
			Phone:     doc.CustomerDetails.Phone,
			Address: domain.Address{
				Street:  doc.CustomerDetails.Address.Street,
				City:    doc.CustomerDetails.Address.City,
				State:   doc.CustomerDetails.Address.State,
				ZipCode: doc.CustomerDetails.Address.ZipCode,
				Country: doc.CustomerDetails.Address.Country,
			},
		},
		Subtotal:       doc.Subtotal,
		Tax:            doc.Tax,
		ShippingCost:   doc.ShippingCost,
		TotalAmount:    doc.TotalAmount,
		Status:         domain.OrderStatus(doc.Status),
		PaymentStatus:  domain.PaymentStatus(doc.PaymentStatus),
		ShippingMethod: doc.ShippingMethod,
		TrackingNumber: doc.TrackingNumber,
		Notes:          doc.Notes,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}
}
