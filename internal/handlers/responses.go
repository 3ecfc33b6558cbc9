package handlers

import (
	"time"

	"github.com/peachwood/api/internal/domain"
)

type productResponse struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	Description   string   `json:"description"`
	ImageURL      string   `json:"imageUrl"`
	Category      string   `json:"category"`
	Details       []string `json:"details"`
	InStock       bool     `json:"inStock"`
	StockQuantity int      `json:"stockQuantity"`
	CreatedAt     string   `json:"createdAt"`
	UpdatedAt     string   `json:"updatedAt"`
}

func newProductResponse(product domain.Product) productResponse {
	details := product.Details
	if details == nil {
		details = []string{}
	}
	return productResponse{
		ID:            product.ID,
		Name:          product.Name,
		Price:         product.Price,
		Description:   product.Description,
		ImageURL:      product.ImageURL,
		Category:      string(product.Category),
		Details:       details,
		InStock:       product.InStock,
		StockQuantity: product.StockQuantity,
		CreatedAt:     formatTime(product.CreatedAt),
		UpdatedAt:     formatTime(product.UpdatedAt),
	}
}

func newProductListResponse(products []domain.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, product := range products {
		out = append(out, newProductResponse(product))
	}
	return out
}

type orderItemResponse struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

type addressResponse struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

type customerResponse struct {
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	Email     string          `json:"email"`
	Phone     string          `json:"phone"`
	Address   addressResponse `json:"address"`
}

type orderResponse struct {
	ID              string              `json:"id"`
	OrderNumber     string              `json:"orderNumber"`
	Products        []orderItemResponse `json:"products"`
	CustomerDetails customerResponse    `json:"customerDetails"`
	Subtotal        float64             `json:"subtotal"`
	Tax             float64             `json:"tax"`
	ShippingCost    float64             `json:"shippingCost"`
	TotalAmount     float64             `json:"totalAmount"`
	Status          string              `json:"status"`
	PaymentStatus   string              `json:"paymentStatus"`
	ShippingMethod  string              `json:"shippingMethod"`
	TrackingNumber  *string             `json:"trackingNumber"`
	Notes           string              `json:"notes,omitempty"`
	CreatedAt       string              `json:"createdAt"`
	UpdatedAt       string              `json:"updatedAt"`
}

func newOrderResponse(order domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Products))
	for _, item := range order.Products {
		items = append(items, orderItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal,
		})
	}

	return orderResponse{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		Products:    items,
		CustomerDetails: customerResponse{
			FirstName: order.CustomerDetails.FirstName,
			LastName:  order.CustomerDetails.LastName,
			Email:     order.CustomerDetails.Email,
			Phone:     order.CustomerDetails.Phone,
			Address: addressResponse{
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
		CreatedAt:      formatTime(order.CreatedAt),
		UpdatedAt:      formatTime(order.UpdatedAt),
	}
}

func newOrderListResponse(orders []domain.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, newOrderResponse(order))
	}
	return out
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
