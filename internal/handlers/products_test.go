package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/peachwood/api/internal/domain"
	"github.com/peachwood/api/internal/services"
)

type stubCatalogService struct {
	listFn           func(ctx context.Context, filter services.ProductFilter) ([]domain.Product, error)
	getFn            func(ctx context.Context, productID string) (domain.Product, error)
	listByCategoryFn func(ctx context.Context, category string) ([]domain.Product, error)
	createFn         func(ctx context.Context, input services.ProductInput) (domain.Product, error)
	updateFn         func(ctx context.Context, productID string, input services.ProductInput) (domain.Product, error)
	deleteFn         func(ctx context.Context, productID string) error
}

func (s *stubCatalogService) ListProducts(ctx context.Context, filter services.ProductFilter) ([]domain.Product, error) {
	return s.listFn(ctx, filter)
}

func (s *stubCatalogService) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	return s.getFn(ctx, productID)
}

func (s *stubCatalogService) ListProductsByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	return s.listByCategoryFn(ctx, category)
}

func (s *stubCatalogService) CreateProduct(ctx context.Context, input services.ProductInput) (domain.Product, error) {
	return s.createFn(ctx, input)
}

func (s *stubCatalogService) UpdateProduct(ctx context.Context, productID string, input services.ProductInput) (domain.Product, error) {
	return s.updateFn(ctx, productID, input)
}

func (s *stubCatalogService) DeleteProduct(ctx context.Context, productID string) error {
	return s.deleteFn(ctx, productID)
}

func sampleProduct() domain.Product {
	return domain.Product{
		ID:            "prd_01ARZ3NDEKTSV4RRFFQ69G5FAV",
		Name:          "Eternal Grace Necklace",
		Price:         189.99,
		Description:   "A timeless piece",
		ImageURL:      "https://cdn.example.com/necklace.jpg",
		Category:      domain.CategoryNecklaces,
		Details:       []string{"18k gold plated"},
		InStock:       true,
		StockQuantity: 50,
		CreatedAt:     time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
		UpdatedAt:     time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
	}
}

func productTestRouter(catalog services.CatalogService) http.Handler {
	return NewRouter(WithProductRoutes(NewProductHandlers(catalog, false).Routes))
}

func decodeBody(t *testing.T, res *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestListProductsReturnsEnvelope(t *testing.T) {
	catalog := &stubCatalogService{
		listFn: func(_ context.Context, filter services.ProductFilter) ([]domain.Product, error) {
			if filter.Sort != "price-low" {
				t.Fatalf("expected sort price-low, got %q", filter.Sort)
			}
			if filter.MaxPrice == nil || *filter.MaxPrice != 200 {
				t.Fatalf("expected maxPrice 200, got %v", filter.MaxPrice)
			}
			return []domain.Product{sampleProduct()}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/products?sort=price-low&maxPrice=200", nil)
	res := httptest.NewRecorder()
	productTestRouter(catalog).ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	body := decodeBody(t, res)
	if body["success"] != true {
		t.Fatalf("expected success true, got %v", body["success"])
	}
	if body["count"] != float64(1) {
		t.Fatalf("expected count 1, got %v", body["count"])
	}
	data, ok := body["data"].([]any)
	if !ok || len(data) != 1 {
		t.Fatalf("expected 1 product, got %v", body["data"])
	}
	first := data[0].(map[string]any)
	if first["imageUrl"] != "https://cdn.example.com/necklace.jpg" {
		t.Fatalf("unexpected product payload %v", first)
	}
}

func TestListProductsRejectsBadPrice(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/products?minPrice=abc", nil)
	res := httptest.NewRecorder()
	productTestRouter(&stubCatalogService{}).ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	body := decodeBody(t, res)
	if body["success"] != false {
		t.Fatalf("expected success false, got %v", body["success"])
	}
}

func TestGetProductMapsErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"invalid id", services.ErrProductInvalidID, http.StatusBadRequest, "Invalid product ID format"},
		{"not found", services.ErrProductNotFound, http.StatusNotFound, "Product not found"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			catalog := &stubCatalogService{
				getFn: func(context.Context, string) (domain.Product, error) {
					return domain.Product{}, tc.err
				},
			}

			req := httptest.NewRequest(http.MethodGet, "/api/products/prd_x", nil)
			res := httptest.NewRecorder()
			productTestRouter(catalog).ServeHTTP(res, req)

			if res.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, res.Code)
			}
			body := decodeBody(t, res)
			if body["message"] != tc.wantMsg {
				t.Fatalf("expected message %q, got %v", tc.wantMsg, body["message"])
			}
		})
	}
}

func TestListByCategoryIncludesCategoryField(t *testing.T) {
	catalog := &stubCatalogService{
		listByCategoryFn: func(_ context.Context, category string) ([]domain.Product, error) {
			if category != "Rings" {
				t.Fatalf("expected Rings, got %q", category)
			}
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/products/category/Rings", nil)
	res := httptest.NewRecorder()
	productTestRouter(catalog).ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	body := decodeBody(t, res)
	if body["category"] != "Rings" {
		t.Fatalf("expected category Rings, got %v", body["category"])
	}
	if body["count"] != float64(0) {
		t.Fatalf("expected count 0, got %v", body["count"])
	}
}

func TestCreateProductValidationErrors(t *testing.T) {
	catalog := &stubCatalogService{
		createFn: func(context.Context, services.ProductInput) (domain.Product, error) {
			return domain.Product{}, &services.ValidationError{Messages: []string{"Product name is required"}}
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`{"price": 10}`))
	res := httptest.NewRecorder()
	productTestRouter(catalog).ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	body := decodeBody(t, res)
	if body["message"] != "Validation failed" {
		t.Fatalf("expected validation message, got %v", body["message"])
	}
	errs, ok := body["errors"].([]any)
	if !ok || len(errs) != 1 || errs[0] != "Product name is required" {
		t.Fatalf("unexpected errors %v", body["errors"])
	}
}

func TestCreateProductSuccess(t *testing.T) {
	catalog := &stubCatalogService{
		createFn: func(_ context.Context, input services.ProductInput) (domain.Product, error) {
			if input.Name != "Eternal Grace Necklace" {
				t.Fatalf("unexpected input %#v", input)
			}
			return sampleProduct(), nil
		},
	}

	payload := `{"name":"Eternal Grace Necklace","price":189.99,"description":"A timeless piece","imageUrl":"https://cdn.example.com/necklace.jpg","category":"Necklaces"}`
	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(payload))
	res := httptest.NewRecorder()
	productTestRouter(catalog).ServeHTTP(res, req)

	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", res.Code)
	}
	body := decodeBody(t, res)
	if body["message"] != "Product created successfully" {
		t.Fatalf("unexpected message %v", body["message"])
	}
}

func TestRouteNotFoundReturnsEnvelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	res := httptest.NewRecorder()
	productTestRouter(&stubCatalogService{}).ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
	body := decodeBody(t, res)
	if body["success"] != false || body["message"] != "Route not found" {
		t.Fatalf("unexpected body %v", body)
	}
}
