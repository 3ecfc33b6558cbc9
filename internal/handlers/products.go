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

const maxProductBodySize = 64 * 1024

type productRequest struct {
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	Description   string   `json:"description"`
	ImageURL      string   `json:"imageUrl"`
	Category      string   `json:"category"`
	Details       []string `json:"details"`
	InStock       *bool    `json:"inStock"`
	StockQuantity *int     `json:"stockQuantity"`
}

// ProductHandlers exposes the catalog endpoints.
type ProductHandlers struct {
	catalog      services.CatalogService
	exposeErrors bool
}

// NewProductHandlers constructs a new ProductHandlers instance. When
// exposeErrors is set, internal error detail is included in 500 responses.
func NewProductHandlers(catalog services.CatalogService, exposeErrors bool) *ProductHandlers {
	return &ProductHandlers{
		catalog:      catalog,
		exposeErrors: exposeErrors,
	}
}

// Routes registers the /products endpoints.
func (h *ProductHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.listProducts)
	r.Post("/", h.createProduct)
	r.Get("/category/{category}", h.listByCategory)
	r.Get("/{productID}", h.getProduct)
	r.Put("/{productID}", h.updateProduct)
	r.Delete("/{productID}", h.deleteProduct)
}

func (h *ProductHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	filter := services.ProductFilter{
		Category: strings.TrimSpace(query.Get("category")),
		Sort:     strings.TrimSpace(query.Get("sort")),
	}

	if raw := strings.TrimSpace(query.Get("minPrice")); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("minPrice must be a number", http.StatusBadRequest))
			return
		}
		filter.MinPrice = &value
	}
	if raw := strings.TrimSpace(query.Get("maxPrice")); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("maxPrice must be a number", http.StatusBadRequest))
			return
		}
		filter.MaxPrice = &value
	}

	products, err := h.catalog.ListProducts(ctx, filter)
	if err != nil {
		h.writeError(w, r, err, "Failed to fetch products")
		return
	}

	payload := newProductListResponse(products)
	httpx.WriteList(ctx, w, http.StatusOK, payload, map[string]any{
		"count": len(payload),
	})
}

func (h *ProductHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	product, err := h.catalog.GetProduct(ctx, chi.URLParam(r, "productID"))
	if err != nil {
		h.writeError(w, r, err, "Failed to fetch product")
		return
	}

	httpx.WriteData(ctx, w, http.StatusOK, newProductResponse(product))
}

func (h *ProductHandlers) listByCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	category := chi.URLParam(r, "category")

	products, err := h.catalog.ListProductsByCategory(ctx, category)
	if err != nil {
		h.writeError(w, r, err, "Failed to fetch products")
		return
	}

	payload := newProductListResponse(products)
	httpx.WriteList(ctx, w, http.StatusOK, payload, map[string]any{
		"category": category,
		"count":    len(payload),
	})
}

func (h *ProductHandlers) createProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	input, err := decodeProductRequest(r)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("Invalid JSON body", http.StatusBadRequest))
		return
	}

	product, err := h.catalog.CreateProduct(ctx, input)
	if err != nil {
		h.writeError(w, r, err, "Failed to create product")
		return
	}

	httpx.WriteMessage(ctx, w, http.StatusCreated, "Product created successfully", newProductResponse(product))
}

func (h *ProductHandlers) updateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	input, err := decodeProductRequest(r)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("Invalid JSON body", http.StatusBadRequest))
		return
	}

	product, err := h.catalog.UpdateProduct(ctx, chi.URLParam(r, "productID"), input)
	if err != nil {
		h.writeError(w, r, err, "Failed to update product")
		return
	}

	httpx.WriteMessage(ctx, w, http.StatusOK, "Product updated successfully", newProductResponse(product))
}

func (h *ProductHandlers) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.catalog.DeleteProduct(ctx, chi.URLParam(r, "productID")); err != nil {
		h.writeError(w, r, err, "Failed to delete product")
		return
	}

	httpx.WriteMessage(ctx, w, http.StatusOK, "Product deleted successfully", nil)
}

func decodeProductRequest(r *http.Request) (services.ProductInput, error) {
	defer func() {
		_ = r.Body.Close()
	}()

	var payload productRequest
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxProductBodySize))
	if err := decoder.Decode(&payload); err != nil {
		return services.ProductInput{}, err
	}

	return services.ProductInput{
		Name:          payload.Name,
		Price:         payload.Price,
		Description:   payload.Description,
		ImageURL:      payload.ImageURL,
		Category:      payload.Category,
		Details:       payload.Details,
		InStock:       payload.InStock,
		StockQuantity: payload.StockQuantity,
	}, nil
}

func (h *ProductHandlers) writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	ctx := r.Context()

	var verr *services.ValidationError
	if errors.As(err, &verr) {
		httpx.WriteError(ctx, w, httpx.NewError("Validation failed", http.StatusBadRequest).WithFieldErrors(verr.Fields()))
		return
	}

	var rejection *services.RejectionError
	if errors.As(err, &rejection) {
		httpx.WriteError(ctx, w, httpx.NewError(rejection.Message, http.StatusBadRequest))
		return
	}

	switch {
	case errors.Is(err, services.ErrProductInvalidID):
		httpx.WriteError(ctx, w, httpx.NewError("Invalid product ID format", http.StatusBadRequest))
	case errors.Is(err, services.ErrProductNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("Product not found", http.StatusNotFound))
	case errors.Is(err, services.ErrCatalogConflict):
		httpx.WriteError(ctx, w, httpx.NewError("Product already exists", http.StatusConflict))
	default:
		respErr := httpx.NewError(fallback, http.StatusInternalServerError)
		if h.exposeErrors {
			respErr = respErr.WithDetail(err.Error())
		}
		httpx.WriteError(ctx, w, respErr)
	}
}
