package firestore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/peachwood/api/internal/domain"
	pfirestore "github.com/peachwood/api/internal/platform/firestore"
	"github.com/peachwood/api/internal/repositories"
)

const productCollection = "products"

type productDocument struct {
	Name          string    `firestore:"name"`
	Price         float64   `firestore:"price"`
	Description   string    `firestore:"description"`
	ImageURL      string    `firestore:"imageUrl"`
	Category      string    `firestore:"category"`
	Details       []string  `firestore:"details"`
	InStock       bool      `firestore:"inStock"`
	StockQuantity int       `firestore:"stockQuantity"`
	CreatedAt     time.Time `firestore:"createdAt"`
	UpdatedAt     time.Time `firestore:"updatedAt"`
}

// ProductRepository is a Firestore-backed catalog product store.
type ProductRepository struct {
	base *pfirestore.BaseRepository[productDocument]
}

// NewProductRepository constructs a Firestore-backed product repository.
func NewProductRepository(provider *pfirestore.Provider) (*ProductRepository, error) {
	if provider == nil {
		return nil, errors.New("product repository requires firestore provider")
	}
	return &ProductRepository{
		base: pfirestore.NewBaseRepository[productDocument](provider, productCollection),
	}, nil
}

// Insert stores a new product, failing when the ID is already taken.
func (r *ProductRepository) Insert(ctx context.Context, product domain.Product) error {
	return r.base.Create(ctx, product.ID, encodeProduct(product))
}

// Update replaces the stored product document.
func (r *ProductRepository) Update(ctx context.Context, product domain.Product) error {
	return r.base.Set(ctx, product.ID, encodeProduct(product))
}

// Delete removes the product. Deleting an absent product reports not found.
func (r *ProductRepository) Delete(ctx context.Context, productID string) error {
	return r.base.Delete(ctx, productID)
}

// FindByID fetches a product by its document ID.
func (r *ProductRepository) FindByID(ctx context.Context, productID string) (domain.Product, error) {
	doc, err := r.base.Get(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	return decodeProduct(doc.ID, doc.Data), nil
}

// List returns products matching the filter in the requested order.
func (r *ProductRepository) List(ctx context.Context, filter repositories.ProductListFilter) ([]domain.Product, error) {
	priceBound := filter.MinPrice != nil || filter.MaxPrice != nil

	docs, err := r.base.Query(ctx, func(query firestore.Query) firestore.Query {
		if filter.InStockOnly {
			query = query.Where("inStock", "==", true)
		}
		if filter.Category != "" {
			query = query.Where("category", "==", string(filter.Category))
		}
		if filter.MinPrice != nil {
			query = query.Where("price", ">=", *filter.MinPrice)
		}
		if filter.MaxPrice != nil {
			query = query.Where("price", "<=", *filter.MaxPrice)
		}
		// Firestore requires the first ordering to match the range-filtered
		// field, so price-bounded listings are sorted in memory below.
		if !priceBound {
			switch filter.Sort {
			case repositories.ProductSortPriceLow:
				query = query.OrderBy("price", firestore.Asc)
			case repositories.ProductSortPriceHigh:
				query = query.OrderBy("price", firestore.Desc)
			case repositories.ProductSortName:
				query = query.OrderBy("name", firestore.Asc)
			default:
				query = query.OrderBy("createdAt", firestore.Desc)
			}
		}
		return query
	})
	if err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(docs))
	for _, doc := range docs {
		products = append(products, decodeProduct(doc.ID, doc.Data))
	}

	if priceBound {
		sortProducts(products, filter.Sort)
	}
	return products, nil
}

func sortProducts(products []domain.Product, order repositories.ProductSort) {
	switch order {
	case repositories.ProductSortPriceLow:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price < products[j].Price })
	case repositories.ProductSortPriceHigh:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price > products[j].Price })
	case repositories.ProductSortName:
		sort.SliceStable(products, func(i, j int) bool {
			return strings.ToLower(products[i].Name) < strings.ToLower(products[j].Name)
		})
	default:
		sort.SliceStable(products, func(i, j int) bool { return products[i].CreatedAt.After(products[j].CreatedAt) })
	}
}

func encodeProduct(product domain.Product) productDocument {
	return productDocument{
		Name:          product.Name,
		Price:         product.Price,
		Description:   product.Description,
		ImageURL:      product.ImageURL,
		Category:      string(product.Category),
		Details:       product.Details,
		InStock:       product.InStock,
		StockQuantity: product.StockQuantity,
		CreatedAt:     product.CreatedAt.UTC(),
		UpdatedAt:     product.UpdatedAt.UTC(),
	}
}

func decodeProduct(id string, doc productDocument) domain.Product {
	return domain.Product{
		ID:            id,
		Name:          doc.Name,
		Price:         doc.Price,
		Description:   doc.Description,
		ImageURL:      doc.ImageURL,
		Category:      domain.Category(doc.Category),
		Details:       doc.Details,
		InStock:       doc.InStock,
		StockQuantity: doc.StockQuantity,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
}
