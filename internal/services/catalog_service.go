package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/peachwood/api/internal/domain"
	"github.com/peachwood/api/internal/repositories"
)

const productIDPrefix = "prd_"

var (
	// ErrProductNotFound indicates the product could not be located.
	ErrProductNotFound = errors.New("catalog: product not found")
	// ErrProductInvalidID indicates a malformed product identifier.
	ErrProductInvalidID = errors.New("catalog: invalid product id")
	// ErrCategoryInvalid indicates an unknown product category.
	ErrCategoryInvalid = errors.New("catalog: invalid category")
	// ErrCatalogConflict indicates a duplicate product write.
	ErrCatalogConflict = errors.New("catalog: conflict")
)

// CatalogServiceDeps bundles constructor inputs for the catalog service.
type CatalogServiceDeps struct {
	Products    repositories.ProductRepository
	Clock       func() time.Time
	IDGenerator func() string
}

type catalogService struct {
	products repositories.ProductRepository
	clock    func() time.Time
	newID    func() string
}

// NewCatalogService constructs the catalog service with the supplied dependencies.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Products == nil {
		return nil, errors.New("catalog service: product repository is required")
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
	return &catalogService{
		products: deps.Products,
		clock:    func() time.Time { return clock().UTC() },
		newID:    idGen,
	}, nil
}

func (s *catalogService) ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	repoFilter := repositories.ProductListFilter{
		MinPrice:    filter.MinPrice,
		MaxPrice:    filter.MaxPrice,
		Sort:        parseProductSort(filter.Sort),
		InStockOnly: true,
	}
	if category := strings.TrimSpace(filter.Category); category != "" && category != "All" {
		repoFilter.Category = domain.Category(category)
	}

	products, err := s.products.List(ctx, repoFilter)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	return products, nil
}

func (s *catalogService) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	productID, err := normalizeProductID(productID)
	if err != nil {
		return domain.Product{}, err
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return domain.Product{}, s.mapRepositoryError(err)
	}
	return product, nil
}

func (s *catalogService) ListProductsByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	category = strings.TrimSpace(category)
	if !domain.ValidCategory(category) {
		return nil, reject(ErrCategoryInvalid, "Invalid category. Must be one of: %s", joinCategories())
	}

	products, err := s.products.List(ctx, repositories.ProductListFilter{
		Category:    domain.Category(category),
		InStockOnly: true,
	})
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	return products, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, input ProductInput) (domain.Product, error) {
	input, err := validateProductInput(input)
	if err != nil {
		return domain.Product{}, err
	}

	now := s.clock()
	product := domain.Product{
		ID:            productIDPrefix + s.newID(),
		Name:          input.Name,
		Price:         input.Price,
		Description:   input.Description,
		ImageURL:      input.ImageURL,
		Category:      domain.Category(input.Category),
		Details:       input.Details,
		InStock:       true,
		StockQuantity: 100,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if input.InStock != nil {
		product.InStock = *input.InStock
	}
	if input.StockQuantity != nil {
		product.StockQuantity = *input.StockQuantity
	}

	if err := s.products.Insert(ctx, product); err != nil {
		return domain.Product{}, s.mapRepositoryError(err)
	}
	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, productID string, input ProductInput) (domain.Product, error) {
	productID, err := normalizeProductID(productID)
	if err != nil {
		return domain.Product{}, err
	}

	input, err = validateProductInput(input)
	if err != nil {
		return domain.Product{}, err
	}

	existing, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return domain.Product{}, s.mapRepositoryError(err)
	}

	existing.Name = input.Name
	existing.Price = input.Price
	existing.Description = input.Description
	existing.ImageURL = input.ImageURL
	existing.Category = domain.Category(input.Category)
	existing.Details = input.Details
	if input.InStock != nil {
		existing.InStock = *input.InStock
	}
	if input.StockQuantity != nil {
		existing.StockQuantity = *input.StockQuantity
	}
	existing.UpdatedAt = s.clock()

	if err := s.products.Update(ctx, existing); err != nil {
		return domain.Product{}, s.mapRepositoryError(err)
	}
	return existing, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, productID string) error {
	productID, err := normalizeProductID(productID)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, productID); err != nil {
		return s.mapRepositoryError(err)
	}
	return nil
}

func parseProductSort(sort string) repositories.ProductSort {
	switch strings.TrimSpace(sort) {
	case string(repositories.ProductSortPriceLow):
		return repositories.ProductSortPriceLow
	case string(repositories.ProductSortPriceHigh):
		return repositories.ProductSortPriceHigh
	case string(repositories.ProductSortName):
		return repositories.ProductSortName
	default:
		return repositories.ProductSortDefault
	}
}

func (s *catalogService) mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrProductNotFound, err)
		case repoErr.IsConflict():
			return fmt.Errorf("%w: %v", ErrCatalogConflict, err)
		case repoErr.IsUnavailable():
			return fmt.Errorf("catalog: repository unavailable: %w", err)
		}
	}

	return err
}

func normalizeProductID(productID string) (string, error) {
	productID = strings.TrimSpace(productID)
	if !validPrefixedID(productID, productIDPrefix) {
		return "", fmt.Errorf("%w: %q", ErrProductInvalidID, productID)
	}
	return productID, nil
}

// validPrefixedID checks the <prefix><ULID> identifier shape without
// consulting the datastore.
func validPrefixedID(id string, prefix string) bool {
	if !strings.HasPrefix(id, prefix) {
		return false
	}
	_, err := ulid.ParseStrict(strings.TrimPrefix(id, prefix))
	return err == nil
}
