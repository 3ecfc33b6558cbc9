package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/peachwood/api/internal/domain"
	"github.com/peachwood/api/internal/repositories"
	"github.com/peachwood/api/internal/services"
)

func TestProductsCatalogIsValid(t *testing.T) {
	products := Products()
	if len(products) != 12 {
		t.Fatalf("expected 12 seed products, got %d", len(products))
	}

	seen := make(map[string]bool, len(products))
	for _, p := range products {
		if p.Name == "" {
			t.Fatal("seed product with empty name")
		}
		if seen[p.Name] {
			t.Fatalf("duplicate seed product %q", p.Name)
		}
		seen[p.Name] = true

		if p.Price <= 0 {
			t.Fatalf("%s: non-positive price %v", p.Name, p.Price)
		}
		if !domain.ValidCategory(p.Category) {
			t.Fatalf("%s: invalid category %q", p.Name, p.Category)
		}
		if p.Description == "" || p.ImageURL == "" {
			t.Fatalf("%s: missing description or image", p.Name)
		}
		if len(p.Details) == 0 {
			t.Fatalf("%s: missing details", p.Name)
		}
		if p.StockQuantity == nil || *p.StockQuantity <= 0 {
			t.Fatalf("%s: missing stock quantity", p.Name)
		}
	}
}

type stubSeedCatalog struct {
	created []services.ProductInput
	failOn  string
}

func (s *stubSeedCatalog) ListProducts(context.Context, services.ProductFilter) ([]domain.Product, error) {
	return nil, nil
}

func (s *stubSeedCatalog) GetProduct(context.Context, string) (domain.Product, error) {
	return domain.Product{}, nil
}

func (s *stubSeedCatalog) ListProductsByCategory(context.Context, string) ([]domain.Product, error) {
	return nil, nil
}

func (s *stubSeedCatalog) CreateProduct(_ context.Context, input services.ProductInput) (domain.Product, error) {
	if s.failOn != "" && input.Name == s.failOn {
		return domain.Product{}, errors.New("create failed")
	}
	s.created = append(s.created, input)
	return domain.Product{ID: "prd_new", Name: input.Name, Price: input.Price}, nil
}

func (s *stubSeedCatalog) UpdateProduct(context.Context, string, services.ProductInput) (domain.Product, error) {
	return domain.Product{}, nil
}

func (s *stubSeedCatalog) DeleteProduct(context.Context, string) error {
	return nil
}

type stubSeedProducts struct {
	existing []domain.Product
	deleted  []string
}

func (s *stubSeedProducts) Insert(context.Context, domain.Product) error { return nil }
func (s *stubSeedProducts) Update(context.Context, domain.Product) error { return nil }

func (s *stubSeedProducts) Delete(_ context.Context, productID string) error {
	s.deleted = append(s.deleted, productID)
	return nil
}

func (s *stubSeedProducts) FindByID(context.Context, string) (domain.Product, error) {
	return domain.Product{}, nil
}

func (s *stubSeedProducts) List(context.Context, repositories.ProductListFilter) ([]domain.Product, error) {
	return s.existing, nil
}

func TestRunClearsAndReloadsCatalog(t *testing.T) {
	catalog := &stubSeedCatalog{}
	repo := &stubSeedProducts{existing: []domain.Product{
		{ID: "prd_old_1"},
		{ID: "prd_old_2"},
	}}

	result, err := Run(context.Background(), catalog, repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Removed != 2 {
		t.Fatalf("expected 2 removed, got %d", result.Removed)
	}
	if len(repo.deleted) != 2 {
		t.Fatalf("expected 2 deletions, got %d", len(repo.deleted))
	}
	if len(catalog.created) != 12 || len(result.Created) != 12 {
		t.Fatalf("expected 12 created, got %d", len(catalog.created))
	}
}

func TestRunStopsOnCreateFailure(t *testing.T) {
	catalog := &stubSeedCatalog{failOn: "Infinity Love Ring"}
	repo := &stubSeedProducts{}

	_, err := Run(context.Background(), catalog, repo)
	if err == nil {
		t.Fatal("expected error when a create fails")
	}
}
