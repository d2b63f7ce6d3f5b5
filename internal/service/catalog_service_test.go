package service

import (
	"context"
	"errors"
	"testing"

	"ffstore/internal/domain"
	"ffstore/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// mockCatalogProducts backs the catalog with a map and tracks view bumps
type mockCatalogProducts struct {
	repository.ProductRepository
	products map[uuid.UUID]*domain.Product
}

func newMockCatalogProducts() *mockCatalogProducts {
	return &mockCatalogProducts{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockCatalogProducts) Create(ctx context.Context, product *domain.Product) error {
	m.products[product.ID] = product
	return nil
}

func (m *mockCatalogProducts) Update(ctx context.Context, product *domain.Product) error {
	if _, ok := m.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockCatalogProducts) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

// FindByID hands out a copy, like the SQL repository scanning a fresh row
func (m *mockCatalogProducts) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	cp := *product
	return &cp, nil
}

func (m *mockCatalogProducts) ListAvailable(ctx context.Context, categoryID *uuid.UUID) ([]*domain.Product, error) {
	out := []*domain.Product{}
	for _, p := range m.products {
		if !p.Available {
			continue
		}
		if categoryID != nil && (p.CategoryID == nil || *p.CategoryID != *categoryID) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *mockCatalogProducts) ListFeatured(ctx context.Context, limit int) ([]*domain.Product, error) {
	out := []*domain.Product{}
	for _, p := range m.products {
		if p.Available && p.Featured && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockCatalogProducts) ListRelated(ctx context.Context, excludeID uuid.UUID, limit int) ([]*domain.Product, error) {
	out := []*domain.Product{}
	for _, p := range m.products {
		if p.Available && p.ID != excludeID && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockCatalogProducts) IncrementViews(ctx context.Context, id uuid.UUID) error {
	product, ok := m.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	product.Views++
	return nil
}

type mockCategories struct {
	repository.CategoryRepository
	categories map[uuid.UUID]*domain.Category
}

func newMockCategories() *mockCategories {
	return &mockCategories{categories: make(map[uuid.UUID]*domain.Category)}
}

func (m *mockCategories) Create(ctx context.Context, category *domain.Category) error {
	for _, c := range m.categories {
		if c.Name == category.Name {
			return repository.ErrCategoryAlreadyExists
		}
	}
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategories) List(ctx context.Context) ([]*domain.Category, error) {
	out := []*domain.Category{}
	for _, c := range m.categories {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockCategories) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	category, ok := m.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	return category, nil
}

func (m *mockCategories) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.categories[id]; !ok {
		return repository.ErrCategoryNotFound
	}
	delete(m.categories, id)
	return nil
}

func catalogFixture() (*mockCatalogProducts, *mockCategories, CatalogService) {
	products := newMockCatalogProducts()
	categories := newMockCategories()
	return products, categories, NewCatalogService(products, categories)
}

func TestHomePageHidesSoldProducts(t *testing.T) {
	products, categories, svc := catalogFixture()
	ctx := context.Background()

	category := &domain.Category{ID: uuid.New(), Name: "Contas Ouro"}
	categories.categories[category.ID] = category

	visible := &domain.Product{ID: uuid.New(), Name: "viva", Price: decimal.New(10, 0), Available: true, Featured: true}
	hidden := &domain.Product{ID: uuid.New(), Name: "vendida", Price: decimal.New(10, 0), Available: false, Featured: true}
	products.products[visible.ID] = visible
	products.products[hidden.ID] = hidden

	page, err := svc.HomePage(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if len(page.Products) != 1 || page.Products[0].ID != visible.ID {
		t.Error("sold products must not appear in the listing")
	}
	if len(page.Featured) != 1 || page.Featured[0].ID != visible.ID {
		t.Error("sold products must not appear among the featured")
	}
	if len(page.Categories) != 1 {
		t.Errorf("got %d categories, want 1", len(page.Categories))
	}
}

func TestGetProductBumpsViewsAndExcludesSelfFromRelated(t *testing.T) {
	products, _, svc := catalogFixture()
	ctx := context.Background()

	main := &domain.Product{ID: uuid.New(), Name: "principal", Price: decimal.New(10, 0), Available: true}
	other := &domain.Product{ID: uuid.New(), Name: "outra", Price: decimal.New(10, 0), Available: true}
	products.products[main.ID] = main
	products.products[other.ID] = other

	product, related, err := svc.GetProduct(ctx, main.ID)
	if err != nil {
		t.Fatal(err)
	}

	if product.Views != 1 {
		t.Errorf("views = %d, want 1", product.Views)
	}
	for _, r := range related {
		if r.ID == main.ID {
			t.Error("a product must not be related to itself")
		}
	}
	if len(related) != 1 {
		t.Errorf("got %d related products, want 1", len(related))
	}

	if _, _, err := svc.GetProduct(ctx, uuid.New()); !errors.Is(err, repository.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestListByCategoryValidatesCategory(t *testing.T) {
	_, _, svc := catalogFixture()

	_, err := svc.ListByCategory(context.Background(), uuid.New())
	if !errors.Is(err, repository.ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestCreateProductStartsAvailable(t *testing.T) {
	products, _, svc := catalogFixture()

	created, err := svc.CreateProduct(context.Background(), ProductInput{
		Name:  "Conta Nova",
		Price: decimal.RequireFromString("45.00"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !created.Available {
		t.Error("new products must start available")
	}
	if _, ok := products.products[created.ID]; !ok {
		t.Error("product was not stored")
	}
}

func TestCreateProductRejectsUnknownCategory(t *testing.T) {
	_, _, svc := catalogFixture()

	missing := uuid.New()
	_, err := svc.CreateProduct(context.Background(), ProductInput{
		Name:       "Conta",
		Price:      decimal.RequireFromString("45.00"),
		CategoryID: &missing,
	})
	if !errors.Is(err, repository.ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestUpdateProductKeepsImageWhenNoneUploaded(t *testing.T) {
	products, _, svc := catalogFixture()
	ctx := context.Background()

	existing := &domain.Product{
		ID:        uuid.New(),
		Name:      "Conta",
		Price:     decimal.RequireFromString("45.00"),
		Image:     "20240101_120000_conta.png",
		Available: true,
	}
	products.products[existing.ID] = existing

	updated, err := svc.UpdateProduct(ctx, existing.ID, ProductInput{
		Name:      "Conta Renomeada",
		Price:     decimal.RequireFromString("40.00"),
		Available: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Image != "20240101_120000_conta.png" {
		t.Error("an update without a new upload must keep the old image")
	}

	updated, err = svc.UpdateProduct(ctx, existing.ID, ProductInput{
		Name:      "Conta Renomeada",
		Price:     decimal.RequireFromString("40.00"),
		Image:     "20240202_130000_nova.png",
		Available: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Image != "20240202_130000_nova.png" {
		t.Error("a new upload must replace the image")
	}
}
