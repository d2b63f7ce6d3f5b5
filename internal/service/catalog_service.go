package service

import (
	"context"
	"time"

	"ffstore/internal/domain"
	"ffstore/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// home page limits, matching what the storefront has always shown
const (
	featuredLimit = 6
	relatedLimit  = 4
)

// HomePage is the public landing page payload
type HomePage struct {
	Featured   []*domain.Product  `json:"featured"`
	Products   []*domain.Product  `json:"products"`
	Categories []*domain.Category `json:"categories"`
}

// ProductInput carries the admin product form fields
type ProductInput struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	OriginalPrice decimal.NullDecimal
	Image         string
	Level         *int
	Diamonds      int
	SkinsCount    int
	Characters    string
	Rank          string
	CategoryID    *uuid.UUID
	Available     bool
	Featured      bool
}

// CatalogService defines public browsing plus admin catalog management
type CatalogService interface {
	HomePage(ctx context.Context) (*HomePage, error)
	ListFeatured(ctx context.Context) ([]*domain.Product, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*domain.Product, error)
	Search(ctx context.Context, query string) ([]*domain.Product, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)

	// GetProduct returns the product, bumps its view counter, and returns
	// a handful of other available products
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, []*domain.Product, error)

	CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListAllProducts(ctx context.Context) ([]*domain.Product, error)

	CreateCategory(ctx context.Context, name string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type catalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) CatalogService {
	return &catalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

func (s *catalogService) HomePage(ctx context.Context) (*HomePage, error) {
	featured, err := s.productRepo.ListFeatured(ctx, featuredLimit)
	if err != nil {
		return nil, err
	}

	products, err := s.productRepo.ListAvailable(ctx, nil)
	if err != nil {
		return nil, err
	}

	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	return &HomePage{
		Featured:   featured,
		Products:   products,
		Categories: categories,
	}, nil
}

func (s *catalogService) ListFeatured(ctx context.Context) ([]*domain.Product, error) {
	return s.productRepo.ListFeatured(ctx, featuredLimit)
}

func (s *catalogService) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*domain.Product, error) {
	if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
		return nil, err
	}
	return s.productRepo.ListAvailable(ctx, &categoryID)
}

func (s *catalogService) Search(ctx context.Context, query string) ([]*domain.Product, error) {
	return s.productRepo.Search(ctx, query)
}

func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, []*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if err := s.productRepo.IncrementViews(ctx, id); err != nil {
		return nil, nil, err
	}
	product.Views++

	related, err := s.productRepo.ListRelated(ctx, id, relatedLimit)
	if err != nil {
		return nil, nil, err
	}

	return product, related, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if input.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	product := &domain.Product{
		ID:            uuid.New(),
		Name:          input.Name,
		Description:   input.Description,
		Price:         input.Price,
		OriginalPrice: input.OriginalPrice,
		Image:         input.Image,
		Level:         input.Level,
		Diamonds:      input.Diamonds,
		SkinsCount:    input.SkinsCount,
		Characters:    input.Characters,
		Rank:          input.Rank,
		CategoryID:    input.CategoryID,
		Available:     true,
		Featured:      input.Featured,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
	}

	product.Name = input.Name
	product.Description = input.Description
	product.Price = input.Price
	product.OriginalPrice = input.OriginalPrice
	if input.Image != "" {
		product.Image = input.Image
	}
	product.Level = input.Level
	product.Diamonds = input.Diamonds
	product.SkinsCount = input.SkinsCount
	product.Characters = input.Characters
	product.Rank = input.Rank
	product.CategoryID = input.CategoryID
	product.Available = input.Available
	product.Featured = input.Featured
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}

func (s *catalogService) ListAllProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.productRepo.ListAll(ctx)
}

func (s *catalogService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	category := &domain.Category{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.categoryRepo.Delete(ctx, id)
}
