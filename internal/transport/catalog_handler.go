package transport

import (
	"errors"
	"net/http"

	"ffstore/internal/domain"
	"ffstore/internal/middleware"
	"ffstore/internal/repository"
	"ffstore/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogHandler handles public storefront browsing
type CatalogHandler struct {
	catalogService  service.CatalogService
	settingsService service.SettingsService
	logger          *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService service.CatalogService, settingsService service.SettingsService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService:  catalogService,
		settingsService: settingsService,
		logger:          logger,
	}
}

// RegisterRoutes registers the public catalog routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/home", h.Home)
	r.Get("/api/products", h.ListProducts)
	r.Get("/api/products/{id}", h.GetProduct)
	r.Get("/api/categories", h.ListCategories)
	r.Get("/api/settings", h.GetSettings)
}

// Home returns the landing page payload: featured products, the full
// available listing and the category list
func (h *CatalogHandler) Home(w http.ResponseWriter, r *http.Request) {
	page, err := h.catalogService.HomePage(r.Context())
	if err != nil {
		h.logger.Error("Failed to load home page", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load home page")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, page)
}

// ListProducts lists available products, filtered by ?category= or searched
// by ?q=
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	if categoryParam := r.URL.Query().Get("category"); categoryParam != "" {
		categoryID, err := uuid.Parse(categoryParam)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid category id")
			return
		}

		products, err := h.catalogService.ListByCategory(r.Context(), categoryID)
		if err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				middleware.RespondWithError(w, http.StatusNotFound, "category not found")
				return
			}
			h.logger.Error("Failed to list products by category", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
			return
		}

		middleware.RespondWithJSON(w, http.StatusOK, products)
		return
	}

	if r.URL.Query().Get("featured") == "true" {
		products, err := h.catalogService.ListFeatured(r.Context())
		if err != nil {
			h.logger.Error("Failed to list featured products", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
			return
		}
		middleware.RespondWithJSON(w, http.StatusOK, products)
		return
	}

	products, err := h.catalogService.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.logger.Error("Failed to search products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// ProductDetailResponse bundles a product with its related suggestions
type ProductDetailResponse struct {
	Product *domain.Product   `json:"product"`
	Related []*domain.Product `json:"related"`
}

// GetProduct returns one product plus related suggestions
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, related, err := h.catalogService.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to load product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductDetailResponse{
		Product: product,
		Related: related,
	})
}

// ListCategories returns all categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

// GetSettings returns the public site settings
func (h *CatalogHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.Get(r.Context())
	if err != nil {
		h.logger.Error("Failed to load settings", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, settings)
}
