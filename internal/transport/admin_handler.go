package transport

import (
	"errors"
	"net/http"
	"strconv"

	"ffstore/internal/domain"
	"ffstore/internal/middleware"
	"ffstore/internal/repository"
	"ffstore/internal/service"
	"ffstore/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CategoryRequest represents the category creation payload
type CategoryRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

// StatusRequest represents the order status update payload
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// SettingsRequest represents the site settings update payload
type SettingsRequest struct {
	SiteName   string `json:"site_name" validate:"required"`
	WhatsApp   string `json:"whatsapp"`
	Instagram  string `json:"instagram"`
	PixKey     string `json:"pix_key"`
	BannerText string `json:"banner_text"`
}

// AdminHandler handles the admin panel API
type AdminHandler struct {
	catalogService  service.CatalogService
	orderService    service.OrderService
	userService     service.UserService
	settingsService service.SettingsService
	images          *storage.ImageStore
	logger          *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	catalogService service.CatalogService,
	orderService service.OrderService,
	userService service.UserService,
	settingsService service.SettingsService,
	images *storage.ImageStore,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		catalogService:  catalogService,
		orderService:    orderService,
		userService:     userService,
		settingsService: settingsService,
		images:          images,
		logger:          logger,
	}
}

// RegisterRoutes registers all admin routes behind the auth + admin gate
func (h *AdminHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)

		r.Get("/dashboard", h.Dashboard)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Post("/", h.CreateProduct)
			r.Put("/{id}", h.UpdateProduct)
			r.Delete("/{id}", h.DeleteProduct)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", h.CreateCategory)
			r.Delete("/{id}", h.DeleteCategory)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.ListOrders)
			r.Get("/{id}", h.GetOrder)
			r.Put("/{id}/status", h.UpdateOrderStatus)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.ListUsers)
			r.Post("/{id}/toggle-admin", h.ToggleAdmin)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", h.GetSettings)
			r.Put("/", h.UpdateSettings)
		})
	})
}

// Dashboard returns the admin dashboard aggregates
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.orderService.Dashboard(r.Context())
	if err != nil {
		h.logger.Error("Failed to build dashboard", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to build dashboard")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, stats)
}

// ListProducts lists every product, sold ones included
func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogService.ListAllProducts(r.Context())
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// productFormInput parses the multipart product form: scalar fields plus an
// optional image file, which is stored on disk with only its filename kept.
func (h *AdminHandler) productFormInput(r *http.Request) (service.ProductInput, error) {
	input := service.ProductInput{}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return input, errors.New("invalid multipart form")
	}

	input.Name = r.FormValue("name")
	if input.Name == "" {
		return input, errors.New("name is required")
	}
	input.Description = r.FormValue("description")

	price, err := decimal.NewFromString(r.FormValue("price"))
	if err != nil {
		return input, errors.New("invalid price")
	}
	input.Price = price

	if v := r.FormValue("original_price"); v != "" {
		originalPrice, err := decimal.NewFromString(v)
		if err != nil {
			return input, errors.New("invalid original price")
		}
		input.OriginalPrice = decimal.NullDecimal{Decimal: originalPrice, Valid: true}
	}

	if v := r.FormValue("level"); v != "" {
		level, err := strconv.Atoi(v)
		if err != nil {
			return input, errors.New("invalid level")
		}
		input.Level = &level
	}

	if v := r.FormValue("diamonds"); v != "" {
		if input.Diamonds, err = strconv.Atoi(v); err != nil {
			return input, errors.New("invalid diamonds")
		}
	}

	if v := r.FormValue("skins_count"); v != "" {
		if input.SkinsCount, err = strconv.Atoi(v); err != nil {
			return input, errors.New("invalid skins count")
		}
	}

	input.Characters = r.FormValue("characters")
	input.Rank = r.FormValue("rank")

	if v := r.FormValue("category_id"); v != "" {
		categoryID, err := uuid.Parse(v)
		if err != nil {
			return input, errors.New("invalid category id")
		}
		input.CategoryID = &categoryID
	}

	input.Featured = r.FormValue("is_featured") == "true"
	input.Available = r.FormValue("is_available") != "false"

	file, header, err := r.FormFile("image")
	if err == nil {
		defer file.Close()

		filename, err := h.images.Save(file, header)
		if err != nil {
			if errors.Is(err, storage.ErrFileTooLarge) {
				return input, errors.New("image file is too large")
			}
			h.logger.Error("Failed to store product image", zap.Error(err))
			return input, errors.New("failed to store image")
		}
		input.Image = filename
	}

	return input, nil
}

// CreateProduct adds a product from a multipart form
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	input, err := h.productFormInput(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.catalogService.CreateProduct(r.Context(), input)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "category not found")
			return
		}
		h.logger.Error("Failed to create product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// UpdateProduct edits a product from a multipart form
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	input, err := h.productFormInput(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.catalogService.UpdateProduct(r.Context(), id, input)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		case errors.Is(err, repository.ErrCategoryNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "category not found")
		default:
			h.logger.Error("Failed to update product", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update product")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// DeleteProduct removes a product. Order history is untouched: item
// snapshots carry their own copy of name and price.
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.catalogService.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to delete product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// CreateCategory adds a category
func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.catalogService.CreateCategory(r.Context(), req.Name)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict, "category with this name already exists")
			return
		}
		h.logger.Error("Failed to create category", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, category)
}

// DeleteCategory removes a category; its products keep existing uncategorized
func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	if err := h.catalogService.DeleteCategory(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "category not found")
			return
		}
		h.logger.Error("Failed to delete category", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
}

// ListOrders lists every order, newest first
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.ListAllOrders(r.Context())
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// GetOrder returns an order with its item snapshots
func (h *AdminHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.Error("Failed to load order", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load order")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// UpdateOrderStatus moves an order through the lifecycle
func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req StatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orderService.UpdateStatus(r.Context(), id, domain.OrderStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, service.ErrUnknownStatus):
			middleware.RespondWithError(w, http.StatusBadRequest, "unknown order status")
		case errors.Is(err, service.ErrInvalidTransition):
			middleware.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, repository.ErrStatusConflict):
			middleware.RespondWithError(w, http.StatusConflict, "order status changed concurrently, reload and retry")
		default:
			h.logger.Error("Failed to update order status", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update order status")
		}
		return
	}

	h.logger.Info("Order status updated",
		zap.String("order_id", order.ID.String()),
		zap.String("status", string(order.Status)),
	)
	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// ListUsers lists every registered user
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("Failed to list users", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, users)
}

// ToggleAdmin flips a user's admin role
func (h *AdminHandler) ToggleAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	actingAdmin := middleware.UserUUID(r.Context())
	if actingAdmin == nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	user, err := h.userService.ToggleAdmin(r.Context(), *actingAdmin, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "user not found")
			return
		}
		if errors.Is(err, service.ErrSelfRoleChange) {
			middleware.RespondWithError(w, http.StatusConflict, err.Error())
			return
		}
		h.logger.Error("Failed to toggle admin role", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, user)
}

// GetSettings returns the site settings for the admin panel
func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.Get(r.Context())
	if err != nil {
		h.logger.Error("Failed to load settings", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, settings)
}

// UpdateSettings overwrites the site settings
func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	settings, err := h.settingsService.Update(r.Context(), service.SettingsInput{
		SiteName:   req.SiteName,
		WhatsApp:   req.WhatsApp,
		Instagram:  req.Instagram,
		PixKey:     req.PixKey,
		BannerText: req.BannerText,
	})
	if err != nil {
		h.logger.Error("Failed to update settings", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update settings")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, settings)
}
