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
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartResponse represents the resolved cart
type CartResponse struct {
	Items []*domain.CartEntry `json:"items"`
	Total decimal.Decimal     `json:"total"`
	Count int                 `json:"count"`
}

// CartHandler serves the cart for both authenticated users and guests: the
// optional auth middleware decides which cart backs the request.
type CartHandler struct {
	cartService service.CartService
	logger      *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

// RegisterRoutes registers cart routes. Callers must wrap them with the
// optional auth and guest session middleware.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Post("/items/{productID}", h.AddItem)
		r.Delete("/items/{productID}", h.RemoveItem)
	})
}

func (h *CartHandler) visitorCart(r *http.Request) service.Cart {
	sessionID, _ := middleware.GetSessionID(r.Context())
	return h.cartService.CartFor(middleware.UserUUID(r.Context()), sessionID)
}

// GetCart resolves and returns the visitor's cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart := h.visitorCart(r)

	entries, total, err := cart.Resolve(r.Context())
	if err != nil {
		h.logger.Error("Failed to resolve cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{
		Items: entries,
		Total: total,
		Count: len(entries),
	})
}

// AddItem puts a product in the visitor's cart
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	cart := h.visitorCart(r)

	if err := h.cartService.AddProduct(r.Context(), cart, productID); err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		case errors.Is(err, service.ErrProductUnavailable):
			middleware.RespondWithError(w, http.StatusConflict, "this product is no longer available")
		case errors.Is(err, service.ErrAlreadyInCart):
			middleware.RespondWithError(w, http.StatusConflict, "this product is already in your cart")
		default:
			h.logger.Error("Failed to add to cart", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add to cart")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, map[string]string{"message": "product added to cart"})
}

// RemoveItem takes a product out of the visitor's cart. Removing a product
// that is not there succeeds quietly.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	cart := h.visitorCart(r)

	if err := cart.Remove(r.Context(), productID); err != nil {
		h.logger.Error("Failed to remove from cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to remove from cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product removed from cart"})
}
