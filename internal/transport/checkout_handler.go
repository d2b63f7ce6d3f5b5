package transport

import (
	"errors"
	"net/http"

	"ffstore/internal/middleware"
	"ffstore/internal/repository"
	"ffstore/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutRequest represents the checkout form payload
type CheckoutRequest struct {
	CustomerName  string `json:"customer_name" validate:"required"`
	CustomerEmail string `json:"customer_email" validate:"required,email"`
	CustomerPhone string `json:"customer_phone" validate:"required"`
	PaymentMethod string `json:"payment_method" validate:"required"`
	Notes         string `json:"notes"`
}

// CheckoutHandler converts carts into orders and serves order lookups
type CheckoutHandler struct {
	checkoutService service.CheckoutService
	cartService     service.CartService
	orderService    service.OrderService
	logger          *zap.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(
	checkoutService service.CheckoutService,
	cartService service.CartService,
	orderService service.OrderService,
	logger *zap.Logger,
) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		cartService:     cartService,
		orderService:    orderService,
		logger:          logger,
	}
}

// RegisterRoutes registers checkout and order routes. Callers must wrap the
// router with optional auth and guest session middleware; authMiddleware
// additionally protects the personal order listing.
func (h *CheckoutHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Post("/api/checkout", h.Checkout)

	// Order confirmation is looked up by the order's unguessable ID, so
	// guests can see their own confirmation too
	r.Get("/api/orders/{id}", h.GetOrder)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/api/orders", h.MyOrders)
	})
}

// Checkout converts the visitor's cart into a pending order
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID, _ := middleware.GetSessionID(r.Context())
	cart := h.cartService.CartFor(middleware.UserUUID(r.Context()), sessionID)

	order, err := h.checkoutService.Checkout(r.Context(), cart, service.CheckoutInput{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCartEmpty):
			middleware.RespondWithError(w, http.StatusConflict, "your cart is empty")
		case errors.Is(err, service.ErrProductUnavailable):
			// Someone else bought one of the accounts first; nothing
			// was written.
			middleware.RespondWithError(w, http.StatusConflict, "a product in your cart was just sold")
		default:
			h.logger.Error("Checkout failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to complete checkout")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, order)
}

// GetOrder returns an order with its item snapshots
func (h *CheckoutHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
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

// MyOrders lists the authenticated user's orders, newest first
func (h *CheckoutHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserUUID(r.Context())
	if userID == nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	orders, err := h.orderService.ListUserOrders(r.Context(), *userID)
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}
