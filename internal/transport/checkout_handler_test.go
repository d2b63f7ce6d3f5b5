package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ffstore/internal/domain"
	"ffstore/internal/middleware"
	"ffstore/internal/repository"
	"ffstore/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// stubCart is an in-memory Cart for handler tests
type stubCart struct {
	owner    *uuid.UUID
	products []*domain.Product
	cleared  bool
}

func (c *stubCart) Resolve(ctx context.Context) ([]*domain.CartEntry, decimal.Decimal, error) {
	entries := []*domain.CartEntry{}
	total := decimal.Zero
	for _, p := range c.products {
		entries = append(entries, &domain.CartEntry{Product: p, Quantity: 1})
		total = total.Add(p.Price)
	}
	return entries, total, nil
}

func (c *stubCart) Add(ctx context.Context, productID uuid.UUID) error {
	for _, p := range c.products {
		if p.ID == productID {
			return service.ErrAlreadyInCart
		}
	}
	c.products = append(c.products, &domain.Product{ID: productID, Price: decimal.Zero, Available: true})
	return nil
}

func (c *stubCart) Remove(ctx context.Context, productID uuid.UUID) error {
	kept := c.products[:0]
	for _, p := range c.products {
		if p.ID != productID {
			kept = append(kept, p)
		}
	}
	c.products = kept
	return nil
}

func (c *stubCart) Clear(ctx context.Context) error {
	c.cleared = true
	c.products = nil
	return nil
}

func (c *stubCart) Count(ctx context.Context) (int, error) { return len(c.products), nil }
func (c *stubCart) Owner() *uuid.UUID                      { return c.owner }

// stubCartService hands every request the same cart
type stubCartService struct {
	cart     *stubCart
	catalog  map[uuid.UUID]*domain.Product
	lastUser *uuid.UUID
}

func (s *stubCartService) CartFor(userID *uuid.UUID, sessionID string) service.Cart {
	s.lastUser = userID
	return s.cart
}

func (s *stubCartService) AddProduct(ctx context.Context, cart service.Cart, productID uuid.UUID) error {
	product, ok := s.catalog[productID]
	if !ok {
		return repository.ErrProductNotFound
	}
	if !product.Available {
		return service.ErrProductUnavailable
	}
	return cart.Add(ctx, productID)
}

// stubCheckoutService wraps the real checkout flow shape with an in-memory
// order sink
type stubCheckoutService struct {
	orders map[uuid.UUID]*domain.Order
}

func (s *stubCheckoutService) Checkout(ctx context.Context, cart service.Cart, input service.CheckoutInput) (*domain.Order, error) {
	entries, total, err := cart.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, service.ErrCartEmpty
	}

	order := &domain.Order{
		ID:            uuid.New(),
		UserID:        cart.Owner(),
		Total:         total,
		PaymentMethod: input.PaymentMethod,
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		CustomerPhone: input.CustomerPhone,
		Status:        domain.StatusPending,
		CreatedAt:     time.Now(),
	}
	s.orders[order.ID] = order
	cart.Clear(ctx)
	return order, nil
}

type stubOrderService struct {
	orders map[uuid.UUID]*domain.Order
}

func (s *stubOrderService) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func (s *stubOrderService) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	orders := []*domain.Order{}
	for _, order := range s.orders {
		if order.UserID != nil && *order.UserID == userID {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func (s *stubOrderService) ListAllOrders(ctx context.Context) ([]*domain.Order, error) {
	orders := []*domain.Order{}
	for _, order := range s.orders {
		orders = append(orders, order)
	}
	return orders, nil
}

func (s *stubOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	order.Status = status
	return order, nil
}

func (s *stubOrderService) Dashboard(ctx context.Context) (*service.DashboardStats, error) {
	return &service.DashboardStats{}, nil
}

func newCheckoutTestServer(cart *stubCart) (*chi.Mux, *stubCheckoutService) {
	orders := map[uuid.UUID]*domain.Order{}
	checkoutService := &stubCheckoutService{orders: orders}
	cartService := &stubCartService{cart: cart}
	orderService := &stubOrderService{orders: orders}

	handler := NewCheckoutHandler(checkoutService, cartService, orderService, zap.NewNop())

	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(middleware.GuestSessionMiddleware("guest_cart", time.Hour))
		r.Use(middleware.OptionalAuthMiddleware("test-secret", zap.NewNop()))
		handler.RegisterRoutes(r, middleware.AuthMiddleware("test-secret", zap.NewNop()))
	})

	return router, checkoutService
}

func checkoutBody() string {
	return `{
		"customer_name": "Maria",
		"customer_email": "maria@example.com",
		"customer_phone": "5511988887777",
		"payment_method": "pix"
	}`
}

func TestCheckoutEndpointCreatesOrder(t *testing.T) {
	account := &domain.Product{ID: uuid.New(), Name: "Conta Diamante", Price: decimal.RequireFromString("50.00"), Available: true}
	other := &domain.Product{ID: uuid.New(), Name: "Conta Ouro", Price: decimal.RequireFromString("30.00"), Available: true}
	cart := &stubCart{products: []*domain.Product{account, other}}

	router, checkoutService := newCheckoutTestServer(cart)

	req := httptest.NewRequest("POST", "/api/checkout", strings.NewReader(checkoutBody()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", w.Code, w.Body.String())
	}

	var order domain.Order
	if err := json.Unmarshal(w.Body.Bytes(), &order); err != nil {
		t.Fatalf("response is not an order: %v", err)
	}
	if !order.Total.Equal(decimal.RequireFromString("80.00")) {
		t.Errorf("order total = %s, want 80.00", order.Total)
	}
	if order.Status != domain.StatusPending {
		t.Errorf("order status = %s, want %s", order.Status, domain.StatusPending)
	}
	if len(checkoutService.orders) != 1 {
		t.Errorf("got %d stored orders, want 1", len(checkoutService.orders))
	}
	if !cart.cleared {
		t.Error("checkout must clear the cart")
	}
}

func TestCheckoutEndpointRejectsEmptyCart(t *testing.T) {
	router, checkoutService := newCheckoutTestServer(&stubCart{})

	req := httptest.NewRequest("POST", "/api/checkout", strings.NewReader(checkoutBody()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409; body: %s", w.Code, w.Body.String())
	}
	if len(checkoutService.orders) != 0 {
		t.Error("no order may be created for an empty cart")
	}
}

func TestCheckoutEndpointValidatesForm(t *testing.T) {
	account := &domain.Product{ID: uuid.New(), Name: "Conta", Price: decimal.RequireFromString("10.00"), Available: true}
	router, _ := newCheckoutTestServer(&stubCart{products: []*domain.Product{account}})

	// Missing required customer fields
	req := httptest.NewRequest("POST", "/api/checkout", strings.NewReader(`{"notes": "fast please"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body: %s", w.Code, w.Body.String())
	}
}

func TestOrderLookupByID(t *testing.T) {
	account := &domain.Product{ID: uuid.New(), Name: "Conta", Price: decimal.RequireFromString("10.00"), Available: true}
	cart := &stubCart{products: []*domain.Product{account}}
	router, checkoutService := newCheckoutTestServer(cart)

	req := httptest.NewRequest("POST", "/api/checkout", strings.NewReader(checkoutBody()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("checkout failed: %s", w.Body.String())
	}

	var orderID uuid.UUID
	for id := range checkoutService.orders {
		orderID = id
	}

	// The confirmation is public by unguessable ID
	req = httptest.NewRequest("GET", "/api/orders/"+orderID.String(), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("order lookup status = %d, want 200", w.Code)
	}

	// Unknown orders are 404
	req = httptest.NewRequest("GET", "/api/orders/"+uuid.NewString(), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown order status = %d, want 404", w.Code)
	}
}

func TestMyOrdersRequiresAuthentication(t *testing.T) {
	router, _ := newCheckoutTestServer(&stubCart{})

	req := httptest.NewRequest("GET", "/api/orders", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
