package transport

import (
	"context"
	"fmt"
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
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// lifecycleOrderService enforces the same status rules as the real service
type lifecycleOrderService struct {
	stubOrderService
}

func (s *lifecycleOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, service.ErrUnknownStatus
	}
	order, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	if !order.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", service.ErrInvalidTransition, order.Status, status)
	}
	order.Status = status
	return order, nil
}

func adminToken(t *testing.T, secret string, role string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"user_id": uuid.NewString(),
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func newAdminTestServer(orderService service.OrderService) *chi.Mux {
	handler := NewAdminHandler(nil, orderService, nil, nil, nil, zap.NewNop())

	router := chi.NewRouter()
	handler.RegisterRoutes(router,
		middleware.AuthMiddleware("test-secret", zap.NewNop()),
		middleware.RequireAdmin(zap.NewNop()),
	)
	return router
}

func TestAdminRoutesRejectNonAdmins(t *testing.T) {
	router := newAdminTestServer(&lifecycleOrderService{stubOrderService{orders: map[uuid.UUID]*domain.Order{}}})

	// No token at all
	req := httptest.NewRequest("GET", "/api/admin/orders", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: status = %d, want 401", w.Code)
	}

	// Authenticated, but only a customer
	req = httptest.NewRequest("GET", "/api/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t, "test-secret", "customer"))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("customer: status = %d, want 403", w.Code)
	}
}

func TestUpdateOrderStatusEndpoint(t *testing.T) {
	orderID := uuid.New()
	orderService := &lifecycleOrderService{stubOrderService{orders: map[uuid.UUID]*domain.Order{
		orderID: {
			ID:        orderID,
			Total:     decimal.RequireFromString("50.00"),
			Status:    domain.StatusPending,
			CreatedAt: time.Now(),
		},
	}}}
	router := newAdminTestServer(orderService)
	token := adminToken(t, "test-secret", "admin")

	put := func(id, status string) *httptest.ResponseRecorder {
		body := fmt.Sprintf(`{"status": %q}`, status)
		req := httptest.NewRequest("PUT", "/api/admin/orders/"+id+"/status", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	// Unknown status value
	if w := put(orderID.String(), "enviado"); w.Code != http.StatusBadRequest {
		t.Errorf("unknown status: status = %d, want 400", w.Code)
	}

	// Skipping payment is not allowed
	if w := put(orderID.String(), string(domain.StatusDelivered)); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("pending -> entregue: status = %d, want 422", w.Code)
	}

	// The legal path works
	if w := put(orderID.String(), string(domain.StatusPaid)); w.Code != http.StatusOK {
		t.Errorf("pending -> pago: status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	if orderService.orders[orderID].Status != domain.StatusPaid {
		t.Error("status change did not stick")
	}

	// Missing order
	if w := put(uuid.NewString(), string(domain.StatusPaid)); w.Code != http.StatusNotFound {
		t.Errorf("missing order: status = %d, want 404", w.Code)
	}
}
