package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ffstore/internal/domain"
	"ffstore/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrUnknownStatus = errors.New("unknown order status")

	// ErrInvalidTransition is returned when the requested status change is
	// not in the transition table
	ErrInvalidTransition = errors.New("order status transition not allowed")
)

// DashboardStats are the admin dashboard aggregates
type DashboardStats struct {
	TotalProducts     int             `json:"total_products"`
	AvailableProducts int             `json:"available_products"`
	TotalOrders       int             `json:"total_orders"`
	PendingOrders     int             `json:"pending_orders"`
	TotalUsers        int             `json:"total_users"`
	MonthlySales      decimal.Decimal `json:"monthly_sales"`
	RecentOrders      []*domain.Order `json:"recent_orders"`
}

// OrderService defines order lookup and the admin status workflow
type OrderService interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	ListAllOrders(ctx context.Context) ([]*domain.Order, error)

	// UpdateStatus moves an order through the lifecycle. Unknown statuses
	// are ErrUnknownStatus, disallowed moves ErrInvalidTransition.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error)

	Dashboard(ctx context.Context) (*DashboardStats, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, userRepo repository.UserRepository) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
	}
}

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.orderRepo.FindByID(ctx, id)
}

func (s *orderService) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID)
}

func (s *orderService) ListAllOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.orderRepo.ListAll(ctx)
}

// UpdateStatus validates the move against the transition table before
// writing. Cancelling an order does not restore product availability: the
// account may already have been handed over, so re-listing is a deliberate
// manual step.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, ErrUnknownStatus
	}

	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, status)
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, order.Status, status); err != nil {
		return nil, err
	}

	order.Status = status
	return order, nil
}

func (s *orderService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	totalProducts, availableProducts, err := s.productRepo.Counts(ctx)
	if err != nil {
		return nil, err
	}

	totalOrders, err := s.orderRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	pendingOrders, err := s.orderRepo.CountByStatus(ctx, domain.StatusPending)
	if err != nil {
		return nil, err
	}

	totalUsers, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthlySales, err := s.orderRepo.SalesSince(ctx, startOfMonth)
	if err != nil {
		return nil, err
	}

	recentOrders, err := s.orderRepo.ListRecent(ctx, 5)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		TotalProducts:     totalProducts,
		AvailableProducts: availableProducts,
		TotalOrders:       totalOrders,
		PendingOrders:     pendingOrders,
		TotalUsers:        totalUsers,
		MonthlySales:      monthlySales,
		RecentOrders:      recentOrders,
	}, nil
}
