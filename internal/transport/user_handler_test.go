package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ffstore/internal/config"
	"ffstore/internal/domain"
	"ffstore/internal/middleware"
	"ffstore/internal/repository"
	"ffstore/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// stubUserService keeps accounts in a map and hands out fixed tokens
type stubUserService struct {
	byEmail map[string]*domain.User
}

func newStubUserService() *stubUserService {
	return &stubUserService{byEmail: make(map[string]*domain.User)}
}

func (s *stubUserService) Register(ctx context.Context, username, email, password, confirmPassword string) (*domain.User, error) {
	if password != confirmPassword {
		return nil, service.ErrPasswordMismatch
	}
	if _, exists := s.byEmail[email]; exists {
		return nil, repository.ErrEmailAlreadyTaken
	}
	for _, user := range s.byEmail {
		if user.Username == username {
			return nil, repository.ErrUsernameAlreadyTaken
		}
	}
	user := &domain.User{
		ID:        uuid.New(),
		Username:  username,
		Email:     email,
		Role:      domain.RoleCustomer,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	s.byEmail[email] = user
	return user, nil
}

func (s *stubUserService) Login(ctx context.Context, email, password string) (string, string, *domain.User, error) {
	user, exists := s.byEmail[email]
	if !exists || password != "correct-password" {
		return "", "", nil, service.ErrInvalidCredentials
	}
	return "access-token", "refresh-token", user, nil
}

func (s *stubUserService) Logout(ctx context.Context, refreshToken string) error { return nil }

func (s *stubUserService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken != "refresh-token" {
		return "", service.ErrInvalidToken
	}
	return "fresh-access-token", nil
}

func (s *stubUserService) ValidateToken(tokenString string) (*service.Claims, error) {
	return nil, service.ErrInvalidToken
}

func (s *stubUserService) GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	for _, user := range s.byEmail {
		if user.ID == userID {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *stubUserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users := []*domain.User{}
	for _, user := range s.byEmail {
		users = append(users, user)
	}
	return users, nil
}

func (s *stubUserService) ToggleAdmin(ctx context.Context, actingAdminID, userID uuid.UUID) (*domain.User, error) {
	return nil, repository.ErrUserNotFound
}

func (s *stubUserService) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) error { return nil }

func newUserTestServer() (*chi.Mux, *stubUserService) {
	userService := newStubUserService()
	handler := NewUserHandler(userService, zap.NewNop())

	router := chi.NewRouter()
	handler.RegisterRoutes(router, middleware.AuthMiddleware("test-secret", zap.NewNop()))
	return router, userService
}

func postJSON(router http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterEndpoint(t *testing.T) {
	router, _ := newUserTestServer()

	body := `{
		"username": "maria",
		"email": "maria@example.com",
		"password": "secret123",
		"confirm_password": "secret123"
	}`
	w := postJSON(router, "/api/users/register", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", w.Code, w.Body.String())
	}

	var profile UserProfile
	if err := json.Unmarshal(w.Body.Bytes(), &profile); err != nil {
		t.Fatal(err)
	}
	if profile.Username != "maria" || profile.Role != domain.RoleCustomer {
		t.Errorf("profile = %+v, want maria the customer", profile)
	}

	// Same email again
	if w := postJSON(router, "/api/users/register", body); w.Code != http.StatusConflict {
		t.Errorf("duplicate email: status = %d, want 409", w.Code)
	}
}

func TestRegisterPasswordMismatchIs400(t *testing.T) {
	router, _ := newUserTestServer()

	body := `{
		"username": "maria",
		"email": "maria@example.com",
		"password": "secret123",
		"confirm_password": "different1"
	}`
	if w := postJSON(router, "/api/users/register", body); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestRegisterValidationRejectsShortPassword(t *testing.T) {
	router, _ := newUserTestServer()

	body := `{
		"username": "maria",
		"email": "maria@example.com",
		"password": "short",
		"confirm_password": "short"
	}`
	if w := postJSON(router, "/api/users/register", body); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestLoginEndpoint(t *testing.T) {
	router, userService := newUserTestServer()
	userService.byEmail["maria@example.com"] = &domain.User{
		ID: uuid.New(), Username: "maria", Email: "maria@example.com", Role: domain.RoleCustomer,
	}

	w := postJSON(router, "/api/users/login", `{"email": "maria@example.com", "password": "correct-password"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}

	var resp LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("login response must carry both tokens")
	}

	w = postJSON(router, "/api/users/login", `{"email": "maria@example.com", "password": "wrong"}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: status = %d, want 401", w.Code)
	}
}

func TestProfileRequiresAuth(t *testing.T) {
	router, _ := newUserTestServer()

	req := httptest.NewRequest("GET", "/api/users/profile", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
