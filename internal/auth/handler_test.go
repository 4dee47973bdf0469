package auth

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/veritrack/veritrack/internal/shared"
	"github.com/veritrack/veritrack/internal/view"
)

type stubRepo struct {
	emp *Employee
}

func (s *stubRepo) FindByEmail(_ context.Context, email string) (*Employee, error) {
	if s.emp == nil || s.emp.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.emp, nil
}

func newAuthHandler(t *testing.T, repo Repository) *Handler {
	t.Helper()
	engine, err := view.NewEngine()
	require.NoError(t, err)
	return NewHandler(slog.Default(), NewService(repo), engine, nil, shared.NewCSRFManager("test-secret"))
}

func activeEmployee(t *testing.T, password string) *Employee {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &Employee{
		ID:           3,
		CompanyID:    7,
		Email:        "dispatcher@example.com",
		PasswordHash: string(hash),
		IsActive:     true,
	}
}

func TestAuthenticate(t *testing.T) {
	emp := activeEmployee(t, "correct horse")
	svc := NewService(&stubRepo{emp: emp})

	got, err := svc.Authenticate(context.Background(), "dispatcher@example.com", "correct horse")
	require.NoError(t, err)
	require.Equal(t, int64(3), got.ID)

	_, err = svc.Authenticate(context.Background(), "dispatcher@example.com", "wrong")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "nobody@example.com", "correct horse")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateRejectsInactive(t *testing.T) {
	emp := activeEmployee(t, "correct horse")
	emp.IsActive = false
	svc := NewService(&stubRepo{emp: emp})

	_, err := svc.Authenticate(context.Background(), "dispatcher@example.com", "correct horse")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLoginRedirectsOnSuccess(t *testing.T) {
	h := newAuthHandler(t, &stubRepo{emp: activeEmployee(t, "correct horse")})

	form := url.Values{"email": {"dispatcher@example.com"}, "password": {"correct horse"}}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	h.handleLogin(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	h := newAuthHandler(t, &stubRepo{emp: activeEmployee(t, "correct horse")})

	form := url.Values{"email": {"dispatcher@example.com"}, "password": {"wrong password"}}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	h.handleLogin(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShowLoginRenders(t *testing.T) {
	h := newAuthHandler(t, &stubRepo{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	h.showLogin(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `action="/auth/login"`)
}
