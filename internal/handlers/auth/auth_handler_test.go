package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookly-service/internal/domain/user"
	"bookly-service/internal/middleware"
	xerrors "bookly-service/internal/pkg/errors"
	"bookly-service/internal/pkg/jwt"
	"bookly-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type fakeService struct {
	signupErr  error
	loginErr   error
	logoutErr  error
	lastLogin  *user.LoginRequest
	loggedOut  []string
	refreshFor *jwt.Claims
}

func (f *fakeService) Signup(_ context.Context, req *user.SignupRequest) (*user.User, error) {
	if f.signupErr != nil {
		return nil, f.signupErr
	}
	return &user.User{UID: uuid.New(), Email: req.Email, Username: req.Username, Role: user.RoleUser}, nil
}

func (f *fakeService) Login(_ context.Context, req *user.LoginRequest) (*user.LoginResponse, error) {
	f.lastLogin = req
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &user.LoginResponse{AccessToken: "a", RefreshToken: "r", TokenType: "bearer", User: user.UserInfo{Email: req.Email}}, nil
}

func (f *fakeService) RefreshAccessToken(_ context.Context, claims *jwt.Claims) (*user.RefreshResponse, error) {
	f.refreshFor = claims
	return &user.RefreshResponse{AccessToken: "fresh", TokenType: "bearer"}, nil
}

func (f *fakeService) Logout(_ context.Context, claims *jwt.Claims) error {
	if f.logoutErr != nil {
		return f.logoutErr
	}
	f.loggedOut = append(f.loggedOut, claims.ID)
	return nil
}

func (f *fakeService) Me(_ context.Context, u *user.User) (*user.UserWithBooks, error) {
	return &user.UserWithBooks{User: *u}, nil
}

func newRouter(svc *fakeService, claims *jwt.Claims, u *user.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(svc, zap.NewNop())

	inject := func(c *gin.Context) {
		if claims != nil {
			middleware.SetClaims(c, claims)
		}
		if u != nil {
			middleware.SetUser(c, u)
		}
		c.Next()
	}

	r := gin.New()
	r.POST("/signup", h.Signup)
	r.POST("/login", h.Login)
	r.GET("/refresh_token", inject, h.RefreshToken)
	r.GET("/logout", inject, h.Logout)
	r.GET("/me", inject, h.Me)
	return r
}

func do(r http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, response.Response) {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestSignupHandler(t *testing.T) {
	valid := map[string]string{
		"username": "reader", "email": "reader@example.com", "password": "pass",
		"first_name": "Re", "last_name": "Ader",
	}

	t.Run("created", func(t *testing.T) {
		w, resp := do(newRouter(&fakeService{}, nil, nil), http.MethodPost, "/signup", valid)
		if w.Code != http.StatusCreated || !resp.Success {
			t.Fatalf("status = %d body %s", w.Code, w.Body.String())
		}
	})

	t.Run("validation", func(t *testing.T) {
		bad := map[string]string{"username": "waytoolongname", "email": "nope", "password": "p"}
		w, resp := do(newRouter(&fakeService{}, nil, nil), http.MethodPost, "/signup", bad)
		if w.Code != http.StatusBadRequest || resp.ErrorCode != "bad_request" {
			t.Fatalf("status = %d code %q", w.Code, resp.ErrorCode)
		}
	})

	t.Run("duplicate", func(t *testing.T) {
		w, resp := do(newRouter(&fakeService{signupErr: xerrors.ErrUserAlreadyExists}, nil, nil), http.MethodPost, "/signup", valid)
		if w.Code != http.StatusConflict || resp.ErrorCode != "user_already_exists" {
			t.Fatalf("status = %d code %q", w.Code, resp.ErrorCode)
		}
	})
}

func TestLoginHandler(t *testing.T) {
	svc := &fakeService{}
	w, resp := do(newRouter(svc, nil, nil), http.MethodPost, "/login", map[string]string{
		"email": "reader@example.com", "password": "pass",
	})
	if w.Code != http.StatusOK || !resp.Success {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}
	if svc.lastLogin == nil || svc.lastLogin.IPAddress == "" {
		t.Error("client ip not passed to the service")
	}

	svc = &fakeService{loginErr: fmt.Errorf("login: %w", xerrors.ErrInvalidCredentials)}
	w, resp = do(newRouter(svc, nil, nil), http.MethodPost, "/login", map[string]string{
		"email": "reader@example.com", "password": "wrong",
	})
	if w.Code != http.StatusUnauthorized || resp.ErrorCode != "invalid_credentials" {
		t.Fatalf("status = %d code %q", w.Code, resp.ErrorCode)
	}

	svc = &fakeService{loginErr: xerrors.ErrRateLimited}
	w, _ = do(newRouter(svc, nil, nil), http.MethodPost, "/login", map[string]string{
		"email": "reader@example.com", "password": "wrong",
	})
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
}

func TestRefreshAndLogoutHandlers(t *testing.T) {
	claims := &jwt.Claims{User: jwt.UserClaims{Email: "reader@example.com", UserUID: uuid.NewString()}}
	claims.ID = "01JTESTJTI0000000000000000"

	svc := &fakeService{}
	r := newRouter(svc, claims, nil)

	if w, _ := do(r, http.MethodGet, "/refresh_token", nil); w.Code != http.StatusOK {
		t.Fatalf("refresh status = %d", w.Code)
	}
	if svc.refreshFor != claims {
		t.Error("refresh did not receive the token claims")
	}

	if w, _ := do(r, http.MethodGet, "/logout", nil); w.Code != http.StatusOK {
		t.Fatalf("logout status = %d", w.Code)
	}
	if len(svc.loggedOut) != 1 || svc.loggedOut[0] != claims.ID {
		t.Errorf("logged out = %v", svc.loggedOut)
	}

	svc.logoutErr = fmt.Errorf("%w: redis down", xerrors.ErrAuthInfrastructure)
	w, resp := do(r, http.MethodGet, "/logout", nil)
	if w.Code != http.StatusServiceUnavailable || resp.ErrorCode != "auth_infrastructure_error" {
		t.Fatalf("status = %d code %q", w.Code, resp.ErrorCode)
	}
	if resp.Error != "" {
		t.Errorf("internal error text leaked: %q", resp.Error)
	}
}

func TestMeHandler(t *testing.T) {
	u := &user.User{UID: uuid.New(), Email: "reader@example.com", Role: user.RoleUser, IsVerified: true, PasswordHash: "secret-hash"}
	w, _ := do(newRouter(&fakeService{}, nil, u), http.MethodGet, "/me", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("secret-hash")) {
		t.Error("password hash serialised")
	}
}
