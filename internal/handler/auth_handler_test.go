package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/cardshare/internal/auth"
	"github.com/octobees/cardshare/internal/dto"
	"github.com/octobees/cardshare/internal/service"
)

func newAuthHandler(t *testing.T, hash string) (*AuthHandler, *auth.JWTManager) {
	t.Helper()
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	svc := service.NewAuthService("owner@example.com", hash, jwtManager)
	return NewAuthHandler(svc, jwtManager.TTL()), jwtManager
}

func TestAuthHandler_Login(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("super-secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	tests := map[string]struct {
		hash       string
		body       string
		expectCode int
	}{
		"invalid payload":     {hash: string(hashed), body: "{", expectCode: http.StatusBadRequest},
		"missing fields":      {hash: string(hashed), body: `{"email":" "}`, expectCode: http.StatusBadRequest},
		"invalid credentials": {hash: string(hashed), body: `{"email":"owner@example.com","password":"nope"}`, expectCode: http.StatusUnauthorized},
		"login disabled":      {body: `{"email":"owner@example.com","password":"super-secret"}`, expectCode: http.StatusServiceUnavailable},
		"success":             {hash: string(hashed), body: `{"email":"owner@example.com","password":"super-secret"}`, expectCode: http.StatusOK},
	}

	e := echo.New()
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler, manager := newAuthHandler(t, tt.hash)
			if err := handler.Login(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tt.expectCode {
				t.Fatalf("expected %d, got %d (%s)", tt.expectCode, rec.Code, rec.Body.String())
			}
			if tt.expectCode != http.StatusOK {
				return
			}

			var payload struct {
				Data dto.LoginResponse `json:"data"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if payload.Data.TokenType != "Bearer" || payload.Data.ExpiresIn != 3600 {
				t.Fatalf("unexpected login response: %+v", payload.Data)
			}
			claims, err := manager.ParseToken(payload.Data.AccessToken)
			if err != nil || claims.Role != auth.RoleOwner {
				t.Fatalf("expected owner token, got %+v (%v)", claims, err)
			}
		})
	}
}
