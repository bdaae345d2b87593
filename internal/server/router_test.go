package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hptiles/tilebill/internal/auth"
	"github.com/hptiles/tilebill/internal/config"
	"github.com/hptiles/tilebill/internal/models"
)

func setupRouter(t *testing.T) (http.Handler, models.User) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(&models.User{}, &models.OtpCode{}, &models.CompanyProfile{}, &models.StockItem{},
		&models.Invoice{}, &models.InvoiceItem{}, &models.DeliveryChallan{}, &models.ChallanItem{})
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	user := models.User{Email: "router@test", Password: "x", Username: "router", Verified: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	cfg := config.Config{UploadDir: t.TempDir(), AllowedOrigins: []string{"http://localhost:5173"}}
	auth.SetUserVerifier(nil)
	return New(cfg, db), user
}

func TestHealth(t *testing.T) {
	h, _ := setupRouter(t)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("healthz: expected 200 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	h, user := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/stocks/%d", user.ID), nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401 got %d", w.Code)
	}

	token, err := auth.GenerateToken(user.ID, user.Email)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/stocks/%d", user.ID), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("with token: expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var rows []models.StockItem
	if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
		t.Fatalf("body: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/stocks/%d", user.ID), nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: expected 401 got %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	h, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("allow origin: %q", got)
	}
}
