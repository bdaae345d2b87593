package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hptiles/tilebill/internal/auth"
	"github.com/hptiles/tilebill/internal/config"
	"github.com/hptiles/tilebill/internal/models"
	"github.com/hptiles/tilebill/internal/services"
)

func setupAuthTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(&models.User{}, &models.OtpCode{}, &models.CompanyProfile{})
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newAuthHandler(db *gorm.DB) *AuthHandler {
	// No SMTP host configured: the mailer logs the code instead of sending.
	return NewAuthHandler(db, services.NewMailer(config.Config{}))
}

func TestRegisterVerifyLoginFlow(t *testing.T) {
	db := setupAuthTestDB(t)
	h := newAuthHandler(db)

	body := `{"email":"Hp@Tiles.Test","password":"secret123","username":"hptiles","name":"HP","phonenum":"9000000000","state":"HP"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Register(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201 got %d body=%s", w.Code, w.Body.String())
	}

	// Login before verification is rejected.
	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"hp@tiles.test","password":"secret123"}`))
	w = httptest.NewRecorder()
	h.Login(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("unverified login: expected 403 got %d", w.Code)
	}

	var otp models.OtpCode
	if err := db.Order("id desc").First(&otp).Error; err != nil {
		t.Fatalf("otp row: %v", err)
	}
	req = httptest.NewRequest(http.MethodPost, "/api/auth/verify-otp",
		strings.NewReader(fmt.Sprintf(`{"email":"hp@tiles.test","otp":%q}`, otp.Code)))
	w = httptest.NewRecorder()
	h.VerifyOTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("verify: expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var verified map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &verified); err != nil {
		t.Fatalf("verify body: %v", err)
	}
	if verified["token"] == "" || verified["token"] == nil {
		t.Fatal("verify response missing token")
	}

	// Replay of the same code must fail.
	req = httptest.NewRequest(http.MethodPost, "/api/auth/verify-otp",
		strings.NewReader(fmt.Sprintf(`{"email":"hp@tiles.test","otp":%q}`, otp.Code)))
	w = httptest.NewRecorder()
	h.VerifyOTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("otp replay: expected 400 got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"hp@tiles.test","password":"secret123"}`))
	w = httptest.NewRecorder()
	h.Login(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var session map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &session); err != nil {
		t.Fatalf("login body: %v", err)
	}
	for _, key := range []string{"token", "userid", "email", "username", "name", "phonenum", "state", "profileurl"} {
		if _, ok := session[key]; !ok {
			t.Fatalf("login response missing %q: %s", key, w.Body.String())
		}
	}
	if session["email"] != "hp@tiles.test" {
		t.Fatalf("email not normalized: %v", session["email"])
	}
}

func TestLoginWrongPassword(t *testing.T) {
	db := setupAuthTestDB(t)
	h := newAuthHandler(db)

	body := `{"email":"a@b.test","password":"secret123","username":"ab"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Register(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("register: %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"a@b.test","password":"wrong"}`))
	w = httptest.NewRecorder()
	h.Login(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := setupAuthTestDB(t)
	h := newAuthHandler(db)

	body := `{"email":"dup@b.test","password":"secret123","username":"dup"}`
	for i, want := range []int{http.StatusCreated, http.StatusConflict} {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
		w := httptest.NewRecorder()
		h.Register(w, req)
		if w.Code != want {
			t.Fatalf("attempt %d: expected %d got %d", i, want, w.Code)
		}
	}
}

func TestGetUserOwnershipEnforced(t *testing.T) {
	db := setupAuthTestDB(t)
	h := newAuthHandler(db)

	user := models.User{Email: "own@test", Password: "x", Username: "own", Verified: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("user: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/auth/user/%d", user.ID), nil)
	req.SetPathValue("userId", fmt.Sprint(user.ID))
	req = req.WithContext(auth.WithUserID(req.Context(), user.ID+1))
	w := httptest.NewRecorder()
	h.GetUser(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign user id: expected 403 got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/auth/user/%d", user.ID), nil)
	req.SetPathValue("userId", fmt.Sprint(user.ID))
	req = req.WithContext(auth.WithUserID(req.Context(), user.ID))
	w = httptest.NewRecorder()
	h.GetUser(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("own user id: expected 200 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestUpdateCompanyUpsert(t *testing.T) {
	db := setupAuthTestDB(t)
	h := newAuthHandler(db)

	user := models.User{Email: "co@test", Password: "x", Username: "co", Verified: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	send := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/auth/update/company/%d", user.ID), strings.NewReader(body))
		req.SetPathValue("userId", fmt.Sprint(user.ID))
		req = req.WithContext(auth.WithUserID(req.Context(), user.ID))
		w := httptest.NewRecorder()
		h.UpdateCompany(w, req)
		return w
	}

	if w := send(`{"companyName":"HP TILES","gstin":"02AAAAA0000A1Z5"}`); w.Code != http.StatusOK {
		t.Fatalf("create: expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	if w := send(`{"companyName":"HP TILES & SANITARY","bankName":"SBI"}`); w.Code != http.StatusOK {
		t.Fatalf("update: expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&models.CompanyProfile{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected a single profile row, got %d", count)
	}
	var profile models.CompanyProfile
	db.Where("user_id = ?", user.ID).First(&profile)
	if profile.CompanyName != "HP TILES & SANITARY" || profile.BankName != "SBI" {
		t.Fatalf("profile not updated: %+v", profile)
	}
}
