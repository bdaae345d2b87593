package handlers

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/hptiles/tilebill/internal/auth"
	"github.com/hptiles/tilebill/internal/httpx"
	"github.com/hptiles/tilebill/internal/models"
	"github.com/hptiles/tilebill/internal/services"
	"github.com/hptiles/tilebill/internal/validation"
)

const otpTTL = 10 * time.Minute

type AuthHandler struct {
	DB     *gorm.DB
	Mailer *services.Mailer
}

func NewAuthHandler(db *gorm.DB, mailer *services.Mailer) *AuthHandler {
	return &AuthHandler{DB: db, Mailer: mailer}
}

// loginResponse mirrors the fields the SPA persists in session storage.
type loginResponse struct {
	Token      string `json:"token"`
	UserID     uint   `json:"userid"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	Name       string `json:"name"`
	Phone      string `json:"phonenum"`
	State      string `json:"state"`
	ProfileURL string `json:"profileurl"`
}

func newLoginResponse(u *models.User) (loginResponse, error) {
	token, err := auth.GenerateToken(u.ID, u.Email)
	if err != nil {
		return loginResponse{}, err
	}
	return loginResponse{
		Token:      token,
		UserID:     u.ID,
		Email:      u.Email,
		Username:   u.Username,
		Name:       u.Name,
		Phone:      u.Phone,
		State:      u.State,
		ProfileURL: u.ProfileURL,
	}, nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Register: POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Username string `json:"username"`
		Name     string `json:"name"`
		Phone    string `json:"phonenum"`
		State    string `json:"state"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	v := validation.Violations{}
	validation.Required("email", req.Email, v)
	validation.Required("password", req.Password, v)
	validation.Required("username", req.Username, v)
	if len(req.Password) > 0 && len(req.Password) < 8 {
		v["password"] = "too_short"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	var existing int64
	if err := h.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&existing).Error; err == nil && existing > 0 {
		httpx.JSONError(w, http.StatusConflict, "email_taken", nil)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_register", nil)
		return
	}
	user := models.User{
		Email:    req.Email,
		Password: string(hash),
		Username: req.Username,
		Name:     req.Name,
		Phone:    req.Phone,
		State:    req.State,
	}
	code, err := generateOTP()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_register", nil)
		return
	}
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Create(&models.OtpCode{UserID: user.ID, Code: code, ExpiresAt: time.Now().Add(otpTTL)}).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_register", nil)
		return
	}
	if err := h.Mailer.SendOTP(user.Email, code); err != nil {
		log.Printf("register: %v", err)
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"message": "otp_sent", "userid": user.ID})
}

// VerifyOTP: POST /api/auth/verify-otp
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	var user models.User
	if err := h.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_otp", nil)
		return
	}
	var otp models.OtpCode
	err := h.DB.Where("user_id = ? AND code = ? AND consumed = ? AND expires_at > ?",
		user.ID, strings.TrimSpace(req.OTP), false, time.Now()).
		Order("id desc").First(&otp).Error
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_otp", nil)
		return
	}
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&otp).Update("consumed", true).Error; err != nil {
			return err
		}
		return tx.Model(&user).Update("verified", true).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_verify", nil)
		return
	}
	user.Verified = true
	resp, err := newLoginResponse(&user)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_verify", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// Login: POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	var user models.User
	if err := h.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	if !user.Verified {
		httpx.JSONError(w, http.StatusForbidden, "not_verified", nil)
		return
	}
	resp, err := newLoginResponse(&user)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_login", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// pathUserID parses the {userId} path segment and enforces that it matches
// the authenticated user. Users only ever see their own data.
func pathUserID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := r.PathValue("userId")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_user_id", nil)
		return 0, false
	}
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return 0, false
	}
	if uint(id) != uid {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return 0, false
	}
	return uid, true
}

// GetUser: GET /api/auth/user/{userId} — profile plus company details, the
// combined payload the company-details and bank-details views consume.
func (h *AuthHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	uid, ok := pathUserID(w, r)
	if !ok {
		return
	}
	var user models.User
	if err := h.DB.First(&user, uid).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	var company models.CompanyProfile
	if err := h.DB.Where("user_id = ?", uid).First(&company).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_profile", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"user": user, "company": company})
}

// UpdateUser: PUT /api/auth/update/{userId}
func (h *AuthHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	uid, ok := pathUserID(w, r)
	if !ok {
		return
	}
	var req struct {
		Username   string `json:"username"`
		Name       string `json:"name"`
		Phone      string `json:"phonenum"`
		State      string `json:"state"`
		ProfileURL string `json:"profileurl"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	updates := map[string]any{
		"username":    req.Username,
		"name":        req.Name,
		"phone":       req.Phone,
		"state":       req.State,
		"profile_url": req.ProfileURL,
	}
	if err := h.DB.Model(&models.User{}).Where("id = ?", uid).Updates(updates).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update", nil)
		return
	}
	var user models.User
	if err := h.DB.First(&user, uid).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

// UpdateCompany: PUT /api/auth/update/company/{userId} — upsert the single
// company profile row for the user.
func (h *AuthHandler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	uid, ok := pathUserID(w, r)
	if !ok {
		return
	}
	var req models.CompanyProfile
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("companyName", req.CompanyName, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	var company models.CompanyProfile
	err := h.DB.Where("user_id = ?", uid).First(&company).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		req.ID = 0
		req.UserID = uid
		if err := h.DB.Create(&req).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_company", nil)
			return
		}
		company = req
	case err != nil:
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_company", nil)
		return
	default:
		updates := map[string]any{
			"company_name": req.CompanyName,
			"address1":     req.Address1,
			"address2":     req.Address2,
			"gstin":        req.GSTIN,
			"pan":          req.PAN,
			"mobile":       req.Mobile,
			"bank_name":    req.BankName,
			"ifsc":         req.IFSC,
			"account_no":   req.AccountNo,
			"branch":       req.Branch,
			"upiid":        req.UPIID,
		}
		if err := h.DB.Model(&company).Updates(updates).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_company", nil)
			return
		}
		if err := h.DB.Where("user_id = ?", uid).First(&company).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_company", nil)
			return
		}
	}
	httpx.JSON(w, http.StatusOK, company)
}
