package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/knighthaven/api/internal/middleware"
	"github.com/knighthaven/api/internal/models"
	"github.com/knighthaven/api/internal/utils"
)

const bcryptCost = 12

type AuthHandler struct {
	DB     *sqlx.DB
	Log    *zap.Logger
	Secret string
	TTL    time.Duration
}

func NewAuthHandler(db *sqlx.DB, log *zap.Logger, secret string, ttl time.Duration) *AuthHandler {
	return &AuthHandler{DB: db, Log: log, Secret: secret, TTL: ttl}
}

// ----------- Request/Response DTOs -------------

type registerReq struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResp struct {
	Message string      `json:"message"`
	User    models.User `json:"user"`
	Token   string      `json:"token"`
}

// -------------- REGISTER ----------------------

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	if req.Email == "" || req.Password == "" || req.DisplayName == "" {
		utils.JSONError(w, http.StatusBadRequest, "email, password, and display name are required")
		return
	}
	if !utils.IsValidEmail(req.Email) {
		utils.JSONError(w, http.StatusBadRequest, "invalid email format")
		return
	}
	if !utils.IsValidPassword(req.Password) {
		utils.JSONError(w, http.StatusBadRequest,
			"password must be at least 8 characters with uppercase, lowercase, and number")
		return
	}
	if !utils.IsValidDisplayName(req.DisplayName) {
		utils.JSONError(w, http.StatusBadRequest,
			"display name must be 3-20 characters (letters, numbers, underscores only)")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	user := models.User{
		Email:         req.Email,
		DisplayName:   req.DisplayName,
		IsUcfVerified: utils.IsUcfEmail(req.Email),
	}

	err = h.DB.QueryRowx(`
		INSERT INTO users (email, password_hash, display_name, is_ucf_verified)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, req.Email, string(hash), req.DisplayName, user.IsUcfVerified).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if isUniqueViolation(err) {
		utils.JSONError(w, http.StatusBadRequest, "email already registered")
		return
	}
	if err != nil {
		h.Log.Error("register insert failed", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	token, _, err := utils.GenerateToken(user.ID, user.Email, user.DisplayName, h.Secret, h.TTL)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "token error")
		return
	}

	utils.JSON(w, http.StatusCreated, authResp{
		Message: "User created successfully",
		User:    user,
		Token:   token,
	})
}

// -------------- LOGIN ------------------------

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	if req.Email == "" || req.Password == "" {
		utils.JSONError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	var u models.User
	err := h.DB.Get(&u, `
		SELECT id, email, password_hash, display_name, is_ucf_verified, created_at, updated_at
		FROM users
		WHERE email=$1
	`, req.Email)

	if errors.Is(err, sql.ErrNoRows) {
		utils.JSONError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		h.Log.Error("login lookup failed", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "db error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
		utils.JSONError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, _, err := utils.GenerateToken(u.ID, u.Email, u.DisplayName, h.Secret, h.TTL)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "token error")
		return
	}

	utils.JSON(w, http.StatusOK, authResp{
		Message: "Login successful",
		User:    u,
		Token:   token,
	})
}

// -------------- ME (protected) ----------------

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())
	if user == nil {
		utils.JSONError(w, http.StatusUnauthorized, "not authorized")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]any{"user": user})
}
