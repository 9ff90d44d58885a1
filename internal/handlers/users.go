package handlers

import (
	"net/http"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/knighthaven/api/internal/models"
	"github.com/knighthaven/api/internal/utils"
)

type UserHandler struct {
	DB  *sqlx.DB
	Log *zap.Logger
}

func NewUserHandler(db *sqlx.DB, log *zap.Logger) *UserHandler {
	return &UserHandler{DB: db, Log: log}
}

// ---------------------- LIST ----------------------

func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users := []models.User{}

	err := h.DB.Select(&users, `
		SELECT id, email, display_name, is_ucf_verified, created_at, updated_at
		FROM users
		ORDER BY created_at DESC
	`)
	if err != nil {
		h.Log.Error("list users failed", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "failed to fetch users")
		return
	}

	utils.JSON(w, http.StatusOK, users)
}

// ---------------------- CREATE ----------------------

// CreateUser is the unauthenticated seeding endpoint the demo client uses; it
// takes an already-hashed password. Real signups go through /api/auth/register.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email         string `json:"email"`
		PasswordHash  string `json:"passwordHash"`
		DisplayName   string `json:"displayName"`
		IsUcfVerified *bool  `json:"isUcfVerified"`
	}

	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}

	if body.Email == "" || body.PasswordHash == "" || body.DisplayName == "" {
		utils.JSONError(w, http.StatusBadRequest, "email, passwordHash, and displayName are required")
		return
	}

	verified := utils.IsUcfEmail(body.Email)
	if body.IsUcfVerified != nil {
		verified = *body.IsUcfVerified
	}

	user := models.User{
		Email:         body.Email,
		DisplayName:   body.DisplayName,
		IsUcfVerified: verified,
	}

	err := h.DB.QueryRowx(`
		INSERT INTO users (email, password_hash, display_name, is_ucf_verified)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, body.Email, body.PasswordHash, body.DisplayName, verified).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if isUniqueViolation(err) {
		utils.JSONError(w, http.StatusBadRequest, "email already registered")
		return
	}
	if err != nil {
		h.Log.Error("create user failed", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	utils.JSON(w, http.StatusCreated, user)
}
