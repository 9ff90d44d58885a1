package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/knighthaven/api/internal/models"
	"github.com/knighthaven/api/internal/utils"
)

type ServiceHandler struct {
	DB  *sqlx.DB
	Log *zap.Logger
}

func NewServiceHandler(db *sqlx.DB, log *zap.Logger) *ServiceHandler {
	return &ServiceHandler{DB: db, Log: log}
}

type serviceRow struct {
	models.Service
	AuthorDisplayName string `db:"author_display_name"`
	AuthorUcfVerified bool   `db:"author_is_ucf_verified"`
}

func (r serviceRow) toService() models.Service {
	s := r.Service
	s.Author = &models.Author{
		ID:            s.AuthorID,
		DisplayName:   r.AuthorDisplayName,
		IsUcfVerified: r.AuthorUcfVerified,
	}
	return s
}

const serviceColumns = `
	s.id, s.title, s.description, s.category, s.is_active, s.author_id, s.created_at,
	u.display_name AS author_display_name,
	u.is_ucf_verified AS author_is_ucf_verified
`

// ---------------------- LIST ----------------------

func (h *ServiceHandler) GetServices(w http.ResponseWriter, r *http.Request) {
	var rows []serviceRow

	err := h.DB.Select(&rows, `
		SELECT `+serviceColumns+`
		FROM services s
		JOIN users u ON u.id = s.author_id
		WHERE s.is_active = TRUE
		ORDER BY s.created_at DESC
	`)
	if err != nil {
		h.Log.Error("list services failed", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "failed to fetch services")
		return
	}

	services := make([]models.Service, 0, len(rows))
	for _, row := range rows {
		services = append(services, row.toService())
	}

	utils.JSON(w, http.StatusOK, services)
}

// ---------------------- GET ONE ----------------------

func (h *ServiceHandler) GetServiceByID(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	var row serviceRow
	err := h.DB.Get(&row, `
		SELECT `+serviceColumns+`
		FROM services s
		JOIN users u ON u.id = s.author_id
		WHERE s.id=$1
	`, id)

	if errors.Is(err, sql.ErrNoRows) {
		utils.JSONError(w, http.StatusNotFound, "service not found")
		return
	}
	if err != nil {
		h.Log.Error("get service failed", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "failed to fetch service")
		return
	}

	utils.JSON(w, http.StatusOK, row.toService())
}

// ---------------------- CREATE ----------------------

func (h *ServiceHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Category    string `json:"category"`
		AuthorID    any    `json:"authorId"`
	}

	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}

	if body.Title == "" || body.Description == "" || body.Category == "" {
		utils.JSONError(w, http.StatusBadRequest, "title, description, and category are required")
		return
	}

	authorID, err := resolveAuthor(r, authorIDString(body.AuthorID))
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	service := models.Service{
		Title:       body.Title,
		Description: body.Description,
		Category:    body.Category,
		IsActive:    true,
		AuthorID:    authorID,
	}

	err = h.DB.QueryRowx(`
		INSERT INTO services (title, description, category, author_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_active, created_at
	`, service.Title, service.Description, service.Category, service.AuthorID).
		Scan(&service.ID, &service.IsActive, &service.CreatedAt)

	if isForeignKeyViolation(err) {
		utils.JSONError(w, http.StatusBadRequest, "author does not exist")
		return
	}
	if err != nil {
		h.Log.Error("create service failed", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "failed to create service")
		return
	}

	utils.JSON(w, http.StatusCreated, service)
}

// ---------------------- UPDATE ----------------------

func (h *ServiceHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	var body struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Category    *string `json:"category"`
		IsActive    *bool   `json:"isActive"`
	}

	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}

	var service models.Service
	err := h.DB.Get(&service, `SELECT * FROM services WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		utils.JSONError(w, http.StatusNotFound, "service not found")
		return
	}
	if err != nil {
		h.Log.Error("get service for update failed", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "failed to fetch service")
		return
	}

	if body.Title != nil {
		service.Title = *body.Title
	}
	if body.Description != nil {
		service.Description = *body.Description
	}
	if body.Category != nil {
		service.Category = *body.Category
	}
	if body.IsActive != nil {
		service.IsActive = *body.IsActive
	}

	_, err = h.DB.Exec(`
		UPDATE services
		SET title=$1, description=$2, category=$3, is_active=$4
		WHERE id=$5
	`, service.Title, service.Description, service.Category, service.IsActive, id)

	if err != nil {
		h.Log.Error("update service failed", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "failed to update service")
		return
	}

	utils.JSON(w, http.StatusOK, service)
}

// ---------------------- DELETE ----------------------

func (h *ServiceHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	res, err := h.DB.Exec(`DELETE FROM services WHERE id=$1`, id)
	if err != nil {
		h.Log.Error("delete service failed", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "failed to delete service")
		return
	}

	if n, _ := res.RowsAffected(); n == 0 {
		utils.JSONError(w, http.StatusNotFound, "service not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
