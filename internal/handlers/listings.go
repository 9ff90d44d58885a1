package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/knighthaven/api/internal/models"
	"github.com/knighthaven/api/internal/upload"
	"github.com/knighthaven/api/internal/utils"
)

type ListingHandler struct {
	DB    *sqlx.DB
	Log   *zap.Logger
	Saver *upload.Saver
}

func NewListingHandler(db *sqlx.DB, log *zap.Logger, saver *upload.Saver) *ListingHandler {
	return &ListingHandler{DB: db, Log: log, Saver: saver}
}

type listingRow struct {
	models.Listing
	AuthorDisplayName string `db:"author_display_name"`
	AuthorUcfVerified bool   `db:"author_is_ucf_verified"`
}

func (r listingRow) toListing() models.Listing {
	l := r.Listing
	l.Author = &models.Author{
		ID:            l.AuthorID,
		DisplayName:   r.AuthorDisplayName,
		IsUcfVerified: r.AuthorUcfVerified,
	}
	return l
}

const listingColumns = `
	l.id, l.title, l.description, l.price, l.category, l.image_path,
	l.is_active, l.author_id, l.created_at,
	u.display_name AS author_display_name,
	u.is_ucf_verified AS author_is_ucf_verified
`

// priceFrom coerces the price field, which clients send as a JSON number or a
// numeric string. Anything else is a 400.
func priceFrom(v any) (float64, error) {
	switch t := v.(type) {
	case nil:
		return 0, errors.New("price is required")
	case float64:
		if t < 0 {
			return 0, errors.New("price must not be negative")
		}
		return t, nil
	case string:
		return utils.ParsePrice(t)
	case json.Number:
		return utils.ParsePrice(t.String())
	default:
		return 0, errors.New("price must be a number")
	}
}

// ---------------------- LIST ----------------------

// GetListings returns active listings newest first. ?authorId= narrows to one
// seller; ?all=true includes deactivated rows.
func (h *ListingHandler) GetListings(w http.ResponseWriter, r *http.Request) {
	query := `
		SELECT ` + listingColumns + `
		FROM listings l
		JOIN users u ON u.id = l.author_id
	`

	var conds []string
	var args []any

	if r.URL.Query().Get("all") != "true" {
		conds = append(conds, "l.is_active = TRUE")
	}
	if raw := r.URL.Query().Get("authorId"); raw != "" {
		authorID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			utils.JSONError(w, http.StatusBadRequest, "authorId must be an integer")
			return
		}
		args = append(args, authorID)
		conds = append(conds, "l.author_id = $"+strconv.Itoa(len(args)))
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY l.created_at DESC"

	var rows []listingRow
	if err := h.DB.Select(&rows, query, args...); err != nil {
		h.Log.Error("list listings failed", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "failed to fetch listings")
		return
	}

	listings := make([]models.Listing, 0, len(rows))
	for _, row := range rows {
		listings = append(listings, row.toListing())
	}

	utils.JSON(w, http.StatusOK, listings)
}

// ---------------------- GET ONE ----------------------

func (h *ListingHandler) GetListingByID(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	var row listingRow
	err := h.DB.Get(&row, `
		SELECT `+listingColumns+`
		FROM listings l
		JOIN users u ON u.id = l.author_id
		WHERE l.id=$1
	`, id)

	if errors.Is(err, sql.ErrNoRows) {
		utils.JSONError(w, http.StatusNotFound, "listing not found")
		return
	}
	if err != nil {
		h.Log.Error("get listing failed", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "failed to fetch listing")
		return
	}

	utils.JSON(w, http.StatusOK, row.toListing())
}

// ---------------------- CREATE ----------------------

// CreateListing accepts a flat JSON body or a multipart form with an optional
// image field.
func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	var (
		title, description, category, rawAuthor string
		price                                   float64
		imagePath                               sql.NullString
	)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(h.Saver.MaxSize + 1<<20); err != nil {
			utils.JSONError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}

		title = r.FormValue("title")
		description = r.FormValue("description")
		category = r.FormValue("category")
		rawAuthor = r.FormValue("authorId")

		var rawPrice any
		if v := r.FormValue("price"); v != "" {
			rawPrice = v
		}
		p, err := priceFrom(rawPrice)
		if err != nil {
			utils.JSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		price = p

		if file, header, err := r.FormFile("image"); err == nil {
			defer file.Close()
			path, err := h.Saver.Save(file, header)
			if err != nil {
				utils.JSONError(w, http.StatusBadRequest, err.Error())
				return
			}
			imagePath = sql.NullString{String: path, Valid: true}
		}
	} else {
		var body struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Price       any    `json:"price"`
			Category    string `json:"category"`
			AuthorID    any    `json:"authorId"`
		}
		if err := utils.DecodeJSON(w, r, &body); err != nil {
			return
		}

		title = body.Title
		description = body.Description
		category = body.Category
		rawAuthor = authorIDString(body.AuthorID)

		p, err := priceFrom(body.Price)
		if err != nil {
			utils.JSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		price = p
	}

	if title == "" {
		utils.JSONError(w, http.StatusBadRequest, "title is required")
		return
	}

	authorID, err := resolveAuthor(r, rawAuthor)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	listing := models.Listing{
		Title:       title,
		Description: description,
		Price:       price,
		Category:    category,
		ImagePath:   imagePath,
		IsActive:    true,
		AuthorID:    authorID,
	}

	err = h.DB.QueryRowx(`
		INSERT INTO listings (title, description, price, category, image_path, author_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, is_active, created_at
	`, listing.Title, listing.Description, listing.Price, listing.Category, listing.ImagePath, listing.AuthorID).
		Scan(&listing.ID, &listing.IsActive, &listing.CreatedAt)

	if isForeignKeyViolation(err) {
		utils.JSONError(w, http.StatusBadRequest, "author does not exist")
		return
	}
	if err != nil {
		h.Log.Error("create listing failed", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "failed to create listing")
		return
	}

	utils.JSON(w, http.StatusCreated, listing)
}

// ---------------------- UPDATE ----------------------

func (h *ListingHandler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	var body struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Price       any     `json:"price"`
		Category    *string `json:"category"`
		IsActive    *bool   `json:"isActive"`
	}

	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}

	var listing models.Listing
	err := h.DB.Get(&listing, `SELECT * FROM listings WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		utils.JSONError(w, http.StatusNotFound, "listing not found")
		return
	}
	if err != nil {
		h.Log.Error("get listing for update failed", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "failed to fetch listing")
		return
	}

	if body.Title != nil {
		listing.Title = *body.Title
	}
	if body.Description != nil {
		listing.Description = *body.Description
	}
	if body.Price != nil {
		p, err := priceFrom(body.Price)
		if err != nil {
			utils.JSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		listing.Price = p
	}
	if body.Category != nil {
		listing.Category = *body.Category
	}
	if body.IsActive != nil {
		listing.IsActive = *body.IsActive
	}

	_, err = h.DB.Exec(`
		UPDATE listings
		SET title=$1, description=$2, price=$3, category=$4, is_active=$5
		WHERE id=$6
	`, listing.Title, listing.Description, listing.Price, listing.Category, listing.IsActive, id)

	if err != nil {
		h.Log.Error("update listing failed", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "failed to update listing")
		return
	}

	utils.JSON(w, http.StatusOK, listing)
}

// ---------------------- DELETE ----------------------

func (h *ListingHandler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	res, err := h.DB.Exec(`DELETE FROM listings WHERE id=$1`, id)
	if err != nil {
		h.Log.Error("delete listing failed", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "failed to delete listing")
		return
	}

	if n, _ := res.RowsAffected(); n == 0 {
		utils.JSONError(w, http.StatusNotFound, "listing not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
