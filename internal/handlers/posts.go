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

type PostHandler struct {
	DB  *sqlx.DB
	Log *zap.Logger
}

func NewPostHandler(db *sqlx.DB, log *zap.Logger) *PostHandler {
	return &PostHandler{DB: db, Log: log}
}

type postRow struct {
	models.Post
	AuthorDisplayName string `db:"author_display_name"`
	AuthorUcfVerified bool   `db:"author_is_ucf_verified"`
}

func (r postRow) toPost() models.Post {
	p := r.Post
	p.Author = &models.Author{
		ID:            p.AuthorID,
		DisplayName:   r.AuthorDisplayName,
		IsUcfVerified: r.AuthorUcfVerified,
	}
	return p
}

const postColumns = `
	p.id, p.title, p.content, p.author_id, p.created_at,
	u.display_name AS author_display_name,
	u.is_ucf_verified AS author_is_ucf_verified
`

// ---------------------- LIST ----------------------

func (h *PostHandler) GetPosts(w http.ResponseWriter, r *http.Request) {
	var rows []postRow

	err := h.DB.Select(&rows, `
		SELECT `+postColumns+`
		FROM posts p
		JOIN users u ON u.id = p.author_id
		ORDER BY p.created_at DESC
	`)
	if err != nil {
		h.Log.Error("list posts failed", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "failed to fetch posts")
		return
	}

	posts := make([]models.Post, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, row.toPost())
	}

	utils.JSON(w, http.StatusOK, posts)
}

// ---------------------- GET ONE ----------------------

func (h *PostHandler) GetPostByID(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	var row postRow
	err := h.DB.Get(&row, `
		SELECT `+postColumns+`
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.id=$1
	`, id)

	if errors.Is(err, sql.ErrNoRows) {
		utils.JSONError(w, http.StatusNotFound, "post not found")
		return
	}
	if err != nil {
		h.Log.Error("get post failed", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "failed to fetch post")
		return
	}

	utils.JSON(w, http.StatusOK, row.toPost())
}

// ---------------------- CREATE ----------------------

func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		AuthorID any    `json:"authorId"`
	}

	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}

	if body.Title == "" || body.Content == "" {
		utils.JSONError(w, http.StatusBadRequest, "title and content are required")
		return
	}

	authorID, err := resolveAuthor(r, authorIDString(body.AuthorID))
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	post := models.Post{
		Title:    body.Title,
		Content:  body.Content,
		AuthorID: authorID,
	}

	err = h.DB.QueryRowx(`
		INSERT INTO posts (title, content, author_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, post.Title, post.Content, post.AuthorID).
		Scan(&post.ID, &post.CreatedAt)

	if isForeignKeyViolation(err) {
		utils.JSONError(w, http.StatusBadRequest, "author does not exist")
		return
	}
	if err != nil {
		h.Log.Error("create post failed", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "failed to create post")
		return
	}

	utils.JSON(w, http.StatusCreated, post)
}

// ---------------------- DELETE ----------------------

func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	res, err := h.DB.Exec(`DELETE FROM posts WHERE id=$1`, id)
	if err != nil {
		h.Log.Error("delete post failed", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "failed to delete post")
		return
	}

	if n, _ := res.RowsAffected(); n == 0 {
		utils.JSONError(w, http.StatusNotFound, "post not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
