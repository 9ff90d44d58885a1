package handlers

import (
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/knighthaven/api/internal/utils"
)

type AdminHandler struct {
	DB      *sqlx.DB
	Log     *zap.Logger
	MapsKey string
}

func NewAdminHandler(db *sqlx.DB, log *zap.Logger, mapsKey string) *AdminHandler {
	return &AdminHandler{DB: db, Log: log, MapsKey: mapsKey}
}

func (h *AdminHandler) Health(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"message":   "KnightHaven API is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// MapsKey hands the frontend its Google Maps browser key.
func (h *AdminHandler) GetMapsKey(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]string{"apiKey": h.MapsKey})
}

// Stats reports row counts per table.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	counts := map[string]int{}
	for _, table := range []string{"users", "posts", "listings", "services", "places"} {
		var n int
		if err := h.DB.Get(&n, `SELECT COUNT(*) FROM `+table); err != nil {
			h.Log.Error("stats count failed", zap.String("table", table), zap.Error(err))
			utils.JSONError(w, http.StatusInternalServerError, "failed to fetch stats")
			return
		}
		counts[table] = n
	}

	utils.JSON(w, http.StatusOK, counts)
}

// Clear wipes listings, posts and services. Users and the place cache stay.
func (h *AdminHandler) Clear(w http.ResponseWriter, r *http.Request) {
	cleared := map[string]int64{}
	for _, table := range []string{"listings", "posts", "services"} {
		res, err := h.DB.Exec(`DELETE FROM ` + table)
		if err != nil {
			h.Log.Error("clear failed", zap.String("table", table), zap.Error(err))
			utils.JSONError(w, http.StatusInternalServerError, "failed to clear database")
			return
		}
		n, _ := res.RowsAffected()
		cleared[table] = n
	}

	utils.JSON(w, http.StatusOK, map[string]any{
		"message": "Database cleared",
		"cleared": cleared,
	})
}
