package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/knighthaven/api/internal/places"
	"github.com/knighthaven/api/internal/utils"
)

type PlaceHandler struct {
	Store    *places.SQLStore
	Ingestor *places.Ingestor
	Log      *zap.Logger
}

func NewPlaceHandler(store *places.SQLStore, ingestor *places.Ingestor, log *zap.Logger) *PlaceHandler {
	return &PlaceHandler{Store: store, Ingestor: ingestor, Log: log}
}

// GetPlaces returns every cached place, best rated first.
func (h *PlaceHandler) GetPlaces(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.ListByRating(r.Context())
	if err != nil {
		h.Log.Error("list places failed", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "failed to fetch places")
		return
	}

	utils.JSON(w, http.StatusOK, list)
}

// RefreshData fills the place cache from Yelp (no-op once populated).
func (h *PlaceHandler) RefreshData(w http.ResponseWriter, r *http.Request) {
	h.runRefresh(w, r, "")
}

// RefreshCity is the /api/yelp/{city} variant: same flow, location term
// overridden.
func (h *PlaceHandler) RefreshCity(w http.ResponseWriter, r *http.Request) {
	h.runRefresh(w, r, chi.URLParam(r, "city"))
}

func (h *PlaceHandler) runRefresh(w http.ResponseWriter, r *http.Request, city string) {
	summary, err := h.Ingestor.Refresh(r.Context(), city)
	if err != nil {
		h.Log.Error("refresh places failed", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "failed to refresh places")
		return
	}

	utils.JSON(w, http.StatusOK, summary)
}
