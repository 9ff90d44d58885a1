package handlers

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/knighthaven/api/internal/config"
	"github.com/knighthaven/api/internal/places"
	"github.com/knighthaven/api/internal/upload"
)

type Handler struct {
	DB       *sqlx.DB
	Auth     *AuthHandler
	Users    *UserHandler
	Posts    *PostHandler
	Listings *ListingHandler
	Services *ServiceHandler
	Places   *PlaceHandler
	Admin    *AdminHandler
}

func NewHandler(db *sqlx.DB, cfg *config.Config, log *zap.Logger, saver *upload.Saver, ingestor *places.Ingestor) *Handler {
	return &Handler{
		DB:       db,
		Auth:     NewAuthHandler(db, log, cfg.JWTSecret, cfg.JWTTTL),
		Users:    NewUserHandler(db, log),
		Posts:    NewPostHandler(db, log),
		Listings: NewListingHandler(db, log, saver),
		Services: NewServiceHandler(db, log),
		Places:   NewPlaceHandler(places.NewSQLStore(db), ingestor, log),
		Admin:    NewAdminHandler(db, log, cfg.MapsAPIKey),
	}
}
