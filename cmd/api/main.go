package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/knighthaven/api/internal/config"
	"github.com/knighthaven/api/internal/db"
	"github.com/knighthaven/api/internal/handlers"
	"github.com/knighthaven/api/internal/middleware"
	"github.com/knighthaven/api/internal/places"
	"github.com/knighthaven/api/internal/upload"
	"github.com/knighthaven/api/internal/yelp"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	dbConn, err := db.Connect(cfg.DatabaseURL, cfg.DBMaxOpen, cfg.DBMaxIdle, cfg.DBMaxLifetime)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer dbConn.Close()

	if err := db.Migrate(dbConn); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	saver, err := upload.NewSaver(cfg.UploadDir, cfg.MaxUploadSize)
	if err != nil {
		logger.Fatal("upload dir", zap.Error(err))
	}

	ingestor := places.NewIngestor(
		places.NewSQLStore(dbConn),
		yelp.NewClient(cfg.YelpAPIKey),
		logger,
	)

	h := handlers.NewHandler(dbConn, cfg, logger, saver, ingestor)

	r := newRouter(cfg, dbConn, h)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}

func newRouter(cfg *config.Config, dbConn *sqlx.DB, h *handlers.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: cfg.CORSOrigin != "*",
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Admin.Health)
		r.Get("/maps-key", h.Admin.GetMapsKey)
		r.Get("/stats", h.Admin.Stats)
		r.Post("/clear", h.Admin.Clear)

		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/login", h.Auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(dbConn, cfg.JWTSecret))
			r.Get("/auth/me", h.Auth.Me)
		})

		// Writes attach the token's user when one is present, otherwise the
		// body's authorId.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(dbConn, cfg.JWTSecret))

			r.Get("/users", h.Users.GetUsers)
			r.Post("/users", h.Users.CreateUser)

			r.Get("/posts", h.Posts.GetPosts)
			r.Post("/posts", h.Posts.CreatePost)
			r.Get("/posts/{id}", h.Posts.GetPostByID)
			r.Delete("/posts/{id}", h.Posts.DeletePost)

			r.Get("/listings", h.Listings.GetListings)
			r.Post("/listings", h.Listings.CreateListing)
			r.Get("/listings/{id}", h.Listings.GetListingByID)
			r.Put("/listings/{id}", h.Listings.UpdateListing)
			r.Delete("/listings/{id}", h.Listings.DeleteListing)

			// legacy alias kept for older clients
			r.Get("/items", h.Listings.GetListings)
			r.Post("/items", h.Listings.CreateListing)
			r.Get("/items/{id}", h.Listings.GetListingByID)
			r.Put("/items/{id}", h.Listings.UpdateListing)
			r.Delete("/items/{id}", h.Listings.DeleteListing)

			r.Get("/services", h.Services.GetServices)
			r.Post("/services", h.Services.CreateService)
			r.Get("/services/{id}", h.Services.GetServiceByID)
			r.Put("/services/{id}", h.Services.UpdateService)
			r.Delete("/services/{id}", h.Services.DeleteService)
		})

		r.Get("/places", h.Places.GetPlaces)
		r.Get("/refresh-data", h.Places.RefreshData)
		r.Get("/yelp/{city}", h.Places.RefreshCity)
	})

	r.Handle("/uploads/*", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(cfg.UploadDir))))

	return r
}
