package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/camden-git/framegallerybackend/config"
	"github.com/camden-git/framegallerybackend/database"
	"github.com/camden-git/framegallerybackend/handlers"
	"github.com/camden-git/framegallerybackend/media"
	"github.com/camden-git/framegallerybackend/models"
	"github.com/camden-git/framegallerybackend/realtime"
	"github.com/camden-git/framegallerybackend/repository"
	"github.com/camden-git/framegallerybackend/visibility"
	"github.com/camden-git/framegallerybackend/workers"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	if err := os.MkdirAll(cfg.DataDirectory, 0755); err != nil {
		log.Fatalf("FATAL: Failed to create data directory %s: %v", cfg.DataDirectory, err)
	}

	db, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		log.Fatalf("FATAL: Failed to migrate database: %v", err)
	}

	filmRepo := repository.NewFilmRepository(db)
	frameRepo := repository.NewFrameRepository(db)
	userRepo := repository.NewUserRepository(db)

	if err := bootstrapAdmin(userRepo, cfg); err != nil {
		log.Fatalf("FATAL: Failed to bootstrap admin user: %v", err)
	}

	flagStore, err := visibility.NewFileStore(cfg.DataDirectory)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize visibility store: %v", err)
	}
	setting := visibility.NewSetting(flagStore)

	hub := realtime.NewHub()
	go hub.Run()

	// every visibility toggle is pushed to connected views so mounted
	// listings re-query without a reload
	setting.Subscribe(func(value bool) {
		hub.Broadcast(realtime.Event{Type: realtime.EventVisibilityChanged, IncludeExplicit: &value})
	})

	uploader := media.NewCloudinaryUploader(cfg.UploadEndpoint, cfg.UploadPreset)
	processor := media.NewProcessor(cfg.UploadMaxSize)

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("FATAL: Failed to get underlying sql.DB: %v", err)
	}
	reconWorker := workers.NewReconWorker(sqlDB, time.Duration(cfg.ReconIntervalSecs)*time.Second)
	reconWorker.Start()
	defer reconWorker.Stop()

	log.Printf("Using database: %s", cfg.DatabasePath)
	log.Printf("Uploading to: %s (folders: %s, %s)", cfg.UploadEndpoint, cfg.PosterFolder, cfg.FrameFolder)
	log.Printf("Delivery transformation segment: %s", cfg.DeliverySegment)
	log.Printf("Reconciliation interval: %ds", cfg.ReconIntervalSecs)

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	filmHandler := &handlers.FilmHandler{FilmRepo: filmRepo, Uploader: uploader, Processor: processor, Hub: hub, Setting: setting, Cfg: cfg}
	frameHandler := &handlers.FrameHandler{FilmRepo: filmRepo, FrameRepo: frameRepo, Uploader: uploader, Processor: processor, Hub: hub, Setting: setting, Cfg: cfg}
	authHandler := handlers.NewAuthHandler(userRepo, cfg)
	visibilityHandler := &handlers.VisibilityHandler{Setting: setting}

	requireAdmin := func(h http.HandlerFunc) http.Handler {
		return handlers.AuthMiddleware(cfg.JWTSecret, userRepo)(handlers.RequireAdmin(h))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Method("GET", "/me", handlers.AuthMiddleware(cfg.JWTSecret, userRepo)(http.HandlerFunc(authHandler.CurrentUser)))
		})

		r.Route("/films", func(r chi.Router) {
			r.Get("/", filmHandler.ListFilms)
			r.Method("POST", "/", requireAdmin(filmHandler.CreateFilm))
			r.Route("/{film_id}", func(r chi.Router) {
				r.Get("/", filmHandler.GetFilm)
				r.Method("PUT", "/", requireAdmin(filmHandler.UpdateFilm))
				r.Method("DELETE", "/", requireAdmin(filmHandler.DeleteFilm))
				r.Get("/frames", frameHandler.ListFramesByFilm)
				r.Method("POST", "/frames", requireAdmin(frameHandler.UploadFrames))
			})
		})

		r.Route("/frames", func(r chi.Router) {
			r.Get("/recent", frameHandler.ListRecentFrames)
			r.Method("DELETE", "/{frame_id}", requireAdmin(frameHandler.DeleteFrame))
		})

		r.Get("/visibility", visibilityHandler.GetVisibility)
		r.Put("/visibility", visibilityHandler.SetVisibility)

		r.Get("/ws", hub.ServeWS)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	serverAddr := ":" + port
	fmt.Printf("Server starting on http://localhost:%s\n", port)
	log.Printf("Server listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}

// bootstrapAdmin seeds the first admin account from config when the user
// table is empty. Without ADMIN_PASSWORD set, seeding is skipped and the
// admin surface stays unreachable.
func bootstrapAdmin(userRepo *repository.UserRepository, cfg config.Config) error {
	count, err := userRepo.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if cfg.AdminPassword == "" {
		log.Printf("Warning: no users exist and ADMIN_PASSWORD is not set; admin routes will be unusable")
		return nil
	}

	admin := &models.User{Username: cfg.AdminUsername, IsAdmin: true}
	if err := admin.SetPassword(cfg.AdminPassword); err != nil {
		return err
	}
	if err := userRepo.Create(admin); err != nil {
		return err
	}
	log.Printf("Bootstrapped admin user '%s'", cfg.AdminUsername)
	return nil
}
