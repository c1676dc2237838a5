package main

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"pinposter/internal/config"
	"pinposter/internal/handlers"
	"pinposter/internal/middleware"
)

func main() {
	cfg := config.Load()

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	h := handlers.NewHandler(cfg)
	h.RegisterRoutes(r)

	// Serve static files for the composer UI
	fileServer := http.FileServer(http.Dir("./static"))
	r.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	log.Info("server is running", "addr", cfg.ListenAddr, "sandbox", cfg.Sandbox)
	if err := http.ListenAndServe(cfg.ListenAddr, r); err != nil {
		log.Fatal("server failed", "err", err)
	}
}
