package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/erazemk/skinledger/internal/metrics"
	"github.com/erazemk/skinledger/internal/service"
)

// Config wires the router to its dependencies.
type Config struct {
	DB             *sql.DB
	Items          *service.ItemService
	Users          *service.UserService
	JWTSecret      string
	TokenTTL       time.Duration
	SecureCookies  bool
	AllowedOrigins []string
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(cfg Config) http.Handler {
	authHandler := &AuthHandler{
		DB:            cfg.DB,
		Users:         cfg.Users,
		JWTSecret:     cfg.JWTSecret,
		TokenTTL:      cfg.TokenTTL,
		SecureCookies: cfg.SecureCookies,
	}
	usersHandler := &UsersHandler{Users: cfg.Users}
	itemsHandler := &ItemsHandler{Items: cfg.Items}
	healthHandler := &HealthHandler{DB: cfg.DB}

	authMW := AuthMiddleware(cfg.JWTSecret, cfg.DB)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(MetricsMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.Signup)
			r.Post("/signin", authHandler.Signin)

			r.Group(func(r chi.Router) {
				r.Use(authMW)
				r.Post("/logout", authHandler.Logout)
				r.Get("/verify", authHandler.Verify)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(authMW)

			r.Put("/users/{id}/password", usersHandler.ChangePassword)

			r.Route("/items", func(r chi.Router) {
				r.Get("/", itemsHandler.List)
				r.Post("/", itemsHandler.Create)
				r.Get("/stats", itemsHandler.Stats)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", itemsHandler.Get)
					r.Put("/", itemsHandler.Update)
					r.Delete("/", itemsHandler.Delete)
					r.Put("/image", itemsHandler.UploadImage)
					r.Get("/image", itemsHandler.GetImage)
				})
			})
		})
	})

	return r
}
